// Package holdings provides the types and functions to keep a ledger of
// holdings listed on two markets, and to value it in a single reporting
// currency.
//
// The core functionalities include:
//   - Ledger Store: loading and saving the ledger as a JSON document, migrating
//     records written by older versions and keeping fields it does not know.
//   - Market Data: quotes and the exchange rate served through caches with a
//     freshness window, so that slow upstream providers are called at most once
//     per window and per key.
//   - Valuation: market value, cost, profit and return of every holding and of
//     the whole portfolio in the reporting currency.
//   - Registry: adding and removing holdings, and refreshing their prices.
//
// This package serves as the foundational logic for the `hold` command-line
// tool.
package holdings
