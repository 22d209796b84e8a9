// Package cmd implements the CLI application to manage and value holdings.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/holdings"
	"github.com/etnz/holdings/eastmoney"
	"github.com/etnz/holdings/exchangerate"
	"github.com/etnz/holdings/redisstore"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&addCmd{}, "holdings")
	c.Register(&removeCmd{}, "holdings")
	c.Register(&fmtCmd{}, "holdings")

	c.Register(&refreshCmd{}, "prices")
	c.Register(&summaryCmd{}, "prices")
	c.Register(&watchCmd{}, "prices")
}

// Environment variables used when the matching flag is not set.
const (
	envLedgerFile = "HOLD_LEDGER_FILE"
	envRedisAddr  = "HOLD_REDIS_ADDR"
	envRedisKey   = "HOLD_REDIS_KEY"
)

const defaultLedgerFile = "portfolio_data.json"

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var ledgerFileFlag = flag.String("ledger-file", "", "Path to the ledger file. Defaults to the "+envLedgerFile+" environment variable, or "+defaultLedgerFile)
var redisAddrFlag = flag.String("redis-addr", "", "Address of a Redis server holding the ledger instead of the ledger file. Defaults to the "+envRedisAddr+" environment variable")
var redisKeyFlag = flag.String("redis-key", "", "Redis key holding the ledger. Defaults to the "+envRedisKey+" environment variable, or "+redisstore.DefaultKey)

var quoteTTL = flag.Duration("quote-ttl", 5*time.Minute, "How long a quote is considered fresh")
var rateTTL = flag.Duration("rate-ttl", time.Hour, "How long the exchange rate is considered fresh")
var timeout = flag.Duration("timeout", 5*time.Second, "Timeout of every market data request")
var fallbackRate = flag.String("fallback-rate", "0.92", "HKD/CNY rate used when it was never fetched")

var quoteURL = flag.String("quote-url", eastmoney.DefaultBaseURL, "Quote API endpoint")
var rateURL = flag.String("rate-url", exchangerate.DefaultBaseURL, "Exchange rate API endpoint")
var rps = flag.Float64("rps", 5, "Maximum number of requests per second to each market data API")

var rawMarkdown = flag.Bool("markdown", false, "Print reports as raw markdown instead of rendering them for the terminal")

// stdout is where reports are printed.
var stdout io.Writer = os.Stdout

// flagOrEnv returns the flag value if set, otherwise the environment variable
// value if set, otherwise def.
func flagOrEnv(flagValue, env, def string) string {
	if flagValue != "" {
		return flagValue
	}
	if v := os.Getenv(env); v != "" {
		return v
	}
	return def
}

func ledgerFile() string { return flagOrEnv(*ledgerFileFlag, envLedgerFile, defaultLedgerFile) }
func redisAddr() string  { return flagOrEnv(*redisAddrFlag, envRedisAddr, "") }
func redisKey() string   { return flagOrEnv(*redisKeyFlag, envRedisKey, redisstore.DefaultKey) }

// marketDataConfig builds the market data configuration from flags.
func marketDataConfig() (holdings.MarketDataConfig, error) {
	cfg := holdings.DefaultMarketDataConfig()
	cfg.QuoteWindow = *quoteTTL
	cfg.RateWindow = *rateTTL
	if *timeout <= 0 {
		return cfg, fmt.Errorf("invalid -timeout %v: must be positive", *timeout)
	}
	cfg.Timeout = *timeout
	rate, err := decimal.NewFromString(*fallbackRate)
	if err != nil || !rate.IsPositive() {
		return cfg, fmt.Errorf("invalid -fallback-rate %q: must be a positive number", *fallbackRate)
	}
	cfg.FallbackRate = rate
	return cfg, nil
}

// openStore returns the configured ledger byte store, and a function to release it.
func openStore(ctx context.Context) (holdings.ByteStore, func(), error) {
	addr := redisAddr()
	if addr == "" {
		return holdings.FileStore{Path: ledgerFile()}, func() {}, nil
	}
	rs, err := redisstore.Dial(ctx, addr, redisKey())
	if err != nil {
		return nil, nil, err
	}
	return rs, func() { rs.Close() }, nil
}

// OpenRegistry is the central function to open the ledger with its market data.
// The returned function must be called to release resources.
func OpenRegistry(ctx context.Context) (*holdings.Registry, func(), error) {
	cfg, err := marketDataConfig()
	if err != nil {
		return nil, nil, err
	}
	bs, release, err := openStore(ctx)
	if err != nil {
		return nil, nil, err
	}

	quotes := eastmoney.New(*rps)
	quotes.BaseURL = *quoteURL
	rates := exchangerate.New(*rps)
	rates.BaseURL = *rateURL

	r, err := holdings.OpenRegistry(ctx, holdings.NewStore(bs), holdings.NewMarketData(quotes, rates, cfg))
	if err != nil {
		release()
		return nil, nil, err
	}
	return r, release, nil
}

// printMarkdown renders md for the terminal.
func printMarkdown(md string) {
	if *rawMarkdown {
		fmt.Fprint(stdout, md)
		return
	}
	out, err := glamour.Render(md, "auto")
	if err != nil {
		fmt.Fprint(stdout, md)
		return
	}
	fmt.Fprint(stdout, out)
}

// exitStatus maps an error to the exit status of a command.
func exitStatus(err error) subcommands.ExitStatus {
	var verr *holdings.ValidationError
	if errors.As(err, &verr) {
		return subcommands.ExitUsageError
	}
	return subcommands.ExitFailure
}
