// Package exchangerate fetches currency conversion rates from exchangerate-api.com.
package exchangerate

import (
	"context"
	"fmt"

	"github.com/etnz/holdings"
	"github.com/shopspring/decimal"
)

// DefaultBaseURL is the latest rates endpoint, the base currency is appended to it.
const DefaultBaseURL = "https://api.exchangerate-api.com/v4/latest/"

// Client implements holdings.RateProvider.
type Client struct {
	BaseURL string
	json    *holdings.JSONClient
}

// New returns a client allowing at most rps requests per second.
func New(rps float64) *Client {
	return &Client{BaseURL: DefaultBaseURL, json: holdings.NewJSONClient(rps, 1)}
}

/*
	{
	    "base": "HKD",
	    "date": "2025-03-03",
	    "rates": {
	        "HKD": 1,
	        "CNY": 0.932,
	        ...
	    }
	}
*/

// FetchRate returns the number of quote units for one base unit.
func (c *Client) FetchRate(ctx context.Context, base, quote holdings.Currency) (decimal.Decimal, error) {
	jobj, err := c.json.Get(ctx, c.BaseURL+string(base))
	if err != nil {
		return decimal.Zero, fmt.Errorf("cannot get %s rates: %w", base, err)
	}
	rate, err := holdings.JSONDecimal("$.rates."+string(quote), jobj)
	if err != nil {
		return decimal.Zero, fmt.Errorf("cannot read %s/%s rate: %w", base, quote, err)
	}
	return rate, nil
}
