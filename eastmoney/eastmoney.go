// Package eastmoney fetches real time quotes of Shanghai, Shenzhen and Hong Kong
// listed securities from the public eastmoney quote API.
package eastmoney

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/etnz/holdings"
)

// DefaultBaseURL is the quote endpoint.
const DefaultBaseURL = "https://push2.eastmoney.com/api/qt/stock/get"

// Market prefixes of the secid query parameter.
const (
	shanghai = "1"
	shenzhen = "0"
	hongKong = "116"
)

// Client implements holdings.QuoteProvider.
type Client struct {
	BaseURL string
	json    *holdings.JSONClient
}

// New returns a client allowing at most rps requests per second.
func New(rps float64) *Client {
	return &Client{BaseURL: DefaultBaseURL, json: holdings.NewJSONClient(rps, 4)}
}

// FetchEquityQuote returns the latest price of an equity listed on market.
func (c *Client) FetchEquityQuote(ctx context.Context, symbol string, market holdings.Market) (holdings.Quote, error) {
	return c.fetch(ctx, secID(symbol, market), market.Currency())
}

// FetchETFQuote returns the latest price of a fund listed on the Domestic market.
func (c *Client) FetchETFQuote(ctx context.Context, symbol string) (holdings.Quote, error) {
	return c.fetch(ctx, secID(symbol, holdings.Domestic), holdings.Local)
}

// secID returns the eastmoney identifier of a symbol.
//
// Domestic codes starting with 5, 6 or 9 are listed in Shanghai, all others
// in Shenzhen.
func secID(symbol string, market holdings.Market) string {
	if market == holdings.HongKong {
		return hongKong + "." + symbol
	}
	switch {
	case strings.HasPrefix(symbol, "5"), strings.HasPrefix(symbol, "6"), strings.HasPrefix(symbol, "9"):
		return shanghai + "." + symbol
	default:
		return shenzhen + "." + symbol
	}
}

/*
	{
	    "rc": 0,
	    "data": {
	        "f43": 320.2,
	        "f57": "00700",
	        "f58": "腾讯控股"
	    }
	}

data is null for unknown codes, f43 is "-" when there is no trade yet.
*/
func (c *Client) fetch(ctx context.Context, secid string, cur holdings.Currency) (holdings.Quote, error) {
	q := url.Values{}
	q.Set("secid", secid)
	q.Set("fields", "f43,f57,f58")
	q.Set("fltt", "2") // prices as decimal numbers
	addr := c.BaseURL + "?" + q.Encode()

	jobj, err := c.json.Get(ctx, addr)
	if err != nil {
		return holdings.Quote{}, fmt.Errorf("cannot get quote %s: %w", secid, err)
	}
	if doc, ok := jobj.(map[string]any); !ok || doc["data"] == nil {
		return holdings.Quote{}, fmt.Errorf("%s: %w", secid, holdings.ErrSymbolNotFound)
	}

	name, err := holdings.JSONString("$.data.f58", jobj)
	if err != nil {
		return holdings.Quote{}, fmt.Errorf("cannot read name of %s: %w", secid, err)
	}
	if s, _ := holdings.JSONString("$.data.f43", jobj); s == "-" {
		return holdings.Quote{}, fmt.Errorf("%s: %w", secid, holdings.ErrNoPrice)
	}
	price, err := holdings.JSONDecimal("$.data.f43", jobj)
	if err != nil {
		return holdings.Quote{}, fmt.Errorf("cannot read price of %s: %w", secid, err)
	}
	if !price.IsPositive() {
		return holdings.Quote{}, fmt.Errorf("%s: %w", secid, holdings.ErrNoPrice)
	}
	return holdings.Quote{Name: name, Price: price, Currency: cur}, nil
}
