package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/holdings"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

type addCmd struct {
	assetType string
	market    string
	symbol    string
	shares    string
	cost      string
}

func (*addCmd) Name() string     { return "add" }
func (*addCmd) Synopsis() string { return "add a holding to the ledger" }
func (*addCmd) Usage() string {
	return `hold add [-type equity|etf] [-market a|hk] -s <symbol> -n <shares> -c <cost price>

  Adds a holding to the ledger. Its name and current price are fetched from the
  market data provider.
  - type: equity (股票) or etf (ETF基金). Defaults to equity.
  - market: a (A股) or hk (港股). Defaults to a. Funds are always on the A股 market.
  - s: the exchange code, e.g. 000001 or 00700.
  - n: the number of shares held, positive.
  - c: the cost price per share, in the market currency, positive.

Usage Examples:
$ hold add -market hk -s 00700 -n 100 -c 320.5
$ hold add -type etf -s 159691 -n 1000 -c 1.123
`
}

func (c *addCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.assetType, "type", "equity", "Asset type: equity or etf")
	f.StringVar(&c.market, "market", "a", "Market: a or hk")
	f.StringVar(&c.symbol, "s", "", "Exchange code of the holding (required)")
	f.StringVar(&c.shares, "n", "", "Number of shares (required)")
	f.StringVar(&c.cost, "c", "", "Cost price per share (required)")
}

// request parses the flags into an AddRequest.
func (c *addCmd) request() (holdings.AddRequest, error) {
	var req holdings.AddRequest
	var err error
	if req.Type, err = holdings.ParseAssetType(c.assetType); err != nil {
		return req, &holdings.ValidationError{Field: "type", Reason: err.Error()}
	}
	if req.Type == holdings.FundETF {
		req.Market = holdings.Domestic
	} else if req.Market, err = holdings.ParseMarket(c.market); err != nil {
		return req, &holdings.ValidationError{Field: "market", Reason: err.Error()}
	}
	req.Symbol = c.symbol

	shares, err := decimal.NewFromString(c.shares)
	if err != nil {
		return req, &holdings.ValidationError{Field: "shares", Reason: fmt.Sprintf("not a number %q", c.shares)}
	}
	req.Shares = holdings.Q(shares)
	if req.CostPrice, err = decimal.NewFromString(c.cost); err != nil {
		return req, &holdings.ValidationError{Field: "cost price", Reason: fmt.Sprintf("not a number %q", c.cost)}
	}
	return req, nil
}

func (c *addCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	req, err := c.request()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	r, release, err := OpenRegistry(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening ledger: %v\n", err)
		return subcommands.ExitFailure
	}
	defer release()

	a, err := r.Add(ctx, req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error adding %s: %v\n", req.Symbol, err)
		return exitStatus(err)
	}
	fmt.Fprintf(stdout, "Added %s: %v shares at %v\n", a, a.Shares, a.CostPrice)
	return subcommands.ExitSuccess
}
