package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/holdings"
	"github.com/google/subcommands"
)

type refreshCmd struct{}

func (*refreshCmd) Name() string     { return "refresh" }
func (*refreshCmd) Synopsis() string { return "update the names and prices of all holdings" }
func (*refreshCmd) Usage() string {
	return `hold refresh

  Fetches the quote of every holding and saves the prices and names that
  changed. Quotes fetched less than -quote-ttl ago are not fetched again.
`
}

func (c *refreshCmd) SetFlags(f *flag.FlagSet) {}

func (c *refreshCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	r, release, err := OpenRegistry(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening ledger: %v\n", err)
		return subcommands.ExitFailure
	}
	defer release()

	if err := refresh(ctx, r); err != nil {
		fmt.Fprintf(os.Stderr, "Error refreshing prices: %v\n", err)
		return exitStatus(err)
	}
	return subcommands.ExitSuccess
}

// refresh refreshes all prices and prints the outcome.
func refresh(ctx context.Context, r *holdings.Registry) error {
	changed, err := r.RefreshAll(ctx)
	if err != nil {
		return err
	}
	if changed {
		fmt.Fprintln(stdout, "Prices updated.")
	} else {
		fmt.Fprintln(stdout, "No change.")
	}
	return nil
}
