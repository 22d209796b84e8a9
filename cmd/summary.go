package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/holdings"
	"github.com/etnz/holdings/renderer"
	"github.com/google/subcommands"
)

// summaryCmd holds the flags for the 'summary' subcommand.
type summaryCmd struct {
	refresh bool
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "display the holdings and their value" }
func (*summaryCmd) Usage() string {
	return `hold summary [-refresh]

  Displays every holding with its market value and profit, and the portfolio
  totals in CNY. Hong Kong holdings are converted at the current HKD/CNY rate.
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.refresh, "refresh", false, "Refresh all prices before displaying the summary")
}

func (c *summaryCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	r, release, err := OpenRegistry(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening ledger: %v\n", err)
		return subcommands.ExitFailure
	}
	defer release()

	if c.refresh {
		if err := refresh(ctx, r); err != nil {
			fmt.Fprintf(os.Stderr, "Error refreshing prices: %v\n", err)
			return exitStatus(err)
		}
	}
	printSummary(ctx, r)
	return subcommands.ExitSuccess
}

func printSummary(ctx context.Context, r *holdings.Registry) {
	s := renderer.NewSummary(r.Report(ctx), r.LastUpdate())
	printMarkdown(renderer.RenderSummary(s))
}
