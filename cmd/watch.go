package cmd

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/subcommands"
)

type watchCmd struct {
	every time.Duration
}

func (*watchCmd) Name() string     { return "watch" }
func (*watchCmd) Synopsis() string { return "refresh prices periodically and display the summary" }
func (*watchCmd) Usage() string {
	return `hold watch [-every <duration>]

  Refreshes all prices and displays the summary, then again every <duration>
  until interrupted.
`
}

func (c *watchCmd) SetFlags(f *flag.FlagSet) {
	f.DurationVar(&c.every, "every", 5*time.Minute, "Time between two refreshes")
}

func (c *watchCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.every <= 0 {
		fmt.Fprintln(os.Stderr, "Error: -every must be positive.")
		return subcommands.ExitUsageError
	}

	r, release, err := OpenRegistry(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening ledger: %v\n", err)
		return subcommands.ExitFailure
	}
	defer release()

	ticker := time.NewTicker(c.every)
	defer ticker.Stop()
	for {
		// a failed save is reported and retried at the next tick.
		if err := refresh(ctx, r); err != nil {
			log.Printf("refresh failed: %v", err)
		}
		printSummary(ctx, r)

		select {
		case <-ctx.Done():
			return subcommands.ExitSuccess
		case <-ticker.C:
		}
	}
}
