package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/google/subcommands"
)

type removeCmd struct{}

func (*removeCmd) Name() string     { return "remove" }
func (*removeCmd) Synopsis() string { return "remove a holding from the ledger" }
func (*removeCmd) Usage() string {
	return `hold remove <index>

  Removes the holding at position <index> in the ledger. Positions are listed
  in the '#' column of 'hold summary', starting at 0.
`
}

func (c *removeCmd) SetFlags(f *flag.FlagSet) {}

func (c *removeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: exactly one index is required.")
		return subcommands.ExitUsageError
	}
	index, err := strconv.Atoi(f.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid index %q\n", f.Arg(0))
		return subcommands.ExitUsageError
	}

	r, release, err := OpenRegistry(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening ledger: %v\n", err)
		return subcommands.ExitFailure
	}
	defer release()

	a, err := r.Remove(ctx, index)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error removing #%d: %v\n", index, err)
		return exitStatus(err)
	}
	fmt.Fprintf(stdout, "Removed %s\n", a)
	return subcommands.ExitSuccess
}
