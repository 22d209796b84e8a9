// Command hold manages a portfolio of A股 and 港股 holdings and values it in CNY.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"path"

	"github.com/etnz/holdings/cmd"
	"github.com/google/subcommands"
	"github.com/joho/godotenv"
)

func main() {
	// shell completion exits when the shell is asking for completions.
	cmd.Completion().Complete("hold")

	// a .env file is optional.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("cannot load .env: %v", err)
	}

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	cmd.Register(commander)

	flag.Parse()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	status := commander.Execute(ctx)
	stop()
	os.Exit(int(status))
}
