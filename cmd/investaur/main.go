package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")

	commander.Register(&serveCmd{}, "")
	commander.Register(&analyzeCmd{}, "research")
	commander.Register(&marketsCmd{}, "research")
	commander.Register(&screenCmd{}, "research")
	commander.Register(&portfolioCmd{}, "ledgers")
	commander.Register(&paperCmd{}, "ledgers")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
