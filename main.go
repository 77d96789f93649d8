package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

// commandNames are the registered subcommand names; a single argument
// that is none of these is treated as the plain `whacky <input.wy>`
// form and compiled directly.
var commandNames = map[string]bool{
	"help":     true,
	"flags":    true,
	"commands": true,
	"build":    true,
	"emit":     true,
	"tokens":   true,
	"ast":      true,
	"repl":     true,
}

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")
	subcommands.Register(&buildCmd{}, "")
	subcommands.Register(&emitCmd{}, "")
	subcommands.Register(&tokensCmd{}, "")
	subcommands.Register(&astCmd{}, "")
	subcommands.Register(&replCmd{}, "")

	flag.Parse()
	ctx := context.Background()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	if !commandNames[args[0]] {
		if len(args) != 1 {
			printUsage()
			os.Exit(1)
		}
		os.Exit(int(buildFile(args[0], defaultOutput, defaultRuntime, false)))
	}

	os.Exit(int(subcommands.Execute(ctx)))
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "Incorrect usage. Correct usage is ...")
	fmt.Fprintln(os.Stderr, "whacky <input.wy>")
}
