package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/google/subcommands"
)

// replCmd starts an interactive session: each line is run through the
// whole pipeline and the generated assembly (or the error) is printed.
type replCmd struct{}

func (*replCmd) Name() string     { return "repl" }
func (*replCmd) Synopsis() string { return "Start an interactive Whacky-to-assembly session" }
func (*replCmd) Usage() string {
	return `whacky repl
`
}

func (*replCmd) SetFlags(f *flag.FlagSet) {}

func (*replCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	fmt.Println("\nWelcome to Whacky! Type a statement, `exit` to leave.")

	rl, err := readline.New(">>> ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return subcommands.ExitFailure
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			return subcommands.ExitSuccess
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			return subcommands.ExitFailure
		}
		if strings.TrimSpace(line) == "exit" {
			return subcommands.ExitSuccess
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		asm, err := compileSource(line)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}
		fmt.Println(asm)
	}
}
