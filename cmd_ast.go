package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/pkg/errors"

	"github.com/Fabii137/Whacky/lexer"
	"github.com/Fabii137/Whacky/parser"
)

// astCmd dumps the parsed AST of a source file as prettified JSON.
type astCmd struct {
	output string
}

func (*astCmd) Name() string     { return "ast" }
func (*astCmd) Synopsis() string { return "Dump the AST of a source file as JSON" }
func (*astCmd) Usage() string {
	return `whacky ast <input.wy>
`
}

func (cmd *astCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&cmd.output, "o", "", "Write the AST JSON to this file instead of stdout.")
}

func (cmd *astCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "File not provided\n")
		return subcommands.ExitUsageError
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", errors.Wrap(err, "failed to read source file"))
		return subcommands.ExitFailure
	}

	lex := lexer.New(string(data))
	tokens, err := lex.Scan()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	p := parser.Make(tokens)
	prog, err := p.Parse()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	if cmd.output != "" {
		if err := parser.WriteASTJSONToFile(prog, cmd.output); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}

	jsonStr, err := parser.PrintASTJSON(prog)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Println(jsonStr)
	return subcommands.ExitSuccess
}
