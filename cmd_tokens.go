package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/pkg/errors"

	"github.com/Fabii137/Whacky/lexer"
)

// tokensCmd dumps the token stream of a source file, one token per line
// with its position.
type tokensCmd struct{}

func (*tokensCmd) Name() string     { return "tokens" }
func (*tokensCmd) Synopsis() string { return "Dump the token stream of a source file" }
func (*tokensCmd) Usage() string {
	return `whacky tokens <input.wy>
`
}

func (*tokensCmd) SetFlags(f *flag.FlagSet) {}

func (*tokensCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	for _, tok := range tokens {
		fmt.Printf("%s at %d:%d\n", tok, tok.Line, tok.Column)
	}
	return subcommands.ExitSuccess
}
