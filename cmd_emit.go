package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/pkg/errors"
)

// emitCmd runs the front end and writes the generated assembly without
// invoking the assembler or linker.
type emitCmd struct {
	output string
}

func (*emitCmd) Name() string     { return "emit" }
func (*emitCmd) Synopsis() string { return "Emit the generated assembly from a source file" }
func (*emitCmd) Usage() string {
	return `whacky emit <input.wy>
`
}

func (cmd *emitCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&cmd.output, "o", "out.asm", "Path of the assembly file to write.")
}

func (cmd *emitCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	asm, err := compileSource(string(data))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	if err := os.WriteFile(cmd.output, []byte(asm), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", errors.Wrapf(err, "failed to write %s", cmd.output))
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
