package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/exec"

	"github.com/google/subcommands"
	"github.com/pkg/errors"
)

const (
	defaultOutput  = "out"
	defaultRuntime = "libwhacky_runtime.a"
)

// buildCmd compiles a Whacky source file all the way to a linked
// executable: out.asm, nasm, then ld against the runtime archive.
type buildCmd struct {
	output  string
	runtime string
	keepAsm bool
}

func (*buildCmd) Name() string     { return "build" }
func (*buildCmd) Synopsis() string { return "Compile a Whacky source file to an executable" }
func (*buildCmd) Usage() string {
	return `whacky build <input.wy>
`
}

func (cmd *buildCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&cmd.output, "o", defaultOutput, "Name of the linked executable.")
	f.StringVar(&cmd.runtime, "runtime", defaultRuntime, "Path to the runtime archive. Built from runtime/runtime.c when missing.")
	f.BoolVar(&cmd.keepAsm, "S", false, "Keep out.asm and out.o after linking.")
}

func (cmd *buildCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "File not provided\n")
		return subcommands.ExitUsageError
	}
	return buildFile(args[0], cmd.output, cmd.runtime, cmd.keepAsm)
}

// buildFile runs the front end and the external assembler and linker.
// It is shared with the plain `whacky <input.wy>` invocation.
func buildFile(filename, output, runtimeArchive string, keepAsm bool) subcommands.ExitStatus {
	data, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", errors.Wrap(err, "failed to read source file"))
		return subcommands.ExitFailure
	}

	asm, err := compileSource(string(data))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	if err := os.WriteFile("out.asm", []byte(asm), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", errors.Wrap(err, "failed to write out.asm"))
		return subcommands.ExitFailure
	}

	if err := ensureRuntime(runtimeArchive); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return subcommands.ExitFailure
	}

	if err := run("nasm", "-felf64", "out.asm"); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return subcommands.ExitFailure
	}
	if err := run("ld", "-o", output, "out.o", runtimeArchive, "-lc",
		"-dynamic-linker", "/lib64/ld-linux-x86-64.so.2"); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return subcommands.ExitFailure
	}

	if !keepAsm {
		os.Remove("out.asm")
		os.Remove("out.o")
	}
	return subcommands.ExitSuccess
}

// ensureRuntime builds the runtime archive from runtime/runtime.c if it
// does not exist yet.
func ensureRuntime(archive string) error {
	if _, err := os.Stat(archive); err == nil {
		return nil
	}
	if _, err := os.Stat("runtime/runtime.c"); err != nil {
		return errors.Errorf("runtime archive %s not found and runtime/runtime.c is missing", archive)
	}
	if err := run("cc", "-c", "-o", "whacky_runtime.o", "runtime/runtime.c"); err != nil {
		return err
	}
	defer os.Remove("whacky_runtime.o")
	return run("ar", "rcs", archive, "whacky_runtime.o")
}

// run executes an external tool, forwarding its output.
func run(name string, args ...string) error {
	command := exec.Command(name, args...)
	command.Stdout = os.Stdout
	command.Stderr = os.Stderr
	if err := command.Run(); err != nil {
		return errors.Wrapf(err, "%s failed", name)
	}
	return nil
}
