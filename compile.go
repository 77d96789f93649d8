package main

import (
	"github.com/Fabii137/Whacky/gen"
	"github.com/Fabii137/Whacky/lexer"
	"github.com/Fabii137/Whacky/parser"
)

// compileSource runs the whole front end over a source text and returns
// the generated assembly. The first error of any phase aborts the
// pipeline; it is already formatted for the user.
func compileSource(src string) (string, error) {
	lex := lexer.New(src)
	tokens, err := lex.Scan()
	if err != nil {
		return "", err
	}

	p := parser.Make(tokens)
	prog, err := p.Parse()
	if err != nil {
		return "", err
	}

	generator := gen.New(prog)
	return generator.Generate()
}
