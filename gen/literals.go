package gen

import (
	"fmt"
	"strings"
)

// escapeByte maps the supported escape sequences to their byte values.
var escapeByte = map[byte]byte{
	'n':  '\n',
	't':  '\t',
	'r':  '\r',
	'\\': '\\',
	'"':  '"',
}

// internLiteral returns the label of the given string literal text,
// emitting it into the data section the first time it is seen. Two
// occurrences of the same literal share one label.
func (g *Generator) internLiteral(raw string) string {
	if label, ok := g.literals[raw]; ok {
		return label
	}
	label := fmt.Sprintf("str%d", g.literalCount)
	g.literalCount++
	g.literals[raw] = label

	g.data.WriteString(label + " db " + escapeLiteral(raw) + "\n")
	g.data.WriteString(label + "_len: equ $- " + label + "\n")
	return label
}

// escapeLiteral expands the escape sequences of a raw literal into the
// comma-split operand list of a NASM db directive, terminated by the
// trailing NUL. Printable runs stay quoted; escaped bytes become
// numeric values. Example: `hi\nthere` -> `"hi", 10, "there", 0`.
func escapeLiteral(raw string) string {
	parts := []string{}
	var run strings.Builder

	flush := func() {
		if run.Len() > 0 {
			parts = append(parts, `"`+run.String()+`"`)
			run.Reset()
		}
	}

	for i := 0; i < len(raw); i++ {
		char := raw[i]
		if char == '\\' && i+1 < len(raw) {
			if value, ok := escapeByte[raw[i+1]]; ok {
				flush()
				parts = append(parts, fmt.Sprintf("%d", value))
				i++
				continue
			}
		}
		run.WriteByte(char)
	}
	flush()

	parts = append(parts, "0")
	return strings.Join(parts, ", ")
}
