package lexer

import (
	"reflect"
	"strings"
	"testing"

	"github.com/Fabii137/Whacky/token"
)

func kinds(tokens []token.Token) []token.TokenType {
	out := make([]token.TokenType, 0, len(tokens))
	for _, tok := range tokens {
		out = append(out, tok.TokenType)
	}
	return out
}

func TestScanOperators(t *testing.T) {
	scanner := New("==/=*+>-<!=<=>=")
	got, err := scanner.Scan()
	if err != nil {
		t.Fatalf("Scan() raised an error: %v", err)
	}
	want := []token.TokenType{
		token.EQUAL_EQUAL,
		token.DIV,
		token.ASSIGN,
		token.MULT,
		token.ADD,
		token.LARGER,
		token.SUB,
		token.LESS,
		token.NOT_EQUAL,
		token.LESS_EQUAL,
		token.LARGER_EQUAL,
		token.EOF,
	}
	if !reflect.DeepEqual(kinds(got), want) {
		t.Errorf("Scan() kinds = %v, want %v", kinds(got), want)
	}
}

func TestScanStatement(t *testing.T) {
	scanner := New("bye(42);")
	got, err := scanner.Scan()
	if err != nil {
		t.Fatalf("Scan() raised an error: %v", err)
	}
	want := []token.Token{
		token.CreateLiteralToken(token.BYE, "bye", 1, 1),
		token.CreateToken(token.LPA, 1, 4),
		token.CreateLiteralToken(token.INT_LIT, "42", 1, 5),
		token.CreateToken(token.RPA, 1, 7),
		token.CreateToken(token.SEMICOLON, 1, 8),
		token.CreateToken(token.EOF, 1, 9),
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Scan() = %v, want %v", got, want)
	}
}

func TestScanKeywordsAndIdentifiers(t *testing.T) {
	scanner := New("gimme counter1: number = 5;")
	got, err := scanner.Scan()
	if err != nil {
		t.Fatalf("Scan() raised an error: %v", err)
	}
	want := []token.TokenType{
		token.GIMME,
		token.IDENTIFIER,
		token.COLON,
		token.TYPE_NUMBER,
		token.ASSIGN,
		token.INT_LIT,
		token.SEMICOLON,
		token.EOF,
	}
	if !reflect.DeepEqual(kinds(got), want) {
		t.Errorf("Scan() kinds = %v, want %v", kinds(got), want)
	}
	if got[1].Lexeme != "counter1" {
		t.Errorf("identifier lexeme = %q, want %q", got[1].Lexeme, "counter1")
	}
}

func TestScanBoolLiterals(t *testing.T) {
	scanner := New("yep nope")
	got, err := scanner.Scan()
	if err != nil {
		t.Fatalf("Scan() raised an error: %v", err)
	}
	want := []token.Token{
		token.CreateLiteralToken(token.BOOL_LIT, "1", 1, 1),
		token.CreateLiteralToken(token.BOOL_LIT, "0", 1, 5),
		token.CreateToken(token.EOF, 1, 9),
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Scan() = %v, want %v", got, want)
	}
}

func TestScanStringLiteral(t *testing.T) {
	scanner := New(`yell("hi there\n");`)
	got, err := scanner.Scan()
	if err != nil {
		t.Fatalf("Scan() raised an error: %v", err)
	}
	want := []token.TokenType{
		token.YELL,
		token.LPA,
		token.STRING_LIT,
		token.RPA,
		token.SEMICOLON,
		token.EOF,
	}
	if !reflect.DeepEqual(kinds(got), want) {
		t.Errorf("Scan() kinds = %v, want %v", kinds(got), want)
	}
	if got[2].Lexeme != `hi there\n` {
		t.Errorf("string lexeme = %q, want %q", got[2].Lexeme, `hi there\n`)
	}
}

func TestScanEscapedQuote(t *testing.T) {
	scanner := New(`"say \"hi\""`)
	got, err := scanner.Scan()
	if err != nil {
		t.Fatalf("Scan() raised an error: %v", err)
	}
	if got[0].Lexeme != `say \"hi\"` {
		t.Errorf("string lexeme = %q, want %q", got[0].Lexeme, `say \"hi\"`)
	}
}

func TestScanComments(t *testing.T) {
	src := "// heading\nbye(0); /* block\ncomment */ yell(\"x\");"
	scanner := New(src)
	got, err := scanner.Scan()
	if err != nil {
		t.Fatalf("Scan() raised an error: %v", err)
	}
	want := []token.TokenType{
		token.BYE,
		token.LPA,
		token.INT_LIT,
		token.RPA,
		token.SEMICOLON,
		token.YELL,
		token.LPA,
		token.STRING_LIT,
		token.RPA,
		token.SEMICOLON,
		token.EOF,
	}
	if !reflect.DeepEqual(kinds(got), want) {
		t.Errorf("Scan() kinds = %v, want %v", kinds(got), want)
	}
}

func TestScanRangeDots(t *testing.T) {
	scanner := New("roundandround (i in 0 .. 3)")
	got, err := scanner.Scan()
	if err != nil {
		t.Fatalf("Scan() raised an error: %v", err)
	}
	want := []token.TokenType{
		token.ROUNDANDROUND,
		token.LPA,
		token.IDENTIFIER,
		token.IN,
		token.INT_LIT,
		token.DOT,
		token.DOT,
		token.INT_LIT,
		token.RPA,
		token.EOF,
	}
	if !reflect.DeepEqual(kinds(got), want) {
		t.Errorf("Scan() kinds = %v, want %v", kinds(got), want)
	}
}

func TestPositionsMonotonic(t *testing.T) {
	src := "gimme x: number = 1;\nkeepgoing (x < 10) {\n\tx = x + 1;\n}\nbye(x);\n"
	scanner := New(src)
	got, err := scanner.Scan()
	if err != nil {
		t.Fatalf("Scan() raised an error: %v", err)
	}
	prevLine, prevCol := 0, 0
	for _, tok := range got {
		if tok.Line < prevLine || (tok.Line == prevLine && tok.Column <= prevCol) {
			t.Errorf("token %v position %d:%d not after %d:%d", tok, tok.Line, tok.Column, prevLine, prevCol)
		}
		prevLine, prevCol = tok.Line, tok.Column
	}
}

func TestScanErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "unexpected character",
			src:  "bye(@);",
			want: "[Tokenize Error] unexpected character: '@' at 1:5",
		},
		{
			name: "lone bang",
			src:  "1 ! 2",
			want: "[Tokenize Error] unexpected character: '!' at 1:3",
		},
		{
			name: "unterminated string",
			src:  "\"abc",
			want: "[Tokenize Error] unterminated string literal at 1:1",
		},
		{
			name: "unterminated block comment",
			src:  "bye(0); /* oops",
			want: "[Tokenize Error] unterminated block comment at 1:9",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scanner := New(tt.src)
			_, err := scanner.Scan()
			if err == nil {
				t.Fatalf("Scan() expected an error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Scan() error = %q, want %q", err.Error(), tt.want)
			}
		})
	}
}
