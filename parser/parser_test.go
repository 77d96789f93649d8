package parser

import (
	"strings"
	"testing"

	"github.com/Fabii137/Whacky/ast"
	"github.com/Fabii137/Whacky/lexer"
)

func parseProgram(t *testing.T, src string) *ast.Program {
	t.Helper()
	tokens, err := lexer.New(src).Scan()
	if err != nil {
		t.Fatalf("Scan() raised an error: %v", err)
	}
	prog, err := Make(tokens).Parse()
	if err != nil {
		t.Fatalf("Parse() raised an error: %v", err)
	}
	return prog
}

func parseError(t *testing.T, src string) error {
	t.Helper()
	tokens, err := lexer.New(src).Scan()
	if err != nil {
		t.Fatalf("Scan() raised an error: %v", err)
	}
	_, err = Make(tokens).Parse()
	if err == nil {
		t.Fatalf("Parse() expected an error for %q", src)
	}
	return err
}

// byeExpr parses `bye(<expr>);` and returns the inner expression, the
// shortest route to a standalone expression tree.
func byeExpr(t *testing.T, expr string) ast.Expression {
	t.Helper()
	prog := parseProgram(t, "bye("+expr+");")
	bye, ok := prog.Stmts[0].(*ast.Bye)
	if !ok {
		t.Fatalf("statement is %T, want *ast.Bye", prog.Stmts[0])
	}
	return bye.Expression
}

func asBinary(t *testing.T, expr ast.Expression, op ast.BinOp) *ast.BinExpr {
	t.Helper()
	binary, ok := expr.(*ast.BinExpr)
	if !ok {
		t.Fatalf("expression is %T, want *ast.BinExpr", expr)
	}
	if binary.Op != op {
		t.Fatalf("operator = %s, want %s", binary.Op, op)
	}
	return binary
}

func identName(expr ast.Expression) string {
	if ident, ok := expr.(*ast.Ident); ok {
		return ident.Name.Lexeme
	}
	return ""
}

func TestPrecedenceMulBindsTighter(t *testing.T) {
	// a + b * c parses as a + (b * c)
	root := asBinary(t, byeExpr(t, "a + b * c"), ast.OpAdd)
	if identName(root.Left) != "a" {
		t.Errorf("left = %v, want ident a", root.Left)
	}
	right := asBinary(t, root.Right, ast.OpMul)
	if identName(right.Left) != "b" || identName(right.Right) != "c" {
		t.Errorf("right operand is not b * c")
	}

	// a * b + c parses as (a * b) + c
	root = asBinary(t, byeExpr(t, "a * b + c"), ast.OpAdd)
	left := asBinary(t, root.Left, ast.OpMul)
	if identName(left.Left) != "a" || identName(left.Right) != "b" {
		t.Errorf("left operand is not a * b")
	}
	if identName(root.Right) != "c" {
		t.Errorf("right = %v, want ident c", root.Right)
	}
}

func TestPrecedenceLogicalLeftAssociative(t *testing.T) {
	// a and b or c parses as (a and b) or c: same level, left-assoc.
	root := asBinary(t, byeExpr(t, "a and b or c"), ast.OpOr)
	left := asBinary(t, root.Left, ast.OpAnd)
	if identName(left.Left) != "a" || identName(left.Right) != "b" {
		t.Errorf("left operand is not a and b")
	}
	if identName(root.Right) != "c" {
		t.Errorf("right = %v, want ident c", root.Right)
	}
}

func TestPrecedenceComparisonOverLogical(t *testing.T) {
	// a == b and c != d parses as (a == b) and (c != d)
	root := asBinary(t, byeExpr(t, "a == b and c != d"), ast.OpAnd)
	asBinary(t, root.Left, ast.OpEq)
	asBinary(t, root.Right, ast.OpNeq)
}

func TestSubLeftAssociative(t *testing.T) {
	// a - b - c parses as (a - b) - c
	root := asBinary(t, byeExpr(t, "a - b - c"), ast.OpSub)
	left := asBinary(t, root.Left, ast.OpSub)
	if identName(left.Left) != "a" || identName(left.Right) != "b" {
		t.Errorf("left operand is not a - b")
	}
	if identName(root.Right) != "c" {
		t.Errorf("right = %v, want ident c", root.Right)
	}
}

func TestBitwiseBetweenLogicalAndComparison(t *testing.T) {
	// a or b xor c parses as a or (b xor c)
	root := asBinary(t, byeExpr(t, "a or b xor c"), ast.OpOr)
	asBinary(t, root.Right, ast.OpXor)

	// a xor b == c parses as a xor (b == c)
	root = asBinary(t, byeExpr(t, "a xor b == c"), ast.OpXor)
	asBinary(t, root.Right, ast.OpEq)
}

func TestParenAndCallTerms(t *testing.T) {
	expr := byeExpr(t, "(a + b) * c")
	root := asBinary(t, expr, ast.OpMul)
	paren, ok := root.Left.(*ast.Paren)
	if !ok {
		t.Fatalf("left is %T, want *ast.Paren", root.Left)
	}
	asBinary(t, paren.Expression, ast.OpAdd)

	expr = byeExpr(t, "add(1, x + 2)")
	call, ok := expr.(*ast.Call)
	if !ok {
		t.Fatalf("expression is %T, want *ast.Call", expr)
	}
	if call.Name.Lexeme != "add" || len(call.Args) != 2 {
		t.Errorf("call = %s with %d args, want add with 2", call.Name.Lexeme, len(call.Args))
	}
	asBinary(t, call.Args[1], ast.OpAdd)

	expr = byeExpr(t, "nullary()")
	call, ok = expr.(*ast.Call)
	if !ok {
		t.Fatalf("expression is %T, want *ast.Call", expr)
	}
	if len(call.Args) != 0 {
		t.Errorf("call has %d args, want 0", len(call.Args))
	}
}

func TestStatementForms(t *testing.T) {
	src := `
gimme x: number = 1;
x = x + 1;
gimme s: str = "hi";
yell(s);
{ gimme y: bool = yep; }
maybe (x == 2) { bye(1); } but (x > 2) { bye(2); } nah { bye(3); }
keepgoing (x < 10) { x = x + 1; }
roundandround (i in 0 .. 3) { yell("x"); }
thingy add(a: number, b: number): number { gimmeback a + b; }
bye(x);
`
	prog := parseProgram(t, src)
	wantTypes := []string{
		"*ast.Gimme", "*ast.Assign", "*ast.Gimme", "*ast.Yell", "*ast.Scope",
		"*ast.Maybe", "*ast.While", "*ast.For", "*ast.Thingy", "*ast.Bye",
	}
	if len(prog.Stmts) != len(wantTypes) {
		t.Fatalf("parsed %d statements, want %d", len(prog.Stmts), len(wantTypes))
	}
	for i, stmt := range prog.Stmts {
		if got := typeName(stmt); got != wantTypes[i] {
			t.Errorf("statement %d is %s, want %s", i, got, wantTypes[i])
		}
	}
}

func typeName(v any) string {
	switch v.(type) {
	case *ast.Gimme:
		return "*ast.Gimme"
	case *ast.Assign:
		return "*ast.Assign"
	case *ast.Yell:
		return "*ast.Yell"
	case *ast.Scope:
		return "*ast.Scope"
	case *ast.Maybe:
		return "*ast.Maybe"
	case *ast.While:
		return "*ast.While"
	case *ast.For:
		return "*ast.For"
	case *ast.Thingy:
		return "*ast.Thingy"
	case *ast.Bye:
		return "*ast.Bye"
	case *ast.Gimmeback:
		return "*ast.Gimmeback"
	}
	return "unknown"
}

func TestMaybePredChain(t *testing.T) {
	prog := parseProgram(t, "maybe (1 == 2) { bye(1); } but (3 > 2) { bye(2); } nah { bye(3); }")
	maybe := prog.Stmts[0].(*ast.Maybe)
	but, ok := maybe.Pred.(*ast.But)
	if !ok {
		t.Fatalf("pred is %T, want *ast.But", maybe.Pred)
	}
	if _, ok := but.Pred.(*ast.Nah); !ok {
		t.Fatalf("chained pred is %T, want *ast.Nah", but.Pred)
	}
}

func TestThingyHeader(t *testing.T) {
	prog := parseProgram(t, "thingy greet(name: str): nothin { yell(name); }")
	thingy := prog.Stmts[0].(*ast.Thingy)
	if thingy.Name.Lexeme != "greet" {
		t.Errorf("name = %q, want greet", thingy.Name.Lexeme)
	}
	if len(thingy.Params) != 1 || thingy.Params[0].Type != ast.TypeString {
		t.Errorf("params = %v, want one str param", thingy.Params)
	}
	if thingy.ReturnType != ast.TypeNothin {
		t.Errorf("return type = %v, want nothin", thingy.ReturnType)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "missing semicolon",
			src:  "bye(0)",
			want: "Expected ';'",
		},
		{
			name: "missing open paren",
			src:  "bye 0;",
			want: "Expected '('",
		},
		{
			name: "missing operand",
			src:  "bye(1 +);",
			want: "Expected expression",
		},
		{
			name: "trailing comma in call",
			src:  "bye(add(1,));",
			want: "Expected expression",
		},
		{
			name: "missing close brace",
			src:  "maybe (1) { bye(0);",
			want: "Expected '}'",
		},
		{
			name: "missing type annotation",
			src:  "gimme x = 1;",
			want: "Expected ':'",
		},
		{
			name: "nothin as variable type",
			src:  "gimme x: nothin = 1;",
			want: "Expected type",
		},
		{
			name: "bare expression statement",
			src:  "1 + 2;",
			want: "Expected statement",
		},
		{
			name: "missing range dots",
			src:  "roundandround (i in 0 3) { }",
			want: "Expected '..'",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := parseError(t, tt.src)
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Parse() error = %q, want it to contain %q", err.Error(), tt.want)
			}
			if !strings.HasPrefix(err.Error(), "[Parse Error]") {
				t.Errorf("Parse() error = %q, want the [Parse Error] prefix", err.Error())
			}
		})
	}
}
