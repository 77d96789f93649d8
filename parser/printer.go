package parser

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/samber/lo"

	"github.com/Fabii137/Whacky/ast"
)

// astPrinter implements the visitor interfaces and builds a
// JSON-friendly representation of the AST using maps and slices.
// Each Visit method returns an object that can be marshaled to JSON.
type astPrinter struct{}

func (p astPrinter) VisitBye(stmt *ast.Bye) any {
	return map[string]any{
		"type":       "Bye",
		"expression": stmt.Expression.Accept(p),
	}
}

func (p astPrinter) VisitGimme(stmt *ast.Gimme) any {
	return map[string]any{
		"type":        "Gimme",
		"name":        stmt.Name.Lexeme,
		"varType":     stmt.Type.Name(),
		"initializer": stmt.Initializer.Accept(p),
	}
}

func (p astPrinter) VisitAssign(stmt *ast.Assign) any {
	return map[string]any{
		"type":  "Assign",
		"name":  stmt.Name.Lexeme,
		"value": stmt.Value.Accept(p),
	}
}

func (p astPrinter) VisitScope(stmt *ast.Scope) any {
	return map[string]any{
		"type": "Scope",
		"statements": lo.Map(stmt.Stmts, func(s ast.Stmt, _ int) any {
			return s.Accept(p)
		}),
	}
}

func (p astPrinter) VisitMaybe(stmt *ast.Maybe) any {
	var predVal any
	if stmt.Pred != nil {
		predVal = stmt.Pred.Accept(p)
	}
	return map[string]any{
		"type":      "Maybe",
		"condition": stmt.Condition.Accept(p),
		"then":      stmt.Then.Accept(p),
		"pred":      predVal,
	}
}

func (p astPrinter) VisitYell(stmt *ast.Yell) any {
	return map[string]any{
		"type":       "Yell",
		"expression": stmt.Expression.Accept(p),
	}
}

func (p astPrinter) VisitThingy(stmt *ast.Thingy) any {
	return map[string]any{
		"type": "Thingy",
		"name": stmt.Name.Lexeme,
		"params": lo.Map(stmt.Params, func(param ast.Param, _ int) any {
			return map[string]any{
				"name":    param.Name.Lexeme,
				"varType": param.Type.Name(),
			}
		}),
		"returnType": stmt.ReturnType.Name(),
		"body":       stmt.Body.Accept(p),
	}
}

func (p astPrinter) VisitGimmeback(stmt *ast.Gimmeback) any {
	return map[string]any{
		"type":       "Gimmeback",
		"expression": stmt.Expression.Accept(p),
	}
}

func (p astPrinter) VisitFor(stmt *ast.For) any {
	return map[string]any{
		"type":  "For",
		"name":  stmt.Name.Lexeme,
		"start": stmt.Start.Accept(p),
		"end":   stmt.End.Accept(p),
		"body":  stmt.Body.Accept(p),
	}
}

func (p astPrinter) VisitWhile(stmt *ast.While) any {
	return map[string]any{
		"type":      "While",
		"condition": stmt.Condition.Accept(p),
		"body":      stmt.Body.Accept(p),
	}
}

func (p astPrinter) VisitBut(pred *ast.But) any {
	var predVal any
	if pred.Pred != nil {
		predVal = pred.Pred.Accept(p)
	}
	return map[string]any{
		"type":      "But",
		"condition": pred.Condition.Accept(p),
		"then":      pred.Then.Accept(p),
		"pred":      predVal,
	}
}

func (p astPrinter) VisitNah(pred *ast.Nah) any {
	return map[string]any{
		"type": "Nah",
		"body": pred.Body.Accept(p),
	}
}

func (p astPrinter) VisitIntLit(intLit *ast.IntLit) any {
	return map[string]any{
		"type":  "IntLit",
		"value": intLit.Value.Lexeme,
	}
}

func (p astPrinter) VisitBoolLit(boolLit *ast.BoolLit) any {
	return map[string]any{
		"type":  "BoolLit",
		"value": boolLit.Value.Lexeme,
	}
}

func (p astPrinter) VisitStringLit(stringLit *ast.StringLit) any {
	return map[string]any{
		"type":  "StringLit",
		"value": stringLit.Value.Lexeme,
	}
}

func (p astPrinter) VisitIdent(ident *ast.Ident) any {
	return map[string]any{
		"type": "Ident",
		"name": ident.Name.Lexeme,
	}
}

func (p astPrinter) VisitParen(paren *ast.Paren) any {
	return map[string]any{
		"type":       "Paren",
		"expression": paren.Expression.Accept(p),
	}
}

func (p astPrinter) VisitCall(call *ast.Call) any {
	return map[string]any{
		"type": "Call",
		"name": call.Name.Lexeme,
		"args": lo.Map(call.Args, func(arg ast.Expression, _ int) any {
			return arg.Accept(p)
		}),
	}
}

func (p astPrinter) VisitBinary(binary *ast.BinExpr) any {
	return map[string]any{
		"type":     "Binary",
		"operator": binary.Op.String(),
		"left":     binary.Left.Accept(p),
		"right":    binary.Right.Accept(p),
	}
}

// PrintASTJSON converts a program into a prettified JSON string.
func PrintASTJSON(prog *ast.Program) (string, error) {
	printer := astPrinter{}
	out := lo.Map(prog.Stmts, func(s ast.Stmt, _ int) any {
		return s.Accept(printer)
	})
	bytes, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// WriteASTJSONToFile writes the prettified AST JSON to the given file path.
func WriteASTJSONToFile(prog *ast.Program, path string) error {
	s, err := PrintASTJSON(prog)
	if err != nil {
		return err
	}
	fDescriptor, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating AST file: %s", err.Error())
	}
	defer fDescriptor.Close()

	if _, err := fDescriptor.Write([]byte(s)); err != nil {
		return fmt.Errorf("error writing AST to file: %s", err.Error())
	}
	return nil
}
