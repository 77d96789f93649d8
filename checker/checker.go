// Package checker implements the type checker: a pure, read-only walk
// of expression trees against the scope stack. The generator invokes it
// at specific points (initialisers, assignment RHS, binary operands,
// bye, yell, call arguments) so type errors carry scope context.
package checker

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/Fabii137/Whacky/ast"
	"github.com/Fabii137/Whacky/scope"
)

// ScopeView is the read-only view of the scope stack the checker
// consults. The generator's scope stack implements it; the checker
// never mutates scopes.
type ScopeView interface {
	LookupVar(name string) (scope.Variable, bool)
	LookupFunction(name string) (scope.Function, bool)
}

// result carries a typing outcome through the visitor dispatch.
type result struct {
	typ ast.Type
	err error
}

func valid(t ast.Type) result {
	return result{typ: t}
}

func invalid(format string, args ...any) result {
	return result{err: fmt.Errorf(format, args...)}
}

// TypeChecker types expressions against a scope view. It holds no
// mutable state of its own.
type TypeChecker struct {
	scopes ScopeView
}

// New creates a TypeChecker reading the given scope view.
func New(scopes ScopeView) *TypeChecker {
	return &TypeChecker{scopes: scopes}
}

// CheckExpr returns the type of expr, or an error describing the first
// typing violation found.
func (checker *TypeChecker) CheckExpr(expr ast.Expression) (ast.Type, error) {
	res := expr.Accept(checker).(result)
	return res.typ, res.err
}

func (checker *TypeChecker) VisitIntLit(*ast.IntLit) any {
	return valid(ast.TypeNumber)
}

func (checker *TypeChecker) VisitBoolLit(*ast.BoolLit) any {
	return valid(ast.TypeBool)
}

func (checker *TypeChecker) VisitStringLit(*ast.StringLit) any {
	return valid(ast.TypeString)
}

func (checker *TypeChecker) VisitIdent(ident *ast.Ident) any {
	variable, ok := checker.scopes.LookupVar(ident.Name.Lexeme)
	if !ok {
		return invalid("Undeclared identifier: %s", ident.Name.Lexeme)
	}
	return valid(variable.Type)
}

func (checker *TypeChecker) VisitParen(paren *ast.Paren) any {
	return paren.Expression.Accept(checker)
}

func (checker *TypeChecker) VisitCall(call *ast.Call) any {
	name := call.Name.Lexeme
	fn, ok := checker.scopes.LookupFunction(name)
	if !ok {
		return invalid("Undeclared function: %s", name)
	}

	if len(call.Args) != len(fn.ParamTypes) {
		expected := strings.Join(lo.Map(fn.ParamTypes, func(t ast.Type, _ int) string {
			return t.Name()
		}), ", ")
		return invalid("Argument count mismatch for function: %s. Expected: %d (%s). Count: %d",
			name, len(fn.ParamTypes), expected, len(call.Args))
	}

	for i, arg := range call.Args {
		argType, err := checker.CheckExpr(arg)
		if err != nil {
			return result{err: err}
		}
		if argType != fn.ParamTypes[i] {
			return invalid("Type mismatch in argument %d of function '%s'. Expected %s, got %s",
				i, name, fn.ParamTypes[i].Name(), argType.Name())
		}
	}

	return valid(fn.ReturnType)
}

func (checker *TypeChecker) VisitBinary(binary *ast.BinExpr) any {
	leftType, err := checker.CheckExpr(binary.Left)
	if err != nil {
		return result{err: err}
	}
	rightType, err := checker.CheckExpr(binary.Right)
	if err != nil {
		return result{err: err}
	}

	switch binary.Op {
	case ast.OpAdd:
		if leftType == ast.TypeString || rightType == ast.TypeString {
			return valid(ast.TypeString)
		}
		if leftType == ast.TypeNumber && rightType == ast.TypeNumber {
			return valid(ast.TypeNumber)
		}
		return invalid("Invalid types for addition: cannot add %s and %s",
			leftType.Name(), rightType.Name())

	case ast.OpMul:
		if (leftType == ast.TypeString && rightType == ast.TypeNumber) ||
			(leftType == ast.TypeNumber && rightType == ast.TypeString) {
			return valid(ast.TypeString)
		}
		if leftType == ast.TypeNumber && rightType == ast.TypeNumber {
			return valid(ast.TypeNumber)
		}
		return invalid("Invalid types for multiplication: cannot multiply %s and %s",
			leftType.Name(), rightType.Name())

	case ast.OpSub, ast.OpDiv:
		if leftType != ast.TypeNumber || rightType != ast.TypeNumber {
			return invalid("Arithmetic operations require numbers")
		}
		return valid(ast.TypeNumber)

	case ast.OpEq, ast.OpNeq:
		return valid(ast.TypeBool)

	case ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe:
		if leftType == ast.TypeString || rightType == ast.TypeString {
			return invalid("Comparison operations not supported on strings")
		}
		return valid(ast.TypeBool)

	case ast.OpAnd, ast.OpOr:
		return valid(ast.TypeBool)

	case ast.OpBand, ast.OpBor, ast.OpXor:
		if leftType == ast.TypeString || rightType == ast.TypeString {
			return invalid("Bitwise operations not supported on strings")
		}
		return valid(ast.TypeNumber)
	}

	return invalid("Unknown binary operator")
}
