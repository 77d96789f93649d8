// expressions.go contains all the expression AST nodes. An expression node always evaluates to a value.

package ast

import (
	"github.com/Fabii137/Whacky/token"
)

// IntLit represents an integer literal term (e.g., "42").
type IntLit struct {
	Value token.Token // An INT_LIT token
}

func (intLit *IntLit) Accept(v ExpressionVisitor) any {
	return v.VisitIntLit(intLit)
}

// BoolLit represents a boolean literal term. The token carries "1" for
// `yep` and "0" for `nope`; the boolean type is preserved by the kind.
type BoolLit struct {
	Value token.Token // A BOOL_LIT token
}

func (boolLit *BoolLit) Accept(v ExpressionVisitor) any {
	return v.VisitBoolLit(boolLit)
}

// StringLit represents a string literal term. The token holds the raw
// contents between the quotes; escape expansion happens at emission.
type StringLit struct {
	Value token.Token // A STRING_LIT token
}

func (stringLit *StringLit) Accept(v ExpressionVisitor) any {
	return v.VisitStringLit(stringLit)
}

// Ident represents the retrieval of a value previously bound to a
// variable name.
type Ident struct {
	Name token.Token // An IDENTIFIER token
}

func (ident *Ident) Accept(v ExpressionVisitor) any {
	return v.VisitIdent(ident)
}

// Paren represents a parenthesized expression (e.g., "(a + b)").
// Useful for controlling evaluation precedence.
type Paren struct {
	Expression Expression // The inner expression inside the parentheses
}

func (paren *Paren) Accept(v ExpressionVisitor) any {
	return v.VisitParen(paren)
}

// Call represents a function call term: a callee name and an ordered
// argument list, possibly empty.
type Call struct {
	Name token.Token // An IDENTIFIER token naming the thingy
	Args []Expression
}

func (call *Call) Accept(v ExpressionVisitor) any {
	return v.VisitCall(call)
}

// BinExpr represents a binary operation expression (e.g., "a + b").
// It stores one operator enum plus left and right operands; there is no
// per-operator node type.
type BinExpr struct {
	Op    BinOp
	Left  Expression
	Right Expression
}

func (binary *BinExpr) Accept(v ExpressionVisitor) any {
	return v.VisitBinary(binary)
}
