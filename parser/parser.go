// Recursive descent parser with precedence climbing for expressions.
// https://en.wikipedia.org/wiki/Operator-precedence_parser
//
// Statements are dispatched on their leading token(s); expressions are
// parsed by a single parseExpr(minPrec) recursion that handles all
// left-associative binary operators with the precedence table below.
package parser

import (
	"fmt"

	"github.com/Fabii137/Whacky/arena"
	"github.com/Fabii137/Whacky/ast"
	"github.com/Fabii137/Whacky/token"
)

// binaryPrecedence maps operator tokens to their precedence level,
// lowest first. All operators are left-associative.
var binaryPrecedence = map[token.TokenType]int{
	token.OR:           0,
	token.AND:          0,
	token.BOR:          1,
	token.BAND:         1,
	token.XOR:          1,
	token.EQUAL_EQUAL:  2,
	token.NOT_EQUAL:    2,
	token.LESS_EQUAL:   2,
	token.LARGER_EQUAL: 2,
	token.LESS:         2,
	token.LARGER:       2,
	token.ADD:          3,
	token.SUB:          3,
	token.MULT:         4,
	token.DIV:          4,
}

// tokenToBinOp maps operator tokens to the operator enum stored in
// binary AST nodes.
var tokenToBinOp = map[token.TokenType]ast.BinOp{
	token.OR:           ast.OpOr,
	token.AND:          ast.OpAnd,
	token.BAND:         ast.OpBand,
	token.BOR:          ast.OpBor,
	token.XOR:          ast.OpXor,
	token.NOT_EQUAL:    ast.OpNeq,
	token.EQUAL_EQUAL:  ast.OpEq,
	token.LARGER_EQUAL: ast.OpGe,
	token.LARGER:       ast.OpGt,
	token.LESS_EQUAL:   ast.OpLe,
	token.LESS:         ast.OpLt,
	token.ADD:          ast.OpAdd,
	token.SUB:          ast.OpSub,
	token.MULT:         ast.OpMul,
	token.DIV:          ast.OpDiv,
}

// typeTokens maps type keyword tokens to the Type enum. `nothin` is only
// accepted in function return position and handled separately.
var typeTokens = map[token.TokenType]ast.Type{
	token.TYPE_NUMBER: ast.TypeNumber,
	token.TYPE_STRING: ast.TypeString,
	token.TYPE_BOOL:   ast.TypeBool,
}

// Parser consumes the token stream and produces an arena-backed AST.
//
// NOTE: The parser's position indexes the current, not yet consumed
// token; previous() returns the last consumed one.
type Parser struct {
	tokens    []token.Token
	position  int
	allocator *arena.Arena
}

// Make initializes and returns a new Parser over the given tokens, with
// a fresh 4 MiB arena backing the AST nodes.
func Make(tokens []token.Token) *Parser {
	return &Parser{
		tokens:    tokens,
		position:  0,
		allocator: arena.New(arena.DefaultSize),
	}
}

// Arena exposes the parser's allocator, whose lifetime is the compile.
func (parser *Parser) Arena() *arena.Arena {
	return parser.allocator
}

// peek returns the token at the parser's current position without
// advancing.
func (parser *Parser) peek() token.Token {
	return parser.tokens[parser.position]
}

// previous retrieves the token at the parser's previous position.
func (parser *Parser) previous() token.Token {
	return parser.tokens[parser.position-1]
}

// advance increments the parser's position by one unit and consumes the
// current token.
func (parser *Parser) advance() token.Token {
	if !parser.isFinished() {
		parser.position++
	}
	return parser.previous()
}

// isFinished determines if the parser has consumed all the tokens.
func (parser *Parser) isFinished() bool {
	return parser.peek().TokenType == token.EOF
}

// checkType determines if the provided tokenType matches the token at
// the parser's current position.
func (parser *Parser) checkType(tokenType token.TokenType) bool {
	if parser.isFinished() {
		return false
	}
	return parser.peek().TokenType == tokenType
}

// isMatch consumes the current token if its type matches any of the
// provided tokenTypes.
func (parser *Parser) isMatch(tokenTypes ...token.TokenType) bool {
	for _, tokenType := range tokenTypes {
		if parser.checkType(tokenType) {
			parser.advance()
			return true
		}
	}
	return false
}

// errorExpected builds the canonical parse error. The location is the
// previous token's position (start-of-expected), falling back to the
// current token at the beginning of input.
func (parser *Parser) errorExpected(what string) SyntaxError {
	at := parser.peek()
	if parser.position > 0 {
		at = parser.previous()
	}
	return CreateSyntaxError(at.Line, at.Column, "Expected "+what)
}

// consume advances past the current token if it matches tokenType,
// otherwise it returns the canonical "Expected …" error.
func (parser *Parser) consume(tokenType token.TokenType, what string) (token.Token, error) {
	if parser.checkType(tokenType) {
		return parser.advance(), nil
	}
	return token.Token{}, parser.errorExpected(what)
}

// Parse parses the entire token stream into a Program. The first error
// aborts parsing; front-end errors are fatal.
func (parser *Parser) Parse() (prog *ast.Program, err error) {
	defer func() {
		if r := recover(); r != nil {
			if exhausted, ok := r.(arena.ErrExhausted); ok {
				prog = nil
				err = exhausted
				return
			}
			panic(r)
		}
	}()

	statements := []ast.Stmt{}
	for !parser.isFinished() {
		statement, stmtErr := parser.parseStmt()
		if stmtErr != nil {
			return nil, stmtErr
		}
		statements = append(statements, statement)
	}
	return &ast.Program{Stmts: statements}, nil
}

// parseTerm parses an atomic expression: a literal, an identifier, a
// call, or a parenthesised expression. It returns (nil, nil) when the
// current token cannot start a term.
func (parser *Parser) parseTerm() (ast.Expression, error) {
	switch {
	case parser.checkType(token.INT_LIT):
		return arena.Alloc(parser.allocator, ast.IntLit{Value: parser.advance()}), nil

	case parser.checkType(token.BOOL_LIT):
		return arena.Alloc(parser.allocator, ast.BoolLit{Value: parser.advance()}), nil

	case parser.checkType(token.STRING_LIT):
		return arena.Alloc(parser.allocator, ast.StringLit{Value: parser.advance()}), nil

	case parser.checkType(token.IDENTIFIER):
		name := parser.advance()
		if !parser.isMatch(token.LPA) {
			return arena.Alloc(parser.allocator, ast.Ident{Name: name}), nil
		}
		args := []ast.Expression{}
		if !parser.checkType(token.RPA) {
			for {
				arg, err := parser.parseExpr(0)
				if err != nil {
					return nil, err
				}
				if arg == nil {
					return nil, parser.errorExpected("expression")
				}
				args = append(args, arg)
				if !parser.isMatch(token.COMMA) {
					break
				}
			}
		}
		if _, err := parser.consume(token.RPA, "')'"); err != nil {
			return nil, err
		}
		return arena.Alloc(parser.allocator, ast.Call{Name: name, Args: args}), nil

	case parser.isMatch(token.LPA):
		inner, err := parser.parseExpr(0)
		if err != nil {
			return nil, err
		}
		if inner == nil {
			return nil, parser.errorExpected("expression")
		}
		if _, err := parser.consume(token.RPA, "')'"); err != nil {
			return nil, err
		}
		return arena.Alloc(parser.allocator, ast.Paren{Expression: inner}), nil
	}

	return nil, nil
}

// parseExpr parses an expression with precedence climbing. It returns
// (nil, nil) when no term starts at the current position; a missing
// right operand of a binary operator is a parse error.
func (parser *Parser) parseExpr(minPrec int) (ast.Expression, error) {
	left, err := parser.parseTerm()
	if err != nil || left == nil {
		return left, err
	}

	for {
		current := parser.peek()
		prec, isOperator := binaryPrecedence[current.TokenType]
		if !isOperator || prec < minPrec {
			break
		}
		parser.advance()

		right, err := parser.parseExpr(prec + 1)
		if err != nil {
			return nil, err
		}
		if right == nil {
			return nil, parser.errorExpected("expression")
		}

		left = arena.Alloc(parser.allocator, ast.BinExpr{
			Op:    tokenToBinOp[current.TokenType],
			Left:  left,
			Right: right,
		})
	}

	return left, nil
}

// requireExpr parses an expression and turns "no term" into the
// canonical parse error.
func (parser *Parser) requireExpr() (ast.Expression, error) {
	expr, err := parser.parseExpr(0)
	if err != nil {
		return nil, err
	}
	if expr == nil {
		return nil, parser.errorExpected("expression")
	}
	return expr, nil
}

// parseType consumes a value type keyword (number, str, bool).
func (parser *Parser) parseType() (ast.Type, error) {
	if t, ok := typeTokens[parser.peek().TokenType]; ok {
		parser.advance()
		return t, nil
	}
	return 0, parser.errorExpected("type")
}

// parseReturnType consumes a return type keyword, which additionally
// allows `nothin`.
func (parser *Parser) parseReturnType() (ast.Type, error) {
	if parser.isMatch(token.TYPE_NOTHIN) {
		return ast.TypeNothin, nil
	}
	return parser.parseType()
}

// parseScope parses `{ stmt* }` into a Scope node.
func (parser *Parser) parseScope() (*ast.Scope, error) {
	if _, err := parser.consume(token.LCUR, "'{'"); err != nil {
		return nil, err
	}
	statements := []ast.Stmt{}
	for !parser.checkType(token.RCUR) {
		if parser.isFinished() {
			return nil, parser.errorExpected("'}'")
		}
		stmt, err := parser.parseStmt()
		if err != nil {
			return nil, err
		}
		statements = append(statements, stmt)
	}
	parser.advance() // }
	return arena.Alloc(parser.allocator, ast.Scope{Stmts: statements}), nil
}

// parsePred parses the optional else chain of a maybe statement:
// `but ( expr ) scope pred?` or `nah scope`. A `nah` terminates the
// chain. Returns (nil, nil) when no chain link follows.
func (parser *Parser) parsePred() (ast.Pred, error) {
	if parser.isMatch(token.BUT) {
		if _, err := parser.consume(token.LPA, "'('"); err != nil {
			return nil, err
		}
		condition, err := parser.requireExpr()
		if err != nil {
			return nil, err
		}
		if _, err := parser.consume(token.RPA, "')'"); err != nil {
			return nil, err
		}
		body, err := parser.parseScope()
		if err != nil {
			return nil, err
		}
		pred, err := parser.parsePred()
		if err != nil {
			return nil, err
		}
		return arena.Alloc(parser.allocator, ast.But{Condition: condition, Then: body, Pred: pred}), nil
	}

	if parser.isMatch(token.NAH) {
		body, err := parser.parseScope()
		if err != nil {
			return nil, err
		}
		return arena.Alloc(parser.allocator, ast.Nah{Body: body}), nil
	}

	return nil, nil
}

// parseStmt dispatches on the statement's leading token(s).
func (parser *Parser) parseStmt() (ast.Stmt, error) {
	switch {
	case parser.isMatch(token.BYE):
		return parser.parseBye()
	case parser.isMatch(token.GIMME):
		return parser.parseGimme()
	case parser.isMatch(token.YELL):
		return parser.parseYell()
	case parser.isMatch(token.THINGY):
		return parser.parseThingy()
	case parser.isMatch(token.GIMMEBACK):
		return parser.parseGimmeback()
	case parser.isMatch(token.ROUNDANDROUND):
		return parser.parseFor()
	case parser.isMatch(token.KEEPGOING):
		return parser.parseWhile()
	case parser.isMatch(token.MAYBE):
		return parser.parseMaybe()
	case parser.checkType(token.LCUR):
		return parser.parseScope()
	case parser.checkType(token.IDENTIFIER):
		return parser.parseAssignment()
	}
	at := parser.peek()
	return nil, CreateSyntaxError(at.Line, at.Column, fmt.Sprintf("Expected statement, got '%s'", at.Lexeme))
}

// parseBye parses `bye ( expr ) ;` (the `bye` keyword is consumed).
func (parser *Parser) parseBye() (ast.Stmt, error) {
	if _, err := parser.consume(token.LPA, "'('"); err != nil {
		return nil, err
	}
	expr, err := parser.requireExpr()
	if err != nil {
		return nil, err
	}
	if _, err := parser.consume(token.RPA, "')'"); err != nil {
		return nil, err
	}
	if _, err := parser.consume(token.SEMICOLON, "';'"); err != nil {
		return nil, err
	}
	return arena.Alloc(parser.allocator, ast.Bye{Expression: expr}), nil
}

// parseGimme parses `gimme ident : type = expr ;`.
func (parser *Parser) parseGimme() (ast.Stmt, error) {
	name, err := parser.consume(token.IDENTIFIER, "variable name")
	if err != nil {
		return nil, err
	}
	if _, err := parser.consume(token.COLON, "':'"); err != nil {
		return nil, err
	}
	varType, err := parser.parseType()
	if err != nil {
		return nil, err
	}
	if _, err := parser.consume(token.ASSIGN, "'='"); err != nil {
		return nil, err
	}
	initializer, err := parser.requireExpr()
	if err != nil {
		return nil, err
	}
	if _, err := parser.consume(token.SEMICOLON, "';'"); err != nil {
		return nil, err
	}
	return arena.Alloc(parser.allocator, ast.Gimme{Name: name, Type: varType, Initializer: initializer}), nil
}

// parseAssignment parses `ident = expr ;`.
func (parser *Parser) parseAssignment() (ast.Stmt, error) {
	name := parser.advance()
	if _, err := parser.consume(token.ASSIGN, "'='"); err != nil {
		return nil, err
	}
	value, err := parser.requireExpr()
	if err != nil {
		return nil, err
	}
	if _, err := parser.consume(token.SEMICOLON, "';'"); err != nil {
		return nil, err
	}
	return arena.Alloc(parser.allocator, ast.Assign{Name: name, Value: value}), nil
}

// parseYell parses `yell ( expr ) ;`.
func (parser *Parser) parseYell() (ast.Stmt, error) {
	if _, err := parser.consume(token.LPA, "'('"); err != nil {
		return nil, err
	}
	expr, err := parser.requireExpr()
	if err != nil {
		return nil, err
	}
	if _, err := parser.consume(token.RPA, "')'"); err != nil {
		return nil, err
	}
	if _, err := parser.consume(token.SEMICOLON, "';'"); err != nil {
		return nil, err
	}
	return arena.Alloc(parser.allocator, ast.Yell{Expression: expr}), nil
}

// parseMaybe parses `maybe ( expr ) scope pred?`.
func (parser *Parser) parseMaybe() (ast.Stmt, error) {
	if _, err := parser.consume(token.LPA, "'('"); err != nil {
		return nil, err
	}
	condition, err := parser.requireExpr()
	if err != nil {
		return nil, err
	}
	if _, err := parser.consume(token.RPA, "')'"); err != nil {
		return nil, err
	}
	body, err := parser.parseScope()
	if err != nil {
		return nil, err
	}
	pred, err := parser.parsePred()
	if err != nil {
		return nil, err
	}
	return arena.Alloc(parser.allocator, ast.Maybe{Condition: condition, Then: body, Pred: pred}), nil
}

// parseThingy parses `thingy ident ( paramList ) : type scope`. The
// parameter list is comma separated, possibly empty, each entry being
// `ident : type`.
func (parser *Parser) parseThingy() (ast.Stmt, error) {
	name, err := parser.consume(token.IDENTIFIER, "function name")
	if err != nil {
		return nil, err
	}
	if _, err := parser.consume(token.LPA, "'('"); err != nil {
		return nil, err
	}
	params := []ast.Param{}
	if !parser.checkType(token.RPA) {
		for {
			paramName, err := parser.consume(token.IDENTIFIER, "parameter name")
			if err != nil {
				return nil, err
			}
			if _, err := parser.consume(token.COLON, "':'"); err != nil {
				return nil, err
			}
			paramType, err := parser.parseType()
			if err != nil {
				return nil, err
			}
			params = append(params, ast.Param{Name: paramName, Type: paramType})
			if !parser.isMatch(token.COMMA) {
				break
			}
		}
	}
	if _, err := parser.consume(token.RPA, "')'"); err != nil {
		return nil, err
	}
	if _, err := parser.consume(token.COLON, "':'"); err != nil {
		return nil, err
	}
	returnType, err := parser.parseReturnType()
	if err != nil {
		return nil, err
	}
	body, err := parser.parseScope()
	if err != nil {
		return nil, err
	}
	return arena.Alloc(parser.allocator, ast.Thingy{
		Name:       name,
		Params:     params,
		ReturnType: returnType,
		Body:       body,
	}), nil
}

// parseGimmeback parses `gimmeback expr ;`.
func (parser *Parser) parseGimmeback() (ast.Stmt, error) {
	expr, err := parser.requireExpr()
	if err != nil {
		return nil, err
	}
	if _, err := parser.consume(token.SEMICOLON, "';'"); err != nil {
		return nil, err
	}
	return arena.Alloc(parser.allocator, ast.Gimmeback{Expression: expr}), nil
}

// parseFor parses `roundandround ( ident in expr .. expr ) scope`.
func (parser *Parser) parseFor() (ast.Stmt, error) {
	if _, err := parser.consume(token.LPA, "'('"); err != nil {
		return nil, err
	}
	name, err := parser.consume(token.IDENTIFIER, "loop variable")
	if err != nil {
		return nil, err
	}
	if _, err := parser.consume(token.IN, "'in'"); err != nil {
		return nil, err
	}
	start, err := parser.requireExpr()
	if err != nil {
		return nil, err
	}
	if _, err := parser.consume(token.DOT, "'..'"); err != nil {
		return nil, err
	}
	if _, err := parser.consume(token.DOT, "'..'"); err != nil {
		return nil, err
	}
	end, err := parser.requireExpr()
	if err != nil {
		return nil, err
	}
	if _, err := parser.consume(token.RPA, "')'"); err != nil {
		return nil, err
	}
	body, err := parser.parseScope()
	if err != nil {
		return nil, err
	}
	return arena.Alloc(parser.allocator, ast.For{Name: name, Start: start, End: end, Body: body}), nil
}

// parseWhile parses `keepgoing ( expr ) scope`.
func (parser *Parser) parseWhile() (ast.Stmt, error) {
	if _, err := parser.consume(token.LPA, "'('"); err != nil {
		return nil, err
	}
	condition, err := parser.requireExpr()
	if err != nil {
		return nil, err
	}
	if _, err := parser.consume(token.RPA, "')'"); err != nil {
		return nil, err
	}
	body, err := parser.parseScope()
	if err != nil {
		return nil, err
	}
	return arena.Alloc(parser.allocator, ast.While{Condition: condition, Body: body}), nil
}
