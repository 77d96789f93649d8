// Package gen implements the code generator: a stack-machine lowering
// of the AST onto the native stack, emitting NASM x86-64 assembly for
// Linux. Every expression evaluation leaves its result on top of the
// stack; a mirrored logical stack-size counter drives frame-relative
// offset arithmetic.
package gen

import (
	"fmt"
	"strings"

	"github.com/Fabii137/Whacky/ast"
	"github.com/Fabii137/Whacky/checker"
	"github.com/Fabii137/Whacky/scope"
)

// functionContext tracks the thingy currently being emitted. The entry
// watermark is always zero: a function body starts with a fresh logical
// stack, so gimmeback cleans up everything above it.
type functionContext struct {
	returnType     ast.Type
	savedStackSize int
}

// Generator lowers a Program to assembly text. It owns the scope stack,
// the label mint, the string-literal pool, and the two output builders
// (.data and .text), concatenated once at the end.
type Generator struct {
	prog *ast.Program

	text strings.Builder
	data strings.Builder

	scopes    scope.Stack
	stackSize int

	labelCount   int
	literals     map[string]string
	literalCount int

	checker   *checker.TypeChecker
	currentFn *functionContext
}

// New creates a Generator for the given program.
func New(prog *ast.Program) *Generator {
	g := &Generator{
		prog:     prog,
		literals: make(map[string]string),
	}
	g.checker = checker.New(&g.scopes)
	return g
}

// Generate emits the whole program and returns the assembly text:
// the .data section followed by the .text section.
func (g *Generator) Generate() (string, error) {
	g.data.WriteString("section .data\n")

	g.text.WriteString("section .text\n")
	g.text.WriteString("global _start\n")
	g.text.WriteString("extern __whacky_strcat\n")
	g.text.WriteString("extern __whacky_strmul\n\n")

	g.enterScope()

	// Function definitions first, in code-section order.
	for _, stmt := range g.prog.Stmts {
		if thingy, ok := stmt.(*ast.Thingy); ok {
			if err := g.genStmt(thingy); err != nil {
				return "", err
			}
		}
	}

	g.text.WriteString("_start:\n")
	g.text.WriteString("\tpush rbp\n")
	g.text.WriteString("\tmov rbp, rsp\n")

	for _, stmt := range g.prog.Stmts {
		if _, ok := stmt.(*ast.Thingy); ok {
			continue
		}
		if err := g.genStmt(stmt); err != nil {
			return "", err
		}
	}

	g.leaveScope()

	g.text.WriteString("\tpop rbp\n")
	g.text.WriteString("\tmov rax, 60\n")
	g.text.WriteString("\tmov rdi, 0\n")
	g.text.WriteString("\tsyscall\n")

	return g.data.String() + "\n" + g.text.String(), nil
}

// push emits a push of the given operand and advances the logical
// stack size by one qword.
func (g *Generator) push(operand string) {
	g.text.WriteString("\tpush " + operand + "\n")
	g.stackSize += 8
}

// pop emits a pop into the given register and shrinks the logical
// stack size by one qword.
func (g *Generator) pop(register string) {
	g.text.WriteString("\tpop " + register + "\n")
	g.stackSize -= 8
}

// createLabel mints a unique label from a monotonic counter, prefixed
// for readability.
func (g *Generator) createLabel(prefix string) string {
	label := fmt.Sprintf("%s%d", prefix, g.labelCount)
	g.labelCount++
	return label
}

// enterScope pushes a frame whose watermark is the current stack size.
func (g *Generator) enterScope() {
	g.scopes.Enter(g.stackSize)
}

// leaveScope restores the stack pointer to the frame's watermark and
// pops the frame.
func (g *Generator) leaveScope() {
	watermark := g.scopes.Leave()
	if n := g.stackSize - watermark; n > 0 {
		g.text.WriteString(fmt.Sprintf("\tadd rsp, %d\n", n))
	}
	g.stackSize = watermark
}

// declareVar reserves a stack slot for a new local in the current
// frame. Redeclaration inside the same scope is an error.
func (g *Generator) declareVar(name string, varType ast.Type) (scope.Variable, error) {
	if g.scopes.DeclaredInCurrent(name) {
		return scope.Variable{}, CreateGeneratorError(fmt.Sprintf("Redeclaration of '%s' in the same scope", name))
	}
	size := varType.Size()
	g.text.WriteString(fmt.Sprintf("\tsub rsp, %d\n", size))
	g.stackSize += size
	variable := scope.Variable{
		Size:     size,
		Type:     varType,
		StackLoc: g.stackSize,
		IsParam:  false,
	}
	g.scopes.DeclareVar(name, variable)
	return variable, nil
}

// varAddr renders the frame-relative operand of a variable's slot.
// disp 0 addresses the value (a string's pointer); disp 8 addresses a
// string's length, 8 bytes above the pointer for locals and 8 bytes
// below it for parameters.
func varAddr(v scope.Variable, disp int) string {
	if v.IsParam {
		return fmt.Sprintf("[rbp + %d]", v.StackLoc-disp)
	}
	return fmt.Sprintf("[rbp - %d]", v.StackLoc-disp)
}

// loadVar pushes a variable's value onto the stack machine. Strings
// push pointer then length so the length ends up on top.
func (g *Generator) loadVar(v scope.Variable) {
	if v.Type == ast.TypeString {
		g.push("qword " + varAddr(v, 0))
		g.push("qword " + varAddr(v, 8))
		return
	}
	g.push("qword " + varAddr(v, 0))
}

// storeVar pops the value on top of the stack machine into a
// variable's slot; the inverse of loadVar.
func (g *Generator) storeVar(v scope.Variable) {
	if v.Type == ast.TypeString {
		g.pop("rax")
		g.text.WriteString("\tmov qword " + varAddr(v, 8) + ", rax\n")
		g.pop("rax")
		g.text.WriteString("\tmov qword " + varAddr(v, 0) + ", rax\n")
		return
	}
	g.pop("rax")
	g.text.WriteString("\tmov qword " + varAddr(v, 0) + ", rax\n")
}

// genStmt dispatches a statement node, converting the visitor result
// back into an error.
func (g *Generator) genStmt(stmt ast.Stmt) error {
	if err, ok := stmt.Accept(g).(error); ok {
		return err
	}
	return nil
}

// genExpr dispatches an expression node; afterwards its value lies on
// top of the stack machine.
func (g *Generator) genExpr(expr ast.Expression) error {
	if err, ok := expr.Accept(g).(error); ok {
		return err
	}
	return nil
}

// checkExpr runs the type checker and reports its findings as
// generator errors.
func (g *Generator) checkExpr(expr ast.Expression) (ast.Type, error) {
	exprType, err := g.checker.CheckExpr(expr)
	if err != nil {
		return exprType, CreateGeneratorError(err.Error())
	}
	return exprType, nil
}

// ---- expression visitor ----

func (g *Generator) VisitIntLit(intLit *ast.IntLit) any {
	g.text.WriteString("\tmov rax, " + intLit.Value.Lexeme + "\n")
	g.push("rax")
	return nil
}

func (g *Generator) VisitBoolLit(boolLit *ast.BoolLit) any {
	g.text.WriteString("\tmov rax, " + boolLit.Value.Lexeme + "\n")
	g.push("rax")
	return nil
}

func (g *Generator) VisitStringLit(stringLit *ast.StringLit) any {
	label := g.internLiteral(stringLit.Value.Lexeme)
	g.push(label)
	g.push(label + "_len")
	return nil
}

func (g *Generator) VisitIdent(ident *ast.Ident) any {
	variable, ok := g.scopes.LookupVar(ident.Name.Lexeme)
	if !ok {
		return CreateGeneratorError("Undeclared identifier: " + ident.Name.Lexeme)
	}
	g.loadVar(variable)
	return nil
}

func (g *Generator) VisitParen(paren *ast.Paren) any {
	return paren.Expression.Accept(g)
}

func (g *Generator) VisitCall(call *ast.Call) any {
	name := call.Name.Lexeme
	fn, ok := g.scopes.LookupFunction(name)
	if !ok {
		return CreateGeneratorError("Undeclared function: " + name)
	}

	// Arguments are pushed right-to-left so argument 0 ends up at the
	// lowest address.
	for i := len(call.Args) - 1; i >= 0; i-- {
		if err := g.genExpr(call.Args[i]); err != nil {
			return err
		}
	}

	g.text.WriteString("\tcall " + fn.Label + "\n")

	totalSize := 0
	for _, paramType := range fn.ParamTypes {
		totalSize += paramType.Size()
	}
	if totalSize > 0 {
		g.text.WriteString(fmt.Sprintf("\tadd rsp, %d\n", totalSize))
		g.stackSize -= totalSize
	}

	if fn.ReturnType == ast.TypeString {
		g.push("rax")
		g.push("rdx")
	} else {
		g.push("rax")
	}
	return nil
}

func (g *Generator) VisitBinary(binary *ast.BinExpr) any {
	leftType, err := g.checkExpr(binary.Left)
	if err != nil {
		return err
	}
	rightType, err := g.checkExpr(binary.Right)
	if err != nil {
		return err
	}

	// Right operand first so the left operand's bytes end up on top.
	if err := g.genExpr(binary.Right); err != nil {
		return err
	}
	if err := g.genExpr(binary.Left); err != nil {
		return err
	}

	switch binary.Op {
	case ast.OpAdd, ast.OpSub, ast.OpMul, ast.OpDiv:
		return errOrNil(g.emitArithmetic(binary.Op, leftType, rightType))
	case ast.OpEq, ast.OpNeq, ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe:
		// A string operand is compared by its pointer: drop the length
		// qwords so one qword per operand is left for the comparison.
		if leftType == ast.TypeString || rightType == ast.TypeString {
			if leftType == ast.TypeString {
				g.pop("rcx") // left length
			}
			g.pop("rax")
			if rightType == ast.TypeString {
				g.pop("rcx") // right length
			}
			g.pop("rbx")
			g.push("rbx")
			g.push("rax")
		}
		return errOrNil(g.emitComparison(binary.Op))
	case ast.OpAnd, ast.OpOr:
		return errOrNil(g.emitLogical(binary.Op))
	case ast.OpBand, ast.OpBor, ast.OpXor:
		return errOrNil(g.emitBitwise(binary.Op))
	}
	return CreateGeneratorError(fmt.Sprintf("Unknown binary operator: %s", binary.Op))
}

// errOrNil keeps a typed nil error from leaking into the visitor's any
// result.
func errOrNil(err error) any {
	if err != nil {
		return err
	}
	return nil
}

// ---- statement visitor ----

func (g *Generator) VisitBye(stmt *ast.Bye) any {
	exprType, err := g.checkExpr(stmt.Expression)
	if err != nil {
		return err
	}
	if exprType != ast.TypeNumber {
		return CreateGeneratorError("bye expects a number, got " + exprType.Name())
	}
	if err := g.genExpr(stmt.Expression); err != nil {
		return err
	}
	g.pop("rdi")
	g.text.WriteString("\tmov rax, 60\n")
	g.text.WriteString("\tsyscall\n")
	return nil
}

func (g *Generator) VisitYell(stmt *ast.Yell) any {
	exprType, err := g.checkExpr(stmt.Expression)
	if err != nil {
		return err
	}
	if exprType != ast.TypeString {
		return CreateGeneratorError("yell expects a str, got " + exprType.Name())
	}
	if err := g.genExpr(stmt.Expression); err != nil {
		return err
	}
	g.text.WriteString("\tmov rax, 1\n")
	g.text.WriteString("\tmov rdi, 1\n")
	g.pop("rdx")
	g.pop("rsi")
	g.text.WriteString("\tsyscall\n")
	return nil
}

func (g *Generator) VisitGimme(stmt *ast.Gimme) any {
	name := stmt.Name.Lexeme
	exprType, err := g.checkExpr(stmt.Initializer)
	if err != nil {
		return err
	}
	if exprType != stmt.Type {
		return CreateGeneratorError(fmt.Sprintf("Type mismatch in declaration of '%s': expected %s, got %s",
			name, stmt.Type.Name(), exprType.Name()))
	}
	variable, err := g.declareVar(name, stmt.Type)
	if err != nil {
		return err
	}
	if err := g.genExpr(stmt.Initializer); err != nil {
		return err
	}
	g.storeVar(variable)
	return nil
}

func (g *Generator) VisitAssign(stmt *ast.Assign) any {
	name := stmt.Name.Lexeme
	variable, ok := g.scopes.LookupVar(name)
	if !ok {
		return CreateGeneratorError("Assignment to undeclared variable: " + name)
	}
	exprType, err := g.checkExpr(stmt.Value)
	if err != nil {
		return err
	}
	if exprType != variable.Type {
		return CreateGeneratorError(fmt.Sprintf("Type mismatch in assignment to '%s': expected %s, got %s",
			name, variable.Type.Name(), exprType.Name()))
	}
	if err := g.genExpr(stmt.Value); err != nil {
		return err
	}
	g.storeVar(variable)
	return nil
}

func (g *Generator) VisitScope(stmt *ast.Scope) any {
	g.enterScope()
	for _, s := range stmt.Stmts {
		if err := g.genStmt(s); err != nil {
			return err
		}
	}
	g.leaveScope()
	return nil
}

func (g *Generator) VisitMaybe(stmt *ast.Maybe) any {
	if _, err := g.checkExpr(stmt.Condition); err != nil {
		return err
	}
	if err := g.genExpr(stmt.Condition); err != nil {
		return err
	}
	g.pop("rax")
	g.text.WriteString("\tcmp rax, 0\n")

	falseLabel := g.createLabel("maybe")
	g.text.WriteString("\tjz " + falseLabel + "\n")
	if err := g.genStmt(stmt.Then); err != nil {
		return err
	}

	if stmt.Pred != nil {
		endLabel := g.createLabel("maybe_end")
		g.text.WriteString("\tjmp " + endLabel + "\n")
		g.text.WriteString(falseLabel + ":\n")
		if err := g.genPred(stmt.Pred, endLabel); err != nil {
			return err
		}
		g.text.WriteString(endLabel + ":\n")
	} else {
		g.text.WriteString(falseLabel + ":\n")
	}
	return nil
}

// genPred emits one link of a maybe's else chain. Every conditional
// link jumps to endLabel after its scope; a nah simply runs its scope
// and falls through.
func (g *Generator) genPred(pred ast.Pred, endLabel string) error {
	switch p := pred.(type) {
	case *ast.But:
		if _, err := g.checkExpr(p.Condition); err != nil {
			return err
		}
		if err := g.genExpr(p.Condition); err != nil {
			return err
		}
		g.pop("rax")
		g.text.WriteString("\tcmp rax, 0\n")
		nextLabel := g.createLabel("but")
		g.text.WriteString("\tjz " + nextLabel + "\n")
		if err := g.genStmt(p.Then); err != nil {
			return err
		}
		g.text.WriteString("\tjmp " + endLabel + "\n")
		g.text.WriteString(nextLabel + ":\n")
		if p.Pred != nil {
			return g.genPred(p.Pred, endLabel)
		}
		return nil

	case *ast.Nah:
		return g.genStmt(p.Body)
	}
	return CreateGeneratorError("Unknown pred variant")
}

func (g *Generator) VisitWhile(stmt *ast.While) any {
	startLabel := g.createLabel("why_start")
	endLabel := g.createLabel("why_end")

	g.text.WriteString(startLabel + ":\n")
	if _, err := g.checkExpr(stmt.Condition); err != nil {
		return err
	}
	if err := g.genExpr(stmt.Condition); err != nil {
		return err
	}
	g.pop("rax")
	g.text.WriteString("\tcmp rax, 0\n")
	g.text.WriteString("\tjz " + endLabel + "\n")
	if err := g.genStmt(stmt.Body); err != nil {
		return err
	}
	g.text.WriteString("\tjmp " + startLabel + "\n")
	g.text.WriteString(endLabel + ":\n")
	return nil
}

func (g *Generator) VisitFor(stmt *ast.For) any {
	startType, err := g.checkExpr(stmt.Start)
	if err != nil {
		return err
	}
	if startType != ast.TypeNumber {
		return CreateGeneratorError("roundandround bounds must be numbers, got " + startType.Name())
	}
	endType, err := g.checkExpr(stmt.End)
	if err != nil {
		return err
	}
	if endType != ast.TypeNumber {
		return CreateGeneratorError("roundandround bounds must be numbers, got " + endType.Name())
	}

	// The loop variable lives in its own scope wrapping the body.
	g.enterScope()
	variable, err := g.declareVar(stmt.Name.Lexeme, ast.TypeNumber)
	if err != nil {
		return err
	}
	if err := g.genExpr(stmt.Start); err != nil {
		return err
	}
	g.storeVar(variable)

	startLabel := g.createLabel("loop_start")
	endLabel := g.createLabel("loop_end")

	g.text.WriteString(startLabel + ":\n")
	if err := g.genExpr(stmt.End); err != nil {
		return err
	}
	g.pop("rax")
	// Exit once end <= i: the upper bound is exclusive.
	g.text.WriteString("\tcmp rax, " + varAddr(variable, 0) + "\n")
	g.text.WriteString("\tjle " + endLabel + "\n")
	if err := g.genStmt(stmt.Body); err != nil {
		return err
	}
	g.text.WriteString("\tadd qword " + varAddr(variable, 0) + ", 1\n")
	g.text.WriteString("\tjmp " + startLabel + "\n")
	g.text.WriteString(endLabel + ":\n")

	g.leaveScope()
	return nil
}

func (g *Generator) VisitThingy(stmt *ast.Thingy) any {
	name := stmt.Name.Lexeme
	if g.currentFn != nil || g.scopes.Depth() != 1 {
		return CreateGeneratorError("Function definitions are only allowed at top level: " + name)
	}
	if g.scopes.DeclaredInCurrent(name) {
		return CreateGeneratorError(fmt.Sprintf("Redeclaration of '%s' in the same scope", name))
	}

	label := g.createLabel(name)
	paramTypes := make([]ast.Type, 0, len(stmt.Params))
	for _, param := range stmt.Params {
		paramTypes = append(paramTypes, param.Type)
	}
	// Declared before the body so the thingy can call itself.
	g.scopes.DeclareFunction(name, scope.Function{
		ParamTypes: paramTypes,
		ReturnType: stmt.ReturnType,
		Label:      label,
	})

	g.text.WriteString(label + ":\n")
	g.text.WriteString("\tpush rbp\n")
	g.text.WriteString("\tmov rbp, rsp\n")

	g.currentFn = &functionContext{
		returnType:     stmt.ReturnType,
		savedStackSize: g.stackSize,
	}
	g.stackSize = 0
	g.enterScope()

	// Parameters start at [rbp + 16], above the saved rbp and the
	// return address. A string parameter's pointer slot sits 8 bytes
	// above its length slot.
	offset := 16
	for _, param := range stmt.Params {
		paramName := param.Name.Lexeme
		if g.scopes.DeclaredInCurrent(paramName) {
			return CreateGeneratorError(fmt.Sprintf("Redeclaration of '%s' in the same scope", paramName))
		}
		size := param.Type.Size()
		stackLoc := offset
		if param.Type == ast.TypeString {
			stackLoc = offset + 8
		}
		g.scopes.DeclareVar(paramName, scope.Variable{
			Size:     size,
			Type:     param.Type,
			StackLoc: stackLoc,
			IsParam:  true,
		})
		offset += size
	}

	for _, s := range stmt.Body.Stmts {
		if err := g.genStmt(s); err != nil {
			return err
		}
	}

	g.leaveScope()
	g.text.WriteString("\tpop rbp\n")
	g.text.WriteString("\tret\n\n")

	g.stackSize = g.currentFn.savedStackSize
	g.currentFn = nil
	return nil
}

func (g *Generator) VisitGimmeback(stmt *ast.Gimmeback) any {
	if g.currentFn == nil {
		return CreateGeneratorError("gimmeback outside of a thingy")
	}
	exprType, err := g.checkExpr(stmt.Expression)
	if err != nil {
		return err
	}
	if exprType != g.currentFn.returnType {
		return CreateGeneratorError(fmt.Sprintf("Type mismatch in gimmeback: expected %s, got %s",
			g.currentFn.returnType.Name(), exprType.Name()))
	}
	if err := g.genExpr(stmt.Expression); err != nil {
		return err
	}

	if exprType == ast.TypeString {
		g.pop("rdx")
		g.pop("rax")
	} else {
		g.pop("rax")
	}

	// Clean up against the function's entry watermark, not just the
	// innermost scope, so returns from nested scopes do not leak
	// stack bytes. The logical stack size is untouched: emission of
	// the surrounding scope continues past the ret.
	if g.stackSize > 0 {
		g.text.WriteString(fmt.Sprintf("\tadd rsp, %d\n", g.stackSize))
	}
	g.text.WriteString("\tpop rbp\n")
	g.text.WriteString("\tret\n")
	return nil
}
