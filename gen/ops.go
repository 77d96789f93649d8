// ops.go is the operation emitter: it writes the assembly fragment for
// a single binary operator given the operand types. Operands are
// expected on the native stack with the left operand's bytes on top;
// every emitter pops its operands and pushes the result.

package gen

import (
	"fmt"

	"github.com/Fabii137/Whacky/ast"
)

// emitArithmetic handles + - * /. Number operands use rax/rbx directly;
// string concatenation and repetition call into the runtime.
func (g *Generator) emitArithmetic(op ast.BinOp, leftType, rightType ast.Type) error {
	switch op {
	case ast.OpAdd:
		if leftType == ast.TypeString && rightType == ast.TypeString {
			g.emitStrcat()
			return nil
		}
		if leftType == ast.TypeString || rightType == ast.TypeString {
			// Number+String types as String but the runtime has no
			// number-to-string conversion to lower it with.
			return CreateGeneratorError("String concatenation requires string operands on both sides")
		}
		g.pop("rax")
		g.pop("rbx")
		g.text.WriteString("\tadd rax, rbx\n")
		g.push("rax")

	case ast.OpSub:
		g.pop("rax")
		g.pop("rbx")
		g.text.WriteString("\tsub rax, rbx\n")
		g.push("rax")

	case ast.OpMul:
		if leftType == ast.TypeString || rightType == ast.TypeString {
			g.emitStrmul(leftType)
			return nil
		}
		g.pop("rax")
		g.pop("rbx")
		g.text.WriteString("\tmul rbx\n")
		g.push("rax")

	case ast.OpDiv:
		g.pop("rax")
		g.pop("rbx")
		g.text.WriteString("\tdiv rbx\n")
		g.push("rax")

	default:
		return CreateGeneratorError(fmt.Sprintf("Unknown arithmetic operator: %s", op))
	}
	return nil
}

// emitStrcat lowers String+String. The left string's bytes are on top:
// length, pointer, then the right string's length and pointer below.
// An 8-byte slot on the stack receives the result length.
func (g *Generator) emitStrcat() {
	g.pop("rsi") // left length
	g.pop("rdi") // left pointer
	g.pop("rcx") // right length
	g.pop("rdx") // right pointer
	g.text.WriteString("\tsub rsp, 8\n")
	g.stackSize += 8
	g.text.WriteString("\tmov r8, rsp\n")
	g.text.WriteString("\tcall __whacky_strcat\n")
	g.text.WriteString("\tmov rbx, rax\n")
	g.pop("rax") // result length from the out slot
	g.push("rbx")
	g.push("rax")
}

// emitStrmul lowers String*Number in either operand order. rdi/rsi take
// the string, rdx the repetition count.
func (g *Generator) emitStrmul(leftType ast.Type) {
	if leftType == ast.TypeString {
		g.pop("rsi") // string length
		g.pop("rdi") // string pointer
		g.pop("rdx") // count
	} else {
		g.pop("rdx") // count
		g.pop("rsi") // string length
		g.pop("rdi") // string pointer
	}
	g.text.WriteString("\tsub rsp, 8\n")
	g.stackSize += 8
	g.text.WriteString("\tmov rcx, rsp\n")
	g.text.WriteString("\tcall __whacky_strmul\n")
	g.text.WriteString("\tmov rbx, rax\n")
	g.pop("rax")
	g.push("rbx")
	g.push("rax")
}

// emitComparison handles == != < <= > >=. Equality over strings
// compares pointers; the checker rejects string ordering.
func (g *Generator) emitComparison(op ast.BinOp) error {
	g.pop("rax")
	g.pop("rbx")
	g.text.WriteString("\tcmp rax, rbx\n")

	switch op {
	case ast.OpEq:
		g.text.WriteString("\tsete al\n")
	case ast.OpNeq:
		g.text.WriteString("\tsetne al\n")
	case ast.OpLt:
		g.text.WriteString("\tsetl al\n")
	case ast.OpLe:
		g.text.WriteString("\tsetle al\n")
	case ast.OpGt:
		g.text.WriteString("\tsetg al\n")
	case ast.OpGe:
		g.text.WriteString("\tsetge al\n")
	default:
		return CreateGeneratorError(fmt.Sprintf("Unknown comparison operator: %s", op))
	}

	g.text.WriteString("\tmovzx rax, al\n")
	g.push("rax")
	return nil
}

// emitLogical handles and/or. Both operands are coerced to 0/1 first;
// there is no short-circuiting.
func (g *Generator) emitLogical(op ast.BinOp) error {
	g.pop("rax")
	g.pop("rbx")
	g.text.WriteString("\tcmp rax, 0\n")
	g.text.WriteString("\tsetne al\n")
	g.text.WriteString("\tmovzx rax, al\n")
	g.text.WriteString("\tcmp rbx, 0\n")
	g.text.WriteString("\tsetne bl\n")
	g.text.WriteString("\tmovzx rbx, bl\n")

	switch op {
	case ast.OpAnd:
		g.text.WriteString("\tand rax, rbx\n")
	case ast.OpOr:
		g.text.WriteString("\tor rax, rbx\n")
	default:
		return CreateGeneratorError(fmt.Sprintf("Unknown logical operator: %s", op))
	}

	g.push("rax")
	return nil
}

// emitBitwise handles band/bor/xor.
func (g *Generator) emitBitwise(op ast.BinOp) error {
	g.pop("rax")
	g.pop("rbx")

	switch op {
	case ast.OpBand:
		g.text.WriteString("\tand rax, rbx\n")
	case ast.OpBor:
		g.text.WriteString("\tor rax, rbx\n")
	case ast.OpXor:
		g.text.WriteString("\txor rax, rbx\n")
	default:
		return CreateGeneratorError(fmt.Sprintf("Unknown bitwise operator: %s", op))
	}

	g.push("rax")
	return nil
}
