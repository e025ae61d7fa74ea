package compiler

import (
	"fmt"

	"github.com/bytecalc/bytecalc/pkg/bytecode"
)

// ---------------------------------------------------------------------------
// Codegen: Compile AST to bytecode
// ---------------------------------------------------------------------------

// unaryOpcodes maps AST unary operators to their opcodes.
var unaryOpcodes = map[UnaryOp]bytecode.Opcode{
	UnaryNeg:   bytecode.OpNeg,
	UnaryFact:  bytecode.OpFactorial,
	UnarySin:   bytecode.OpSin,
	UnaryCos:   bytecode.OpCos,
	UnaryTan:   bytecode.OpTan,
	UnaryAsin:  bytecode.OpAsin,
	UnaryAcos:  bytecode.OpAcos,
	UnaryAtan:  bytecode.OpAtan,
	UnarySinh:  bytecode.OpSinh,
	UnaryCosh:  bytecode.OpCosh,
	UnaryTanh:  bytecode.OpTanh,
	UnarySqrt:  bytecode.OpSqrt,
	UnaryCbrt:  bytecode.OpCbrt,
	UnaryLog:   bytecode.OpLog,
	UnaryLog2:  bytecode.OpLog2,
	UnaryLn:    bytecode.OpLn,
	UnaryExp:   bytecode.OpExp,
	UnaryAbs:   bytecode.OpAbs,
	UnaryFloor: bytecode.OpFloor,
	UnaryCeil:  bytecode.OpCeil,
	UnaryRound: bytecode.OpRound,
	UnarySign:  bytecode.OpSign,
	UnaryToRad: bytecode.OpToRad,
	UnaryToDeg: bytecode.OpToDeg,
	UnarySum:   bytecode.OpSum,
	UnaryAvg:   bytecode.OpAvg,
	UnaryMin:   bytecode.OpMin,
	UnaryMax:   bytecode.OpMax,
	UnaryLen:   bytecode.OpLen,
}

// binaryOpcodes maps AST binary operators to their opcodes.
var binaryOpcodes = map[BinaryOp]bytecode.Opcode{
	BinAdd: bytecode.OpAdd,
	BinSub: bytecode.OpSub,
	BinMul: bytecode.OpMul,
	BinDiv: bytecode.OpDiv,
	BinPow: bytecode.OpPow,
	BinMod: bytecode.OpMod,
	BinGcd: bytecode.OpGcd,
	BinLcm: bytecode.OpLcm,
	BinNpr: bytecode.OpNpr,
	BinNcr: bytecode.OpNcr,
}

// Generator compiles an expression tree into a bytecode chunk. Code is
// emitted in post-order so each operation finds its operands on the stack.
type Generator struct {
	chunk *bytecode.Chunk
}

// NewGenerator creates a code generator with an empty chunk.
func NewGenerator() *Generator {
	return &Generator{chunk: bytecode.NewChunk()}
}

// Generate compiles the expression and terminates the chunk with HALT.
func (g *Generator) Generate(expr Expr) (*bytecode.Chunk, error) {
	if err := g.emit(expr); err != nil {
		return nil, err
	}
	g.chunk.WriteOp(bytecode.OpHalt, lineOf(expr))
	return g.chunk, nil
}

func (g *Generator) emit(expr Expr) error {
	line := lineOf(expr)

	switch e := expr.(type) {
	case *NumberLiteral:
		g.chunk.WritePush(e.Value, line)

	case *ArrayLiteral:
		for _, element := range e.Elements {
			if err := g.emit(element); err != nil {
				return err
			}
		}
		g.chunk.WritePushArray(uint64(len(e.Elements)), line)

	case *UnaryExpr:
		if err := g.emit(e.Operand); err != nil {
			return err
		}
		op, ok := unaryOpcodes[e.Op]
		if !ok {
			return fmt.Errorf("compiler: no opcode for unary operator %s", e.Op)
		}
		g.chunk.WriteOp(op, line)

	case *BinaryExpr:
		if err := g.emit(e.Left); err != nil {
			return err
		}
		if err := g.emit(e.Right); err != nil {
			return err
		}
		op, ok := binaryOpcodes[e.Op]
		if !ok {
			return fmt.Errorf("compiler: no opcode for binary operator %s", e.Op)
		}
		g.chunk.WriteOp(op, line)

	default:
		return fmt.Errorf("compiler: unknown expression node %T", expr)
	}

	return nil
}

func lineOf(expr Expr) int {
	line := expr.Span().Start.Line
	if line == 0 {
		line = 1
	}
	return line
}

// Compile lexes, parses and compiles input into an executable chunk.
func Compile(input string) (*bytecode.Chunk, error) {
	expr, err := ParseExpression(input)
	if err != nil {
		return nil, err
	}
	return NewGenerator().Generate(expr)
}
