package compiler

import (
	"fmt"
	"strings"
)

// ---------------------------------------------------------------------------
// AST: Abstract syntax tree for calculator expressions
// ---------------------------------------------------------------------------

// Position represents a source location.
type Position struct {
	Offset int // byte offset
	Line   int // 1-based line number
	Column int // 1-based column number
}

// Span represents a range in source code.
type Span struct {
	Start Position
	End   Position
}

// Expr is the interface implemented by all expression nodes.
type Expr interface {
	Span() Span
	String() string
	expr() // marker method
}

// UnaryOp identifies a one-operand operation.
type UnaryOp int

const (
	UnaryNeg UnaryOp = iota
	UnaryFact
	UnarySin
	UnaryCos
	UnaryTan
	UnaryAsin
	UnaryAcos
	UnaryAtan
	UnarySinh
	UnaryCosh
	UnaryTanh
	UnarySqrt
	UnaryCbrt
	UnaryLog
	UnaryLog2
	UnaryLn
	UnaryExp
	UnaryAbs
	UnaryFloor
	UnaryCeil
	UnaryRound
	UnarySign
	UnaryToRad
	UnaryToDeg
	UnarySum
	UnaryAvg
	UnaryMin
	UnaryMax
	UnaryLen
)

var unaryOpNames = map[UnaryOp]string{
	UnaryNeg: "-", UnaryFact: "!",
	UnarySin: "sin", UnaryCos: "cos", UnaryTan: "tan",
	UnaryAsin: "asin", UnaryAcos: "acos", UnaryAtan: "atan",
	UnarySinh: "sinh", UnaryCosh: "cosh", UnaryTanh: "tanh",
	UnarySqrt: "sqrt", UnaryCbrt: "cbrt",
	UnaryLog: "log", UnaryLog2: "log2", UnaryLn: "ln", UnaryExp: "exp",
	UnaryAbs: "abs", UnaryFloor: "floor", UnaryCeil: "ceil",
	UnaryRound: "round", UnarySign: "sign",
	UnaryToRad: "rad", UnaryToDeg: "deg",
	UnarySum: "sum", UnaryAvg: "avg", UnaryMin: "min", UnaryMax: "max",
	UnaryLen: "len",
}

func (op UnaryOp) String() string {
	if name, ok := unaryOpNames[op]; ok {
		return name
	}
	return fmt.Sprintf("UnaryOp(%d)", int(op))
}

// BinaryOp identifies a two-operand operation.
type BinaryOp int

const (
	BinAdd BinaryOp = iota
	BinSub
	BinMul
	BinDiv
	BinPow
	BinMod
	BinGcd
	BinLcm
	BinNpr
	BinNcr
)

var binaryOpNames = map[BinaryOp]string{
	BinAdd: "+", BinSub: "-", BinMul: "*", BinDiv: "/",
	BinPow: "^", BinMod: "%",
	BinGcd: "gcd", BinLcm: "lcm", BinNpr: "nPr", BinNcr: "nCr",
}

func (op BinaryOp) String() string {
	if name, ok := binaryOpNames[op]; ok {
		return name
	}
	return fmt.Sprintf("BinaryOp(%d)", int(op))
}

// isFunctionForm reports whether the operator renders as f(a, b) rather
// than infix.
func (op BinaryOp) isFunctionForm() bool {
	return op >= BinGcd
}

// ---------------------------------------------------------------------------
// Expression nodes
// ---------------------------------------------------------------------------

// NumberLiteral represents a numeric literal or a named constant.
type NumberLiteral struct {
	SpanVal Span
	Value   float64
}

func (n *NumberLiteral) Span() Span { return n.SpanVal }
func (n *NumberLiteral) expr()      {}

func (n *NumberLiteral) String() string {
	return formatNumber(n.Value)
}

// ArrayLiteral represents an array literal like [1, 2, 3].
type ArrayLiteral struct {
	SpanVal  Span
	Elements []Expr
}

func (n *ArrayLiteral) Span() Span { return n.SpanVal }
func (n *ArrayLiteral) expr()      {}

func (n *ArrayLiteral) String() string {
	parts := make([]string, len(n.Elements))
	for i, e := range n.Elements {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// UnaryExpr represents a prefix operator or a one-argument function call.
type UnaryExpr struct {
	SpanVal Span
	Op      UnaryOp
	Operand Expr
}

func (n *UnaryExpr) Span() Span { return n.SpanVal }
func (n *UnaryExpr) expr()      {}

func (n *UnaryExpr) String() string {
	switch n.Op {
	case UnaryNeg:
		return fmt.Sprintf("(-%s)", n.Operand)
	case UnaryFact:
		return fmt.Sprintf("(%s!)", n.Operand)
	default:
		return fmt.Sprintf("%s(%s)", n.Op, n.Operand)
	}
}

// BinaryExpr represents an infix operator or a two-argument function call.
type BinaryExpr struct {
	SpanVal Span
	Op      BinaryOp
	Left    Expr
	Right   Expr
}

func (n *BinaryExpr) Span() Span { return n.SpanVal }
func (n *BinaryExpr) expr()      {}

func (n *BinaryExpr) String() string {
	if n.Op.isFunctionForm() {
		return fmt.Sprintf("%s(%s, %s)", n.Op, n.Left, n.Right)
	}
	return fmt.Sprintf("(%s %s %s)", n.Left, n.Op, n.Right)
}

// formatNumber renders integers without a trailing ".0".
func formatNumber(v float64) string {
	if v == float64(int64(v)) && v > -1e10 && v < 1e10 {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%v", v)
}
