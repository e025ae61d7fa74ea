package compiler

import (
	"fmt"
	"math"
)

// ---------------------------------------------------------------------------
// Token types for calculator expressions
// ---------------------------------------------------------------------------

// TokenType represents the type of a token.
type TokenType int

const (
	// Special tokens
	TokenEOF TokenType = iota
	TokenError

	// Literals
	TokenNumber // 42, 3.14, 1.5e10

	// Operators
	TokenPlus    // +
	TokenMinus   // -
	TokenStar    // * or ×
	TokenSlash   // / or ÷
	TokenCaret   // ^ or **
	TokenPercent // %
	TokenBang    // ! (postfix factorial)

	// Delimiters
	TokenLParen   // (
	TokenRParen   // )
	TokenLBracket // [
	TokenRBracket // ]
	TokenComma    // ,

	// Names
	TokenFunc  // sin, sqrt, gcd, ... (canonical name in Literal)
	TokenConst // pi, e, tau, phi (resolved value in Value)
)

var tokenNames = map[TokenType]string{
	TokenEOF:      "EOF",
	TokenError:    "ERROR",
	TokenNumber:   "NUMBER",
	TokenPlus:     "+",
	TokenMinus:    "-",
	TokenStar:     "*",
	TokenSlash:    "/",
	TokenCaret:    "^",
	TokenPercent:  "%",
	TokenBang:     "!",
	TokenLParen:   "(",
	TokenRParen:   ")",
	TokenLBracket: "[",
	TokenRBracket: "]",
	TokenComma:    ",",
	TokenFunc:     "FUNC",
	TokenConst:    "CONST",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Token(%d)", t)
}

// Token represents a lexical token.
type Token struct {
	Type    TokenType
	Literal string   // the raw or canonical text
	Value   float64  // numeric value for TokenNumber and TokenConst
	Pos     Position // start position
}

func (t Token) String() string {
	switch t.Type {
	case TokenEOF:
		return "EOF"
	case TokenError:
		return fmt.Sprintf("ERROR(%s)", t.Literal)
	case TokenNumber:
		return fmt.Sprintf("NUMBER(%v)", t.Value)
	case TokenFunc, TokenConst:
		return fmt.Sprintf("%s(%s)", t.Type, t.Literal)
	default:
		return t.Type.String()
	}
}

// functionNames maps every accepted spelling of a function to its canonical
// name. The parser keys its operator tables on the canonical form.
var functionNames = map[string]string{
	// Trigonometric
	"sin": "sin", "cos": "cos", "tan": "tan",
	"asin": "asin", "arcsin": "asin",
	"acos": "acos", "arccos": "acos",
	"atan": "atan", "arctan": "atan",

	// Hyperbolic
	"sinh": "sinh", "cosh": "cosh", "tanh": "tanh",

	// Mathematical
	"sqrt": "sqrt", "cbrt": "cbrt",
	"log": "log", "log10": "log", "log2": "log2", "ln": "ln",
	"exp": "exp", "abs": "abs",
	"floor": "floor", "ceil": "ceil", "round": "round",
	"sign": "sign", "sgn": "sign",

	// Array reductions
	"sum": "sum",
	"avg": "avg", "mean": "avg", "average": "avg",
	"min": "min", "max": "max",
	"len": "len", "length": "len", "count": "len",

	// Combinatorics
	"gcd": "gcd", "lcm": "lcm",
	"npr": "npr", "perm": "npr",
	"ncr": "ncr", "comb": "ncr", "choose": "ncr",

	// Conversion
	"rad": "rad", "torad": "rad",
	"deg": "deg", "todeg": "deg",
}

// goldenRatio is (1 + sqrt 5) / 2.
const goldenRatio = 1.618033988749895

// constantValues maps constant names to their values.
var constantValues = map[string]float64{
	"pi":     math.Pi,
	"e":      math.E,
	"tau":    2 * math.Pi,
	"phi":    goldenRatio,
	"golden": goldenRatio,
}
