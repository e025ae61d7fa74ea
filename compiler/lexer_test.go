package compiler

import (
	"math"
	"testing"
)

func lex(t *testing.T, input string) []Token {
	t.Helper()
	tokens, err := Tokenize(input)
	if err != nil {
		t.Fatalf("Tokenize(%q) failed: %v", input, err)
	}
	return tokens
}

func TestLexerBasicExpression(t *testing.T) {
	tokens := lex(t, "sin(90) + 2^3")

	wantTypes := []TokenType{
		TokenFunc, TokenLParen, TokenNumber, TokenRParen,
		TokenPlus, TokenNumber, TokenCaret, TokenNumber,
	}
	if len(tokens) != len(wantTypes) {
		t.Fatalf("got %d tokens, want %d", len(tokens), len(wantTypes))
	}
	for i, want := range wantTypes {
		if tokens[i].Type != want {
			t.Errorf("token %d = %s, want %s", i, tokens[i].Type, want)
		}
	}
	if tokens[0].Literal != "sin" {
		t.Errorf("function literal = %q, want \"sin\"", tokens[0].Literal)
	}
	if tokens[2].Value != 90 {
		t.Errorf("number value = %v, want 90", tokens[2].Value)
	}
}

func TestLexerArrayExpression(t *testing.T) {
	tokens := lex(t, "sum([1, 2, 3])")

	wantTypes := []TokenType{
		TokenFunc, TokenLParen, TokenLBracket,
		TokenNumber, TokenComma, TokenNumber, TokenComma, TokenNumber,
		TokenRBracket, TokenRParen,
	}
	if len(tokens) != len(wantTypes) {
		t.Fatalf("got %d tokens, want %d", len(tokens), len(wantTypes))
	}
	for i, want := range wantTypes {
		if tokens[i].Type != want {
			t.Errorf("token %d = %s, want %s", i, tokens[i].Type, want)
		}
	}
}

func TestLexerNumbers(t *testing.T) {
	cases := []struct {
		input string
		want  float64
	}{
		{"42", 42},
		{"3.14", 3.14},
		{".5", 0.5},
		{"1.5e10", 1.5e10},
		{"2E-3", 2e-3},
		{"1e+6", 1e6},
	}
	for _, tc := range cases {
		tokens := lex(t, tc.input)
		if len(tokens) != 1 || tokens[0].Type != TokenNumber {
			t.Fatalf("Tokenize(%q) = %v, want one NUMBER", tc.input, tokens)
		}
		if tokens[0].Value != tc.want {
			t.Errorf("Tokenize(%q) value = %v, want %v", tc.input, tokens[0].Value, tc.want)
		}
	}
}

func TestLexerFactorial(t *testing.T) {
	tokens := lex(t, "5!")
	if len(tokens) != 2 || tokens[0].Type != TokenNumber || tokens[1].Type != TokenBang {
		t.Fatalf("Tokenize(\"5!\") = %v, want NUMBER BANG", tokens)
	}
}

func TestLexerDoubleStarPower(t *testing.T) {
	tokens := lex(t, "2 ** 3")
	if len(tokens) != 3 || tokens[1].Type != TokenCaret {
		t.Fatalf("** did not lex as the power operator: %v", tokens)
	}
}

func TestLexerUnicodeOperators(t *testing.T) {
	tokens := lex(t, "6 × 2 ÷ 3")
	wantTypes := []TokenType{TokenNumber, TokenStar, TokenNumber, TokenSlash, TokenNumber}
	for i, want := range wantTypes {
		if tokens[i].Type != want {
			t.Errorf("token %d = %s, want %s", i, tokens[i].Type, want)
		}
	}
}

func TestLexerConstants(t *testing.T) {
	cases := []struct {
		input string
		want  float64
	}{
		{"pi", math.Pi},
		{"PI", math.Pi},
		{"π", math.Pi},
		{"e", math.E},
		{"tau", 2 * math.Pi},
		{"τ", 2 * math.Pi},
		{"phi", goldenRatio},
		{"φ", goldenRatio},
		{"golden", goldenRatio},
	}
	for _, tc := range cases {
		tokens := lex(t, tc.input)
		if len(tokens) != 1 || tokens[0].Type != TokenConst {
			t.Fatalf("Tokenize(%q) = %v, want one CONST", tc.input, tokens)
		}
		if tokens[0].Value != tc.want {
			t.Errorf("Tokenize(%q) value = %v, want %v", tc.input, tokens[0].Value, tc.want)
		}
	}
}

func TestLexerFunctionAliases(t *testing.T) {
	cases := []struct {
		input, canonical string
	}{
		{"arcsin", "asin"},
		{"log10", "log"},
		{"sgn", "sign"},
		{"mean", "avg"},
		{"length", "len"},
		{"perm", "npr"},
		{"choose", "ncr"},
		{"torad", "rad"},
	}
	for _, tc := range cases {
		tokens := lex(t, tc.input)
		if len(tokens) != 1 || tokens[0].Type != TokenFunc {
			t.Fatalf("Tokenize(%q) = %v, want one FUNC", tc.input, tokens)
		}
		if tokens[0].Literal != tc.canonical {
			t.Errorf("alias %q resolved to %q, want %q", tc.input, tokens[0].Literal, tc.canonical)
		}
	}
}

func TestLexerUnknownIdentifier(t *testing.T) {
	if _, err := Tokenize("foo(1)"); err == nil {
		t.Error("unknown identifier lexed without error")
	}
}

func TestLexerUnexpectedCharacter(t *testing.T) {
	if _, err := Tokenize("1 @ 2"); err == nil {
		t.Error("unexpected character lexed without error")
	}
}

func TestLexerPositions(t *testing.T) {
	tokens := lex(t, "1 +\n2")
	if tokens[0].Pos.Line != 1 || tokens[0].Pos.Column != 1 {
		t.Errorf("token 0 at %d:%d, want 1:1", tokens[0].Pos.Line, tokens[0].Pos.Column)
	}
	if tokens[2].Pos.Line != 2 {
		t.Errorf("token after newline on line %d, want 2", tokens[2].Pos.Line)
	}
}
