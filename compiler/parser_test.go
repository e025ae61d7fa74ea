package compiler

import (
	"math"
	"testing"
)

func parse(t *testing.T, input string) Expr {
	t.Helper()
	expr, err := ParseExpression(input)
	if err != nil {
		t.Fatalf("ParseExpression(%q) failed: %v", input, err)
	}
	return expr
}

// render round-trips through String, which encodes structure with
// explicit parentheses.
func render(t *testing.T, input string) string {
	t.Helper()
	return parse(t, input).String()
}

func TestParserNumber(t *testing.T) {
	expr := parse(t, "42")
	lit, ok := expr.(*NumberLiteral)
	if !ok {
		t.Fatalf("parsed %T, want *NumberLiteral", expr)
	}
	if lit.Value != 42 {
		t.Errorf("value = %v, want 42", lit.Value)
	}
}

func TestParserPrecedence(t *testing.T) {
	cases := []struct {
		input, want string
	}{
		{"1 + 2 * 3", "(1 + (2 * 3))"},
		{"1 * 2 + 3", "((1 * 2) + 3)"},
		{"10 % 3 + 1", "((10 % 3) + 1)"},
		{"2 * 3 ^ 2", "(2 * (3 ^ 2))"},
		{"(1 + 2) * 3", "((1 + 2) * 3)"},
		{"1 - 2 - 3", "((1 - 2) - 3)"},
	}
	for _, tc := range cases {
		if got := render(t, tc.input); got != tc.want {
			t.Errorf("parse(%q) = %s, want %s", tc.input, got, tc.want)
		}
	}
}

func TestParserPowerRightAssociative(t *testing.T) {
	if got := render(t, "2^3^2"); got != "(2 ^ (3 ^ 2))" {
		t.Errorf("parse(2^3^2) = %s, want (2 ^ (3 ^ 2))", got)
	}
}

func TestParserUnaryMinus(t *testing.T) {
	cases := []struct {
		input, want string
	}{
		{"-5", "(-5)"},
		{"--5", "(-(-5))"},
		{"-2^2", "((-2) ^ 2)"},
		{"3 - -2", "(3 - (-2))"},
	}
	for _, tc := range cases {
		if got := render(t, tc.input); got != tc.want {
			t.Errorf("parse(%q) = %s, want %s", tc.input, got, tc.want)
		}
	}
}

func TestParserFactorial(t *testing.T) {
	if got := render(t, "5!"); got != "(5!)" {
		t.Errorf("parse(5!) = %s, want (5!)", got)
	}
	// Repeated factorial nests.
	if got := render(t, "3!!"); got != "((3!)!)" {
		t.Errorf("parse(3!!) = %s, want ((3!)!)", got)
	}
	// Factorial binds tighter than power.
	if got := render(t, "2^3!"); got != "(2 ^ (3!))" {
		t.Errorf("parse(2^3!) = %s, want (2 ^ (3!))", got)
	}
}

func TestParserFunctions(t *testing.T) {
	expr := parse(t, "sin(90)")
	un, ok := expr.(*UnaryExpr)
	if !ok || un.Op != UnarySin {
		t.Fatalf("parsed %v, want sin call", expr)
	}

	if got := render(t, "gcd(12, 8)"); got != "gcd(12, 8)" {
		t.Errorf("parse(gcd(12, 8)) = %s", got)
	}
	if got := render(t, "nCr(5, 2)"); got != "nCr(5, 2)" {
		t.Errorf("parse(nCr(5, 2)) = %s", got)
	}
}

func TestParserNestedCalls(t *testing.T) {
	if got := render(t, "sqrt(abs(-16))"); got != "sqrt(abs((-16)))" {
		t.Errorf("parse(sqrt(abs(-16))) = %s", got)
	}
}

func TestParserConstants(t *testing.T) {
	expr := parse(t, "pi")
	lit, ok := expr.(*NumberLiteral)
	if !ok || lit.Value != math.Pi {
		t.Fatalf("parsed %v, want pi literal", expr)
	}
}

func TestParserArrays(t *testing.T) {
	expr := parse(t, "[1, 2, 3]")
	arr, ok := expr.(*ArrayLiteral)
	if !ok {
		t.Fatalf("parsed %T, want *ArrayLiteral", expr)
	}
	if len(arr.Elements) != 3 {
		t.Errorf("array has %d elements, want 3", len(arr.Elements))
	}

	// Empty arrays and expression elements parse too.
	empty := parse(t, "[]").(*ArrayLiteral)
	if len(empty.Elements) != 0 {
		t.Errorf("empty array has %d elements", len(empty.Elements))
	}
	if got := render(t, "sum([1 + 1, 2 * 2])"); got != "sum([(1 + 1), (2 * 2)])" {
		t.Errorf("parse(sum([1 + 1, 2 * 2])) = %s", got)
	}
}

func TestParserErrors(t *testing.T) {
	cases := []string{
		"",
		"1 +",
		"(1 + 2",
		"[1, 2",
		"sin 90",
		"sin(90",
		"gcd(12)",
		"gcd(12, 8,)",
		"1 2",
		"* 3",
	}
	for _, input := range cases {
		if _, err := ParseExpression(input); err == nil {
			t.Errorf("ParseExpression(%q) succeeded, want error", input)
		}
	}
}

func TestParserErrorPosition(t *testing.T) {
	_, err := ParseExpression("1 + + 2")
	parseErr, ok := err.(*ParseError)
	if !ok {
		t.Fatalf("error type = %T, want *ParseError", err)
	}
	if parseErr.Pos.Column != 5 {
		t.Errorf("error column = %d, want 5", parseErr.Pos.Column)
	}
}
