package compiler

import "fmt"

// ---------------------------------------------------------------------------
// Parser: Recursive descent parser for calculator expressions
// ---------------------------------------------------------------------------
//
// Grammar:
//   expression -> term (('+' | '-') term)*
//   term       -> factor (('*' | '/' | '%') factor)*
//   factor     -> unary ('^' factor)?          right associative
//   unary      -> '-' unary | postfix
//   postfix    -> call ('!')*
//   call       -> FUNC '(' expression (',' expression)? ')' | primary
//   primary    -> NUMBER | CONST | '(' expression ')' | array
//   array      -> '[' (expression (',' expression)*)? ']'

// ParseError describes a syntax error with its source position.
type ParseError struct {
	Message string
	Pos     Position
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at line %d, column %d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

// unaryFuncs maps canonical one-argument function names to their operators.
var unaryFuncs = map[string]UnaryOp{
	"sin": UnarySin, "cos": UnaryCos, "tan": UnaryTan,
	"asin": UnaryAsin, "acos": UnaryAcos, "atan": UnaryAtan,
	"sinh": UnarySinh, "cosh": UnaryCosh, "tanh": UnaryTanh,
	"sqrt": UnarySqrt, "cbrt": UnaryCbrt,
	"log": UnaryLog, "log2": UnaryLog2, "ln": UnaryLn, "exp": UnaryExp,
	"abs": UnaryAbs, "floor": UnaryFloor, "ceil": UnaryCeil,
	"round": UnaryRound, "sign": UnarySign,
	"rad": UnaryToRad, "deg": UnaryToDeg,
	"sum": UnarySum, "avg": UnaryAvg, "min": UnaryMin, "max": UnaryMax,
	"len": UnaryLen,
}

// binaryFuncs maps canonical two-argument function names to their operators.
var binaryFuncs = map[string]BinaryOp{
	"gcd": BinGcd, "lcm": BinLcm, "npr": BinNpr, "ncr": BinNcr,
}

// Parser parses a token stream into an expression tree.
type Parser struct {
	tokens []Token
	pos    int
}

// NewParser creates a parser over pre-lexed tokens.
func NewParser(tokens []Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse parses the whole token stream as a single expression. Trailing
// tokens are an error.
func (p *Parser) Parse() (Expr, error) {
	expr, err := p.expression()
	if err != nil {
		return nil, err
	}
	if !p.atEnd() {
		return nil, p.errorf("unexpected token %s", p.peek())
	}
	return expr, nil
}

// ParseExpression lexes and parses input in one step.
func ParseExpression(input string) (Expr, error) {
	tokens, err := Tokenize(input)
	if err != nil {
		return nil, err
	}
	return NewParser(tokens).Parse()
}

func (p *Parser) peek() Token {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos]
	}
	return Token{Type: TokenEOF, Pos: p.endPos()}
}

func (p *Parser) advance() Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *Parser) atEnd() bool {
	return p.pos >= len(p.tokens)
}

// endPos is the position just past the last token, for end-of-input errors.
func (p *Parser) endPos() Position {
	if len(p.tokens) == 0 {
		return Position{Line: 1, Column: 1}
	}
	return p.tokens[len(p.tokens)-1].Pos
}

func (p *Parser) expect(t TokenType) (Token, error) {
	tok := p.peek()
	if tok.Type != t {
		if tok.Type == TokenEOF {
			return tok, p.errorf("expected %s, found end of input", t)
		}
		return tok, p.errorf("expected %s, found %s", t, tok)
	}
	return p.advance(), nil
}

func (p *Parser) errorf(format string, args ...interface{}) error {
	return &ParseError{Message: fmt.Sprintf(format, args...), Pos: p.peek().Pos}
}

// ---------------------------------------------------------------------------
// Grammar productions
// ---------------------------------------------------------------------------

func (p *Parser) expression() (Expr, error) {
	left, err := p.term()
	if err != nil {
		return nil, err
	}

	for {
		var op BinaryOp
		switch p.peek().Type {
		case TokenPlus:
			op = BinAdd
		case TokenMinus:
			op = BinSub
		default:
			return left, nil
		}
		p.advance()

		right, err := p.term()
		if err != nil {
			return nil, err
		}
		left = p.binary(op, left, right)
	}
}

func (p *Parser) term() (Expr, error) {
	left, err := p.factor()
	if err != nil {
		return nil, err
	}

	for {
		var op BinaryOp
		switch p.peek().Type {
		case TokenStar:
			op = BinMul
		case TokenSlash:
			op = BinDiv
		case TokenPercent:
			op = BinMod
		default:
			return left, nil
		}
		p.advance()

		right, err := p.factor()
		if err != nil {
			return nil, err
		}
		left = p.binary(op, left, right)
	}
}

// factor handles the right-associative power operator: 2^3^2 = 2^(3^2).
func (p *Parser) factor() (Expr, error) {
	base, err := p.unary()
	if err != nil {
		return nil, err
	}

	if p.peek().Type == TokenCaret {
		p.advance()
		exponent, err := p.factor()
		if err != nil {
			return nil, err
		}
		return p.binary(BinPow, base, exponent), nil
	}

	return base, nil
}

func (p *Parser) unary() (Expr, error) {
	if p.peek().Type == TokenMinus {
		start := p.advance().Pos
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{
			SpanVal: Span{Start: start, End: operand.Span().End},
			Op:      UnaryNeg,
			Operand: operand,
		}, nil
	}
	return p.postfix()
}

func (p *Parser) postfix() (Expr, error) {
	expr, err := p.call()
	if err != nil {
		return nil, err
	}

	for p.peek().Type == TokenBang {
		end := p.advance().Pos
		expr = &UnaryExpr{
			SpanVal: Span{Start: expr.Span().Start, End: end},
			Op:      UnaryFact,
			Operand: expr,
		}
	}

	return expr, nil
}

func (p *Parser) call() (Expr, error) {
	tok := p.peek()
	if tok.Type != TokenFunc {
		return p.primary()
	}
	p.advance()

	if op, ok := unaryFuncs[tok.Literal]; ok {
		if _, err := p.expect(TokenLParen); err != nil {
			return nil, err
		}
		arg, err := p.expression()
		if err != nil {
			return nil, err
		}
		closing, err := p.expect(TokenRParen)
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{
			SpanVal: Span{Start: tok.Pos, End: closing.Pos},
			Op:      op,
			Operand: arg,
		}, nil
	}

	op, ok := binaryFuncs[tok.Literal]
	if !ok {
		return nil, p.errorf("unknown function %q", tok.Literal)
	}
	if _, err := p.expect(TokenLParen); err != nil {
		return nil, err
	}
	first, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenComma); err != nil {
		return nil, err
	}
	second, err := p.expression()
	if err != nil {
		return nil, err
	}
	closing, err := p.expect(TokenRParen)
	if err != nil {
		return nil, err
	}
	return &BinaryExpr{
		SpanVal: Span{Start: tok.Pos, End: closing.Pos},
		Op:      op,
		Left:    first,
		Right:   second,
	}, nil
}

func (p *Parser) primary() (Expr, error) {
	tok := p.peek()
	switch tok.Type {
	case TokenNumber, TokenConst:
		p.advance()
		return &NumberLiteral{
			SpanVal: Span{Start: tok.Pos, End: tok.Pos},
			Value:   tok.Value,
		}, nil

	case TokenLParen:
		p.advance()
		expr, err := p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenRParen); err != nil {
			return nil, err
		}
		return expr, nil

	case TokenLBracket:
		return p.array()

	case TokenEOF:
		return nil, p.errorf("unexpected end of input")

	default:
		return nil, p.errorf("unexpected token %s", tok)
	}
}

func (p *Parser) array() (Expr, error) {
	open, err := p.expect(TokenLBracket)
	if err != nil {
		return nil, err
	}

	var elements []Expr
	if p.peek().Type != TokenRBracket {
		for {
			element, err := p.expression()
			if err != nil {
				return nil, err
			}
			elements = append(elements, element)
			if p.peek().Type != TokenComma {
				break
			}
			p.advance()
		}
	}

	closing, err := p.expect(TokenRBracket)
	if err != nil {
		return nil, err
	}
	return &ArrayLiteral{
		SpanVal:  Span{Start: open.Pos, End: closing.Pos},
		Elements: elements,
	}, nil
}

// binary builds an infix node spanning both operands.
func (p *Parser) binary(op BinaryOp, left, right Expr) Expr {
	return &BinaryExpr{
		SpanVal: Span{Start: left.Span().Start, End: right.Span().End},
		Op:      op,
		Left:    left,
		Right:   right,
	}
}
