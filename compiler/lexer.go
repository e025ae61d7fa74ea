package compiler

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ---------------------------------------------------------------------------
// Lexer: Tokenizer for calculator expressions
// ---------------------------------------------------------------------------

// Lexer tokenizes a calculator expression.
type Lexer struct {
	input   string
	pos     int  // current position in input
	readPos int  // reading position (after current char)
	ch      rune // current character
	line    int  // current line (1-based)
	col     int  // current column (1-based)
}

// NewLexer creates a new lexer for the given input.
func NewLexer(input string) *Lexer {
	l := &Lexer{
		input: input,
		line:  1,
	}
	l.readChar()
	return l
}

// readChar reads the next character. col tracks the column of the current
// character, resetting after a consumed newline.
func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.col = 0
	}
	if l.readPos >= len(l.input) {
		l.ch = 0 // EOF
		l.pos = l.readPos
		l.col++
	} else {
		r, size := utf8.DecodeRuneInString(l.input[l.readPos:])
		l.ch = r
		l.pos = l.readPos
		l.readPos += size
		l.col++
	}
}

// peekChar returns the next character without consuming it.
func (l *Lexer) peekChar() rune {
	if l.readPos >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPos:])
	return r
}

// position returns the current position.
func (l *Lexer) position() Position {
	return Position{
		Offset: l.pos,
		Line:   l.line,
		Column: l.col,
	}
}

func (l *Lexer) skipWhitespace() {
	for unicode.IsSpace(l.ch) {
		l.readChar()
	}
}

// NextToken returns the next token.
func (l *Lexer) NextToken() Token {
	l.skipWhitespace()

	pos := l.position()

	switch {
	case l.ch == 0:
		return Token{Type: TokenEOF, Pos: pos}

	case l.ch >= '0' && l.ch <= '9':
		return l.readNumber(pos)

	case l.ch == '.' && l.peekChar() >= '0' && l.peekChar() <= '9':
		return l.readNumber(pos)

	case unicode.IsLetter(l.ch) && l.ch < utf8.RuneSelf:
		return l.readName(pos)
	}

	ch := l.ch
	l.readChar()

	switch ch {
	case '+':
		return Token{Type: TokenPlus, Literal: "+", Pos: pos}
	case '-':
		return Token{Type: TokenMinus, Literal: "-", Pos: pos}
	case '*':
		// ** is an alternate spelling of the power operator.
		if l.ch == '*' {
			l.readChar()
			return Token{Type: TokenCaret, Literal: "**", Pos: pos}
		}
		return Token{Type: TokenStar, Literal: "*", Pos: pos}
	case '×':
		return Token{Type: TokenStar, Literal: "×", Pos: pos}
	case '/', '÷':
		return Token{Type: TokenSlash, Literal: string(ch), Pos: pos}
	case '^':
		return Token{Type: TokenCaret, Literal: "^", Pos: pos}
	case '%':
		return Token{Type: TokenPercent, Literal: "%", Pos: pos}
	case '!':
		return Token{Type: TokenBang, Literal: "!", Pos: pos}
	case '(':
		return Token{Type: TokenLParen, Literal: "(", Pos: pos}
	case ')':
		return Token{Type: TokenRParen, Literal: ")", Pos: pos}
	case '[':
		return Token{Type: TokenLBracket, Literal: "[", Pos: pos}
	case ']':
		return Token{Type: TokenRBracket, Literal: "]", Pos: pos}
	case ',':
		return Token{Type: TokenComma, Literal: ",", Pos: pos}
	case 'π':
		return Token{Type: TokenConst, Literal: "pi", Value: constantValues["pi"], Pos: pos}
	case 'τ':
		return Token{Type: TokenConst, Literal: "tau", Value: constantValues["tau"], Pos: pos}
	case 'φ':
		return Token{Type: TokenConst, Literal: "phi", Value: constantValues["phi"], Pos: pos}
	}

	return Token{
		Type:    TokenError,
		Literal: fmt.Sprintf("unexpected character %q", ch),
		Pos:     pos,
	}
}

// readNumber reads a numeric literal, with an optional fraction and an
// optional scientific-notation exponent.
func (l *Lexer) readNumber(pos Position) Token {
	start := l.pos
	hasDot := false
	hasExp := false

	for {
		switch {
		case l.ch >= '0' && l.ch <= '9':
			l.readChar()
		case l.ch == '.' && !hasDot && !hasExp:
			hasDot = true
			l.readChar()
		case (l.ch == 'e' || l.ch == 'E') && !hasExp:
			hasExp = true
			l.readChar()
			if l.ch == '+' || l.ch == '-' {
				l.readChar()
			}
		default:
			literal := l.input[start:l.pos]
			value, err := strconv.ParseFloat(literal, 64)
			if err != nil {
				return Token{
					Type:    TokenError,
					Literal: fmt.Sprintf("invalid number %q", literal),
					Pos:     pos,
				}
			}
			return Token{Type: TokenNumber, Literal: literal, Value: value, Pos: pos}
		}
	}
}

// readName reads an identifier and resolves it to a function or constant
// token. Names are case-insensitive.
func (l *Lexer) readName(pos Position) Token {
	start := l.pos
	for unicode.IsLetter(l.ch) || unicode.IsDigit(l.ch) || l.ch == '_' {
		l.readChar()
	}
	raw := l.input[start:l.pos]
	name := strings.ToLower(raw)

	if canonical, ok := functionNames[name]; ok {
		return Token{Type: TokenFunc, Literal: canonical, Pos: pos}
	}
	if value, ok := constantValues[name]; ok {
		return Token{Type: TokenConst, Literal: name, Value: value, Pos: pos}
	}
	return Token{
		Type:    TokenError,
		Literal: fmt.Sprintf("unknown identifier %q", raw),
		Pos:     pos,
	}
}

// Tokenize consumes the whole input and returns its tokens, excluding EOF.
func Tokenize(input string) ([]Token, error) {
	l := NewLexer(input)
	var tokens []Token
	for {
		tok := l.NextToken()
		switch tok.Type {
		case TokenEOF:
			return tokens, nil
		case TokenError:
			return nil, &ParseError{Message: tok.Literal, Pos: tok.Pos}
		}
		tokens = append(tokens, tok)
	}
}
