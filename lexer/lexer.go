// Package lexer turns llc source text into a token stream. The scanner is
// a hand-written single pass with one character of lookahead and putback.
package lexer

import (
	"github.com/wicstas/llc/token"
)

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\f'
}

func isNewline(c byte) bool {
	return c == '\n' || c == '\r'
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

var escapes = map[byte]byte{
	'n': '\n',
	't': '\t',
	'r': '\r',
	'b': '\b',
	'v': '\v',
	'f': '\f',
	'a': '\a',
}

// Lexer scans one source string. The zero value is not usable; construct
// with New.
type Lexer struct {
	file   string
	src    []byte
	pos    int
	line   int
	column int

	startPos    int
	startLine   int
	startColumn int
}

// New returns a lexer over source. file is used in token locations and
// may be empty.
func New(file, source string) *Lexer {
	return &Lexer{file: file, src: []byte(source), line: 1, column: 1}
}

func (lx *Lexer) eof() bool {
	return lx.pos >= len(lx.src)
}

func (lx *Lexer) next() byte {
	if lx.eof() {
		lx.pos++
		return 0
	}
	c := lx.src[lx.pos]
	lx.pos++
	if isNewline(c) {
		lx.line++
		lx.column = 1
	} else {
		lx.column++
	}
	return c
}

func (lx *Lexer) putback() {
	lx.pos--
	if lx.pos >= len(lx.src) {
		return
	}
	if isNewline(lx.src[lx.pos]) {
		lx.line--
	} else {
		lx.column--
	}
}

func (lx *Lexer) here() token.Location {
	return token.Location{File: lx.file, Line: lx.line, Column: lx.column, Length: 1}
}

func (lx *Lexer) span() token.Location {
	return token.Location{
		File:   lx.file,
		Line:   lx.startLine,
		Column: lx.startColumn,
		Length: lx.pos - lx.startPos,
	}
}

func (lx *Lexer) skip() {
	for !lx.eof() {
		c := lx.next()
		if !isSpace(c) && !isNewline(c) {
			lx.putback()
			return
		}
	}
}

// Tokenize scans the whole source and returns the token stream terminated
// by an EOF token. Any scan error aborts tokenization; no partial stream
// is returned.
func (lx *Lexer) Tokenize() ([]token.Token, error) {
	var tokens []token.Token
	for {
		tok, err := lx.scan()
		if err != nil {
			return nil, err
		}
		if tok.Kind == 0 {
			// discarded comment
			continue
		}
		tokens = append(tokens, tok)
		if tok.Kind == token.EOF {
			return tokens, nil
		}
	}
}

func (lx *Lexer) scan() (token.Token, error) {
	lx.skip()
	lx.startPos = lx.pos
	lx.startLine = lx.line
	lx.startColumn = lx.column
	if lx.eof() {
		return token.Token{Kind: token.EOF, Loc: lx.span()}, nil
	}

	c := lx.next()
	tok := token.Token{Kind: token.Invalid}

	switch c {
	case '+':
		switch lx.next() {
		case '+':
			tok.Kind = token.Increment
		case '=':
			tok.Kind = token.PlusEqual
		default:
			tok.Kind = token.Plus
			lx.putback()
		}
	case '-':
		switch lx.next() {
		case '-':
			tok.Kind = token.Decrement
		case '=':
			tok.Kind = token.MinusEqual
		default:
			tok.Kind = token.Minus
			lx.putback()
		}
	case '*':
		if lx.next() == '=' {
			tok.Kind = token.StarEqual
		} else {
			tok.Kind = token.Star
			lx.putback()
		}
	case '/':
		switch lx.next() {
		case '/':
			for !lx.eof() {
				if isNewline(lx.next()) {
					lx.putback()
					break
				}
			}
			return token.Token{}, nil
		case '=':
			tok.Kind = token.SlashEqual
		default:
			tok.Kind = token.Slash
			lx.putback()
		}
	case '<':
		if lx.next() == '=' {
			tok.Kind = token.LessEqual
		} else {
			tok.Kind = token.LessThan
			lx.putback()
		}
	case '>':
		if lx.next() == '=' {
			tok.Kind = token.GreaterEqual
		} else {
			tok.Kind = token.GreaterThan
			lx.putback()
		}
	case '=':
		if lx.next() == '=' {
			tok.Kind = token.Equal
		} else {
			tok.Kind = token.Assign
			lx.putback()
		}
	case '!':
		if lx.next() == '=' {
			tok.Kind = token.NotEqual
		} else {
			tok.Kind = token.Exclamation
			lx.putback()
		}
	case '(':
		tok.Kind = token.LeftParen
	case ')':
		tok.Kind = token.RightParen
	case '[':
		tok.Kind = token.LeftBracket
	case ']':
		tok.Kind = token.RightBracket
	case '{':
		tok.Kind = token.LeftBrace
	case '}':
		tok.Kind = token.RightBrace
	case ';':
		tok.Kind = token.Semicolon
	case '.':
		tok.Kind = token.Dot
	case ',':
		tok.Kind = token.Comma
	case '"':
		text, err := lx.scanString()
		if err != nil {
			return token.Token{}, err
		}
		tok.Kind = token.String
		tok.Text = text
	case '\'':
		ch, err := lx.scanChar()
		if err != nil {
			return token.Token{}, err
		}
		tok.Kind = token.Char
		tok.Ch = ch
	default:
		switch {
		case isDigit(c):
			tok.Kind = token.Number
			tok.Value = lx.scanNumber(c)
		case isAlpha(c) || c == '_':
			id := lx.scanIdentifier(c)
			switch id {
			case "true":
				tok.Kind = token.Number
				tok.Value = 1
			case "false":
				tok.Kind = token.Number
				tok.Value = 0
			default:
				tok.Kind = token.Identifier
				tok.Text = id
			}
		default:
			return token.Token{}, token.Errorf(lx.span(), "unexpected character %q", string(c))
		}
	}

	tok.Loc = lx.span()
	return tok, nil
}

func (lx *Lexer) scanNumber(c byte) float64 {
	value := float64(0)
	for {
		value = value*10 + float64(c-'0')
		c = lx.next()
		if !isDigit(c) {
			break
		}
	}
	if c == '.' {
		scale := 0.1
		for {
			c = lx.next()
			if !isDigit(c) {
				break
			}
			value += float64(c-'0') * scale
			scale /= 10
		}
	}
	// the f suffix is consumed without affecting the value
	if c != 'f' {
		lx.putback()
	}
	return value
}

func (lx *Lexer) scanIdentifier(c byte) string {
	start := lx.pos - 1
	for !lx.eof() {
		c = lx.next()
		if !isAlpha(c) && !isDigit(c) && c != '_' {
			lx.putback()
			break
		}
	}
	return string(lx.src[start:lx.pos])
}

func (lx *Lexer) scanString() (string, error) {
	open := lx.span()
	var text []byte
	for {
		if lx.eof() {
			return "", token.Errorf(open, "missing closing '\"'")
		}
		c := lx.next()
		if c == '"' {
			return string(text), nil
		}
		if c == '\\' {
			escLoc := lx.here()
			e := lx.next()
			r, ok := escapes[e]
			if !ok {
				escLoc.Length = 2
				escLoc.Column--
				return "", token.Errorf(escLoc, "use of unknown escape character %q", string(e))
			}
			c = r
		}
		text = append(text, c)
	}
}

func (lx *Lexer) scanChar() (byte, error) {
	open := lx.span()
	if lx.eof() {
		return 0, token.Errorf(open, "missing closing \"'\"")
	}
	c := lx.next()
	if c == '\\' {
		escLoc := lx.here()
		e := lx.next()
		r, ok := escapes[e]
		if !ok {
			escLoc.Length = 2
			escLoc.Column--
			return 0, token.Errorf(escLoc, "use of unknown escape character %q", string(e))
		}
		c = r
	}
	if lx.eof() || lx.next() != '\'' {
		return 0, token.Errorf(open, "missing closing \"'\"")
	}
	return c, nil
}

// Tokenize is a convenience over New(...).Tokenize().
func Tokenize(file, source string) ([]token.Token, error) {
	return New(file, source).Tokenize()
}
