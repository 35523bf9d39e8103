package token

import (
	"fmt"
	"strings"
)

// Location is a source span: 1-based line and column plus the span length
// in bytes. File is optional and only used in rendered diagnostics.
type Location struct {
	File   string
	Line   int
	Column int
	Length int
}

// Valid reports whether the location points into real source.
func (l Location) Valid() bool {
	return l.Line > 0
}

// Add concatenates two spans: the result starts at l and its length is the
// sum of both lengths.
func (l Location) Add(r Location) Location {
	l.Length += r.Length
	return l
}

// Render produces the two diagnostic lines for this span against the
// source it was lexed from: the located source line prefixed with
// "line:column:", and a squiggle underline beneath the span.
func (l Location) Render(source string) string {
	if !l.Valid() {
		return ""
	}
	lines := strings.Split(source, "\n")
	if l.Line > len(lines) {
		return fmt.Sprintf("%d:%d:", l.Line, l.Column)
	}
	srcLine := strings.TrimRight(lines[l.Line-1], "\r")
	prefix := fmt.Sprintf("%d:%d:", l.Line, l.Column)
	length := l.Length
	if length < 1 {
		length = 1
	}
	pad := len(prefix) + l.Column - 1
	if pad < 0 {
		pad = 0
	}
	return prefix + srcLine + "\n" + strings.Repeat(" ", pad) + strings.Repeat("~", length)
}

// Error is a user-facing error carrying a source location. Lex and parse
// errors, and errors raised while evaluating an operand, are *Error
// values. Host binding errors, a void or non-numeric if/for/while
// condition, and a break outside a loop are reported as plain errors
// without a location. Internal invariant failures are panics instead.
type Error struct {
	Msg string
	Loc Location
}

func (e *Error) Error() string {
	return e.Msg
}

// Render formats the error the way the CLI shows it: the message, then
// the located span underlined against the source.
func (e *Error) Render(source string) string {
	span := e.Loc.Render(source)
	if span == "" {
		return e.Msg
	}
	return e.Msg + ":\n" + span
}

// Errorf builds a located error.
func Errorf(loc Location, format string, args ...any) *Error {
	return &Error{Msg: fmt.Sprintf(format, args...), Loc: loc}
}
