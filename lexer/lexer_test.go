package lexer

import (
	"strings"
	"testing"

	"github.com/wicstas/llc/token"
)

func kinds(tokens []token.Token) []token.Kind {
	out := make([]token.Kind, len(tokens))
	for i, t := range tokens {
		out[i] = t.Kind
	}
	return out
}

func TestTokenizeStatement(t *testing.T) {
	tokens, err := Tokenize("", "int x = 10;")
	if err != nil {
		t.Fatalf("tokenize failed: %v", err)
	}
	want := []token.Kind{token.Identifier, token.Identifier, token.Assign, token.Number, token.Semicolon, token.EOF}
	got := kinds(tokens)
	if len(got) != len(want) {
		t.Fatalf("unexpected token count: %d (%v)", len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: got %v want %v", i, got[i], want[i])
		}
	}
	if tokens[0].Text != "int" || tokens[1].Text != "x" {
		t.Fatalf("unexpected identifier payloads: %q %q", tokens[0].Text, tokens[1].Text)
	}
	if tokens[3].Value != 10 {
		t.Fatalf("unexpected number value: %v", tokens[3].Value)
	}
}

func TestMultiCharOperators(t *testing.T) {
	cases := map[string]token.Kind{
		"++": token.Increment,
		"+=": token.PlusEqual,
		"+":  token.Plus,
		"--": token.Decrement,
		"-=": token.MinusEqual,
		"-":  token.Minus,
		"*=": token.StarEqual,
		"*":  token.Star,
		"/=": token.SlashEqual,
		"/":  token.Slash,
		"<=": token.LessEqual,
		"<":  token.LessThan,
		">=": token.GreaterEqual,
		">":  token.GreaterThan,
		"==": token.Equal,
		"=":  token.Assign,
		"!=": token.NotEqual,
		"!":  token.Exclamation,
	}
	for src, want := range cases {
		tokens, err := Tokenize("", src)
		if err != nil {
			t.Fatalf("tokenize %q failed: %v", src, err)
		}
		if len(tokens) != 2 || tokens[0].Kind != want {
			t.Fatalf("tokenize %q: got %v", src, kinds(tokens))
		}
		if tokens[0].Loc.Length != len(src) {
			t.Fatalf("tokenize %q: unexpected length %d", src, tokens[0].Loc.Length)
		}
	}
}

func TestOperatorPairsDoNotMerge(t *testing.T) {
	tokens, err := Tokenize("", "a+ +b")
	if err != nil {
		t.Fatalf("tokenize failed: %v", err)
	}
	want := []token.Kind{token.Identifier, token.Plus, token.Plus, token.Identifier, token.EOF}
	got := kinds(tokens)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: got %v want %v", i, got[i], want[i])
		}
	}
}

func TestNumericLiterals(t *testing.T) {
	tokens, err := Tokenize("", "1 2.5 3.5f 0.25")
	if err != nil {
		t.Fatalf("tokenize failed: %v", err)
	}
	want := []float64{1, 2.5, 3.5, 0.25}
	for i, w := range want {
		if tokens[i].Kind != token.Number {
			t.Fatalf("token %d is %v, not a number", i, tokens[i].Kind)
		}
		if diff := tokens[i].Value - w; diff > 1e-9 || diff < -1e-9 {
			t.Fatalf("token %d: got %v want %v", i, tokens[i].Value, w)
		}
	}
	// the f suffix is part of the lexeme but not the value
	if tokens[2].Loc.Length != 4 {
		t.Fatalf("unexpected 3.5f length: %d", tokens[2].Loc.Length)
	}
}

func TestTrueFalseAreNumbers(t *testing.T) {
	tokens, err := Tokenize("", "true false")
	if err != nil {
		t.Fatalf("tokenize failed: %v", err)
	}
	if tokens[0].Kind != token.Number || tokens[0].Value != 1 {
		t.Fatalf("true: got %v value %v", tokens[0].Kind, tokens[0].Value)
	}
	if tokens[1].Kind != token.Number || tokens[1].Value != 0 {
		t.Fatalf("false: got %v value %v", tokens[1].Kind, tokens[1].Value)
	}
}

func TestStringEscapes(t *testing.T) {
	tokens, err := Tokenize("", `"a\tb\nc"`)
	if err != nil {
		t.Fatalf("tokenize failed: %v", err)
	}
	if tokens[0].Kind != token.String || tokens[0].Text != "a\tb\nc" {
		t.Fatalf("unexpected string payload: %q", tokens[0].Text)
	}
}

func TestCharLiterals(t *testing.T) {
	tokens, err := Tokenize("", `'x' '\n'`)
	if err != nil {
		t.Fatalf("tokenize failed: %v", err)
	}
	if tokens[0].Kind != token.Char || tokens[0].Ch != 'x' {
		t.Fatalf("unexpected char payload: %q", tokens[0].Ch)
	}
	if tokens[1].Ch != '\n' {
		t.Fatalf("unexpected escaped char payload: %q", tokens[1].Ch)
	}
}

func TestCharMissingQuote(t *testing.T) {
	if _, err := Tokenize("", "'x"); err == nil {
		t.Fatalf("expected missing quote error")
	}
}

func TestUnknownEscapeCarriesLocation(t *testing.T) {
	_, err := Tokenize("", `"ab\qcd"`)
	if err == nil {
		t.Fatalf("expected unknown escape error")
	}
	lerr, ok := err.(*token.Error)
	if !ok {
		t.Fatalf("expected a located error, got %T", err)
	}
	if !strings.Contains(lerr.Msg, "unknown escape") {
		t.Fatalf("unexpected message: %q", lerr.Msg)
	}
	if lerr.Loc.Line != 1 || lerr.Loc.Column != 4 {
		t.Fatalf("unexpected location: %+v", lerr.Loc)
	}
}

func TestUnterminatedStringPointsAtOpeningQuote(t *testing.T) {
	_, err := Tokenize("", "x = \"abc")
	if err == nil {
		t.Fatalf("expected missing quote error")
	}
	lerr, ok := err.(*token.Error)
	if !ok {
		t.Fatalf("expected a located error, got %T", err)
	}
	if lerr.Loc.Line != 1 || lerr.Loc.Column != 5 {
		t.Fatalf("error should point at the opening quote: %+v", lerr.Loc)
	}
}

func TestCommentsAreDiscarded(t *testing.T) {
	source := "a = 1; // trailing comment\nb = 2;\n// full line\nc = 3;"
	tokens, err := Tokenize("", source)
	if err != nil {
		t.Fatalf("tokenize failed: %v", err)
	}
	var names []string
	for _, tok := range tokens {
		if tok.Kind == token.Identifier {
			names = append(names, tok.Text)
		}
	}
	if strings.Join(names, " ") != "a b c" {
		t.Fatalf("unexpected identifiers: %v", names)
	}
	// line tracking survives comments
	for _, tok := range tokens {
		if tok.Kind == token.Identifier && tok.Text == "c" && tok.Loc.Line != 4 {
			t.Fatalf("identifier c on line %d, want 4", tok.Loc.Line)
		}
	}
}

// Every token's location must span exactly its lexeme: extracting the
// located substring from the source reproduces the token.
func TestLocationsSpanLexemes(t *testing.T) {
	source := "int count = 41;\ncount += 1;\nwhile (count >= 2) count--;"
	tokens, err := Tokenize("", source)
	if err != nil {
		t.Fatalf("tokenize failed: %v", err)
	}
	lines := strings.Split(source, "\n")
	var rebuilt []string
	for _, tok := range tokens {
		if tok.Kind == token.EOF {
			continue
		}
		line := lines[tok.Loc.Line-1]
		start := tok.Loc.Column - 1
		end := start + tok.Loc.Length
		if start < 0 || end > len(line) {
			t.Fatalf("token %v location out of bounds: %+v", tok.Kind, tok.Loc)
		}
		rebuilt = append(rebuilt, line[start:end])
	}
	want := strings.Fields(strings.ReplaceAll(source, "\n", " "))
	// tokens split tighter than whitespace fields; compare concatenations
	if strings.Join(rebuilt, "") != strings.Join(want, "") {
		t.Fatalf("rebuilt %q, want %q", strings.Join(rebuilt, ""), strings.Join(want, ""))
	}
}

func TestEmptySource(t *testing.T) {
	tokens, err := Tokenize("", "")
	if err != nil {
		t.Fatalf("tokenize failed: %v", err)
	}
	if len(tokens) != 1 || tokens[0].Kind != token.EOF {
		t.Fatalf("expected a lone EOF token, got %v", kinds(tokens))
	}
}

func TestUnexpectedCharacter(t *testing.T) {
	if _, err := Tokenize("", "a # b"); err == nil {
		t.Fatalf("expected an error for '#'")
	}
}
