package token

import (
	"strings"
	"testing"
)

func TestKindString(t *testing.T) {
	cases := map[Kind]string{
		Number:       "number",
		Increment:    "++",
		SlashEqual:   "/=",
		LeftBracket:  "[",
		EOF:          "end of input",
		GreaterEqual: ">=",
	}
	for kind, want := range cases {
		if got := kind.String(); got != want {
			t.Fatalf("kind %d: got %q want %q", kind, got, want)
		}
	}
}

func TestTokenIsMask(t *testing.T) {
	tok := Token{Kind: Identifier}
	if !tok.Is(Identifier | Number) {
		t.Fatalf("identifier should match identifier|number")
	}
	if tok.Is(Number | String) {
		t.Fatalf("identifier should not match number|string")
	}
}

func TestLocationAdd(t *testing.T) {
	a := Location{Line: 2, Column: 3, Length: 4}
	b := Location{Line: 2, Column: 7, Length: 2}
	sum := a.Add(b)
	if sum.Line != 2 || sum.Column != 3 || sum.Length != 6 {
		t.Fatalf("unexpected span: %+v", sum)
	}
}

func TestLocationRender(t *testing.T) {
	source := "int x;\nx = y;\n"
	loc := Location{Line: 2, Column: 5, Length: 1}
	out := loc.Render(source)
	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected two lines, got %q", out)
	}
	if lines[0] != "2:5:x = y;" {
		t.Fatalf("unexpected source line: %q", lines[0])
	}
	// the squiggle sits under the located column
	if lines[1] != "        ~" {
		t.Fatalf("unexpected underline: %q", lines[1])
	}
}

func TestErrorRender(t *testing.T) {
	source := "x = y;"
	err := Errorf(Location{Line: 1, Column: 5, Length: 1}, "cannot find identifier %q", "y")
	out := err.Render(source)
	if !strings.HasPrefix(out, "cannot find identifier \"y\":\n") {
		t.Fatalf("unexpected render prefix: %q", out)
	}
	if !strings.Contains(out, "1:5:x = y;") {
		t.Fatalf("render misses the source line: %q", out)
	}
}

func TestErrorWithoutLocation(t *testing.T) {
	err := Errorf(Location{}, "plain message")
	if err.Render("src") != "plain message" {
		t.Fatalf("unexpected render: %q", err.Render("src"))
	}
}
