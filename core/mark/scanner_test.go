package mark

import (
	"errors"
	"strings"
	"testing"

	ierr "github.com/FocuswithJustin/TextIndex/core/errors"
)

func TestScanAttachedText(t *testing.T) {
	tests := []struct {
		name      string
		source    string
		visible   string
		bracketed bool
		start     int
	}{
		{"word run", "penguins{^} swim", "penguins", false, 0},
		{"bracketed span", "[tap dance]{^} is neat", "tap dance", true, 0},
		{"bracket span leaves prior word alone", "ab[cd]{^}", "cd", true, 2},
		{"word run leaves prior bracket alone", "[ab]cd{^}", "cd", false, 4},
		{"rightmost word run", "one two{^}", "two", false, 4},
		{"standalone", "see {^cats} here", "", false, 4},
		{"mid-word token", "pen{^}guin", "pen", false, 0},
		{"brace inside bracket", "[set {1}]{^sets}", "", false, 9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Scan(tt.source)
			if err != nil {
				t.Fatalf("Scan(%q) error: %v", tt.source, err)
			}
			if len(doc.Tokens) != 1 {
				t.Fatalf("Scan(%q) found %d tokens, want 1", tt.source, len(doc.Tokens))
			}
			tok := doc.Tokens[0]
			if tok.Visible != tt.visible {
				t.Errorf("Visible = %q, want %q", tok.Visible, tt.visible)
			}
			if tok.Bracketed != tt.bracketed {
				t.Errorf("Bracketed = %v, want %v", tok.Bracketed, tt.bracketed)
			}
			if tok.Start != tt.start {
				t.Errorf("Start = %d, want %d", tok.Start, tt.start)
			}
		})
	}
}

func TestScanBracketSpanWithEmbeddedToken(t *testing.T) {
	// The bracket span holds a token of its own, so it cannot serve as
	// attached text: claiming it would nest one token span inside the
	// other. The inner token keeps its word attachment and the outer
	// one stands alone.
	source := "[foo{^a} bar]{^b}"
	doc, err := Scan(source)
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}
	if len(doc.Tokens) != 2 {
		t.Fatalf("got %d tokens, want 2", len(doc.Tokens))
	}
	inner, outer := doc.Tokens[0], doc.Tokens[1]
	if inner.Visible != "foo" || source[inner.Start:inner.End] != "foo{^a}" {
		t.Errorf("inner token = %q spanning %q, want %q spanning %q",
			inner.Visible, source[inner.Start:inner.End], "foo", "foo{^a}")
	}
	if outer.Visible != "" || outer.Bracketed {
		t.Errorf("outer token = %q bracketed %v, want standalone", outer.Visible, outer.Bracketed)
	}
	if got := source[outer.Start:outer.End]; got != "{^b}" {
		t.Errorf("outer token span = %q, want %q", got, "{^b}")
	}
	if inner.End > outer.Start {
		t.Errorf("token spans overlap: [%d,%d) and [%d,%d)",
			inner.Start, inner.End, outer.Start, outer.End)
	}
}

func TestScanSkipsMarkupAdjacentTokens(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"markup before standalone token", "bold><b>{^cats}"},
		{"markup after token", "penguins{^}<i>done</i>"},
		{"already rewritten span", `>{^cats}<`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Scan(tt.source)
			if err != nil {
				t.Fatalf("Scan(%q) error: %v", tt.source, err)
			}
			if len(doc.Tokens) != 0 {
				t.Errorf("Scan(%q) found %d tokens, want 0", tt.source, len(doc.Tokens))
			}
		})
	}
}

func TestScanToggles(t *testing.T) {
	source := "a{^-} skipped{^cats} b{^+} indexed{^}"
	doc, err := Scan(source)
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}
	var kinds []Kind
	for _, tok := range doc.Tokens {
		kinds = append(kinds, tok.Kind)
	}
	want := []Kind{KindToggle, KindToggle, KindEntry}
	if len(kinds) != len(want) {
		t.Fatalf("got %d tokens (%v), want %d", len(kinds), kinds, len(want))
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("token %d kind = %v, want %v", i, kinds[i], want[i])
		}
	}
	if got := doc.Tokens[2].Visible; got != "indexed" {
		t.Errorf("surviving entry visible = %q, want %q", got, "indexed")
	}
}

func TestScanSecondDisableStaysVerbatim(t *testing.T) {
	doc, err := Scan("x{^-} a {^-} b")
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}
	if len(doc.Tokens) != 1 {
		t.Fatalf("got %d tokens, want 1 (second {^-} should stay verbatim)", len(doc.Tokens))
	}
}

func TestScanDisabledRegionToleratesRawSyntax(t *testing.T) {
	doc, err := Scan("{^-} literal {^ unterminated and {^weird > > stuff} left alone")
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}
	if len(doc.Tokens) != 1 || doc.Tokens[0].Kind != KindToggle {
		t.Fatalf("tokens = %+v, want only the disabling toggle", doc.Tokens)
	}
}

func TestScanErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"unterminated token", "bad {^ news\nnext line"},
		{"unterminated at end of input", "trailing {^cats"},
		{"malformed body", "word{^a ^ b}"},
		{"label-less token", "\\[escaped]{^}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Scan(tt.source)
			if err == nil {
				t.Fatalf("Scan(%q) succeeded, want error", tt.source)
			}
			if !errors.Is(err, ierr.ErrMalformedToken) {
				t.Errorf("Scan(%q) error = %v, want ErrMalformedToken", tt.source, err)
			}
		})
	}
}

func TestScanPositions(t *testing.T) {
	source := "first line\nsecond café penguins{^} and mice{^drinks}"
	doc, err := Scan(source)
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}
	if len(doc.Tokens) != 2 {
		t.Fatalf("got %d tokens, want 2", len(doc.Tokens))
	}
	first, second := doc.Tokens[0], doc.Tokens[1]
	// Column counts runes, not bytes: café has a two-byte é before
	// both tokens on the line.
	if first.Line != 2 || first.Col != 13 {
		t.Errorf("first token at %d:%d, want 2:13", first.Line, first.Col)
	}
	if second.Line != 2 || second.Col != 29 {
		t.Errorf("second token at %d:%d, want 2:29", second.Line, second.Col)
	}
	if first.Ordinal != 0 || second.Ordinal != 1 {
		t.Errorf("ordinals = %d, %d, want 0, 1", first.Ordinal, second.Ordinal)
	}
	if got := source[second.Start:second.End]; got != "mice{^drinks}" {
		t.Errorf("second token span = %q", got)
	}
}

func TestScanPlaceholders(t *testing.T) {
	source := "intro\n{index prefix=\"pg\" see='See' also=\"see too\"}\nmore text"
	doc, err := Scan(source)
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}
	if len(doc.Placeholders) != 1 {
		t.Fatalf("got %d placeholders, want 1", len(doc.Placeholders))
	}
	ph := doc.Placeholders[0]
	if ph.Line != 2 {
		t.Errorf("Line = %d, want 2", ph.Line)
	}
	if ph.Prefix != "pg" || ph.See != "See" || ph.Also != "see too" {
		t.Errorf("params = %q, %q, %q, want pg, See, see too", ph.Prefix, ph.See, ph.Also)
	}
	if got := source[ph.Start:ph.End]; !strings.HasPrefix(got, "{index") {
		t.Errorf("placeholder span = %q", got)
	}
}

func TestScanPlaceholderOnlyAtLineStart(t *testing.T) {
	doc, err := Scan("text {index} mid-line\n{INDEX}\n")
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}
	if len(doc.Placeholders) != 1 {
		t.Fatalf("got %d placeholders, want 1 (only the line-start one)", len(doc.Placeholders))
	}
	if doc.Placeholders[0].Line != 2 {
		t.Errorf("Line = %d, want 2", doc.Placeholders[0].Line)
	}
}

func TestScanEscapedBracketIsNotAttached(t *testing.T) {
	// An escaped closing bracket cannot end an attached span, so the
	// token is standalone and needs a body.
	doc, err := Scan(`weird\]{^cats}`)
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}
	if len(doc.Tokens) != 1 {
		t.Fatalf("got %d tokens, want 1", len(doc.Tokens))
	}
	if got := doc.Tokens[0].Visible; got != "" {
		t.Errorf("Visible = %q, want empty", got)
	}
}
