package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestTokenError(t *testing.T) {
	tests := []struct {
		name     string
		err      *TokenError
		wantMsg  string
		wantBase error
	}{
		{
			name:     "with body",
			err:      &TokenError{Line: 3, Col: 14, Body: `tap > `, Message: "empty path segment"},
			wantMsg:  "malformed token at 3:14: empty path segment in {^tap > }",
			wantBase: ErrMalformedToken,
		},
		{
			name:     "without body",
			err:      &TokenError{Line: 1, Col: 1, Message: "no heading derivable"},
			wantMsg:  "malformed token at 1:1: no heading derivable",
			wantBase: ErrMalformedToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", got, tt.wantMsg)
			}
			if got := tt.err.Unwrap(); !errors.Is(got, tt.wantBase) {
				t.Errorf("Unwrap() = %v, want %v", got, tt.wantBase)
			}
		})
	}

	t.Run("with underlying error", func(t *testing.T) {
		underlyingErr := fmt.Errorf("lexer stalled")
		err := &TokenError{Line: 2, Col: 5, Message: "unparsable body", Err: underlyingErr}
		if got := err.Unwrap(); got != underlyingErr {
			t.Errorf("Unwrap() = %v, want %v", got, underlyingErr)
		}
	})
}

func TestAnchorErrors(t *testing.T) {
	unknown := NewUnknownAnchor("td", 7, 3)
	if got, want := unknown.Error(), "unknown anchor #td at 7:3"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(unknown, ErrUnknownAnchor) {
		t.Error("UnknownAnchorError should unwrap to ErrUnknownAnchor")
	}

	dup := NewDuplicateAnchor("td", 9, 1, 2, 4)
	if got, want := dup.Error(), "duplicate anchor #td at 9:1 (first defined at 2:4)"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(dup, ErrDuplicateAnchor) {
		t.Error("DuplicateAnchorError should unwrap to ErrDuplicateAnchor")
	}
}

func TestAliasError(t *testing.T) {
	tests := []struct {
		name    string
		err     *AliasError
		wantMsg string
	}{
		{
			name:    "with canonical",
			err:     NewConflictingAlias("td", "tap dance", "alias target already indexed"),
			wantMsg: `conflicting alias "td" for "tap dance": alias target already indexed`,
		},
		{
			name:    "cycle",
			err:     &AliasError{Alias: "a", Message: "alias cycle through #b"},
			wantMsg: `conflicting alias "a": alias cycle through #b`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", got, tt.wantMsg)
			}
			if !errors.Is(tt.err, ErrConflictingAlias) {
				t.Error("AliasError should unwrap to ErrConflictingAlias")
			}
		})
	}
}

func TestAmbiguousEntryError(t *testing.T) {
	err := NewAmbiguousEntry("penguins", 4, 2, "See redirect on an entry with locators")
	want := `ambiguous entry "penguins" at 4:2: See redirect on an entry with locators`
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, ErrAmbiguousEntry) {
		t.Error("AmbiguousEntryError should unwrap to ErrAmbiguousEntry")
	}
}

func TestPlaceholderError(t *testing.T) {
	err := NewMultiplePlaceholders(40, 12)
	want := "multiple index placeholders: line 40 (first at line 12)"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, ErrMultiplePlaceholders) {
		t.Error("PlaceholderError should unwrap to ErrMultiplePlaceholders")
	}
}

func TestWarningString(t *testing.T) {
	tests := []struct {
		name string
		w    Warning
		want string
	}{
		{
			name: "without line",
			w:    Warning{Code: WarnMissingPlaceholder, Message: "no {index} line found"},
			want: "missing-placeholder: no {index} line found",
		},
		{
			name: "with line",
			w:    Warning{Code: WarnUnusedAnchor, Line: 12, Message: "anchor #td never referenced"},
			want: "unused-anchor (line 12): anchor #td never referenced",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.w.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWrap(t *testing.T) {
	if Wrap(nil, "context") != nil {
		t.Error("Wrap(nil) should return nil")
	}

	base := errors.New("base error")
	wrapped := Wrap(base, "while scanning")
	if wrapped == nil {
		t.Fatal("Wrap() returned nil for non-nil error")
	}
	if got, want := wrapped.Error(), "while scanning: base error"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(wrapped, base) {
		t.Error("wrapped error should match base via errors.Is")
	}
}

func TestWrapf(t *testing.T) {
	if Wrapf(nil, "context %d", 1) != nil {
		t.Error("Wrapf(nil) should return nil")
	}

	base := errors.New("base error")
	wrapped := Wrapf(base, "token %d", 7)
	if got, want := wrapped.Error(), "token 7: base error"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestIsAs(t *testing.T) {
	err := NewUnknownAnchor("qmk", 1, 1)
	wrapped := Wrap(err, "pass 2")

	if !Is(wrapped, ErrUnknownAnchor) {
		t.Error("Is() should see ErrUnknownAnchor through the wrap")
	}

	var ua *UnknownAnchorError
	if !As(wrapped, &ua) {
		t.Fatal("As() should recover *UnknownAnchorError")
	}
	if ua.Name != "qmk" {
		t.Errorf("recovered Name = %q, want %q", ua.Name, "qmk")
	}
}
