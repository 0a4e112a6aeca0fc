package rewrite

import (
	"strings"
	"testing"

	ierr "github.com/FocuswithJustin/TextIndex/core/errors"
	"github.com/FocuswithJustin/TextIndex/core/index"
	"github.com/FocuswithJustin/TextIndex/core/locator"
	"github.com/FocuswithJustin/TextIndex/core/mark"
)

func rewrite(t *testing.T, source string, mode locator.Mode, pager locator.Pager) (string, []ierr.Warning) {
	t.Helper()
	doc, err := mark.Scan(source)
	if err != nil {
		t.Fatalf("Scan(%q) error: %v", source, err)
	}
	reg := index.New()
	if _, err := reg.Bind(doc); err != nil {
		t.Fatalf("Bind(%q) error: %v", source, err)
	}
	asn, err := locator.Assign(doc, reg, mode, pager)
	if err != nil {
		t.Fatalf("Assign(%q) error: %v", source, err)
	}
	return Document(doc, asn, "INDEX\n", "")
}

func TestDocumentReferenceSpans(t *testing.T) {
	got, warnings := rewrite(t, "penguins{^} fly", locator.ModeReference, nil)

	want := "<span id=\"idx1\" class=\"textindex\">penguins</span> fly"
	if got != want {
		t.Errorf("Document() = %q, want %q", got, want)
	}
	if !hasWarning(warnings, ierr.WarnMissingPlaceholder) {
		t.Errorf("warnings = %v, want %s", warnings, ierr.WarnMissingPlaceholder)
	}
}

func hasWarning(warnings []ierr.Warning, code string) bool {
	for _, w := range warnings {
		if w.Code == code {
			return true
		}
	}
	return false
}

func TestDocumentBracketedVisible(t *testing.T) {
	got, _ := rewrite(t, "do the [tap dance]{^} now", locator.ModeReference, nil)

	want := "do the <span id=\"idx1\" class=\"textindex\">tap dance</span> now"
	if got != want {
		t.Errorf("Document() = %q, want %q", got, want)
	}
}

func TestDocumentStandaloneMarker(t *testing.T) {
	got, _ := rewrite(t, "x {^cats} y", locator.ModeReference, nil)

	want := "x <span id=\"idx1\" class=\"textindex\"></span> y"
	if got != want {
		t.Errorf("Document() = %q, want %q", got, want)
	}
}

func TestDocumentVisibleEmphasis(t *testing.T) {
	got, _ := rewrite(t, "[_tap_ dance]{^}", locator.ModeReference, nil)

	want := "<span id=\"idx1\" class=\"textindex\"><em>tap</em> dance</span>"
	if got != want {
		t.Errorf("Document() = %q, want %q", got, want)
	}
}

func TestDocumentPureSeeKeepsVisibleOnly(t *testing.T) {
	got, _ := rewrite(t, "[foo]{^|bar} bar{^}", locator.ModeReference, nil)

	want := "foo <span id=\"idx1\" class=\"textindex\">bar</span>"
	if got != want {
		t.Errorf("Document() = %q, want %q", got, want)
	}
}

func TestDocumentDefinitionOnlyKeepsVisible(t *testing.T) {
	// The ##td definition records nothing, so the anchor reference
	// takes the first id.
	got, _ := rewrite(t, "dancing{^tap##td} later {^#td}", locator.ModeReference, nil)

	want := "dancing later <span id=\"idx1\" class=\"textindex\"></span>"
	if got != want {
		t.Errorf("Document() = %q, want %q", got, want)
	}
}

func TestDocumentTogglesRemovedRegionVerbatim(t *testing.T) {
	got, _ := rewrite(t, "a{^-} skipped{^cats} b{^+} c{^}", locator.ModeReference, nil)

	want := "a skipped{^cats} b <span id=\"idx1\" class=\"textindex\">c</span>"
	if got != want {
		t.Errorf("Document() = %q, want %q", got, want)
	}
}

func TestDocumentPlaceholderSubstitution(t *testing.T) {
	got, warnings := rewrite(t, "cats{^}\n{index}\ntail", locator.ModeReference, nil)

	want := "<span id=\"idx1\" class=\"textindex\">cats</span>\nINDEX\n\ntail"
	if got != want {
		t.Errorf("Document() = %q, want %q", got, want)
	}
	if len(warnings) != 0 {
		t.Errorf("warnings = %v, want none", warnings)
	}
}

func TestDocumentMissingPlaceholderNoAppend(t *testing.T) {
	got, warnings := rewrite(t, "cats{^}", locator.ModeReference, nil)

	if strings.Contains(got, "INDEX") {
		t.Errorf("index must not be appended without a placeholder: %q", got)
	}
	if !hasWarning(warnings, ierr.WarnMissingPlaceholder) {
		t.Errorf("warnings = %v, want %s", warnings, ierr.WarnMissingPlaceholder)
	}
}

func TestDocumentPaginatedPlainText(t *testing.T) {
	pager := func(int) int { return 7 }
	got, _ := rewrite(t, "penguins{^} fly", locator.ModePaginated, pager)

	want := "penguins fly"
	if got != want {
		t.Errorf("Document() = %q, want %q", got, want)
	}
}

func TestDocumentCustomIDPrefix(t *testing.T) {
	doc, err := mark.Scan("cats{^}")
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}
	reg := index.New()
	if _, err := reg.Bind(doc); err != nil {
		t.Fatalf("Bind error: %v", err)
	}
	asn, err := locator.Assign(doc, reg, locator.ModeReference, nil)
	if err != nil {
		t.Fatalf("Assign error: %v", err)
	}
	got, _ := Document(doc, asn, "", "loc")

	want := "<span id=\"loc1\" class=\"textindex\">cats</span>"
	if got != want {
		t.Errorf("Document() = %q, want %q", got, want)
	}
}

func TestDocumentRescanIsInert(t *testing.T) {
	got, _ := rewrite(t, "penguins{^} fly\n{index}\n", locator.ModeReference, nil)

	again, err := mark.Scan(got)
	if err != nil {
		t.Fatalf("rescan error: %v", err)
	}
	if len(again.Tokens) != 0 {
		t.Errorf("rescan found %d tokens in %q, want 0", len(again.Tokens), got)
	}
	if len(again.Placeholders) != 0 {
		t.Errorf("rescan found %d placeholders, want 0", len(again.Placeholders))
	}
}
