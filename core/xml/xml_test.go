package xml

import (
	"strconv"
	"strings"
	"testing"

	"github.com/FocuswithJustin/TextIndex/core/render"
	"github.com/FocuswithJustin/TextIndex/core/textindex"
)

func renderedIndex(t *testing.T, source string) (html, document string) {
	t.Helper()
	result, err := textindex.Process(source, textindex.Options{})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	return result.HTML, result.Document
}

func TestParseAndQueryEntries(t *testing.T) {
	html, _ := renderedIndex(t, "cats{^} and dogs{^}\n{index}\n")

	doc, err := Parse(html)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	entries := doc.Entries()
	if len(entries) != 2 {
		t.Fatalf("Entries() = %d nodes, want 2", len(entries))
	}
	if entries[0].Text() != "cats" || entries[1].Text() != "dogs" {
		t.Errorf("entry headings = %q, %q, want cats, dogs", entries[0].Text(), entries[1].Text())
	}
	if entries[0].Name() != "span" {
		t.Errorf("entry node name = %q, want span", entries[0].Name())
	}
}

func TestLocators(t *testing.T) {
	html, _ := renderedIndex(t, "cats{^} and dogs{^}\n{index}\n")

	doc, err := Parse(html)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	locators := doc.Locators()
	if len(locators) != 2 {
		t.Fatalf("Locators() = %d nodes, want 2", len(locators))
	}
	if got := locators[0].Attr("href"); got != "#idx1" {
		t.Errorf("first locator href = %q, want #idx1", got)
	}
	if got := locators[0].Attr("data-index-id"); got != "1" {
		t.Errorf("first locator data-index-id = %q, want 1", got)
	}
}

func TestQueryInvalidExpression(t *testing.T) {
	html, _ := renderedIndex(t, "cats{^}\n{index}\n")

	doc, err := Parse(html)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if _, err := doc.Query("//["); err == nil {
		t.Error("Query(//[) expected an error")
	}
	if _, err := doc.QueryFirst("//["); err == nil {
		t.Error("QueryFirst(//[) expected an error")
	}
}

func TestQueryFirst(t *testing.T) {
	html, _ := renderedIndex(t, "cats{^}\n{index}\n")

	doc, err := Parse(html)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	sep, err := doc.QueryFirst(`//dt[@class='group-separator']`)
	if err != nil {
		t.Fatalf("QueryFirst() error = %v", err)
	}
	if sep == nil {
		t.Fatal("expected a separator row")
	}
	if sep.Name() != "dt" {
		t.Errorf("separator node name = %q, want dt", sep.Name())
	}

	missing, err := doc.QueryFirst(`//table`)
	if err != nil {
		t.Fatalf("QueryFirst() error = %v", err)
	}
	if missing != nil {
		t.Errorf("expected no match, got %q", missing.Markup())
	}
}

func TestNodeMarkup(t *testing.T) {
	html, _ := renderedIndex(t, "cats{^}\n{index}\n")

	doc, err := Parse(html)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	locators := doc.Locators()
	if len(locators) != 1 {
		t.Fatalf("Locators() = %d nodes, want 1", len(locators))
	}
	markup := locators[0].Markup()
	for _, want := range []string{"<a", `class="locator"`, `data-index-id="1"`} {
		if !strings.Contains(markup, want) {
			t.Errorf("Markup() = %q, missing %q", markup, want)
		}
	}
}

func TestParseWholeDocument(t *testing.T) {
	_, document := renderedIndex(t, "cats{^} and dogs{^}\n{index}\n")

	doc, err := Parse(document)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	spans, err := doc.Query(`//span[@class='textindex']`)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(spans) != 2 {
		t.Errorf("document spans = %d, want 2", len(spans))
	}
	if len(doc.Entries()) != 2 {
		t.Errorf("embedded index entries = %d, want 2", len(doc.Entries()))
	}
}

// TestRoundTripMatchesTree re-parses the serialized index and checks
// that the recovered entry and locator sets match the tree it was
// rendered from, in order.
func TestRoundTripMatchesTree(t *testing.T) {
	source := "cats{^} and cats{^} plus [tap dance]{^QMK > tap dance}\n{index}\n"
	result, err := textindex.Process(source, textindex.Options{})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	doc, err := Parse(result.HTML)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	var wantHeadings, wantIDs []string
	var walk func(nodes []*render.Node)
	walk = func(nodes []*render.Node) {
		for _, n := range nodes {
			wantHeadings = append(wantHeadings, n.Heading)
			for _, r := range n.Ranges {
				wantIDs = append(wantIDs, strconv.Itoa(r.First().ID))
				if !r.Single() {
					wantIDs = append(wantIDs, strconv.Itoa(r.Last().ID))
				}
			}
			walk(n.Children)
		}
	}
	for _, g := range result.Tree.Groups {
		walk(g.Nodes)
	}

	entries := doc.Entries()
	if len(entries) != len(wantHeadings) {
		t.Fatalf("Entries() = %d nodes, want %d", len(entries), len(wantHeadings))
	}
	for i, e := range entries {
		if e.Text() != wantHeadings[i] {
			t.Errorf("entry %d heading = %q, want %q", i, e.Text(), wantHeadings[i])
		}
	}

	locators := doc.Locators()
	if len(locators) != len(wantIDs) {
		t.Fatalf("Locators() = %d nodes, want %d", len(locators), len(wantIDs))
	}
	for i, l := range locators {
		if got := l.Attr("data-index-id"); got != wantIDs[i] {
			t.Errorf("locator %d data-index-id = %q, want %q", i, got, wantIDs[i])
		}
	}
}

func TestNilNodeAccessors(t *testing.T) {
	var n *Node
	if n.Name() != "" || n.Text() != "" || n.Attr("id") != "" || n.Markup() != "" {
		t.Error("nil node accessors should return empty strings")
	}
}
