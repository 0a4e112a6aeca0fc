// Package rewrite produces the output document. Every annotation token
// is replaced in place: reference mode drops a marker span carrying the
// occurrence's locator id, paginated mode leaves bare visible text, and
// toggle tokens disappear. The placeholder line is substituted with the
// rendered index.
package rewrite

import (
	"fmt"
	"sort"
	"strings"

	"github.com/FocuswithJustin/TextIndex/core/encoding"
	ierr "github.com/FocuswithJustin/TextIndex/core/errors"
	"github.com/FocuswithJustin/TextIndex/core/locator"
	"github.com/FocuswithJustin/TextIndex/core/mark"
)

type edit struct {
	start, end int
	text       string
}

// Document rewrites the scanned document using the locator assignment
// and the serialized index. A document without a placeholder line is
// returned with its tokens rewritten but no index inserted, reported as
// a warning rather than a failure.
func Document(doc *mark.Document, asn *locator.Assignment, index, idPrefix string) (string, []ierr.Warning) {
	if idPrefix == "" {
		idPrefix = "idx"
	}

	edits := make([]edit, 0, len(doc.Tokens)+1)
	for i := range doc.Tokens {
		tok := &doc.Tokens[i]
		edits = append(edits, edit{tok.Start, tok.End, replacement(tok, asn, idPrefix)})
	}

	var warnings []ierr.Warning
	if len(doc.Placeholders) == 0 {
		warnings = append(warnings, ierr.Warning{
			Code:    ierr.WarnMissingPlaceholder,
			Message: "no {index} placeholder line; the rendered index was not inserted",
		})
	} else {
		ph := doc.Placeholders[0]
		edits = append(edits, edit{ph.Start, ph.End, index})
	}
	sort.Slice(edits, func(i, j int) bool { return edits[i].start < edits[j].start })

	var sb strings.Builder
	sb.Grow(len(doc.Source) + len(index))
	pos := 0
	for _, e := range edits {
		if e.start < pos {
			continue
		}
		sb.WriteString(doc.Source[pos:e.start])
		sb.WriteString(e.text)
		pos = e.end
	}
	sb.WriteString(doc.Source[pos:])
	return sb.String(), warnings
}

// replacement builds the text that takes a token's place. Visible text
// survives every form; only occurrence-recording tokens in reference
// mode gain a marker span.
func replacement(tok *mark.Token, asn *locator.Assignment, idPrefix string) string {
	if tok.Kind == mark.KindToggle {
		return ""
	}
	visible := encoding.EmphasisHTML(tok.Visible)
	loc, ok := asn.Locs[tok.Ordinal]
	if asn.Mode != locator.ModeReference || !ok {
		return visible
	}
	return fmt.Sprintf("<span id=\"%s%d\" class=\"textindex\">%s</span>", idPrefix, loc.ID, visible)
}
