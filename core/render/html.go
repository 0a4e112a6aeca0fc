package render

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/FocuswithJustin/TextIndex/core/encoding"
	"github.com/FocuswithJustin/TextIndex/core/locator"
)

// HTML serializes the tree as a nested definition list. This is the
// markup the rewriter substitutes for the placeholder line.
func HTML(t *Tree) string {
	var sb strings.Builder
	sb.WriteString("<dl class=\"textindex index\">\n")
	for _, g := range t.Groups {
		sb.WriteString("\t<dt class=\"group-separator\">&nbsp;</dt>\n")
		if t.Options.GroupHeadings {
			fmt.Fprintf(&sb, "\t<dt class=\"group-separator group-heading\">%s</dt>\n",
				encoding.EscapeHTML(g.Initial))
		}
		for _, n := range g.Nodes {
			sb.WriteString(entryHTML(t, n))
		}
	}
	sb.WriteString("</dl>\n")
	return sb.String()
}

// entryHTML renders one entry row plus its nested children. Callers
// prefix the returned chunk to indent it; only the first line moves.
func entryHTML(t *Tree, n *Node) string {
	var sb strings.Builder
	sb.WriteString("\t<dt>")
	fmt.Fprintf(&sb, "<span id=\"entry%d\" class=\"entry-heading\">%s</span>",
		n.EntryID, headingHTML(n.Heading))

	refs := locatorListHTML(t, n)
	bits := xrefBitsHTML(t, n)
	switch {
	case refs != "":
		sb.WriteString("<span class=\"entry-references\">, " + refs)
		if len(n.Children) == 0 && bits != "" {
			sb.WriteString(". " + bits)
		}
		sb.WriteString("</span>")
	case len(n.Children) == 0 && bits != "":
		sb.WriteString("<span class=\"entry-references\">. " + bits + "</span>")
	}
	sb.WriteString("</dt>\n")

	if len(n.Children) > 0 {
		sb.WriteString("\t<dd>\n\t\t<dl>\n")
		// Cross-references of a parent entry become the first child row.
		if bits != "" {
			sb.WriteString("\t\t\t<dt><span class=\"entry-references\">" + bits + "</span></dt>\n")
		}
		for _, child := range n.Children {
			sb.WriteString("\t\t\t" + entryHTML(t, child))
		}
		sb.WriteString("\t\t</dl>\n\t</dd>\n")
	}
	return sb.String()
}

func headingHTML(s string) string {
	return encoding.EmphasisHTML(encoding.EscapeHTML(s))
}

func locatorListHTML(t *Tree, n *Node) string {
	if len(n.Ranges) == 0 {
		return ""
	}
	parts := make([]string, 0, len(n.Ranges))
	for _, r := range n.Ranges {
		parts = append(parts, rangeHTML(t, r))
	}
	return strings.Join(parts, ", ")
}

// rangeHTML renders one compressed range. Reference mode emits empty
// locator anchors carrying the ids as data attributes; paginated mode
// emits plain page numbers. The end locator is elided Chicago style and
// emphasis applies to the displayed endpoint that earned it.
func rangeHTML(t *Tree, r locator.Range) string {
	var sb strings.Builder
	first, last := r.First(), r.Last()
	if r.Single() {
		sb.WriteString(emphasize(locatorHTML(t, first, first.Value), rangeEmphasized(r)))
	} else {
		elided := elideEnd(first.Value, last.Value)
		sb.WriteString(emphasize(locatorHTML(t, first, first.Value), first.Emphasis))
		sb.WriteString("–")
		sb.WriteString(emphasize(locatorHTML(t, last, elided), last.Emphasis))
	}
	if r.Suffix != "" {
		sb.WriteString(" " + encoding.EscapeHTML(r.Suffix))
	}
	return sb.String()
}

func locatorHTML(t *Tree, l locator.RangeLoc, display string) string {
	if t.Mode == locator.ModePaginated {
		return display
	}
	return fmt.Sprintf("<a class=\"locator\" href=\"#%s%d\" data-index-id=\"%d\" data-index-id-elided=\"%s\"></a>",
		t.Options.IDPrefix, l.ID, l.ID, display)
}

func emphasize(s string, emph bool) string {
	if !emph {
		return s
	}
	return "<em>" + s + "</em>"
}

// elideEnd shortens a range's end locator by dropping the digits it
// shares with the start, keeping two digits in the teens: 123–125
// displays as 123–5 but 114–118 as 114–18.
func elideEnd(start, end string) string {
	if len(start) != len(end) || len(end) <= 1 || start == end {
		return end
	}
	cut := 0
	for cut < len(end) && start[cut] == end[cut] {
		cut++
	}
	if cut == len(end)-1 && end[len(end)-2] == '1' {
		cut--
	}
	return end[cut:]
}

func xrefBitsHTML(t *Tree, n *Node) string {
	var bits []string
	if see := xrefListHTML(n.See); see != "" {
		bits = append(bits, "<em>"+capitalize(t.Options.SeeLabel)+"</em> "+see)
	}
	if also := xrefListHTML(n.SeeAlso); also != "" {
		bits = append(bits, "<em>"+capitalize(t.Options.SeeAlsoLabel)+"</em> "+also)
	}
	return strings.Join(bits, ". ")
}

func xrefListHTML(refs []XRef) string {
	if len(refs) == 0 {
		return ""
	}
	parts := make([]string, 0, len(refs))
	for _, x := range refs {
		pathText := headingHTML(strings.Join(x.Display, ": "))
		if x.EntryID > 0 {
			parts = append(parts, fmt.Sprintf("<a class=\"entry-link\" href=\"#entry%d\">%s</a>", x.EntryID, pathText))
		} else {
			parts = append(parts, pathText)
		}
	}
	return strings.Join(parts, "; ")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}
