package render

import (
	"strings"

	"github.com/FocuswithJustin/TextIndex/core/encoding"
	"github.com/FocuswithJustin/TextIndex/core/locator"
)

// Text serializes the tree as indented plain text, one entry per line
// and a blank line between groups. Emphasis markup is stripped.
func Text(t *Tree) string {
	var sb strings.Builder
	for gi, g := range t.Groups {
		if gi > 0 {
			sb.WriteString("\n")
		}
		if t.Options.GroupHeadings {
			sb.WriteString(g.Initial + "\n")
		}
		for _, n := range g.Nodes {
			writeEntryText(&sb, t, n, 0)
		}
	}
	return sb.String()
}

func writeEntryText(sb *strings.Builder, t *Tree, n *Node, depth int) {
	sb.WriteString(strings.Repeat("\t", depth))
	sb.WriteString(encoding.StripEmphasis(n.Heading))
	if len(n.Ranges) > 0 {
		parts := make([]string, 0, len(n.Ranges))
		for _, r := range n.Ranges {
			parts = append(parts, rangeText(r))
		}
		sb.WriteString(", " + strings.Join(parts, ", "))
	}
	if bits := xrefBitsText(t, n); bits != "" {
		sb.WriteString(". " + bits)
	}
	sb.WriteString("\n")
	for _, child := range n.Children {
		writeEntryText(sb, t, child, depth+1)
	}
}

func rangeText(r locator.Range) string {
	s := r.First().Value
	if !r.Single() {
		s += "–" + elideEnd(r.First().Value, r.Last().Value)
	}
	if r.Suffix != "" {
		s += " " + r.Suffix
	}
	return s
}

func xrefBitsText(t *Tree, n *Node) string {
	var bits []string
	if s := xrefListText(n.See); s != "" {
		bits = append(bits, capitalize(t.Options.SeeLabel)+" "+s)
	}
	if s := xrefListText(n.SeeAlso); s != "" {
		bits = append(bits, capitalize(t.Options.SeeAlsoLabel)+" "+s)
	}
	return strings.Join(bits, ". ")
}

func xrefListText(refs []XRef) string {
	if len(refs) == 0 {
		return ""
	}
	parts := make([]string, 0, len(refs))
	for _, x := range refs {
		parts = append(parts, encoding.StripEmphasis(strings.Join(x.Display, ": ")))
	}
	return strings.Join(parts, "; ")
}
