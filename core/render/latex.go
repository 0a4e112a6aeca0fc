package render

import (
	"strings"

	"github.com/FocuswithJustin/TextIndex/core/encoding"
	"github.com/FocuswithJustin/TextIndex/core/locator"
)

// Item commands for the three nesting levels theindex knows about.
// Deeper levels keep the last command and only the indent grows.
var latexItems = []string{`\item`, `\subitem`, `\subsubitem`}

// LaTeX serializes the tree as a theindex environment in the shape
// makeindex emits: one item per line, \indexspace between groups,
// ranges joined with a double hyphen. An empty tree serializes to the
// empty string.
func LaTeX(t *Tree) string {
	if t.Empty() {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("\\begin{theindex}\n\n")
	for gi, g := range t.Groups {
		if gi > 0 {
			sb.WriteString("\\indexspace\n")
		}
		if t.Options.GroupHeadings {
			sb.WriteString("\\textbf{" + encoding.EscapeLaTeX(g.Initial) + "}\n")
		}
		for _, n := range g.Nodes {
			writeEntryLaTeX(&sb, t, n, 0)
		}
	}
	sb.WriteString("\n\\end{theindex}\n")
	return sb.String()
}

func writeEntryLaTeX(sb *strings.Builder, t *Tree, n *Node, depth int) {
	cmd := latexItems[len(latexItems)-1]
	if depth < len(latexItems) {
		cmd = latexItems[depth]
	}
	sb.WriteString(strings.Repeat("  ", depth))
	sb.WriteString(cmd + " ")
	sb.WriteString(encoding.TextLaTeX(n.Heading))
	if len(n.Ranges) > 0 {
		parts := make([]string, 0, len(n.Ranges))
		for _, r := range n.Ranges {
			parts = append(parts, rangeLaTeX(r))
		}
		sb.WriteString(", " + strings.Join(parts, ", "))
	}
	if bits := xrefBitsLaTeX(t, n); bits != "" {
		sb.WriteString(". " + bits)
	}
	sb.WriteString("\n")
	for _, child := range n.Children {
		writeEntryLaTeX(sb, t, child, depth+1)
	}
}

func rangeLaTeX(r locator.Range) string {
	var sb strings.Builder
	first, last := r.First(), r.Last()
	if r.Single() {
		sb.WriteString(emphasizeLaTeX(first.Value, rangeEmphasized(r)))
	} else {
		sb.WriteString(emphasizeLaTeX(first.Value, first.Emphasis))
		sb.WriteString("--")
		sb.WriteString(emphasizeLaTeX(elideEnd(first.Value, last.Value), last.Emphasis))
	}
	if r.Suffix != "" {
		sb.WriteString(" " + encoding.EscapeLaTeX(r.Suffix))
	}
	return sb.String()
}

func emphasizeLaTeX(s string, emph bool) string {
	if !emph {
		return s
	}
	return `\emph{` + s + `}`
}

func xrefBitsLaTeX(t *Tree, n *Node) string {
	var bits []string
	if s := xrefListLaTeX(n.See); s != "" {
		bits = append(bits, `\emph{`+encoding.EscapeLaTeX(capitalize(t.Options.SeeLabel))+`} `+s)
	}
	if s := xrefListLaTeX(n.SeeAlso); s != "" {
		bits = append(bits, `\emph{`+encoding.EscapeLaTeX(capitalize(t.Options.SeeAlsoLabel))+`} `+s)
	}
	return strings.Join(bits, ". ")
}

func xrefListLaTeX(refs []XRef) string {
	if len(refs) == 0 {
		return ""
	}
	parts := make([]string, 0, len(refs))
	for _, x := range refs {
		parts = append(parts, encoding.TextLaTeX(strings.Join(x.Display, ": ")))
	}
	return strings.Join(parts, "; ")
}
