package mark

import (
	"regexp"
	"strings"
)

var (
	latexEmphRE    = regexp.MustCompile(`(?i)\\(?:textbf|textit|textsl|emph)\{([^}]+)\}`)
	latexSortRE    = regexp.MustCompile(`^([^@]+)@`)
	latexLocEmphRE = regexp.MustCompile(`\|(?:textbf|textit|textsl|emph)$`)
	latexXrefRE    = regexp.MustCompile(`\|(see(?:also)?)\s*\{([^}]+)\}$`)
	latexContRE    = regexp.MustCompile(`\|([()])$`)
	latexCommaRE   = regexp.MustCompile(`,\s*`)
)

// latexScanLimit bounds the balanced-brace scan for one \index command.
const latexScanLimit = 150

// ConvertLaTeX rewrites LaTeX \index{...} commands into {^...} tokens,
// carrying over sort keys (key@heading), hierarchy (a!b), see and
// seealso cross-references, locator emphasis (|textbf and friends) and
// continuing locators (|( and |)). It returns the rewritten text and
// the number of commands converted. Unbalanced commands are left as-is.
func ConvertLaTeX(source string) (string, int) {
	const cmdOpen = `\index{`
	var b strings.Builder
	converted := 0
	i := 0
	for {
		rel := strings.Index(source[i:], cmdOpen)
		if rel < 0 {
			b.WriteString(source[i:])
			break
		}
		start := i + rel
		depth := 1
		j := start + len(cmdOpen)
		scanned := 0
		for depth > 0 && j < len(source) && scanned < latexScanLimit {
			switch source[j] {
			case '}':
				depth--
			case '{':
				depth++
			}
			j++
			scanned++
		}
		if depth != 0 {
			b.WriteString(source[i : start+len(cmdOpen)])
			i = start + len(cmdOpen)
			continue
		}
		b.WriteString(source[i:start])
		b.WriteString(latexMark(source[start+len(cmdOpen) : j-1]))
		converted++
		i = j
	}
	return b.String(), converted
}

// latexMark converts the content of one \index command into a token.
func latexMark(content string) string {
	continuing := false
	if m := latexContRE.FindStringSubmatch(content); m != nil {
		continuing = m[1] == ")"
		content = content[:len(content)-len(m[0])]
	}

	content = latexEmphRE.ReplaceAllString(content, "_${1}_")

	sortKey := ""
	if m := latexSortRE.FindStringSubmatch(content); m != nil {
		sortKey = m[1]
		content = content[len(m[0]):]
	}

	locEmph := false
	if loc := latexLocEmphRE.FindStringIndex(content); loc != nil {
		locEmph = true
		content = content[:loc[0]]
	}

	xref := ""
	if m := latexXrefRE.FindStringSubmatchIndex(content); m != nil {
		refType := content[m[2]:m[3]]
		path := latexQuoteJoin(latexCommaRE.Split(content[m[4]:m[5]], -1))
		if refType == "seealso" {
			path = "+" + path
		}
		xref = path
		content = content[:m[0]]
	}

	heading := latexQuoteJoin(strings.Split(content, "!"))

	parts := []string{heading}
	if xref != "" {
		parts = append(parts, "|"+xref)
	}
	if sortKey != "" {
		parts = append(parts, "~"+latexQuote(sortKey))
	}
	if continuing {
		parts = append(parts, "/")
	} else if locEmph {
		parts = append(parts, "!")
	}
	return "{^" + strings.Join(parts, " ") + "}"
}

func latexQuoteJoin(parts []string) string {
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = latexQuote(p)
	}
	return strings.Join(out, ">")
}

func latexQuote(s string) string {
	if strings.Contains(s, `"`) {
		return "'" + s + "'"
	}
	return `"` + s + `"`
}
