// Package encoding provides shared escaping and inline-markup utilities
// for emitted index output.
package encoding

import (
	"regexp"
	"strings"
)

// EscapeHTML escapes special characters for HTML content.
// Escapes: & < > "
func EscapeHTML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, "\"", "&quot;")
	return s
}

// EscapeLaTeX escapes special characters for LaTeX documents.
// Escapes: \ { } $ % & # _ ^ ~
func EscapeLaTeX(s string) string {
	// Use placeholder for backslash to avoid re-escaping braces in \textbackslash{}
	const placeholder = "\x00BACKSLASH\x00"
	s = strings.ReplaceAll(s, "\\", placeholder)

	replacements := []struct {
		old, new string
	}{
		{"{", "\\{"},
		{"}", "\\}"},
		{"$", "\\$"},
		{"%", "\\%"},
		{"&", "\\&"},
		{"#", "\\#"},
		{"_", "\\_"},
		{"^", "\\^{}"},
		{"~", "\\~{}"},
	}

	for _, r := range replacements {
		s = strings.ReplaceAll(s, r.old, r.new)
	}

	s = strings.ReplaceAll(s, placeholder, "\\textbackslash{}")
	return s
}

// Underscore emphasis is recognized only at word boundaries so that
// snake_case identifiers survive untouched: a run opens after start of
// string, whitespace, or an opening bracket, and closes before end of
// string, whitespace, a closing bracket, or trailing punctuation.
var emphasisRE = regexp.MustCompile(`(^|[\s(\[{])_(\S|\S.*?\S)_($|[\s)\]},;:.?!])`)

// EmphasisHTML converts _underscore_ emphasis runs to <em> elements.
// The input must already be HTML-escaped.
func EmphasisHTML(s string) string {
	for {
		replaced := emphasisRE.ReplaceAllString(s, "${1}<em>${2}</em>${3}")
		if replaced == s {
			return s
		}
		s = replaced
	}
}

// TextLaTeX renders s as LaTeX text: special characters are escaped
// and _underscore_ emphasis runs become \emph commands. Escaping and
// emphasis happen in one pass because EscapeLaTeX would otherwise
// consume the underscore markers.
func TextLaTeX(s string) string {
	var sb strings.Builder
	for {
		m := emphasisRE.FindStringSubmatchIndex(s)
		if m == nil {
			break
		}
		sb.WriteString(EscapeLaTeX(s[:m[3]]))
		sb.WriteString(`\emph{`)
		sb.WriteString(EscapeLaTeX(s[m[4]:m[5]]))
		sb.WriteString(`}`)
		// The closing boundary can open the next run, so it stays.
		s = s[m[6]:]
	}
	sb.WriteString(EscapeLaTeX(s))
	return sb.String()
}

// StripEmphasis removes _underscore_ emphasis markers, keeping the text.
// Used for sort keys and normalized heading identity.
func StripEmphasis(s string) string {
	for {
		replaced := emphasisRE.ReplaceAllString(s, "${1}${2}${3}")
		if replaced == s {
			return s
		}
		s = replaced
	}
}
