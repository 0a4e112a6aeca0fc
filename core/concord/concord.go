// Package concord applies concordance rules to a document, wrapping
// term matches in index annotation tokens. A rule pairs a term pattern
// with a directive body; matching text outside exclusion zones becomes
// [match]{^body}. The marked document then goes through the normal
// pipeline.
package concord

import (
	"regexp"
	"sort"
	"strings"

	ierr "github.com/FocuswithJustin/TextIndex/core/errors"
)

// exclusionRE finds the spans concordance must not touch: placeholder
// lines, existing annotation tokens with their attached text, and HTML
// tags.
var exclusionRE = regexp.MustCompile(
	`(?im)^\{index[ \t]*[^}\n]*\}` +
		`|(?:\[[^\]<>\n]*\]|[^\s\[\]{}<>]+)*\{\^[^}<\n]*\}` +
		`|<[^>\n]*>`)

var tabRunRE = regexp.MustCompile(`\t+`)

// Rule is one concordance rule: a compiled term pattern and the
// directive body written into every inserted token.
type Rule struct {
	Pattern *regexp.Regexp
	Body    string
}

// Compile builds a Rule from a term pattern and a directive body. The
// term is a regular expression. A leading = makes it case-sensitive and
// \= escapes a literal equals sign; otherwise any uppercase letter in
// the pattern makes it case-sensitive and an all-lowercase pattern
// matches case-insensitively.
func Compile(term, body string) (Rule, error) {
	sensitive := false
	switch {
	case strings.HasPrefix(term, `\=`):
		term = term[1:]
	case strings.HasPrefix(term, "="):
		term = term[1:]
		sensitive = true
	case term != strings.ToLower(term):
		sensitive = true
	}
	if !sensitive {
		term = "(?i)" + term
	}
	re, err := regexp.Compile(term)
	if err != nil {
		return Rule{}, ierr.Wrap(err, "bad term pattern")
	}
	return Rule{Pattern: re, Body: body}, nil
}

// ParseTSV reads concordance rules from tab-separated data: one rule
// per line, term pattern then directive body. Tab runs collapse to one
// separator, a missing body column means an empty directive, and lines
// that are blank or start with # are skipped.
func ParseTSV(data string) ([]Rule, error) {
	var rules []Rule
	for i, line := range strings.Split(data, "\n") {
		if strings.HasPrefix(line, "#") || strings.TrimSpace(line) == "" {
			continue
		}
		cols := strings.Split(tabRunRE.ReplaceAllString(line, "\t"), "\t")
		body := ""
		if len(cols) > 1 {
			body = cols[1]
		}
		rule, err := Compile(cols[0], body)
		if err != nil {
			return nil, ierr.Wrapf(err, "concordance line %d", i+1)
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

type insertion struct {
	start, end int
	body       string
}

// Mark applies rules to document in order and returns the marked text
// with the number of tokens inserted. Earlier rules win overlaps: every
// accepted match joins the exclusion list before the next rule runs.
func Mark(document string, rules []Rule) (string, int) {
	exclusions := exclusionRE.FindAllStringIndex(document, -1)
	var inserts []insertion
	for _, rule := range rules {
		var accepted [][]int
		checked := 0
		for _, m := range rule.Pattern.FindAllStringIndex(document, -1) {
			if overlapsExcluded(exclusions, m[0], m[1], &checked) {
				continue
			}
			inserts = append(inserts, insertion{start: m[0], end: m[1], body: rule.Body})
			accepted = append(accepted, m)
		}
		exclusions = append(exclusions, accepted...)
		sort.Slice(exclusions, func(i, j int) bool { return exclusions[i][0] < exclusions[j][0] })
	}

	sort.Slice(inserts, func(i, j int) bool { return inserts[i].start < inserts[j].start })
	var sb strings.Builder
	pos := 0
	for _, in := range inserts {
		sb.WriteString(document[pos:in.start])
		sb.WriteString("[")
		sb.WriteString(document[in.start:in.end])
		sb.WriteString("]{^")
		sb.WriteString(in.body)
		sb.WriteString("}")
		pos = in.end
	}
	sb.WriteString(document[pos:])
	return sb.String(), len(inserts)
}

// overlapsExcluded reports whether [start,end) intersects any exclusion.
// Exclusions are sorted by start and queries arrive in document order,
// so checked carries the scan position between calls.
func overlapsExcluded(exclusions [][]int, start, end int, checked *int) bool {
	for i := *checked; i < len(exclusions); i++ {
		e := exclusions[i]
		if e[1] <= start {
			*checked = i
			continue
		}
		if e[0] >= end {
			return false
		}
		return true
	}
	return false
}
