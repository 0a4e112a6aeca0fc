package mark

import (
	"regexp"
	"strings"
	"unicode/utf8"

	ierr "github.com/FocuswithJustin/TextIndex/core/errors"
)

var (
	placeholderRE      = regexp.MustCompile(`(?im)^\{index[ \t]*([^}\n]*?)[ \t]*\}`)
	placeholderParamRE = regexp.MustCompile(`(?i)(prefix|see|also)=("[^"]*"|'[^']*')`)
)

// Scan locates every {^...} token and {index} placeholder in source.
// Directive bodies are parsed eagerly; the first malformed token aborts
// the scan. Inside a {^-}...{^+} region tokens are located but not
// parsed or emitted, so documents can quote the syntax literally.
func Scan(source string) (*Document, error) {
	doc := &Document{Source: source}
	lt := newLineTracker(source)
	doc.Placeholders = scanPlaceholders(source, lt)

	enabled := true
	i := 0
	for {
		rel := strings.Index(source[i:], "{^")
		if rel < 0 {
			break
		}
		open := i + rel

		// The body runs to the closing brace on the same line. Markup
		// or a line break before the brace means the token never ends.
		end := -1
		j := open + 2
	bodyScan:
		for ; j < len(source); j++ {
			switch source[j] {
			case '}':
				end = j
				break bodyScan
			case '<', '\n':
				break bodyScan
			}
		}
		if end < 0 {
			if !enabled {
				i = open + 2
				continue
			}
			line, col := lt.at(open)
			return nil, ierr.NewToken(line, col, clip(source[open+2:j]), "unterminated token")
		}
		body := source[open+2 : end]

		// Tokens butted against markup are left alone, matching how
		// generated spans sit in already-processed output.
		if end+1 < len(source) && source[end+1] == '<' {
			i = open + 2
			continue
		}
		start, visible, bracketed := attachedText(source, open)
		if start == open && open > 0 && source[open-1] == '>' {
			i = open + 2
			continue
		}

		trimmed := strings.TrimSpace(body)
		if trimmed == "+" || trimmed == "-" {
			enable := trimmed == "+"
			if !enable && !enabled {
				// A second {^-} inside a disabled region stays verbatim.
				i = end + 1
				continue
			}
			enabled = enable
			// The toggle span excludes attached text so removal
			// leaves the surrounding prose intact.
			line, col := lt.at(open)
			doc.Tokens = append(doc.Tokens, Token{
				Ordinal: len(doc.Tokens),
				Start:   open,
				End:     end + 1,
				Line:    line,
				Col:     col,
				Body:    body,
				Kind:    KindToggle,
			})
			i = end + 1
			continue
		}
		if !enabled {
			i = end + 1
			continue
		}

		dir, perr := parseDirective(body, strings.TrimSpace(visible))
		if perr != nil {
			line, col := lt.at(start)
			return nil, ierr.NewToken(line, col, body, perr.Error())
		}
		line, col := lt.at(start)
		doc.Tokens = append(doc.Tokens, Token{
			Ordinal:   len(doc.Tokens),
			Start:     start,
			End:       end + 1,
			Line:      line,
			Col:       col,
			Visible:   visible,
			Bracketed: bracketed,
			Body:      body,
			Kind:      KindEntry,
			Directive: dir,
		})
		i = end + 1
	}
	return doc, nil
}

// attachedText reads the single construct ending at the token opener:
// a [bracketed] span immediately before it, or the maximal run of word
// characters immediately before it, or nothing (standalone token). The
// two never combine; prose outside the one construct is not part of
// the token span. A bracket span containing a brace never serves as
// attachment: it can hold another token, and token spans must not
// nest.
func attachedText(source string, open int) (start int, visible string, bracketed bool) {
	if open == 0 {
		return open, "", false
	}
	if c := source[open-1]; c == ']' && !escapedAt(source, open-1) {
		p := open - 2
		for p >= 0 && bracketContentByte(source[p]) {
			p--
		}
		if p < 0 || source[p] != '[' || escapedAt(source, p) || p+1 == open-1 {
			return open, "", false
		}
		return p, source[p+1 : open-1], true
	}
	if !isAttachedByte(source[open-1]) {
		return open, "", false
	}
	p := open - 1
	for p > 0 && isAttachedByte(source[p-1]) {
		p--
	}
	return p, source[p:open], false
}

func isAttachedByte(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f', '\v', '[', ']', '{', '}', '<', '>':
		return false
	}
	return true
}

func bracketContentByte(c byte) bool {
	switch c {
	case '[', ']', '<', '>', '{', '}':
		return false
	}
	return true
}

func escapedAt(source string, pos int) bool {
	return pos > 0 && source[pos-1] == '\\'
}

func scanPlaceholders(source string, lt *lineTracker) []Placeholder {
	var out []Placeholder
	for _, m := range placeholderRE.FindAllStringSubmatchIndex(source, -1) {
		ph := Placeholder{Start: m[0], End: m[1]}
		ph.Line, _ = lt.at(m[0])
		for _, pm := range placeholderParamRE.FindAllStringSubmatch(source[m[2]:m[3]], -1) {
			val := trimQuotes(pm[2])
			switch strings.ToLower(pm[1]) {
			case "prefix":
				ph.Prefix = val
			case "see":
				ph.See = val
			case "also":
				ph.Also = val
			}
		}
		out = append(out, ph)
	}
	return out
}

// lineTracker converts byte offsets to 1-based line and rune column.
// Forward queries are amortized O(1); a backwards query rescans.
type lineTracker struct {
	src    string
	off    int
	line   int
	lineAt int
}

func newLineTracker(src string) *lineTracker {
	return &lineTracker{src: src, line: 1}
}

func (t *lineTracker) at(off int) (line, col int) {
	if off < t.off {
		t.off, t.line, t.lineAt = 0, 1, 0
	}
	for t.off < off {
		if t.src[t.off] == '\n' {
			t.line++
			t.lineAt = t.off + 1
		}
		t.off++
	}
	return t.line, utf8.RuneCountInString(t.src[t.lineAt:off]) + 1
}

func clip(s string) string {
	const max = 40
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max]) + "..."
}
