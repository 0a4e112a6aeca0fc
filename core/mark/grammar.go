package mark

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/FocuswithJustin/TextIndex/core/encoding"
)

// bodyGrammar is the participle grammar for directive bodies.
// Canonical shape: path [suffix] |refs ~sort, with ! and / flags
// stripped from the raw body before parsing.
// Examples: "tap dance", "QMK > tap dance#td", "#td", "a|+b;c ~'key'"
//
// Every segment alternative consumes at least one token and a path
// segment after ">" is optional, so a dangling trailing ">" is
// tolerated while a path-less body (refs, sort key, or suffix only)
// skips the path group cleanly instead of matching it empty.
//
//nolint:govet // participle grammar tags are not standard struct tags
type bodyGrammar struct {
	Path   []segmentNode `( @@ ( ">" @@? )* )?`
	Suffix *string       `@Suffix?`
	Pipe   bool          `( @"|"`
	Refs   []refNode     `  ( @@ ( ";" @@ )* )? )?`
	Sort   *sortNode     `( "~" @@ )?`
}

//nolint:govet // participle grammar tags are not standard struct tags
type segmentNode struct {
	Search string   `( @Search`
	Caret  bool     `| @Caret`
	Parts  []string `| ( @Quoted | @Word )+`
	Anchor string   `  @Anchor? | @Anchor )`
}

//nolint:govet // participle grammar tags are not standard struct tags
type refNode struct {
	Path []segmentNode `@@ ( ">" @@? )*`
}

//nolint:govet // participle grammar tags are not standard struct tags
type sortNode struct {
	Quoted string   `  @Quoted`
	Words  []string `| @Word+`
}

// bodyLexer tokenizes directive bodies. Word deliberately excludes the
// structural characters; headings that need them must be quoted.
var bodyLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Quoted", Pattern: `"[^"]*"|'[^']*'`},
	{Name: "Anchor", Pattern: `##?[A-Za-z0-9_-]+`},
	{Name: "Search", Pattern: `\*\^-?`},
	{Name: "Suffix", Pattern: `\[[^\]]*\]`},
	{Name: "Gt", Pattern: `>`},
	{Name: "Pipe", Pattern: `\|`},
	{Name: "Semi", Pattern: `;`},
	{Name: "Tilde", Pattern: `~`},
	{Name: "Caret", Pattern: `\^`},
	{Name: "Word", Pattern: `[^\s>|;~#^\[\]"']+`},
	{Name: "Whitespace", Pattern: `\s+`},
})

// bodyParser is the participle parser for directive bodies.
var bodyParser = participle.MustBuild[bodyGrammar](
	participle.Lexer(bodyLexer),
	participle.Elide("Whitespace"),
)

const passimSuffix = "passim"

// parseDirective parses a raw directive body. visible is the attached
// text, used for wildcard substitution and as the default heading.
func parseDirective(body, visible string) (Directive, error) {
	var d Directive

	s := strings.TrimSpace(body)

	// Trailing flags come off before lexing so that mid-body ! and /
	// stay literal heading characters.
	for {
		s = strings.TrimRight(s, " \t")
		switch {
		case strings.HasSuffix(s, "/"):
			d.RangeClose = true
			s = s[:len(s)-1]
			continue
		case strings.HasSuffix(s, "!"):
			d.Definition = true
			s = s[:len(s)-1]
			continue
		}
		break
	}

	if s == "" {
		if visible == "" {
			return d, errors.New("no heading derivable")
		}
		d.Path = []Segment{{Text: visible}}
		return d, nil
	}

	ast, err := bodyParser.ParseString("", s)
	if err != nil {
		return d, fmt.Errorf("unparsable body: %v", err)
	}

	path, repeat, anchorDef, defOnly, err := convertPath(ast.Path, visible)
	if err != nil {
		return d, err
	}
	d.Path = path
	d.Repeat = repeat
	d.AnchorDef = anchorDef
	d.DefOnly = defOnly

	if d.Repeat && (len(d.Path) > 0 || d.AnchorDef != "") {
		return d, errors.New("repeat marker must stand alone")
	}

	if len(d.Path) == 0 && !d.Repeat {
		if visible == "" && d.AnchorDef != "" {
			return d, errors.New("anchor definition requires a heading")
		}
		if visible != "" {
			d.Path = []Segment{{Text: visible}}
		}
	}

	if ast.Suffix != nil {
		d.Suffix = strings.TrimSpace(strings.Trim(*ast.Suffix, "[]"))
		d.Passim = d.Suffix == passimSuffix
	}

	if ast.Pipe && len(ast.Refs) == 0 {
		return d, errors.New("empty cross-reference target")
	}
	for _, rn := range ast.Refs {
		ref, also, err := convertRef(rn, visible)
		if err != nil {
			return d, err
		}
		if also {
			d.SeeAlso = append(d.SeeAlso, ref)
		} else {
			d.See = append(d.See, ref)
		}
	}

	if ast.Sort != nil {
		if ast.Sort.Quoted != "" {
			d.SortKey = trimQuotes(ast.Sort.Quoted)
		} else {
			d.SortKey = strings.Join(ast.Sort.Words, " ")
		}
	}

	if len(d.Path) == 0 && !d.Repeat && d.AnchorDef == "" {
		return d, errors.New("no heading derivable")
	}

	if d.DefOnly && (len(d.See) > 0 || len(d.SeeAlso) > 0 || d.SortKey != "" || d.Definition || d.RangeClose) {
		return d, errors.New("definition-only anchor cannot carry cross-references, a sort key, or flags")
	}

	return d, nil
}

// convertPath turns grammar segments into directive segments, pulling
// out repeat markers and a trailing anchor definition.
func convertPath(nodes []segmentNode, visible string) (path []Segment, repeat bool, anchorDef string, defOnly bool, err error) {
	for i, n := range nodes {
		last := i == len(nodes)-1
		switch {
		case n.Search != "":
			if visible == "" {
				return nil, false, "", false, errors.New("search wildcard requires attached text")
			}
			kind := SearchFull
			if strings.HasSuffix(n.Search, "-") {
				kind = SearchLabel
			}
			path = append(path, Segment{Search: kind})

		case n.Caret:
			repeat = true

		case len(n.Parts) == 0 && n.Anchor != "":
			name, def := anchorName(n.Anchor)
			if def {
				// ##name defines the path built so far, or the
				// attached text when the path is empty.
				if !last {
					return nil, false, "", false, errors.New("anchor definition must end the path")
				}
				anchorDef, defOnly = name, true
			} else {
				path = append(path, Segment{AnchorRef: name})
			}

		case len(n.Parts) > 0:
			text := joinParts(n.Parts, visible)
			if text == "" {
				return nil, false, "", false, errors.New("empty path segment")
			}
			path = append(path, Segment{Text: text})
			if n.Anchor != "" {
				if !last {
					return nil, false, "", false, errors.New("anchor definition must end the path")
				}
				name, def := anchorName(n.Anchor)
				anchorDef, defOnly = name, def
			}

		default:
			return nil, false, "", false, errors.New("empty path segment")
		}
	}
	return path, repeat, anchorDef, defOnly, nil
}

// convertRef turns a grammar ref into a directive Ref, reporting
// whether it is a See-also (+ prefixed) target.
func convertRef(rn refNode, visible string) (Ref, bool, error) {
	var ref Ref
	also := false
	for i, n := range rn.Path {
		switch {
		case n.Search != "":
			return ref, false, errors.New("search wildcard not allowed in cross-reference")
		case n.Caret:
			return ref, false, errors.New("repeat marker not allowed in cross-reference")
		case len(n.Parts) == 0 && n.Anchor != "":
			name, def := anchorName(n.Anchor)
			if def {
				return ref, false, errors.New("anchor definition not allowed in cross-reference")
			}
			ref.Path = append(ref.Path, Segment{AnchorRef: name})
		default:
			parts := n.Parts
			if i == 0 && len(parts) > 0 {
				// A leading + marks a See-also target. It can be
				// glued to the first word or stand alone.
				if parts[0] == "+" {
					also = true
					parts = parts[1:]
				} else if strings.HasPrefix(parts[0], "+") {
					also = true
					parts = append([]string{strings.TrimPrefix(parts[0], "+")}, parts[1:]...)
				}
			}
			if n.Anchor != "" {
				return ref, false, errors.New("anchor definition not allowed in cross-reference")
			}
			text := joinParts(parts, visible)
			if text == "" && len(rn.Path) == 1 && !also {
				return ref, false, errors.New("empty cross-reference target")
			}
			if text == "" {
				if i == 0 && also {
					// "+ target": the marker consumed the whole first
					// word; the target continues in the next parts.
					continue
				}
				return ref, false, errors.New("empty cross-reference target")
			}
			ref.Path = append(ref.Path, Segment{Text: text})
		}
	}
	if len(ref.Path) == 0 {
		return ref, false, errors.New("empty cross-reference target")
	}
	return ref, also, nil
}

// joinParts assembles a segment's text parts, stripping quotes and
// substituting the * and ** wildcards with the attached text.
func joinParts(parts []string, visible string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if len(p) >= 2 && (p[0] == '"' || p[0] == '\'') {
			p = trimQuotes(p)
		} else if visible != "" {
			plain := plainVisible(visible)
			p = strings.ReplaceAll(p, "**", strings.ToLower(plain))
			p = strings.ReplaceAll(p, "*", plain)
		}
		out = append(out, p)
	}
	joined := strings.TrimSpace(strings.Join(out, " "))
	return joined
}

// plainVisible is the attached text as it reads in the index: emphasis
// markers stripped, surrounding space removed.
func plainVisible(visible string) string {
	return strings.TrimSpace(encoding.StripEmphasis(visible))
}

func trimQuotes(s string) string {
	if len(s) >= 2 {
		return s[1 : len(s)-1]
	}
	return s
}

func anchorName(tok string) (name string, def bool) {
	name = strings.TrimPrefix(tok, "#")
	if strings.HasPrefix(name, "#") {
		return strings.TrimPrefix(name, "#"), true
	}
	return name, false
}
