// Package mark locates and parses inline index annotations in text
// documents. An annotation token is a {^body} directive, optionally
// preceded by attached visible text: a word run (penguins{^}) or a
// bracketed span ([tap dance]{^}). The scanner finds tokens and the
// index placeholder line; the directive grammar parses token bodies.
package mark

// Kind discriminates scanned tokens.
type Kind int

const (
	// KindEntry is an annotation that contributes to the index.
	KindEntry Kind = iota
	// KindToggle is a processing toggle ({^+} or {^-}) that was
	// effective and must be removed from the output.
	KindToggle
)

// SearchKind marks a path segment that is a prefix-search wildcard.
type SearchKind int

const (
	// SearchNone means the segment is literal text or an anchor.
	SearchNone SearchKind = iota
	// SearchFull (*^) substitutes the full path of the first entry
	// whose label starts with the attached text.
	SearchFull
	// SearchLabel (*^-) substitutes only the matched entry's label.
	SearchLabel
)

// Segment is one component of a heading path. Exactly one of Text,
// AnchorRef, or Search is populated.
type Segment struct {
	Text      string     // literal segment text
	AnchorRef string     // anchor name to splice at this position, without #
	Search    SearchKind // prefix-search wildcard
}

// Ref is a cross-reference target path.
type Ref struct {
	Path []Segment
}

// Directive is the parsed body of an annotation token.
type Directive struct {
	Path       []Segment
	AnchorDef  string // anchor name this token defines ("" when none)
	DefOnly    bool   // ## form: define the anchor without an occurrence
	Repeat     bool   // ^ form: reuse the previous distinct entry path
	Suffix     string // bracket suffix text, e.g. "passim"
	Passim     bool   // suffix was exactly "passim"
	See        []Ref
	SeeAlso    []Ref
	SortKey    string
	Definition bool // ! flag: emphasize this occurrence's locator
	RangeClose bool // / flag: close the entry's open range
}

// Token is one scanned annotation.
type Token struct {
	Ordinal   int    // 0-based position in scan order
	Start     int    // byte offset of the replacement span (attached text included)
	End       int    // byte offset just past the closing brace
	Line      int    // 1-based line of Start
	Col       int    // 1-based rune column of Start
	Visible   string // attached text as it appears in the document ("" for standalone)
	Bracketed bool   // visible text came from a [...] span
	Body      string // raw directive body between {^ and }
	Kind      Kind
	Directive Directive
}

// ConsumesLocator reports whether the token records an occurrence and
// so takes a locator id in reference mode. Definition-only anchors,
// pure See redirects and toggles do not.
func (t *Token) ConsumesLocator() bool {
	return t.Kind == KindEntry && !t.Directive.DefOnly && len(t.Directive.See) == 0
}

// Placeholder is an {index ...} line found by the scanner.
type Placeholder struct {
	Start  int // byte offset of the opening brace
	End    int // byte offset just past the closing brace
	Line   int // 1-based line
	Prefix string
	See    string
	Also   string
}

// Document is the result of scanning a source text.
type Document struct {
	Source       string
	Tokens       []Token
	Placeholders []Placeholder
}
