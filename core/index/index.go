// Package index builds the entry registry for a scanned document: the
// hierarchy of index entries with their occurrences, anchors, aliases
// and cross-references. Binding runs in two passes so anchor references
// can point forward to definitions later in the document.
package index

import (
	"strings"

	"github.com/FocuswithJustin/TextIndex/core/encoding"
)

// Entry is one index heading. Entries form a tree through Parent and
// Children; identity is the normalized heading path, so "Tap Dance" and
// "tap  dance" bind to the same entry while the first-seen spelling is
// kept for display.
type Entry struct {
	Display     []string // heading path as first written, emphasis markers kept
	Label       string   // last display segment
	SortKey     string   // explicit sort override, "" when none
	Parent      *Entry   // nil for top-level entries
	Children    []*Entry // in creation order
	Occurrences []Occurrence
	See         []CrossRef
	SeeAlso     []CrossRef
	Order       int // creation sequence, stable tie-break for sorting

	key string
}

// Occurrence is one indexed position in the document.
type Occurrence struct {
	Ordinal    int    // ordinal of the originating token
	Offset     int    // byte offset of the token in the source
	Line       int    // 1-based source line
	Definition bool   // locator is emphasized when rendered
	RangeClose bool   // merges into the entry's previous locator range
	Passim     bool   // occurrence carries the passim suffix
	Suffix     string // bracket suffix text, e.g. "ff"
}

// CrossRef is a See or See-also target path.
type CrossRef struct {
	Display []string
	Key     string
}

// Key returns the normalized identity of the entry's heading path.
func (e *Entry) Key() string { return e.key }

// Path returns the display path in "a > b" form for messages.
func (e *Entry) Path() string { return strings.Join(e.Display, " > ") }

// keySep joins normalized segments into a path key. It cannot occur in
// segment text.
const keySep = "\x1f"

func normSegment(s string) string {
	return strings.ToLower(collapseSpace(encoding.StripEmphasis(s)))
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func pathKey(display []string) string {
	segs := make([]string, len(display))
	for i, s := range display {
		segs[i] = normSegment(s)
	}
	return strings.Join(segs, keySep)
}
