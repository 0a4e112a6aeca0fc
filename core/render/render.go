// Package render turns a bound registry and its locator assignment
// into the renderable index tree and serializes it. The Tree is the
// primary output; HTML and plain-text serializers are provided for the
// placeholder substitution and the CLI.
package render

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/FocuswithJustin/TextIndex/core/encoding"
	ierr "github.com/FocuswithJustin/TextIndex/core/errors"
	"github.com/FocuswithJustin/TextIndex/core/index"
	"github.com/FocuswithJustin/TextIndex/core/locator"
)

// Options control tree construction and serialization.
type Options struct {
	SeeLabel      string // redirect label, "see" when empty
	SeeAlsoLabel  string // related-entry label, "see also" when empty
	IDPrefix      string // locator anchor id prefix, "idx" when empty
	GroupHeadings bool   // emit a visible initial above each group
	EmphasisFirst bool   // order emphasized ranges before plain ones
}

func (o Options) withDefaults() Options {
	if o.SeeLabel == "" {
		o.SeeLabel = "see"
	}
	if o.SeeAlsoLabel == "" {
		o.SeeAlsoLabel = "see also"
	}
	if o.IDPrefix == "" {
		o.IDPrefix = "idx"
	}
	return o
}

// XRef is a cross-reference resolved for display.
type XRef struct {
	Display []string // target heading path as written
	EntryID int      // target entry id, 0 when the target does not exist
}

// Node is one renderable index entry.
type Node struct {
	Heading  string // display heading, emphasis markup kept
	EntryID  int    // 1-based creation id, anchors as #entryN
	Ranges   []locator.Range
	See      []XRef
	SeeAlso  []XRef
	Children []*Node

	sortKey string
}

// Group is a run of consecutive top-level nodes sharing an initial.
type Group struct {
	Initial string
	Nodes   []*Node
}

// Tree is the fully ordered index, ready to serialize.
type Tree struct {
	Groups   []Group
	Mode     locator.Mode
	Options  Options
	Warnings []ierr.Warning
}

// Empty reports whether the tree has no entries at all.
func (t *Tree) Empty() bool { return len(t.Groups) == 0 }

// Build constructs the index tree: entries sorted per level, top-level
// entries split into groups at every change of initial, cross-references
// resolved to entry ids. An index with no entries yields an empty tree
// and an empty-index warning.
func Build(reg *index.Registry, asn *locator.Assignment, opts Options) *Tree {
	opts = opts.withDefaults()
	t := &Tree{Mode: asn.Mode, Options: opts}
	b := &builder{reg: reg, asn: asn, opts: opts, tree: t}

	var cur *Group
	for _, n := range b.nodes(reg.Roots()) {
		initial := strings.ToUpper(firstRune(n.sortKey))
		if cur == nil || initial != cur.Initial {
			t.Groups = append(t.Groups, Group{Initial: initial})
			cur = &t.Groups[len(t.Groups)-1]
		}
		cur.Nodes = append(cur.Nodes, n)
	}

	if t.Empty() {
		t.Warnings = append(t.Warnings, ierr.Warning{
			Code:    ierr.WarnEmptyIndex,
			Message: "no index entries found in document",
		})
	}
	return t
}

type builder struct {
	reg  *index.Registry
	asn  *locator.Assignment
	opts Options
	tree *Tree
}

func (b *builder) nodes(entries []*index.Entry) []*Node {
	if len(entries) == 0 {
		return nil
	}
	nodes := make([]*Node, 0, len(entries))
	for _, e := range entries {
		nodes = append(nodes, b.node(e))
	}
	// Entries arrive in creation order, so the stable sort breaks key
	// ties by first appearance.
	sort.SliceStable(nodes, func(i, j int) bool {
		return nodes[i].sortKey < nodes[j].sortKey
	})
	return nodes
}

func (b *builder) node(e *index.Entry) *Node {
	return &Node{
		Heading:  e.Label,
		EntryID:  e.Order + 1,
		Ranges:   b.ranges(e),
		See:      b.xrefs(e, e.See),
		SeeAlso:  b.xrefs(e, e.SeeAlso),
		Children: b.nodes(e.Children),
		sortKey:  sortOn(e),
	}
}

func (b *builder) ranges(e *index.Entry) []locator.Range {
	ranges := b.asn.Ranges[e]
	if !b.opts.EmphasisFirst || len(ranges) < 2 {
		return ranges
	}
	ordered := make([]locator.Range, len(ranges))
	copy(ordered, ranges)
	sort.SliceStable(ordered, func(i, j int) bool {
		return rangeEmphasized(ordered[i]) && !rangeEmphasized(ordered[j])
	})
	return ordered
}

func rangeEmphasized(r locator.Range) bool {
	for _, l := range r.Locs {
		if l.Emphasis {
			return true
		}
	}
	return false
}

// xrefs resolves cross-reference targets to entry ids, sorted
// alphabetically by target path. A target that names no entry keeps a
// zero id and is reported as a dangling cross-reference.
func (b *builder) xrefs(from *index.Entry, refs []index.CrossRef) []XRef {
	if len(refs) == 0 {
		return nil
	}
	out := make([]XRef, 0, len(refs))
	for _, cr := range refs {
		x := XRef{Display: cr.Display}
		if target := b.reg.Resolve(cr.Display); target != nil {
			x.EntryID = target.Order + 1
		} else {
			b.tree.Warnings = append(b.tree.Warnings, ierr.Warning{
				Code: ierr.WarnDanglingXref,
				Message: fmt.Sprintf("cross-reference target %q in entry %q does not exist",
					strings.Join(cr.Display, " > "), from.Path()),
			})
		}
		out = append(out, x)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.Join(out[i].Display, "") < strings.Join(out[j].Display, "")
	})
	return out
}

// Leading English articles are ignored when sorting headings.
var articleRE = regexp.MustCompile(`^(a|an|the)\s+`)

// sortOn returns the entry's sort key: the explicit override when one
// was given, otherwise the heading with emphasis markup stripped. Keys
// are lowercased and lose a leading article.
func sortOn(e *index.Entry) string {
	key := e.SortKey
	if key == "" {
		key = encoding.StripEmphasis(e.Label)
	}
	key = strings.ToLower(strings.TrimSpace(key))
	return articleRE.ReplaceAllString(key, "")
}

func firstRune(s string) string {
	for _, r := range s {
		return string(r)
	}
	return ""
}
