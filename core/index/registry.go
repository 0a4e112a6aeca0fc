package index

import (
	"fmt"
	"sort"
	"strings"

	ierr "github.com/FocuswithJustin/TextIndex/core/errors"
	"github.com/FocuswithJustin/TextIndex/core/mark"
)

// Registry holds the bound entries of one document.
type Registry struct {
	byKey      map[string]*Entry
	aliases    map[string]*Entry
	aliasOwner map[string]*anchorDef
	anchors    map[string]*anchorDef
	entries    []*Entry
	roots      []*Entry
}

// anchorDef tracks one named anchor from definition to resolution.
type anchorDef struct {
	name      string
	token     int // index of the defining token
	entry     *Entry
	resolving bool
	used      bool
}

func New() *Registry {
	return &Registry{
		byKey:      map[string]*Entry{},
		aliases:    map[string]*Entry{},
		aliasOwner: map[string]*anchorDef{},
		anchors:    map[string]*anchorDef{},
	}
}

// Entries returns every entry in creation order.
func (r *Registry) Entries() []*Entry { return r.entries }

// Roots returns the top-level entries in creation order.
func (r *Registry) Roots() []*Entry { return r.roots }

// Empty reports whether no entries were bound.
func (r *Registry) Empty() bool { return len(r.entries) == 0 }

// Resolve looks up a display path without creating anything, chasing
// aliases the same way binding does. It returns nil for unknown paths.
func (r *Registry) Resolve(display []string) *Entry {
	var ent *Entry
	key := ""
	for _, seg := range display {
		k := normSegment(seg)
		if key == "" {
			key = k
		} else {
			key += keySep + k
		}
		if target, ok := r.aliases[key]; ok {
			ent = target
			key = target.key
			continue
		}
		e, ok := r.byKey[key]
		if !ok {
			return nil
		}
		ent = e
	}
	return ent
}

// Bind registers every token of doc into the registry. Pass one
// collects anchor definitions; pass two binds occurrences and
// cross-references in document order, resolving anchors lazily so a
// reference may precede its definition.
func (r *Registry) Bind(doc *mark.Document) ([]ierr.Warning, error) {
	b := &binder{r: r, doc: doc}
	return b.run()
}

type binder struct {
	r        *Registry
	doc      *mark.Document
	last     *Entry
	warnings []ierr.Warning
}

func (b *binder) run() ([]ierr.Warning, error) {
	for i := range b.doc.Tokens {
		tok := &b.doc.Tokens[i]
		if tok.Kind != mark.KindEntry || tok.Directive.AnchorDef == "" {
			continue
		}
		name := tok.Directive.AnchorDef
		if first, ok := b.r.anchors[name]; ok {
			ft := &b.doc.Tokens[first.token]
			return nil, ierr.NewDuplicateAnchor(name, tok.Line, tok.Col, ft.Line, ft.Col)
		}
		b.r.anchors[name] = &anchorDef{name: name, token: i}
	}

	for i := range b.doc.Tokens {
		tok := &b.doc.Tokens[i]
		if tok.Kind != mark.KindEntry {
			continue
		}
		if err := b.bindToken(tok); err != nil {
			return nil, err
		}
	}

	b.warnUnusedAnchors()
	return b.warnings, nil
}

func (b *binder) bindToken(tok *mark.Token) error {
	d := &tok.Directive
	var ent *Entry
	var err error
	switch {
	case d.Repeat:
		if b.last == nil {
			return ierr.NewToken(tok.Line, tok.Col, tok.Body, "repeat marker with no previous entry")
		}
		ent = b.last
	case d.AnchorDef != "":
		ent, err = b.resolveAnchor(d.AnchorDef, tok, false)
		if err != nil {
			return err
		}
	default:
		display, err := b.resolveDisplay(d.Path, tok)
		if err != nil {
			return err
		}
		ent = b.r.ensure(display)
	}

	if d.SortKey != "" {
		ent.SortKey = d.SortKey
	}

	if len(d.See) > 0 && len(ent.Occurrences) > 0 {
		return ierr.NewAmbiguousEntry(ent.Path(), tok.Line, tok.Col,
			"cannot redirect an entry that already has locators")
	}
	for _, ref := range d.See {
		cr, err := b.crossRef(ref, tok)
		if err != nil {
			return err
		}
		addCrossRef(&ent.See, cr)
	}
	for _, ref := range d.SeeAlso {
		cr, err := b.crossRef(ref, tok)
		if err != nil {
			return err
		}
		addCrossRef(&ent.SeeAlso, cr)
	}

	if !d.DefOnly && len(d.See) == 0 {
		if len(ent.See) > 0 {
			return ierr.NewAmbiguousEntry(ent.Path(), tok.Line, tok.Col,
				"cannot add locators to a See redirect")
		}
		ent.Occurrences = append(ent.Occurrences, Occurrence{
			Ordinal:    tok.Ordinal,
			Offset:     tok.Start,
			Line:       tok.Line,
			Definition: d.Definition,
			RangeClose: d.RangeClose,
			Passim:     d.Passim,
			Suffix:     d.Suffix,
		})
	}
	b.last = ent
	return nil
}

// resolveAnchor returns the entry an anchor names, resolving and
// registering its alias on first use. asUse marks the anchor as
// referenced for the unused-anchor warning.
func (b *binder) resolveAnchor(name string, tok *mark.Token, asUse bool) (*Entry, error) {
	def, ok := b.r.anchors[name]
	if !ok {
		return nil, ierr.NewUnknownAnchor(name, tok.Line, tok.Col)
	}
	if asUse {
		def.used = true
	}
	if def.entry != nil {
		return def.entry, nil
	}
	if def.resolving {
		return nil, ierr.NewConflictingAlias("#"+name, "", "anchor resolution cycle")
	}
	def.resolving = true
	defer func() { def.resolving = false }()

	defTok := &b.doc.Tokens[def.token]
	display, err := b.resolveDisplay(defTok.Directive.Path, defTok)
	if err != nil {
		return nil, err
	}
	ent := b.r.ensure(display)
	def.entry = ent
	if err := b.r.addAlias(name, def, ent); err != nil {
		return nil, err
	}
	return ent, nil
}

// resolveDisplay expands a segment path into display text, splicing
// anchor targets and prefix-search matches in place.
func (b *binder) resolveDisplay(path []mark.Segment, tok *mark.Token) ([]string, error) {
	var display []string
	for _, seg := range path {
		switch {
		case seg.AnchorRef != "":
			target, err := b.resolveAnchor(seg.AnchorRef, tok, true)
			if err != nil {
				return nil, err
			}
			display = append(display, target.Display...)
		case seg.Search != mark.SearchNone:
			found := b.prefixSearch(tok.Visible)
			if found == nil {
				return nil, ierr.NewToken(tok.Line, tok.Col, tok.Body,
					fmt.Sprintf("no entry matches prefix %q", strings.TrimSpace(tok.Visible)))
			}
			if seg.Search == mark.SearchFull {
				display = append(display, found.Display...)
			} else {
				display = append(display, found.Label)
			}
		default:
			display = append(display, collapseSpace(seg.Text))
		}
	}
	return display, nil
}

// prefixSearch finds the earliest-created entry whose label starts with
// the attached text, comparing normalized forms.
func (b *binder) prefixSearch(visible string) *Entry {
	prefix := normSegment(visible)
	if prefix == "" {
		return nil
	}
	for _, e := range b.r.entries {
		if strings.HasPrefix(normSegment(e.Label), prefix) {
			return e
		}
	}
	return nil
}

func (b *binder) crossRef(ref mark.Ref, tok *mark.Token) (CrossRef, error) {
	display, err := b.resolveDisplay(ref.Path, tok)
	if err != nil {
		return CrossRef{}, err
	}
	return CrossRef{Display: display, Key: pathKey(display)}, nil
}

func (b *binder) warnUnusedAnchors() {
	defs := make([]*anchorDef, 0, len(b.r.anchors))
	for _, def := range b.r.anchors {
		defs = append(defs, def)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].token < defs[j].token })
	for _, def := range defs {
		if def.used {
			continue
		}
		tok := &b.doc.Tokens[def.token]
		b.warnings = append(b.warnings, ierr.Warning{
			Code:    ierr.WarnUnusedAnchor,
			Line:    tok.Line,
			Message: fmt.Sprintf("anchor #%s is defined but never referenced", def.name),
		})
	}
}

// ensure returns the entry for a display path, creating any missing
// levels. Each accumulated prefix is checked against the alias table so
// anchor names work as plain top-level headings.
func (r *Registry) ensure(display []string) *Entry {
	var parent *Entry
	key := ""
	for _, seg := range display {
		segDisplay := collapseSpace(seg)
		k := normSegment(segDisplay)
		if key == "" {
			key = k
		} else {
			key += keySep + k
		}
		if target, ok := r.aliases[key]; ok {
			if owner, ok := r.aliasOwner[key]; ok {
				owner.used = true
			}
			parent = target
			key = target.key
			continue
		}
		if e, ok := r.byKey[key]; ok {
			parent = e
			continue
		}
		e := &Entry{
			Display: appendPath(parent, segDisplay),
			Label:   segDisplay,
			Parent:  parent,
			Order:   len(r.entries),
			key:     key,
		}
		r.byKey[key] = e
		r.entries = append(r.entries, e)
		if parent == nil {
			r.roots = append(r.roots, e)
		} else {
			parent.Children = append(parent.Children, e)
		}
		parent = e
	}
	return parent
}

// addAlias makes an anchor name resolvable as a top-level heading. A
// live entry under that heading is a conflict; an empty shell left by a
// definition-only token is replaced by the alias.
func (r *Registry) addAlias(name string, def *anchorDef, target *Entry) error {
	key := normSegment(name)
	if existing, ok := r.aliases[key]; ok {
		if existing == target {
			return nil
		}
		return ierr.NewConflictingAlias(name, target.Path(),
			fmt.Sprintf("already aliased to %q", existing.Path()))
	}
	if shell, ok := r.byKey[key]; ok {
		if shell == target {
			return nil
		}
		if len(shell.Occurrences) > 0 || len(shell.Children) > 0 ||
			len(shell.See) > 0 || len(shell.SeeAlso) > 0 {
			return ierr.NewConflictingAlias(name, target.Path(),
				"an entry with that heading already exists")
		}
		r.removeShell(shell)
	}
	r.aliases[key] = target
	r.aliasOwner[key] = def
	return nil
}

func (r *Registry) removeShell(shell *Entry) {
	delete(r.byKey, shell.key)
	r.entries = removeEntry(r.entries, shell)
	r.roots = removeEntry(r.roots, shell)
}

func removeEntry(list []*Entry, e *Entry) []*Entry {
	for i, have := range list {
		if have == e {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

func appendPath(parent *Entry, seg string) []string {
	if parent == nil {
		return []string{seg}
	}
	path := make([]string, 0, len(parent.Display)+1)
	path = append(path, parent.Display...)
	return append(path, seg)
}

func addCrossRef(list *[]CrossRef, cr CrossRef) {
	for _, have := range *list {
		if have.Key == cr.Key {
			return
		}
	}
	*list = append(*list, cr)
}
