// Package locator assigns locator values to annotation tokens and
// compresses each entry's occurrence list into display ranges.
//
// In reference mode every consuming token takes the next sequential id
// and the rewriter drops a matching span into the document. In
// paginated mode locators are page numbers supplied by a Pager and no
// spans are written.
package locator

import (
	"fmt"
	"strconv"

	ierr "github.com/FocuswithJustin/TextIndex/core/errors"
	"github.com/FocuswithJustin/TextIndex/core/index"
	"github.com/FocuswithJustin/TextIndex/core/mark"
)

// Mode selects how locator values are produced.
type Mode int

const (
	// ModeReference numbers annotations sequentially from 1.
	ModeReference Mode = iota
	// ModePaginated maps annotation offsets to page numbers.
	ModePaginated
)

// Pager maps a source byte offset to a page number.
type Pager func(offset int) int

// BytePager views the document as fixed-size byte windows numbered
// from 1. It stands in for a typesetter's page map when none exists.
func BytePager(pageSize int) Pager {
	if pageSize <= 0 {
		pageSize = 2000
	}
	return func(offset int) int {
		return offset/pageSize + 1
	}
}

// Loc is one assigned locator value.
type Loc struct {
	ID      int    // sequential reference id; 0 in paginated mode
	Numeric int    // value used for adjacency and elision
	Value   string // rendered locator text
}

// RangeLoc is a locator covered by a range, with its occurrence flags.
type RangeLoc struct {
	Loc
	Emphasis bool // occurrence carried the definition flag
	Ordinal  int  // originating token ordinal
}

// Range is a run of locators displayed as one index reference. Every
// covered occurrence is kept so no locator is silently dropped; only
// the first and last render.
type Range struct {
	Locs   []RangeLoc
	Passim bool
	Suffix string // trailing suffix text, e.g. "passim" or "ff"
}

// First returns the opening display endpoint.
func (r Range) First() RangeLoc { return r.Locs[0] }

// Last returns the closing display endpoint.
func (r Range) Last() RangeLoc { return r.Locs[len(r.Locs)-1] }

// Single reports whether the range renders as one locator.
func (r Range) Single() bool { return r.First().Value == r.Last().Value }

// Assignment is the result of locator assignment for one document.
type Assignment struct {
	Mode     Mode
	Locs     map[int]Loc // token ordinal → assigned locator
	Ranges   map[*index.Entry][]Range
	Warnings []ierr.Warning
}

// Assign walks the document's tokens in order, giving each consuming
// token a locator, then compresses every entry's occurrences. Adjacent
// locators (equal or successive values) merge into ranges; an explicit
// range close merges regardless of the gap; a passim occurrence marks
// the current range passim, which then absorbs every later occurrence
// of the entry regardless of adjacency. Ranges completed before the
// passim occurrence stay as they are.
func Assign(doc *mark.Document, reg *index.Registry, mode Mode, pager Pager) (*Assignment, error) {
	if mode == ModePaginated && pager == nil {
		return nil, ierr.Wrap(ierr.ErrInvalidInput, "paginated mode requires a pager")
	}
	a := &Assignment{
		Mode:   mode,
		Locs:   map[int]Loc{},
		Ranges: map[*index.Entry][]Range{},
	}
	next := 0
	for i := range doc.Tokens {
		tok := &doc.Tokens[i]
		if !tok.ConsumesLocator() {
			continue
		}
		var loc Loc
		if mode == ModeReference {
			next++
			loc = Loc{ID: next, Numeric: next, Value: strconv.Itoa(next)}
		} else {
			page := pager(tok.Start)
			loc = Loc{Numeric: page, Value: strconv.Itoa(page)}
		}
		a.Locs[tok.Ordinal] = loc
	}
	for _, e := range reg.Entries() {
		if len(e.Occurrences) == 0 {
			continue
		}
		ranges, warns := a.compress(e)
		a.Ranges[e] = ranges
		a.Warnings = append(a.Warnings, warns...)
	}
	return a, nil
}

func (a *Assignment) compress(e *index.Entry) ([]Range, []ierr.Warning) {
	var ranges []Range
	var warnings []ierr.Warning
	for _, occ := range e.Occurrences {
		loc := a.rangeLoc(occ)
		if len(ranges) == 0 {
			if occ.RangeClose {
				warnings = append(warnings, ierr.Warning{
					Code:    ierr.WarnStrayRangeClose,
					Line:    occ.Line,
					Message: fmt.Sprintf("range close for %q with no open locator", e.Path()),
				})
			}
			ranges = append(ranges, newRange(loc, occ))
			continue
		}
		last := &ranges[len(ranges)-1]
		prev := last.Locs[len(last.Locs)-1]
		adjacent := loc.Numeric == prev.Numeric || loc.Numeric == prev.Numeric+1
		if !adjacent && !last.Passim && !occ.Passim && !occ.RangeClose {
			ranges = append(ranges, newRange(loc, occ))
			continue
		}
		last.Locs = append(last.Locs, loc)
		if occ.Passim {
			last.Passim = true
		}
		switch {
		case last.Passim:
			last.Suffix = "passim"
		case occ.Suffix != "":
			last.Suffix = occ.Suffix
		}
	}
	return ranges, warnings
}

// newRange opens a range at loc, carrying the occurrence's suffix and
// passim state.
func newRange(loc RangeLoc, occ index.Occurrence) Range {
	r := Range{Locs: []RangeLoc{loc}, Suffix: occ.Suffix}
	if occ.Passim {
		r.Passim = true
		r.Suffix = "passim"
	}
	return r
}

func (a *Assignment) rangeLoc(occ index.Occurrence) RangeLoc {
	return RangeLoc{Loc: a.Locs[occ.Ordinal], Emphasis: occ.Definition, Ordinal: occ.Ordinal}
}
