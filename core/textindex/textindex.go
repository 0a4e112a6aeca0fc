// Package textindex runs the full annotation pipeline over a single
// document: scan the tokens, bind them into the entry registry, assign
// and compress locators, render the index and rewrite the document
// around it. Processing is all-or-nothing; a fatal error leaves the
// caller's document untouched.
package textindex

import (
	ierr "github.com/FocuswithJustin/TextIndex/core/errors"
	"github.com/FocuswithJustin/TextIndex/core/index"
	"github.com/FocuswithJustin/TextIndex/core/locator"
	"github.com/FocuswithJustin/TextIndex/core/mark"
	"github.com/FocuswithJustin/TextIndex/core/render"
	"github.com/FocuswithJustin/TextIndex/core/rewrite"
)

// Options controls one pipeline run. The zero value indexes in
// reference mode with the stock labels and no group headings.
type Options struct {
	Mode          locator.Mode // reference ids or page numbers
	Pager         locator.Pager
	SeeLabel      string // defaults to "see"
	SeeAlsoLabel  string // defaults to "see also"
	IDPrefix      string // locator id prefix, defaults to "idx"
	ConvertLaTeX  bool   // rewrite \index{...} commands before scanning
	GroupHeadings bool   // emit alphabetic heading rows between groups
	EmphasisFirst bool   // list emphasized ranges before the rest
}

// Result is the outcome of a successful pipeline run.
type Result struct {
	Document    string       // rewritten document with the index inserted
	Tree        *render.Tree // entry tree behind the serialized index
	HTML        string       // serialized index markup
	Tokens      int          // annotation tokens bound
	Entries     int          // distinct entries registered
	Occurrences int          // occurrences recorded across all entries
	Converted   int          // LaTeX commands rewritten, when enabled
	Warnings    []ierr.Warning
}

// Process runs the pipeline over document. Placeholder parameters
// (prefix=, see=, also=) override the matching Options fields so a
// document can carry its own presentation choices.
func Process(document string, opts Options) (*Result, error) {
	source := document
	converted := 0
	if opts.ConvertLaTeX {
		source, converted = mark.ConvertLaTeX(source)
	}

	doc, err := mark.Scan(source)
	if err != nil {
		return nil, err
	}
	if len(doc.Placeholders) > 1 {
		return nil, ierr.NewMultiplePlaceholders(doc.Placeholders[1].Line, doc.Placeholders[0].Line)
	}

	reg := index.New()
	warnings, err := reg.Bind(doc)
	if err != nil {
		return nil, err
	}

	asn, err := locator.Assign(doc, reg, opts.Mode, opts.Pager)
	if err != nil {
		return nil, err
	}
	warnings = append(warnings, asn.Warnings...)

	ropts := render.Options{
		SeeLabel:      opts.SeeLabel,
		SeeAlsoLabel:  opts.SeeAlsoLabel,
		IDPrefix:      opts.IDPrefix,
		GroupHeadings: opts.GroupHeadings,
		EmphasisFirst: opts.EmphasisFirst,
	}
	if len(doc.Placeholders) == 1 {
		ph := doc.Placeholders[0]
		if ph.Prefix != "" {
			ropts.IDPrefix = ph.Prefix
		}
		if ph.See != "" {
			ropts.SeeLabel = ph.See
		}
		if ph.Also != "" {
			ropts.SeeAlsoLabel = ph.Also
		}
	}

	tree := render.Build(reg, asn, ropts)
	warnings = append(warnings, tree.Warnings...)

	html := render.HTML(tree)
	out, rewriteWarnings := rewrite.Document(doc, asn, html, ropts.IDPrefix)
	warnings = append(warnings, rewriteWarnings...)

	res := &Result{
		Document:  out,
		Tree:      tree,
		HTML:      html,
		Entries:   len(reg.Entries()),
		Converted: converted,
		Warnings:  warnings,
	}
	for i := range doc.Tokens {
		if doc.Tokens[i].Kind == mark.KindEntry {
			res.Tokens++
		}
	}
	for _, e := range reg.Entries() {
		res.Occurrences += len(e.Occurrences)
	}
	return res, nil
}
