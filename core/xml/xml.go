// Package xml inspects serialized index markup with XPath queries.
//
// The renderer emits well-formed markup (every tag closed, attributes
// quoted), so the lenient decoder here exists only for the HTML entities
// the separator rows carry (&nbsp;).
package xml

import (
	"encoding/xml"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"

	ierr "github.com/FocuswithJustin/TextIndex/core/errors"
)

// Document is parsed index markup ready for querying. It accepts either
// a bare index fragment or a whole rewritten document.
type Document struct {
	root *xmlquery.Node
}

// Node is one matched element.
type Node struct {
	node *xmlquery.Node
}

// Parse parses serialized index markup.
func Parse(markup string) (*Document, error) {
	opts := xmlquery.ParserOptions{
		Decoder: &xmlquery.DecoderOptions{Strict: false, Entity: xml.HTMLEntity},
	}
	root, err := xmlquery.ParseWithOptions(strings.NewReader(markup), opts)
	if err != nil {
		return nil, ierr.Wrap(err, "parsing index markup")
	}
	return &Document{root: root}, nil
}

// Query runs an XPath expression and returns every match in document
// order. The expression is compiled first so a bad query reads as a
// query error, not an empty result.
func (d *Document) Query(expr string) ([]*Node, error) {
	if _, err := xpath.Compile(expr); err != nil {
		return nil, ierr.Wrapf(err, "invalid xpath %q", expr)
	}
	nodes, err := xmlquery.QueryAll(d.root, expr)
	if err != nil {
		return nil, ierr.Wrapf(err, "xpath %q", expr)
	}
	result := make([]*Node, len(nodes))
	for i, n := range nodes {
		result[i] = &Node{node: n}
	}
	return result, nil
}

// QueryFirst returns the first match, or nil when nothing matches.
func (d *Document) QueryFirst(expr string) (*Node, error) {
	if _, err := xpath.Compile(expr); err != nil {
		return nil, ierr.Wrapf(err, "invalid xpath %q", expr)
	}
	node, err := xmlquery.Query(d.root, expr)
	if err != nil {
		return nil, ierr.Wrapf(err, "xpath %q", expr)
	}
	if node == nil {
		return nil, nil
	}
	return &Node{node: node}, nil
}

// Entries returns the entry heading spans of a rendered index.
func (d *Document) Entries() []*Node {
	nodes, _ := d.Query(`//span[@class='entry-heading']`)
	return nodes
}

// Locators returns the locator anchors of a rendered index.
func (d *Document) Locators() []*Node {
	nodes, _ := d.Query(`//a[@class='locator']`)
	return nodes
}

// Name returns the element name.
func (n *Node) Name() string {
	if n == nil || n.node == nil {
		return ""
	}
	return n.node.Data
}

// Text returns the text content of the node and its descendants.
func (n *Node) Text() string {
	if n == nil || n.node == nil {
		return ""
	}
	return n.node.InnerText()
}

// Attr returns the value of an attribute, or "" when absent.
func (n *Node) Attr(name string) string {
	if n == nil || n.node == nil {
		return ""
	}
	return n.node.SelectAttr(name)
}

// Markup serializes the node back to markup, including its own tag.
func (n *Node) Markup() string {
	if n == nil || n.node == nil {
		return ""
	}
	return n.node.OutputXML(true)
}
