// Package dom wraps golang.org/x/net/html and goquery into the mutable document
// model shared by the cleaning passes and the link auditor.
//
// A Document is owned by exactly one pipeline run. Passes receive the *Document
// (or its root node), mutate it in place, and hand it on; nothing keeps a
// reference to a node after the run ends.
package dom

import (
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Document is a parsed HTML tree plus the information needed to serialise it
// back the way it came in.
type Document struct {
	root     *html.Node
	fragment bool
}

// Parse parses src into a Document. It never fails: the underlying parser
// recovers from malformed markup (unclosed tags, stray end tags, missing
// html/body wrappers).
//
// Input that starts with a doctype or an html, head or body tag is parsed as a
// full document. Anything else is treated as a body fragment and is rendered
// back without gaining html/body wrappers.
func Parse(src string) *Document {
	doc, err := ParseReader(strings.NewReader(src))
	if err != nil {
		// strings.Reader cannot fail; keep the contract anyway.
		return &Document{root: &html.Node{Type: html.DocumentNode}, fragment: true}
	}
	return doc
}

// ParseReader reads all of r and parses it like Parse. The only error it
// returns is a read error from r.
func ParseReader(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	src := string(data)

	if isFullDocument(src) {
		root, err := html.Parse(strings.NewReader(src))
		if err != nil {
			return nil, err
		}
		return &Document{root: root}, nil
	}

	context := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(src), context)
	if err != nil {
		return nil, err
	}

	root := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		root.AppendChild(n)
	}
	return &Document{root: root, fragment: true}, nil
}

// isFullDocument reports whether src begins (after whitespace and comments)
// with a doctype or a document-level tag.
func isFullDocument(src string) bool {
	s := strings.TrimSpace(src)
	for strings.HasPrefix(s, "<!--") {
		end := strings.Index(s, "-->")
		if end < 0 {
			return false
		}
		s = strings.TrimSpace(s[end+3:])
	}

	lower := strings.ToLower(s)
	for _, prefix := range []string{"<!doctype", "<html", "<head", "<body"} {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

// Root returns the DocumentNode at the top of the tree.
func (d *Document) Root() *html.Node {
	return d.root
}

// IsFragment reports whether the document was parsed as a body fragment.
func (d *Document) IsFragment() bool {
	return d.fragment
}

// Body returns the node that holds the visible content: the body element of a
// full document, or the root of a fragment.
func (d *Document) Body() *html.Node {
	if d.fragment {
		return d.root
	}
	if body := FindFirst(d.root, "body"); body != nil {
		return body
	}
	return d.root
}

// Selection returns a goquery view over the whole tree. The view shares nodes
// with the Document, so mutations through either are visible in both.
func (d *Document) Selection() *goquery.Selection {
	return goquery.NewDocumentFromNode(d.root).Selection
}

// Find returns the elements matching a CSS selector, in document order.
func (d *Document) Find(selector string) *goquery.Selection {
	return d.Selection().Find(selector)
}

// Empty reports whether the document has no content besides whitespace.
func (d *Document) Empty() bool {
	for c := d.root.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.TextNode || strings.TrimSpace(c.Data) != "" {
			return false
		}
	}
	return true
}
