package cms

import (
	"strings"
	"unicode"

	"golang.org/x/net/html"

	"github.com/jmylchreest/cmsclean/pkg/dom"
)

// paragraphLike are the blocks whose edges are trimmed.
var paragraphLike = []string{
	"p", "h1", "h2", "h3", "h4", "h5", "h6",
	"li", "td", "th", "dt", "dd", "blockquote", "caption", "div",
}

// keepWhenEmpty lists elements that stay even without content: table
// structure would lose its shape, and document-level elements hold the tree.
var keepWhenEmpty = map[string]bool{
	"html": true, "head": true, "body": true,
	"table": true, "thead": true, "tbody": true, "tfoot": true,
	"tr": true, "td": true, "th": true, "colgroup": true, "col": true,
}

// TrimParagraphs removes leading and trailing line breaks and whitespace
// (including non-breaking spaces) inside paragraph-like blocks. Interior
// whitespace is left alone. It returns the number of blocks changed.
func TrimParagraphs(doc *dom.Document) int {
	changed := 0
	for _, block := range dom.Elements(doc.Root(), paragraphLike...) {
		if trimBlock(block) {
			changed++
		}
	}
	return changed
}

func trimBlock(block *html.Node) bool {
	changed := trimBreaks(block, true)
	changed = trimBreaks(block, false) || changed
	changed = trimEdge(block, true) || changed
	changed = trimEdge(block, false) || changed
	return changed
}

// trimBreaks removes br children at one edge of block, together with any
// blank text that separates them from the edge.
func trimBreaks(block *html.Node, leading bool) bool {
	changed := false
	for {
		c := firstChild(block, leading)
		for dom.IsText(c) && dom.IsBlank(c.Data) {
			c = nextSibling(c, leading)
		}
		if !dom.IsElement(c, "br") {
			return changed
		}
		for edge := firstChild(block, leading); edge != c; edge = firstChild(block, leading) {
			block.RemoveChild(edge)
		}
		block.RemoveChild(c)
		changed = true
	}
}

// trimEdge trims whitespace from the first (or last) text in block. Text
// nodes that become empty are removed and trimming continues with the next
// one, so "<p> <strong> x</strong></p>" becomes "<p><strong>x</strong></p>".
func trimEdge(block *html.Node, leading bool) bool {
	changed := false
	for {
		t, _ := edgeText(block, leading)
		if t == nil {
			return changed
		}

		var trimmed string
		if leading {
			trimmed = strings.TrimLeftFunc(t.Data, unicode.IsSpace)
		} else {
			trimmed = strings.TrimRightFunc(t.Data, unicode.IsSpace)
		}
		if trimmed == t.Data {
			return changed
		}
		changed = true
		if trimmed != "" {
			t.Data = trimmed
			return changed
		}
		dom.Remove(t)
	}
}

// edgeText returns the first (or last) text node below n in document order.
// The search stops at a void, embedded or block element, since whitespace on
// the far side of those is not at the edge of the rendered block. The second
// result reports whether the search stopped, as opposed to running out of
// nodes.
func edgeText(n *html.Node, leading bool) (*html.Node, bool) {
	for c := firstChild(n, leading); c != nil; c = nextSibling(c, leading) {
		switch c.Type {
		case html.TextNode:
			return c, true
		case html.ElementNode:
			if dom.IsVoid(c.Data) || dom.IsEmbedded(c.Data) || dom.IsBlock(c.Data) {
				return nil, true
			}
			if t, stop := edgeText(c, leading); stop {
				return t, true
			}
		}
	}
	return nil, false
}

func firstChild(n *html.Node, leading bool) *html.Node {
	if leading {
		return n.FirstChild
	}
	return n.LastChild
}

func nextSibling(n *html.Node, leading bool) *html.Node {
	if leading {
		return n.NextSibling
	}
	return n.PrevSibling
}

// RemoveEmptyElements removes elements that have no text, no line break and
// no embedded content. Inline elements holding only whitespace are replaced
// by that whitespace so the space between their neighbours survives. Void elements, table
// structure and document-level elements are never removed. It returns the
// removed tag names.
func RemoveEmptyElements(doc *dom.Document) []string {
	var removed []string
	dom.Walk(doc.Root(), func(n *html.Node) bool {
		if n.Type != html.ElementNode || dom.IsVoid(n.Data) || keepWhenEmpty[n.Data] {
			return true
		}
		if dom.HasEmbedded(n) || dom.FindFirst(n, "br") != nil {
			return true
		}

		text := dom.TextContent(n)
		switch {
		case text == "" || (dom.IsBlank(text) && dom.IsBlock(n.Data)):
			removed = append(removed, n.Data)
			dom.Remove(n)
			return false
		case dom.IsBlank(text):
			dom.ReplaceWith(n, dom.NewText(text))
			return false
		}
		return true
	})
	return removed
}
