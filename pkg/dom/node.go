package dom

import (
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "keygen": true, "link": true,
	"meta": true, "param": true, "source": true, "track": true, "wbr": true,
}

var blockElements = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"body": true, "caption": true, "dd": true, "details": true, "div": true,
	"dl": true, "dt": true, "fieldset": true, "figcaption": true, "figure": true,
	"footer": true, "form": true, "h1": true, "h2": true, "h3": true,
	"h4": true, "h5": true, "h6": true, "head": true, "header": true,
	"hr": true, "html": true, "li": true, "main": true, "nav": true,
	"ol": true, "p": true, "pre": true, "section": true, "summary": true,
	"table": true, "tbody": true, "td": true, "tfoot": true, "th": true,
	"thead": true, "tr": true, "ul": true,
}

// embeddedElements carry content that has no text but is still meaningful.
var embeddedElements = map[string]bool{
	"img": true, "picture": true, "svg": true, "video": true, "audio": true,
	"iframe": true, "object": true, "embed": true, "canvas": true,
	"hr": true, "input": true,
}

// IsVoid reports whether tag never has children or an end tag.
func IsVoid(tag string) bool { return voidElements[tag] }

// IsBlock reports whether tag is a block-level element.
func IsBlock(tag string) bool { return blockElements[tag] }

// IsEmbedded reports whether tag is embedded, non-text content such as an
// image or a video frame.
func IsEmbedded(tag string) bool { return embeddedElements[tag] }

// IsElement reports whether n is an element node, optionally one of tags.
func IsElement(n *html.Node, tags ...string) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	if len(tags) == 0 {
		return true
	}
	for _, t := range tags {
		if n.Data == t {
			return true
		}
	}
	return false
}

// IsText reports whether n is a text node.
func IsText(n *html.Node) bool {
	return n != nil && n.Type == html.TextNode
}

// Attr returns the value of the attribute key. Keys compare case-insensitively.
func Attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val, true
		}
	}
	return "", false
}

// HasAttr reports whether n carries the attribute key.
func HasAttr(n *html.Node, key string) bool {
	_, ok := Attr(n, key)
	return ok
}

// SetAttr sets key to val, keeping the attribute's position if it already
// exists and appending it otherwise.
func SetAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// RemoveAttr removes key from n and reports whether it was present.
func RemoveAttr(n *html.Node, key string) bool {
	for i, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			return true
		}
	}
	return false
}

// NewElement creates a detached element.
func NewElement(tag string, attrs ...html.Attribute) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
		Attr:     attrs,
	}
}

// NewText creates a detached text node.
func NewText(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

// Rename changes the tag name of an element in place.
func Rename(n *html.Node, tag string) {
	n.Data = tag
	n.DataAtom = atom.Lookup([]byte(tag))
}

// Remove detaches n from its parent. Removing a detached node is a no-op.
func Remove(n *html.Node) {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// ReplaceWith puts repl where old was and detaches old.
func ReplaceWith(old, repl *html.Node) {
	if old.Parent == nil {
		return
	}
	old.Parent.InsertBefore(repl, old)
	old.Parent.RemoveChild(old)
}

// Unwrap replaces n with its children.
func Unwrap(n *html.Node) {
	parent := n.Parent
	if parent == nil {
		return
	}
	for c := n.FirstChild; c != nil; c = n.FirstChild {
		n.RemoveChild(c)
		parent.InsertBefore(c, n)
	}
	parent.RemoveChild(n)
}

// MoveChildren appends all children of src to dst, keeping their order.
func MoveChildren(dst, src *html.Node) {
	for c := src.FirstChild; c != nil; c = src.FirstChild {
		src.RemoveChild(c)
		dst.AppendChild(c)
	}
}

// InsertAfter inserts n as the next sibling of ref.
func InsertAfter(n, ref *html.Node) {
	if ref.Parent == nil {
		return
	}
	if ref.NextSibling == nil {
		ref.Parent.AppendChild(n)
		return
	}
	ref.Parent.InsertBefore(n, ref.NextSibling)
}

// TextContent returns the concatenated text of n and its descendants.
func TextContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			switch c.Type {
			case html.TextNode:
				sb.WriteString(c.Data)
			case html.ElementNode, html.DocumentNode:
				collect(c)
			}
		}
	}
	collect(n)
	return sb.String()
}

// IsBlank reports whether s is empty or consists only of Unicode whitespace
// (which includes the non-breaking space).
func IsBlank(s string) bool {
	return strings.TrimFunc(s, unicode.IsSpace) == ""
}

// HasEmbedded reports whether n is, or contains, embedded content.
func HasEmbedded(n *html.Node) bool {
	if n.Type == html.ElementNode && IsEmbedded(n.Data) {
		return true
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if HasEmbedded(c) {
			return true
		}
	}
	return false
}

// HasAncestor reports whether any ancestor of n is one of tags.
func HasAncestor(n *html.Node, tags ...string) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if IsElement(p, tags...) {
			return true
		}
	}
	return false
}

// Walk visits n and its descendants in pre-order. When fn returns false the
// children of the visited node are skipped. The next sibling is captured
// before a node is visited, so fn may remove or replace the node it is given.
func Walk(n *html.Node, fn func(*html.Node) bool) {
	if !fn(n) {
		return
	}
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		Walk(c, fn)
		c = next
	}
}

// Elements returns a document-order snapshot of the elements below n,
// optionally restricted to tags. Mutating the tree does not affect the
// returned slice.
func Elements(n *html.Node, tags ...string) []*html.Node {
	var out []*html.Node
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if IsElement(c, tags...) {
				out = append(out, c)
			}
			collect(c)
		}
	}
	collect(n)
	return out
}

// FindFirst returns the first element below n with the given tag, or nil.
func FindFirst(n *html.Node, tag string) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if IsElement(c, tag) {
			return c
		}
		if found := FindFirst(c, tag); found != nil {
			return found
		}
	}
	return nil
}

// IsAttached reports whether n is still part of the tree under root. Snapshots
// taken with Elements may hold nodes whose ancestor has since been removed.
func IsAttached(n, root *html.Node) bool {
	for p := n; p != nil; p = p.Parent {
		if p == root {
			return true
		}
	}
	return false
}
