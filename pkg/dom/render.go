package dom

import (
	"strings"

	"golang.org/x/net/html"
)

// rawTextElements have children that are written verbatim.
var rawTextElements = map[string]bool{
	"script": true, "style": true, "xmp": true, "iframe": true,
	"noembed": true, "noframes": true, "noscript": true, "plaintext": true,
}

// textEscaper writes the characters a CMS editor expects as named entities.
// html.Render would emit numeric references for quotes and apostrophes, which
// breaks the round trip of hand-authored markup.
var textEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	"\u00a0", "&nbsp;",
	"\u2018", "&lsquo;",
	"\u2019", "&rsquo;",
	"\u201c", "&ldquo;",
	"\u201d", "&rdquo;",
)

var attrEscaper = strings.NewReplacer(
	"&", "&amp;",
	`"`, "&quot;",
	"\u00a0", "&nbsp;",
)

// Render serialises the document. Attribute order and untouched subtrees are
// reproduced as parsed. With pretty set, block-level elements start on their
// own indented line.
func Render(d *Document, pretty bool) string {
	if d == nil {
		return ""
	}
	return RenderNode(d.root, pretty)
}

// RenderNode serialises n including its own tag.
func RenderNode(n *html.Node, pretty bool) string {
	r := &renderer{pretty: pretty}
	r.node(n, 0)
	if pretty {
		return strings.TrimLeft(r.sb.String(), "\n")
	}
	return r.sb.String()
}

// InnerHTML serialises the children of n.
func InnerHTML(n *html.Node) string {
	r := &renderer{}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		r.node(c, 0)
	}
	return r.sb.String()
}

type renderer struct {
	sb     strings.Builder
	pretty bool
	pre    int
}

func (r *renderer) node(n *html.Node, depth int) {
	switch n.Type {
	case html.DocumentNode:
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			r.node(c, depth)
		}
	case html.DoctypeNode:
		r.doctype(n)
	case html.CommentNode:
		r.sb.WriteString("<!--")
		r.sb.WriteString(n.Data)
		r.sb.WriteString("-->")
	case html.TextNode:
		r.text(n)
	case html.ElementNode:
		r.element(n, depth)
	case html.RawNode:
		r.sb.WriteString(n.Data)
	}
}

func (r *renderer) text(n *html.Node) {
	if n.Parent != nil && n.Parent.Type == html.ElementNode && rawTextElements[n.Parent.Data] {
		r.sb.WriteString(n.Data)
		return
	}
	if r.indenting() && IsBlank(n.Data) && n.Parent != nil && hasBlockChild(n.Parent) {
		return
	}
	r.sb.WriteString(textEscaper.Replace(n.Data))
}

func (r *renderer) element(n *html.Node, depth int) {
	block := IsBlock(n.Data)
	if r.indenting() && block {
		r.newline(depth)
	}

	r.sb.WriteByte('<')
	r.sb.WriteString(n.Data)
	for _, a := range n.Attr {
		r.sb.WriteByte(' ')
		if a.Namespace != "" {
			r.sb.WriteString(a.Namespace)
			r.sb.WriteByte(':')
		}
		r.sb.WriteString(a.Key)
		r.sb.WriteString(`="`)
		r.sb.WriteString(attrEscaper.Replace(a.Val))
		r.sb.WriteByte('"')
	}
	r.sb.WriteByte('>')

	if IsVoid(n.Data) {
		return
	}

	switch n.Data {
	case "pre", "textarea", "listing":
		// The parser drops one newline right after the start tag.
		if c := n.FirstChild; c != nil && c.Type == html.TextNode && strings.HasPrefix(c.Data, "\n") {
			r.sb.WriteByte('\n')
		}
		r.pre++
		defer func() { r.pre-- }()
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		r.node(c, depth+1)
	}

	if r.indenting() && block && hasBlockChild(n) {
		r.newline(depth)
	}
	r.sb.WriteString("</")
	r.sb.WriteString(n.Data)
	r.sb.WriteByte('>')
}

func (r *renderer) doctype(n *html.Node) {
	r.sb.WriteString("<!DOCTYPE ")
	r.sb.WriteString(n.Data)
	var public, system string
	for _, a := range n.Attr {
		switch a.Key {
		case "public":
			public = a.Val
		case "system":
			system = a.Val
		}
	}
	if public != "" {
		r.sb.WriteString(` PUBLIC "` + public + `"`)
		if system != "" {
			r.sb.WriteString(` "` + system + `"`)
		}
	} else if system != "" {
		r.sb.WriteString(` SYSTEM "` + system + `"`)
	}
	r.sb.WriteByte('>')
}

func (r *renderer) indenting() bool {
	return r.pretty && r.pre == 0
}

func (r *renderer) newline(depth int) {
	r.sb.WriteByte('\n')
	r.sb.WriteString(strings.Repeat("  ", depth))
}

func hasBlockChild(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && IsBlock(c.Data) {
			return true
		}
	}
	return false
}
