package cms

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/jmylchreest/cmsclean/pkg/dom"
)

// RemoveOfficeMarkup strips what word processors add when saving as HTML:
// namespaced elements such as o:p (with their content), comments including
// conditional comments, mso-* style declarations, lang attributes and
// namespaced attributes. It returns the removed element names and the number
// of attributes removed or rewritten.
func RemoveOfficeMarkup(doc *dom.Document) ([]string, int) {
	root := doc.Root()
	var removed []string
	attrs := 0

	var comments []*html.Node
	dom.Walk(root, func(n *html.Node) bool {
		if n.Type == html.CommentNode {
			comments = append(comments, n)
		}
		return true
	})
	for _, c := range comments {
		if !dom.IsAttached(c, root) {
			continue
		}
		removeDownlevelBlock(c)
		dom.Remove(c)
		removed = append(removed, "#comment")
	}

	dom.Walk(root, func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return true
		}
		if strings.Contains(n.Data, ":") {
			removed = append(removed, strings.ToLower(n.Data))
			dom.Remove(n)
			return false
		}
		attrs += stripOfficeAttributes(n)
		return true
	})

	return removed, attrs
}

// removeDownlevelBlock removes the siblings between <![if !...]> and
// <![endif]>. Word uses these blocks for fake list bullets that are only
// shown by browsers without list support.
func removeDownlevelBlock(c *html.Node) {
	if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(c.Data)), "[if !") {
		return
	}

	var between []*html.Node
	for s := c.NextSibling; s != nil; s = s.NextSibling {
		if s.Type == html.CommentNode && strings.EqualFold(strings.TrimSpace(s.Data), "[endif]") {
			for _, n := range between {
				dom.Remove(n)
			}
			return
		}
		between = append(between, s)
	}
}

func stripOfficeAttributes(n *html.Node) int {
	changed := 0
	kept := n.Attr[:0]
	for _, a := range n.Attr {
		key := strings.ToLower(a.Key)
		switch {
		case key == "lang", strings.HasPrefix(key, "xmlns"), strings.Contains(key, ":"), a.Namespace != "" && a.Namespace != "xlink":
			changed++
			continue
		case key == "style":
			style := stripMsoDeclarations(a.Val)
			if style != a.Val {
				changed++
			}
			if style == "" {
				continue
			}
			a.Val = style
		}
		kept = append(kept, a)
	}
	n.Attr = kept
	return changed
}

// stripMsoDeclarations removes mso-* declarations from an inline style.
func stripMsoDeclarations(style string) string {
	if !strings.Contains(strings.ToLower(style), "mso-") {
		return style
	}
	decls := strings.Split(style, ";")
	kept := make([]string, 0, len(decls))
	for _, d := range decls {
		d = strings.TrimSpace(d)
		if d == "" || strings.HasPrefix(strings.ToLower(d), "mso-") {
			continue
		}
		kept = append(kept, d)
	}
	return strings.Join(kept, ";")
}
