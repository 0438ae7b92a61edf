package cms

import (
	"regexp"

	"golang.org/x/net/html"

	"github.com/jmylchreest/cmsclean/pkg/dom"
)

// bareURL matches http(s) URLs in running text. Trailing sentence
// punctuation and closing brackets are not part of the match.
var bareURL = regexp.MustCompile(`https?://[^\s<>"]+[^\s<>".,;:!?)\]]`)

// noLinkify are elements whose text must not gain anchors.
var noLinkify = []string{"a", "code", "pre", "script", "style", "textarea", "kbd", "samp"}

// CreateLinksFromText wraps bare URLs in text nodes in anchors whose href is
// the URL. It returns the number of anchors created.
func CreateLinksFromText(doc *dom.Document) int {
	created := 0
	dom.Walk(doc.Root(), func(n *html.Node) bool {
		if dom.IsElement(n, noLinkify...) {
			return false
		}
		if !dom.IsText(n) || n.Parent == nil {
			return true
		}
		created += linkifyText(n)
		return true
	})
	return created
}

func linkifyText(t *html.Node) int {
	matches := bareURL.FindAllStringIndex(t.Data, -1)
	if len(matches) == 0 {
		return 0
	}

	parent, s, last := t.Parent, t.Data, 0
	for _, m := range matches {
		if m[0] > last {
			parent.InsertBefore(dom.NewText(s[last:m[0]]), t)
		}
		href := s[m[0]:m[1]]
		a := dom.NewElement("a", html.Attribute{Key: "href", Val: href})
		a.AppendChild(dom.NewText(href))
		parent.InsertBefore(a, t)
		last = m[1]
	}
	if last < len(s) {
		parent.InsertBefore(dom.NewText(s[last:]), t)
	}
	parent.RemoveChild(t)
	return len(matches)
}
