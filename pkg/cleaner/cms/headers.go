package cms

import (
	"golang.org/x/net/html"

	"github.com/jmylchreest/cmsclean/pkg/dom"
)

// headerTag is what an all-bold paragraph becomes.
const headerTag = "h2"

// transparentInline may wrap bold text without breaking "entirely bold".
var transparentInline = map[string]bool{
	"em": true, "i": true, "u": true, "span": true, "a": true,
	"sub": true, "sup": true, "small": true, "font": true,
}

// CreateHeaders turns paragraphs whose visible text is entirely bold into
// h2 headers. Attributes move to the header and the bold wrappers are
// unwrapped; other inline formatting is kept. It returns the number of
// headers created.
func CreateHeaders(doc *dom.Document) int {
	created := 0
	for _, p := range dom.Elements(doc.Root(), "p") {
		if !dom.IsAttached(p, doc.Root()) {
			continue
		}
		ok, sawText := allBold(p, false)
		if !ok || !sawText {
			continue
		}

		h := dom.NewElement(headerTag, p.Attr...)
		dom.MoveChildren(h, p)
		dom.ReplaceWith(p, h)
		for _, b := range dom.Elements(h, "strong", "b") {
			dom.Unwrap(b)
		}
		created++
	}
	return created
}

// allBold reports whether every non-blank text below n sits inside strong or
// b, and whether any such text was seen. Line breaks and embedded content
// disqualify the paragraph.
func allBold(n *html.Node, inBold bool) (ok, sawText bool) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			if dom.IsBlank(c.Data) {
				continue
			}
			if !inBold {
				return false, false
			}
			sawText = true
		case html.ElementNode:
			var childOK, childText bool
			switch {
			case c.Data == "strong" || c.Data == "b":
				childOK, childText = allBold(c, true)
			case transparentInline[c.Data]:
				childOK, childText = allBold(c, inBold)
			default:
				return false, false
			}
			if !childOK {
				return false, false
			}
			sawText = sawText || childText
		}
	}
	return true, sawText
}
