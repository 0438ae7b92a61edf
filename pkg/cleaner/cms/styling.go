package cms

import (
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/jmylchreest/cmsclean/pkg/dom"
)

// nonCmsSelector matches elements a CMS editor never accepts. iframe is not
// listed: embedded video is valid CMS content.
const nonCmsSelector = "script, noscript, style, link, meta, title"

// tagTranslations maps presentational tags to their semantic equivalents.
var tagTranslations = map[string]string{
	"b": "strong",
	"i": "em",
}

// RemoveNonCmsElements removes scripts, noscript fallbacks and head-only
// elements together with their content. It returns the removed tag names.
func RemoveNonCmsElements(doc *dom.Document) []string {
	var removed []string
	doc.Find(nonCmsSelector).Each(func(_ int, s *goquery.Selection) {
		removed = append(removed, goquery.NodeName(s))
		s.Remove()
	})
	return removed
}

// ClearStyling removes style and class attributes from n and every element
// below it, in pre-order. A document node is traversed but not modified.
// It returns the number of attributes removed.
func ClearStyling(n *html.Node) int {
	removed := 0
	dom.Walk(n, func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return true
		}
		if dom.RemoveAttr(n, "style") {
			removed++
		}
		if dom.RemoveAttr(n, "class") {
			removed++
		}
		return true
	})
	return removed
}

// TranslateTags renames b to strong and i to em, and unwraps span and font
// elements that have no attributes left.
func TranslateTags(doc *dom.Document) int {
	changed := 0
	for _, n := range dom.Elements(doc.Root(), "b", "i", "span", "font") {
		if to, ok := tagTranslations[n.Data]; ok {
			dom.Rename(n, to)
			changed++
			continue
		}
		if len(n.Attr) == 0 {
			dom.Unwrap(n)
			changed++
		}
	}
	return changed
}
