package cms

import (
	"github.com/jmylchreest/cmsclean/pkg/dom"
)

var markupTags = map[Markup][]string{
	MarkupBold:      {"strong", "b"},
	MarkupItalic:    {"em", "i"},
	MarkupUnderline: {"u"},
}

// RemoveMarkup unwraps the inline formatting listed in markups, keeping the
// text. It returns the number of elements unwrapped.
func RemoveMarkup(doc *dom.Document, markups []Markup) int {
	var tags []string
	for _, m := range markups {
		tags = append(tags, markupTags[m]...)
	}
	if len(tags) == 0 {
		return 0
	}

	elems := dom.Elements(doc.Root(), tags...)
	for _, n := range elems {
		dom.Unwrap(n)
	}
	return len(elems)
}
