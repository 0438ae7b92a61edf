package cms

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/net/html"

	"github.com/jmylchreest/cmsclean/pkg/dom"
)

const (
	// leadingMovable may sit at the start of link text by accident.
	leadingMovable = ",;:"
	// trailingMovable may sit at the end of link text by accident.
	trailingMovable = ",;:.!?"
	// zeroWidth characters do not separate two anchors visually.
	zeroWidth = "\u200b\ufeff"
)

// CombineAndCleanLinks merges adjacent anchors that share an href, replaces
// anchors containing only whitespace with that whitespace, and moves leading
// and trailing whitespace and punctuation out of the link text. It returns
// the number of merges and the number of anchors otherwise cleaned.
func CombineAndCleanLinks(doc *dom.Document) (merged, cleaned int) {
	root := doc.Root()

	for _, a := range dom.Elements(root, "a") {
		if !dom.IsAttached(a, root) {
			continue
		}
		merged += mergeFollowing(a)
	}

	for _, a := range dom.Elements(root, "a") {
		if !dom.IsAttached(a, root) || !dom.HasAttr(a, "href") {
			continue
		}
		if cleanAnchor(a) {
			cleaned++
		}
	}
	return merged, cleaned
}

// mergeFollowing absorbs each following sibling anchor with the same href,
// as long as only empty or zero-width text separates them.
func mergeFollowing(a *html.Node) int {
	href, ok := dom.Attr(a, "href")
	if !ok {
		return 0
	}

	merged := 0
	for {
		var gap []*html.Node
		next := a.NextSibling
		for dom.IsText(next) && strings.Trim(next.Data, zeroWidth) == "" {
			gap = append(gap, next)
			next = next.NextSibling
		}
		if !dom.IsElement(next, "a") {
			return merged
		}
		if other, ok := dom.Attr(next, "href"); !ok || other != href {
			return merged
		}

		for _, g := range gap {
			dom.Remove(g)
		}
		dom.MoveChildren(a, next)
		dom.Remove(next)
		merged++
	}
}

// cleanAnchor applies the whitespace and punctuation rules to one anchor.
func cleanAnchor(a *html.Node) bool {
	text := dom.TextContent(a)
	if dom.IsBlank(text) && !dom.HasEmbedded(a) {
		if text == "" {
			dom.Remove(a)
		} else {
			dom.ReplaceWith(a, dom.NewText(text))
		}
		return true
	}

	changed := relocateEdge(a, true)
	changed = relocateEdge(a, false) || changed

	if changed && dom.TextContent(a) == "" && !dom.HasEmbedded(a) {
		dom.Remove(a)
	}
	return changed
}

// relocateEdge moves the movable run at one edge of the link text to just
// outside the anchor, merging it into a neighbouring text node if there is
// one.
func relocateEdge(a *html.Node, leading bool) bool {
	var moved strings.Builder
	for {
		t, _ := edgeText(a, leading)
		if t == nil {
			break
		}

		var n int
		if leading {
			n = leadingRun(t.Data)
		} else {
			n = trailingRun(t.Data)
		}
		if n == 0 {
			break
		}

		if leading {
			moved.WriteString(t.Data[:n])
			t.Data = t.Data[n:]
		} else {
			s := t.Data[len(t.Data)-n:]
			t.Data = t.Data[:len(t.Data)-n]
			prependBuilder(&moved, s)
		}
		if t.Data != "" {
			break
		}
		pruneEmpty(t, a)
	}

	if moved.Len() == 0 {
		return false
	}
	if leading {
		textBefore(a, moved.String())
	} else {
		textAfter(a, moved.String())
	}
	return true
}

func prependBuilder(sb *strings.Builder, s string) {
	rest := sb.String()
	sb.Reset()
	sb.WriteString(s)
	sb.WriteString(rest)
}

// pruneEmpty removes the emptied text node t and any inline wrappers between
// it and stop that are left without children.
func pruneEmpty(t, stop *html.Node) {
	parent := t.Parent
	dom.Remove(t)
	for parent != nil && parent != stop && parent.FirstChild == nil {
		next := parent.Parent
		dom.Remove(parent)
		parent = next
	}
}

func leadingRun(s string) int {
	n := 0
	for n < len(s) {
		r, size := utf8.DecodeRuneInString(s[n:])
		if !unicode.IsSpace(r) && !strings.ContainsRune(leadingMovable, r) {
			break
		}
		n += size
	}
	return n
}

func trailingRun(s string) int {
	n := 0
	for n < len(s) {
		r, size := utf8.DecodeLastRuneInString(s[:len(s)-n])
		if !unicode.IsSpace(r) && !strings.ContainsRune(trailingMovable, r) {
			break
		}
		n += size
	}
	return n
}

func textBefore(ref *html.Node, s string) {
	if prev := ref.PrevSibling; dom.IsText(prev) {
		prev.Data += s
		return
	}
	ref.Parent.InsertBefore(dom.NewText(s), ref)
}

func textAfter(ref *html.Node, s string) {
	if next := ref.NextSibling; dom.IsText(next) {
		next.Data = s + next.Data
		return
	}
	dom.InsertAfter(dom.NewText(s), ref)
}
