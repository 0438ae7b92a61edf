package cms

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/net/html"

	"github.com/jmylchreest/cmsclean/pkg/dom"
)

const (
	leftDouble  = '\u201c'
	rightDouble = '\u201d'
	leftSingle  = '\u2018'
	rightSingle = '\u2019'
)

// literalElements hold text where quote characters are syntax, not prose.
var literalElements = map[string]bool{
	"code": true, "pre": true, "script": true, "style": true, "kbd": true, "samp": true,
}

var simpleQuotes = strings.NewReplacer(
	"\u201c", `"`, "\u201d", `"`, "\u201e", `"`,
	"\u2018", "'", "\u2019", "'", "\u201a", "'",
)

// openingContext are the characters after which a straight quote opens.
const openingContext = "([{<\u201c\u2018-\u2013\u2014/"

// UpdateQuotes rewrites quotation marks in text nodes according to mode.
// Text inside code, pre, kbd, samp, script and style is left alone. It
// returns the number of quote characters changed.
func UpdateQuotes(doc *dom.Document, mode QuoteMode) int {
	switch mode {
	case QuoteToSimple:
		return toSimpleQuotes(doc.Root())
	case QuoteToSmart:
		q := &smartQuoter{}
		q.walk(doc.Root())
		return q.changed
	default:
		return 0
	}
}

func toSimpleQuotes(root *html.Node) int {
	changed := 0
	dom.Walk(root, func(n *html.Node) bool {
		if dom.IsElement(n) && literalElements[n.Data] {
			return false
		}
		if !dom.IsText(n) {
			return true
		}
		for _, r := range n.Data {
			switch r {
			case '\u201c', '\u201d', '\u201e', '\u2018', '\u2019', '\u201a':
				changed++
			}
		}
		n.Data = simpleQuotes.Replace(n.Data)
		return true
	})
	return changed
}

// smartQuoter converts straight quotes in document order. prev is the last
// character seen in the current block; 0 means start of block.
type smartQuoter struct {
	prev    rune
	changed int
}

func (q *smartQuoter) walk(n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			c.Data = q.convert(c.Data)
		case html.ElementNode:
			switch {
			case c.Data == "br" || dom.IsBlock(c.Data):
				q.prev = 0
				q.walk(c)
				q.prev = 0
			case literalElements[c.Data]:
				if text := dom.TextContent(c); text != "" {
					q.prev, _ = utf8.DecodeLastRuneInString(text)
				}
			default:
				q.walk(c)
			}
		}
	}
}

func (q *smartQuoter) convert(s string) string {
	if !strings.ContainsAny(s, `"'`) {
		if s != "" {
			q.prev, _ = utf8.DecodeLastRuneInString(s)
		}
		return s
	}

	var sb strings.Builder
	sb.Grow(len(s) + 8)
	for _, r := range s {
		switch r {
		case '"':
			if q.opens() {
				r = leftDouble
			} else {
				r = rightDouble
			}
			q.changed++
		case '\'':
			if q.opens() {
				r = leftSingle
			} else {
				r = rightSingle
			}
			q.changed++
		}
		sb.WriteRune(r)
		q.prev = r
	}
	return sb.String()
}

func (q *smartQuoter) opens() bool {
	return q.prev == 0 || unicode.IsSpace(q.prev) || strings.ContainsRune(openingContext, q.prev)
}
