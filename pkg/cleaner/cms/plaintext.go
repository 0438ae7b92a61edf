package cms

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/jmylchreest/cmsclean/pkg/dom"
)

// ErrInvalidArgument is returned for a nil node.
var ErrInvalidArgument = errors.New("invalid argument")

// tableRule separates a table from surrounding text.
const tableRule = "----------"

var blankLines = regexp.MustCompile(`\n{3,}`)

// skippedInText are elements whose content is never visible text.
var skippedInText = map[string]bool{
	"script": true, "style": true, "head": true, "title": true,
	"noscript": true, "template": true,
}

var tableStructure = map[string]bool{
	"table": true, "thead": true, "tbody": true, "tfoot": true, "tr": true,
}

// PlainText converts the tree below n to plain text. Entities are decoded,
// paragraphs and headers end with a line break, divs are surrounded by line
// breaks and tables become " | " separated rows between two rules. Runs of
// three or more line breaks collapse to two.
func PlainText(n *html.Node) (string, error) {
	if n == nil {
		return "", fmt.Errorf("%w: nil node", ErrInvalidArgument)
	}

	var sb strings.Builder
	writePlainText(&sb, n)

	text := strings.ReplaceAll(sb.String(), "\r\n", "\n")
	text = blankLines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text), nil
}

// ToPlainText parses src and converts it to plain text.
func ToPlainText(src string) string {
	text, _ := PlainText(dom.Parse(src).Root())
	return text
}

func writePlainText(sb *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.DocumentNode:
		writeChildren(sb, n)
	case html.TextNode:
		if n.Parent != nil && tableStructure[n.Parent.Data] && dom.IsBlank(n.Data) {
			return
		}
		sb.WriteString(n.Data)
	case html.ElementNode:
		switch {
		case skippedInText[n.Data]:
		case n.Data == "br":
			sb.WriteString("\n")
		case n.Data == "p", headerLevel(n.Data):
			sb.WriteString(visibleText(n))
			sb.WriteString("\n")
		case n.Data == "div":
			sb.WriteString("\n")
			writeChildren(sb, n)
			sb.WriteString("\n")
		case n.Data == "table":
			sb.WriteString("\n" + tableRule + "\n")
			writeChildren(sb, n)
			sb.WriteString(tableRule + "\n")
		case n.Data == "tr":
			writeChildren(sb, n)
			sb.WriteString(" |\n")
		case n.Data == "td", n.Data == "th":
			sb.WriteString(" | ")
			sb.WriteString(strings.TrimSpace(visibleText(n)))
		default:
			writeChildren(sb, n)
		}
	}
}

// visibleText is dom.TextContent without script and style content.
func visibleText(n *html.Node) string {
	var sb strings.Builder
	dom.Walk(n, func(c *html.Node) bool {
		if c.Type == html.ElementNode && skippedInText[c.Data] {
			return false
		}
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
		return true
	})
	return sb.String()
}

func writeChildren(sb *strings.Builder, n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writePlainText(sb, c)
	}
}

func headerLevel(tag string) bool {
	return len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6'
}

// TextCleaner converts HTML to plain text.
// It implements the cleaner.Cleaner interface.
type TextCleaner struct{}

// NewText creates a plain-text cleaner.
func NewText() *TextCleaner {
	return &TextCleaner{}
}

// Clean returns the plain-text rendering of html.
func (c *TextCleaner) Clean(html string) (string, error) {
	return ToPlainText(html), nil
}

// Name returns the cleaner name for logging.
func (c *TextCleaner) Name() string {
	return "text"
}
