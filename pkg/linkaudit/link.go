package linkaudit

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jmylchreest/cmsclean/pkg/dom"
)

// anchorSelector selects the anchors an audit covers. Index in
// LinkDescription counts matches of this selector in document order.
const anchorSelector = "a[href]"

// Hop is one response in a redirect chain.
type Hop struct {
	URL        string `json:"url" yaml:"url"`
	StatusCode int    `json:"status_code" yaml:"status_code"`
}

// LinkDescription is the audit record for one anchor. The anchor is
// identified by its position among the document's a[href] elements rather
// than by a node reference, so records stay valid across serialisation.
type LinkDescription struct {
	Index             int     `json:"index" yaml:"index"`
	LinkText          string  `json:"link_text" yaml:"link_text"`
	OriginalLink      string  `json:"original_link" yaml:"original_link"`
	Result            Summary `json:"result" yaml:"result"`
	LinkAfterRedirect string  `json:"link_after_redirect,omitempty" yaml:"link_after_redirect,omitempty"`
	StatusCode        int     `json:"status_code,omitempty" yaml:"status_code,omitempty"`
	Err               string  `json:"error,omitempty" yaml:"error,omitempty"`
	Chain             []Hop   `json:"chain,omitempty" yaml:"chain,omitempty"`
}

// Extract lists the anchors of doc in document order. Links that cannot be
// probed over HTTP (mailto:, tel:, fragments, relative paths) start out as
// Ignored; the rest start as NotCheckedYet.
func Extract(doc *dom.Document) []*LinkDescription {
	var links []*LinkDescription
	doc.Find(anchorSelector).Each(func(i int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		link := &LinkDescription{
			Index:        i,
			LinkText:     strings.Join(strings.Fields(s.Text()), " "),
			OriginalLink: href,
		}
		if !isProbeable(href) {
			link.Result = Ignored
		}
		links = append(links, link)
	})
	return links
}

func isProbeable(href string) bool {
	lower := strings.ToLower(strings.TrimSpace(href))
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// reset clears the results of a previous probe.
func (l *LinkDescription) reset() {
	l.Result = NotCheckedYet
	l.LinkAfterRedirect = ""
	l.StatusCode = 0
	l.Err = ""
	l.Chain = nil
}
