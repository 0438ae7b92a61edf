package fetcher

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// extract narrows content.HTML to opts.Selector and absolutizes links.
func extract(content *Content, opts Options) error {
	if opts.Selector == "" && !opts.Absolutize {
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content.HTML))
	if err != nil {
		return err
	}
	if content.Title == "" {
		content.Title = strings.TrimSpace(doc.Find("title").First().Text())
	}

	sel := doc.Selection
	if opts.Selector != "" {
		sel = doc.Find(opts.Selector).First()
		if sel.Length() == 0 {
			return fmt.Errorf("%w: %s", ErrNoMatch, opts.Selector)
		}
	}

	if opts.Absolutize {
		if base, err := url.Parse(content.URL); err == nil {
			absolutize(sel, base, "a[href]", "href")
			absolutize(sel, base, "img[src]", "src")
		}
	}

	if opts.Selector == "" {
		html, err := doc.Html()
		if err != nil {
			return err
		}
		content.HTML = html
		return nil
	}
	html, err := sel.Html()
	if err != nil {
		return err
	}
	content.HTML = strings.TrimSpace(html)
	return nil
}

// absolutize resolves attr of every element matching selector inside sel.
// Fragment-only and scheme links are left alone.
func absolutize(sel *goquery.Selection, base *url.URL, selector, attr string) {
	sel.Find(selector).Each(func(_ int, s *goquery.Selection) {
		ref, _ := s.Attr(attr)
		ref = strings.TrimSpace(ref)
		if ref == "" || strings.HasPrefix(ref, "#") {
			return
		}
		u, err := url.Parse(ref)
		if err != nil || u.IsAbs() {
			return
		}
		s.SetAttr(attr, base.ResolveReference(u).String())
	})
}
