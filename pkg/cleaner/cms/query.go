package cms

import (
	"net/url"
	"strings"

	"github.com/jmylchreest/cmsclean/pkg/dom"
)

// trackingParams are query parameters added by analytics and ad platforms.
// Entries ending in * match by prefix. Keys compare case-insensitively.
var trackingParams = []string{
	"utm_*",
	"gclid", "gclsrc", "dclid", "gbraid", "wbraid",
	"fbclid", "msclkid", "twclid", "ttclid", "yclid",
	"_ga", "_gl", "_hsenc", "_hsmi",
	"mc_cid", "mc_eid", "_ke",
	"ref", "referrer",
}

// CleanQueryStrings removes tracking parameters, or whole query strings, from
// http and https hrefs. Fragments are kept. It returns the number of hrefs
// rewritten.
func CleanQueryStrings(doc *dom.Document, level QueryLevel) int {
	if level != QueryRemoveTrackingParams && level != QueryRemoveQuery {
		return 0
	}

	changed := 0
	for _, a := range dom.Elements(doc.Root(), "a") {
		href, ok := dom.Attr(a, "href")
		if !ok {
			continue
		}
		if cleaned, ok := CleanQuery(href, level); ok {
			dom.SetAttr(a, "href", cleaned)
			changed++
		}
	}
	return changed
}

// CleanQuery applies level to one href and reports whether it changed. The
// order and encoding of the remaining parameters are preserved.
func CleanQuery(href string, level QueryLevel) (string, bool) {
	lower := strings.ToLower(strings.TrimSpace(href))
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		return href, false
	}

	base, fragment := href, ""
	if i := strings.Index(base, "#"); i >= 0 {
		base, fragment = base[:i], base[i:]
	}
	i := strings.Index(base, "?")
	if i < 0 {
		return href, false
	}
	path, query := base[:i], base[i+1:]

	var kept []string
	if level == QueryRemoveTrackingParams {
		for _, pair := range strings.Split(query, "&") {
			if pair == "" || isTrackingParam(paramKey(pair)) {
				continue
			}
			kept = append(kept, pair)
		}
	}

	cleaned := path
	if len(kept) > 0 {
		cleaned += "?" + strings.Join(kept, "&")
	}
	cleaned += fragment
	return cleaned, cleaned != href
}

func paramKey(pair string) string {
	key, _, _ := strings.Cut(pair, "=")
	if unescaped, err := url.QueryUnescape(key); err == nil {
		key = unescaped
	}
	return strings.ToLower(key)
}

func isTrackingParam(key string) bool {
	for _, p := range trackingParams {
		if prefix, ok := strings.CutSuffix(p, "*"); ok {
			if strings.HasPrefix(key, prefix) {
				return true
			}
			continue
		}
		if key == p {
			return true
		}
	}
	return false
}
