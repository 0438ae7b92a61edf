package cms

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/jmylchreest/cmsclean/pkg/dom"
)

// remoteHref matches "scheme://host..." and protocol-relative "//host...".
var remoteHref = regexp.MustCompile(`^(?i:[a-z][a-z0-9+.\-]*:)?//([^/?#]+)`)

// TargetOptions controls AddBlankLinkTargets.
type TargetOptions struct {
	AddTargetBlank bool
	AddRelNoOpener bool
	LocalHosts     []string
}

// AddBlankLinkTargets annotates remote anchors with target="_blank" and a
// noopener rel token. Existing non-empty targets are kept and existing rel
// tokens keep their order. On annotated anchors rel and target are moved to
// the end of the attribute list, rel first. Local links are never touched.
// It returns the number of anchors whose attribute values changed.
func AddBlankLinkTargets(doc *dom.Document, opts TargetOptions) int {
	if !opts.AddTargetBlank && !opts.AddRelNoOpener {
		return 0
	}

	changed := 0
	for _, a := range dom.Elements(doc.Root(), "a") {
		href, ok := dom.Attr(a, "href")
		if !ok || !IsRemoteLink(href, opts.LocalHosts) {
			continue
		}
		if annotate(a, opts) {
			changed++
		}
	}
	return changed
}

func annotate(a *html.Node, opts TargetOptions) bool {
	rel, hasRel := dom.Attr(a, "rel")
	target, hasTarget := dom.Attr(a, "target")

	newRel := rel
	if opts.AddRelNoOpener {
		newRel = addToken(rel, "noopener")
	}
	newTarget := target
	if opts.AddTargetBlank && strings.TrimSpace(target) == "" {
		newTarget = "_blank"
	}

	dom.RemoveAttr(a, "rel")
	dom.RemoveAttr(a, "target")
	if hasRel || newRel != "" {
		a.Attr = append(a.Attr, html.Attribute{Key: "rel", Val: newRel})
	}
	if hasTarget || newTarget != "" {
		a.Attr = append(a.Attr, html.Attribute{Key: "target", Val: newTarget})
	}

	return newRel != rel || newTarget != target
}

// addToken appends tok to a space-separated list unless already present.
func addToken(list, tok string) string {
	fields := strings.Fields(list)
	for _, f := range fields {
		if strings.EqualFold(f, tok) {
			return strings.Join(fields, " ")
		}
	}
	return strings.Join(append(fields, tok), " ")
}

// IsRemoteLink reports whether href names a scheme and host (or is
// protocol-relative) and the host is not one of localHosts or a subdomain
// of one.
func IsRemoteLink(href string, localHosts []string) bool {
	m := remoteHref.FindStringSubmatch(strings.TrimSpace(href))
	if m == nil {
		return false
	}
	host := hostOnly(m[1])
	if host == "" {
		return false
	}
	for _, local := range localHosts {
		if isSameOrSubdomain(host, hostOnly(local)) {
			return false
		}
	}
	return true
}

// hostOnly drops userinfo and port and lowercases the host.
func hostOnly(authority string) string {
	if i := strings.LastIndex(authority, "@"); i >= 0 {
		authority = authority[i+1:]
	}
	if strings.HasPrefix(authority, "[") {
		if end := strings.Index(authority, "]"); end > 0 {
			return strings.ToLower(authority[:end+1])
		}
	}
	if i := strings.LastIndex(authority, ":"); i >= 0 {
		authority = authority[:i]
	}
	return strings.ToLower(strings.TrimSuffix(authority, "."))
}

func isSameOrSubdomain(host, base string) bool {
	if base == "" {
		return false
	}
	return host == base || strings.HasSuffix(host, "."+base)
}
