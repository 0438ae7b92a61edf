package linkaudit

import (
	"errors"
	"fmt"

	"golang.org/x/net/html"

	"github.com/jmylchreest/cmsclean/pkg/dom"
)

var (
	// ErrIndexOutOfRange means the document has fewer anchors than the link's
	// Index.
	ErrIndexOutOfRange = errors.New("link index out of range")
	// ErrNoRedirect means the link has no proposed replacement to accept.
	ErrNoRedirect = errors.New("link has no proposed replacement")
	// ErrLinkMismatch means the anchor at the link's Index no longer points to
	// OriginalLink, so the document changed since the audit.
	ErrLinkMismatch = errors.New("anchor does not match audited link")
)

// AcceptFix replaces the anchor's href with the redirect target and marks
// the link Updated.
func AcceptFix(doc *dom.Document, link *LinkDescription) error {
	if !link.Result.HasProposal() || link.LinkAfterRedirect == "" {
		return fmt.Errorf("%w: %s is %s", ErrNoRedirect, link.OriginalLink, link.Result)
	}
	a, err := anchorAt(doc, link)
	if err != nil {
		return err
	}
	dom.SetAttr(a, "href", link.LinkAfterRedirect)
	link.Result = Updated
	return nil
}

// MarkInvalid flags a broken anchor with data-link-invalid="true" so editors
// can find it, and marks the link Updated.
func MarkInvalid(doc *dom.Document, link *LinkDescription) error {
	a, err := anchorAt(doc, link)
	if err != nil {
		return err
	}
	dom.SetAttr(a, "data-link-invalid", "true")
	link.Result = Updated
	return nil
}

// ApplyAutoFixes accepts every SimpleChange and SchemaChange proposal and
// returns how many were applied.
func ApplyAutoFixes(doc *dom.Document, links []*LinkDescription) (int, error) {
	applied := 0
	for _, l := range AutoFixable(links) {
		if err := AcceptFix(doc, l); err != nil {
			return applied, err
		}
		applied++
	}
	return applied, nil
}

// AutoFixable returns the links whose proposal can be applied without review.
func AutoFixable(links []*LinkDescription) []*LinkDescription {
	var out []*LinkDescription
	for _, l := range links {
		if l.Result.AutoApplicable() && l.LinkAfterRedirect != "" {
			out = append(out, l)
		}
	}
	return out
}

// Tally counts links per state.
func Tally(links []*LinkDescription) map[Summary]int {
	counts := make(map[Summary]int)
	for _, l := range links {
		counts[l.Result]++
	}
	return counts
}

func anchorAt(doc *dom.Document, link *LinkDescription) (*html.Node, error) {
	anchors := doc.Find(anchorSelector)
	if link.Index < 0 || link.Index >= anchors.Length() {
		return nil, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, link.Index, anchors.Length())
	}
	a := anchors.Get(link.Index)
	if href, _ := dom.Attr(a, "href"); href != link.OriginalLink {
		return nil, fmt.Errorf("%w: index %d has %q, want %q", ErrLinkMismatch, link.Index, href, link.OriginalLink)
	}
	return a, nil
}
