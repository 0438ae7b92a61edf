// Package linkaudit checks the anchors of a document over HTTP, classifies
// each one (working, moved, broken, unreachable) and applies the fixes a
// user accepts back to the document.
//
// A link moves through these states:
//
//	NotCheckedYet -> OK | Ignored | Redirected | SchemaChange | SimpleChange |
//	                 NotFound | Error | Timeout
//	Redirected | SchemaChange | SimpleChange -> Updated (via AcceptFix)
//
// Any checked state can be probed again by a rescan, except Ignored and
// Updated.
package linkaudit

import (
	"fmt"
)

// Summary is the audit state of one link.
type Summary int

const (
	NotCheckedYet Summary = iota
	OK
	Ignored
	Redirected
	SchemaChange
	SimpleChange
	NotFound
	Error
	Timeout
	Updated
)

var summaryNames = [...]string{
	NotCheckedYet: "not_checked_yet",
	OK:            "ok",
	Ignored:       "ignored",
	Redirected:    "redirected",
	SchemaChange:  "schema_change",
	SimpleChange:  "simple_change",
	NotFound:      "not_found",
	Error:         "error",
	Timeout:       "timeout",
	Updated:       "updated",
}

// String returns the snake_case name used in reports and config files.
func (s Summary) String() string {
	if s < 0 || int(s) >= len(summaryNames) {
		return fmt.Sprintf("summary(%d)", int(s))
	}
	return summaryNames[s]
}

// ParseSummary is the inverse of String.
func ParseSummary(name string) (Summary, error) {
	for i, n := range summaryNames {
		if n == name {
			return Summary(i), nil
		}
	}
	return NotCheckedYet, fmt.Errorf("unknown link summary %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (s Summary) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Summary) UnmarshalText(b []byte) error {
	v, err := ParseSummary(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// HasProposal reports whether the state carries a replacement URL that
// AcceptFix can apply.
func (s Summary) HasProposal() bool {
	return s == Redirected || s == SchemaChange || s == SimpleChange
}

// AutoApplicable reports whether the proposed replacement only normalises
// the URL and can be applied without review.
func (s Summary) AutoApplicable() bool {
	return s == SchemaChange || s == SimpleChange
}

// Broken reports whether the link is unreachable or gone.
func (s Summary) Broken() bool {
	return s == NotFound || s == Error || s == Timeout
}
