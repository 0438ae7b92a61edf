package output

import (
	"time"

	"github.com/jmylchreest/cmsclean/pkg/linkaudit"
)

// AuditReport is the serialisable result of a link audit.
type AuditReport struct {
	RunID       string                       `json:"run_id" yaml:"run_id"`
	Source      string                       `json:"source" yaml:"source"`
	GeneratedAt time.Time                    `json:"generated_at" yaml:"generated_at"`
	Counts      map[string]int               `json:"counts" yaml:"counts"`
	AutoFixed   int                          `json:"auto_fixed,omitempty" yaml:"auto_fixed,omitempty"`
	Links       []*linkaudit.LinkDescription `json:"links" yaml:"links"`
}

// NewAuditReport summarises links for reporting.
func NewAuditReport(runID, source string, links []*linkaudit.LinkDescription) *AuditReport {
	counts := make(map[string]int)
	for state, n := range linkaudit.Tally(links) {
		counts[state.String()] = n
	}
	return &AuditReport{
		RunID:       runID,
		Source:      source,
		GeneratedAt: time.Now().UTC(),
		Counts:      counts,
		Links:       links,
	}
}

// Count returns the number of links in state.
func (r *AuditReport) Count(state linkaudit.Summary) int {
	return r.Counts[state.String()]
}

// Broken returns the number of links that are gone or unreachable.
func (r *AuditReport) Broken() int {
	return r.Count(linkaudit.NotFound) + r.Count(linkaudit.Error) + r.Count(linkaudit.Timeout)
}

// Proposals returns the number of links with a replacement awaiting review.
func (r *AuditReport) Proposals() int {
	return r.Count(linkaudit.Redirected) + r.Count(linkaudit.SchemaChange) + r.Count(linkaudit.SimpleChange)
}
