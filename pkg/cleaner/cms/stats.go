package cms

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Stats captures what a cleaning run changed.
type Stats struct {
	// Size metrics
	InputBytes  int `json:"input_bytes" yaml:"input_bytes"`
	OutputBytes int `json:"output_bytes" yaml:"output_bytes"`

	// Element counts
	ElementsRemoved map[string]int `json:"elements_removed" yaml:"elements_removed"` // tag -> count
	ElementsKept    int            `json:"elements_kept" yaml:"elements_kept"`

	AttributesRemoved int `json:"attributes_removed" yaml:"attributes_removed"`
	TagsTranslated    int `json:"tags_translated" yaml:"tags_translated"`
	ParagraphsTrimmed int `json:"paragraphs_trimmed" yaml:"paragraphs_trimmed"`
	HeadersCreated    int `json:"headers_created" yaml:"headers_created"`
	MarkupUnwrapped   int `json:"markup_unwrapped" yaml:"markup_unwrapped"`

	// Link passes
	LinksMerged    int `json:"links_merged" yaml:"links_merged"`
	LinksCleaned   int `json:"links_cleaned" yaml:"links_cleaned"`
	LinksCreated   int `json:"links_created" yaml:"links_created"`
	QueriesCleaned int `json:"queries_cleaned" yaml:"queries_cleaned"`
	TargetsAdded   int `json:"targets_added" yaml:"targets_added"`

	QuotesChanged int `json:"quotes_changed" yaml:"quotes_changed"`

	// Timing
	ParseDuration     time.Duration `json:"parse_duration_ms" yaml:"parse_duration_ms"`
	TransformDuration time.Duration `json:"transform_duration_ms" yaml:"transform_duration_ms"`
	OutputDuration    time.Duration `json:"output_duration_ms" yaml:"output_duration_ms"`
	TotalDuration     time.Duration `json:"total_duration_ms" yaml:"total_duration_ms"`
}

// NewStats creates a Stats with initialised maps.
func NewStats() *Stats {
	return &Stats{
		ElementsRemoved: make(map[string]int),
	}
}

// ReductionPercent returns the percentage reduction in size.
func (s *Stats) ReductionPercent() float64 {
	if s.InputBytes == 0 {
		return 0
	}
	return float64(s.InputBytes-s.OutputBytes) / float64(s.InputBytes) * 100
}

// TotalElementsRemoved returns the sum of all removed elements.
func (s *Stats) TotalElementsRemoved() int {
	total := 0
	for _, count := range s.ElementsRemoved {
		total += count
	}
	return total
}

// RecordRemoval records that an element was removed.
func (s *Stats) RecordRemoval(tag string) {
	s.ElementsRemoved[strings.ToLower(tag)]++
}

// String returns a human-readable summary of the stats.
func (s *Stats) String() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Size: %s -> %s (%.1f%% reduction)\n",
		humanize.Bytes(uint64(s.InputBytes)), humanize.Bytes(uint64(s.OutputBytes)), s.ReductionPercent()))

	sb.WriteString(fmt.Sprintf("Elements: %d removed, %d kept\n",
		s.TotalElementsRemoved(), s.ElementsKept))

	if len(s.ElementsRemoved) > 0 {
		sb.WriteString("Removed by tag: ")
		tags := make([]string, 0, len(s.ElementsRemoved))
		for tag := range s.ElementsRemoved {
			tags = append(tags, tag)
		}
		sort.Strings(tags)
		parts := make([]string, 0, len(tags))
		for _, tag := range tags {
			parts = append(parts, fmt.Sprintf("%s=%d", tag, s.ElementsRemoved[tag]))
		}
		sb.WriteString(strings.Join(parts, ", "))
		sb.WriteString("\n")
	}

	counters := []struct {
		label string
		value int
	}{
		{"Attributes removed", s.AttributesRemoved},
		{"Tags translated", s.TagsTranslated},
		{"Paragraphs trimmed", s.ParagraphsTrimmed},
		{"Headers created", s.HeadersCreated},
		{"Markup unwrapped", s.MarkupUnwrapped},
		{"Links merged", s.LinksMerged},
		{"Links cleaned", s.LinksCleaned},
		{"Links created", s.LinksCreated},
		{"Queries cleaned", s.QueriesCleaned},
		{"Link targets added", s.TargetsAdded},
		{"Quotes changed", s.QuotesChanged},
	}
	for _, c := range counters {
		if c.value > 0 {
			sb.WriteString(fmt.Sprintf("%s: %d\n", c.label, c.value))
		}
	}

	sb.WriteString(fmt.Sprintf("Timing: parse=%v, transform=%v, output=%v, total=%v\n",
		s.ParseDuration.Round(time.Microsecond),
		s.TransformDuration.Round(time.Microsecond),
		s.OutputDuration.Round(time.Microsecond),
		s.TotalDuration.Round(time.Microsecond)))

	return sb.String()
}

// Warning represents a non-fatal issue encountered during cleaning.
type Warning struct {
	Phase   string `json:"phase" yaml:"phase"`     // "parse", "transform", "output"
	Message string `json:"message" yaml:"message"` // Human-readable description
	Context string `json:"context" yaml:"context"` // Element or setting that caused the issue
}

// String returns a formatted warning message.
func (w Warning) String() string {
	if w.Context != "" {
		return fmt.Sprintf("[%s] %s (context: %s)", w.Phase, w.Message, w.Context)
	}
	return fmt.Sprintf("[%s] %s", w.Phase, w.Message)
}

// Result contains the output of a cleaning run.
type Result struct {
	// Content is the cleaned HTML.
	Content string `json:"content" yaml:"content"`

	// Stats contains metrics about what was done.
	Stats *Stats `json:"stats" yaml:"stats"`

	// Warnings contains non-fatal issues encountered.
	Warnings []Warning `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// AddWarning adds a warning to the result.
func (r *Result) AddWarning(phase, message, context string) {
	r.Warnings = append(r.Warnings, Warning{
		Phase:   phase,
		Message: message,
		Context: context,
	})
}

// HasWarnings returns true if any warnings were recorded.
func (r *Result) HasWarnings() bool {
	return len(r.Warnings) > 0
}
