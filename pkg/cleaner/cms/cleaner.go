package cms

import (
	"strings"
	"time"

	"github.com/jmylchreest/cmsclean/pkg/dom"
)

// Cleaner runs the CMS cleaning pipeline.
// It implements the cleaner.Cleaner interface.
type Cleaner struct {
	settings *Settings
	pretty   bool
	stats    *Stats
}

// Option configures a Cleaner.
type Option func(*Cleaner)

// WithPrettyPrint indents block elements in the output.
func WithPrettyPrint(pretty bool) Option {
	return func(c *Cleaner) {
		c.pretty = pretty
	}
}

// New creates a new Cleaner with the given settings.
// If settings is nil, DefaultSettings() is used.
func New(settings *Settings, opts ...Option) *Cleaner {
	if settings == nil {
		settings = DefaultSettings()
	}
	c := &Cleaner{settings: settings}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns the cleaner name for logging.
func (c *Cleaner) Name() string {
	return "cms"
}

// Clean transforms pasted HTML into markup a CMS editor accepts.
// This method implements the cleaner.Cleaner interface.
func (c *Cleaner) Clean(html string) (string, error) {
	return c.CleanStyling(html).Content, nil
}

// CleanStyling parses html, runs every pass and serialises the result. Empty
// or whitespace-only input yields empty output.
func (c *Cleaner) CleanStyling(html string) *Result {
	startTime := time.Now()
	result := &Result{
		Stats: NewStats(),
	}
	result.Stats.InputBytes = len(html)

	if strings.TrimSpace(html) == "" {
		result.Stats.TotalDuration = time.Since(startTime)
		c.stats = result.Stats
		return result
	}

	parseStart := time.Now()
	doc := dom.Parse(html)
	result.Stats.ParseDuration = time.Since(parseStart)

	transformStart := time.Now()
	c.transform(doc, result)
	result.Stats.TransformDuration = time.Since(transformStart)

	outputStart := time.Now()
	result.Content = dom.Render(doc, c.pretty)
	result.Stats.OutputDuration = time.Since(outputStart)
	result.Stats.OutputBytes = len(result.Content)

	result.Stats.TotalDuration = time.Since(startTime)
	c.stats = result.Stats

	return result
}

// CleanDocument runs every pass over doc in place.
func (c *Cleaner) CleanDocument(doc *dom.Document) *Stats {
	result := &Result{Stats: NewStats()}
	start := time.Now()
	c.transform(doc, result)
	result.Stats.TransformDuration = time.Since(start)
	result.Stats.TotalDuration = result.Stats.TransformDuration
	c.stats = result.Stats
	return result.Stats
}

// Stats returns the stats from the last Clean operation.
func (c *Cleaner) Stats() *Stats {
	return c.stats
}

// transform applies the passes in order. Later passes rely on earlier ones:
// tag translation needs styling gone so bare spans can be unwrapped, header
// promotion needs b translated and paragraphs trimmed, and link cleanup runs
// after empty elements are gone so whitespace anchors are judged on their
// final content.
func (c *Cleaner) transform(doc *dom.Document, result *Result) {
	stats := result.Stats

	for _, tag := range RemoveNonCmsElements(doc) {
		stats.RecordRemoval(tag)
	}

	officeRemoved, officeAttrs := RemoveOfficeMarkup(doc)
	for _, tag := range officeRemoved {
		stats.RecordRemoval(tag)
	}
	stats.AttributesRemoved += officeAttrs

	stats.AttributesRemoved += ClearStyling(doc.Root())
	stats.TagsTranslated += TranslateTags(doc)
	stats.ParagraphsTrimmed += TrimParagraphs(doc)

	for _, tag := range RemoveEmptyElements(doc) {
		stats.RecordRemoval(tag)
	}

	stats.HeadersCreated += CreateHeaders(doc)

	if len(c.settings.MarkupToRemove) > 0 {
		stats.MarkupUnwrapped += RemoveMarkup(doc, c.settings.MarkupToRemove)
	}

	merged, cleaned := CombineAndCleanLinks(doc)
	stats.LinksMerged += merged
	stats.LinksCleaned += cleaned

	if c.settings.CreateLinkFromText {
		stats.LinksCreated += CreateLinksFromText(doc)
	}

	switch c.settings.QueryCleanLevel {
	case QueryRemoveTrackingParams, QueryRemoveQuery:
		stats.QueriesCleaned += CleanQueryStrings(doc, c.settings.QueryCleanLevel)
	case QueryNone, "":
	default:
		result.AddWarning("transform", "unknown query clean level ignored", string(c.settings.QueryCleanLevel))
	}

	stats.TargetsAdded += AddBlankLinkTargets(doc, TargetOptions{
		AddTargetBlank: c.settings.AddTargetBlank,
		AddRelNoOpener: c.settings.AddRelNoOpener,
		LocalHosts:     c.settings.LocalHosts,
	})

	switch c.settings.QuoteProcess {
	case QuoteToSimple, QuoteToSmart:
		stats.QuotesChanged += UpdateQuotes(doc, c.settings.QuoteProcess)
	case QuoteNoChange, "":
	default:
		result.AddWarning("transform", "unknown quote mode ignored", string(c.settings.QuoteProcess))
	}

	stats.ElementsKept = len(dom.Elements(doc.Root()))
}
