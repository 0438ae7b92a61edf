// Package fetcher retrieves HTML to clean or audit from a URL. The static
// fetcher issues a plain HTTP request; the dynamic fetcher renders the page
// in headless Chrome first.
package fetcher

import (
	"context"
	"errors"
	"time"
)

// Fetcher abstracts page fetching strategies.
type Fetcher interface {
	// Fetch retrieves page content from a URL.
	Fetch(ctx context.Context, url string, opts Options) (Content, error)

	// Close releases any resources (browser instances, etc.).
	Close() error

	// Type returns a string identifying the fetcher type (e.g., "static", "dynamic").
	Type() string
}

// Options controls fetching behavior.
type Options struct {
	UserAgent string
	Timeout   time.Duration
	Headers   map[string]string

	// Selector picks the element whose inner HTML becomes Content.HTML,
	// e.g. "article" or "#content". Empty keeps the whole document.
	Selector string

	// Absolutize rewrites relative href and src attributes against the page
	// URL so the links survive being pasted elsewhere and can be audited.
	Absolutize bool

	WaitForSelector string        // CSS selector to wait for (dynamic fetchers)
	WaitDuration    time.Duration // Additional wait after load
}

// Content represents fetched page data.
type Content struct {
	URL         string    `json:"url"`
	HTML        string    `json:"html"`
	Title       string    `json:"title,omitempty"`
	StatusCode  int       `json:"status_code"`
	ContentType string    `json:"content_type,omitempty"`
	FetchedAt   time.Time `json:"fetched_at"`
}

var (
	// ErrNoMatch means Options.Selector matched nothing on the page.
	ErrNoMatch = errors.New("selector matched no element")
	// ErrHTTPStatus wraps non-success responses.
	ErrHTTPStatus = errors.New("unexpected HTTP status")
)

// New returns the fetcher for mode: "static" (or empty) or "dynamic".
func New(mode string, cfg Config) (Fetcher, error) {
	switch mode {
	case "", "static":
		return NewStatic(cfg), nil
	case "dynamic":
		return NewDynamic(cfg), nil
	default:
		return nil, errors.New("unknown fetch mode: " + mode + " (use 'static' or 'dynamic')")
	}
}

// Config holds defaults shared by both fetchers.
type Config struct {
	UserAgent string
	Timeout   time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		UserAgent: defaultUserAgent,
		Timeout:   30 * time.Second,
	}
}

// Chrome user agent for better compatibility
const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.UserAgent == "" {
		c.UserAgent = def.UserAgent
	}
	if c.Timeout == 0 {
		c.Timeout = def.Timeout
	}
	return c
}

// coalesce returns the first non-empty string.
func coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
