package fetcher

import (
	"context"
	"fmt"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/jmylchreest/cmsclean/internal/logger"
)

// StaticFetcher uses Colly for static HTML fetching.
// It implements the Fetcher interface.
type StaticFetcher struct {
	config Config
}

// NewStatic creates a new static fetcher.
func NewStatic(cfg Config) *StaticFetcher {
	return &StaticFetcher{config: cfg.withDefaults()}
}

// Fetch retrieves page content using Colly.
func (f *StaticFetcher) Fetch(ctx context.Context, targetURL string, opts Options) (Content, error) {
	logger.Debug("static fetch starting", "url", targetURL)

	result := Content{
		URL:       targetURL,
		FetchedAt: time.Now(),
	}

	// Create a new collector for each request
	userAgent := coalesce(opts.UserAgent, f.config.UserAgent)
	c := colly.NewCollector(
		colly.UserAgent(userAgent),
		colly.StdlibContext(ctx),
	)

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = f.config.Timeout
	}
	c.SetRequestTimeout(timeout)

	if len(opts.Headers) > 0 {
		c.OnRequest(func(r *colly.Request) {
			for k, v := range opts.Headers {
				r.Headers.Set(k, v)
			}
		})
	}

	var fetchErr error

	c.OnResponse(func(r *colly.Response) {
		result.StatusCode = r.StatusCode
		result.ContentType = r.Headers.Get("Content-Type")
		result.HTML = string(r.Body)
		// Redirects are followed; report where the page actually lives so
		// relative links resolve correctly.
		result.URL = r.Request.URL.String()
		logger.Debug("static fetch response received",
			"status", r.StatusCode,
			"content_type", result.ContentType,
			"body_size", len(r.Body))
	})

	c.OnError(func(r *colly.Response, err error) {
		if r != nil && r.StatusCode != 0 {
			result.StatusCode = r.StatusCode
			fetchErr = fmt.Errorf("%w: %d: %w", ErrHTTPStatus, r.StatusCode, err)
		} else {
			fetchErr = fmt.Errorf("fetch error: %w", err)
		}
		logger.Debug("static fetch error", "status", result.StatusCode, "error", err)
	})

	if err := c.Visit(targetURL); err != nil && fetchErr == nil {
		return result, fmt.Errorf("failed to visit URL: %w", err)
	}
	if fetchErr != nil {
		return result, fetchErr
	}

	if err := extract(&result, opts); err != nil {
		return result, fmt.Errorf("failed to extract content: %w", err)
	}

	logger.Debug("static fetch complete", "url", result.URL, "html_size", len(result.HTML))
	return result, nil
}

// Close releases resources.
func (f *StaticFetcher) Close() error {
	return nil
}

// Type returns the fetcher type.
func (f *StaticFetcher) Type() string {
	return "static"
}
