package fetcher

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/jmylchreest/cmsclean/internal/logger"
)

// DynamicFetcher renders pages in headless Chrome via chromedp, for sites
// whose content is assembled by JavaScript.
type DynamicFetcher struct {
	config    Config
	allocCtx  context.Context
	cancelCtx context.CancelFunc
}

// NewDynamic prepares a browser allocator. Chrome is started on the first
// Fetch.
func NewDynamic(cfg Config) *DynamicFetcher {
	cfg = cfg.withDefaults()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(cfg.UserAgent),
		chromedp.WindowSize(1920, 1080),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	logger.Debug("dynamic fetcher allocator created", "user_agent", cfg.UserAgent, "timeout", cfg.Timeout)

	return &DynamicFetcher{
		config:    cfg,
		allocCtx:  allocCtx,
		cancelCtx: cancelAlloc,
	}
}

// Fetch retrieves page content using a headless browser.
func (f *DynamicFetcher) Fetch(ctx context.Context, targetURL string, opts Options) (Content, error) {
	logger.Debug("dynamic fetch starting", "url", targetURL)

	result := Content{
		URL:       targetURL,
		FetchedAt: time.Now(),
	}

	browserCtx, cancelBrowser := chromedp.NewContext(f.allocCtx)
	defer cancelBrowser()

	// Stop the browser tab when the caller gives up.
	stop := context.AfterFunc(ctx, cancelBrowser)
	defer stop()

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = f.config.Timeout
	}
	timeoutCtx, cancelTimeout := context.WithTimeout(browserCtx, timeout)
	defer cancelTimeout()

	waitSelector := coalesce(opts.WaitForSelector, opts.Selector, "body")

	var html, title, location string
	actions := []chromedp.Action{
		chromedp.Navigate(targetURL),
		chromedp.WaitVisible(waitSelector),
	}
	if opts.WaitDuration > 0 {
		actions = append(actions, chromedp.Sleep(opts.WaitDuration))
	}
	actions = append(actions,
		chromedp.OuterHTML("html", &html),
		chromedp.Title(&title),
		chromedp.Location(&location),
	)

	if err := chromedp.Run(timeoutCtx, actions...); err != nil {
		logger.Debug("dynamic fetch failed", "url", targetURL, "error", err)
		return result, fmt.Errorf("browser automation failed: %w", err)
	}

	result.HTML = html
	result.Title = title
	result.StatusCode = 200 // chromedp doesn't easily expose status codes
	result.ContentType = "text/html"
	if location != "" {
		result.URL = location
	}

	if err := extract(&result, opts); err != nil {
		return result, fmt.Errorf("failed to extract content: %w", err)
	}

	logger.Debug("dynamic fetch complete", "url", result.URL, "html_size", len(result.HTML))
	return result, nil
}

// Close releases browser resources.
func (f *DynamicFetcher) Close() error {
	if f.cancelCtx != nil {
		f.cancelCtx()
	}
	return nil
}

// Type returns the fetcher type.
func (f *DynamicFetcher) Type() string {
	return "dynamic"
}
