package linkaudit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jmylchreest/cmsclean/internal/logger"
	"github.com/jmylchreest/cmsclean/internal/version"
)

// ErrTooManyRedirects is recorded when a redirect chain exceeds MaxRedirects.
var ErrTooManyRedirects = errors.New("too many redirects")

// maxDrain bounds how much of a response body is read before closing it.
const maxDrain = 64 << 10

// Config controls probing.
type Config struct {
	// Timeout bounds one link check, including its redirects.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout" validate:"gt=0"`
	// Stagger delays the start of consecutive checks.
	Stagger time.Duration `json:"stagger" yaml:"stagger" mapstructure:"stagger" validate:"gte=0"`
	// Concurrency is the number of checks in flight.
	Concurrency int `json:"concurrency" yaml:"concurrency" mapstructure:"concurrency" validate:"min=1,max=64"`
	// MaxRedirects is the longest redirect chain followed.
	MaxRedirects int    `json:"max_redirects" yaml:"max_redirects" mapstructure:"max_redirects" validate:"min=0,max=30"`
	UserAgent    string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// DefaultConfig returns the probing defaults.
func DefaultConfig() Config {
	return Config{
		Timeout:      10 * time.Second,
		Stagger:      50 * time.Millisecond,
		Concurrency:  8,
		MaxRedirects: 10,
		UserAgent:    version.UserAgent("linkaudit"),
	}
}

// Auditor probes links over HTTP.
type Auditor struct {
	client *http.Client
	config Config
}

// Option configures an Auditor.
type Option func(*Auditor)

// WithHTTPClient probes with client instead of a default client. Redirects
// are always followed by the Auditor itself, so client's CheckRedirect is
// replaced on a copy.
func WithHTTPClient(client *http.Client) Option {
	return func(a *Auditor) {
		c := *client
		c.CheckRedirect = stopRedirects
		a.client = &c
	}
}

// New creates an Auditor. Zero fields of cfg take their DefaultConfig value.
func New(cfg Config, opts ...Option) *Auditor {
	def := DefaultConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = def.Concurrency
	}
	if cfg.MaxRedirects <= 0 {
		cfg.MaxRedirects = def.MaxRedirects
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = def.UserAgent
	}

	a := &Auditor{
		config: cfg,
		client: &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxConnsPerHost:     cfg.Concurrency,
				MaxIdleConnsPerHost: cfg.Concurrency,
				IdleConnTimeout:     90 * time.Second,
			},
			CheckRedirect: stopRedirects,
		},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func stopRedirects(_ *http.Request, _ []*http.Request) error {
	return http.ErrUseLastResponse
}

// Selection picks the links a run probes.
type Selection func(*LinkDescription) bool

var (
	// SelectUnchecked picks links that have never been probed.
	SelectUnchecked Selection = func(l *LinkDescription) bool { return l.Result == NotCheckedYet }
	// SelectTimeouts picks links whose last probe timed out.
	SelectTimeouts Selection = func(l *LinkDescription) bool { return l.Result == Timeout }
	// SelectRescan picks every link except ignored and already updated ones.
	SelectRescan Selection = func(l *LinkDescription) bool { return l.Result != Ignored && l.Result != Updated }
)

// Run is an audit in progress. The LinkDescriptions handed to Start are
// written by the run's goroutines; read them only after Done is closed.
type Run struct {
	id      string
	links   []*LinkDescription
	total   int
	checked atomic.Int64
	done    chan struct{}
	cancel  context.CancelFunc
}

// ID identifies the run in logs and reports.
func (r *Run) ID() string { return r.id }

// Done is closed when every selected link has been checked.
func (r *Run) Done() <-chan struct{} { return r.done }

// Total is the number of links the run selected.
func (r *Run) Total() int { return r.total }

// Cancel stops the run. Links still in flight or not yet started end up as
// Timeout.
func (r *Run) Cancel() { r.cancel() }

// Progress returns how many of the selected links have been checked.
func (r *Run) Progress() (checked, total int) {
	return int(r.checked.Load()), r.total
}

// Wait blocks until the run finishes and returns the links it checked.
func (r *Run) Wait() []*LinkDescription {
	<-r.done
	return r.links
}

// Start probes the links chosen by sel in the background. A nil sel selects
// unchecked links.
func (a *Auditor) Start(ctx context.Context, links []*LinkDescription, sel Selection) *Run {
	if sel == nil {
		sel = SelectUnchecked
	}
	var selected []*LinkDescription
	for _, l := range links {
		if sel(l) {
			selected = append(selected, l)
		}
	}

	runCtx, cancel := context.WithCancel(ctx)
	r := &Run{
		id:     uuid.NewString(),
		links:  selected,
		total:  len(selected),
		done:   make(chan struct{}),
		cancel: cancel,
	}

	logger.Debug("link audit started", "run", r.id, "links", r.total, "concurrency", a.config.Concurrency)

	go func() {
		defer close(r.done)
		defer cancel()

		var g errgroup.Group
		g.SetLimit(a.config.Concurrency)
		for i, link := range selected {
			if i > 0 && a.config.Stagger > 0 {
				select {
				case <-time.After(a.config.Stagger):
				case <-runCtx.Done():
				}
			}
			g.Go(func() error {
				// Nothing new goes on the wire once the run is cancelled.
				if err := runCtx.Err(); err != nil && isProbeable(link.OriginalLink) {
					link.reset()
					link.Result = Timeout
					link.Err = err.Error()
				} else {
					a.Check(runCtx, link)
				}
				r.checked.Add(1)
				return nil
			})
		}
		_ = g.Wait()

		logger.Debug("link audit finished", "run", r.id, "links", r.total)
	}()

	return r
}

// Audit probes the links chosen by sel and waits for the result.
func (a *Auditor) Audit(ctx context.Context, links []*LinkDescription, sel Selection) []*LinkDescription {
	return a.Start(ctx, links, sel).Wait()
}

// Check probes one link and records the outcome in it. Links that cannot be
// probed over HTTP are marked Ignored.
func (a *Auditor) Check(ctx context.Context, link *LinkDescription) {
	link.reset()
	if !isProbeable(link.OriginalLink) {
		link.Result = Ignored
		return
	}

	ctx, cancel := context.WithTimeout(ctx, a.config.Timeout)
	defer cancel()

	final, status, chain, err := a.follow(ctx, strings.TrimSpace(link.OriginalLink))
	link.Chain = chain
	link.StatusCode = status

	switch {
	case err != nil && isTimeout(ctx, err):
		link.Result = Timeout
		link.Err = err.Error()
	case err != nil:
		link.Result = Error
		link.Err = err.Error()
	case status == http.StatusNotFound || status == http.StatusGone:
		link.Result = NotFound
	case status >= 400:
		link.Result = Error
		link.Err = http.StatusText(status)
	case status < 200 || status >= 300:
		// A redirect without a usable Location, or a 300 Multiple Choices.
		link.Result = Error
		link.Err = fmt.Sprintf("unexpected status %d", status)
	case len(chain) > 1:
		link.LinkAfterRedirect = keepFragment(link.OriginalLink, final)
		link.Result = Classify(link.OriginalLink, link.LinkAfterRedirect)
	default:
		link.Result = OK
	}

	logger.Debug("link checked", "url", link.OriginalLink, "result", link.Result, "status", status)
}

// follow requests target and follows redirects up to MaxRedirects. It
// returns the last URL requested, its status and the chain of every
// response seen.
func (a *Auditor) follow(ctx context.Context, target string) (string, int, []Hop, error) {
	var chain []Hop
	current := target
	for {
		status, location, err := a.probe(ctx, current)
		if err != nil {
			return current, 0, chain, err
		}
		chain = append(chain, Hop{URL: current, StatusCode: status})

		if !isRedirect(status) || location == "" {
			return current, status, chain, nil
		}
		if len(chain) > a.config.MaxRedirects {
			return current, status, chain, fmt.Errorf("%w: stopped after %d", ErrTooManyRedirects, a.config.MaxRedirects)
		}

		next, err := resolve(current, location)
		if err != nil {
			return current, status, chain, fmt.Errorf("bad redirect location %q: %w", location, err)
		}
		current = next
	}
}

// probe sends HEAD, falling back to GET for servers that reject HEAD.
func (a *Auditor) probe(ctx context.Context, target string) (int, string, error) {
	status, location, err := a.request(ctx, http.MethodHead, target)
	if err != nil {
		return 0, "", err
	}
	switch status {
	case http.StatusForbidden, http.StatusMethodNotAllowed, http.StatusNotImplemented:
		return a.request(ctx, http.MethodGet, target)
	}
	return status, location, nil
}

func (a *Auditor) request(ctx context.Context, method, target string) (int, string, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return 0, "", err
	}
	req.Header.Set("User-Agent", a.config.UserAgent)

	resp, err := a.client.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrain))

	return resp.StatusCode, resp.Header.Get("Location"), nil
}

func isRedirect(status int) bool {
	switch status {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return true
	}
	return false
}

func isTimeout(ctx context.Context, err error) bool {
	if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func resolve(base, ref string) (string, error) {
	b, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	r, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return "", err
	}
	return b.ResolveReference(r).String(), nil
}

// keepFragment carries the original fragment over to the redirect target;
// Location headers never include it.
func keepFragment(original, final string) string {
	_, frag, ok := strings.Cut(original, "#")
	if !ok || strings.Contains(final, "#") {
		return final
	}
	return final + "#" + frag
}

// Classify compares a link with where it redirects to. A change of scheme
// alone is SchemaChange. Changes limited to scheme, a www. prefix, host case
// and a trailing slash are SimpleChange. Anything else is Redirected and
// needs review.
func Classify(original, final string) Summary {
	o, err := url.Parse(strings.TrimSpace(original))
	if err != nil {
		return Redirected
	}
	f, err := url.Parse(strings.TrimSpace(final))
	if err != nil {
		return Redirected
	}
	if o.String() == f.String() {
		return OK
	}

	sameQuery := o.RawQuery == f.RawQuery
	if !strings.EqualFold(o.Scheme, f.Scheme) && o.Host == f.Host && o.Path == f.Path && sameQuery {
		return SchemaChange
	}
	if sameQuery && normalHost(o.Host) == normalHost(f.Host) &&
		strings.TrimSuffix(o.Path, "/") == strings.TrimSuffix(f.Path, "/") {
		return SimpleChange
	}
	return Redirected
}

func normalHost(host string) string {
	return strings.TrimPrefix(strings.ToLower(host), "www.")
}
