package linkaudit

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/cmsclean/internal/version"
	"github.com/jmylchreest/cmsclean/pkg/dom"
)

// newTestServer serves the paths the tests probe and counts requests.
func newTestServer(t *testing.T, hits *atomic.Int64) *httptest.Server {
	t.Helper()

	redirect := func(to string, code int) http.HandlerFunc {
		return func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Location", to)
			w.WriteHeader(code)
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ok", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc("/broken", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	mux.HandleFunc("/nohead", func(w http.ResponseWriter, r *http.Request) {
		// Simulate servers that reject HEAD but allow GET.
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/a", redirect("/a/", http.StatusMovedPermanently))
	mux.HandleFunc("/a/", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/old", redirect("/new", http.StatusFound))
	mux.HandleFunc("/new", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/loop", redirect("/loop", http.StatusFound))
	mux.HandleFunc("/noloc", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusFound)
	})
	mux.HandleFunc("/choices", redirect("/new", http.StatusMultipleChoices))

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func testAuditor(ts *httptest.Server, timeout time.Duration) *Auditor {
	return New(Config{
		Timeout:      timeout,
		Concurrency:  4,
		MaxRedirects: 3,
	}, WithHTTPClient(ts.Client()))
}

func TestAuditor_Check(t *testing.T) {
	var hits atomic.Int64
	ts := newTestServer(t, &hits)
	a := testAuditor(ts, 2*time.Second)

	tests := []struct {
		name       string
		path       string
		want       Summary
		wantStatus int
		wantAfter  string
	}{
		{name: "ok", path: "/ok", want: OK, wantStatus: http.StatusOK},
		{name: "not found", path: "/missing", want: NotFound, wantStatus: http.StatusNotFound},
		{name: "server error", path: "/broken", want: Error, wantStatus: http.StatusInternalServerError},
		{name: "head rejected falls back to get", path: "/nohead", want: OK, wantStatus: http.StatusOK},
		{name: "trailing slash redirect", path: "/a", want: SimpleChange, wantStatus: http.StatusOK, wantAfter: "/a/"},
		{name: "moved elsewhere", path: "/old", want: Redirected, wantStatus: http.StatusOK, wantAfter: "/new"},
		{name: "redirect loop", path: "/loop", want: Error, wantStatus: http.StatusFound},
		{name: "redirect without location", path: "/noloc", want: Error, wantStatus: http.StatusFound},
		{name: "multiple choices", path: "/choices", want: Error, wantStatus: http.StatusMultipleChoices},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			link := &LinkDescription{OriginalLink: ts.URL + tt.path}
			a.Check(context.Background(), link)

			assert.Equal(t, tt.want, link.Result, "err: %s", link.Err)
			assert.Equal(t, tt.wantStatus, link.StatusCode)
			if tt.wantAfter != "" {
				assert.Equal(t, ts.URL+tt.wantAfter, link.LinkAfterRedirect)
				require.Len(t, link.Chain, 2)
				assert.Equal(t, ts.URL+tt.path, link.Chain[0].URL)
			} else {
				assert.Empty(t, link.LinkAfterRedirect)
			}
		})
	}
}

func TestAuditor_DefaultUserAgent(t *testing.T) {
	var got atomic.Value
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.Store(r.UserAgent())
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(ts.Close)

	link := &LinkDescription{OriginalLink: ts.URL + "/"}
	New(Config{}, WithHTTPClient(ts.Client())).Check(context.Background(), link)

	require.Equal(t, OK, link.Result)
	assert.Equal(t, version.UserAgent("linkaudit"), got.Load())
}

func TestAuditor_CheckIgnoresNonHTTP(t *testing.T) {
	link := &LinkDescription{OriginalLink: "mailto:someone@example.com"}
	New(DefaultConfig()).Check(context.Background(), link)
	assert.Equal(t, Ignored, link.Result)
}

func TestAuditor_Timeout(t *testing.T) {
	var hits atomic.Int64
	ts := newTestServer(t, &hits)
	a := testAuditor(ts, 50*time.Millisecond)

	link := &LinkDescription{OriginalLink: ts.URL + "/slow"}
	a.Check(context.Background(), link)

	assert.Equal(t, Timeout, link.Result)
	assert.NotEmpty(t, link.Err)
}

func TestAuditor_NotFoundExcludedFromTimeoutRescan(t *testing.T) {
	var hits atomic.Int64
	ts := newTestServer(t, &hits)
	a := testAuditor(ts, 2*time.Second)

	doc := dom.Parse(`<p><a href="` + ts.URL + `/missing">gone</a></p>`)
	links := Extract(doc)
	require.Len(t, links, 1)
	assert.Equal(t, NotCheckedYet, links[0].Result)

	checked := a.Audit(context.Background(), links, SelectUnchecked)
	require.Len(t, checked, 1)
	assert.Equal(t, NotFound, links[0].Result)
	before := hits.Load()

	rescanned := a.Audit(context.Background(), links, SelectTimeouts)
	assert.Empty(t, rescanned)
	assert.Equal(t, before, hits.Load())
	assert.Equal(t, NotFound, links[0].Result)
}

func TestAuditor_StartProgress(t *testing.T) {
	var hits atomic.Int64
	ts := newTestServer(t, &hits)
	a := testAuditor(ts, 2*time.Second)

	links := []*LinkDescription{
		{Index: 0, OriginalLink: ts.URL + "/ok"},
		{Index: 1, OriginalLink: ts.URL + "/missing"},
		{Index: 2, OriginalLink: "tel:123", Result: Ignored},
		{Index: 3, OriginalLink: ts.URL + "/a"},
	}

	run := a.Start(context.Background(), links, SelectRescan)
	_, err := uuid.Parse(run.ID())
	require.NoError(t, err)

	select {
	case <-run.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("run did not finish")
	}

	checked, total := run.Progress()
	assert.Equal(t, 3, total)
	assert.Equal(t, 3, checked)
	assert.Len(t, run.Wait(), 3)

	tally := Tally(links)
	assert.Equal(t, 1, tally[OK])
	assert.Equal(t, 1, tally[NotFound])
	assert.Equal(t, 1, tally[Ignored])
	assert.Equal(t, 1, tally[SimpleChange])
}

func TestAuditor_CancelMarksTimeout(t *testing.T) {
	var hits atomic.Int64
	ts := newTestServer(t, &hits)
	a := testAuditor(ts, 5*time.Second)

	links := []*LinkDescription{
		{OriginalLink: ts.URL + "/slow"},
		{OriginalLink: ts.URL + "/slow"},
	}

	ctx, cancel := context.WithCancel(context.Background())
	run := a.Start(ctx, links, nil)
	time.AfterFunc(50*time.Millisecond, cancel)

	for _, l := range run.Wait() {
		assert.Equal(t, Timeout, l.Result)
	}
}

func TestAuditor_CancelStopsNewRequests(t *testing.T) {
	var hits atomic.Int64
	ts := newTestServer(t, &hits)
	a := New(Config{Timeout: 5 * time.Second, Concurrency: 1}, WithHTTPClient(ts.Client()))

	var links []*LinkDescription
	for i := 0; i < 10; i++ {
		links = append(links, &LinkDescription{Index: i, OriginalLink: ts.URL + "/slow"})
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	run := a.Start(ctx, links, nil)

	deadline := time.Now().Add(2 * time.Second)
	for hits.Load() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("first request never arrived")
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	select {
	case <-run.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("run did not stop after cancel")
	}

	assert.Equal(t, int64(1), hits.Load())
	checked, total := run.Progress()
	assert.Equal(t, 10, checked)
	assert.Equal(t, 10, total)
	for _, l := range links {
		assert.Equal(t, Timeout, l.Result, "link %d", l.Index)
	}
}

func TestAuditor_StaggersStarts(t *testing.T) {
	const stagger = 30 * time.Millisecond

	var (
		mu       sync.Mutex
		arrivals []time.Time
	)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		mu.Lock()
		arrivals = append(arrivals, time.Now())
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(ts.Close)

	a := New(Config{Timeout: 2 * time.Second, Stagger: stagger, Concurrency: 4}, WithHTTPClient(ts.Client()))

	var links []*LinkDescription
	for i := 0; i < 5; i++ {
		links = append(links, &LinkDescription{Index: i, OriginalLink: ts.URL + "/page"})
	}
	a.Audit(context.Background(), links, nil)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, arrivals, 5)
	sort.Slice(arrivals, func(i, j int) bool { return arrivals[i].Before(arrivals[j]) })
	for i := 1; i < len(arrivals); i++ {
		gap := arrivals[i].Sub(arrivals[i-1])
		assert.GreaterOrEqual(t, gap, stagger/2, "gap before request %d", i)
	}
	assert.GreaterOrEqual(t, arrivals[4].Sub(arrivals[0]), 4*stagger-stagger/2)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		original string
		final    string
		want     Summary
	}{
		{"http://e.com/a", "https://e.com/a", SchemaChange},
		{"http://e.com/a", "https://www.e.com/a/", SimpleChange},
		{"https://e.com/a", "https://e.com/a/", SimpleChange},
		{"https://E.com/a", "https://e.com/a", SimpleChange},
		{"https://e.com/a#top", "https://e.com/a/#top", SimpleChange},
		{"https://e.com/a", "https://e.com/b", Redirected},
		{"https://e.com/a?x=1", "https://e.com/a", Redirected},
		{"https://e.com/a", "https://other.com/a", Redirected},
		{"https://e.com/a", "https://e.com/a", OK},
	}

	for _, tt := range tests {
		t.Run(tt.original+" -> "+tt.final, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.original, tt.final))
		})
	}
}

func TestKeepFragment(t *testing.T) {
	assert.Equal(t, "https://e.com/b#sec", keepFragment("https://e.com/a#sec", "https://e.com/b"))
	assert.Equal(t, "https://e.com/b#other", keepFragment("https://e.com/a#sec", "https://e.com/b#other"))
	assert.Equal(t, "https://e.com/b", keepFragment("https://e.com/a", "https://e.com/b"))
}

func TestSummary_Text(t *testing.T) {
	assert.Equal(t, "simple_change", SimpleChange.String())
	s, err := ParseSummary("not_found")
	require.NoError(t, err)
	assert.Equal(t, NotFound, s)
	_, err = ParseSummary("bogus")
	assert.Error(t, err)

	data, err := json.Marshal(&LinkDescription{OriginalLink: "x", Result: Timeout})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"result":"timeout"`)

	var back LinkDescription
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, Timeout, back.Result)
}
