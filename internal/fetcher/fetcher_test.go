package fetcher

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/migueltarga/kiddo-engine/internal/imagecache"
	"github.com/migueltarga/kiddo-engine/internal/storage"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// idleFetcher builds a fetcher without a worker, so queued requests
// stay queued and queue semantics can be tested deterministically.
func idleFetcher() *Fetcher {
	return &Fetcher{
		logger:   testLogger(),
		requests: make(chan request, queueSize),
		results:  make(chan result, queueSize),
		done:     make(chan struct{}),
	}
}

func TestSubmitQueueFull(t *testing.T) {
	f := idleFetcher()

	failures := 0
	cb := func(r Result) {
		if !errors.Is(r.Err, ErrQueueFull) {
			t.Errorf("expected ErrQueueFull, got %v", r.Err)
		}
		if r.OK {
			t.Error("expected failed result")
		}
		failures++
	}

	for i := 0; i < queueSize; i++ {
		f.LoadImage(fmt.Sprintf("https://example.com/%d.jpg", i), cb)
	}
	if failures != 0 {
		t.Fatalf("expected no failures while queue has room, got %d", failures)
	}

	// One past capacity fails synchronously, before any drain.
	f.LoadImage("https://example.com/overflow.jpg", cb)
	if failures != 1 {
		t.Errorf("expected 1 synchronous failure, got %d", failures)
	}
	f.DownloadStory("extra.json", cb)
	if failures != 2 {
		t.Errorf("expected 2 synchronous failures, got %d", failures)
	}
}

func TestDrainDeliversInOrder(t *testing.T) {
	f := idleFetcher()

	var seen []string
	cb := func(r Result) { seen = append(seen, r.Target) }
	for _, target := range []string{"a", "b", "c"} {
		f.results <- result{res: Result{Kind: KindImage, Target: target, OK: true}, callback: cb}
	}

	if got := f.Drain(); got != 3 {
		t.Fatalf("expected 3 delivered, got %d", got)
	}
	for i, want := range []string{"a", "b", "c"} {
		if seen[i] != want {
			t.Errorf("result %d: expected %q, got %q", i, want, seen[i])
		}
	}

	// Drain on an empty queue returns immediately.
	if got := f.Drain(); got != 0 {
		t.Errorf("expected 0 delivered, got %d", got)
	}
}

func TestImageRoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/broken.jpg" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte("jpeg-bytes"))
	}))
	defer srv.Close()

	store := storage.NewMockStore()
	images := imagecache.New(store, srv.Client(), testLogger())
	f := New(images, nil, testLogger())
	defer f.Close()

	var results []Result
	cb := func(r Result) { results = append(results, r) }
	f.LoadImage(srv.URL+"/cover.jpg", cb)
	f.LoadImage(srv.URL+"/broken.jpg", cb)

	deadline := time.Now().Add(5 * time.Second)
	for len(results) < 2 && time.Now().Before(deadline) {
		if f.Drain() == 0 {
			time.Sleep(10 * time.Millisecond)
		}
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	if !results[0].OK {
		t.Errorf("unexpected failure: %v", results[0].Err)
	}
	if results[0].Path != imagecache.CachedPath(srv.URL+"/cover.jpg") {
		t.Errorf("unexpected path %q", results[0].Path)
	}
	if !store.Exists(results[0].Path) {
		t.Error("expected downloaded image on the store")
	}

	if results[1].OK || results[1].Err == nil {
		t.Error("expected failed result for broken image")
	}
}
