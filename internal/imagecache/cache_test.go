package imagecache

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/migueltarga/kiddo-engine/internal/storage"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCachedPathStable(t *testing.T) {
	url := "https://example.com/art/cover.jpg"
	first := CachedPath(url)
	second := CachedPath(url)

	if first != second {
		t.Errorf("expected stable path, got %q and %q", first, second)
	}
	if !strings.HasPrefix(first, CacheDir+"/img_") {
		t.Errorf("unexpected path shape %q", first)
	}
	if !strings.HasSuffix(first, ".jpg") {
		t.Errorf("expected .jpg suffix, got %q", first)
	}
	if CachedPath("https://example.com/other.jpg") == first {
		t.Error("expected distinct URLs to map to distinct paths")
	}
}

func TestEnsureDownloadsOnMiss(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		_, _ = w.Write([]byte("jpeg-bytes"))
	}))
	defer srv.Close()

	store := storage.NewMockStore()
	cache := New(store, srv.Client(), testLogger())
	url := srv.URL + "/cover.jpg"

	if cache.IsCached(url) {
		t.Fatal("expected cache miss before Ensure")
	}

	path, err := cache.Ensure(url)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path != CachedPath(url) {
		t.Errorf("expected %q, got %q", CachedPath(url), path)
	}

	data, err := store.Read(path)
	if err != nil {
		t.Fatalf("unexpected read error: %v", err)
	}
	if string(data) != "jpeg-bytes" {
		t.Errorf("unexpected cached payload %q", data)
	}

	// A second Ensure is served from the cache.
	if _, err := cache.Ensure(url); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := requests.Load(); got != 1 {
		t.Errorf("expected 1 request, got %d", got)
	}
}

func TestEnsureFailuresLeaveNoFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "empty.jpg") {
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	store := storage.NewMockStore()
	cache := New(store, srv.Client(), testLogger())

	for _, url := range []string{srv.URL + "/missing.jpg", srv.URL + "/empty.jpg"} {
		if _, err := cache.Ensure(url); err == nil {
			t.Errorf("expected error for %s", url)
		}
		if cache.IsCached(url) {
			t.Errorf("expected no cached file for %s", url)
		}
	}
}

func TestClear(t *testing.T) {
	store := storage.NewMockStore()
	cache := New(store, nil, testLogger())

	for _, url := range []string{"https://a/1.jpg", "https://a/2.jpg"} {
		if err := store.Write(CachedPath(url), []byte("x")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if err := store.Write("gate.json", []byte("{}")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if removed := cache.Clear(); removed != 2 {
		t.Errorf("expected 2 removed, got %d", removed)
	}
	if !store.Exists("gate.json") {
		t.Error("expected story files to survive a cache clear")
	}
}
