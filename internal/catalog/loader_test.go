package catalog

import (
	"log/slog"
	"os"
	"testing"

	"github.com/migueltarga/kiddo-engine/internal/storage"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func storyJSON(id, title, language string) string {
	return `{"id":"` + id + `","title":"` + title + `","lang":"` + language + `","start":"a","nodes":{"a":{"text":"Hi","end":true}}}`
}

func newTestLoader(language string) (*Loader, *storage.MockStore, *storage.ContentIndex) {
	store := storage.NewMockStore()
	index := storage.NewContentIndex(store, testLogger())
	return NewLoader(store, index, language, testLogger()), store, index
}

func TestLoadAllIndexedFirstThenOrphans(t *testing.T) {
	loader, store, index := newTestLoader("en")

	// Two indexed stories plus one orphan that only exists on storage.
	_ = store.Write("zebra.json", []byte(storyJSON("zebra", "Zebra", "en")))
	_ = store.Write("apple.json", []byte(storyJSON("apple", "Apple", "en")))
	_ = store.Write("orphan.json", []byte(storyJSON("orphan", "Orphan", "en")))
	_ = index.Add("zebra.json", "Zebra", "en")
	_ = index.Add("apple.json", "Apple", "en")

	stories := loader.LoadAll()
	if len(stories) != 3 {
		t.Fatalf("expected 3 stories, got %d", len(stories))
	}
	// Index order first (zebra before apple, as indexed), orphans after.
	if stories[0].ID != "zebra" || stories[1].ID != "apple" || stories[2].ID != "orphan" {
		t.Errorf("unexpected order: %s, %s, %s", stories[0].ID, stories[1].ID, stories[2].ID)
	}
}

func TestLoadAllLanguageFilterIsExact(t *testing.T) {
	loader, store, index := newTestLoader("pt-br")

	_ = store.Write("pt.json", []byte(storyJSON("pt", "Portuguese", "pt-BR")))
	_ = store.Write("en.json", []byte(storyJSON("en", "English", "en")))
	_ = index.Add("pt.json", "Portuguese", "pt-br")
	_ = index.Add("en.json", "English", "en")

	stories := loader.LoadAll()
	if len(stories) != 1 || stories[0].ID != "pt" {
		t.Fatalf("expected exact-tag match only, got %+v", stories)
	}

	// No fallback to English happens at this layer.
	loader.SetLanguage("fr")
	if stories := loader.LoadAll(); len(stories) != 0 {
		t.Errorf("expected no stories for unmatched language, got %d", len(stories))
	}
}

func TestLoadAllSkipsBrokenContent(t *testing.T) {
	loader, store, index := newTestLoader("en")

	_ = index.Add("missing.json", "Gone", "en") // indexed but not on storage
	_ = store.Write("bad.json", []byte("{not json"))
	_ = index.Add("bad.json", "Bad", "en")
	_ = store.Write("noid.json", []byte(`{"start":"a","lang":"en","nodes":{}}`))
	_ = store.Write("good.json", []byte(storyJSON("good", "Good", "en")))
	_ = index.Add("good.json", "Good", "en")

	stories := loader.LoadAll()
	if len(stories) != 1 || stories[0].ID != "good" {
		t.Fatalf("expected broken entries skipped, got %+v", stories)
	}
}

func TestLoadAllExcludesIndexFile(t *testing.T) {
	loader, store, _ := newTestLoader("en")

	_ = store.Write(storage.IndexFile, []byte(`{"stories":[]}`))
	_ = store.Write("only.json", []byte(storyJSON("only", "Only", "en")))

	stories := loader.LoadAll()
	if len(stories) != 1 || stories[0].ID != "only" {
		t.Fatalf("index file must never be loaded as a story, got %+v", stories)
	}
}

func TestStoriesReturnsLastGeneration(t *testing.T) {
	loader, store, _ := newTestLoader("en")

	if got := loader.Stories(); got != nil {
		t.Errorf("expected nil before first load, got %+v", got)
	}

	_ = store.Write("one.json", []byte(storyJSON("one", "One", "en")))
	loader.LoadAll()

	gen := loader.Stories()
	if len(gen) != 1 {
		t.Fatalf("expected 1 story, got %d", len(gen))
	}

	// A reload replaces the generation wholesale.
	_ = store.Write("two.json", []byte(storyJSON("two", "Two", "en")))
	loader.LoadAll()
	if len(loader.Stories()) != 2 {
		t.Errorf("expected new generation after reload")
	}
	if len(gen) != 1 {
		t.Errorf("previous generation slice must be untouched")
	}
}
