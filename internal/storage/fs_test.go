package storage

import (
	"errors"
	"testing"
)

func TestFSStoreRoundTrip(t *testing.T) {
	store, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if store.Exists("story.json") {
		t.Error("fresh store should be empty")
	}

	if err := store.Write("story.json", []byte(`{"id":"s1"}`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !store.Exists("story.json") {
		t.Error("expected file to exist after write")
	}

	data, err := store.Read("story.json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != `{"id":"s1"}` {
		t.Errorf("unexpected content: %s", data)
	}

	if err := store.Delete("story.json"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.Exists("story.json") {
		t.Error("expected file gone after delete")
	}
}

func TestFSStoreReadMissing(t *testing.T) {
	store, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := store.Read("ghost.json"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := store.Delete("ghost.json"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestFSStoreList(t *testing.T) {
	store, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_ = store.Write("b.json", []byte("{}"))
	_ = store.Write("a.json", []byte("{}"))
	_ = store.Write("cache/img_1.jpg", []byte("jpeg"))

	files, err := store.List("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(files) != 2 || files[0] != "a.json" || files[1] != "b.json" {
		t.Errorf("unexpected root listing: %v", files)
	}

	cached, err := store.List("cache")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cached) != 1 || cached[0] != "img_1.jpg" {
		t.Errorf("unexpected cache listing: %v", cached)
	}

	empty, err := store.List("nope")
	if err != nil {
		t.Fatalf("missing dir must not be an error: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("expected empty listing, got %v", empty)
	}
}
