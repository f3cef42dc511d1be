package storage

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
)

// IndexFile is the persisted manifest of locally available stories.
const IndexFile = "index.json"

// IndexEntry maps a story file to its display metadata.
type IndexEntry struct {
	File string `json:"file"`
	Name string `json:"name,omitempty"`
	Lang string `json:"lang,omitempty"`
}

type indexDoc struct {
	Stories []IndexEntry `json:"stories"`
}

// ContentIndex persists the story manifest as a single document. All
// mutation is rebuild-and-rewrite: Remove filters the full entry set
// and rewrites the whole file, never splices in place, so a partial
// write can never leave a dangling duplicate.
//
// A mutex serializes read-modify-write cycles between the interactive
// path (settings operations) and the fetch worker.
type ContentIndex struct {
	mu     sync.Mutex
	store  Store
	logger *slog.Logger
}

// NewContentIndex creates an index over store.
func NewContentIndex(store Store, logger *slog.Logger) *ContentIndex {
	return &ContentIndex{store: store, logger: logger}
}

// load reads the persisted document. An absent or empty index file is
// not an error: a first run simply has no index yet.
func (ci *ContentIndex) load() ([]IndexEntry, error) {
	if !ci.store.Exists(IndexFile) {
		return []IndexEntry{}, nil
	}
	data, err := ci.store.Read(IndexFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read index: %w", err)
	}
	if len(data) == 0 {
		return []IndexEntry{}, nil
	}

	var doc indexDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode index: %w", err)
	}
	if doc.Stories == nil {
		return []IndexEntry{}, nil
	}
	return doc.Stories, nil
}

func (ci *ContentIndex) save(entries []IndexEntry) error {
	data, err := json.Marshal(indexDoc{Stories: entries})
	if err != nil {
		return fmt.Errorf("failed to encode index: %w", err)
	}
	if err := ci.store.Write(IndexFile, data); err != nil {
		return fmt.Errorf("failed to write index: %w", err)
	}
	return nil
}

// Entries returns the indexed stories in index order.
func (ci *ContentIndex) Entries() ([]IndexEntry, error) {
	ci.mu.Lock()
	defer ci.mu.Unlock()
	return ci.load()
}

// Files returns the file keys of all indexed stories, in index order.
func (ci *ContentIndex) Files() ([]string, error) {
	entries, err := ci.Entries()
	if err != nil {
		return nil, err
	}
	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.File != "" {
			files = append(files, e.File)
		}
	}
	return files, nil
}

// Contains reports whether file is indexed.
func (ci *ContentIndex) Contains(file string) bool {
	entries, err := ci.Entries()
	if err != nil {
		ci.logger.Warn("Failed to load index", "error", err)
		return false
	}
	for _, e := range entries {
		if e.File == file {
			return true
		}
	}
	return false
}

// Add appends an entry for file. Adding an already-present file
// succeeds without duplication.
func (ci *ContentIndex) Add(file, name, lang string) error {
	ci.mu.Lock()
	defer ci.mu.Unlock()

	entries, err := ci.load()
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.File == file {
			return nil
		}
	}
	entries = append(entries, IndexEntry{File: file, Name: name, Lang: lang})
	return ci.save(entries)
}

// Remove drops the entry for file, rewriting the whole document.
// Removing an absent file returns ErrNotFound and leaves the persisted
// document untouched.
func (ci *ContentIndex) Remove(file string) error {
	ci.mu.Lock()
	defer ci.mu.Unlock()

	entries, err := ci.load()
	if err != nil {
		return err
	}

	kept := make([]IndexEntry, 0, len(entries))
	found := false
	for _, e := range entries {
		if e.File == file {
			found = true
			continue
		}
		kept = append(kept, e)
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrNotFound, file)
	}
	return ci.save(kept)
}
