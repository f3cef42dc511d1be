// Package catalog builds the in-memory set of available stories from
// local storage and resolves new content from the remote catalog.
package catalog

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/migueltarga/kiddo-engine/internal/storage"
	"github.com/migueltarga/kiddo-engine/pkg/lang"
	"github.com/migueltarga/kiddo-engine/pkg/story"
)

// Loader scans the content index plus the raw storage namespace and
// keeps the current story catalog generation.
//
// The index pass is the fast path (trusts recorded metadata, preserves
// index order); the raw *.json scan is the correctness backstop that
// absorbs manually-copied or index-desynced files.
type Loader struct {
	store  storage.Store
	index  *storage.ContentIndex
	logger *slog.Logger

	mu       sync.RWMutex
	language string
	stories  []*story.Story
}

// NewLoader creates a loader filtering for the given language tag.
func NewLoader(store storage.Store, index *storage.ContentIndex, language string, logger *slog.Logger) *Loader {
	if language == "" {
		language = lang.Default
	}
	return &Loader{
		store:    store,
		index:    index,
		language: language,
		logger:   logger,
	}
}

// Language returns the reader's current language preference.
func (l *Loader) Language() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.language
}

// SetLanguage changes the language preference. The catalog is stale
// afterwards; callers follow up with LoadAll.
func (l *Loader) SetLanguage(tag string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.language = tag
}

// Stories returns the last complete catalog generation. Callers never
// observe a half-built catalog.
func (l *Loader) Stories() []*story.Story {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.stories
}

// LoadAll rebuilds the catalog from scratch and atomically replaces
// the previous generation: indexed stories first in index order, then
// orphans discovered by the raw scan in storage enumeration order.
func (l *Loader) LoadAll() []*story.Story {
	language := l.Language()

	var stories []*story.Story
	seen := make(map[string]bool)

	indexed, err := l.index.Files()
	if err != nil {
		l.logger.Warn("Failed to read content index, falling back to raw scan", "error", err)
		indexed = nil
	}

	for _, file := range indexed {
		seen[file] = true
		if s := l.loadOne(file, language); s != nil {
			stories = append(stories, s)
		}
	}

	files, err := l.store.List("")
	if err != nil {
		l.logger.Error("Failed to scan storage for stories", "error", err)
		files = nil
	}
	for _, file := range files {
		if !strings.HasSuffix(file, ".json") || file == storage.IndexFile || seen[file] {
			continue
		}
		if s := l.loadOne(file, language); s != nil {
			stories = append(stories, s)
		}
	}

	l.mu.Lock()
	l.stories = stories
	l.mu.Unlock()

	l.logger.Debug("Catalog reloaded", "stories", len(stories), "language", language)
	return stories
}

// loadOne reads and parses one story file, returning nil when the file
// is missing, unparseable, or in another language. All three are
// skip-and-log conditions, never fatal to the whole catalog.
func (l *Loader) loadOne(file, language string) *story.Story {
	if !l.store.Exists(file) {
		return nil
	}
	data, err := l.store.Read(file)
	if err != nil || len(data) == 0 {
		l.logger.Warn("Failed to read story file", "file", file, "error", err)
		return nil
	}

	s, err := story.Parse(data)
	if err != nil {
		l.logger.Warn("Skipping unparseable story file", "file", file, "error", err)
		return nil
	}
	if !lang.Match(language, s.Language) {
		return nil
	}
	return s
}
