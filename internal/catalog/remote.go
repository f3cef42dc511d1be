package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/migueltarga/kiddo-engine/internal/storage"
	"github.com/migueltarga/kiddo-engine/pkg/lang"
	"github.com/migueltarga/kiddo-engine/pkg/story"
)

// fetchFreshness is the reuse window for a successful manifest fetch.
// It is a debounce against repeated UI-driven refetches, not a
// correctness cache: failed or stale fetches always retry.
const fetchFreshness = 30 * time.Second

// ErrOffline is returned when online mode is disabled.
var ErrOffline = errors.New("online mode is disabled")

// Entry is one downloadable story from the remote manifest. Entries
// are ephemeral: rebuilt wholesale on every real fetch.
type Entry struct {
	File string `json:"file"`
	Name string `json:"name,omitempty"`
	Lang string `json:"lang,omitempty"`
}

type manifestDoc struct {
	Stories []Entry `json:"stories"`
}

// Remote fetches the downloadable-story manifest and resolves
// individual story downloads against it, writing results through the
// content index.
type Remote struct {
	catalogURL string
	online     bool
	client     *http.Client
	store      storage.Store
	index      *storage.ContentIndex
	loader     *Loader
	logger     *slog.Logger

	mu        sync.Mutex
	entries   []Entry
	lastFetch time.Time
	lastLang  string
	lastOK    bool

	now func() time.Time
}

// NewRemote creates a remote catalog client.
func NewRemote(catalogURL string, online bool, client *http.Client, store storage.Store, index *storage.ContentIndex, loader *Loader, logger *slog.Logger) *Remote {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Remote{
		catalogURL: catalogURL,
		online:     online,
		client:     client,
		store:      store,
		index:      index,
		loader:     loader,
		logger:     logger,
		now:        time.Now,
	}
}

// SetOnline toggles online mode.
func (r *Remote) SetOnline(online bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.online = online
}

// Entries returns the current language-filtered manifest entries.
func (r *Remote) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.entries
}

// LastOK reports whether the most recent fetch succeeded.
func (r *Remote) LastOK() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastOK
}

// Invalidate drops the cached entries and the freshness window, so the
// next Fetch always goes to the network.
func (r *Remote) Invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = nil
	r.lastFetch = time.Time{}
	r.lastOK = false
}

// Fetch populates the entry list from the remote manifest. A fetch for
// the same language within the freshness window, with a non-empty
// entry list, is answered from memory.
func (r *Remote) Fetch() error {
	r.mu.Lock()

	if !r.online {
		r.mu.Unlock()
		return ErrOffline
	}

	language := r.loader.Language()
	if r.lastLang == language && r.now().Sub(r.lastFetch) < fetchFreshness && len(r.entries) > 0 {
		r.lastOK = true
		r.mu.Unlock()
		return nil
	}
	r.mu.Unlock()

	payload, err := r.httpGet(r.catalogURL)
	if err != nil {
		r.setFailed()
		return fmt.Errorf("failed to fetch catalog: %w", err)
	}

	var doc manifestDoc
	if err := json.Unmarshal(payload, &doc); err != nil {
		r.setFailed()
		return fmt.Errorf("failed to decode catalog manifest: %w", err)
	}

	entries := make([]Entry, 0, len(doc.Stories))
	for _, e := range doc.Stories {
		if e.File == "" {
			continue
		}
		if e.Name == "" {
			e.Name = e.File
		}
		if !lang.Match(language, e.Lang) {
			continue
		}
		entries = append(entries, e)
	}

	r.mu.Lock()
	r.entries = entries
	r.lastFetch = r.now()
	r.lastLang = language
	r.lastOK = true
	r.mu.Unlock()

	r.logger.Debug("Remote catalog fetched", "entries", len(entries), "language", language)
	return nil
}

func (r *Remote) setFailed() {
	r.mu.Lock()
	r.lastOK = false
	r.mu.Unlock()
}

// EnsureDownloadedOrIndexed makes the named story locally available.
//
// A local file with non-empty content is treated as already available:
// it is indexed if missing (recovering name/lang from the manifest
// when possible) and the catalog reloaded. Otherwise the file is
// downloaded relative to the manifest URL directory, given a lang tag
// when the payload lacks one, validated, persisted, indexed, and the
// catalog reloaded. Any failed step aborts the whole operation with no
// partial index entry.
//
// The returned story id is extracted from freshly downloaded payloads;
// the already-available path returns an empty id.
func (r *Remote) EnsureDownloadedOrIndexed(file string) (string, error) {
	r.mu.Lock()
	online := r.online
	r.mu.Unlock()
	if !online {
		return "", ErrOffline
	}

	if r.store.Exists(file) {
		if data, err := r.store.Read(file); err == nil && len(data) > 0 {
			if !r.index.Contains(file) {
				name, entryLang := r.entryMeta(file)
				if err := r.index.Add(file, name, entryLang); err != nil {
					return "", fmt.Errorf("failed to index existing story: %w", err)
				}
			}
			r.loader.LoadAll()
			return "", nil
		}
	}

	url := r.basePath() + file
	payload, err := r.httpGet(url)
	if err != nil {
		return "", fmt.Errorf("failed to download story: %w", err)
	}

	payload, err = backfillLang(payload, r.loader.Language())
	if err != nil {
		return "", fmt.Errorf("downloaded story is not valid JSON: %w", err)
	}

	s, err := story.Parse(payload)
	if err != nil {
		return "", fmt.Errorf("downloaded story failed to parse: %w", err)
	}

	if err := r.store.Write(file, payload); err != nil {
		return "", fmt.Errorf("failed to persist story: %w", err)
	}
	if err := r.index.Add(file, s.Title, s.Language); err != nil {
		return "", fmt.Errorf("failed to index story: %w", err)
	}

	r.loader.LoadAll()
	return s.ID, nil
}

// ReconcileExisting indexes every manifest entry whose file exists
// locally but is missing from the content index, reloading the catalog
// when anything was added. It returns the number of entries added; the
// library view uses it to absorb manually-copied content.
func (r *Remote) ReconcileExisting() int {
	added := 0
	for _, ent := range r.Entries() {
		if !r.store.Exists(ent.File) || r.index.Contains(ent.File) {
			continue
		}
		if err := r.index.Add(ent.File, ent.Name, ent.Lang); err != nil {
			r.logger.Warn("Failed to reconcile story into index", "file", ent.File, "error", err)
			continue
		}
		added++
	}
	if added > 0 {
		r.loader.LoadAll()
	}
	return added
}

// ClearDownloads deletes every catalog-listed story file from local
// storage along with its index entry, then reloads the catalog. It
// returns the number of files removed.
func (r *Remote) ClearDownloads() int {
	removed := 0
	for _, ent := range r.Entries() {
		if !r.store.Exists(ent.File) {
			continue
		}
		if err := r.store.Delete(ent.File); err != nil {
			r.logger.Warn("Failed to delete downloaded story", "file", ent.File, "error", err)
		} else {
			removed++
		}
		if err := r.index.Remove(ent.File); err != nil && !errors.Is(err, storage.ErrNotFound) {
			r.logger.Warn("Failed to unindex story", "file", ent.File, "error", err)
		}
	}
	r.loader.LoadAll()
	return removed
}

// entryMeta recovers display metadata for file from the cached
// manifest entries, falling back to the file key and reader language.
func (r *Remote) entryMeta(file string) (name, entryLang string) {
	for _, ent := range r.Entries() {
		if ent.File == file {
			return ent.Name, ent.Lang
		}
	}
	return file, r.loader.Language()
}

// basePath resolves story downloads relative to the manifest URL's
// directory.
func (r *Remote) basePath() string {
	if slash := strings.LastIndex(r.catalogURL, "/"); slash > 0 {
		return r.catalogURL[:slash+1]
	}
	return r.catalogURL
}

func (r *Remote) httpGet(url string) ([]byte, error) {
	resp, err := r.client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, nil
}

// backfillLang injects the reader's language tag into a story payload
// that lacks one. This is a best-effort repair for malformed remote
// content, not part of the story format.
func backfillLang(payload []byte, language string) ([]byte, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, err
	}

	var existing string
	if raw, ok := doc["lang"]; ok {
		_ = json.Unmarshal(raw, &existing)
	}
	if existing != "" {
		return payload, nil
	}

	encoded, err := json.Marshal(language)
	if err != nil {
		return nil, err
	}
	doc["lang"] = encoded
	return json.Marshal(doc)
}
