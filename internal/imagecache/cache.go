// Package imagecache resolves story image URLs to locally cached
// files, downloading on miss. Decoding the cached JPEG is the image
// codec collaborator's job, not this package's.
package imagecache

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/migueltarga/kiddo-engine/internal/storage"
)

// CacheDir is the directory cached images live under, relative to the
// store root.
const CacheDir = "cache"

// Cache maps image URLs to cached files on the content store.
type Cache struct {
	store  storage.Store
	client *http.Client
	logger *slog.Logger
}

// New creates an image cache over store.
func New(store storage.Store, client *http.Client, logger *slog.Logger) *Cache {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Cache{store: store, client: client, logger: logger}
}

// CachedPath returns the store path an image URL caches to. The name
// is derived from the URL alone, so repeated loads of the same URL hit
// the same file.
func CachedPath(url string) string {
	sum := md5.Sum([]byte(url))
	return CacheDir + "/img_" + hex.EncodeToString(sum[:8]) + ".jpg"
}

// IsCached reports whether url already has a cached file.
func (c *Cache) IsCached(url string) bool {
	return c.store.Exists(CachedPath(url))
}

// Ensure returns the cached path for url, downloading the image first
// on a cache miss.
func (c *Cache) Ensure(url string) (string, error) {
	path := CachedPath(url)
	if c.store.Exists(path) {
		return path, nil
	}

	resp, err := c.client.Get(url)
	if err != nil {
		return "", fmt.Errorf("failed to download image: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d for %s", resp.StatusCode, url)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read image body: %w", err)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("empty image body for %s", url)
	}

	if err := c.store.Write(path, data); err != nil {
		return "", fmt.Errorf("failed to cache image: %w", err)
	}

	c.logger.Debug("Image cached", "url", url, "path", path, "bytes", len(data))
	return path, nil
}

// Clear deletes every cached image and returns the number removed.
func (c *Cache) Clear() int {
	files, err := c.store.List(CacheDir)
	if err != nil {
		c.logger.Warn("Failed to list image cache", "error", err)
		return 0
	}

	removed := 0
	for _, name := range files {
		if err := c.store.Delete(CacheDir + "/" + name); err == nil {
			removed++
		}
	}
	return removed
}
