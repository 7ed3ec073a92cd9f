// Package uploadcache persists the fingerprint→remote-location map that makes
// uploads idempotent across builds and process restarts. The cache is a single
// JSON object stored under a fixed hidden name in the build output directory;
// it only grows and is never pruned.
package uploadcache

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// DefaultFileName is the fixed hidden name of the persisted cache, stored
// alongside the build output.
const DefaultFileName = ".upload-cache.json"

// Cache maps content fingerprints to previously obtained remote locations.
type Cache struct {
	path    string
	mu      sync.RWMutex
	entries map[string]string
	logger  *slog.Logger
}

// Load reads the persisted cache from path. A missing or unparseable file
// yields an empty cache, not an error: the cache is an optimization and a
// damaged one only costs re-uploads.
func Load(path string) *Cache {
	c := &Cache{
		path:    path,
		entries: make(map[string]string),
		logger:  slog.Default(),
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if !os.IsNotExist(err) {
			c.logger.Warn("Upload cache unreadable, starting empty", "path", path, "error", err)
		}
		return c
	}

	var entries map[string]string
	if err := json.Unmarshal(data, &entries); err != nil {
		c.logger.Warn("Upload cache corrupt, starting empty", "path", path, "error", err)
		return c
	}

	c.entries = entries
	c.logger.Debug("Loaded upload cache", "path", path, "entries", len(entries))
	return c
}

// LoadFromDir loads the cache under its default name in outputDir.
func LoadFromDir(outputDir string) *Cache {
	return Load(filepath.Join(outputDir, DefaultFileName))
}

// WithLogger sets a custom logger.
func (c *Cache) WithLogger(logger *slog.Logger) *Cache {
	c.logger = logger
	return c
}

// Lookup returns the cached remote location for a fingerprint.
func (c *Cache) Lookup(fp string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	url, ok := c.entries[fp]
	return url, ok
}

// Record inserts or overwrites a fingerprint→location entry in memory.
// The entry is not persisted until Persist runs at cycle end.
func (c *Cache) Record(fp, url string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[fp] = url
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Persist overwrites the cache file with the full in-memory map. It runs at
// the end of every publish cycle, including cycles with zero new uploads, so
// the persisted state always equals the in-memory state afterwards.
func (c *Cache) Persist() error {
	c.mu.RLock()
	data, err := json.MarshalIndent(c.entries, "", "  ")
	c.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("marshal upload cache: %w", err)
	}

	if err := os.WriteFile(c.path, data, 0600); err != nil {
		return fmt.Errorf("write upload cache %s: %w", c.path, err)
	}

	c.logger.Debug("Persisted upload cache", "path", c.path, "entries", c.Len())
	return nil
}
