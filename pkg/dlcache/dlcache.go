// Package dlcache caches downloaded dataset bodies so repeated runs do not
// re-fetch the source file. The CLI uses a disk-backed cache persisted as a
// gob snapshot; the server uses a memory-only cache.
package dlcache

import (
	"context"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/maypok86/otter/v2"
)

// Entry is a cached download with its expiry.
type Entry struct {
	ExpiresAt time.Time `json:"expires_at"`
	ETag      string    `json:"etag,omitempty"`
	Data      []byte    `json:"data"`
}

// Cache holds downloaded bodies keyed by source URL.
type Cache struct {
	cache      otter.Cache[string, Entry]
	logger     *slog.Logger
	saveCancel context.CancelFunc
	dir        string // empty for memory-only caches
	saveWg     sync.WaitGroup
	ttl        time.Duration
	mu         sync.Mutex
}

const snapshotName = "dlcache.gob"

// New creates a disk-backed cache rooted at dir. Existing entries are loaded
// from the gob snapshot and a background goroutine re-snapshots periodically
// until ctx is cancelled or Close is called.
func New(ctx context.Context, dir string, ttl time.Duration, logger *slog.Logger) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	c := &Cache{
		cache:  *newOtter(ttl),
		dir:    dir,
		ttl:    ttl,
		logger: logger,
	}

	if err := c.loadFromDisk(); err != nil {
		logger.Warn("failed to load download cache from disk", "error", err)
	}
	logger.Info("download cache initialized", "dir", dir, "entries", c.cache.EstimatedSize())

	c.startPeriodicSave(ctx)
	return c, nil
}

// NewMemoryOnly creates a cache with no disk persistence.
func NewMemoryOnly(ttl time.Duration, logger *slog.Logger) *Cache {
	return &Cache{
		cache:  *newOtter(ttl),
		ttl:    ttl,
		logger: logger,
	}
}

func newOtter(ttl time.Duration) *otter.Cache[string, Entry] {
	return otter.Must(&otter.Options[string, Entry]{
		MaximumSize:      1_000,
		InitialCapacity:  16,
		ExpiryCalculator: otter.ExpiryWriting[string, Entry](ttl),
	})
}

func cacheKey(url string) string {
	h := sha256.Sum256([]byte(url))
	return hex.EncodeToString(h[:])
}

// Get returns the cached body and ETag for a URL, if present and unexpired.
func (c *Cache) Get(url string) (data []byte, etag string, ok bool) {
	entry, found := c.cache.GetIfPresent(cacheKey(url))
	if !found {
		c.logger.Debug("download cache miss", "url", url, "reason", "not_found")
		return nil, "", false
	}
	if time.Now().After(entry.ExpiresAt) {
		c.logger.Debug("download cache miss", "url", url, "reason", "expired", "expired_at", entry.ExpiresAt)
		c.cache.Invalidate(cacheKey(url))
		return nil, "", false
	}
	return entry.Data, entry.ETag, true
}

// Set stores a downloaded body for a URL.
func (c *Cache) Set(url string, data []byte, etag string) {
	entry := Entry{
		Data:      data,
		ExpiresAt: time.Now().Add(c.ttl),
		ETag:      etag,
	}
	c.cache.Set(cacheKey(url), entry)
	c.logger.Debug("download cached", "url", url, "size", len(data), "expires_at", entry.ExpiresAt)
}

func (c *Cache) loadFromDisk() error {
	path := filepath.Join(c.dir, snapshotName)

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			c.logger.Info("no existing cache snapshot", "path", path)
			return nil
		}
		return fmt.Errorf("opening cache snapshot: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			c.logger.Debug("failed to close cache snapshot", "error", closeErr)
		}
	}()

	var entries map[string]Entry
	if err := gob.NewDecoder(file).Decode(&entries); err != nil {
		return fmt.Errorf("decoding cache snapshot: %w", err)
	}

	now := time.Now()
	valid := 0
	for key, entry := range entries {
		if now.Before(entry.ExpiresAt) {
			c.cache.Set(key, entry)
			valid++
		}
	}
	c.logger.Info("loaded cache snapshot", "path", path, "total", len(entries), "valid", valid)
	return nil
}

func (c *Cache) saveToDisk() error {
	if c.dir == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	path := filepath.Join(c.dir, snapshotName)
	tempPath := path + ".tmp"

	file, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("creating temp snapshot: %w", err)
	}
	defer func() {
		if removeErr := os.Remove(tempPath); removeErr != nil && !os.IsNotExist(removeErr) {
			c.logger.Debug("failed to remove temp snapshot", "error", removeErr)
		}
	}()

	entries := make(map[string]Entry)
	now := time.Now()
	c.cache.All()(func(key string, entry Entry) bool {
		if now.Before(entry.ExpiresAt) {
			entries[key] = entry
		}
		return true
	})

	if err := gob.NewEncoder(file).Encode(entries); err != nil {
		return fmt.Errorf("encoding cache snapshot: %w", err)
	}
	if err := file.Sync(); err != nil {
		return fmt.Errorf("syncing cache snapshot: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("closing cache snapshot: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("replacing cache snapshot: %w", err)
	}

	c.logger.Info("cache snapshot saved", "entries", len(entries), "path", path)
	return nil
}

func (c *Cache) startPeriodicSave(ctx context.Context) {
	saveCtx, cancel := context.WithCancel(ctx)
	c.saveCancel = cancel

	c.saveWg.Add(1)
	go func() {
		defer c.saveWg.Done()

		ticker := time.NewTicker(15 * time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-saveCtx.Done():
				return
			case <-ticker.C:
				if err := c.saveToDisk(); err != nil {
					c.logger.Error("periodic cache save failed", "error", err)
				}
			}
		}
	}()
}

// Close stops the periodic snapshotter and writes a final snapshot.
func (c *Cache) Close() error {
	if c.saveCancel != nil {
		c.saveCancel()
	}
	c.saveWg.Wait()

	if err := c.saveToDisk(); err != nil {
		c.logger.Error("final cache save failed", "error", err)
		return err
	}
	return nil
}

// Len reports the estimated number of cached downloads.
func (c *Cache) Len() int {
	return int(c.cache.EstimatedSize())
}
