// Package cache stores per-document extraction results keyed by content hash
// so unchanged slice files are not re-parsed across runs.
package cache

import (
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/zeebo/blake3"
)

// Cache provides file-based caching for extraction results.
type Cache struct {
	dir     string
	ttl     time.Duration
	enabled bool
}

// Entry represents a cached extraction result.
type Entry struct {
	Hash      string          `json:"hash"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// New creates a new cache instance. A ttlHours of 0 means entries never expire.
func New(dir string, ttlHours int, enabled bool) (*Cache, error) {
	if !enabled {
		return &Cache{enabled: false}, nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	return &Cache{
		dir:     dir,
		ttl:     time.Duration(ttlHours) * time.Hour,
		enabled: true,
	}, nil
}

// Enabled reports whether the cache stores anything.
func (c *Cache) Enabled() bool {
	return c != nil && c.enabled
}

// HashBytes computes a BLAKE3 hash of bytes and returns it as a hex string.
func HashBytes(data ...[]byte) string {
	h := blake3.New()
	for _, d := range data {
		_, _ = h.Write(d)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Get decodes the cached value for key into v. It reports false on a miss,
// an expired entry, a hash mismatch or an undecodable entry.
func (c *Cache) Get(key, hash string, v any) bool {
	if !c.Enabled() {
		return false
	}

	path := c.keyPath(key)
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return false
	}
	if entry.Hash != hash {
		return false
	}
	if c.ttl > 0 && time.Since(entry.Timestamp) > c.ttl {
		os.Remove(path)
		return false
	}

	return json.Unmarshal(entry.Data, v) == nil
}

// Set stores v under key together with the content hash it was derived from.
func (c *Cache) Set(key, hash string, v any) error {
	if !c.Enabled() {
		return nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	entryData, err := json.Marshal(Entry{
		Hash:      hash,
		Timestamp: time.Now(),
		Data:      data,
	})
	if err != nil {
		return err
	}

	return os.WriteFile(c.keyPath(key), entryData, 0o600)
}

// Clear removes all cache entries.
func (c *Cache) Clear() error {
	if !c.Enabled() {
		return nil
	}
	if err := os.RemoveAll(c.dir); err != nil {
		return err
	}
	return os.MkdirAll(c.dir, 0o755)
}

// keyPath converts a key to a filesystem path.
func (c *Cache) keyPath(key string) string {
	// BLAKE3 of the key keeps file names short and path-safe
	hash := blake3.Sum256([]byte(key))
	return filepath.Join(c.dir, hex.EncodeToString(hash[:])+".json")
}
