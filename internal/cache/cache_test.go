package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Names []string `json:"names"`
	Count int      `json:"count"`
}

func TestNew(t *testing.T) {
	tmpDir := t.TempDir()

	c, err := New(filepath.Join(tmpDir, "cache"), 24, true)
	require.NoError(t, err)
	assert.True(t, c.Enabled())

	c, err = New("", 0, false)
	require.NoError(t, err)
	assert.False(t, c.Enabled())
}

func TestNewCreatesDirectory(t *testing.T) {
	cacheDir := filepath.Join(t.TempDir(), "nested", "cache", "dir")

	_, err := New(cacheDir, 24, true)
	require.NoError(t, err)

	if _, err := os.Stat(cacheDir); os.IsNotExist(err) {
		t.Error("New() should create cache directory")
	}
}

func TestSetAndGet(t *testing.T) {
	c, err := New(filepath.Join(t.TempDir(), "cache"), 24, true)
	require.NoError(t, err)

	in := payload{Names: []string{"a", "b"}, Count: 2}
	require.NoError(t, c.Set("doc.json", "h1", in))

	var out payload
	require.True(t, c.Get("doc.json", "h1", &out))
	assert.Equal(t, in, out)

	assert.False(t, c.Get("doc.json", "h2", &out), "hash mismatch is a miss")
	assert.False(t, c.Get("other.json", "h1", &out), "unknown key is a miss")
}

func TestExpiredEntry(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")
	c, err := New(dir, 1, true)
	require.NoError(t, err)
	require.NoError(t, c.Set("k", "h", payload{Count: 1}))

	// backdate the entry
	c.ttl = time.Nanosecond
	time.Sleep(time.Millisecond)

	var out payload
	assert.False(t, c.Get("k", "h", &out))
	_, err = os.Stat(c.keyPath("k"))
	assert.True(t, os.IsNotExist(err), "expired entry should be removed")
}

func TestZeroTTLNeverExpires(t *testing.T) {
	c, err := New(filepath.Join(t.TempDir(), "cache"), 0, true)
	require.NoError(t, err)
	require.NoError(t, c.Set("k", "h", payload{Count: 3}))

	var out payload
	assert.True(t, c.Get("k", "h", &out))
	assert.Equal(t, 3, out.Count)
}

func TestDisabledCache(t *testing.T) {
	c, err := New("", 0, false)
	require.NoError(t, err)

	assert.NoError(t, c.Set("k", "h", payload{}))
	var out payload
	assert.False(t, c.Get("k", "h", &out))
	assert.NoError(t, c.Clear())

	var nilCache *Cache
	assert.False(t, nilCache.Enabled())
	assert.False(t, nilCache.Get("k", "h", &out))
}

func TestClear(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")
	c, err := New(dir, 24, true)
	require.NoError(t, err)
	require.NoError(t, c.Set("k", "h", payload{}))

	require.NoError(t, c.Clear())

	var out payload
	assert.False(t, c.Get("k", "h", &out))
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestHashBytes(t *testing.T) {
	a := HashBytes([]byte("hello"))
	b := HashBytes([]byte("hel"), []byte("lo"))
	assert.Equal(t, a, b, "hash covers the concatenation")
	assert.Len(t, a, 64)
	assert.NotEqual(t, a, HashBytes([]byte("world")))
}
