package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestKeyIsStableAndDistinct(t *testing.T) {
	a := Key("pocket-tts", "Ready.", "alba")
	b := Key("pocket-tts", "Ready.", "alba")
	require.Equal(t, a, b)

	require.NotEqual(t, a, Key("qwen3-tts", "Ready.", "alba"))
	require.NotEqual(t, a, Key("pocket-tts", "Ready?", "alba"))
	require.NotEqual(t, a, Key("pocket-tts", "Ready.", "marius"))
}

func TestKeyNormalizesWhitespaceOnly(t *testing.T) {
	require.Equal(t, Key("b", "I need  your\ninput.", "v"), Key("b", "I need your input.", "v"))
	require.NotEqual(t, Key("b", "i need your input.", "v"), Key("b", "I need your input.", "v"))
}

func TestPutGetRoundTrip(t *testing.T) {
	c := New(t.TempDir(), 1<<20, 100)
	key := Key("pocket-tts", "Ready.", "alba")
	audio := []byte("RIFF-fake-wav-bytes")

	require.NoError(t, c.Put(key, audio))
	got, ok := c.Get(key)
	require.True(t, ok)
	require.Equal(t, audio, got)
}

func TestGetMissingEntry(t *testing.T) {
	c := New(t.TempDir(), 1<<20, 100)
	_, ok := c.Get(Key("pocket-tts", "never stored", "alba"))
	require.False(t, ok)
}

func TestPutSkipsEmptyAndOversize(t *testing.T) {
	dir := t.TempDir()
	c := New(dir, 16, 100)

	require.NoError(t, c.Put("empty", nil))
	require.NoError(t, c.Put("huge", make([]byte, 64)))

	entries, _ := c.Stats()
	require.Zero(t, entries)
}

func TestEvictionRemovesOldestFirst(t *testing.T) {
	dir := t.TempDir()
	c := New(dir, 1<<20, 3)

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		key := fmt.Sprintf("entry-%d", i)
		require.NoError(t, c.Put(key, []byte("audio")))
		mtime := base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, os.Chtimes(filepath.Join(dir, key+".wav"), mtime, mtime))
	}

	// Fourth insert exceeds max_entries; entry-0 has the oldest mtime.
	require.NoError(t, c.Put("entry-3", []byte("audio")))

	_, ok := c.Get("entry-0")
	require.False(t, ok, "oldest entry should be evicted")
	for _, key := range []string{"entry-1", "entry-2", "entry-3"} {
		_, ok := c.Get(key)
		require.True(t, ok, "entry %s should survive", key)
	}

	entries, _ := c.Stats()
	require.LessOrEqual(t, entries, 3)
}

func TestEvictionEnforcesSizeBound(t *testing.T) {
	dir := t.TempDir()
	c := New(dir, 30, 100)

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 4; i++ {
		key := fmt.Sprintf("entry-%d", i)
		require.NoError(t, c.Put(key, []byte("0123456789"))) // 10 bytes each
		mtime := base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, os.Chtimes(filepath.Join(dir, key+".wav"), mtime, mtime))
	}
	require.NoError(t, c.Put("entry-4", []byte("0123456789")))

	entries, bytes := c.Stats()
	require.LessOrEqual(t, bytes, int64(30))
	require.LessOrEqual(t, entries, 3)
	_, ok := c.Get("entry-0")
	require.False(t, ok)
}

func TestGetTouchesRecency(t *testing.T) {
	dir := t.TempDir()
	c := New(dir, 1<<20, 2)

	old := time.Now().Add(-2 * time.Hour)
	require.NoError(t, c.Put("a", []byte("audio")))
	require.NoError(t, os.Chtimes(filepath.Join(dir, "a.wav"), old, old))
	require.NoError(t, c.Put("b", []byte("audio")))
	require.NoError(t, os.Chtimes(filepath.Join(dir, "b.wav"), old.Add(time.Minute), old.Add(time.Minute)))

	// Reading "a" refreshes its mtime, so "b" becomes the eviction victim.
	_, ok := c.Get("a")
	require.True(t, ok)
	require.NoError(t, c.Put("c", []byte("audio")))

	_, ok = c.Get("a")
	require.True(t, ok)
	_, ok = c.Get("b")
	require.False(t, ok)
}

func TestPruneToleratesVanishedFiles(t *testing.T) {
	dir := t.TempDir()
	c := New(dir, 1<<20, 1)
	require.NoError(t, c.Put("a", []byte("audio")))

	// Simulate a concurrent invocation deleting the entry between the
	// directory scan and our next insert.
	require.NoError(t, os.Remove(filepath.Join(dir, "a.wav")))
	require.NoError(t, c.Put("b", []byte("audio")))

	_, ok := c.Get("b")
	require.True(t, ok)
}

func TestPutOverwriteKeepsLatestBytes(t *testing.T) {
	c := New(t.TempDir(), 1<<20, 10)
	require.NoError(t, c.Put("k", []byte("first")))
	require.NoError(t, c.Put("k", []byte("second")))
	got, ok := c.Get("k")
	require.True(t, ok)
	require.Equal(t, []byte("second"), got)
}
