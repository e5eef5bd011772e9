// Package cache is a bounded disk store of synthesized audio, keyed by
// (text, voice, backend). Entries are plain files; modification time is
// the LRU recency signal. Multiple CLI invocations share the directory,
// so every operation tolerates files appearing and vanishing underneath
// it.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/harunnryd/chime/pkg/errorsx"
)

// AudioCache manages one directory of <key>.wav entries.
type AudioCache struct {
	Dir          string
	MaxSizeBytes int64
	MaxEntries   int
}

func New(dir string, maxSizeBytes int64, maxEntries int) *AudioCache {
	return &AudioCache{Dir: dir, MaxSizeBytes: maxSizeBytes, MaxEntries: maxEntries}
}

// Key derives the entry name from the exact (backend, text, voice)
// triple. Text is whitespace-normalized so incidental formatting does
// not fragment the cache; everything else is exact equality.
func Key(backend, text, voiceFingerprint string) string {
	h := sha256.New()
	h.Write([]byte(backend))
	h.Write([]byte{0})
	h.Write([]byte(normalizeText(text)))
	h.Write([]byte{0})
	h.Write([]byte(voiceFingerprint))
	return hex.EncodeToString(h.Sum(nil))
}

func normalizeText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// Get returns the cached audio for key, touching the entry's mtime so
// recently served phrases survive eviction.
func (c *AudioCache) Get(key string) ([]byte, bool) {
	path := c.pathForKey(key)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	now := time.Now()
	_ = os.Chtimes(path, now, now)
	return data, true
}

// Put stores audio under key via write-to-temp-then-rename, so a killed
// invocation never leaves a half-written entry keyed for future hits.
// Empty and oversize payloads are skipped. Eviction runs after insert.
func (c *AudioCache) Put(key string, audio []byte) error {
	if len(audio) == 0 {
		return nil
	}
	if c.MaxSizeBytes > 0 && int64(len(audio)) > c.MaxSizeBytes {
		return nil
	}

	if err := os.MkdirAll(c.Dir, 0o755); err != nil {
		return errorsx.Wrap(fmt.Errorf("create cache dir: %w", err), errorsx.ReasonCacheWrite)
	}

	path := c.pathForKey(key)
	tmp := filepath.Join(c.Dir, key+".tmp")
	if err := os.WriteFile(tmp, audio, 0o644); err != nil {
		return errorsx.Wrap(fmt.Errorf("write cache temp: %w", err), errorsx.ReasonCacheWrite)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return errorsx.Wrap(fmt.Errorf("rename cache file: %w", err), errorsx.ReasonCacheWrite)
	}

	c.prune()
	return nil
}

func (c *AudioCache) pathForKey(key string) string {
	return filepath.Join(c.Dir, key+".wav")
}

type entry struct {
	path  string
	mtime time.Time
	size  int64
}

// prune removes oldest-mtime entries until both limits hold. A file
// vanishing between list and delete means another invocation got there
// first; that is a benign race, not an error.
func (c *AudioCache) prune() {
	dirEntries, err := os.ReadDir(c.Dir)
	if err != nil {
		return
	}

	var entries []entry
	var totalSize int64
	for _, de := range dirEntries {
		if de.IsDir() || !strings.HasSuffix(de.Name(), ".wav") {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		entries = append(entries, entry{
			path:  filepath.Join(c.Dir, de.Name()),
			mtime: info.ModTime(),
			size:  info.Size(),
		})
		totalSize += info.Size()
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].mtime.Before(entries[j].mtime)
	})

	count := len(entries)
	for _, e := range entries {
		withinSize := c.MaxSizeBytes <= 0 || totalSize <= c.MaxSizeBytes
		withinCount := c.MaxEntries <= 0 || count <= c.MaxEntries
		if withinSize && withinCount {
			break
		}
		_ = os.Remove(e.path)
		totalSize -= e.size
		count--
	}
}

// Stats reports resident entries and bytes, for the models command.
func (c *AudioCache) Stats() (entries int, bytes int64) {
	dirEntries, err := os.ReadDir(c.Dir)
	if err != nil {
		return 0, 0
	}
	for _, de := range dirEntries {
		if de.IsDir() || !strings.HasSuffix(de.Name(), ".wav") {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		entries++
		bytes += info.Size()
	}
	return entries, bytes
}
