// Package cache remembers ffprobe results between runs so unchanged assets
// are not probed again.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"sakurareel/internal/media"
)

const indexVersion = 1

// Index maps absolute asset paths to their last probe. It is persisted to
// .sakurareel/probe-cache.json and is safe for concurrent use.
type Index struct {
	mu      sync.Mutex
	Version int              `json:"version"`
	Entries map[string]Entry `json:"entries"`
}

// Entry is one probed asset. An entry is valid only while the file's size
// and modification time are unchanged.
type Entry struct {
	Path      string     `json:"path"`
	SizeBytes int64      `json:"size_bytes"`
	ModTime   time.Time  `json:"mod_time"`
	ProbedAt  time.Time  `json:"probed_at"`
	Probe     media.Info `json:"probe"`
}

// Load reads the index at path, returning an empty index when the file is
// missing. A corrupt file yields an empty index and an error the caller may
// treat as a warning.
func Load(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return newIndex(), nil
		}
		return newIndex(), fmt.Errorf("read probe cache: %w", err)
	}

	var idx Index
	if err := json.Unmarshal(data, &idx); err != nil {
		return newIndex(), fmt.Errorf("decode probe cache: %w", err)
	}
	if idx.Version != indexVersion {
		return newIndex(), nil
	}
	idx.normalize()
	return &idx, nil
}

// Save writes the index atomically, creating the containing directory.
func (idx *Index) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure probe cache dir: %w", err)
	}

	idx.mu.Lock()
	idx.normalize()
	data, err := json.MarshalIndent(idx, "", "  ")
	idx.mu.Unlock()
	if err != nil {
		return fmt.Errorf("encode probe cache: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp probe cache: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace probe cache: %w", err)
	}
	return nil
}

// Lookup returns the cached probe for path when info still matches it.
func (idx *Index) Lookup(path string, info os.FileInfo) (media.Info, bool) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	entry, ok := idx.Entries[path]
	if !ok {
		return media.Info{}, false
	}
	if entry.SizeBytes != info.Size() || !entry.ModTime.Equal(info.ModTime()) {
		return media.Info{}, false
	}
	return entry.Probe, true
}

// Store records a fresh probe for path.
func (idx *Index) Store(path string, info os.FileInfo, probe media.Info, now time.Time) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.normalize()
	idx.Entries[path] = Entry{
		Path:      path,
		SizeBytes: info.Size(),
		ModTime:   info.ModTime(),
		ProbedAt:  now,
		Probe:     probe,
	}
}

// Prune drops entries whose files no longer exist and returns how many were
// removed.
func (idx *Index) Prune() int {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	removed := 0
	for path := range idx.Entries {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			delete(idx.Entries, path)
			removed++
		}
	}
	return removed
}

// Len reports the number of entries.
func (idx *Index) Len() int {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return len(idx.Entries)
}

func (idx *Index) normalize() {
	if idx.Version == 0 {
		idx.Version = indexVersion
	}
	if idx.Entries == nil {
		idx.Entries = map[string]Entry{}
	}
}

func newIndex() *Index {
	return &Index{
		Version: indexVersion,
		Entries: map[string]Entry{},
	}
}
