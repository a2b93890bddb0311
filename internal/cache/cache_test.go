package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"sakurareel/internal/media"
)

type countingProbe struct {
	calls int
	info  media.Info
	err   error
}

func (c *countingProbe) Probe(context.Context, string) (media.Info, error) {
	c.calls++
	return c.info, c.err
}

func writeAsset(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadMissing(t *testing.T) {
	idx, err := Load(filepath.Join(t.TempDir(), "nonexistent.json"))
	if err != nil {
		t.Fatalf("expected no error for missing file, got %v", err)
	}
	if idx.Len() != 0 {
		t.Fatalf("expected empty entries, got %d", idx.Len())
	}
}

func TestLoadCorrupt(t *testing.T) {
	path := writeAsset(t, t.TempDir(), "probe-cache.json", "{not json")
	idx, err := Load(path)
	if err == nil {
		t.Fatal("expected decode error")
	}
	if idx == nil || idx.Len() != 0 {
		t.Fatal("expected usable empty index alongside the error")
	}
}

func TestSaveLoadRoundtrip(t *testing.T) {
	dir := t.TempDir()
	asset := writeAsset(t, dir, "clip.mp4", "frames")
	stat, err := os.Stat(asset)
	if err != nil {
		t.Fatal(err)
	}

	idx := newIndex()
	idx.Store(asset, stat, media.Info{Duration: 12.5, Width: 1920, Height: 1080, HasVideo: true}, time.Unix(100, 0))

	indexPath := filepath.Join(dir, "meta", "probe-cache.json")
	if err := idx.Save(indexPath); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(indexPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	info, ok := loaded.Lookup(asset, stat)
	if !ok {
		t.Fatal("expected entry after reload")
	}
	if info.Duration != 12.5 || info.Width != 1920 || !info.HasVideo {
		t.Fatalf("unexpected probe %+v", info)
	}
}

func TestLookupInvalidatedBySizeChange(t *testing.T) {
	dir := t.TempDir()
	asset := writeAsset(t, dir, "clip.mp4", "frames")
	stat, _ := os.Stat(asset)

	idx := newIndex()
	idx.Store(asset, stat, media.Info{Duration: 3}, time.Now())

	writeAsset(t, dir, "clip.mp4", "many more frames")
	changed, _ := os.Stat(asset)
	if _, ok := idx.Lookup(asset, changed); ok {
		t.Fatal("expected miss after the file changed")
	}
}

func TestProberCachesSuccess(t *testing.T) {
	dir := t.TempDir()
	asset := writeAsset(t, dir, "clip.mp4", "frames")
	next := &countingProbe{info: media.Info{Duration: 8, HasVideo: true}}
	p := &Prober{Next: next, Index: newIndex()}

	for i := 0; i < 3; i++ {
		info, err := p.Probe(context.Background(), asset)
		if err != nil {
			t.Fatalf("probe %d: %v", i, err)
		}
		if info.Duration != 8 {
			t.Fatalf("probe %d duration = %v", i, info.Duration)
		}
	}
	if next.calls != 1 {
		t.Fatalf("underlying probe called %d times, want 1", next.calls)
	}
	hits, misses := p.Stats()
	if hits != 2 || misses != 1 {
		t.Fatalf("stats = %d hits %d misses", hits, misses)
	}
}

func TestProberDoesNotCacheFailure(t *testing.T) {
	asset := writeAsset(t, t.TempDir(), "broken.mp4", "garbage")
	next := &countingProbe{err: errors.New("invalid data")}
	p := &Prober{Next: next, Index: newIndex()}

	for i := 0; i < 2; i++ {
		if _, err := p.Probe(context.Background(), asset); err == nil {
			t.Fatal("expected error")
		}
	}
	if next.calls != 2 {
		t.Fatalf("underlying probe called %d times, want 2", next.calls)
	}
	if p.Index.Len() != 0 {
		t.Fatal("failure should not be stored")
	}
}

func TestPrune(t *testing.T) {
	dir := t.TempDir()
	keep := writeAsset(t, dir, "keep.mp4", "a")
	gone := writeAsset(t, dir, "gone.mp4", "b")
	keepStat, _ := os.Stat(keep)
	goneStat, _ := os.Stat(gone)

	idx := newIndex()
	idx.Store(keep, keepStat, media.Info{}, time.Now())
	idx.Store(gone, goneStat, media.Info{}, time.Now())
	if err := os.Remove(gone); err != nil {
		t.Fatal(err)
	}

	if removed := idx.Prune(); removed != 1 {
		t.Fatalf("Prune removed %d, want 1", removed)
	}
	if idx.Len() != 1 {
		t.Fatalf("Len = %d, want 1", idx.Len())
	}
}
