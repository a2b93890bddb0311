package assets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"sakurareel/internal/media"
)

// Kind identifies which directory an asset came from.
type Kind string

const (
	KindVideo Kind = "video"
	KindMusic Kind = "music"
	KindSFX   Kind = "sfx"
)

var (
	videoExtensions = map[string]bool{
		".mp4": true, ".mov": true, ".avi": true, ".mkv": true, ".webm": true, ".m4v": true,
	}
	audioExtensions = map[string]bool{
		".mp3": true, ".wav": true, ".m4a": true, ".ogg": true, ".aac": true, ".flac": true,
	}
)

// AssetRef is a local media file plus what ffprobe reported about it.
// Values are treated as immutable once probed.
type AssetRef struct {
	Kind     Kind
	Path     string
	Duration float64
	Width    int
	Height   int
	HasAudio bool

	// Title and Artist come from embedded tags (music only).
	Title  string
	Artist string
}

// Name returns the file name without directory.
func (a AssetRef) Name() string {
	return filepath.Base(a.Path)
}

// Probed reports whether usable probe data is present.
func (a AssetRef) Probed() bool {
	if a.Duration <= 0 {
		return false
	}
	if a.Kind == KindVideo {
		return a.Width > 0 && a.Height > 0
	}
	return true
}

// Extensions returns the recognized extensions for kind, sorted.
func Extensions(kind Kind) []string {
	set := audioExtensions
	if kind == KindVideo {
		set = videoExtensions
	}
	out := make([]string, 0, len(set))
	for ext := range set {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// Recognized reports whether path has an extension accepted for kind.
func Recognized(kind Kind, path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if kind == KindVideo {
		return videoExtensions[ext]
	}
	return audioExtensions[ext]
}

// List scans dir (non-recursively) for files matching kind. A missing
// directory or one without matches yields an empty slice and no error.
func List(dir string, kind Kind) ([]AssetRef, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s directory: %w", kind, err)
	}

	var refs []AssetRef
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !Recognized(kind, entry.Name()) {
			continue
		}
		refs = append(refs, AssetRef{
			Kind: kind,
			Path: filepath.Join(dir, entry.Name()),
		})
	}

	sort.Slice(refs, func(i, j int) bool { return refs[i].Path < refs[j].Path })
	return refs, nil
}

// ProbeFailure records an asset ffprobe could not read.
type ProbeFailure struct {
	Asset AssetRef
	Err   error
}

// Inventory probes assets so later stages can plan against real durations
// and frame sizes.
type Inventory struct {
	Prober Prober
}

// Prober reads stream metadata for a file. media.Prober and the probe cache
// both satisfy it.
type Prober interface {
	Probe(ctx context.Context, path string) (media.Info, error)
}

// Probe returns a copy of refs with probe data filled in. Assets that fail to
// probe are kept with zero duration and reported in the failure list; the
// normalizer drops the segments that draw them.
func (inv Inventory) Probe(ctx context.Context, refs []AssetRef) ([]AssetRef, []ProbeFailure) {
	out := make([]AssetRef, len(refs))
	var failures []ProbeFailure

	for i, ref := range refs {
		out[i] = ref
		info, err := inv.Prober.Probe(ctx, ref.Path)
		if err != nil {
			failures = append(failures, ProbeFailure{Asset: ref, Err: err})
			continue
		}
		if ref.Kind == KindVideo && !info.HasVideo {
			failures = append(failures, ProbeFailure{Asset: ref, Err: errors.New("no video stream")})
			continue
		}
		out[i].Duration = info.Duration
		out[i].Width = info.Width
		out[i].Height = info.Height
		out[i].HasAudio = info.HasAudio
		if ref.Kind != KindVideo {
			out[i].Title, out[i].Artist = readTags(ref.Path)
		}
	}

	return out, failures
}
