package render

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"sakurareel/internal/config"
	"sakurareel/internal/media"
	"sakurareel/internal/plan"
)

// Service prepares the intermediate clips of one run inside a scratch
// directory: the title and ending cards plus one normalized clip per planned
// slot.
type Service struct {
	Runner   media.Runner
	FFmpeg   string
	WorkDir  string
	Encoding ClipEncoding
	Text     TextStyle
	Fade     float64
	Logger   zerolog.Logger
}

// Options controls segment normalization.
type Options struct {
	Concurrency int
	Reporter    ProgressReporter
}

// Captions selects the wording and placement of segment captions.
type Captions struct {
	Style  Style
	Vocab  config.TextConfig
	Anchor int
}

// Segment is a slot with its time window and caption already decided.
type Segment struct {
	Slot       plan.Slot
	Window     Window
	Overlay    OverlaySpec
	OutputPath string
}

// Label identifies the segment in progress output and logs.
func (s Segment) Label() string {
	return fmt.Sprintf("segment %03d %s", s.Slot.Index+1, s.Slot.Asset.Name())
}

// Result captures the outcome of normalizing one segment. Err is an
// *AssetDecodeError when the segment was dropped.
type Result struct {
	Segment Segment
	Clip    NormalizedClip
	LogPath string
	Err     error
}

// ProgressReporter receives notifications as segments are normalized.
type ProgressReporter interface {
	Start(segment Segment)
	Complete(result Result)
}

// PrepareSegments decides the time window and caption of every slot. All
// random draws happen here, in slot order, so a seeded rng yields the same
// run regardless of how many workers normalize afterwards. Captions are
// numbered against the planned slot count; Recaption renumbers them once
// the survivors are known.
func (s *Service) PrepareSegments(p plan.Plan, rng *rand.Rand, captions Captions) []Segment {
	segments := make([]Segment, len(p.Slots))
	count := len(p.Slots)
	for i, slot := range p.Slots {
		text, secondary := Overlay(captions.Style, i, count, rng, captions.Vocab)
		segments[i] = Segment{
			Slot:   slot,
			Window: SelectWindow(slot.Asset.Duration, slot.Duration, rng),
			Overlay: OverlaySpec{
				Text:      text,
				Secondary: secondary,
				Anchor:    captions.Anchor,
				Duration:  slot.Duration,
				Fade:      s.Fade,
			},
			OutputPath: filepath.Join(s.WorkDir, fmt.Sprintf("segment_%03d.mp4", slot.Index+1)),
		}
	}
	return segments
}

// Normalize encodes every segment on a bounded worker pool. Results come back
// in slot order; failed segments carry an error and are never retried.
func (s *Service) Normalize(ctx context.Context, segments []Segment, opts Options) []Result {
	results := make([]Result, len(segments))

	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	var g errgroup.Group
	g.SetLimit(concurrency)

	for i, seg := range segments {
		g.Go(func() error {
			if opts.Reporter != nil {
				opts.Reporter.Start(seg)
			}
			res := s.normalizeOne(ctx, seg)
			results[i] = res
			if opts.Reporter != nil {
				opts.Reporter.Complete(res)
			}
			return nil
		})
	}

	_ = g.Wait()
	return results
}

// Survivors returns the clips that normalized successfully, in slot order.
func Survivors(results []Result) []NormalizedClip {
	clips := make([]NormalizedClip, 0, len(results))
	for _, res := range results {
		if res.Err != nil {
			continue
		}
		clips = append(clips, res.Clip)
	}
	return clips
}

func (s *Service) normalizeOne(ctx context.Context, seg Segment) Result {
	result := Result{Segment: seg}
	asset := seg.Slot.Asset

	fail := func(err error) Result {
		result.Err = &AssetDecodeError{Slot: seg.Slot.Index, Path: asset.Path, Err: err}
		s.Logger.Warn().
			Int("segment", seg.Slot.Index+1).
			Str("asset", asset.Path).
			Err(err).
			Msg("segment dropped")
		return result
	}

	if !asset.Probed() {
		return fail(errors.New("no usable duration or frame size"))
	}

	conform, err := ComputeConform(asset.Width, asset.Height, s.Encoding.Width, s.Encoding.Height)
	if err != nil {
		return fail(err)
	}

	args, err := BuildNormalizeArgs(NormalizeRequest{
		Source:   asset.Path,
		Window:   seg.Window,
		Conform:  conform,
		Fade:     s.Fade,
		Encoding: s.Encoding,
		Output:   seg.OutputPath,
	})
	if err != nil {
		return fail(err)
	}

	if err := os.MkdirAll(filepath.Dir(seg.OutputPath), 0o755); err != nil {
		return fail(fmt.Errorf("ensure segment directory: %w", err))
	}

	logPath := strings.TrimSuffix(seg.OutputPath, filepath.Ext(seg.OutputPath)) + ".log"
	logFile, err := os.Create(logPath)
	if err != nil {
		return fail(fmt.Errorf("open log file: %w", err))
	}
	defer logFile.Close()
	result.LogPath = logPath

	s.Logger.Debug().
		Int("segment", seg.Slot.Index+1).
		Str("asset", asset.Path).
		Float64("start", seg.Window.Start).
		Float64("duration", seg.Window.Duration).
		Bool("loop", seg.Window.Loop).
		Str("conform", string(conform.Mode)).
		Msg("normalizing segment")

	if _, err := s.runner().Run(ctx, s.ffmpeg(), args, media.RunOptions{Dir: s.WorkDir, Stderr: logFile}); err != nil {
		_ = os.Remove(seg.OutputPath)
		return fail(fmt.Errorf("ffmpeg failed: %w (see %s)", err, logPath))
	}

	result.Clip = NormalizedClip{
		Slot:    seg.Slot,
		Window:  seg.Window,
		Conform: conform,
		Overlay: seg.Overlay,
		Path:    seg.OutputPath,
	}
	return result
}

// RenderCard writes card to <WorkDir>/<kind>.mp4 and returns the timeline
// entry for it.
func (s *Service) RenderCard(ctx context.Context, card Card) (TimelineEntry, error) {
	output := filepath.Join(s.WorkDir, string(card.Kind)+".mp4")
	args, err := BuildCardArgs(card, s.Encoding, s.Text, output)
	if err != nil {
		return TimelineEntry{}, err
	}
	if err := os.MkdirAll(s.WorkDir, 0o755); err != nil {
		return TimelineEntry{}, fmt.Errorf("ensure work directory: %w", err)
	}

	result, err := s.runner().Run(ctx, s.ffmpeg(), args, media.RunOptions{Dir: s.WorkDir})
	if err != nil {
		_ = os.Remove(output)
		return TimelineEntry{}, &EncodeError{
			Output: output,
			Err:    fmt.Errorf("render %s card: %w", card.Kind, err),
			Detail: stderrTail(result.Stderr),
		}
	}

	return TimelineEntry{
		Kind:     card.Kind,
		Path:     output,
		Duration: card.Duration,
		Label:    card.Text,
	}, nil
}

// SegmentEntries converts surviving clips into timeline entries that draw
// each clip's caption over it.
func (s *Service) SegmentEntries(clips []NormalizedClip) []TimelineEntry {
	entries := make([]TimelineEntry, len(clips))
	for i, clip := range clips {
		entries[i] = TimelineEntry{
			Kind:     EntrySegment,
			Path:     clip.Path,
			Duration: clip.Window.Duration,
			Label:    clip.Overlay.Text,
			Filters:  OverlayFilters(clip.Overlay, s.Text),
		}
	}
	return entries
}

func (s *Service) runner() media.Runner {
	if s.Runner == nil {
		return media.CmdRunner{}
	}
	return s.Runner
}

func (s *Service) ffmpeg() string {
	return fallback(s.FFmpeg, "ffmpeg")
}
