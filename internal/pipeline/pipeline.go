package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"sakurareel/internal/assets"
	"sakurareel/internal/cache"
	"sakurareel/internal/config"
	"sakurareel/internal/media"
	"sakurareel/internal/paths"
	"sakurareel/internal/plan"
	"sakurareel/internal/render"
)

// Phase names a stage of a run for status output.
type Phase string

const (
	PhaseInventory Phase = "inventory"
	PhasePlan      Phase = "plan"
	PhaseCards     Phase = "cards"
	PhaseSegments  Phase = "segments"
	PhaseAudio     Phase = "audio"
	PhaseEncode    Phase = "encode"
)

// Request holds the caller parameters for one video.
type Request struct {
	Style       render.Style
	Length      float64
	Title       string
	BGM         string
	OutputPath  string
	Seed        int64
	Concurrency int
	KeepWork    bool
}

// Pipeline runs inventory, planning, normalization, assembly and the final
// encode for a workspace.
type Pipeline struct {
	Config  config.Config
	Paths   paths.ProjectPaths
	Runner  media.Runner
	FFmpeg  string
	FFprobe string
	Logger  zerolog.Logger

	// ProbeCache is the probe cache file; empty disables caching.
	ProbeCache string

	// Now supplies the clock for generated titles.
	Now func() time.Time

	Reporter  render.ProgressReporter
	OnPhase   func(phase Phase, detail string)
	OnPlanned func(draft Draft)
}

// Draft is a planned run: everything decided before ffmpeg is invoked.
type Draft struct {
	Seed     int64
	Style    render.Style
	Title    string
	Plan     plan.Plan
	Segments []render.Segment
	BGM      string
	Music    []assets.AssetRef
	SFX      []assets.AssetRef
	Expected float64
	Warnings []error
}

// Result describes a finished run.
type Result struct {
	Draft
	RunID      string
	WorkDir    string
	OutputPath string
	Normalized []render.Result
	Timeline   render.Timeline
	Audio      render.AudioTrack
	Duration   float64
}

// Dropped counts the segments that failed to normalize.
func (r Result) Dropped() int {
	n := 0
	for _, seg := range r.Normalized {
		if seg.Err != nil {
			n++
		}
	}
	return n
}

// Plan inventories the workspace and decides slots, windows, captions, title
// and music without touching ffmpeg. Segment output paths are placed under
// workDir.
func (p *Pipeline) Plan(ctx context.Context, req Request, workDir string) (Draft, error) {
	rng := rand.New(rand.NewSource(req.Seed))
	draft := Draft{Seed: req.Seed, Style: req.Style}

	p.phase(PhaseInventory, p.Paths.VideoDir)
	videos, err := assets.List(p.Paths.VideoDir, assets.KindVideo)
	if err != nil {
		return Draft{}, err
	}
	if len(videos) == 0 {
		return Draft{}, &plan.NoAssetsError{Kind: string(assets.KindVideo), Dir: p.Paths.VideoDir}
	}
	if draft.Music, err = assets.List(p.Paths.MusicDir, assets.KindMusic); err != nil {
		return Draft{}, err
	}
	if draft.SFX, err = assets.List(p.Paths.SFXDir, assets.KindSFX); err != nil {
		return Draft{}, err
	}

	prober, flush := p.prober()
	inv := assets.Inventory{Prober: prober}
	videos, failures := inv.Probe(ctx, videos)
	flush()
	for _, failure := range failures {
		err := &render.AssetDecodeError{Slot: -1, Path: failure.Asset.Path, Err: failure.Err}
		p.Logger.Warn().Str("asset", failure.Asset.Path).Err(failure.Err).Msg("cannot probe video")
		draft.Warnings = append(draft.Warnings, err)
	}
	if err := ctx.Err(); err != nil {
		return Draft{}, err
	}

	p.Logger.Info().
		Int("videos", len(videos)).
		Int("music", len(draft.Music)).
		Int("sfx", len(draft.SFX)).
		Msg("inventory complete")

	p.phase(PhasePlan, "")
	tl := p.Config.Timeline
	planner := plan.Planner{
		Rand:       rng,
		SegmentMin: tl.SegmentMinSec,
		SegmentMax: tl.SegmentMaxSec,
		Head:       tl.TitleSec,
		Tail:       tl.EndingSec,
		Crossfade:  tl.CrossfadeSec,
	}
	draft.Plan, err = planner.Plan(req.Length, videos)
	if err != nil {
		return Draft{}, err
	}

	draft.Title = strings.TrimSpace(req.Title)
	if draft.Title == "" {
		draft.Title = render.GenerateTitle(req.Style, rng, p.Config.Text, p.now())
	}

	draft.BGM = strings.TrimSpace(req.BGM)
	if draft.BGM == "" && len(draft.Music) > 0 {
		draft.BGM = draft.Music[rng.Intn(len(draft.Music))].Path
	}

	svc := p.service(workDir)
	draft.Segments = svc.PrepareSegments(draft.Plan, rng, render.Captions{
		Style:  req.Style,
		Vocab:  p.Config.Text,
		Anchor: p.Config.Overlays.TopMargin,
	})
	draft.Expected = render.ExpectedRenderedDuration(tl.TitleSec, tl.EndingSec, draft.Plan.Durations(), tl.CrossfadeSec)

	p.Logger.Info().
		Int("segments", len(draft.Plan.Slots)).
		Float64("content", draft.Plan.ContentDuration).
		Float64("expected", draft.Expected).
		Str("title", draft.Title).
		Str("bgm", draft.BGM).
		Int64("seed", req.Seed).
		Msg("plan ready")

	return draft, nil
}

// Run produces the output video for req. Planning errors are returned before
// any file is written. Segment and music failures are recovered and reported
// as warnings; card and encode failures are fatal.
func (p *Pipeline) Run(ctx context.Context, req Request) (Result, error) {
	if strings.TrimSpace(req.OutputPath) == "" {
		return Result{}, errors.New("output path is required")
	}

	runID := paths.NewRunID()
	workDir := p.Paths.RunDir(runID)

	draft, err := p.Plan(ctx, req, workDir)
	if err != nil {
		return Result{}, err
	}
	if p.OnPlanned != nil {
		p.OnPlanned(draft)
	}

	if err := p.Paths.EnsureMetaDirs(); err != nil {
		return Result{}, err
	}
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return Result{}, fmt.Errorf("create run directory: %w", err)
	}
	if !req.KeepWork {
		defer os.RemoveAll(workDir)
	}

	result := Result{Draft: draft, RunID: runID, WorkDir: workDir, OutputPath: req.OutputPath}
	svc := p.service(workDir)
	tl := p.Config.Timeline

	p.phase(PhaseCards, draft.Title)
	titleEntry, err := svc.RenderCard(ctx, render.TitleCard(draft.Title, tl.TitleSec, tl.CardFadeSec, p.now()))
	if err != nil {
		return result, err
	}
	endingEntry, err := svc.RenderCard(ctx, render.EndingCard(tl.EndingSec, tl.CardFadeSec))
	if err != nil {
		return result, err
	}

	p.phase(PhaseSegments, fmt.Sprintf("%d segments", len(draft.Segments)))
	result.Normalized = svc.Normalize(ctx, draft.Segments, render.Options{
		Concurrency: req.Concurrency,
		Reporter:    p.Reporter,
	})
	if err := ctx.Err(); err != nil {
		return result, err
	}
	for _, seg := range result.Normalized {
		if seg.Err != nil {
			result.Warnings = append(result.Warnings, seg.Err)
		}
	}

	clips := render.Recaption(req.Style, render.Survivors(result.Normalized), p.Config.Text)
	result.Timeline = render.NewTimeline(titleEntry, svc.SegmentEntries(clips), endingEntry, tl.CrossfadeSec)
	result.Duration = result.Timeline.RenderedDuration()
	p.Logger.Debug().
		Int("entries", len(result.Timeline.Entries)).
		Float64("nominal", result.Timeline.NominalDuration()).
		Float64("rendered", result.Duration).
		Float64("crossfade", result.Timeline.Crossfade).
		Msg("timeline assembled")
	if len(clips) == len(draft.Segments) && !approxEqual(result.Duration, draft.Expected) {
		p.Logger.Warn().
			Float64("expected", draft.Expected).
			Float64("rendered", result.Duration).
			Msg("timeline length differs from plan")
	}

	p.phase(PhaseAudio, draft.BGM)
	track, audioErr := p.fitAudio(ctx, draft.BGM, result.Duration)
	if audioErr != nil {
		p.Logger.Warn().Str("bgm", draft.BGM).Err(audioErr).Msg("rendering without music")
		result.Warnings = append(result.Warnings, audioErr)
	}
	result.Audio = track

	video := p.Config.Video
	audio := p.Config.Audio
	job := render.RenderJob{
		Timeline:     result.Timeline,
		Audio:        track,
		OutputPath:   req.OutputPath,
		Width:        video.Width,
		Height:       video.Height,
		FPS:          video.FPS,
		VideoCodec:   video.Codec,
		Preset:       video.Preset,
		VideoBitrate: video.Bitrate,
		AudioCodec:   audio.Codec,
		AudioBitrate: audio.Bitrate,
		SampleRate:   audio.SampleRate,
		Channels:     audio.Channels,
	}

	p.phase(PhaseEncode, req.OutputPath)
	renderer := render.Renderer{Runner: p.Runner, FFmpeg: p.FFmpeg}
	if err := renderer.Render(ctx, job); err != nil {
		if ctx.Err() != nil {
			_ = os.Remove(req.OutputPath)
			return result, ctx.Err()
		}
		return result, err
	}

	p.Logger.Info().
		Str("output", req.OutputPath).
		Float64("duration", result.Duration).
		Int("segments", result.Timeline.Segments()).
		Int("dropped", result.Dropped()).
		Bool("silent", track.Silent()).
		Msg("render complete")

	return result, nil
}

// prober returns the video prober for inventory and a flush func that
// persists the probe cache when one is configured. Cache problems are logged
// and never fail the run.
func (p *Pipeline) prober() (assets.Prober, func()) {
	base := media.NewProber(p.Runner, p.FFprobe)
	if p.ProbeCache == "" {
		return base, func() {}
	}

	idx, err := cache.Load(p.ProbeCache)
	if err != nil {
		p.Logger.Warn().Err(err).Str("path", p.ProbeCache).Msg("ignoring probe cache")
	}
	cached := &cache.Prober{Next: base, Index: idx, Now: p.now}
	return cached, func() {
		pruned := idx.Prune()
		if err := idx.Save(p.ProbeCache); err != nil {
			p.Logger.Warn().Err(err).Msg("cannot save probe cache")
		}
		hits, misses := cached.Stats()
		p.Logger.Debug().
			Int("hits", hits).
			Int("misses", misses).
			Int("pruned", pruned).
			Msg("probe cache")
	}
}

// fitAudio probes the chosen music and fits it to duration. Any problem
// yields a silent track plus an *render.AudioLoadError.
func (p *Pipeline) fitAudio(ctx context.Context, bgm string, duration float64) (render.AudioTrack, error) {
	silent := render.FitAudio("", 0, duration, 0)
	if bgm == "" {
		return silent, &render.AudioLoadError{Err: errors.New("no background music available")}
	}

	exists, err := paths.FileExists(bgm)
	if err != nil {
		return silent, &render.AudioLoadError{Path: bgm, Err: err}
	}
	if !exists {
		return silent, &render.AudioLoadError{Path: bgm, Err: os.ErrNotExist}
	}

	info, err := media.NewProber(p.Runner, p.FFprobe).Probe(ctx, bgm)
	if err != nil {
		return silent, &render.AudioLoadError{Path: bgm, Err: err}
	}
	if !info.HasAudio {
		return silent, &render.AudioLoadError{Path: bgm, Err: errors.New("no audio stream")}
	}

	track := render.FitAudio(bgm, info.Duration, duration, p.Config.Audio.Gain)
	track.FadeOut = p.Config.Audio.FadeOutSec
	p.Logger.Debug().
		Str("bgm", bgm).
		Float64("source", info.Duration).
		Float64("duration", duration).
		Bool("loop", track.Loop).
		Float64("repeats", track.Repeats()).
		Msg("music fitted")
	return track, nil
}

func (p *Pipeline) service(workDir string) *render.Service {
	video := p.Config.Video
	overlays := p.Config.Overlays
	return &render.Service{
		Runner:  p.Runner,
		FFmpeg:  p.FFmpeg,
		WorkDir: workDir,
		Encoding: render.ClipEncoding{
			Width:  video.Width,
			Height: video.Height,
			FPS:    video.FPS,
			Codec:  video.Codec,
			Preset: video.Preset,
			CRF:    video.IntermediateCRF,
		},
		Text: render.TextStyle{
			FontFile:     overlays.FontFile,
			FontSize:     overlays.FontSize,
			Color:        overlays.Color,
			OutlineColor: overlays.OutlineColor,
			OutlineWidth: overlays.OutlineWidth,
		},
		Fade:   p.Config.Timeline.SegmentFadeSec,
		Logger: p.Logger,
	}
}

func (p *Pipeline) phase(phase Phase, detail string) {
	p.Logger.Debug().Str("phase", string(phase)).Str("detail", detail).Msg("phase")
	if p.OnPhase != nil {
		p.OnPhase(phase, detail)
	}
}

func (p *Pipeline) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

func approxEqual(a, b float64) bool {
	diff := a - b
	return diff < 1e-6 && diff > -1e-6
}
