package render

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"sakurareel/internal/media"
)

// RenderJob is everything the final encode needs.
type RenderJob struct {
	Timeline     Timeline
	Audio        AudioTrack
	OutputPath   string
	Width        int
	Height       int
	FPS          int
	VideoCodec   string
	Preset       string
	VideoBitrate string
	AudioCodec   string
	AudioBitrate string
	SampleRate   int
	Channels     int
}

// BuildEncodeArgs assembles the single ffmpeg invocation that cross-fades the
// timeline, mixes in the fitted music and writes the output file.
func BuildEncodeArgs(job RenderJob) ([]string, error) {
	if strings.TrimSpace(job.OutputPath) == "" {
		return nil, errors.New("output path is empty")
	}
	if job.FPS <= 0 {
		return nil, errors.New("invalid video fps")
	}
	if job.Width <= 0 || job.Height <= 0 {
		return nil, errors.New("invalid video dimensions")
	}

	graph, err := job.Timeline.VideoGraph("vout")
	if err != nil {
		return nil, err
	}
	for _, entry := range job.Timeline.Entries {
		if strings.TrimSpace(entry.Path) == "" {
			return nil, fmt.Errorf("%s entry has no file", entry.Kind)
		}
	}

	duration := job.Timeline.RenderedDuration()

	args := []string{
		"-hide_banner",
		"-y",
	}
	for _, entry := range job.Timeline.Entries {
		args = append(args, "-i", entry.Path)
	}

	audio := job.Audio
	if !audio.Silent() {
		args = append(args, audio.InputArgs()...)
		input := len(job.Timeline.Entries)
		graph += ";" + audio.Filter(fmt.Sprintf("%d:a", input), "aout")
	}

	args = append(args,
		"-filter_complex", graph,
		"-map", "[vout]",
	)
	if !audio.Silent() {
		args = append(args, "-map", "[aout]")
	}

	args = append(args,
		"-r", strconv.Itoa(job.FPS),
		"-s", fmt.Sprintf("%dx%d", job.Width, job.Height),
		"-c:v", fallback(job.VideoCodec, "libx264"),
	)
	if bitrate := strings.TrimSpace(job.VideoBitrate); bitrate != "" {
		args = append(args, "-b:v", bitrate)
	}
	if preset := strings.TrimSpace(job.Preset); preset != "" {
		args = append(args, "-preset", preset)
	}
	args = append(args, "-pix_fmt", "yuv420p")

	if audio.Silent() {
		args = append(args, "-an")
	} else {
		args = append(args, "-c:a", fallback(job.AudioCodec, "aac"))
		if bitrate := strings.TrimSpace(job.AudioBitrate); bitrate != "" {
			args = append(args, "-b:a", bitrate)
		}
		if job.SampleRate > 0 {
			args = append(args, "-ar", strconv.Itoa(job.SampleRate))
		}
		if job.Channels > 0 {
			args = append(args, "-ac", strconv.Itoa(job.Channels))
		}
	}

	args = append(args,
		"-t", formatSeconds(duration),
		"-movflags", "+faststart",
		job.OutputPath,
	)
	return args, nil
}

// Renderer runs the final encode.
type Renderer struct {
	Runner media.Runner
	FFmpeg string
	Stderr io.Writer
}

// Render performs the encode described by job. Any failure is returned as an
// *EncodeError; a partially written output file is left in place.
func (r Renderer) Render(ctx context.Context, job RenderJob) error {
	args, err := BuildEncodeArgs(job)
	if err != nil {
		return &EncodeError{Output: job.OutputPath, Err: err}
	}
	if err := os.MkdirAll(filepath.Dir(job.OutputPath), 0o755); err != nil {
		return &EncodeError{Output: job.OutputPath, Err: fmt.Errorf("prepare output dir: %w", err)}
	}

	runner := r.Runner
	if runner == nil {
		runner = media.CmdRunner{}
	}
	ffmpeg := fallback(r.FFmpeg, "ffmpeg")

	result, err := runner.Run(ctx, ffmpeg, args, media.RunOptions{Stderr: r.Stderr})
	if err != nil {
		return &EncodeError{Output: job.OutputPath, Err: err, Detail: stderrTail(result.Stderr)}
	}
	return nil
}

// stderrTail returns the last non-empty line ffmpeg printed, which is where
// it reports the fatal error.
func stderrTail(stderr []byte) string {
	lines := strings.Split(strings.TrimSpace(string(stderr)), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}
