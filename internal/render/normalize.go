package render

import (
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"sakurareel/internal/plan"
)

// Window is the part of a source clip that fills one slot.
type Window struct {
	Start    float64
	Duration float64
	Loop     bool
}

// SelectWindow picks the sub-range of a source of length source that fills
// duration seconds. Sources shorter than the slot are looped from the start;
// otherwise the start is drawn uniformly from [0, source-duration].
func SelectWindow(source, duration float64, rng *rand.Rand) Window {
	if source < duration {
		return Window{Duration: duration, Loop: true}
	}
	start := 0.0
	if slack := source - duration; slack > 0 && rng != nil {
		start = roundMillis(rng.Float64() * slack)
		if start > slack {
			start = slack
		}
	}
	return Window{Start: start, Duration: duration}
}

// NormalizedClip is one segment conformed to the canonical frame and written
// to an intermediate file. Overlay is drawn later, in the final encode, once
// the surviving clips are known.
type NormalizedClip struct {
	Slot    plan.Slot
	Window  Window
	Conform Conform
	Overlay OverlaySpec
	Path    string
}

// NormalizeRequest carries everything needed to build one segment encode.
type NormalizeRequest struct {
	Source   string
	Window   Window
	Conform  Conform
	Fade     float64
	Encoding ClipEncoding
	Output   string
}

// BuildNormalizeFilters returns the video filter chain for a segment: conform,
// frame rate and segment fades.
func BuildNormalizeFilters(req NormalizeRequest) (string, error) {
	if req.Encoding.FPS <= 0 {
		return "", errors.New("invalid video fps")
	}
	w, h := req.Conform.OutputSize()
	if w != req.Encoding.Width || h != req.Encoding.Height {
		return "", fmt.Errorf("conform produces %dx%d, want %dx%d", w, h, req.Encoding.Width, req.Encoding.Height)
	}

	filters := req.Conform.Filters()
	filters = append(filters, fmt.Sprintf("fps=%d", req.Encoding.FPS))
	filters = append(filters, fadeFilters(req.Window.Duration, req.Fade, req.Fade)...)
	filters = append(filters, "format=yuv420p")
	return strings.Join(filters, ","), nil
}

// BuildNormalizeArgs assembles the ffmpeg arguments for one segment encode.
// Looping sources use -stream_loop so frames repeat without a speed change;
// the output never carries audio.
func BuildNormalizeArgs(req NormalizeRequest) ([]string, error) {
	if strings.TrimSpace(req.Source) == "" {
		return nil, errors.New("source path is empty")
	}
	if strings.TrimSpace(req.Output) == "" {
		return nil, errors.New("output path is empty")
	}
	if req.Window.Duration <= 0 {
		return nil, fmt.Errorf("invalid segment duration %s", formatFloat(req.Window.Duration))
	}

	filters, err := BuildNormalizeFilters(req)
	if err != nil {
		return nil, err
	}

	args := []string{
		"-hide_banner",
		"-y",
	}
	if req.Window.Loop {
		args = append(args, "-stream_loop", "-1")
	} else if req.Window.Start > 0 {
		args = append(args, "-ss", formatSeconds(req.Window.Start))
	}

	args = append(args,
		"-i", req.Source,
		"-t", formatSeconds(req.Window.Duration),
		"-vf", filters,
		"-r", strconv.Itoa(req.Encoding.FPS),
		"-an",
	)
	args = append(args, intermediateCodecArgs(req.Encoding)...)
	args = append(args, req.Output)
	return args, nil
}
