package media

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Info is the subset of ffprobe output the assembly pipeline relies on.
type Info struct {
	FormatName string  `json:"format_name,omitempty"`
	Duration   float64 `json:"duration"`
	Width      int     `json:"width,omitempty"`
	Height     int     `json:"height,omitempty"`
	HasVideo   bool    `json:"has_video"`
	HasAudio   bool    `json:"has_audio"`
}

type ffprobeOutput struct {
	Format  ffprobeFormat   `json:"format"`
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeFormat struct {
	FormatName string `json:"format_name"`
	Duration   string `json:"duration"`
}

type ffprobeStream struct {
	CodecType string `json:"codec_type"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Duration  string `json:"duration"`
}

// Prober runs ffprobe through a Runner.
type Prober struct {
	Runner  Runner
	FFprobe string
}

// NewProber returns a prober using the given binary path. An empty path
// falls back to "ffprobe" on PATH.
func NewProber(runner Runner, ffprobePath string) Prober {
	if runner == nil {
		runner = CmdRunner{}
	}
	if strings.TrimSpace(ffprobePath) == "" {
		ffprobePath = "ffprobe"
	}
	return Prober{Runner: runner, FFprobe: ffprobePath}
}

// Probe reads container duration and the first video stream's frame size.
func (p Prober) Probe(ctx context.Context, path string) (Info, error) {
	args := []string{
		"-v", "error",
		"-show_format",
		"-show_streams",
		"-print_format", "json",
		path,
	}

	result, err := p.Runner.Run(ctx, p.FFprobe, args, RunOptions{})
	if err != nil {
		stderr := strings.TrimSpace(string(result.Stderr))
		if stderr != "" {
			return Info{}, fmt.Errorf("ffprobe failed: %w (stderr: %s)", err, stderr)
		}
		return Info{}, fmt.Errorf("ffprobe failed: %w", err)
	}
	return ParseProbe(result.Stdout)
}

// ParseProbe decodes ffprobe JSON output.
func ParseProbe(raw []byte) (Info, error) {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return Info{}, errors.New("ffprobe produced no output")
	}

	var parsed ffprobeOutput
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return Info{}, fmt.Errorf("decode ffprobe output: %w", err)
	}

	info := Info{
		FormatName: parsed.Format.FormatName,
		Duration:   parseSeconds(parsed.Format.Duration),
	}

	for _, stream := range parsed.Streams {
		switch stream.CodecType {
		case "video":
			if info.HasVideo {
				continue
			}
			info.HasVideo = true
			info.Width = stream.Width
			info.Height = stream.Height
			if info.Duration <= 0 {
				info.Duration = parseSeconds(stream.Duration)
			}
		case "audio":
			info.HasAudio = true
			if info.Duration <= 0 {
				info.Duration = parseSeconds(stream.Duration)
			}
		}
	}

	return info, nil
}

func parseSeconds(value string) float64 {
	value = strings.TrimSpace(value)
	if value == "" || value == "N/A" {
		return 0
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}
