package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config captures encode settings, timeline durations and overlay styling
// for a sakurareel workspace.
type Config struct {
	Version  int            `yaml:"version"`
	Video    VideoConfig    `yaml:"video"`
	Audio    AudioConfig    `yaml:"audio"`
	Timeline TimelineConfig `yaml:"timeline"`
	Overlays OverlaysConfig `yaml:"overlays"`
	Assets   AssetsConfig   `yaml:"assets"`
	Text     TextConfig     `yaml:"text"`
}

// VideoConfig contains canonical frame size, framerate and encoder settings.
type VideoConfig struct {
	Width   int    `yaml:"width"`
	Height  int    `yaml:"height"`
	FPS     int    `yaml:"fps"`
	Codec   string `yaml:"codec"`
	Preset  string `yaml:"preset"`
	Bitrate string `yaml:"bitrate"`

	// IntermediateCRF is used for per-segment intermediates before the
	// final bitrate-constrained encode.
	IntermediateCRF int `yaml:"intermediate_crf"`
}

// AudioConfig describes the background track encode and gain.
type AudioConfig struct {
	Codec      string  `yaml:"codec"`
	Bitrate    string  `yaml:"bitrate"`
	SampleRate int     `yaml:"sample_rate"`
	Channels   int     `yaml:"channels"`
	Gain       float64 `yaml:"gain"`
	FadeOutSec float64 `yaml:"fade_out_s"`
}

// TimelineConfig holds the reserved card lengths and segment bounds.
type TimelineConfig struct {
	TitleSec       float64 `yaml:"title_s"`
	EndingSec      float64 `yaml:"ending_s"`
	CrossfadeSec   float64 `yaml:"crossfade_s"`
	SegmentMinSec  float64 `yaml:"segment_min_s"`
	SegmentMaxSec  float64 `yaml:"segment_max_s"`
	SegmentFadeSec float64 `yaml:"segment_fade_s"`
	CardFadeSec    float64 `yaml:"card_fade_s"`
}

// OverlaysConfig controls drawtext styling.
type OverlaysConfig struct {
	FontFile     string `yaml:"font_file"`
	FontSize     int    `yaml:"font_size"`
	Color        string `yaml:"color"`
	OutlineColor string `yaml:"outline_color"`
	OutlineWidth int    `yaml:"outline_width"`
	TopMargin    int    `yaml:"top_margin"`
}

// AssetsConfig locates the source directories and the output directory,
// relative to the workspace root unless absolute.
type AssetsConfig struct {
	VideoDir  string `yaml:"video_dir"`
	MusicDir  string `yaml:"music_dir"`
	SFXDir    string `yaml:"sfx_dir"`
	OutputDir string `yaml:"output_dir"`
}

// TextConfig holds the vocabularies overlay text is drawn from.
type TextConfig struct {
	Regions []string `yaml:"regions"`
	Themes  []string `yaml:"themes"`
	Stages  []string `yaml:"stages"`
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		Version: 1,
		Video: VideoConfig{
			Width:           3840,
			Height:          2160,
			FPS:             30,
			Codec:           "libx264",
			Preset:          "medium",
			Bitrate:         "20000k",
			IntermediateCRF: 18,
		},
		Audio: AudioConfig{
			Codec:      "aac",
			Bitrate:    "192k",
			SampleRate: 48000,
			Channels:   2,
			Gain:       0.5,
		},
		Timeline: TimelineConfig{
			TitleSec:       5,
			EndingSec:      5,
			CrossfadeSec:   0.5,
			SegmentMinSec:  10,
			SegmentMaxSec:  15,
			SegmentFadeSec: 0.5,
			CardFadeSec:    1,
		},
		Overlays: OverlaysConfig{
			FontSize:     60,
			Color:        "white",
			OutlineColor: "black",
			OutlineWidth: 2,
			TopMargin:    50,
		},
		Assets: AssetsConfig{
			VideoDir:  "resources/videos",
			MusicDir:  "resources/music",
			SFXDir:    "resources/sfx",
			OutputDir: "output",
		},
		Text: TextConfig{
			Regions: []string{"北海道", "東北", "関東", "中部", "関西", "中国", "四国", "九州", "沖縄"},
			Themes:  []string{"夜桜", "桜と富士山", "桜と城", "桜と川", "桜と湖", "桜と伝統建築"},
			Stages:  []string{"つぼみ", "開花", "満開", "散り始め", "葉桜"},
		},
	}
}

// Load reads the YAML configuration from disk if it exists, otherwise returns
// the default configuration.
func Load(path string) (Config, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := Default()
			cfg.ApplyDefaults()
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// ApplyDefaults ensures nested fields fall back to sensible defaults when the
// YAML omits them.
func (c *Config) ApplyDefaults() {
	defaults := Default()

	if c.Version == 0 {
		c.Version = defaults.Version
	}

	if c.Video.Width == 0 {
		c.Video.Width = defaults.Video.Width
	}
	if c.Video.Height == 0 {
		c.Video.Height = defaults.Video.Height
	}
	if c.Video.FPS == 0 {
		c.Video.FPS = defaults.Video.FPS
	}
	if c.Video.Codec == "" {
		c.Video.Codec = defaults.Video.Codec
	}
	if c.Video.Preset == "" {
		c.Video.Preset = defaults.Video.Preset
	}
	if c.Video.Bitrate == "" {
		c.Video.Bitrate = defaults.Video.Bitrate
	}
	if c.Video.IntermediateCRF == 0 {
		c.Video.IntermediateCRF = defaults.Video.IntermediateCRF
	}

	if c.Audio.Codec == "" {
		c.Audio.Codec = defaults.Audio.Codec
	}
	if c.Audio.Bitrate == "" {
		c.Audio.Bitrate = defaults.Audio.Bitrate
	}
	if c.Audio.SampleRate == 0 {
		c.Audio.SampleRate = defaults.Audio.SampleRate
	}
	if c.Audio.Channels == 0 {
		c.Audio.Channels = defaults.Audio.Channels
	}
	if c.Audio.Gain == 0 {
		c.Audio.Gain = defaults.Audio.Gain
	}

	if c.Timeline.TitleSec == 0 {
		c.Timeline.TitleSec = defaults.Timeline.TitleSec
	}
	if c.Timeline.EndingSec == 0 {
		c.Timeline.EndingSec = defaults.Timeline.EndingSec
	}
	if c.Timeline.CrossfadeSec == 0 {
		c.Timeline.CrossfadeSec = defaults.Timeline.CrossfadeSec
	}
	if c.Timeline.SegmentMinSec == 0 {
		c.Timeline.SegmentMinSec = defaults.Timeline.SegmentMinSec
	}
	if c.Timeline.SegmentMaxSec == 0 {
		c.Timeline.SegmentMaxSec = defaults.Timeline.SegmentMaxSec
	}
	if c.Timeline.SegmentFadeSec == 0 {
		c.Timeline.SegmentFadeSec = defaults.Timeline.SegmentFadeSec
	}
	if c.Timeline.CardFadeSec == 0 {
		c.Timeline.CardFadeSec = defaults.Timeline.CardFadeSec
	}

	if c.Overlays.FontSize == 0 {
		c.Overlays.FontSize = defaults.Overlays.FontSize
	}
	if c.Overlays.Color == "" {
		c.Overlays.Color = defaults.Overlays.Color
	}
	if c.Overlays.OutlineColor == "" {
		c.Overlays.OutlineColor = defaults.Overlays.OutlineColor
	}
	if c.Overlays.OutlineWidth == 0 {
		c.Overlays.OutlineWidth = defaults.Overlays.OutlineWidth
	}
	if c.Overlays.TopMargin == 0 {
		c.Overlays.TopMargin = defaults.Overlays.TopMargin
	}

	if c.Assets.VideoDir == "" {
		c.Assets.VideoDir = defaults.Assets.VideoDir
	}
	if c.Assets.MusicDir == "" {
		c.Assets.MusicDir = defaults.Assets.MusicDir
	}
	if c.Assets.SFXDir == "" {
		c.Assets.SFXDir = defaults.Assets.SFXDir
	}
	if c.Assets.OutputDir == "" {
		c.Assets.OutputDir = defaults.Assets.OutputDir
	}

	if len(c.Text.Regions) == 0 {
		c.Text.Regions = defaults.Text.Regions
	}
	if len(c.Text.Themes) == 0 {
		c.Text.Themes = defaults.Text.Themes
	}
	if len(c.Text.Stages) == 0 {
		c.Text.Stages = defaults.Text.Stages
	}
}

// HeadTail returns the seconds reserved for the title and ending cards.
func (c Config) HeadTail() (float64, float64) {
	return c.Timeline.TitleSec, c.Timeline.EndingSec
}

// Marshal returns the YAML encoding of the configuration.
func (c Config) Marshal() ([]byte, error) {
	buf, err := yaml.Marshal(&c)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return buf, nil
}
