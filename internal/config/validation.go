package config

import (
	"fmt"
	"strings"
)

// ValidationResult captures a single validation finding.
type ValidationResult struct {
	Level   string `json:"level"` // "error" or "warning"
	Message string `json:"message"`
}

// Validate checks values ApplyDefaults cannot repair. Only "error" results
// should stop a run.
func (c Config) Validate() []ValidationResult {
	var results []ValidationResult
	results = append(results, c.validateVideo()...)
	results = append(results, c.validateTimeline()...)
	results = append(results, c.validateAudio()...)
	results = append(results, c.validateText()...)
	return results
}

// HasErrors reports whether any result is at error level.
func HasErrors(results []ValidationResult) bool {
	for _, r := range results {
		if r.Level == "error" {
			return true
		}
	}
	return false
}

// JoinErrors flattens error-level results into a single error.
func JoinErrors(results []ValidationResult) error {
	var msgs []string
	for _, r := range results {
		if r.Level == "error" {
			msgs = append(msgs, r.Message)
		}
	}
	if len(msgs) == 0 {
		return nil
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

func (c Config) validateVideo() []ValidationResult {
	var results []ValidationResult
	if c.Video.Width <= 0 || c.Video.Height <= 0 {
		results = append(results, ValidationResult{
			Level:   "error",
			Message: fmt.Sprintf("video size %dx%d must be positive", c.Video.Width, c.Video.Height),
		})
	}
	if c.Video.Width%2 != 0 || c.Video.Height%2 != 0 {
		results = append(results, ValidationResult{
			Level:   "error",
			Message: fmt.Sprintf("video size %dx%d must be even for yuv420p", c.Video.Width, c.Video.Height),
		})
	}
	if c.Video.FPS <= 0 {
		results = append(results, ValidationResult{
			Level:   "error",
			Message: fmt.Sprintf("video fps %d must be positive", c.Video.FPS),
		})
	}
	return results
}

func (c Config) validateTimeline() []ValidationResult {
	var results []ValidationResult
	t := c.Timeline
	if t.TitleSec < 0 || t.EndingSec < 0 {
		results = append(results, ValidationResult{
			Level:   "error",
			Message: "title and ending durations must not be negative",
		})
	}
	if t.SegmentMinSec <= 0 || t.SegmentMaxSec <= t.SegmentMinSec {
		results = append(results, ValidationResult{
			Level:   "error",
			Message: fmt.Sprintf("segment range [%g, %g] must satisfy 0 < min < max", t.SegmentMinSec, t.SegmentMaxSec),
		})
	}
	if t.CrossfadeSec < 0 {
		results = append(results, ValidationResult{
			Level:   "error",
			Message: "crossfade must not be negative",
		})
	}
	if t.CrossfadeSec*2 > t.SegmentMinSec {
		results = append(results, ValidationResult{
			Level:   "warning",
			Message: fmt.Sprintf("crossfade %gs is more than half the minimum segment; it will be clamped", t.CrossfadeSec),
		})
	}
	if t.CardFadeSec*2 > t.TitleSec || t.CardFadeSec*2 > t.EndingSec {
		results = append(results, ValidationResult{
			Level:   "warning",
			Message: fmt.Sprintf("card fade %gs overlaps itself on %gs/%gs cards", t.CardFadeSec, t.TitleSec, t.EndingSec),
		})
	}
	return results
}

func (c Config) validateAudio() []ValidationResult {
	var results []ValidationResult
	if c.Audio.Gain < 0 {
		results = append(results, ValidationResult{
			Level:   "error",
			Message: fmt.Sprintf("audio gain %g must not be negative", c.Audio.Gain),
		})
	}
	if c.Audio.Gain > 1 {
		results = append(results, ValidationResult{
			Level:   "warning",
			Message: fmt.Sprintf("audio gain %g amplifies the track and may clip", c.Audio.Gain),
		})
	}
	return results
}

func (c Config) validateText() []ValidationResult {
	var results []ValidationResult
	for name, list := range map[string][]string{
		"regions": c.Text.Regions,
		"themes":  c.Text.Themes,
		"stages":  c.Text.Stages,
	} {
		for i, v := range list {
			if strings.TrimSpace(v) == "" {
				results = append(results, ValidationResult{
					Level:   "warning",
					Message: fmt.Sprintf("text.%s[%d] is blank", name, i),
				})
			}
		}
	}
	return results
}
