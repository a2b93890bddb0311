package render

import (
	"fmt"
	"strings"
)

// AudioTrack is background music fitted to the rendered video length. An
// empty Source renders the video without an audio stream.
type AudioTrack struct {
	Source         string
	SourceDuration float64
	Duration       float64
	Gain           float64
	Loop           bool
	FadeOut        float64
}

// Silent reports whether the track carries no music.
func (a AudioTrack) Silent() bool {
	return strings.TrimSpace(a.Source) == ""
}

// Repeats is how many passes of the source fill the track.
func (a AudioTrack) Repeats() float64 {
	if a.Silent() || a.SourceDuration <= 0 {
		return 0
	}
	return a.Duration / a.SourceDuration
}

// FitAudio loops or truncates source to exactly duration seconds at gain. A
// source of unknown length is looped; the trim makes that harmless.
func FitAudio(source string, sourceDuration, duration, gain float64) AudioTrack {
	if strings.TrimSpace(source) == "" || duration <= 0 {
		return AudioTrack{Duration: duration}
	}
	return AudioTrack{
		Source:         source,
		SourceDuration: sourceDuration,
		Duration:       duration,
		Gain:           gain,
		Loop:           sourceDuration <= 0 || sourceDuration < duration,
	}
}

// InputArgs returns the ffmpeg input arguments for the music source.
func (a AudioTrack) InputArgs() []string {
	if a.Silent() {
		return nil
	}
	args := []string{}
	if a.Loop {
		args = append(args, "-stream_loop", "-1")
	}
	return append(args, "-i", a.Source)
}

// Filter builds the audio chain from input label in to label out: trim to the
// exact length, reset timestamps, apply gain, optionally fade the tail, then
// pad with silence so short decodes still fill the track.
func (a AudioTrack) Filter(in, out string) string {
	if a.Silent() {
		return ""
	}
	length := formatSeconds(a.Duration)
	filters := []string{
		"atrim=0:" + length,
		"asetpts=N/SR/TB",
		"volume=" + formatFloat(a.Gain),
	}
	if fade := clamp(a.FadeOut, 0, a.Duration); fade > 0 {
		filters = append(filters, fmt.Sprintf("afade=t=out:st=%s:d=%s", formatSeconds(a.Duration-fade), formatSeconds(fade)))
	}
	filters = append(filters, "apad=whole_dur="+length)
	return fmt.Sprintf("[%s]%s[%s]", in, strings.Join(filters, ","), out)
}
