package render

import (
	"fmt"
	"math"
	"strings"
)

// EntryKind tags what a timeline entry shows.
type EntryKind string

const (
	EntryTitle   EntryKind = "title"
	EntrySegment EntryKind = "segment"
	EntryEnding  EntryKind = "ending"
)

// TimelineEntry is one intermediate clip in screen order. Filters run on the
// entry's own frames, timed from its first frame, before it is joined.
type TimelineEntry struct {
	Kind     EntryKind
	Path     string
	Duration float64
	Label    string
	Filters  []string
}

// Timeline is the ordered list of clips joined by a uniform cross-fade.
type Timeline struct {
	Entries   []TimelineEntry
	Crossfade float64
}

// NewTimeline joins title, segments and ending in that order. Entries without
// a positive duration are left out. The cross-fade is clamped to half of the
// shortest entry so every transition fits inside its neighbours.
func NewTimeline(title TimelineEntry, segments []TimelineEntry, ending TimelineEntry, crossfade float64) Timeline {
	entries := make([]TimelineEntry, 0, len(segments)+2)
	if title.Duration > 0 {
		title.Kind = EntryTitle
		entries = append(entries, title)
	}
	for _, seg := range segments {
		if seg.Duration <= 0 {
			continue
		}
		seg.Kind = EntrySegment
		entries = append(entries, seg)
	}
	if ending.Duration > 0 {
		ending.Kind = EntryEnding
		entries = append(entries, ending)
	}

	durations := make([]float64, len(entries))
	for i, entry := range entries {
		durations[i] = entry.Duration
	}
	return Timeline{Entries: entries, Crossfade: effectiveCrossfade(durations, crossfade)}
}

// Durations returns entry lengths in screen order.
func (t Timeline) Durations() []float64 {
	out := make([]float64, len(t.Entries))
	for i, entry := range t.Entries {
		out[i] = entry.Duration
	}
	return out
}

// NominalDuration is the plain sum of entry lengths.
func (t Timeline) NominalDuration() float64 {
	return sum(t.Durations())
}

// RenderedDuration is the output length once every boundary overlaps by the
// cross-fade.
func (t Timeline) RenderedDuration() float64 {
	return renderedDuration(t.Durations(), t.Crossfade)
}

// Segments counts the segment entries.
func (t Timeline) Segments() int {
	n := 0
	for _, entry := range t.Entries {
		if entry.Kind == EntrySegment {
			n++
		}
	}
	return n
}

// Offsets returns the xfade offset for each boundary: the time in the output
// at which entry k starts blending in, for k >= 1.
func (t Timeline) Offsets() []float64 {
	if len(t.Entries) < 2 {
		return nil
	}
	offsets := make([]float64, 0, len(t.Entries)-1)
	elapsed := 0.0
	for k := 1; k < len(t.Entries); k++ {
		elapsed += t.Entries[k-1].Duration
		offsets = append(offsets, elapsed-float64(k)*t.Crossfade)
	}
	return offsets
}

// ExpectedRenderedDuration predicts the output length for a planned run with
// a title of head seconds, an ending of tail seconds and the given segments.
func ExpectedRenderedDuration(head, tail float64, segments []float64, crossfade float64) float64 {
	durations := make([]float64, 0, len(segments)+2)
	if head > 0 {
		durations = append(durations, head)
	}
	for _, d := range segments {
		if d > 0 {
			durations = append(durations, d)
		}
	}
	if tail > 0 {
		durations = append(durations, tail)
	}
	return renderedDuration(durations, effectiveCrossfade(durations, crossfade))
}

// VideoGraph builds the filter_complex fragment that joins the timeline
// inputs [0:v]..[n-1:v] into the label out.
func (t Timeline) VideoGraph(out string) (string, error) {
	n := len(t.Entries)
	if n == 0 {
		return "", fmt.Errorf("timeline is empty")
	}

	parts := make([]string, 0, 2*n)
	for k, entry := range t.Entries {
		label := fmt.Sprintf("v%d", k)
		if n == 1 {
			label = out
		}
		chain := append([]string{"settb=AVTB", "setpts=PTS-STARTPTS"}, entry.Filters...)
		parts = append(parts, fmt.Sprintf("[%d:v]%s[%s]", k, strings.Join(chain, ","), label))
	}
	if n == 1 {
		return parts[0], nil
	}

	if t.Crossfade <= 0 {
		var inputs strings.Builder
		for k := 0; k < n; k++ {
			fmt.Fprintf(&inputs, "[v%d]", k)
		}
		parts = append(parts, fmt.Sprintf("%sconcat=n=%d:v=1:a=0[%s]", inputs.String(), n, out))
		return strings.Join(parts, ";"), nil
	}

	prev := "v0"
	for k, offset := range t.Offsets() {
		label := fmt.Sprintf("x%d", k+1)
		if k == n-2 {
			label = out
		}
		parts = append(parts, fmt.Sprintf("[%s][v%d]xfade=transition=fade:duration=%s:offset=%s[%s]",
			prev, k+1, formatSeconds(t.Crossfade), formatSeconds(offset), label))
		prev = label
	}
	return strings.Join(parts, ";"), nil
}

func renderedDuration(durations []float64, crossfade float64) float64 {
	if len(durations) == 0 {
		return 0
	}
	total := sum(durations) - float64(len(durations)-1)*crossfade
	return math.Max(total, 0)
}

func effectiveCrossfade(durations []float64, crossfade float64) float64 {
	if crossfade <= 0 || len(durations) < 2 {
		return math.Max(crossfade, 0)
	}
	shortest := durations[0]
	for _, d := range durations[1:] {
		shortest = math.Min(shortest, d)
	}
	return math.Min(crossfade, shortest/2)
}

func sum(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total
}
