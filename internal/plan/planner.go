package plan

import (
	"fmt"
	"math"
	"math/rand"

	"sakurareel/internal/assets"
)

// epsilon absorbs floating-point residue when the remaining content budget
// is compared against zero.
const epsilon = 1e-9

// minSlot is the shortest slot that survives millisecond rounding of ffmpeg
// durations.
const minSlot = 0.001

// Slot is one content segment: its screen position, length and source clip.
type Slot struct {
	Index    int
	Duration float64
	Asset    assets.AssetRef
}

// Plan is the ordered list of content slots for one run.
type Plan struct {
	Target          float64
	Head            float64
	Tail            float64
	ContentDuration float64
	Slots           []Slot
}

// TotalSlotDuration sums the planned slot lengths.
func (p Plan) TotalSlotDuration() float64 {
	total := 0.0
	for _, slot := range p.Slots {
		total += slot.Duration
	}
	return total
}

// Durations returns the slot lengths in screen order.
func (p Plan) Durations() []float64 {
	out := make([]float64, len(p.Slots))
	for i, slot := range p.Slots {
		out[i] = slot.Duration
	}
	return out
}

// Planner partitions the content duration into segments and assigns clips.
// Rand must be supplied; tests seed it for reproducible plans.
type Planner struct {
	Rand       *rand.Rand
	SegmentMin float64
	SegmentMax float64
	Head       float64
	Tail       float64

	// Crossfade is the transition length of the assembled timeline. A final
	// remainder too short to hold a transition on each side is merged into
	// the slot before it.
	Crossfade float64
}

// Plan builds slots for target seconds of output from the video inventory.
func (p Planner) Plan(target float64, videos []assets.AssetRef) (Plan, error) {
	if len(videos) == 0 {
		return Plan{}, &NoAssetsError{Kind: string(assets.KindVideo)}
	}
	if p.Rand == nil {
		return Plan{}, fmt.Errorf("planner requires a random source")
	}
	if p.SegmentMin <= 0 || p.SegmentMax <= p.SegmentMin {
		return Plan{}, &InvalidDurationError{
			Target:  target,
			Head:    p.Head,
			Tail:    p.Tail,
			Message: fmt.Sprintf("segment range [%.2f, %.2f] must satisfy 0 < min < max", p.SegmentMin, p.SegmentMax),
		}
	}

	content := target - p.Head - p.Tail
	if content < minSlot {
		return Plan{}, &InvalidDurationError{Target: target, Head: p.Head, Tail: p.Tail}
	}

	durations := p.partition(content)
	picks := p.assign(len(durations), videos)

	slots := make([]Slot, len(durations))
	for i, d := range durations {
		slots[i] = Slot{Index: i, Duration: d, Asset: picks[i]}
	}

	return Plan{
		Target:          target,
		Head:            p.Head,
		Tail:            p.Tail,
		ContentDuration: content,
		Slots:           slots,
	}, nil
}

// partition draws lengths from [SegmentMin, SegmentMax] until content is
// spent. The last slot takes the exact remainder and may be shorter than
// SegmentMin. A remainder under a millisecond or under two cross-fades is
// folded into the previous slot, which may then exceed SegmentMax by that
// much.
func (p Planner) partition(content float64) []float64 {
	var (
		durations []float64
		used      float64
	)
	for content-used > epsilon {
		remaining := content - used
		d := p.SegmentMin + p.Rand.Float64()*(p.SegmentMax-p.SegmentMin)
		if d >= remaining {
			durations = append(durations, remaining)
			break
		}
		durations = append(durations, d)
		used += d
	}

	if n := len(durations); n > 1 && durations[n-1] < math.Max(2*p.Crossfade, minSlot) {
		durations[n-2] += durations[n-1]
		durations = durations[:n-1]
	}
	return durations
}

// assign shuffles the inventory and hands out each clip once before falling
// back to uniform draws with replacement.
func (p Planner) assign(n int, videos []assets.AssetRef) []assets.AssetRef {
	pool := make([]assets.AssetRef, len(videos))
	copy(pool, videos)
	p.Rand.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

	picks := make([]assets.AssetRef, 0, n)
	for i := 0; i < n; i++ {
		if i < len(pool) {
			picks = append(picks, pool[i])
			continue
		}
		picks = append(picks, videos[p.Rand.Intn(len(videos))])
	}
	return picks
}
