package cache

import (
	"context"
	"os"
	"time"

	"sakurareel/internal/media"
)

// Probe is the operation the cache sits in front of. media.Prober
// satisfies it.
type Probe interface {
	Probe(ctx context.Context, path string) (media.Info, error)
}

// Prober answers from the index when the file is unchanged and falls back to
// the wrapped prober otherwise. Failed probes are not cached.
type Prober struct {
	Next  Probe
	Index *Index
	Now   func() time.Time

	hits   int
	misses int
}

// Probe returns the cached result for an unchanged file or probes it afresh.
func (p *Prober) Probe(ctx context.Context, path string) (media.Info, error) {
	stat, err := os.Stat(path)
	if err != nil || p.Index == nil {
		return p.Next.Probe(ctx, path)
	}

	if info, ok := p.Index.Lookup(path, stat); ok {
		p.hits++
		return info, nil
	}

	info, err := p.Next.Probe(ctx, path)
	if err != nil {
		return info, err
	}
	p.misses++
	p.Index.Store(path, stat, info, p.now())
	return info, nil
}

// Stats returns the number of cache hits and stored misses.
func (p *Prober) Stats() (hits, misses int) {
	return p.hits, p.misses
}

func (p *Prober) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}
