package tui

import (
	"fmt"
	"io"
	"sync"
	"time"
)

const clearLine = "\r\033[K"

// StatusWriter redraws a single spinner line on w while the inventory and
// planning phases run, before any segment table exists. Finished phases
// are printed once with a check mark and stay on screen.
type StatusWriter struct {
	w    io.Writer
	stop chan struct{}
	wg   sync.WaitGroup

	mu      sync.Mutex
	phase   string
	since   time.Time
	frame   int
	stopped bool
}

// NewStatusWriter starts redrawing w every 100ms until Stop is called.
func NewStatusWriter(w io.Writer) *StatusWriter {
	sw := &StatusWriter{w: w, stop: make(chan struct{}), since: time.Now()}
	sw.wg.Add(1)
	go sw.run(100 * time.Millisecond)
	return sw
}

// Update switches the spinner to a new phase and restarts its clock.
func (sw *StatusWriter) Update(phase string) {
	sw.mu.Lock()
	sw.phase, sw.since = phase, time.Now()
	sw.mu.Unlock()
}

// Finish prints msg as a completed phase above the spinner.
func (sw *StatusWriter) Finish(msg string) {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	if sw.stopped {
		return
	}
	fmt.Fprintf(sw.w, "%s✓ %s (%s)\n", clearLine, msg, formatElapsed(time.Since(sw.since)))
	sw.since = time.Now()
}

// Stop halts the spinner and erases its line. It is safe to call twice.
func (sw *StatusWriter) Stop() {
	sw.mu.Lock()
	if sw.stopped {
		sw.mu.Unlock()
		return
	}
	sw.stopped = true
	sw.mu.Unlock()

	close(sw.stop)
	sw.wg.Wait()
	fmt.Fprint(sw.w, clearLine)
}

func (sw *StatusWriter) run(every time.Duration) {
	defer sw.wg.Done()
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-sw.stop:
			return
		case <-ticker.C:
			sw.draw()
		}
	}
}

func (sw *StatusWriter) draw() {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	if sw.stopped {
		return
	}
	spinner := spinnerFrames[sw.frame%len(spinnerFrames)]
	sw.frame++
	fmt.Fprintf(sw.w, "%s%s %s (%s)", clearLine, PhaseStyle.Render(spinner), sw.phase, formatElapsed(time.Since(sw.since)))
}

// formatElapsed keeps the clock short: milliseconds, then tenths of a
// second, then whole seconds, then minutes.
func formatElapsed(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < 10*time.Second:
		return fmt.Sprintf("%.1fs", d.Seconds())
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	default:
		return fmt.Sprintf("%dm%02ds", int(d.Minutes()), int(d.Seconds())%60)
	}
}
