package cli

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"sakurareel/internal/pipeline"
	"sakurareel/internal/render"
	"sakurareel/internal/tui"
)

var (
	labelStyle = lipgloss.NewStyle().Bold(true)
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	faintStyle = lipgloss.NewStyle().Faint(true)
)

// plainProgress writes one line per phase and per finished segment. It is
// used when output is not a terminal.
type plainProgress struct {
	mu sync.Mutex
	w  io.Writer
}

func newPlainProgress(w io.Writer) *plainProgress {
	return &plainProgress{w: w}
}

// Phase matches pipeline.Pipeline.OnPhase.
func (p *plainProgress) Phase(phase pipeline.Phase, detail string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if detail == "" {
		fmt.Fprintf(p.w, "==> %s\n", phase)
		return
	}
	fmt.Fprintf(p.w, "==> %s: %s\n", phase, detail)
}

// Start implements render.ProgressReporter.
func (p *plainProgress) Start(render.Segment) {}

// Complete implements render.ProgressReporter.
func (p *plainProgress) Complete(res render.Result) {
	p.mu.Lock()
	defer p.mu.Unlock()
	status := tui.StatusDone
	if res.Err != nil {
		status = tui.StatusDropped
	}
	fmt.Fprintf(p.w, "    segment %03d %-8s %s  %s\n",
		res.Segment.Slot.Index+1,
		status,
		res.Segment.Slot.Asset.Name(),
		tui.WindowLabel(res.Segment.Window),
	)
}

func formatSeconds(seconds float64) string {
	total := int(seconds + 0.5)
	return fmt.Sprintf("%d:%02d (%.2fs)", total/60, total%60, seconds)
}
