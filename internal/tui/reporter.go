package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"sakurareel/internal/render"
)

// SegmentColumns is the table layout used while segments normalize.
var SegmentColumns = []Column{
	{Header: "SEGMENT", Width: 7},
	{Header: "STATUS", Width: 8},
	{Header: "SOURCE", Width: 28},
	{Header: "WINDOW", Width: 16},
	{Header: "CAPTION", Width: 24},
}

// SegmentKey is the row key for a segment.
func SegmentKey(seg render.Segment) string {
	return fmt.Sprintf("segment:%03d", seg.Slot.Index+1)
}

// SegmentRow returns the initial pending row for a segment.
func SegmentRow(seg render.Segment) []string {
	return []string{
		fmt.Sprintf("%03d", seg.Slot.Index+1),
		StatusPending,
		seg.Slot.Asset.Name(),
		WindowLabel(seg.Window),
		NonEmptyOrDash(seg.Overlay.Text),
	}
}

// WindowLabel describes which part of the source a segment uses.
func WindowLabel(w render.Window) string {
	if w.Loop {
		return fmt.Sprintf("loop %.1fs", w.Duration)
	}
	return fmt.Sprintf("%.1fs+%.1fs", w.Start, w.Duration)
}

// SegmentReporter forwards normalization progress to a running program as
// row updates. It implements render.ProgressReporter.
type SegmentReporter struct {
	send func(tea.Msg)
}

// NewSegmentReporter wraps the send callback handed to RunWithWork.
func NewSegmentReporter(send func(tea.Msg)) *SegmentReporter {
	return &SegmentReporter{send: send}
}

// Start implements render.ProgressReporter.
func (r *SegmentReporter) Start(seg render.Segment) {
	r.send(RowUpdateMsg{
		Key:    SegmentKey(seg),
		Fields: map[string]string{"STATUS": StatusRunning},
	})
}

// Complete implements render.ProgressReporter.
func (r *SegmentReporter) Complete(res render.Result) {
	status := StatusDone
	if res.Err != nil {
		status = StatusDropped
	}
	r.send(RowUpdateMsg{
		Key:    SegmentKey(res.Segment),
		Fields: map[string]string{"STATUS": status},
	})
}

// Plan adds a pending row for every segment.
func (r *SegmentReporter) Plan(segments []render.Segment) {
	rows := make([]Row, len(segments))
	for i, seg := range segments {
		rows[i] = Row{Key: SegmentKey(seg), Fields: SegmentRow(seg)}
	}
	r.send(AddRowsMsg{Rows: rows})
}

// Phase reports the start of a pipeline phase.
func (r *SegmentReporter) Phase(phase, detail string) {
	r.send(PhaseMsg{Phase: phase, Detail: detail})
}
