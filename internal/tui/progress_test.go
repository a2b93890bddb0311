package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func newSegmentModel(rows ...[]string) ProgressModel {
	m := NewProgressModel("", SegmentColumns)
	for _, fields := range rows {
		m.AddRow("segment:"+fields[0], fields)
	}
	return m
}

func step(t *testing.T, m ProgressModel, msg tea.Msg) (ProgressModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	pm, ok := next.(ProgressModel)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return pm, cmd
}

func TestRowUpdateOnlyTouchesNamedColumns(t *testing.T) {
	m := newSegmentModel(
		[]string{"001", StatusPending, "ueno.mp4", "loop 5.0s", "上野"},
		[]string{"002", StatusPending, "meguro.mp4", "1.0s+5.0s", "目黒川"},
	)

	m, _ = step(t, m, RowUpdateMsg{Key: "segment:001", Fields: map[string]string{"STATUS": StatusDone, "WINDOW": "loop 4.0s"}})
	m, _ = step(t, m, RowUpdateMsg{Key: "segment:999", Fields: map[string]string{"STATUS": StatusDropped}})

	want := [][]string{
		{"001", StatusDone, "ueno.mp4", "loop 4.0s", "上野"},
		{"002", StatusPending, "meguro.mp4", "1.0s+5.0s", "目黒川"},
	}
	for i, row := range m.rows {
		if strings.Join(row.Fields, "|") != strings.Join(want[i], "|") {
			t.Errorf("row %d = %v, want %v", i, row.Fields, want[i])
		}
	}
}

func TestAddRowsSkipsKnownKeys(t *testing.T) {
	m := newSegmentModel([]string{"001", StatusDone})
	m, _ = step(t, m, AddRowsMsg{Rows: []Row{
		{Key: "segment:001", Fields: []string{"001", StatusPending}},
		{Key: "segment:002", Fields: []string{"002", StatusPending}},
	}})
	if len(m.rows) != 2 || m.rows[0].Fields[1] != StatusDone {
		t.Fatalf("rows = %+v", m.rows)
	}
	if len(m.rows[1].Fields) != len(SegmentColumns) {
		t.Fatalf("added row not padded to column count: %v", m.rows[1].Fields)
	}
}

func TestTerminalMessagesQuit(t *testing.T) {
	boom := errors.New("encode failed")
	tests := []struct {
		name    string
		msg     tea.Msg
		wantErr error
	}{
		{"work done", WorkDoneMsg{}, nil},
		{"error", ErrorMsg{Err: boom}, boom},
		{"ctrl+c", tea.KeyMsg{Type: tea.KeyCtrlC}, nil},
		{"q", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, cmd := step(t, newSegmentModel(), tt.msg)
			if !m.Done() || cmd == nil {
				t.Fatalf("done=%v cmd=%v", m.Done(), cmd)
			}
			if !errors.Is(m.Err(), tt.wantErr) {
				t.Fatalf("Err() = %v, want %v", m.Err(), tt.wantErr)
			}
			if tt.wantErr != nil && !strings.Contains(m.View(), "encode failed") {
				t.Fatalf("view should report the error: %q", m.View())
			}
		})
	}
}

func TestTickSchedulesUntilDone(t *testing.T) {
	m := newSegmentModel([]string{"001", StatusRunning})

	m, cmd := step(t, m, tickMsg{})
	if m.tick != 1 || cmd == nil {
		t.Fatalf("tick=%d cmd=%v", m.tick, cmd)
	}

	m, _ = step(t, m, WorkDoneMsg{})
	if _, cmd := step(t, m, tickMsg{}); cmd != nil {
		t.Fatal("tick after completion scheduled another tick")
	}
}

func TestProgressCountsIgnorePendingAndEncoding(t *testing.T) {
	m := newSegmentModel(
		[]string{"001", StatusPending},
		[]string{"002", StatusRunning},
		[]string{"003", StatusDone},
		[]string{"004", StatusDropped},
		[]string{"005", ""},
	)
	if processed, total := m.progressCounts(); processed != 2 || total != 5 {
		t.Fatalf("progressCounts = %d/%d, want 2/5", processed, total)
	}

	noStatus := NewProgressModel("", []Column{{Header: "SEGMENT", Width: 7}})
	noStatus.AddRow("a", []string{"001"})
	if processed, total := noStatus.progressCounts(); processed != 0 || total != 1 {
		t.Fatalf("without STATUS column = %d/%d", processed, total)
	}
}

func TestViewRendersTableAndFooter(t *testing.T) {
	m := NewProgressModel("桜の名所ランキング", SegmentColumns)
	m.AddRow("segment:001", []string{"001", StatusDone, "ueno.mp4", "2.5s+4.0s", "上野恩賜公園"})
	m.AddRow("segment:002", []string{"002", StatusPending, "meguro.mp4", "loop 4.0s", "目黒川"})

	view := m.View()
	for _, want := range []string{"桜の名所ランキング", "SEGMENT", "CAPTION", "ueno.mp4", "上野恩賜公園", StatusPending, "segments 1/2"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}

	m, _ = step(t, m, PhaseMsg{Phase: "encode", Detail: "sakura_video.mp4"})
	view = m.View()
	if !strings.Contains(view, "encode 1/2 · sakura_video.mp4") {
		t.Errorf("footer should name the phase:\n%s", view)
	}

	m, _ = step(t, m, WorkDoneMsg{})
	if view := m.View(); strings.Contains(view, "encode") {
		t.Errorf("footer should disappear once done:\n%s", view)
	}
}

func TestDetectMode(t *testing.T) {
	var buf strings.Builder
	tests := []struct {
		name       string
		noProgress bool
		json       bool
		want       OutputMode
	}{
		{"json wins", true, true, ModeJSON},
		{"opt out", true, false, ModePlain},
		{"not a terminal", false, false, ModePlain},
	}
	for _, tt := range tests {
		if got := DetectMode(&buf, tt.noProgress, tt.json); got != tt.want {
			t.Errorf("%s: DetectMode = %v, want %v", tt.name, got, tt.want)
		}
	}
}
