package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	tickInterval = 150 * time.Millisecond
	marqueeGap   = "   "
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// tickMsg drives animation (spinner, marquee).
type tickMsg time.Time

// Column defines a single column in the progress table.
type Column struct {
	Header string
	Width  int
}

// Row holds the field values for a single table row.
type Row struct {
	Key    string
	Fields []string
}

// ProgressModel is a bubbletea model that renders one row per segment plus a
// footer naming the pipeline phase currently running. Captions may contain
// wide characters, so widths are measured in terminal cells.
type ProgressModel struct {
	columns  []Column
	rows     []Row
	rowIndex map[string]int
	title    string
	phase    string
	detail   string
	started  time.Time
	done     bool
	err      error

	// statusCol caches the index of the STATUS column (-1 if absent).
	statusCol int

	tick int
}

// NewProgressModel creates a progress model with the given title and columns.
func NewProgressModel(title string, columns []Column) ProgressModel {
	statusCol := -1
	for i, c := range columns {
		if strings.EqualFold(c.Header, "STATUS") {
			statusCol = i
			break
		}
	}
	return ProgressModel{
		columns:   columns,
		rowIndex:  make(map[string]int),
		title:     title,
		started:   time.Now(),
		statusCol: statusCol,
	}
}

// AddRow pre-populates a row. Call this before the program starts.
func (m *ProgressModel) AddRow(key string, fields []string) {
	padded := make([]string, len(m.columns))
	copy(padded, fields)
	m.rowIndex[key] = len(m.rows)
	m.rows = append(m.rows, Row{Key: key, Fields: padded})
}

func scheduleTick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init satisfies the tea.Model interface.
func (m ProgressModel) Init() tea.Cmd {
	return scheduleTick()
}

// Update satisfies the tea.Model interface.
func (m ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.tick++
		if m.done {
			return m, nil
		}
		return m, scheduleTick()

	case RowUpdateMsg:
		m.applyRowUpdate(msg)
		return m, nil

	case AddRowsMsg:
		for _, row := range msg.Rows {
			if _, exists := m.rowIndex[row.Key]; !exists {
				m.AddRow(row.Key, row.Fields)
			}
		}
		return m, nil

	case PhaseMsg:
		m.phase = msg.Phase
		m.detail = msg.Detail
		m.started = time.Now()
		return m, nil

	case WorkDoneMsg:
		m.done = true
		return m, tea.Quit

	case ErrorMsg:
		m.err = msg.Err
		m.done = true
		return m, tea.Quit

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.done = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *ProgressModel) applyRowUpdate(msg RowUpdateMsg) {
	idx, ok := m.rowIndex[msg.Key]
	if !ok {
		return
	}
	row := &m.rows[idx]
	for j, col := range m.columns {
		if val, exists := msg.Fields[col.Header]; exists {
			row.Fields[j] = val
		}
	}
}

// View satisfies the tea.Model interface.
func (m ProgressModel) View() string {
	if m.done && m.err != nil {
		return fmt.Sprintf("Error: %v\n", m.err)
	}

	widths := m.columnWidths()
	var b strings.Builder
	if m.title != "" {
		b.WriteString(TitleStyle.Render(m.title))
		b.WriteString("\n\n")
	}
	m.writeHeader(&b, widths)
	for _, row := range m.rows {
		m.writeRow(&b, row, widths)
	}
	if !m.done {
		m.writeFooter(&b)
	}
	return b.String()
}

// columnWidths never grows a column to fit content; long cells scroll or
// get truncated instead.
func (m ProgressModel) columnWidths() []int {
	widths := make([]int, len(m.columns))
	for i, col := range m.columns {
		widths[i] = max(lipgloss.Width(col.Header), col.Width)
	}
	return widths
}

func (m ProgressModel) writeHeader(b *strings.Builder, widths []int) {
	cells := make([]string, len(m.columns))
	for i, col := range m.columns {
		cells[i] = HeaderStyle.Render(pad(col.Header, widths[i]))
	}
	b.WriteString(strings.Join(cells, "  "))
	b.WriteByte('\n')
}

func (m ProgressModel) writeRow(b *strings.Builder, row Row, widths []int) {
	cells := make([]string, len(m.columns))
	for i := range m.columns {
		var val string
		if i < len(row.Fields) {
			val = row.Fields[i]
		}
		if !m.done && lipgloss.Width(strings.TrimSpace(val)) > widths[i] {
			val = marqueeText(val, widths[i], m.tick)
		} else {
			val = TruncateWithEllipsis(val, widths[i])
		}
		cell := pad(val, widths[i])
		if i == m.statusCol {
			cell = StatusStyle(val).Render(cell)
		}
		cells[i] = cell
	}
	b.WriteString(strings.Join(cells, "  "))
	b.WriteByte('\n')
}

// writeFooter prints "<spinner> <phase> done/total [· detail] (elapsed)".
func (m ProgressModel) writeFooter(b *strings.Builder) {
	processed, total := m.progressCounts()
	phase := m.phase
	if phase == "" {
		phase = "segments"
	}
	fmt.Fprintf(b, "\n%s %s %d/%d", spinnerFrames[m.tick%len(spinnerFrames)], PhaseStyle.Render(phase), processed, total)
	if m.detail != "" {
		fmt.Fprintf(b, " · %s", m.detail)
	}
	fmt.Fprintf(b, " (%s)\n", formatElapsed(time.Since(m.started)))
}

// progressCounts returns (processed, total) based on how many rows have left
// the pending and running states.
func (m ProgressModel) progressCounts() (int, int) {
	total := len(m.rows)
	processed := 0
	if m.statusCol < 0 {
		return 0, total
	}
	for _, row := range m.rows {
		if m.statusCol < len(row.Fields) {
			switch strings.TrimSpace(row.Fields[m.statusCol]) {
			case "", StatusPending, StatusRunning:
			default:
				processed++
			}
		}
	}
	return processed, total
}

// Done returns whether the model has finished (work done or error).
func (m ProgressModel) Done() bool {
	return m.done
}

// Err returns any fatal error that occurred.
func (m ProgressModel) Err() error {
	return m.err
}

