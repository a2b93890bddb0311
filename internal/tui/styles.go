package tui

import "github.com/charmbracelet/lipgloss"

// Segment row states.
const (
	StatusPending = "pending"
	StatusRunning = "encoding"
	StatusDone    = "done"
	StatusDropped = "dropped"
)

var (
	// HeaderStyle styles the column header row.
	HeaderStyle = lipgloss.NewStyle().Bold(true)

	// TitleStyle styles the video title above the table.
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("211"))

	// PhaseStyle styles the phase name in the footer.
	PhaseStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))

	statusStyles = map[string]lipgloss.Style{
		StatusDone:    lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		StatusRunning: lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
		StatusDropped: lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		"error":       lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		StatusPending: lipgloss.NewStyle().Faint(true),
	}
)

// StatusStyle returns the lipgloss style for the given status string.
func StatusStyle(status string) lipgloss.Style {
	if s, ok := statusStyles[status]; ok {
		return s
	}
	return lipgloss.NewStyle()
}
