package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Captions mix ASCII and Japanese, so every width here is in terminal
// cells as measured by lipgloss, never bytes.

// pad right-fills s with spaces to width cells.
func pad(s string, width int) string {
	w := lipgloss.Width(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

// marqueeText renders a scrolling window over text wider than width cells.
// The window advances one rune per tick with a gap between cycles.
func marqueeText(text string, width, tick int) string {
	text = strings.TrimSpace(text)
	if width <= 0 {
		return ""
	}
	if lipgloss.Width(text) <= width {
		return text
	}
	cycle := []rune(text + marqueeGap)
	offset := tick % len(cycle)
	var result strings.Builder
	used := 0
	for i := 0; ; i++ {
		r := string(cycle[(offset+i)%len(cycle)])
		rw := lipgloss.Width(r)
		if used+rw > width {
			break
		}
		result.WriteString(r)
		used += rw
	}
	return pad(result.String(), width)
}

// NonEmptyOrDash returns "-" for empty/whitespace strings.
func NonEmptyOrDash(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "-"
	}
	return value
}

// TruncateWithEllipsis shortens value to at most max cells, ending in "..."
// when there is room for it.
func TruncateWithEllipsis(value string, max int) string {
	if max <= 0 {
		return ""
	}
	value = strings.TrimSpace(value)
	if lipgloss.Width(value) <= max {
		return value
	}
	if max <= 3 {
		return fitCells(value, max)
	}
	return fitCells(value, max-3) + "..."
}

func fitCells(value string, max int) string {
	var b strings.Builder
	used := 0
	for _, r := range value {
		rw := lipgloss.Width(string(r))
		if used+rw > max {
			break
		}
		b.WriteRune(r)
		used += rw
	}
	return b.String()
}
