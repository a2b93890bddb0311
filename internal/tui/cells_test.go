package tui

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestTruncateWithEllipsis(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"meguro.mp4", 28, "meguro.mp4"},
		{"a longer string here", 10, "a longe..."},
		{"ueno.mp4", 3, "uen"},
		{"", 5, ""},
		{"hello", 0, ""},
		{"  目黒川  ", 6, "目黒川"},
		{"目黒川の夜桜", 7, "目黒..."},
		{"第10位 Rank 10", 8, "第10..."},
		{"桜の風景 12", 6, "桜..."},
	}
	for _, tt := range tests {
		got := TruncateWithEllipsis(tt.in, tt.max)
		if got != tt.want {
			t.Errorf("TruncateWithEllipsis(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
		if w := lipgloss.Width(got); w > tt.max && tt.max >= 0 {
			t.Errorf("TruncateWithEllipsis(%q, %d) is %d cells wide", tt.in, tt.max, w)
		}
	}
}

func TestMarqueeText(t *testing.T) {
	tests := []struct {
		text  string
		width int
		tick  int
		want  string
	}{
		{"short", 10, 0, "short"},
		{"hello world here", 5, 0, "hello"},
		{"hello world here", 5, 5, " worl"},
		{"abcdef", 4, 6, "   a"},
		{"上野恩賜公園", 5, 0, "上野 "},
		{"上野恩賜公園", 5, 1, "野恩 "},
		{"anything", 0, 3, ""},
	}
	for _, tt := range tests {
		got := marqueeText(tt.text, tt.width, tt.tick)
		if got != tt.want {
			t.Errorf("marqueeText(%q, %d, %d) = %q, want %q", tt.text, tt.width, tt.tick, got, tt.want)
		}
		if tt.width > 0 && lipgloss.Width(tt.text) > tt.width && lipgloss.Width(got) != tt.width {
			t.Errorf("marqueeText(%q, %d, %d) is %d cells, want %d", tt.text, tt.width, tt.tick, lipgloss.Width(got), tt.width)
		}
	}
}

func TestPadAndDash(t *testing.T) {
	if got := pad("桜", 4); got != "桜  " {
		t.Errorf("pad(桜, 4) = %q", got)
	}
	if got := pad("sakura", 3); got != "sakura" {
		t.Errorf("pad should never cut: %q", got)
	}
	for in, want := range map[string]string{"": "-", "  ": "-", " 上野 ": "上野"} {
		if got := NonEmptyOrDash(in); got != want {
			t.Errorf("NonEmptyOrDash(%q) = %q, want %q", in, got, want)
		}
	}
}
