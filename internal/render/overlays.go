package render

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"sakurareel/internal/config"
)

// Style selects how segment captions and the default title are worded.
type Style string

const (
	StyleRanking  Style = "ranking"
	StyleRegional Style = "regional"
	StyleTheme    Style = "theme"
	StyleSeasonal Style = "seasonal"
	StyleStandard Style = "standard"
)

// Styles lists the named styles in the order shown by the CLI.
func Styles() []Style {
	return []Style{StyleRanking, StyleRegional, StyleTheme, StyleSeasonal, StyleStandard}
}

// ParseStyle normalizes a style name. Unknown names are kept and treated as
// the standard layout.
func ParseStyle(value string) Style {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return StyleStandard
	}
	return Style(value)
}

// Known reports whether s is one of the named styles.
func (s Style) Known() bool {
	for _, known := range Styles() {
		if s == known {
			return true
		}
	}
	return false
}

// OverlaySpec is the two-line caption drawn over one segment. The caption
// fades in and out with the segment over Fade seconds.
type OverlaySpec struct {
	Text      string
	Secondary string
	Anchor    int
	Duration  float64
	Fade      float64
}

// Overlay chooses the caption for the segment at index out of count
// segments. Regional and theme styles draw from rng.
func Overlay(style Style, index, count int, rng *rand.Rand, text config.TextConfig) (string, string) {
	switch style {
	case StyleRanking:
		rank := count - index
		return fmt.Sprintf("第%d位", rank), fmt.Sprintf("Rank %d", rank)
	case StyleRegional:
		if name := pick(rng, text.Regions); name != "" {
			return name, "Region: " + name
		}
	case StyleTheme:
		if name := pick(rng, text.Themes); name != "" {
			return name, "Theme: " + name
		}
	case StyleSeasonal:
		if n := len(text.Stages); n > 0 {
			name := text.Stages[min(index, n-1)]
			return name, "Stage: " + name
		}
	}
	return fmt.Sprintf("桜の風景 %d", index+1), fmt.Sprintf("Cherry Blossom Scene %d", index+1)
}

// Recaption numbers positional captions against the clips that survived
// normalization, so ranking still counts down to 第1位 and seasonal stages
// still run in order after a drop. Names drawn for regional and theme
// captions are kept.
func Recaption(style Style, clips []NormalizedClip, text config.TextConfig) []NormalizedClip {
	out := make([]NormalizedClip, len(clips))
	for i, clip := range clips {
		if !drawsNames(style, text) {
			clip.Overlay.Text, clip.Overlay.Secondary = Overlay(style, i, len(clips), nil, text)
		}
		out[i] = clip
	}
	return out
}

func drawsNames(style Style, text config.TextConfig) bool {
	switch style {
	case StyleRegional:
		return len(text.Regions) > 0
	case StyleTheme:
		return len(text.Themes) > 0
	}
	return false
}

// OverlayFilters returns the drawtext filters for a segment caption. The
// main line sits at the anchor and the secondary line two font sizes below.
// Both lines are visible for the segment's duration and share its fades.
func OverlayFilters(spec OverlaySpec, style TextStyle) []string {
	fade := clamp(spec.Fade, 0, spec.Duration/2)

	var filters []string
	main := buildDrawText(drawTextOptions{
		Text:     spec.Text,
		Style:    style,
		FontSize: style.FontSize * 3 / 2,
		YExpr:    fmt.Sprintf("%d", spec.Anchor),
		End:      spec.Duration,
		FadeIn:   fade,
		FadeOut:  fade,
	})
	if main != "" {
		filters = append(filters, main)
	}

	secondary := buildDrawText(drawTextOptions{
		Text:    spec.Secondary,
		Style:   TextStyle{FontFile: style.FontFile, FontSize: style.FontSize, Color: style.Color},
		YExpr:   fmt.Sprintf("%d", spec.Anchor+2*style.FontSize),
		End:     spec.Duration,
		FadeIn:  fade,
		FadeOut: fade,
	})
	if secondary != "" {
		filters = append(filters, secondary)
	}
	return filters
}

// GenerateTitle builds the default title card text for style.
func GenerateTitle(style Style, rng *rand.Rand, text config.TextConfig, now time.Time) string {
	year := now.Year()
	switch style {
	case StyleRanking:
		return fmt.Sprintf("%d年 日本の美しい桜名所ベスト10", year)
	case StyleRegional:
		if region := pick(rng, text.Regions); region != "" {
			return fmt.Sprintf("%sの絶景桜スポット特集 %d", region, year)
		}
	case StyleTheme:
		if theme := pick(rng, text.Themes); theme != "" {
			return fmt.Sprintf("日本の%s特集 %d", theme, year)
		}
	case StyleSeasonal:
		return fmt.Sprintf("桜の一生 〜開花から散るまでの美しい姿〜 %d", year)
	}
	return fmt.Sprintf("日本の美しい桜特集 %d", year)
}

func pick(rng *rand.Rand, values []string) string {
	if len(values) == 0 {
		return ""
	}
	if rng == nil {
		return values[0]
	}
	return values[rng.Intn(len(values))]
}
