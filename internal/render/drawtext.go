package render

import (
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"
)

// TextStyle is the drawtext styling shared by overlays and cards.
type TextStyle struct {
	FontFile     string
	FontSize     int
	Color        string
	OutlineColor string
	OutlineWidth int
}

type drawTextOptions struct {
	Text       string
	Style      TextStyle
	FontSize   int
	XExpr      string
	YExpr      string
	Start      float64
	End        float64
	FadeIn     float64
	FadeOut    float64
	Persistent bool
}

func buildDrawText(opts drawTextOptions) string {
	if strings.TrimSpace(opts.Text) == "" {
		return ""
	}
	if !opts.Persistent && opts.End-opts.Start <= 0 {
		return ""
	}

	fontSize := opts.FontSize
	if fontSize <= 0 {
		fontSize = opts.Style.FontSize
	}

	outlineWidth := opts.Style.OutlineWidth
	if outlineWidth < 0 {
		outlineWidth = 0
	}

	values := []string{
		fmt.Sprintf("text='%s'", escapeDrawText(opts.Text)),
		fmt.Sprintf("fontsize=%d", max(fontSize, 12)),
		fmt.Sprintf("fontcolor=%s", fallback(opts.Style.Color, "white")),
		fmt.Sprintf("bordercolor=%s", fallback(opts.Style.OutlineColor, "black")),
		fmt.Sprintf("borderw=%d", outlineWidth),
		fmt.Sprintf("x=%s", fallback(opts.XExpr, "(w-text_w)/2")),
		fmt.Sprintf("y=%s", fallback(opts.YExpr, "50")),
	}

	if strings.TrimSpace(opts.Style.FontFile) != "" {
		values = append(values, fmt.Sprintf("fontfile='%s'", escapeFFmpegPath(opts.Style.FontFile)))
	}

	if !opts.Persistent {
		enable := fmt.Sprintf("between(t,%s,%s)", formatFloat(opts.Start), formatFloat(opts.End))
		values = append(values, fmt.Sprintf("enable='%s'", escapeFilterValue(enable)))
		alpha := alphaExpression(opts.Start, opts.End, opts.FadeIn, opts.FadeOut)
		values = append(values, fmt.Sprintf("alpha='%s'", escapeFilterValue(alpha)))
	}

	return "drawtext=" + strings.Join(values, ":")
}

// fadeFilters returns fade in and fade out filters for a clip of the given
// duration. Each fade is clamped to half the clip.
func fadeFilters(duration, fadeIn, fadeOut float64) []string {
	var filters []string
	if duration <= 0 {
		return filters
	}
	if in := clamp(fadeIn, 0, duration/2); in > 0 {
		filters = append(filters, fmt.Sprintf("fade=t=in:st=0:d=%s", formatFloat(in)))
	}
	if out := clamp(fadeOut, 0, duration/2); out > 0 {
		start := math.Max(duration-out, 0)
		filters = append(filters, fmt.Sprintf("fade=t=out:st=%s:d=%s", formatFloat(roundMillis(start)), formatFloat(out)))
	}
	return filters
}

// alphaExpression fades drawtext in from start and out towards end. The
// expression is built inside out: hold-and-fade-out, then fade-in, then the
// leading invisible span.
func alphaExpression(start, end, fadeIn, fadeOut float64) string {
	span := end - start
	if span <= 0 {
		return "0"
	}
	from, to := formatFloat(start), formatFloat(end)

	expr := fmt.Sprintf("if(lt(t,%s),1,0)", to)
	if out := clamp(fadeOut, 0, span); out > 0 {
		expr = fmt.Sprintf("if(lt(t,%s),1,if(lt(t,%s),(%s-t)/%s,0))",
			formatFloat(roundMillis(end-out)), to, to, formatFloat(out))
	}
	if in := clamp(fadeIn, 0, span); in > 0 {
		expr = fmt.Sprintf("if(lt(t,%s),(t-%s)/%s,%s)", formatFloat(start+in), from, formatFloat(in), expr)
	}
	return fmt.Sprintf("if(lt(t,%s),0,%s)", from, expr)
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

// formatSeconds renders a duration for ffmpeg with millisecond precision.
func formatSeconds(value float64) string {
	return formatFloat(roundMillis(value))
}

func roundMillis(value float64) float64 {
	return math.Round(value*1000) / 1000
}

func clamp(value, minVal, maxVal float64) float64 {
	return math.Max(minVal, math.Min(maxVal, value))
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return value
}

var (
	filterEscaper   = strings.NewReplacer(`\`, `\\`, ":", `\:`, ",", `\,`, "'", `\'`)
	pathEscaper     = strings.NewReplacer(`\`, `\\`, ":", `\:`, "'", `\'`)
	drawTextEscaper = strings.NewReplacer(`\`, `\\`, ":", `\:`, ",", `\,`, "\n", `\n`, "'", `'\''`)
)

// escapeDrawText prepares caption text for a single-quoted drawtext value.
// Line breaks become drawtext's \n and quotes close, escape and reopen.
func escapeDrawText(value string) string {
	value = strings.ReplaceAll(value, "\r\n", "\n")
	value = strings.ReplaceAll(value, "\r", "\n")
	return drawTextEscaper.Replace(value)
}

func escapeFFmpegPath(value string) string {
	return pathEscaper.Replace(filepath.Clean(value))
}

func escapeFilterValue(value string) string {
	return filterEscaper.Replace(value)
}
