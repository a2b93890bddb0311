package render

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	endingThanks    = "ご視聴ありがとうございました"
	endingSubscribe = "チャンネル登録よろしくお願いします"
)

// Card is a black full-frame title or ending slate with two centred lines.
type Card struct {
	Kind      EntryKind
	Text      string
	Secondary string
	Duration  float64
	Fade      float64

	// Scale multiplies the font size for the main line, in halves
	// (4 = 2x, 3 = 1.5x).
	Scale int
}

// TitleCard builds the opening slate. The subtitle carries the year of now.
func TitleCard(title string, duration, fade float64, now time.Time) Card {
	return Card{
		Kind:      EntryTitle,
		Text:      title,
		Secondary: fmt.Sprintf("Beautiful Cherry Blossoms in Japan %d", now.Year()),
		Duration:  duration,
		Fade:      fade,
		Scale:     4,
	}
}

// EndingCard builds the closing slate.
func EndingCard(duration, fade float64) Card {
	return Card{
		Kind:      EntryEnding,
		Text:      endingThanks,
		Secondary: endingSubscribe,
		Duration:  duration,
		Fade:      fade,
		Scale:     3,
	}
}

// ClipEncoding carries the frame and intermediate encoder settings shared by
// cards and normalized segments.
type ClipEncoding struct {
	Width  int
	Height int
	FPS    int
	Codec  string
	Preset string
	CRF    int
}

// BuildCardArgs assembles the ffmpeg arguments that render card to output
// from a lavfi colour source.
func BuildCardArgs(card Card, enc ClipEncoding, style TextStyle, output string) ([]string, error) {
	if card.Duration <= 0 {
		return nil, fmt.Errorf("%s card duration must be positive", card.Kind)
	}
	if enc.Width <= 0 || enc.Height <= 0 || enc.FPS <= 0 {
		return nil, errors.New("invalid card frame settings")
	}
	if strings.TrimSpace(output) == "" {
		return nil, errors.New("card output path is empty")
	}

	scale := card.Scale
	if scale <= 0 {
		scale = 2
	}
	fontSize := style.FontSize
	centre := enc.Height / 2

	filters := []string{}
	if main := buildDrawText(drawTextOptions{
		Text:       card.Text,
		Style:      style,
		FontSize:   fontSize * scale / 2,
		YExpr:      strconv.Itoa(centre - 2*fontSize),
		Persistent: true,
	}); main != "" {
		filters = append(filters, main)
	}
	if sub := buildDrawText(drawTextOptions{
		Text:       card.Secondary,
		Style:      TextStyle{FontFile: style.FontFile, FontSize: fontSize, Color: style.Color},
		YExpr:      strconv.Itoa(centre + fontSize),
		Persistent: true,
	}); sub != "" {
		filters = append(filters, sub)
	}
	filters = append(filters, fadeFilters(card.Duration, card.Fade, card.Fade)...)
	filters = append(filters, "format=yuv420p")

	source := fmt.Sprintf("color=c=black:s=%dx%d:r=%d:d=%s", enc.Width, enc.Height, enc.FPS, formatSeconds(card.Duration))

	args := []string{
		"-hide_banner",
		"-y",
		"-f", "lavfi",
		"-i", source,
		"-vf", strings.Join(filters, ","),
		"-t", formatSeconds(card.Duration),
		"-an",
	}
	args = append(args, intermediateCodecArgs(enc)...)
	args = append(args, output)
	return args, nil
}

func intermediateCodecArgs(enc ClipEncoding) []string {
	codec := strings.TrimSpace(enc.Codec)
	if codec == "" {
		codec = "libx264"
	}
	args := []string{"-c:v", codec}
	if preset := strings.TrimSpace(enc.Preset); preset != "" {
		args = append(args, "-preset", preset)
	}
	if enc.CRF > 0 {
		args = append(args, "-crf", strconv.Itoa(enc.CRF))
	}
	return append(args, "-pix_fmt", "yuv420p")
}
