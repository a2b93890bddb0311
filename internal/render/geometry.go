package render

import (
	"errors"
	"fmt"
	"math"
)

// ConformMode is the horizontal adjustment applied after height-locked
// scaling.
type ConformMode string

const (
	ConformExact ConformMode = "exact"
	ConformCrop  ConformMode = "crop"
	ConformPad   ConformMode = "pad"
)

// Conform describes how one source frame size maps onto the canonical frame.
// Scaling always locks the height to the canonical height so the aspect ratio
// is never distorted; only the horizontal axis is cropped or padded.
type Conform struct {
	SourceWidth  int
	SourceHeight int
	ScaledWidth  int
	ScaledHeight int
	Width        int
	Height       int
	CropX        int
	PadX         int
	Mode         ConformMode
}

// ComputeConform plans the scale plus crop or pad that turns a w×h frame into
// a width×height frame.
func ComputeConform(w, h, width, height int) (Conform, error) {
	if w <= 0 || h <= 0 {
		return Conform{}, fmt.Errorf("invalid source frame size %dx%d", w, h)
	}
	if width <= 0 || height <= 0 {
		return Conform{}, errors.New("invalid canonical frame size")
	}

	scaled := evenRound(float64(w) * float64(height) / float64(h))

	c := Conform{
		SourceWidth:  w,
		SourceHeight: h,
		ScaledWidth:  scaled,
		ScaledHeight: height,
		Width:        width,
		Height:       height,
		Mode:         ConformExact,
	}

	switch {
	case scaled > width:
		c.Mode = ConformCrop
		c.CropX = (scaled - width) / 2
	case scaled < width:
		c.Mode = ConformPad
		c.PadX = (width - scaled) / 2
	}
	return c, nil
}

// OutputSize is the frame size after the conform filters run.
func (c Conform) OutputSize() (int, int) {
	switch c.Mode {
	case ConformCrop, ConformPad:
		return c.Width, c.Height
	default:
		return c.ScaledWidth, c.ScaledHeight
	}
}

// Filters returns the ffmpeg video filters for the conform step.
func (c Conform) Filters() []string {
	filters := []string{
		fmt.Sprintf("scale=%d:%d:flags=lanczos", c.ScaledWidth, c.ScaledHeight),
	}
	switch c.Mode {
	case ConformCrop:
		filters = append(filters, fmt.Sprintf("crop=%d:%d:%d:0", c.Width, c.Height, c.CropX))
	case ConformPad:
		filters = append(filters, fmt.Sprintf("pad=%d:%d:%d:0:color=black", c.Width, c.Height, c.PadX))
	}
	return append(filters, "setsar=1")
}

// evenRound rounds to the nearest even integer, never below 2. Most encoders
// reject odd frame widths with yuv420p.
func evenRound(v float64) int {
	n := int(math.Round(v/2)) * 2
	if n < 2 {
		return 2
	}
	return n
}
