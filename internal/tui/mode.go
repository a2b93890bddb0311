package tui

import (
	"io"
	"os"
	"runtime"
	"strings"
)

// OutputMode describes how generate reports progress.
type OutputMode int

const (
	// ModeTUI draws the live segment table.
	ModeTUI OutputMode = iota
	// ModePlain prints one line per phase and finished segment.
	ModePlain
	// ModeJSON prints nothing until the final JSON document.
	ModeJSON
)

// DetectMode picks the output mode for out. JSON wins, then an explicit
// opt-out. The table is only drawn on an interactive terminal outside CI.
func DetectMode(out io.Writer, noProgress, jsonOutput bool) OutputMode {
	switch {
	case jsonOutput:
		return ModeJSON
	case noProgress, !interactive(out):
		return ModePlain
	}
	return ModeTUI
}

func interactive(out io.Writer) bool {
	file, ok := out.(*os.File)
	if !ok {
		return false
	}
	info, err := file.Stat()
	if err != nil || info.Mode()&os.ModeCharDevice == 0 {
		return false
	}
	if os.Getenv("CI") != "" {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	term := os.Getenv("TERM")
	return term != "" && !strings.EqualFold(term, "dumb")
}
