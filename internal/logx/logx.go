package logx

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"sakurareel/internal/paths"
)

// Options tune the console side of the logger. The log file always records
// debug level and above.
type Options struct {
	Console io.Writer
	Verbose bool
	NoColor bool
}

// New creates a logger that writes JSON lines to a timestamped file inside the
// project's logs directory and human readable lines to the console writer.
// The returned closer should be closed when logging is no longer needed.
func New(p paths.ProjectPaths, opts Options) (zerolog.Logger, io.Closer, error) {
	if err := os.MkdirAll(p.LogsDir, 0o755); err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("ensure logs directory: %w", err)
	}

	filename := time.Now().Format("20060102-150405") + ".log"
	filePath := filepath.Join(p.LogsDir, filename)
	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("open log file: %w", err)
	}

	return build(file, opts), file, nil
}

func build(file io.Writer, opts Options) zerolog.Logger {
	writers := []io.Writer{levelWriter{w: file, min: zerolog.DebugLevel}}

	if opts.Console != nil {
		min := zerolog.WarnLevel
		if opts.Verbose {
			min = zerolog.DebugLevel
		}
		console := zerolog.ConsoleWriter{
			Out:        opts.Console,
			NoColor:    opts.NoColor,
			TimeFormat: "15:04:05",
		}
		writers = append(writers, levelWriter{w: console, min: min})
	}

	return zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(zerolog.DebugLevel).
		With().
		Timestamp().
		Logger()
}

// levelWriter drops events below min so that the file and the console can
// filter independently.
type levelWriter struct {
	w   io.Writer
	min zerolog.Level
}

func (l levelWriter) Write(p []byte) (int, error) {
	return l.w.Write(p)
}

func (l levelWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level < l.min {
		return len(p), nil
	}
	return l.w.Write(p)
}
