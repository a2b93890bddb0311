package media

import (
	"bytes"
	"context"
	"io"
	"os/exec"
)

// Runner executes ffmpeg and ffprobe. Tests substitute a fake that records
// argument lists instead of spawning processes.
type Runner interface {
	Run(ctx context.Context, command string, args []string, opts RunOptions) (RunResult, error)
}

// RunOptions sets the working directory and an optional extra sink for
// stderr, such as a per-run ffmpeg log file.
type RunOptions struct {
	Dir    string
	Stderr io.Writer
}

// RunResult is everything the process wrote. It is populated even when
// Run returns an error so callers can report ffmpeg's last words.
type RunResult struct {
	Stdout []byte
	Stderr []byte
}

// CmdRunner spawns real processes. Cancelling ctx kills the child.
type CmdRunner struct{}

var _ Runner = CmdRunner{}

func (CmdRunner) Run(ctx context.Context, command string, args []string, opts RunOptions) (RunResult, error) {
	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, command, args...)
	cmd.Dir = opts.Dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if opts.Stderr != nil {
		cmd.Stderr = io.MultiWriter(&stderr, opts.Stderr)
	}

	err := cmd.Run()
	return RunResult{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}, err
}
