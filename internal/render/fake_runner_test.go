package render

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"

	"sakurareel/internal/media"
)

type runCall struct {
	Command string
	Args    []string
}

// fakeRunner records ffmpeg invocations. A call fails when any argument
// contains one of the failOn substrings; otherwise the output file (the last
// argument) is created empty.
type fakeRunner struct {
	mu     sync.Mutex
	calls  []runCall
	failOn []string
	stderr string
}

func (f *fakeRunner) Run(_ context.Context, command string, args []string, opts media.RunOptions) (media.RunResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, runCall{Command: command, Args: append([]string(nil), args...)})
	f.mu.Unlock()

	for _, arg := range args {
		for _, needle := range f.failOn {
			if strings.Contains(arg, needle) {
				if opts.Stderr != nil {
					_, _ = opts.Stderr.Write([]byte(f.stderr))
				}
				return media.RunResult{Stderr: []byte(f.stderr)}, errors.New("exit status 1")
			}
		}
	}

	if len(args) > 0 {
		_ = os.WriteFile(args[len(args)-1], nil, 0o644)
	}
	return media.RunResult{}, nil
}

func (f *fakeRunner) Calls() []runCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]runCall(nil), f.calls...)
}

func indexOf(args []string, value string) int {
	for i, arg := range args {
		if arg == value {
			return i
		}
	}
	return -1
}

func argAfter(args []string, flag string) string {
	i := indexOf(args, flag)
	if i < 0 || i+1 >= len(args) {
		return ""
	}
	return args[i+1]
}
