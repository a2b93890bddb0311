package tui

import (
	"context"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// RunWithWork creates a bubbletea program, launches workFn in a goroutine,
// and blocks until both have finished. workFn receives a send callback that
// wraps tea.Program.Send with a small yield so frames get drawn between
// updates. If the program exits first (ctrl+c), cancel is called and the
// work is awaited. The work's error takes precedence over the program's.
func RunWithWork(out io.Writer, model ProgressModel, cancel context.CancelFunc, workFn func(send func(tea.Msg)) error) error {
	p := tea.NewProgram(model, tea.WithOutput(out))
	workErr := make(chan error, 1)

	go func() {
		// Let bubbletea start its event loop and render the initial frame.
		time.Sleep(50 * time.Millisecond)

		err := workFn(func(msg tea.Msg) {
			p.Send(msg)
			time.Sleep(5 * time.Millisecond)
		})
		workErr <- err

		if err != nil {
			p.Send(ErrorMsg{Err: err})
			return
		}
		p.Send(WorkDoneMsg{})
	}()

	_, runErr := p.Run()
	if cancel != nil {
		cancel()
	}
	if err := <-workErr; err != nil {
		return err
	}
	return runErr
}
