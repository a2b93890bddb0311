package tui

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"
)

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestStatusWriterFinishAndStop(t *testing.T) {
	var out lockedBuffer
	sw := NewStatusWriter(&out)
	sw.Update("inventory")
	sw.Finish("inventory")
	sw.Stop()
	sw.Stop()
	sw.Finish("after stop")

	got := out.String()
	if !strings.Contains(got, "✓ inventory (") {
		t.Fatalf("missing finished phase in %q", got)
	}
	if strings.Contains(got, "after stop") {
		t.Fatalf("Finish after Stop should be silent: %q", got)
	}
	if !strings.HasSuffix(got, clearLine) {
		t.Fatalf("Stop should leave the line cleared: %q", got)
	}
}

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{250 * time.Millisecond, "250ms"},
		{3500 * time.Millisecond, "3.5s"},
		{42 * time.Second, "42s"},
		{3*time.Minute + 7*time.Second, "3m07s"},
	}
	for _, tt := range tests {
		if got := formatElapsed(tt.d); got != tt.want {
			t.Errorf("formatElapsed(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
