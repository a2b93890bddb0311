package media

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type stubRunner struct {
	stdout  string
	stderr  string
	err     error
	command string
	args    []string
}

func (s *stubRunner) Run(_ context.Context, command string, args []string, _ RunOptions) (RunResult, error) {
	s.command = command
	s.args = append([]string(nil), args...)
	return RunResult{Stdout: []byte(s.stdout), Stderr: []byte(s.stderr)}, s.err
}

const sampleProbe = `{
  "streams": [
    {"codec_type": "audio", "duration": "12.000"},
    {"codec_type": "video", "width": 1280, "height": 720, "duration": "12.480"},
    {"codec_type": "video", "width": 320, "height": 240}
  ],
  "format": {"format_name": "mov,mp4,m4a,3gp,3g2,mj2", "duration": "12.512"}
}`

func TestParseProbe(t *testing.T) {
	info, err := ParseProbe([]byte(sampleProbe))
	if err != nil {
		t.Fatalf("ParseProbe error: %v", err)
	}
	if info.Duration != 12.512 {
		t.Fatalf("duration = %v; want 12.512", info.Duration)
	}
	if info.Width != 1280 || info.Height != 720 {
		t.Fatalf("size = %dx%d; want 1280x720", info.Width, info.Height)
	}
	if !info.HasVideo || !info.HasAudio {
		t.Fatalf("expected video and audio streams, got %+v", info)
	}
}

func TestParseProbeFallsBackToStreamDuration(t *testing.T) {
	raw := `{"streams":[{"codec_type":"audio","duration":"31.5"}],"format":{"duration":"N/A"}}`
	info, err := ParseProbe([]byte(raw))
	if err != nil {
		t.Fatalf("ParseProbe error: %v", err)
	}
	if info.Duration != 31.5 {
		t.Fatalf("duration = %v; want 31.5", info.Duration)
	}
	if info.HasVideo {
		t.Fatalf("audio-only probe reported video")
	}
}

func TestParseProbeRejectsEmptyOutput(t *testing.T) {
	if _, err := ParseProbe([]byte("  ")); err == nil {
		t.Fatal("expected error for empty output")
	}
	if _, err := ParseProbe([]byte("{not json")); err == nil {
		t.Fatal("expected error for malformed output")
	}
}

func TestProberIncludesStderrInError(t *testing.T) {
	runner := &stubRunner{stderr: "moov atom not found", err: errors.New("exit status 1")}
	prober := NewProber(runner, "")

	_, err := prober.Probe(context.Background(), "/tmp/broken.mp4")
	if err == nil {
		t.Fatal("expected probe error")
	}
	if !strings.Contains(err.Error(), "moov atom not found") {
		t.Fatalf("error %q does not mention stderr", err)
	}
	if runner.command != "ffprobe" {
		t.Fatalf("command = %q; want ffprobe", runner.command)
	}
	if last := runner.args[len(runner.args)-1]; last != "/tmp/broken.mp4" {
		t.Fatalf("last arg = %q; want target path", last)
	}
}
