package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"sakurareel/internal/config"
	"sakurareel/internal/media"
	"sakurareel/internal/plan"
	"sakurareel/internal/tools"
)

// fakeRunner answers ffprobe by file name, reports a version for -version
// and fakes every other ffmpeg call by creating its output file.
type fakeRunner struct {
	mu     sync.Mutex
	probes map[string]string
	calls  int
}

func (r *fakeRunner) Run(_ context.Context, command string, args []string, _ media.RunOptions) (media.RunResult, error) {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()

	if len(args) == 1 && args[0] == "-version" {
		return media.RunResult{Stdout: []byte(command + " version 6.1.1 Copyright (c) the FFmpeg developers\n")}, nil
	}

	target := args[len(args)-1]
	if strings.HasPrefix(filepath.Base(command), "ffprobe") {
		out, ok := r.probes[filepath.Base(target)]
		if !ok {
			return media.RunResult{Stderr: []byte("Invalid data found when processing input")}, errors.New("exit status 1")
		}
		return media.RunResult{Stdout: []byte(out)}, nil
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return media.RunResult{}, err
	}
	return media.RunResult{}, os.WriteFile(target, nil, 0o644)
}

func videoProbe(duration float64) string {
	return fmt.Sprintf(`{"format":{"format_name":"mov,mp4","duration":"%g"},"streams":[{"codec_type":"video","width":1920,"height":1080}]}`, duration)
}

func audioProbe(duration float64) string {
	return fmt.Sprintf(`{"format":{"format_name":"mp3","duration":"%g"},"streams":[{"codec_type":"audio"}]}`, duration)
}

// newWorkspace creates a workspace with the default layout and installs a
// fake runner for the duration of the test.
func newWorkspace(t *testing.T, videos, music map[string]string) (string, *fakeRunner) {
	t.Helper()
	root := t.TempDir()
	defaults := config.Default().Assets
	probes := map[string]string{}

	write := func(dir string, files map[string]string) {
		full := filepath.Join(root, dir)
		if err := os.MkdirAll(full, 0o755); err != nil {
			t.Fatal(err)
		}
		for name, probe := range files {
			if err := os.WriteFile(filepath.Join(full, name), []byte(name), 0o644); err != nil {
				t.Fatal(err)
			}
			if probe != "" {
				probes[name] = probe
			}
		}
	}
	write(defaults.VideoDir, videos)
	write(defaults.MusicDir, music)

	runner := &fakeRunner{probes: probes}
	prevRunner, prevLocate := newRunner, locateFFmpeg
	newRunner = func() media.Runner { return runner }
	locateFFmpeg = func(context.Context, media.Runner) (string, string, error) {
		return "ffmpeg", "ffprobe", nil
	}
	t.Cleanup(func() {
		newRunner, locateFFmpeg = prevRunner, prevLocate
	})
	return root, runner
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestConfigInitCreatesWorkspace(t *testing.T) {
	root := t.TempDir()

	out, err := execute(t, "config", "init", "--project", root)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, "Initialized workspace") {
		t.Fatalf("unexpected output %q", out)
	}
	for _, rel := range []string{"sakurareel.yaml", "resources/videos", "resources/music", "resources/sfx", "output"} {
		if _, err := os.Stat(filepath.Join(root, rel)); err != nil {
			t.Errorf("expected %s: %v", rel, err)
		}
	}

	out, err = execute(t, "config", "init", "--project", root)
	if err != nil {
		t.Fatalf("second config init: %v", err)
	}
	if !strings.Contains(out, "already initialized") {
		t.Fatalf("expected already initialized, got %q", out)
	}
}

func TestConfigShowAppliesDotEnv(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, ".env"), []byte(config.EnvVideoDir+"=clips/sakura\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv(config.EnvVideoDir) })

	out, err := execute(t, "config", "show", "--project", root)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(out, "video_dir: clips/sakura") {
		t.Fatalf("expected .env override in output:\n%s", out)
	}
}

func TestGenerateJSON(t *testing.T) {
	root, _ := newWorkspace(t,
		map[string]string{"ueno.mp4": videoProbe(60), "meguro.mp4": videoProbe(20)},
		map[string]string{"spring.mp3": audioProbe(120)},
	)

	out, err := execute(t, "generate", "--project", root, "--json", "--seed", "7", "--length", "40", "--concurrency", "2")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	var payload generateJSON
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if payload.Output != filepath.Join(root, "output", "sakura_video.mp4") {
		t.Errorf("output = %s", payload.Output)
	}
	if _, err := os.Stat(payload.Output); err != nil {
		t.Errorf("expected rendered file: %v", err)
	}
	if payload.Seed != 7 || payload.Style != "ranking" {
		t.Errorf("seed/style = %d/%s", payload.Seed, payload.Style)
	}
	if payload.Dropped != 0 || payload.Rendered != payload.Planned || payload.Planned == 0 {
		t.Errorf("segments planned=%d rendered=%d dropped=%d", payload.Planned, payload.Rendered, payload.Dropped)
	}
	if payload.Silent || filepath.Base(payload.Music) != "spring.mp3" {
		t.Errorf("music = %q silent=%v", payload.Music, payload.Silent)
	}
	if math.Abs(payload.Passes-payload.Duration/120) > 1e-9 {
		t.Errorf("music passes = %v for %vs of a 120s track", payload.Passes, payload.Duration)
	}
	// title, segments and ending each overlap the next by 0.5s
	if want := payload.Duration + float64(payload.Rendered+1)*0.5; math.Abs(payload.Nominal-want) > 1e-6 {
		t.Errorf("nominal = %v, want %v", payload.Nominal, want)
	}

	work, err := os.ReadDir(filepath.Join(root, ".sakurareel", "work"))
	if err != nil {
		t.Fatal(err)
	}
	if len(work) != 0 {
		t.Errorf("expected work directory to be cleaned, found %d entries", len(work))
	}
}

func TestGeneratePlainProgress(t *testing.T) {
	root, _ := newWorkspace(t, map[string]string{"ueno.mp4": videoProbe(60)}, nil)

	out, err := execute(t, "generate", "--project", root, "--seed", "3", "--length", "30", "--out", "clip.mp4")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	for _, want := range []string{"==> segments", "segment 001 done", "Output:", "(silent)"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
	if _, err := os.Stat(filepath.Join(root, "output", "clip.mp4")); err != nil {
		t.Errorf("expected output file: %v", err)
	}
}

func TestGenerateWithoutVideosFails(t *testing.T) {
	root, runner := newWorkspace(t, nil, nil)

	_, err := execute(t, "generate", "--project", root, "--json")
	var noAssets *plan.NoAssetsError
	if !errors.As(err, &noAssets) {
		t.Fatalf("expected NoAssetsError, got %v", err)
	}
	if runner.calls != 0 {
		t.Errorf("expected no ffmpeg/ffprobe calls, got %d", runner.calls)
	}
	if _, err := os.Stat(filepath.Join(root, "output", "sakura_video.mp4")); !os.IsNotExist(err) {
		t.Errorf("expected no output file, stat err = %v", err)
	}
}

func TestPlanJSONDeterministic(t *testing.T) {
	root, _ := newWorkspace(t,
		map[string]string{"a.mp4": videoProbe(30), "b.mp4": videoProbe(30), "c.mp4": videoProbe(30)},
		nil,
	)

	run := func() string {
		out, err := execute(t, "plan", "--project", root, "--json", "--seed", "11", "--style", "seasonal", "--length", "90")
		if err != nil {
			t.Fatalf("plan: %v", err)
		}
		return out
	}
	first, second := run(), run()
	if first != second {
		t.Fatalf("plan output differs between runs with the same seed")
	}

	var payload struct {
		Style    string  `json:"style"`
		Content  float64 `json:"content_s"`
		Segments []struct {
			Caption  string  `json:"caption"`
			Duration float64 `json:"duration_s"`
		} `json:"segments"`
	}
	if err := json.Unmarshal([]byte(first), &payload); err != nil {
		t.Fatal(err)
	}
	if payload.Style != "seasonal" || len(payload.Segments) == 0 {
		t.Fatalf("unexpected plan %+v", payload)
	}
	total := 0.0
	for _, seg := range payload.Segments {
		total += seg.Duration
	}
	if math.Abs(payload.Content-80) > 1e-6 || math.Abs(total-payload.Content) > 1e-6 {
		t.Fatalf("content = %v, segments sum to %v, want 80", payload.Content, total)
	}
	if !strings.Contains(payload.Segments[0].Caption, "つぼみ") {
		t.Errorf("first seasonal caption = %q", payload.Segments[0].Caption)
	}
}

func TestAssetsJSON(t *testing.T) {
	root, _ := newWorkspace(t,
		map[string]string{"ueno.mp4": videoProbe(12), "broken.mp4": ""},
		map[string]string{"spring.mp3": audioProbe(90)},
	)

	out, err := execute(t, "assets", "--project", root, "--json")
	if err != nil {
		t.Fatalf("assets: %v", err)
	}
	var rows []assetJSON
	if err := json.Unmarshal([]byte(out), &rows); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	byName := map[string]assetJSON{}
	for _, row := range rows {
		byName[filepath.Base(row.Path)] = row
	}
	if byName["ueno.mp4"].Duration != 12 || byName["ueno.mp4"].Kind != "video" {
		t.Errorf("ueno row = %+v", byName["ueno.mp4"])
	}
	if byName["broken.mp4"].Error == "" {
		t.Errorf("expected probe error for broken.mp4")
	}
	if byName["spring.mp3"].Kind != "music" {
		t.Errorf("spring row = %+v", byName["spring.mp3"])
	}
	if _, err := os.Stat(filepath.Join(root, ".sakurareel", "probe-cache.json")); err != nil {
		t.Errorf("expected probe cache: %v", err)
	}
}

func TestToolsJSON(t *testing.T) {
	newWorkspace(t, nil, nil)
	prev := tools.LookPath
	tools.LookPath = func(name string) (string, error) { return "/usr/bin/" + name, nil }
	t.Cleanup(func() { tools.LookPath = prev })

	out, err := execute(t, "tools", "--json", "--strict")
	if err != nil {
		t.Fatalf("tools: %v", err)
	}
	var statuses []tools.Status
	if err := json.Unmarshal([]byte(out), &statuses); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if len(statuses) != 1 || !statuses[0].Satisfied || statuses[0].Version != "6.1.1" {
		t.Fatalf("unexpected statuses %+v", statuses)
	}
}
