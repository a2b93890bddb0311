package assets

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"sakurareel/internal/media"
)

type probeRunner struct {
	outputs map[string]string
}

func (p probeRunner) Run(_ context.Context, _ string, args []string, _ media.RunOptions) (media.RunResult, error) {
	target := args[len(args)-1]
	out, ok := p.outputs[filepath.Base(target)]
	if !ok {
		return media.RunResult{Stderr: []byte("Invalid data found when processing input")}, errors.New("exit status 1")
	}
	return media.RunResult{Stdout: []byte(out)}, nil
}

func touch(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestListFiltersByExtension(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.MP4", "a.mov", "notes.txt", "song.mp3", "c.mkv"} {
		touch(t, dir, name)
	}
	if err := os.Mkdir(filepath.Join(dir, "nested.mp4"), 0o755); err != nil {
		t.Fatal(err)
	}

	refs, err := List(dir, KindVideo)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	want := []string{"a.mov", "b.MP4", "c.mkv"}
	if len(refs) != len(want) {
		t.Fatalf("got %d refs; want %d (%+v)", len(refs), len(want), refs)
	}
	for i, ref := range refs {
		if ref.Name() != want[i] {
			t.Fatalf("ref %d = %s; want %s", i, ref.Name(), want[i])
		}
		if ref.Kind != KindVideo {
			t.Fatalf("ref %d kind = %s", i, ref.Kind)
		}
	}

	music, err := List(dir, KindMusic)
	if err != nil {
		t.Fatalf("List music error: %v", err)
	}
	if len(music) != 1 || music[0].Name() != "song.mp3" {
		t.Fatalf("unexpected music inventory: %+v", music)
	}
}

func TestListMissingOrEmptyDirIsNotAnError(t *testing.T) {
	refs, err := List(filepath.Join(t.TempDir(), "absent"), KindVideo)
	if err != nil || len(refs) != 0 {
		t.Fatalf("missing dir: refs=%v err=%v", refs, err)
	}

	refs, err = List(t.TempDir(), KindSFX)
	if err != nil || len(refs) != 0 {
		t.Fatalf("empty dir: refs=%v err=%v", refs, err)
	}

	refs, err = List("", KindMusic)
	if err != nil || len(refs) != 0 {
		t.Fatalf("blank dir: refs=%v err=%v", refs, err)
	}
}

func TestInventoryProbe(t *testing.T) {
	runner := probeRunner{outputs: map[string]string{
		"wide.mp4":  `{"streams":[{"codec_type":"video","width":1920,"height":1080}],"format":{"duration":"8.5"}}`,
		"voice.mp4": `{"streams":[{"codec_type":"audio"}],"format":{"duration":"3"}}`,
	}}
	inv := Inventory{Prober: media.NewProber(runner, "ffprobe")}

	refs := []AssetRef{
		{Kind: KindVideo, Path: "/v/wide.mp4"},
		{Kind: KindVideo, Path: "/v/broken.mp4"},
		{Kind: KindVideo, Path: "/v/voice.mp4"},
	}
	probed, failures := inv.Probe(context.Background(), refs)

	if len(probed) != 3 {
		t.Fatalf("probed len = %d; want 3", len(probed))
	}
	if !probed[0].Probed() || probed[0].Width != 1920 || probed[0].Duration != 8.5 {
		t.Fatalf("wide.mp4 not probed correctly: %+v", probed[0])
	}
	if probed[1].Probed() || probed[2].Probed() {
		t.Fatalf("failed assets should stay unprobed: %+v %+v", probed[1], probed[2])
	}
	if len(failures) != 2 {
		t.Fatalf("failures = %d; want 2", len(failures))
	}
	if refs[0].Duration != 0 {
		t.Fatal("Probe must not mutate its input")
	}
}

func TestLabelPrefersTags(t *testing.T) {
	ref := AssetRef{Path: "/m/track01.mp3"}
	if ref.Label() != "track01.mp3" {
		t.Fatalf("label = %q", ref.Label())
	}
	ref.Title = "Sakura"
	if ref.Label() != "Sakura" {
		t.Fatalf("label = %q", ref.Label())
	}
	ref.Artist = "Koto Ensemble"
	if ref.Label() != "Sakura — Koto Ensemble" {
		t.Fatalf("label = %q", ref.Label())
	}
}
