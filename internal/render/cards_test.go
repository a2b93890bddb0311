package render

import (
	"strings"
	"testing"
	"time"
)

func TestBuildCardArgsTitle(t *testing.T) {
	now := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	card := TitleCard("2025年 日本の美しい桜名所ベスト10", 5, 1, now)

	args, err := BuildCardArgs(card, testEncoding(), testTextStyle(), "/work/title.mp4")
	if err != nil {
		t.Fatalf("BuildCardArgs error: %v", err)
	}

	if argAfter(args, "-f") != "lavfi" {
		t.Fatalf("expected lavfi input: %v", args)
	}
	if src := argAfter(args, "-i"); src != "color=c=black:s=3840x2160:r=30:d=5" {
		t.Fatalf("source = %q", src)
	}
	if argAfter(args, "-t") != "5" || indexOf(args, "-an") < 0 {
		t.Fatalf("unexpected args: %v", args)
	}

	vf := argAfter(args, "-vf")
	expectations := []string{
		"text='2025年 日本の美しい桜名所ベスト10':fontsize=120",
		"y=960",
		"text='Beautiful Cherry Blossoms in Japan 2025':fontsize=60",
		"y=1140",
		"fade=t=in:st=0:d=1",
		"fade=t=out:st=4:d=1",
	}
	for _, expected := range expectations {
		if !strings.Contains(vf, expected) {
			t.Fatalf("expected filters to contain %q\nfilters: %s", expected, vf)
		}
	}
}

func TestBuildCardArgsEnding(t *testing.T) {
	args, err := BuildCardArgs(EndingCard(5, 1), testEncoding(), testTextStyle(), "/work/ending.mp4")
	if err != nil {
		t.Fatal(err)
	}
	vf := argAfter(args, "-vf")
	if !strings.Contains(vf, "text='ご視聴ありがとうございました':fontsize=90") {
		t.Fatalf("ending main line missing: %s", vf)
	}
	if !strings.Contains(vf, "text='チャンネル登録よろしくお願いします':fontsize=60") {
		t.Fatalf("ending subscribe line missing: %s", vf)
	}
}

func TestBuildCardArgsShortCardClampsFade(t *testing.T) {
	args, err := BuildCardArgs(EndingCard(1.5, 1), testEncoding(), testTextStyle(), "/work/ending.mp4")
	if err != nil {
		t.Fatal(err)
	}
	vf := argAfter(args, "-vf")
	if !strings.Contains(vf, "fade=t=in:st=0:d=0.75") || !strings.Contains(vf, "fade=t=out:st=0.75:d=0.75") {
		t.Fatalf("fades should be clamped to half the card: %s", vf)
	}
}

func TestBuildCardArgsErrors(t *testing.T) {
	if _, err := BuildCardArgs(EndingCard(0, 1), testEncoding(), testTextStyle(), "out.mp4"); err == nil {
		t.Fatal("expected error for zero duration")
	}
	if _, err := BuildCardArgs(EndingCard(5, 1), ClipEncoding{}, testTextStyle(), "out.mp4"); err == nil {
		t.Fatal("expected error for missing frame settings")
	}
	if _, err := BuildCardArgs(EndingCard(5, 1), testEncoding(), testTextStyle(), ""); err == nil {
		t.Fatal("expected error for missing output")
	}
}
