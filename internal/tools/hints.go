package tools

import "runtime"

var ffmpegHints = map[string][]string{
	"darwin": {
		"Install ffmpeg via Homebrew: brew install ffmpeg",
	},
	"linux": {
		"Install ffmpeg with your distro package manager, e.g. sudo apt install ffmpeg",
		"Captions use drawtext, so the build needs libfreetype (most distro builds have it)",
	},
	"windows": {
		"Install ffmpeg via winget: winget install Gyan.FFmpeg",
		"or via Chocolatey: choco install ffmpeg",
	},
}

func installHints(tool string) []string {
	if tool != FFmpeg {
		return nil
	}
	if hints, ok := ffmpegHints[runtime.GOOS]; ok {
		return hints
	}
	return []string{"Install ffmpeg (which ships ffprobe) using your platform's package manager"}
}
