package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables that override asset locations.
const (
	EnvVideoDir  = "SAKURAREEL_VIDEO_DIR"
	EnvMusicDir  = "SAKURAREEL_MUSIC_DIR"
	EnvSFXDir    = "SAKURAREEL_SFX_DIR"
	EnvOutputDir = "SAKURAREEL_OUTPUT_DIR"
)

// LoadDotEnv loads KEY=VALUE pairs from the given files into the process
// environment without overwriting existing variables. Missing files are
// ignored.
func LoadDotEnv(files ...string) error {
	var existing []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

// ApplyEnv overrides asset directories from the environment.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	set := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	set(EnvVideoDir, &c.Assets.VideoDir)
	set(EnvMusicDir, &c.Assets.MusicDir)
	set(EnvSFXDir, &c.Assets.SFXDir)
	set(EnvOutputDir, &c.Assets.OutputDir)
}
