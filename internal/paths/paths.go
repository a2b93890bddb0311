package paths

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"sakurareel/internal/config"
)

// ProjectPaths captures canonical locations for a sakurareel workspace.
type ProjectPaths struct {
	Root       string
	ConfigFile string
	EnvFile    string
	MetaDir    string
	WorkDir    string
	LogsDir    string
	ProbeCache string

	VideoDir  string
	MusicDir  string
	SFXDir    string
	OutputDir string
}

// Resolve determines the workspace root using the optional --project flag or
// the current working directory when the flag is empty.
func Resolve(projectFlag string) (ProjectPaths, error) {
	var (
		root string
		err  error
	)

	if projectFlag != "" {
		root, err = filepath.Abs(projectFlag)
	} else {
		root, err = os.Getwd()
	}
	if err != nil {
		return ProjectPaths{}, fmt.Errorf("resolve project root: %w", err)
	}

	return newProjectPaths(root), nil
}

func newProjectPaths(root string) ProjectPaths {
	metaDir := filepath.Join(root, ".sakurareel")
	defaults := config.Default().Assets
	return ProjectPaths{
		Root:       root,
		ConfigFile: filepath.Join(root, "sakurareel.yaml"),
		EnvFile:    filepath.Join(root, ".env"),
		MetaDir:    metaDir,
		WorkDir:    filepath.Join(metaDir, "work"),
		LogsDir:    filepath.Join(root, "logs"),
		ProbeCache: filepath.Join(metaDir, "probe-cache.json"),
		VideoDir:   filepath.Join(root, defaults.VideoDir),
		MusicDir:   filepath.Join(root, defaults.MusicDir),
		SFXDir:     filepath.Join(root, defaults.SFXDir),
		OutputDir:  filepath.Join(root, defaults.OutputDir),
	}
}

// ApplyConfig resolves the asset and output directories configured in cfg.
func ApplyConfig(pp ProjectPaths, cfg config.Config) ProjectPaths {
	if cfg.Assets.VideoDir != "" {
		pp.VideoDir = resolveProjectPath(pp.Root, cfg.Assets.VideoDir)
	}
	if cfg.Assets.MusicDir != "" {
		pp.MusicDir = resolveProjectPath(pp.Root, cfg.Assets.MusicDir)
	}
	if cfg.Assets.SFXDir != "" {
		pp.SFXDir = resolveProjectPath(pp.Root, cfg.Assets.SFXDir)
	}
	if cfg.Assets.OutputDir != "" {
		pp.OutputDir = resolveProjectPath(pp.Root, cfg.Assets.OutputDir)
	}
	return pp
}

// ResolveOutput places a relative output file name under OutputDir.
func (p ProjectPaths) ResolveOutput(name string) string {
	if name == "" {
		name = "sakura_video.mp4"
	}
	if filepath.IsAbs(name) {
		return filepath.Clean(name)
	}
	return filepath.Join(p.OutputDir, name)
}

// NewRunID returns a fresh identifier for one pipeline run.
func NewRunID() string {
	return uuid.NewString()
}

// RunDir is the scratch directory holding the intermediates of run id.
func (p ProjectPaths) RunDir(id string) string {
	return filepath.Join(p.WorkDir, id)
}

func resolveProjectPath(root, value string) string {
	if filepath.IsAbs(value) {
		return filepath.Clean(value)
	}
	return filepath.Join(root, value)
}

// EnsureMetaDirs creates the hidden metadata, work and logs directories.
func (p ProjectPaths) EnsureMetaDirs() error {
	dirs := []string{p.MetaDir, p.WorkDir, p.LogsDir}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// FileExists reports whether a path exists and is a regular file.
func FileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

// DirExists reports whether a path exists and is a directory.
func DirExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.IsDir(), nil
}
