package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"sakurareel/internal/config"
	"sakurareel/internal/logx"
	"sakurareel/internal/media"
	"sakurareel/internal/paths"
	"sakurareel/internal/tools"
)

// Seams for tests.
var (
	newRunner = func() media.Runner { return media.CmdRunner{} }

	locateFFmpeg = func(ctx context.Context, runner media.Runner) (string, string, error) {
		status, err := tools.Ensure(ctx, runner, tools.FFmpeg)
		if err != nil {
			return "", "", err
		}
		return status.Binary("ffmpeg"), status.Binary("ffprobe"), nil
	}
)

// workspace is the resolved state every command starts from.
type workspace struct {
	paths  paths.ProjectPaths
	config config.Config
	logger zerolog.Logger
	closer io.Closer
}

func (w *workspace) Close() error {
	if w.closer == nil {
		return nil
	}
	return w.closer.Close()
}

// openWorkspace resolves the project, loads .env and the YAML config, applies
// environment overrides and opens the run log. Config errors are fatal;
// warnings are logged. console selects whether warnings also reach stderr.
func openWorkspace(cmd *cobra.Command, console bool) (*workspace, error) {
	pp, err := paths.Resolve(projectDir)
	if err != nil {
		return nil, err
	}
	exists, err := paths.DirExists(pp.Root)
	if err != nil {
		return nil, fmt.Errorf("stat workspace: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("workspace directory does not exist: %s", pp.Root)
	}

	if err := config.LoadDotEnv(pp.EnvFile); err != nil {
		return nil, fmt.Errorf("load %s: %w", pp.EnvFile, err)
	}
	cfg, err := config.Load(pp.ConfigFile)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv(nil)

	validations := cfg.Validate()
	if err := config.JoinErrors(validations); err != nil {
		return nil, err
	}
	pp = paths.ApplyConfig(pp, cfg)

	opts := logx.Options{Verbose: verbose}
	if console {
		opts.Console = cmd.ErrOrStderr()
	}
	logger, closer, err := logx.New(pp, opts)
	if err != nil {
		return nil, err
	}
	logger.Info().Str("command", cmd.CommandPath()).Str("project", pp.Root).Msg("start")
	for _, v := range validations {
		logger.Warn().Msg(v.Message)
	}

	return &workspace{paths: pp, config: cfg, logger: logger, closer: closer}, nil
}
