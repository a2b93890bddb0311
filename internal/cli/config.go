package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"sakurareel/internal/config"
	"sakurareel/internal/paths"
)

var configInitForce bool

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the workspace configuration",
	}

	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigEditCmd())
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration, including .env overrides, as YAML",
		RunE:  runConfigShow,
	}
}

func newConfigInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write sakurareel.yaml with default settings and create the asset directories",
		RunE:  runConfigInit,
	}
	cmd.Flags().BoolVar(&configInitForce, "force", false, "Overwrite an existing sakurareel.yaml")
	return cmd
}

func newConfigEditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "edit",
		Short: "Open sakurareel.yaml in $EDITOR",
		RunE:  runConfigEdit,
	}
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	pp, err := paths.Resolve(projectDir)
	if err != nil {
		return err
	}
	if err := config.LoadDotEnv(pp.EnvFile); err != nil {
		return fmt.Errorf("load %s: %w", pp.EnvFile, err)
	}

	cfg, err := config.Load(pp.ConfigFile)
	if err != nil {
		return err
	}
	cfg.ApplyEnv(nil)

	data, err := cfg.Marshal()
	if err != nil {
		return err
	}

	fmt.Fprint(cmd.OutOrStdout(), string(data))
	if len(data) == 0 || data[len(data)-1] != '\n' {
		fmt.Fprintln(cmd.OutOrStdout())
	}
	for _, v := range cfg.Validate() {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", v.Level, v.Message)
	}
	return nil
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	pp, err := paths.Resolve(projectDir)
	if err != nil {
		return err
	}

	created := make([]string, 0, 5)
	wrote, err := writeDefaultConfig(pp, configInitForce)
	if err != nil {
		return err
	}
	if wrote {
		created = append(created, pp.ConfigFile)
	}

	pp = paths.ApplyConfig(pp, config.Default())
	for _, dir := range []string{pp.VideoDir, pp.MusicDir, pp.SFXDir, pp.OutputDir} {
		exists, err := paths.DirExists(dir)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
		created = append(created, dir)
	}

	if len(created) == 0 {
		cmd.Printf("Workspace already initialized at %s\n", pp.Root)
		return nil
	}
	cmd.Printf("Initialized workspace at %s\n", pp.Root)
	for _, entry := range created {
		rel, err := filepath.Rel(pp.Root, entry)
		if err != nil {
			rel = entry
		}
		cmd.Printf("  created %s\n", rel)
	}
	return nil
}

func runConfigEdit(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	pp, err := paths.Resolve(projectDir)
	if err != nil {
		return err
	}
	if _, err := writeDefaultConfig(pp, false); err != nil {
		return err
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	// Simple whitespace split handles values like "nano" or "code -w".
	parts := strings.Fields(editor)
	parts = append(parts, pp.ConfigFile)

	execCmd := exec.CommandContext(ctx, parts[0], parts[1:]...)
	execCmd.Stdout = cmd.OutOrStdout()
	execCmd.Stderr = cmd.ErrOrStderr()
	execCmd.Stdin = cmd.InOrStdin()
	execCmd.Dir = pp.Root

	if err := execCmd.Run(); err != nil {
		return fmt.Errorf("editor exited with error: %w", err)
	}
	return nil
}

// writeDefaultConfig writes the default configuration unless a file already
// exists and force is false. It reports whether a file was written.
func writeDefaultConfig(pp paths.ProjectPaths, force bool) (bool, error) {
	if !force {
		if _, err := os.Stat(pp.ConfigFile); err == nil {
			return false, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return false, fmt.Errorf("stat config: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(pp.ConfigFile), 0o755); err != nil {
		return false, fmt.Errorf("ensure config dir: %w", err)
	}

	data, err := config.Default().Marshal()
	if err != nil {
		return false, err
	}
	if err := os.WriteFile(pp.ConfigFile, data, 0o644); err != nil {
		return false, fmt.Errorf("write default config: %w", err)
	}
	return true, nil
}
