package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	projectDir string
	outputJSON bool
	verbose    bool
)

// Execute runs the root cobra command. Interrupts cancel the command's
// context so ffmpeg children are stopped and partial output removed.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "sakurareel",
		Short:         "Assemble cherry blossom videos from local clips and music",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&projectDir, "project", "", "Path to workspace directory")
	cmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "Output machine-readable JSON")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug detail to the console")

	cmd.AddCommand(newGenerateCmd())
	cmd.AddCommand(newPlanCmd())
	cmd.AddCommand(newAssetsCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newToolsCmd())

	return cmd
}
