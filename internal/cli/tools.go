package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"sakurareel/internal/tools"
)

var toolsStrict bool

func newToolsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "Check that ffmpeg and ffprobe are installed and recent enough",
		RunE:  runTools,
	}
	cmd.Flags().BoolVar(&toolsStrict, "strict", false, "Exit non-zero when a tool is missing or outdated")
	return cmd
}

func runTools(cmd *cobra.Command, _ []string) error {
	statuses := tools.Detect(cmd.Context(), newRunner())

	if outputJSON {
		data, err := json.MarshalIndent(statuses, "", "  ")
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		cmd.Println(string(data))
	} else {
		printToolStatuses(cmd, statuses)
	}

	if toolsStrict {
		for _, st := range statuses {
			if !st.Satisfied {
				return errors.New("required tools are missing or outdated")
			}
		}
	}
	return nil
}

func printToolStatuses(cmd *cobra.Command, statuses []tools.Status) {
	sorted := make([]tools.Status, len(statuses))
	copy(sorted, statuses)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Tool < sorted[j].Tool
	})

	for _, st := range sorted {
		if st.Satisfied {
			headline := okStyle.Render("✓") + " " + labelStyle.Render(st.Tool)
			if st.Version != "" {
				headline += " v" + st.Version
			}
			if st.Minimum != "" {
				headline += faintStyle.Render(" (minimum: " + st.Minimum + ")")
			}
			cmd.Println(headline)
		} else {
			headline := errStyle.Render("✗") + " " + labelStyle.Render(st.Tool)
			if st.Error != "" {
				headline += errStyle.Render(" (" + st.Error + ")")
			}
			cmd.Println(headline)
			for _, hint := range st.Hints {
				cmd.Println(faintStyle.Render("  " + hint))
			}
		}

		ids := make([]string, 0, len(st.Paths))
		for id := range st.Paths {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			cmd.Println(faintStyle.Render(fmt.Sprintf("  %s · %s", id, st.Paths[id])))
		}
		cmd.Println()
	}
}
