package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"sakurareel/internal/paths"
	"sakurareel/internal/pipeline"
	"sakurareel/internal/tui"
)

func newPlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show the segments, captions and music a run would use without rendering",
		RunE:  runPlan,
	}
	addPlanFlags(cmd)
	return cmd
}

func runPlan(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	out := cmd.OutOrStdout()
	mode := tui.DetectMode(out, false, outputJSON)

	ws, err := openWorkspace(cmd, mode != tui.ModeJSON)
	if err != nil {
		return err
	}
	defer ws.Close()

	runner := newRunner()
	ffmpeg, ffprobe, err := locateFFmpeg(ctx, runner)
	if err != nil {
		return err
	}

	req := planRequest(cmd)
	p := &pipeline.Pipeline{
		Config:     ws.config,
		Paths:      ws.paths,
		Runner:     runner,
		FFmpeg:     ffmpeg,
		FFprobe:    ffprobe,
		Logger:     ws.logger,
		ProbeCache: ws.paths.ProbeCache,
	}

	var status *tui.StatusWriter
	if mode == tui.ModeTUI {
		status = tui.NewStatusWriter(cmd.ErrOrStderr())
		var last pipeline.Phase
		p.OnPhase = func(phase pipeline.Phase, _ string) {
			if last != "" {
				status.Finish(string(last))
			}
			status.Update(string(phase))
			last = phase
		}
	}

	draft, err := p.Plan(ctx, req, ws.paths.RunDir(paths.NewRunID()))
	if status != nil {
		status.Stop()
	}
	if err != nil {
		return err
	}

	if outputJSON {
		return writePlanJSON(out, draft)
	}
	writePlanTable(out, draft)
	return nil
}

type planJSONSegment struct {
	Index     int     `json:"index"`
	Source    string  `json:"source"`
	Duration  float64 `json:"duration_s"`
	Start     float64 `json:"start_s"`
	Loop      bool    `json:"loop"`
	Caption   string  `json:"caption"`
	Secondary string  `json:"secondary,omitempty"`
}

func writePlanJSON(w io.Writer, draft pipeline.Draft) error {
	payload := struct {
		Title    string            `json:"title"`
		Style    string            `json:"style"`
		Seed     int64             `json:"seed"`
		Music    string            `json:"music,omitempty"`
		Content  float64           `json:"content_s"`
		Expected float64           `json:"expected_s"`
		Segments []planJSONSegment `json:"segments"`
		Warnings []string          `json:"warnings,omitempty"`
	}{
		Title:    draft.Title,
		Style:    string(draft.Style),
		Seed:     draft.Seed,
		Music:    draft.BGM,
		Content:  draft.Plan.TotalSlotDuration(),
		Expected: draft.Expected,
		Segments: make([]planJSONSegment, 0, len(draft.Segments)),
	}
	for _, seg := range draft.Segments {
		payload.Segments = append(payload.Segments, planJSONSegment{
			Index:     seg.Slot.Index + 1,
			Source:    seg.Slot.Asset.Path,
			Duration:  seg.Slot.Duration,
			Start:     seg.Window.Start,
			Loop:      seg.Window.Loop,
			Caption:   seg.Overlay.Text,
			Secondary: seg.Overlay.Secondary,
		})
	}
	for _, warning := range draft.Warnings {
		payload.Warnings = append(payload.Warnings, warning.Error())
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}

func writePlanTable(w io.Writer, draft pipeline.Draft) {
	music := draft.BGM
	if music == "" {
		music = "(silent)"
	}
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Title:   "), draft.Title)
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Style:   "), draft.Style)
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Music:   "), music)
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Length:  "), formatSeconds(draft.Expected))
	fmt.Fprintf(w, "%s %s in %d segments\n", labelStyle.Render("Content: "), formatSeconds(draft.Plan.TotalSlotDuration()), len(draft.Plan.Slots))
	fmt.Fprintf(w, "%s %d\n", labelStyle.Render("Seed:    "), draft.Seed)
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SEG\tSOURCE\tDURATION\tWINDOW\tCAPTION")
	for _, seg := range draft.Segments {
		fmt.Fprintf(tw, "%03d\t%s\t%.2fs\t%s\t%s\n",
			seg.Slot.Index+1,
			seg.Slot.Asset.Name(),
			seg.Slot.Duration,
			tui.WindowLabel(seg.Window),
			tui.NonEmptyOrDash(seg.Overlay.Text),
		)
	}
	tw.Flush()

	for _, warning := range draft.Warnings {
		fmt.Fprintf(w, "%s %v\n", warnStyle.Render("warning:"), warning)
	}
}
