package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"runtime"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/spf13/cobra"

	"sakurareel/internal/pipeline"
	"sakurareel/internal/render"
	"sakurareel/internal/tui"
)

const defaultLength = 180

var (
	genStyle       string
	genLength      float64
	genTitle       string
	genBGM         string
	genOut         string
	genSeed        int64
	genConcurrency int
	genNoProgress  bool
	genKeepWork    bool
)

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Render a cherry blossom video from the workspace assets",
		RunE:  runGenerate,
	}

	addPlanFlags(cmd)
	cmd.Flags().StringVarP(&genOut, "out", "o", "", "Output file (default <output_dir>/sakura_video.mp4)")
	cmd.Flags().IntVar(&genConcurrency, "concurrency", defaultConcurrency(), "Concurrent ffmpeg segment encodes")
	cmd.Flags().BoolVar(&genNoProgress, "no-progress", false, "Disable interactive progress output")
	cmd.Flags().BoolVar(&genKeepWork, "keep-work", false, "Keep intermediate clips under .sakurareel/work")

	return cmd
}

// addPlanFlags registers the flags shared by generate and plan.
func addPlanFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&genStyle, "style", string(render.StyleRanking), "Caption style: ranking, regional, theme, seasonal or standard")
	cmd.Flags().Float64Var(&genLength, "length", defaultLength, "Target video length in seconds")
	cmd.Flags().StringVar(&genTitle, "title", "", "Title card text (generated when empty)")
	cmd.Flags().StringVar(&genBGM, "bgm", "", "Background music file (random pick from music_dir when empty)")
	cmd.Flags().Int64Var(&genSeed, "seed", 0, "Random seed for a reproducible run (default time-based)")
}

// defaultConcurrency uses the physical core count since each ffmpeg encode
// is itself multi-threaded.
func defaultConcurrency() int {
	if n, err := cpu.Counts(false); err == nil && n > 0 {
		return n
	}
	if n := runtime.NumCPU(); n > 0 {
		return n
	}
	return 1
}

func planRequest(cmd *cobra.Command) pipeline.Request {
	seed := genSeed
	if !cmd.Flags().Changed("seed") {
		seed = time.Now().UnixNano()
	}
	return pipeline.Request{
		Style:  render.ParseStyle(genStyle),
		Length: genLength,
		Title:  genTitle,
		BGM:    genBGM,
		Seed:   seed,
	}
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	out := cmd.OutOrStdout()
	mode := tui.DetectMode(out, genNoProgress, outputJSON)

	ws, err := openWorkspace(cmd, mode == tui.ModePlain)
	if err != nil {
		return err
	}
	defer ws.Close()

	req := planRequest(cmd)
	req.OutputPath = ws.paths.ResolveOutput(genOut)
	req.Concurrency = genConcurrency
	req.KeepWork = genKeepWork
	if !req.Style.Known() {
		ws.logger.Warn().Str("style", string(req.Style)).Msg("unknown style, using the standard layout")
	}

	runner := newRunner()
	ffmpeg, ffprobe, err := locateFFmpeg(ctx, runner)
	if err != nil {
		return err
	}

	p := &pipeline.Pipeline{
		Config:     ws.config,
		Paths:      ws.paths,
		Runner:     runner,
		FFmpeg:     ffmpeg,
		FFprobe:    ffprobe,
		Logger:     ws.logger,
		ProbeCache: ws.paths.ProbeCache,
	}

	var result pipeline.Result
	switch mode {
	case tui.ModeTUI:
		model := tui.NewProgressModel("", tui.SegmentColumns)
		err = tui.RunWithWork(out, model, cancel, func(send func(tea.Msg)) error {
			reporter := tui.NewSegmentReporter(send)
			p.Reporter = reporter
			p.OnPhase = func(phase pipeline.Phase, detail string) {
				reporter.Phase(string(phase), detail)
			}
			p.OnPlanned = func(draft pipeline.Draft) {
				reporter.Plan(draft.Segments)
			}
			var runErr error
			result, runErr = p.Run(ctx, req)
			return runErr
		})
	case tui.ModePlain:
		progress := newPlainProgress(out)
		p.Reporter = progress
		p.OnPhase = progress.Phase
		result, err = p.Run(ctx, req)
	default:
		result, err = p.Run(ctx, req)
	}
	if err != nil {
		ws.logger.Error().Err(err).Msg("generate failed")
		return err
	}

	if outputJSON {
		return writeGenerateJSON(out, result)
	}
	writeGenerateSummary(out, result, mode == tui.ModeTUI)
	return nil
}

type generateJSON struct {
	Output    string   `json:"output"`
	Title     string   `json:"title"`
	Style     string   `json:"style"`
	Seed      int64    `json:"seed"`
	Duration  float64  `json:"duration_s"`
	Expected  float64  `json:"expected_s"`
	Nominal   float64  `json:"nominal_s"`
	Planned   int      `json:"segments_planned"`
	Rendered  int      `json:"segments_rendered"`
	Dropped   int      `json:"segments_dropped"`
	Music     string   `json:"music,omitempty"`
	Passes    float64  `json:"music_passes,omitempty"`
	Silent    bool     `json:"silent"`
	RunID     string   `json:"run_id"`
	WorkDir   string   `json:"work_dir,omitempty"`
	Warnings  []string `json:"warnings,omitempty"`
	Generated string   `json:"generated_at"`
}

func writeGenerateJSON(w io.Writer, res pipeline.Result) error {
	payload := generateJSON{
		Output:    res.OutputPath,
		Title:     res.Title,
		Style:     string(res.Style),
		Seed:      res.Seed,
		Duration:  res.Duration,
		Expected:  res.Expected,
		Nominal:   res.Timeline.NominalDuration(),
		Planned:   len(res.Segments),
		Rendered:  res.Timeline.Segments(),
		Dropped:   res.Dropped(),
		Silent:    res.Audio.Silent(),
		RunID:     res.RunID,
		Generated: time.Now().UTC().Format(time.RFC3339),
	}
	if !res.Audio.Silent() {
		payload.Music = res.Audio.Source
		payload.Passes = res.Audio.Repeats()
	}
	if genKeepWork {
		payload.WorkDir = res.WorkDir
	}
	for _, warning := range res.Warnings {
		payload.Warnings = append(payload.Warnings, warning.Error())
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}

// writeGenerateSummary prints the outcome. Warnings were already logged to
// the console in plain mode, so they are repeated only after the TUI.
func writeGenerateSummary(w io.Writer, res pipeline.Result, repeatWarnings bool) {
	music := "(silent)"
	if !res.Audio.Silent() {
		music = res.Audio.Source
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Output:  "), res.OutputPath)
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Title:   "), res.Title)
	fmt.Fprintf(w, "%s %s (expected %s)\n", labelStyle.Render("Length:  "), formatSeconds(res.Duration), formatSeconds(res.Expected))
	fmt.Fprintf(w, "%s %d rendered, %d dropped\n", labelStyle.Render("Segments:"), res.Timeline.Segments(), res.Dropped())
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Music:   "), music)
	fmt.Fprintf(w, "%s %d\n", labelStyle.Render("Seed:    "), res.Seed)
	if genKeepWork {
		fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Work dir:"), res.WorkDir)
	}

	if repeatWarnings && len(res.Warnings) > 0 {
		fmt.Fprintln(w)
		for _, warning := range res.Warnings {
			fmt.Fprintf(w, "%s %v\n", warnStyle.Render("warning:"), warning)
		}
	}
}
