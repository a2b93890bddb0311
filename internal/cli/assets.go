package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"sakurareel/internal/assets"
	"sakurareel/internal/cache"
	"sakurareel/internal/media"
)

func newAssetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "assets",
		Short: "List and probe the video, music and sound effect inventory",
		RunE:  runAssets,
	}
}

type assetJSON struct {
	Kind     string  `json:"kind"`
	Path     string  `json:"path"`
	Label    string  `json:"label"`
	Duration float64 `json:"duration_s"`
	Width    int     `json:"width,omitempty"`
	Height   int     `json:"height,omitempty"`
	HasAudio bool    `json:"has_audio"`
	Error    string  `json:"error,omitempty"`
}

func runAssets(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	ws, err := openWorkspace(cmd, !outputJSON)
	if err != nil {
		return err
	}
	defer ws.Close()

	runner := newRunner()
	_, ffprobe, err := locateFFmpeg(ctx, runner)
	if err != nil {
		return err
	}

	idx, err := cache.Load(ws.paths.ProbeCache)
	if err != nil {
		ws.logger.Warn().Err(err).Msg("ignoring probe cache")
	}
	inv := assets.Inventory{Prober: &cache.Prober{Next: media.NewProber(runner, ffprobe), Index: idx}}

	dirs := []struct {
		kind assets.Kind
		dir  string
	}{
		{assets.KindVideo, ws.paths.VideoDir},
		{assets.KindMusic, ws.paths.MusicDir},
		{assets.KindSFX, ws.paths.SFXDir},
	}

	var rows []assetJSON
	for _, d := range dirs {
		refs, err := assets.List(d.dir, d.kind)
		if err != nil {
			return err
		}
		probed, failures := inv.Probe(ctx, refs)
		failed := make(map[string]string, len(failures))
		for _, f := range failures {
			failed[f.Asset.Path] = f.Err.Error()
			ws.logger.Warn().Str("asset", f.Asset.Path).Err(f.Err).Msg("cannot probe asset")
		}
		for _, ref := range probed {
			rows = append(rows, assetJSON{
				Kind:     string(ref.Kind),
				Path:     ref.Path,
				Label:    ref.Label(),
				Duration: ref.Duration,
				Width:    ref.Width,
				Height:   ref.Height,
				HasAudio: ref.HasAudio,
				Error:    failed[ref.Path],
			})
		}
	}
	if err := idx.Save(ws.paths.ProbeCache); err != nil {
		ws.logger.Warn().Err(err).Msg("cannot save probe cache")
	}

	if outputJSON {
		data, err := json.MarshalIndent(rows, "", "  ")
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	writeAssetTable(cmd.OutOrStdout(), rows)
	return nil
}

func writeAssetTable(w io.Writer, rows []assetJSON) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "(no assets found)")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "KIND\tNAME\tDURATION\tSIZE\tSTATUS")
	for _, row := range rows {
		size := "-"
		if row.Width > 0 && row.Height > 0 {
			size = fmt.Sprintf("%dx%d", row.Width, row.Height)
		}
		status := okStyle.Render("ok")
		if row.Error != "" {
			status = errStyle.Render("unreadable")
		}
		fmt.Fprintf(tw, "%s\t%s\t%.2fs\t%s\t%s\n", row.Kind, row.Label, row.Duration, size, status)
	}
	tw.Flush()
}
