package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"geotag/internal/augment"
	"geotag/internal/batch"
	"geotag/internal/gpsstore"
	"geotag/internal/imagemeta"
	"geotag/internal/interpolate"
	"geotag/internal/logging"
	"geotag/internal/timeline"
)

func newProcessCommand(ctx *commandContext) *cobra.Command {
	var indexPath string
	var dryRun bool
	var runAugment bool
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Resolve coordinates for images that lack GPS data",
		Long: `Process runs every image in the metadata index that needs geolocation
through the inference engine: priority store first, then the timeline,
then nearby geotagged images. Resolved coordinates are recorded in the
priority store and the updated index is written back.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			idx, err := imagemeta.LoadIndex(indexPath)
			if err != nil {
				return fmt.Errorf("load image index: %w", err)
			}
			tl, err := timeline.LoadStore(cfg.Paths.TimelineFile, logger)
			if err != nil {
				return fmt.Errorf("load timeline: %w", err)
			}
			store, err := gpsstore.Open(cfg.Paths.DatabasePath)
			if err != nil {
				return fmt.Errorf("open gps store: %w", err)
			}
			defer store.Close()

			engine := interpolate.NewEngine(store, tl, idx, cfg, nil, logger)
			engine.DryRun = dryRun
			processor := batch.NewProcessor(engine, cfg.Batch, logger)

			stats, runErr := processor.Run(cmd.Context(), idx.NeedingGeolocation())
			if runErr != nil {
				return runErr
			}

			if !dryRun {
				if err := imagemeta.SaveIndex(idx, indexPath); err != nil {
					return fmt.Errorf("save image index: %w", err)
				}
			}

			// Augmentation failure degrades gracefully: the resolved images
			// are already recorded, so log and carry on.
			var report *augment.Report
			if runAugment && !dryRun {
				merger := augment.NewMerger(cfg.Augmentation, logger)
				report, err = merger.Augment(cmd.Context(), cfg.Paths.TimelineFile, idx.All())
				if err != nil {
					logger.Warn("timeline augmentation failed", logging.Error(err))
					report = nil
				}
			}

			if jsonOut {
				payload := map[string]any{"stats": stats}
				if report != nil {
					payload["augmentation"] = report
				}
				return writeJSON(cmd, payload)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderRunStats(out, stats, dryRun))
			if report != nil {
				fmt.Fprintln(out, renderAugmentReport(out, report))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&indexPath, "index", "", "Path to the image metadata index JSON (required)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Resolve without writing to the store or index")
	cmd.Flags().BoolVar(&runAugment, "augment", false, "Merge image GPS and timestamps into the timeline afterwards")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit machine-readable JSON")
	_ = cmd.MarkFlagRequired("index")
	return cmd
}

func renderRunStats(out io.Writer, stats *batch.Stats, dryRun bool) string {
	headers := []string{"Metric", "Value"}
	rows := [][]string{
		{"Run ID", stats.RunID},
		{"Processed", strconv.Itoa(stats.Processed)},
		{"Store hits", strconv.Itoa(stats.StoreHits)},
	}
	for _, source := range []string{
		interpolate.SourceTimelineDirect,
		interpolate.SourceTimelineInterpolated,
		interpolate.SourceImageInterpolated,
		interpolate.SourceImageInterpolatedRefined,
	} {
		if n := stats.Resolved[source]; n > 0 {
			rows = append(rows, []string{"Resolved (" + source + ")", strconv.Itoa(n)})
		}
	}
	rows = append(rows,
		[]string{"Skipped", strconv.Itoa(stats.Skipped)},
		[]string{"Unresolved", strconv.Itoa(stats.Unresolved)},
		[]string{"Failed", strconv.Itoa(stats.Failed)},
		[]string{"Duration", stats.Duration.Round(timeRounding).String()},
	)
	if dryRun {
		rows = append(rows, []string{"Mode", "dry run (nothing written)"})
	}
	return renderTable(out, headers, rows, []columnAlignment{alignLeft, alignRight})
}
