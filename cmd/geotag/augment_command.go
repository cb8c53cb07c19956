package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"geotag/internal/augment"
	"geotag/internal/imagemeta"
)

const timeRounding = time.Millisecond

func newAugmentCommand(ctx *commandContext) *cobra.Command {
	var indexPath string
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "augment",
		Short: "Merge image GPS fixes and timestamps into the timeline",
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

			merger := augment.NewMerger(cfg.Augmentation, logger)
			report, err := merger.Augment(cmd.Context(), cfg.Paths.TimelineFile, idx.All())
			if err != nil {
				return fmt.Errorf("augment timeline: %w", err)
			}

			if jsonOut {
				return writeJSON(cmd, report)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderAugmentReport(out, report))
			return nil
		},
	}

	cmd.Flags().StringVar(&indexPath, "index", "", "Path to the image metadata index JSON (required)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit machine-readable JSON")
	_ = cmd.MarkFlagRequired("index")
	return cmd
}

func renderAugmentReport(out io.Writer, report *augment.Report) string {
	headers := []string{"Metric", "Value"}
	rows := [][]string{
		{"Images processed", strconv.Itoa(report.ImagesProcessed)},
		{"Images with GPS", strconv.Itoa(report.ImagesWithGPS)},
		{"New records", strconv.Itoa(report.NewRecords)},
		{"Extension placeholders", strconv.Itoa(report.ExtensionPlaceholders)},
		{"Exact duplicates skipped", strconv.Itoa(report.ExactDuplicatesSkipped)},
		{"Proximity duplicates skipped", strconv.Itoa(report.ProximityDuplicatesSkipped)},
		{"Consolidation savings", strconv.Itoa(report.ConsolidationSavings)},
	}
	if report.UnknownTimestampEdits > 0 {
		rows = append(rows, []string{"Edits without timestamps", strconv.Itoa(report.UnknownTimestampEdits)})
	}
	if report.BackupPath != "" {
		rows = append(rows, []string{"Backup", report.BackupPath})
	}
	return renderTable(out, headers, rows, []columnAlignment{alignLeft, alignRight})
}
