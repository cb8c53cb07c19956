package main

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"geotag/internal/timeline"
)

func newTimelineCommand(ctx *commandContext) *cobra.Command {
	timelineCmd := &cobra.Command{
		Use:   "timeline",
		Short: "Inspect the location-history timeline",
	}
	timelineCmd.AddCommand(newTimelineStatsCommand(ctx))
	timelineCmd.AddCommand(newTimelineValidateCommand(ctx))
	return timelineCmd
}

func newTimelineStatsCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Record counts by source and device, and the covered range",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			store, err := timeline.LoadStore(cfg.Paths.TimelineFile, logger)
			if err != nil {
				return fmt.Errorf("load timeline: %w", err)
			}
			stats := store.Statistics()

			if jsonOut {
				return writeJSON(cmd, map[string]any{
					"total":        stats.Total,
					"placeholders": stats.Placeholders,
					"bySource":     stats.BySource,
					"byDevice":     stats.ByDevice,
					"earliest":     stats.Earliest,
					"latest":       stats.Latest,
				})
			}

			rows := [][]string{
				{"Total records", strconv.Itoa(stats.Total)},
				{"Placeholders", strconv.Itoa(stats.Placeholders)},
			}
			for _, source := range sortedKeys(stats.BySource) {
				rows = append(rows, []string{"Source " + string(source), strconv.Itoa(stats.BySource[source])})
			}
			for _, device := range sortedStringKeys(stats.ByDevice) {
				rows = append(rows, []string{"Device " + device, strconv.Itoa(stats.ByDevice[device])})
			}
			if stats.Total > 0 {
				rows = append(rows,
					[]string{"Earliest", timeline.FormatTimestamp(stats.Earliest)},
					[]string{"Latest", timeline.FormatTimestamp(stats.Latest)},
				)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(out, []string{"Metric", "Value"}, rows, []columnAlignment{alignLeft, alignRight}))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit machine-readable JSON")
	return cmd
}

func newTimelineValidateCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check that the timeline file is structurally usable",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			result := timeline.ValidateFile(cfg.Paths.TimelineFile)

			if jsonOut {
				if err := writeJSON(cmd, map[string]any{
					"path":      result.Path,
					"exists":    result.Exists,
					"readable":  result.Readable,
					"validJson": result.ValidJSON,
					"hasEdits":  result.HasEdits,
					"editCount": result.EditCount,
					"issue":     result.Issue,
					"ok":        result.OK(),
				}); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				rows := [][]string{
					{"Path", result.Path},
					{"Exists", yesNo(result.Exists)},
					{"Readable", yesNo(result.Readable)},
					{"Valid JSON", yesNo(result.ValidJSON)},
					{"Has edits", yesNo(result.HasEdits)},
					{"Edit count", strconv.Itoa(result.EditCount)},
				}
				if result.Issue != "" {
					rows = append(rows, []string{"Issue", result.Issue})
				}
				fmt.Fprintln(out, renderTable(out, []string{"Check", "Result"}, rows, []columnAlignment{alignLeft, alignLeft}))
			}

			if !result.OK() {
				return fmt.Errorf("timeline file is not usable: %s", result.Issue)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit machine-readable JSON")
	return cmd
}

func sortedKeys(m map[timeline.Source]int) []timeline.Source {
	keys := make([]timeline.Source, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func sortedStringKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
