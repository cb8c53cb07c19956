package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"geotag/internal/gpsstore"
)

func newStoreCommand(ctx *commandContext) *cobra.Command {
	storeCmd := &cobra.Command{
		Use:   "store",
		Short: "Manage the GPS priority store",
	}
	storeCmd.AddCommand(newStoreListCommand(ctx))
	storeCmd.AddCommand(newStoreStatsCommand(ctx))
	storeCmd.AddCommand(newStoreExportCommand(ctx))
	storeCmd.AddCommand(newStoreClearCommand(ctx))
	return storeCmd
}

func (c *commandContext) withStore(fn func(*gpsstore.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := gpsstore.Open(cfg.Paths.DatabasePath)
	if err != nil {
		return fmt.Errorf("open gps store: %w", err)
	}
	defer store.Close()
	return fn(store)
}

func newStoreListCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored GPS records",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *gpsstore.Store) error {
				records, err := store.List(cmd.Context())
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, records)
				}
				if len(records) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Store is empty")
					return nil
				}
				rows := make([][]string, 0, len(records))
				for _, rec := range records {
					rows = append(rows, []string{
						rec.FilePath,
						fmt.Sprintf("%.6f", rec.Coordinates.Latitude),
						fmt.Sprintf("%.6f", rec.Coordinates.Longitude),
						string(rec.Source),
						string(rec.Confidence),
					})
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, renderTable(out,
					[]string{"File", "Latitude", "Longitude", "Source", "Confidence"},
					rows,
					[]columnAlignment{alignLeft, alignRight, alignRight, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit machine-readable JSON")
	return cmd
}

func newStoreStatsCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Record counts per source",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *gpsstore.Store) error {
				counts, err := store.Stats(cmd.Context())
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, counts)
				}
				total := 0
				var rows [][]string
				for _, source := range []gpsstore.Source{
					gpsstore.SourceDatabase,
					gpsstore.SourceExifGPS,
					gpsstore.SourceTimelineInterpolated,
					gpsstore.SourceNearbyInterpolated,
				} {
					if n, ok := counts[source]; ok {
						rows = append(rows, []string{string(source), strconv.Itoa(n)})
						total += n
					}
				}
				rows = append(rows, []string{"Total", strconv.Itoa(total)})
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, renderTable(out,
					[]string{"Source", "Records"},
					rows,
					[]columnAlignment{alignLeft, alignRight},
				))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit machine-readable JSON")
	return cmd
}

func newStoreExportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Export every record as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *gpsstore.Store) error {
				data, err := store.ExportJSON(cmd.Context())
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(append(data, '\n'))
				return err
			})
		},
	}
}

func newStoreClearCommand(ctx *commandContext) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every stored GPS record",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				return fmt.Errorf("refusing to clear the store without --force")
			}
			return ctx.withStore(func(store *gpsstore.Store) error {
				removed, err := store.Clear(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d records\n", removed)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Confirm deletion")
	return cmd
}
