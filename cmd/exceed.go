package main

import (
	"fmt"
	"io"
	"os/signal"
	"slices"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/critload/internal/batch"
	"github.com/sells-group/critload/internal/exceed"
	"github.com/sells-group/critload/internal/vector"
)

var exceedCmd = &cobra.Command{
	Use:   "exceed",
	Short: "Calculate exceedances for a deposition series",
	Long: `Loads critical load functions (from the CLF table, or from a shapefile with
--clf-shp) and the deposition of one series, classifies every cell, and appends
the results to the exceedance table.

Deposition is keyed by grid cell, so a CLF shapefile's ID attribute
(vector.id_field, default cell_id) must hold the grid cell ID.

Cells whose CLF is invalid are counted but not written. Negative deposition
aborts the run before anything is written.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("exceed"); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		seriesID, _ := cmd.Flags().GetInt("series")
		clfShp, _ := cmd.Flags().GetString("clf-shp")
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		log := zap.L().With(zap.String("command", "exceed"), zap.Int("series_id", seriesID))

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = st.Close() }()

		var clfs map[int64]exceed.CLF
		if clfShp != "" {
			features, err := vector.NewShapefileStore().Read(clfShp)
			if err != nil {
				return eris.Wrap(err, "exceed: read clf shapefile")
			}
			clfs, err = batch.CLFsFromFeatures(features, batch.Fields{
				ID:     cfg.Vector.IDField,
				ClnMin: cfg.Vector.ClnMinField,
				ClnMax: cfg.Vector.ClnMaxField,
				ClsMin: cfg.Vector.ClsMinField,
				ClsMax: cfg.Vector.ClsMaxField,
			})
			if err != nil {
				return eris.Wrap(err, "exceed")
			}
		} else {
			clfs, err = batch.LoadCLFs(ctx, st, cfg.Tables.CLF)
			if err != nil {
				return eris.Wrap(err, "exceed")
			}
		}

		deps, err := batch.LoadDeposition(ctx, st, cfg.Tables.Deposition, seriesID)
		if err != nil {
			return eris.Wrap(err, "exceed")
		}

		inputs, missing := batch.Join(clfs, deps)
		if len(missing) > 0 {
			log.Warn("cells without deposition", zap.Int("count", len(missing)))
		}

		log.Info("starting exceedance run",
			zap.Int("cells", len(inputs)),
			zap.Int("concurrency", cfg.Batch.Concurrency),
			zap.Bool("dry_run", dryRun),
		)

		outputs, sum, err := batch.Run(ctx, inputs, batch.Options{
			Concurrency: cfg.Batch.Concurrency,
			ChunkSize:   cfg.Batch.ChunkSize,
		})
		if err != nil {
			return eris.Wrap(err, "exceed")
		}

		if !dryRun {
			n, err := batch.WriteResults(ctx, st, cfg.Tables.ResultSchema, cfg.Tables.ResultTable, seriesID, outputs)
			if err != nil {
				return eris.Wrap(err, "exceed")
			}
			log.Info("results written", zap.Int64("rows", n))
		}

		printSummary(cmd.OutOrStdout(), sum)
		return nil
	},
}

func init() {
	exceedCmd.Flags().Int("series", 0, "deposition series ID")
	exceedCmd.Flags().String("clf-shp", "", "read CLFs from this shapefile instead of the CLF table")
	exceedCmd.Flags().Bool("dry-run", false, "classify without writing results")
	_ = exceedCmd.MarkFlagRequired("series")
	rootCmd.AddCommand(exceedCmd)
}

// printSummary writes one line per region in region order, then the invalid
// and total cell counts and the summed exceedance.
func printSummary(w io.Writer, sum batch.Summary) {
	regions := make([]exceed.Region, 0, len(sum.Regions))
	for r := range sum.Regions {
		regions = append(regions, r)
	}
	slices.Sort(regions)

	fmt.Fprintf(w, "%-8s %10s\n", "region", "cells")
	for _, r := range regions {
		fmt.Fprintf(w, "%-8s %10d\n", r, sum.Regions[r])
	}
	fmt.Fprintf(w, "%-8s %10d\n", "invalid", sum.Invalid)
	fmt.Fprintf(w, "%-8s %10d\n", "total", sum.Total)
	fmt.Fprintf(w, "exceedance %.4g\n", sum.Exceedance)
}
