package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tastelondon/enrich-cli/internal/dataset"
)

var (
	batchInput       string
	batchOutput      string
	batchConcurrency int
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Enrich a CSV of restaurants",
	Long:  "Reads records from a CSV, enriches them concurrently, and writes the enriched CSV. A failing record never aborts the batch.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initPipeline(ctx, "batch")
		if err != nil {
			return err
		}
		defer env.Close()

		in, err := os.Open(batchInput)
		if err != nil {
			return eris.Wrap(err, "open input")
		}
		records, err := dataset.Read(in)
		_ = in.Close()
		if err != nil {
			return err
		}

		concurrency := batchConcurrency
		if concurrency == 0 {
			concurrency = cfg.Batch.MaxConcurrentRestaurants
		}

		zap.L().Info("batch starting",
			zap.String("input", batchInput),
			zap.Int("records", len(records)),
			zap.Int("concurrency", concurrency),
		)

		results, summary, batchErr := env.Pipeline.EnrichBatch(ctx, records, concurrency)

		out, err := os.Create(batchOutput)
		if err != nil {
			return eris.Wrap(err, "create output")
		}
		defer out.Close() //nolint:errcheck
		if err := dataset.Write(out, results); err != nil {
			return err
		}

		zap.L().Info("batch written",
			zap.String("output", batchOutput),
			zap.Int("succeeded", summary.Succeeded),
			zap.Int("failed", summary.Failed),
		)

		// Partial output is still written on cancellation; the error tells
		// the caller the batch did not finish.
		if batchErr != nil {
			return eris.Wrap(batchErr, "batch interrupted")
		}
		return nil
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchInput, "input", "", "input CSV path (required)")
	batchCmd.Flags().StringVar(&batchOutput, "output", "", "output CSV path (required)")
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 0, "max concurrent records (default from config)")
	_ = batchCmd.MarkFlagRequired("input")
	_ = batchCmd.MarkFlagRequired("output")
	rootCmd.AddCommand(batchCmd)
}
