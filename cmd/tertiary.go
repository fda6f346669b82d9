package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tastelondon/enrich-cli/internal/model"
	"github.com/tastelondon/enrich-cli/internal/store"
)

// snapshotStatus summarizes how far the snapshot has been worked through.
type snapshotStatus struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Members   int       `json:"members"`
	Pending   int       `json:"pending"`
	Completed int       `json:"completed"`
	Missing   int       `json:"missing"`
}

// computeSnapshotStatus counts, per snapshot member, whether the record is
// still missing a critical attribute, already complete, or no longer stored.
func computeSnapshotStatus(ctx context.Context, st store.Store, snap *model.Snapshot) (snapshotStatus, error) {
	status := snapshotStatus{
		ID:        snap.ID,
		CreatedAt: snap.CreatedAt,
		Members:   len(snap.PlaceIDs),
	}
	for _, placeID := range snap.PlaceIDs {
		rec, err := st.GetRestaurant(ctx, placeID)
		if err != nil {
			if eris.Is(err, store.ErrNotFound) {
				status.Missing++
				continue
			}
			return snapshotStatus{}, err
		}
		if len(rec.MissingAttrs(model.CriticalAttrs)) > 0 {
			status.Pending++
		} else {
			status.Completed++
		}
	}
	return status, nil
}

var tertiaryCmd = &cobra.Command{
	Use:   "tertiary",
	Short: "Manage the tertiary directory snapshot",
	Long:  "Freezes the set of records missing critical fields and runs the directory fallback over that fixed membership.",
}

// -- tertiary snapshot --

var tertiarySnapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Freeze the set of records missing critical fields",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		env, err := initPipeline(ctx, "enrich")
		if err != nil {
			return err
		}
		defer env.Close()

		snap, err := env.Pipeline.Snapshot(ctx)
		if err != nil {
			return eris.Wrap(err, "tertiary snapshot")
		}

		fmt.Printf("snapshot %s holds %d records\n", snap.ID, len(snap.PlaceIDs))
		return nil
	},
}

// -- tertiary status --

var tertiaryStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current snapshot and its remaining gaps",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("enrich"); err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		snap, err := st.GetSnapshot(ctx)
		if err != nil {
			return eris.Wrap(err, "tertiary status")
		}

		status, err := computeSnapshotStatus(ctx, st, snap)
		if err != nil {
			return eris.Wrap(err, "tertiary status")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(status)
	},
}

// -- tertiary enrich --

var tertiaryConcurrency int

var tertiaryEnrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Run the directory fallback over the snapshot",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initPipeline(ctx, "batch")
		if err != nil {
			return err
		}
		defer env.Close()

		concurrency := tertiaryConcurrency
		if concurrency == 0 {
			concurrency = cfg.Batch.MaxConcurrentRestaurants
		}

		_, summary, err := env.Pipeline.EnrichSnapshot(ctx, concurrency)
		if err != nil {
			return eris.Wrap(err, "tertiary enrich")
		}

		zap.L().Info("tertiary enrichment complete",
			zap.Int("total", summary.Total),
			zap.Int("succeeded", summary.Succeeded),
			zap.Int("failed", summary.Failed),
		)
		return nil
	},
}

func init() {
	tertiaryEnrichCmd.Flags().IntVar(&tertiaryConcurrency, "concurrency", 0, "max concurrent records (default from config)")

	tertiaryCmd.AddCommand(tertiarySnapshotCmd)
	tertiaryCmd.AddCommand(tertiaryStatusCmd)
	tertiaryCmd.AddCommand(tertiaryEnrichCmd)
	rootCmd.AddCommand(tertiaryCmd)
}
