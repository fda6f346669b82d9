package enrich

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tastelondon/enrich-cli/internal/model"
	"github.com/tastelondon/enrich-cli/internal/store"
)

// BatchSummary totals the outcomes of a batch.
type BatchSummary struct {
	Total     int
	Succeeded int
	Failed    int
}

// EnrichBatch enriches records concurrently, at most concurrency at a time.
// A failing record marks its own run failed and never aborts the batch; the
// returned error is non-nil only when the context is cancelled. Output order
// matches input order.
func (p *Pipeline) EnrichBatch(ctx context.Context, records []model.Restaurant, concurrency int) ([]model.Restaurant, BatchSummary, error) {
	if concurrency < 1 {
		concurrency = 1
	}

	results := make([]model.Restaurant, len(records))
	failed := make([]bool, len(records))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, rec := range records {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = rec
				failed[i] = true
				return err
			}
			out, _, err := p.EnrichOne(ctx, rec)
			results[i] = out
			if err != nil {
				failed[i] = true
				zap.L().Error("record enrichment failed",
					zap.String("place_id", rec.PlaceID),
					zap.Error(err),
				)
			}
			return nil
		})
	}

	err := g.Wait()

	summary := BatchSummary{Total: len(records)}
	for _, f := range failed {
		if f {
			summary.Failed++
		}
	}
	summary.Succeeded = summary.Total - summary.Failed

	zap.L().Info("batch complete",
		zap.Int("total", summary.Total),
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("failed", summary.Failed),
	)
	return results, summary, err
}

// Snapshot freezes the set of records still missing critical attributes.
// Once a snapshot exists it is returned unchanged on every later call.
func (p *Pipeline) Snapshot(ctx context.Context) (*model.Snapshot, error) {
	records, err := p.store.ListRestaurants(ctx, store.RestaurantFilter{MissingCritical: true, Limit: 100000})
	if err != nil {
		return nil, eris.Wrap(err, "enrich: list records for snapshot")
	}

	ids := make([]string, 0, len(records))
	for _, rec := range records {
		ids = append(ids, rec.PlaceID)
	}

	snap, err := p.store.CreateSnapshot(ctx, ids)
	if err != nil {
		return nil, err
	}
	zap.L().Info("tertiary snapshot ready",
		zap.String("snapshot_id", snap.ID),
		zap.Int("members", len(snap.PlaceIDs)),
	)
	return snap, nil
}

// EnrichSnapshot runs the directory fallback over the snapshot membership.
// Members already complete or since deleted are skipped, which makes the
// operation safe to re-run after a partial failure.
func (p *Pipeline) EnrichSnapshot(ctx context.Context, concurrency int) ([]model.Restaurant, BatchSummary, error) {
	snap, err := p.store.GetSnapshot(ctx)
	if err != nil {
		return nil, BatchSummary{}, eris.Wrap(err, "enrich: load snapshot")
	}

	var pending []model.Restaurant
	for _, placeID := range snap.PlaceIDs {
		rec, err := p.store.GetRestaurant(ctx, placeID)
		if err != nil {
			if eris.Is(err, store.ErrNotFound) {
				zap.L().Warn("snapshot member no longer stored", zap.String("place_id", placeID))
				continue
			}
			return nil, BatchSummary{}, err
		}
		if !missingCritical(rec) {
			continue
		}
		pending = append(pending, *rec)
	}

	zap.L().Info("snapshot enrichment starting",
		zap.String("snapshot_id", snap.ID),
		zap.Int("members", len(snap.PlaceIDs)),
		zap.Int("pending", len(pending)),
	)
	return p.EnrichBatch(ctx, pending, concurrency)
}
