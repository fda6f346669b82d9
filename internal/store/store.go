// Package store persists restaurant records, enrichment runs, and the
// tertiary snapshot behind a single interface with SQLite and Postgres
// implementations.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/tastelondon/enrich-cli/internal/model"
)

// ErrNotFound is returned when the requested entity does not exist.
var ErrNotFound = eris.New("store: not found")

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status  model.RunStatus `json:"status,omitempty"`
	PlaceID string          `json:"place_id,omitempty"`
	Limit   int             `json:"limit,omitempty"`
	Offset  int             `json:"offset,omitempty"`
}

// RestaurantFilter specifies criteria for listing restaurants.
type RestaurantFilter struct {
	City string `json:"city,omitempty"`
	// MissingCritical keeps only records missing at least one critical
	// attribute (the tertiary candidates).
	MissingCritical bool `json:"missing_critical,omitempty"`
	Limit           int  `json:"limit,omitempty"`
	Offset          int  `json:"offset,omitempty"`
}

// Store defines the persistence interface for the enrichment pipeline.
type Store interface {
	// Restaurants
	UpsertRestaurant(ctx context.Context, r model.Restaurant) error
	GetRestaurant(ctx context.Context, placeID string) (*model.Restaurant, error)
	ListRestaurants(ctx context.Context, filter RestaurantFilter) ([]model.Restaurant, error)

	// Runs
	CreateRun(ctx context.Context, restaurant model.Restaurant) (*model.Run, error)
	UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error
	UpdateRunResult(ctx context.Context, runID string, status model.RunStatus, result *model.RunResult) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	// Tertiary snapshot. CreateSnapshot locks the given membership; once a
	// snapshot exists further creates return the existing one unchanged.
	CreateSnapshot(ctx context.Context, placeIDs []string) (*model.Snapshot, error)
	GetSnapshot(ctx context.Context) (*model.Snapshot, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Open creates a store for the configured driver.
func Open(ctx context.Context, driver, databaseURL string) (Store, error) {
	switch driver {
	case "sqlite":
		return NewSQLite(databaseURL)
	case "postgres":
		return NewPostgres(ctx, databaseURL)
	default:
		return nil, eris.Errorf("store: unknown driver %q", driver)
	}
}

// missingCritical reports whether the record lacks any critical attribute.
func missingCritical(r *model.Restaurant) bool {
	return len(r.MissingAttrs(model.CriticalAttrs)) > 0
}
