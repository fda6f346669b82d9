package store

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tastelondon/enrich-cli/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func sampleRestaurant(placeID string) model.Restaurant {
	return model.Restaurant{
		PlaceID: placeID,
		Name:    "Golden Dragon",
		City:    "London",
		Area:    "Soho",
		Coords:  &model.Coordinates{Lat: 51.5115, Lon: -0.1312},
		Attributes: map[string]string{
			model.AttrPhone: "020 7734 1073",
		},
	}
}

func TestSQLiteRestaurantRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	r := sampleRestaurant("place-1")
	require.NoError(t, s.UpsertRestaurant(ctx, r))

	got, err := s.GetRestaurant(ctx, "place-1")
	require.NoError(t, err)
	assert.Equal(t, r, *got)

	// Upsert replaces.
	r.SetAttr(model.AttrCuisineType, "Chinese")
	require.NoError(t, s.UpsertRestaurant(ctx, r))
	got, err = s.GetRestaurant(ctx, "place-1")
	require.NoError(t, err)
	assert.Equal(t, "Chinese", got.Attributes[model.AttrCuisineType])
}

func TestSQLiteRestaurantPreservesEmptyStringAttr(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	r := sampleRestaurant("place-1")
	r.SetAttr(model.AttrEmail, "")
	require.NoError(t, s.UpsertRestaurant(ctx, r))

	got, err := s.GetRestaurant(ctx, "place-1")
	require.NoError(t, err)
	v, ok := got.Attr(model.AttrEmail)
	require.True(t, ok, "explicit empty value must survive the round trip")
	assert.Equal(t, "", v)
}

func TestSQLiteGetRestaurantNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetRestaurant(context.Background(), "missing")
	assert.True(t, eris.Is(err, ErrNotFound))
}

func TestSQLiteUpsertRejectsEmptyPlaceID(t *testing.T) {
	s := newTestStore(t)
	err := s.UpsertRestaurant(context.Background(), model.Restaurant{Name: "No ID"})
	assert.Error(t, err)
}

func TestSQLiteListRestaurantsFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	complete := sampleRestaurant("place-complete")
	complete.SetAttr(model.AttrOpeningHours, "Mon-Sun 12:00-23:00")
	complete.SetAttr(model.AttrCuisineType, "Chinese")
	complete.SetAttr(model.AttrPriceRange, "££")
	require.NoError(t, s.UpsertRestaurant(ctx, complete))

	missing := sampleRestaurant("place-missing")
	require.NoError(t, s.UpsertRestaurant(ctx, missing))

	elsewhere := sampleRestaurant("place-elsewhere")
	elsewhere.City = "Leeds"
	require.NoError(t, s.UpsertRestaurant(ctx, elsewhere))

	all, err := s.ListRestaurants(ctx, RestaurantFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	london, err := s.ListRestaurants(ctx, RestaurantFilter{City: "London"})
	require.NoError(t, err)
	assert.Len(t, london, 2)

	tertiary, err := s.ListRestaurants(ctx, RestaurantFilter{MissingCritical: true})
	require.NoError(t, err)
	require.Len(t, tertiary, 2)
	for _, r := range tertiary {
		assert.NotEqual(t, "place-complete", r.PlaceID)
	}
}

func TestSQLiteRunLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, sampleRestaurant("place-1"))
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunStatusQueued, run.Status)

	require.NoError(t, s.UpdateRunStatus(ctx, run.ID, model.RunStatusSearching))

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusSearching, got.Status)
	assert.Equal(t, "Golden Dragon", got.Restaurant.Name)
	assert.Nil(t, got.Result)

	result := &model.RunResult{
		DirectoryStatus: model.DirectoryFound,
		Confidence:      0.96,
		DirectoryFills:  2,
		Filled:          map[string]string{model.AttrCuisineType: "filled_from_directory"},
		DurationMS:      1200,
	}
	require.NoError(t, s.UpdateRunResult(ctx, run.ID, model.RunStatusComplete, result))

	got, err = s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, got.Status)
	require.NotNil(t, got.Result)
	assert.Equal(t, model.DirectoryFound, got.Result.DirectoryStatus)
	assert.InDelta(t, 0.96, got.Result.Confidence, 1e-9)
}

func TestSQLiteRunNotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.GetRun(ctx, "missing")
	assert.True(t, eris.Is(err, ErrNotFound))

	err = s.UpdateRunStatus(ctx, "missing", model.RunStatusFailed)
	assert.True(t, eris.Is(err, ErrNotFound))
}

func TestSQLiteListRuns(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	r1, err := s.CreateRun(ctx, sampleRestaurant("place-1"))
	require.NoError(t, err)
	_, err = s.CreateRun(ctx, sampleRestaurant("place-2"))
	require.NoError(t, err)
	require.NoError(t, s.UpdateRunStatus(ctx, r1.ID, model.RunStatusFailed))

	all, err := s.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	failed, err := s.ListRuns(ctx, RunFilter{Status: model.RunStatusFailed})
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, r1.ID, failed[0].ID)

	byPlace, err := s.ListRuns(ctx, RunFilter{PlaceID: "place-2"})
	require.NoError(t, err)
	require.Len(t, byPlace, 1)
	assert.Equal(t, "place-2", byPlace[0].Restaurant.PlaceID)
}

func TestSQLiteSnapshotIsImmutable(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.GetSnapshot(ctx)
	assert.True(t, eris.Is(err, ErrNotFound))

	first, err := s.CreateSnapshot(ctx, []string{"place-1", "place-2"})
	require.NoError(t, err)
	assert.Equal(t, []string{"place-1", "place-2"}, first.PlaceIDs)

	// A second create returns the existing membership untouched.
	second, err := s.CreateSnapshot(ctx, []string{"place-3"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.PlaceIDs, second.PlaceIDs)

	got, err := s.GetSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
	assert.True(t, got.Contains("place-1"))
	assert.False(t, got.Contains("place-3"))
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), "mysql", "dsn")
	assert.Error(t, err)
}
