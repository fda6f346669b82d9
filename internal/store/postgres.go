package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/tastelondon/enrich-cli/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses. pgxmock satisfies it
// for tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    Pool
	closeFn func()
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS restaurants (
	place_id         TEXT PRIMARY KEY,
	city             TEXT NOT NULL DEFAULT '',
	missing_critical BOOLEAN NOT NULL DEFAULT true,
	record           JSONB NOT NULL,
	updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	place_id   TEXT NOT NULL,
	restaurant JSONB NOT NULL,
	status     TEXT NOT NULL DEFAULT 'queued',
	result     JSONB,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS tertiary_snapshot (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	place_ids  JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_restaurants_city ON restaurants(city);
CREATE INDEX IF NOT EXISTS idx_restaurants_missing ON restaurants(missing_critical);
CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_runs_place_id ON runs(place_id);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) UpsertRestaurant(ctx context.Context, r model.Restaurant) error {
	if r.PlaceID == "" {
		return eris.New("postgres: restaurant place_id is empty")
	}
	recordJSON, err := json.Marshal(r)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal restaurant")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO restaurants (place_id, city, missing_critical, record, updated_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (place_id) DO UPDATE SET
		   city = EXCLUDED.city,
		   missing_critical = EXCLUDED.missing_critical,
		   record = EXCLUDED.record,
		   updated_at = EXCLUDED.updated_at`,
		r.PlaceID, r.City, missingCritical(&r), recordJSON, time.Now().UTC(),
	)
	return eris.Wrapf(err, "postgres: upsert restaurant %s", r.PlaceID)
}

func (s *PostgresStore) GetRestaurant(ctx context.Context, placeID string) (*model.Restaurant, error) {
	var recordJSON []byte
	err := s.pool.QueryRow(ctx,
		`SELECT record FROM restaurants WHERE place_id = $1`, placeID,
	).Scan(&recordJSON)
	if eris.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get restaurant %s", placeID)
	}

	var r model.Restaurant
	if err := json.Unmarshal(recordJSON, &r); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal restaurant")
	}
	return &r, nil
}

func (s *PostgresStore) ListRestaurants(ctx context.Context, filter RestaurantFilter) ([]model.Restaurant, error) {
	query := `SELECT record FROM restaurants WHERE true`
	args := []any{}
	argIdx := 1

	if filter.City != "" {
		query += fmt.Sprintf(` AND city = $%d`, argIdx)
		args = append(args, filter.City)
		argIdx++
	}
	if filter.MissingCritical {
		query += ` AND missing_critical`
	}
	query += ` ORDER BY place_id`

	limit := filter.Limit
	if limit <= 0 {
		limit = 1000
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list restaurants")
	}
	defer rows.Close()

	var restaurants []model.Restaurant
	for rows.Next() {
		var recordJSON []byte
		if err := rows.Scan(&recordJSON); err != nil {
			return nil, eris.Wrap(err, "postgres: scan restaurant")
		}
		var r model.Restaurant
		if err := json.Unmarshal(recordJSON, &r); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal restaurant")
		}
		restaurants = append(restaurants, r)
	}
	return restaurants, eris.Wrap(rows.Err(), "postgres: list restaurants iterate")
}

func (s *PostgresStore) CreateRun(ctx context.Context, restaurant model.Restaurant) (*model.Run, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	restaurantJSON, err := json.Marshal(restaurant)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal restaurant")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO runs (id, place_id, restaurant, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		id, restaurant.PlaceID, restaurantJSON, string(model.RunStatusQueued), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert run")
	}

	return &model.Run{
		ID:         id,
		Restaurant: restaurant,
		Status:     model.RunStatusQueued,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

func (s *PostgresStore) UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE runs SET status = $1, updated_at = $2 WHERE id = $3`,
		string(status), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update run status %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "run %s", runID)
	}
	return nil
}

func (s *PostgresStore) UpdateRunResult(ctx context.Context, runID string, status model.RunStatus, result *model.RunResult) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal result")
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE runs SET result = $1, status = $2, updated_at = $3 WHERE id = $4`,
		resultJSON, string(status), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update run result %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "run %s", runID)
	}
	return nil
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	var r model.Run
	var restaurantJSON []byte
	var resultJSON []byte

	err := s.pool.QueryRow(ctx,
		`SELECT id, restaurant, status, result, created_at, updated_at FROM runs WHERE id = $1`,
		runID,
	).Scan(&r.ID, &restaurantJSON, &r.Status, &resultJSON, &r.CreatedAt, &r.UpdatedAt)
	if eris.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get run %s", runID)
	}

	if err := json.Unmarshal(restaurantJSON, &r.Restaurant); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal restaurant")
	}
	if len(resultJSON) > 0 && string(resultJSON) != "null" {
		r.Result = &model.RunResult{}
		if err := json.Unmarshal(resultJSON, r.Result); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal result")
		}
	}
	return &r, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	query := `SELECT id, restaurant, status, result, created_at, updated_at FROM runs WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Status != "" {
		query += fmt.Sprintf(` AND status = $%d`, argIdx)
		args = append(args, string(filter.Status))
		argIdx++
	}
	if filter.PlaceID != "" {
		query += fmt.Sprintf(` AND place_id = $%d`, argIdx)
		args = append(args, filter.PlaceID)
		argIdx++
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		var r model.Run
		var restaurantJSON, resultJSON []byte
		if err := rows.Scan(&r.ID, &restaurantJSON, &r.Status, &resultJSON, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		if err := json.Unmarshal(restaurantJSON, &r.Restaurant); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal restaurant")
		}
		if len(resultJSON) > 0 && string(resultJSON) != "null" {
			r.Result = &model.RunResult{}
			if err := json.Unmarshal(resultJSON, r.Result); err != nil {
				return nil, eris.Wrap(err, "postgres: unmarshal result")
			}
		}
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list runs iterate")
}

func (s *PostgresStore) CreateSnapshot(ctx context.Context, placeIDs []string) (*model.Snapshot, error) {
	existing, err := s.GetSnapshot(ctx)
	if err != nil && !eris.Is(err, ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	id := uuid.New().String()
	now := time.Now().UTC()
	idsJSON, err := json.Marshal(placeIDs)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal snapshot")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO tertiary_snapshot (id, place_ids, created_at) VALUES ($1, $2, $3)`,
		id, idsJSON, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert snapshot")
	}

	return &model.Snapshot{ID: id, PlaceIDs: placeIDs, CreatedAt: now}, nil
}

func (s *PostgresStore) GetSnapshot(ctx context.Context) (*model.Snapshot, error) {
	var snap model.Snapshot
	var idsJSON []byte
	err := s.pool.QueryRow(ctx,
		`SELECT id, place_ids, created_at FROM tertiary_snapshot ORDER BY created_at LIMIT 1`,
	).Scan(&snap.ID, &idsJSON, &snap.CreatedAt)
	if eris.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get snapshot")
	}
	if err := json.Unmarshal(idsJSON, &snap.PlaceIDs); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal snapshot")
	}
	return &snap, nil
}
