package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/tastelondon/enrich-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS restaurants (
	place_id         TEXT PRIMARY KEY,
	city             TEXT NOT NULL DEFAULT '',
	missing_critical INTEGER NOT NULL DEFAULT 1,
	record           TEXT NOT NULL,
	updated_at       DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	place_id   TEXT NOT NULL,
	restaurant TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'queued',
	result     TEXT,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS tertiary_snapshot (
	id         TEXT PRIMARY KEY,
	place_ids  TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_restaurants_city ON restaurants(city);
CREATE INDEX IF NOT EXISTS idx_restaurants_missing ON restaurants(missing_critical);
CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_runs_place_id ON runs(place_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) UpsertRestaurant(ctx context.Context, r model.Restaurant) error {
	if r.PlaceID == "" {
		return eris.New("sqlite: restaurant place_id is empty")
	}
	recordJSON, err := json.Marshal(r)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal restaurant")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO restaurants (place_id, city, missing_critical, record, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(place_id) DO UPDATE SET
		   city = excluded.city,
		   missing_critical = excluded.missing_critical,
		   record = excluded.record,
		   updated_at = excluded.updated_at`,
		r.PlaceID, r.City, boolToInt(missingCritical(&r)), string(recordJSON), time.Now().UTC(),
	)
	return eris.Wrapf(err, "sqlite: upsert restaurant %s", r.PlaceID)
}

func (s *SQLiteStore) GetRestaurant(ctx context.Context, placeID string) (*model.Restaurant, error) {
	var recordJSON string
	err := s.db.QueryRowContext(ctx,
		`SELECT record FROM restaurants WHERE place_id = ?`, placeID,
	).Scan(&recordJSON)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get restaurant %s", placeID)
	}

	var r model.Restaurant
	if err := json.Unmarshal([]byte(recordJSON), &r); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal restaurant")
	}
	return &r, nil
}

func (s *SQLiteStore) ListRestaurants(ctx context.Context, filter RestaurantFilter) ([]model.Restaurant, error) {
	query := `SELECT record FROM restaurants WHERE 1=1`
	var args []any

	if filter.City != "" {
		query += ` AND city = ?`
		args = append(args, filter.City)
	}
	if filter.MissingCritical {
		query += ` AND missing_critical = 1`
	}
	query += ` ORDER BY place_id`

	limit := filter.Limit
	if limit <= 0 {
		limit = 1000
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list restaurants")
	}
	defer rows.Close()

	var restaurants []model.Restaurant
	for rows.Next() {
		var recordJSON string
		if err := rows.Scan(&recordJSON); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan restaurant")
		}
		var r model.Restaurant
		if err := json.Unmarshal([]byte(recordJSON), &r); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal restaurant")
		}
		restaurants = append(restaurants, r)
	}
	return restaurants, eris.Wrap(rows.Err(), "sqlite: list restaurants iterate")
}

func (s *SQLiteStore) CreateRun(ctx context.Context, restaurant model.Restaurant) (*model.Run, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	restaurantJSON, err := json.Marshal(restaurant)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal restaurant")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, place_id, restaurant, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, restaurant.PlaceID, string(restaurantJSON), string(model.RunStatusQueued), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
	}

	return &model.Run{
		ID:         id,
		Restaurant: restaurant,
		Status:     model.RunStatusQueued,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

func (s *SQLiteStore) UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update run status %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

func (s *SQLiteStore) UpdateRunResult(ctx context.Context, runID string, status model.RunStatus, result *model.RunResult) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal result")
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET result = ?, status = ?, updated_at = ? WHERE id = ?`,
		string(resultJSON), string(status), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update run result %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, restaurant, status, result, created_at, updated_at FROM runs WHERE id = ?`,
		runID,
	)
	return scanRun(row)
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	query := `SELECT id, restaurant, status, result, created_at, updated_at FROM runs WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	if filter.PlaceID != "" {
		query += ` AND place_id = ?`
		args = append(args, filter.PlaceID)
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}

func (s *SQLiteStore) CreateSnapshot(ctx context.Context, placeIDs []string) (*model.Snapshot, error) {
	// The snapshot is immutable: if one exists, creation is a no-op that
	// returns the existing membership.
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
		return nil, eris.Wrap(err, "sqlite: marshal snapshot")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO tertiary_snapshot (id, place_ids, created_at) VALUES (?, ?, ?)`,
		id, string(idsJSON), now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert snapshot")
	}

	return &model.Snapshot{ID: id, PlaceIDs: placeIDs, CreatedAt: now}, nil
}

func (s *SQLiteStore) GetSnapshot(ctx context.Context) (*model.Snapshot, error) {
	var snap model.Snapshot
	var idsJSON string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, place_ids, created_at FROM tertiary_snapshot ORDER BY created_at LIMIT 1`,
	).Scan(&snap.ID, &idsJSON, &snap.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get snapshot")
	}
	if err := json.Unmarshal([]byte(idsJSON), &snap.PlaceIDs); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal snapshot")
	}
	return &snap, nil
}

// helpers

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Wrapf(ErrNotFound, "%s %s", entity, id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanRun(row scannable) (*model.Run, error) {
	var r model.Run
	var restaurantJSON string
	var resultJSON sql.NullString

	err := row.Scan(&r.ID, &restaurantJSON, &r.Status, &resultJSON, &r.CreatedAt, &r.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "store: scan run")
	}

	if err := json.Unmarshal([]byte(restaurantJSON), &r.Restaurant); err != nil {
		return nil, eris.Wrap(err, "store: unmarshal restaurant")
	}
	if resultJSON.Valid && resultJSON.String != "" && resultJSON.String != "null" {
		r.Result = &model.RunResult{}
		if err := json.Unmarshal([]byte(resultJSON.String), r.Result); err != nil {
			return nil, eris.Wrap(err, "store: unmarshal result")
		}
	}
	return &r, nil
}
