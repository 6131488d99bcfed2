package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/easing-playground/internal/apperror"
	"github.com/sakif/easing-playground/internal/model"
	"github.com/sakif/easing-playground/internal/repository"
)

var _ repository.ResultCache = (*DB)(nil)

// Get returns the cached result stored under key and bumps its usage.
//
// POINTS COLUMN:
// Points are stored as the same JSON the HTTP API returns ([[pos, val], ...]).
// A 10,000 point curve is one row and one column read, and NaN values
// survive the round trip as null.
func (db *DB) Get(ctx context.Context, key string) (*model.ProcessResult, error) {
	var (
		result model.ProcessResult
		points string
	)
	err := db.conn.QueryRowContext(ctx,
		`SELECT name, points, duration FROM dense_results WHERE digest = ?`,
		key,
	).Scan(&result.Name, &points, &result.Duration)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("result", key)
		}
		return nil, fmt.Errorf("sqlite: getting result %s: %w", key, err)
	}

	if err := json.Unmarshal([]byte(points), &result.Points); err != nil {
		return nil, fmt.Errorf("sqlite: decoding points of %s: %w", key, err)
	}

	_, err = db.conn.ExecContext(ctx,
		`UPDATE dense_results SET hits = hits + 1, used_at = ? WHERE digest = ?`,
		time.Now().UTC(), key,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: touching result %s: %w", key, err)
	}
	return &result, nil
}

// Put stores result under key, replacing any previous entry.
//
// UPSERT:
// ON CONFLICT(digest) DO UPDATE turns a duplicate insert into an update, so
// two requests racing on the same script both succeed.
func (db *DB) Put(ctx context.Context, key string, action model.Action, result *model.ProcessResult) error {
	points, err := json.Marshal(result.Points)
	if err != nil {
		return fmt.Errorf("sqlite: encoding points: %w", err)
	}

	now := time.Now().UTC()
	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO dense_results (id, digest, action, name, points, duration, created_at, used_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(digest) DO UPDATE SET
			name = excluded.name,
			points = excluded.points,
			duration = excluded.duration,
			used_at = excluded.used_at`,
		xid.New().String(),
		key,
		string(action),
		result.Name,
		string(points),
		result.Duration,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("sqlite: storing result %s: %w", key, err)
	}
	return nil
}

// Prune deletes all but the keep most recently used results and reports
// how many rows were removed.
func (db *DB) Prune(ctx context.Context, keep int) (int64, error) {
	res, err := db.conn.ExecContext(ctx,
		`DELETE FROM dense_results WHERE id NOT IN (
			SELECT id FROM dense_results ORDER BY used_at DESC, id DESC LIMIT ?
		)`,
		max(keep, 0),
	)
	if err != nil {
		return 0, fmt.Errorf("sqlite: pruning results: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sqlite: pruning results: %w", err)
	}
	return n, nil
}

// Hits returns how many times the result under key was served from the cache.
func (db *DB) Hits(ctx context.Context, key string) (int, error) {
	var hits int
	err := db.conn.QueryRowContext(ctx,
		`SELECT hits FROM dense_results WHERE digest = ?`, key,
	).Scan(&hits)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, apperror.NotFound("result", key)
	}
	if err != nil {
		return 0, fmt.Errorf("sqlite: counting hits of %s: %w", key, err)
	}
	return hits, nil
}
