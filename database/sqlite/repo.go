// Package sqlite implements the manifest repo using SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rjavier441/rjs2"
)

// loadedAtLayout has a fixed width so text ordering matches time ordering.
const loadedAtLayout = "2006-01-02T15:04:05.000000000Z"

type repo struct {
	db        *sql.DB
	tableName string
}

func (r *repo) Save(ctx context.Context, s rjs2.Snapshot) error {
	routes := s.Routes
	if routes == nil {
		routes = []rjs2.Route{}
	}
	data, err := json.Marshal(routes)
	if err != nil {
		return fmt.Errorf("save: encode routes: %w", err)
	}

	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`INSERT INTO %s (id, root, loaded_at, route_count, routes)
		VALUES (?, ?, ?, ?, ?)`, r.tableName)

	_, err = r.db.ExecContext(ctx, query,
		s.ID.String(), s.Root, s.LoadedAt.UTC().Format(loadedAtLayout), len(routes), string(data),
	)
	if err != nil {
		return fmt.Errorf("save: %w", err)
	}

	return nil
}

func (r *repo) Latest(ctx context.Context) (rjs2.Snapshot, error) {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`SELECT id, root, loaded_at, routes
		FROM %s
		ORDER BY loaded_at DESC
		LIMIT 1`, r.tableName)

	var idStr, loadedAt, routes string
	var s rjs2.Snapshot

	err := r.db.QueryRowContext(ctx, query).Scan(&idStr, &s.Root, &loadedAt, &routes)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return rjs2.Snapshot{}, rjs2.ErrNotFound
		}
		return rjs2.Snapshot{}, fmt.Errorf("latest: %w", err)
	}

	s.ID, err = uuid.Parse(idStr)
	if err != nil {
		return rjs2.Snapshot{}, fmt.Errorf("latest: parse uuid: %w", err)
	}

	s.LoadedAt, err = time.Parse(loadedAtLayout, loadedAt)
	if err != nil {
		return rjs2.Snapshot{}, fmt.Errorf("latest: parse loaded_at: %w", err)
	}

	if err = json.Unmarshal([]byte(routes), &s.Routes); err != nil {
		return rjs2.Snapshot{}, fmt.Errorf("latest: decode routes: %w", err)
	}

	return s, nil
}

func (r *repo) List(ctx context.Context, limit int) ([]rjs2.SnapshotSummary, error) {
	if limit < 1 {
		limit = 1
	}

	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`SELECT id, root, loaded_at, route_count
		FROM %s
		ORDER BY loaded_at DESC
		LIMIT ?`, r.tableName)

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	defer func() { _ = rows.Close() }()

	summaries := make([]rjs2.SnapshotSummary, 0, limit)
	for rows.Next() {
		var idStr, loadedAt string
		var s rjs2.SnapshotSummary

		if err := rows.Scan(&idStr, &s.Root, &loadedAt, &s.RouteCount); err != nil {
			return nil, fmt.Errorf("list: scan: %w", err)
		}

		s.ID, err = uuid.Parse(idStr)
		if err != nil {
			return nil, fmt.Errorf("list: parse uuid: %w", err)
		}

		s.LoadedAt, err = time.Parse(loadedAtLayout, loadedAt)
		if err != nil {
			return nil, fmt.Errorf("list: parse loaded_at: %w", err)
		}

		summaries = append(summaries, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list: rows: %w", err)
	}

	return summaries, nil
}

func (r *repo) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}

	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`DELETE FROM %[1]s
		WHERE id NOT IN (
			SELECT id FROM %[1]s
			ORDER BY loaded_at DESC
			LIMIT ?
		)`, r.tableName)

	result, err := r.db.ExecContext(ctx, query, keep)
	if err != nil {
		return 0, fmt.Errorf("prune: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune: rows affected: %w", err)
	}

	return n, nil
}
