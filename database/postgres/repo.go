// Package postgres implements the manifest repo using PostgreSQL.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rjavier441/rjs2"
)

type Repo struct {
	pool      *pgxpool.Pool
	tableName string
}

func NewRepo(pool *pgxpool.Pool, tables rjs2.Tables) (*Repo, error) {
	if err := tables.Validate(); err != nil {
		return nil, fmt.Errorf("new repo: %w", err)
	}

	return &Repo{pool: pool, tableName: tables.Routes}, nil
}

func (r *Repo) Save(ctx context.Context, s rjs2.Snapshot) error {
	routes := s.Routes
	if routes == nil {
		routes = []rjs2.Route{}
	}
	data, err := json.Marshal(routes)
	if err != nil {
		return fmt.Errorf("save: encode routes: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, root, loaded_at, route_count, routes)
		VALUES ($1, $2, $3, $4, $5)
	`, pgx.Identifier{r.tableName}.Sanitize())

	_, err = r.pool.Exec(ctx, query, s.ID, s.Root, s.LoadedAt, len(routes), string(data))
	if err != nil {
		return fmt.Errorf("save: %w", err)
	}

	return nil
}

func (r *Repo) Latest(ctx context.Context) (rjs2.Snapshot, error) {
	query := fmt.Sprintf(`
		SELECT id, root, loaded_at, routes
		FROM %s
		ORDER BY loaded_at DESC
		LIMIT 1
	`, pgx.Identifier{r.tableName}.Sanitize())

	var s rjs2.Snapshot
	var routes []byte

	err := r.pool.QueryRow(ctx, query).Scan(&s.ID, &s.Root, &s.LoadedAt, &routes)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return rjs2.Snapshot{}, rjs2.ErrNotFound
		}
		return rjs2.Snapshot{}, fmt.Errorf("latest: %w", err)
	}

	if err = json.Unmarshal(routes, &s.Routes); err != nil {
		return rjs2.Snapshot{}, fmt.Errorf("latest: decode routes: %w", err)
	}
	s.LoadedAt = s.LoadedAt.UTC()

	return s, nil
}

func (r *Repo) List(ctx context.Context, limit int) ([]rjs2.SnapshotSummary, error) {
	if limit < 1 {
		limit = 1
	}

	query := fmt.Sprintf(`
		SELECT id, root, loaded_at, route_count
		FROM %s
		ORDER BY loaded_at DESC
		LIMIT $1
	`, pgx.Identifier{r.tableName}.Sanitize())

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	defer rows.Close()

	summaries := make([]rjs2.SnapshotSummary, 0, limit)
	for rows.Next() {
		var s rjs2.SnapshotSummary
		if err := rows.Scan(&s.ID, &s.Root, &s.LoadedAt, &s.RouteCount); err != nil {
			return nil, fmt.Errorf("list: scan: %w", err)
		}
		s.LoadedAt = s.LoadedAt.UTC()
		summaries = append(summaries, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list: rows: %w", err)
	}

	return summaries, nil
}

func (r *Repo) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}

	table := pgx.Identifier{r.tableName}.Sanitize()
	query := fmt.Sprintf(`
		DELETE FROM %[1]s
		WHERE id NOT IN (
			SELECT id FROM %[1]s
			ORDER BY loaded_at DESC
			LIMIT $1
		)
	`, table)

	tag, err := r.pool.Exec(ctx, query, keep)
	if err != nil {
		return 0, fmt.Errorf("prune: %w", err)
	}

	return tag.RowsAffected(), nil
}
