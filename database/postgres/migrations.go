package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rjavier441/rjs2"
)

// Migrate creates every table the repo uses.
func Migrate(ctx context.Context, pool *pgxpool.Pool, tables rjs2.Tables) error {
	if err := createRoutesTable(ctx, pool, tables.Routes); err != nil {
		return fmt.Errorf("migrate up %s: %w", tables.Routes, err)
	}
	return nil
}

// DropTables removes every table Migrate creates.
func DropTables(ctx context.Context, pool *pgxpool.Pool, tables rjs2.Tables) error {
	quotedTable := pgx.Identifier{tables.Routes}.Sanitize()
	if _, err := pool.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", quotedTable)); err != nil {
		return fmt.Errorf("migrate down %s: %w", tables.Routes, err)
	}
	return nil
}

func createRoutesTable(ctx context.Context, pool *pgxpool.Pool, tableName string) error {
	quotedTable := pgx.Identifier{tableName}.Sanitize()
	indexLoadedAt := pgx.Identifier{fmt.Sprintf("idx_%s_loaded_at", tableName)}.Sanitize()

	sql := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id UUID PRIMARY KEY,
			root TEXT NOT NULL,
			loaded_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			route_count INTEGER NOT NULL,
			routes JSONB NOT NULL
		);

		CREATE INDEX IF NOT EXISTS %s
		ON %s (loaded_at DESC);
	`,
		quotedTable,
		indexLoadedAt, quotedTable,
	)

	_, err := pool.Exec(ctx, sql)
	if err != nil {
		return fmt.Errorf("create routes table: %w", err)
	}
	return nil
}
