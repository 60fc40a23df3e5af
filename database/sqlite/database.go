package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rjavier441/rjs2"

	_ "modernc.org/sqlite" // SQLite driver
)

// Database provides SQLite database operations.
type Database struct {
	db     *sql.DB
	tables rjs2.Tables
}

// Connect opens a SQLite database. The connection is lazy; call Ping to
// verify it. Tables should be validated before calling Connect.
func Connect(ctx context.Context, dsn string, tables rjs2.Tables) (*Database, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect sqlite: %w", err)
	}
	// every connection to ":memory:" is its own database
	db.SetMaxOpenConns(1)

	return &Database{
		db:     db,
		tables: tables,
	}, nil
}

// Ping verifies the database connection is alive.
func (d *Database) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// Migrate runs database migrations to create required tables.
func (d *Database) Migrate(ctx context.Context) error {
	if err := Migrate(ctx, d.db, d.tables); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Validate checks that the database schema matches expected structure.
func (d *Database) Validate(ctx context.Context) error {
	return ValidateSchema(ctx, d.db, d.tables)
}

// GetRepo returns the ManifestRepo for database operations.
func (d *Database) GetRepo() rjs2.ManifestRepo {
	return &repo{db: d.db, tableName: d.tables.Routes}
}

// Close closes the database connection.
func (d *Database) Close() error {
	return d.db.Close()
}
