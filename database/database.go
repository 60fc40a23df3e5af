package database

import (
	"context"
	"fmt"

	"github.com/rjavier441/rjs2"
	"github.com/rjavier441/rjs2/database/postgres"
	"github.com/rjavier441/rjs2/database/sqlite"
)

// Database is a connected manifest backend.
type Database interface {
	// Ping verifies the connection is alive.
	Ping(ctx context.Context) error
	// Migrate creates the tables the repo needs. It is idempotent.
	Migrate(ctx context.Context) error
	// Validate checks the existing schema matches what the repo expects.
	Validate(ctx context.Context) error
	// GetRepo returns the snapshot repository.
	GetRepo() rjs2.ManifestRepo
	// Close releases the connection.
	Close() error
}

// Config holds the configuration for connecting to a manifest backend.
type Config struct {
	// Type specifies the database type: "sqlite" or "postgres"
	Type string `mapstructure:"type" validate:"required,oneof=sqlite postgres"`
	// DSN is the data source name (connection string)
	DSN string `mapstructure:"dsn" validate:"required"`
	// Tables holds the table names
	Tables rjs2.Tables `mapstructure:"tables"`
}

// Connect opens the configured backend. Tables are validated first.
func Connect(ctx context.Context, cfg Config) (Database, error) {
	if err := cfg.Tables.Validate(); err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	switch cfg.Type {
	case "sqlite":
		return sqlite.Connect(ctx, cfg.DSN, cfg.Tables)
	case "postgres":
		return postgres.Connect(ctx, cfg.DSN, cfg.Tables)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Type)
	}
}

// Open connects, migrates and validates in one step. The caller closes the
// returned Database.
func Open(ctx context.Context, cfg Config) (Database, error) {
	db, err := Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if err = db.Ping(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", cfg.Type, err)
	}

	if err = db.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate %s: %w", cfg.Type, err)
	}

	if err = db.Validate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("validate %s schema: %w", cfg.Type, err)
	}

	return db, nil
}
