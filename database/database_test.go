package database_test

import (
	"context"
	"testing"

	"github.com/rjavier441/rjs2"
	"github.com/rjavier441/rjs2/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helpers

func newTestConfig(tableName string) database.Config {
	return database.Config{
		Type:   "sqlite",
		DSN:    ":memory:",
		Tables: rjs2.Tables{Routes: tableName},
	}
}

func setupTestDB(t *testing.T, tableName string) database.Database {
	t.Helper()
	ctx := context.Background()

	db, err := database.Connect(ctx, newTestConfig(tableName))
	require.NoError(t, err)

	t.Cleanup(func() { _ = db.Close() })

	return db
}

func setupTestDBWithMigration(t *testing.T, tableName string) database.Database {
	t.Helper()
	ctx := context.Background()

	db := setupTestDB(t, tableName)

	err := db.Migrate(ctx)
	require.NoError(t, err)

	return db
}

func testManifest() rjs2.Manifest {
	return rjs2.Manifest{
		Root: "/srv/public",
		Routes: []rjs2.Route{
			{Kind: rjs2.KindStaticLeaf, MountPath: "/", SourcePath: "index.html"},
			{Kind: rjs2.KindMiddlewareApp, MountPath: "/api", SourcePath: "api"},
		},
	}
}

// Tests for Connect routing logic

func TestConnect_SQLite(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	db := setupTestDB(t, "test_routes")

	err := db.Ping(ctx)
	assert.NoError(t, err)
}

func TestConnect_InvalidType(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	cfg := database.Config{
		Type:   "invalid",
		DSN:    "whatever",
		Tables: rjs2.Tables{Routes: "test_routes"},
	}

	_, err := database.Connect(ctx, cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database type")
}

func TestConnect_EmptyType(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	cfg := database.Config{
		Type:   "",
		DSN:    ":memory:",
		Tables: rjs2.Tables{Routes: "test_routes"},
	}

	_, err := database.Connect(ctx, cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database type")
}

func TestConnect_InvalidTables(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	cfg := database.Config{
		Type:   "sqlite",
		DSN:    ":memory:",
		Tables: rjs2.Tables{Routes: "Bad-Name"},
	}

	_, err := database.Connect(ctx, cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid routes table name")
}

// Tests for Database interface methods

func TestDatabase_Migrate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	db := setupTestDB(t, "migrate_test")

	err := db.Migrate(ctx)
	require.NoError(t, err)

	repo := db.GetRepo()
	require.NotNil(t, repo)

	_, err = repo.List(ctx, 1)
	assert.NoError(t, err)
}

func TestDatabase_Migrate_Idempotent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	db := setupTestDB(t, "migrate_idem_test")

	err := db.Migrate(ctx)
	require.NoError(t, err)

	err = db.Migrate(ctx)
	assert.NoError(t, err, "migrate should be idempotent")
}

func TestDatabase_Validate_BeforeMigration(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	db := setupTestDB(t, "validate_before_test")

	err := db.Validate(ctx)
	assert.Error(t, err, "validate should fail without tables")
}

func TestDatabase_Validate_AfterMigration(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	db := setupTestDBWithMigration(t, "validate_after_test")

	err := db.Validate(ctx)
	assert.NoError(t, err, "validate should pass after migration")
}

func TestDatabase_GetRepo(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	db := setupTestDBWithMigration(t, "getrepo_test")

	repo := db.GetRepo()
	require.NotNil(t, repo)

	snap := rjs2.NewSnapshot(testManifest())
	require.NoError(t, repo.Save(ctx, snap))

	got, err := repo.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, snap.ID, got.ID)
	assert.Equal(t, snap.Routes, got.Routes)
}

func TestDatabase_Close(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	cfg := newTestConfig("close_test")
	db, err := database.Connect(ctx, cfg)
	require.NoError(t, err)

	err = db.Close()
	assert.NoError(t, err)

	err = db.Ping(ctx)
	assert.Error(t, err, "ping should fail after close")
}

func TestOpen(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	db, err := database.Open(ctx, newTestConfig("open_test"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	assert.NoError(t, db.Validate(ctx))

	_, err = db.GetRepo().Latest(ctx)
	assert.ErrorIs(t, err, rjs2.ErrNotFound)
}

func TestOpen_UnsupportedType(t *testing.T) {
	t.Parallel()

	_, err := database.Open(context.Background(), database.Config{
		Type:   "mysql",
		DSN:    "x",
		Tables: rjs2.Tables{Routes: "r"},
	})
	assert.Error(t, err)
}

// Note: Postgres-specific tests are in database/postgres package.
