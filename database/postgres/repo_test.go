package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rjavier441/rjs2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshotAt(root string, at time.Time, routes ...rjs2.Route) rjs2.Snapshot {
	return rjs2.Snapshot{
		ID:       uuid.New(),
		Root:     root,
		LoadedAt: at.UTC(),
		Routes:   routes,
	}
}

func TestRepo_Latest_Empty(t *testing.T) {
	repo := setupTestRepo(t)

	_, err := repo.Latest(context.Background())
	assert.ErrorIs(t, err, rjs2.ErrNotFound)
}

func TestRepo_SaveLatest(t *testing.T) {
	ctx := context.Background()
	repo := setupTestRepo(t)

	m := rjs2.Manifest{
		Root: "/srv/public",
		Routes: []rjs2.Route{
			{Kind: rjs2.KindStaticLeaf, MountPath: "/", SourcePath: "index.html", Pre: []string{"csrfProtection"}, Req: []string{"ejsRenderAndSendTemplate", "terminate"}},
			{Kind: rjs2.KindMiddlewareApp, MountPath: "/files", SourcePath: "files"},
		},
	}
	snap := rjs2.NewSnapshot(m)

	require.NoError(t, repo.Save(ctx, snap))

	got, err := repo.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, snap.ID, got.ID)
	assert.Equal(t, m.Root, got.Root)
	assert.True(t, snap.LoadedAt.Equal(got.LoadedAt), "loaded_at round trip: %s vs %s", snap.LoadedAt, got.LoadedAt)
	assert.Equal(t, m.Routes, got.Routes)
}

func TestRepo_Save_DuplicateID(t *testing.T) {
	ctx := context.Background()
	repo := setupTestRepo(t)

	snap := snapshotAt("/a", time.Now())
	require.NoError(t, repo.Save(ctx, snap))
	assert.Error(t, repo.Save(ctx, snap))
}

func TestRepo_List(t *testing.T) {
	ctx := context.Background()
	repo := setupTestRepo(t)

	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	route := rjs2.Route{Kind: rjs2.KindStaticLeaf, MountPath: "/", SourcePath: "index.html"}

	older := snapshotAt("/root", base, route)
	newer := snapshotAt("/root", base.Add(time.Minute), route, route)
	require.NoError(t, repo.Save(ctx, newer))
	require.NoError(t, repo.Save(ctx, older))

	list, err := repo.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID)
	assert.Equal(t, 2, list[0].RouteCount)
	assert.Equal(t, older.ID, list[1].ID)
	assert.True(t, base.Equal(list[1].LoadedAt))

	list, err = repo.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, list, 1, "limit below 1 is treated as 1")
	assert.Equal(t, newer.ID, list[0].ID)
}

func TestRepo_Prune(t *testing.T) {
	ctx := context.Background()
	repo := setupTestRepo(t)

	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	var saved []rjs2.Snapshot
	for i := range 3 {
		s := snapshotAt("/root", base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, repo.Save(ctx, s))
		saved = append(saved, s)
	}

	removed, err := repo.Prune(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	latest, err := repo.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, saved[2].ID, latest.ID)

	removed, err = repo.Prune(ctx, -3)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	_, err = repo.Latest(ctx)
	assert.ErrorIs(t, err, rjs2.ErrNotFound)
}
