package sqlite_test

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

	routes := []rjs2.Route{
		{Kind: rjs2.KindStaticLeaf, MountPath: "/", SourcePath: "index.html", Pre: []string{"csrfProtection"}, Req: []string{"ejsRenderAndSendTemplate", "terminate"}},
		{Kind: rjs2.KindMiddlewareApp, MountPath: "/api", SourcePath: "api"},
	}
	snap := snapshotAt("/srv/public", time.Now(), routes...)

	require.NoError(t, repo.Save(ctx, snap))

	got, err := repo.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, snap.ID, got.ID)
	assert.Equal(t, "/srv/public", got.Root)
	assert.True(t, snap.LoadedAt.Equal(got.LoadedAt), "loaded_at round trip: %s vs %s", snap.LoadedAt, got.LoadedAt)
	assert.Equal(t, routes, got.Routes)
}

func TestRepo_Save_NoRoutes(t *testing.T) {
	ctx := context.Background()
	repo := setupTestRepo(t)

	require.NoError(t, repo.Save(ctx, snapshotAt("/empty", time.Now())))

	got, err := repo.Latest(ctx)
	require.NoError(t, err)
	assert.Empty(t, got.Routes)

	list, err := repo.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 0, list[0].RouteCount)
}

func TestRepo_Save_DuplicateID(t *testing.T) {
	ctx := context.Background()
	repo := setupTestRepo(t)

	snap := snapshotAt("/a", time.Now())
	require.NoError(t, repo.Save(ctx, snap))
	assert.Error(t, repo.Save(ctx, snap))
}

func TestRepo_Latest_NewestWins(t *testing.T) {
	ctx := context.Background()
	repo := setupTestRepo(t)

	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	older := snapshotAt("/old", base)
	newer := snapshotAt("/new", base.Add(1500*time.Millisecond))

	// insertion order must not matter
	require.NoError(t, repo.Save(ctx, newer))
	require.NoError(t, repo.Save(ctx, older))

	got, err := repo.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, newer.ID, got.ID)
}

func TestRepo_List(t *testing.T) {
	ctx := context.Background()
	repo := setupTestRepo(t)

	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	route := rjs2.Route{Kind: rjs2.KindStaticLeaf, MountPath: "/", SourcePath: "index.html"}
	var ids []uuid.UUID
	for i := range 3 {
		routes := make([]rjs2.Route, i+1)
		for j := range routes {
			routes[j] = route
		}
		s := snapshotAt("/root", base.Add(time.Duration(i)*time.Minute), routes...)
		require.NoError(t, repo.Save(ctx, s))
		ids = append(ids, s.ID)
	}

	tests := []struct {
		name    string
		limit   int
		wantIDs []uuid.UUID
	}{
		{name: "all newest first", limit: 10, wantIDs: []uuid.UUID{ids[2], ids[1], ids[0]}},
		{name: "limited", limit: 2, wantIDs: []uuid.UUID{ids[2], ids[1]}},
		{name: "zero treated as one", limit: 0, wantIDs: []uuid.UUID{ids[2]}},
		{name: "negative treated as one", limit: -5, wantIDs: []uuid.UUID{ids[2]}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, err := repo.List(ctx, tt.limit)
			require.NoError(t, err)

			got := make([]uuid.UUID, len(list))
			for i, s := range list {
				got[i] = s.ID
			}
			assert.Equal(t, tt.wantIDs, got)
		})
	}

	list, err := repo.List(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, list[0].RouteCount)
	assert.Equal(t, 1, list[2].RouteCount)
	assert.Equal(t, "/root", list[0].Root)
}

func TestRepo_Prune(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		keep        int
		wantRemoved int64
		wantLeft    int
	}{
		{name: "keeps newest", keep: 2, wantRemoved: 2, wantLeft: 2},
		{name: "keep more than stored", keep: 10, wantRemoved: 0, wantLeft: 4},
		{name: "keep zero", keep: 0, wantRemoved: 4, wantLeft: 0},
		{name: "negative treated as zero", keep: -1, wantRemoved: 4, wantLeft: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := setupTestRepo(t)

			var newest rjs2.Snapshot
			for i := range 4 {
				newest = snapshotAt("/root", base.Add(time.Duration(i)*time.Minute))
				require.NoError(t, repo.Save(ctx, newest))
			}

			removed, err := repo.Prune(ctx, tt.keep)
			require.NoError(t, err)
			assert.Equal(t, tt.wantRemoved, removed)

			list, err := repo.List(ctx, 10)
			require.NoError(t, err)
			assert.Len(t, list, tt.wantLeft)
			if tt.wantLeft > 0 {
				assert.Equal(t, newest.ID, list[0].ID)
			}
		})
	}
}
