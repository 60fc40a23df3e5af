package rjs2

import "context"

// ManifestRepo persists route manifest snapshots.
//
// All methods accept a context for cancellation and timeout control.
type ManifestRepo interface {
	// Save stores a snapshot and all of its routes.
	Save(ctx context.Context, s Snapshot) error

	// Latest returns the most recently loaded snapshot.
	//
	// Returns ErrNotFound when nothing was saved yet.
	Latest(ctx context.Context) (Snapshot, error)

	// List returns summaries of the newest snapshots, newest first.
	// A limit below 1 is treated as 1.
	List(ctx context.Context, limit int) ([]SnapshotSummary, error)

	// Prune deletes all but the newest keep snapshots and returns how many
	// were removed. A negative keep is treated as 0.
	Prune(ctx context.Context, keep int) (int64, error)
}
