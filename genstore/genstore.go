// Package genstore holds the watch-key epoch counters behind the invalidation
// bus. Epochs are monotonically non-decreasing and are never removed: a pruned
// counter would fall back to 0 and could re-validate a stale signature.
package genstore

import "context"

// GenStore abstracts where epochs live. LocalGenStore keeps them in-process;
// RedisGenStore shares them between every process that points at the same
// Redis, so one instance's write invalidates the others' caches.
type GenStore interface {
	// Snapshot returns the current epoch; missing => 0.
	Snapshot(ctx context.Context, key string) (uint64, error)
	// SnapshotMany returns epochs for many keys; missing => 0.
	SnapshotMany(ctx context.Context, keys []string) (map[string]uint64, error)
	// Bump atomically increments and returns the new epoch (1 on first bump).
	Bump(ctx context.Context, key string) (uint64, error)
	// Close releases resources (no-op ok).
	Close(context.Context) error
}
