package sheetcache

import (
	"context"

	gen "github.com/unkn0wn-root/sheetcache/genstore"
	"github.com/unkn0wn-root/sheetcache/internal/util"
)

// Bus is the invalidation bus: a set of named watch keys, each with an epoch
// that only ever grows.
type Bus struct {
	gen   gen.GenStore
	log   Logger
	hooks Hooks
}

// Bump increments every named key once (duplicates and blanks are ignored).
// A key that fails does not stop the others; failures come back as *BumpError.
func (b *Bus) Bump(ctx context.Context, keys ...string) error {
	var be *BumpError
	for _, k := range util.NormalizeKeys(keys) {
		e, err := b.gen.Bump(ctx, k)
		if err != nil {
			b.hooks.BumpError(k, err)
			b.log.Error("watch key bump failed", Fields{"watchKey": k, "err": err})
			if be == nil {
				be = &BumpError{Errs: make(map[string]error)}
			}
			be.Errs[k] = err
			continue
		}
		b.hooks.Bumped(k, e)
		b.log.Debug("watch key bumped", Fields{"watchKey": k, "epoch": e})
	}
	if be != nil {
		return be
	}
	return nil
}

// Epoch returns the current epoch of key; never bumped => 0.
func (b *Bus) Epoch(ctx context.Context, key string) (uint64, error) {
	return b.gen.Snapshot(ctx, key)
}

// Signature renders the current epochs of keys as sorted "key=epoch" pairs
// joined by ";". No keys => "".
func (b *Bus) Signature(ctx context.Context, keys []string) (string, error) {
	return b.signature(ctx, util.NormalizeKeys(keys))
}

// signature expects keys already normalized.
func (b *Bus) signature(ctx context.Context, sorted []string) (string, error) {
	if len(sorted) == 0 {
		return "", nil
	}
	epochs, err := b.gen.SnapshotMany(ctx, sorted)
	if err != nil {
		return "", err
	}
	return util.Signature(sorted, epochs), nil
}
