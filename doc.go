// Package sheetcache is a read-through cache for slow, rate-limited tabular
// stores. Each cached resource is registered once with Wrap, which returns a
// Loader that serves the cached value while it is fresh and otherwise calls
// the producer.
//
// Components:
//   - Service: owns every entry, the in-flight flights and the Bus.
//   - Bus: watch-key epochs over a genstore.GenStore. Bumping a key marks
//     every entry that watches it stale on its next access.
//   - Provider + Codec[V] (optional): mirror of successful fills, consulted
//     only as a stale-if-error fallback when the process has no value yet.
//
// Freshness: an entry is served without calling the producer iff it is younger
// than its TTL and the signature of its watch keys (sorted "key=epoch" pairs)
// still equals the one captured when it was filled.
//
// Concurrent misses for one key share a single producer call. The producer
// runs detached from the caller's context; a caller whose context ends stops
// waiting but the call completes and fills the entry.
//
// Writers bump watch keys strictly after the backing store acknowledged the
// write:
//
//	if err := client.WriteRange(ctx, rng, values, sheets.Raw); err != nil {
//		return err // no bump: cached data still matches the store
//	}
//	_ = svc.Bus().Bump(ctx, "sheets:orders")
package sheetcache
