// Package book implements the per-instrument order book store.
//
// The Store has exactly one writer (the router goroutine) and performs no
// locking. Concurrent readers work on a frozen Snapshot instead of the
// Store itself. Side maps are built fresh on every snapshot and never
// mutated afterwards, so freezing only copies the small State headers.
//
// Best prices follow two independent feeds:
//   - book snapshots recompute them from the replaced side (max bid, min ask)
//   - price_change deltas overwrite them without touching levels
//
// An empty replaced side leaves the previous best price in place unless
// Options.ClearBestOnEmpty is set.
package book
