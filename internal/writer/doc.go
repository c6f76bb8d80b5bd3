// Package writer implements the top-of-book archive sink.
//
// The Archive receives display frames, turns each book into one row
// (best bid/ask and the size resting at each) and appends batches to
// PostgreSQL with COPY. Rows carry a per-process session id. Writes are
// append-only and nothing is ever read back.
package writer
