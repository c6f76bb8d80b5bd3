// Package model defines shared data types used across the order-book watcher.
//
// Conventions:
//   - Token IDs are opaque strings issued by the CLOB; never parsed
//   - Catalog types (Event, Market) are decoupled from the Gamma wire format
//   - Prices and sizes live in the book package as decimals, not here
package model
