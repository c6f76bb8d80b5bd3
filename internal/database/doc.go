// Package database provides the PostgreSQL connection pool used by the
// optional top-of-book archive.
//
// The archive is write-only: rows are appended and never read back, so no
// state survives a restart through this package.
package database
