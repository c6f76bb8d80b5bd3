// Package display samples the published order books and renders them.
//
// The Sampler wakes on a refresh tick or on the router's changed signal,
// builds a Frame from the latest book.Snapshot and status line, and hands
// it to every Sink. Console is the terminal sink; the archive writer is
// another.
package display
