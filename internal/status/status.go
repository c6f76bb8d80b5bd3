// Package status holds the process-wide connection status line.
//
// The Board is written by the session (state transitions) and the router
// (applied mutations) and read by display sinks. Writes replace the whole
// value; readers never block and always see the latest write.
package status

import (
	"sync/atomic"
	"time"
)

// Line is one status message with the time it was posted.
type Line struct {
	Text     string
	PostedAt time.Time
}

// Board is a last-writer-wins status holder safe for concurrent use.
type Board struct {
	v   atomic.Pointer[Line]
	now func() time.Time
}

// NewBoard creates a board showing initial.
func NewBoard(initial string) *Board {
	b := &Board{now: time.Now}
	b.Set(initial)
	return b
}

// Set replaces the current line.
func (b *Board) Set(text string) {
	now := b.now
	if now == nil {
		now = time.Now
	}
	b.v.Store(&Line{Text: text, PostedAt: now()})
}

// Get returns the current line. The zero Line is returned for an unset board.
func (b *Board) Get() Line {
	if l := b.v.Load(); l != nil {
		return *l
	}
	return Line{}
}

// String returns the current text.
func (b *Board) String() string {
	return b.Get().Text
}

// Stamp formats t the way status lines show timestamps (RFC 3339, UTC,
// microseconds).
func Stamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000000Z07:00")
}
