package display

import (
	"context"
	"time"

	"github.com/rickgao/polymarket-book/internal/book"
	"github.com/rickgao/polymarket-book/internal/model"
)

// Frame is one rendered sample of every tracked book.
type Frame struct {
	Title     string    // Event title
	Question  string    // Market question, empty when equal to the title
	Status    string    // Connection status line
	UpdatedAt time.Time // When the status line was posted
	SampledAt time.Time
	Books     []Book // Ordered by instrument label
}

// Book is one instrument's view inside a Frame.
type Book struct {
	Instrument model.Instrument
	book.View
}

// Sink consumes frames. Render is called from the sampler goroutine only.
type Sink interface {
	Render(ctx context.Context, f Frame) error
}

// SinkFunc is a function adapter for Sink.
type SinkFunc func(ctx context.Context, f Frame) error

func (fn SinkFunc) Render(ctx context.Context, f Frame) error {
	return fn(ctx, f)
}
