package api

import (
	"iter"
	"time"
)

const (
	// DefaultPageSize is the page size used by the GetAll helpers.
	DefaultPageSize = 100

	// DefaultPaginationTimeout bounds a full GetAll walk when the caller's
	// context has no deadline.
	DefaultPaginationTimeout = 10 * time.Minute
)

// paginate yields items page by page until a page comes back shorter than
// pageSize. A fetch error is yielded once and ends the walk.
func paginate[T any](pageSize, offset int, fetch func(limit, offset int) ([]T, error)) iter.Seq2[T, error] {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return func(yield func(T, error) bool) {
		for {
			page, err := fetch(pageSize, offset)
			if err != nil {
				var zero T
				yield(zero, err)
				return
			}
			for _, item := range page {
				if !yield(item, nil) {
					return
				}
			}
			if len(page) < pageSize {
				return
			}
			offset += pageSize
		}
	}
}
