package source

import (
	"context"
	"errors"
)

// ErrElementMissing is returned when the comment element is not on the page
var ErrElementMissing = errors.New("comment element not found")

// PageSource yields the current text of the comment feed
type PageSource interface {
	// Text returns the feed as newline separated lines
	Text(ctx context.Context) (string, error)

	// Reset drops any live session so the next Text starts fresh
	Reset()

	// Close releases the source
	Close() error
}
