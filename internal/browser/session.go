// Package browser provides page sessions used by the scraper: a headless
// Chrome session driven by chromedp and a static session that fetches HTML
// over HTTP and queries it with goquery.
package browser

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrWaitTimeout is returned by WaitFor when the selector never matched.
	ErrWaitTimeout = errors.New("timed out waiting for element")

	// ErrElementNotFound is returned when a nested element is missing.
	ErrElementNotFound = errors.New("element not found")
)

// Session is one page-loading session. A Session belongs to a single scrape
// call and must be closed by it.
type Session interface {
	// Navigate loads url into the session.
	Navigate(ctx context.Context, url string) error

	// WaitFor blocks until selector matches at least one element or
	// timeout elapses, in which case the error wraps ErrWaitTimeout.
	WaitFor(ctx context.Context, selector string, timeout time.Duration) error

	// FindAll returns every element matching selector. No match is not an error.
	FindAll(ctx context.Context, selector string) ([]Element, error)

	// Close releases the session and anything it started.
	Close() error
}

// Element is an element located in a loaded page.
type Element interface {
	// Text returns the trimmed text of the first descendant matching
	// selector, or an error wrapping ErrElementNotFound.
	Text(ctx context.Context, selector string) (string, error)
}

// Factory opens a new, unshared Session.
type Factory func(ctx context.Context) (Session, error)
