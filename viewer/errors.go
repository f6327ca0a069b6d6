package viewer

import (
	"errors"
	"fmt"
)

// ErrSessionClosed is returned when a page is requested from a session that
// has already been closed.
var ErrSessionClosed = errors.New("document session is closed")

// LoadError means a document source could not be opened at all. It is fatal
// to the session: the caller surfaces it and must not retry automatically.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("unable to load document %q: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// RenderError means a single page failed to draw. It is isolated to that
// page; the rest of the document stays usable and the page may be retried
// the next time it scrolls into view.
type RenderError struct {
	Page int
	Err  error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("unable to render page %d: %v", e.Page, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}
