package feed

import (
	"context"
	"fmt"
)

// FetchError is a transport-level failure for one feed: connection,
// TLS, redirect loop, or a non-success HTTP status.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError is a malformed or unrecognized feed document.
type ParseError struct {
	URL string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.URL, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// TimeoutError is a fetch or resolve that ran out of time. It unwraps to
// context.DeadlineExceeded so errors.Is keeps working at call sites.
type TimeoutError struct {
	Op  string
	URL string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s %s: timed out", e.Op, e.URL)
}

func (e *TimeoutError) Unwrap() error { return context.DeadlineExceeded }
