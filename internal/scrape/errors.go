package scrape

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// TransientError marks a failure worth retrying: navigation timeouts,
// element-wait timeouts, network flakes.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// ParseError marks a page whose structure did not match expectations. It is
// retried too since a half-rendered page looks the same as a changed one.
type ParseError struct {
	Category string
	Err      error
}

func (e *ParseError) Error() string {
	if e.Category == "" {
		return fmt.Sprintf("parse: %v", e.Err)
	}
	return fmt.Sprintf("parse %s: %v", e.Category, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Transient wraps err as a TransientError.
func Transient(op string, err error) error {
	return &TransientError{Op: op, Err: err}
}

// Classify maps an attempt error to the failure status it represents.
func Classify(err error) Status {
	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		return StatusParseErr
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return StatusTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return StatusTimeout
	}
	return StatusErr
}

// Retryable reports whether another attempt may help. Context cancellation
// means the whole run is shutting down, so it is never retried.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	return true
}
