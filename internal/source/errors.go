package source

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// StatusError is a non-success HTTP response from a board.
type StatusError struct {
	Source string
	Code   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s status %d", e.Source, e.Code)
}

// ParseError is a markup/JSON shape mismatch; What names the selector or field
// that came up empty so the adapter can be fixed later.
type ParseError struct {
	Source string
	What   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s parse mismatch: %s", e.Source, e.What)
}

// Retryable reports whether a fetch error is worth one more attempt.
// 4xx responses (blocked, throttled, bad auth) are not: the board said no.
// Timeouts, connection errors and 5xx are transient.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code >= 500
	}
	var pe *ParseError
	if errors.As(err, &pe) {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	if errors.As(err, &ne) {
		return true
	}
	// unknown network-ish failure: allow the single retry
	return true
}
