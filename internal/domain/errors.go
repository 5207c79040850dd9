package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested record was not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a create collided with an existing record.
	ErrAlreadyExists = errors.New("already exists")
	// ErrUnauthorized indicates a missing, expired, or mismatched session token.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNoChange indicates an update payload identical to the stored state.
	ErrNoChange = errors.New("no change")
	// ErrCheckedOut indicates the basket has already been paid for.
	ErrCheckedOut = errors.New("already checked out")
)

// ValidationError names the first field that failed validation.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return "invalid " + e.Field
}

// UpstreamError reports a payment or email gateway failure. Retryable is set
// for transport timeouts, as opposed to a decline reported by the gateway.
type UpstreamError struct {
	Gateway   string
	Status    int
	Retryable bool
	Err       error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s gateway: %v", e.Gateway, e.Err)
	}
	return fmt.Sprintf("%s gateway returned status %d", e.Gateway, e.Status)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
