package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
// Implementing this interface keeps the handler-level error switch closed
// while letting new error kinds carry their own status.
type HTTPError interface {
	error
	StatusCode() int
}

// Sentinel errors - use with errors.Is()
var (
	// ErrMissingCredential means no backend API key is configured. It is
	// reported before any network call is attempted.
	ErrMissingCredential = errors.New("no API key configured")

	// ErrNotFound indicates a resource was not found
	ErrNotFound = errors.New("not found")

	// ErrValidation indicates invalid input
	ErrValidation = errors.New("validation failed")

	// ErrFetchInProgress means a full cache fetch is already running.
	// Callers treat it as "decline to start", never as a failure to surface.
	ErrFetchInProgress = errors.New("fetch already in progress")
)

// RemoteError wraps a failed call to the evaluation backend. Status is the
// upstream HTTP status, or 0 for transport-level failures.
type RemoteError struct {
	Op     string // remote operation, e.g. "list config groups"
	Status int
	Err    error
}

func (e *RemoteError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: backend returned %d", e.Op, e.Status)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// StatusCode implements HTTPError. Upstream failures surface as 502 so the
// dashboard can distinguish "backend down" from its own errors.
func (e *RemoteError) StatusCode() int { return http.StatusBadGateway }

// ValidationError carries a field-level validation message.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string   { return e.Message }
func (e *ValidationError) StatusCode() int { return http.StatusBadRequest }

// Is allows errors.Is() to match against ErrValidation
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NotFoundError indicates a resource was not found upstream or locally.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string   { return e.Message }
func (e *NotFoundError) StatusCode() int { return http.StatusNotFound }

// Is allows errors.Is() to match against ErrNotFound
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}
