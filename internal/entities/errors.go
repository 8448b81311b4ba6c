package entities

import "fmt"

// Error taxonomy shared by usecases and the HTTP layer. Handlers map one
// error kind to one status code; messages are short and user-facing.

type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// AuthError covers both missing/invalid sessions (401) and disabled
// accounts (403, Forbidden set).
type AuthError struct {
	Msg       string
	Forbidden bool
}

func (e *AuthError) Error() string { return e.Msg }

type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string { return e.Msg }

// UpstreamError wraps a failure from the row source or the outbound
// webhook. Status carries the upstream HTTP status when there was one.
type UpstreamError struct {
	Msg    string
	Status int
	Err    error
}

func (e *UpstreamError) Error() string { return e.Msg }

func (e *UpstreamError) Unwrap() error { return e.Err }

type RateLimitError struct {
	Msg string
}

func (e *RateLimitError) Error() string { return e.Msg }

type NotFoundError struct {
	Msg string
}

func (e *NotFoundError) Error() string { return e.Msg }
