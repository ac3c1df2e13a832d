package api

import (
	"errors"
	"fmt"
)

// ValidationError reports a payload rule violation detected before any
// network call. It never changes step or session state.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// NewValidationError builds a ValidationError for the given field.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// NetworkError reports that a backend collaborator was unreachable or
// answered with a failure. Message is human-readable and suitable for
// surfacing directly; submissions that fail with a NetworkError are
// retryable by the user.
type NetworkError struct {
	// StatusCode is the HTTP status, or 0 when the collaborator was
	// unreachable.
	StatusCode int
	Message    string
	Err        error
}

func (e *NetworkError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("request failed with status %d", e.StatusCode)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// IsNetworkError reports whether err is (or wraps) a NetworkError.
func IsNetworkError(err error) bool {
	var n *NetworkError
	return errors.As(err, &n)
}

// SessionError reports a missing or rejected auth token. It is surfaced
// distinctly from NetworkError so consumers can route to re-login instead
// of retrying the step.
type SessionError struct {
	Message string
}

func (e *SessionError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "session is not authenticated"
}

// NewSessionError builds a SessionError with the given message.
func NewSessionError(message string) error {
	return &SessionError{Message: message}
}

// IsSessionError reports whether err is (or wraps) a SessionError.
func IsSessionError(err error) bool {
	var s *SessionError
	return errors.As(err, &s)
}

// Reason converts an error into the human-readable message stored on a
// failed step state. Typed errors already carry display-ready messages;
// anything else falls through to Error().
func Reason(err error) string {
	if err == nil {
		return ""
	}
	var n *NetworkError
	if errors.As(err, &n) {
		return n.Error()
	}
	var s *SessionError
	if errors.As(err, &s) {
		return s.Error()
	}
	return err.Error()
}
