package api

import (
	"errors"
	"fmt"
)

// ErrNoSession is wrapped by AuthError when no credential is held.
var ErrNoSession = errors.New("not logged in")

// ErrSessionExpired is wrapped by AuthError when the held token has expired.
var ErrSessionExpired = errors.New("session expired")

// AuthError indicates invalid credentials or an expired/absent session.
// Callers treat it as a forced logout.
type AuthError struct {
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	if e.Message != "" {
		return "auth: " + e.Message
	}
	if e.Err != nil {
		return fmt.Sprintf("auth: %v", e.Err)
	}
	return "auth: unauthorized"
}

func (e *AuthError) Unwrap() error { return e.Err }

// FetchError indicates a catalog, stats or user refresh failed.
type FetchError struct {
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *FetchError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s (HTTP %d): %s", e.Op, e.StatusCode, msg)
	}
	return fmt.Sprintf("fetch %s: %s", e.Op, msg)
}

func (e *FetchError) Unwrap() error { return e.Err }

// SubmissionError indicates a progress write (submit, reset, register) failed.
type SubmissionError struct {
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *SubmissionError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s failed (HTTP %d): %s", e.Op, e.StatusCode, msg)
	}
	return fmt.Sprintf("%s failed: %s", e.Op, msg)
}

func (e *SubmissionError) Unwrap() error { return e.Err }

// InvalidPayloadError indicates a response body that does not match the
// expected wire contract.
type InvalidPayloadError struct {
	Schema string
	Err    error
}

func (e *InvalidPayloadError) Error() string {
	return fmt.Sprintf("invalid %s payload: %v", e.Schema, e.Err)
}

func (e *InvalidPayloadError) Unwrap() error { return e.Err }

// IsAuth reports whether err is (or wraps) an AuthError.
func IsAuth(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}

// Message returns the human readable part of a client error, suitable for
// showing next to the view that triggered it.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var (
		ae *AuthError
		fe *FetchError
		se *SubmissionError
	)
	switch {
	case errors.As(err, &ae):
		if ae.Message != "" {
			return ae.Message
		}
		if ae.Err != nil {
			return ae.Err.Error()
		}
	case errors.As(err, &fe):
		if fe.Message != "" {
			return fe.Message
		}
	case errors.As(err, &se):
		if se.Message != "" {
			return se.Message
		}
	}
	return err.Error()
}
