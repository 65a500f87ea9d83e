package tmdb

import (
	"context"
	"errors"
	"fmt"
)

// Common errors
var (
	// ErrNoSession indicates a session-scoped operation was requested without a session id
	ErrNoSession = errors.New("tmdb: no active session")
	// ErrInvalidOperation indicates an operation that cannot be turned into a request target
	ErrInvalidOperation = errors.New("tmdb: invalid operation")
	// ErrInvalidTransition indicates an authentication step was attempted from the wrong state
	ErrInvalidTransition = errors.New("tmdb: invalid authentication transition")
	// ErrEmptyBody indicates the server answered without a response body
	ErrEmptyBody = errors.New("empty response body")
)

// TMDB status codes used by the classification helpers.
// See https://developer.themoviedb.org/docs/errors
const (
	StatusSuccess             = 1
	StatusInvalidAPIKey       = 7
	StatusAuthenticationFail  = 3
	StatusSessionDenied       = 17
	StatusInvalidCredentials  = 30
	StatusInvalidRequestToken = 33
	StatusNotFound            = 34
	StatusItemUpdated         = 12
	StatusItemDeleted         = 13
)

// TransportError reports a request that produced no usable response:
// network failure, timeout, cancellation, rate limiter or circuit breaker
// rejection, or an empty body.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("tmdb %s: transport error: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// DecodeError reports a payload that matched neither the expected response
// shape nor the API error shape.
type DecodeError struct {
	Op  string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("tmdb %s: decode error: %v", e.Op, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// RemoteError represents a well-formed rejection returned by the TMDB API
type RemoteError struct {
	Op         string
	HTTPStatus int
	Code       int
	Message    string
}

// Error implements the error interface
func (e *RemoteError) Error() string {
	if e.Code == 0 {
		return fmt.Sprintf("tmdb %s: API error: HTTP %d", e.Op, e.HTTPStatus)
	}
	return fmt.Sprintf("tmdb %s: API error: status %d: %s", e.Op, e.Code, e.Message)
}

// IsUnauthorized checks if the error is an authentication or permission failure
func (e *RemoteError) IsUnauthorized() bool {
	switch e.Code {
	case StatusAuthenticationFail, StatusInvalidAPIKey, StatusSessionDenied, StatusInvalidRequestToken:
		return true
	}
	return e.HTTPStatus == 401 || e.HTTPStatus == 403
}

// IsInvalidCredentials checks if the username/password pair was rejected
func (e *RemoteError) IsInvalidCredentials() bool {
	return e.Code == StatusInvalidCredentials
}

// IsNotFound checks if the requested resource does not exist
func (e *RemoteError) IsNotFound() bool {
	return e.Code == StatusNotFound || e.HTTPStatus == 404
}

// Message returns a human-readable description of err suitable for
// showing to an end user.
func Message(err error) string {
	if err == nil {
		return ""
	}

	var remoteErr *RemoteError
	if errors.As(err, &remoteErr) {
		switch {
		case remoteErr.IsInvalidCredentials():
			return "Invalid username or password."
		case remoteErr.Message != "":
			return remoteErr.Message
		default:
			return fmt.Sprintf("The movie database rejected the request (HTTP %d).", remoteErr.HTTPStatus)
		}
	}

	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		switch {
		case errors.Is(err, context.Canceled):
			return "The request was cancelled."
		case errors.Is(err, context.DeadlineExceeded):
			return "The request timed out. Check your connection and try again."
		case errors.Is(err, ErrEmptyBody):
			return "The server returned an empty response."
		default:
			return "Could not reach the movie database. Check your connection and try again."
		}
	}

	var decodeErr *DecodeError
	if errors.As(err, &decodeErr) {
		return "The server returned a response that could not be understood."
	}

	switch {
	case errors.Is(err, ErrNoSession):
		return "You are not logged in."
	case errors.Is(err, ErrInvalidTransition):
		return "Login is already in progress or finished."
	case errors.Is(err, ErrInvalidOperation):
		return "The request is missing required information."
	case errors.Is(err, ErrExecutorStopped):
		return "The client is shutting down."
	}

	return err.Error()
}
