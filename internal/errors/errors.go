// Package errors provides the closed error taxonomy of the service. Use cases and
// upstream clients return these errors, and only the HTTP layer turns them into
// status codes and response bodies.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is the stable, client-visible error code carried in every error response.
type Code string

// The closed set of error codes. Adding a code requires adding its status to statusByCode.
const (
	CodeInternalServerError Code = "InternalServerError"
	CodeInvalidParameter    Code = "InvalidParameter"
	CodeMissingParameter    Code = "MissingParameter"
	CodeRouteNotFound       Code = "RouteNotFound"
	CodeBadGateway          Code = "BadGateway"
	CodeBadRequest          Code = "BadRequest"
	CodeConflict            Code = "Conflict"
	CodePropertyNotFound    Code = "PropertyNotFound"
	CodeInvalidTimestamp    Code = "InvalidTimestamp"
	CodeInvalidLogin        Code = "InvalidLogin"
	CodeInvalidRefreshToken Code = "InvalidRefreshToken"
	CodeInvalidBearerToken  Code = "InvalidBearerToken"
	CodeInvalidClaim        Code = "InvalidClaim"
	CodeLoginRequired       Code = "LoginRequired"
	CodeItemNotFound        Code = "ItemNotFound"
)

var statusByCode = map[Code]int{
	CodeInternalServerError: http.StatusInternalServerError,
	CodeInvalidParameter:    http.StatusBadRequest,
	CodeMissingParameter:    http.StatusBadRequest,
	CodeRouteNotFound:       http.StatusNotFound,
	CodeBadGateway:          http.StatusBadGateway,
	CodeBadRequest:          http.StatusBadRequest,
	CodeConflict:            http.StatusConflict,
	CodePropertyNotFound:    http.StatusNotFound,
	CodeInvalidTimestamp:    http.StatusBadRequest,
	CodeInvalidLogin:        http.StatusUnauthorized,
	CodeInvalidRefreshToken: http.StatusUnauthorized,
	CodeInvalidBearerToken:  http.StatusUnauthorized,
	CodeInvalidClaim:        http.StatusForbidden,
	CodeLoginRequired:       http.StatusUnauthorized,
	CodeItemNotFound:        http.StatusNotFound,
}

// Codes returns every member of the closed code set.
func Codes() []Code {
	codes := make([]Code, 0, len(statusByCode))
	for code := range statusByCode {
		codes = append(codes, code)
	}
	return codes
}

// StatusOf returns the HTTP status for code. Unknown codes map to 500.
func StatusOf(code Code) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// Standard domain errors that can be used across all domain modules.
var (
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a conflict with existing data.
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput indicates a request body or path parameter could not be decoded.
	ErrInvalidInput = errors.New("invalid input")

	// ErrMissingParameter indicates a required request field is absent or blank.
	ErrMissingParameter = errors.New("missing parameter")

	// ErrBadRequest indicates a well-formed request with unacceptable content.
	ErrBadRequest = errors.New("bad request")

	// ErrUnauthorized indicates the request lacks valid authentication credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRouteNotFound indicates no route matched the request.
	ErrRouteNotFound = errors.New("route not found")
)

// Error is an error carrying an explicit Code. The wrapped error is kept for
// server-side logging and never reaches the client.
type Error struct {
	Code Code
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %v", e.Code, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error with the same code, so coded sentinels compare by code.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return other.Code == e.Code && other.Err == nil
}

// WithCode attaches code to err. err may be nil.
func WithCode(code Code, err error) error {
	return &Error{Code: code, Err: err}
}

// Coded returns a sentinel error for code, comparable with Is.
func Coded(code Code) error {
	return &Error{Code: code}
}

// CodeOf returns the code attached to err, if any.
func CodeOf(err error) (Code, bool) {
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Code, true
	}
	return "", false
}

// New creates a new error with the given message.
// This is a convenience wrapper around errors.New for consistency.
func New(message string) error {
	return errors.New(message)
}

// Wrap wraps an error with additional context while preserving the error chain.
// Use this to add context at each layer without losing the original error type.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf is Wrap with a formatted message.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's tree matches target.
// This is a convenience wrapper around errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
// This is a convenience wrapper around errors.As.
func As(err error, target any) bool {
	return errors.As(err, target)
}
