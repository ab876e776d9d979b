package domain

import (
	"fmt"
)

// OriginCodeInvalidClaim is the engine runtime error code raised when a caller's
// claims do not satisfy a protocol party.
const OriginCodeInvalidClaim = 37

// AuthorizationError reports that the engine rejected the presented authorization.
type AuthorizationError struct {
	Status int
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("engine rejected authorization (status %d)", e.Status)
}

// NoSuchItemError reports that the engine has no item at the requested path.
type NoSuchItemError struct {
	Item string
}

func (e *NoSuchItemError) Error() string {
	return fmt.Sprintf("engine item not found: %s", e.Item)
}

// RuntimeError is a protocol runtime failure raised by the engine.
type RuntimeError struct {
	OriginCode int
	Message    string
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("engine runtime error %d: %s", e.OriginCode, e.Message)
}

// StreamFormatError reports a notification stream that could not be parsed, such
// as an event larger than the accepted size. Resubscribing replays the same bytes.
type StreamFormatError struct {
	Err error
}

func (e *StreamFormatError) Error() string {
	return fmt.Sprintf("malformed notification stream: %v", e.Err)
}

func (e *StreamFormatError) Unwrap() error {
	return e.Err
}
