package services

import (
	"errors"
	"fmt"
	"time"
)

// ErrorKind classifies service failures so transports can map them to responses
type ErrorKind string

const (
	KindUnauthorized    ErrorKind = "unauthorized"
	KindForbidden       ErrorKind = "forbidden"
	KindNotFound        ErrorKind = "not_found"
	KindInvalidArgument ErrorKind = "invalid_argument"
	KindConflict        ErrorKind = "conflict"
	KindRateLimited     ErrorKind = "rate_limited"
	KindInternal        ErrorKind = "internal"
)

// Error is a typed service error carrying a human-readable message
type Error struct {
	Kind       ErrorKind
	Message    string
	RetryAfter time.Duration
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Unauthorized reports a missing or invalid credential
func Unauthorized(msg string) error {
	return &Error{Kind: KindUnauthorized, Message: msg}
}

// Forbidden reports an authenticated caller lacking permission
func Forbidden(msg string) error {
	return &Error{Kind: KindForbidden, Message: msg}
}

// NotFound reports an absent referenced record
func NotFound(msg string) error {
	return &Error{Kind: KindNotFound, Message: msg}
}

// InvalidArgument reports malformed or out-of-range input
func InvalidArgument(msg string) error {
	return &Error{Kind: KindInvalidArgument, Message: msg}
}

// InvalidArgumentf formats an InvalidArgument message
func InvalidArgumentf(format string, args ...interface{}) error {
	return InvalidArgument(fmt.Sprintf(format, args...))
}

// Conflict reports a write that collides with existing state
func Conflict(msg string) error {
	return &Error{Kind: KindConflict, Message: msg}
}

// RateLimited reports a throttled caller
func RateLimited(msg string, retryAfter time.Duration) error {
	return &Error{Kind: KindRateLimited, Message: msg, RetryAfter: retryAfter}
}

// KindOf returns the kind of a service error, or KindInternal for anything else
func KindOf(err error) ErrorKind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}
