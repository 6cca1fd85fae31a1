// Package errs holds the typed failures raised by the price pipeline.
package errs

import (
	"errors"
	"fmt"
)

var (
	ErrResourceFetch = errors.New("resource fetch failed")
	ErrParse         = errors.New("parse failed")
	ErrSetValue      = errors.New("cache set failed")
)

// ResourceFetchError means an exchange could not be read or returned no pairs.
type ResourceFetchError struct {
	Exchange string
	Reason   string
	Err      error
}

func NewResourceFetchError(exchange, reason string, err error) *ResourceFetchError {
	return &ResourceFetchError{Exchange: exchange, Reason: reason, Err: err}
}

func (e *ResourceFetchError) Error() string {
	return withCause(e.Reason, e.Err)
}

func (e *ResourceFetchError) Unwrap() error { return e.Err }

func (e *ResourceFetchError) Is(target error) bool { return target == ErrResourceFetch }

// ParseError means a payload was malformed or no price point survived aggregation.
// Exchange is empty when the failure is not tied to one exchange.
type ParseError struct {
	Exchange string
	Reason   string
	Err      error
}

func NewParseError(exchange, reason string, err error) *ParseError {
	return &ParseError{Exchange: exchange, Reason: reason, Err: err}
}

func (e *ParseError) Error() string {
	return withCause(e.Reason, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrParse }

// SetValueError means the cache backend rejected a write.
type SetValueError struct {
	Key string
	Err error
}

func NewSetValueError(key string, err error) *SetValueError {
	return &SetValueError{Key: key, Err: err}
}

func (e *SetValueError) Error() string {
	return withCause(fmt.Sprintf("could not set value for key %q", e.Key), e.Err)
}

func (e *SetValueError) Unwrap() error { return e.Err }

func (e *SetValueError) Is(target error) bool { return target == ErrSetValue }

func withCause(msg string, cause error) string {
	if cause == nil {
		return msg
	}
	return msg + ": " + cause.Error()
}
