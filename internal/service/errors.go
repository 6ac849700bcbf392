package service

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is returned when an offer or cart payload is malformed
	ErrValidation = errors.New("validation failed")

	// ErrAuthenticationMissing is returned when the caller presents no valid role
	ErrAuthenticationMissing = errors.New("authentication missing")

	// ErrAuthorizationDenied is returned when the caller's role may not perform the operation
	ErrAuthorizationDenied = errors.New("authorization denied")

	// ErrRateLimited is returned when the caller exhausted its request budget
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrUpstreamUnavailable marks a failed segment service call. It is absorbed
	// into an unresolved segment and never returned by the engine.
	ErrUpstreamUnavailable = errors.New("segment service unavailable")
)

// ValidationError describes the offending field of a rejected payload.
// Cause, when set, is the underlying validator error.
type ValidationError struct {
	Field  string
	Reason string
	Cause  error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrValidation, e.Reason)
	}
	return fmt.Sprintf("%s: %s %s", ErrValidation, e.Field, e.Reason)
}

// Unwrap exposes both ErrValidation and the validator cause to errors.Is/As.
func (e *ValidationError) Unwrap() []error {
	if e.Cause != nil {
		return []error{ErrValidation, e.Cause}
	}
	return []error{ErrValidation}
}
