// Package domerr provides coded domain errors. Services attach a stable code
// to every failure they surface so callers and transports can branch on the
// code without string matching. Business rejections that are reported as
// result values reuse the same codes for their reason fields.
package domerr

import (
	"context"
	"errors"
	"fmt"

	"helix/pkg/platform/sentinel"
)

// Code identifies a class of domain failure. Codes are part of the public
// error taxonomy and must stay stable once released.
type Code string

const (
	// Generic codes.
	CodeInvalidInput       Code = "invalid_input"
	CodeNotFound           Code = "not_found"
	CodeInvariantViolation Code = "invariant_violation"
	CodeInternal           Code = "internal"

	// XP vault rejections.
	CodeGateFailed       Code = "gate.failed"
	CodeDecreaseAttempt  Code = "xp.decrease_attempt"
	CodeInvalidIncrement Code = "xp.invalid_increment"

	// Gateway authentication failures.
	CodeSiloNotFound       Code = "auth.silo_not_found"
	CodeInvalidKey         Code = "auth.invalid_key"
	CodeWriteNotAuthorized Code = "auth.write_not_authorized"
	CodeLockedOut          Code = "auth.locked_out"

	// Storage transients. Retryable by the coordinator.
	CodeStoreTimeout     Code = "store.timeout"
	CodeStoreUnavailable Code = "store.unavailable"

	// Startup configuration failures. Fatal at process start.
	CodeConfigInvalid Code = "config.invalid"
)

// Error is a domain error carrying a code, a human-readable message, and an
// optional wrapped cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a domain error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates a domain error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap annotates err with a code and message. Returns nil when err is nil.
func Wrap(err error, code Code, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, Err: err}
}

// HasCode reports whether err (or any error in its chain) carries the code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		if de.Code == code {
			return true
		}
		return HasCode(de.Err, code)
	}
	return false
}

// CodeOf returns the code of the outermost domain error in the chain, or
// CodeInternal when err carries no code.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// IsRetryable reports whether err represents a storage transient that the
// coordinator may retry. Business rejections are never retryable.
func IsRetryable(err error) bool {
	return HasCode(err, CodeStoreTimeout) || HasCode(err, CodeStoreUnavailable)
}

// FromStore classifies a storage failure: missing entities become not_found,
// deadline overruns become store.timeout, everything else store.unavailable.
// Only the latter two are retryable.
func FromStore(err error, message string) *Error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sentinel.ErrNotFound) {
		return Wrap(err, CodeNotFound, message)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return Wrap(err, CodeStoreTimeout, message)
	}
	return Wrap(err, CodeStoreUnavailable, message)
}
