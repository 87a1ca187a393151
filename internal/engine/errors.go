package engine

import (
	"errors"
	"fmt"
)

// RuntimeError represents an error detected while processing an event.
//
// Runtime errors include:
//   - Oracle failure: network error or backend refusal, tombstoned
//   - Malformed result: a response of the wrong shape, tombstoned
//   - Unknown placeholder: a resolution arrived for an ended placeholder
//   - Invalid state: an event that does not apply to the current state
//
// None of them are fatal; the engine logs them and continues.
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// Key is the canonical key of the affected operation, if any.
	Key string

	// Placeholder is the affected placeholder id, if any.
	Placeholder string

	// Err is the underlying cause.
	Err error
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodeOracleFailure indicates the oracle call failed.
	ErrCodeOracleFailure RuntimeErrorCode = "ORACLE_FAILURE"

	// ErrCodeMalformedResult indicates the oracle answered with the wrong shape.
	ErrCodeMalformedResult RuntimeErrorCode = "MALFORMED_RESULT"

	// ErrCodeUnknownPlaceholder indicates a resolution for an ended placeholder.
	ErrCodeUnknownPlaceholder RuntimeErrorCode = "UNKNOWN_PLACEHOLDER"

	// ErrCodeInvalidState indicates an event that does not apply to the current state.
	ErrCodeInvalidState RuntimeErrorCode = "INVALID_STATE"
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Key != "" {
		msg += fmt.Sprintf(" (key=%s)", e.Key)
	}
	if e.Placeholder != "" {
		msg += fmt.Sprintf(" (placeholder=%s)", e.Placeholder)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *RuntimeError) Unwrap() error {
	return e.Err
}

func hasCode(err error, code RuntimeErrorCode) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == code
	}
	return false
}

// IsOracleFailure returns true if the error is an oracle failure.
// Uses errors.As to handle wrapped errors.
func IsOracleFailure(err error) bool {
	return hasCode(err, ErrCodeOracleFailure)
}

// IsMalformedResult returns true if the error is a malformed oracle result.
func IsMalformedResult(err error) bool {
	return hasCode(err, ErrCodeMalformedResult)
}

// IsUnknownPlaceholder returns true if the error is an unknown placeholder.
func IsUnknownPlaceholder(err error) bool {
	return hasCode(err, ErrCodeUnknownPlaceholder)
}

// IsInvalidState returns true if the error is an invalid state transition.
func IsInvalidState(err error) bool {
	return hasCode(err, ErrCodeInvalidState)
}

// NewOracleFailure creates a RuntimeError for a failed oracle call.
func NewOracleFailure(key string, cause error) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeOracleFailure,
		Message: "oracle call failed, result tombstoned",
		Key:     key,
		Err:     cause,
	}
}

// NewMalformedResult creates a RuntimeError for a malformed oracle answer.
func NewMalformedResult(key string, cause error) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeMalformedResult,
		Message: "oracle result malformed, result tombstoned",
		Key:     key,
		Err:     cause,
	}
}

// NewUnknownPlaceholder creates a RuntimeError for a resolution whose
// placeholder was already ended.
func NewUnknownPlaceholder(key, placeholder string) *RuntimeError {
	return &RuntimeError{
		Code:        ErrCodeUnknownPlaceholder,
		Message:     "resolution for unknown placeholder, nothing placed",
		Key:         key,
		Placeholder: placeholder,
	}
}

// NewInvalidState creates a RuntimeError for an event that does not apply.
func NewInvalidState(state State, event string) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeInvalidState,
		Message: fmt.Sprintf("%s does not apply while %s", event, state),
	}
}
