package errors

import (
	"errors"
	"fmt"
)

// PioError is the structured error type for pio.
// It provides rich context for error handling, logging, and user presentation.
type PioError struct {
	// Code is the unique error code (e.g., "ERR_101_UNKNOWN_BOARD").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Board, Config, Platform, ...).
	Category Category

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Suggestion is an actionable suggestion for the user.
	Suggestion string
}

// Error implements the error interface.
func (e *PioError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *PioError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches the target error by code.
// This enables errors.Is() to work with PioError.
func (e *PioError) Is(target error) bool {
	if t, ok := target.(*PioError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
// Returns the error for method chaining.
func (e *PioError) WithDetail(key, value string) *PioError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithSuggestion adds an actionable suggestion for the user.
// Returns the error for method chaining.
func (e *PioError) WithSuggestion(suggestion string) *PioError {
	e.Suggestion = suggestion
	return e
}

// New creates a new PioError with the given code and message.
// The category is derived from the code.
func New(code string, message string, cause error) *PioError {
	return &PioError{
		Code:     code,
		Message:  message,
		Category: categoryFromCode(code),
		Cause:    cause,
	}
}

// Wrap creates a PioError from an existing error.
// The error's message becomes the PioError message.
func Wrap(code string, err error) *PioError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// UnknownBoardError reports a board identifier absent from the registry.
func UnknownBoardError(id string) *PioError {
	return New(ErrCodeUnknownBoard, fmt.Sprintf("unknown board %q", id), nil).
		WithDetail("board", id).
		WithSuggestion("Search for valid board identifiers with `pio boards`")
}

// ConfigWriteError reports a failure persisting the project configuration.
func ConfigWriteError(path string, cause error) *PioError {
	return New(ErrCodeConfigWrite, fmt.Sprintf("writing project configuration %s", path), cause).
		WithDetail("path", path)
}

// PlatformInstallError reports a failed platform installation.
func PlatformInstallError(name string, cause error) *PioError {
	return New(ErrCodePlatformInstall, fmt.Sprintf("installing platform %q", name), cause).
		WithDetail("platform", name)
}

// IsUnknownBoard reports whether err (or any error it wraps) is an
// unknown-board error.
func IsUnknownBoard(err error) bool {
	return errors.Is(err, &PioError{Code: ErrCodeUnknownBoard})
}

// CodeOf returns the error code of err, or empty when err is not a PioError.
func CodeOf(err error) string {
	var pe *PioError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ""
}
