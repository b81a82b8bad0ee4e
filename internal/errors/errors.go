package errors

import (
	stderrors "errors"
	"fmt"
)

// ParserError is the structured error type for referer-parser.
// It provides rich context for error handling, logging, and user presentation.
type ParserError struct {
	// Code is the unique error code (e.g., "ERR_201_DATA_NOT_FOUND").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, IO, Validation, Internal).
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Suggestion is an actionable suggestion for the user.
	Suggestion string
}

// Error implements the error interface.
func (e *ParserError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *ParserError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches the target error by code.
// This enables errors.Is() to work with ParserError.
func (e *ParserError) Is(target error) bool {
	if t, ok := target.(*ParserError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
// Returns the error for method chaining.
func (e *ParserError) WithDetail(key, value string) *ParserError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithSuggestion adds an actionable suggestion for the user.
// Returns the error for method chaining.
func (e *ParserError) WithSuggestion(suggestion string) *ParserError {
	e.Suggestion = suggestion
	return e
}

// New creates a new ParserError with the given code and message.
// Category and severity are derived from the code.
func New(code string, message string, cause error) *ParserError {
	return &ParserError{
		Code:     code,
		Message:  message,
		Category: categoryFromCode(code),
		Severity: severityFromCode(code),
		Cause:    cause,
	}
}

// Wrap creates a ParserError from an existing error.
// The error's message becomes the ParserError message.
func Wrap(code string, err error) *ParserError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// ConfigError creates a configuration-related error.
func ConfigError(message string, cause error) *ParserError {
	return New(ErrCodeConfigInvalid, message, cause)
}

// DataUnavailableError creates an error for a dataset that cannot be read.
func DataUnavailableError(path string, cause error) *ParserError {
	return New(ErrCodeDataNotFound, fmt.Sprintf("cannot read referer data %s", path), cause).
		WithDetail("path", path)
}

// DataCorruptError creates an error for a dataset that cannot be decoded.
func DataCorruptError(path string, cause error) *ParserError {
	return New(ErrCodeDataCorrupt, fmt.Sprintf("cannot parse referer data %s", path), cause).
		WithDetail("path", path)
}

// ValidationError creates a validation-related error.
func ValidationError(message string, cause error) *ParserError {
	return New(ErrCodeInvalidInput, message, cause)
}

// InternalError creates an internal error.
func InternalError(message string, cause error) *ParserError {
	return New(ErrCodeInternal, message, cause)
}

// As finds the first ParserError in err's chain.
func As(err error) (*ParserError, bool) {
	var pe *ParserError
	if stderrors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// IsFatal checks if an error has fatal severity.
// Fatal errors should abort the current operation.
func IsFatal(err error) bool {
	if pe, ok := As(err); ok {
		return pe.Severity == SeverityFatal
	}
	return false
}

// GetCode extracts the error code from a ParserError.
// Returns empty string if not a ParserError.
func GetCode(err error) string {
	if pe, ok := As(err); ok {
		return pe.Code
	}
	return ""
}

// GetCategory extracts the category from a ParserError.
// Returns empty string if not a ParserError.
func GetCategory(err error) Category {
	if pe, ok := As(err); ok {
		return pe.Category
	}
	return ""
}
