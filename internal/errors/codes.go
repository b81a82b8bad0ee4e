// Package errors provides structured error handling for referer-parser.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: IO errors (dataset files)
//   - 4XX: Validation errors
//   - 5XX: Internal errors
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryIO indicates file and dataset I/O errors.
	CategoryIO Category = "IO"
	// CategoryValidation indicates input and dataset validation errors.
	CategoryValidation Category = "VALIDATION"
	// CategoryInternal indicates unexpected internal errors.
	CategoryInternal Category = "INTERNAL"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal indicates unrecoverable error, must abort.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates operation failed but can continue.
	SeverityError Severity = "ERROR"
	// SeverityWarning indicates degraded operation, continuing.
	SeverityWarning Severity = "WARNING"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigNotFound = "ERR_101_CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  = "ERR_102_CONFIG_INVALID"

	// IO errors (200-299)
	ErrCodeDataNotFound   = "ERR_201_DATA_NOT_FOUND"
	ErrCodeDataPermission = "ERR_202_DATA_PERMISSION"
	ErrCodeDataCorrupt    = "ERR_206_DATA_CORRUPT"

	// Validation errors (400-499)
	ErrCodeInvalidInput  = "ERR_401_INVALID_INPUT"
	ErrCodeInvalidURL    = "ERR_402_INVALID_URL"
	ErrCodeInvalidFormat = "ERR_403_INVALID_FORMAT"
	ErrCodeInvalidRecord = "ERR_407_INVALID_RECORD"

	// Internal errors (500-599)
	ErrCodeInternal     = "ERR_501_INTERNAL"
	ErrCodeReloadFailed = "ERR_502_RELOAD_FAILED"
)

// categoryFromCode extracts category from error code.
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryInternal
	}

	// Extract numeric portion (e.g., "101" from "ERR_101_CONFIG_NOT_FOUND")
	switch code[4] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryIO
	case '4':
		return CategoryValidation
	default:
		return CategoryInternal
	}
}

// severityFromCode determines severity based on error code.
// A dataset that cannot be read, decoded or built leaves nothing to
// classify with, so those codes are fatal.
func severityFromCode(code string) Severity {
	switch code {
	case ErrCodeDataNotFound, ErrCodeDataPermission, ErrCodeDataCorrupt, ErrCodeInvalidRecord:
		return SeverityFatal
	case ErrCodeReloadFailed, ErrCodeInvalidURL:
		return SeverityWarning
	}
	return SeverityError
}
