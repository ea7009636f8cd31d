// Package errors provides the error taxonomy for the collector.
// Every failure that crosses a package boundary should be an AppError so
// callers can tell a skippable condition apart from a fatal one by Code.
package errors

// AppError represents a structured error with a stable code, a
// human-readable message, and an optional internal cause.
type AppError struct {
	Code     string
	Message  string
	Internal error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Internal != nil {
		return e.Message + ": " + e.Internal.Error()
	}
	return e.Message
}

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Is reports whether target is an AppError with the same code, so wrapped
// copies of a sentinel still match it.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Wrap creates a new AppError with the same code/message but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:     sentinel.Code,
		Message:  sentinel.Message,
		Internal: internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:     sentinel.Code,
		Message:  message,
		Internal: sentinel.Internal,
	}
}

// Startup errors. These abort the process before any collection begins.
var (
	ErrConfigInvalid = &AppError{Code: "CONFIG_INVALID", Message: "Invalid configuration"}
	ErrFieldMapping  = &AppError{Code: "FIELD_MAPPING", Message: "Financial field mapping mismatch"}
)

// Resolution errors. The ticker is skipped.
var (
	ErrCompanyNotFound = &AppError{Code: "COMPANY_NOT_FOUND", Message: "Company not found"}
	ErrLookupFailed    = &AppError{Code: "LOOKUP_FAILED", Message: "Company lookup failed"}
)

// Fetch errors. The data kind is skipped for the ticker.
var (
	ErrFetchFailed = &AppError{Code: "FETCH_FAILED", Message: "Market data fetch failed"}
	ErrNoData      = &AppError{Code: "NO_DATA", Message: "Provider returned no data"}
)

// Record errors. The single record is dropped.
var (
	ErrInvalidPeriod = &AppError{Code: "INVALID_PERIOD", Message: "Invalid statement period label"}
	ErrWriteFailed   = &AppError{Code: "WRITE_FAILED", Message: "Record upsert failed"}
)

// General errors.
var (
	ErrInternal = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred"}
)
