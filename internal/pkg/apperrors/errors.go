package apperrors

import "errors"

// Common errors
var (
	// Authentication errors
	ErrTokenExpired  = errors.New("token expired")
	ErrTokenInvalid  = errors.New("invalid token")
	ErrInvalidFormat = errors.New("invalid token format")

	// Validation errors
	ErrBadRequest = errors.New("bad request")
)

// Catalog errors
var (
	// ErrQueryFailed wraps any fault raised by a record store while executing a plan.
	ErrQueryFailed = errors.New("query failed")
	// ErrInvalidFilterValue marks a filter value that was present but could not be interpreted.
	// Callers drop the value and keep going; it is never returned from a search.
	ErrInvalidFilterValue = errors.New("invalid filter value")
	ErrCourseNotFound     = errors.New("course not found")
)

// Snapshot errors
var (
	// ErrRecomputationFailed is returned to the callers that waited on a failed recomputation.
	ErrRecomputationFailed = errors.New("snapshot recomputation failed")
)

// NewBadRequestError creates a new custom error for bad request with a message
func NewBadRequestError(message string) error {
	return &CustomError{
		Err:     ErrBadRequest,
		Message: message,
	}
}

// NewInvalidFilterError describes a dropped filter value.
func NewInvalidFilterError(field, value string) *CustomError {
	return NewCustomError(ErrInvalidFilterValue, "invalid value for "+field).
		WithDetails(map[string]interface{}{"field": field, "value": value})
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Details map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}
