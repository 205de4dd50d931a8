package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// AppError represents an application error with additional context
type AppError struct {
	Code       string      `json:"code"`
	Message    string      `json:"message"`
	StatusCode int         `json:"-"`
	Internal   error       `json:"-"`
	Details    interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Internal)
	}
	return e.Message
}

// Unwrap returns the internal error for errors.Is and errors.As
func (e *AppError) Unwrap() error {
	return e.Internal
}

// Error codes
const (
	ErrCodeInternal        = "INTERNAL_ERROR"
	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodeUnauthenticated = "UNAUTHENTICATED"
	ErrCodePremiumRequired = "PREMIUM_REQUIRED"
	ErrCodeForbidden       = "FORBIDDEN"
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeConflict        = "CONFLICT"
	ErrCodeValidation      = "VALIDATION_ERROR"
	ErrCodeDatabase        = "DATABASE_ERROR"
	ErrCodeConfig          = "CONFIG_ERROR"
	ErrCodeUpstreamRead    = "UPSTREAM_READ_ERROR"
	ErrCodeUpstreamWrite   = "UPSTREAM_WRITE_ERROR"
	ErrCodeGeneration      = "GENERATION_ERROR"
)

// New creates a new AppError
func New(code, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

// Wrap wraps an error with an AppError
func Wrap(err error, code, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Internal:   err,
	}
}

// WithDetails adds details to an AppError
func (e *AppError) WithDetails(details interface{}) *AppError {
	e.Details = details
	return e
}

// Internal creates an internal server error
func Internal(message string, err error) *AppError {
	return Wrap(err, ErrCodeInternal, message, http.StatusInternalServerError)
}

// BadRequest creates a bad request error
func BadRequest(message string) *AppError {
	return New(ErrCodeBadRequest, message, http.StatusBadRequest)
}

// Unauthenticated is returned when the caller has no session
func Unauthenticated(message string) *AppError {
	return New(ErrCodeUnauthenticated, message, http.StatusUnauthorized)
}

// PremiumRequired is returned when a free-tier caller reaches a premium-only operation
func PremiumRequired(message string) *AppError {
	return New(ErrCodePremiumRequired, message, http.StatusForbidden)
}

// Forbidden creates a forbidden error
func Forbidden(message string) *AppError {
	return New(ErrCodeForbidden, message, http.StatusForbidden)
}

// NotFound creates a not found error
func NotFound(resource string) *AppError {
	return New(ErrCodeNotFound, fmt.Sprintf("%s not found", resource), http.StatusNotFound)
}

// Conflict creates a conflict error
func Conflict(message string) *AppError {
	return New(ErrCodeConflict, message, http.StatusConflict)
}

// ValidationError creates a validation error
func ValidationError(message string, details interface{}) *AppError {
	return New(ErrCodeValidation, message, http.StatusBadRequest).WithDetails(details)
}

// DatabaseError creates a database error
func DatabaseError(message string, err error) *AppError {
	return Wrap(err, ErrCodeDatabase, message, http.StatusInternalServerError)
}

// ConfigError reports a missing or invalid process-level setting.
// It is fatal for the operation that needs the setting, not for the process.
func ConfigError(message string) *AppError {
	return New(ErrCodeConfig, message, http.StatusInternalServerError)
}

// UpstreamRead marks a failed read of optional context. Callers log it and
// continue with empty data.
func UpstreamRead(op string, err error) *AppError {
	return Wrap(err, ErrCodeUpstreamRead, fmt.Sprintf("failed to read %s", op), http.StatusInternalServerError)
}

// UpstreamWrite marks a failed best-effort write. Callers log it and continue.
func UpstreamWrite(op string, err error) *AppError {
	return Wrap(err, ErrCodeUpstreamWrite, fmt.Sprintf("failed to write %s", op), http.StatusInternalServerError)
}

// Generation wraps a failure of the text-generation service
func Generation(err error) *AppError {
	return Wrap(err, ErrCodeGeneration, "text generation failed", http.StatusBadGateway)
}

// Code returns the AppError code carried by err, or "" when err is not an AppError
func Code(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// IsDegradable reports whether err should be logged and discarded rather than
// aborting the request.
func IsDegradable(err error) bool {
	switch Code(err) {
	case ErrCodeUpstreamRead, ErrCodeUpstreamWrite:
		return true
	}
	return false
}

// As converts err to an AppError, wrapping unknown errors as internal errors
func As(err error) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return Internal("Internal server error", err)
}
