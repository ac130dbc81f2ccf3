package apperr

import (
	"errors"
	"fmt"
)

// Code identifies an error class in the wire contract. The set is
// closed: clients switch on these programmatically.
type Code string

const (
	CodeNotFound        Code = "NOT_FOUND"
	CodeUnauthorized    Code = "UNAUTHORIZED"
	CodeForbidden       Code = "FORBIDDEN"
	CodeValidation      Code = "VALIDATION_ERROR"
	CodeDatabase        Code = "DATABASE_ERROR"
	CodeInternal        Code = "INTERNAL_ERROR"
	CodeSessionExpired  Code = "SESSION_EXPIRED"
	CodeAlreadyLoggedIn Code = "ALREADY_LOGGED_IN"
	CodeAuthRequired    Code = "AUTHENTICATION_REQUIRED"
)

// AppError is a structured error that can be returned to clients.
type AppError struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	cause   error
}

func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.cause
}

func (e *AppError) WithCause(err error) *AppError {
	e.cause = err
	return e
}

func New(code Code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

func Wrap(code Code, message string, cause error) *AppError {
	return &AppError{Code: code, Message: message, cause: cause}
}

// Common error constructors

func NotFound(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource))
}

func Unauthorized(message string) *AppError {
	return New(CodeUnauthorized, message)
}

func Forbidden(message string) *AppError {
	return New(CodeForbidden, message)
}

func Validation(message string) *AppError {
	return New(CodeValidation, message)
}

func Database(cause error) *AppError {
	return Wrap(CodeDatabase, "Database error", cause)
}

func Internal(message string) *AppError {
	return New(CodeInternal, message)
}

func SessionExpired() *AppError {
	return New(CodeSessionExpired, "Session is invalid or expired")
}

func AlreadyLoggedIn() *AppError {
	return New(CodeAlreadyLoggedIn, "User already has an active session")
}

func AuthRequired() *AppError {
	return New(CodeAuthRequired, "Authentication required")
}

// As converts an error to an *AppError if possible.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// GetCode returns the error code if the error is an AppError, otherwise CodeInternal.
func GetCode(err error) Code {
	if appErr, ok := As(err); ok {
		return appErr.Code
	}
	return CodeInternal
}
