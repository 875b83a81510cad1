package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"tfea/domain/core"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Message == "" && e.Cause != nil {
		return e.Cause.Error()
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context, keeping the code of a wrapped
// AppError or deriving one from a domain sentinel.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return &AppError{
		Code:    GetCode(err),
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WithCode adds an error code to an existing error
func WithCode(code string, err error) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    code,
			Message: appErr.Message,
			Cause:   appErr.Cause,
		}
	}
	return &AppError{
		Code:  code,
		Cause: err,
	}
}

// GetCode returns the code of the outermost AppError, a code derived from a
// domain sentinel, or INTERNAL_ERROR.
func GetCode(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	switch {
	case core.IsNotFoundError(err):
		return CodeNotFound
	case core.IsSkippable(err):
		return CodeNoHits
	case stderrors.Is(err, core.ErrDegenerateNullDistribution), stderrors.Is(err, core.ErrEmptyNullDistribution):
		return CodeDegenerateNull
	case core.IsValidationError(err):
		return CodeValidationError
	case core.IsDeterminismError(err):
		return CodeNonDeterministic
	}
	return CodeInternalError
}

// HTTPStatus maps an error code to the status returned by the API
func HTTPStatus(err error) int {
	switch GetCode(err) {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeInvalidInput, CodeValidationError, CodeConfigInvalid:
		return http.StatusBadRequest
	case CodeNoHits, CodeDegenerateNull:
		return http.StatusUnprocessableEntity
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// Predefined error codes
const (
	CodeConfigInvalid    = "CONFIG_INVALID"
	CodeDatabaseError    = "DATABASE_ERROR"
	CodeValidationError  = "VALIDATION_ERROR"
	CodeNotFound         = "NOT_FOUND"
	CodeInternalError    = "INTERNAL_ERROR"
	CodeInvalidInput     = "INVALID_INPUT"
	CodeNoHits           = "NO_HITS"
	CodeDegenerateNull   = "DEGENERATE_NULL"
	CodeUnavailable      = "UNAVAILABLE"
	CodeIOError          = "IO_ERROR"
	CodeNonDeterministic = "NON_DETERMINISTIC"
)

// Common error constructors
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func DatabaseError(message string, cause error) *AppError {
	return &AppError{Code: CodeDatabaseError, Message: message, Cause: cause}
}

func NotFound(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource))
}

func InternalError(message string) *AppError {
	return New(CodeInternalError, message)
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}

func Unavailable(message string) *AppError {
	return New(CodeUnavailable, message)
}

func IOError(message string, cause error) *AppError {
	return &AppError{Code: CodeIOError, Message: message, Cause: cause}
}
