package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
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

// Wrap wraps an error with additional context. The code of a wrapped
// AppError is kept so callers can still classify the failure.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   err,
		}
	}
	return &AppError{
		Code:    CodeInternalError,
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
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return &AppError{
			Code:    code,
			Message: appErr.Message,
			Cause:   appErr.Cause,
		}
	}
	return &AppError{
		Code:    code,
		Message: err.Error(),
		Cause:   err,
	}
}

// IsAppError checks if an error is (or wraps) an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// GetCode returns the code of the outermost AppError in the chain, otherwise "UNKNOWN"
func GetCode(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return "UNKNOWN"
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code string) bool {
	return err != nil && GetCode(err) == code
}

// Predefined error codes
const (
	CodeConfigInvalid   = "CONFIG_INVALID"
	CodeValidationError = "VALIDATION_ERROR"
	CodeNotFound        = "NOT_FOUND"
	CodeInternalError   = "INTERNAL_ERROR"
	CodeInvalidInput    = "INVALID_INPUT"

	// Table loading and aggregation taxonomy
	CodeParseError       = "PARSE_ERROR"
	CodeInvalidColumn    = "INVALID_COLUMN"
	CodeInvalidOperation = "INVALID_OPERATION"
	CodeInsufficientData = "INSUFFICIENT_DATA"
	CodeDivisionByZero   = "DIVISION_BY_ZERO"
	CodeSessionNotFound  = "SESSION_NOT_FOUND"
)

// Common error constructors
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func ValidationError(message string) *AppError {
	return New(CodeValidationError, message)
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

// ParseError reports an unreadable, empty or unsupported input file.
func ParseError(message string, cause error) *AppError {
	return &AppError{Code: CodeParseError, Message: message, Cause: cause}
}

// InvalidColumn reports a column that is absent or has the wrong kind.
func InvalidColumn(column, reason string) *AppError {
	if reason == "" {
		return New(CodeInvalidColumn, fmt.Sprintf("column %q does not exist", column))
	}
	return New(CodeInvalidColumn, fmt.Sprintf("column %q %s", column, reason))
}

// InvalidOperation reports an unrecognised operator or command.
func InvalidOperation(op string) *AppError {
	return New(CodeInvalidOperation, fmt.Sprintf("unsupported operation %q", op))
}

// InsufficientData reports that an operation's minimum cardinality is not met.
func InsufficientData(message string) *AppError {
	return New(CodeInsufficientData, message)
}

// DivisionByZero reports a zero divisor at a boundary that cannot carry an
// undefined marker.
func DivisionByZero(message string) *AppError {
	return New(CodeDivisionByZero, message)
}

// SessionNotFound reports an unknown or expired session.
func SessionNotFound(id string) *AppError {
	return New(CodeSessionNotFound, fmt.Sprintf("session %s not found", id))
}

// HTTPStatus maps an error code to the response status used by the HTTP surfaces.
func HTTPStatus(err error) int {
	switch GetCode(err) {
	case CodeParseError, CodeInvalidInput, CodeValidationError:
		return http.StatusBadRequest
	case CodeInvalidColumn, CodeInvalidOperation, CodeInsufficientData, CodeDivisionByZero:
		return http.StatusUnprocessableEntity
	case CodeSessionNotFound, CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
