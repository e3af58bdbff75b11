package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind groups errors by how the caller should react to them.
type Kind string

const (
	KindValidation Kind = "validation"
	KindNotFound   Kind = "not_found"
	KindConflict   Kind = "conflict"
	KindDatabase   Kind = "database"
	KindTimeout    Kind = "timeout"
	KindConnection Kind = "connection"
	KindExternal   Kind = "external_api"
	KindPermission Kind = "permission"
	KindInternal   Kind = "internal"
)

// AppError is an error with a kind, a machine-readable code and a
// user-facing message.
type AppError struct {
	Kind     Kind
	Code     string
	Message  string
	Status   int // upstream HTTP status, when the error came from a remote API
	Details  string
	Internal error
}

func (e *AppError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %s (internal: %v)", e.Kind, e.Message, e.Internal)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Internal
}

// Is matches another *AppError with the same kind and code.
func (e *AppError) Is(target error) bool {
	if t, ok := target.(*AppError); ok {
		return e.Kind == t.Kind && e.Code == t.Code
	}
	return false
}

// LogFields returns structured logging fields
func (e *AppError) LogFields() []any {
	fields := []any{
		"error_kind", e.Kind,
		"error_code", e.Code,
		"error_message", e.Message,
	}
	if e.Status != 0 {
		fields = append(fields, "upstream_status", e.Status)
	}
	if e.Internal != nil {
		fields = append(fields, "internal_error", e.Internal.Error())
	}
	return fields
}

func New(kind Kind, code, message string) *AppError {
	return &AppError{Kind: kind, Code: code, Message: message}
}

func Wrap(err error, kind Kind, code, message string) *AppError {
	return &AppError{Kind: kind, Code: code, Message: message, Internal: err}
}

// Predefined errors
var (
	ErrNotFound     = New(KindNotFound, "NOT_FOUND", "Resource not found")
	ErrEmailTaken   = New(KindConflict, "EMAIL_TAKEN", "Email is already registered")
	ErrUnauthorized = New(KindPermission, "UNAUTHORIZED", "Unauthorized access")
)

func NewValidationError(message string) *AppError {
	return New(KindValidation, "VALIDATION", message)
}

func NewDatabaseError(err error) *AppError {
	return Wrap(err, KindDatabase, "DB_ERROR", "Database operation failed")
}

func NewInternalError(err error) *AppError {
	return Wrap(err, KindInternal, "INTERNAL", "Internal server error")
}

// HTTPStatus maps an error to the response status a handler should use.
func HTTPStatus(err error) int {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return http.StatusInternalServerError
	}
	switch appErr.Kind {
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindPermission:
		return http.StatusUnauthorized
	case KindTimeout:
		return http.StatusRequestTimeout
	case KindConnection:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Code returns the machine-readable code of err, or "" if err is not an *AppError.
func Code(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}
