package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

const (
	HttpInternalError        = "internal_error"
	HttpInvalidJsonError     = "invalid_json"
	HttpValidationError      = "validation_failed"
	HttpCorruptPageToken     = "corrupt_page_token"
	HttpAggregationNotFound  = "aggregation_not_found"
	HttpDuplicateRecordError = "duplicate_record"
)

var (
	// ErrValidation marks malformed caller input. It is caught before any fetch
	// and maps to HTTP 400.
	ErrValidation = stderrors.New("validation failed")

	// ErrCorruptToken is returned when a page token cannot be decoded.
	// Every corrupt token is also a validation error.
	ErrCorruptToken = fmt.Errorf("%w: corrupt page token", ErrValidation)

	// ErrNotFound is returned for unregistered aggregation ids or record types.
	ErrNotFound = stderrors.New("not found")

	// ErrInvariant marks registry/dispatch drift. Never user-recoverable.
	ErrInvariant = stderrors.New("programming invariant violated")
)

// ErrorResponse is the error response body for API errors.
type ErrorResponse struct {
	ErrorType string      `json:"error_type"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
}

// ValidationError describes one rejected input field.
type ValidationError struct {
	Field   string
	Message string
	kind    error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", e.kind, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.kind, e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return e.kind }

// Validationf builds a ValidationError for field.
func Validationf(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...), kind: ErrValidation}
}

// CorruptTokenf builds a ValidationError that also matches ErrCorruptToken.
func CorruptTokenf(format string, args ...interface{}) error {
	return &ValidationError{Field: "page_token", Message: fmt.Sprintf(format, args...), kind: ErrCorruptToken}
}

// InvariantError reports a broken internal guarantee, e.g. an aggregation id
// without a contribution handler.
type InvariantError struct {
	Message string
}

func (e *InvariantError) Error() string { return fmt.Sprintf("%s: %s", ErrInvariant, e.Message) }

func (e *InvariantError) Unwrap() error { return ErrInvariant }

// Invariantf builds an InvariantError.
func Invariantf(format string, args ...interface{}) error {
	return &InvariantError{Message: fmt.Sprintf(format, args...)}
}

// NotFoundf wraps ErrNotFound with context.
func NotFoundf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// HTTPStatus maps an error to its HTTP status and error type.
func HTTPStatus(err error) (int, string) {
	switch {
	case stderrors.Is(err, ErrCorruptToken):
		return http.StatusBadRequest, HttpCorruptPageToken
	case stderrors.Is(err, ErrValidation):
		return http.StatusBadRequest, HttpValidationError
	case stderrors.Is(err, ErrNotFound):
		return http.StatusNotFound, HttpAggregationNotFound
	default:
		return http.StatusInternalServerError, HttpInternalError
	}
}
