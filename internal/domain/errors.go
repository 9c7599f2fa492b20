package domain

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"strings"
)

var ErrNotFound = errors.New("record not found")
var ErrNotUnique = errors.New("record not unique")
var ErrNotAuthenticated = errors.New("not authenticated")
var ErrNoPermission = errors.New("no permission")
var ErrInvalidData = errors.New("invalid data")
var ErrTransport = errors.New("gateway unreachable")

// FieldError is a single entry of the gateway error envelope.
type FieldError struct {
	Field   string `json:"Field,omitempty"`
	Type    string `json:"Type,omitempty"`
	Message string
}

// ApiError is returned by the gateway client for every failed call.
// Status is zero if no HTTP response was received at all.
type ApiError struct {
	Endpoint string
	Status   int
	Errors   []FieldError
	Cause    error
}

func (e *ApiError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s: %v", e.Endpoint, e.Cause)
	}

	msgs := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		msgs = append(msgs, fe.Message)
	}
	if len(msgs) == 0 {
		return fmt.Sprintf("%s: %d %s", e.Endpoint, e.Status, http.StatusText(e.Status))
	}

	return fmt.Sprintf("%s: %d %s", e.Endpoint, e.Status, strings.Join(msgs, "; "))
}

// Is reports transport failures as ErrTransport and 401 responses as ErrNotAuthenticated.
func (e *ApiError) Is(target error) bool {
	switch target {
	case ErrTransport:
		return e.Status == 0
	case ErrNotAuthenticated:
		return e.Status == http.StatusUnauthorized
	case ErrNoPermission:
		return e.Status == http.StatusForbidden
	}
	return false
}

func (e *ApiError) Unwrap() error {
	return e.Cause
}

// IsUnauthorized returns true if the error is an ApiError with status 401.
func IsUnauthorized(err error) bool {
	var apiErr *ApiError
	if errors.As(err, &apiErr) {
		return apiErr.Status == http.StatusUnauthorized
	}
	return false
}

// ValidationError is raised before a request is sent, if the collected form data is invalid.
type ValidationError struct {
	Errors []FieldError
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Errors: []FieldError{{Field: field, Message: message}}}
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		msgs = append(msgs, fe.Message)
	}
	return "invalid input: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidData
}

// GetStackTrace returns a stack trace of the current goroutine. The stack trace has at most 1024 bytes.
func GetStackTrace() string {
	b := make([]byte, 1024)
	n := runtime.Stack(b, false)
	s := string(b[:n])

	return s
}
