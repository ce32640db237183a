package errors

import (
	"fmt"
	"strings"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrTypeTransport represents connect/read failures and timeouts
	ErrTypeTransport ErrorType = "transport"
	// ErrTypeUpstreamStatus represents non-2xx responses from the directory service
	ErrTypeUpstreamStatus ErrorType = "upstream_status"
	// ErrTypeDecode represents payloads that matched no known schema
	ErrTypeDecode ErrorType = "decode"
	// ErrTypeNotFound represents a valid response with an empty result set
	ErrTypeNotFound ErrorType = "not_found"
	// ErrTypeValidation represents caller-supplied invalid input
	ErrTypeValidation ErrorType = "validation"
	// ErrTypeConfig represents configuration errors
	ErrTypeConfig ErrorType = "config"
	// ErrTypeInternal represents internal system errors
	ErrTypeInternal ErrorType = "internal"
)

// AppError represents a structured application error
type AppError struct {
	Type    ErrorType              `json:"type"`
	Message string                 `json:"message"`
	Cause   error                  `json:"-"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	parts := []string{string(e.Type), e.Message}

	if e.Cause != nil {
		parts = append(parts, fmt.Sprintf("cause=%v", e.Cause))
	}

	if len(e.Context) > 0 {
		contextParts := make([]string, 0, len(e.Context))
		for k, v := range e.Context {
			contextParts = append(contextParts, fmt.Sprintf("%s=%v", k, v))
		}
		parts = append(parts, fmt.Sprintf("context={%s}", strings.Join(contextParts, ", ")))
	}

	return strings.Join(parts, ": ")
}

// Unwrap returns the underlying cause
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// TransportError creates a new transport error
func TransportError(msg string, cause error) *AppError {
	return &AppError{
		Type:    ErrTypeTransport,
		Message: msg,
		Cause:   cause,
	}
}

// UpstreamStatusError creates an error for a non-2xx upstream response
func UpstreamStatusError(statusCode int, body string) *AppError {
	return (&AppError{
		Type:    ErrTypeUpstreamStatus,
		Message: fmt.Sprintf("upstream returned HTTP %d", statusCode),
	}).WithContext("status", statusCode).WithContext("body", body)
}

// UpstreamStatus extracts the HTTP status code from an upstream_status
// error, returning 0 for anything else.
func UpstreamStatus(err error) int {
	appErr, ok := err.(*AppError)
	if !ok || appErr.Type != ErrTypeUpstreamStatus {
		return 0
	}
	status, _ := appErr.Context["status"].(int)
	return status
}

// DecodeError creates an error for a payload that matched no known schema
func DecodeError(msg string, cause error) *AppError {
	return &AppError{
		Type:    ErrTypeDecode,
		Message: msg,
		Cause:   cause,
	}
}

// NotFoundError creates a new not found error
func NotFoundError(resource string) *AppError {
	return &AppError{
		Type:    ErrTypeNotFound,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

// ValidationError creates a new validation error
func ValidationError(msg string) *AppError {
	return &AppError{
		Type:    ErrTypeValidation,
		Message: msg,
	}
}

// ConfigError creates a new configuration error
func ConfigError(msg string) *AppError {
	return &AppError{
		Type:    ErrTypeConfig,
		Message: msg,
	}
}

// InternalError creates a new internal error
func InternalError(msg string, cause error) *AppError {
	return &AppError{
		Type:    ErrTypeInternal,
		Message: msg,
		Cause:   cause,
	}
}

// IsType checks if an error is of a specific type
func IsType(err error, errType ErrorType) bool {
	if err == nil {
		return false
	}

	appErr, ok := err.(*AppError)
	if !ok {
		return false
	}

	return appErr.Type == errType
}

// GetType returns the error type if it's an AppError, otherwise returns ErrTypeInternal
func GetType(err error) ErrorType {
	if err == nil {
		return ""
	}

	appErr, ok := err.(*AppError)
	if !ok {
		return ErrTypeInternal
	}

	return appErr.Type
}

// IsRecoverable reports whether an error should degrade to "no data"
// at the cache boundary instead of propagating to the consumer.
func IsRecoverable(err error) bool {
	switch GetType(err) {
	case ErrTypeTransport, ErrTypeUpstreamStatus, ErrTypeDecode, ErrTypeNotFound:
		return true
	}
	return false
}
