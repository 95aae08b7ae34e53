package errors

import (
	"errors"
	"fmt"
)

type ErrorKind int

const (
	KindValidation ErrorKind = iota
	KindNotFound
	KindStore
	KindRateLimited
	KindMethodNotAllowed
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindStore:
		return "store"
	case KindRateLimited:
		return "rate_limited"
	case KindMethodNotAllowed:
		return "method_not_allowed"
	default:
		return "unknown"
	}
}

// Machine-readable codes returned to API clients.
const (
	CodeStoreFailure  = "E-001"
	CodeNotFound      = "E-002"
	CodeMissingField  = "E-003"
	CodeInvalidField  = "E-004"
	CodeRateLimited   = "E-005"
	CodeBadMethod     = "E-006"
	MessageNotFound   = "Resource Does Not Exist"
	MessageStoreError = "Unable to query the data store"
	MessageRateLimit  = "Too Many Requests"
	MessageBadMethod  = "Method Not Allowed"
)

type APIError struct {
	Kind      ErrorKind
	Code      string
	Operation string
	Message   string
	Cause     error
}

func (e *APIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s failed: %s (caused by: %v)", e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s failed: %s", e.Operation, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Cause
}

// NewMissingFieldError reports an absent required parameter, e.g.
// Missing field ['text'].
func NewMissingFieldError(operation, field string) *APIError {
	return &APIError{
		Kind:      KindValidation,
		Code:      CodeMissingField,
		Operation: operation,
		Message:   fmt.Sprintf("Missing field ['%s']", field),
	}
}

// NewInvalidFieldError reports a parameter that is present but malformed.
func NewInvalidFieldError(operation, field string, cause error) *APIError {
	return &APIError{
		Kind:      KindValidation,
		Code:      CodeInvalidField,
		Operation: operation,
		Message:   fmt.Sprintf("Invalid field ['%s']", field),
		Cause:     cause,
	}
}

func NewNotFoundError(operation string) *APIError {
	return &APIError{
		Kind:      KindNotFound,
		Code:      CodeNotFound,
		Operation: operation,
		Message:   MessageNotFound,
	}
}

func NewRateLimitError(operation string) *APIError {
	return &APIError{
		Kind:      KindRateLimited,
		Code:      CodeRateLimited,
		Operation: operation,
		Message:   MessageRateLimit,
	}
}

func NewMethodNotAllowedError(operation string) *APIError {
	return &APIError{
		Kind:      KindMethodNotAllowed,
		Code:      CodeBadMethod,
		Operation: operation,
		Message:   MessageBadMethod,
	}
}

// NewStoreError wraps a failed query. The cause stays reachable through
// errors.Is and errors.As.
func NewStoreError(operation string, cause error) *APIError {
	return &APIError{
		Kind:      KindStore,
		Code:      CodeStoreFailure,
		Operation: operation,
		Message:   MessageStoreError,
		Cause:     cause,
	}
}

// As returns the first APIError in err's chain.
func As(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// KindOf classifies err. Errors outside the taxonomy count as store failures.
func KindOf(err error) ErrorKind {
	if apiErr, ok := As(err); ok {
		return apiErr.Kind
	}
	return KindStore
}

func CodeOf(err error) string {
	if apiErr, ok := As(err); ok {
		return apiErr.Code
	}
	return CodeStoreFailure
}
