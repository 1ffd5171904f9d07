// Package services sits between the transport adapters (HTTP handlers, CLI)
// and the clustering core: it converts input, applies configured defaults,
// owns the random generator and maps core errors to stable codes.
package services

import (
	"errors"

	"github.com/soltixdb/kcluster/internal/analytics"
)

// Error codes returned to callers
const (
	CodeInvalidInput     = "INVALID_INPUT"
	CodeUnsupportedType  = "UNSUPPORTED_TYPE"
	CodeInvalidParameter = "INVALID_PARAMETER"
	CodeMissingParameter = "MISSING_PARAMETER"
	CodeInsufficientData = "INSUFFICIENT_DATA"
	CodeTooManyPoints    = "TOO_MANY_POINTS"
	CodeUnknownOperation = "UNKNOWN_OPERATION"
	CodeInternalError    = "INTERNAL_ERROR"
)

// ServiceError represents a service layer error
type ServiceError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e *ServiceError) Error() string {
	return e.Message
}

// NewServiceError creates a new ServiceError
func NewServiceError(code, message string) *ServiceError {
	return &ServiceError{
		Code:    code,
		Message: message,
	}
}

// NewServiceErrorWithDetails creates a new ServiceError with details
func NewServiceErrorWithDetails(code, message string, details map[string]interface{}) *ServiceError {
	return &ServiceError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// IsClientError reports whether the error code describes bad caller input
func (e *ServiceError) IsClientError() bool {
	return e.Code != CodeInternalError
}

// fromAnalytics maps a core error to a ServiceError tagged with op
func fromAnalytics(op string, err error) *ServiceError {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr
	}

	code := CodeInternalError
	switch analytics.KindOf(err) {
	case analytics.ErrInvalidInput:
		code = CodeInvalidInput
	case analytics.ErrUnsupportedType:
		code = CodeUnsupportedType
	case analytics.ErrInvalidParameter:
		code = CodeInvalidParameter
	case analytics.ErrInsufficientData:
		code = CodeInsufficientData
	}

	return NewServiceErrorWithDetails(code, err.Error(), map[string]interface{}{"op": op})
}
