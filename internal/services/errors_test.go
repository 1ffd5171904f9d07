package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soltixdb/kcluster/internal/analytics"
)

func TestServiceError_Error(t *testing.T) {
	err := &ServiceError{
		Code:    "TEST_ERROR",
		Message: "Test error message",
	}

	assert.Equal(t, "Test error message", err.Error())

	var _ error = err
}

func TestNewServiceErrorWithDetails(t *testing.T) {
	details := map[string]interface{}{"op": "kbig"}
	err := NewServiceErrorWithDetails(CodeInvalidParameter, "bad num", details)

	assert.Equal(t, CodeInvalidParameter, err.Code)
	assert.Equal(t, "bad num", err.Message)
	assert.Equal(t, "kbig", err.Details["op"])
	assert.True(t, err.IsClientError())
	assert.False(t, NewServiceError(CodeInternalError, "boom").IsClientError())
}

func TestServiceError_JSON(t *testing.T) {
	data, err := json.Marshal(NewServiceError(CodeInsufficientData, "empty"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"code":"INSUFFICIENT_DATA","message":"empty"}`, string(data))
}

func TestFromAnalytics(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
	}{
		{"invalid input", analytics.Errorf("convert", analytics.ErrInvalidInput, "null"), CodeInvalidInput},
		{"unsupported", analytics.Errorf("convert", analytics.ErrUnsupportedType, "string"), CodeUnsupportedType},
		{"parameter", analytics.Errorf("kplusplus", analytics.ErrInvalidParameter, "k"), CodeInvalidParameter},
		{"insufficient", analytics.Errorf("kbig", analytics.ErrInsufficientData, "empty"), CodeInsufficientData},
		{"internal", analytics.Errorf("kbig", analytics.ErrInternalInvariant, "label"), CodeInternalError},
		{"wrapped", fmt.Errorf("outer: %w", analytics.Errorf("x", analytics.ErrInvalidParameter, "m")), CodeInvalidParameter},
		{"foreign", errors.New("boom"), CodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svcErr := fromAnalytics("op", tt.err)
			assert.Equal(t, tt.code, svcErr.Code)
			assert.Equal(t, tt.err.Error(), svcErr.Message)
			assert.Equal(t, "op", svcErr.Details["op"])
		})
	}

	existing := NewServiceError(CodeTooManyPoints, "too many")
	assert.Same(t, existing, fromAnalytics("op", existing))
}
