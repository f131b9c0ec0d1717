package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAppError(t *testing.T) {
	appErr := NewAppError(ErrorTypeValidation, "INVALID_INPUT", "Invalid input provided")

	assert.Equal(t, ErrorTypeValidation, appErr.Type)
	assert.Equal(t, "INVALID_INPUT", appErr.Code)
	assert.Equal(t, "Invalid input provided", appErr.Message)
	assert.WithinDuration(t, time.Now(), appErr.Timestamp, time.Second)
	assert.Nil(t, appErr.Cause)
	assert.Equal(t, http.StatusBadRequest, appErr.HTTPStatus)
}

func TestNewAppErrorWithCause(t *testing.T) {
	originalErr := errors.New("connection timeout")

	appErr := NewAppErrorWithCause(ErrorTypeInternal, "DB_ERROR", "Database connection failed", originalErr)

	assert.Equal(t, originalErr, appErr.Cause)
	assert.Equal(t, originalErr.Error(), appErr.Details)
	assert.Equal(t, http.StatusInternalServerError, appErr.HTTPStatus)
}

func TestAppError_WithMethods(t *testing.T) {
	appErr := NewAppErrorWithCause(ErrorTypeInternal, "WRAPPED_ERROR", "An error occurred", errors.New("original error")).
		WithCorrelationID("test-correlation-id").
		WithMetadata("context", "test").
		WithHTTPStatus(http.StatusTeapot)

	assert.Equal(t, "test-correlation-id", appErr.CorrelationID)
	assert.Equal(t, "test", appErr.Metadata["context"])
	assert.Equal(t, "original error", appErr.Details)
	assert.Equal(t, http.StatusTeapot, appErr.HTTPStatus)
}

func TestAppError_Error(t *testing.T) {
	appErr := &AppError{Code: "INVALID_INPUT", Message: "Invalid input provided"}
	assert.Equal(t, "INVALID_INPUT: Invalid input provided", appErr.Error())

	appErr.Details = "original error"
	assert.Equal(t, "INVALID_INPUT: Invalid input provided - original error", appErr.Error())
}

func TestDefaultHTTPStatus(t *testing.T) {
	tests := []struct {
		name         string
		errorType    ErrorType
		expectedCode int
	}{
		{"Validation error", ErrorTypeValidation, http.StatusBadRequest},
		{"Authentication error", ErrorTypeAuthentication, http.StatusUnauthorized},
		{"Not found error", ErrorTypeNotFound, http.StatusNotFound},
		{"Conflict error", ErrorTypeConflict, http.StatusConflict},
		{"Rate limit error", ErrorTypeRateLimit, http.StatusTooManyRequests},
		{"Internal error", ErrorTypeInternal, http.StatusInternalServerError},
		{"Timeout error", ErrorTypeTimeout, http.StatusRequestTimeout},
		{"Database error", ErrorTypeDatabase, http.StatusInternalServerError},
		{"Unknown error", ErrorType("unknown"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedCode, getDefaultHTTPStatus(tt.errorType))
		})
	}
}

func TestCommonConstructors(t *testing.T) {
	cause := errors.New("connection refused")

	tests := []struct {
		name     string
		err      *AppError
		errType  ErrorType
		code     string
		message  string
		metadata map[string]interface{}
	}{
		{"validation", NewValidationError("email", "Invalid email"), ErrorTypeValidation, "VALIDATION_ERROR", "Invalid email", map[string]interface{}{"field": "email"}},
		{"authentication", NewAuthenticationError("Token is invalid"), ErrorTypeAuthentication, "AUTH_ERROR", "Token is invalid", nil},
		{"not found", NewNotFoundError("Profile"), ErrorTypeNotFound, "NOT_FOUND", "Profile not found", map[string]interface{}{"resource": "Profile"}},
		{"conflict", NewConflictError("Email already registered"), ErrorTypeConflict, "CONFLICT", "Email already registered", nil},
		{"rate limit", NewRateLimitError(10, "1s"), ErrorTypeRateLimit, "RATE_LIMIT_EXCEEDED", "Rate limit exceeded", map[string]interface{}{"limit": 10, "window": "1s"}},
		{"database", NewDatabaseError("SELECT", cause), ErrorTypeDatabase, "DATABASE_ERROR", "Database operation failed: SELECT", map[string]interface{}{"operation": "SELECT"}},
		{"cache", NewCacheError("GET", cause), ErrorTypeCache, "CACHE_ERROR", "Cache operation failed: GET", map[string]interface{}{"operation": "GET"}},
		{"timeout", NewTimeoutError("query", 30*time.Second), ErrorTypeTimeout, "TIMEOUT", "Operation timed out: query", map[string]interface{}{"operation": "query", "timeout": "30s"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.errType, tt.err.Type)
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.message, tt.err.Message)
			for k, v := range tt.metadata {
				assert.Equal(t, v, tt.err.Metadata[k], k)
			}
			assert.NotZero(t, tt.err.Timestamp)
		})
	}
}

func TestMatchingErrors(t *testing.T) {
	t.Run("preferences missing is not an HTTP failure", func(t *testing.T) {
		err := NewPreferencesMissingError("u1")
		assert.Equal(t, CodePreferencesMissing, err.Code)
		assert.Equal(t, http.StatusOK, err.HTTPStatus)
		assert.Equal(t, "u1", err.Metadata["user_id"])
	})

	t.Run("candidate incomplete", func(t *testing.T) {
		err := NewCandidateDataIncompleteError("u2", "preferences")
		assert.Equal(t, CodeCandidateDataIncomplete, err.Code)
		assert.Equal(t, "preferences", err.Metadata["missing"])
	})

	t.Run("invalid swipe direction is a validation error", func(t *testing.T) {
		err := NewInvalidSwipeDirectionError("up")
		assert.Equal(t, ErrorTypeValidation, err.Type)
		assert.Equal(t, http.StatusBadRequest, err.HTTPStatus)
		assert.Contains(t, err.Message, `"up"`)
	})

	t.Run("partial match write keeps its cause", func(t *testing.T) {
		cause := errors.New("commit failed")
		err := NewPartialMatchWriteError("a", "b", cause)
		assert.Equal(t, http.StatusInternalServerError, err.HTTPStatus)
		assert.ErrorIs(t, err, cause)
		assert.Equal(t, "b", err.Metadata["target_id"])
	})
}

func TestLookupHelpers(t *testing.T) {
	appErr := NewInvalidSwipeDirectionError("up")
	wrapped := fmt.Errorf("apply swipe: %w", appErr)
	regularErr := errors.New("regular error")

	got, ok := AsAppError(wrapped)
	require.True(t, ok)
	assert.Same(t, appErr, got)

	assert.True(t, IsErrorType(wrapped, ErrorTypeValidation))
	assert.False(t, IsErrorType(wrapped, ErrorTypeInternal))
	assert.False(t, IsErrorType(regularErr, ErrorTypeValidation))

	_, ok = AsAppError(regularErr)
	assert.False(t, ok)
}

func TestAppError_ChainedErrors(t *testing.T) {
	originalErr := errors.New("database connection failed")
	middleErr := NewDatabaseError("SELECT", originalErr)
	finalErr := NewInternalError("Service unavailable", middleErr)

	assert.True(t, errors.Is(finalErr, originalErr))
	assert.True(t, errors.Is(finalErr, middleErr))
	assert.Equal(t, middleErr, errors.Unwrap(finalErr))
}
