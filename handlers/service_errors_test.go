package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/photoproos/platform/services"
	"github.com/photoproos/platform/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func decodeErrorBody(t *testing.T, w *httptest.ResponseRecorder) utils.ErrorResponse {
	t.Helper()
	var resp utils.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestHandleServiceError(t *testing.T) {
	logger := zap.NewNop()

	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedError  string
	}{
		{"not found error", services.ErrClientNotFound, http.StatusNotFound, "not_found"},
		{"validation error", services.ErrInvalidInput, http.StatusBadRequest, "bad_request"},
		{"unauthorized error", services.ErrInvalidAPIKey, http.StatusUnauthorized, "unauthorized"},
		{"forbidden error", services.ErrInsufficientPermissions, http.StatusForbidden, "forbidden"},
		{"rate limit error", services.ErrRateLimitExceeded, http.StatusTooManyRequests, "rate_limit_exceeded"},
		{"conflict error", services.ErrBookingConflict, http.StatusConflict, "conflict"},
		{"external provider error", services.ErrProviderUnavailable, http.StatusBadGateway, "bad_gateway"},
		{"internal error", services.WrapInternal("save invoice", errors.New("db down")), http.StatusInternalServerError, "internal_error"},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			HandleServiceError(w, tt.err, logger)

			assert.Equal(t, tt.expectedStatus, w.Code)
			resp := decodeErrorBody(t, w)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.expectedError, resp.Error)
		})
	}
}

func TestHandleServiceError_HidesInternalCause(t *testing.T) {
	w := httptest.NewRecorder()
	HandleServiceError(w, services.WrapInternal("save invoice", errors.New("pq: password authentication failed")), zap.NewNop())

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "password")
}

func TestHandleServiceErrorWithDetails(t *testing.T) {
	err := services.Wrap(services.ErrEarningAlreadyPaid, nil).WithDetail("earning_id", "abc")

	w := httptest.NewRecorder()
	HandleServiceError(w, err, zap.NewNop())

	assert.Equal(t, http.StatusConflict, w.Code)
	resp := decodeErrorBody(t, w)
	assert.Equal(t, "abc", resp.Details["earning_id"])
}

func TestHandleServiceError_RetryAfter(t *testing.T) {
	err := services.Wrap(services.ErrRateLimitExceeded, nil).WithDetail("retry_after_seconds", 12)

	w := httptest.NewRecorder()
	HandleServiceError(w, err, zap.NewNop())

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "12", w.Header().Get("Retry-After"))
}

func TestHandleServiceErrorNil(t *testing.T) {
	w := httptest.NewRecorder()
	HandleServiceError(w, nil, zap.NewNop())

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestHandleValidationError(t *testing.T) {
	type input struct {
		Email string `json:"email" validate:"required,email"`
	}

	t.Run("struct validation", func(t *testing.T) {
		err := utils.ValidateStruct(input{Email: "nope"})
		require.True(t, utils.IsValidationError(err))

		w := httptest.NewRecorder()
		HandleValidationError(w, err, zap.NewNop())

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeErrorBody(t, w)
		assert.Equal(t, "Validation failed", resp.Message)
		assert.Contains(t, resp.Details, "email")
	})

	t.Run("decode error", func(t *testing.T) {
		w := httptest.NewRecorder()
		HandleValidationError(w, errors.New("request body is required"), zap.NewNop())

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "request body is required", decodeErrorBody(t, w).Message)
	})
}
