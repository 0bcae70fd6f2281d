package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/photoproos/platform/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDomainError(t *testing.T) {
	baseErr := errors.New("base error")
	domainErr := NewDomainError(ErrorTypeNotFound, "resource not found", baseErr)

	assert.Equal(t, ErrorTypeNotFound, domainErr.Type)
	assert.Equal(t, "resource not found", domainErr.Message)
	assert.Equal(t, baseErr, domainErr.Err)
	assert.NotNil(t, domainErr.Details)
}

func TestDomainError_Error(t *testing.T) {
	tests := []struct {
		name    string
		err     *DomainError
		wantMsg string
	}{
		{
			name: "error with wrapped error",
			err: &DomainError{
				Type:    ErrorTypeNotFound,
				Message: "invoice not found",
				Err:     errors.New("db error"),
			},
			wantMsg: "not_found: invoice not found (db error)",
		},
		{
			name: "error without wrapped error",
			err: &DomainError{
				Type:    ErrorTypeValidation,
				Message: "invalid input",
			},
			wantMsg: "validation: invalid input",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMsg, tt.err.Error())
		})
	}
}

func TestDomainError_Unwrap(t *testing.T) {
	baseErr := errors.New("base error")
	domainErr := NewDomainError(ErrorTypeInternal, "internal error", baseErr)

	assert.Equal(t, baseErr, errors.Unwrap(domainErr))
}

func TestDomainError_Is(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{"same sentinel", ErrNothingToPayout, ErrNothingToPayout, true},
		{"wrapped sentinel", Wrap(ErrBookingConflict, errors.New("overlap")), ErrBookingConflict, true},
		{"same type different message", ErrInvalidInput, ErrNothingToPayout, false},
		{"different type", ErrInvoiceNotFound, ErrInvalidInput, false},
		{"not a domain error", ErrInvoiceNotFound, errors.New("regular error"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errors.Is(tt.err, tt.target))
		})
	}
}

func TestDomainError_WithDetail(t *testing.T) {
	err := NewDomainError(ErrorTypeValidation, "validation error", nil)

	err.WithDetail("field", "email").WithDetail("value", "invalid-email")

	assert.Equal(t, "email", err.Details["field"])
	assert.Equal(t, "invalid-email", err.Details["value"])
}

func TestErrorTypeHelpers(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
		want  bool
	}{
		{"not found", ErrBookingNotFound, IsNotFoundError, true},
		{"wrapped not found", fmt.Errorf("wrapped: %w", ErrUserNotFound), IsNotFoundError, true},
		{"nil is not found", nil, IsNotFoundError, false},
		{"validation", ErrNothingToPayout, IsValidationError, true},
		{"validation rejects not found", ErrRateNotFound, IsValidationError, false},
		{"unauthorized", ErrInvalidSignature, IsUnauthorizedError, true},
		{"unauthorized rejects forbidden", ErrFeatureDisabled, IsUnauthorizedError, false},
		{"conflict", ErrBookingConflict, IsConflictError, true},
		{"internal", ErrDatabaseError, IsInternalError, true},
		{"external", ErrProviderError, IsExternalError, true},
		{"external rejects internal", ErrInternal, IsExternalError, false},
		{"regular error", errors.New("regular"), IsInternalError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.check(tt.err))
		})
	}
}

func TestTypeOf(t *testing.T) {
	assert.Equal(t, ErrorTypeNotFound, TypeOf(ErrInvoiceNotFound))
	assert.Equal(t, ErrorTypeConflict, TypeOf(fmt.Errorf("x: %w", ErrClientHasInvoices)))
	assert.Equal(t, ErrorType(""), TypeOf(errors.New("regular")))
	assert.Equal(t, ErrorTypeForbidden, TypeOf(ErrFeatureDisabled))
	assert.Equal(t, ErrorTypeRateLimit, TypeOf(ErrRateLimitExceeded))
}

func TestGetErrorDetails(t *testing.T) {
	err := NewDomainError(ErrorTypeValidation, "validation error", nil)
	err.WithDetail("field", "email").WithDetail("reason", "invalid format")

	details := GetErrorDetails(err)
	require.NotNil(t, details)
	assert.Equal(t, "email", details["field"])
	assert.Equal(t, "invalid format", details["reason"])

	assert.Nil(t, GetErrorDetails(errors.New("regular error")))
}

func TestWrap_DoesNotMutateSentinel(t *testing.T) {
	cause := errors.New("stripe down")
	wrapped := Wrap(ErrProviderError, cause)
	wrapped.WithDetail("attempt", 2)

	assert.True(t, IsExternalError(wrapped))
	assert.Equal(t, cause, errors.Unwrap(wrapped))
	assert.Empty(t, ErrProviderError.Details)
}

func TestWrapInternalAndExternal(t *testing.T) {
	baseErr := errors.New("connection refused")

	internal := WrapInternal("failed to connect", baseErr)
	assert.True(t, IsInternalError(internal))
	assert.Equal(t, baseErr, errors.Unwrap(internal))

	external := WrapExternal("stripe request failed", baseErr)
	assert.True(t, IsExternalError(external))
}

func TestMapRepoError(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"not found", fmt.Errorf("get invoice: %w", repositories.ErrNotFound), IsNotFoundError},
		{"duplicate", fmt.Errorf("create org: %w", repositories.ErrDuplicate), IsConflictError},
		{"domain error passes through", ErrBookingConflict, IsConflictError},
		{"other", errors.New("syntax error"), IsInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapRepoError(tt.err, ErrInvoiceNotFound, "load invoice")
			assert.True(t, tt.check(got))
		})
	}

	assert.NoError(t, MapRepoError(nil, ErrInvoiceNotFound, "load invoice"))
	assert.Same(t, ErrInvoiceNotFound, MapRepoError(repositories.ErrNotFound, ErrInvoiceNotFound, "x"))
}
