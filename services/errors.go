package services

import (
	"errors"
	"fmt"

	"github.com/photoproos/platform/repositories"
)

// ErrorType represents the type/category of error
type ErrorType string

const (
	ErrorTypeNotFound     ErrorType = "not_found"
	ErrorTypeValidation   ErrorType = "validation"
	ErrorTypeUnauthorized ErrorType = "unauthorized"
	ErrorTypeForbidden    ErrorType = "forbidden"
	ErrorTypeRateLimit    ErrorType = "rate_limit"
	ErrorTypeConflict     ErrorType = "conflict"
	ErrorTypeInternal     ErrorType = "internal"
	ErrorTypeExternal     ErrorType = "external"
)

// DomainError represents a structured error with additional context
type DomainError struct {
	Type    ErrorType
	Message string
	Err     error
	Details map[string]interface{}
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is; two domain errors match when type and message agree
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Message == t.Message
}

// WithDetail adds a detail to the error
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// NewDomainError creates a new domain error
func NewDomainError(errType ErrorType, message string, err error) *DomainError {
	return &DomainError{
		Type:    errType,
		Message: message,
		Err:     err,
		Details: make(map[string]interface{}),
	}
}

// Domain error variables

var (
	// Not Found Errors
	ErrOrganizationNotFound = NewDomainError(ErrorTypeNotFound, "organization not found", nil)
	ErrUserNotFound         = NewDomainError(ErrorTypeNotFound, "user not found", nil)
	ErrClientNotFound       = NewDomainError(ErrorTypeNotFound, "client not found", nil)
	ErrGalleryNotFound      = NewDomainError(ErrorTypeNotFound, "gallery not found", nil)
	ErrInvoiceNotFound      = NewDomainError(ErrorTypeNotFound, "invoice not found", nil)
	ErrPaymentNotFound      = NewDomainError(ErrorTypeNotFound, "payment not found", nil)
	ErrBookingNotFound      = NewDomainError(ErrorTypeNotFound, "booking not found", nil)
	ErrRateNotFound         = NewDomainError(ErrorTypeNotFound, "no active pay rate for photographer", nil)
	ErrEarningNotFound      = NewDomainError(ErrorTypeNotFound, "earning not found", nil)
	ErrPayoutBatchNotFound  = NewDomainError(ErrorTypeNotFound, "payout batch not found", nil)
	ErrWorkflowNotFound     = NewDomainError(ErrorTypeNotFound, "workflow not found", nil)
	ErrTicketNotFound       = NewDomainError(ErrorTypeNotFound, "support ticket not found", nil)
	ErrContentNotFound      = NewDomainError(ErrorTypeNotFound, "content not found", nil)
	ErrAPIKeyNotFound       = NewDomainError(ErrorTypeNotFound, "API key not found", nil)
	ErrFeatureFlagNotFound  = NewDomainError(ErrorTypeNotFound, "feature flag not found", nil)
	ErrSocialPostNotFound   = NewDomainError(ErrorTypeNotFound, "social post not found", nil)
	ErrAuditLogNotFound     = NewDomainError(ErrorTypeNotFound, "audit log not found", nil)

	// Validation Errors
	ErrInvalidInput        = NewDomainError(ErrorTypeValidation, "invalid input", nil)
	ErrInvalidSlug         = NewDomainError(ErrorTypeValidation, "invalid slug format", nil)
	ErrInvalidEmail        = NewDomainError(ErrorTypeValidation, "invalid email format", nil)
	ErrInvalidDateRange    = NewDomainError(ErrorTypeValidation, "invalid date range", nil)
	ErrInvalidTransition   = NewDomainError(ErrorTypeValidation, "invalid status transition", nil)
	ErrInvoiceNotEditable  = NewDomainError(ErrorTypeValidation, "invoice can only be edited in draft", nil)
	ErrInvalidAmount       = NewDomainError(ErrorTypeValidation, "invalid amount", nil)
	ErrNothingToPayout     = NewDomainError(ErrorTypeValidation, "no approved earnings meet the payout minimum", nil)
	ErrBatchNotPending     = NewDomainError(ErrorTypeValidation, "payout batch is not pending", nil)
	ErrScheduleInPast      = NewDomainError(ErrorTypeValidation, "scheduled time must be in the future", nil)
	ErrInvalidWebhookEvent = NewDomainError(ErrorTypeValidation, "invalid webhook event", nil)

	// Authorization Errors
	ErrUnauthorized     = NewDomainError(ErrorTypeUnauthorized, "unauthorized", nil)
	ErrInvalidAPIKey    = NewDomainError(ErrorTypeUnauthorized, "invalid API key", nil)
	ErrInvalidToken     = NewDomainError(ErrorTypeUnauthorized, "invalid authentication token", nil)
	ErrTokenExpired     = NewDomainError(ErrorTypeUnauthorized, "authentication token expired", nil)
	ErrInvalidSignature = NewDomainError(ErrorTypeUnauthorized, "invalid webhook signature", nil)

	// Permission Errors
	ErrForbidden               = NewDomainError(ErrorTypeForbidden, "access forbidden", nil)
	ErrInsufficientPermissions = NewDomainError(ErrorTypeForbidden, "insufficient permissions", nil)
	ErrOrgMismatch             = NewDomainError(ErrorTypeForbidden, "organization mismatch", nil)
	ErrFeatureDisabled         = NewDomainError(ErrorTypeForbidden, "feature not enabled for organization", nil)

	// Rate Limit Errors
	ErrRateLimitExceeded = NewDomainError(ErrorTypeRateLimit, "rate limit exceeded", nil)

	// Conflict Errors
	ErrDuplicateSlug      = NewDomainError(ErrorTypeConflict, "slug already exists", nil)
	ErrDuplicateEmail     = NewDomainError(ErrorTypeConflict, "email already exists", nil)
	ErrDuplicateKey       = NewDomainError(ErrorTypeConflict, "key already exists", nil)
	ErrBookingConflict    = NewDomainError(ErrorTypeConflict, "photographer already booked for that time", nil)
	ErrClientHasInvoices  = NewDomainError(ErrorTypeConflict, "client has invoices", nil)
	ErrConcurrentUpdate   = NewDomainError(ErrorTypeConflict, "concurrent update detected", nil)
	ErrJobRunning         = NewDomainError(ErrorTypeConflict, "job is already running", nil)
	ErrEarningAlreadyPaid = NewDomainError(ErrorTypeConflict, "earning is already batched or paid", nil)
	ErrAlreadyMember      = NewDomainError(ErrorTypeConflict, "user already belongs to an organization", nil)
	ErrLastOwner          = NewDomainError(ErrorTypeConflict, "organization must keep at least one owner", nil)

	// Internal Errors
	ErrInternal          = NewDomainError(ErrorTypeInternal, "internal server error", nil)
	ErrDatabaseError     = NewDomainError(ErrorTypeInternal, "database error", nil)
	ErrTransactionFailed = NewDomainError(ErrorTypeInternal, "transaction failed", nil)
	ErrCacheFailed       = NewDomainError(ErrorTypeInternal, "cache operation failed", nil)

	// External Provider Errors
	ErrProviderUnavailable = NewDomainError(ErrorTypeExternal, "payment provider unavailable", nil)
	ErrProviderError       = NewDomainError(ErrorTypeExternal, "payment provider error", nil)
)

// TypeOf returns the category of err, or "" when err is not a DomainError
func TypeOf(err error) ErrorType {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type
	}
	return ""
}

// Category predicates, matching wrapped errors too
func IsNotFoundError(err error) bool { return TypeOf(err) == ErrorTypeNotFound }
func IsValidationError(err error) bool { return TypeOf(err) == ErrorTypeValidation }
func IsUnauthorizedError(err error) bool { return TypeOf(err) == ErrorTypeUnauthorized }
func IsConflictError(err error) bool { return TypeOf(err) == ErrorTypeConflict }
func IsInternalError(err error) bool { return TypeOf(err) == ErrorTypeInternal }
func IsExternalError(err error) bool { return TypeOf(err) == ErrorTypeExternal }

// GetErrorDetails returns the details of a domain error, or nil
func GetErrorDetails(err error) map[string]interface{} {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Details
	}
	return nil
}

// WrapInternal wraps an error as an internal error
func WrapInternal(message string, err error) error {
	return NewDomainError(ErrorTypeInternal, message, err)
}

// WrapExternal wraps an error as an external provider error
func WrapExternal(message string, err error) error {
	return NewDomainError(ErrorTypeExternal, message, err)
}

// Wrap returns err with message attached, keeping the type of a sentinel domain error.
// Sentinels are shared values, so callers must not mutate them directly.
func Wrap(sentinel *DomainError, err error) *DomainError {
	return &DomainError{
		Type:    sentinel.Type,
		Message: sentinel.Message,
		Err:     err,
		Details: make(map[string]interface{}),
	}
}

// Validation returns a validation error with the given message
func Validation(message string) *DomainError {
	return NewDomainError(ErrorTypeValidation, message, nil)
}

// MapRepoError translates repository sentinels into domain errors.
// notFound is returned for repositories.ErrNotFound; other errors become internal.
func MapRepoError(err error, notFound *DomainError, message string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrNotFound):
		return notFound
	case errors.Is(err, repositories.ErrDuplicate):
		return NewDomainError(ErrorTypeConflict, message+": already exists", err)
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return err
	}
	return WrapInternal(message, err)
}
