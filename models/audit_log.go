package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AuditAction represents the type of action being audited
type AuditAction string

const (
	AuditActionOrgCreated        AuditAction = "org_created"
	AuditActionOrgUpdated        AuditAction = "org_updated"
	AuditActionOrgDeleted        AuditAction = "org_deleted"
	AuditActionUserRoleChanged   AuditAction = "user_role_changed"
	AuditActionClientCreated     AuditAction = "client_created"
	AuditActionClientUpdated     AuditAction = "client_updated"
	AuditActionClientDeleted     AuditAction = "client_deleted"
	AuditActionGalleryCreated    AuditAction = "gallery_created"
	AuditActionGalleryDelivered  AuditAction = "gallery_delivered"
	AuditActionGalleryArchived   AuditAction = "gallery_archived"
	AuditActionInvoiceCreated    AuditAction = "invoice_created"
	AuditActionInvoiceSent       AuditAction = "invoice_sent"
	AuditActionInvoiceVoided     AuditAction = "invoice_voided"
	AuditActionPaymentRecorded   AuditAction = "payment_recorded"
	AuditActionPaymentRefunded   AuditAction = "payment_refunded"
	AuditActionBookingCreated    AuditAction = "booking_created"
	AuditActionBookingStatus     AuditAction = "booking_status_changed"
	AuditActionRateChanged       AuditAction = "rate_changed"
	AuditActionEarningsApproved  AuditAction = "earnings_approved"
	AuditActionEarningCancelled  AuditAction = "earning_cancelled"
	AuditActionPayoutCreated     AuditAction = "payout_batch_created"
	AuditActionPayoutProcessed   AuditAction = "payout_batch_processed"
	AuditActionPayoutCancelled   AuditAction = "payout_batch_cancelled"
	AuditActionWorkflowChanged   AuditAction = "workflow_changed"
	AuditActionAPIKeyCreated     AuditAction = "api_key_created"
	AuditActionAPIKeyRevoked     AuditAction = "api_key_revoked"
	AuditActionAPIKeyDeleted     AuditAction = "api_key_deleted"
	AuditActionFeatureFlagChange AuditAction = "feature_flag_changed"
	AuditActionSocialPostChanged AuditAction = "social_post_changed"
	AuditActionTicketChanged     AuditAction = "support_ticket_changed"
	AuditActionContentChanged    AuditAction = "content_changed"
)

// AuditLog represents an audit trail entry
type AuditLog struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	OrgID        uuid.UUID       `json:"org_id" db:"org_id"`
	UserID       *uuid.UUID      `json:"user_id,omitempty" db:"user_id"`
	Action       AuditAction     `json:"action" db:"action"`
	ResourceType string          `json:"resource_type" db:"resource_type"` // invoice, booking, payout_batch, etc.
	ResourceID   *uuid.UUID      `json:"resource_id,omitempty" db:"resource_id"`
	Details      json.RawMessage `json:"details" db:"details"`             // JSONB for flexible metadata
	IPAddress    string          `json:"ip_address" db:"ip_address"`
	UserAgent    string          `json:"user_agent" db:"user_agent"`
	RequestID    string          `json:"request_id" db:"request_id"`
	Timestamp    time.Time       `json:"timestamp" db:"timestamp"`
}

// TableName returns the table name for the AuditLog model
func (AuditLog) TableName() string {
	return "audit_logs"
}

// NewAuditLog creates a new AuditLog instance
func NewAuditLog(orgID uuid.UUID, action AuditAction, resourceType string) *AuditLog {
	return &AuditLog{
		ID:           uuid.New(),
		OrgID:        orgID,
		Action:       action,
		ResourceType: resourceType,
		Timestamp:    time.Now().UTC(),
	}
}

// WithUser sets the user ID
func (a *AuditLog) WithUser(userID uuid.UUID) *AuditLog {
	if userID != uuid.Nil {
		a.UserID = &userID
	}
	return a
}

// WithResource sets the resource ID
func (a *AuditLog) WithResource(resourceID uuid.UUID) *AuditLog {
	a.ResourceID = &resourceID
	return a
}

// WithDetails sets the details
func (a *AuditLog) WithDetails(details interface{}) *AuditLog {
	if data, err := json.Marshal(details); err == nil {
		a.Details = data
	}
	return a
}

// WithRequest sets request metadata
func (a *AuditLog) WithRequest(requestID, ipAddress, userAgent string) *AuditLog {
	a.RequestID = requestID
	a.IPAddress = ipAddress
	a.UserAgent = userAgent
	return a
}

// AuditFilter narrows audit log listings
type AuditFilter struct {
	Action AuditAction
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}
