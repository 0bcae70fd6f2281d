package models

import (
	"time"

	"github.com/google/uuid"
)

// PaymentStatus represents the processor state of a payment
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusSucceeded PaymentStatus = "succeeded"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

// Payment records money received against an invoice
type Payment struct {
	ID                uuid.UUID     `json:"id" db:"id"`
	OrgID             uuid.UUID     `json:"org_id" db:"org_id"`
	InvoiceID         uuid.UUID     `json:"invoice_id" db:"invoice_id"`
	ClientID          uuid.UUID     `json:"client_id" db:"client_id"`
	AmountCents       int64         `json:"amount_cents" db:"amount_cents"`
	Currency          string        `json:"currency" db:"currency"`
	Status            PaymentStatus `json:"status" db:"status"`
	Provider          string        `json:"provider" db:"provider"` // stripe, cash, bank_transfer
	ProviderPaymentID string        `json:"provider_payment_id,omitempty" db:"provider_payment_id"`
	PaidAt            *time.Time    `json:"paid_at,omitempty" db:"paid_at"`
	CreatedAt         time.Time     `json:"created_at" db:"created_at"`
}

// TableName returns the table name for the Payment model
func (Payment) TableName() string {
	return "payments"
}

// NewPayment creates a succeeded payment for an invoice
func NewPayment(inv *Invoice, amountCents int64, provider, providerPaymentID string) *Payment {
	now := time.Now().UTC()
	return &Payment{
		ID:                uuid.New(),
		OrgID:             inv.OrgID,
		InvoiceID:         inv.ID,
		ClientID:          inv.ClientID,
		AmountCents:       amountCents,
		Currency:          inv.Currency,
		Status:            PaymentStatusSucceeded,
		Provider:          provider,
		ProviderPaymentID: providerPaymentID,
		PaidAt:            &now,
		CreatedAt:         now,
	}
}
