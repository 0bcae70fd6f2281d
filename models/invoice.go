package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// InvoiceStatus represents the lifecycle state of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft   InvoiceStatus = "draft"
	InvoiceStatusSent    InvoiceStatus = "sent"
	InvoiceStatusPaid    InvoiceStatus = "paid"
	InvoiceStatusOverdue InvoiceStatus = "overdue"
	InvoiceStatusVoid    InvoiceStatus = "void"
)

// invoiceTransitions lists the statuses reachable from each status
var invoiceTransitions = map[InvoiceStatus][]InvoiceStatus{
	InvoiceStatusDraft:   {InvoiceStatusSent, InvoiceStatusVoid},
	InvoiceStatusSent:    {InvoiceStatusPaid, InvoiceStatusOverdue, InvoiceStatusVoid},
	InvoiceStatusOverdue: {InvoiceStatusPaid, InvoiceStatusVoid, InvoiceStatusSent},
	InvoiceStatusPaid:    {InvoiceStatusSent}, // refund reopening
}

// CanTransition reports whether an invoice may move from s to next
func (s InvoiceStatus) CanTransition(next InvoiceStatus) bool {
	for _, allowed := range invoiceTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// LineItem is one billable row of an invoice
type LineItem struct {
	Description    string `json:"description"`
	Quantity       int64  `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	TotalCents     int64  `json:"total_cents"`
}

// Invoice is a bill sent to a client
type Invoice struct {
	ID              uuid.UUID     `json:"id" db:"id"`
	OrgID           uuid.UUID     `json:"org_id" db:"org_id"`
	ClientID        uuid.UUID     `json:"client_id" db:"client_id"`
	Number          string        `json:"number" db:"number"`
	Status          InvoiceStatus `json:"status" db:"status"`
	Currency        string        `json:"currency" db:"currency"`
	LineItems       []LineItem    `json:"line_items" db:"line_items"` // JSONB
	SubtotalCents   int64         `json:"subtotal_cents" db:"subtotal_cents"`
	DiscountCents   int64         `json:"discount_cents" db:"discount_cents"`
	TaxRateBps      int64         `json:"tax_rate_bps" db:"tax_rate_bps"`
	TaxCents        int64         `json:"tax_cents" db:"tax_cents"`
	TotalCents      int64         `json:"total_cents" db:"total_cents"`
	AmountPaidCents int64         `json:"amount_paid_cents" db:"amount_paid_cents"`
	Notes           string        `json:"notes,omitempty" db:"notes"`
	DueDate         *time.Time    `json:"due_date,omitempty" db:"due_date"`
	IssuedAt        *time.Time    `json:"issued_at,omitempty" db:"issued_at"`
	PaidAt          *time.Time    `json:"paid_at,omitempty" db:"paid_at"`
	CreatedAt       time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the Invoice model
func (Invoice) TableName() string {
	return "invoices"
}

// NewInvoice creates a draft invoice
func NewInvoice(orgID, clientID uuid.UUID, currency string) *Invoice {
	now := time.Now().UTC()
	return &Invoice{
		ID:        uuid.New(),
		OrgID:     orgID,
		ClientID:  clientID,
		Status:    InvoiceStatusDraft,
		Currency:  currency,
		LineItems: []LineItem{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// BalanceCents returns the amount still owed
func (i *Invoice) BalanceCents() int64 {
	return i.TotalCents - i.AmountPaidCents
}

// IsEditable reports whether line items may still change
func (i *Invoice) IsEditable() bool {
	return i.Status == InvoiceStatusDraft
}

// FormatInvoiceNumber renders the per-organization invoice number
func FormatInvoiceNumber(year int, seq int) string {
	return fmt.Sprintf("INV-%d-%04d", year, seq)
}
