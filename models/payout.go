package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PayoutBatchStatus represents the lifecycle state of a payout batch
type PayoutBatchStatus string

const (
	PayoutBatchPending         PayoutBatchStatus = "pending"
	PayoutBatchProcessing      PayoutBatchStatus = "processing"
	PayoutBatchCompleted       PayoutBatchStatus = "completed"
	PayoutBatchPartiallyFailed PayoutBatchStatus = "partially_failed"
	PayoutBatchFailed          PayoutBatchStatus = "failed"
	PayoutBatchCancelled       PayoutBatchStatus = "cancelled"
)

// PayoutItemStatus represents the disbursement state of one batch item
type PayoutItemStatus string

const (
	PayoutItemPending PayoutItemStatus = "pending"
	PayoutItemPaid    PayoutItemStatus = "paid"
	PayoutItemFailed  PayoutItemStatus = "failed"
)

// PayoutBatch groups approved earnings for a single disbursement run
type PayoutBatch struct {
	ID          uuid.UUID         `json:"id" db:"id"`
	OrgID       uuid.UUID         `json:"org_id" db:"org_id"`
	BatchNumber string            `json:"batch_number" db:"batch_number"`
	Status      PayoutBatchStatus `json:"status" db:"status"`
	Currency    string            `json:"currency" db:"currency"`
	TotalCents  int64             `json:"total_cents" db:"total_cents"`
	ItemCount   int               `json:"item_count" db:"item_count"`
	CreatedBy   *uuid.UUID        `json:"created_by,omitempty" db:"created_by"`
	Notes       string            `json:"notes,omitempty" db:"notes"`
	ProcessedAt *time.Time        `json:"processed_at,omitempty" db:"processed_at"`
	CreatedAt   time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at" db:"updated_at"`

	Items []*PayoutItem `json:"items,omitempty" db:"-"`
}

// TableName returns the table name for the PayoutBatch model
func (PayoutBatch) TableName() string {
	return "payout_batches"
}

// PayoutItem is one photographer's share of a batch
type PayoutItem struct {
	ID             uuid.UUID        `json:"id" db:"id"`
	BatchID        uuid.UUID        `json:"batch_id" db:"batch_id"`
	OrgID          uuid.UUID        `json:"org_id" db:"org_id"`
	PhotographerID uuid.UUID        `json:"photographer_id" db:"photographer_id"`
	AmountCents    int64            `json:"amount_cents" db:"amount_cents"`
	EarningsCount  int              `json:"earnings_count" db:"earnings_count"`
	Status         PayoutItemStatus `json:"status" db:"status"`
	TransferID     string           `json:"transfer_id,omitempty" db:"transfer_id"`
	FailureReason  string           `json:"failure_reason,omitempty" db:"failure_reason"`
	CreatedAt      time.Time        `json:"created_at" db:"created_at"`
}

// TableName returns the table name for the PayoutItem model
func (PayoutItem) TableName() string {
	return "payout_items"
}

// FormatBatchNumber renders PB-YYYYMMDD-<n>
func FormatBatchNumber(day time.Time, n int) string {
	return fmt.Sprintf("PB-%s-%d", day.UTC().Format("20060102"), n)
}

// FinalBatchStatus derives the terminal status of a processed batch from its item outcomes
func FinalBatchStatus(paid, failed int) PayoutBatchStatus {
	switch {
	case failed == 0:
		return PayoutBatchCompleted
	case paid == 0:
		return PayoutBatchFailed
	default:
		return PayoutBatchPartiallyFailed
	}
}

// PendingPayout summarises approved, unbatched earnings for one photographer
type PendingPayout struct {
	PhotographerID uuid.UUID `json:"photographer_id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	EarningsCount  int       `json:"earnings_count"`
	TotalCents     int64     `json:"total_cents"`
}
