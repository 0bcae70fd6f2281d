package models

import (
	"time"

	"github.com/google/uuid"
)

// EarningStatus represents the payout state of an earning
type EarningStatus string

const (
	EarningStatusPending   EarningStatus = "pending"
	EarningStatusApproved  EarningStatus = "approved"
	EarningStatusPaid      EarningStatus = "paid"
	EarningStatusCancelled EarningStatus = "cancelled"
)

// PhotographerEarning is an amount owed to a photographer, usually for a completed booking
type PhotographerEarning struct {
	ID             uuid.UUID     `json:"id" db:"id"`
	OrgID          uuid.UUID     `json:"org_id" db:"org_id"`
	PhotographerID uuid.UUID     `json:"photographer_id" db:"photographer_id"`
	BookingID      *uuid.UUID    `json:"booking_id,omitempty" db:"booking_id"`
	Description    string        `json:"description" db:"description"`
	AmountCents    int64         `json:"amount_cents" db:"amount_cents"`
	Status         EarningStatus `json:"status" db:"status"`
	PayoutBatchID  *uuid.UUID    `json:"payout_batch_id,omitempty" db:"payout_batch_id"`
	EarnedAt       time.Time     `json:"earned_at" db:"earned_at"`
	CreatedAt      time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the PhotographerEarning model
func (PhotographerEarning) TableName() string {
	return "photographer_earnings"
}

// NewEarning creates a pending earning
func NewEarning(orgID, photographerID uuid.UUID, amountCents int64, description string) *PhotographerEarning {
	now := time.Now().UTC()
	return &PhotographerEarning{
		ID:             uuid.New(),
		OrgID:          orgID,
		PhotographerID: photographerID,
		Description:    description,
		AmountCents:    amountCents,
		Status:         EarningStatusPending,
		EarnedAt:       now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// IsBatched reports whether the earning is attached to a payout batch
func (e *PhotographerEarning) IsBatched() bool {
	return e.PayoutBatchID != nil
}

// EarningFilter narrows earning listings
type EarningFilter struct {
	PhotographerID *uuid.UUID
	Status         EarningStatus
	Limit          int
	Offset         int
}
