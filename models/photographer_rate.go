package models

import (
	"time"

	"github.com/google/uuid"
)

// RateType determines how a photographer's pay is computed
type RateType string

const (
	// RateTypePercentage pays rate_value basis points of booking revenue
	RateTypePercentage RateType = "percentage"
	// RateTypeFixed pays rate_value cents per booking
	RateTypeFixed RateType = "fixed"
	// RateTypeHourly pays rate_value cents per hour of session time
	RateTypeHourly RateType = "hourly"
)

// Valid reports whether the rate type is known
func (t RateType) Valid() bool {
	switch t {
	case RateTypePercentage, RateTypeFixed, RateTypeHourly:
		return true
	}
	return false
}

// PhotographerRate is a pay rule for one photographer. A nil ServiceType marks the default rate.
type PhotographerRate struct {
	ID             uuid.UUID `json:"id" db:"id"`
	OrgID          uuid.UUID `json:"org_id" db:"org_id"`
	PhotographerID uuid.UUID `json:"photographer_id" db:"photographer_id"`
	ServiceType    *string   `json:"service_type,omitempty" db:"service_type"`
	RateType       RateType  `json:"rate_type" db:"rate_type"`
	RateValue      int64     `json:"rate_value" db:"rate_value"`
	MinPayoutCents *int64    `json:"min_payout_cents,omitempty" db:"min_payout_cents"`
	MaxPayoutCents *int64    `json:"max_payout_cents,omitempty" db:"max_payout_cents"`
	IsActive       bool      `json:"is_active" db:"is_active"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the PhotographerRate model
func (PhotographerRate) TableName() string {
	return "photographer_rates"
}

// NewPhotographerRate creates an active rate
func NewPhotographerRate(orgID, photographerID uuid.UUID, rateType RateType, value int64) *PhotographerRate {
	now := time.Now().UTC()
	return &PhotographerRate{
		ID:             uuid.New(),
		OrgID:          orgID,
		PhotographerID: photographerID,
		RateType:       rateType,
		RateValue:      value,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// IsDefault reports whether the rate applies to any service type
func (r *PhotographerRate) IsDefault() bool {
	return r.ServiceType == nil || *r.ServiceType == ""
}
