package models

import (
	"time"

	"github.com/google/uuid"
)

// FeatureFlag gates functionality per organization
type FeatureFlag struct {
	ID             uuid.UUID   `json:"id" db:"id"`
	Key            string      `json:"key" db:"key"`
	Description    string      `json:"description" db:"description"`
	Enabled        bool        `json:"enabled" db:"enabled"`
	RolloutPercent int         `json:"rollout_percent" db:"rollout_percent"`
	OrgAllowlist   []uuid.UUID `json:"org_allowlist" db:"org_allowlist"`
	CreatedAt      time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the FeatureFlag model
func (FeatureFlag) TableName() string {
	return "feature_flags"
}

// Allows reports whether the organization is explicitly allowlisted
func (f *FeatureFlag) Allows(orgID uuid.UUID) bool {
	for _, id := range f.OrgAllowlist {
		if id == orgID {
			return true
		}
	}
	return false
}
