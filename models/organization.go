package models

import (
	"time"

	"github.com/google/uuid"
)

// Organization represents a studio (tenant) in the multi-tenant system
type Organization struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Slug      string    `json:"slug" db:"slug"` // URL-friendly identifier
	Currency  string    `json:"currency" db:"currency"`
	Timezone  string    `json:"timezone" db:"timezone"`
	Plan      string    `json:"plan" db:"plan"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the Organization model
func (Organization) TableName() string {
	return "organizations"
}

// NewOrganization creates a new Organization on the free plan
func NewOrganization(name, slug string) *Organization {
	now := time.Now().UTC()
	return &Organization{
		ID:        uuid.New(),
		Name:      name,
		Slug:      slug,
		Currency:  "usd",
		Timezone:  "UTC",
		Plan:      "free",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// OrganizationSummary is the super-admin view of a tenant
type OrganizationSummary struct {
	Organization
	MemberCount  int   `json:"member_count"`
	ClientCount  int   `json:"client_count"`
	RevenueCents int64 `json:"revenue_cents"`
}
