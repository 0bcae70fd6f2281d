package models

import (
	"time"

	"github.com/google/uuid"
)

// API key scopes
const (
	ScopeClientsRead   = "clients:read"
	ScopeClientsWrite  = "clients:write"
	ScopeBookingsRead  = "bookings:read"
	ScopeInvoicesRead  = "invoices:read"
	ScopeGalleriesRead = "galleries:read"
)

// KnownScopes lists every scope an API key may carry
var KnownScopes = []string{
	ScopeClientsRead,
	ScopeClientsWrite,
	ScopeBookingsRead,
	ScopeInvoicesRead,
	ScopeGalleriesRead,
}

// APIKey grants an organization programmatic access to the external API
type APIKey struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	OrgID      uuid.UUID  `json:"org_id" db:"org_id"`
	Name       string     `json:"name" db:"name"`
	Prefix     string     `json:"prefix" db:"prefix"`
	KeyHash    string     `json:"-" db:"key_hash"`
	Scopes     []string   `json:"scopes" db:"scopes"`
	CreatedBy  *uuid.UUID `json:"created_by,omitempty" db:"created_by"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty" db:"last_used_at"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty" db:"expires_at"`
	RevokedAt  *time.Time `json:"revoked_at,omitempty" db:"revoked_at"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
}

// TableName returns the table name for the APIKey model
func (APIKey) TableName() string {
	return "api_keys"
}

// IsRevoked reports whether the key was revoked
func (k *APIKey) IsRevoked() bool {
	return k.RevokedAt != nil
}

// IsExpired reports whether the key expired before now
func (k *APIKey) IsExpired(now time.Time) bool {
	return k.ExpiresAt != nil && !now.Before(*k.ExpiresAt)
}

// HasScope reports whether the key carries the given scope
func (k *APIKey) HasScope(scope string) bool {
	for _, s := range k.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}
