package models

import (
	"time"

	"github.com/google/uuid"
)

// UserRole represents the role of a user within an organization
type UserRole string

const (
	RoleOwner        UserRole = "owner"
	RoleAdmin        UserRole = "admin"
	RolePhotographer UserRole = "photographer"
	RoleMember       UserRole = "member"
)

// Valid reports whether r is a known role
func (r UserRole) Valid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RolePhotographer, RoleMember:
		return true
	}
	return false
}

// User represents a studio member authenticated via Clerk
type User struct {
	ID              uuid.UUID `json:"id" db:"id"`
	ClerkUserID     string    `json:"clerk_user_id" db:"clerk_user_id"`
	Email           string    `json:"email" db:"email"`
	Name            string    `json:"name" db:"name"`
	OrgID           uuid.UUID `json:"org_id" db:"org_id"`
	Role            UserRole  `json:"role" db:"role"`
	IsSuperAdmin    bool      `json:"is_super_admin" db:"is_super_admin"`
	StripeAccountID string    `json:"-" db:"stripe_account_id"` // connected account for payouts
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the User model
func (User) TableName() string {
	return "users"
}

// NewUser creates a new User instance
func NewUser(email, clerkUserID string, orgID uuid.UUID, role UserRole) *User {
	now := time.Now().UTC()
	return &User{
		ID:          uuid.New(),
		Email:       email,
		ClerkUserID: clerkUserID,
		OrgID:       orgID,
		Role:        role,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// IsAdmin returns true for owners and admins
func (u *User) IsAdmin() bool {
	return u.Role == RoleOwner || u.Role == RoleAdmin
}

// CanManageFinances returns true if the user may run payouts and edit invoices
func (u *User) CanManageFinances() bool {
	return u.IsAdmin() || u.IsSuperAdmin
}
