package models

import (
	"time"

	"github.com/google/uuid"
)

// Client is a CRM contact of a studio
type Client struct {
	ID        uuid.UUID `json:"id" db:"id"`
	OrgID     uuid.UUID `json:"org_id" db:"org_id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Phone     string    `json:"phone,omitempty" db:"phone"`
	Company   string    `json:"company,omitempty" db:"company"`
	Tags      []string  `json:"tags" db:"tags"`
	Notes     string    `json:"notes,omitempty" db:"notes"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the Client model
func (Client) TableName() string {
	return "clients"
}

// NewClient creates a new Client instance
func NewClient(orgID uuid.UUID, name, email string) *Client {
	now := time.Now().UTC()
	return &Client{
		ID:        uuid.New(),
		OrgID:     orgID,
		Name:      name,
		Email:     email,
		Tags:      []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AddTag adds a tag if not already present and reports whether it changed
func (c *Client) AddTag(tag string) bool {
	for _, t := range c.Tags {
		if t == tag {
			return false
		}
	}
	c.Tags = append(c.Tags, tag)
	return true
}

// ClientFilter narrows client listings
type ClientFilter struct {
	Search string
	Tag    string
	Limit  int
	Offset int
}
