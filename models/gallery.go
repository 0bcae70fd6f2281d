package models

import (
	"time"

	"github.com/google/uuid"
)

// GalleryStatus represents the delivery state of a gallery
type GalleryStatus string

const (
	GalleryStatusDraft     GalleryStatus = "draft"
	GalleryStatusDelivered GalleryStatus = "delivered"
	GalleryStatusArchived  GalleryStatus = "archived"
)

// Gallery is a client project whose photos are delivered online
type Gallery struct {
	ID          uuid.UUID     `json:"id" db:"id"`
	OrgID       uuid.UUID     `json:"org_id" db:"org_id"`
	ClientID    *uuid.UUID    `json:"client_id,omitempty" db:"client_id"`
	Name        string        `json:"name" db:"name"`
	Description string        `json:"description,omitempty" db:"description"`
	Status      GalleryStatus `json:"status" db:"status"`
	PriceCents  int64         `json:"price_cents" db:"price_cents"`
	PhotoCount  int           `json:"photo_count" db:"photo_count"`
	DeliveredAt *time.Time    `json:"delivered_at,omitempty" db:"delivered_at"`
	ExpiresAt   *time.Time    `json:"expires_at,omitempty" db:"expires_at"`
	CreatedAt   time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the Gallery model
func (Gallery) TableName() string {
	return "galleries"
}

// NewGallery creates a draft gallery
func NewGallery(orgID uuid.UUID, name string) *Gallery {
	now := time.Now().UTC()
	return &Gallery{
		ID:        uuid.New(),
		OrgID:     orgID,
		Name:      name,
		Status:    GalleryStatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// MarkDelivered moves the gallery to delivered
func (g *Gallery) MarkDelivered(at time.Time) {
	g.Status = GalleryStatusDelivered
	g.DeliveredAt = &at
	g.UpdatedAt = at
}
