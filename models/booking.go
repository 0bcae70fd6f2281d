package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// NormalizeServiceType is the canonical form of a service type shared by
// bookings and photographer rates
func NormalizeServiceType(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// BookingStatus represents the scheduling state of a booking
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:   {BookingStatusConfirmed, BookingStatusCancelled},
	BookingStatusConfirmed: {BookingStatusCompleted, BookingStatusCancelled},
}

// CanTransition reports whether a booking may move from s to next
func (s BookingStatus) CanTransition(next BookingStatus) bool {
	for _, allowed := range bookingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Booking is a scheduled photo session
type Booking struct {
	ID             uuid.UUID     `json:"id" db:"id"`
	OrgID          uuid.UUID     `json:"org_id" db:"org_id"`
	ClientID       uuid.UUID     `json:"client_id" db:"client_id"`
	PhotographerID *uuid.UUID    `json:"photographer_id,omitempty" db:"photographer_id"`
	ServiceType    string        `json:"service_type" db:"service_type"`
	Title          string        `json:"title" db:"title"`
	Location       string        `json:"location,omitempty" db:"location"`
	StartsAt       time.Time     `json:"starts_at" db:"starts_at"`
	EndsAt         time.Time     `json:"ends_at" db:"ends_at"`
	Status         BookingStatus `json:"status" db:"status"`
	PriceCents     int64         `json:"price_cents" db:"price_cents"`
	Notes          string        `json:"notes,omitempty" db:"notes"`
	CreatedAt      time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the Booking model
func (Booking) TableName() string {
	return "bookings"
}

// NewBooking creates a pending booking
func NewBooking(orgID, clientID uuid.UUID, title, serviceType string, startsAt, endsAt time.Time) *Booking {
	now := time.Now().UTC()
	return &Booking{
		ID:          uuid.New(),
		OrgID:       orgID,
		ClientID:    clientID,
		Title:       title,
		ServiceType: serviceType,
		StartsAt:    startsAt.UTC(),
		EndsAt:      endsAt.UTC(),
		Status:      BookingStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// DurationMinutes returns the session length in whole minutes
func (b *Booking) DurationMinutes() int64 {
	return int64(b.EndsAt.Sub(b.StartsAt) / time.Minute)
}

// Overlaps reports whether two time ranges intersect (touching ends do not overlap)
func (b *Booking) Overlaps(start, end time.Time) bool {
	return b.StartsAt.Before(end) && start.Before(b.EndsAt)
}

// BookingFilter narrows booking listings
type BookingFilter struct {
	PhotographerID *uuid.UUID
	ClientID       *uuid.UUID
	Status         BookingStatus
	From           *time.Time
	To             *time.Time
	Limit          int
	Offset         int
}
