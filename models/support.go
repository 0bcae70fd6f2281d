package models

import (
	"time"

	"github.com/google/uuid"
)

// TicketStatus represents the state of a support ticket
type TicketStatus string

const (
	TicketOpen       TicketStatus = "open"
	TicketInProgress TicketStatus = "in_progress"
	TicketResolved   TicketStatus = "resolved"
	TicketClosed     TicketStatus = "closed"
)

// Valid reports whether the status is known
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketOpen, TicketInProgress, TicketResolved, TicketClosed:
		return true
	}
	return false
}

// TicketPriority ranks support tickets
type TicketPriority string

const (
	PriorityLow    TicketPriority = "low"
	PriorityNormal TicketPriority = "normal"
	PriorityHigh   TicketPriority = "high"
	PriorityUrgent TicketPriority = "urgent"
)

// SupportTicket is a help request raised by an organization member
type SupportTicket struct {
	ID        uuid.UUID      `json:"id" db:"id"`
	OrgID     uuid.UUID      `json:"org_id" db:"org_id"`
	UserID    uuid.UUID      `json:"user_id" db:"user_id"`
	Subject   string         `json:"subject" db:"subject"`
	Category  string         `json:"category" db:"category"`
	Priority  TicketPriority `json:"priority" db:"priority"`
	Status    TicketStatus   `json:"status" db:"status"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt time.Time      `json:"updated_at" db:"updated_at"`

	Messages []*SupportMessage `json:"messages,omitempty" db:"-"`
}

// TableName returns the table name for the SupportTicket model
func (SupportTicket) TableName() string {
	return "support_tickets"
}

// SupportMessage is one entry in a ticket conversation
type SupportMessage struct {
	ID        uuid.UUID `json:"id" db:"id"`
	TicketID  uuid.UUID `json:"ticket_id" db:"ticket_id"`
	AuthorID  uuid.UUID `json:"author_id" db:"author_id"`
	IsStaff   bool      `json:"is_staff" db:"is_staff"`
	Body      string    `json:"body" db:"body"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// TableName returns the table name for the SupportMessage model
func (SupportMessage) TableName() string {
	return "support_messages"
}

// NewSupportTicket creates an open ticket
func NewSupportTicket(orgID, userID uuid.UUID, subject, category string, priority TicketPriority) *SupportTicket {
	if priority == "" {
		priority = PriorityNormal
	}
	now := time.Now().UTC()
	return &SupportTicket{
		ID:        uuid.New(),
		OrgID:     orgID,
		UserID:    userID,
		Subject:   subject,
		Category:  category,
		Priority:  priority,
		Status:    TicketOpen,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewSupportMessage creates a message on a ticket
func NewSupportMessage(ticketID, authorID uuid.UUID, body string, isStaff bool) *SupportMessage {
	return &SupportMessage{
		ID:        uuid.New(),
		TicketID:  ticketID,
		AuthorID:  authorID,
		IsStaff:   isStaff,
		Body:      body,
		CreatedAt: time.Now().UTC(),
	}
}
