package models

import (
	"time"

	"github.com/google/uuid"
)

// FAQ is a published question on the marketing site
type FAQ struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Category    string    `json:"category" db:"category"`
	Question    string    `json:"question" db:"question"`
	Answer      string    `json:"answer" db:"answer"`
	SortOrder   int       `json:"sort_order" db:"sort_order"`
	IsPublished bool      `json:"is_published" db:"is_published"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the FAQ model
func (FAQ) TableName() string {
	return "faqs"
}

// RoadmapStatus tracks progress of roadmap phases and items
type RoadmapStatus string

const (
	RoadmapPlanned    RoadmapStatus = "planned"
	RoadmapInProgress RoadmapStatus = "in_progress"
	RoadmapCompleted  RoadmapStatus = "completed"
)

// Valid reports whether the status is known
func (s RoadmapStatus) Valid() bool {
	switch s {
	case RoadmapPlanned, RoadmapInProgress, RoadmapCompleted:
		return true
	}
	return false
}

// RoadmapPhase groups roadmap items
type RoadmapPhase struct {
	ID          uuid.UUID     `json:"id" db:"id"`
	Title       string        `json:"title" db:"title"`
	Description string        `json:"description" db:"description"`
	Status      RoadmapStatus `json:"status" db:"status"`
	SortOrder   int           `json:"sort_order" db:"sort_order"`
	CreatedAt   time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at" db:"updated_at"`

	Items []*RoadmapItem `json:"items,omitempty" db:"-"`
}

// TableName returns the table name for the RoadmapPhase model
func (RoadmapPhase) TableName() string {
	return "roadmap_phases"
}

// RoadmapItem is a planned feature within a phase
type RoadmapItem struct {
	ID          uuid.UUID     `json:"id" db:"id"`
	PhaseID     uuid.UUID     `json:"phase_id" db:"phase_id"`
	Title       string        `json:"title" db:"title"`
	Description string        `json:"description" db:"description"`
	Status      RoadmapStatus `json:"status" db:"status"`
	SortOrder   int           `json:"sort_order" db:"sort_order"`
	Votes       int           `json:"votes" db:"votes"`
	CreatedAt   time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the RoadmapItem model
func (RoadmapItem) TableName() string {
	return "roadmap_items"
}
