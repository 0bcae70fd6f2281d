package models

import (
	"time"

	"github.com/google/uuid"
)

// SocialPlatform is a network posts can be published to
type SocialPlatform string

const (
	PlatformInstagram SocialPlatform = "instagram"
	PlatformFacebook  SocialPlatform = "facebook"
	PlatformPinterest SocialPlatform = "pinterest"
	PlatformX         SocialPlatform = "x"
)

// Valid reports whether the platform is supported
func (p SocialPlatform) Valid() bool {
	switch p {
	case PlatformInstagram, PlatformFacebook, PlatformPinterest, PlatformX:
		return true
	}
	return false
}

// SocialPostStatus represents the publishing state of a post
type SocialPostStatus string

const (
	SocialPostDraft      SocialPostStatus = "draft"
	SocialPostScheduled  SocialPostStatus = "scheduled"
	SocialPostPublishing SocialPostStatus = "publishing"
	SocialPostPublished  SocialPostStatus = "published"
	SocialPostFailed     SocialPostStatus = "failed"
)

// SocialPost is content queued for a social network
type SocialPost struct {
	ID           uuid.UUID        `json:"id" db:"id"`
	OrgID        uuid.UUID        `json:"org_id" db:"org_id"`
	Platform     SocialPlatform   `json:"platform" db:"platform"`
	Content      string           `json:"content" db:"content"`
	MediaURLs    []string         `json:"media_urls" db:"media_urls"`
	Status       SocialPostStatus `json:"status" db:"status"`
	ScheduledFor *time.Time       `json:"scheduled_for,omitempty" db:"scheduled_for"`
	PublishedAt  *time.Time       `json:"published_at,omitempty" db:"published_at"`
	ExternalID   string           `json:"external_id,omitempty" db:"external_id"`
	Error        string           `json:"error,omitempty" db:"error"`
	CreatedAt    time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the SocialPost model
func (SocialPost) TableName() string {
	return "social_posts"
}

// NewSocialPost creates a draft post
func NewSocialPost(orgID uuid.UUID, platform SocialPlatform, content string, mediaURLs []string) *SocialPost {
	if mediaURLs == nil {
		mediaURLs = []string{}
	}
	now := time.Now().UTC()
	return &SocialPost{
		ID:        uuid.New(),
		OrgID:     orgID,
		Platform:  platform,
		Content:   content,
		MediaURLs: mediaURLs,
		Status:    SocialPostDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
