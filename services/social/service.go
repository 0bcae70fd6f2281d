// Package social schedules and publishes studio posts to social networks.
package social

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/photoproos/platform/models"
	"github.com/photoproos/platform/repositories"
	"github.com/photoproos/platform/services"
	"github.com/photoproos/platform/services/audit"
	"go.uber.org/zap"
)

const publishBatchSize = 100

// PostInput is the editable part of a post
type PostInput struct {
	Platform  models.SocialPlatform `json:"platform" validate:"required,oneof=instagram facebook pinterest x"`
	Content   string                `json:"content" validate:"required,max=5000"`
	MediaURLs []string              `json:"media_urls" validate:"max=10,dive,url"`
}

// PublishResult counts the outcome of one publishing run
type PublishResult struct {
	Published int `json:"published"`
	Failed    int `json:"failed"`
}

// SocialService manages social posts
type SocialService struct {
	postRepo  repositories.SocialPostRepository
	publisher Publisher
	audit     audit.Recorder
	logger    *zap.Logger
	now       func() time.Time
}

// NewSocialService creates a new SocialService instance
func NewSocialService(postRepo repositories.SocialPostRepository, publisher Publisher, recorder audit.Recorder, logger *zap.Logger) *SocialService {
	return &SocialService{
		postRepo:  postRepo,
		publisher: publisher,
		audit:     recorder,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (in PostInput) validate() error {
	if !in.Platform.Valid() {
		return services.Validation("unsupported platform").WithDetail("platform", string(in.Platform))
	}
	if strings.TrimSpace(in.Content) == "" {
		return services.Validation("content is required")
	}
	return nil
}

func editable(post *models.SocialPost) bool {
	return post.Status == models.SocialPostDraft || post.Status == models.SocialPostFailed || post.Status == models.SocialPostScheduled
}

// Create adds a draft post
func (s *SocialService) Create(ctx context.Context, orgID, actorID uuid.UUID, in PostInput) (*models.SocialPost, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	post := models.NewSocialPost(orgID, in.Platform, strings.TrimSpace(in.Content), in.MediaURLs)
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, services.WrapInternal("failed to create social post", err)
	}
	s.record(ctx, actorID, post, "created")
	return post, nil
}

// Get returns one post
func (s *SocialService) Get(ctx context.Context, orgID, id uuid.UUID) (*models.SocialPost, error) {
	post, err := s.postRepo.GetByID(ctx, orgID, id)
	if err != nil {
		return nil, services.MapRepoError(err, services.ErrSocialPostNotFound, "failed to load social post")
	}
	return post, nil
}

// List returns posts, optionally of one status
func (s *SocialService) List(ctx context.Context, orgID uuid.UUID, status models.SocialPostStatus, limit, offset int) ([]*models.SocialPost, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	posts, err := s.postRepo.List(ctx, orgID, status, limit, offset)
	if err != nil {
		return nil, services.WrapInternal("failed to list social posts", err)
	}
	return posts, nil
}

// Update edits an unpublished post
func (s *SocialService) Update(ctx context.Context, orgID, actorID, id uuid.UUID, in PostInput) (*models.SocialPost, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	post, err := s.Get(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if !editable(post) {
		return nil, services.Wrap(services.ErrInvalidTransition, nil).WithDetail("status", string(post.Status))
	}

	post.Platform = in.Platform
	post.Content = strings.TrimSpace(in.Content)
	post.MediaURLs = in.MediaURLs
	if post.MediaURLs == nil {
		post.MediaURLs = []string{}
	}
	post.UpdatedAt = s.now()

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, services.MapRepoError(err, services.ErrSocialPostNotFound, "failed to update social post")
	}
	s.record(ctx, actorID, post, "updated")
	return post, nil
}

// Schedule queues an unpublished post for a future time
func (s *SocialService) Schedule(ctx context.Context, orgID, actorID, id uuid.UUID, at time.Time) (*models.SocialPost, error) {
	if !at.After(s.now()) {
		return nil, services.ErrScheduleInPast
	}
	post, err := s.Get(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if !editable(post) {
		return nil, services.Wrap(services.ErrInvalidTransition, nil).WithDetail("status", string(post.Status))
	}

	at = at.UTC()
	post.Status = models.SocialPostScheduled
	post.ScheduledFor = &at
	post.Error = ""
	post.UpdatedAt = s.now()

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, services.MapRepoError(err, services.ErrSocialPostNotFound, "failed to schedule social post")
	}
	s.record(ctx, actorID, post, "scheduled")
	return post, nil
}

// Delete removes a post
func (s *SocialService) Delete(ctx context.Context, orgID, actorID, id uuid.UUID) error {
	if err := s.postRepo.Delete(ctx, orgID, id); err != nil {
		return services.MapRepoError(err, services.ErrSocialPostNotFound, "failed to delete social post")
	}
	s.audit.Record(ctx, audit.Entry{
		OrgID:        orgID,
		UserID:       actorID,
		Action:       models.AuditActionSocialPostChanged,
		ResourceType: "social_post",
		ResourceID:   id,
		Details:      map[string]interface{}{"change": "deleted"},
	})
	return nil
}

// PublishDue publishes every scheduled post whose time has come, claiming
// them publishBatchSize at a time until none are left.
// A publisher error marks that post failed and the run continues.
func (s *SocialService) PublishDue(ctx context.Context) (PublishResult, error) {
	var result PublishResult
	now := s.now()

	for {
		due, err := s.postRepo.ClaimDue(ctx, now, publishBatchSize)
		if err != nil {
			return result, services.WrapInternal("failed to claim due social posts", err)
		}
		for _, post := range due {
			s.publish(ctx, post, &result)
		}
		if len(due) < publishBatchSize || ctx.Err() != nil {
			break
		}
	}

	if result.Published+result.Failed > 0 {
		s.logger.Info("social posts processed", zap.Int("published", result.Published), zap.Int("failed", result.Failed))
	}
	return result, nil
}

func (s *SocialService) publish(ctx context.Context, post *models.SocialPost, result *PublishResult) {
	externalID, err := s.publisher.Publish(ctx, post)
	at := s.now()
	post.UpdatedAt = at
	if err != nil {
		post.Status = models.SocialPostFailed
		post.Error = err.Error()
		result.Failed++
		s.logger.Warn("social post publish failed",
			zap.String("post_id", post.ID.String()),
			zap.String("platform", string(post.Platform)),
			zap.Error(err),
		)
	} else {
		post.Status = models.SocialPostPublished
		post.PublishedAt = &at
		post.ExternalID = externalID
		post.Error = ""
		result.Published++
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		s.logger.Error("failed to save social post status", zap.String("post_id", post.ID.String()), zap.Error(err))
	}
}

func (s *SocialService) record(ctx context.Context, actorID uuid.UUID, post *models.SocialPost, change string) {
	s.audit.Record(ctx, audit.Entry{
		OrgID:        post.OrgID,
		UserID:       actorID,
		Action:       models.AuditActionSocialPostChanged,
		ResourceType: "social_post",
		ResourceID:   post.ID,
		Details:      map[string]interface{}{"change": change, "status": string(post.Status)},
	})
}
