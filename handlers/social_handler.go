package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/photoproos/platform/models"
	"github.com/photoproos/platform/services/social"
	"github.com/photoproos/platform/utils"
	"go.uber.org/zap"
)

// SocialService defines the social scheduling operations used by the handler
type SocialService interface {
	Create(ctx context.Context, orgID, actorID uuid.UUID, in social.PostInput) (*models.SocialPost, error)
	Get(ctx context.Context, orgID, id uuid.UUID) (*models.SocialPost, error)
	List(ctx context.Context, orgID uuid.UUID, status models.SocialPostStatus, limit, offset int) ([]*models.SocialPost, error)
	Update(ctx context.Context, orgID, actorID, id uuid.UUID, in social.PostInput) (*models.SocialPost, error)
	Schedule(ctx context.Context, orgID, actorID, id uuid.UUID, at time.Time) (*models.SocialPost, error)
	Delete(ctx context.Context, orgID, actorID, id uuid.UUID) error
}

// ScheduleRequest sets the publish time of a post
type ScheduleRequest struct {
	ScheduledFor time.Time `json:"scheduled_for" validate:"required"`
}

// SocialHandler handles social post requests
type SocialHandler struct {
	service SocialService
	logger  *zap.Logger
}

// NewSocialHandler creates a new SocialHandler
func NewSocialHandler(service SocialService, logger *zap.Logger) *SocialHandler {
	return &SocialHandler{
		service: service,
		logger:  logger,
	}
}

// HandleListPosts handles GET /api/v1/social/posts
func (h *SocialHandler) HandleListPosts(w http.ResponseWriter, r *http.Request) {
	orgID, _, ok := tenant(w, r, h.logger)
	if !ok {
		return
	}

	p, err := parsePage(r)
	if err != nil {
		_ = utils.WriteBadRequest(w, err.Error(), nil)
		return
	}

	status := models.SocialPostStatus(r.URL.Query().Get("status"))
	posts, err := h.service.List(r.Context(), orgID, status, p.Limit, p.Offset)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, posts)
}

// HandleCreatePost handles POST /api/v1/social/posts
func (h *SocialHandler) HandleCreatePost(w http.ResponseWriter, r *http.Request) {
	orgID, user, ok := tenant(w, r, h.logger)
	if !ok {
		return
	}

	var req social.PostInput
	if !decodeRequest(w, r, &req, h.logger) {
		return
	}

	post, err := h.service.Create(r.Context(), orgID, user.ID, req)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteCreated(w, post)
}

// HandleGetPost handles GET /api/v1/social/posts/{postID}
func (h *SocialHandler) HandleGetPost(w http.ResponseWriter, r *http.Request) {
	orgID, _, ok := tenant(w, r, h.logger)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "postID")
	if !ok {
		return
	}

	post, err := h.service.Get(r.Context(), orgID, id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, post)
}

// HandleUpdatePost handles PUT /api/v1/social/posts/{postID}
func (h *SocialHandler) HandleUpdatePost(w http.ResponseWriter, r *http.Request) {
	orgID, user, ok := tenant(w, r, h.logger)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "postID")
	if !ok {
		return
	}

	var req social.PostInput
	if !decodeRequest(w, r, &req, h.logger) {
		return
	}

	post, err := h.service.Update(r.Context(), orgID, user.ID, id, req)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, post)
}

// HandleSchedulePost handles POST /api/v1/social/posts/{postID}/schedule
func (h *SocialHandler) HandleSchedulePost(w http.ResponseWriter, r *http.Request) {
	orgID, user, ok := tenant(w, r, h.logger)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "postID")
	if !ok {
		return
	}

	var req ScheduleRequest
	if !decodeRequest(w, r, &req, h.logger) {
		return
	}

	post, err := h.service.Schedule(r.Context(), orgID, user.ID, id, req.ScheduledFor)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, post)
}

// HandleDeletePost handles DELETE /api/v1/social/posts/{postID}
func (h *SocialHandler) HandleDeletePost(w http.ResponseWriter, r *http.Request) {
	orgID, user, ok := tenant(w, r, h.logger)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "postID")
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), orgID, user.ID, id); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteMessage(w, "Post deleted")
}
