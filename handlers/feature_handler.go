package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/photoproos/platform/middleware"
	"github.com/photoproos/platform/models"
	"github.com/photoproos/platform/services/featureflags"
	"github.com/photoproos/platform/utils"
	"go.uber.org/zap"
)

// FeatureFlagService defines the feature flag operations used by the handler
type FeatureFlagService interface {
	EvaluateAll(ctx context.Context, orgID uuid.UUID) (map[string]bool, error)
	List(ctx context.Context) ([]*models.FeatureFlag, error)
	Get(ctx context.Context, key string) (*models.FeatureFlag, error)
	Create(ctx context.Context, actor *models.User, in featureflags.FlagInput) (*models.FeatureFlag, error)
	Update(ctx context.Context, actor *models.User, key string, in featureflags.FlagInput) (*models.FeatureFlag, error)
	Toggle(ctx context.Context, actor *models.User, key string) (*models.FeatureFlag, error)
	Delete(ctx context.Context, actor *models.User, key string) error
	CacheStats() featureflags.CacheStats
}

// FeatureFlagHandler handles flag evaluation and the super-admin flag console
type FeatureFlagHandler struct {
	service FeatureFlagService
	logger  *zap.Logger
}

// NewFeatureFlagHandler creates a new FeatureFlagHandler
func NewFeatureFlagHandler(service FeatureFlagService, logger *zap.Logger) *FeatureFlagHandler {
	return &FeatureFlagHandler{
		service: service,
		logger:  logger,
	}
}

// HandleEvaluate handles GET /api/v1/features
func (h *FeatureFlagHandler) HandleEvaluate(w http.ResponseWriter, r *http.Request) {
	orgID, _, ok := tenant(w, r, h.logger)
	if !ok {
		return
	}

	flags, err := h.service.EvaluateAll(r.Context(), orgID)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, flags)
}

// HandleListFlags handles GET /api/v1/admin/feature-flags
func (h *FeatureFlagHandler) HandleListFlags(w http.ResponseWriter, r *http.Request) {
	flags, err := h.service.List(r.Context())
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, map[string]interface{}{
		"flags": flags,
		"cache": h.service.CacheStats(),
	})
}

// HandleGetFlag handles GET /api/v1/admin/feature-flags/{key}
func (h *FeatureFlagHandler) HandleGetFlag(w http.ResponseWriter, r *http.Request) {
	flag, err := h.service.Get(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, flag)
}

// HandleCreateFlag handles POST /api/v1/admin/feature-flags
func (h *FeatureFlagHandler) HandleCreateFlag(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req featureflags.FlagInput
	if !decodeRequest(w, r, &req, h.logger) {
		return
	}

	flag, err := h.service.Create(r.Context(), actor, req)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	h.logger.Info("feature flag created",
		zap.String("request_id", middleware.GetRequestIDFromContext(r.Context())),
		zap.String("key", flag.Key))

	_ = utils.WriteCreated(w, flag)
}

// HandleUpdateFlag handles PUT /api/v1/admin/feature-flags/{key}
func (h *FeatureFlagHandler) HandleUpdateFlag(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req featureflags.FlagInput
	if !decodeRequest(w, r, &req, h.logger) {
		return
	}

	flag, err := h.service.Update(r.Context(), actor, chi.URLParam(r, "key"), req)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, flag)
}

// HandleToggleFlag handles POST /api/v1/admin/feature-flags/{key}/toggle
func (h *FeatureFlagHandler) HandleToggleFlag(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}

	flag, err := h.service.Toggle(r.Context(), actor, chi.URLParam(r, "key"))
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	h.logger.Info("feature flag toggled",
		zap.String("request_id", middleware.GetRequestIDFromContext(r.Context())),
		zap.String("key", flag.Key),
		zap.Bool("enabled", flag.Enabled))

	_ = utils.WriteOK(w, flag)
}

// HandleDeleteFlag handles DELETE /api/v1/admin/feature-flags/{key}
func (h *FeatureFlagHandler) HandleDeleteFlag(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), actor, chi.URLParam(r, "key")); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteMessage(w, "Feature flag deleted")
}
