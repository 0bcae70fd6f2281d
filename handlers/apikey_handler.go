package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/photoproos/platform/middleware"
	"github.com/photoproos/platform/models"
	"github.com/photoproos/platform/services/apikeys"
	"github.com/photoproos/platform/utils"
	"go.uber.org/zap"
)

// APIKeyService defines the API key operations used by the handler
type APIKeyService interface {
	Create(ctx context.Context, orgID, actorID uuid.UUID, in apikeys.CreateInput) (*apikeys.CreatedKey, error)
	List(ctx context.Context, orgID uuid.UUID) ([]*models.APIKey, error)
	Revoke(ctx context.Context, orgID, actorID, id uuid.UUID) error
	Delete(ctx context.Context, orgID, actorID, id uuid.UUID) error
}

// APIKeyHandler handles API key management requests
type APIKeyHandler struct {
	service APIKeyService
	logger  *zap.Logger
}

// NewAPIKeyHandler creates a new APIKeyHandler
func NewAPIKeyHandler(service APIKeyService, logger *zap.Logger) *APIKeyHandler {
	return &APIKeyHandler{
		service: service,
		logger:  logger,
	}
}

// HandleListKeys handles GET /api/v1/api-keys
func (h *APIKeyHandler) HandleListKeys(w http.ResponseWriter, r *http.Request) {
	orgID, _, ok := tenant(w, r, h.logger)
	if !ok {
		return
	}

	keys, err := h.service.List(r.Context(), orgID)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, keys)
}

// HandleCreateKey handles POST /api/v1/api-keys.
// The raw key is only ever returned in this response.
func (h *APIKeyHandler) HandleCreateKey(w http.ResponseWriter, r *http.Request) {
	orgID, user, ok := tenant(w, r, h.logger)
	if !ok {
		return
	}

	var req apikeys.CreateInput
	if !decodeRequest(w, r, &req, h.logger) {
		return
	}

	created, err := h.service.Create(r.Context(), orgID, user.ID, req)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	h.logger.Info("api key created",
		zap.String("request_id", middleware.GetRequestIDFromContext(r.Context())),
		zap.String("org_id", orgID.String()),
		zap.String("prefix", created.APIKey.Prefix))

	_ = utils.WriteCreated(w, created)
}

// HandleRevokeKey handles POST /api/v1/api-keys/{keyID}/revoke
func (h *APIKeyHandler) HandleRevokeKey(w http.ResponseWriter, r *http.Request) {
	orgID, user, ok := tenant(w, r, h.logger)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "keyID")
	if !ok {
		return
	}

	if err := h.service.Revoke(r.Context(), orgID, user.ID, id); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteMessage(w, "API key revoked")
}

// HandleDeleteKey handles DELETE /api/v1/api-keys/{keyID}
func (h *APIKeyHandler) HandleDeleteKey(w http.ResponseWriter, r *http.Request) {
	orgID, user, ok := tenant(w, r, h.logger)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "keyID")
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), orgID, user.ID, id); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteMessage(w, "API key deleted")
}
