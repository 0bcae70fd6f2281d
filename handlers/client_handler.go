package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/photoproos/platform/middleware"
	"github.com/photoproos/platform/models"
	"github.com/photoproos/platform/services/clients"
	"github.com/photoproos/platform/utils"
	"go.uber.org/zap"
)

// ClientService defines the CRM operations used by the handler
type ClientService interface {
	Create(ctx context.Context, orgID, actorID uuid.UUID, in clients.ClientInput) (*models.Client, error)
	Get(ctx context.Context, orgID, id uuid.UUID) (*models.Client, error)
	List(ctx context.Context, orgID uuid.UUID, filter models.ClientFilter) ([]*models.Client, error)
	Update(ctx context.Context, orgID, actorID, id uuid.UUID, in clients.ClientInput) (*models.Client, error)
	Delete(ctx context.Context, orgID, actorID, id uuid.UUID) error
}

// ClientHandler handles client (CRM) requests
type ClientHandler struct {
	service ClientService
	logger  *zap.Logger
}

// NewClientHandler creates a new ClientHandler
func NewClientHandler(service ClientService, logger *zap.Logger) *ClientHandler {
	return &ClientHandler{
		service: service,
		logger:  logger,
	}
}

// HandleListClients handles GET /api/v1/clients
func (h *ClientHandler) HandleListClients(w http.ResponseWriter, r *http.Request) {
	orgID, _, ok := tenant(w, r, h.logger)
	if !ok {
		return
	}

	p, err := parsePage(r)
	if err != nil {
		_ = utils.WriteBadRequest(w, err.Error(), nil)
		return
	}

	filter := models.ClientFilter{
		Search: r.URL.Query().Get("search"),
		Tag:    r.URL.Query().Get("tag"),
		Limit:  p.Limit,
		Offset: p.Offset,
	}
	list, err := h.service.List(r.Context(), orgID, filter)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	h.logger.Debug("listed clients",
		zap.String("request_id", middleware.GetRequestIDFromContext(r.Context())),
		zap.Int("count", len(list)))

	_ = utils.WriteOK(w, list)
}

// HandleCreateClient handles POST /api/v1/clients
func (h *ClientHandler) HandleCreateClient(w http.ResponseWriter, r *http.Request) {
	orgID, user, ok := tenant(w, r, h.logger)
	if !ok {
		return
	}

	var req clients.ClientInput
	if !decodeRequest(w, r, &req, h.logger) {
		return
	}

	client, err := h.service.Create(r.Context(), orgID, user.ID, req)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	h.logger.Info("client created",
		zap.String("request_id", middleware.GetRequestIDFromContext(r.Context())),
		zap.String("org_id", orgID.String()),
		zap.String("client_id", client.ID.String()))

	_ = utils.WriteCreated(w, client)
}

// HandleGetClient handles GET /api/v1/clients/{clientID}
func (h *ClientHandler) HandleGetClient(w http.ResponseWriter, r *http.Request) {
	orgID, _, ok := tenant(w, r, h.logger)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "clientID")
	if !ok {
		return
	}

	client, err := h.service.Get(r.Context(), orgID, id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, client)
}

// HandleUpdateClient handles PUT /api/v1/clients/{clientID}
func (h *ClientHandler) HandleUpdateClient(w http.ResponseWriter, r *http.Request) {
	orgID, user, ok := tenant(w, r, h.logger)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "clientID")
	if !ok {
		return
	}

	var req clients.ClientInput
	if !decodeRequest(w, r, &req, h.logger) {
		return
	}

	client, err := h.service.Update(r.Context(), orgID, user.ID, id, req)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, client)
}

// HandleDeleteClient handles DELETE /api/v1/clients/{clientID}
func (h *ClientHandler) HandleDeleteClient(w http.ResponseWriter, r *http.Request) {
	orgID, user, ok := tenant(w, r, h.logger)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "clientID")
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), orgID, user.ID, id); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	h.logger.Info("client deleted",
		zap.String("request_id", middleware.GetRequestIDFromContext(r.Context())),
		zap.String("client_id", id.String()))

	_ = utils.WriteMessage(w, "Client deleted")
}
