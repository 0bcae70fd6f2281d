package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/photoproos/platform/middleware"
	"github.com/photoproos/platform/models"
	"github.com/photoproos/platform/services/rates"
	"github.com/photoproos/platform/utils"
	"go.uber.org/zap"
)

// RateService defines the pay-rate operations used by the handler
type RateService interface {
	List(ctx context.Context, orgID, photographerID uuid.UUID) ([]*models.PhotographerRate, error)
	Create(ctx context.Context, orgID, actorID uuid.UUID, in rates.RateInput) (*models.PhotographerRate, error)
	Update(ctx context.Context, orgID, actorID, rateID uuid.UUID, in rates.RateInput) (*models.PhotographerRate, error)
	Delete(ctx context.Context, orgID, actorID, rateID uuid.UUID) error
}

// RateHandler handles photographer pay-rate requests
type RateHandler struct {
	service RateService
	logger  *zap.Logger
}

// NewRateHandler creates a new RateHandler
func NewRateHandler(service RateService, logger *zap.Logger) *RateHandler {
	return &RateHandler{
		service: service,
		logger:  logger,
	}
}

// HandleListRates handles GET /api/v1/photographers/{photographerID}/rates
func (h *RateHandler) HandleListRates(w http.ResponseWriter, r *http.Request) {
	orgID, user, ok := tenant(w, r, h.logger)
	if !ok {
		return
	}
	photographerID, ok := pathUUID(w, r, "photographerID")
	if !ok {
		return
	}
	if !user.CanManageFinances() && user.ID != photographerID {
		_ = utils.WriteForbidden(w, "Cannot view another photographer's rates")
		return
	}

	list, err := h.service.List(r.Context(), orgID, photographerID)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, list)
}

// HandleCreateRate handles POST /api/v1/rates
func (h *RateHandler) HandleCreateRate(w http.ResponseWriter, r *http.Request) {
	orgID, user, ok := tenant(w, r, h.logger)
	if !ok {
		return
	}

	// RateInput validates itself in the service
	var req rates.RateInput
	if err := utils.DecodeJSON(r, &req); err != nil {
		_ = utils.WriteBadRequest(w, err.Error(), nil)
		return
	}

	rate, err := h.service.Create(r.Context(), orgID, user.ID, req)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	h.logger.Info("pay rate created",
		zap.String("request_id", middleware.GetRequestIDFromContext(r.Context())),
		zap.String("photographer_id", rate.PhotographerID.String()),
		zap.String("rate_type", string(rate.RateType)))

	_ = utils.WriteCreated(w, rate)
}

// HandleUpdateRate handles PUT /api/v1/rates/{rateID}
func (h *RateHandler) HandleUpdateRate(w http.ResponseWriter, r *http.Request) {
	orgID, user, ok := tenant(w, r, h.logger)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "rateID")
	if !ok {
		return
	}

	var req rates.RateInput
	if err := utils.DecodeJSON(r, &req); err != nil {
		_ = utils.WriteBadRequest(w, err.Error(), nil)
		return
	}

	rate, err := h.service.Update(r.Context(), orgID, user.ID, id, req)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, rate)
}

// HandleDeleteRate handles DELETE /api/v1/rates/{rateID}
func (h *RateHandler) HandleDeleteRate(w http.ResponseWriter, r *http.Request) {
	orgID, user, ok := tenant(w, r, h.logger)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "rateID")
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), orgID, user.ID, id); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteMessage(w, "Pay rate deleted")
}
