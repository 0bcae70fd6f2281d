package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/photoproos/platform/middleware"
	"github.com/photoproos/platform/models"
	"github.com/photoproos/platform/utils"
	"go.uber.org/zap"
)

// EarningService defines the earning operations used by the handler
type EarningService interface {
	CreateAdjustment(ctx context.Context, orgID, actorID, photographerID uuid.UUID, amountCents int64, description string) (*models.PhotographerEarning, error)
	List(ctx context.Context, orgID uuid.UUID, filter models.EarningFilter) ([]*models.PhotographerEarning, error)
	Approve(ctx context.Context, orgID, actorID uuid.UUID, ids []uuid.UUID) (int64, error)
	Cancel(ctx context.Context, orgID, actorID, id uuid.UUID) (*models.PhotographerEarning, error)
}

// AdjustmentRequest records a manual earning such as a bonus or correction
type AdjustmentRequest struct {
	PhotographerID uuid.UUID `json:"photographer_id" validate:"required"`
	AmountCents    int64     `json:"amount_cents" validate:"gt=0"`
	Description    string    `json:"description" validate:"max=500"`
}

// ApproveEarningsRequest approves pending earnings
type ApproveEarningsRequest struct {
	IDs []uuid.UUID `json:"ids" validate:"required,min=1,max=500"`
}

// EarningHandler handles photographer earning requests
type EarningHandler struct {
	service EarningService
	logger  *zap.Logger
}

// NewEarningHandler creates a new EarningHandler
func NewEarningHandler(service EarningService, logger *zap.Logger) *EarningHandler {
	return &EarningHandler{
		service: service,
		logger:  logger,
	}
}

// HandleListEarnings handles GET /api/v1/earnings.
// Photographers only ever see their own earnings.
func (h *EarningHandler) HandleListEarnings(w http.ResponseWriter, r *http.Request) {
	orgID, user, ok := tenant(w, r, h.logger)
	if !ok {
		return
	}

	p, err := parsePage(r)
	if err != nil {
		_ = utils.WriteBadRequest(w, err.Error(), nil)
		return
	}
	photographerID, err := queryUUID(r, "photographer_id")
	if err != nil {
		_ = utils.WriteBadRequest(w, err.Error(), nil)
		return
	}
	if !user.CanManageFinances() {
		self := user.ID
		photographerID = &self
	}

	filter := models.EarningFilter{
		PhotographerID: photographerID,
		Status:         models.EarningStatus(r.URL.Query().Get("status")),
		Limit:          p.Limit,
		Offset:         p.Offset,
	}
	list, err := h.service.List(r.Context(), orgID, filter)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, list)
}

// HandleCreateAdjustment handles POST /api/v1/earnings/adjustments
func (h *EarningHandler) HandleCreateAdjustment(w http.ResponseWriter, r *http.Request) {
	orgID, user, ok := tenant(w, r, h.logger)
	if !ok {
		return
	}

	var req AdjustmentRequest
	if !decodeRequest(w, r, &req, h.logger) {
		return
	}

	earning, err := h.service.CreateAdjustment(r.Context(), orgID, user.ID, req.PhotographerID, req.AmountCents, req.Description)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteCreated(w, earning)
}

// HandleApproveEarnings handles POST /api/v1/earnings/approve
func (h *EarningHandler) HandleApproveEarnings(w http.ResponseWriter, r *http.Request) {
	orgID, user, ok := tenant(w, r, h.logger)
	if !ok {
		return
	}

	var req ApproveEarningsRequest
	if !decodeRequest(w, r, &req, h.logger) {
		return
	}

	approved, err := h.service.Approve(r.Context(), orgID, user.ID, req.IDs)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	h.logger.Info("earnings approved",
		zap.String("request_id", middleware.GetRequestIDFromContext(r.Context())),
		zap.Int("requested", len(req.IDs)),
		zap.Int64("approved", approved))

	_ = utils.WriteOK(w, map[string]int64{"approved": approved})
}

// HandleCancelEarning handles POST /api/v1/earnings/{earningID}/cancel
func (h *EarningHandler) HandleCancelEarning(w http.ResponseWriter, r *http.Request) {
	orgID, user, ok := tenant(w, r, h.logger)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "earningID")
	if !ok {
		return
	}

	earning, err := h.service.Cancel(r.Context(), orgID, user.ID, id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, earning)
}
