package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/photoproos/platform/middleware"
	"github.com/photoproos/platform/models"
	"github.com/photoproos/platform/services/payouts"
	"github.com/photoproos/platform/utils"
	"go.uber.org/zap"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// PayoutService defines the payout batching operations used by the handler
type PayoutService interface {
	PendingSummary(ctx context.Context, orgID uuid.UUID) ([]*models.PendingPayout, error)
	ListBatches(ctx context.Context, orgID uuid.UUID, limit, offset int) ([]*models.PayoutBatch, error)
	GetBatch(ctx context.Context, orgID, id uuid.UUID) (*models.PayoutBatch, error)
	CreateBatch(ctx context.Context, orgID, actorID uuid.UUID, input payouts.CreateBatchInput) (*models.PayoutBatch, error)
	ProcessBatch(ctx context.Context, orgID, actorID, batchID uuid.UUID) (*models.PayoutBatch, error)
	CancelBatch(ctx context.Context, orgID, actorID, batchID uuid.UUID) (*models.PayoutBatch, error)
	ExportBatch(ctx context.Context, orgID, batchID uuid.UUID) ([]byte, string, error)
}

// PayoutHandler handles payout batch requests
type PayoutHandler struct {
	service PayoutService
	logger  *zap.Logger
}

// NewPayoutHandler creates a new PayoutHandler
func NewPayoutHandler(service PayoutService, logger *zap.Logger) *PayoutHandler {
	return &PayoutHandler{
		service: service,
		logger:  logger,
	}
}

// HandlePendingSummary handles GET /api/v1/payouts/pending
func (h *PayoutHandler) HandlePendingSummary(w http.ResponseWriter, r *http.Request) {
	orgID, _, ok := tenant(w, r, h.logger)
	if !ok {
		return
	}

	summary, err := h.service.PendingSummary(r.Context(), orgID)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, summary)
}

// HandleListBatches handles GET /api/v1/payouts
func (h *PayoutHandler) HandleListBatches(w http.ResponseWriter, r *http.Request) {
	orgID, _, ok := tenant(w, r, h.logger)
	if !ok {
		return
	}

	p, err := parsePage(r)
	if err != nil {
		_ = utils.WriteBadRequest(w, err.Error(), nil)
		return
	}

	batches, err := h.service.ListBatches(r.Context(), orgID, p.Limit, p.Offset)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, batches)
}

// HandleCreateBatch handles POST /api/v1/payouts
func (h *PayoutHandler) HandleCreateBatch(w http.ResponseWriter, r *http.Request) {
	orgID, user, ok := tenant(w, r, h.logger)
	if !ok {
		return
	}

	var req payouts.CreateBatchInput
	if !decodeRequest(w, r, &req, h.logger) {
		return
	}

	batch, err := h.service.CreateBatch(r.Context(), orgID, user.ID, req)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	h.logger.Info("payout batch created",
		zap.String("request_id", middleware.GetRequestIDFromContext(r.Context())),
		zap.String("org_id", orgID.String()),
		zap.String("batch_number", batch.BatchNumber),
		zap.Int64("total_cents", batch.TotalCents),
		zap.Int("item_count", batch.ItemCount))

	_ = utils.WriteCreated(w, batch)
}

// HandleGetBatch handles GET /api/v1/payouts/{batchID}
func (h *PayoutHandler) HandleGetBatch(w http.ResponseWriter, r *http.Request) {
	orgID, _, ok := tenant(w, r, h.logger)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "batchID")
	if !ok {
		return
	}

	batch, err := h.service.GetBatch(r.Context(), orgID, id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, batch)
}

// HandleProcessBatch handles POST /api/v1/payouts/{batchID}/process
func (h *PayoutHandler) HandleProcessBatch(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.ProcessBatch)
}

// HandleCancelBatch handles POST /api/v1/payouts/{batchID}/cancel
func (h *PayoutHandler) HandleCancelBatch(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.CancelBatch)
}

func (h *PayoutHandler) transition(w http.ResponseWriter, r *http.Request,
	fn func(ctx context.Context, orgID, actorID, batchID uuid.UUID) (*models.PayoutBatch, error)) {
	orgID, user, ok := tenant(w, r, h.logger)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "batchID")
	if !ok {
		return
	}

	batch, err := fn(r.Context(), orgID, user.ID, id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	h.logger.Info("payout batch status changed",
		zap.String("request_id", middleware.GetRequestIDFromContext(r.Context())),
		zap.String("batch_id", id.String()),
		zap.String("status", string(batch.Status)))

	_ = utils.WriteOK(w, batch)
}

// HandleExportBatch handles GET /api/v1/payouts/{batchID}/export
func (h *PayoutHandler) HandleExportBatch(w http.ResponseWriter, r *http.Request) {
	orgID, _, ok := tenant(w, r, h.logger)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "batchID")
	if !ok {
		return
	}

	body, filename, err := h.service.ExportBatch(r.Context(), orgID, id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	if err := utils.WriteFile(w, filename, xlsxContentType, body); err != nil {
		h.logger.Error("failed to write payout export", zap.Error(err))
	}
}
