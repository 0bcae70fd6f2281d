package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/photoproos/platform/services/analytics"
	"github.com/photoproos/platform/utils"
	"go.uber.org/zap"
)

// AnalyticsService defines the reporting operations used by the handler
type AnalyticsService interface {
	Overview(ctx context.Context, orgID uuid.UUID, start, end time.Time) (*analytics.Overview, error)
	ExportOverview(ctx context.Context, orgID uuid.UUID, start, end time.Time) ([]byte, error)
}

// AnalyticsHandler handles dashboard analytics requests
type AnalyticsHandler struct {
	service AnalyticsService
	now     func() time.Time
	logger  *zap.Logger
}

// NewAnalyticsHandler creates a new AnalyticsHandler
func NewAnalyticsHandler(service AnalyticsService, logger *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		service: service,
		now:     time.Now,
		logger:  logger,
	}
}

func (h *AnalyticsHandler) parseRange(w http.ResponseWriter, r *http.Request) (time.Time, time.Time, bool) {
	start, end, err := dateRange(r, h.now())
	if err != nil {
		_ = utils.WriteBadRequest(w, err.Error(), nil)
		return start, end, false
	}
	if err := analytics.ValidateRange(start, end); err != nil {
		HandleServiceError(w, err, h.logger)
		return start, end, false
	}
	return start, end, true
}

// HandleOverview handles GET /api/v1/analytics/overview?start=&end=
func (h *AnalyticsHandler) HandleOverview(w http.ResponseWriter, r *http.Request) {
	orgID, _, ok := tenant(w, r, h.logger)
	if !ok {
		return
	}
	start, end, ok := h.parseRange(w, r)
	if !ok {
		return
	}

	overview, err := h.service.Overview(r.Context(), orgID, start, end)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, overview)
}

// HandleExportOverview handles GET /api/v1/analytics/export?start=&end=
func (h *AnalyticsHandler) HandleExportOverview(w http.ResponseWriter, r *http.Request) {
	orgID, _, ok := tenant(w, r, h.logger)
	if !ok {
		return
	}
	start, end, ok := h.parseRange(w, r)
	if !ok {
		return
	}

	body, err := h.service.ExportOverview(r.Context(), orgID, start, end)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	filename := fmt.Sprintf("analytics-%s-%s.xlsx", start.Format("20060102"), end.Format("20060102"))
	if err := utils.WriteFile(w, filename, xlsxContentType, body); err != nil {
		h.logger.Error("failed to write analytics export", zap.Error(err))
	}
}
