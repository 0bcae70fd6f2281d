package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/photoproos/platform/models"
	"github.com/photoproos/platform/services/audit"
	"github.com/photoproos/platform/utils"
	"go.uber.org/zap"
)

// AuditLister reads audit logs
type AuditLister interface {
	List(ctx context.Context, q audit.Query) ([]*models.AuditLog, error)
}

// AuditHandler handles audit log listing
type AuditHandler struct {
	service AuditLister
	logger  *zap.Logger
}

// NewAuditHandler creates a new AuditHandler
func NewAuditHandler(service AuditLister, logger *zap.Logger) *AuditHandler {
	return &AuditHandler{
		service: service,
		logger:  logger,
	}
}

func parseAuditFilter(r *http.Request) (models.AuditFilter, error) {
	var filter models.AuditFilter

	p, err := parsePage(r)
	if err != nil {
		return filter, err
	}
	filter.Limit, filter.Offset = p.Limit, p.Offset
	filter.Action = models.AuditAction(r.URL.Query().Get("action"))

	if filter.From, err = queryTime(r, "from"); err != nil {
		return filter, err
	}
	if filter.To, err = queryTime(r, "to"); err != nil {
		return filter, err
	}
	return filter, nil
}

// HandleListAuditLogs handles GET /api/v1/audit-logs for the caller's organization
func (h *AuditHandler) HandleListAuditLogs(w http.ResponseWriter, r *http.Request) {
	orgID, _, ok := tenant(w, r, h.logger)
	if !ok {
		return
	}
	h.list(w, r, orgID)
}

// HandleAdminListAuditLogs handles GET /api/v1/admin/organizations/{orgID}/audit-logs
func (h *AuditHandler) HandleAdminListAuditLogs(w http.ResponseWriter, r *http.Request) {
	orgID, ok := pathUUID(w, r, "orgID")
	if !ok {
		return
	}
	h.list(w, r, orgID)
}

func (h *AuditHandler) list(w http.ResponseWriter, r *http.Request, orgID uuid.UUID) {
	filter, err := parseAuditFilter(r)
	if err != nil {
		_ = utils.WriteBadRequest(w, err.Error(), nil)
		return
	}

	logs, err := h.service.List(r.Context(), audit.Query{OrgID: orgID, Filter: filter})
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, logs)
}
