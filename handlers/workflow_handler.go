package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/photoproos/platform/models"
	"github.com/photoproos/platform/services/workflows"
	"github.com/photoproos/platform/utils"
	"go.uber.org/zap"
)

// WorkflowService defines the automation operations used by the handler
type WorkflowService interface {
	Create(ctx context.Context, orgID, actorID uuid.UUID, in workflows.WorkflowInput) (*models.Workflow, error)
	Get(ctx context.Context, orgID, id uuid.UUID) (*models.Workflow, error)
	List(ctx context.Context, orgID uuid.UUID) ([]*models.Workflow, error)
	Update(ctx context.Context, orgID, actorID, id uuid.UUID, in workflows.WorkflowInput) (*models.Workflow, error)
	Toggle(ctx context.Context, orgID, actorID, id uuid.UUID) (*models.Workflow, error)
	Delete(ctx context.Context, orgID, actorID, id uuid.UUID) error
	ListExecutions(ctx context.Context, orgID uuid.UUID, workflowID *uuid.UUID, limit, offset int) ([]*models.WorkflowExecution, error)
}

// WorkflowHandler handles workflow automation requests
type WorkflowHandler struct {
	service WorkflowService
	logger  *zap.Logger
}

// NewWorkflowHandler creates a new WorkflowHandler
func NewWorkflowHandler(service WorkflowService, logger *zap.Logger) *WorkflowHandler {
	return &WorkflowHandler{
		service: service,
		logger:  logger,
	}
}

// HandleListWorkflows handles GET /api/v1/workflows
func (h *WorkflowHandler) HandleListWorkflows(w http.ResponseWriter, r *http.Request) {
	orgID, _, ok := tenant(w, r, h.logger)
	if !ok {
		return
	}

	list, err := h.service.List(r.Context(), orgID)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, list)
}

// HandleCreateWorkflow handles POST /api/v1/workflows
func (h *WorkflowHandler) HandleCreateWorkflow(w http.ResponseWriter, r *http.Request) {
	orgID, user, ok := tenant(w, r, h.logger)
	if !ok {
		return
	}

	var req workflows.WorkflowInput
	if !decodeRequest(w, r, &req, h.logger) {
		return
	}

	wf, err := h.service.Create(r.Context(), orgID, user.ID, req)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteCreated(w, wf)
}

// HandleGetWorkflow handles GET /api/v1/workflows/{workflowID}
func (h *WorkflowHandler) HandleGetWorkflow(w http.ResponseWriter, r *http.Request) {
	orgID, _, ok := tenant(w, r, h.logger)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "workflowID")
	if !ok {
		return
	}

	wf, err := h.service.Get(r.Context(), orgID, id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, wf)
}

// HandleUpdateWorkflow handles PUT /api/v1/workflows/{workflowID}
func (h *WorkflowHandler) HandleUpdateWorkflow(w http.ResponseWriter, r *http.Request) {
	orgID, user, ok := tenant(w, r, h.logger)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "workflowID")
	if !ok {
		return
	}

	var req workflows.WorkflowInput
	if !decodeRequest(w, r, &req, h.logger) {
		return
	}

	wf, err := h.service.Update(r.Context(), orgID, user.ID, id, req)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, wf)
}

// HandleToggleWorkflow handles POST /api/v1/workflows/{workflowID}/toggle
func (h *WorkflowHandler) HandleToggleWorkflow(w http.ResponseWriter, r *http.Request) {
	orgID, user, ok := tenant(w, r, h.logger)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "workflowID")
	if !ok {
		return
	}

	wf, err := h.service.Toggle(r.Context(), orgID, user.ID, id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, wf)
}

// HandleDeleteWorkflow handles DELETE /api/v1/workflows/{workflowID}
func (h *WorkflowHandler) HandleDeleteWorkflow(w http.ResponseWriter, r *http.Request) {
	orgID, user, ok := tenant(w, r, h.logger)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "workflowID")
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), orgID, user.ID, id); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteMessage(w, "Workflow deleted")
}

// HandleListExecutions handles GET /api/v1/workflow-executions?workflow_id=
func (h *WorkflowHandler) HandleListExecutions(w http.ResponseWriter, r *http.Request) {
	orgID, _, ok := tenant(w, r, h.logger)
	if !ok {
		return
	}

	p, err := parsePage(r)
	if err != nil {
		_ = utils.WriteBadRequest(w, err.Error(), nil)
		return
	}
	workflowID, err := queryUUID(r, "workflow_id")
	if err != nil {
		_ = utils.WriteBadRequest(w, err.Error(), nil)
		return
	}

	list, err := h.service.ListExecutions(r.Context(), orgID, workflowID, p.Limit, p.Offset)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, list)
}
