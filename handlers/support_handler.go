package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/photoproos/platform/middleware"
	"github.com/photoproos/platform/models"
	"github.com/photoproos/platform/services/support"
	"github.com/photoproos/platform/utils"
	"go.uber.org/zap"
)

// SupportService defines the ticketing operations used by the handler
type SupportService interface {
	CreateTicket(ctx context.Context, user *models.User, in support.TicketInput) (*models.SupportTicket, error)
	ListTickets(ctx context.Context, user *models.User, status models.TicketStatus, limit, offset int) ([]*models.SupportTicket, error)
	GetTicket(ctx context.Context, user *models.User, id uuid.UUID) (*models.SupportTicket, error)
	AddMessage(ctx context.Context, user *models.User, ticketID uuid.UUID, body string) (*models.SupportMessage, error)
	ChangeStatus(ctx context.Context, user *models.User, ticketID uuid.UUID, status models.TicketStatus) (*models.SupportTicket, error)
}

// AddMessageRequest posts a message to a ticket
type AddMessageRequest struct {
	Body string `json:"body" validate:"required,max=10000"`
}

// ChangeStatusRequest moves a ticket to a new status
type ChangeStatusRequest struct {
	Status models.TicketStatus `json:"status" validate:"required"`
}

// SupportHandler handles support ticket requests for members and staff.
// Scoping to the caller's organization happens in the service.
type SupportHandler struct {
	service SupportService
	logger  *zap.Logger
}

// NewSupportHandler creates a new SupportHandler
func NewSupportHandler(service SupportService, logger *zap.Logger) *SupportHandler {
	return &SupportHandler{
		service: service,
		logger:  logger,
	}
}

// HandleListTickets handles GET /api/v1/support/tickets
func (h *SupportHandler) HandleListTickets(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	p, err := parsePage(r)
	if err != nil {
		_ = utils.WriteBadRequest(w, err.Error(), nil)
		return
	}

	status := models.TicketStatus(r.URL.Query().Get("status"))
	tickets, err := h.service.ListTickets(r.Context(), user, status, p.Limit, p.Offset)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, tickets)
}

// HandleCreateTicket handles POST /api/v1/support/tickets
func (h *SupportHandler) HandleCreateTicket(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req support.TicketInput
	if !decodeRequest(w, r, &req, h.logger) {
		return
	}

	ticket, err := h.service.CreateTicket(r.Context(), user, req)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	h.logger.Info("support ticket opened",
		zap.String("request_id", middleware.GetRequestIDFromContext(r.Context())),
		zap.String("ticket_id", ticket.ID.String()),
		zap.String("priority", string(ticket.Priority)))

	_ = utils.WriteCreated(w, ticket)
}

// HandleGetTicket handles GET /api/v1/support/tickets/{ticketID}
func (h *SupportHandler) HandleGetTicket(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "ticketID")
	if !ok {
		return
	}

	ticket, err := h.service.GetTicket(r.Context(), user, id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, ticket)
}

// HandleAddMessage handles POST /api/v1/support/tickets/{ticketID}/messages
func (h *SupportHandler) HandleAddMessage(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "ticketID")
	if !ok {
		return
	}

	var req AddMessageRequest
	if !decodeRequest(w, r, &req, h.logger) {
		return
	}

	msg, err := h.service.AddMessage(r.Context(), user, id, req.Body)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteCreated(w, msg)
}

// HandleChangeStatus handles PATCH /api/v1/support/tickets/{ticketID}/status
func (h *SupportHandler) HandleChangeStatus(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "ticketID")
	if !ok {
		return
	}

	var req ChangeStatusRequest
	if !decodeRequest(w, r, &req, h.logger) {
		return
	}

	ticket, err := h.service.ChangeStatus(r.Context(), user, id, req.Status)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, ticket)
}
