package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/photoproos/platform/middleware"
	"github.com/photoproos/platform/models"
	"github.com/photoproos/platform/services/clients"
	"github.com/photoproos/platform/utils"
	"go.uber.org/zap"
)

// ExternalHandler serves the API-key authenticated integration API.
// Writes are recorded without a user; the audit entry carries the organization only.
type ExternalHandler struct {
	clients   ClientService
	bookings  BookingService
	invoices  InvoiceService
	galleries GalleryService
	logger    *zap.Logger
}

// NewExternalHandler creates a new ExternalHandler
func NewExternalHandler(clients ClientService, bookings BookingService, invoices InvoiceService, galleries GalleryService, logger *zap.Logger) *ExternalHandler {
	return &ExternalHandler{
		clients:   clients,
		bookings:  bookings,
		invoices:  invoices,
		galleries: galleries,
		logger:    logger,
	}
}

func (h *ExternalHandler) org(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	orgID := middleware.GetOrgIDFromContext(r.Context())
	if orgID == uuid.Nil {
		_ = utils.WriteUnauthorized(w, "API key required")
		return uuid.Nil, false
	}
	return orgID, true
}

// HandleListClients handles GET /api/external/v1/clients
func (h *ExternalHandler) HandleListClients(w http.ResponseWriter, r *http.Request) {
	orgID, ok := h.org(w, r)
	if !ok {
		return
	}
	p, err := parsePage(r)
	if err != nil {
		_ = utils.WriteBadRequest(w, err.Error(), nil)
		return
	}

	list, err := h.clients.List(r.Context(), orgID, models.ClientFilter{
		Search: r.URL.Query().Get("search"),
		Tag:    r.URL.Query().Get("tag"),
		Limit:  p.Limit,
		Offset: p.Offset,
	})
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, list)
}

// HandleCreateClient handles POST /api/external/v1/clients
func (h *ExternalHandler) HandleCreateClient(w http.ResponseWriter, r *http.Request) {
	orgID, ok := h.org(w, r)
	if !ok {
		return
	}

	var req clients.ClientInput
	if !decodeRequest(w, r, &req, h.logger) {
		return
	}

	client, err := h.clients.Create(r.Context(), orgID, uuid.Nil, req)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	if key := middleware.GetAPIKeyFromContext(r.Context()); key != nil {
		h.logger.Info("client created via api key",
			zap.String("request_id", middleware.GetRequestIDFromContext(r.Context())),
			zap.String("key_prefix", key.Prefix),
			zap.String("client_id", client.ID.String()))
	}
	_ = utils.WriteCreated(w, client)
}

// HandleListBookings handles GET /api/external/v1/bookings
func (h *ExternalHandler) HandleListBookings(w http.ResponseWriter, r *http.Request) {
	orgID, ok := h.org(w, r)
	if !ok {
		return
	}
	filter, err := parseBookingFilter(r)
	if err != nil {
		_ = utils.WriteBadRequest(w, err.Error(), nil)
		return
	}

	list, err := h.bookings.List(r.Context(), orgID, filter)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, list)
}

// HandleListInvoices handles GET /api/external/v1/invoices
func (h *ExternalHandler) HandleListInvoices(w http.ResponseWriter, r *http.Request) {
	orgID, ok := h.org(w, r)
	if !ok {
		return
	}
	p, err := parsePage(r)
	if err != nil {
		_ = utils.WriteBadRequest(w, err.Error(), nil)
		return
	}

	list, err := h.invoices.List(r.Context(), orgID, models.InvoiceStatus(r.URL.Query().Get("status")), p.Limit, p.Offset)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, list)
}

// HandleListGalleries handles GET /api/external/v1/galleries
func (h *ExternalHandler) HandleListGalleries(w http.ResponseWriter, r *http.Request) {
	orgID, ok := h.org(w, r)
	if !ok {
		return
	}
	p, err := parsePage(r)
	if err != nil {
		_ = utils.WriteBadRequest(w, err.Error(), nil)
		return
	}
	clientID, err := queryUUID(r, "client_id")
	if err != nil {
		_ = utils.WriteBadRequest(w, err.Error(), nil)
		return
	}

	list, err := h.galleries.List(r.Context(), orgID, clientID, p.Limit, p.Offset)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, list)
}
