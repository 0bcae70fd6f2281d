package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/photoproos/platform/middleware"
	"github.com/photoproos/platform/models"
	"github.com/photoproos/platform/services/invoices"
	"github.com/photoproos/platform/utils"
	"go.uber.org/zap"
)

// InvoiceService defines the invoice operations used by the handler
type InvoiceService interface {
	Create(ctx context.Context, orgID, actorID uuid.UUID, in invoices.InvoiceInput) (*models.Invoice, error)
	Get(ctx context.Context, orgID, id uuid.UUID) (*models.Invoice, error)
	List(ctx context.Context, orgID uuid.UUID, status models.InvoiceStatus, limit, offset int) ([]*models.Invoice, error)
	Update(ctx context.Context, orgID, actorID, id uuid.UUID, in invoices.InvoiceInput) (*models.Invoice, error)
	Send(ctx context.Context, orgID, actorID, id uuid.UUID) (*models.Invoice, error)
	Void(ctx context.Context, orgID, actorID, id uuid.UUID) (*models.Invoice, error)
	RecordPayment(ctx context.Context, orgID, actorID, invoiceID uuid.UUID, in invoices.PaymentInput) (*models.Payment, error)
	CreateCheckout(ctx context.Context, orgID, id uuid.UUID) (*invoices.Checkout, error)
}

// InvoicePaymentLister lists the payments applied to an invoice
type InvoicePaymentLister interface {
	ListForInvoice(ctx context.Context, orgID, invoiceID uuid.UUID) ([]*models.Payment, error)
}

// InvoiceHandler handles invoice requests
type InvoiceHandler struct {
	service  InvoiceService
	payments InvoicePaymentLister
	logger   *zap.Logger
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(service InvoiceService, payments InvoicePaymentLister, logger *zap.Logger) *InvoiceHandler {
	return &InvoiceHandler{
		service:  service,
		payments: payments,
		logger:   logger,
	}
}

// HandleListInvoices handles GET /api/v1/invoices
func (h *InvoiceHandler) HandleListInvoices(w http.ResponseWriter, r *http.Request) {
	orgID, _, ok := tenant(w, r, h.logger)
	if !ok {
		return
	}

	p, err := parsePage(r)
	if err != nil {
		_ = utils.WriteBadRequest(w, err.Error(), nil)
		return
	}

	status := models.InvoiceStatus(r.URL.Query().Get("status"))
	list, err := h.service.List(r.Context(), orgID, status, p.Limit, p.Offset)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, list)
}

// HandleCreateInvoice handles POST /api/v1/invoices
func (h *InvoiceHandler) HandleCreateInvoice(w http.ResponseWriter, r *http.Request) {
	orgID, user, ok := tenant(w, r, h.logger)
	if !ok {
		return
	}

	var req invoices.InvoiceInput
	if !decodeRequest(w, r, &req, h.logger) {
		return
	}

	invoice, err := h.service.Create(r.Context(), orgID, user.ID, req)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	h.logger.Info("invoice created",
		zap.String("request_id", middleware.GetRequestIDFromContext(r.Context())),
		zap.String("org_id", orgID.String()),
		zap.String("number", invoice.Number),
		zap.Int64("total_cents", invoice.TotalCents))

	_ = utils.WriteCreated(w, invoice)
}

// HandleGetInvoice handles GET /api/v1/invoices/{invoiceID}
func (h *InvoiceHandler) HandleGetInvoice(w http.ResponseWriter, r *http.Request) {
	orgID, _, ok := tenant(w, r, h.logger)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "invoiceID")
	if !ok {
		return
	}

	invoice, err := h.service.Get(r.Context(), orgID, id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, invoice)
}

// HandleUpdateInvoice handles PUT /api/v1/invoices/{invoiceID}
func (h *InvoiceHandler) HandleUpdateInvoice(w http.ResponseWriter, r *http.Request) {
	orgID, user, ok := tenant(w, r, h.logger)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "invoiceID")
	if !ok {
		return
	}

	var req invoices.InvoiceInput
	if !decodeRequest(w, r, &req, h.logger) {
		return
	}

	invoice, err := h.service.Update(r.Context(), orgID, user.ID, id, req)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, invoice)
}

// HandleSendInvoice handles POST /api/v1/invoices/{invoiceID}/send
func (h *InvoiceHandler) HandleSendInvoice(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Send)
}

// HandleVoidInvoice handles POST /api/v1/invoices/{invoiceID}/void
func (h *InvoiceHandler) HandleVoidInvoice(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Void)
}

func (h *InvoiceHandler) transition(w http.ResponseWriter, r *http.Request,
	fn func(ctx context.Context, orgID, actorID, id uuid.UUID) (*models.Invoice, error)) {
	orgID, user, ok := tenant(w, r, h.logger)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "invoiceID")
	if !ok {
		return
	}

	invoice, err := fn(r.Context(), orgID, user.ID, id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	h.logger.Info("invoice status changed",
		zap.String("request_id", middleware.GetRequestIDFromContext(r.Context())),
		zap.String("invoice_id", id.String()),
		zap.String("status", string(invoice.Status)))

	_ = utils.WriteOK(w, invoice)
}

// HandleRecordPayment handles POST /api/v1/invoices/{invoiceID}/payments
func (h *InvoiceHandler) HandleRecordPayment(w http.ResponseWriter, r *http.Request) {
	orgID, user, ok := tenant(w, r, h.logger)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "invoiceID")
	if !ok {
		return
	}

	var req invoices.PaymentInput
	if !decodeRequest(w, r, &req, h.logger) {
		return
	}

	payment, err := h.service.RecordPayment(r.Context(), orgID, user.ID, id, req)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	h.logger.Info("payment recorded",
		zap.String("request_id", middleware.GetRequestIDFromContext(r.Context())),
		zap.String("invoice_id", id.String()),
		zap.Int64("amount_cents", payment.AmountCents))

	_ = utils.WriteCreated(w, payment)
}

// HandleListInvoicePayments handles GET /api/v1/invoices/{invoiceID}/payments
func (h *InvoiceHandler) HandleListInvoicePayments(w http.ResponseWriter, r *http.Request) {
	orgID, _, ok := tenant(w, r, h.logger)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "invoiceID")
	if !ok {
		return
	}

	list, err := h.payments.ListForInvoice(r.Context(), orgID, id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, list)
}

// HandleCreateCheckout handles POST /api/v1/invoices/{invoiceID}/checkout
func (h *InvoiceHandler) HandleCreateCheckout(w http.ResponseWriter, r *http.Request) {
	orgID, _, ok := tenant(w, r, h.logger)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "invoiceID")
	if !ok {
		return
	}

	checkout, err := h.service.CreateCheckout(r.Context(), orgID, id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteCreated(w, checkout)
}
