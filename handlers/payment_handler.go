package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/photoproos/platform/middleware"
	"github.com/photoproos/platform/models"
	"github.com/photoproos/platform/services/payments"
	"github.com/photoproos/platform/utils"
	"go.uber.org/zap"
)

// maxWebhookBytes caps Stripe webhook payloads
const maxWebhookBytes = 64 << 10

// PaymentService defines the payment operations used by the handler
type PaymentService interface {
	Get(ctx context.Context, orgID, id uuid.UUID) (*models.Payment, error)
	Refund(ctx context.Context, orgID, actorID, paymentID uuid.UUID) (*models.Payment, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) (*payments.WebhookResult, error)
}

// WebhookCounter counts webhook deliveries by event type and outcome
type WebhookCounter interface {
	WebhookEvent(eventType, outcome string)
}

// PaymentHandler handles payment requests and Stripe webhooks
type PaymentHandler struct {
	service PaymentService
	counter WebhookCounter
	logger  *zap.Logger
}

// NewPaymentHandler creates a new PaymentHandler. counter may be nil.
func NewPaymentHandler(service PaymentService, counter WebhookCounter, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		service: service,
		counter: counter,
		logger:  logger,
	}
}

// HandleGetPayment handles GET /api/v1/payments/{paymentID}
func (h *PaymentHandler) HandleGetPayment(w http.ResponseWriter, r *http.Request) {
	orgID, _, ok := tenant(w, r, h.logger)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "paymentID")
	if !ok {
		return
	}

	payment, err := h.service.Get(r.Context(), orgID, id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, payment)
}

// HandleRefundPayment handles POST /api/v1/payments/{paymentID}/refund
func (h *PaymentHandler) HandleRefundPayment(w http.ResponseWriter, r *http.Request) {
	orgID, user, ok := tenant(w, r, h.logger)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "paymentID")
	if !ok {
		return
	}

	payment, err := h.service.Refund(r.Context(), orgID, user.ID, id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	h.logger.Info("payment refunded",
		zap.String("request_id", middleware.GetRequestIDFromContext(r.Context())),
		zap.String("payment_id", id.String()),
		zap.Int64("amount_cents", payment.AmountCents))

	_ = utils.WriteOK(w, payment)
}

// HandleStripeWebhook handles POST /webhooks/stripe
func (h *PaymentHandler) HandleStripeWebhook(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestIDFromContext(r.Context())

	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBytes))
	if err != nil {
		h.logger.Warn("failed to read webhook body", zap.String("request_id", requestID), zap.Error(err))
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.service.HandleWebhook(r.Context(), payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		h.count("unknown", "rejected")
		HandleServiceError(w, err, h.logger)
		return
	}

	outcome := "ignored"
	if result.Handled {
		outcome = "handled"
	}
	h.count(result.Type, outcome)

	h.logger.Info("stripe webhook processed",
		zap.String("request_id", requestID),
		zap.String("event_id", result.EventID),
		zap.String("type", result.Type),
		zap.Bool("handled", result.Handled))

	_ = utils.WriteOK(w, result)
}

func (h *PaymentHandler) count(eventType, outcome string) {
	if h.counter != nil {
		h.counter.WebhookEvent(eventType, outcome)
	}
}
