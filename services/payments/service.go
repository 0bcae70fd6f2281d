// Package payments integrates Stripe: payment intents, transfers, refunds and webhooks.
package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/photoproos/platform/models"
	"github.com/photoproos/platform/repositories"
	"github.com/photoproos/platform/services"
	"github.com/photoproos/platform/services/audit"
	"go.uber.org/zap"
)

const providerStripe = "stripe"

// InvoicePayments applies processor payments to invoices
type InvoicePayments interface {
	// RecordProviderPayment is idempotent on providerPaymentID
	RecordProviderPayment(ctx context.Context, orgID, invoiceID uuid.UUID, amountCents int64, provider, providerPaymentID string) (*models.Payment, error)
}

// Refunder refunds processor payments
type Refunder interface {
	RefundPayment(ctx context.Context, paymentIntentID string, amountCents int64, idempotencyKey string) (*Refund, error)
}

// WebhookResult reports what a webhook delivery did
type WebhookResult struct {
	EventID   string     `json:"event_id"`
	Type      string     `json:"type"`
	Handled   bool       `json:"handled"`
	PaymentID *uuid.UUID `json:"payment_id,omitempty"`
}

// PaymentService handles payment listings, refunds and Stripe webhooks
type PaymentService struct {
	paymentRepo   repositories.PaymentRepository
	invoiceRepo   repositories.InvoiceRepository
	txManager     repositories.TransactionManager
	invoices      InvoicePayments
	refunder      Refunder
	webhookSecret string
	audit         audit.Recorder
	logger        *zap.Logger
	now           func() time.Time
}

// NewPaymentService creates a new PaymentService instance
func NewPaymentService(
	paymentRepo repositories.PaymentRepository,
	invoiceRepo repositories.InvoiceRepository,
	txManager repositories.TransactionManager,
	invoices InvoicePayments,
	refunder Refunder,
	webhookSecret string,
	recorder audit.Recorder,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		paymentRepo:   paymentRepo,
		invoiceRepo:   invoiceRepo,
		txManager:     txManager,
		invoices:      invoices,
		refunder:      refunder,
		webhookSecret: webhookSecret,
		audit:         recorder,
		logger:        logger,
		now:           time.Now,
	}
}

// ListForInvoice returns every payment made against an invoice
func (s *PaymentService) ListForInvoice(ctx context.Context, orgID, invoiceID uuid.UUID) ([]*models.Payment, error) {
	list, err := s.paymentRepo.ListByInvoice(ctx, orgID, invoiceID)
	if err != nil {
		return nil, services.WrapInternal("failed to list payments", err)
	}
	return list, nil
}

// Get returns one payment
func (s *PaymentService) Get(ctx context.Context, orgID, id uuid.UUID) (*models.Payment, error) {
	payment, err := s.paymentRepo.GetByID(ctx, orgID, id)
	if err != nil {
		return nil, services.MapRepoError(err, services.ErrPaymentNotFound, "failed to load payment")
	}
	return payment, nil
}

// Refund fully refunds a succeeded payment. A paid invoice that again has a balance
// returns to sent. The payment row is locked for the whole refund, so a second
// refund of the same payment waits and then finds it already refunded.
func (s *PaymentService) Refund(ctx context.Context, orgID, actorID, paymentID uuid.UUID) (*models.Payment, error) {
	payment, err := services.WithTransactionResult(ctx, s.txManager, func(ctx context.Context, tx repositories.Transaction) (*models.Payment, error) {
		payment, err := s.paymentRepo.GetByIDForUpdate(ctx, orgID, paymentID)
		if err != nil {
			return nil, services.MapRepoError(err, services.ErrPaymentNotFound, "failed to lock payment")
		}
		if payment.Status != models.PaymentStatusSucceeded {
			return nil, services.Wrap(services.ErrInvalidTransition, fmt.Errorf("payment is %s", payment.Status))
		}

		if payment.Provider == providerStripe && payment.ProviderPaymentID != "" {
			if _, err := s.refunder.RefundPayment(ctx, payment.ProviderPaymentID, payment.AmountCents, "refund_"+payment.ID.String()); err != nil {
				return nil, err
			}
		}

		if err := s.paymentRepo.UpdateStatus(ctx, payment.ID, models.PaymentStatusRefunded); err != nil {
			return nil, services.MapRepoError(err, services.ErrPaymentNotFound, "failed to update payment")
		}

		invoice, err := s.invoiceRepo.GetByIDForUpdate(ctx, orgID, payment.InvoiceID)
		if err != nil {
			return nil, services.MapRepoError(err, services.ErrInvoiceNotFound, "failed to lock invoice")
		}
		invoice.AmountPaidCents -= payment.AmountCents
		if invoice.AmountPaidCents < 0 {
			invoice.AmountPaidCents = 0
		}
		if invoice.Status == models.InvoiceStatusPaid && invoice.BalanceCents() > 0 {
			invoice.Status = models.InvoiceStatusSent
			invoice.PaidAt = nil
		}
		invoice.UpdatedAt = s.now().UTC()
		if err := s.invoiceRepo.Update(ctx, invoice); err != nil {
			return nil, services.MapRepoError(err, services.ErrInvoiceNotFound, "failed to update invoice")
		}
		return payment, nil
	})
	if err != nil {
		return nil, err
	}
	payment.Status = models.PaymentStatusRefunded

	s.audit.Record(ctx, audit.Entry{
		OrgID:        orgID,
		UserID:       actorID,
		Action:       models.AuditActionPaymentRefunded,
		ResourceType: "payment",
		ResourceID:   payment.ID,
		Details:      map[string]interface{}{"amount_cents": payment.AmountCents, "invoice_id": payment.InvoiceID.String()},
	})
	return payment, nil
}

// HandleWebhook verifies and applies a Stripe webhook delivery.
// Event types the platform does not use are acknowledged without action.
func (s *PaymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) (*WebhookResult, error) {
	if err := VerifySignature(payload, signature, s.webhookSecret, s.now()); err != nil {
		s.logger.Warn("stripe webhook signature rejected", zap.Error(err))
		return nil, err
	}

	event, err := ParseEvent(payload)
	if err != nil {
		return nil, err
	}
	result := &WebhookResult{EventID: event.ID, Type: event.Type}

	switch event.Type {
	case "payment_intent.succeeded":
		payment, err := s.applySucceededIntent(ctx, event)
		if err != nil {
			return nil, err
		}
		result.Handled = true
		result.PaymentID = &payment.ID
	case "payment_intent.payment_failed":
		s.logger.Info("stripe payment failed", zap.String("event_id", event.ID))
		result.Handled = true
	default:
		s.logger.Debug("stripe webhook ignored", zap.String("type", event.Type))
	}
	return result, nil
}

func (s *PaymentService) applySucceededIntent(ctx context.Context, event *Event) (*models.Payment, error) {
	var intent PaymentIntent
	if err := json.Unmarshal(event.Data.Object, &intent); err != nil {
		return nil, services.Wrap(services.ErrInvalidWebhookEvent, err)
	}

	orgID, err := uuid.Parse(intent.Metadata["org_id"])
	if err != nil {
		return nil, services.Wrap(services.ErrInvalidWebhookEvent, fmt.Errorf("metadata.org_id: %w", err))
	}
	invoiceID, err := uuid.Parse(intent.Metadata["invoice_id"])
	if err != nil {
		return nil, services.Wrap(services.ErrInvalidWebhookEvent, fmt.Errorf("metadata.invoice_id: %w", err))
	}

	amount := intent.AmountReceived
	if amount == 0 {
		amount = intent.Amount
	}

	payment, err := s.invoices.RecordProviderPayment(ctx, orgID, invoiceID, amount, providerStripe, intent.ID)
	if err != nil {
		s.logger.Error("failed to apply stripe payment",
			zap.String("payment_intent", intent.ID),
			zap.String("invoice_id", invoiceID.String()),
			zap.Error(err))
		return nil, err
	}
	return payment, nil
}
