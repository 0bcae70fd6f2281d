// Package invoices manages client invoices: pricing, numbering, lifecycle and payments.
package invoices

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/photoproos/platform/models"
	"github.com/photoproos/platform/repositories"
	"github.com/photoproos/platform/services"
	"github.com/photoproos/platform/services/audit"
	"github.com/photoproos/platform/services/payments"
	"go.uber.org/zap"
)

// Dispatcher offers business events to workflows
type Dispatcher interface {
	Dispatch(ctx context.Context, event models.WorkflowEvent)
}

// CheckoutProvider creates card payment sessions
type CheckoutProvider interface {
	CreatePaymentIntent(ctx context.Context, params payments.IntentParams) (*payments.PaymentIntent, error)
}

// InvoiceInput is the editable part of an invoice
type InvoiceInput struct {
	ClientID      uuid.UUID       `json:"client_id" validate:"required"`
	Currency      string          `json:"currency" validate:"omitempty,len=3"`
	LineItems     []LineItemInput `json:"line_items" validate:"required,min=1,dive"`
	DiscountCents int64           `json:"discount_cents" validate:"gte=0"`
	TaxRateBps    int64           `json:"tax_rate_bps" validate:"gte=0,lte=10000"`
	Notes         string          `json:"notes" validate:"max=2000"`
	DueDate       *time.Time      `json:"due_date"`
}

// PaymentInput records money received outside the card checkout
type PaymentInput struct {
	AmountCents       int64  `json:"amount_cents" validate:"gt=0"`
	Provider          string `json:"provider" validate:"required,oneof=cash bank_transfer check stripe other"`
	ProviderPaymentID string `json:"provider_payment_id"`
}

// Checkout is what a client needs to pay an invoice by card
type Checkout struct {
	InvoiceID       uuid.UUID `json:"invoice_id"`
	PaymentIntentID string    `json:"payment_intent_id"`
	ClientSecret    string    `json:"client_secret"`
	AmountCents     int64     `json:"amount_cents"`
	Currency        string    `json:"currency"`
}

// InvoiceService manages invoices and the payments applied to them
type InvoiceService struct {
	invoiceRepo repositories.InvoiceRepository
	paymentRepo repositories.PaymentRepository
	clientRepo  repositories.ClientRepository
	orgRepo     repositories.OrganizationRepository
	txManager   repositories.TransactionManager
	checkout    CheckoutProvider
	dispatcher  Dispatcher
	audit       audit.Recorder
	logger      *zap.Logger
	now         func() time.Time
}

// NewInvoiceService creates a new InvoiceService instance
func NewInvoiceService(
	repos *repositories.Repositories,
	txManager repositories.TransactionManager,
	checkout CheckoutProvider,
	dispatcher Dispatcher,
	recorder audit.Recorder,
	logger *zap.Logger,
) *InvoiceService {
	return &InvoiceService{
		invoiceRepo: repos.Invoices,
		paymentRepo: repos.Payments,
		clientRepo:  repos.Clients,
		orgRepo:     repos.Organizations,
		txManager:   txManager,
		checkout:    checkout,
		dispatcher:  dispatcher,
		audit:       recorder,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Create prices a new draft invoice and assigns its number
func (s *InvoiceService) Create(ctx context.Context, orgID, actorID uuid.UUID, in InvoiceInput) (*models.Invoice, error) {
	totals, err := ComputeTotals(in.LineItems, in.DiscountCents, in.TaxRateBps)
	if err != nil {
		return nil, err
	}

	if _, err := s.clientRepo.GetByID(ctx, orgID, in.ClientID); err != nil {
		return nil, services.MapRepoError(err, services.ErrClientNotFound, "failed to load client")
	}

	currency := strings.ToLower(in.Currency)
	if currency == "" {
		org, err := s.orgRepo.GetByID(ctx, orgID)
		if err != nil {
			return nil, services.MapRepoError(err, services.ErrOrganizationNotFound, "failed to load organization")
		}
		currency = org.Currency
	}

	invoice := models.NewInvoice(orgID, in.ClientID, currency)
	totals.apply(invoice, in.TaxRateBps)
	invoice.Notes = in.Notes
	invoice.DueDate = in.DueDate

	err = services.WithTransaction(ctx, s.txManager, func(ctx context.Context, tx repositories.Transaction) error {
		year := s.now().Year()
		seq, err := s.invoiceRepo.NextSequence(ctx, orgID, year)
		if err != nil {
			return services.WrapInternal("failed to allocate invoice number", err)
		}
		invoice.Number = models.FormatInvoiceNumber(year, seq)
		if err := s.invoiceRepo.Create(ctx, invoice); err != nil {
			return services.MapRepoError(err, services.ErrInvoiceNotFound, "failed to create invoice")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, audit.Entry{
		OrgID:        orgID,
		UserID:       actorID,
		Action:       models.AuditActionInvoiceCreated,
		ResourceType: "invoice",
		ResourceID:   invoice.ID,
		Details:      map[string]interface{}{"number": invoice.Number, "total_cents": invoice.TotalCents},
	})
	return invoice, nil
}

// Get returns one invoice
func (s *InvoiceService) Get(ctx context.Context, orgID, id uuid.UUID) (*models.Invoice, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, orgID, id)
	if err != nil {
		return nil, services.MapRepoError(err, services.ErrInvoiceNotFound, "failed to load invoice")
	}
	return invoice, nil
}

// List returns invoices, optionally of one status
func (s *InvoiceService) List(ctx context.Context, orgID uuid.UUID, status models.InvoiceStatus, limit, offset int) ([]*models.Invoice, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	list, err := s.invoiceRepo.List(ctx, orgID, status, limit, offset)
	if err != nil {
		return nil, services.WrapInternal("failed to list invoices", err)
	}
	return list, nil
}

// Update replaces the contents of a draft invoice
func (s *InvoiceService) Update(ctx context.Context, orgID, actorID, id uuid.UUID, in InvoiceInput) (*models.Invoice, error) {
	invoice, err := s.Get(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if !invoice.IsEditable() {
		return nil, services.ErrInvoiceNotEditable
	}

	totals, err := ComputeTotals(in.LineItems, in.DiscountCents, in.TaxRateBps)
	if err != nil {
		return nil, err
	}
	if in.ClientID != invoice.ClientID {
		if _, err := s.clientRepo.GetByID(ctx, orgID, in.ClientID); err != nil {
			return nil, services.MapRepoError(err, services.ErrClientNotFound, "failed to load client")
		}
		invoice.ClientID = in.ClientID
	}
	if in.Currency != "" {
		invoice.Currency = strings.ToLower(in.Currency)
	}
	totals.apply(invoice, in.TaxRateBps)
	invoice.Notes = in.Notes
	invoice.DueDate = in.DueDate
	invoice.UpdatedAt = s.now()

	if err := s.invoiceRepo.Update(ctx, invoice); err != nil {
		return nil, services.MapRepoError(err, services.ErrInvoiceNotFound, "failed to update invoice")
	}
	return invoice, nil
}

// Send issues a draft invoice to the client
func (s *InvoiceService) Send(ctx context.Context, orgID, actorID, id uuid.UUID) (*models.Invoice, error) {
	invoice, err := s.transition(ctx, orgID, id, models.InvoiceStatusSent, models.InvoiceStatusDraft)
	if err != nil {
		return nil, err
	}
	s.audit.Record(ctx, audit.Entry{
		OrgID:        orgID,
		UserID:       actorID,
		Action:       models.AuditActionInvoiceSent,
		ResourceType: "invoice",
		ResourceID:   invoice.ID,
	})
	return invoice, nil
}

// Void cancels an unpaid invoice
func (s *InvoiceService) Void(ctx context.Context, orgID, actorID, id uuid.UUID) (*models.Invoice, error) {
	invoice, err := s.transition(ctx, orgID, id, models.InvoiceStatusVoid,
		models.InvoiceStatusDraft, models.InvoiceStatusSent, models.InvoiceStatusOverdue)
	if err != nil {
		return nil, err
	}
	s.audit.Record(ctx, audit.Entry{
		OrgID:        orgID,
		UserID:       actorID,
		Action:       models.AuditActionInvoiceVoided,
		ResourceType: "invoice",
		ResourceID:   invoice.ID,
	})
	return invoice, nil
}

// transition changes the status of a locked invoice, so it cannot interleave
// with a payment being applied to the same invoice
func (s *InvoiceService) transition(ctx context.Context, orgID, id uuid.UUID, next models.InvoiceStatus, from ...models.InvoiceStatus) (*models.Invoice, error) {
	return services.WithTransactionResult(ctx, s.txManager, func(ctx context.Context, tx repositories.Transaction) (*models.Invoice, error) {
		invoice, err := s.invoiceRepo.GetByIDForUpdate(ctx, orgID, id)
		if err != nil {
			return nil, services.MapRepoError(err, services.ErrInvoiceNotFound, "failed to lock invoice")
		}

		allowed := false
		for _, st := range from {
			if invoice.Status == st {
				allowed = true
				break
			}
		}
		if !allowed || !invoice.Status.CanTransition(next) {
			return nil, services.Wrap(services.ErrInvalidTransition, fmt.Errorf("%s -> %s", invoice.Status, next))
		}

		now := s.now()
		invoice.Status = next
		invoice.UpdatedAt = now
		if next == models.InvoiceStatusSent && invoice.IssuedAt == nil {
			invoice.IssuedAt = &now
		}
		if err := s.invoiceRepo.Update(ctx, invoice); err != nil {
			return nil, services.MapRepoError(err, services.ErrInvoiceNotFound, "failed to update invoice")
		}
		return invoice, nil
	})
}

// RecordPayment applies money received to a sent or overdue invoice
func (s *InvoiceService) RecordPayment(ctx context.Context, orgID, actorID, invoiceID uuid.UUID, in PaymentInput) (*models.Payment, error) {
	payment, invoice, err := s.applyPayment(ctx, orgID, invoiceID, in)
	if err != nil {
		return nil, err
	}
	s.afterPayment(ctx, actorID, invoice, payment)
	return payment, nil
}

// RecordProviderPayment applies a processor payment once per providerPaymentID
func (s *InvoiceService) RecordProviderPayment(ctx context.Context, orgID, invoiceID uuid.UUID, amountCents int64, provider, providerPaymentID string) (*models.Payment, error) {
	existing, err := s.paymentRepo.GetByProviderPaymentID(ctx, providerPaymentID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, services.WrapInternal("failed to look up payment", err)
	}

	payment, invoice, err := s.applyPayment(ctx, orgID, invoiceID, PaymentInput{
		AmountCents:       amountCents,
		Provider:          provider,
		ProviderPaymentID: providerPaymentID,
	})
	if err != nil {
		if services.IsConflictError(err) {
			if existing, lookupErr := s.paymentRepo.GetByProviderPaymentID(ctx, providerPaymentID); lookupErr == nil {
				return existing, nil
			}
		}
		return nil, err
	}
	s.afterPayment(ctx, uuid.Nil, invoice, payment)
	return payment, nil
}

func (s *InvoiceService) applyPayment(ctx context.Context, orgID, invoiceID uuid.UUID, in PaymentInput) (*models.Payment, *models.Invoice, error) {
	if in.AmountCents <= 0 {
		return nil, nil, services.ErrInvalidAmount
	}

	var payment *models.Payment
	var invoice *models.Invoice
	err := services.WithTransaction(ctx, s.txManager, func(ctx context.Context, tx repositories.Transaction) error {
		var err error
		invoice, err = s.invoiceRepo.GetByIDForUpdate(ctx, orgID, invoiceID)
		if err != nil {
			return services.MapRepoError(err, services.ErrInvoiceNotFound, "failed to lock invoice")
		}
		if invoice.Status != models.InvoiceStatusSent && invoice.Status != models.InvoiceStatusOverdue {
			return services.Wrap(services.ErrInvalidTransition, fmt.Errorf("cannot pay a %s invoice", invoice.Status))
		}
		if in.AmountCents > invoice.BalanceCents() {
			return services.Wrap(services.ErrInvalidAmount, fmt.Errorf("amount exceeds balance of %d", invoice.BalanceCents()))
		}

		payment = models.NewPayment(invoice, in.AmountCents, in.Provider, in.ProviderPaymentID)
		if err := s.paymentRepo.Create(ctx, payment); err != nil {
			return services.MapRepoError(err, services.ErrPaymentNotFound, "failed to record payment")
		}

		now := s.now()
		invoice.AmountPaidCents += in.AmountCents
		invoice.UpdatedAt = now
		if invoice.BalanceCents() == 0 {
			invoice.Status = models.InvoiceStatusPaid
			invoice.PaidAt = &now
		}
		if err := s.invoiceRepo.Update(ctx, invoice); err != nil {
			return services.MapRepoError(err, services.ErrInvoiceNotFound, "failed to update invoice")
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return payment, invoice, nil
}

func (s *InvoiceService) afterPayment(ctx context.Context, actorID uuid.UUID, invoice *models.Invoice, payment *models.Payment) {
	s.logger.Info("payment recorded",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("provider", payment.Provider),
		zap.Int64("amount_cents", payment.AmountCents),
		zap.String("status", string(invoice.Status)))

	s.audit.Record(ctx, audit.Entry{
		OrgID:        invoice.OrgID,
		UserID:       actorID,
		Action:       models.AuditActionPaymentRecorded,
		ResourceType: "payment",
		ResourceID:   payment.ID,
		Details: map[string]interface{}{
			"invoice_id":   invoice.ID.String(),
			"amount_cents": payment.AmountCents,
			"provider":     payment.Provider,
		},
	})

	if invoice.Status == models.InvoiceStatusPaid {
		clientID := invoice.ClientID
		s.dispatcher.Dispatch(ctx, models.NewWorkflowEvent(invoice.OrgID, models.TriggerInvoicePaid, &clientID, map[string]interface{}{
			"invoice_id":  invoice.ID.String(),
			"number":      invoice.Number,
			"total_cents": invoice.TotalCents,
			"currency":    invoice.Currency,
		}))
	}
}

// MarkOverdue moves sent invoices past their due date to overdue
func (s *InvoiceService) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	n, err := s.invoiceRepo.MarkOverdue(ctx, now)
	if err != nil {
		return 0, services.WrapInternal("failed to mark overdue invoices", err)
	}
	if n > 0 {
		s.logger.Info("invoices marked overdue", zap.Int64("count", n))
	}
	return n, nil
}

// CreateCheckout opens a card payment for the outstanding balance
func (s *InvoiceService) CreateCheckout(ctx context.Context, orgID, id uuid.UUID) (*Checkout, error) {
	invoice, err := s.Get(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if invoice.Status != models.InvoiceStatusSent && invoice.Status != models.InvoiceStatusOverdue {
		return nil, services.Wrap(services.ErrInvalidTransition, fmt.Errorf("cannot pay a %s invoice", invoice.Status))
	}
	balance := invoice.BalanceCents()
	if balance <= 0 {
		return nil, services.ErrInvalidAmount
	}

	intent, err := s.checkout.CreatePaymentIntent(ctx, payments.IntentParams{
		AmountCents: balance,
		Currency:    invoice.Currency,
		Description: "Invoice " + invoice.Number,
		Metadata: map[string]string{
			"org_id":     orgID.String(),
			"invoice_id": invoice.ID.String(),
			"number":     invoice.Number,
		},
		IdempotencyKey: fmt.Sprintf("checkout_%s_%d", invoice.ID, balance),
	})
	if err != nil {
		return nil, err
	}

	return &Checkout{
		InvoiceID:       invoice.ID,
		PaymentIntentID: intent.ID,
		ClientSecret:    intent.ClientSecret,
		AmountCents:     balance,
		Currency:        invoice.Currency,
	}, nil
}
