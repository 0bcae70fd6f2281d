package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/photoproos/platform/models"
	"github.com/photoproos/platform/repositories"
	"go.uber.org/zap"
)

const paymentColumns = `id, org_id, invoice_id, client_id, amount_cents, currency, status, provider,
	provider_payment_id, paid_at, created_at`

// PaymentRepository implements the repositories.PaymentRepository interface
type PaymentRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *DB, logger *zap.Logger) repositories.PaymentRepository {
	return &PaymentRepository{db: db, logger: logger}
}

func scanPayment(s rowScanner) (*models.Payment, error) {
	p := &models.Payment{}
	var providerPaymentID sql.NullString
	err := s.Scan(
		&p.ID,
		&p.OrgID,
		&p.InvoiceID,
		&p.ClientID,
		&p.AmountCents,
		&p.Currency,
		&p.Status,
		&p.Provider,
		&providerPaymentID,
		&p.PaidAt,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.ProviderPaymentID = providerPaymentID.String
	return p, nil
}

// Create creates a new payment
func (r *PaymentRepository) Create(ctx context.Context, p *models.Payment) error {
	query := `
		INSERT INTO payments (` + paymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	providerPaymentID := sql.NullString{String: p.ProviderPaymentID, Valid: p.ProviderPaymentID != ""}
	_, err := GetExecutor(ctx, r.db).ExecContext(ctx, query,
		p.ID, p.OrgID, p.InvoiceID, p.ClientID, p.AmountCents, p.Currency, p.Status, p.Provider,
		providerPaymentID, p.PaidAt, p.CreatedAt,
	)
	if err != nil {
		return wrapError("create payment", err)
	}

	r.logger.Debug("payment created",
		zap.String("id", p.ID.String()),
		zap.String("invoice_id", p.InvoiceID.String()),
		zap.Int64("amount_cents", p.AmountCents))
	return nil
}

// GetByID retrieves a payment scoped to its organization
func (r *PaymentRepository) GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE org_id = $1 AND id = $2`

	p, err := scanPayment(GetExecutor(ctx, r.db).QueryRowContext(ctx, query, orgID, id))
	if err != nil {
		return nil, wrapError("get payment", err)
	}
	return p, nil
}

// GetByIDForUpdate locks the payment row for the current transaction
func (r *PaymentRepository) GetByIDForUpdate(ctx context.Context, orgID, id uuid.UUID) (*models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE org_id = $1 AND id = $2 FOR UPDATE`

	p, err := scanPayment(GetExecutor(ctx, r.db).QueryRowContext(ctx, query, orgID, id))
	if err != nil {
		return nil, wrapError("lock payment", err)
	}
	return p, nil
}

// GetByProviderPaymentID retrieves a payment by processor reference
func (r *PaymentRepository) GetByProviderPaymentID(ctx context.Context, providerPaymentID string) (*models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE provider_payment_id = $1`

	p, err := scanPayment(GetExecutor(ctx, r.db).QueryRowContext(ctx, query, providerPaymentID))
	if err != nil {
		return nil, wrapError("get payment by provider id", err)
	}
	return p, nil
}

// ListByInvoice lists payments of an invoice, oldest first
func (r *PaymentRepository) ListByInvoice(ctx context.Context, orgID, invoiceID uuid.UUID) ([]*models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE org_id = $1 AND invoice_id = $2 ORDER BY created_at ASC`

	rows, err := GetExecutor(ctx, r.db).QueryContext(ctx, query, orgID, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	payments := []*models.Payment{}
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// UpdateStatus sets the status of a payment
func (r *PaymentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.PaymentStatus) error {
	result, err := GetExecutor(ctx, r.db).ExecContext(ctx,
		`UPDATE payments SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("failed to update payment: %w", err)
	}
	return requireAffected(result, "payment "+id.String())
}

// SumSucceeded sums succeeded payments paid in [start, end)
func (r *PaymentRepository) SumSucceeded(ctx context.Context, orgID uuid.UUID, start, end time.Time) (int64, error) {
	var cents int64
	err := GetExecutor(ctx, r.db).QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount_cents), 0)
		FROM payments
		WHERE org_id = $1 AND status = 'succeeded' AND paid_at >= $2 AND paid_at < $3
	`, orgID, start, end).Scan(&cents)
	if err != nil {
		return 0, fmt.Errorf("failed to sum payments: %w", err)
	}
	return cents, nil
}

// DailyRevenue sums succeeded payments per UTC day in [start, end)
func (r *PaymentRepository) DailyRevenue(ctx context.Context, orgID uuid.UUID, start, end time.Time) (map[string]int64, error) {
	rows, err := GetExecutor(ctx, r.db).QueryContext(ctx, `
		SELECT TO_CHAR(paid_at AT TIME ZONE 'UTC', 'YYYY-MM-DD') AS day, SUM(amount_cents)
		FROM payments
		WHERE org_id = $1 AND status = 'succeeded' AND paid_at >= $2 AND paid_at < $3
		GROUP BY day
	`, orgID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to load daily revenue: %w", err)
	}
	defer rows.Close()

	days := make(map[string]int64)
	for rows.Next() {
		var day string
		var cents int64
		if err := rows.Scan(&day, &cents); err != nil {
			return nil, fmt.Errorf("failed to scan daily revenue: %w", err)
		}
		days[day] = cents
	}
	return days, rows.Err()
}
