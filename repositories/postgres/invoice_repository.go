package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/photoproos/platform/models"
	"github.com/photoproos/platform/repositories"
	"go.uber.org/zap"
)

const invoiceColumns = `id, org_id, client_id, number, status, currency, line_items,
	subtotal_cents, discount_cents, tax_rate_bps, tax_cents, total_cents, amount_paid_cents,
	notes, due_date, issued_at, paid_at, created_at, updated_at`

// InvoiceRepository implements the repositories.InvoiceRepository interface
type InvoiceRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewInvoiceRepository creates a new invoice repository
func NewInvoiceRepository(db *DB, logger *zap.Logger) repositories.InvoiceRepository {
	return &InvoiceRepository{db: db, logger: logger}
}

func scanInvoice(s rowScanner) (*models.Invoice, error) {
	inv := &models.Invoice{}
	var lineItems []byte
	err := s.Scan(
		&inv.ID,
		&inv.OrgID,
		&inv.ClientID,
		&inv.Number,
		&inv.Status,
		&inv.Currency,
		&lineItems,
		&inv.SubtotalCents,
		&inv.DiscountCents,
		&inv.TaxRateBps,
		&inv.TaxCents,
		&inv.TotalCents,
		&inv.AmountPaidCents,
		&inv.Notes,
		&inv.DueDate,
		&inv.IssuedAt,
		&inv.PaidAt,
		&inv.CreatedAt,
		&inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	inv.LineItems = []models.LineItem{}
	if len(lineItems) > 0 {
		if err := json.Unmarshal(lineItems, &inv.LineItems); err != nil {
			return nil, fmt.Errorf("failed to decode line items: %w", err)
		}
	}
	return inv, nil
}

// Create creates a new invoice
func (r *InvoiceRepository) Create(ctx context.Context, inv *models.Invoice) error {
	lineItems, err := json.Marshal(inv.LineItems)
	if err != nil {
		return fmt.Errorf("failed to encode line items: %w", err)
	}

	query := `
		INSERT INTO invoices (` + invoiceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`

	_, err = GetExecutor(ctx, r.db).ExecContext(ctx, query,
		inv.ID, inv.OrgID, inv.ClientID, inv.Number, inv.Status, inv.Currency, lineItems,
		inv.SubtotalCents, inv.DiscountCents, inv.TaxRateBps, inv.TaxCents, inv.TotalCents, inv.AmountPaidCents,
		inv.Notes, inv.DueDate, inv.IssuedAt, inv.PaidAt, inv.CreatedAt, inv.UpdatedAt,
	)
	if err != nil {
		return wrapError("create invoice", err)
	}

	r.logger.Debug("invoice created", zap.String("id", inv.ID.String()), zap.String("number", inv.Number))
	return nil
}

// GetByID retrieves an invoice scoped to its organization
func (r *InvoiceRepository) GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE org_id = $1 AND id = $2`

	inv, err := scanInvoice(GetExecutor(ctx, r.db).QueryRowContext(ctx, query, orgID, id))
	if err != nil {
		return nil, wrapError("get invoice", err)
	}
	return inv, nil
}

// GetByIDForUpdate locks the invoice row for the current transaction
func (r *InvoiceRepository) GetByIDForUpdate(ctx context.Context, orgID, id uuid.UUID) (*models.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE org_id = $1 AND id = $2 FOR UPDATE`

	inv, err := scanInvoice(GetExecutor(ctx, r.db).QueryRowContext(ctx, query, orgID, id))
	if err != nil {
		return nil, wrapError("lock invoice", err)
	}
	return inv, nil
}

// List lists invoices, optionally filtered by status
func (r *InvoiceRepository) List(ctx context.Context, orgID uuid.UUID, status models.InvoiceStatus, limit, offset int) ([]*models.Invoice, error) {
	query := `
		SELECT ` + invoiceColumns + `
		FROM invoices
		WHERE org_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`

	rows, err := GetExecutor(ctx, r.db).QueryContext(ctx, query, orgID, string(status), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	defer rows.Close()

	invoices := []*models.Invoice{}
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		invoices = append(invoices, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating invoice rows: %w", err)
	}
	return invoices, nil
}

// Update updates an invoice
func (r *InvoiceRepository) Update(ctx context.Context, inv *models.Invoice) error {
	lineItems, err := json.Marshal(inv.LineItems)
	if err != nil {
		return fmt.Errorf("failed to encode line items: %w", err)
	}

	query := `
		UPDATE invoices
		SET status = $3,
		    line_items = $4,
		    subtotal_cents = $5,
		    discount_cents = $6,
		    tax_rate_bps = $7,
		    tax_cents = $8,
		    total_cents = $9,
		    amount_paid_cents = $10,
		    notes = $11,
		    due_date = $12,
		    issued_at = $13,
		    paid_at = $14,
		    updated_at = $15
		WHERE org_id = $1 AND id = $2
	`

	result, err := GetExecutor(ctx, r.db).ExecContext(ctx, query,
		inv.OrgID, inv.ID, inv.Status, lineItems,
		inv.SubtotalCents, inv.DiscountCents, inv.TaxRateBps, inv.TaxCents, inv.TotalCents, inv.AmountPaidCents,
		inv.Notes, inv.DueDate, inv.IssuedAt, inv.PaidAt, inv.UpdatedAt,
	)
	if err != nil {
		return wrapError("update invoice", err)
	}
	return requireAffected(result, "invoice "+inv.ID.String())
}

// NextSequence returns the next invoice sequence number for the organization and year.
// Callers hold a transaction so concurrent creates collide on the unique number instead of skipping.
func (r *InvoiceRepository) NextSequence(ctx context.Context, orgID uuid.UUID, year int) (int, error) {
	query := `
		SELECT COALESCE(MAX(CAST(SPLIT_PART(number, '-', 3) AS INTEGER)), 0) + 1
		FROM invoices
		WHERE org_id = $1 AND number LIKE $2
	`

	var seq int
	if err := GetExecutor(ctx, r.db).QueryRowContext(ctx, query, orgID, fmt.Sprintf("INV-%d-%%", year)).Scan(&seq); err != nil {
		return 0, fmt.Errorf("failed to compute invoice sequence: %w", err)
	}
	return seq, nil
}

// MarkOverdue moves sent invoices due before now to overdue
func (r *InvoiceRepository) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	result, err := GetExecutor(ctx, r.db).ExecContext(ctx, `
		UPDATE invoices
		SET status = 'overdue', updated_at = $1
		WHERE status = 'sent' AND due_date IS NOT NULL AND due_date < $1
	`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to mark overdue invoices: %w", err)
	}
	return result.RowsAffected()
}

// CountByStatus counts invoices created in [start, end) per status
func (r *InvoiceRepository) CountByStatus(ctx context.Context, orgID uuid.UUID, start, end time.Time) (map[models.InvoiceStatus]int, error) {
	rows, err := GetExecutor(ctx, r.db).QueryContext(ctx, `
		SELECT status, COUNT(*)
		FROM invoices
		WHERE org_id = $1 AND created_at >= $2 AND created_at < $3
		GROUP BY status
	`, orgID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to count invoices: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.InvoiceStatus]int)
	for rows.Next() {
		var status models.InvoiceStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("failed to scan invoice count: %w", err)
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

// OutstandingCents sums unpaid balances of sent and overdue invoices
func (r *InvoiceRepository) OutstandingCents(ctx context.Context, orgID uuid.UUID) (int64, error) {
	var cents int64
	err := GetExecutor(ctx, r.db).QueryRowContext(ctx, `
		SELECT COALESCE(SUM(total_cents - amount_paid_cents), 0)
		FROM invoices
		WHERE org_id = $1 AND status IN ('sent', 'overdue')
	`, orgID).Scan(&cents)
	if err != nil {
		return 0, fmt.Errorf("failed to sum outstanding invoices: %w", err)
	}
	return cents, nil
}
