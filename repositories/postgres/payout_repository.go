package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/photoproos/platform/models"
	"github.com/photoproos/platform/repositories"
	"go.uber.org/zap"
)

const payoutBatchColumns = `id, org_id, batch_number, status, currency, total_cents, item_count,
	created_by, notes, processed_at, created_at, updated_at`

const payoutItemColumns = `id, batch_id, org_id, photographer_id, amount_cents, earnings_count, status,
	transfer_id, failure_reason, created_at`

// PayoutRepository implements the repositories.PayoutRepository interface
type PayoutRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewPayoutRepository creates a new payout repository
func NewPayoutRepository(db *DB, logger *zap.Logger) repositories.PayoutRepository {
	return &PayoutRepository{db: db, logger: logger}
}

func scanPayoutBatch(s rowScanner) (*models.PayoutBatch, error) {
	b := &models.PayoutBatch{}
	err := s.Scan(
		&b.ID,
		&b.OrgID,
		&b.BatchNumber,
		&b.Status,
		&b.Currency,
		&b.TotalCents,
		&b.ItemCount,
		&b.CreatedBy,
		&b.Notes,
		&b.ProcessedAt,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func scanPayoutItem(s rowScanner) (*models.PayoutItem, error) {
	it := &models.PayoutItem{}
	err := s.Scan(
		&it.ID,
		&it.BatchID,
		&it.OrgID,
		&it.PhotographerID,
		&it.AmountCents,
		&it.EarningsCount,
		&it.Status,
		&it.TransferID,
		&it.FailureReason,
		&it.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return it, nil
}

// CreateBatch inserts a payout batch
func (r *PayoutRepository) CreateBatch(ctx context.Context, b *models.PayoutBatch) error {
	query := `
		INSERT INTO payout_batches (` + payoutBatchColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := GetExecutor(ctx, r.db).ExecContext(ctx, query,
		b.ID, b.OrgID, b.BatchNumber, b.Status, b.Currency, b.TotalCents, b.ItemCount,
		b.CreatedBy, b.Notes, b.ProcessedAt, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		return wrapError("create payout batch", err)
	}

	r.logger.Debug("payout batch created",
		zap.String("id", b.ID.String()),
		zap.String("batch_number", b.BatchNumber),
		zap.Int64("total_cents", b.TotalCents))
	return nil
}

// CreateItem inserts a payout item
func (r *PayoutRepository) CreateItem(ctx context.Context, it *models.PayoutItem) error {
	query := `
		INSERT INTO payout_items (` + payoutItemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := GetExecutor(ctx, r.db).ExecContext(ctx, query,
		it.ID, it.BatchID, it.OrgID, it.PhotographerID, it.AmountCents, it.EarningsCount, it.Status,
		it.TransferID, it.FailureReason, it.CreatedAt,
	)
	if err != nil {
		return wrapError("create payout item", err)
	}
	return nil
}

// GetBatch retrieves a batch with its items
func (r *PayoutRepository) GetBatch(ctx context.Context, orgID, id uuid.UUID) (*models.PayoutBatch, error) {
	query := `SELECT ` + payoutBatchColumns + ` FROM payout_batches WHERE org_id = $1 AND id = $2`

	b, err := scanPayoutBatch(GetExecutor(ctx, r.db).QueryRowContext(ctx, query, orgID, id))
	if err != nil {
		return nil, wrapError("get payout batch", err)
	}

	if b.Items, err = r.ListItems(ctx, b.ID); err != nil {
		return nil, err
	}
	return b, nil
}

// GetBatchForUpdate locks the batch row for the current transaction
func (r *PayoutRepository) GetBatchForUpdate(ctx context.Context, orgID, id uuid.UUID) (*models.PayoutBatch, error) {
	query := `SELECT ` + payoutBatchColumns + ` FROM payout_batches WHERE org_id = $1 AND id = $2 FOR UPDATE`

	b, err := scanPayoutBatch(GetExecutor(ctx, r.db).QueryRowContext(ctx, query, orgID, id))
	if err != nil {
		return nil, wrapError("lock payout batch", err)
	}
	return b, nil
}

// ListBatches lists batches newest first, without items
func (r *PayoutRepository) ListBatches(ctx context.Context, orgID uuid.UUID, limit, offset int) ([]*models.PayoutBatch, error) {
	query := `
		SELECT ` + payoutBatchColumns + `
		FROM payout_batches
		WHERE org_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := GetExecutor(ctx, r.db).QueryContext(ctx, query, orgID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list payout batches: %w", err)
	}
	defer rows.Close()

	batches := []*models.PayoutBatch{}
	for rows.Next() {
		b, err := scanPayoutBatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payout batch: %w", err)
		}
		batches = append(batches, b)
	}
	return batches, rows.Err()
}

// ListItems lists the items of a batch
func (r *PayoutRepository) ListItems(ctx context.Context, batchID uuid.UUID) ([]*models.PayoutItem, error) {
	query := `SELECT ` + payoutItemColumns + ` FROM payout_items WHERE batch_id = $1 ORDER BY amount_cents DESC`

	rows, err := GetExecutor(ctx, r.db).QueryContext(ctx, query, batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payout items: %w", err)
	}
	defer rows.Close()

	items := []*models.PayoutItem{}
	for rows.Next() {
		it, err := scanPayoutItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payout item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// UpdateBatch updates status, processed_at and notes of a batch
func (r *PayoutRepository) UpdateBatch(ctx context.Context, b *models.PayoutBatch) error {
	query := `
		UPDATE payout_batches
		SET status = $3,
		    notes = $4,
		    processed_at = $5,
		    updated_at = $6
		WHERE org_id = $1 AND id = $2
	`

	result, err := GetExecutor(ctx, r.db).ExecContext(ctx, query,
		b.OrgID, b.ID, b.Status, b.Notes, b.ProcessedAt, b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update payout batch: %w", err)
	}
	return requireAffected(result, "payout batch "+b.ID.String())
}

// UpdateItem records the disbursement outcome of an item
func (r *PayoutRepository) UpdateItem(ctx context.Context, it *models.PayoutItem) error {
	query := `
		UPDATE payout_items
		SET status = $2,
		    transfer_id = $3,
		    failure_reason = $4
		WHERE id = $1
	`

	result, err := GetExecutor(ctx, r.db).ExecContext(ctx, query, it.ID, it.Status, it.TransferID, it.FailureReason)
	if err != nil {
		return fmt.Errorf("failed to update payout item: %w", err)
	}
	return requireAffected(result, "payout item "+it.ID.String())
}

// CountBatches counts every batch the organization ever created
func (r *PayoutRepository) CountBatches(ctx context.Context, orgID uuid.UUID) (int, error) {
	var n int
	err := GetExecutor(ctx, r.db).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM payout_batches WHERE org_id = $1`, orgID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count payout batches: %w", err)
	}
	return n, nil
}
