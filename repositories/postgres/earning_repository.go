package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/photoproos/platform/models"
	"github.com/photoproos/platform/repositories"
	"go.uber.org/zap"
)

const earningColumns = `id, org_id, photographer_id, booking_id, description, amount_cents, status,
	payout_batch_id, earned_at, created_at, updated_at`

// EarningRepository implements the repositories.EarningRepository interface
type EarningRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewEarningRepository creates a new earning repository
func NewEarningRepository(db *DB, logger *zap.Logger) repositories.EarningRepository {
	return &EarningRepository{db: db, logger: logger}
}

// uuidArray renders ids as a text[] parameter for = ANY($n::uuid[])
func uuidArray(ids []uuid.UUID) interface{} {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return pq.Array(out)
}

func scanEarning(s rowScanner) (*models.PhotographerEarning, error) {
	e := &models.PhotographerEarning{}
	err := s.Scan(
		&e.ID,
		&e.OrgID,
		&e.PhotographerID,
		&e.BookingID,
		&e.Description,
		&e.AmountCents,
		&e.Status,
		&e.PayoutBatchID,
		&e.EarnedAt,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (r *EarningRepository) queryEarnings(ctx context.Context, query string, args ...interface{}) ([]*models.PhotographerEarning, error) {
	rows, err := GetExecutor(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query earnings: %w", err)
	}
	defer rows.Close()

	earnings := []*models.PhotographerEarning{}
	for rows.Next() {
		e, err := scanEarning(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan earning: %w", err)
		}
		earnings = append(earnings, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating earning rows: %w", err)
	}
	return earnings, nil
}

// Create creates a new earning
func (r *EarningRepository) Create(ctx context.Context, e *models.PhotographerEarning) error {
	query := `
		INSERT INTO photographer_earnings (` + earningColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := GetExecutor(ctx, r.db).ExecContext(ctx, query,
		e.ID, e.OrgID, e.PhotographerID, e.BookingID, e.Description, e.AmountCents, e.Status,
		e.PayoutBatchID, e.EarnedAt, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return wrapError("create earning", err)
	}

	r.logger.Debug("earning created",
		zap.String("id", e.ID.String()),
		zap.String("photographer_id", e.PhotographerID.String()),
		zap.Int64("amount_cents", e.AmountCents))
	return nil
}

// GetByID retrieves an earning scoped to its organization
func (r *EarningRepository) GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.PhotographerEarning, error) {
	query := `SELECT ` + earningColumns + ` FROM photographer_earnings WHERE org_id = $1 AND id = $2`

	e, err := scanEarning(GetExecutor(ctx, r.db).QueryRowContext(ctx, query, orgID, id))
	if err != nil {
		return nil, wrapError("get earning", err)
	}
	return e, nil
}

// GetByIDForUpdate locks the earning row for the current transaction
func (r *EarningRepository) GetByIDForUpdate(ctx context.Context, orgID, id uuid.UUID) (*models.PhotographerEarning, error) {
	query := `SELECT ` + earningColumns + ` FROM photographer_earnings WHERE org_id = $1 AND id = $2 FOR UPDATE`

	e, err := scanEarning(GetExecutor(ctx, r.db).QueryRowContext(ctx, query, orgID, id))
	if err != nil {
		return nil, wrapError("lock earning", err)
	}
	return e, nil
}

// GetByBooking retrieves the earning recorded for a booking
func (r *EarningRepository) GetByBooking(ctx context.Context, orgID, bookingID uuid.UUID) (*models.PhotographerEarning, error) {
	query := `SELECT ` + earningColumns + ` FROM photographer_earnings WHERE org_id = $1 AND booking_id = $2`

	e, err := scanEarning(GetExecutor(ctx, r.db).QueryRowContext(ctx, query, orgID, bookingID))
	if err != nil {
		return nil, wrapError("get earning by booking", err)
	}
	return e, nil
}

// List lists earnings matching the filter, newest first
func (r *EarningRepository) List(ctx context.Context, orgID uuid.UUID, filter models.EarningFilter) ([]*models.PhotographerEarning, error) {
	var (
		where = []string{"org_id = $1"}
		args  = []interface{}{orgID}
	)
	if filter.PhotographerID != nil {
		args = append(args, *filter.PhotographerID)
		where = append(where, fmt.Sprintf("photographer_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	args = append(args, filter.Limit, filter.Offset)

	query := fmt.Sprintf(`SELECT %s FROM photographer_earnings WHERE %s ORDER BY earned_at DESC LIMIT $%d OFFSET $%d`,
		earningColumns, strings.Join(where, " AND "), len(args)-1, len(args))
	return r.queryEarnings(ctx, query, args...)
}

// Update updates an earning
func (r *EarningRepository) Update(ctx context.Context, e *models.PhotographerEarning) error {
	query := `
		UPDATE photographer_earnings
		SET description = $3,
		    amount_cents = $4,
		    status = $5,
		    payout_batch_id = $6,
		    updated_at = $7
		WHERE org_id = $1 AND id = $2
	`

	result, err := GetExecutor(ctx, r.db).ExecContext(ctx, query,
		e.OrgID, e.ID, e.Description, e.AmountCents, e.Status, e.PayoutBatchID, e.UpdatedAt,
	)
	if err != nil {
		return wrapError("update earning", err)
	}
	return requireAffected(result, "earning "+e.ID.String())
}

// Approve moves the given pending earnings to approved
func (r *EarningRepository) Approve(ctx context.Context, orgID uuid.UUID, ids []uuid.UUID) (int64, error) {
	result, err := GetExecutor(ctx, r.db).ExecContext(ctx, `
		UPDATE photographer_earnings
		SET status = 'approved', updated_at = NOW()
		WHERE org_id = $1 AND id = ANY($2::uuid[]) AND status = 'pending'
	`, orgID, uuidArray(ids))
	if err != nil {
		return 0, fmt.Errorf("failed to approve earnings: %w", err)
	}
	return result.RowsAffected()
}

// PendingPayouts groups approved, unbatched earnings by photographer
func (r *EarningRepository) PendingPayouts(ctx context.Context, orgID uuid.UUID) ([]*models.PendingPayout, error) {
	rows, err := GetExecutor(ctx, r.db).QueryContext(ctx, `
		SELECT e.photographer_id, COALESCE(u.name, ''), COALESCE(u.email, ''), COUNT(*), SUM(e.amount_cents)
		FROM photographer_earnings e
		LEFT JOIN users u ON u.id = e.photographer_id
		WHERE e.org_id = $1 AND e.status = 'approved' AND e.payout_batch_id IS NULL
		GROUP BY e.photographer_id, u.name, u.email
		ORDER BY SUM(e.amount_cents) DESC
	`, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to summarise pending payouts: %w", err)
	}
	defer rows.Close()

	pending := []*models.PendingPayout{}
	for rows.Next() {
		p := &models.PendingPayout{}
		if err := rows.Scan(&p.PhotographerID, &p.Name, &p.Email, &p.EarningsCount, &p.TotalCents); err != nil {
			return nil, fmt.Errorf("failed to scan pending payout: %w", err)
		}
		pending = append(pending, p)
	}
	return pending, rows.Err()
}

// LockApprovedUnbatched selects approved, unbatched earnings FOR UPDATE
func (r *EarningRepository) LockApprovedUnbatched(ctx context.Context, orgID uuid.UUID, photographerIDs []uuid.UUID) ([]*models.PhotographerEarning, error) {
	if len(photographerIDs) == 0 {
		query := `
			SELECT ` + earningColumns + `
			FROM photographer_earnings
			WHERE org_id = $1 AND status = 'approved' AND payout_batch_id IS NULL
			ORDER BY photographer_id, earned_at
			FOR UPDATE
		`
		return r.queryEarnings(ctx, query, orgID)
	}

	query := `
		SELECT ` + earningColumns + `
		FROM photographer_earnings
		WHERE org_id = $1 AND status = 'approved' AND payout_batch_id IS NULL
		  AND photographer_id = ANY($2::uuid[])
		ORDER BY photographer_id, earned_at
		FOR UPDATE
	`
	return r.queryEarnings(ctx, query, orgID, uuidArray(photographerIDs))
}

// AttachToBatch sets payout_batch_id on the given earnings
func (r *EarningRepository) AttachToBatch(ctx context.Context, batchID uuid.UUID, ids []uuid.UUID) (int64, error) {
	result, err := GetExecutor(ctx, r.db).ExecContext(ctx, `
		UPDATE photographer_earnings
		SET payout_batch_id = $1, updated_at = NOW()
		WHERE id = ANY($2::uuid[]) AND payout_batch_id IS NULL
	`, batchID, uuidArray(ids))
	if err != nil {
		return 0, fmt.Errorf("failed to attach earnings to batch: %w", err)
	}
	return result.RowsAffected()
}

// DetachFromBatch clears payout_batch_id for every earning of the batch
func (r *EarningRepository) DetachFromBatch(ctx context.Context, batchID uuid.UUID) (int64, error) {
	result, err := GetExecutor(ctx, r.db).ExecContext(ctx, `
		UPDATE photographer_earnings
		SET payout_batch_id = NULL, updated_at = NOW()
		WHERE payout_batch_id = $1
	`, batchID)
	if err != nil {
		return 0, fmt.Errorf("failed to detach earnings from batch: %w", err)
	}
	return result.RowsAffected()
}

// MarkPaid marks the batch earnings of one photographer as paid
func (r *EarningRepository) MarkPaid(ctx context.Context, batchID, photographerID uuid.UUID) (int64, error) {
	result, err := GetExecutor(ctx, r.db).ExecContext(ctx, `
		UPDATE photographer_earnings
		SET status = 'paid', updated_at = NOW()
		WHERE payout_batch_id = $1 AND photographer_id = $2
	`, batchID, photographerID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark earnings paid: %w", err)
	}
	return result.RowsAffected()
}

// OrgsWithApprovedUnbatched lists organizations that have earnings ready for payout
func (r *EarningRepository) OrgsWithApprovedUnbatched(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := GetExecutor(ctx, r.db).QueryContext(ctx, `
		SELECT DISTINCT org_id
		FROM photographer_earnings
		WHERE status = 'approved' AND payout_batch_id IS NULL
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations with pending payouts: %w", err)
	}
	defer rows.Close()

	var orgs []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan organization id: %w", err)
		}
		orgs = append(orgs, id)
	}
	return orgs, rows.Err()
}
