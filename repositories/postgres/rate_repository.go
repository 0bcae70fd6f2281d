package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/photoproos/platform/models"
	"github.com/photoproos/platform/repositories"
	"go.uber.org/zap"
)

const rateColumns = `id, org_id, photographer_id, service_type, rate_type, rate_value,
	min_payout_cents, max_payout_cents, is_active, created_at, updated_at`

// RateRepository implements the repositories.RateRepository interface
type RateRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewRateRepository creates a new photographer rate repository
func NewRateRepository(db *DB, logger *zap.Logger) repositories.RateRepository {
	return &RateRepository{db: db, logger: logger}
}

func scanRate(s rowScanner) (*models.PhotographerRate, error) {
	rate := &models.PhotographerRate{}
	err := s.Scan(
		&rate.ID,
		&rate.OrgID,
		&rate.PhotographerID,
		&rate.ServiceType,
		&rate.RateType,
		&rate.RateValue,
		&rate.MinPayoutCents,
		&rate.MaxPayoutCents,
		&rate.IsActive,
		&rate.CreatedAt,
		&rate.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return rate, nil
}

// Create creates a new rate
func (r *RateRepository) Create(ctx context.Context, rate *models.PhotographerRate) error {
	query := `
		INSERT INTO photographer_rates (` + rateColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := GetExecutor(ctx, r.db).ExecContext(ctx, query,
		rate.ID, rate.OrgID, rate.PhotographerID, rate.ServiceType, rate.RateType, rate.RateValue,
		rate.MinPayoutCents, rate.MaxPayoutCents, rate.IsActive, rate.CreatedAt, rate.UpdatedAt,
	)
	if err != nil {
		return wrapError("create photographer rate", err)
	}

	r.logger.Debug("photographer rate created",
		zap.String("id", rate.ID.String()),
		zap.String("photographer_id", rate.PhotographerID.String()))
	return nil
}

// GetByID retrieves a rate scoped to its organization
func (r *RateRepository) GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.PhotographerRate, error) {
	query := `SELECT ` + rateColumns + ` FROM photographer_rates WHERE org_id = $1 AND id = $2`

	rate, err := scanRate(GetExecutor(ctx, r.db).QueryRowContext(ctx, query, orgID, id))
	if err != nil {
		return nil, wrapError("get photographer rate", err)
	}
	return rate, nil
}

// ListByPhotographer returns every rate of the photographer, active or not
func (r *RateRepository) ListByPhotographer(ctx context.Context, orgID, photographerID uuid.UUID) ([]*models.PhotographerRate, error) {
	query := `
		SELECT ` + rateColumns + `
		FROM photographer_rates
		WHERE org_id = $1 AND photographer_id = $2
		ORDER BY created_at ASC
	`

	rows, err := GetExecutor(ctx, r.db).QueryContext(ctx, query, orgID, photographerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list photographer rates: %w", err)
	}
	defer rows.Close()

	rates := []*models.PhotographerRate{}
	for rows.Next() {
		rate, err := scanRate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan photographer rate: %w", err)
		}
		rates = append(rates, rate)
	}
	return rates, rows.Err()
}

// Update updates a rate
func (r *RateRepository) Update(ctx context.Context, rate *models.PhotographerRate) error {
	query := `
		UPDATE photographer_rates
		SET service_type = $3,
		    rate_type = $4,
		    rate_value = $5,
		    min_payout_cents = $6,
		    max_payout_cents = $7,
		    is_active = $8,
		    updated_at = $9
		WHERE org_id = $1 AND id = $2
	`

	result, err := GetExecutor(ctx, r.db).ExecContext(ctx, query,
		rate.OrgID, rate.ID, rate.ServiceType, rate.RateType, rate.RateValue,
		rate.MinPayoutCents, rate.MaxPayoutCents, rate.IsActive, rate.UpdatedAt,
	)
	if err != nil {
		return wrapError("update photographer rate", err)
	}
	return requireAffected(result, "photographer rate "+rate.ID.String())
}

// Delete deletes a rate
func (r *RateRepository) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	result, err := GetExecutor(ctx, r.db).ExecContext(ctx,
		`DELETE FROM photographer_rates WHERE org_id = $1 AND id = $2`, orgID, id)
	if err != nil {
		return fmt.Errorf("failed to delete photographer rate: %w", err)
	}
	return requireAffected(result, "photographer rate "+id.String())
}
