package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/photoproos/platform/models"
	"github.com/photoproos/platform/repositories"
	"go.uber.org/zap"
)

const featureFlagColumns = `id, key, description, enabled, rollout_percent, org_allowlist, created_at, updated_at`

// FeatureFlagRepository implements the repositories.FeatureFlagRepository interface
type FeatureFlagRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewFeatureFlagRepository creates a new feature flag repository
func NewFeatureFlagRepository(db *DB, logger *zap.Logger) repositories.FeatureFlagRepository {
	return &FeatureFlagRepository{db: db, logger: logger}
}

func scanFeatureFlag(s rowScanner) (*models.FeatureFlag, error) {
	f := &models.FeatureFlag{}
	var allowlist []string
	err := s.Scan(&f.ID, &f.Key, &f.Description, &f.Enabled, &f.RolloutPercent, pq.Array(&allowlist), &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, err
	}
	f.OrgAllowlist = make([]uuid.UUID, 0, len(allowlist))
	for _, raw := range allowlist {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid allowlisted organization %q: %w", raw, err)
		}
		f.OrgAllowlist = append(f.OrgAllowlist, id)
	}
	return f, nil
}

// Create creates a feature flag
func (r *FeatureFlagRepository) Create(ctx context.Context, f *models.FeatureFlag) error {
	_, err := GetExecutor(ctx, r.db).ExecContext(ctx, `
		INSERT INTO feature_flags (`+featureFlagColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, f.ID, f.Key, f.Description, f.Enabled, f.RolloutPercent, uuidArray(f.OrgAllowlist), f.CreatedAt, f.UpdatedAt)
	if err != nil {
		return wrapError("create feature flag", err)
	}

	r.logger.Debug("feature flag created", zap.String("key", f.Key))
	return nil
}

// GetByKey retrieves a flag by key
func (r *FeatureFlagRepository) GetByKey(ctx context.Context, key string) (*models.FeatureFlag, error) {
	f, err := scanFeatureFlag(GetExecutor(ctx, r.db).QueryRowContext(ctx,
		`SELECT `+featureFlagColumns+` FROM feature_flags WHERE key = $1`, key))
	if err != nil {
		return nil, wrapError("get feature flag", err)
	}
	return f, nil
}

// List lists every flag ordered by key
func (r *FeatureFlagRepository) List(ctx context.Context) ([]*models.FeatureFlag, error) {
	rows, err := GetExecutor(ctx, r.db).QueryContext(ctx,
		`SELECT `+featureFlagColumns+` FROM feature_flags ORDER BY key ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list feature flags: %w", err)
	}
	defer rows.Close()

	flags := []*models.FeatureFlag{}
	for rows.Next() {
		f, err := scanFeatureFlag(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan feature flag: %w", err)
		}
		flags = append(flags, f)
	}
	return flags, rows.Err()
}

// Update updates a flag identified by key
func (r *FeatureFlagRepository) Update(ctx context.Context, f *models.FeatureFlag) error {
	result, err := GetExecutor(ctx, r.db).ExecContext(ctx, `
		UPDATE feature_flags
		SET description = $2, enabled = $3, rollout_percent = $4, org_allowlist = $5, updated_at = $6
		WHERE key = $1
	`, f.Key, f.Description, f.Enabled, f.RolloutPercent, uuidArray(f.OrgAllowlist), f.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update feature flag: %w", err)
	}
	return requireAffected(result, "feature flag "+f.Key)
}

// Delete deletes a flag
func (r *FeatureFlagRepository) Delete(ctx context.Context, key string) error {
	result, err := GetExecutor(ctx, r.db).ExecContext(ctx, `DELETE FROM feature_flags WHERE key = $1`, key)
	if err != nil {
		return fmt.Errorf("failed to delete feature flag: %w", err)
	}
	return requireAffected(result, "feature flag "+key)
}
