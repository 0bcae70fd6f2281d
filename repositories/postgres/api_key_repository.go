package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/photoproos/platform/models"
	"github.com/photoproos/platform/repositories"
	"go.uber.org/zap"
)

const apiKeyColumns = `id, org_id, name, prefix, key_hash, scopes, created_by, last_used_at, expires_at, revoked_at, created_at`

// APIKeyRepository implements the repositories.APIKeyRepository interface
type APIKeyRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewAPIKeyRepository creates a new API key repository
func NewAPIKeyRepository(db *DB, logger *zap.Logger) repositories.APIKeyRepository {
	return &APIKeyRepository{db: db, logger: logger}
}

func scanAPIKey(s rowScanner) (*models.APIKey, error) {
	k := &models.APIKey{}
	err := s.Scan(
		&k.ID,
		&k.OrgID,
		&k.Name,
		&k.Prefix,
		&k.KeyHash,
		pq.Array(&k.Scopes),
		&k.CreatedBy,
		&k.LastUsedAt,
		&k.ExpiresAt,
		&k.RevokedAt,
		&k.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if k.Scopes == nil {
		k.Scopes = []string{}
	}
	return k, nil
}

// Create creates a new API key
func (r *APIKeyRepository) Create(ctx context.Context, k *models.APIKey) error {
	_, err := GetExecutor(ctx, r.db).ExecContext(ctx, `
		INSERT INTO api_keys (`+apiKeyColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, k.ID, k.OrgID, k.Name, k.Prefix, k.KeyHash, pq.Array(k.Scopes), k.CreatedBy,
		k.LastUsedAt, k.ExpiresAt, k.RevokedAt, k.CreatedAt)
	if err != nil {
		return wrapError("create api key", err)
	}

	r.logger.Debug("api key created", zap.String("id", k.ID.String()), zap.String("prefix", k.Prefix))
	return nil
}

// GetByID retrieves a key scoped to its organization
func (r *APIKeyRepository) GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.APIKey, error) {
	k, err := scanAPIKey(GetExecutor(ctx, r.db).QueryRowContext(ctx,
		`SELECT `+apiKeyColumns+` FROM api_keys WHERE org_id = $1 AND id = $2`, orgID, id))
	if err != nil {
		return nil, wrapError("get api key", err)
	}
	return k, nil
}

// GetByPrefix retrieves a key by its public prefix
func (r *APIKeyRepository) GetByPrefix(ctx context.Context, prefix string) (*models.APIKey, error) {
	k, err := scanAPIKey(GetExecutor(ctx, r.db).QueryRowContext(ctx,
		`SELECT `+apiKeyColumns+` FROM api_keys WHERE prefix = $1`, prefix))
	if err != nil {
		return nil, wrapError("get api key by prefix", err)
	}
	return k, nil
}

// ListByOrg lists the organization's keys, newest first
func (r *APIKeyRepository) ListByOrg(ctx context.Context, orgID uuid.UUID) ([]*models.APIKey, error) {
	rows, err := GetExecutor(ctx, r.db).QueryContext(ctx,
		`SELECT `+apiKeyColumns+` FROM api_keys WHERE org_id = $1 ORDER BY created_at DESC`, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list api keys: %w", err)
	}
	defer rows.Close()

	keys := []*models.APIKey{}
	for rows.Next() {
		k, err := scanAPIKey(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan api key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// Revoke marks a key revoked
func (r *APIKeyRepository) Revoke(ctx context.Context, orgID, id uuid.UUID, at time.Time) error {
	result, err := GetExecutor(ctx, r.db).ExecContext(ctx,
		`UPDATE api_keys SET revoked_at = $3 WHERE org_id = $1 AND id = $2 AND revoked_at IS NULL`, orgID, id, at)
	if err != nil {
		return fmt.Errorf("failed to revoke api key: %w", err)
	}
	return requireAffected(result, "api key "+id.String())
}

// Delete removes a key
func (r *APIKeyRepository) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	result, err := GetExecutor(ctx, r.db).ExecContext(ctx,
		`DELETE FROM api_keys WHERE org_id = $1 AND id = $2`, orgID, id)
	if err != nil {
		return fmt.Errorf("failed to delete api key: %w", err)
	}
	return requireAffected(result, "api key "+id.String())
}

// TouchLastUsed records key usage
func (r *APIKeyRepository) TouchLastUsed(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := GetExecutor(ctx, r.db).ExecContext(ctx, `UPDATE api_keys SET last_used_at = $2 WHERE id = $1`, id, at)
	if err != nil {
		return fmt.Errorf("failed to touch api key: %w", err)
	}
	return nil
}
