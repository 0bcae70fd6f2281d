package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/photoproos/platform/models"
	"github.com/photoproos/platform/repositories"
	"go.uber.org/zap"
)

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

const organizationColumns = `id, name, slug, currency, timezone, plan, created_at, updated_at`

// OrganizationRepository implements the repositories.OrganizationRepository interface
type OrganizationRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewOrganizationRepository creates a new organization repository
func NewOrganizationRepository(db *DB, logger *zap.Logger) repositories.OrganizationRepository {
	return &OrganizationRepository{
		db:     db,
		logger: logger,
	}
}

func scanOrganization(s rowScanner, org *models.Organization, extra ...interface{}) error {
	dest := []interface{}{
		&org.ID,
		&org.Name,
		&org.Slug,
		&org.Currency,
		&org.Timezone,
		&org.Plan,
		&org.CreatedAt,
		&org.UpdatedAt,
	}
	return s.Scan(append(dest, extra...)...)
}

// Create creates a new organization
func (r *OrganizationRepository) Create(ctx context.Context, org *models.Organization) error {
	query := `
		INSERT INTO organizations (id, name, slug, currency, timezone, plan, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	executor := GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		org.ID,
		org.Name,
		org.Slug,
		org.Currency,
		org.Timezone,
		org.Plan,
		org.CreatedAt,
		org.UpdatedAt,
	)
	if err != nil {
		return wrapError("create organization", err)
	}

	r.logger.Debug("organization created", zap.String("id", org.ID.String()), zap.String("slug", org.Slug))
	return nil
}

// GetByID retrieves an organization by ID
func (r *OrganizationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	query := `SELECT ` + organizationColumns + ` FROM organizations WHERE id = $1`

	org := &models.Organization{}
	if err := scanOrganization(GetExecutor(ctx, r.db).QueryRowContext(ctx, query, id), org); err != nil {
		return nil, wrapError("get organization", err)
	}
	return org, nil
}

// GetBySlug retrieves an organization by slug
func (r *OrganizationRepository) GetBySlug(ctx context.Context, slug string) (*models.Organization, error) {
	query := `SELECT ` + organizationColumns + ` FROM organizations WHERE slug = $1`

	org := &models.Organization{}
	if err := scanOrganization(GetExecutor(ctx, r.db).QueryRowContext(ctx, query, slug), org); err != nil {
		return nil, wrapError("get organization by slug", err)
	}
	return org, nil
}

// List retrieves organizations with member, client and revenue counts
func (r *OrganizationRepository) List(ctx context.Context, limit, offset int) ([]*models.OrganizationSummary, error) {
	query := `
		SELECT o.id, o.name, o.slug, o.currency, o.timezone, o.plan, o.created_at, o.updated_at,
		       (SELECT COUNT(*) FROM users u WHERE u.org_id = o.id),
		       (SELECT COUNT(*) FROM clients c WHERE c.org_id = o.id),
		       (SELECT COALESCE(SUM(p.amount_cents), 0) FROM payments p
		         WHERE p.org_id = o.id AND p.status = 'succeeded')
		FROM organizations o
		ORDER BY o.created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := GetExecutor(ctx, r.db).QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}
	defer rows.Close()

	var orgs []*models.OrganizationSummary
	for rows.Next() {
		s := &models.OrganizationSummary{}
		if err := scanOrganization(rows, &s.Organization, &s.MemberCount, &s.ClientCount, &s.RevenueCents); err != nil {
			return nil, fmt.Errorf("failed to scan organization: %w", err)
		}
		orgs = append(orgs, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating organization rows: %w", err)
	}

	return orgs, nil
}

// Update updates an organization
func (r *OrganizationRepository) Update(ctx context.Context, org *models.Organization) error {
	query := `
		UPDATE organizations
		SET name = $2,
		    slug = $3,
		    currency = $4,
		    timezone = $5,
		    plan = $6,
		    updated_at = $7
		WHERE id = $1
	`

	result, err := GetExecutor(ctx, r.db).ExecContext(ctx, query,
		org.ID,
		org.Name,
		org.Slug,
		org.Currency,
		org.Timezone,
		org.Plan,
		org.UpdatedAt,
	)
	if err != nil {
		return wrapError("update organization", err)
	}

	if err := requireAffected(result, "organization "+org.ID.String()); err != nil {
		return err
	}

	r.logger.Debug("organization updated", zap.String("id", org.ID.String()))
	return nil
}

// Delete deletes an organization
func (r *OrganizationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := GetExecutor(ctx, r.db).ExecContext(ctx, `DELETE FROM organizations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete organization: %w", err)
	}

	if err := requireAffected(result, "organization "+id.String()); err != nil {
		return err
	}

	r.logger.Debug("organization deleted", zap.String("id", id.String()))
	return nil
}
