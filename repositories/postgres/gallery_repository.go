package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/photoproos/platform/models"
	"github.com/photoproos/platform/repositories"
	"go.uber.org/zap"
)

const galleryColumns = `id, org_id, client_id, name, description, status, price_cents, photo_count,
	delivered_at, expires_at, created_at, updated_at`

// GalleryRepository implements the repositories.GalleryRepository interface
type GalleryRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewGalleryRepository creates a new gallery repository
func NewGalleryRepository(db *DB, logger *zap.Logger) repositories.GalleryRepository {
	return &GalleryRepository{db: db, logger: logger}
}

func scanGallery(s rowScanner) (*models.Gallery, error) {
	g := &models.Gallery{}
	err := s.Scan(
		&g.ID,
		&g.OrgID,
		&g.ClientID,
		&g.Name,
		&g.Description,
		&g.Status,
		&g.PriceCents,
		&g.PhotoCount,
		&g.DeliveredAt,
		&g.ExpiresAt,
		&g.CreatedAt,
		&g.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return g, nil
}

// Create creates a new gallery
func (r *GalleryRepository) Create(ctx context.Context, g *models.Gallery) error {
	query := `
		INSERT INTO galleries (` + galleryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := GetExecutor(ctx, r.db).ExecContext(ctx, query,
		g.ID, g.OrgID, g.ClientID, g.Name, g.Description, g.Status, g.PriceCents, g.PhotoCount,
		g.DeliveredAt, g.ExpiresAt, g.CreatedAt, g.UpdatedAt,
	)
	if err != nil {
		return wrapError("create gallery", err)
	}

	r.logger.Debug("gallery created", zap.String("id", g.ID.String()))
	return nil
}

// GetByID retrieves a gallery scoped to its organization
func (r *GalleryRepository) GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.Gallery, error) {
	query := `SELECT ` + galleryColumns + ` FROM galleries WHERE org_id = $1 AND id = $2`

	g, err := scanGallery(GetExecutor(ctx, r.db).QueryRowContext(ctx, query, orgID, id))
	if err != nil {
		return nil, wrapError("get gallery", err)
	}
	return g, nil
}

// List lists galleries, optionally for one client
func (r *GalleryRepository) List(ctx context.Context, orgID uuid.UUID, clientID *uuid.UUID, limit, offset int) ([]*models.Gallery, error) {
	query := `
		SELECT ` + galleryColumns + `
		FROM galleries
		WHERE org_id = $1 AND ($2::uuid IS NULL OR client_id = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`

	rows, err := GetExecutor(ctx, r.db).QueryContext(ctx, query, orgID, clientID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list galleries: %w", err)
	}
	defer rows.Close()

	galleries := []*models.Gallery{}
	for rows.Next() {
		g, err := scanGallery(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan gallery: %w", err)
		}
		galleries = append(galleries, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating gallery rows: %w", err)
	}
	return galleries, nil
}

// Update updates a gallery
func (r *GalleryRepository) Update(ctx context.Context, g *models.Gallery) error {
	query := `
		UPDATE galleries
		SET client_id = $3,
		    name = $4,
		    description = $5,
		    status = $6,
		    price_cents = $7,
		    photo_count = $8,
		    delivered_at = $9,
		    expires_at = $10,
		    updated_at = $11
		WHERE org_id = $1 AND id = $2
	`

	result, err := GetExecutor(ctx, r.db).ExecContext(ctx, query,
		g.OrgID, g.ID, g.ClientID, g.Name, g.Description, g.Status, g.PriceCents, g.PhotoCount,
		g.DeliveredAt, g.ExpiresAt, g.UpdatedAt,
	)
	if err != nil {
		return wrapError("update gallery", err)
	}
	return requireAffected(result, "gallery "+g.ID.String())
}

// Delete deletes a gallery
func (r *GalleryRepository) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	result, err := GetExecutor(ctx, r.db).ExecContext(ctx,
		`DELETE FROM galleries WHERE org_id = $1 AND id = $2`, orgID, id)
	if err != nil {
		return fmt.Errorf("failed to delete gallery: %w", err)
	}
	return requireAffected(result, "gallery "+id.String())
}

// CountDelivered counts galleries delivered in [start, end)
func (r *GalleryRepository) CountDelivered(ctx context.Context, orgID uuid.UUID, start, end time.Time) (int, error) {
	var n int
	err := GetExecutor(ctx, r.db).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM galleries WHERE org_id = $1 AND delivered_at >= $2 AND delivered_at < $3`,
		orgID, start, end).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count delivered galleries: %w", err)
	}
	return n, nil
}
