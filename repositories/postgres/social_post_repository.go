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

const socialPostColumns = `id, org_id, platform, content, media_urls, status, scheduled_for, published_at,
	external_id, error, created_at, updated_at`

// SocialPostRepository implements the repositories.SocialPostRepository interface
type SocialPostRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewSocialPostRepository creates a new social post repository
func NewSocialPostRepository(db *DB, logger *zap.Logger) repositories.SocialPostRepository {
	return &SocialPostRepository{db: db, logger: logger}
}

func scanSocialPost(s rowScanner) (*models.SocialPost, error) {
	p := &models.SocialPost{}
	err := s.Scan(
		&p.ID,
		&p.OrgID,
		&p.Platform,
		&p.Content,
		pq.Array(&p.MediaURLs),
		&p.Status,
		&p.ScheduledFor,
		&p.PublishedAt,
		&p.ExternalID,
		&p.Error,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if p.MediaURLs == nil {
		p.MediaURLs = []string{}
	}
	return p, nil
}

// Create creates a social post
func (r *SocialPostRepository) Create(ctx context.Context, p *models.SocialPost) error {
	_, err := GetExecutor(ctx, r.db).ExecContext(ctx, `
		INSERT INTO social_posts (`+socialPostColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, p.ID, p.OrgID, p.Platform, p.Content, pq.Array(p.MediaURLs), p.Status, p.ScheduledFor,
		p.PublishedAt, p.ExternalID, p.Error, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return wrapError("create social post", err)
	}
	return nil
}

// GetByID retrieves a post scoped to its organization
func (r *SocialPostRepository) GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.SocialPost, error) {
	p, err := scanSocialPost(GetExecutor(ctx, r.db).QueryRowContext(ctx,
		`SELECT `+socialPostColumns+` FROM social_posts WHERE org_id = $1 AND id = $2`, orgID, id))
	if err != nil {
		return nil, wrapError("get social post", err)
	}
	return p, nil
}

// List lists posts, optionally filtered by status
func (r *SocialPostRepository) List(ctx context.Context, orgID uuid.UUID, status models.SocialPostStatus, limit, offset int) ([]*models.SocialPost, error) {
	query := `
		SELECT ` + socialPostColumns + `
		FROM social_posts
		WHERE org_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY COALESCE(scheduled_for, created_at) DESC
		LIMIT $3 OFFSET $4
	`
	return r.queryPosts(ctx, query, orgID, string(status), limit, offset)
}

// Update updates a post
func (r *SocialPostRepository) Update(ctx context.Context, p *models.SocialPost) error {
	result, err := GetExecutor(ctx, r.db).ExecContext(ctx, `
		UPDATE social_posts
		SET platform = $3, content = $4, media_urls = $5, status = $6, scheduled_for = $7,
		    published_at = $8, external_id = $9, error = $10, updated_at = $11
		WHERE org_id = $1 AND id = $2
	`, p.OrgID, p.ID, p.Platform, p.Content, pq.Array(p.MediaURLs), p.Status, p.ScheduledFor,
		p.PublishedAt, p.ExternalID, p.Error, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update social post: %w", err)
	}
	return requireAffected(result, "social post "+p.ID.String())
}

// Delete deletes a post
func (r *SocialPostRepository) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	result, err := GetExecutor(ctx, r.db).ExecContext(ctx,
		`DELETE FROM social_posts WHERE org_id = $1 AND id = $2`, orgID, id)
	if err != nil {
		return fmt.Errorf("failed to delete social post: %w", err)
	}
	return requireAffected(result, "social post "+id.String())
}

// ClaimDue marks scheduled posts due at or before now as publishing, across
// all organizations, and returns them
func (r *SocialPostRepository) ClaimDue(ctx context.Context, now time.Time, limit int) ([]*models.SocialPost, error) {
	query := `
		UPDATE social_posts
		SET status = 'publishing', updated_at = $1
		WHERE id IN (
			SELECT id
			FROM social_posts
			WHERE status = 'scheduled' AND scheduled_for <= $1
			ORDER BY scheduled_for ASC
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		)
		RETURNING ` + socialPostColumns
	return r.queryPosts(ctx, query, now, limit)
}

func (r *SocialPostRepository) queryPosts(ctx context.Context, query string, args ...interface{}) ([]*models.SocialPost, error) {
	rows, err := GetExecutor(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query social posts: %w", err)
	}
	defer rows.Close()

	posts := []*models.SocialPost{}
	for rows.Next() {
		p, err := scanSocialPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan social post: %w", err)
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}
