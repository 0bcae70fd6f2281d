package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/photoproos/platform/models"
	"github.com/photoproos/platform/repositories"
	"go.uber.org/zap"
)

// ContentRepository implements the repositories.ContentRepository interface
type ContentRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewContentRepository creates a new FAQ and roadmap repository
func NewContentRepository(db *DB, logger *zap.Logger) repositories.ContentRepository {
	return &ContentRepository{db: db, logger: logger}
}

const faqColumns = `id, category, question, answer, sort_order, is_published, created_at, updated_at`

func scanFAQ(s rowScanner) (*models.FAQ, error) {
	f := &models.FAQ{}
	if err := s.Scan(&f.ID, &f.Category, &f.Question, &f.Answer, &f.SortOrder, &f.IsPublished, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return nil, err
	}
	return f, nil
}

// CreateFAQ creates a FAQ entry
func (r *ContentRepository) CreateFAQ(ctx context.Context, f *models.FAQ) error {
	_, err := GetExecutor(ctx, r.db).ExecContext(ctx, `
		INSERT INTO faqs (`+faqColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, f.ID, f.Category, f.Question, f.Answer, f.SortOrder, f.IsPublished, f.CreatedAt, f.UpdatedAt)
	if err != nil {
		return wrapError("create faq", err)
	}
	return nil
}

// GetFAQ retrieves a FAQ entry
func (r *ContentRepository) GetFAQ(ctx context.Context, id uuid.UUID) (*models.FAQ, error) {
	f, err := scanFAQ(GetExecutor(ctx, r.db).QueryRowContext(ctx, `SELECT `+faqColumns+` FROM faqs WHERE id = $1`, id))
	if err != nil {
		return nil, wrapError("get faq", err)
	}
	return f, nil
}

// ListFAQs lists FAQs ordered by category and sort order
func (r *ContentRepository) ListFAQs(ctx context.Context, publishedOnly bool) ([]*models.FAQ, error) {
	rows, err := GetExecutor(ctx, r.db).QueryContext(ctx, `
		SELECT `+faqColumns+`
		FROM faqs
		WHERE (NOT $1 OR is_published)
		ORDER BY category ASC, sort_order ASC, created_at ASC
	`, publishedOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list faqs: %w", err)
	}
	defer rows.Close()

	faqs := []*models.FAQ{}
	for rows.Next() {
		f, err := scanFAQ(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan faq: %w", err)
		}
		faqs = append(faqs, f)
	}
	return faqs, rows.Err()
}

// UpdateFAQ updates a FAQ entry
func (r *ContentRepository) UpdateFAQ(ctx context.Context, f *models.FAQ) error {
	result, err := GetExecutor(ctx, r.db).ExecContext(ctx, `
		UPDATE faqs
		SET category = $2, question = $3, answer = $4, sort_order = $5, is_published = $6, updated_at = $7
		WHERE id = $1
	`, f.ID, f.Category, f.Question, f.Answer, f.SortOrder, f.IsPublished, f.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update faq: %w", err)
	}
	return requireAffected(result, "faq "+f.ID.String())
}

// DeleteFAQ deletes a FAQ entry
func (r *ContentRepository) DeleteFAQ(ctx context.Context, id uuid.UUID) error {
	return r.deleteByID(ctx, "faqs", "faq", id)
}

const phaseColumns = `id, title, description, status, sort_order, created_at, updated_at`

func scanPhase(s rowScanner) (*models.RoadmapPhase, error) {
	p := &models.RoadmapPhase{}
	if err := s.Scan(&p.ID, &p.Title, &p.Description, &p.Status, &p.SortOrder, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return p, nil
}

// CreatePhase creates a roadmap phase
func (r *ContentRepository) CreatePhase(ctx context.Context, p *models.RoadmapPhase) error {
	_, err := GetExecutor(ctx, r.db).ExecContext(ctx, `
		INSERT INTO roadmap_phases (`+phaseColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, p.ID, p.Title, p.Description, p.Status, p.SortOrder, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return wrapError("create roadmap phase", err)
	}
	return nil
}

// GetPhase retrieves a roadmap phase without items
func (r *ContentRepository) GetPhase(ctx context.Context, id uuid.UUID) (*models.RoadmapPhase, error) {
	p, err := scanPhase(GetExecutor(ctx, r.db).QueryRowContext(ctx,
		`SELECT `+phaseColumns+` FROM roadmap_phases WHERE id = $1`, id))
	if err != nil {
		return nil, wrapError("get roadmap phase", err)
	}
	return p, nil
}

// ListPhases lists phases by sort order
func (r *ContentRepository) ListPhases(ctx context.Context) ([]*models.RoadmapPhase, error) {
	rows, err := GetExecutor(ctx, r.db).QueryContext(ctx,
		`SELECT `+phaseColumns+` FROM roadmap_phases ORDER BY sort_order ASC, created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list roadmap phases: %w", err)
	}
	defer rows.Close()

	phases := []*models.RoadmapPhase{}
	for rows.Next() {
		p, err := scanPhase(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan roadmap phase: %w", err)
		}
		phases = append(phases, p)
	}
	return phases, rows.Err()
}

// UpdatePhase updates a roadmap phase
func (r *ContentRepository) UpdatePhase(ctx context.Context, p *models.RoadmapPhase) error {
	result, err := GetExecutor(ctx, r.db).ExecContext(ctx, `
		UPDATE roadmap_phases
		SET title = $2, description = $3, status = $4, sort_order = $5, updated_at = $6
		WHERE id = $1
	`, p.ID, p.Title, p.Description, p.Status, p.SortOrder, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update roadmap phase: %w", err)
	}
	return requireAffected(result, "roadmap phase "+p.ID.String())
}

// DeletePhase deletes a phase and its items
func (r *ContentRepository) DeletePhase(ctx context.Context, id uuid.UUID) error {
	return r.deleteByID(ctx, "roadmap_phases", "roadmap phase", id)
}

const roadmapItemColumns = `id, phase_id, title, description, status, sort_order, votes, created_at, updated_at`

func scanRoadmapItem(s rowScanner) (*models.RoadmapItem, error) {
	it := &models.RoadmapItem{}
	err := s.Scan(&it.ID, &it.PhaseID, &it.Title, &it.Description, &it.Status, &it.SortOrder, &it.Votes, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return it, nil
}

// CreateItem creates a roadmap item
func (r *ContentRepository) CreateItem(ctx context.Context, it *models.RoadmapItem) error {
	_, err := GetExecutor(ctx, r.db).ExecContext(ctx, `
		INSERT INTO roadmap_items (`+roadmapItemColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, it.ID, it.PhaseID, it.Title, it.Description, it.Status, it.SortOrder, it.Votes, it.CreatedAt, it.UpdatedAt)
	if err != nil {
		return wrapError("create roadmap item", err)
	}
	return nil
}

// GetItem retrieves a roadmap item
func (r *ContentRepository) GetItem(ctx context.Context, id uuid.UUID) (*models.RoadmapItem, error) {
	it, err := scanRoadmapItem(GetExecutor(ctx, r.db).QueryRowContext(ctx,
		`SELECT `+roadmapItemColumns+` FROM roadmap_items WHERE id = $1`, id))
	if err != nil {
		return nil, wrapError("get roadmap item", err)
	}
	return it, nil
}

// ListItems lists every roadmap item by phase and sort order
func (r *ContentRepository) ListItems(ctx context.Context) ([]*models.RoadmapItem, error) {
	rows, err := GetExecutor(ctx, r.db).QueryContext(ctx,
		`SELECT `+roadmapItemColumns+` FROM roadmap_items ORDER BY phase_id, sort_order ASC, created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list roadmap items: %w", err)
	}
	defer rows.Close()

	items := []*models.RoadmapItem{}
	for rows.Next() {
		it, err := scanRoadmapItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan roadmap item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// UpdateItem updates a roadmap item
func (r *ContentRepository) UpdateItem(ctx context.Context, it *models.RoadmapItem) error {
	result, err := GetExecutor(ctx, r.db).ExecContext(ctx, `
		UPDATE roadmap_items
		SET phase_id = $2, title = $3, description = $4, status = $5, sort_order = $6, updated_at = $7
		WHERE id = $1
	`, it.ID, it.PhaseID, it.Title, it.Description, it.Status, it.SortOrder, it.UpdatedAt)
	if err != nil {
		return wrapError("update roadmap item", err)
	}
	return requireAffected(result, "roadmap item "+it.ID.String())
}

// DeleteItem deletes a roadmap item
func (r *ContentRepository) DeleteItem(ctx context.Context, id uuid.UUID) error {
	return r.deleteByID(ctx, "roadmap_items", "roadmap item", id)
}

// VoteItem increments the vote count and returns the new total
func (r *ContentRepository) VoteItem(ctx context.Context, id uuid.UUID) (int, error) {
	var votes int
	err := GetExecutor(ctx, r.db).QueryRowContext(ctx,
		`UPDATE roadmap_items SET votes = votes + 1 WHERE id = $1 RETURNING votes`, id).Scan(&votes)
	if err != nil {
		return 0, wrapError("vote roadmap item", err)
	}
	return votes, nil
}

// deleteByID removes one row; table is always a package constant
func (r *ContentRepository) deleteByID(ctx context.Context, table, what string, id uuid.UUID) error {
	result, err := GetExecutor(ctx, r.db).ExecContext(ctx, `DELETE FROM `+table+` WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", what, err)
	}
	return requireAffected(result, what+" "+id.String())
}
