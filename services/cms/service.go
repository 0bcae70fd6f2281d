// Package cms manages marketing-site content: FAQs and the public roadmap.
package cms

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/photoproos/platform/models"
	"github.com/photoproos/platform/repositories"
	"github.com/photoproos/platform/services"
	"github.com/photoproos/platform/services/audit"
	"go.uber.org/zap"
)

// FAQInput is the editable part of an FAQ
type FAQInput struct {
	Category    string `json:"category" validate:"required,max=50"`
	Question    string `json:"question" validate:"required,max=500"`
	Answer      string `json:"answer" validate:"required,max=10000"`
	SortOrder   int    `json:"sort_order"`
	IsPublished bool   `json:"is_published"`
}

// PhaseInput is the editable part of a roadmap phase
type PhaseInput struct {
	Title       string               `json:"title" validate:"required,max=200"`
	Description string               `json:"description" validate:"max=5000"`
	Status      models.RoadmapStatus `json:"status" validate:"omitempty,oneof=planned in_progress completed"`
	SortOrder   int                  `json:"sort_order"`
}

// ItemInput is the editable part of a roadmap item
type ItemInput struct {
	PhaseID     uuid.UUID            `json:"phase_id" validate:"required"`
	Title       string               `json:"title" validate:"required,max=200"`
	Description string               `json:"description" validate:"max=5000"`
	Status      models.RoadmapStatus `json:"status" validate:"omitempty,oneof=planned in_progress completed"`
	SortOrder   int                  `json:"sort_order"`
}

// ContentService manages FAQs and roadmap content
type ContentService struct {
	contentRepo repositories.ContentRepository
	audit       audit.Recorder
	logger      *zap.Logger
	now         func() time.Time
}

// NewContentService creates a new ContentService instance
func NewContentService(contentRepo repositories.ContentRepository, recorder audit.Recorder, logger *zap.Logger) *ContentService {
	return &ContentService{
		contentRepo: contentRepo,
		audit:       recorder,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func status(s models.RoadmapStatus) (models.RoadmapStatus, error) {
	if s == "" {
		return models.RoadmapPlanned, nil
	}
	if !s.Valid() {
		return "", services.Validation("unknown roadmap status").WithDetail("status", string(s))
	}
	return s, nil
}

func (s *ContentService) record(ctx context.Context, actor *models.User, resourceType string, id uuid.UUID, change string) {
	s.audit.Record(ctx, audit.Entry{
		OrgID:        actor.OrgID,
		UserID:       actor.ID,
		Action:       models.AuditActionContentChanged,
		ResourceType: resourceType,
		ResourceID:   id,
		Details:      map[string]interface{}{"change": change},
	})
}

// PublishedFAQs lists published FAQs ordered by category and sort order
func (s *ContentService) PublishedFAQs(ctx context.Context) ([]*models.FAQ, error) {
	faqs, err := s.contentRepo.ListFAQs(ctx, true)
	if err != nil {
		return nil, services.WrapInternal("failed to list faqs", err)
	}
	return faqs, nil
}

// ListFAQs lists every FAQ, drafts included
func (s *ContentService) ListFAQs(ctx context.Context) ([]*models.FAQ, error) {
	faqs, err := s.contentRepo.ListFAQs(ctx, false)
	if err != nil {
		return nil, services.WrapInternal("failed to list faqs", err)
	}
	return faqs, nil
}

func applyFAQ(f *models.FAQ, in FAQInput) error {
	f.Category = strings.ToLower(strings.TrimSpace(in.Category))
	f.Question = strings.TrimSpace(in.Question)
	f.Answer = strings.TrimSpace(in.Answer)
	if f.Category == "" || f.Question == "" || f.Answer == "" {
		return services.Validation("category, question and answer are required")
	}
	f.SortOrder = in.SortOrder
	f.IsPublished = in.IsPublished
	return nil
}

// CreateFAQ adds an FAQ
func (s *ContentService) CreateFAQ(ctx context.Context, actor *models.User, in FAQInput) (*models.FAQ, error) {
	now := s.now()
	faq := &models.FAQ{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}
	if err := applyFAQ(faq, in); err != nil {
		return nil, err
	}
	if err := s.contentRepo.CreateFAQ(ctx, faq); err != nil {
		return nil, services.WrapInternal("failed to create faq", err)
	}
	s.record(ctx, actor, "faq", faq.ID, "created")
	return faq, nil
}

// UpdateFAQ edits an FAQ
func (s *ContentService) UpdateFAQ(ctx context.Context, actor *models.User, id uuid.UUID, in FAQInput) (*models.FAQ, error) {
	faq, err := s.contentRepo.GetFAQ(ctx, id)
	if err != nil {
		return nil, services.MapRepoError(err, services.ErrContentNotFound, "failed to load faq")
	}
	if err := applyFAQ(faq, in); err != nil {
		return nil, err
	}
	faq.UpdatedAt = s.now()
	if err := s.contentRepo.UpdateFAQ(ctx, faq); err != nil {
		return nil, services.MapRepoError(err, services.ErrContentNotFound, "failed to update faq")
	}
	s.record(ctx, actor, "faq", faq.ID, "updated")
	return faq, nil
}

// DeleteFAQ removes an FAQ
func (s *ContentService) DeleteFAQ(ctx context.Context, actor *models.User, id uuid.UUID) error {
	if err := s.contentRepo.DeleteFAQ(ctx, id); err != nil {
		return services.MapRepoError(err, services.ErrContentNotFound, "failed to delete faq")
	}
	s.record(ctx, actor, "faq", id, "deleted")
	return nil
}

// Roadmap returns every phase with its items, both in sort order
func (s *ContentService) Roadmap(ctx context.Context) ([]*models.RoadmapPhase, error) {
	phases, err := s.contentRepo.ListPhases(ctx)
	if err != nil {
		return nil, services.WrapInternal("failed to list roadmap phases", err)
	}
	items, err := s.contentRepo.ListItems(ctx)
	if err != nil {
		return nil, services.WrapInternal("failed to list roadmap items", err)
	}

	byPhase := make(map[uuid.UUID]*models.RoadmapPhase, len(phases))
	for _, p := range phases {
		p.Items = []*models.RoadmapItem{}
		byPhase[p.ID] = p
	}
	for _, item := range items {
		if p, ok := byPhase[item.PhaseID]; ok {
			p.Items = append(p.Items, item)
		}
	}
	return phases, nil
}

// CreatePhase adds a roadmap phase
func (s *ContentService) CreatePhase(ctx context.Context, actor *models.User, in PhaseInput) (*models.RoadmapPhase, error) {
	st, err := status(in.Status)
	if err != nil {
		return nil, err
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, services.Validation("title is required")
	}

	now := s.now()
	phase := &models.RoadmapPhase{
		ID:          uuid.New(),
		Title:       title,
		Description: in.Description,
		Status:      st,
		SortOrder:   in.SortOrder,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.contentRepo.CreatePhase(ctx, phase); err != nil {
		return nil, services.WrapInternal("failed to create roadmap phase", err)
	}
	s.record(ctx, actor, "roadmap_phase", phase.ID, "created")
	return phase, nil
}

// UpdatePhase edits a roadmap phase
func (s *ContentService) UpdatePhase(ctx context.Context, actor *models.User, id uuid.UUID, in PhaseInput) (*models.RoadmapPhase, error) {
	st, err := status(in.Status)
	if err != nil {
		return nil, err
	}
	phase, err := s.contentRepo.GetPhase(ctx, id)
	if err != nil {
		return nil, services.MapRepoError(err, services.ErrContentNotFound, "failed to load roadmap phase")
	}
	if title := strings.TrimSpace(in.Title); title != "" {
		phase.Title = title
	}
	phase.Description = in.Description
	phase.Status = st
	phase.SortOrder = in.SortOrder
	phase.UpdatedAt = s.now()

	if err := s.contentRepo.UpdatePhase(ctx, phase); err != nil {
		return nil, services.MapRepoError(err, services.ErrContentNotFound, "failed to update roadmap phase")
	}
	s.record(ctx, actor, "roadmap_phase", phase.ID, "updated")
	return phase, nil
}

// DeletePhase removes a phase and its items
func (s *ContentService) DeletePhase(ctx context.Context, actor *models.User, id uuid.UUID) error {
	if err := s.contentRepo.DeletePhase(ctx, id); err != nil {
		return services.MapRepoError(err, services.ErrContentNotFound, "failed to delete roadmap phase")
	}
	s.record(ctx, actor, "roadmap_phase", id, "deleted")
	return nil
}

// CreateItem adds an item to an existing phase
func (s *ContentService) CreateItem(ctx context.Context, actor *models.User, in ItemInput) (*models.RoadmapItem, error) {
	st, err := status(in.Status)
	if err != nil {
		return nil, err
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, services.Validation("title is required")
	}
	if _, err := s.contentRepo.GetPhase(ctx, in.PhaseID); err != nil {
		return nil, services.MapRepoError(err, services.ErrContentNotFound, "failed to load roadmap phase")
	}

	now := s.now()
	item := &models.RoadmapItem{
		ID:          uuid.New(),
		PhaseID:     in.PhaseID,
		Title:       title,
		Description: in.Description,
		Status:      st,
		SortOrder:   in.SortOrder,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.contentRepo.CreateItem(ctx, item); err != nil {
		return nil, services.WrapInternal("failed to create roadmap item", err)
	}
	s.record(ctx, actor, "roadmap_item", item.ID, "created")
	return item, nil
}

// UpdateItem edits a roadmap item, possibly moving it to another phase
func (s *ContentService) UpdateItem(ctx context.Context, actor *models.User, id uuid.UUID, in ItemInput) (*models.RoadmapItem, error) {
	st, err := status(in.Status)
	if err != nil {
		return nil, err
	}
	item, err := s.contentRepo.GetItem(ctx, id)
	if err != nil {
		return nil, services.MapRepoError(err, services.ErrContentNotFound, "failed to load roadmap item")
	}
	if in.PhaseID != uuid.Nil && in.PhaseID != item.PhaseID {
		if _, err := s.contentRepo.GetPhase(ctx, in.PhaseID); err != nil {
			return nil, services.MapRepoError(err, services.ErrContentNotFound, "failed to load roadmap phase")
		}
		item.PhaseID = in.PhaseID
	}
	if title := strings.TrimSpace(in.Title); title != "" {
		item.Title = title
	}
	item.Description = in.Description
	item.Status = st
	item.SortOrder = in.SortOrder
	item.UpdatedAt = s.now()

	if err := s.contentRepo.UpdateItem(ctx, item); err != nil {
		return nil, services.MapRepoError(err, services.ErrContentNotFound, "failed to update roadmap item")
	}
	s.record(ctx, actor, "roadmap_item", item.ID, "updated")
	return item, nil
}

// DeleteItem removes a roadmap item
func (s *ContentService) DeleteItem(ctx context.Context, actor *models.User, id uuid.UUID) error {
	if err := s.contentRepo.DeleteItem(ctx, id); err != nil {
		return services.MapRepoError(err, services.ErrContentNotFound, "failed to delete roadmap item")
	}
	s.record(ctx, actor, "roadmap_item", id, "deleted")
	return nil
}

// Vote upvotes a roadmap item and returns its new total
func (s *ContentService) Vote(ctx context.Context, id uuid.UUID) (int, error) {
	votes, err := s.contentRepo.VoteItem(ctx, id)
	if err != nil {
		return 0, services.MapRepoError(err, services.ErrContentNotFound, "failed to vote")
	}
	return votes, nil
}
