// Package galleries manages client photo galleries and their delivery.
package galleries

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

// Dispatcher offers business events to workflows
type Dispatcher interface {
	Dispatch(ctx context.Context, event models.WorkflowEvent)
}

// GalleryInput is the editable part of a gallery
type GalleryInput struct {
	Name        string     `json:"name" validate:"required,max=200"`
	Description string     `json:"description" validate:"max=5000"`
	ClientID    *uuid.UUID `json:"client_id"`
	PriceCents  int64      `json:"price_cents" validate:"gte=0"`
	PhotoCount  int        `json:"photo_count" validate:"gte=0"`
	ExpiresAt   *time.Time `json:"expires_at"`
}

// GalleryService manages galleries
type GalleryService struct {
	galleryRepo repositories.GalleryRepository
	clientRepo  repositories.ClientRepository
	dispatcher  Dispatcher
	audit       audit.Recorder
	logger      *zap.Logger
	now         func() time.Time
}

// NewGalleryService creates a new GalleryService instance
func NewGalleryService(
	galleryRepo repositories.GalleryRepository,
	clientRepo repositories.ClientRepository,
	dispatcher Dispatcher,
	recorder audit.Recorder,
	logger *zap.Logger,
) *GalleryService {
	return &GalleryService{
		galleryRepo: galleryRepo,
		clientRepo:  clientRepo,
		dispatcher:  dispatcher,
		audit:       recorder,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *GalleryService) apply(ctx context.Context, g *models.Gallery, in GalleryInput) error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return services.Validation("name is required")
	}
	if in.PriceCents < 0 || in.PhotoCount < 0 {
		return services.Validation("price and photo count cannot be negative")
	}
	if in.ClientID != nil {
		if _, err := s.clientRepo.GetByID(ctx, g.OrgID, *in.ClientID); err != nil {
			return services.MapRepoError(err, services.ErrClientNotFound, "failed to load client")
		}
	}

	g.Name = name
	g.Description = in.Description
	g.ClientID = in.ClientID
	g.PriceCents = in.PriceCents
	g.PhotoCount = in.PhotoCount
	g.ExpiresAt = in.ExpiresAt
	return nil
}

// Create adds a draft gallery
func (s *GalleryService) Create(ctx context.Context, orgID, actorID uuid.UUID, in GalleryInput) (*models.Gallery, error) {
	gallery := models.NewGallery(orgID, "")
	if err := s.apply(ctx, gallery, in); err != nil {
		return nil, err
	}

	if err := s.galleryRepo.Create(ctx, gallery); err != nil {
		return nil, services.WrapInternal("failed to create gallery", err)
	}

	s.record(ctx, actorID, gallery, models.AuditActionGalleryCreated)
	return gallery, nil
}

// Get returns one gallery
func (s *GalleryService) Get(ctx context.Context, orgID, id uuid.UUID) (*models.Gallery, error) {
	gallery, err := s.galleryRepo.GetByID(ctx, orgID, id)
	if err != nil {
		return nil, services.MapRepoError(err, services.ErrGalleryNotFound, "failed to load gallery")
	}
	return gallery, nil
}

// List returns galleries, optionally of one client
func (s *GalleryService) List(ctx context.Context, orgID uuid.UUID, clientID *uuid.UUID, limit, offset int) ([]*models.Gallery, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	list, err := s.galleryRepo.List(ctx, orgID, clientID, limit, offset)
	if err != nil {
		return nil, services.WrapInternal("failed to list galleries", err)
	}
	return list, nil
}

// Update edits a gallery that is not archived
func (s *GalleryService) Update(ctx context.Context, orgID, actorID, id uuid.UUID, in GalleryInput) (*models.Gallery, error) {
	gallery, err := s.Get(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if gallery.Status == models.GalleryStatusArchived {
		return nil, services.ErrInvalidTransition
	}
	if err := s.apply(ctx, gallery, in); err != nil {
		return nil, err
	}
	gallery.UpdatedAt = s.now()

	if err := s.galleryRepo.Update(ctx, gallery); err != nil {
		return nil, services.MapRepoError(err, services.ErrGalleryNotFound, "failed to update gallery")
	}
	return gallery, nil
}

// Deliver marks a draft gallery delivered and emits gallery_delivered
func (s *GalleryService) Deliver(ctx context.Context, orgID, actorID, id uuid.UUID) (*models.Gallery, error) {
	gallery, err := s.Get(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if gallery.Status != models.GalleryStatusDraft {
		return nil, services.Wrap(services.ErrInvalidTransition, nil).
			WithDetail("from", string(gallery.Status)).
			WithDetail("to", string(models.GalleryStatusDelivered))
	}

	gallery.MarkDelivered(s.now())
	if err := s.galleryRepo.Update(ctx, gallery); err != nil {
		return nil, services.MapRepoError(err, services.ErrGalleryNotFound, "failed to deliver gallery")
	}

	s.record(ctx, actorID, gallery, models.AuditActionGalleryDelivered)

	payload := map[string]interface{}{
		"gallery_id":   gallery.ID.String(),
		"gallery_name": gallery.Name,
		"photo_count":  gallery.PhotoCount,
	}
	if gallery.ClientID != nil {
		payload["client_id"] = gallery.ClientID.String()
	}
	s.dispatcher.Dispatch(ctx, models.NewWorkflowEvent(orgID, models.TriggerGalleryDelivered, gallery.ClientID, payload))
	return gallery, nil
}

// Archive hides a gallery from the client
func (s *GalleryService) Archive(ctx context.Context, orgID, actorID, id uuid.UUID) (*models.Gallery, error) {
	gallery, err := s.Get(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if gallery.Status == models.GalleryStatusArchived {
		return gallery, nil
	}

	gallery.Status = models.GalleryStatusArchived
	gallery.UpdatedAt = s.now()
	if err := s.galleryRepo.Update(ctx, gallery); err != nil {
		return nil, services.MapRepoError(err, services.ErrGalleryNotFound, "failed to archive gallery")
	}

	s.record(ctx, actorID, gallery, models.AuditActionGalleryArchived)
	return gallery, nil
}

// Delete removes a gallery
func (s *GalleryService) Delete(ctx context.Context, orgID, actorID, id uuid.UUID) error {
	if err := s.galleryRepo.Delete(ctx, orgID, id); err != nil {
		return services.MapRepoError(err, services.ErrGalleryNotFound, "failed to delete gallery")
	}
	s.logger.Info("gallery deleted", zap.String("org_id", orgID.String()), zap.String("gallery_id", id.String()))
	return nil
}

func (s *GalleryService) record(ctx context.Context, actorID uuid.UUID, g *models.Gallery, action models.AuditAction) {
	s.audit.Record(ctx, audit.Entry{
		OrgID:        g.OrgID,
		UserID:       actorID,
		Action:       action,
		ResourceType: "gallery",
		ResourceID:   g.ID,
		Details:      map[string]interface{}{"status": string(g.Status)},
	})
}
