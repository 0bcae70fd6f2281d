package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/photoproos/platform/models"
	"github.com/photoproos/platform/services/galleries"
	"github.com/photoproos/platform/utils"
	"go.uber.org/zap"
)

// GalleryService defines the gallery operations used by the handler
type GalleryService interface {
	Create(ctx context.Context, orgID, actorID uuid.UUID, in galleries.GalleryInput) (*models.Gallery, error)
	Get(ctx context.Context, orgID, id uuid.UUID) (*models.Gallery, error)
	List(ctx context.Context, orgID uuid.UUID, clientID *uuid.UUID, limit, offset int) ([]*models.Gallery, error)
	Update(ctx context.Context, orgID, actorID, id uuid.UUID, in galleries.GalleryInput) (*models.Gallery, error)
	Deliver(ctx context.Context, orgID, actorID, id uuid.UUID) (*models.Gallery, error)
	Archive(ctx context.Context, orgID, actorID, id uuid.UUID) (*models.Gallery, error)
	Delete(ctx context.Context, orgID, actorID, id uuid.UUID) error
}

// GalleryHandler handles gallery (project) requests
type GalleryHandler struct {
	service GalleryService
	logger  *zap.Logger
}

// NewGalleryHandler creates a new GalleryHandler
func NewGalleryHandler(service GalleryService, logger *zap.Logger) *GalleryHandler {
	return &GalleryHandler{
		service: service,
		logger:  logger,
	}
}

// HandleListGalleries handles GET /api/v1/galleries
func (h *GalleryHandler) HandleListGalleries(w http.ResponseWriter, r *http.Request) {
	orgID, _, ok := tenant(w, r, h.logger)
	if !ok {
		return
	}

	p, err := parsePage(r)
	if err != nil {
		_ = utils.WriteBadRequest(w, err.Error(), nil)
		return
	}
	clientID, err := queryUUID(r, "client_id")
	if err != nil {
		_ = utils.WriteBadRequest(w, err.Error(), nil)
		return
	}

	list, err := h.service.List(r.Context(), orgID, clientID, p.Limit, p.Offset)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, list)
}

// HandleCreateGallery handles POST /api/v1/galleries
func (h *GalleryHandler) HandleCreateGallery(w http.ResponseWriter, r *http.Request) {
	orgID, user, ok := tenant(w, r, h.logger)
	if !ok {
		return
	}

	var req galleries.GalleryInput
	if !decodeRequest(w, r, &req, h.logger) {
		return
	}

	gallery, err := h.service.Create(r.Context(), orgID, user.ID, req)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteCreated(w, gallery)
}

// HandleGetGallery handles GET /api/v1/galleries/{galleryID}
func (h *GalleryHandler) HandleGetGallery(w http.ResponseWriter, r *http.Request) {
	orgID, _, ok := tenant(w, r, h.logger)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "galleryID")
	if !ok {
		return
	}

	gallery, err := h.service.Get(r.Context(), orgID, id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, gallery)
}

// HandleUpdateGallery handles PUT /api/v1/galleries/{galleryID}
func (h *GalleryHandler) HandleUpdateGallery(w http.ResponseWriter, r *http.Request) {
	orgID, user, ok := tenant(w, r, h.logger)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "galleryID")
	if !ok {
		return
	}

	var req galleries.GalleryInput
	if !decodeRequest(w, r, &req, h.logger) {
		return
	}

	gallery, err := h.service.Update(r.Context(), orgID, user.ID, id, req)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, gallery)
}

// HandleDeliverGallery handles POST /api/v1/galleries/{galleryID}/deliver
func (h *GalleryHandler) HandleDeliverGallery(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Deliver)
}

// HandleArchiveGallery handles POST /api/v1/galleries/{galleryID}/archive
func (h *GalleryHandler) HandleArchiveGallery(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Archive)
}

func (h *GalleryHandler) transition(w http.ResponseWriter, r *http.Request,
	fn func(ctx context.Context, orgID, actorID, id uuid.UUID) (*models.Gallery, error)) {
	orgID, user, ok := tenant(w, r, h.logger)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "galleryID")
	if !ok {
		return
	}

	gallery, err := fn(r.Context(), orgID, user.ID, id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, gallery)
}

// HandleDeleteGallery handles DELETE /api/v1/galleries/{galleryID}
func (h *GalleryHandler) HandleDeleteGallery(w http.ResponseWriter, r *http.Request) {
	orgID, user, ok := tenant(w, r, h.logger)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "galleryID")
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), orgID, user.ID, id); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteMessage(w, "Gallery deleted")
}
