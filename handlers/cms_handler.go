package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/photoproos/platform/models"
	"github.com/photoproos/platform/services/cms"
	"github.com/photoproos/platform/utils"
	"go.uber.org/zap"
)

// ContentService defines the marketing content operations used by the handler
type ContentService interface {
	PublishedFAQs(ctx context.Context) ([]*models.FAQ, error)
	ListFAQs(ctx context.Context) ([]*models.FAQ, error)
	CreateFAQ(ctx context.Context, actor *models.User, in cms.FAQInput) (*models.FAQ, error)
	UpdateFAQ(ctx context.Context, actor *models.User, id uuid.UUID, in cms.FAQInput) (*models.FAQ, error)
	DeleteFAQ(ctx context.Context, actor *models.User, id uuid.UUID) error
	Roadmap(ctx context.Context) ([]*models.RoadmapPhase, error)
	CreatePhase(ctx context.Context, actor *models.User, in cms.PhaseInput) (*models.RoadmapPhase, error)
	UpdatePhase(ctx context.Context, actor *models.User, id uuid.UUID, in cms.PhaseInput) (*models.RoadmapPhase, error)
	DeletePhase(ctx context.Context, actor *models.User, id uuid.UUID) error
	CreateItem(ctx context.Context, actor *models.User, in cms.ItemInput) (*models.RoadmapItem, error)
	UpdateItem(ctx context.Context, actor *models.User, id uuid.UUID, in cms.ItemInput) (*models.RoadmapItem, error)
	DeleteItem(ctx context.Context, actor *models.User, id uuid.UUID) error
	Vote(ctx context.Context, id uuid.UUID) (int, error)
}

// ContentHandler serves the public FAQ and roadmap and the super-admin CMS
type ContentHandler struct {
	service ContentService
	logger  *zap.Logger
}

// NewContentHandler creates a new ContentHandler
func NewContentHandler(service ContentService, logger *zap.Logger) *ContentHandler {
	return &ContentHandler{
		service: service,
		logger:  logger,
	}
}

// HandlePublicFAQs handles GET /api/v1/public/faqs
func (h *ContentHandler) HandlePublicFAQs(w http.ResponseWriter, r *http.Request) {
	faqs, err := h.service.PublishedFAQs(r.Context())
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, faqs)
}

// HandlePublicRoadmap handles GET /api/v1/public/roadmap
func (h *ContentHandler) HandlePublicRoadmap(w http.ResponseWriter, r *http.Request) {
	phases, err := h.service.Roadmap(r.Context())
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, phases)
}

// HandleVote handles POST /api/v1/roadmap/items/{itemID}/vote
func (h *ContentHandler) HandleVote(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "itemID")
	if !ok {
		return
	}

	votes, err := h.service.Vote(r.Context(), id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, map[string]int{"votes": votes})
}

// HandleListFAQs handles GET /api/v1/admin/faqs
func (h *ContentHandler) HandleListFAQs(w http.ResponseWriter, r *http.Request) {
	faqs, err := h.service.ListFAQs(r.Context())
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, faqs)
}

// HandleCreateFAQ handles POST /api/v1/admin/faqs
func (h *ContentHandler) HandleCreateFAQ(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req cms.FAQInput
	if !decodeRequest(w, r, &req, h.logger) {
		return
	}

	faq, err := h.service.CreateFAQ(r.Context(), actor, req)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteCreated(w, faq)
}

// HandleUpdateFAQ handles PUT /api/v1/admin/faqs/{faqID}
func (h *ContentHandler) HandleUpdateFAQ(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "faqID")
	if !ok {
		return
	}

	var req cms.FAQInput
	if !decodeRequest(w, r, &req, h.logger) {
		return
	}

	faq, err := h.service.UpdateFAQ(r.Context(), actor, id, req)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, faq)
}

// HandleDeleteFAQ handles DELETE /api/v1/admin/faqs/{faqID}
func (h *ContentHandler) HandleDeleteFAQ(w http.ResponseWriter, r *http.Request) {
	h.remove(w, r, "faqID", h.service.DeleteFAQ)
}

// HandleCreatePhase handles POST /api/v1/admin/roadmap/phases
func (h *ContentHandler) HandleCreatePhase(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req cms.PhaseInput
	if !decodeRequest(w, r, &req, h.logger) {
		return
	}

	phase, err := h.service.CreatePhase(r.Context(), actor, req)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteCreated(w, phase)
}

// HandleUpdatePhase handles PUT /api/v1/admin/roadmap/phases/{phaseID}
func (h *ContentHandler) HandleUpdatePhase(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "phaseID")
	if !ok {
		return
	}

	var req cms.PhaseInput
	if !decodeRequest(w, r, &req, h.logger) {
		return
	}

	phase, err := h.service.UpdatePhase(r.Context(), actor, id, req)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, phase)
}

// HandleDeletePhase handles DELETE /api/v1/admin/roadmap/phases/{phaseID}
func (h *ContentHandler) HandleDeletePhase(w http.ResponseWriter, r *http.Request) {
	h.remove(w, r, "phaseID", h.service.DeletePhase)
}

// HandleCreateItem handles POST /api/v1/admin/roadmap/items
func (h *ContentHandler) HandleCreateItem(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req cms.ItemInput
	if !decodeRequest(w, r, &req, h.logger) {
		return
	}

	item, err := h.service.CreateItem(r.Context(), actor, req)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteCreated(w, item)
}

// HandleUpdateItem handles PUT /api/v1/admin/roadmap/items/{itemID}
func (h *ContentHandler) HandleUpdateItem(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "itemID")
	if !ok {
		return
	}

	var req cms.ItemInput
	if !decodeRequest(w, r, &req, h.logger) {
		return
	}

	item, err := h.service.UpdateItem(r.Context(), actor, id, req)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, item)
}

// HandleDeleteItem handles DELETE /api/v1/admin/roadmap/items/{itemID}
func (h *ContentHandler) HandleDeleteItem(w http.ResponseWriter, r *http.Request) {
	h.remove(w, r, "itemID", h.service.DeleteItem)
}

func (h *ContentHandler) remove(w http.ResponseWriter, r *http.Request, param string,
	fn func(ctx context.Context, actor *models.User, id uuid.UUID) error) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, param)
	if !ok {
		return
	}

	if err := fn(r.Context(), actor, id); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteMessage(w, "Deleted")
}
