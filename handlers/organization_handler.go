package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/photoproos/platform/middleware"
	"github.com/photoproos/platform/models"
	"github.com/photoproos/platform/services/organizations"
	"github.com/photoproos/platform/utils"
	"go.uber.org/zap"
)

// OrganizationService defines the organization operations used by the handler
type OrganizationService interface {
	Create(ctx context.Context, who organizations.Identity, in organizations.OrganizationInput) (*organizations.Membership, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Organization, error)
	Update(ctx context.Context, id, actorID uuid.UUID, in organizations.OrganizationInput) (*models.Organization, error)
	Delete(ctx context.Context, id, actorID uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*models.OrganizationSummary, error)
	Me(ctx context.Context, userID uuid.UUID) (*organizations.Membership, error)
	Members(ctx context.Context, orgID uuid.UUID) ([]*models.User, error)
	UpdateRole(ctx context.Context, actor *models.User, targetID uuid.UUID, role models.UserRole) (*models.User, error)
}

// CreateOrganizationRequest is the onboarding request of a signed-in user
type CreateOrganizationRequest struct {
	Name      string `json:"name" validate:"required,max=200"`
	Slug      string `json:"slug" validate:"omitempty,slug"`
	Currency  string `json:"currency" validate:"omitempty,currency"`
	Timezone  string `json:"timezone" validate:"omitempty,timezone"`
	OwnerName string `json:"owner_name" validate:"max=200"`
}

// UpdateRoleRequest changes a member's role
type UpdateRoleRequest struct {
	Role models.UserRole `json:"role" validate:"required,oneof=owner admin photographer member"`
}

// OrganizationHandler handles organization and membership requests
type OrganizationHandler struct {
	service OrganizationService
	logger  *zap.Logger
}

// NewOrganizationHandler creates a new OrganizationHandler
func NewOrganizationHandler(service OrganizationService, logger *zap.Logger) *OrganizationHandler {
	return &OrganizationHandler{
		service: service,
		logger:  logger,
	}
}

// HandleCreateOrganization handles POST /api/v1/organizations
func (h *OrganizationHandler) HandleCreateOrganization(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	session := middleware.GetSessionFromContext(ctx)
	if session == nil {
		_ = utils.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req CreateOrganizationRequest
	if !decodeRequest(w, r, &req, h.logger) {
		return
	}

	who := organizations.Identity{
		ClerkUserID: session.UserID,
		Email:       session.Email,
		Name:        req.OwnerName,
	}
	membership, err := h.service.Create(ctx, who, organizations.OrganizationInput{
		Name:     req.Name,
		Slug:     req.Slug,
		Currency: req.Currency,
		Timezone: req.Timezone,
	})
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	h.logger.Info("organization created",
		zap.String("request_id", requestID),
		zap.String("org_id", membership.Organization.ID.String()),
		zap.String("slug", membership.Organization.Slug))

	_ = utils.WriteCreated(w, membership)
}

// HandleMe handles GET /api/v1/users/me
func (h *OrganizationHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	membership, err := h.service.Me(r.Context(), user.ID)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, membership)
}

// HandleGetOrganization handles GET /api/v1/organization
func (h *OrganizationHandler) HandleGetOrganization(w http.ResponseWriter, r *http.Request) {
	orgID, _, ok := tenant(w, r, h.logger)
	if !ok {
		return
	}

	org, err := h.service.Get(r.Context(), orgID)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, org)
}

// HandleUpdateOrganization handles PATCH /api/v1/organization
func (h *OrganizationHandler) HandleUpdateOrganization(w http.ResponseWriter, r *http.Request) {
	orgID, user, ok := tenant(w, r, h.logger)
	if !ok {
		return
	}

	var req organizations.OrganizationInput
	if !decodeRequest(w, r, &req, h.logger) {
		return
	}

	org, err := h.service.Update(r.Context(), orgID, user.ID, req)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, org)
}

// HandleListMembers handles GET /api/v1/organization/members
func (h *OrganizationHandler) HandleListMembers(w http.ResponseWriter, r *http.Request) {
	orgID, _, ok := tenant(w, r, h.logger)
	if !ok {
		return
	}

	members, err := h.service.Members(r.Context(), orgID)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, members)
}

// HandleUpdateMemberRole handles PATCH /api/v1/organization/members/{userID}/role
func (h *OrganizationHandler) HandleUpdateMemberRole(w http.ResponseWriter, r *http.Request) {
	_, actor, ok := tenant(w, r, h.logger)
	if !ok {
		return
	}
	targetID, ok := pathUUID(w, r, "userID")
	if !ok {
		return
	}

	var req UpdateRoleRequest
	if !decodeRequest(w, r, &req, h.logger) {
		return
	}

	member, err := h.service.UpdateRole(r.Context(), actor, targetID, req.Role)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	h.logger.Info("member role updated",
		zap.String("request_id", middleware.GetRequestIDFromContext(r.Context())),
		zap.String("user_id", targetID.String()),
		zap.String("role", string(req.Role)))

	_ = utils.WriteOK(w, member)
}

// HandleAdminListOrganizations handles GET /api/v1/admin/organizations
func (h *OrganizationHandler) HandleAdminListOrganizations(w http.ResponseWriter, r *http.Request) {
	p, err := parsePage(r)
	if err != nil {
		_ = utils.WriteBadRequest(w, err.Error(), nil)
		return
	}

	orgs, err := h.service.List(r.Context(), p.Limit, p.Offset)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, orgs)
}

// HandleAdminGetOrganization handles GET /api/v1/admin/organizations/{orgID}
func (h *OrganizationHandler) HandleAdminGetOrganization(w http.ResponseWriter, r *http.Request) {
	orgID, ok := pathUUID(w, r, "orgID")
	if !ok {
		return
	}

	org, err := h.service.Get(r.Context(), orgID)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, org)
}

// HandleAdminDeleteOrganization handles DELETE /api/v1/admin/organizations/{orgID}
func (h *OrganizationHandler) HandleAdminDeleteOrganization(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}
	orgID, ok := pathUUID(w, r, "orgID")
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), orgID, actor.ID); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	h.logger.Warn("organization deleted",
		zap.String("request_id", middleware.GetRequestIDFromContext(r.Context())),
		zap.String("org_id", orgID.String()),
		zap.String("actor_id", actor.ID.String()))

	_ = utils.WriteMessage(w, "Organization deleted")
}
