// Package organizations manages studios (tenants) and their members.
package organizations

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"
	_ "time/tzdata" // timezone validation in minimal container images

	"github.com/google/uuid"
	"github.com/photoproos/platform/models"
	"github.com/photoproos/platform/repositories"
	"github.com/photoproos/platform/services"
	"github.com/photoproos/platform/services/audit"
	"go.uber.org/zap"
)

var (
	slugPattern    = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	nonSlugPattern = regexp.MustCompile(`[^a-z0-9]+`)
)

// Identity is the authenticated Clerk subject, possibly without a user row yet
type Identity struct {
	ClerkUserID string
	Email       string
	Name        string
}

// OrganizationInput is the editable part of an organization
type OrganizationInput struct {
	Name     string `json:"name" validate:"required,max=200"`
	Slug     string `json:"slug" validate:"omitempty,slug"`
	Currency string `json:"currency" validate:"omitempty,currency"`
	Timezone string `json:"timezone" validate:"omitempty,max=64"`
}

// Membership is the current user with their organization
type Membership struct {
	User         *models.User         `json:"user"`
	Organization *models.Organization `json:"organization"`
}

// OrganizationService manages organizations and users
type OrganizationService struct {
	orgRepo   repositories.OrganizationRepository
	userRepo  repositories.UserRepository
	txManager repositories.TransactionManager
	audit     audit.Recorder
	logger    *zap.Logger
}

// NewOrganizationService creates a new OrganizationService instance
func NewOrganizationService(
	orgRepo repositories.OrganizationRepository,
	userRepo repositories.UserRepository,
	txManager repositories.TransactionManager,
	recorder audit.Recorder,
	logger *zap.Logger,
) *OrganizationService {
	return &OrganizationService{
		orgRepo:   orgRepo,
		userRepo:  userRepo,
		txManager: txManager,
		audit:     recorder,
		logger:    logger,
	}
}

// Slugify derives a URL-friendly identifier from a display name
func Slugify(name string) string {
	slug := nonSlugPattern.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
	slug = strings.Trim(slug, "-")
	if len(slug) > 63 {
		slug = strings.TrimRight(slug[:63], "-")
	}
	return slug
}

// ValidSlug reports whether slug is lowercase words joined by single hyphens, 3 to 63 characters
func ValidSlug(slug string) bool {
	return len(slug) >= 3 && len(slug) <= 63 && slugPattern.MatchString(slug)
}

func (in OrganizationInput) apply(org *models.Organization) error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return services.Validation("name is required")
	}
	slug := strings.ToLower(strings.TrimSpace(in.Slug))
	if slug == "" {
		slug = Slugify(name)
	}
	if !ValidSlug(slug) {
		return services.ErrInvalidSlug
	}

	org.Name = name
	org.Slug = slug
	if in.Currency != "" {
		if len(in.Currency) != 3 {
			return services.Validation("currency must be a 3-letter ISO code")
		}
		org.Currency = strings.ToLower(in.Currency)
	}
	if in.Timezone != "" {
		if _, err := time.LoadLocation(in.Timezone); err != nil {
			return services.Validation("unknown timezone")
		}
		org.Timezone = in.Timezone
	}
	return nil
}

// Create creates an organization and makes the caller its owner
func (s *OrganizationService) Create(ctx context.Context, who Identity, in OrganizationInput) (*Membership, error) {
	if who.ClerkUserID == "" {
		return nil, services.ErrUnauthorized
	}

	org := models.NewOrganization("", "")
	if err := in.apply(org); err != nil {
		return nil, err
	}

	existing, err := s.userRepo.GetByClerkUserID(ctx, who.ClerkUserID)
	switch {
	case err == nil && existing != nil:
		return nil, services.ErrAlreadyMember
	case err != nil && !errors.Is(err, repositories.ErrNotFound):
		return nil, services.WrapInternal("failed to load user", err)
	}

	owner := models.NewUser(strings.ToLower(who.Email), who.ClerkUserID, org.ID, models.RoleOwner)
	owner.Name = who.Name

	err = services.WithTransaction(ctx, s.txManager, func(ctx context.Context, tx repositories.Transaction) error {
		if err := s.orgRepo.Create(ctx, org); err != nil {
			if errors.Is(err, repositories.ErrDuplicate) {
				return services.ErrDuplicateSlug
			}
			return services.WrapInternal("failed to create organization", err)
		}
		if err := s.userRepo.Create(ctx, owner); err != nil {
			if errors.Is(err, repositories.ErrDuplicate) {
				return services.ErrAlreadyMember
			}
			return services.WrapInternal("failed to create owner", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, audit.Entry{
		OrgID:        org.ID,
		UserID:       owner.ID,
		Action:       models.AuditActionOrgCreated,
		ResourceType: "organization",
		ResourceID:   org.ID,
		Details:      map[string]interface{}{"slug": org.Slug},
	})
	s.logger.Info("organization created", zap.String("org_id", org.ID.String()), zap.String("slug", org.Slug))

	return &Membership{User: owner, Organization: org}, nil
}

// Get returns one organization
func (s *OrganizationService) Get(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	org, err := s.orgRepo.GetByID(ctx, id)
	if err != nil {
		return nil, services.MapRepoError(err, services.ErrOrganizationNotFound, "failed to load organization")
	}
	return org, nil
}

// Update edits the organization profile
func (s *OrganizationService) Update(ctx context.Context, id, actorID uuid.UUID, in OrganizationInput) (*models.Organization, error) {
	org, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := in.apply(org); err != nil {
		return nil, err
	}
	org.UpdatedAt = time.Now().UTC()

	if err := s.orgRepo.Update(ctx, org); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, services.ErrDuplicateSlug
		}
		return nil, services.MapRepoError(err, services.ErrOrganizationNotFound, "failed to update organization")
	}

	s.audit.Record(ctx, audit.Entry{
		OrgID:        org.ID,
		UserID:       actorID,
		Action:       models.AuditActionOrgUpdated,
		ResourceType: "organization",
		ResourceID:   org.ID,
	})
	return org, nil
}

// Delete removes an organization and, through cascades, everything it owns
func (s *OrganizationService) Delete(ctx context.Context, id, actorID uuid.UUID) error {
	if err := s.orgRepo.Delete(ctx, id); err != nil {
		return services.MapRepoError(err, services.ErrOrganizationNotFound, "failed to delete organization")
	}

	s.logger.Warn("organization deleted", zap.String("org_id", id.String()), zap.String("actor_id", actorID.String()))
	return nil
}

// List returns every organization with member, client and revenue counts
func (s *OrganizationService) List(ctx context.Context, limit, offset int) ([]*models.OrganizationSummary, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	list, err := s.orgRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, services.WrapInternal("failed to list organizations", err)
	}
	return list, nil
}

// ResolveUser loads the user row of a Clerk subject
func (s *OrganizationService) ResolveUser(ctx context.Context, clerkUserID string) (*models.User, error) {
	user, err := s.userRepo.GetByClerkUserID(ctx, clerkUserID)
	if err != nil {
		return nil, services.MapRepoError(err, services.ErrUserNotFound, "failed to load user")
	}
	return user, nil
}

// Me returns the user with their organization
func (s *OrganizationService) Me(ctx context.Context, userID uuid.UUID) (*Membership, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, services.MapRepoError(err, services.ErrUserNotFound, "failed to load user")
	}
	org, err := s.Get(ctx, user.OrgID)
	if err != nil {
		return nil, err
	}
	return &Membership{User: user, Organization: org}, nil
}

// Members lists the users of an organization
func (s *OrganizationService) Members(ctx context.Context, orgID uuid.UUID) ([]*models.User, error) {
	users, err := s.userRepo.GetByOrgID(ctx, orgID)
	if err != nil {
		return nil, services.WrapInternal("failed to list members", err)
	}
	return users, nil
}

// UpdateRole changes a member's role. Only owners may grant or revoke the owner role,
// and the last owner cannot be demoted.
func (s *OrganizationService) UpdateRole(ctx context.Context, actor *models.User, targetID uuid.UUID, role models.UserRole) (*models.User, error) {
	if !role.Valid() {
		return nil, services.Validation("unknown role").WithDetail("role", string(role))
	}
	if !actor.IsAdmin() && !actor.IsSuperAdmin {
		return nil, services.ErrInsufficientPermissions
	}

	target, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return nil, services.MapRepoError(err, services.ErrUserNotFound, "failed to load user")
	}
	if target.OrgID != actor.OrgID && !actor.IsSuperAdmin {
		return nil, services.ErrUserNotFound
	}
	if target.Role == role {
		return target, nil
	}

	touchesOwner := role == models.RoleOwner || target.Role == models.RoleOwner
	if touchesOwner && actor.Role != models.RoleOwner && !actor.IsSuperAdmin {
		return nil, services.ErrInsufficientPermissions
	}

	if target.Role == models.RoleOwner {
		members, err := s.userRepo.GetByOrgID(ctx, target.OrgID)
		if err != nil {
			return nil, services.WrapInternal("failed to list members", err)
		}
		owners := 0
		for _, m := range members {
			if m.Role == models.RoleOwner {
				owners++
			}
		}
		if owners <= 1 {
			return nil, services.ErrLastOwner
		}
	}

	previous := target.Role
	target.Role = role
	target.UpdatedAt = time.Now().UTC()
	if err := s.userRepo.Update(ctx, target); err != nil {
		return nil, services.MapRepoError(err, services.ErrUserNotFound, "failed to update user")
	}

	s.audit.Record(ctx, audit.Entry{
		OrgID:        target.OrgID,
		UserID:       actor.ID,
		Action:       models.AuditActionUserRoleChanged,
		ResourceType: "user",
		ResourceID:   target.ID,
		Details:      map[string]interface{}{"from": string(previous), "to": string(role)},
	})
	return target, nil
}
