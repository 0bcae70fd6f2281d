package organizations

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/photoproos/platform/models"
	"github.com/photoproos/platform/repositories"
	"github.com/photoproos/platform/repositories/mocks"
	"github.com/photoproos/platform/services"
	"github.com/photoproos/platform/services/audit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService() (*OrganizationService, *mocks.OrganizationRepository, *mocks.UserRepository, *mocks.TxManager) {
	orgRepo := new(mocks.OrganizationRepository)
	userRepo := new(mocks.UserRepository)
	tx := &mocks.TxManager{}
	return NewOrganizationService(orgRepo, userRepo, tx, audit.Nop{}, zap.NewNop()), orgRepo, userRepo, tx
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Golden Hour Studio", "golden-hour-studio"},
		{"  Ana & Co. Photography!! ", "ana-co-photography"},
		{"---", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.name))
		})
	}
}

func TestValidSlug(t *testing.T) {
	assert.True(t, ValidSlug("golden-hour"))
	assert.False(t, ValidSlug("ab"))
	assert.False(t, ValidSlug("Golden"))
	assert.False(t, ValidSlug("double--hyphen"))
	assert.False(t, ValidSlug("-leading"))
}

func TestOrganizationService_Create(t *testing.T) {
	who := Identity{ClerkUserID: "user_2abc", Email: "Owner@Example.com", Name: "Ana"}

	t.Run("creator becomes owner", func(t *testing.T) {
		service, orgRepo, userRepo, tx := newTestService()
		userRepo.On("GetByClerkUserID", mock.Anything, "user_2abc").Return(nil, repositories.ErrNotFound)
		orgRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Organization")).Return(nil)
		userRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.User")).Return(nil)

		m, err := service.Create(context.Background(), who, OrganizationInput{Name: "Golden Hour", Currency: "EUR", Timezone: "Europe/Madrid"})
		require.NoError(t, err)
		assert.Equal(t, "golden-hour", m.Organization.Slug)
		assert.Equal(t, "eur", m.Organization.Currency)
		assert.Equal(t, "Europe/Madrid", m.Organization.Timezone)
		assert.Equal(t, models.RoleOwner, m.User.Role)
		assert.Equal(t, m.Organization.ID, m.User.OrgID)
		assert.Equal(t, "owner@example.com", m.User.Email)
		assert.Equal(t, 1, tx.Commits)
	})

	t.Run("slug taken", func(t *testing.T) {
		service, orgRepo, userRepo, tx := newTestService()
		userRepo.On("GetByClerkUserID", mock.Anything, "user_2abc").Return(nil, repositories.ErrNotFound)
		orgRepo.On("Create", mock.Anything, mock.Anything).Return(repositories.ErrDuplicate)

		_, err := service.Create(context.Background(), who, OrganizationInput{Name: "Golden Hour"})
		assert.ErrorIs(t, err, services.ErrDuplicateSlug)
		assert.Equal(t, 1, tx.Rollbacks)
		userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("already a member", func(t *testing.T) {
		service, _, userRepo, _ := newTestService()
		userRepo.On("GetByClerkUserID", mock.Anything, "user_2abc").Return(models.NewUser("a@b.c", "user_2abc", uuid.New(), models.RoleMember), nil)

		_, err := service.Create(context.Background(), who, OrganizationInput{Name: "Golden Hour"})
		assert.ErrorIs(t, err, services.ErrAlreadyMember)
	})

	t.Run("invalid input", func(t *testing.T) {
		service, _, _, _ := newTestService()

		_, err := service.Create(context.Background(), who, OrganizationInput{Name: "Golden", Slug: "Bad Slug"})
		assert.ErrorIs(t, err, services.ErrInvalidSlug)

		_, err = service.Create(context.Background(), who, OrganizationInput{Name: "Golden Hour", Timezone: "Mars/Olympus"})
		assert.True(t, services.IsValidationError(err))

		_, err = service.Create(context.Background(), Identity{}, OrganizationInput{Name: "Golden Hour"})
		assert.ErrorIs(t, err, services.ErrUnauthorized)
	})
}

func TestOrganizationService_Me(t *testing.T) {
	service, orgRepo, userRepo, _ := newTestService()
	org := models.NewOrganization("Golden Hour", "golden-hour")
	user := models.NewUser("a@example.com", "user_1", org.ID, models.RoleAdmin)
	userRepo.On("GetByID", mock.Anything, user.ID).Return(user, nil)
	orgRepo.On("GetByID", mock.Anything, org.ID).Return(org, nil)

	m, err := service.Me(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, org, m.Organization)
	assert.Equal(t, user, m.User)
}

func TestOrganizationService_UpdateRole(t *testing.T) {
	orgID := uuid.New()
	owner := models.NewUser("owner@example.com", "user_o", orgID, models.RoleOwner)
	admin := models.NewUser("admin@example.com", "user_a", orgID, models.RoleAdmin)

	t.Run("admin promotes member to photographer", func(t *testing.T) {
		service, _, userRepo, _ := newTestService()
		member := models.NewUser("m@example.com", "user_m", orgID, models.RoleMember)
		userRepo.On("GetByID", mock.Anything, member.ID).Return(member, nil)
		userRepo.On("Update", mock.Anything, member).Return(nil)

		updated, err := service.UpdateRole(context.Background(), admin, member.ID, models.RolePhotographer)
		require.NoError(t, err)
		assert.Equal(t, models.RolePhotographer, updated.Role)
	})

	t.Run("admin cannot grant owner", func(t *testing.T) {
		service, _, userRepo, _ := newTestService()
		member := models.NewUser("m@example.com", "user_m", orgID, models.RoleMember)
		userRepo.On("GetByID", mock.Anything, member.ID).Return(member, nil)

		_, err := service.UpdateRole(context.Background(), admin, member.ID, models.RoleOwner)
		assert.ErrorIs(t, err, services.ErrInsufficientPermissions)
	})

	t.Run("member cannot change roles", func(t *testing.T) {
		service, _, _, _ := newTestService()
		member := models.NewUser("m@example.com", "user_m", orgID, models.RoleMember)

		_, err := service.UpdateRole(context.Background(), member, admin.ID, models.RoleMember)
		assert.ErrorIs(t, err, services.ErrInsufficientPermissions)
	})

	t.Run("last owner is kept", func(t *testing.T) {
		service, _, userRepo, _ := newTestService()
		soleOwner := models.NewUser("owner@example.com", "user_o", orgID, models.RoleOwner)
		userRepo.On("GetByID", mock.Anything, soleOwner.ID).Return(soleOwner, nil)
		userRepo.On("GetByOrgID", mock.Anything, orgID).Return([]*models.User{soleOwner, admin}, nil)

		_, err := service.UpdateRole(context.Background(), soleOwner, soleOwner.ID, models.RoleAdmin)
		assert.ErrorIs(t, err, services.ErrLastOwner)
		assert.Equal(t, models.RoleOwner, soleOwner.Role)
	})

	t.Run("member of another org", func(t *testing.T) {
		service, _, userRepo, _ := newTestService()
		stranger := models.NewUser("s@example.com", "user_s", uuid.New(), models.RoleMember)
		userRepo.On("GetByID", mock.Anything, stranger.ID).Return(stranger, nil)

		_, err := service.UpdateRole(context.Background(), owner, stranger.ID, models.RoleAdmin)
		assert.ErrorIs(t, err, services.ErrUserNotFound)
	})

	t.Run("unknown role", func(t *testing.T) {
		service, _, _, _ := newTestService()
		_, err := service.UpdateRole(context.Background(), owner, admin.ID, models.UserRole("god"))
		assert.True(t, services.IsValidationError(err))
	})
}
