package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/photoproos/platform/clerk"
	"github.com/photoproos/platform/middleware"
	"github.com/photoproos/platform/models"
	"github.com/photoproos/platform/services"
	"github.com/photoproos/platform/services/organizations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHandleCreateOrganization(t *testing.T) {
	logger := zap.NewNop()

	t.Run("onboards the signed-in user", func(t *testing.T) {
		svc := new(MockOrganizationService)
		handler := NewOrganizationHandler(svc, logger)

		org := models.NewOrganization("Golden Hour Studio", "golden-hour")
		owner := models.NewUser("ana@goldenhour.test", "user_ana", org.ID, models.RoleOwner)

		svc.On("Create", mock.Anything,
			organizations.Identity{ClerkUserID: "user_ana", Email: "ana@goldenhour.test", Name: "Ana"},
			organizations.OrganizationInput{Name: "Golden Hour Studio", Slug: "golden-hour", Currency: "USD"},
		).Return(&organizations.Membership{User: owner, Organization: org}, nil)

		req := newRequest(t, http.MethodPost, "/api/v1/organizations", CreateOrganizationRequest{
			Name: "Golden Hour Studio", Slug: "golden-hour", Currency: "USD", OwnerName: "Ana",
		}, nil, nil)
		req = req.WithContext(middleware.WithSession(req.Context(), &clerk.Session{UserID: "user_ana", Email: "ana@goldenhour.test"}))
		w := httptest.NewRecorder()

		handler.HandleCreateOrganization(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		var got organizations.Membership
		env := decodeEnvelope(t, w, &got)
		assert.True(t, env.Success)
		assert.Equal(t, "golden-hour", got.Organization.Slug)
		assert.Equal(t, models.RoleOwner, got.User.Role)
		svc.AssertExpectations(t)
	})

	t.Run("requires a session", func(t *testing.T) {
		handler := NewOrganizationHandler(new(MockOrganizationService), logger)

		w := httptest.NewRecorder()
		handler.HandleCreateOrganization(w, newRequest(t, http.MethodPost, "/api/v1/organizations", `{"name":"x"}`, nil, nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("rejects an invalid slug", func(t *testing.T) {
		handler := NewOrganizationHandler(new(MockOrganizationService), logger)

		req := newRequest(t, http.MethodPost, "/api/v1/organizations", `{"name":"Studio","slug":"Not A Slug"}`, nil, nil)
		req = req.WithContext(middleware.WithSession(req.Context(), &clerk.Session{UserID: "user_1"}))
		w := httptest.NewRecorder()

		handler.HandleCreateOrganization(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decodeEnvelope(t, w, nil)
		assert.Contains(t, env.Details, "slug")
	})

	t.Run("existing member conflicts", func(t *testing.T) {
		svc := new(MockOrganizationService)
		handler := NewOrganizationHandler(svc, logger)
		svc.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(nil, services.ErrAlreadyMember)

		req := newRequest(t, http.MethodPost, "/api/v1/organizations", `{"name":"Studio"}`, nil, nil)
		req = req.WithContext(middleware.WithSession(req.Context(), &clerk.Session{UserID: "user_1"}))
		w := httptest.NewRecorder()

		handler.HandleCreateOrganization(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestHandleMe(t *testing.T) {
	svc := new(MockOrganizationService)
	handler := NewOrganizationHandler(svc, zap.NewNop())

	user := testMember(models.RolePhotographer)
	org := &models.Organization{ID: user.OrgID, Name: "Studio", Slug: "studio"}
	svc.On("Me", mock.Anything, user.ID).Return(&organizations.Membership{User: user, Organization: org}, nil)

	w := httptest.NewRecorder()
	handler.HandleMe(w, newRequest(t, http.MethodGet, "/api/v1/users/me", nil, user, nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var got organizations.Membership
	decodeEnvelope(t, w, &got)
	assert.Equal(t, user.ID, got.User.ID)
	assert.NotContains(t, w.Body.String(), "stripe_account_id")
}

func TestHandleUpdateMemberRole(t *testing.T) {
	logger := zap.NewNop()
	actor := testMember(models.RoleOwner)
	targetID := uuid.New()

	t.Run("updates the role", func(t *testing.T) {
		svc := new(MockOrganizationService)
		handler := NewOrganizationHandler(svc, logger)

		updated := models.NewUser("p@studio.test", "user_p", actor.OrgID, models.RoleAdmin)
		svc.On("UpdateRole", mock.Anything, actor, targetID, models.RoleAdmin).Return(updated, nil)

		w := httptest.NewRecorder()
		handler.HandleUpdateMemberRole(w, newRequest(t, http.MethodPatch, "/", UpdateRoleRequest{Role: models.RoleAdmin}, actor,
			map[string]string{"userID": targetID.String()}))

		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("unknown role is rejected before the service", func(t *testing.T) {
		svc := new(MockOrganizationService)
		handler := NewOrganizationHandler(svc, logger)

		w := httptest.NewRecorder()
		handler.HandleUpdateMemberRole(w, newRequest(t, http.MethodPatch, "/", `{"role":"emperor"}`, actor,
			map[string]string{"userID": targetID.String()}))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "UpdateRole", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("last owner", func(t *testing.T) {
		svc := new(MockOrganizationService)
		handler := NewOrganizationHandler(svc, logger)
		svc.On("UpdateRole", mock.Anything, actor, actor.ID, models.RoleMember).Return(nil, services.ErrLastOwner)

		w := httptest.NewRecorder()
		handler.HandleUpdateMemberRole(w, newRequest(t, http.MethodPatch, "/", UpdateRoleRequest{Role: models.RoleMember}, actor,
			map[string]string{"userID": actor.ID.String()}))

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestHandleAdminOrganizations(t *testing.T) {
	svc := new(MockOrganizationService)
	handler := NewOrganizationHandler(svc, zap.NewNop())
	admin := testMember(models.RoleMember)
	admin.IsSuperAdmin = true

	summary := &models.OrganizationSummary{Organization: models.Organization{ID: uuid.New(), Name: "A"}, MemberCount: 3}
	svc.On("List", mock.Anything, 10, 0).Return([]*models.OrganizationSummary{summary}, nil)

	w := httptest.NewRecorder()
	handler.HandleAdminListOrganizations(w, newRequest(t, http.MethodGet, "/api/v1/admin/organizations?limit=10", nil, admin, nil))
	require.Equal(t, http.StatusOK, w.Code)

	var got []map[string]interface{}
	decodeEnvelope(t, w, &got)
	require.Len(t, got, 1)
	assert.Equal(t, float64(3), got[0]["member_count"])

	orgID := uuid.New()
	svc.On("Delete", mock.Anything, orgID, admin.ID).Return(nil)

	w = httptest.NewRecorder()
	handler.HandleAdminDeleteOrganization(w, newRequest(t, http.MethodDelete, "/", nil, admin, map[string]string{"orgID": orgID.String()}))
	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}
