package featureflags

import (
	"context"
	"testing"
	"time"

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

func newTestService() (*FeatureFlagService, *mocks.FeatureFlagRepository) {
	repo := new(mocks.FeatureFlagRepository)
	return NewFeatureFlagService(repo, NewFlagCache(100, time.Minute), audit.Nop{}, zap.NewNop()), repo
}

func superAdmin() *models.User {
	u := models.NewUser("staff@photoproos.com", "user_staff", uuid.New(), models.RoleOwner)
	u.IsSuperAdmin = true
	return u
}

func TestBucket_Deterministic(t *testing.T) {
	orgID := uuid.MustParse("6f1c2a7e-0d8b-4c55-9a3e-2b7f4f1d9c10")
	first := Bucket("galleries_v2", orgID)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Bucket("galleries_v2", orgID))
	}
	assert.GreaterOrEqual(t, first, 0)
	assert.Less(t, first, 100)
}

func TestBucket_Spread(t *testing.T) {
	in := 0
	for i := 0; i < 2000; i++ {
		if Bucket("invoices_v2", uuid.New()) < 50 {
			in++
		}
	}
	// roughly half of organizations land in a 50% rollout
	assert.InDelta(t, 1000, in, 150)
}

func TestEvaluate(t *testing.T) {
	orgID := uuid.New()
	bucket := Bucket("flag", orgID)

	tests := []struct {
		name string
		flag *models.FeatureFlag
		want bool
	}{
		{"nil flag", nil, false},
		{"disabled even when allowlisted", &models.FeatureFlag{Key: "flag", RolloutPercent: 100, OrgAllowlist: []uuid.UUID{orgID}}, false},
		{"allowlisted", &models.FeatureFlag{Key: "flag", Enabled: true, OrgAllowlist: []uuid.UUID{orgID}}, true},
		{"full rollout", &models.FeatureFlag{Key: "flag", Enabled: true, RolloutPercent: 100}, true},
		{"zero rollout", &models.FeatureFlag{Key: "flag", Enabled: true}, false},
		{"just inside rollout", &models.FeatureFlag{Key: "flag", Enabled: true, RolloutPercent: bucket + 1}, true},
		{"just outside rollout", &models.FeatureFlag{Key: "flag", Enabled: true, RolloutPercent: bucket}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Evaluate(tt.flag, orgID))
		})
	}
}

func TestFeatureFlagService_IsEnabled_Caches(t *testing.T) {
	service, repo := newTestService()
	orgID := uuid.New()
	repo.On("GetByKey", mock.Anything, "galleries_v2").Return(&models.FeatureFlag{Key: "galleries_v2", Enabled: true, RolloutPercent: 100}, nil).Once()
	repo.On("GetByKey", mock.Anything, "unknown").Return(nil, repositories.ErrNotFound).Once()

	for i := 0; i < 3; i++ {
		on, err := service.IsEnabled(context.Background(), "galleries_v2", orgID)
		require.NoError(t, err)
		assert.True(t, on)

		on, err = service.IsEnabled(context.Background(), "unknown", orgID)
		require.NoError(t, err)
		assert.False(t, on)
	}
	repo.AssertNumberOfCalls(t, "GetByKey", 2)
}

func TestFeatureFlagService_Toggle_Invalidates(t *testing.T) {
	service, repo := newTestService()
	orgID := uuid.New()
	flag := &models.FeatureFlag{ID: uuid.New(), Key: "social", Enabled: true, RolloutPercent: 100}
	repo.On("GetByKey", mock.Anything, "social").Return(flag, nil)
	repo.On("Update", mock.Anything, flag).Return(nil)

	on, err := service.IsEnabled(context.Background(), "social", orgID)
	require.NoError(t, err)
	assert.True(t, on)

	toggled, err := service.Toggle(context.Background(), superAdmin(), "social")
	require.NoError(t, err)
	assert.False(t, toggled.Enabled)

	on, err = service.IsEnabled(context.Background(), "social", orgID)
	require.NoError(t, err)
	assert.False(t, on)
}

func TestFeatureFlagService_EvaluateAll(t *testing.T) {
	service, repo := newTestService()
	orgID := uuid.New()
	repo.On("List", mock.Anything).Return([]*models.FeatureFlag{
		{Key: "a", Enabled: true, RolloutPercent: 100},
		{Key: "b", Enabled: false, RolloutPercent: 100},
		{Key: "c", Enabled: true, OrgAllowlist: []uuid.UUID{orgID}},
	}, nil)

	flags, err := service.EvaluateAll(context.Background(), orgID)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"a": true, "b": false, "c": true}, flags)
}

func TestFeatureFlagService_Create(t *testing.T) {
	t.Run("duplicate key", func(t *testing.T) {
		service, repo := newTestService()
		repo.On("Create", mock.Anything, mock.Anything).Return(repositories.ErrDuplicate)

		_, err := service.Create(context.Background(), superAdmin(), FlagInput{Key: "social", Enabled: true})
		assert.ErrorIs(t, err, services.ErrDuplicateKey)
	})

	t.Run("invalid key or rollout", func(t *testing.T) {
		service, _ := newTestService()

		_, err := service.Create(context.Background(), superAdmin(), FlagInput{Key: "Bad Key"})
		assert.True(t, services.IsValidationError(err))

		_, err = service.Create(context.Background(), superAdmin(), FlagInput{Key: "ok_key", RolloutPercent: 101})
		assert.True(t, services.IsValidationError(err))
	})
}
