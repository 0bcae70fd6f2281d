package rates

import (
	"context"
	"errors"
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

func TestRateInput_Validate(t *testing.T) {
	valid := func() RateInput {
		return RateInput{PhotographerID: uuid.New(), RateType: models.RateTypePercentage, RateValue: 4000}
	}

	tests := []struct {
		name    string
		mutate  func(*RateInput)
		wantErr bool
	}{
		{"valid", func(*RateInput) {}, false},
		{"missing photographer", func(in *RateInput) { in.PhotographerID = uuid.Nil }, true},
		{"unknown type", func(in *RateInput) { in.RateType = "daily" }, true},
		{"negative value", func(in *RateInput) { in.RateValue = -1 }, true},
		{"percentage above 100%", func(in *RateInput) { in.RateValue = 10001 }, true},
		{"min above max", func(in *RateInput) { in.MinPayoutCents, in.MaxPayoutCents = int64Ptr(500), int64Ptr(100) }, true},
		{"negative min", func(in *RateInput) { in.MinPayoutCents = int64Ptr(-5) }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid()
			tt.mutate(&in)
			err := in.Validate()
			if tt.wantErr {
				assert.True(t, services.IsValidationError(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRateService_Create(t *testing.T) {
	repo := new(mocks.RateRepository)
	service := NewRateService(repo, audit.Nop{}, zap.NewNop())
	orgID := uuid.New()

	repo.On("Create", mock.Anything, mock.MatchedBy(func(r *models.PhotographerRate) bool {
		return r.OrgID == orgID && r.ServiceType == nil && r.RateValue == 2500 && r.IsActive
	})).Return(nil)

	rate, err := service.Create(context.Background(), orgID, uuid.New(), RateInput{
		PhotographerID: uuid.New(),
		ServiceType:    strPtr(""),
		RateType:       models.RateTypeFixed,
		RateValue:      2500,
	})

	require.NoError(t, err)
	assert.True(t, rate.IsDefault())
	repo.AssertExpectations(t)
}

func TestRateService_CreateInactive(t *testing.T) {
	repo := new(mocks.RateRepository)
	service := NewRateService(repo, audit.Nop{}, zap.NewNop())
	inactive := false

	repo.On("Create", mock.Anything, mock.AnythingOfType("*models.PhotographerRate")).Return(nil)

	rate, err := service.Create(context.Background(), uuid.New(), uuid.New(), RateInput{
		PhotographerID: uuid.New(),
		RateType:       models.RateTypeFixed,
		RateValue:      2500,
		IsActive:       &inactive,
	})

	require.NoError(t, err)
	assert.False(t, rate.IsActive)
}

func TestRateService_CreateNormalizesServiceType(t *testing.T) {
	repo := new(mocks.RateRepository)
	service := NewRateService(repo, audit.Nop{}, zap.NewNop())

	repo.On("Create", mock.Anything, mock.MatchedBy(func(r *models.PhotographerRate) bool {
		return r.ServiceType != nil && *r.ServiceType == "wedding"
	})).Return(nil)

	_, err := service.Create(context.Background(), uuid.New(), uuid.New(), RateInput{
		PhotographerID: uuid.New(),
		ServiceType:    strPtr("  Wedding "),
		RateType:       models.RateTypePercentage,
		RateValue:      4000,
	})

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestRateService_UpdateKeepsActiveWhenOmitted(t *testing.T) {
	repo := new(mocks.RateRepository)
	service := NewRateService(repo, audit.Nop{}, zap.NewNop())
	orgID := uuid.New()
	existing := models.NewPhotographerRate(orgID, uuid.New(), models.RateTypeFixed, 100)

	repo.On("GetByID", mock.Anything, orgID, existing.ID).Return(existing, nil)
	repo.On("Update", mock.Anything, existing).Return(nil)

	rate, err := service.Update(context.Background(), orgID, uuid.New(), existing.ID, RateInput{
		PhotographerID: existing.PhotographerID,
		RateType:       models.RateTypeFixed,
		RateValue:      200,
	})

	require.NoError(t, err)
	assert.True(t, rate.IsActive)
	assert.Equal(t, int64(200), rate.RateValue)
}

func TestRateService_UpdateNotFound(t *testing.T) {
	repo := new(mocks.RateRepository)
	service := NewRateService(repo, audit.Nop{}, zap.NewNop())
	orgID, rateID := uuid.New(), uuid.New()

	repo.On("GetByID", mock.Anything, orgID, rateID).Return(nil, repositories.ErrNotFound)

	_, err := service.Update(context.Background(), orgID, uuid.New(), rateID, RateInput{
		PhotographerID: uuid.New(),
		RateType:       models.RateTypeFixed,
		RateValue:      100,
	})
	assert.ErrorIs(t, err, services.ErrRateNotFound)
}

func TestRateService_ComputeEarning(t *testing.T) {
	orgID, photographer := uuid.New(), uuid.New()
	start := time.Date(2024, 6, 1, 14, 0, 0, 0, time.UTC)

	booking := models.NewBooking(orgID, uuid.New(), "Smith wedding", "wedding", start, start.Add(3*time.Hour))
	booking.PhotographerID = &photographer
	booking.PriceCents = 300000

	def := models.NewPhotographerRate(orgID, photographer, models.RateTypeHourly, 4000)
	wedding := models.NewPhotographerRate(orgID, photographer, models.RateTypePercentage, 4000)
	wedding.ServiceType = strPtr("wedding")

	t.Run("service specific rate", func(t *testing.T) {
		repo := new(mocks.RateRepository)
		repo.On("ListByPhotographer", mock.Anything, orgID, photographer).
			Return([]*models.PhotographerRate{def, wedding}, nil)
		service := NewRateService(repo, audit.Nop{}, zap.NewNop())

		amount, rate, err := service.ComputeEarning(context.Background(), booking)
		require.NoError(t, err)
		assert.Equal(t, int64(120000), amount)
		assert.Same(t, wedding, rate)
	})

	t.Run("service type differs in case", func(t *testing.T) {
		legacy := models.NewPhotographerRate(orgID, photographer, models.RateTypePercentage, 5000)
		legacy.ServiceType = strPtr("Wedding")

		repo := new(mocks.RateRepository)
		repo.On("ListByPhotographer", mock.Anything, orgID, photographer).
			Return([]*models.PhotographerRate{def, legacy}, nil)
		service := NewRateService(repo, audit.Nop{}, zap.NewNop())

		amount, rate, err := service.ComputeEarning(context.Background(), booking)
		require.NoError(t, err)
		assert.Equal(t, int64(150000), amount)
		assert.Same(t, legacy, rate)
	})

	t.Run("default hourly rate", func(t *testing.T) {
		repo := new(mocks.RateRepository)
		repo.On("ListByPhotographer", mock.Anything, orgID, photographer).
			Return([]*models.PhotographerRate{def}, nil)
		service := NewRateService(repo, audit.Nop{}, zap.NewNop())

		amount, _, err := service.ComputeEarning(context.Background(), booking)
		require.NoError(t, err)
		assert.Equal(t, int64(12000), amount)
	})

	t.Run("repository failure", func(t *testing.T) {
		repo := new(mocks.RateRepository)
		repo.On("ListByPhotographer", mock.Anything, orgID, photographer).Return(nil, errors.New("boom"))
		service := NewRateService(repo, audit.Nop{}, zap.NewNop())

		_, _, err := service.ComputeEarning(context.Background(), booking)
		assert.True(t, services.IsInternalError(err))
	})

	t.Run("booking without photographer", func(t *testing.T) {
		service := NewRateService(new(mocks.RateRepository), audit.Nop{}, zap.NewNop())
		unassigned := models.NewBooking(orgID, uuid.New(), "x", "wedding", start, start.Add(time.Hour))

		_, _, err := service.ComputeEarning(context.Background(), unassigned)
		assert.True(t, services.IsValidationError(err))
	})
}
