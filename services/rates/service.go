package rates

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/photoproos/platform/models"
	"github.com/photoproos/platform/repositories"
	"github.com/photoproos/platform/services"
	"github.com/photoproos/platform/services/audit"
	"go.uber.org/zap"
)

// RateInput is the editable part of a pay rate
type RateInput struct {
	PhotographerID uuid.UUID       `json:"photographer_id"`
	ServiceType    *string         `json:"service_type"`
	RateType       models.RateType `json:"rate_type"`
	RateValue      int64           `json:"rate_value"`
	MinPayoutCents *int64          `json:"min_payout_cents"`
	MaxPayoutCents *int64          `json:"max_payout_cents"`
	IsActive       *bool           `json:"is_active"`
}

// Validate checks the rate definition
func (in RateInput) Validate() error {
	if in.PhotographerID == uuid.Nil {
		return services.Validation("photographer is required")
	}
	if !in.RateType.Valid() {
		return services.Validation("rate type must be percentage, fixed or hourly")
	}
	if in.RateValue < 0 {
		return services.Validation("rate value cannot be negative")
	}
	if in.RateType == models.RateTypePercentage && in.RateValue > basisPoints {
		return services.Validation("percentage rate cannot exceed 10000 basis points")
	}
	if in.MinPayoutCents != nil && *in.MinPayoutCents < 0 {
		return services.Validation("minimum payout cannot be negative")
	}
	if in.MaxPayoutCents != nil && *in.MaxPayoutCents < 0 {
		return services.Validation("maximum payout cannot be negative")
	}
	if in.MinPayoutCents != nil && in.MaxPayoutCents != nil && *in.MinPayoutCents > *in.MaxPayoutCents {
		return services.Validation("minimum payout cannot exceed maximum payout")
	}
	return nil
}

// RateService manages photographer pay rates and computes earnings from them
type RateService struct {
	rateRepo repositories.RateRepository
	audit    audit.Recorder
	logger   *zap.Logger
}

// NewRateService creates a new RateService instance
func NewRateService(rateRepo repositories.RateRepository, recorder audit.Recorder, logger *zap.Logger) *RateService {
	return &RateService{
		rateRepo: rateRepo,
		audit:    recorder,
		logger:   logger,
	}
}

// List returns every rate of a photographer
func (s *RateService) List(ctx context.Context, orgID, photographerID uuid.UUID) ([]*models.PhotographerRate, error) {
	rates, err := s.rateRepo.ListByPhotographer(ctx, orgID, photographerID)
	if err != nil {
		return nil, services.WrapInternal("failed to list rates", err)
	}
	return rates, nil
}

// Create adds a pay rate
func (s *RateService) Create(ctx context.Context, orgID, actorID uuid.UUID, in RateInput) (*models.PhotographerRate, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	rate := models.NewPhotographerRate(orgID, in.PhotographerID, in.RateType, in.RateValue)
	rate.ServiceType = normalizeServiceType(in.ServiceType)
	rate.MinPayoutCents = in.MinPayoutCents
	rate.MaxPayoutCents = in.MaxPayoutCents
	if in.IsActive != nil {
		rate.IsActive = *in.IsActive
	}

	if err := s.rateRepo.Create(ctx, rate); err != nil {
		return nil, services.MapRepoError(err, services.ErrRateNotFound, "failed to create rate")
	}

	s.record(ctx, rate, actorID, "created")
	return rate, nil
}

// Update replaces the definition of an existing rate
func (s *RateService) Update(ctx context.Context, orgID, actorID, rateID uuid.UUID, in RateInput) (*models.PhotographerRate, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	rate, err := s.rateRepo.GetByID(ctx, orgID, rateID)
	if err != nil {
		return nil, services.MapRepoError(err, services.ErrRateNotFound, "failed to load rate")
	}

	rate.PhotographerID = in.PhotographerID
	rate.ServiceType = normalizeServiceType(in.ServiceType)
	rate.RateType = in.RateType
	rate.RateValue = in.RateValue
	rate.MinPayoutCents = in.MinPayoutCents
	rate.MaxPayoutCents = in.MaxPayoutCents
	if in.IsActive != nil {
		rate.IsActive = *in.IsActive
	}
	rate.UpdatedAt = time.Now().UTC()

	if err := s.rateRepo.Update(ctx, rate); err != nil {
		return nil, services.MapRepoError(err, services.ErrRateNotFound, "failed to update rate")
	}

	s.record(ctx, rate, actorID, "updated")
	return rate, nil
}

// Delete removes a rate
func (s *RateService) Delete(ctx context.Context, orgID, actorID, rateID uuid.UUID) error {
	if err := s.rateRepo.Delete(ctx, orgID, rateID); err != nil {
		return services.MapRepoError(err, services.ErrRateNotFound, "failed to delete rate")
	}
	s.audit.Record(ctx, audit.Entry{
		OrgID:        orgID,
		UserID:       actorID,
		Action:       models.AuditActionRateChanged,
		ResourceType: "photographer_rate",
		ResourceID:   rateID,
		Details:      map[string]interface{}{"change": "deleted"},
	})
	return nil
}

// ComputeEarning resolves the photographer's rate for the booking and returns the pay in cents
func (s *RateService) ComputeEarning(ctx context.Context, booking *models.Booking) (int64, *models.PhotographerRate, error) {
	if booking.PhotographerID == nil {
		return 0, nil, services.Validation("booking has no photographer")
	}

	all, err := s.rateRepo.ListByPhotographer(ctx, booking.OrgID, *booking.PhotographerID)
	if err != nil {
		return 0, nil, services.WrapInternal("failed to load rates", err)
	}

	rate, err := Resolve(all, *booking.PhotographerID, booking.ServiceType)
	if err != nil {
		return 0, nil, err
	}

	amount, err := Calculate(rate, PayInput{
		RevenueCents:    booking.PriceCents,
		DurationMinutes: booking.DurationMinutes(),
	})
	if err != nil {
		return 0, nil, err
	}

	s.logger.Debug("computed earning",
		zap.String("booking_id", booking.ID.String()),
		zap.String("rate_id", rate.ID.String()),
		zap.Int64("amount_cents", amount))
	return amount, rate, nil
}

func (s *RateService) record(ctx context.Context, rate *models.PhotographerRate, actorID uuid.UUID, change string) {
	s.audit.Record(ctx, audit.Entry{
		OrgID:        rate.OrgID,
		UserID:       actorID,
		Action:       models.AuditActionRateChanged,
		ResourceType: "photographer_rate",
		ResourceID:   rate.ID,
		Details: map[string]interface{}{
			"change":          change,
			"photographer_id": rate.PhotographerID,
			"rate_type":       rate.RateType,
			"rate_value":      rate.RateValue,
		},
	})
}

func normalizeServiceType(st *string) *string {
	if st == nil {
		return nil
	}
	v := models.NormalizeServiceType(*st)
	if v == "" {
		return nil
	}
	return &v
}
