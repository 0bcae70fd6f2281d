package earnings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/photoproos/platform/models"
	"github.com/photoproos/platform/repositories"
	"github.com/photoproos/platform/services"
	"github.com/photoproos/platform/services/audit"
	"go.uber.org/zap"
)

// Calculator computes what a photographer earns for a booking
type Calculator interface {
	ComputeEarning(ctx context.Context, booking *models.Booking) (int64, *models.PhotographerRate, error)
}

// EarningService records and manages photographer earnings
type EarningService struct {
	earningRepo repositories.EarningRepository
	txManager   repositories.TransactionManager
	calculator  Calculator
	audit       audit.Recorder
	logger      *zap.Logger
}

// NewEarningService creates a new EarningService instance
func NewEarningService(earningRepo repositories.EarningRepository, txManager repositories.TransactionManager, calculator Calculator, recorder audit.Recorder, logger *zap.Logger) *EarningService {
	return &EarningService{
		earningRepo: earningRepo,
		txManager:   txManager,
		calculator:  calculator,
		audit:       recorder,
		logger:      logger,
	}
}

// RecordForBooking creates the pending earning of a completed booking.
// A booking earns at most once; an existing earning is returned unchanged.
func (s *EarningService) RecordForBooking(ctx context.Context, booking *models.Booking) (*models.PhotographerEarning, error) {
	if booking.PhotographerID == nil {
		return nil, services.Validation("booking has no photographer")
	}

	existing, err := s.earningRepo.GetByBooking(ctx, booking.OrgID, booking.ID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, services.WrapInternal("failed to check booking earning", err)
	}

	amount, rate, err := s.calculator.ComputeEarning(ctx, booking)
	if err != nil {
		return nil, err
	}

	earning := models.NewEarning(booking.OrgID, *booking.PhotographerID, amount, fmt.Sprintf("Booking: %s", booking.Title))
	bookingID := booking.ID
	earning.BookingID = &bookingID
	earning.EarnedAt = booking.EndsAt

	if err := s.earningRepo.Create(ctx, earning); err != nil {
		return nil, services.MapRepoError(err, services.ErrEarningNotFound, "failed to create earning")
	}

	s.logger.Info("earning recorded",
		zap.String("booking_id", booking.ID.String()),
		zap.String("rate_id", rate.ID.String()),
		zap.Int64("amount_cents", amount))
	return earning, nil
}

// CreateAdjustment records a manual earning not tied to a booking
func (s *EarningService) CreateAdjustment(ctx context.Context, orgID, actorID, photographerID uuid.UUID, amountCents int64, description string) (*models.PhotographerEarning, error) {
	if photographerID == uuid.Nil {
		return nil, services.Validation("photographer is required")
	}
	if amountCents <= 0 {
		return nil, services.ErrInvalidAmount
	}
	if description == "" {
		description = "Manual adjustment"
	}

	earning := models.NewEarning(orgID, photographerID, amountCents, description)
	if err := s.earningRepo.Create(ctx, earning); err != nil {
		return nil, services.MapRepoError(err, services.ErrEarningNotFound, "failed to create earning")
	}

	s.logger.Info("earning adjustment recorded",
		zap.String("earning_id", earning.ID.String()),
		zap.String("actor_id", actorID.String()))
	return earning, nil
}

// List returns earnings matching the filter
func (s *EarningService) List(ctx context.Context, orgID uuid.UUID, filter models.EarningFilter) ([]*models.PhotographerEarning, error) {
	if filter.Limit <= 0 || filter.Limit > 200 {
		filter.Limit = 50
	}
	list, err := s.earningRepo.List(ctx, orgID, filter)
	if err != nil {
		return nil, services.WrapInternal("failed to list earnings", err)
	}
	return list, nil
}

// Approve moves pending earnings to approved and returns how many changed
func (s *EarningService) Approve(ctx context.Context, orgID, actorID uuid.UUID, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, services.Validation("at least one earning is required")
	}

	n, err := s.earningRepo.Approve(ctx, orgID, ids)
	if err != nil {
		return 0, services.WrapInternal("failed to approve earnings", err)
	}

	s.audit.Record(ctx, audit.Entry{
		OrgID:        orgID,
		UserID:       actorID,
		Action:       models.AuditActionEarningsApproved,
		ResourceType: "photographer_earning",
		Details:      map[string]interface{}{"requested": len(ids), "approved": n},
	})
	return n, nil
}

// Cancel cancels a pending or approved earning that has not been batched.
// The earning row stays locked until the update commits so a concurrent
// payout batch either sees it cancelled or batches it first.
func (s *EarningService) Cancel(ctx context.Context, orgID, actorID, id uuid.UUID) (*models.PhotographerEarning, error) {
	earning, err := services.WithTransactionResult(ctx, s.txManager, func(ctx context.Context, tx repositories.Transaction) (*models.PhotographerEarning, error) {
		earning, err := s.earningRepo.GetByIDForUpdate(ctx, orgID, id)
		if err != nil {
			return nil, services.MapRepoError(err, services.ErrEarningNotFound, "failed to lock earning")
		}

		switch {
		case earning.IsBatched() || earning.Status == models.EarningStatusPaid:
			return nil, services.ErrEarningAlreadyPaid
		case earning.Status == models.EarningStatusCancelled:
			return nil, services.ErrInvalidTransition
		}

		earning.Status = models.EarningStatusCancelled
		earning.UpdatedAt = time.Now().UTC()
		if err := s.earningRepo.Update(ctx, earning); err != nil {
			return nil, services.MapRepoError(err, services.ErrEarningNotFound, "failed to cancel earning")
		}
		return earning, nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, audit.Entry{
		OrgID:        orgID,
		UserID:       actorID,
		Action:       models.AuditActionEarningCancelled,
		ResourceType: "photographer_earning",
		ResourceID:   earning.ID,
	})
	return earning, nil
}
