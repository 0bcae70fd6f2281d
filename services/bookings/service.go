// Package bookings schedules photo sessions and drives their lifecycle.
package bookings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/photoproos/platform/models"
	"github.com/photoproos/platform/repositories"
	"github.com/photoproos/platform/services"
	"github.com/photoproos/platform/services/audit"
	"go.uber.org/zap"
)

// Dispatcher offers business events to workflows
type Dispatcher interface {
	Dispatch(ctx context.Context, event models.WorkflowEvent)
}

// EarningRecorder records what a photographer earns for a completed booking
type EarningRecorder interface {
	RecordForBooking(ctx context.Context, booking *models.Booking) (*models.PhotographerEarning, error)
}

// BookingInput is the editable part of a booking
type BookingInput struct {
	ClientID       uuid.UUID  `json:"client_id" validate:"required"`
	PhotographerID *uuid.UUID `json:"photographer_id"`
	ServiceType    string     `json:"service_type" validate:"required,max=100"`
	Title          string     `json:"title" validate:"required,max=200"`
	Location       string     `json:"location" validate:"max=500"`
	StartsAt       time.Time  `json:"starts_at" validate:"required"`
	EndsAt         time.Time  `json:"ends_at" validate:"required"`
	PriceCents     int64      `json:"price_cents" validate:"gte=0"`
	Notes          string     `json:"notes" validate:"max=2000"`
}

// BookingService manages bookings
type BookingService struct {
	bookingRepo repositories.BookingRepository
	clientRepo  repositories.ClientRepository
	userRepo    repositories.UserRepository
	txManager   repositories.TransactionManager
	earnings    EarningRecorder
	dispatcher  Dispatcher
	audit       audit.Recorder
	logger      *zap.Logger
}

// NewBookingService creates a new BookingService instance
func NewBookingService(
	repos *repositories.Repositories,
	txManager repositories.TransactionManager,
	earnings EarningRecorder,
	dispatcher Dispatcher,
	recorder audit.Recorder,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		bookingRepo: repos.Bookings,
		clientRepo:  repos.Clients,
		userRepo:    repos.Users,
		txManager:   txManager,
		earnings:    earnings,
		dispatcher:  dispatcher,
		audit:       recorder,
		logger:      logger,
	}
}

// checkSlot validates the time range and the photographer's availability.
// Called inside a transaction, it holds the photographer's row lock so
// concurrent bookings of the same photographer are checked one at a time.
func (s *BookingService) checkSlot(ctx context.Context, orgID uuid.UUID, in BookingInput, excludeID *uuid.UUID) error {
	if !in.EndsAt.After(in.StartsAt) {
		return services.Wrap(services.ErrInvalidDateRange, fmt.Errorf("ends_at must be after starts_at"))
	}
	if in.PriceCents < 0 {
		return services.ErrInvalidAmount
	}
	if in.PhotographerID == nil {
		return nil
	}

	photographer, err := s.userRepo.GetByID(ctx, *in.PhotographerID)
	if err != nil {
		return services.MapRepoError(err, services.ErrUserNotFound, "failed to load photographer")
	}
	if photographer.OrgID != orgID {
		return services.ErrUserNotFound
	}
	if err := s.userRepo.LockForUpdate(ctx, photographer.ID); err != nil {
		return services.MapRepoError(err, services.ErrUserNotFound, "failed to lock photographer")
	}

	overlapping, err := s.bookingRepo.FindOverlapping(ctx, orgID, *in.PhotographerID, in.StartsAt.UTC(), in.EndsAt.UTC(), excludeID)
	if err != nil {
		return services.WrapInternal("failed to check availability", err)
	}
	if len(overlapping) > 0 {
		return services.Wrap(services.ErrBookingConflict, nil).WithDetail("conflicting_booking_id", overlapping[0].ID.String())
	}
	return nil
}

// Create schedules a pending booking
func (s *BookingService) Create(ctx context.Context, orgID, actorID uuid.UUID, in BookingInput) (*models.Booking, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, services.Validation("title is required")
	}
	if _, err := s.clientRepo.GetByID(ctx, orgID, in.ClientID); err != nil {
		return nil, services.MapRepoError(err, services.ErrClientNotFound, "failed to load client")
	}

	booking := models.NewBooking(orgID, in.ClientID, strings.TrimSpace(in.Title), models.NormalizeServiceType(in.ServiceType), in.StartsAt, in.EndsAt)
	booking.PhotographerID = in.PhotographerID
	booking.Location = in.Location
	booking.PriceCents = in.PriceCents
	booking.Notes = in.Notes

	err := services.WithTransaction(ctx, s.txManager, func(ctx context.Context, tx repositories.Transaction) error {
		if err := s.checkSlot(ctx, orgID, in, nil); err != nil {
			return err
		}
		if err := s.bookingRepo.Create(ctx, booking); err != nil {
			return services.MapRepoError(err, services.ErrBookingNotFound, "failed to create booking")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, audit.Entry{
		OrgID:        orgID,
		UserID:       actorID,
		Action:       models.AuditActionBookingCreated,
		ResourceType: "booking",
		ResourceID:   booking.ID,
	})
	return booking, nil
}

// Get returns one booking
func (s *BookingService) Get(ctx context.Context, orgID, id uuid.UUID) (*models.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, orgID, id)
	if err != nil {
		return nil, services.MapRepoError(err, services.ErrBookingNotFound, "failed to load booking")
	}
	return booking, nil
}

// List returns bookings matching the filter
func (s *BookingService) List(ctx context.Context, orgID uuid.UUID, filter models.BookingFilter) ([]*models.Booking, error) {
	if filter.Limit <= 0 || filter.Limit > 200 {
		filter.Limit = 50
	}
	if filter.From != nil && filter.To != nil && !filter.To.After(*filter.From) {
		return nil, services.ErrInvalidDateRange
	}
	list, err := s.bookingRepo.List(ctx, orgID, filter)
	if err != nil {
		return nil, services.WrapInternal("failed to list bookings", err)
	}
	return list, nil
}

// Update reschedules or edits a pending or confirmed booking
func (s *BookingService) Update(ctx context.Context, orgID, actorID, id uuid.UUID, in BookingInput) (*models.Booking, error) {
	booking, err := s.Get(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if booking.Status == models.BookingStatusCompleted || booking.Status == models.BookingStatusCancelled {
		return nil, services.Wrap(services.ErrInvalidTransition, fmt.Errorf("%s bookings cannot be edited", booking.Status))
	}
	if in.ClientID != booking.ClientID {
		if _, err := s.clientRepo.GetByID(ctx, orgID, in.ClientID); err != nil {
			return nil, services.MapRepoError(err, services.ErrClientNotFound, "failed to load client")
		}
	}

	booking.ClientID = in.ClientID
	booking.PhotographerID = in.PhotographerID
	booking.ServiceType = models.NormalizeServiceType(in.ServiceType)
	booking.Title = strings.TrimSpace(in.Title)
	booking.Location = in.Location
	booking.StartsAt = in.StartsAt.UTC()
	booking.EndsAt = in.EndsAt.UTC()
	booking.PriceCents = in.PriceCents
	booking.Notes = in.Notes
	booking.UpdatedAt = time.Now().UTC()

	err = services.WithTransaction(ctx, s.txManager, func(ctx context.Context, tx repositories.Transaction) error {
		if err := s.checkSlot(ctx, orgID, in, &booking.ID); err != nil {
			return err
		}
		if err := s.bookingRepo.Update(ctx, booking); err != nil {
			return services.MapRepoError(err, services.ErrBookingNotFound, "failed to update booking")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return booking, nil
}

// Confirm moves a pending booking to confirmed
func (s *BookingService) Confirm(ctx context.Context, orgID, actorID, id uuid.UUID) (*models.Booking, error) {
	booking, err := s.Get(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if err := s.setStatus(ctx, booking, models.BookingStatusConfirmed); err != nil {
		return nil, err
	}
	s.afterTransition(ctx, actorID, booking, models.TriggerBookingConfirmed)
	return booking, nil
}

// Cancel cancels a pending or confirmed booking
func (s *BookingService) Cancel(ctx context.Context, orgID, actorID, id uuid.UUID) (*models.Booking, error) {
	booking, err := s.Get(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if err := s.setStatus(ctx, booking, models.BookingStatusCancelled); err != nil {
		return nil, err
	}
	s.afterTransition(ctx, actorID, booking, "")
	return booking, nil
}

// Complete marks a confirmed booking done and records the photographer's earning in the same transaction.
// A photographer without a matching pay rate earns nothing for the booking.
func (s *BookingService) Complete(ctx context.Context, orgID, actorID, id uuid.UUID) (*models.Booking, error) {
	var booking *models.Booking
	err := services.WithTransaction(ctx, s.txManager, func(ctx context.Context, tx repositories.Transaction) error {
		var err error
		if booking, err = s.Get(ctx, orgID, id); err != nil {
			return err
		}
		if err := s.setStatus(ctx, booking, models.BookingStatusCompleted); err != nil {
			return err
		}
		if booking.PhotographerID == nil {
			return nil
		}

		earning, err := s.earnings.RecordForBooking(ctx, booking)
		switch {
		case errors.Is(err, services.ErrRateNotFound):
			s.logger.Warn("booking completed without earning",
				zap.String("booking_id", booking.ID.String()),
				zap.String("photographer_id", booking.PhotographerID.String()))
		case err != nil:
			return err
		default:
			s.logger.Debug("booking earning recorded", zap.String("earning_id", earning.ID.String()))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterTransition(ctx, actorID, booking, models.TriggerBookingCompleted)
	return booking, nil
}

func (s *BookingService) setStatus(ctx context.Context, booking *models.Booking, next models.BookingStatus) error {
	if !booking.Status.CanTransition(next) {
		return services.Wrap(services.ErrInvalidTransition, fmt.Errorf("%s -> %s", booking.Status, next))
	}
	booking.Status = next
	booking.UpdatedAt = time.Now().UTC()
	if err := s.bookingRepo.Update(ctx, booking); err != nil {
		return services.MapRepoError(err, services.ErrBookingNotFound, "failed to update booking")
	}
	return nil
}

func (s *BookingService) afterTransition(ctx context.Context, actorID uuid.UUID, booking *models.Booking, trigger models.WorkflowTrigger) {
	s.audit.Record(ctx, audit.Entry{
		OrgID:        booking.OrgID,
		UserID:       actorID,
		Action:       models.AuditActionBookingStatus,
		ResourceType: "booking",
		ResourceID:   booking.ID,
		Details:      map[string]interface{}{"status": string(booking.Status)},
	})

	if trigger == "" {
		return
	}
	clientID := booking.ClientID
	s.dispatcher.Dispatch(ctx, models.NewWorkflowEvent(booking.OrgID, trigger, &clientID, map[string]interface{}{
		"booking_id":   booking.ID.String(),
		"title":        booking.Title,
		"service_type": booking.ServiceType,
		"starts_at":    booking.StartsAt.Format(time.RFC3339),
	}))
}
