package bookings

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

type recordingDispatcher struct {
	events []models.WorkflowEvent
}

func (d *recordingDispatcher) Dispatch(ctx context.Context, event models.WorkflowEvent) {
	d.events = append(d.events, event)
}

type stubEarnings struct {
	err      error
	bookings []uuid.UUID
}

func (e *stubEarnings) RecordForBooking(ctx context.Context, b *models.Booking) (*models.PhotographerEarning, error) {
	e.bookings = append(e.bookings, b.ID)
	if e.err != nil {
		return nil, e.err
	}
	return models.NewEarning(b.OrgID, *b.PhotographerID, 100, "Booking"), nil
}

type bookingFixture struct {
	bookings   *mocks.BookingRepository
	clients    *mocks.ClientRepository
	users      *mocks.UserRepository
	tx         *mocks.TxManager
	earnings   *stubEarnings
	dispatcher *recordingDispatcher
	service    *BookingService
}

func newBookingFixture() *bookingFixture {
	f := &bookingFixture{
		bookings:   new(mocks.BookingRepository),
		clients:    new(mocks.ClientRepository),
		users:      new(mocks.UserRepository),
		tx:         &mocks.TxManager{},
		earnings:   &stubEarnings{},
		dispatcher: &recordingDispatcher{},
	}
	repos := &repositories.Repositories{Bookings: f.bookings, Clients: f.clients, Users: f.users}
	f.service = NewBookingService(repos, f.tx, f.earnings, f.dispatcher, audit.Nop{}, zap.NewNop())
	return f
}

var sessionStart = time.Date(2024, 9, 14, 15, 0, 0, 0, time.UTC)

func TestBookingService_Create(t *testing.T) {
	orgID, actorID, clientID := uuid.New(), uuid.New(), uuid.New()
	photographer := &models.User{ID: uuid.New(), OrgID: orgID, Role: models.RolePhotographer}

	input := func() BookingInput {
		return BookingInput{
			ClientID:       clientID,
			PhotographerID: &photographer.ID,
			ServiceType:    "Wedding",
			Title:          "Ceremony",
			StartsAt:       sessionStart,
			EndsAt:         sessionStart.Add(4 * time.Hour),
			PriceCents:     300000,
		}
	}

	t.Run("free slot", func(t *testing.T) {
		f := newBookingFixture()
		f.clients.On("GetByID", mock.Anything, orgID, clientID).Return(&models.Client{ID: clientID}, nil)
		f.users.On("GetByID", mock.Anything, photographer.ID).Return(photographer, nil)
		f.users.On("LockForUpdate", mock.Anything, photographer.ID).Return(nil)
		f.bookings.On("FindOverlapping", mock.Anything, orgID, photographer.ID, sessionStart, sessionStart.Add(4*time.Hour), (*uuid.UUID)(nil)).
			Return([]*models.Booking{}, nil)
		f.bookings.On("Create", mock.Anything, mock.AnythingOfType("*models.Booking")).Return(nil)

		booking, err := f.service.Create(context.Background(), orgID, actorID, input())
		require.NoError(t, err)
		assert.Equal(t, models.BookingStatusPending, booking.Status)
		assert.Equal(t, "wedding", booking.ServiceType)
		assert.Equal(t, int64(240), booking.DurationMinutes())
		assert.Equal(t, 1, f.tx.Commits)
		f.users.AssertExpectations(t)
	})

	t.Run("photographer is locked before the overlap check", func(t *testing.T) {
		f := newBookingFixture()
		var order []string
		f.clients.On("GetByID", mock.Anything, orgID, clientID).Return(&models.Client{ID: clientID}, nil)
		f.users.On("GetByID", mock.Anything, photographer.ID).Return(photographer, nil)
		f.users.On("LockForUpdate", mock.Anything, photographer.ID).
			Run(func(mock.Arguments) { order = append(order, "lock") }).Return(nil)
		f.bookings.On("FindOverlapping", mock.Anything, orgID, photographer.ID, mock.Anything, mock.Anything, mock.Anything).
			Run(func(mock.Arguments) { order = append(order, "overlap") }).Return([]*models.Booking{}, nil)
		f.bookings.On("Create", mock.Anything, mock.AnythingOfType("*models.Booking")).
			Run(func(mock.Arguments) { order = append(order, "create") }).Return(nil)

		_, err := f.service.Create(context.Background(), orgID, actorID, input())
		require.NoError(t, err)
		assert.Equal(t, []string{"lock", "overlap", "create"}, order)
		assert.Equal(t, 1, f.tx.Begins)
	})

	t.Run("overlap is a conflict", func(t *testing.T) {
		f := newBookingFixture()
		other := models.NewBooking(orgID, uuid.New(), "Other", "portrait", sessionStart.Add(time.Hour), sessionStart.Add(2*time.Hour))
		f.clients.On("GetByID", mock.Anything, orgID, clientID).Return(&models.Client{ID: clientID}, nil)
		f.users.On("GetByID", mock.Anything, photographer.ID).Return(photographer, nil)
		f.users.On("LockForUpdate", mock.Anything, photographer.ID).Return(nil)
		f.bookings.On("FindOverlapping", mock.Anything, orgID, photographer.ID, mock.Anything, mock.Anything, mock.Anything).
			Return([]*models.Booking{other}, nil)

		_, err := f.service.Create(context.Background(), orgID, actorID, input())
		assert.ErrorIs(t, err, services.ErrBookingConflict)
		assert.Equal(t, 1, f.tx.Rollbacks)
		assert.True(t, services.IsConflictError(err))
		assert.Equal(t, other.ID.String(), services.GetErrorDetails(err)["conflicting_booking_id"])
		assert.Empty(t, services.ErrBookingConflict.Details)
		f.bookings.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("end before start", func(t *testing.T) {
		f := newBookingFixture()
		in := input()
		in.EndsAt = in.StartsAt
		f.clients.On("GetByID", mock.Anything, orgID, clientID).Return(&models.Client{ID: clientID}, nil)

		_, err := f.service.Create(context.Background(), orgID, actorID, in)
		assert.ErrorIs(t, err, services.ErrInvalidDateRange)
	})

	t.Run("photographer from another org", func(t *testing.T) {
		f := newBookingFixture()
		outsider := &models.User{ID: photographer.ID, OrgID: uuid.New()}
		f.clients.On("GetByID", mock.Anything, orgID, clientID).Return(&models.Client{ID: clientID}, nil)
		f.users.On("GetByID", mock.Anything, photographer.ID).Return(outsider, nil)

		_, err := f.service.Create(context.Background(), orgID, actorID, input())
		assert.ErrorIs(t, err, services.ErrUserNotFound)
	})
}

func bookingIn(orgID uuid.UUID, status models.BookingStatus) *models.Booking {
	photographer := uuid.New()
	b := models.NewBooking(orgID, uuid.New(), "Headshots", "portrait", sessionStart, sessionStart.Add(time.Hour))
	b.PhotographerID = &photographer
	b.Status = status
	return b
}

func TestBookingService_Transitions(t *testing.T) {
	orgID, actorID := uuid.New(), uuid.New()

	t.Run("confirm emits booking_confirmed", func(t *testing.T) {
		f := newBookingFixture()
		b := bookingIn(orgID, models.BookingStatusPending)
		f.bookings.On("GetByID", mock.Anything, orgID, b.ID).Return(b, nil)
		f.bookings.On("Update", mock.Anything, b).Return(nil)

		_, err := f.service.Confirm(context.Background(), orgID, actorID, b.ID)
		require.NoError(t, err)
		assert.Equal(t, models.BookingStatusConfirmed, b.Status)
		require.Len(t, f.dispatcher.events, 1)
		assert.Equal(t, models.TriggerBookingConfirmed, f.dispatcher.events[0].Trigger)
	})

	t.Run("complete records earning", func(t *testing.T) {
		f := newBookingFixture()
		b := bookingIn(orgID, models.BookingStatusConfirmed)
		f.bookings.On("GetByID", mock.Anything, orgID, b.ID).Return(b, nil)
		f.bookings.On("Update", mock.Anything, b).Return(nil)

		_, err := f.service.Complete(context.Background(), orgID, actorID, b.ID)
		require.NoError(t, err)
		assert.Equal(t, models.BookingStatusCompleted, b.Status)
		assert.Equal(t, []uuid.UUID{b.ID}, f.earnings.bookings)
		assert.Equal(t, 1, f.tx.Commits)
		require.Len(t, f.dispatcher.events, 1)
		assert.Equal(t, models.TriggerBookingCompleted, f.dispatcher.events[0].Trigger)
	})

	t.Run("complete without pay rate still completes", func(t *testing.T) {
		f := newBookingFixture()
		f.earnings.err = services.ErrRateNotFound
		b := bookingIn(orgID, models.BookingStatusConfirmed)
		f.bookings.On("GetByID", mock.Anything, orgID, b.ID).Return(b, nil)
		f.bookings.On("Update", mock.Anything, b).Return(nil)

		_, err := f.service.Complete(context.Background(), orgID, actorID, b.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, f.tx.Commits)
	})

	t.Run("earning failure rolls back completion", func(t *testing.T) {
		f := newBookingFixture()
		f.earnings.err = services.WrapInternal("failed to create earning", errors.New("db"))
		b := bookingIn(orgID, models.BookingStatusConfirmed)
		f.bookings.On("GetByID", mock.Anything, orgID, b.ID).Return(b, nil)
		f.bookings.On("Update", mock.Anything, b).Return(nil)

		_, err := f.service.Complete(context.Background(), orgID, actorID, b.ID)
		assert.True(t, services.IsInternalError(err))
		assert.Equal(t, 1, f.tx.Rollbacks)
		assert.Empty(t, f.dispatcher.events)
	})

	t.Run("pending cannot complete", func(t *testing.T) {
		f := newBookingFixture()
		b := bookingIn(orgID, models.BookingStatusPending)
		f.bookings.On("GetByID", mock.Anything, orgID, b.ID).Return(b, nil)

		_, err := f.service.Complete(context.Background(), orgID, actorID, b.ID)
		assert.ErrorIs(t, err, services.ErrInvalidTransition)
		assert.Empty(t, f.earnings.bookings)
	})

	t.Run("cancel confirmed without workflow", func(t *testing.T) {
		f := newBookingFixture()
		b := bookingIn(orgID, models.BookingStatusConfirmed)
		f.bookings.On("GetByID", mock.Anything, orgID, b.ID).Return(b, nil)
		f.bookings.On("Update", mock.Anything, b).Return(nil)

		_, err := f.service.Cancel(context.Background(), orgID, actorID, b.ID)
		require.NoError(t, err)
		assert.Equal(t, models.BookingStatusCancelled, b.Status)
		assert.Empty(t, f.dispatcher.events)
	})

	t.Run("completed cannot be cancelled", func(t *testing.T) {
		f := newBookingFixture()
		b := bookingIn(orgID, models.BookingStatusCompleted)
		f.bookings.On("GetByID", mock.Anything, orgID, b.ID).Return(b, nil)

		_, err := f.service.Cancel(context.Background(), orgID, actorID, b.ID)
		assert.ErrorIs(t, err, services.ErrInvalidTransition)
	})
}

func TestBookingService_List(t *testing.T) {
	f := newBookingFixture()
	orgID := uuid.New()
	from := sessionStart
	to := sessionStart.Add(-time.Hour)

	_, err := f.service.List(context.Background(), orgID, models.BookingFilter{From: &from, To: &to})
	assert.ErrorIs(t, err, services.ErrInvalidDateRange)

	f.bookings.On("List", mock.Anything, orgID, models.BookingFilter{Limit: 50}).Return([]*models.Booking{}, nil)
	list, err := f.service.List(context.Background(), orgID, models.BookingFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
}
