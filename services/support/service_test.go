package support

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
	"github.com/photoproos/platform/services/ratelimit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(limiter *ratelimit.Limiter) (*SupportService, *mocks.SupportRepository, *mocks.TxManager) {
	repo := new(mocks.SupportRepository)
	tx := &mocks.TxManager{}
	return NewSupportService(repo, tx, limiter, audit.Nop{}, zap.NewNop()), repo, tx
}

func member(orgID uuid.UUID) *models.User {
	return models.NewUser("m@example.com", "user_m", orgID, models.RoleMember)
}

func staff() *models.User {
	u := models.NewUser("help@photoproos.com", "user_staff", uuid.New(), models.RoleOwner)
	u.IsSuperAdmin = true
	return u
}

func TestSupportService_CreateTicket(t *testing.T) {
	service, repo, tx := newTestService(nil)
	user := member(uuid.New())
	repo.On("CreateTicket", mock.Anything, mock.AnythingOfType("*models.SupportTicket")).Return(nil)
	repo.On("CreateMessage", mock.Anything, mock.AnythingOfType("*models.SupportMessage")).Return(nil)

	ticket, err := service.CreateTicket(context.Background(), user, TicketInput{
		Subject: " Gallery upload stuck ",
		Message: "Uploads freeze at 99%",
	})
	require.NoError(t, err)
	assert.Equal(t, "Gallery upload stuck", ticket.Subject)
	assert.Equal(t, models.TicketOpen, ticket.Status)
	assert.Equal(t, models.PriorityNormal, ticket.Priority)
	require.Len(t, ticket.Messages, 1)
	assert.False(t, ticket.Messages[0].IsStaff)
	assert.Equal(t, 1, tx.Commits)

	_, err = service.CreateTicket(context.Background(), user, TicketInput{Subject: "x"})
	assert.True(t, services.IsValidationError(err))
}

func TestSupportService_ListTickets(t *testing.T) {
	t.Run("members see their organization", func(t *testing.T) {
		service, repo, _ := newTestService(nil)
		user := member(uuid.New())
		repo.On("ListTickets", mock.Anything, &user.OrgID, models.TicketOpen, 50, 0).Return([]*models.SupportTicket{}, nil)

		_, err := service.ListTickets(context.Background(), user, models.TicketOpen, 0, 0)
		require.NoError(t, err)
	})

	t.Run("staff see every organization", func(t *testing.T) {
		service, repo, _ := newTestService(nil)
		repo.On("ListTickets", mock.Anything, (*uuid.UUID)(nil), models.TicketStatus(""), 50, 0).Return([]*models.SupportTicket{}, nil)

		_, err := service.ListTickets(context.Background(), staff(), "", 0, 0)
		require.NoError(t, err)
	})
}

func TestSupportService_AddMessage(t *testing.T) {
	orgID := uuid.New()

	t.Run("staff reply moves open to in_progress", func(t *testing.T) {
		service, repo, _ := newTestService(nil)
		ticket := models.NewSupportTicket(orgID, uuid.New(), "Help", "billing", "")
		repo.On("GetTicket", mock.Anything, ticket.ID).Return(ticket, nil)
		repo.On("CreateMessage", mock.Anything, mock.Anything).Return(nil)
		repo.On("UpdateTicket", mock.Anything, ticket).Return(nil)

		msg, err := service.AddMessage(context.Background(), staff(), ticket.ID, "Looking into it")
		require.NoError(t, err)
		assert.True(t, msg.IsStaff)
		assert.Equal(t, models.TicketInProgress, ticket.Status)
	})

	t.Run("customer reply reopens resolved", func(t *testing.T) {
		service, repo, _ := newTestService(nil)
		ticket := models.NewSupportTicket(orgID, uuid.New(), "Help", "billing", "")
		ticket.Status = models.TicketResolved
		repo.On("GetTicket", mock.Anything, ticket.ID).Return(ticket, nil)
		repo.On("CreateMessage", mock.Anything, mock.Anything).Return(nil)
		repo.On("UpdateTicket", mock.Anything, ticket).Return(nil)

		_, err := service.AddMessage(context.Background(), member(orgID), ticket.ID, "Still broken")
		require.NoError(t, err)
		assert.Equal(t, models.TicketOpen, ticket.Status)
	})

	t.Run("closed ticket", func(t *testing.T) {
		service, repo, _ := newTestService(nil)
		ticket := models.NewSupportTicket(orgID, uuid.New(), "Help", "billing", "")
		ticket.Status = models.TicketClosed
		repo.On("GetTicket", mock.Anything, ticket.ID).Return(ticket, nil)

		_, err := service.AddMessage(context.Background(), member(orgID), ticket.ID, "Hello?")
		assert.ErrorIs(t, err, services.ErrInvalidTransition)
	})

	t.Run("other organization's ticket is hidden", func(t *testing.T) {
		service, repo, _ := newTestService(nil)
		ticket := models.NewSupportTicket(uuid.New(), uuid.New(), "Help", "billing", "")
		repo.On("GetTicket", mock.Anything, ticket.ID).Return(ticket, nil)

		_, err := service.AddMessage(context.Background(), member(orgID), ticket.ID, "Hi")
		assert.ErrorIs(t, err, services.ErrTicketNotFound)
	})

	t.Run("missing ticket", func(t *testing.T) {
		service, repo, _ := newTestService(nil)
		id := uuid.New()
		repo.On("GetTicket", mock.Anything, id).Return(nil, repositories.ErrNotFound)

		_, err := service.AddMessage(context.Background(), member(orgID), id, "Hi")
		assert.ErrorIs(t, err, services.ErrTicketNotFound)
	})

	t.Run("posting is rate limited per user", func(t *testing.T) {
		service, repo, _ := newTestService(ratelimit.PerMinute(2, time.Hour))
		ticket := models.NewSupportTicket(orgID, uuid.New(), "Help", "billing", "")
		repo.On("GetTicket", mock.Anything, ticket.ID).Return(ticket, nil)
		repo.On("CreateMessage", mock.Anything, mock.Anything).Return(nil)
		repo.On("UpdateTicket", mock.Anything, ticket).Return(nil)

		user := member(orgID)
		for i := 0; i < 2; i++ {
			_, err := service.AddMessage(context.Background(), user, ticket.ID, "ping")
			require.NoError(t, err)
		}
		_, err := service.AddMessage(context.Background(), user, ticket.ID, "ping")
		assert.ErrorIs(t, err, services.ErrRateLimitExceeded)
		assert.Equal(t, 30, services.GetErrorDetails(err)["retry_after_seconds"])

		_, err = service.AddMessage(context.Background(), member(orgID), ticket.ID, "another user")
		require.NoError(t, err)
	})
}

func TestSupportService_ChangeStatus(t *testing.T) {
	service, repo, _ := newTestService(nil)
	user := member(uuid.New())
	ticket := models.NewSupportTicket(user.OrgID, user.ID, "Help", "", "")
	repo.On("GetTicket", mock.Anything, ticket.ID).Return(ticket, nil)
	repo.On("UpdateTicket", mock.Anything, ticket).Return(nil)

	updated, err := service.ChangeStatus(context.Background(), user, ticket.ID, models.TicketResolved)
	require.NoError(t, err)
	assert.Equal(t, models.TicketResolved, updated.Status)

	_, err = service.ChangeStatus(context.Background(), user, ticket.ID, "bogus")
	assert.True(t, services.IsValidationError(err))
}
