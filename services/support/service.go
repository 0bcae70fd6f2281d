// Package support runs the in-app help desk.
package support

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/photoproos/platform/models"
	"github.com/photoproos/platform/repositories"
	"github.com/photoproos/platform/services"
	"github.com/photoproos/platform/services/audit"
	"github.com/photoproos/platform/services/ratelimit"
	"go.uber.org/zap"
)

// TicketInput opens a ticket with its first message
type TicketInput struct {
	Subject  string                `json:"subject" validate:"required,max=200"`
	Category string                `json:"category" validate:"max=50"`
	Priority models.TicketPriority `json:"priority" validate:"omitempty,oneof=low normal high urgent"`
	Message  string                `json:"message" validate:"required,max=10000"`
}

// SupportService manages tickets and their conversations
type SupportService struct {
	supportRepo repositories.SupportRepository
	txManager   repositories.TransactionManager
	limiter     *ratelimit.Limiter
	audit       audit.Recorder
	logger      *zap.Logger
	now         func() time.Time
}

// NewSupportService creates a new SupportService instance.
// limiter throttles message posting per user; nil disables throttling.
func NewSupportService(
	supportRepo repositories.SupportRepository,
	txManager repositories.TransactionManager,
	limiter *ratelimit.Limiter,
	recorder audit.Recorder,
	logger *zap.Logger,
) *SupportService {
	return &SupportService{
		supportRepo: supportRepo,
		txManager:   txManager,
		limiter:     limiter,
		audit:       recorder,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *SupportService) throttle(user *models.User) error {
	if s.limiter == nil {
		return nil
	}
	if !s.limiter.Allow(ratelimit.ScopeKey(user.OrgID, &user.ID)) {
		return services.Wrap(services.ErrRateLimitExceeded, nil).
			WithDetail("retry_after_seconds", int(s.limiter.RetryAfter().Seconds()))
	}
	return nil
}

// CreateTicket opens a ticket for the user's organization
func (s *SupportService) CreateTicket(ctx context.Context, user *models.User, in TicketInput) (*models.SupportTicket, error) {
	subject := strings.TrimSpace(in.Subject)
	body := strings.TrimSpace(in.Message)
	if subject == "" || body == "" {
		return nil, services.Validation("subject and message are required")
	}
	if err := s.throttle(user); err != nil {
		return nil, err
	}

	ticket := models.NewSupportTicket(user.OrgID, user.ID, subject, strings.TrimSpace(in.Category), in.Priority)
	msg := models.NewSupportMessage(ticket.ID, user.ID, body, user.IsSuperAdmin)

	err := services.WithTransaction(ctx, s.txManager, func(ctx context.Context, tx repositories.Transaction) error {
		if err := s.supportRepo.CreateTicket(ctx, ticket); err != nil {
			return services.WrapInternal("failed to create ticket", err)
		}
		if err := s.supportRepo.CreateMessage(ctx, msg); err != nil {
			return services.WrapInternal("failed to create message", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	ticket.Messages = []*models.SupportMessage{msg}
	s.record(ctx, user, ticket, "created")
	return ticket, nil
}

// ListTickets lists the organization's tickets; super admins see every organization
func (s *SupportService) ListTickets(ctx context.Context, user *models.User, status models.TicketStatus, limit, offset int) ([]*models.SupportTicket, error) {
	if status != "" && !status.Valid() {
		return nil, services.Validation("unknown ticket status")
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var orgID *uuid.UUID
	if !user.IsSuperAdmin {
		orgID = &user.OrgID
	}

	tickets, err := s.supportRepo.ListTickets(ctx, orgID, status, limit, offset)
	if err != nil {
		return nil, services.WrapInternal("failed to list tickets", err)
	}
	return tickets, nil
}

func (s *SupportService) load(ctx context.Context, user *models.User, id uuid.UUID) (*models.SupportTicket, error) {
	ticket, err := s.supportRepo.GetTicket(ctx, id)
	if err != nil {
		return nil, services.MapRepoError(err, services.ErrTicketNotFound, "failed to load ticket")
	}
	if ticket.OrgID != user.OrgID && !user.IsSuperAdmin {
		return nil, services.ErrTicketNotFound
	}
	return ticket, nil
}

// GetTicket returns a ticket with its messages in posting order
func (s *SupportService) GetTicket(ctx context.Context, user *models.User, id uuid.UUID) (*models.SupportTicket, error) {
	ticket, err := s.load(ctx, user, id)
	if err != nil {
		return nil, err
	}
	messages, err := s.supportRepo.ListMessages(ctx, id)
	if err != nil {
		return nil, services.WrapInternal("failed to list messages", err)
	}
	ticket.Messages = messages
	return ticket, nil
}

// AddMessage posts to a ticket. A staff reply moves an open ticket to in_progress;
// a customer reply reopens a resolved ticket.
func (s *SupportService) AddMessage(ctx context.Context, user *models.User, ticketID uuid.UUID, body string) (*models.SupportMessage, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, services.Validation("message is required")
	}
	if err := s.throttle(user); err != nil {
		return nil, err
	}

	ticket, err := s.load(ctx, user, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.Status == models.TicketClosed {
		return nil, services.Wrap(services.ErrInvalidTransition, nil).WithDetail("status", string(ticket.Status))
	}

	staff := user.IsSuperAdmin
	msg := models.NewSupportMessage(ticket.ID, user.ID, body, staff)

	next := ticket.Status
	switch {
	case staff && ticket.Status == models.TicketOpen:
		next = models.TicketInProgress
	case !staff && ticket.Status == models.TicketResolved:
		next = models.TicketOpen
	}

	err = services.WithTransaction(ctx, s.txManager, func(ctx context.Context, tx repositories.Transaction) error {
		if err := s.supportRepo.CreateMessage(ctx, msg); err != nil {
			return services.WrapInternal("failed to create message", err)
		}
		ticket.Status = next
		ticket.UpdatedAt = s.now()
		if err := s.supportRepo.UpdateTicket(ctx, ticket); err != nil {
			return services.MapRepoError(err, services.ErrTicketNotFound, "failed to update ticket")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// ChangeStatus moves a ticket to any known status
func (s *SupportService) ChangeStatus(ctx context.Context, user *models.User, ticketID uuid.UUID, status models.TicketStatus) (*models.SupportTicket, error) {
	if !status.Valid() {
		return nil, services.Validation("unknown ticket status").WithDetail("status", string(status))
	}

	ticket, err := s.load(ctx, user, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.Status == status {
		return ticket, nil
	}

	ticket.Status = status
	ticket.UpdatedAt = s.now()
	if err := s.supportRepo.UpdateTicket(ctx, ticket); err != nil {
		return nil, services.MapRepoError(err, services.ErrTicketNotFound, "failed to update ticket")
	}

	s.record(ctx, user, ticket, string(status))
	return ticket, nil
}

func (s *SupportService) record(ctx context.Context, user *models.User, ticket *models.SupportTicket, change string) {
	s.audit.Record(ctx, audit.Entry{
		OrgID:        ticket.OrgID,
		UserID:       user.ID,
		Action:       models.AuditActionTicketChanged,
		ResourceType: "support_ticket",
		ResourceID:   ticket.ID,
		Details:      map[string]interface{}{"change": change},
	})
}
