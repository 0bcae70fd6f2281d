package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/photoproos/platform/models"
	"github.com/photoproos/platform/repositories"
	"go.uber.org/zap"
)

const ticketColumns = `id, org_id, user_id, subject, category, priority, status, created_at, updated_at`

// SupportRepository implements the repositories.SupportRepository interface
type SupportRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewSupportRepository creates a new support repository
func NewSupportRepository(db *DB, logger *zap.Logger) repositories.SupportRepository {
	return &SupportRepository{db: db, logger: logger}
}

func scanTicket(s rowScanner) (*models.SupportTicket, error) {
	t := &models.SupportTicket{}
	err := s.Scan(&t.ID, &t.OrgID, &t.UserID, &t.Subject, &t.Category, &t.Priority, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// CreateTicket creates a new support ticket
func (r *SupportRepository) CreateTicket(ctx context.Context, t *models.SupportTicket) error {
	_, err := GetExecutor(ctx, r.db).ExecContext(ctx, `
		INSERT INTO support_tickets (`+ticketColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, t.ID, t.OrgID, t.UserID, t.Subject, t.Category, t.Priority, t.Status, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return wrapError("create support ticket", err)
	}

	r.logger.Debug("support ticket created", zap.String("id", t.ID.String()), zap.String("org_id", t.OrgID.String()))
	return nil
}

// GetTicket retrieves a ticket without messages
func (r *SupportRepository) GetTicket(ctx context.Context, id uuid.UUID) (*models.SupportTicket, error) {
	t, err := scanTicket(GetExecutor(ctx, r.db).QueryRowContext(ctx,
		`SELECT `+ticketColumns+` FROM support_tickets WHERE id = $1`, id))
	if err != nil {
		return nil, wrapError("get support ticket", err)
	}
	return t, nil
}

// ListTickets lists tickets of one organization, or of all organizations when orgID is nil
func (r *SupportRepository) ListTickets(ctx context.Context, orgID *uuid.UUID, status models.TicketStatus, limit, offset int) ([]*models.SupportTicket, error) {
	rows, err := GetExecutor(ctx, r.db).QueryContext(ctx, `
		SELECT `+ticketColumns+`
		FROM support_tickets
		WHERE ($1::uuid IS NULL OR org_id = $1) AND ($2 = '' OR status = $2)
		ORDER BY updated_at DESC
		LIMIT $3 OFFSET $4
	`, orgID, string(status), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list support tickets: %w", err)
	}
	defer rows.Close()

	tickets := []*models.SupportTicket{}
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan support ticket: %w", err)
		}
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}

// UpdateTicket updates status, priority and category of a ticket
func (r *SupportRepository) UpdateTicket(ctx context.Context, t *models.SupportTicket) error {
	result, err := GetExecutor(ctx, r.db).ExecContext(ctx, `
		UPDATE support_tickets
		SET subject = $2,
		    category = $3,
		    priority = $4,
		    status = $5,
		    updated_at = $6
		WHERE id = $1
	`, t.ID, t.Subject, t.Category, t.Priority, t.Status, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update support ticket: %w", err)
	}
	return requireAffected(result, "support ticket "+t.ID.String())
}

// CreateMessage appends a message to a ticket
func (r *SupportRepository) CreateMessage(ctx context.Context, m *models.SupportMessage) error {
	_, err := GetExecutor(ctx, r.db).ExecContext(ctx, `
		INSERT INTO support_messages (id, ticket_id, author_id, is_staff, body, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, m.ID, m.TicketID, m.AuthorID, m.IsStaff, m.Body, m.CreatedAt)
	if err != nil {
		return wrapError("create support message", err)
	}
	return nil
}

// ListMessages lists the conversation of a ticket, oldest first
func (r *SupportRepository) ListMessages(ctx context.Context, ticketID uuid.UUID) ([]*models.SupportMessage, error) {
	rows, err := GetExecutor(ctx, r.db).QueryContext(ctx, `
		SELECT id, ticket_id, author_id, is_staff, body, created_at
		FROM support_messages
		WHERE ticket_id = $1
		ORDER BY created_at ASC
	`, ticketID)
	if err != nil {
		return nil, fmt.Errorf("failed to list support messages: %w", err)
	}
	defer rows.Close()

	messages := []*models.SupportMessage{}
	for rows.Next() {
		m := &models.SupportMessage{}
		if err := rows.Scan(&m.ID, &m.TicketID, &m.AuthorID, &m.IsStaff, &m.Body, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan support message: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
