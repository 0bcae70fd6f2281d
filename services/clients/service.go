// Package clients manages the studio's CRM contacts.
package clients

import (
	"context"
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

// ClientInput is the editable part of a client
type ClientInput struct {
	Name    string   `json:"name" validate:"required,max=200"`
	Email   string   `json:"email" validate:"required,email"`
	Phone   string   `json:"phone" validate:"max=50"`
	Company string   `json:"company" validate:"max=200"`
	Tags    []string `json:"tags" validate:"max=50,dive,max=50"`
	Notes   string   `json:"notes" validate:"max=5000"`
}

// ClientService manages clients
type ClientService struct {
	clientRepo repositories.ClientRepository
	dispatcher Dispatcher
	audit      audit.Recorder
	logger     *zap.Logger
}

// NewClientService creates a new ClientService instance
func NewClientService(clientRepo repositories.ClientRepository, dispatcher Dispatcher, recorder audit.Recorder, logger *zap.Logger) *ClientService {
	return &ClientService{
		clientRepo: clientRepo,
		dispatcher: dispatcher,
		audit:      recorder,
		logger:     logger,
	}
}

// normalizeTags trims, lowercases and de-duplicates tags, keeping first occurrence order
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

func (in ClientInput) apply(c *models.Client) error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return services.Validation("name is required")
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if !strings.Contains(email, "@") {
		return services.ErrInvalidEmail
	}
	c.Name = name
	c.Email = email
	c.Phone = strings.TrimSpace(in.Phone)
	c.Company = strings.TrimSpace(in.Company)
	c.Tags = normalizeTags(in.Tags)
	c.Notes = in.Notes
	return nil
}

// Create adds a client and emits client_created
func (s *ClientService) Create(ctx context.Context, orgID, actorID uuid.UUID, in ClientInput) (*models.Client, error) {
	client := models.NewClient(orgID, "", "")
	if err := in.apply(client); err != nil {
		return nil, err
	}

	if err := s.clientRepo.Create(ctx, client); err != nil {
		return nil, services.MapRepoError(err, services.ErrClientNotFound, "failed to create client")
	}

	s.audit.Record(ctx, audit.Entry{
		OrgID:        orgID,
		UserID:       actorID,
		Action:       models.AuditActionClientCreated,
		ResourceType: "client",
		ResourceID:   client.ID,
	})

	clientID := client.ID
	s.dispatcher.Dispatch(ctx, models.NewWorkflowEvent(orgID, models.TriggerClientCreated, &clientID, map[string]interface{}{
		"client_id": client.ID.String(),
		"name":      client.Name,
		"email":     client.Email,
	}))
	return client, nil
}

// Get returns one client
func (s *ClientService) Get(ctx context.Context, orgID, id uuid.UUID) (*models.Client, error) {
	client, err := s.clientRepo.GetByID(ctx, orgID, id)
	if err != nil {
		return nil, services.MapRepoError(err, services.ErrClientNotFound, "failed to load client")
	}
	return client, nil
}

// List searches clients by name or email and tag
func (s *ClientService) List(ctx context.Context, orgID uuid.UUID, filter models.ClientFilter) ([]*models.Client, error) {
	if filter.Limit <= 0 || filter.Limit > 200 {
		filter.Limit = 50
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	filter.Search = strings.TrimSpace(filter.Search)
	filter.Tag = strings.ToLower(strings.TrimSpace(filter.Tag))

	list, err := s.clientRepo.List(ctx, orgID, filter)
	if err != nil {
		return nil, services.WrapInternal("failed to list clients", err)
	}
	return list, nil
}

// Update replaces a client's details
func (s *ClientService) Update(ctx context.Context, orgID, actorID, id uuid.UUID, in ClientInput) (*models.Client, error) {
	client, err := s.Get(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if err := in.apply(client); err != nil {
		return nil, err
	}
	client.UpdatedAt = time.Now().UTC()

	if err := s.clientRepo.Update(ctx, client); err != nil {
		return nil, services.MapRepoError(err, services.ErrClientNotFound, "failed to update client")
	}

	s.audit.Record(ctx, audit.Entry{
		OrgID:        orgID,
		UserID:       actorID,
		Action:       models.AuditActionClientUpdated,
		ResourceType: "client",
		ResourceID:   client.ID,
	})
	return client, nil
}

// Delete removes a client that has never been invoiced
func (s *ClientService) Delete(ctx context.Context, orgID, actorID, id uuid.UUID) error {
	hasInvoices, err := s.clientRepo.HasInvoices(ctx, orgID, id)
	if err != nil {
		return services.WrapInternal("failed to check client invoices", err)
	}
	if hasInvoices {
		return services.ErrClientHasInvoices
	}

	if err := s.clientRepo.Delete(ctx, orgID, id); err != nil {
		return services.MapRepoError(err, services.ErrClientNotFound, "failed to delete client")
	}

	s.audit.Record(ctx, audit.Entry{
		OrgID:        orgID,
		UserID:       actorID,
		Action:       models.AuditActionClientDeleted,
		ResourceType: "client",
		ResourceID:   id,
	})
	return nil
}
