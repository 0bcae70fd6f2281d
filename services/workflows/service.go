// Package workflows runs organization-defined automations when business events happen.
package workflows

import (
	"context"
	"encoding/json"
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

// Poster delivers an event to an external URL
type Poster interface {
	Post(ctx context.Context, target string, event models.WorkflowEvent) error
}

// WorkflowInput is the editable part of a workflow
type WorkflowInput struct {
	Name     string                 `json:"name" validate:"required,max=200"`
	Trigger  models.WorkflowTrigger `json:"trigger" validate:"required"`
	Steps    []models.WorkflowStep  `json:"steps" validate:"required,min=1"`
	IsActive *bool                  `json:"is_active"`
}

func (in WorkflowInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return services.Validation("name is required")
	}
	if !in.Trigger.Valid() {
		return services.Validation(fmt.Sprintf("unknown trigger %q", in.Trigger))
	}
	if err := ValidateSteps(in.Steps); err != nil {
		return services.Validation(err.Error())
	}
	return nil
}

// WorkflowService manages workflows and dispatches events to them
type WorkflowService struct {
	workflowRepo repositories.WorkflowRepository
	clientRepo   repositories.ClientRepository
	notifier     Notifier
	poster       Poster
	audit        audit.Recorder
	logger       *zap.Logger
}

// NewWorkflowService creates a new WorkflowService instance
func NewWorkflowService(
	workflowRepo repositories.WorkflowRepository,
	clientRepo repositories.ClientRepository,
	notifier Notifier,
	poster Poster,
	recorder audit.Recorder,
	logger *zap.Logger,
) *WorkflowService {
	return &WorkflowService{
		workflowRepo: workflowRepo,
		clientRepo:   clientRepo,
		notifier:     notifier,
		poster:       poster,
		audit:        recorder,
		logger:       logger,
	}
}

// Create adds a workflow, active unless the input says otherwise
func (s *WorkflowService) Create(ctx context.Context, orgID, actorID uuid.UUID, in WorkflowInput) (*models.Workflow, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	wf := models.NewWorkflow(orgID, strings.TrimSpace(in.Name), in.Trigger, in.Steps)
	if in.IsActive != nil {
		wf.IsActive = *in.IsActive
	}
	if err := s.workflowRepo.Create(ctx, wf); err != nil {
		return nil, services.MapRepoError(err, services.ErrWorkflowNotFound, "failed to create workflow")
	}

	s.recordChange(ctx, actorID, wf, "created")
	return wf, nil
}

// Get returns one workflow
func (s *WorkflowService) Get(ctx context.Context, orgID, id uuid.UUID) (*models.Workflow, error) {
	wf, err := s.workflowRepo.GetByID(ctx, orgID, id)
	if err != nil {
		return nil, services.MapRepoError(err, services.ErrWorkflowNotFound, "failed to load workflow")
	}
	return wf, nil
}

// List returns every workflow of the organization
func (s *WorkflowService) List(ctx context.Context, orgID uuid.UUID) ([]*models.Workflow, error) {
	list, err := s.workflowRepo.ListByOrg(ctx, orgID)
	if err != nil {
		return nil, services.WrapInternal("failed to list workflows", err)
	}
	return list, nil
}

// Update replaces a workflow's definition
func (s *WorkflowService) Update(ctx context.Context, orgID, actorID, id uuid.UUID, in WorkflowInput) (*models.Workflow, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	wf, err := s.Get(ctx, orgID, id)
	if err != nil {
		return nil, err
	}

	wf.Name = strings.TrimSpace(in.Name)
	wf.Trigger = in.Trigger
	wf.Steps = in.Steps
	if in.IsActive != nil {
		wf.IsActive = *in.IsActive
	}
	wf.UpdatedAt = time.Now().UTC()
	if err := s.workflowRepo.Update(ctx, wf); err != nil {
		return nil, services.MapRepoError(err, services.ErrWorkflowNotFound, "failed to update workflow")
	}

	s.recordChange(ctx, actorID, wf, "updated")
	return wf, nil
}

// Toggle flips a workflow between active and paused
func (s *WorkflowService) Toggle(ctx context.Context, orgID, actorID, id uuid.UUID) (*models.Workflow, error) {
	wf, err := s.Get(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	wf.IsActive = !wf.IsActive
	wf.UpdatedAt = time.Now().UTC()
	if err := s.workflowRepo.Update(ctx, wf); err != nil {
		return nil, services.MapRepoError(err, services.ErrWorkflowNotFound, "failed to toggle workflow")
	}

	s.recordChange(ctx, actorID, wf, "toggled")
	return wf, nil
}

// Delete removes a workflow
func (s *WorkflowService) Delete(ctx context.Context, orgID, actorID, id uuid.UUID) error {
	if err := s.workflowRepo.Delete(ctx, orgID, id); err != nil {
		return services.MapRepoError(err, services.ErrWorkflowNotFound, "failed to delete workflow")
	}
	s.audit.Record(ctx, audit.Entry{
		OrgID:        orgID,
		UserID:       actorID,
		Action:       models.AuditActionWorkflowChanged,
		ResourceType: "workflow",
		ResourceID:   id,
		Details:      map[string]interface{}{"change": "deleted"},
	})
	return nil
}

// ListExecutions returns run history, optionally of one workflow
func (s *WorkflowService) ListExecutions(ctx context.Context, orgID uuid.UUID, workflowID *uuid.UUID, limit, offset int) ([]*models.WorkflowExecution, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	list, err := s.workflowRepo.ListExecutions(ctx, orgID, workflowID, limit, offset)
	if err != nil {
		return nil, services.WrapInternal("failed to list workflow executions", err)
	}
	return list, nil
}

func (s *WorkflowService) recordChange(ctx context.Context, actorID uuid.UUID, wf *models.Workflow, change string) {
	s.audit.Record(ctx, audit.Entry{
		OrgID:        wf.OrgID,
		UserID:       actorID,
		Action:       models.AuditActionWorkflowChanged,
		ResourceType: "workflow",
		ResourceID:   wf.ID,
		Details:      map[string]interface{}{"change": change, "trigger": string(wf.Trigger), "is_active": wf.IsActive},
	})
}

// Dispatch runs every active workflow of the event's trigger, in creation order.
// A workflow stops at its first failing step. Failures are logged, never returned.
func (s *WorkflowService) Dispatch(ctx context.Context, event models.WorkflowEvent) {
	workflows, err := s.workflowRepo.ListActiveByTrigger(ctx, event.OrgID, event.Trigger)
	if err != nil {
		s.logger.Error("failed to load workflows",
			zap.String("org_id", event.OrgID.String()),
			zap.String("trigger", string(event.Trigger)),
			zap.Error(err))
		return
	}

	payload, err := json.Marshal(event.Payload)
	if err != nil {
		s.logger.Warn("workflow payload not serializable", zap.Error(err))
		payload = nil
	}

	for _, wf := range workflows {
		exec := s.run(ctx, wf, event)
		exec.Payload = payload
		if err := s.workflowRepo.CreateExecution(ctx, exec); err != nil {
			s.logger.Error("failed to record workflow execution",
				zap.String("workflow_id", wf.ID.String()),
				zap.Error(err))
		}
	}
}

func (s *WorkflowService) run(ctx context.Context, wf *models.Workflow, event models.WorkflowEvent) *models.WorkflowExecution {
	exec := &models.WorkflowExecution{
		ID:         uuid.New(),
		WorkflowID: wf.ID,
		OrgID:      wf.OrgID,
		Trigger:    event.Trigger,
		Status:     models.ExecutionSucceeded,
		StartedAt:  time.Now().UTC(),
	}

	for i, step := range wf.Steps {
		if err := s.runStep(ctx, step, event); err != nil {
			exec.Status = models.ExecutionFailed
			exec.Error = fmt.Sprintf("step %d (%s): %v", i+1, step.Action, err)
			s.logger.Warn("workflow step failed",
				zap.String("workflow_id", wf.ID.String()),
				zap.Int("step", i+1),
				zap.String("action", string(step.Action)),
				zap.Error(err))
			break
		}
		exec.StepsRun++
	}

	exec.FinishedAt = time.Now().UTC()
	return exec
}

func (s *WorkflowService) runStep(ctx context.Context, step models.WorkflowStep, event models.WorkflowEvent) error {
	switch step.Action {
	case models.StepSendEmail:
		to := step.Config["to"]
		if to == "" {
			client, err := s.eventClient(ctx, event)
			if err != nil {
				return err
			}
			to = client.Email
		}
		if to == "" {
			return fmt.Errorf("no recipient")
		}
		return s.notifier.SendEmail(ctx, to, render(step.Config["subject"], event), render(step.Config["body"], event))

	case models.StepWebhook:
		return s.poster.Post(ctx, step.Config["url"], event)

	case models.StepTagClient:
		client, err := s.eventClient(ctx, event)
		if err != nil {
			return err
		}
		tag := strings.TrimSpace(step.Config["tag"])
		if tag == "" {
			return fmt.Errorf("empty tag")
		}
		if !client.AddTag(tag) {
			return nil
		}
		client.UpdatedAt = time.Now().UTC()
		return s.clientRepo.Update(ctx, client)
	}
	return fmt.Errorf("unknown action %q", step.Action)
}

func (s *WorkflowService) eventClient(ctx context.Context, event models.WorkflowEvent) (*models.Client, error) {
	if event.ClientID == nil {
		return nil, fmt.Errorf("event has no client")
	}
	client, err := s.clientRepo.GetByID(ctx, event.OrgID, *event.ClientID)
	if err != nil {
		return nil, fmt.Errorf("load client: %w", err)
	}
	return client, nil
}

// render replaces {{key}} placeholders with event payload values
func render(text string, event models.WorkflowEvent) string {
	if text == "" || !strings.Contains(text, "{{") {
		return text
	}
	pairs := make([]string, 0, len(event.Payload)*2+2)
	pairs = append(pairs, "{{trigger}}", string(event.Trigger))
	for k, v := range event.Payload {
		pairs = append(pairs, "{{"+k+"}}", fmt.Sprint(v))
	}
	return strings.NewReplacer(pairs...).Replace(text)
}
