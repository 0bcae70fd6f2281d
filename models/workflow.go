package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// WorkflowTrigger names the business event that starts a workflow
type WorkflowTrigger string

const (
	TriggerBookingConfirmed WorkflowTrigger = "booking_confirmed"
	TriggerBookingCompleted WorkflowTrigger = "booking_completed"
	TriggerInvoicePaid      WorkflowTrigger = "invoice_paid"
	TriggerGalleryDelivered WorkflowTrigger = "gallery_delivered"
	TriggerClientCreated    WorkflowTrigger = "client_created"
)

// Valid reports whether the trigger is known
func (t WorkflowTrigger) Valid() bool {
	switch t {
	case TriggerBookingConfirmed, TriggerBookingCompleted, TriggerInvoicePaid,
		TriggerGalleryDelivered, TriggerClientCreated:
		return true
	}
	return false
}

// StepAction identifies what a workflow step does
type StepAction string

const (
	StepSendEmail StepAction = "send_email"
	StepWebhook   StepAction = "webhook"
	StepTagClient StepAction = "tag_client"
)

// WorkflowStep is one ordered action with action-specific config
type WorkflowStep struct {
	Action StepAction        `json:"action"`
	Config map[string]string `json:"config,omitempty"`
}

// Workflow runs its steps whenever its trigger fires for the organization
type Workflow struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	OrgID     uuid.UUID       `json:"org_id" db:"org_id"`
	Name      string          `json:"name" db:"name"`
	Trigger   WorkflowTrigger `json:"trigger" db:"trigger"`
	Steps     []WorkflowStep  `json:"steps" db:"steps"` // JSONB
	IsActive  bool            `json:"is_active" db:"is_active"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the Workflow model
func (Workflow) TableName() string {
	return "workflows"
}

// NewWorkflow creates an active workflow
func NewWorkflow(orgID uuid.UUID, name string, trigger WorkflowTrigger, steps []WorkflowStep) *Workflow {
	now := time.Now().UTC()
	return &Workflow{
		ID:        uuid.New(),
		OrgID:     orgID,
		Name:      name,
		Trigger:   trigger,
		Steps:     steps,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ExecutionStatus is the outcome of one workflow run
type ExecutionStatus string

const (
	ExecutionSucceeded ExecutionStatus = "succeeded"
	ExecutionFailed    ExecutionStatus = "failed"
)

// WorkflowExecution records one run of a workflow
type WorkflowExecution struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	WorkflowID uuid.UUID       `json:"workflow_id" db:"workflow_id"`
	OrgID      uuid.UUID       `json:"org_id" db:"org_id"`
	Trigger    WorkflowTrigger `json:"trigger" db:"trigger"`
	Status     ExecutionStatus `json:"status" db:"status"`
	StepsRun   int             `json:"steps_run" db:"steps_run"`
	Error      string          `json:"error,omitempty" db:"error"`
	Payload    json.RawMessage `json:"payload,omitempty" db:"payload"`
	StartedAt  time.Time       `json:"started_at" db:"started_at"`
	FinishedAt time.Time       `json:"finished_at" db:"finished_at"`
}

// TableName returns the table name for the WorkflowExecution model
func (WorkflowExecution) TableName() string {
	return "workflow_executions"
}

// WorkflowEvent is a business event offered to the organization's workflows
type WorkflowEvent struct {
	OrgID    uuid.UUID              `json:"org_id"`
	Trigger  WorkflowTrigger        `json:"trigger"`
	ClientID *uuid.UUID             `json:"client_id,omitempty"`
	Payload  map[string]interface{} `json:"payload"`
	At       time.Time              `json:"at"`
}

// NewWorkflowEvent creates an event stamped with the current time
func NewWorkflowEvent(orgID uuid.UUID, trigger WorkflowTrigger, clientID *uuid.UUID, payload map[string]interface{}) WorkflowEvent {
	if payload == nil {
		payload = map[string]interface{}{}
	}
	return WorkflowEvent{
		OrgID:    orgID,
		Trigger:  trigger,
		ClientID: clientID,
		Payload:  payload,
		At:       time.Now().UTC(),
	}
}
