package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/photoproos/platform/models"
	"github.com/photoproos/platform/repositories"
	"go.uber.org/zap"
)

const workflowColumns = `id, org_id, name, trigger, steps, is_active, created_at, updated_at`

const executionColumns = `id, workflow_id, org_id, trigger, status, steps_run, error, payload, started_at, finished_at`

// WorkflowRepository implements the repositories.WorkflowRepository interface
type WorkflowRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewWorkflowRepository creates a new workflow repository
func NewWorkflowRepository(db *DB, logger *zap.Logger) repositories.WorkflowRepository {
	return &WorkflowRepository{db: db, logger: logger}
}

func scanWorkflow(s rowScanner) (*models.Workflow, error) {
	w := &models.Workflow{}
	var steps []byte
	if err := s.Scan(&w.ID, &w.OrgID, &w.Name, &w.Trigger, &steps, &w.IsActive, &w.CreatedAt, &w.UpdatedAt); err != nil {
		return nil, err
	}
	w.Steps = []models.WorkflowStep{}
	if len(steps) > 0 {
		if err := json.Unmarshal(steps, &w.Steps); err != nil {
			return nil, fmt.Errorf("failed to decode workflow steps: %w", err)
		}
	}
	return w, nil
}

func (r *WorkflowRepository) queryWorkflows(ctx context.Context, query string, args ...interface{}) ([]*models.Workflow, error) {
	rows, err := GetExecutor(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query workflows: %w", err)
	}
	defer rows.Close()

	workflows := []*models.Workflow{}
	for rows.Next() {
		w, err := scanWorkflow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan workflow: %w", err)
		}
		workflows = append(workflows, w)
	}
	return workflows, rows.Err()
}

// Create creates a new workflow
func (r *WorkflowRepository) Create(ctx context.Context, w *models.Workflow) error {
	steps, err := json.Marshal(w.Steps)
	if err != nil {
		return fmt.Errorf("failed to encode workflow steps: %w", err)
	}

	_, err = GetExecutor(ctx, r.db).ExecContext(ctx, `
		INSERT INTO workflows (`+workflowColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, w.ID, w.OrgID, w.Name, w.Trigger, steps, w.IsActive, w.CreatedAt, w.UpdatedAt)
	if err != nil {
		return wrapError("create workflow", err)
	}

	r.logger.Debug("workflow created", zap.String("id", w.ID.String()), zap.String("trigger", string(w.Trigger)))
	return nil
}

// GetByID retrieves a workflow scoped to its organization
func (r *WorkflowRepository) GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.Workflow, error) {
	query := `SELECT ` + workflowColumns + ` FROM workflows WHERE org_id = $1 AND id = $2`

	w, err := scanWorkflow(GetExecutor(ctx, r.db).QueryRowContext(ctx, query, orgID, id))
	if err != nil {
		return nil, wrapError("get workflow", err)
	}
	return w, nil
}

// ListByOrg lists every workflow of the organization
func (r *WorkflowRepository) ListByOrg(ctx context.Context, orgID uuid.UUID) ([]*models.Workflow, error) {
	return r.queryWorkflows(ctx,
		`SELECT `+workflowColumns+` FROM workflows WHERE org_id = $1 ORDER BY created_at ASC`, orgID)
}

// ListActiveByTrigger returns active workflows for the trigger in creation order
func (r *WorkflowRepository) ListActiveByTrigger(ctx context.Context, orgID uuid.UUID, trigger models.WorkflowTrigger) ([]*models.Workflow, error) {
	return r.queryWorkflows(ctx, `
		SELECT `+workflowColumns+`
		FROM workflows
		WHERE org_id = $1 AND trigger = $2 AND is_active
		ORDER BY created_at ASC
	`, orgID, trigger)
}

// Update updates a workflow
func (r *WorkflowRepository) Update(ctx context.Context, w *models.Workflow) error {
	steps, err := json.Marshal(w.Steps)
	if err != nil {
		return fmt.Errorf("failed to encode workflow steps: %w", err)
	}

	result, err := GetExecutor(ctx, r.db).ExecContext(ctx, `
		UPDATE workflows
		SET name = $3,
		    trigger = $4,
		    steps = $5,
		    is_active = $6,
		    updated_at = $7
		WHERE org_id = $1 AND id = $2
	`, w.OrgID, w.ID, w.Name, w.Trigger, steps, w.IsActive, w.UpdatedAt)
	if err != nil {
		return wrapError("update workflow", err)
	}
	return requireAffected(result, "workflow "+w.ID.String())
}

// Delete deletes a workflow and its executions
func (r *WorkflowRepository) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	result, err := GetExecutor(ctx, r.db).ExecContext(ctx,
		`DELETE FROM workflows WHERE org_id = $1 AND id = $2`, orgID, id)
	if err != nil {
		return fmt.Errorf("failed to delete workflow: %w", err)
	}
	return requireAffected(result, "workflow "+id.String())
}

// CreateExecution records one workflow run
func (r *WorkflowRepository) CreateExecution(ctx context.Context, e *models.WorkflowExecution) error {
	var payload interface{}
	if len(e.Payload) > 0 {
		payload = []byte(e.Payload)
	}

	_, err := GetExecutor(ctx, r.db).ExecContext(ctx, `
		INSERT INTO workflow_executions (`+executionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, e.ID, e.WorkflowID, e.OrgID, e.Trigger, e.Status, e.StepsRun, e.Error, payload, e.StartedAt, e.FinishedAt)
	if err != nil {
		return wrapError("create workflow execution", err)
	}
	return nil
}

// ListExecutions lists runs newest first, optionally for one workflow
func (r *WorkflowRepository) ListExecutions(ctx context.Context, orgID uuid.UUID, workflowID *uuid.UUID, limit, offset int) ([]*models.WorkflowExecution, error) {
	rows, err := GetExecutor(ctx, r.db).QueryContext(ctx, `
		SELECT `+executionColumns+`
		FROM workflow_executions
		WHERE org_id = $1 AND ($2::uuid IS NULL OR workflow_id = $2)
		ORDER BY started_at DESC
		LIMIT $3 OFFSET $4
	`, orgID, workflowID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list workflow executions: %w", err)
	}
	defer rows.Close()

	execs := []*models.WorkflowExecution{}
	for rows.Next() {
		e := &models.WorkflowExecution{}
		var payload []byte
		err := rows.Scan(&e.ID, &e.WorkflowID, &e.OrgID, &e.Trigger, &e.Status, &e.StepsRun, &e.Error,
			&payload, &e.StartedAt, &e.FinishedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan workflow execution: %w", err)
		}
		e.Payload = payload
		execs = append(execs, e)
	}
	return execs, rows.Err()
}
