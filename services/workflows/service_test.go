package workflows

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/photoproos/platform/models"
	"github.com/photoproos/platform/repositories/mocks"
	"github.com/photoproos/platform/services"
	"github.com/photoproos/platform/services/audit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type sentEmail struct {
	to, subject, body string
}

type recordingNotifier struct {
	sent []sentEmail
	err  error
}

func (n *recordingNotifier) SendEmail(ctx context.Context, to, subject, body string) error {
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, sentEmail{to, subject, body})
	return nil
}

type recordingPoster struct {
	targets []string
	err     error
}

func (p *recordingPoster) Post(ctx context.Context, target string, event models.WorkflowEvent) error {
	p.targets = append(p.targets, target)
	return p.err
}

type workflowFixture struct {
	workflows *mocks.WorkflowRepository
	clients   *mocks.ClientRepository
	notifier  *recordingNotifier
	poster    *recordingPoster
	service   *WorkflowService
}

func newWorkflowFixture() *workflowFixture {
	f := &workflowFixture{
		workflows: new(mocks.WorkflowRepository),
		clients:   new(mocks.ClientRepository),
		notifier:  &recordingNotifier{},
		poster:    &recordingPoster{},
	}
	f.service = NewWorkflowService(f.workflows, f.clients, f.notifier, f.poster, audit.Nop{}, zap.NewNop())
	return f
}

func TestValidateSteps(t *testing.T) {
	assert.NoError(t, ValidateSteps([]models.WorkflowStep{
		{Action: models.StepSendEmail, Config: map[string]string{"subject": "Thanks"}},
		{Action: models.StepWebhook, Config: map[string]string{"url": "https://hooks.example.com"}},
		{Action: models.StepTagClient, Config: map[string]string{"tag": "vip"}},
	}))
	assert.Error(t, ValidateSteps(nil))
	assert.Error(t, ValidateSteps([]models.WorkflowStep{{Action: models.StepWebhook}}))
	assert.Error(t, ValidateSteps([]models.WorkflowStep{{Action: "sms"}}))

	err := ValidateSteps([]models.WorkflowStep{
		{Action: models.StepWebhook, Config: map[string]string{"url": "http://169.254.169.254/latest/meta-data"}},
	})
	assert.ErrorIs(t, err, ErrBlockedDestination)
}

func TestWorkflowService_Create(t *testing.T) {
	orgID, actorID := uuid.New(), uuid.New()

	t.Run("valid", func(t *testing.T) {
		f := newWorkflowFixture()
		f.workflows.On("Create", mock.Anything, mock.AnythingOfType("*models.Workflow")).Return(nil)

		wf, err := f.service.Create(context.Background(), orgID, actorID, WorkflowInput{
			Name:    " Thank-you email ",
			Trigger: models.TriggerInvoicePaid,
			Steps:   []models.WorkflowStep{{Action: models.StepSendEmail, Config: map[string]string{"subject": "Thanks"}}},
		})
		require.NoError(t, err)
		assert.Equal(t, "Thank-you email", wf.Name)
		assert.True(t, wf.IsActive)
	})

	t.Run("unknown trigger", func(t *testing.T) {
		f := newWorkflowFixture()
		_, err := f.service.Create(context.Background(), orgID, actorID, WorkflowInput{
			Name:    "x",
			Trigger: "invoice_viewed",
			Steps:   []models.WorkflowStep{{Action: models.StepTagClient, Config: map[string]string{"tag": "a"}}},
		})
		assert.True(t, services.IsValidationError(err))
	})
}

func TestWorkflowService_Toggle(t *testing.T) {
	f := newWorkflowFixture()
	orgID := uuid.New()
	wf := models.NewWorkflow(orgID, "w", models.TriggerClientCreated, nil)
	f.workflows.On("GetByID", mock.Anything, orgID, wf.ID).Return(wf, nil)
	f.workflows.On("Update", mock.Anything, wf).Return(nil)

	toggled, err := f.service.Toggle(context.Background(), orgID, uuid.New(), wf.ID)
	require.NoError(t, err)
	assert.False(t, toggled.IsActive)
}

func TestWorkflowService_Dispatch(t *testing.T) {
	orgID := uuid.New()
	client := models.NewClient(orgID, "Maya", "maya@example.com")
	clientID := client.ID

	t.Run("runs steps in order and records executions", func(t *testing.T) {
		f := newWorkflowFixture()
		first := models.NewWorkflow(orgID, "thank", models.TriggerInvoicePaid, []models.WorkflowStep{
			{Action: models.StepSendEmail, Config: map[string]string{"subject": "Invoice {{number}} paid", "body": "Thanks!"}},
			{Action: models.StepTagClient, Config: map[string]string{"tag": "paid"}},
		})
		second := models.NewWorkflow(orgID, "notify", models.TriggerInvoicePaid, []models.WorkflowStep{
			{Action: models.StepWebhook, Config: map[string]string{"url": "https://hooks.example.com/x"}},
		})

		f.workflows.On("ListActiveByTrigger", mock.Anything, orgID, models.TriggerInvoicePaid).
			Return([]*models.Workflow{first, second}, nil)
		f.clients.On("GetByID", mock.Anything, orgID, clientID).Return(client, nil)
		f.clients.On("Update", mock.Anything, client).Return(nil)
		f.workflows.On("CreateExecution", mock.Anything, mock.AnythingOfType("*models.WorkflowExecution")).Return(nil)

		event := models.NewWorkflowEvent(orgID, models.TriggerInvoicePaid, &clientID, map[string]interface{}{"number": "INV-2024-0003"})
		f.service.Dispatch(context.Background(), event)

		require.Len(t, f.notifier.sent, 1)
		assert.Equal(t, sentEmail{"maya@example.com", "Invoice INV-2024-0003 paid", "Thanks!"}, f.notifier.sent[0])
		assert.Contains(t, client.Tags, "paid")
		assert.Equal(t, []string{"https://hooks.example.com/x"}, f.poster.targets)

		f.workflows.AssertNumberOfCalls(t, "CreateExecution", 2)
		exec := f.workflows.Calls[1].Arguments.Get(1).(*models.WorkflowExecution)
		assert.Equal(t, models.ExecutionSucceeded, exec.Status)
		assert.Equal(t, 2, exec.StepsRun)
		assert.JSONEq(t, `{"number":"INV-2024-0003"}`, string(exec.Payload))
	})

	t.Run("stops at the first failing step", func(t *testing.T) {
		f := newWorkflowFixture()
		f.poster.err = errors.New("webhook returned 500")
		wf := models.NewWorkflow(orgID, "w", models.TriggerClientCreated, []models.WorkflowStep{
			{Action: models.StepWebhook, Config: map[string]string{"url": "https://hooks.example.com"}},
			{Action: models.StepTagClient, Config: map[string]string{"tag": "new"}},
		})
		f.workflows.On("ListActiveByTrigger", mock.Anything, orgID, models.TriggerClientCreated).Return([]*models.Workflow{wf}, nil)

		var exec *models.WorkflowExecution
		f.workflows.On("CreateExecution", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			exec = args.Get(1).(*models.WorkflowExecution)
		}).Return(nil)

		f.service.Dispatch(context.Background(), models.NewWorkflowEvent(orgID, models.TriggerClientCreated, &clientID, nil))

		require.NotNil(t, exec)
		assert.Equal(t, models.ExecutionFailed, exec.Status)
		assert.Zero(t, exec.StepsRun)
		assert.Contains(t, exec.Error, "step 1 (webhook)")
		f.clients.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("tag step without client fails", func(t *testing.T) {
		f := newWorkflowFixture()
		wf := models.NewWorkflow(orgID, "w", models.TriggerBookingCompleted, []models.WorkflowStep{
			{Action: models.StepTagClient, Config: map[string]string{"tag": "x"}},
		})
		f.workflows.On("ListActiveByTrigger", mock.Anything, orgID, models.TriggerBookingCompleted).Return([]*models.Workflow{wf}, nil)
		var exec *models.WorkflowExecution
		f.workflows.On("CreateExecution", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			exec = args.Get(1).(*models.WorkflowExecution)
		}).Return(nil)

		f.service.Dispatch(context.Background(), models.NewWorkflowEvent(orgID, models.TriggerBookingCompleted, nil, nil))
		require.NotNil(t, exec)
		assert.Equal(t, models.ExecutionFailed, exec.Status)
	})

	t.Run("repository failure is swallowed", func(t *testing.T) {
		f := newWorkflowFixture()
		f.workflows.On("ListActiveByTrigger", mock.Anything, orgID, models.TriggerGalleryDelivered).Return(nil, errors.New("db down"))

		assert.NotPanics(t, func() {
			f.service.Dispatch(context.Background(), models.NewWorkflowEvent(orgID, models.TriggerGalleryDelivered, nil, nil))
		})
	})
}

func TestWebhookPoster(t *testing.T) {
	var received models.WorkflowEvent
	var eventHeader string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		eventHeader = r.Header.Get("X-PhotoProOS-Event")
		_ = json.NewDecoder(r.Body).Decode(&received)
		if r.URL.Path == "/fail" {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	poster := newWebhookPoster(2*time.Second, false)
	orgID := uuid.New()
	event := models.NewWorkflowEvent(orgID, models.TriggerGalleryDelivered, nil, map[string]interface{}{"gallery": "g1"})

	require.NoError(t, poster.Post(context.Background(), server.URL+"/ok", event))
	assert.Equal(t, "gallery_delivered", eventHeader)
	assert.Equal(t, orgID, received.OrgID)
	assert.Equal(t, "g1", received.Payload["gallery"])

	err := poster.Post(context.Background(), server.URL+"/fail", event)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")

	assert.Error(t, poster.Post(context.Background(), "ftp://example.com", event))
}

func TestWebhookPoster_RejectsInternalTargets(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	poster := NewWebhookPoster(2 * time.Second)
	event := models.NewWorkflowEvent(uuid.New(), models.TriggerInvoicePaid, nil, nil)

	for _, target := range []string{
		server.URL + "/ok",
		"http://localhost:8080/hook",
		"http://10.0.0.5/hook",
		"http://169.254.169.254/latest/meta-data",
		"http://[::1]:9000/hook",
		"http://0.0.0.0/hook",
	} {
		err := poster.Post(context.Background(), target, event)
		assert.ErrorIs(t, err, ErrBlockedDestination, target)
	}
	assert.Zero(t, hits)
}

func TestGuardDial(t *testing.T) {
	tests := []struct {
		address string
		blocked bool
	}{
		{"127.0.0.1:80", true},
		{"[::1]:443", true},
		{"10.1.2.3:443", true},
		{"172.16.0.9:80", true},
		{"192.168.1.20:80", true},
		{"169.254.169.254:80", true},
		{"[fe80::1]:80", true},
		{"[fd00::5]:80", true},
		{"93.184.216.34:443", false},
		{"[2606:4700::1111]:443", false},
	}

	for _, tt := range tests {
		t.Run(tt.address, func(t *testing.T) {
			err := guardDial("tcp", tt.address, nil)
			if tt.blocked {
				assert.ErrorIs(t, err, ErrBlockedDestination)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
