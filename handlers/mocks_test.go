package handlers

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/photoproos/platform/models"
	"github.com/photoproos/platform/services/analytics"
	"github.com/photoproos/platform/services/apikeys"
	"github.com/photoproos/platform/services/bookings"
	"github.com/photoproos/platform/services/clients"
	"github.com/photoproos/platform/services/featureflags"
	"github.com/photoproos/platform/services/galleries"
	"github.com/photoproos/platform/services/invoices"
	"github.com/photoproos/platform/services/organizations"
	"github.com/photoproos/platform/services/payments"
	"github.com/photoproos/platform/services/payouts"
	"github.com/photoproos/platform/services/scheduler"
	"github.com/photoproos/platform/services/support"
	"github.com/stretchr/testify/mock"
)

// MockOrganizationService is a mock implementation of OrganizationService
type MockOrganizationService struct {
	mock.Mock
}

func (m *MockOrganizationService) Create(ctx context.Context, who organizations.Identity, in organizations.OrganizationInput) (*organizations.Membership, error) {
	args := m.Called(ctx, who, in)
	v, _ := args.Get(0).(*organizations.Membership)
	return v, args.Error(1)
}

func (m *MockOrganizationService) Get(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	args := m.Called(ctx, id)
	v, _ := args.Get(0).(*models.Organization)
	return v, args.Error(1)
}

func (m *MockOrganizationService) Update(ctx context.Context, id, actorID uuid.UUID, in organizations.OrganizationInput) (*models.Organization, error) {
	args := m.Called(ctx, id, actorID, in)
	v, _ := args.Get(0).(*models.Organization)
	return v, args.Error(1)
}

func (m *MockOrganizationService) Delete(ctx context.Context, id, actorID uuid.UUID) error {
	return m.Called(ctx, id, actorID).Error(0)
}

func (m *MockOrganizationService) List(ctx context.Context, limit, offset int) ([]*models.OrganizationSummary, error) {
	args := m.Called(ctx, limit, offset)
	v, _ := args.Get(0).([]*models.OrganizationSummary)
	return v, args.Error(1)
}

func (m *MockOrganizationService) Me(ctx context.Context, userID uuid.UUID) (*organizations.Membership, error) {
	args := m.Called(ctx, userID)
	v, _ := args.Get(0).(*organizations.Membership)
	return v, args.Error(1)
}

func (m *MockOrganizationService) Members(ctx context.Context, orgID uuid.UUID) ([]*models.User, error) {
	args := m.Called(ctx, orgID)
	v, _ := args.Get(0).([]*models.User)
	return v, args.Error(1)
}

func (m *MockOrganizationService) UpdateRole(ctx context.Context, actor *models.User, targetID uuid.UUID, role models.UserRole) (*models.User, error) {
	args := m.Called(ctx, actor, targetID, role)
	v, _ := args.Get(0).(*models.User)
	return v, args.Error(1)
}

// MockClientService is a mock implementation of ClientService
type MockClientService struct {
	mock.Mock
}

func (m *MockClientService) Create(ctx context.Context, orgID, actorID uuid.UUID, in clients.ClientInput) (*models.Client, error) {
	args := m.Called(ctx, orgID, actorID, in)
	v, _ := args.Get(0).(*models.Client)
	return v, args.Error(1)
}

func (m *MockClientService) Get(ctx context.Context, orgID, id uuid.UUID) (*models.Client, error) {
	args := m.Called(ctx, orgID, id)
	v, _ := args.Get(0).(*models.Client)
	return v, args.Error(1)
}

func (m *MockClientService) List(ctx context.Context, orgID uuid.UUID, filter models.ClientFilter) ([]*models.Client, error) {
	args := m.Called(ctx, orgID, filter)
	v, _ := args.Get(0).([]*models.Client)
	return v, args.Error(1)
}

func (m *MockClientService) Update(ctx context.Context, orgID, actorID, id uuid.UUID, in clients.ClientInput) (*models.Client, error) {
	args := m.Called(ctx, orgID, actorID, id, in)
	v, _ := args.Get(0).(*models.Client)
	return v, args.Error(1)
}

func (m *MockClientService) Delete(ctx context.Context, orgID, actorID, id uuid.UUID) error {
	return m.Called(ctx, orgID, actorID, id).Error(0)
}

// MockGalleryService is a mock implementation of GalleryService
type MockGalleryService struct {
	mock.Mock
}

func (m *MockGalleryService) Create(ctx context.Context, orgID, actorID uuid.UUID, in galleries.GalleryInput) (*models.Gallery, error) {
	args := m.Called(ctx, orgID, actorID, in)
	v, _ := args.Get(0).(*models.Gallery)
	return v, args.Error(1)
}

func (m *MockGalleryService) Get(ctx context.Context, orgID, id uuid.UUID) (*models.Gallery, error) {
	args := m.Called(ctx, orgID, id)
	v, _ := args.Get(0).(*models.Gallery)
	return v, args.Error(1)
}

func (m *MockGalleryService) List(ctx context.Context, orgID uuid.UUID, clientID *uuid.UUID, limit, offset int) ([]*models.Gallery, error) {
	args := m.Called(ctx, orgID, clientID, limit, offset)
	v, _ := args.Get(0).([]*models.Gallery)
	return v, args.Error(1)
}

func (m *MockGalleryService) Update(ctx context.Context, orgID, actorID, id uuid.UUID, in galleries.GalleryInput) (*models.Gallery, error) {
	args := m.Called(ctx, orgID, actorID, id, in)
	v, _ := args.Get(0).(*models.Gallery)
	return v, args.Error(1)
}

func (m *MockGalleryService) Deliver(ctx context.Context, orgID, actorID, id uuid.UUID) (*models.Gallery, error) {
	args := m.Called(ctx, orgID, actorID, id)
	v, _ := args.Get(0).(*models.Gallery)
	return v, args.Error(1)
}

func (m *MockGalleryService) Archive(ctx context.Context, orgID, actorID, id uuid.UUID) (*models.Gallery, error) {
	args := m.Called(ctx, orgID, actorID, id)
	v, _ := args.Get(0).(*models.Gallery)
	return v, args.Error(1)
}

func (m *MockGalleryService) Delete(ctx context.Context, orgID, actorID, id uuid.UUID) error {
	return m.Called(ctx, orgID, actorID, id).Error(0)
}

// MockInvoiceService is a mock implementation of InvoiceService and InvoicePaymentLister
type MockInvoiceService struct {
	mock.Mock
}

func (m *MockInvoiceService) Create(ctx context.Context, orgID, actorID uuid.UUID, in invoices.InvoiceInput) (*models.Invoice, error) {
	args := m.Called(ctx, orgID, actorID, in)
	v, _ := args.Get(0).(*models.Invoice)
	return v, args.Error(1)
}

func (m *MockInvoiceService) Get(ctx context.Context, orgID, id uuid.UUID) (*models.Invoice, error) {
	args := m.Called(ctx, orgID, id)
	v, _ := args.Get(0).(*models.Invoice)
	return v, args.Error(1)
}

func (m *MockInvoiceService) List(ctx context.Context, orgID uuid.UUID, status models.InvoiceStatus, limit, offset int) ([]*models.Invoice, error) {
	args := m.Called(ctx, orgID, status, limit, offset)
	v, _ := args.Get(0).([]*models.Invoice)
	return v, args.Error(1)
}

func (m *MockInvoiceService) Update(ctx context.Context, orgID, actorID, id uuid.UUID, in invoices.InvoiceInput) (*models.Invoice, error) {
	args := m.Called(ctx, orgID, actorID, id, in)
	v, _ := args.Get(0).(*models.Invoice)
	return v, args.Error(1)
}

func (m *MockInvoiceService) Send(ctx context.Context, orgID, actorID, id uuid.UUID) (*models.Invoice, error) {
	args := m.Called(ctx, orgID, actorID, id)
	v, _ := args.Get(0).(*models.Invoice)
	return v, args.Error(1)
}

func (m *MockInvoiceService) Void(ctx context.Context, orgID, actorID, id uuid.UUID) (*models.Invoice, error) {
	args := m.Called(ctx, orgID, actorID, id)
	v, _ := args.Get(0).(*models.Invoice)
	return v, args.Error(1)
}

func (m *MockInvoiceService) RecordPayment(ctx context.Context, orgID, actorID, invoiceID uuid.UUID, in invoices.PaymentInput) (*models.Payment, error) {
	args := m.Called(ctx, orgID, actorID, invoiceID, in)
	v, _ := args.Get(0).(*models.Payment)
	return v, args.Error(1)
}

func (m *MockInvoiceService) CreateCheckout(ctx context.Context, orgID, id uuid.UUID) (*invoices.Checkout, error) {
	args := m.Called(ctx, orgID, id)
	v, _ := args.Get(0).(*invoices.Checkout)
	return v, args.Error(1)
}

func (m *MockInvoiceService) ListForInvoice(ctx context.Context, orgID, invoiceID uuid.UUID) ([]*models.Payment, error) {
	args := m.Called(ctx, orgID, invoiceID)
	v, _ := args.Get(0).([]*models.Payment)
	return v, args.Error(1)
}

// MockPaymentService is a mock implementation of PaymentService
type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) Get(ctx context.Context, orgID, id uuid.UUID) (*models.Payment, error) {
	args := m.Called(ctx, orgID, id)
	v, _ := args.Get(0).(*models.Payment)
	return v, args.Error(1)
}

func (m *MockPaymentService) Refund(ctx context.Context, orgID, actorID, paymentID uuid.UUID) (*models.Payment, error) {
	args := m.Called(ctx, orgID, actorID, paymentID)
	v, _ := args.Get(0).(*models.Payment)
	return v, args.Error(1)
}

func (m *MockPaymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) (*payments.WebhookResult, error) {
	args := m.Called(ctx, payload, signature)
	v, _ := args.Get(0).(*payments.WebhookResult)
	return v, args.Error(1)
}

// MockWebhookCounter records webhook outcomes
type MockWebhookCounter struct {
	mock.Mock
}

func (m *MockWebhookCounter) WebhookEvent(eventType, outcome string) {
	m.Called(eventType, outcome)
}

// MockBookingService is a mock implementation of BookingService
type MockBookingService struct {
	mock.Mock
}

func (m *MockBookingService) Create(ctx context.Context, orgID, actorID uuid.UUID, in bookings.BookingInput) (*models.Booking, error) {
	args := m.Called(ctx, orgID, actorID, in)
	v, _ := args.Get(0).(*models.Booking)
	return v, args.Error(1)
}

func (m *MockBookingService) Get(ctx context.Context, orgID, id uuid.UUID) (*models.Booking, error) {
	args := m.Called(ctx, orgID, id)
	v, _ := args.Get(0).(*models.Booking)
	return v, args.Error(1)
}

func (m *MockBookingService) List(ctx context.Context, orgID uuid.UUID, filter models.BookingFilter) ([]*models.Booking, error) {
	args := m.Called(ctx, orgID, filter)
	v, _ := args.Get(0).([]*models.Booking)
	return v, args.Error(1)
}

func (m *MockBookingService) Update(ctx context.Context, orgID, actorID, id uuid.UUID, in bookings.BookingInput) (*models.Booking, error) {
	args := m.Called(ctx, orgID, actorID, id, in)
	v, _ := args.Get(0).(*models.Booking)
	return v, args.Error(1)
}

func (m *MockBookingService) Confirm(ctx context.Context, orgID, actorID, id uuid.UUID) (*models.Booking, error) {
	args := m.Called(ctx, orgID, actorID, id)
	v, _ := args.Get(0).(*models.Booking)
	return v, args.Error(1)
}

func (m *MockBookingService) Cancel(ctx context.Context, orgID, actorID, id uuid.UUID) (*models.Booking, error) {
	args := m.Called(ctx, orgID, actorID, id)
	v, _ := args.Get(0).(*models.Booking)
	return v, args.Error(1)
}

func (m *MockBookingService) Complete(ctx context.Context, orgID, actorID, id uuid.UUID) (*models.Booking, error) {
	args := m.Called(ctx, orgID, actorID, id)
	v, _ := args.Get(0).(*models.Booking)
	return v, args.Error(1)
}

// MockEarningService is a mock implementation of EarningService
type MockEarningService struct {
	mock.Mock
}

func (m *MockEarningService) CreateAdjustment(ctx context.Context, orgID, actorID, photographerID uuid.UUID, amountCents int64, description string) (*models.PhotographerEarning, error) {
	args := m.Called(ctx, orgID, actorID, photographerID, amountCents, description)
	v, _ := args.Get(0).(*models.PhotographerEarning)
	return v, args.Error(1)
}

func (m *MockEarningService) List(ctx context.Context, orgID uuid.UUID, filter models.EarningFilter) ([]*models.PhotographerEarning, error) {
	args := m.Called(ctx, orgID, filter)
	v, _ := args.Get(0).([]*models.PhotographerEarning)
	return v, args.Error(1)
}

func (m *MockEarningService) Approve(ctx context.Context, orgID, actorID uuid.UUID, ids []uuid.UUID) (int64, error) {
	args := m.Called(ctx, orgID, actorID, ids)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockEarningService) Cancel(ctx context.Context, orgID, actorID, id uuid.UUID) (*models.PhotographerEarning, error) {
	args := m.Called(ctx, orgID, actorID, id)
	v, _ := args.Get(0).(*models.PhotographerEarning)
	return v, args.Error(1)
}

// MockPayoutService is a mock implementation of PayoutService
type MockPayoutService struct {
	mock.Mock
}

func (m *MockPayoutService) PendingSummary(ctx context.Context, orgID uuid.UUID) ([]*models.PendingPayout, error) {
	args := m.Called(ctx, orgID)
	v, _ := args.Get(0).([]*models.PendingPayout)
	return v, args.Error(1)
}

func (m *MockPayoutService) ListBatches(ctx context.Context, orgID uuid.UUID, limit, offset int) ([]*models.PayoutBatch, error) {
	args := m.Called(ctx, orgID, limit, offset)
	v, _ := args.Get(0).([]*models.PayoutBatch)
	return v, args.Error(1)
}

func (m *MockPayoutService) GetBatch(ctx context.Context, orgID, id uuid.UUID) (*models.PayoutBatch, error) {
	args := m.Called(ctx, orgID, id)
	v, _ := args.Get(0).(*models.PayoutBatch)
	return v, args.Error(1)
}

func (m *MockPayoutService) CreateBatch(ctx context.Context, orgID, actorID uuid.UUID, input payouts.CreateBatchInput) (*models.PayoutBatch, error) {
	args := m.Called(ctx, orgID, actorID, input)
	v, _ := args.Get(0).(*models.PayoutBatch)
	return v, args.Error(1)
}

func (m *MockPayoutService) ProcessBatch(ctx context.Context, orgID, actorID, batchID uuid.UUID) (*models.PayoutBatch, error) {
	args := m.Called(ctx, orgID, actorID, batchID)
	v, _ := args.Get(0).(*models.PayoutBatch)
	return v, args.Error(1)
}

func (m *MockPayoutService) CancelBatch(ctx context.Context, orgID, actorID, batchID uuid.UUID) (*models.PayoutBatch, error) {
	args := m.Called(ctx, orgID, actorID, batchID)
	v, _ := args.Get(0).(*models.PayoutBatch)
	return v, args.Error(1)
}

func (m *MockPayoutService) ExportBatch(ctx context.Context, orgID, batchID uuid.UUID) ([]byte, string, error) {
	args := m.Called(ctx, orgID, batchID)
	v, _ := args.Get(0).([]byte)
	return v, args.String(1), args.Error(2)
}

// MockAnalyticsService is a mock implementation of AnalyticsService
type MockAnalyticsService struct {
	mock.Mock
}

func (m *MockAnalyticsService) Overview(ctx context.Context, orgID uuid.UUID, start, end time.Time) (*analytics.Overview, error) {
	args := m.Called(ctx, orgID, start, end)
	v, _ := args.Get(0).(*analytics.Overview)
	return v, args.Error(1)
}

func (m *MockAnalyticsService) ExportOverview(ctx context.Context, orgID uuid.UUID, start, end time.Time) ([]byte, error) {
	args := m.Called(ctx, orgID, start, end)
	v, _ := args.Get(0).([]byte)
	return v, args.Error(1)
}

// MockSupportService is a mock implementation of SupportService
type MockSupportService struct {
	mock.Mock
}

func (m *MockSupportService) CreateTicket(ctx context.Context, user *models.User, in support.TicketInput) (*models.SupportTicket, error) {
	args := m.Called(ctx, user, in)
	v, _ := args.Get(0).(*models.SupportTicket)
	return v, args.Error(1)
}

func (m *MockSupportService) ListTickets(ctx context.Context, user *models.User, status models.TicketStatus, limit, offset int) ([]*models.SupportTicket, error) {
	args := m.Called(ctx, user, status, limit, offset)
	v, _ := args.Get(0).([]*models.SupportTicket)
	return v, args.Error(1)
}

func (m *MockSupportService) GetTicket(ctx context.Context, user *models.User, id uuid.UUID) (*models.SupportTicket, error) {
	args := m.Called(ctx, user, id)
	v, _ := args.Get(0).(*models.SupportTicket)
	return v, args.Error(1)
}

func (m *MockSupportService) AddMessage(ctx context.Context, user *models.User, ticketID uuid.UUID, body string) (*models.SupportMessage, error) {
	args := m.Called(ctx, user, ticketID, body)
	v, _ := args.Get(0).(*models.SupportMessage)
	return v, args.Error(1)
}

func (m *MockSupportService) ChangeStatus(ctx context.Context, user *models.User, ticketID uuid.UUID, status models.TicketStatus) (*models.SupportTicket, error) {
	args := m.Called(ctx, user, ticketID, status)
	v, _ := args.Get(0).(*models.SupportTicket)
	return v, args.Error(1)
}

// MockFeatureFlagService is a mock implementation of FeatureFlagService
type MockFeatureFlagService struct {
	mock.Mock
}

func (m *MockFeatureFlagService) EvaluateAll(ctx context.Context, orgID uuid.UUID) (map[string]bool, error) {
	args := m.Called(ctx, orgID)
	v, _ := args.Get(0).(map[string]bool)
	return v, args.Error(1)
}

func (m *MockFeatureFlagService) List(ctx context.Context) ([]*models.FeatureFlag, error) {
	args := m.Called(ctx)
	v, _ := args.Get(0).([]*models.FeatureFlag)
	return v, args.Error(1)
}

func (m *MockFeatureFlagService) Get(ctx context.Context, key string) (*models.FeatureFlag, error) {
	args := m.Called(ctx, key)
	v, _ := args.Get(0).(*models.FeatureFlag)
	return v, args.Error(1)
}

func (m *MockFeatureFlagService) Create(ctx context.Context, actor *models.User, in featureflags.FlagInput) (*models.FeatureFlag, error) {
	args := m.Called(ctx, actor, in)
	v, _ := args.Get(0).(*models.FeatureFlag)
	return v, args.Error(1)
}

func (m *MockFeatureFlagService) Update(ctx context.Context, actor *models.User, key string, in featureflags.FlagInput) (*models.FeatureFlag, error) {
	args := m.Called(ctx, actor, key, in)
	v, _ := args.Get(0).(*models.FeatureFlag)
	return v, args.Error(1)
}

func (m *MockFeatureFlagService) Toggle(ctx context.Context, actor *models.User, key string) (*models.FeatureFlag, error) {
	args := m.Called(ctx, actor, key)
	v, _ := args.Get(0).(*models.FeatureFlag)
	return v, args.Error(1)
}

func (m *MockFeatureFlagService) Delete(ctx context.Context, actor *models.User, key string) error {
	return m.Called(ctx, actor, key).Error(0)
}

func (m *MockFeatureFlagService) CacheStats() featureflags.CacheStats {
	return m.Called().Get(0).(featureflags.CacheStats)
}

// MockAPIKeyService is a mock implementation of APIKeyService
type MockAPIKeyService struct {
	mock.Mock
}

func (m *MockAPIKeyService) Create(ctx context.Context, orgID, actorID uuid.UUID, in apikeys.CreateInput) (*apikeys.CreatedKey, error) {
	args := m.Called(ctx, orgID, actorID, in)
	v, _ := args.Get(0).(*apikeys.CreatedKey)
	return v, args.Error(1)
}

func (m *MockAPIKeyService) List(ctx context.Context, orgID uuid.UUID) ([]*models.APIKey, error) {
	args := m.Called(ctx, orgID)
	v, _ := args.Get(0).([]*models.APIKey)
	return v, args.Error(1)
}

func (m *MockAPIKeyService) Revoke(ctx context.Context, orgID, actorID, id uuid.UUID) error {
	return m.Called(ctx, orgID, actorID, id).Error(0)
}

func (m *MockAPIKeyService) Delete(ctx context.Context, orgID, actorID, id uuid.UUID) error {
	return m.Called(ctx, orgID, actorID, id).Error(0)
}

// MockJobRunner is a mock implementation of JobRunner
type MockJobRunner struct {
	mock.Mock
}

func (m *MockJobRunner) Jobs() []scheduler.JobInfo {
	return m.Called().Get(0).([]scheduler.JobInfo)
}

func (m *MockJobRunner) RunNow(name string) error {
	return m.Called(name).Error(0)
}
