// Package mocks provides testify mocks of the repository interfaces.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/photoproos/platform/models"
	"github.com/photoproos/platform/repositories"
	"github.com/stretchr/testify/mock"
)

// OrganizationRepository is a mock of repositories.OrganizationRepository
type OrganizationRepository struct {
	mock.Mock
}

var _ repositories.OrganizationRepository = (*OrganizationRepository)(nil)

func (m *OrganizationRepository) Create(ctx context.Context, org *models.Organization) error {
	args := m.Called(ctx, org)
	return args.Error(0)
}

func (m *OrganizationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*models.Organization), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *OrganizationRepository) GetBySlug(ctx context.Context, slug string) (*models.Organization, error) {
	args := m.Called(ctx, slug)
	if v := args.Get(0); v != nil {
		return v.(*models.Organization), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *OrganizationRepository) List(ctx context.Context, limit int, offset int) ([]*models.OrganizationSummary, error) {
	args := m.Called(ctx, limit, offset)
	if v := args.Get(0); v != nil {
		return v.([]*models.OrganizationSummary), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *OrganizationRepository) Update(ctx context.Context, org *models.Organization) error {
	args := m.Called(ctx, org)
	return args.Error(0)
}

func (m *OrganizationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// UserRepository is a mock of repositories.UserRepository
type UserRepository struct {
	mock.Mock
}

var _ repositories.UserRepository = (*UserRepository)(nil)

func (m *UserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *UserRepository) LockForUpdate(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *UserRepository) GetByClerkUserID(ctx context.Context, clerkUserID string) (*models.User, error) {
	args := m.Called(ctx, clerkUserID)
	if v := args.Get(0); v != nil {
		return v.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *UserRepository) GetByOrgID(ctx context.Context, orgID uuid.UUID) ([]*models.User, error) {
	args := m.Called(ctx, orgID)
	if v := args.Get(0); v != nil {
		return v.([]*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *UserRepository) Update(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// ClientRepository is a mock of repositories.ClientRepository
type ClientRepository struct {
	mock.Mock
}

var _ repositories.ClientRepository = (*ClientRepository)(nil)

func (m *ClientRepository) Create(ctx context.Context, client *models.Client) error {
	args := m.Called(ctx, client)
	return args.Error(0)
}

func (m *ClientRepository) GetByID(ctx context.Context, orgID uuid.UUID, id uuid.UUID) (*models.Client, error) {
	args := m.Called(ctx, orgID, id)
	if v := args.Get(0); v != nil {
		return v.(*models.Client), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ClientRepository) List(ctx context.Context, orgID uuid.UUID, filter models.ClientFilter) ([]*models.Client, error) {
	args := m.Called(ctx, orgID, filter)
	if v := args.Get(0); v != nil {
		return v.([]*models.Client), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ClientRepository) Update(ctx context.Context, client *models.Client) error {
	args := m.Called(ctx, client)
	return args.Error(0)
}

func (m *ClientRepository) Delete(ctx context.Context, orgID uuid.UUID, id uuid.UUID) error {
	args := m.Called(ctx, orgID, id)
	return args.Error(0)
}

func (m *ClientRepository) HasInvoices(ctx context.Context, orgID uuid.UUID, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, orgID, id)
	return args.Get(0).(bool), args.Error(1)
}

func (m *ClientRepository) CountCreated(ctx context.Context, orgID uuid.UUID, start time.Time, end time.Time) (int, error) {
	args := m.Called(ctx, orgID, start, end)
	return args.Get(0).(int), args.Error(1)
}

// GalleryRepository is a mock of repositories.GalleryRepository
type GalleryRepository struct {
	mock.Mock
}

var _ repositories.GalleryRepository = (*GalleryRepository)(nil)

func (m *GalleryRepository) Create(ctx context.Context, gallery *models.Gallery) error {
	args := m.Called(ctx, gallery)
	return args.Error(0)
}

func (m *GalleryRepository) GetByID(ctx context.Context, orgID uuid.UUID, id uuid.UUID) (*models.Gallery, error) {
	args := m.Called(ctx, orgID, id)
	if v := args.Get(0); v != nil {
		return v.(*models.Gallery), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *GalleryRepository) List(ctx context.Context, orgID uuid.UUID, clientID *uuid.UUID, limit int, offset int) ([]*models.Gallery, error) {
	args := m.Called(ctx, orgID, clientID, limit, offset)
	if v := args.Get(0); v != nil {
		return v.([]*models.Gallery), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *GalleryRepository) Update(ctx context.Context, gallery *models.Gallery) error {
	args := m.Called(ctx, gallery)
	return args.Error(0)
}

func (m *GalleryRepository) Delete(ctx context.Context, orgID uuid.UUID, id uuid.UUID) error {
	args := m.Called(ctx, orgID, id)
	return args.Error(0)
}

func (m *GalleryRepository) CountDelivered(ctx context.Context, orgID uuid.UUID, start time.Time, end time.Time) (int, error) {
	args := m.Called(ctx, orgID, start, end)
	return args.Get(0).(int), args.Error(1)
}

// InvoiceRepository is a mock of repositories.InvoiceRepository
type InvoiceRepository struct {
	mock.Mock
}

var _ repositories.InvoiceRepository = (*InvoiceRepository)(nil)

func (m *InvoiceRepository) Create(ctx context.Context, invoice *models.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *InvoiceRepository) GetByID(ctx context.Context, orgID uuid.UUID, id uuid.UUID) (*models.Invoice, error) {
	args := m.Called(ctx, orgID, id)
	if v := args.Get(0); v != nil {
		return v.(*models.Invoice), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *InvoiceRepository) GetByIDForUpdate(ctx context.Context, orgID uuid.UUID, id uuid.UUID) (*models.Invoice, error) {
	args := m.Called(ctx, orgID, id)
	if v := args.Get(0); v != nil {
		return v.(*models.Invoice), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *InvoiceRepository) List(ctx context.Context, orgID uuid.UUID, status models.InvoiceStatus, limit int, offset int) ([]*models.Invoice, error) {
	args := m.Called(ctx, orgID, status, limit, offset)
	if v := args.Get(0); v != nil {
		return v.([]*models.Invoice), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *InvoiceRepository) Update(ctx context.Context, invoice *models.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *InvoiceRepository) NextSequence(ctx context.Context, orgID uuid.UUID, year int) (int, error) {
	args := m.Called(ctx, orgID, year)
	return args.Get(0).(int), args.Error(1)
}

func (m *InvoiceRepository) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *InvoiceRepository) CountByStatus(ctx context.Context, orgID uuid.UUID, start time.Time, end time.Time) (map[models.InvoiceStatus]int, error) {
	args := m.Called(ctx, orgID, start, end)
	if v := args.Get(0); v != nil {
		return v.(map[models.InvoiceStatus]int), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *InvoiceRepository) OutstandingCents(ctx context.Context, orgID uuid.UUID) (int64, error) {
	args := m.Called(ctx, orgID)
	return args.Get(0).(int64), args.Error(1)
}

// PaymentRepository is a mock of repositories.PaymentRepository
type PaymentRepository struct {
	mock.Mock
}

var _ repositories.PaymentRepository = (*PaymentRepository)(nil)

func (m *PaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *PaymentRepository) GetByID(ctx context.Context, orgID uuid.UUID, id uuid.UUID) (*models.Payment, error) {
	args := m.Called(ctx, orgID, id)
	if v := args.Get(0); v != nil {
		return v.(*models.Payment), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *PaymentRepository) GetByIDForUpdate(ctx context.Context, orgID uuid.UUID, id uuid.UUID) (*models.Payment, error) {
	args := m.Called(ctx, orgID, id)
	if v := args.Get(0); v != nil {
		return v.(*models.Payment), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *PaymentRepository) GetByProviderPaymentID(ctx context.Context, providerPaymentID string) (*models.Payment, error) {
	args := m.Called(ctx, providerPaymentID)
	if v := args.Get(0); v != nil {
		return v.(*models.Payment), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *PaymentRepository) ListByInvoice(ctx context.Context, orgID uuid.UUID, invoiceID uuid.UUID) ([]*models.Payment, error) {
	args := m.Called(ctx, orgID, invoiceID)
	if v := args.Get(0); v != nil {
		return v.([]*models.Payment), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *PaymentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.PaymentStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *PaymentRepository) SumSucceeded(ctx context.Context, orgID uuid.UUID, start time.Time, end time.Time) (int64, error) {
	args := m.Called(ctx, orgID, start, end)
	return args.Get(0).(int64), args.Error(1)
}

func (m *PaymentRepository) DailyRevenue(ctx context.Context, orgID uuid.UUID, start time.Time, end time.Time) (map[string]int64, error) {
	args := m.Called(ctx, orgID, start, end)
	if v := args.Get(0); v != nil {
		return v.(map[string]int64), args.Error(1)
	}
	return nil, args.Error(1)
}

// BookingRepository is a mock of repositories.BookingRepository
type BookingRepository struct {
	mock.Mock
}

var _ repositories.BookingRepository = (*BookingRepository)(nil)

func (m *BookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	args := m.Called(ctx, booking)
	return args.Error(0)
}

func (m *BookingRepository) GetByID(ctx context.Context, orgID uuid.UUID, id uuid.UUID) (*models.Booking, error) {
	args := m.Called(ctx, orgID, id)
	if v := args.Get(0); v != nil {
		return v.(*models.Booking), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *BookingRepository) List(ctx context.Context, orgID uuid.UUID, filter models.BookingFilter) ([]*models.Booking, error) {
	args := m.Called(ctx, orgID, filter)
	if v := args.Get(0); v != nil {
		return v.([]*models.Booking), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *BookingRepository) Update(ctx context.Context, booking *models.Booking) error {
	args := m.Called(ctx, booking)
	return args.Error(0)
}

func (m *BookingRepository) FindOverlapping(ctx context.Context, orgID uuid.UUID, photographerID uuid.UUID, start time.Time, end time.Time, excludeID *uuid.UUID) ([]*models.Booking, error) {
	args := m.Called(ctx, orgID, photographerID, start, end, excludeID)
	if v := args.Get(0); v != nil {
		return v.([]*models.Booking), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *BookingRepository) CountByStatus(ctx context.Context, orgID uuid.UUID, start time.Time, end time.Time) (map[models.BookingStatus]int, error) {
	args := m.Called(ctx, orgID, start, end)
	if v := args.Get(0); v != nil {
		return v.(map[models.BookingStatus]int), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *BookingRepository) RevenueByServiceType(ctx context.Context, orgID uuid.UUID, start time.Time, end time.Time) (map[string]int64, error) {
	args := m.Called(ctx, orgID, start, end)
	if v := args.Get(0); v != nil {
		return v.(map[string]int64), args.Error(1)
	}
	return nil, args.Error(1)
}

// RateRepository is a mock of repositories.RateRepository
type RateRepository struct {
	mock.Mock
}

var _ repositories.RateRepository = (*RateRepository)(nil)

func (m *RateRepository) Create(ctx context.Context, rate *models.PhotographerRate) error {
	args := m.Called(ctx, rate)
	return args.Error(0)
}

func (m *RateRepository) GetByID(ctx context.Context, orgID uuid.UUID, id uuid.UUID) (*models.PhotographerRate, error) {
	args := m.Called(ctx, orgID, id)
	if v := args.Get(0); v != nil {
		return v.(*models.PhotographerRate), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *RateRepository) ListByPhotographer(ctx context.Context, orgID uuid.UUID, photographerID uuid.UUID) ([]*models.PhotographerRate, error) {
	args := m.Called(ctx, orgID, photographerID)
	if v := args.Get(0); v != nil {
		return v.([]*models.PhotographerRate), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *RateRepository) Update(ctx context.Context, rate *models.PhotographerRate) error {
	args := m.Called(ctx, rate)
	return args.Error(0)
}

func (m *RateRepository) Delete(ctx context.Context, orgID uuid.UUID, id uuid.UUID) error {
	args := m.Called(ctx, orgID, id)
	return args.Error(0)
}

// EarningRepository is a mock of repositories.EarningRepository
type EarningRepository struct {
	mock.Mock
}

var _ repositories.EarningRepository = (*EarningRepository)(nil)

func (m *EarningRepository) Create(ctx context.Context, earning *models.PhotographerEarning) error {
	args := m.Called(ctx, earning)
	return args.Error(0)
}

func (m *EarningRepository) GetByID(ctx context.Context, orgID uuid.UUID, id uuid.UUID) (*models.PhotographerEarning, error) {
	args := m.Called(ctx, orgID, id)
	if v := args.Get(0); v != nil {
		return v.(*models.PhotographerEarning), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *EarningRepository) GetByIDForUpdate(ctx context.Context, orgID uuid.UUID, id uuid.UUID) (*models.PhotographerEarning, error) {
	args := m.Called(ctx, orgID, id)
	if v := args.Get(0); v != nil {
		return v.(*models.PhotographerEarning), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *EarningRepository) GetByBooking(ctx context.Context, orgID uuid.UUID, bookingID uuid.UUID) (*models.PhotographerEarning, error) {
	args := m.Called(ctx, orgID, bookingID)
	if v := args.Get(0); v != nil {
		return v.(*models.PhotographerEarning), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *EarningRepository) List(ctx context.Context, orgID uuid.UUID, filter models.EarningFilter) ([]*models.PhotographerEarning, error) {
	args := m.Called(ctx, orgID, filter)
	if v := args.Get(0); v != nil {
		return v.([]*models.PhotographerEarning), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *EarningRepository) Update(ctx context.Context, earning *models.PhotographerEarning) error {
	args := m.Called(ctx, earning)
	return args.Error(0)
}

func (m *EarningRepository) Approve(ctx context.Context, orgID uuid.UUID, ids []uuid.UUID) (int64, error) {
	args := m.Called(ctx, orgID, ids)
	return args.Get(0).(int64), args.Error(1)
}

func (m *EarningRepository) PendingPayouts(ctx context.Context, orgID uuid.UUID) ([]*models.PendingPayout, error) {
	args := m.Called(ctx, orgID)
	if v := args.Get(0); v != nil {
		return v.([]*models.PendingPayout), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *EarningRepository) LockApprovedUnbatched(ctx context.Context, orgID uuid.UUID, photographerIDs []uuid.UUID) ([]*models.PhotographerEarning, error) {
	args := m.Called(ctx, orgID, photographerIDs)
	if v := args.Get(0); v != nil {
		return v.([]*models.PhotographerEarning), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *EarningRepository) AttachToBatch(ctx context.Context, batchID uuid.UUID, ids []uuid.UUID) (int64, error) {
	args := m.Called(ctx, batchID, ids)
	return args.Get(0).(int64), args.Error(1)
}

func (m *EarningRepository) DetachFromBatch(ctx context.Context, batchID uuid.UUID) (int64, error) {
	args := m.Called(ctx, batchID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *EarningRepository) MarkPaid(ctx context.Context, batchID uuid.UUID, photographerID uuid.UUID) (int64, error) {
	args := m.Called(ctx, batchID, photographerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *EarningRepository) OrgsWithApprovedUnbatched(ctx context.Context) ([]uuid.UUID, error) {
	args := m.Called(ctx)
	if v := args.Get(0); v != nil {
		return v.([]uuid.UUID), args.Error(1)
	}
	return nil, args.Error(1)
}

// PayoutRepository is a mock of repositories.PayoutRepository
type PayoutRepository struct {
	mock.Mock
}

var _ repositories.PayoutRepository = (*PayoutRepository)(nil)

func (m *PayoutRepository) CreateBatch(ctx context.Context, batch *models.PayoutBatch) error {
	args := m.Called(ctx, batch)
	return args.Error(0)
}

func (m *PayoutRepository) CreateItem(ctx context.Context, item *models.PayoutItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *PayoutRepository) GetBatch(ctx context.Context, orgID uuid.UUID, id uuid.UUID) (*models.PayoutBatch, error) {
	args := m.Called(ctx, orgID, id)
	if v := args.Get(0); v != nil {
		return v.(*models.PayoutBatch), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *PayoutRepository) GetBatchForUpdate(ctx context.Context, orgID uuid.UUID, id uuid.UUID) (*models.PayoutBatch, error) {
	args := m.Called(ctx, orgID, id)
	if v := args.Get(0); v != nil {
		return v.(*models.PayoutBatch), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *PayoutRepository) ListBatches(ctx context.Context, orgID uuid.UUID, limit int, offset int) ([]*models.PayoutBatch, error) {
	args := m.Called(ctx, orgID, limit, offset)
	if v := args.Get(0); v != nil {
		return v.([]*models.PayoutBatch), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *PayoutRepository) ListItems(ctx context.Context, batchID uuid.UUID) ([]*models.PayoutItem, error) {
	args := m.Called(ctx, batchID)
	if v := args.Get(0); v != nil {
		return v.([]*models.PayoutItem), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *PayoutRepository) UpdateBatch(ctx context.Context, batch *models.PayoutBatch) error {
	args := m.Called(ctx, batch)
	return args.Error(0)
}

func (m *PayoutRepository) UpdateItem(ctx context.Context, item *models.PayoutItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *PayoutRepository) CountBatches(ctx context.Context, orgID uuid.UUID) (int, error) {
	args := m.Called(ctx, orgID)
	return args.Get(0).(int), args.Error(1)
}

// WorkflowRepository is a mock of repositories.WorkflowRepository
type WorkflowRepository struct {
	mock.Mock
}

var _ repositories.WorkflowRepository = (*WorkflowRepository)(nil)

func (m *WorkflowRepository) Create(ctx context.Context, workflow *models.Workflow) error {
	args := m.Called(ctx, workflow)
	return args.Error(0)
}

func (m *WorkflowRepository) GetByID(ctx context.Context, orgID uuid.UUID, id uuid.UUID) (*models.Workflow, error) {
	args := m.Called(ctx, orgID, id)
	if v := args.Get(0); v != nil {
		return v.(*models.Workflow), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *WorkflowRepository) ListByOrg(ctx context.Context, orgID uuid.UUID) ([]*models.Workflow, error) {
	args := m.Called(ctx, orgID)
	if v := args.Get(0); v != nil {
		return v.([]*models.Workflow), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *WorkflowRepository) ListActiveByTrigger(ctx context.Context, orgID uuid.UUID, trigger models.WorkflowTrigger) ([]*models.Workflow, error) {
	args := m.Called(ctx, orgID, trigger)
	if v := args.Get(0); v != nil {
		return v.([]*models.Workflow), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *WorkflowRepository) Update(ctx context.Context, workflow *models.Workflow) error {
	args := m.Called(ctx, workflow)
	return args.Error(0)
}

func (m *WorkflowRepository) Delete(ctx context.Context, orgID uuid.UUID, id uuid.UUID) error {
	args := m.Called(ctx, orgID, id)
	return args.Error(0)
}

func (m *WorkflowRepository) CreateExecution(ctx context.Context, exec *models.WorkflowExecution) error {
	args := m.Called(ctx, exec)
	return args.Error(0)
}

func (m *WorkflowRepository) ListExecutions(ctx context.Context, orgID uuid.UUID, workflowID *uuid.UUID, limit int, offset int) ([]*models.WorkflowExecution, error) {
	args := m.Called(ctx, orgID, workflowID, limit, offset)
	if v := args.Get(0); v != nil {
		return v.([]*models.WorkflowExecution), args.Error(1)
	}
	return nil, args.Error(1)
}

// SupportRepository is a mock of repositories.SupportRepository
type SupportRepository struct {
	mock.Mock
}

var _ repositories.SupportRepository = (*SupportRepository)(nil)

func (m *SupportRepository) CreateTicket(ctx context.Context, ticket *models.SupportTicket) error {
	args := m.Called(ctx, ticket)
	return args.Error(0)
}

func (m *SupportRepository) GetTicket(ctx context.Context, id uuid.UUID) (*models.SupportTicket, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*models.SupportTicket), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *SupportRepository) ListTickets(ctx context.Context, orgID *uuid.UUID, status models.TicketStatus, limit int, offset int) ([]*models.SupportTicket, error) {
	args := m.Called(ctx, orgID, status, limit, offset)
	if v := args.Get(0); v != nil {
		return v.([]*models.SupportTicket), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *SupportRepository) UpdateTicket(ctx context.Context, ticket *models.SupportTicket) error {
	args := m.Called(ctx, ticket)
	return args.Error(0)
}

func (m *SupportRepository) CreateMessage(ctx context.Context, msg *models.SupportMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *SupportRepository) ListMessages(ctx context.Context, ticketID uuid.UUID) ([]*models.SupportMessage, error) {
	args := m.Called(ctx, ticketID)
	if v := args.Get(0); v != nil {
		return v.([]*models.SupportMessage), args.Error(1)
	}
	return nil, args.Error(1)
}

// ContentRepository is a mock of repositories.ContentRepository
type ContentRepository struct {
	mock.Mock
}

var _ repositories.ContentRepository = (*ContentRepository)(nil)

func (m *ContentRepository) CreateFAQ(ctx context.Context, faq *models.FAQ) error {
	args := m.Called(ctx, faq)
	return args.Error(0)
}

func (m *ContentRepository) GetFAQ(ctx context.Context, id uuid.UUID) (*models.FAQ, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*models.FAQ), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ContentRepository) ListFAQs(ctx context.Context, publishedOnly bool) ([]*models.FAQ, error) {
	args := m.Called(ctx, publishedOnly)
	if v := args.Get(0); v != nil {
		return v.([]*models.FAQ), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ContentRepository) UpdateFAQ(ctx context.Context, faq *models.FAQ) error {
	args := m.Called(ctx, faq)
	return args.Error(0)
}

func (m *ContentRepository) DeleteFAQ(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *ContentRepository) CreatePhase(ctx context.Context, phase *models.RoadmapPhase) error {
	args := m.Called(ctx, phase)
	return args.Error(0)
}

func (m *ContentRepository) GetPhase(ctx context.Context, id uuid.UUID) (*models.RoadmapPhase, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*models.RoadmapPhase), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ContentRepository) ListPhases(ctx context.Context) ([]*models.RoadmapPhase, error) {
	args := m.Called(ctx)
	if v := args.Get(0); v != nil {
		return v.([]*models.RoadmapPhase), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ContentRepository) UpdatePhase(ctx context.Context, phase *models.RoadmapPhase) error {
	args := m.Called(ctx, phase)
	return args.Error(0)
}

func (m *ContentRepository) DeletePhase(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *ContentRepository) CreateItem(ctx context.Context, item *models.RoadmapItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *ContentRepository) GetItem(ctx context.Context, id uuid.UUID) (*models.RoadmapItem, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*models.RoadmapItem), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ContentRepository) ListItems(ctx context.Context) ([]*models.RoadmapItem, error) {
	args := m.Called(ctx)
	if v := args.Get(0); v != nil {
		return v.([]*models.RoadmapItem), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ContentRepository) UpdateItem(ctx context.Context, item *models.RoadmapItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *ContentRepository) DeleteItem(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *ContentRepository) VoteItem(ctx context.Context, id uuid.UUID) (int, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int), args.Error(1)
}

// APIKeyRepository is a mock of repositories.APIKeyRepository
type APIKeyRepository struct {
	mock.Mock
}

var _ repositories.APIKeyRepository = (*APIKeyRepository)(nil)

func (m *APIKeyRepository) Create(ctx context.Context, key *models.APIKey) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *APIKeyRepository) GetByID(ctx context.Context, orgID uuid.UUID, id uuid.UUID) (*models.APIKey, error) {
	args := m.Called(ctx, orgID, id)
	if v := args.Get(0); v != nil {
		return v.(*models.APIKey), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *APIKeyRepository) GetByPrefix(ctx context.Context, prefix string) (*models.APIKey, error) {
	args := m.Called(ctx, prefix)
	if v := args.Get(0); v != nil {
		return v.(*models.APIKey), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *APIKeyRepository) ListByOrg(ctx context.Context, orgID uuid.UUID) ([]*models.APIKey, error) {
	args := m.Called(ctx, orgID)
	if v := args.Get(0); v != nil {
		return v.([]*models.APIKey), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *APIKeyRepository) Revoke(ctx context.Context, orgID uuid.UUID, id uuid.UUID, at time.Time) error {
	args := m.Called(ctx, orgID, id, at)
	return args.Error(0)
}

func (m *APIKeyRepository) Delete(ctx context.Context, orgID uuid.UUID, id uuid.UUID) error {
	args := m.Called(ctx, orgID, id)
	return args.Error(0)
}

func (m *APIKeyRepository) TouchLastUsed(ctx context.Context, id uuid.UUID, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

// FeatureFlagRepository is a mock of repositories.FeatureFlagRepository
type FeatureFlagRepository struct {
	mock.Mock
}

var _ repositories.FeatureFlagRepository = (*FeatureFlagRepository)(nil)

func (m *FeatureFlagRepository) Create(ctx context.Context, flag *models.FeatureFlag) error {
	args := m.Called(ctx, flag)
	return args.Error(0)
}

func (m *FeatureFlagRepository) GetByKey(ctx context.Context, key string) (*models.FeatureFlag, error) {
	args := m.Called(ctx, key)
	if v := args.Get(0); v != nil {
		return v.(*models.FeatureFlag), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *FeatureFlagRepository) List(ctx context.Context) ([]*models.FeatureFlag, error) {
	args := m.Called(ctx)
	if v := args.Get(0); v != nil {
		return v.([]*models.FeatureFlag), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *FeatureFlagRepository) Update(ctx context.Context, flag *models.FeatureFlag) error {
	args := m.Called(ctx, flag)
	return args.Error(0)
}

func (m *FeatureFlagRepository) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// SocialPostRepository is a mock of repositories.SocialPostRepository
type SocialPostRepository struct {
	mock.Mock
}

var _ repositories.SocialPostRepository = (*SocialPostRepository)(nil)

func (m *SocialPostRepository) Create(ctx context.Context, post *models.SocialPost) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *SocialPostRepository) GetByID(ctx context.Context, orgID uuid.UUID, id uuid.UUID) (*models.SocialPost, error) {
	args := m.Called(ctx, orgID, id)
	if v := args.Get(0); v != nil {
		return v.(*models.SocialPost), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *SocialPostRepository) List(ctx context.Context, orgID uuid.UUID, status models.SocialPostStatus, limit int, offset int) ([]*models.SocialPost, error) {
	args := m.Called(ctx, orgID, status, limit, offset)
	if v := args.Get(0); v != nil {
		return v.([]*models.SocialPost), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *SocialPostRepository) Update(ctx context.Context, post *models.SocialPost) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *SocialPostRepository) Delete(ctx context.Context, orgID uuid.UUID, id uuid.UUID) error {
	args := m.Called(ctx, orgID, id)
	return args.Error(0)
}

func (m *SocialPostRepository) ClaimDue(ctx context.Context, now time.Time, limit int) ([]*models.SocialPost, error) {
	args := m.Called(ctx, now, limit)
	if v := args.Get(0); v != nil {
		return v.([]*models.SocialPost), args.Error(1)
	}
	return nil, args.Error(1)
}

// AuditRepository is a mock of repositories.AuditRepository
type AuditRepository struct {
	mock.Mock
}

var _ repositories.AuditRepository = (*AuditRepository)(nil)

func (m *AuditRepository) Insert(ctx context.Context, log *models.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *AuditRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.AuditLog, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*models.AuditLog), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *AuditRepository) GetByOrgID(ctx context.Context, orgID uuid.UUID, limit int, offset int) ([]*models.AuditLog, error) {
	args := m.Called(ctx, orgID, limit, offset)
	if v := args.Get(0); v != nil {
		return v.([]*models.AuditLog), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *AuditRepository) GetByUserID(ctx context.Context, userID uuid.UUID, limit int, offset int) ([]*models.AuditLog, error) {
	args := m.Called(ctx, userID, limit, offset)
	if v := args.Get(0); v != nil {
		return v.([]*models.AuditLog), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *AuditRepository) GetByDateRange(ctx context.Context, orgID uuid.UUID, start time.Time, end time.Time, limit int, offset int) ([]*models.AuditLog, error) {
	args := m.Called(ctx, orgID, start, end, limit, offset)
	if v := args.Get(0); v != nil {
		return v.([]*models.AuditLog), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *AuditRepository) GetByAction(ctx context.Context, orgID uuid.UUID, action models.AuditAction, limit int, offset int) ([]*models.AuditLog, error) {
	args := m.Called(ctx, orgID, action, limit, offset)
	if v := args.Get(0); v != nil {
		return v.([]*models.AuditLog), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *AuditRepository) GetByRequestID(ctx context.Context, requestID string) ([]*models.AuditLog, error) {
	args := m.Called(ctx, requestID)
	if v := args.Get(0); v != nil {
		return v.([]*models.AuditLog), args.Error(1)
	}
	return nil, args.Error(1)
}
