package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/photoproos/platform/models"
)

var (
	// ErrNotFound is returned when a lookup matches no row
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is returned when an insert or update violates a unique constraint
	ErrDuplicate = errors.New("duplicate record")
)

// TransactionManager manages database transactions
type TransactionManager interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) (Transaction, error)

	// InTransaction executes a function within a transaction.
	// Repositories called with the ctx passed to fn run inside the transaction.
	// Automatically commits if function succeeds, rolls back on error
	InTransaction(ctx context.Context, fn func(ctx context.Context, tx Transaction) error) error
}

// Transaction represents a database transaction
type Transaction interface {
	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Context returns the transaction context
	Context() context.Context
}

// OrganizationRepository handles organization data operations
type OrganizationRepository interface {
	// Create creates a new organization
	Create(ctx context.Context, org *models.Organization) error

	// GetByID retrieves an organization by ID
	GetByID(ctx context.Context, id uuid.UUID) (*models.Organization, error)

	// GetBySlug retrieves an organization by slug
	GetBySlug(ctx context.Context, slug string) (*models.Organization, error)

	// List retrieves organizations with member, client and revenue counts
	List(ctx context.Context, limit, offset int) ([]*models.OrganizationSummary, error)

	// Update updates an organization
	Update(ctx context.Context, org *models.Organization) error

	// Delete deletes an organization
	Delete(ctx context.Context, id uuid.UUID) error
}

// UserRepository handles user data operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)

	// LockForUpdate locks the user row for the current transaction
	LockForUpdate(ctx context.Context, id uuid.UUID) error

	// GetByClerkUserID retrieves a user by Clerk subject
	GetByClerkUserID(ctx context.Context, clerkUserID string) (*models.User, error)

	// GetByOrgID retrieves all users for an organization
	GetByOrgID(ctx context.Context, orgID uuid.UUID) ([]*models.User, error)

	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ClientRepository handles CRM client data operations
type ClientRepository interface {
	Create(ctx context.Context, client *models.Client) error
	GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.Client, error)

	// List searches clients by name/email and tag
	List(ctx context.Context, orgID uuid.UUID, filter models.ClientFilter) ([]*models.Client, error)

	Update(ctx context.Context, client *models.Client) error
	Delete(ctx context.Context, orgID, id uuid.UUID) error

	// HasInvoices reports whether any invoice references the client
	HasInvoices(ctx context.Context, orgID, id uuid.UUID) (bool, error)

	// CountCreated counts clients created in [start, end)
	CountCreated(ctx context.Context, orgID uuid.UUID, start, end time.Time) (int, error)
}

// GalleryRepository handles gallery data operations
type GalleryRepository interface {
	Create(ctx context.Context, gallery *models.Gallery) error
	GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.Gallery, error)
	List(ctx context.Context, orgID uuid.UUID, clientID *uuid.UUID, limit, offset int) ([]*models.Gallery, error)
	Update(ctx context.Context, gallery *models.Gallery) error
	Delete(ctx context.Context, orgID, id uuid.UUID) error

	// CountDelivered counts galleries delivered in [start, end)
	CountDelivered(ctx context.Context, orgID uuid.UUID, start, end time.Time) (int, error)
}

// InvoiceRepository handles invoice data operations
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *models.Invoice) error
	GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.Invoice, error)

	// GetByIDForUpdate locks the invoice row for the current transaction
	GetByIDForUpdate(ctx context.Context, orgID, id uuid.UUID) (*models.Invoice, error)

	List(ctx context.Context, orgID uuid.UUID, status models.InvoiceStatus, limit, offset int) ([]*models.Invoice, error)
	Update(ctx context.Context, invoice *models.Invoice) error

	// NextSequence returns the next invoice sequence number for the organization and year
	NextSequence(ctx context.Context, orgID uuid.UUID, year int) (int, error)

	// MarkOverdue moves sent invoices due before now to overdue and returns how many changed
	MarkOverdue(ctx context.Context, now time.Time) (int64, error)

	// CountByStatus counts invoices created in [start, end) per status
	CountByStatus(ctx context.Context, orgID uuid.UUID, start, end time.Time) (map[models.InvoiceStatus]int, error)

	// OutstandingCents sums unpaid balances of sent and overdue invoices
	OutstandingCents(ctx context.Context, orgID uuid.UUID) (int64, error)
}

// PaymentRepository handles payment data operations
type PaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.Payment, error)

	// GetByIDForUpdate locks the payment row for the current transaction
	GetByIDForUpdate(ctx context.Context, orgID, id uuid.UUID) (*models.Payment, error)

	// GetByProviderPaymentID retrieves a payment by processor reference
	GetByProviderPaymentID(ctx context.Context, providerPaymentID string) (*models.Payment, error)

	ListByInvoice(ctx context.Context, orgID, invoiceID uuid.UUID) ([]*models.Payment, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.PaymentStatus) error

	// SumSucceeded sums succeeded payments paid in [start, end)
	SumSucceeded(ctx context.Context, orgID uuid.UUID, start, end time.Time) (int64, error)

	// DailyRevenue sums succeeded payments per UTC day (YYYY-MM-DD) in [start, end)
	DailyRevenue(ctx context.Context, orgID uuid.UUID, start, end time.Time) (map[string]int64, error)
}

// BookingRepository handles booking data operations
type BookingRepository interface {
	Create(ctx context.Context, booking *models.Booking) error
	GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.Booking, error)
	List(ctx context.Context, orgID uuid.UUID, filter models.BookingFilter) ([]*models.Booking, error)
	Update(ctx context.Context, booking *models.Booking) error

	// FindOverlapping returns non-cancelled bookings of the photographer intersecting [start, end)
	FindOverlapping(ctx context.Context, orgID, photographerID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) ([]*models.Booking, error)

	// CountByStatus counts bookings starting in [start, end) per status
	CountByStatus(ctx context.Context, orgID uuid.UUID, start, end time.Time) (map[models.BookingStatus]int, error)

	// RevenueByServiceType sums completed booking prices per service type
	RevenueByServiceType(ctx context.Context, orgID uuid.UUID, start, end time.Time) (map[string]int64, error)
}

// RateRepository handles photographer pay-rate data operations
type RateRepository interface {
	Create(ctx context.Context, rate *models.PhotographerRate) error
	GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.PhotographerRate, error)

	// ListByPhotographer returns every rate of the photographer, active or not
	ListByPhotographer(ctx context.Context, orgID, photographerID uuid.UUID) ([]*models.PhotographerRate, error)

	Update(ctx context.Context, rate *models.PhotographerRate) error
	Delete(ctx context.Context, orgID, id uuid.UUID) error
}

// EarningRepository handles photographer earning data operations
type EarningRepository interface {
	Create(ctx context.Context, earning *models.PhotographerEarning) error
	GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.PhotographerEarning, error)

	// GetByIDForUpdate locks the earning row for the current transaction
	GetByIDForUpdate(ctx context.Context, orgID, id uuid.UUID) (*models.PhotographerEarning, error)
	GetByBooking(ctx context.Context, orgID, bookingID uuid.UUID) (*models.PhotographerEarning, error)
	List(ctx context.Context, orgID uuid.UUID, filter models.EarningFilter) ([]*models.PhotographerEarning, error)
	Update(ctx context.Context, earning *models.PhotographerEarning) error

	// Approve moves the given pending earnings to approved and returns how many changed
	Approve(ctx context.Context, orgID uuid.UUID, ids []uuid.UUID) (int64, error)

	// PendingPayouts groups approved, unbatched earnings by photographer
	PendingPayouts(ctx context.Context, orgID uuid.UUID) ([]*models.PendingPayout, error)

	// LockApprovedUnbatched selects approved, unbatched earnings FOR UPDATE.
	// An empty photographerIDs selects every photographer.
	LockApprovedUnbatched(ctx context.Context, orgID uuid.UUID, photographerIDs []uuid.UUID) ([]*models.PhotographerEarning, error)

	// AttachToBatch sets payout_batch_id on the given earnings
	AttachToBatch(ctx context.Context, batchID uuid.UUID, ids []uuid.UUID) (int64, error)

	// DetachFromBatch clears payout_batch_id for every earning of the batch
	DetachFromBatch(ctx context.Context, batchID uuid.UUID) (int64, error)

	// MarkPaid marks the batch earnings of one photographer as paid
	MarkPaid(ctx context.Context, batchID, photographerID uuid.UUID) (int64, error)

	// OrgsWithApprovedUnbatched lists organizations that have earnings ready for payout
	OrgsWithApprovedUnbatched(ctx context.Context) ([]uuid.UUID, error)
}

// PayoutRepository handles payout batch data operations
type PayoutRepository interface {
	CreateBatch(ctx context.Context, batch *models.PayoutBatch) error
	CreateItem(ctx context.Context, item *models.PayoutItem) error

	// GetBatch retrieves a batch with its items
	GetBatch(ctx context.Context, orgID, id uuid.UUID) (*models.PayoutBatch, error)

	// GetBatchForUpdate locks the batch row for the current transaction
	GetBatchForUpdate(ctx context.Context, orgID, id uuid.UUID) (*models.PayoutBatch, error)

	ListBatches(ctx context.Context, orgID uuid.UUID, limit, offset int) ([]*models.PayoutBatch, error)
	ListItems(ctx context.Context, batchID uuid.UUID) ([]*models.PayoutItem, error)
	UpdateBatch(ctx context.Context, batch *models.PayoutBatch) error
	UpdateItem(ctx context.Context, item *models.PayoutItem) error

	// CountBatches counts every batch the organization ever created
	CountBatches(ctx context.Context, orgID uuid.UUID) (int, error)
}

// WorkflowRepository handles workflow and execution data operations
type WorkflowRepository interface {
	Create(ctx context.Context, workflow *models.Workflow) error
	GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.Workflow, error)
	ListByOrg(ctx context.Context, orgID uuid.UUID) ([]*models.Workflow, error)

	// ListActiveByTrigger returns active workflows for the trigger in creation order
	ListActiveByTrigger(ctx context.Context, orgID uuid.UUID, trigger models.WorkflowTrigger) ([]*models.Workflow, error)

	Update(ctx context.Context, workflow *models.Workflow) error
	Delete(ctx context.Context, orgID, id uuid.UUID) error

	CreateExecution(ctx context.Context, exec *models.WorkflowExecution) error
	ListExecutions(ctx context.Context, orgID uuid.UUID, workflowID *uuid.UUID, limit, offset int) ([]*models.WorkflowExecution, error)
}

// SupportRepository handles support ticket data operations
type SupportRepository interface {
	CreateTicket(ctx context.Context, ticket *models.SupportTicket) error
	GetTicket(ctx context.Context, id uuid.UUID) (*models.SupportTicket, error)

	// ListTickets lists tickets of one organization, or of all organizations when orgID is nil
	ListTickets(ctx context.Context, orgID *uuid.UUID, status models.TicketStatus, limit, offset int) ([]*models.SupportTicket, error)

	UpdateTicket(ctx context.Context, ticket *models.SupportTicket) error
	CreateMessage(ctx context.Context, msg *models.SupportMessage) error
	ListMessages(ctx context.Context, ticketID uuid.UUID) ([]*models.SupportMessage, error)
}

// ContentRepository handles FAQ and roadmap content
type ContentRepository interface {
	CreateFAQ(ctx context.Context, faq *models.FAQ) error
	GetFAQ(ctx context.Context, id uuid.UUID) (*models.FAQ, error)
	ListFAQs(ctx context.Context, publishedOnly bool) ([]*models.FAQ, error)
	UpdateFAQ(ctx context.Context, faq *models.FAQ) error
	DeleteFAQ(ctx context.Context, id uuid.UUID) error

	CreatePhase(ctx context.Context, phase *models.RoadmapPhase) error
	GetPhase(ctx context.Context, id uuid.UUID) (*models.RoadmapPhase, error)
	ListPhases(ctx context.Context) ([]*models.RoadmapPhase, error)
	UpdatePhase(ctx context.Context, phase *models.RoadmapPhase) error
	DeletePhase(ctx context.Context, id uuid.UUID) error

	CreateItem(ctx context.Context, item *models.RoadmapItem) error
	GetItem(ctx context.Context, id uuid.UUID) (*models.RoadmapItem, error)
	ListItems(ctx context.Context) ([]*models.RoadmapItem, error)
	UpdateItem(ctx context.Context, item *models.RoadmapItem) error
	DeleteItem(ctx context.Context, id uuid.UUID) error

	// VoteItem increments the vote count and returns the new total
	VoteItem(ctx context.Context, id uuid.UUID) (int, error)
}

// APIKeyRepository handles API key data operations
type APIKeyRepository interface {
	Create(ctx context.Context, key *models.APIKey) error
	GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.APIKey, error)

	// GetByPrefix retrieves a key by its public prefix
	GetByPrefix(ctx context.Context, prefix string) (*models.APIKey, error)

	ListByOrg(ctx context.Context, orgID uuid.UUID) ([]*models.APIKey, error)
	Revoke(ctx context.Context, orgID, id uuid.UUID, at time.Time) error
	Delete(ctx context.Context, orgID, id uuid.UUID) error
	TouchLastUsed(ctx context.Context, id uuid.UUID, at time.Time) error
}

// FeatureFlagRepository handles feature flag data operations
type FeatureFlagRepository interface {
	Create(ctx context.Context, flag *models.FeatureFlag) error
	GetByKey(ctx context.Context, key string) (*models.FeatureFlag, error)
	List(ctx context.Context) ([]*models.FeatureFlag, error)
	Update(ctx context.Context, flag *models.FeatureFlag) error
	Delete(ctx context.Context, key string) error
}

// SocialPostRepository handles social post data operations
type SocialPostRepository interface {
	Create(ctx context.Context, post *models.SocialPost) error
	GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.SocialPost, error)
	List(ctx context.Context, orgID uuid.UUID, status models.SocialPostStatus, limit, offset int) ([]*models.SocialPost, error)
	Update(ctx context.Context, post *models.SocialPost) error
	Delete(ctx context.Context, orgID, id uuid.UUID) error

	// ClaimDue moves up to limit scheduled posts of every organization due at or
	// before now to publishing and returns them. Rows claimed by a concurrent
	// caller are skipped.
	ClaimDue(ctx context.Context, now time.Time, limit int) ([]*models.SocialPost, error)
}

// AuditRepository handles audit log data operations
type AuditRepository interface {
	// Insert inserts a new audit log entry
	Insert(ctx context.Context, log *models.AuditLog) error

	// GetByID retrieves an audit log by ID
	GetByID(ctx context.Context, id uuid.UUID) (*models.AuditLog, error)

	// GetByOrgID retrieves audit logs for an organization with pagination
	GetByOrgID(ctx context.Context, orgID uuid.UUID, limit, offset int) ([]*models.AuditLog, error)

	// GetByUserID retrieves audit logs for a user with pagination
	GetByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.AuditLog, error)

	// GetByDateRange retrieves audit logs within a date range
	GetByDateRange(ctx context.Context, orgID uuid.UUID, start, end time.Time, limit, offset int) ([]*models.AuditLog, error)

	// GetByAction retrieves audit logs by action type
	GetByAction(ctx context.Context, orgID uuid.UUID, action models.AuditAction, limit, offset int) ([]*models.AuditLog, error)

	// GetByRequestID retrieves audit logs by request ID
	GetByRequestID(ctx context.Context, requestID string) ([]*models.AuditLog, error)
}

// Repositories aggregates all repository interfaces
type Repositories struct {
	Organizations OrganizationRepository
	Users         UserRepository
	Clients       ClientRepository
	Galleries     GalleryRepository
	Invoices      InvoiceRepository
	Payments      PaymentRepository
	Bookings      BookingRepository
	Rates         RateRepository
	Earnings      EarningRepository
	Payouts       PayoutRepository
	Workflows     WorkflowRepository
	Support       SupportRepository
	Content       ContentRepository
	APIKeys       APIKeyRepository
	FeatureFlags  FeatureFlagRepository
	SocialPosts   SocialPostRepository
	AuditLogs     AuditRepository
}
