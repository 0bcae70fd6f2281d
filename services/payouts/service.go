package payouts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/photoproos/platform/config"
	"github.com/photoproos/platform/models"
	"github.com/photoproos/platform/repositories"
	"github.com/photoproos/platform/services"
	"github.com/photoproos/platform/services/audit"
	"github.com/photoproos/platform/services/reports"
	"go.uber.org/zap"
)

// Disburser moves money to a photographer's connected account
type Disburser interface {
	// Transfer sends amountCents to destination and returns the processor's transfer ID
	Transfer(ctx context.Context, destination string, amountCents int64, currency, idempotencyKey string) (string, error)
}

// CreateBatchInput selects what goes into a new batch
type CreateBatchInput struct {
	PhotographerIDs []uuid.UUID `json:"photographer_ids"`
	Notes           string      `json:"notes" validate:"max=1000"`
}

// PayoutService groups approved earnings into payout batches and disburses them
type PayoutService struct {
	earningRepo repositories.EarningRepository
	payoutRepo  repositories.PayoutRepository
	userRepo    repositories.UserRepository
	txManager   repositories.TransactionManager
	disburser   Disburser
	audit       audit.Recorder
	cfg         config.PayoutConfig
	logger      *zap.Logger
	now         func() time.Time
}

// NewPayoutService creates a new PayoutService instance
func NewPayoutService(
	earningRepo repositories.EarningRepository,
	payoutRepo repositories.PayoutRepository,
	userRepo repositories.UserRepository,
	txManager repositories.TransactionManager,
	disburser Disburser,
	recorder audit.Recorder,
	cfg config.PayoutConfig,
	logger *zap.Logger,
) *PayoutService {
	return &PayoutService{
		earningRepo: earningRepo,
		payoutRepo:  payoutRepo,
		userRepo:    userRepo,
		txManager:   txManager,
		disburser:   disburser,
		audit:       recorder,
		cfg:         cfg,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// PendingSummary groups approved, unbatched earnings by photographer
func (s *PayoutService) PendingSummary(ctx context.Context, orgID uuid.UUID) ([]*models.PendingPayout, error) {
	pending, err := s.earningRepo.PendingPayouts(ctx, orgID)
	if err != nil {
		return nil, services.WrapInternal("failed to summarise pending payouts", err)
	}
	return pending, nil
}

// ListBatches lists batches newest first
func (s *PayoutService) ListBatches(ctx context.Context, orgID uuid.UUID, limit, offset int) ([]*models.PayoutBatch, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	batches, err := s.payoutRepo.ListBatches(ctx, orgID, limit, offset)
	if err != nil {
		return nil, services.WrapInternal("failed to list payout batches", err)
	}
	return batches, nil
}

// GetBatch returns a batch with its items
func (s *PayoutService) GetBatch(ctx context.Context, orgID, id uuid.UUID) (*models.PayoutBatch, error) {
	batch, err := s.payoutRepo.GetBatch(ctx, orgID, id)
	if err != nil {
		return nil, services.MapRepoError(err, services.ErrPayoutBatchNotFound, "failed to load payout batch")
	}
	return batch, nil
}

type photographerTotal struct {
	photographerID uuid.UUID
	cents          int64
	earningIDs     []uuid.UUID
}

// groupByPhotographer sums earnings per photographer, keeping first-appearance order
func groupByPhotographer(earnings []*models.PhotographerEarning) []*photographerTotal {
	index := make(map[uuid.UUID]*photographerTotal)
	var groups []*photographerTotal
	for _, e := range earnings {
		g, ok := index[e.PhotographerID]
		if !ok {
			g = &photographerTotal{photographerID: e.PhotographerID}
			index[e.PhotographerID] = g
			groups = append(groups, g)
		}
		g.cents += e.AmountCents
		g.earningIDs = append(g.earningIDs, e.ID)
	}
	return groups
}

// CreateBatch batches the approved, unbatched earnings of the selected photographers.
// An empty selection includes every photographer. Photographers whose total is under
// the configured minimum stay unbatched.
func (s *PayoutService) CreateBatch(ctx context.Context, orgID, actorID uuid.UUID, input CreateBatchInput) (*models.PayoutBatch, error) {
	batch, err := services.WithTransactionResult(ctx, s.txManager, func(ctx context.Context, tx repositories.Transaction) (*models.PayoutBatch, error) {
		earnings, err := s.earningRepo.LockApprovedUnbatched(ctx, orgID, input.PhotographerIDs)
		if err != nil {
			return nil, services.WrapInternal("failed to lock earnings", err)
		}

		var groups []*photographerTotal
		for _, g := range groupByPhotographer(earnings) {
			if g.cents >= s.cfg.MinPayoutCents {
				groups = append(groups, g)
			}
		}
		if len(groups) == 0 {
			return nil, services.ErrNothingToPayout
		}

		count, err := s.payoutRepo.CountBatches(ctx, orgID)
		if err != nil {
			return nil, services.WrapInternal("failed to count payout batches", err)
		}

		now := s.now()
		batch := &models.PayoutBatch{
			ID:          uuid.New(),
			OrgID:       orgID,
			BatchNumber: models.FormatBatchNumber(now, count+1),
			Status:      models.PayoutBatchPending,
			Currency:    s.cfg.Currency,
			Notes:       input.Notes,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if actorID != uuid.Nil {
			createdBy := actorID
			batch.CreatedBy = &createdBy
		}

		var included []uuid.UUID
		for _, g := range groups {
			batch.Items = append(batch.Items, &models.PayoutItem{
				ID:             uuid.New(),
				BatchID:        batch.ID,
				OrgID:          orgID,
				PhotographerID: g.photographerID,
				AmountCents:    g.cents,
				EarningsCount:  len(g.earningIDs),
				Status:         models.PayoutItemPending,
				CreatedAt:      now,
			})
			batch.TotalCents += g.cents
			included = append(included, g.earningIDs...)
		}
		batch.ItemCount = len(batch.Items)

		if err := s.payoutRepo.CreateBatch(ctx, batch); err != nil {
			return nil, services.MapRepoError(err, services.ErrPayoutBatchNotFound, "failed to create payout batch")
		}
		for _, item := range batch.Items {
			if err := s.payoutRepo.CreateItem(ctx, item); err != nil {
				return nil, services.WrapInternal("failed to create payout item", err)
			}
		}

		attached, err := s.earningRepo.AttachToBatch(ctx, batch.ID, included)
		if err != nil {
			return nil, services.WrapInternal("failed to attach earnings", err)
		}
		if attached != int64(len(included)) {
			return nil, services.ErrConcurrentUpdate
		}
		return batch, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("payout batch created",
		zap.String("org_id", orgID.String()),
		zap.String("batch_number", batch.BatchNumber),
		zap.Int("items", batch.ItemCount),
		zap.Int64("total_cents", batch.TotalCents))

	s.audit.Record(ctx, audit.Entry{
		OrgID:        orgID,
		UserID:       actorID,
		Action:       models.AuditActionPayoutCreated,
		ResourceType: "payout_batch",
		ResourceID:   batch.ID,
		Details: map[string]interface{}{
			"batch_number": batch.BatchNumber,
			"total_cents":  batch.TotalCents,
			"item_count":   batch.ItemCount,
		},
	})
	return batch, nil
}

// ProcessBatch disburses the pending items of a batch.
// Items fail individually; the batch ends completed, partially_failed or failed.
// A batch left processing, or one with items whose outcome could not be
// recorded, can be processed again: only items still pending are disbursed and
// the transfer idempotency key keeps a retried transfer from paying twice.
func (s *PayoutService) ProcessBatch(ctx context.Context, orgID, actorID, batchID uuid.UUID) (*models.PayoutBatch, error) {
	var items []*models.PayoutItem
	batch, err := services.WithTransactionResult(ctx, s.txManager, func(ctx context.Context, tx repositories.Transaction) (*models.PayoutBatch, error) {
		batch, err := s.payoutRepo.GetBatchForUpdate(ctx, orgID, batchID)
		if err != nil {
			return nil, services.MapRepoError(err, services.ErrPayoutBatchNotFound, "failed to lock payout batch")
		}
		if batch.Status == models.PayoutBatchCancelled {
			return nil, services.ErrBatchNotPending
		}

		items, err = s.payoutRepo.ListItems(ctx, batch.ID)
		if err != nil {
			return nil, services.WrapInternal("failed to list payout items", err)
		}
		if batch.Status != models.PayoutBatchPending && countPending(items) == 0 {
			return nil, services.ErrBatchNotPending
		}
		if batch.Status == models.PayoutBatchProcessing {
			s.logger.Warn("resuming payout batch", zap.String("batch_id", batch.ID.String()))
		}

		batch.Status = models.PayoutBatchProcessing
		batch.UpdatedAt = s.now()
		if err := s.payoutRepo.UpdateBatch(ctx, batch); err != nil {
			return nil, services.MapRepoError(err, services.ErrPayoutBatchNotFound, "failed to start payout batch")
		}
		return batch, nil
	})
	if err != nil {
		return nil, err
	}

	var paid, failed, unrecorded int
	for _, item := range items {
		if item.Status == models.PayoutItemPending {
			if err := s.disburse(ctx, batch, item); err != nil {
				unrecorded++
				s.logger.Error("payout item outcome not recorded",
					zap.String("batch_id", batch.ID.String()),
					zap.String("item_id", item.ID.String()),
					zap.String("outcome", string(item.Status)),
					zap.Error(err))
			}
		}
		if item.Status == models.PayoutItemPaid {
			paid++
		} else {
			failed++
		}
	}

	processedAt := s.now()
	batch.Status = models.FinalBatchStatus(paid, failed)
	batch.ProcessedAt = &processedAt
	batch.UpdatedAt = processedAt
	batch.Items = items
	if err := s.payoutRepo.UpdateBatch(ctx, batch); err != nil {
		return nil, services.MapRepoError(err, services.ErrPayoutBatchNotFound, "failed to finish payout batch")
	}

	s.logger.Info("payout batch processed",
		zap.String("batch_id", batch.ID.String()),
		zap.String("status", string(batch.Status)),
		zap.Int("paid", paid),
		zap.Int("failed", failed),
		zap.Int("unrecorded", unrecorded))

	s.audit.Record(ctx, audit.Entry{
		OrgID:        orgID,
		UserID:       actorID,
		Action:       models.AuditActionPayoutProcessed,
		ResourceType: "payout_batch",
		ResourceID:   batch.ID,
		Details: map[string]interface{}{
			"status":     string(batch.Status),
			"paid":       paid,
			"failed":     failed,
			"unrecorded": unrecorded,
		},
	})
	return batch, nil
}

func countPending(items []*models.PayoutItem) int {
	n := 0
	for _, item := range items {
		if item.Status == models.PayoutItemPending {
			n++
		}
	}
	return n
}

// disburse transfers one item and records the outcome on the item.
// Only storage failures are returned; transfer failures mark the item failed.
func (s *PayoutService) disburse(ctx context.Context, batch *models.PayoutBatch, item *models.PayoutItem) error {
	transferID, reason := s.transfer(ctx, batch, item)
	if reason != "" {
		item.Status = models.PayoutItemFailed
		item.FailureReason = reason
		s.logger.Warn("payout item failed",
			zap.String("item_id", item.ID.String()),
			zap.String("photographer_id", item.PhotographerID.String()),
			zap.String("reason", reason))
		if err := s.payoutRepo.UpdateItem(ctx, item); err != nil {
			return services.WrapInternal("failed to update payout item", err)
		}
		return nil
	}

	item.Status = models.PayoutItemPaid
	item.TransferID = transferID
	item.FailureReason = ""
	return services.WithTransaction(ctx, s.txManager, func(ctx context.Context, tx repositories.Transaction) error {
		if err := s.payoutRepo.UpdateItem(ctx, item); err != nil {
			return services.WrapInternal("failed to update payout item", err)
		}
		if _, err := s.earningRepo.MarkPaid(ctx, batch.ID, item.PhotographerID); err != nil {
			return services.WrapInternal("failed to mark earnings paid", err)
		}
		return nil
	})
}

func (s *PayoutService) transfer(ctx context.Context, batch *models.PayoutBatch, item *models.PayoutItem) (string, string) {
	user, err := s.userRepo.GetByID(ctx, item.PhotographerID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return "", "photographer not found"
		}
		return "", fmt.Sprintf("failed to load photographer: %v", err)
	}
	if user.StripeAccountID == "" {
		return "", "photographer has no connected payout account"
	}

	transferID, err := s.disburser.Transfer(ctx, user.StripeAccountID, item.AmountCents, batch.Currency, "payout_item_"+item.ID.String())
	if err != nil {
		return "", err.Error()
	}
	return transferID, ""
}

// CancelBatch cancels a pending batch and releases its earnings
func (s *PayoutService) CancelBatch(ctx context.Context, orgID, actorID, batchID uuid.UUID) (*models.PayoutBatch, error) {
	batch, err := services.WithTransactionResult(ctx, s.txManager, func(ctx context.Context, tx repositories.Transaction) (*models.PayoutBatch, error) {
		batch, err := s.payoutRepo.GetBatchForUpdate(ctx, orgID, batchID)
		if err != nil {
			return nil, services.MapRepoError(err, services.ErrPayoutBatchNotFound, "failed to lock payout batch")
		}
		if batch.Status != models.PayoutBatchPending {
			return nil, services.ErrBatchNotPending
		}

		if _, err := s.earningRepo.DetachFromBatch(ctx, batch.ID); err != nil {
			return nil, services.WrapInternal("failed to detach earnings", err)
		}

		batch.Status = models.PayoutBatchCancelled
		batch.UpdatedAt = s.now()
		if err := s.payoutRepo.UpdateBatch(ctx, batch); err != nil {
			return nil, services.MapRepoError(err, services.ErrPayoutBatchNotFound, "failed to cancel payout batch")
		}
		return batch, nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, audit.Entry{
		OrgID:        orgID,
		UserID:       actorID,
		Action:       models.AuditActionPayoutCancelled,
		ResourceType: "payout_batch",
		ResourceID:   batch.ID,
	})
	return batch, nil
}

// ExportBatch renders the batch items as an XLSX workbook
func (s *PayoutService) ExportBatch(ctx context.Context, orgID, batchID uuid.UUID) ([]byte, string, error) {
	batch, err := s.GetBatch(ctx, orgID, batchID)
	if err != nil {
		return nil, "", err
	}

	names := make(map[uuid.UUID]*models.User, len(batch.Items))
	if users, err := s.userRepo.GetByOrgID(ctx, orgID); err == nil {
		for _, u := range users {
			names[u.ID] = u
		}
	} else {
		s.logger.Warn("export without photographer names", zap.Error(err))
	}

	rows := make([][]interface{}, 0, len(batch.Items))
	for _, item := range batch.Items {
		var name, email string
		if u, ok := names[item.PhotographerID]; ok {
			name, email = u.Name, u.Email
		}
		rows = append(rows, []interface{}{
			name,
			email,
			item.EarningsCount,
			reports.Cents(item.AmountCents),
			string(item.Status),
			item.TransferID,
			item.FailureReason,
		})
	}

	summary := [][]interface{}{
		{"Batch", batch.BatchNumber},
		{"Status", string(batch.Status)},
		{"Currency", batch.Currency},
		{"Total", reports.Cents(batch.TotalCents)},
		{"Items", batch.ItemCount},
		{"Created", batch.CreatedAt},
	}
	if batch.ProcessedAt != nil {
		summary = append(summary, []interface{}{"Processed", *batch.ProcessedAt})
	}

	data, err := reports.Render(
		reports.Sheet{
			Name:    "Items",
			Headers: []string{"Photographer", "Email", "Earnings", "Amount", "Status", "Transfer ID", "Failure Reason"},
			Rows:    rows,
			Widths:  []float64{28, 32, 10, 14, 12, 30, 40},
		},
		reports.Sheet{
			Name:    "Summary",
			Headers: []string{"Field", "Value"},
			Rows:    summary,
			Widths:  []float64{14, 30},
		},
	)
	if err != nil {
		return nil, "", services.WrapInternal("failed to render payout export", err)
	}
	return data, batch.BatchNumber + ".xlsx", nil
}

// RunScheduled creates a batch for every organization with approved earnings.
// Organizations with nothing over the minimum are skipped.
func (s *PayoutService) RunScheduled(ctx context.Context) (int, error) {
	orgs, err := s.earningRepo.OrgsWithApprovedUnbatched(ctx)
	if err != nil {
		return 0, services.WrapInternal("failed to list organizations with pending payouts", err)
	}

	created := 0
	var failures int
	for _, orgID := range orgs {
		if ctx.Err() != nil {
			return created, ctx.Err()
		}
		_, err := s.CreateBatch(ctx, orgID, uuid.Nil, CreateBatchInput{Notes: "Scheduled payout run"})
		switch {
		case err == nil:
			created++
		case errors.Is(err, services.ErrNothingToPayout):
		default:
			failures++
			s.logger.Error("scheduled payout batch failed", zap.String("org_id", orgID.String()), zap.Error(err))
		}
	}

	s.logger.Info("scheduled payout run finished",
		zap.Int("organizations", len(orgs)),
		zap.Int("batches_created", created),
		zap.Int("failures", failures))
	return created, nil
}
