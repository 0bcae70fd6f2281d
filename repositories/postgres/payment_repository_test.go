package postgres

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/photoproos/platform/models"
	"github.com/photoproos/platform/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var paymentColumnNames = []string{
	"id", "org_id", "invoice_id", "client_id", "amount_cents", "currency", "status", "provider",
	"provider_payment_id", "paid_at", "created_at",
}

func TestPaymentRepository_GetByIDForUpdate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPaymentRepository(db, zap.NewNop())
	orgID, id := uuid.New(), uuid.New()
	paidAt := time.Date(2026, 5, 2, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM payments WHERE org_id = $1 AND id = $2 FOR UPDATE")).
		WithArgs(orgID, id).
		WillReturnRows(sqlmock.NewRows(paymentColumnNames).
			AddRow(id.String(), orgID.String(), uuid.New().String(), uuid.New().String(), 4000, "usd",
				"succeeded", "stripe", "pi_9", paidAt, paidAt))

	p, err := repo.GetByIDForUpdate(context.Background(), orgID, id)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusSucceeded, p.Status)
	assert.Equal(t, "pi_9", p.ProviderPaymentID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepository_GetByIDForUpdateManualPayment(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPaymentRepository(db, zap.NewNop())
	orgID, id := uuid.New(), uuid.New()
	now := time.Now().UTC()

	mock.ExpectQuery("FOR UPDATE").
		WillReturnRows(sqlmock.NewRows(paymentColumnNames).
			AddRow(id.String(), orgID.String(), uuid.New().String(), uuid.New().String(), 2500, "usd",
				"succeeded", "cash", nil, now, now))

	p, err := repo.GetByIDForUpdate(context.Background(), orgID, id)
	require.NoError(t, err)
	assert.Empty(t, p.ProviderPaymentID)
}

func TestPaymentRepository_UpdateStatusMissing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPaymentRepository(db, zap.NewNop())

	mock.ExpectExec("UPDATE payments SET status").WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(context.Background(), uuid.New(), models.PaymentStatusRefunded)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestUserRepository_LockForUpdate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db, zap.NewNop())
	id := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM users WHERE id = $1 FOR UPDATE")).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(id.String()))

	require.NoError(t, repo.LockForUpdate(context.Background(), id))
	assert.NoError(t, mock.ExpectationsWereMet())

	mock.ExpectQuery("FROM users").WillReturnError(sql.ErrNoRows)
	assert.ErrorIs(t, repo.LockForUpdate(context.Background(), uuid.New()), repositories.ErrNotFound)
}
