package services

import (
	"context"
	"errors"
	"testing"

	"github.com/photoproos/platform/models"
	"github.com/photoproos/platform/repositories"
	"github.com/photoproos/platform/repositories/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithTransaction(t *testing.T) {
	t.Run("commits on success", func(t *testing.T) {
		txm := &mocks.TxManager{}

		err := WithTransaction(context.Background(), txm, func(ctx context.Context, tx repositories.Transaction) error {
			return nil
		})

		require.NoError(t, err)
		assert.Equal(t, 1, txm.Begins)
		assert.Equal(t, 1, txm.Commits)
		assert.Zero(t, txm.Rollbacks)
	})

	t.Run("rolls back and returns the function error", func(t *testing.T) {
		txm := &mocks.TxManager{}

		err := WithTransaction(context.Background(), txm, func(ctx context.Context, tx repositories.Transaction) error {
			return ErrInvoiceNotFound
		})

		assert.ErrorIs(t, err, ErrInvoiceNotFound)
		assert.Zero(t, txm.Commits)
		assert.Equal(t, 1, txm.Rollbacks)
	})
}

func TestWithTransactionResult(t *testing.T) {
	t.Run("returns the committed value", func(t *testing.T) {
		txm := &mocks.TxManager{}

		batch, err := WithTransactionResult(context.Background(), txm, func(ctx context.Context, tx repositories.Transaction) (*models.PayoutBatch, error) {
			return &models.PayoutBatch{BatchNumber: "PB-20260406-1"}, nil
		})

		require.NoError(t, err)
		assert.Equal(t, "PB-20260406-1", batch.BatchNumber)
		assert.Equal(t, 1, txm.Commits)
	})

	t.Run("drops partial results on failure", func(t *testing.T) {
		txm := &mocks.TxManager{}
		boom := errors.New("transfer ledger unavailable")

		batch, err := WithTransactionResult(context.Background(), txm, func(ctx context.Context, tx repositories.Transaction) (*models.PayoutBatch, error) {
			return &models.PayoutBatch{}, boom
		})

		assert.ErrorIs(t, err, boom)
		assert.Nil(t, batch)
		assert.Equal(t, 1, txm.Rollbacks)
	})
}
