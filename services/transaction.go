package services

import (
	"context"

	"github.com/photoproos/platform/repositories"
)

// WithTransaction runs fn through txMgr. Repositories called with the
// context handed to fn join the transaction; a context that already carries
// one is reused, so money-moving operations compose without nesting commits.
func WithTransaction(ctx context.Context, txMgr repositories.TransactionManager, fn func(ctx context.Context, tx repositories.Transaction) error) error {
	return txMgr.InTransaction(ctx, fn)
}

// WithTransactionResult is WithTransaction for functions producing a value.
// The zero value is returned whenever the transaction does not commit.
func WithTransactionResult[T any](ctx context.Context, txMgr repositories.TransactionManager, fn func(ctx context.Context, tx repositories.Transaction) (T, error)) (T, error) {
	var result T
	err := txMgr.InTransaction(ctx, func(ctx context.Context, tx repositories.Transaction) error {
		out, err := fn(ctx, tx)
		if err != nil {
			return err
		}
		result = out
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}
