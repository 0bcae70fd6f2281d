package mocks

import (
	"context"

	"github.com/photoproos/platform/repositories"
)

// TxManager runs transactional functions inline and counts outcomes
type TxManager struct {
	Begins    int
	Commits   int
	Rollbacks int
}

var _ repositories.TransactionManager = (*TxManager)(nil)

// Begin returns a transaction that records commit and rollback on the manager
func (m *TxManager) Begin(ctx context.Context) (repositories.Transaction, error) {
	m.Begins++
	return &Tx{ctx: ctx, mgr: m}, nil
}

// InTransaction runs fn and commits unless it fails
func (m *TxManager) InTransaction(ctx context.Context, fn func(ctx context.Context, tx repositories.Transaction) error) error {
	tx, _ := m.Begin(ctx)
	if err := fn(ctx, tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// Tx is the transaction handed out by TxManager
type Tx struct {
	ctx  context.Context
	mgr  *TxManager
	done bool
}

func (t *Tx) Commit() error {
	if !t.done {
		t.done = true
		t.mgr.Commits++
	}
	return nil
}

func (t *Tx) Rollback() error {
	if !t.done {
		t.done = true
		t.mgr.Rollbacks++
	}
	return nil
}

func (t *Tx) Context() context.Context {
	return t.ctx
}
