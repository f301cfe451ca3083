package postgres

import (
	"context"

	"github.com/Emmakaranja1/Finance-Tracker/internal/core/port"
)

// TxManager implements port.Transactor on top of a pgx pool. Repositories from this
// package join the transaction through the context passed to fn.
type TxManager struct {
	db DB
}

// NewTxManager constructs a transaction manager.
func NewTxManager(db DB) *TxManager {
	return &TxManager{db: db}
}

// WithinTx commits when fn returns nil and rolls back otherwise. Nested calls reuse
// the outer transaction.
func (m *TxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return inTx(ctx, m.db, func(txCtx context.Context, _ pgExecutor) error {
		return fn(txCtx)
	})
}

var _ port.Transactor = (*TxManager)(nil)
