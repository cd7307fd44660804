package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/olegbp/cryptofolio/internal/usecase"
)

type pgxPool interface {
	Begin(context.Context) (pgx.Tx, error)
}

// TxManager implements usecase.TransactionManager on a pgx pool.
type TxManager struct {
	pool pgxPool
}

// NewTxManager creates a new TxManager.
func NewTxManager(pool *pgxpool.Pool) *TxManager {
	return newTxManagerWithPool(pool)
}

func newTxManagerWithPool(pool pgxPool) *TxManager {
	return &TxManager{pool: pool}
}

// Begin starts a new transaction.
func (m *TxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}

	return &txWrapper{tx: tx}, nil
}

// txWrapper adapts a pgx transaction to usecase.Transaction.
type txWrapper struct {
	tx pgx.Tx
}

func (t *txWrapper) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

func (t *txWrapper) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}

// unwrapTx recovers the pgx.Tx from a usecase.Transaction handed back
// to this package. Transactions from any other TransactionManager are
// rejected rather than asserted on.
func unwrapTx(tx usecase.Transaction) (pgx.Tx, error) {
	w, ok := tx.(*txWrapper)
	if !ok {
		return nil, fmt.Errorf("transaction %T was not started by this store", tx)
	}
	return w.tx, nil
}
