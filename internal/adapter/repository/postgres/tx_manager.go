package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/simplebank/internal/usecase"
)

// Row locks taken with SELECT ... FOR UPDATE serialize writers to the same
// account, so read committed is enough for every ledger operation.
var ledgerTxOptions = pgx.TxOptions{IsoLevel: pgx.ReadCommitted}

type txBeginner interface {
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
}

// TxManager implements usecase.TransactionManager on a pgx pool.
type TxManager struct {
	pool txBeginner
}

// NewTxManager creates a new TxManager.
func NewTxManager(pool *pgxpool.Pool) *TxManager {
	return newTxManagerWithPool(pool)
}

func newTxManagerWithPool(pool txBeginner) *TxManager {
	return &TxManager{pool: pool}
}

// Begin opens a read committed transaction.
func (m *TxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	tx, err := m.pool.BeginTx(ctx, ledgerTxOptions)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}

	return &Tx{tx: tx}, nil
}

// Tx is the usecase.Transaction handle passed to every repository write.
type Tx struct {
	tx   pgx.Tx
	done bool
}

// Commit commits the transaction.
func (t *Tx) Commit(ctx context.Context) error {
	t.done = true
	return t.tx.Commit(ctx)
}

// Rollback aborts the transaction. It does nothing once Commit or Rollback
// has already run, so callers can defer it unconditionally.
func (t *Tx) Rollback(ctx context.Context) error {
	if t.done {
		return nil
	}
	t.done = true
	return t.tx.Rollback(ctx)
}

// PgxTx returns the underlying pgx.Tx.
func (t *Tx) PgxTx() pgx.Tx {
	return t.tx
}
