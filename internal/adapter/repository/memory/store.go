// Package memory is an in-process ledger store with the transactional
// contract of the Postgres adapter. Row locks are held until the transaction
// ends and writes stay invisible to other callers until commit.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/iho/simplebank/internal/domain"
	"github.com/iho/simplebank/internal/usecase"
)

var (
	// ErrTxClosed is returned when a finished transaction is used again.
	ErrTxClosed = errors.New("memory: transaction already closed")
	// ErrForeignTx is returned when a repository receives a transaction it did not create.
	ErrForeignTx = errors.New("memory: transaction not created by this store")
	// ErrForeignKey mirrors a foreign key violation.
	ErrForeignKey = errors.New("memory: foreign key violation")
)

// Store holds committed state and the per-account row locks.
type Store struct {
	mu        sync.RWMutex
	users     map[uuid.UUID]domain.User
	accounts  map[uuid.UUID]domain.Account
	transfers map[uuid.UUID]domain.Transfer
	entries   []domain.Entry

	locksMu sync.Mutex
	locks   map[uuid.UUID]*semaphore.Weighted
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		users:     make(map[uuid.UUID]domain.User),
		accounts:  make(map[uuid.UUID]domain.Account),
		transfers: make(map[uuid.UUID]domain.Transfer),
		locks:     make(map[uuid.UUID]*semaphore.Weighted),
	}
}

// Begin implements usecase.TransactionManager.
func (s *Store) Begin(ctx context.Context) (usecase.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &Tx{
		store:    s,
		held:     make(map[uuid.UUID]*semaphore.Weighted),
		accounts: make(map[uuid.UUID]domain.Account),
	}, nil
}

func (s *Store) rowLock(id uuid.UUID) *semaphore.Weighted {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	sem, ok := s.locks[id]
	if !ok {
		sem = semaphore.NewWeighted(1)
		s.locks[id] = sem
	}
	return sem
}

// Tx stages writes until Commit. Locks taken through it are released when it
// finishes either way.
type Tx struct {
	store *Store

	mu        sync.Mutex
	done      bool
	held      map[uuid.UUID]*semaphore.Weighted
	accounts  map[uuid.UUID]domain.Account
	transfers []domain.Transfer
	entries   []domain.Entry
}

// Commit publishes staged writes and releases row locks.
func (tx *Tx) Commit(ctx context.Context) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()

	if tx.done {
		return ErrTxClosed
	}
	tx.done = true
	defer tx.release()

	s := tx.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, account := range tx.accounts {
		s.accounts[id] = account
	}
	for _, transfer := range tx.transfers {
		s.transfers[transfer.ID] = transfer
	}
	s.entries = append(s.entries, tx.entries...)

	return nil
}

// Rollback discards staged writes and releases row locks. It is a no-op once
// the transaction has finished.
func (tx *Tx) Rollback(ctx context.Context) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()

	if tx.done {
		return nil
	}
	tx.done = true
	tx.release()

	return nil
}

func (tx *Tx) release() {
	for id, sem := range tx.held {
		sem.Release(1)
		delete(tx.held, id)
	}
	tx.accounts = nil
	tx.transfers = nil
	tx.entries = nil
}

// lock acquires the row lock for id unless tx already holds it. It blocks
// until the lock is free or ctx is done.
func (tx *Tx) lock(ctx context.Context, id uuid.UUID) error {
	tx.mu.Lock()
	if tx.done {
		tx.mu.Unlock()
		return ErrTxClosed
	}
	if _, ok := tx.held[id]; ok {
		tx.mu.Unlock()
		return nil
	}
	tx.mu.Unlock()

	sem := tx.store.rowLock(id)
	if err := sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("lock account %s: %w", id, err)
	}

	tx.mu.Lock()
	defer tx.mu.Unlock()
	if tx.done {
		sem.Release(1)
		return ErrTxClosed
	}
	tx.held[id] = sem
	return nil
}

func (tx *Tx) unlock(id uuid.UUID) {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	if sem, ok := tx.held[id]; ok {
		sem.Release(1)
		delete(tx.held, id)
	}
}

// account returns the staged version of id if any, else the committed one.
func (tx *Tx) account(id uuid.UUID) (domain.Account, bool) {
	tx.mu.Lock()
	staged, ok := tx.accounts[id]
	tx.mu.Unlock()
	if ok {
		return staged, true
	}

	tx.store.mu.RLock()
	defer tx.store.mu.RUnlock()
	committed, ok := tx.store.accounts[id]
	return committed, ok
}

func (tx *Tx) stageAccount(account domain.Account) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	if tx.done {
		return ErrTxClosed
	}
	tx.accounts[account.ID] = account
	return nil
}

func (tx *Tx) stageTransfer(transfer domain.Transfer) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	if tx.done {
		return ErrTxClosed
	}
	tx.transfers = append(tx.transfers, transfer)
	return nil
}

func (tx *Tx) stageEntry(entry domain.Entry) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	if tx.done {
		return ErrTxClosed
	}
	tx.entries = append(tx.entries, entry)
	return nil
}

func asTx(s *Store, t usecase.Transaction) (*Tx, error) {
	tx, ok := t.(*Tx)
	if !ok || tx.store != s {
		return nil, ErrForeignTx
	}
	return tx, nil
}
