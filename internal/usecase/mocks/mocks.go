package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/iho/simplebank/internal/domain"
	"github.com/iho/simplebank/internal/usecase"
)

// MockAccountRepository is a mock implementation of AccountRepository.
type MockAccountRepository struct {
	mu       sync.RWMutex
	accounts map[uuid.UUID]*domain.Account

	CreateFunc           func(ctx context.Context, account *domain.Account) error
	GetByIDFunc          func(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	GetByIDForUpdateFunc func(ctx context.Context, tx usecase.Transaction, id uuid.UUID) (*domain.Account, error)
	UpdateBalanceFunc    func(ctx context.Context, tx usecase.Transaction, account *domain.Account) error
	AddBalanceFunc       func(ctx context.Context, tx usecase.Transaction, id uuid.UUID, delta decimal.Decimal) (*domain.Account, error)
	ListByOwnerFunc      func(ctx context.Context, ownerID uuid.UUID) ([]*domain.Account, error)
	ListFunc             func(ctx context.Context, limit, offset int) ([]*domain.Account, error)
}

func NewMockAccountRepository(accounts ...*domain.Account) *MockAccountRepository {
	m := &MockAccountRepository{
		accounts: make(map[uuid.UUID]*domain.Account),
	}
	for _, a := range accounts {
		m.accounts[a.ID] = a
	}
	return m
}

func (m *MockAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, account)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.accounts {
		if existing.OwnerID == account.OwnerID && existing.Currency == account.Currency {
			return domain.ErrAccountAlreadyExists
		}
	}
	m.accounts[account.ID] = account
	return nil
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if acc, ok := m.accounts[id]; ok {
		clone := *acc
		return &clone, nil
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id uuid.UUID) (*domain.Account, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockAccountRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	if m.UpdateBalanceFunc != nil {
		return m.UpdateBalanceFunc(ctx, tx, account)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.accounts[account.ID]
	if !ok {
		return domain.ErrAccountNotFound
	}
	acc.Balance = account.Balance
	acc.UpdatedAt = account.UpdatedAt
	return nil
}

func (m *MockAccountRepository) AddBalance(ctx context.Context, tx usecase.Transaction, id uuid.UUID, delta decimal.Decimal) (*domain.Account, error) {
	if m.AddBalanceFunc != nil {
		return m.AddBalanceFunc(ctx, tx, id, delta)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	acc.Balance = acc.Balance.Add(delta)
	acc.UpdatedAt = time.Now().UTC()
	clone := *acc
	return &clone, nil
}

func (m *MockAccountRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Account, error) {
	if m.ListByOwnerFunc != nil {
		return m.ListByOwnerFunc(ctx, ownerID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var accounts []*domain.Account
	for _, acc := range m.sorted() {
		if acc.OwnerID == ownerID {
			accounts = append(accounts, acc)
		}
	}
	return accounts, nil
}

func (m *MockAccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	all := m.sorted()
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

// Balance returns the stored balance of id.
func (m *MockAccountRepository) Balance(id uuid.UUID) decimal.Decimal {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if acc, ok := m.accounts[id]; ok {
		return acc.Balance
	}
	return decimal.Zero
}

func (m *MockAccountRepository) sorted() []*domain.Account {
	accounts := make([]*domain.Account, 0, len(m.accounts))
	for _, acc := range m.accounts {
		accounts = append(accounts, acc)
	}
	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].ID.String() < accounts[j].ID.String()
	})
	return accounts
}

// MockTransferRepository is a mock implementation of TransferRepository.
type MockTransferRepository struct {
	mu        sync.RWMutex
	Transfers []*domain.Transfer

	CreateFunc func(ctx context.Context, tx usecase.Transaction, transfer *domain.Transfer) (*domain.Transfer, error)
}

func NewMockTransferRepository() *MockTransferRepository {
	return &MockTransferRepository{}
}

func (m *MockTransferRepository) Create(ctx context.Context, tx usecase.Transaction, transfer *domain.Transfer) (*domain.Transfer, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, transfer)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Transfers = append(m.Transfers, transfer)
	return transfer, nil
}

// MockEntryRepository is a mock implementation of EntryRepository.
type MockEntryRepository struct {
	mu      sync.RWMutex
	Entries []*domain.Entry

	CreateFunc        func(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) (*domain.Entry, error)
	ListByAccountFunc func(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*domain.Entry, error)
	SumByAccountFunc  func(ctx context.Context, accountID uuid.UUID) (decimal.Decimal, error)
}

func NewMockEntryRepository() *MockEntryRepository {
	return &MockEntryRepository{}
}

func (m *MockEntryRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) (*domain.Entry, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, entry)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Entries = append(m.Entries, entry)
	return entry, nil
}

func (m *MockEntryRepository) ListByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*domain.Entry, error) {
	if m.ListByAccountFunc != nil {
		return m.ListByAccountFunc(ctx, accountID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var entries []*domain.Entry
	for i := len(m.Entries) - 1; i >= 0; i-- {
		if m.Entries[i].AccountID == accountID {
			entries = append(entries, m.Entries[i])
		}
	}
	if offset >= len(entries) {
		return nil, nil
	}
	end := offset + limit
	if end > len(entries) {
		end = len(entries)
	}
	return entries[offset:end], nil
}

func (m *MockEntryRepository) SumByAccount(ctx context.Context, accountID uuid.UUID) (decimal.Decimal, error) {
	if m.SumByAccountFunc != nil {
		return m.SumByAccountFunc(ctx, accountID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	sum := decimal.Zero
	for _, e := range m.Entries {
		if e.AccountID == accountID {
			sum = sum.Add(e.Amount)
		}
	}
	return sum, nil
}

// MockLedgerRepository is a mock implementation of LedgerRepository.
type MockLedgerRepository struct {
	TotalsFunc func(ctx context.Context) (decimal.Decimal, decimal.Decimal, error)
}

func (m *MockLedgerRepository) Totals(ctx context.Context) (decimal.Decimal, decimal.Decimal, error) {
	if m.TotalsFunc != nil {
		return m.TotalsFunc(ctx)
	}
	return decimal.Zero, decimal.Zero, nil
}

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mu    sync.RWMutex
	users map[uuid.UUID]*domain.User

	CreateFunc               func(ctx context.Context, user *domain.User) error
	GetByIDFunc              func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByLoginFunc           func(ctx context.Context, login string) (*domain.User, error)
	ExistsByLoginOrEmailFunc func(ctx context.Context, login, email string) (bool, error)
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users: make(map[uuid.UUID]*domain.User),
	}
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *user
	m.users[user.ID] = &clone
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if u, ok := m.users[id]; ok {
		clone := *u
		return &clone, nil
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) GetByLogin(ctx context.Context, login string) (*domain.User, error) {
	if m.GetByLoginFunc != nil {
		return m.GetByLoginFunc(ctx, login)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Login == login {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) ExistsByLoginOrEmail(ctx context.Context, login, email string) (bool, error) {
	if m.ExistsByLoginOrEmailFunc != nil {
		return m.ExistsByLoginOrEmailFunc(ctx, login, email)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Login == login || u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	mu  sync.Mutex
	Txs []*MockTransaction

	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	tx := &MockTransaction{}
	m.mu.Lock()
	m.Txs = append(m.Txs, tx)
	m.mu.Unlock()
	return tx, nil
}

// MockTransaction is a mock implementation of Transaction.
type MockTransaction struct {
	Committed  bool
	RolledBack bool

	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	m.Committed = true
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	if !m.Committed {
		m.RolledBack = true
	}
	return nil
}

// MockIDGenerator is a mock implementation of IDGenerator.
type MockIDGenerator struct {
	GenerateFunc func() uuid.UUID
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() uuid.UUID {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	return uuid.New()
}

// MockAccountCache is a mock implementation of AccountCache with the same
// fill-version rules as the Redis cache.
type MockAccountCache struct {
	mu          sync.Mutex
	accounts    map[uuid.UUID]domain.Account
	versions    map[uuid.UUID]int64
	Invalidated []uuid.UUID

	GetFunc func(ctx context.Context, id uuid.UUID) (*domain.Account, int64, error)
}

func NewMockAccountCache() *MockAccountCache {
	return &MockAccountCache{
		accounts: make(map[uuid.UUID]domain.Account),
		versions: make(map[uuid.UUID]int64),
	}
}

func (m *MockAccountCache) Get(ctx context.Context, id uuid.UUID) (*domain.Account, int64, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if acc, ok := m.accounts[id]; ok {
		return &acc, m.versions[id], nil
	}
	return nil, m.versions[id], nil
}

func (m *MockAccountCache) Set(ctx context.Context, account *domain.Account, version int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.versions[account.ID] != version {
		return nil
	}
	m.accounts[account.ID] = *account
	return nil
}

func (m *MockAccountCache) Invalidate(ctx context.Context, ids ...uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		delete(m.accounts, id)
		m.versions[id]++
		m.Invalidated = append(m.Invalidated, id)
	}
	return nil
}

// MockPasswordHasher is a mock implementation of PasswordHasher.
// Hash prefixes the password with "hashed:".
type MockPasswordHasher struct {
	HashFunc func(password string) (string, error)
}

func (m *MockPasswordHasher) Hash(password string) (string, error) {
	if m.HashFunc != nil {
		return m.HashFunc(password)
	}
	return "hashed:" + password, nil
}

func (m *MockPasswordHasher) Compare(hash, password string) error {
	if hash != "hashed:"+password {
		return domain.ErrIncorrectPassword
	}
	return nil
}

// MockTokenIssuer is a mock implementation of TokenIssuer.
type MockTokenIssuer struct {
	GenerateFunc func(user *domain.User) (string, time.Time, error)
}

func (m *MockTokenIssuer) Generate(user *domain.User) (string, time.Time, error) {
	if m.GenerateFunc != nil {
		return m.GenerateFunc(user)
	}
	return "token-" + user.ID.String(), time.Now().Add(time.Hour), nil
}
