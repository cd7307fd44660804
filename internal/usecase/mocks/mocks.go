package mocks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/olegbp/cryptofolio/internal/domain"
	"github.com/olegbp/cryptofolio/internal/usecase"
)

// MockAccountRepository is a mock implementation of AccountRepository.
type MockAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account

	CreateFunc           func(ctx context.Context, account *domain.Account) error
	GetByIDFunc          func(ctx context.Context, id string) (*domain.Account, error)
	GetByEmailFunc       func(ctx context.Context, email string) (*domain.Account, error)
	GetByIDForUpdateFunc func(ctx context.Context, tx usecase.Transaction, id string) (*domain.Account, error)
	UpdateBalanceFunc    func(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal) error
	UpdateProfileFunc    func(ctx context.Context, account *domain.Account) error
	TouchLastLoginFunc   func(ctx context.Context, id string, at time.Time) error
}

func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{
		accounts: make(map[string]*domain.Account),
	}
}

// Seed stores an account directly for test setup.
func (m *MockAccountRepository) Seed(account *domain.Account) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.ID] = account
}

func (m *MockAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, account)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *account
	m.accounts[account.ID] = &copied
	return nil
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if acc, ok := m.accounts[id]; ok {
		copied := *acc
		return &copied, nil
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, acc := range m.accounts {
		if acc.Email == email {
			copied := *acc
			return &copied, nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Account, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockAccountRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal) error {
	if m.UpdateBalanceFunc != nil {
		return m.UpdateBalanceFunc(ctx, tx, id, balance)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if acc, ok := m.accounts[id]; ok {
		acc.Balance = balance
		return nil
	}
	return domain.ErrAccountNotFound
}

func (m *MockAccountRepository) UpdateProfile(ctx context.Context, account *domain.Account) error {
	if m.UpdateProfileFunc != nil {
		return m.UpdateProfileFunc(ctx, account)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[account.ID]; !ok {
		return domain.ErrAccountNotFound
	}
	copied := *account
	m.accounts[account.ID] = &copied
	return nil
}

func (m *MockAccountRepository) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	if m.TouchLastLoginFunc != nil {
		return m.TouchLastLoginFunc(ctx, id, at)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if acc, ok := m.accounts[id]; ok {
		acc.LastLogin = at
		return nil
	}
	return domain.ErrAccountNotFound
}

// Balance reads the stored balance for assertions.
func (m *MockAccountRepository) Balance(id string) decimal.Decimal {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if acc, ok := m.accounts[id]; ok {
		return acc.Balance
	}
	return decimal.Zero
}

// MockLedgerRepository is a mock implementation of LedgerRepository.
type MockLedgerRepository struct {
	mu      sync.RWMutex
	entries []*domain.LedgerEntry

	AppendFunc          func(ctx context.Context, tx usecase.Transaction, entry *domain.LedgerEntry) error
	ListByAccountFunc   func(ctx context.Context, accountID string, limit, offset int) ([]*domain.LedgerEntry, error)
	TradesByAccountFunc func(ctx context.Context, accountID string) ([]*domain.LedgerEntry, error)
	NetQuantityFunc     func(ctx context.Context, tx usecase.Transaction, accountID, coinID string) (decimal.Decimal, error)
	CountByAccountFunc  func(ctx context.Context, accountID string) (int64, error)
}

func NewMockLedgerRepository() *MockLedgerRepository {
	return &MockLedgerRepository{}
}

// Seed appends entries directly for test setup.
func (m *MockLedgerRepository) Seed(entries ...*domain.LedgerEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entries...)
}

// Entries returns a snapshot of everything appended.
func (m *MockLedgerRepository) Entries() []*domain.LedgerEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.LedgerEntry, len(m.entries))
	copy(out, m.entries)
	return out
}

func (m *MockLedgerRepository) Append(ctx context.Context, tx usecase.Transaction, entry *domain.LedgerEntry) error {
	if m.AppendFunc != nil {
		return m.AppendFunc(ctx, tx, entry)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	return nil
}

func (m *MockLedgerRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.LedgerEntry, error) {
	if m.ListByAccountFunc != nil {
		return m.ListByAccountFunc(ctx, accountID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.LedgerEntry
	for _, e := range m.entries {
		if e.AccountID == accountID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *MockLedgerRepository) TradesByAccount(ctx context.Context, accountID string) ([]*domain.LedgerEntry, error) {
	if m.TradesByAccountFunc != nil {
		return m.TradesByAccountFunc(ctx, accountID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.LedgerEntry
	for _, e := range m.entries {
		if e.AccountID == accountID && e.Type.IsTrade() {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *MockLedgerRepository) NetQuantity(ctx context.Context, tx usecase.Transaction, accountID, coinID string) (decimal.Decimal, error) {
	if m.NetQuantityFunc != nil {
		return m.NetQuantityFunc(ctx, tx, accountID, coinID)
	}
	trades, _ := m.TradesByAccount(ctx, accountID)
	return domain.NetQuantity(trades, coinID), nil
}

func (m *MockLedgerRepository) CountByAccount(ctx context.Context, accountID string) (int64, error) {
	if m.CountByAccountFunc != nil {
		return m.CountByAccountFunc(ctx, accountID)
	}
	entries, _ := m.ListByAccount(ctx, accountID, 0, 0)
	return int64(len(entries)), nil
}

// MockQuoteRepository is a mock implementation of QuoteRepository.
type MockQuoteRepository struct {
	mu     sync.RWMutex
	quotes map[string]*domain.CoinQuote

	UpsertFunc          func(ctx context.Context, quotes []*domain.CoinQuote, cachedAt time.Time) error
	GetFunc             func(ctx context.Context, coinID string) (*domain.CoinQuote, error)
	GetManyFunc         func(ctx context.Context, coinIDs []string) (map[string]*domain.CoinQuote, error)
	SearchFunc          func(ctx context.Context, query string, limit int) ([]*domain.CoinQuote, error)
	TopByMarketCapFunc  func(ctx context.Context, limit int) ([]*domain.CoinQuote, error)
	TopGainersFunc      func(ctx context.Context, limit int) ([]*domain.CoinQuote, error)
	TopLosersFunc       func(ctx context.Context, limit int) ([]*domain.CoinQuote, error)
	OlderThanFunc       func(ctx context.Context, cutoff time.Time) ([]*domain.CoinQuote, error)
	DeleteOlderThanFunc func(ctx context.Context, cutoff time.Time) (int64, error)
	PriceHistoryFunc    func(ctx context.Context, coinID string, since time.Time) ([]*domain.PricePoint, error)
}

func NewMockQuoteRepository() *MockQuoteRepository {
	return &MockQuoteRepository{
		quotes: make(map[string]*domain.CoinQuote),
	}
}

func (m *MockQuoteRepository) Upsert(ctx context.Context, quotes []*domain.CoinQuote, cachedAt time.Time) error {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, quotes, cachedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, q := range quotes {
		copied := *q
		copied.CachedAt = cachedAt
		m.quotes[q.CoinID] = &copied
	}
	return nil
}

func (m *MockQuoteRepository) Get(ctx context.Context, coinID string) (*domain.CoinQuote, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, coinID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if q, ok := m.quotes[coinID]; ok {
		copied := *q
		return &copied, nil
	}
	return nil, nil
}

func (m *MockQuoteRepository) GetMany(ctx context.Context, coinIDs []string) (map[string]*domain.CoinQuote, error) {
	if m.GetManyFunc != nil {
		return m.GetManyFunc(ctx, coinIDs)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]*domain.CoinQuote)
	for _, id := range coinIDs {
		if q, ok := m.quotes[id]; ok {
			copied := *q
			out[id] = &copied
		}
	}
	return out, nil
}

func (m *MockQuoteRepository) Search(ctx context.Context, query string, limit int) ([]*domain.CoinQuote, error) {
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, query, limit)
	}
	return nil, nil
}

func (m *MockQuoteRepository) TopByMarketCap(ctx context.Context, limit int) ([]*domain.CoinQuote, error) {
	if m.TopByMarketCapFunc != nil {
		return m.TopByMarketCapFunc(ctx, limit)
	}
	return nil, nil
}

func (m *MockQuoteRepository) TopGainers(ctx context.Context, limit int) ([]*domain.CoinQuote, error) {
	if m.TopGainersFunc != nil {
		return m.TopGainersFunc(ctx, limit)
	}
	return nil, nil
}

func (m *MockQuoteRepository) TopLosers(ctx context.Context, limit int) ([]*domain.CoinQuote, error) {
	if m.TopLosersFunc != nil {
		return m.TopLosersFunc(ctx, limit)
	}
	return nil, nil
}

func (m *MockQuoteRepository) OlderThan(ctx context.Context, cutoff time.Time) ([]*domain.CoinQuote, error) {
	if m.OlderThanFunc != nil {
		return m.OlderThanFunc(ctx, cutoff)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.CoinQuote
	for _, q := range m.quotes {
		if q.CachedAt.Before(cutoff) {
			copied := *q
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *MockQuoteRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	if m.DeleteOlderThanFunc != nil {
		return m.DeleteOlderThanFunc(ctx, cutoff)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, q := range m.quotes {
		if q.CachedAt.Before(cutoff) {
			delete(m.quotes, id)
			n++
		}
	}
	return n, nil
}

func (m *MockQuoteRepository) PriceHistory(ctx context.Context, coinID string, since time.Time) ([]*domain.PricePoint, error) {
	if m.PriceHistoryFunc != nil {
		return m.PriceHistoryFunc(ctx, coinID, since)
	}
	return nil, nil
}

// MockActivityRepository is a mock implementation of ActivityRepository.
type MockActivityRepository struct {
	mu        sync.RWMutex
	searches  []*domain.SearchHistoryItem
	favorites map[string]*domain.FavoriteCoin

	AddSearchFunc               func(ctx context.Context, item *domain.SearchHistoryItem) error
	RecentSearchesFunc          func(ctx context.Context, accountID string, limit int) ([]*domain.SearchHistoryItem, error)
	ClearSearchesFunc           func(ctx context.Context, accountID string) (int64, error)
	DeleteSearchesOlderThanFunc func(ctx context.Context, cutoff time.Time) (int64, error)
	AddFavoriteFunc             func(ctx context.Context, fav *domain.FavoriteCoin) error
	RemoveFavoriteFunc          func(ctx context.Context, accountID, coinID string) error
	IsFavoriteFunc              func(ctx context.Context, accountID, coinID string) (bool, error)
	ListFavoritesFunc           func(ctx context.Context, accountID string) ([]*domain.FavoriteCoin, error)
}

func NewMockActivityRepository() *MockActivityRepository {
	return &MockActivityRepository{
		favorites: make(map[string]*domain.FavoriteCoin),
	}
}

// Searches returns everything recorded so far.
func (m *MockActivityRepository) Searches() []*domain.SearchHistoryItem {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.SearchHistoryItem, len(m.searches))
	copy(out, m.searches)
	return out
}

func (m *MockActivityRepository) AddSearch(ctx context.Context, item *domain.SearchHistoryItem) error {
	if m.AddSearchFunc != nil {
		return m.AddSearchFunc(ctx, item)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.searches = append(m.searches, item)
	return nil
}

func (m *MockActivityRepository) RecentSearches(ctx context.Context, accountID string, limit int) ([]*domain.SearchHistoryItem, error) {
	if m.RecentSearchesFunc != nil {
		return m.RecentSearchesFunc(ctx, accountID, limit)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.SearchHistoryItem
	for i := len(m.searches) - 1; i >= 0 && len(out) < limit; i-- {
		if m.searches[i].AccountID == accountID {
			out = append(out, m.searches[i])
		}
	}
	return out, nil
}

func (m *MockActivityRepository) ClearSearches(ctx context.Context, accountID string) (int64, error) {
	if m.ClearSearchesFunc != nil {
		return m.ClearSearchesFunc(ctx, accountID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var kept []*domain.SearchHistoryItem
	var n int64
	for _, s := range m.searches {
		if s.AccountID == accountID {
			n++
			continue
		}
		kept = append(kept, s)
	}
	m.searches = kept
	return n, nil
}

func (m *MockActivityRepository) DeleteSearchesOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	if m.DeleteSearchesOlderThanFunc != nil {
		return m.DeleteSearchesOlderThanFunc(ctx, cutoff)
	}
	return 0, nil
}

func (m *MockActivityRepository) AddFavorite(ctx context.Context, fav *domain.FavoriteCoin) error {
	if m.AddFavoriteFunc != nil {
		return m.AddFavoriteFunc(ctx, fav)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.favorites[fav.AccountID+"/"+fav.CoinID] = fav
	return nil
}

func (m *MockActivityRepository) RemoveFavorite(ctx context.Context, accountID, coinID string) error {
	if m.RemoveFavoriteFunc != nil {
		return m.RemoveFavoriteFunc(ctx, accountID, coinID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.favorites, accountID+"/"+coinID)
	return nil
}

func (m *MockActivityRepository) IsFavorite(ctx context.Context, accountID, coinID string) (bool, error) {
	if m.IsFavoriteFunc != nil {
		return m.IsFavoriteFunc(ctx, accountID, coinID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.favorites[accountID+"/"+coinID]
	return ok, nil
}

func (m *MockActivityRepository) ListFavorites(ctx context.Context, accountID string) ([]*domain.FavoriteCoin, error) {
	if m.ListFavoritesFunc != nil {
		return m.ListFavoritesFunc(ctx, accountID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.FavoriteCoin
	for _, f := range m.favorites {
		if f.AccountID == accountID {
			out = append(out, f)
		}
	}
	return out, nil
}

// MockMaintenanceRepository is a mock implementation of MaintenanceRepository.
type MockMaintenanceRepository struct {
	ClearAllDataFunc func(ctx context.Context) error
	Cleared          bool
}

func NewMockMaintenanceRepository() *MockMaintenanceRepository {
	return &MockMaintenanceRepository{}
}

func (m *MockMaintenanceRepository) ClearAllData(ctx context.Context) error {
	if m.ClearAllDataFunc != nil {
		return m.ClearAllDataFunc(ctx)
	}
	m.Cleared = true
	return nil
}

// MockTransaction records commit/rollback calls.
type MockTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error

	Committed  bool
	RolledBack bool
}

func (t *MockTransaction) Commit(ctx context.Context) error {
	if t.CommitFunc != nil {
		return t.CommitFunc(ctx)
	}
	t.Committed = true
	return nil
}

func (t *MockTransaction) Rollback(ctx context.Context) error {
	if t.RollbackFunc != nil {
		return t.RollbackFunc(ctx)
	}
	if !t.Committed {
		t.RolledBack = true
	}
	return nil
}

// MockTxManager is a mock implementation of TransactionManager.
type MockTxManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)

	mu  sync.Mutex
	txs []*MockTransaction
}

func NewMockTxManager() *MockTxManager {
	return &MockTxManager{}
}

func (m *MockTxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	tx := &MockTransaction{}
	m.mu.Lock()
	m.txs = append(m.txs, tx)
	m.mu.Unlock()
	return tx, nil
}

// Transactions returns every transaction handed out.
func (m *MockTxManager) Transactions() []*MockTransaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*MockTransaction, len(m.txs))
	copy(out, m.txs)
	return out
}

// MockIDGenerator is a mock implementation of IDGenerator.
type MockIDGenerator struct {
	GenerateFunc func() string

	mu sync.Mutex
	n  int
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.n++
	return fmt.Sprintf("id-%04d", m.n)
}

// MockPasswordHasher is a reversible stand-in for the opaque hasher.
type MockPasswordHasher struct {
	HashFunc   func(plain string) (string, error)
	VerifyFunc func(plain, digest string) bool
}

func NewMockPasswordHasher() *MockPasswordHasher {
	return &MockPasswordHasher{}
}

func (m *MockPasswordHasher) Hash(plain string) (string, error) {
	if m.HashFunc != nil {
		return m.HashFunc(plain)
	}
	return "hash:" + plain, nil
}

func (m *MockPasswordHasher) Verify(plain, digest string) bool {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(plain, digest)
	}
	return digest == "hash:"+plain
}

// NopRetrier runs the operation once without retries.
type NopRetrier struct{}

func (NopRetrier) Retry(ctx context.Context, operation func() error) error {
	return operation()
}
