package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/olegbp/cryptofolio/internal/domain"
)

// AccountRepository defines data access for accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Account, error)
	UpdateBalance(ctx context.Context, tx Transaction, id string, balance decimal.Decimal) error
	UpdateProfile(ctx context.Context, account *domain.Account) error
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
}

// LedgerRepository defines data access for the append-only entry log.
type LedgerRepository interface {
	Append(ctx context.Context, tx Transaction, entry *domain.LedgerEntry) error
	ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.LedgerEntry, error)
	TradesByAccount(ctx context.Context, accountID string) ([]*domain.LedgerEntry, error)
	NetQuantity(ctx context.Context, tx Transaction, accountID, coinID string) (decimal.Decimal, error)
	CountByAccount(ctx context.Context, accountID string) (int64, error)
}

// QuoteRepository defines data access for the coin price cache.
type QuoteRepository interface {
	Upsert(ctx context.Context, quotes []*domain.CoinQuote, cachedAt time.Time) error
	Get(ctx context.Context, coinID string) (*domain.CoinQuote, error)
	GetMany(ctx context.Context, coinIDs []string) (map[string]*domain.CoinQuote, error)
	Search(ctx context.Context, query string, limit int) ([]*domain.CoinQuote, error)
	TopByMarketCap(ctx context.Context, limit int) ([]*domain.CoinQuote, error)
	TopGainers(ctx context.Context, limit int) ([]*domain.CoinQuote, error)
	TopLosers(ctx context.Context, limit int) ([]*domain.CoinQuote, error)
	OlderThan(ctx context.Context, cutoff time.Time) ([]*domain.CoinQuote, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	PriceHistory(ctx context.Context, coinID string, since time.Time) ([]*domain.PricePoint, error)
}

// ActivityRepository defines data access for search history and favorites.
type ActivityRepository interface {
	AddSearch(ctx context.Context, item *domain.SearchHistoryItem) error
	RecentSearches(ctx context.Context, accountID string, limit int) ([]*domain.SearchHistoryItem, error)
	ClearSearches(ctx context.Context, accountID string) (int64, error)
	DeleteSearchesOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	AddFavorite(ctx context.Context, fav *domain.FavoriteCoin) error
	RemoveFavorite(ctx context.Context, accountID, coinID string) error
	IsFavorite(ctx context.Context, accountID, coinID string) (bool, error)
	ListFavorites(ctx context.Context, accountID string) ([]*domain.FavoriteCoin, error)
}

// MaintenanceRepository defines the administrative wipe.
type MaintenanceRepository interface {
	ClearAllData(ctx context.Context) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier retries an operation on transient storage conflicts.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// PasswordHasher is the opaque credential hashing pair. Plaintext never
// reaches storage.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, digest string) bool
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
