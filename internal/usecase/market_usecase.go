package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/olegbp/cryptofolio/internal/domain"
	"github.com/olegbp/cryptofolio/internal/infrastructure/metrics"
)

// MarketUseCase fronts the coin price cache plus the per-account search
// history and favorites. The market data supplier feeds it batches of
// quotes; everything else is reads.
type MarketUseCase struct {
	quoteRepo    QuoteRepository
	activityRepo ActivityRepository
	idGen        IDGenerator
	metrics      *metrics.Metrics
	now          func() time.Time
}

// NewMarketUseCase creates a new MarketUseCase.
func NewMarketUseCase(quoteRepo QuoteRepository, activityRepo ActivityRepository, idGen IDGenerator, metrics *metrics.Metrics) *MarketUseCase {
	return &MarketUseCase{
		quoteRepo:    quoteRepo,
		activityRepo: activityRepo,
		idGen:        idGen,
		metrics:      metrics,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// RefreshQuotes upserts a batch of quotes, all stamped with the same
// write timestamp, atomically from a reader's point of view.
func (uc *MarketUseCase) RefreshQuotes(ctx context.Context, quotes []*domain.CoinQuote) error {
	if len(quotes) == 0 {
		return nil
	}
	if err := uc.quoteRepo.Upsert(ctx, quotes, uc.now()); err != nil {
		return err
	}
	if uc.metrics != nil {
		uc.metrics.QuotesUpserted.Add(float64(len(quotes)))
	}
	return nil
}

// Quote returns the cached quote for a coin, or nil on a cache miss.
func (uc *MarketUseCase) Quote(ctx context.Context, coinID string) (*domain.CoinQuote, error) {
	quote, err := uc.quoteRepo.Get(ctx, coinID)
	if err != nil {
		return nil, err
	}
	if uc.metrics != nil {
		if quote == nil {
			uc.metrics.CacheLookups.WithLabelValues("miss").Inc()
		} else {
			uc.metrics.CacheLookups.WithLabelValues("hit").Inc()
		}
	}
	return quote, nil
}

// Search finds coins whose name or symbol contains the query. When an
// account is given the query is recorded in its search history.
func (uc *MarketUseCase) Search(ctx context.Context, accountID, query string, limit int) ([]*domain.CoinQuote, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []*domain.CoinQuote{}, nil
	}

	limit, _ = domain.ValidatePagination(limit, 0)

	quotes, err := uc.quoteRepo.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	if accountID != "" {
		item := &domain.SearchHistoryItem{
			ID:         uc.idGen.Generate(),
			AccountID:  accountID,
			Query:      query,
			SearchedAt: uc.now(),
		}
		// History is best-effort; a failed write must not fail the search.
		_ = uc.activityRepo.AddSearch(ctx, item)
	}

	return quotes, nil
}

// TopByMarketCap returns the highest-capitalized cached coins.
func (uc *MarketUseCase) TopByMarketCap(ctx context.Context, limit int) ([]*domain.CoinQuote, error) {
	limit, _ = domain.ValidatePagination(limit, 0)
	return uc.quoteRepo.TopByMarketCap(ctx, limit)
}

// TopGainers returns coins with a strictly positive 24h change, largest
// gain first.
func (uc *MarketUseCase) TopGainers(ctx context.Context, limit int) ([]*domain.CoinQuote, error) {
	limit, _ = domain.ValidatePagination(limit, 0)
	return uc.quoteRepo.TopGainers(ctx, limit)
}

// TopLosers returns coins with a strictly negative 24h change, largest
// loss first.
func (uc *MarketUseCase) TopLosers(ctx context.Context, limit int) ([]*domain.CoinQuote, error) {
	limit, _ = domain.ValidatePagination(limit, 0)
	return uc.quoteRepo.TopLosers(ctx, limit)
}

// StaleQuotes lists cached quotes older than maxAge, candidates for a
// re-fetch by the market data supplier.
func (uc *MarketUseCase) StaleQuotes(ctx context.Context, maxAge time.Duration) ([]*domain.CoinQuote, error) {
	if maxAge <= 0 {
		maxAge = DefaultQuoteMaxAge
	}
	return uc.quoteRepo.OlderThan(ctx, uc.now().Add(-maxAge))
}

// EvictStale hard-deletes quotes older than maxAge and prunes old
// search history. A missing cache entry is just a miss later, so this
// is cleanup, not correctness.
func (uc *MarketUseCase) EvictStale(ctx context.Context, maxAge time.Duration) (int64, error) {
	if maxAge <= 0 {
		maxAge = DefaultQuoteMaxAge
	}

	evicted, err := uc.quoteRepo.DeleteOlderThan(ctx, uc.now().Add(-maxAge))
	if err != nil {
		return 0, err
	}

	if uc.metrics != nil && evicted > 0 {
		uc.metrics.QuotesEvicted.Add(float64(evicted))
	}

	_, _ = uc.activityRepo.DeleteSearchesOlderThan(ctx, uc.now().Add(-SearchHistoryRetention))

	return evicted, nil
}

// PriceHistory returns recorded price points for a coin since a cutoff.
func (uc *MarketUseCase) PriceHistory(ctx context.Context, coinID string, since time.Time) ([]*domain.PricePoint, error) {
	return uc.quoteRepo.PriceHistory(ctx, coinID, since)
}

// RecentSearches lists the account's latest search queries.
func (uc *MarketUseCase) RecentSearches(ctx context.Context, accountID string, limit int) ([]*domain.SearchHistoryItem, error) {
	limit, _ = domain.ValidatePagination(limit, 0)
	return uc.activityRepo.RecentSearches(ctx, accountID, limit)
}

// ClearSearchHistory wipes the account's search history.
func (uc *MarketUseCase) ClearSearchHistory(ctx context.Context, accountID string) (int64, error) {
	return uc.activityRepo.ClearSearches(ctx, accountID)
}

// AddFavorite marks a coin as a favorite of the account.
func (uc *MarketUseCase) AddFavorite(ctx context.Context, accountID, coinID string) error {
	fav := &domain.FavoriteCoin{
		ID:        uc.idGen.Generate(),
		AccountID: accountID,
		CoinID:    coinID,
		AddedAt:   uc.now(),
	}

	if quote, err := uc.quoteRepo.Get(ctx, coinID); err == nil && quote != nil {
		fav.Symbol = quote.Symbol
		fav.Name = quote.Name
	}

	return uc.activityRepo.AddFavorite(ctx, fav)
}

// RemoveFavorite unmarks a favorite coin.
func (uc *MarketUseCase) RemoveFavorite(ctx context.Context, accountID, coinID string) error {
	return uc.activityRepo.RemoveFavorite(ctx, accountID, coinID)
}

// IsFavorite reports whether the account has favorited the coin.
func (uc *MarketUseCase) IsFavorite(ctx context.Context, accountID, coinID string) (bool, error) {
	return uc.activityRepo.IsFavorite(ctx, accountID, coinID)
}

// Favorites lists the account's favorite coins.
func (uc *MarketUseCase) Favorites(ctx context.Context, accountID string) ([]*domain.FavoriteCoin, error) {
	return uc.activityRepo.ListFavorites(ctx, accountID)
}
