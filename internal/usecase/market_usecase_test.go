package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/olegbp/cryptofolio/internal/domain"
	"github.com/olegbp/cryptofolio/internal/usecase"
	"github.com/olegbp/cryptofolio/internal/usecase/mocks"
)

func newMarketUseCase(quoteRepo *mocks.MockQuoteRepository, activityRepo *mocks.MockActivityRepository) *usecase.MarketUseCase {
	return usecase.NewMarketUseCase(quoteRepo, activityRepo, mocks.NewMockIDGenerator(), nil)
}

func TestMarketUseCase_RefreshAndGet(t *testing.T) {
	quoteRepo := mocks.NewMockQuoteRepository()
	uc := newMarketUseCase(quoteRepo, mocks.NewMockActivityRepository())
	ctx := context.Background()

	err := uc.RefreshQuotes(ctx, []*domain.CoinQuote{
		{CoinID: "bitcoin", Symbol: "btc", CurrentPrice: decimal.NewFromInt(50000)},
		{CoinID: "ethereum", Symbol: "eth", CurrentPrice: decimal.NewFromInt(3000)},
	})
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}

	quote, err := uc.Quote(ctx, "bitcoin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if quote == nil || !quote.CurrentPrice.Equal(decimal.NewFromInt(50000)) {
		t.Fatalf("unexpected quote: %+v", quote)
	}
	if quote.CachedAt.IsZero() {
		t.Error("expected refresh to stamp CachedAt")
	}
}

func TestMarketUseCase_Quote_Miss(t *testing.T) {
	uc := newMarketUseCase(mocks.NewMockQuoteRepository(), mocks.NewMockActivityRepository())

	quote, err := uc.Quote(context.Background(), "dogecoin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if quote != nil {
		t.Errorf("expected nil for a cache miss, got %+v", quote)
	}
}

func TestMarketUseCase_RefreshQuotes_EmptyBatch(t *testing.T) {
	quoteRepo := mocks.NewMockQuoteRepository()
	quoteRepo.UpsertFunc = func(ctx context.Context, quotes []*domain.CoinQuote, cachedAt time.Time) error {
		t.Fatal("Upsert should not be called for an empty batch")
		return nil
	}

	uc := newMarketUseCase(quoteRepo, mocks.NewMockActivityRepository())

	if err := uc.RefreshQuotes(context.Background(), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestMarketUseCase_Search_RecordsHistory(t *testing.T) {
	quoteRepo := mocks.NewMockQuoteRepository()
	quoteRepo.SearchFunc = func(ctx context.Context, query string, limit int) ([]*domain.CoinQuote, error) {
		return []*domain.CoinQuote{{CoinID: "bitcoin"}}, nil
	}
	activityRepo := mocks.NewMockActivityRepository()

	uc := newMarketUseCase(quoteRepo, activityRepo)

	quotes, err := uc.Search(context.Background(), "acc-1", "  bit  ", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(quotes) != 1 {
		t.Fatalf("expected 1 result, got %d", len(quotes))
	}

	searches := activityRepo.Searches()
	if len(searches) != 1 {
		t.Fatalf("expected 1 recorded search, got %d", len(searches))
	}
	if searches[0].Query != "bit" {
		t.Errorf("expected trimmed query, got %q", searches[0].Query)
	}
	if searches[0].AccountID != "acc-1" {
		t.Errorf("expected account acc-1, got %s", searches[0].AccountID)
	}
}

func TestMarketUseCase_Search_AnonymousNotRecorded(t *testing.T) {
	quoteRepo := mocks.NewMockQuoteRepository()
	quoteRepo.SearchFunc = func(ctx context.Context, query string, limit int) ([]*domain.CoinQuote, error) {
		return []*domain.CoinQuote{}, nil
	}
	activityRepo := mocks.NewMockActivityRepository()

	uc := newMarketUseCase(quoteRepo, activityRepo)

	if _, err := uc.Search(context.Background(), "", "bit", 10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(activityRepo.Searches()) != 0 {
		t.Error("expected anonymous search not to be recorded")
	}
}

func TestMarketUseCase_Search_EmptyQuery(t *testing.T) {
	quoteRepo := mocks.NewMockQuoteRepository()
	quoteRepo.SearchFunc = func(ctx context.Context, query string, limit int) ([]*domain.CoinQuote, error) {
		t.Fatal("Search should not hit the repository for a blank query")
		return nil, nil
	}

	uc := newMarketUseCase(quoteRepo, mocks.NewMockActivityRepository())

	quotes, err := uc.Search(context.Background(), "acc-1", "   ", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(quotes) != 0 {
		t.Errorf("expected no results, got %d", len(quotes))
	}
}

func TestMarketUseCase_Search_HistoryWriteFailureIgnored(t *testing.T) {
	quoteRepo := mocks.NewMockQuoteRepository()
	quoteRepo.SearchFunc = func(ctx context.Context, query string, limit int) ([]*domain.CoinQuote, error) {
		return []*domain.CoinQuote{{CoinID: "bitcoin"}}, nil
	}
	activityRepo := mocks.NewMockActivityRepository()
	activityRepo.AddSearchFunc = func(ctx context.Context, item *domain.SearchHistoryItem) error {
		return errors.New("history unavailable")
	}

	uc := newMarketUseCase(quoteRepo, activityRepo)

	quotes, err := uc.Search(context.Background(), "acc-1", "bit", 10)
	if err != nil {
		t.Fatalf("expected search to succeed despite history failure, got %v", err)
	}
	if len(quotes) != 1 {
		t.Errorf("expected 1 result, got %d", len(quotes))
	}
}

func TestMarketUseCase_EvictStale(t *testing.T) {
	quoteRepo := mocks.NewMockQuoteRepository()
	var capturedCutoff time.Time
	quoteRepo.DeleteOlderThanFunc = func(ctx context.Context, cutoff time.Time) (int64, error) {
		capturedCutoff = cutoff
		return 3, nil
	}
	activityRepo := mocks.NewMockActivityRepository()
	var historyCutoff time.Time
	activityRepo.DeleteSearchesOlderThanFunc = func(ctx context.Context, cutoff time.Time) (int64, error) {
		historyCutoff = cutoff
		return 0, nil
	}

	uc := newMarketUseCase(quoteRepo, activityRepo)

	evicted, err := uc.EvictStale(context.Background(), time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if evicted != 3 {
		t.Errorf("expected 3 evicted, got %d", evicted)
	}

	wantCutoff := time.Now().UTC().Add(-time.Hour)
	if capturedCutoff.Sub(wantCutoff).Abs() > time.Minute {
		t.Errorf("unexpected quote cutoff %s", capturedCutoff)
	}
	if historyCutoff.IsZero() {
		t.Error("expected search history pruning to run")
	}
}

func TestMarketUseCase_EvictStale_DefaultMaxAge(t *testing.T) {
	quoteRepo := mocks.NewMockQuoteRepository()
	var capturedCutoff time.Time
	quoteRepo.DeleteOlderThanFunc = func(ctx context.Context, cutoff time.Time) (int64, error) {
		capturedCutoff = cutoff
		return 0, nil
	}

	uc := newMarketUseCase(quoteRepo, mocks.NewMockActivityRepository())

	if _, err := uc.EvictStale(context.Background(), 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantCutoff := time.Now().UTC().Add(-usecase.DefaultQuoteMaxAge)
	if capturedCutoff.Sub(wantCutoff).Abs() > time.Minute {
		t.Errorf("expected default max age cutoff, got %s", capturedCutoff)
	}
}

func TestMarketUseCase_Favorites(t *testing.T) {
	quoteRepo := mocks.NewMockQuoteRepository()
	quoteRepo.Upsert(context.Background(), []*domain.CoinQuote{
		{CoinID: "bitcoin", Symbol: "btc", Name: "Bitcoin"},
	}, time.Now().UTC())
	activityRepo := mocks.NewMockActivityRepository()

	uc := newMarketUseCase(quoteRepo, activityRepo)
	ctx := context.Background()

	if err := uc.AddFavorite(ctx, "acc-1", "bitcoin"); err != nil {
		t.Fatalf("add favorite failed: %v", err)
	}

	isFav, err := uc.IsFavorite(ctx, "acc-1", "bitcoin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !isFav {
		t.Error("expected bitcoin to be a favorite")
	}

	favorites, err := uc.Favorites(ctx, "acc-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(favorites) != 1 {
		t.Fatalf("expected 1 favorite, got %d", len(favorites))
	}
	// Metadata is denormalized from the cache at add time.
	if favorites[0].Symbol != "btc" || favorites[0].Name != "Bitcoin" {
		t.Errorf("expected cached metadata on favorite, got %+v", favorites[0])
	}

	if err := uc.RemoveFavorite(ctx, "acc-1", "bitcoin"); err != nil {
		t.Fatalf("remove favorite failed: %v", err)
	}

	isFav, _ = uc.IsFavorite(ctx, "acc-1", "bitcoin")
	if isFav {
		t.Error("expected favorite to be removed")
	}
}

func TestMarketUseCase_ClearSearchHistory(t *testing.T) {
	activityRepo := mocks.NewMockActivityRepository()
	activityRepo.ClearSearchesFunc = func(ctx context.Context, accountID string) (int64, error) {
		if accountID != "acc-1" {
			t.Errorf("expected acc-1, got %s", accountID)
		}
		return 5, nil
	}

	uc := newMarketUseCase(mocks.NewMockQuoteRepository(), activityRepo)

	deleted, err := uc.ClearSearchHistory(context.Background(), "acc-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deleted != 5 {
		t.Errorf("expected 5 deleted, got %d", deleted)
	}
}
