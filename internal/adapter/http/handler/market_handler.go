package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/olegbp/cryptofolio/internal/adapter/http/dto"
	"github.com/olegbp/cryptofolio/internal/adapter/http/middleware"
	"github.com/olegbp/cryptofolio/internal/domain"
)

// MarketService defines the behavior needed by MarketHandler.
type MarketService interface {
	RefreshQuotes(ctx context.Context, quotes []*domain.CoinQuote) error
	Quote(ctx context.Context, coinID string) (*domain.CoinQuote, error)
	Search(ctx context.Context, accountID, query string, limit int) ([]*domain.CoinQuote, error)
	TopByMarketCap(ctx context.Context, limit int) ([]*domain.CoinQuote, error)
	TopGainers(ctx context.Context, limit int) ([]*domain.CoinQuote, error)
	TopLosers(ctx context.Context, limit int) ([]*domain.CoinQuote, error)
	PriceHistory(ctx context.Context, coinID string, since time.Time) ([]*domain.PricePoint, error)
	RecentSearches(ctx context.Context, accountID string, limit int) ([]*domain.SearchHistoryItem, error)
	ClearSearchHistory(ctx context.Context, accountID string) (int64, error)
	AddFavorite(ctx context.Context, accountID, coinID string) error
	RemoveFavorite(ctx context.Context, accountID, coinID string) error
	Favorites(ctx context.Context, accountID string) ([]*domain.FavoriteCoin, error)
}

// MarketHandler handles the coin cache, search history and favorites.
type MarketHandler struct {
	marketUC MarketService
}

// NewMarketHandler creates a new MarketHandler.
func NewMarketHandler(marketUC MarketService) *MarketHandler {
	return &MarketHandler{marketUC: marketUC}
}

// Refresh upserts a batch of quotes from the market data supplier.
func (h *MarketHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req dto.RefreshQuotesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := h.marketUC.RefreshQuotes(r.Context(), req.ToDomain()); err != nil {
		writeError(w, mapDomainError(err), "failed to refresh quotes", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"upserted": len(req.Quotes)})
}

// Get returns the cached quote for one coin. A cache miss is 404.
func (h *MarketHandler) Get(w http.ResponseWriter, r *http.Request) {
	coinID := chi.URLParam(r, "coinID")
	if coinID == "" {
		writeError(w, http.StatusBadRequest, "missing coin ID", "")
		return
	}

	quote, err := h.marketUC.Quote(r.Context(), coinID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get quote", err.Error())
		return
	}
	if quote == nil {
		writeError(w, http.StatusNotFound, "coin not cached", coinID)
		return
	}

	writeJSON(w, http.StatusOK, dto.QuoteFromDomain(quote))
}

// Search finds cached coins by name or symbol. The query is recorded
// in the caller's search history when the request is authenticated.
func (h *MarketHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	limit := parseIntQuery(r, "limit", 20)

	// Anonymous searches are allowed and simply not recorded.
	accountID, _ := middleware.GetAccountID(r.Context())

	quotes, err := h.marketUC.Search(r.Context(), accountID, query, limit)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to search", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.QuotesFromDomain(quotes))
}

// Top returns the highest-capitalized cached coins.
func (h *MarketHandler) Top(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", 20)

	quotes, err := h.marketUC.TopByMarketCap(r.Context(), limit)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list top coins", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.QuotesFromDomain(quotes))
}

// Gainers returns coins with a positive 24h change, largest first.
func (h *MarketHandler) Gainers(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", 20)

	quotes, err := h.marketUC.TopGainers(r.Context(), limit)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list gainers", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.QuotesFromDomain(quotes))
}

// Losers returns coins with a negative 24h change, largest loss first.
func (h *MarketHandler) Losers(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", 20)

	quotes, err := h.marketUC.TopLosers(r.Context(), limit)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list losers", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.QuotesFromDomain(quotes))
}

// History returns recorded price points for a coin. The window
// defaults to the last 24 hours.
func (h *MarketHandler) History(w http.ResponseWriter, r *http.Request) {
	coinID := chi.URLParam(r, "coinID")
	if coinID == "" {
		writeError(w, http.StatusBadRequest, "missing coin ID", "")
		return
	}

	since := time.Now().UTC().Add(-24 * time.Hour)
	if raw := r.URL.Query().Get("since"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid since parameter", err.Error())
			return
		}
		since = parsed
	}

	points, err := h.marketUC.PriceHistory(r.Context(), coinID, since)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get price history", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.PricePointsFromDomain(points))
}

// RecentSearches lists the account's latest search queries.
func (h *MarketHandler) RecentSearches(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.GetAccountID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	limit := parseIntQuery(r, "limit", 20)

	items, err := h.marketUC.RecentSearches(r.Context(), accountID, limit)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list searches", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.SearchHistoryFromDomain(items))
}

// ClearSearches wipes the account's search history.
func (h *MarketHandler) ClearSearches(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.GetAccountID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	deleted, err := h.marketUC.ClearSearchHistory(r.Context(), accountID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to clear searches", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.DeletedResponse{Deleted: deleted})
}

// AddFavorite marks a coin as a favorite. Re-adding is a no-op.
func (h *MarketHandler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.GetAccountID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	var req dto.AddFavoriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if req.CoinID == "" {
		writeError(w, http.StatusBadRequest, "missing coin ID", "")
		return
	}

	if err := h.marketUC.AddFavorite(r.Context(), accountID, req.CoinID); err != nil {
		writeError(w, mapDomainError(err), "failed to add favorite", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"coin_id": req.CoinID})
}

// RemoveFavorite unmarks a favorite coin.
func (h *MarketHandler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.GetAccountID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	coinID := chi.URLParam(r, "coinID")
	if coinID == "" {
		writeError(w, http.StatusBadRequest, "missing coin ID", "")
		return
	}

	if err := h.marketUC.RemoveFavorite(r.Context(), accountID, coinID); err != nil {
		writeError(w, mapDomainError(err), "failed to remove favorite", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Favorites lists the account's favorite coins.
func (h *MarketHandler) Favorites(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.GetAccountID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	favorites, err := h.marketUC.Favorites(r.Context(), accountID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list favorites", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.FavoritesFromDomain(favorites))
}
