package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/olegbp/cryptofolio/internal/adapter/http/dto"
	"github.com/olegbp/cryptofolio/internal/adapter/http/middleware"
	"github.com/olegbp/cryptofolio/internal/domain"
)

// HoldingsService defines the behavior needed by PortfolioHandler.
type HoldingsService interface {
	Consolidate(ctx context.Context, accountID string) ([]*domain.ConsolidatedAsset, error)
	HoldingQuantity(ctx context.Context, accountID, coinID string) (decimal.Decimal, error)
}

// PortfolioHandler serves consolidated holdings derived from the ledger.
type PortfolioHandler struct {
	holdingsUC HoldingsService
}

// NewPortfolioHandler creates a new PortfolioHandler.
func NewPortfolioHandler(holdingsUC HoldingsService) *PortfolioHandler {
	return &PortfolioHandler{holdingsUC: holdingsUC}
}

// Get returns the account's net positions, highest value first.
func (h *PortfolioHandler) Get(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.GetAccountID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	assets, err := h.holdingsUC.Consolidate(r.Context(), accountID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to consolidate holdings", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.AssetsFromDomain(assets))
}

// Holding returns the net quantity held for one coin.
func (h *PortfolioHandler) Holding(w http.ResponseWriter, r *http.Request) {
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

	quantity, err := h.holdingsUC.HoldingQuantity(r.Context(), accountID, coinID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get holding", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"coin_id":  coinID,
		"quantity": quantity,
	})
}
