package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/olegbp/cryptofolio/internal/adapter/http/dto"
	"github.com/olegbp/cryptofolio/internal/adapter/http/middleware"
	"github.com/olegbp/cryptofolio/internal/domain"
	"github.com/olegbp/cryptofolio/internal/usecase"
)

// LedgerService defines the behavior needed by LedgerHandler.
type LedgerService interface {
	Deposit(ctx context.Context, accountID string, amount decimal.Decimal) (*domain.LedgerEntry, error)
	Withdraw(ctx context.Context, accountID string, amount decimal.Decimal) (*domain.LedgerEntry, error)
	Buy(ctx context.Context, accountID, coinID string, fiatAmount, pricePerUnit decimal.Decimal) (*domain.LedgerEntry, error)
	Sell(ctx context.Context, accountID, coinID string, quantity, pricePerUnit decimal.Decimal) (*domain.LedgerEntry, error)
	ListEntries(ctx context.Context, input usecase.ListEntriesInput) ([]*domain.LedgerEntry, int64, error)
	Balance(ctx context.Context, accountID string) (decimal.Decimal, error)
}

// LedgerHandler handles balance mutations and transaction history.
type LedgerHandler struct {
	ledgerUC LedgerService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerUC LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerUC: ledgerUC}
}

// Deposit credits fiat to the authenticated account.
func (h *LedgerHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.GetAccountID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	var req dto.DepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	entry, err := h.ledgerUC.Deposit(r.Context(), accountID, req.Amount)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to deposit", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.EntryFromDomain(entry))
}

// Withdraw debits fiat from the authenticated account.
func (h *LedgerHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.GetAccountID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	var req dto.WithdrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	entry, err := h.ledgerUC.Withdraw(r.Context(), accountID, req.Amount)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to withdraw", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.EntryFromDomain(entry))
}

// Buy books a coin purchase funded from the fiat balance.
func (h *LedgerHandler) Buy(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.GetAccountID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	var req dto.BuyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	entry, err := h.ledgerUC.Buy(r.Context(), accountID, req.CoinID, req.FiatAmount, req.PricePerUnit)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to buy", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.EntryFromDomain(entry))
}

// Sell books a coin sale credited to the fiat balance.
func (h *LedgerHandler) Sell(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.GetAccountID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	var req dto.SellRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	entry, err := h.ledgerUC.Sell(r.Context(), accountID, req.CoinID, req.Quantity, req.PricePerUnit)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to sell", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.EntryFromDomain(entry))
}

// List returns the account's transaction history, newest first.
func (h *LedgerHandler) List(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.GetAccountID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	entries, total, err := h.ledgerUC.ListEntries(r.Context(), usecase.ListEntriesInput{
		AccountID: accountID,
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list entries", err.Error())
		return
	}

	w.Header().Set("X-Total-Count", strconv.FormatInt(total, 10))
	writeJSON(w, http.StatusOK, dto.EntriesFromDomain(entries))
}

// Balance returns the committed fiat balance.
func (h *LedgerHandler) Balance(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.GetAccountID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	balance, err := h.ledgerUC.Balance(r.Context(), accountID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get balance", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceResponse{
		AccountID: accountID,
		Balance:   balance,
	})
}
