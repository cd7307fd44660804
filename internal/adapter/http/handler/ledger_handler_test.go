package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/olegbp/cryptofolio/internal/adapter/http/dto"
	"github.com/olegbp/cryptofolio/internal/adapter/http/middleware"
	"github.com/olegbp/cryptofolio/internal/domain"
	"github.com/olegbp/cryptofolio/internal/usecase"
)

type ledgerServiceStub struct {
	depositFn  func(ctx context.Context, accountID string, amount decimal.Decimal) (*domain.LedgerEntry, error)
	withdrawFn func(ctx context.Context, accountID string, amount decimal.Decimal) (*domain.LedgerEntry, error)
	buyFn      func(ctx context.Context, accountID, coinID string, fiatAmount, pricePerUnit decimal.Decimal) (*domain.LedgerEntry, error)
	sellFn     func(ctx context.Context, accountID, coinID string, quantity, pricePerUnit decimal.Decimal) (*domain.LedgerEntry, error)
	listFn     func(ctx context.Context, input usecase.ListEntriesInput) ([]*domain.LedgerEntry, int64, error)
	balanceFn  func(ctx context.Context, accountID string) (decimal.Decimal, error)
}

func (s *ledgerServiceStub) Deposit(ctx context.Context, accountID string, amount decimal.Decimal) (*domain.LedgerEntry, error) {
	return s.depositFn(ctx, accountID, amount)
}

func (s *ledgerServiceStub) Withdraw(ctx context.Context, accountID string, amount decimal.Decimal) (*domain.LedgerEntry, error) {
	return s.withdrawFn(ctx, accountID, amount)
}

func (s *ledgerServiceStub) Buy(ctx context.Context, accountID, coinID string, fiatAmount, pricePerUnit decimal.Decimal) (*domain.LedgerEntry, error) {
	return s.buyFn(ctx, accountID, coinID, fiatAmount, pricePerUnit)
}

func (s *ledgerServiceStub) Sell(ctx context.Context, accountID, coinID string, quantity, pricePerUnit decimal.Decimal) (*domain.LedgerEntry, error) {
	return s.sellFn(ctx, accountID, coinID, quantity, pricePerUnit)
}

func (s *ledgerServiceStub) ListEntries(ctx context.Context, input usecase.ListEntriesInput) ([]*domain.LedgerEntry, int64, error) {
	return s.listFn(ctx, input)
}

func (s *ledgerServiceStub) Balance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	return s.balanceFn(ctx, accountID)
}

// authedRequest builds a request carrying an authenticated account ID.
func authedRequest(method, target string, body []byte, accountID string) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	ctx := context.WithValue(req.Context(), middleware.AccountIDContextKey, accountID)
	return req.WithContext(ctx)
}

func TestLedgerHandler_Deposit_Success(t *testing.T) {
	entry := &domain.LedgerEntry{
		ID:         "entry-1",
		AccountID:  "acc-1",
		Type:       domain.EntryDeposit,
		FiatAmount: decimal.NewFromInt(1000),
		CreatedAt:  time.Now().UTC(),
	}

	var capturedAccount string
	var capturedAmount decimal.Decimal
	handler := NewLedgerHandler(&ledgerServiceStub{
		depositFn: func(ctx context.Context, accountID string, amount decimal.Decimal) (*domain.LedgerEntry, error) {
			capturedAccount = accountID
			capturedAmount = amount
			return entry, nil
		},
	})

	body, _ := json.Marshal(dto.DepositRequest{Amount: decimal.NewFromInt(1000)})
	req := authedRequest(http.MethodPost, "/ledger/deposit", body, "acc-1")
	rec := httptest.NewRecorder()

	handler.Deposit(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if capturedAccount != "acc-1" {
		t.Fatalf("expected account acc-1, got %s", capturedAccount)
	}
	if !capturedAmount.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("expected amount 1000, got %s", capturedAmount)
	}

	var resp dto.EntryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != "entry-1" || resp.Type != "DEPOSIT" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestLedgerHandler_Deposit_Unauthorized(t *testing.T) {
	handler := NewLedgerHandler(&ledgerServiceStub{
		depositFn: func(ctx context.Context, accountID string, amount decimal.Decimal) (*domain.LedgerEntry, error) {
			t.Fatal("Deposit should not be called without an account")
			return nil, nil
		},
	})

	body, _ := json.Marshal(dto.DepositRequest{Amount: decimal.NewFromInt(100)})
	req := httptest.NewRequest(http.MethodPost, "/ledger/deposit", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Deposit(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestLedgerHandler_Withdraw_InsufficientBalance(t *testing.T) {
	handler := NewLedgerHandler(&ledgerServiceStub{
		withdrawFn: func(ctx context.Context, accountID string, amount decimal.Decimal) (*domain.LedgerEntry, error) {
			return nil, domain.ErrInsufficientBalance
		},
	})

	body, _ := json.Marshal(dto.WithdrawRequest{Amount: decimal.NewFromInt(900)})
	req := authedRequest(http.MethodPost, "/ledger/withdraw", body, "acc-1")
	rec := httptest.NewRecorder()

	handler.Withdraw(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}

	var resp dto.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if resp.Error != "failed to withdraw" {
		t.Fatalf("unexpected error message: %s", resp.Error)
	}
}

func TestLedgerHandler_Buy_Success(t *testing.T) {
	entry := &domain.LedgerEntry{
		ID:           "entry-2",
		AccountID:    "acc-1",
		Type:         domain.EntryBuy,
		CoinID:       "bitcoin",
		Quantity:     decimal.RequireFromString("6"),
		PricePerUnit: decimal.NewFromInt(50),
		FiatAmount:   decimal.NewFromInt(300),
	}

	var capturedCoin string
	handler := NewLedgerHandler(&ledgerServiceStub{
		buyFn: func(ctx context.Context, accountID, coinID string, fiatAmount, pricePerUnit decimal.Decimal) (*domain.LedgerEntry, error) {
			capturedCoin = coinID
			return entry, nil
		},
	})

	body, _ := json.Marshal(dto.BuyRequest{
		CoinID:       "bitcoin",
		FiatAmount:   decimal.NewFromInt(300),
		PricePerUnit: decimal.NewFromInt(50),
	})
	req := authedRequest(http.MethodPost, "/ledger/buy", body, "acc-1")
	rec := httptest.NewRecorder()

	handler.Buy(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if capturedCoin != "bitcoin" {
		t.Fatalf("expected coin bitcoin, got %s", capturedCoin)
	}

	var resp dto.EntryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Quantity.Equal(decimal.RequireFromString("6")) {
		t.Fatalf("expected quantity 6, got %s", resp.Quantity)
	}
}

func TestLedgerHandler_Sell_InvalidJSON(t *testing.T) {
	handler := NewLedgerHandler(&ledgerServiceStub{
		sellFn: func(ctx context.Context, accountID, coinID string, quantity, pricePerUnit decimal.Decimal) (*domain.LedgerEntry, error) {
			t.Fatal("Sell should not be called for invalid payload")
			return nil, nil
		},
	})

	req := authedRequest(http.MethodPost, "/ledger/sell", []byte("{invalid"), "acc-1")
	rec := httptest.NewRecorder()

	handler.Sell(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestLedgerHandler_List_PassesPagination(t *testing.T) {
	var captured usecase.ListEntriesInput
	handler := NewLedgerHandler(&ledgerServiceStub{
		listFn: func(ctx context.Context, input usecase.ListEntriesInput) ([]*domain.LedgerEntry, int64, error) {
			captured = input
			return []*domain.LedgerEntry{}, 42, nil
		},
	})

	req := authedRequest(http.MethodGet, "/ledger/entries?limit=5&offset=10", nil, "acc-1")
	rec := httptest.NewRecorder()

	handler.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if captured.AccountID != "acc-1" || captured.Limit != 5 || captured.Offset != 10 {
		t.Fatalf("unexpected input: %+v", captured)
	}
	if got := rec.Header().Get("X-Total-Count"); got != "42" {
		t.Fatalf("expected total count header 42, got %q", got)
	}
}

func TestLedgerHandler_Balance(t *testing.T) {
	handler := NewLedgerHandler(&ledgerServiceStub{
		balanceFn: func(ctx context.Context, accountID string) (decimal.Decimal, error) {
			return decimal.RequireFromString("820"), nil
		},
	})

	req := authedRequest(http.MethodGet, "/ledger/balance", nil, "acc-1")
	rec := httptest.NewRecorder()

	handler.Balance(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.BalanceResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Balance.Equal(decimal.RequireFromString("820")) {
		t.Fatalf("expected balance 820, got %s", resp.Balance)
	}
}
