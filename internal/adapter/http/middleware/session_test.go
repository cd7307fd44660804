package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/olegbp/cryptofolio/internal/domain"
	"github.com/olegbp/cryptofolio/internal/usecase"
)

type fakeSessionResolver struct {
	resolveFn func(accountID string) (*domain.Account, error)
}

func (f *fakeSessionResolver) Resolve(accountID string) (*domain.Account, error) {
	if f.resolveFn != nil {
		return f.resolveFn(accountID)
	}
	return nil, domain.ErrNotAuthenticated
}

func gatedRequest(accountID string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ledger/deposit", nil)
	if accountID != "" {
		ctx := context.WithValue(req.Context(), AccountIDContextKey, accountID)
		req = req.WithContext(ctx)
	}
	return req
}

func TestSessionGateAllowsActiveAccount(t *testing.T) {
	resolver := &fakeSessionResolver{
		resolveFn: func(accountID string) (*domain.Account, error) {
			if accountID != "acc-1" {
				t.Fatalf("expected resolve for acc-1, got %s", accountID)
			}
			return &domain.Account{ID: accountID}, nil
		},
	}

	reached := false
	handler := SessionGate(resolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		w.WriteHeader(http.StatusCreated)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, gatedRequest("acc-1"))

	if !reached {
		t.Fatal("expected request to reach the handler")
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
}

func TestSessionGateRejectsInactiveAccount(t *testing.T) {
	resolver := &fakeSessionResolver{}

	handler := SessionGate(resolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run without an active session")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, gatedRequest("acc-1"))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestSessionGateRejectsMissingIdentity(t *testing.T) {
	handler := SessionGate(&fakeSessionResolver{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run without an authenticated account")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, gatedRequest(""))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

// A token minted for an account that never logged in must not pass the
// gate, even though the token itself verifies.
func TestSessionGateRejectsTokenWithoutLogin(t *testing.T) {
	session := usecase.NewSession(nil, nil)

	handler := SessionGate(session)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("mutation must not reach the store without an active session")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, gatedRequest("acc-1"))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
