package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/olegbp/cryptofolio/internal/adapter/http/dto"
	"github.com/olegbp/cryptofolio/internal/domain"
	"github.com/olegbp/cryptofolio/internal/infrastructure/auth"
	"github.com/olegbp/cryptofolio/internal/usecase"
)

type sessionServiceStub struct {
	registerFn func(ctx context.Context, input usecase.RegisterInput) (*domain.Account, error)
	loginFn    func(ctx context.Context, email, password string) (*domain.Account, error)
	loggedOut  bool
}

func (s *sessionServiceStub) Register(ctx context.Context, input usecase.RegisterInput) (*domain.Account, error) {
	return s.registerFn(ctx, input)
}

func (s *sessionServiceStub) Login(ctx context.Context, email, password string) (*domain.Account, error) {
	return s.loginFn(ctx, email, password)
}

func (s *sessionServiceStub) Logout() {
	s.loggedOut = true
}

type accountServiceStub struct {
	getAccountFn    func(ctx context.Context, id string) (*domain.Account, error)
	updateProfileFn func(ctx context.Context, input usecase.UpdateProfileInput) (*domain.Account, error)
}

func (s *accountServiceStub) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return s.getAccountFn(ctx, id)
}

func (s *accountServiceStub) UpdateProfile(ctx context.Context, input usecase.UpdateProfileInput) (*domain.Account, error) {
	return s.updateProfileFn(ctx, input)
}

func testAccount() *domain.Account {
	return &domain.Account{
		ID:        "acc-1",
		Email:     "alice@example.com",
		Username:  "alice",
		Balance:   decimal.Zero,
		CreatedAt: time.Now().UTC(),
		Active:    true,
	}
}

func newAuthHandler(session *sessionServiceStub, svc *accountServiceStub) *AuthHandler {
	return NewAuthHandler(session, svc, auth.NewJWTManager("test-secret", time.Hour))
}

func TestAuthHandler_Register_Success(t *testing.T) {
	var captured usecase.RegisterInput
	handler := newAuthHandler(&sessionServiceStub{
		registerFn: func(ctx context.Context, input usecase.RegisterInput) (*domain.Account, error) {
			captured = input
			return testAccount(), nil
		},
	}, &accountServiceStub{})

	body, _ := json.Marshal(dto.RegisterRequest{
		Email:    "alice@example.com",
		Username: "alice",
		Password: "secret123",
	})
	req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Register(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.Email != "alice@example.com" || captured.Password != "secret123" {
		t.Fatalf("unexpected input: %+v", captured)
	}

	var resp dto.TokenResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Token == "" {
		t.Fatal("expected a token in the response")
	}
	if resp.Account == nil || resp.Account.ID != "acc-1" {
		t.Fatalf("unexpected account: %+v", resp.Account)
	}
}

func TestAuthHandler_Register_EmailTaken(t *testing.T) {
	handler := newAuthHandler(&sessionServiceStub{
		registerFn: func(ctx context.Context, input usecase.RegisterInput) (*domain.Account, error) {
			return nil, domain.ErrEmailTaken
		},
	}, &accountServiceStub{})

	body, _ := json.Marshal(dto.RegisterRequest{
		Email:    "alice@example.com",
		Username: "alice",
		Password: "secret123",
	})
	req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Register(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	handler := newAuthHandler(&sessionServiceStub{
		loginFn: func(ctx context.Context, email, password string) (*domain.Account, error) {
			if email != "alice@example.com" || password != "secret123" {
				t.Fatalf("unexpected credentials: %s / %s", email, password)
			}
			return testAccount(), nil
		},
	}, &accountServiceStub{})

	body, _ := json.Marshal(dto.LoginRequest{Email: "alice@example.com", Password: "secret123"})
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Login(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.TokenResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Token == "" {
		t.Fatal("expected a token in the response")
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	handler := newAuthHandler(&sessionServiceStub{
		loginFn: func(ctx context.Context, email, password string) (*domain.Account, error) {
			return nil, domain.ErrInvalidCredentials
		},
	}, &accountServiceStub{})

	body, _ := json.Marshal(dto.LoginRequest{Email: "alice@example.com", Password: "wrong"})
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Login(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	session := &sessionServiceStub{}
	handler := newAuthHandler(session, &accountServiceStub{})

	req := authedRequest(http.MethodPost, "/auth/logout", nil, "acc-1")
	rec := httptest.NewRecorder()

	handler.Logout(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if !session.loggedOut {
		t.Fatal("expected the session to be cleared")
	}
}

func TestAuthHandler_Logout_Unauthorized(t *testing.T) {
	session := &sessionServiceStub{}
	handler := newAuthHandler(session, &accountServiceStub{})

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	rec := httptest.NewRecorder()

	handler.Logout(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if session.loggedOut {
		t.Fatal("session must stay untouched for anonymous requests")
	}
}

func TestAuthHandler_Me(t *testing.T) {
	handler := newAuthHandler(&sessionServiceStub{}, &accountServiceStub{
		getAccountFn: func(ctx context.Context, id string) (*domain.Account, error) {
			if id != "acc-1" {
				t.Fatalf("unexpected account ID: %s", id)
			}
			return testAccount(), nil
		},
	})

	req := authedRequest(http.MethodGet, "/auth/me", nil, "acc-1")
	rec := httptest.NewRecorder()

	handler.Me(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "password") {
		t.Fatal("response must not expose password fields")
	}
}

func TestAuthHandler_Me_Unauthorized(t *testing.T) {
	handler := newAuthHandler(&sessionServiceStub{}, &accountServiceStub{
		getAccountFn: func(ctx context.Context, id string) (*domain.Account, error) {
			t.Fatal("GetAccount should not be called without an account")
			return nil, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	rec := httptest.NewRecorder()

	handler.Me(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthHandler_UpdateProfile(t *testing.T) {
	var captured usecase.UpdateProfileInput
	handler := newAuthHandler(&sessionServiceStub{}, &accountServiceStub{
		updateProfileFn: func(ctx context.Context, input usecase.UpdateProfileInput) (*domain.Account, error) {
			captured = input
			acc := testAccount()
			acc.Bio = *input.Bio
			return acc, nil
		},
	})

	bio := "day trader"
	body, _ := json.Marshal(dto.UpdateProfileRequest{Bio: &bio})
	req := authedRequest(http.MethodPut, "/auth/profile", body, "acc-1")
	rec := httptest.NewRecorder()

	handler.UpdateProfile(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.ID != "acc-1" {
		t.Fatalf("expected account acc-1, got %s", captured.ID)
	}
	if captured.Bio == nil || *captured.Bio != "day trader" {
		t.Fatalf("unexpected bio: %+v", captured.Bio)
	}
	if captured.Username != nil {
		t.Fatal("absent fields must stay nil")
	}
}
