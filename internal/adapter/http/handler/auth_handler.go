package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/olegbp/cryptofolio/internal/adapter/http/dto"
	"github.com/olegbp/cryptofolio/internal/adapter/http/middleware"
	"github.com/olegbp/cryptofolio/internal/domain"
	"github.com/olegbp/cryptofolio/internal/infrastructure/auth"
	"github.com/olegbp/cryptofolio/internal/usecase"
)

// SessionService is the session gate the auth endpoints drive. Login
// and registration activate the session; tokens alone do not.
type SessionService interface {
	Register(ctx context.Context, input usecase.RegisterInput) (*domain.Account, error)
	Login(ctx context.Context, email, password string) (*domain.Account, error)
	Logout()
}

// AccountService defines the behavior needed by AuthHandler.
type AccountService interface {
	GetAccount(ctx context.Context, id string) (*domain.Account, error)
	UpdateProfile(ctx context.Context, input usecase.UpdateProfileInput) (*domain.Account, error)
}

// AuthHandler handles registration, login and profile endpoints.
type AuthHandler struct {
	session    SessionService
	accountUC  AccountService
	jwtManager *auth.JWTManager
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(session SessionService, accountUC AccountService, jwtManager *auth.JWTManager) *AuthHandler {
	return &AuthHandler{
		session:    session,
		accountUC:  accountUC,
		jwtManager: jwtManager,
	}
}

// Register creates a new account, activates the session for it, and
// returns a token.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	account, err := h.session.Register(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to register", err.Error())
		return
	}

	token, err := h.jwtManager.Generate(account)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate token", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.TokenResponse{
		Token:   token,
		Account: dto.AccountFromDomain(account),
	})
}

// Login authenticates an account, makes it the active session account,
// and returns a token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	account, err := h.session.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to login", err.Error())
		return
	}

	token, err := h.jwtManager.Generate(account)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate token", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TokenResponse{
		Token:   token,
		Account: dto.AccountFromDomain(account),
	})
}

// Logout clears the active session. The token stays valid until it
// expires, but mutating calls are rejected until the next login.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetAccountID(r.Context()); !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	h.session.Logout()
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the authenticated account.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.GetAccountID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	account, err := h.accountUC.GetAccount(r.Context(), accountID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get account", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

// UpdateProfile updates profile fields on the authenticated account.
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.GetAccountID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	var req dto.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	account, err := h.accountUC.UpdateProfile(r.Context(), req.ToUseCaseInput(accountID))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to update profile", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}
