package usecase

import (
	"context"
	"sync"

	"github.com/olegbp/cryptofolio/internal/domain"
	"github.com/olegbp/cryptofolio/internal/infrastructure/metrics"
)

// Session is the single active-account gate. At most one account is
// authenticated at a time; every mutating call from the outer layers
// must resolve the caller through Current before any store access.
type Session struct {
	mu       sync.RWMutex
	accounts *AccountUseCase
	current  *domain.Account
	metrics  *metrics.Metrics
}

// NewSession creates an empty session.
func NewSession(accounts *AccountUseCase, metrics *metrics.Metrics) *Session {
	return &Session{accounts: accounts, metrics: metrics}
}

// Login authenticates the credentials and makes the account current,
// replacing any previously active account.
func (s *Session) Login(ctx context.Context, email, password string) (*domain.Account, error) {
	account, err := s.accounts.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.replace(account)
	s.mu.Unlock()

	return account, nil
}

// Register creates an account and makes it current.
func (s *Session) Register(ctx context.Context, input RegisterInput) (*domain.Account, error) {
	account, err := s.accounts.Register(ctx, input)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.replace(account)
	s.mu.Unlock()

	return account, nil
}

// Logout clears the active account.
func (s *Session) Logout() {
	s.mu.Lock()
	s.replace(nil)
	s.mu.Unlock()
}

// replace swaps the current account and keeps the session gauge in
// step. Callers hold the write lock.
func (s *Session) replace(account *domain.Account) {
	if s.metrics != nil {
		if s.current == nil && account != nil {
			s.metrics.ActiveSessions.Inc()
		}
		if s.current != nil && account == nil {
			s.metrics.ActiveSessions.Dec()
		}
	}
	s.current = account
}

// Current returns the active account or ErrNotAuthenticated.
func (s *Session) Current() (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return nil, domain.ErrNotAuthenticated
	}
	return s.current, nil
}

// Resolve checks that accountID belongs to the active account. Outer
// layers use it to pin authenticated requests to the session.
func (s *Session) Resolve(accountID string) (*domain.Account, error) {
	account, err := s.Current()
	if err != nil {
		return nil, err
	}
	if account.ID != accountID {
		return nil, domain.ErrNotAuthenticated
	}
	return account, nil
}
