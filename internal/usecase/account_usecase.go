package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/olegbp/cryptofolio/internal/domain"
	"github.com/olegbp/cryptofolio/internal/infrastructure/metrics"
)

// AccountUseCase handles registration, authentication and profile
// management. Passwords pass through the opaque hasher only.
type AccountUseCase struct {
	accountRepo AccountRepository
	hasher      PasswordHasher
	idGen       IDGenerator
	metrics     *metrics.Metrics
}

// NewAccountUseCase creates a new AccountUseCase.
func NewAccountUseCase(accountRepo AccountRepository, hasher PasswordHasher, idGen IDGenerator, metrics *metrics.Metrics) *AccountUseCase {
	return &AccountUseCase{
		accountRepo: accountRepo,
		hasher:      hasher,
		idGen:       idGen,
		metrics:     metrics,
	}
}

// RegisterInput represents input for registering an account.
type RegisterInput struct {
	Email    string
	Username string
	Password string
}

// Register creates an account with a zero balance.
func (uc *AccountUseCase) Register(ctx context.Context, input RegisterInput) (*domain.Account, error) {
	if err := domain.ValidateEmail(input.Email); err != nil {
		return nil, err
	}
	if err := domain.ValidateUsername(input.Username); err != nil {
		return nil, err
	}
	if err := domain.ValidatePassword(input.Password); err != nil {
		return nil, err
	}

	if existing, err := uc.accountRepo.GetByEmail(ctx, input.Email); err == nil && existing != nil {
		return nil, domain.ErrEmailTaken
	}

	digest, err := uc.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	account := &domain.Account{
		ID:           uc.idGen.Generate(),
		Email:        input.Email,
		Username:     input.Username,
		PasswordHash: digest,
		Balance:      decimal.Zero,
		CreatedAt:    now,
		LastLogin:    now,
		Active:       true,
	}

	if err := uc.accountRepo.Create(ctx, account); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.AccountsRegistered.Inc()
	}

	account.PasswordHash = ""
	return account, nil
}

// Authenticate verifies credentials and stamps the last login time.
func (uc *AccountUseCase) Authenticate(ctx context.Context, email, password string) (*domain.Account, error) {
	account, err := uc.accountRepo.GetByEmail(ctx, email)
	if err != nil {
		uc.countAuth("failure")
		return nil, domain.ErrInvalidCredentials
	}

	if !account.Active {
		uc.countAuth("inactive")
		return nil, domain.ErrAccountInactive
	}

	if !uc.hasher.Verify(password, account.PasswordHash) {
		uc.countAuth("failure")
		return nil, domain.ErrInvalidCredentials
	}

	account.LastLogin = time.Now().UTC()
	if err := uc.accountRepo.TouchLastLogin(ctx, account.ID, account.LastLogin); err != nil {
		return nil, err
	}

	uc.countAuth("success")
	account.PasswordHash = ""
	return account, nil
}

func (uc *AccountUseCase) countAuth(status string) {
	if uc.metrics != nil {
		uc.metrics.AuthAttempts.WithLabelValues(status).Inc()
	}
}

// GetAccount retrieves an account by ID without credential material.
func (uc *AccountUseCase) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	account, err := uc.accountRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	account.PasswordHash = ""
	return account, nil
}

// UpdateProfileInput represents the mutable profile fields.
type UpdateProfileInput struct {
	ID           string
	Username     *string
	ProfileImage *string
	Bio          *string
	Phone        *string
}

// UpdateProfile updates profile fields on an account.
func (uc *AccountUseCase) UpdateProfile(ctx context.Context, input UpdateProfileInput) (*domain.Account, error) {
	account, err := uc.accountRepo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if input.Username != nil {
		if err := domain.ValidateUsername(*input.Username); err != nil {
			return nil, err
		}
		account.Username = *input.Username
	}
	if input.ProfileImage != nil {
		account.ProfileImage = *input.ProfileImage
	}
	if input.Bio != nil {
		account.Bio = *input.Bio
	}
	if input.Phone != nil {
		account.Phone = *input.Phone
	}

	if err := uc.accountRepo.UpdateProfile(ctx, account); err != nil {
		return nil, err
	}

	account.PasswordHash = ""
	return account, nil
}
