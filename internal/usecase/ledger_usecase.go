package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/olegbp/cryptofolio/internal/domain"
	"github.com/olegbp/cryptofolio/internal/infrastructure/metrics"
)

// LedgerUseCase owns every balance mutation. Each operation runs as one
// transaction: the account row is locked, preconditions are checked
// against the locked balance, and the balance update commits together
// with the appended entry or not at all.
type LedgerUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	ledgerRepo  LedgerRepository
	retrier     Retrier
	idGen       IDGenerator
	metrics     *metrics.Metrics

	allowShortSelling bool
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	ledgerRepo LedgerRepository,
	retrier Retrier,
	idGen IDGenerator,
	metrics *metrics.Metrics,
	allowShortSelling bool,
) *LedgerUseCase {
	return &LedgerUseCase{
		txManager:         txManager,
		accountRepo:       accountRepo,
		ledgerRepo:        ledgerRepo,
		retrier:           retrier,
		idGen:             idGen,
		metrics:           metrics,
		allowShortSelling: allowShortSelling,
	}
}

// Deposit credits fiat to the account and appends a DEPOSIT entry.
func (uc *LedgerUseCase) Deposit(ctx context.Context, accountID string, amount decimal.Decimal) (*domain.LedgerEntry, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidAmount
	}

	return uc.run(ctx, accountID, func(tx Transaction, account *domain.Account, now time.Time) (*domain.LedgerEntry, decimal.Decimal, error) {
		entry := &domain.LedgerEntry{
			ID:         uc.idGen.Generate(),
			AccountID:  accountID,
			Type:       domain.EntryDeposit,
			FiatAmount: amount,
			CreatedAt:  now,
		}
		return entry, account.ApplyCredit(amount), nil
	})
}

// Withdraw debits fiat from the account and appends a WITHDRAW entry.
// Insufficient funds rejects the whole operation, never a partial one.
func (uc *LedgerUseCase) Withdraw(ctx context.Context, accountID string, amount decimal.Decimal) (*domain.LedgerEntry, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidAmount
	}

	return uc.run(ctx, accountID, func(tx Transaction, account *domain.Account, now time.Time) (*domain.LedgerEntry, decimal.Decimal, error) {
		if err := account.ValidateDebit(amount); err != nil {
			return nil, decimal.Zero, err
		}

		entry := &domain.LedgerEntry{
			ID:         uc.idGen.Generate(),
			AccountID:  accountID,
			Type:       domain.EntryWithdraw,
			FiatAmount: amount,
			CreatedAt:  now,
		}
		return entry, account.ApplyDebit(amount), nil
	})
}

// Buy spends fiatAmount of balance on coinID at pricePerUnit. The
// purchased quantity is derived, never supplied by the caller.
func (uc *LedgerUseCase) Buy(ctx context.Context, accountID, coinID string, fiatAmount, pricePerUnit decimal.Decimal) (*domain.LedgerEntry, error) {
	if fiatAmount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidAmount
	}
	if pricePerUnit.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidPrice
	}
	if coinID == "" {
		return nil, domain.ErrMissingCoinID
	}

	quantity := fiatAmount.Div(pricePerUnit)

	return uc.run(ctx, accountID, func(tx Transaction, account *domain.Account, now time.Time) (*domain.LedgerEntry, decimal.Decimal, error) {
		if err := account.ValidateDebit(fiatAmount); err != nil {
			return nil, decimal.Zero, err
		}

		entry := &domain.LedgerEntry{
			ID:           uc.idGen.Generate(),
			AccountID:    accountID,
			Type:         domain.EntryBuy,
			CoinID:       coinID,
			Quantity:     quantity,
			PricePerUnit: pricePerUnit,
			FiatAmount:   quantity.Mul(pricePerUnit),
			CreatedAt:    now,
		}
		return entry, account.ApplyDebit(fiatAmount), nil
	})
}

// Sell credits quantity*pricePerUnit of fiat and appends a SELL entry.
// Unless short selling is enabled, the net holdings of the coin are
// checked inside the same transaction that appends the entry.
func (uc *LedgerUseCase) Sell(ctx context.Context, accountID, coinID string, quantity, pricePerUnit decimal.Decimal) (*domain.LedgerEntry, error) {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidQuantity
	}
	if pricePerUnit.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidPrice
	}
	if coinID == "" {
		return nil, domain.ErrMissingCoinID
	}

	proceeds := quantity.Mul(pricePerUnit)

	return uc.run(ctx, accountID, func(tx Transaction, account *domain.Account, now time.Time) (*domain.LedgerEntry, decimal.Decimal, error) {
		if !uc.allowShortSelling {
			held, err := uc.ledgerRepo.NetQuantity(ctx, tx, accountID, coinID)
			if err != nil {
				return nil, decimal.Zero, err
			}
			if held.LessThan(quantity) {
				return nil, decimal.Zero, domain.ErrInsufficientHoldings
			}
		}

		entry := &domain.LedgerEntry{
			ID:           uc.idGen.Generate(),
			AccountID:    accountID,
			Type:         domain.EntrySell,
			CoinID:       coinID,
			Quantity:     quantity,
			PricePerUnit: pricePerUnit,
			FiatAmount:   proceeds,
			CreatedAt:    now,
		}
		return entry, account.ApplyCredit(proceeds), nil
	})
}

// run executes one guarded atomic transition. The step callback sees
// the account as read under a row lock and returns the entry to append
// plus the new balance; both writes commit together. Serialization
// conflicts are retried as a whole.
func (uc *LedgerUseCase) run(
	ctx context.Context,
	accountID string,
	step func(tx Transaction, account *domain.Account, now time.Time) (*domain.LedgerEntry, decimal.Decimal, error),
) (*domain.LedgerEntry, error) {
	var result *domain.LedgerEntry
	start := time.Now()

	attempt := func() error {
		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		account, err := uc.accountRepo.GetByIDForUpdate(ctx, tx, accountID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()

		entry, newBalance, err := step(tx, account, now)
		if err != nil {
			return err
		}

		if err := entry.Validate(); err != nil {
			return err
		}

		if err := uc.ledgerRepo.Append(ctx, tx, entry); err != nil {
			return err
		}

		if err := uc.accountRepo.UpdateBalance(ctx, tx, accountID, newBalance); err != nil {
			return err
		}

		if err := tx.Commit(ctx); err != nil {
			return err
		}

		result = entry
		return nil
	}

	var err error
	if uc.retrier != nil {
		err = uc.retrier.Retry(ctx, attempt)
	} else {
		err = attempt()
	}
	if err != nil {
		if uc.metrics != nil {
			uc.metrics.EntryErrors.WithLabelValues(entryErrorReason(err)).Inc()
		}
		return nil, err
	}

	if uc.metrics != nil {
		entryType := string(result.Type)
		uc.metrics.EntriesBooked.WithLabelValues(entryType).Inc()
		uc.metrics.EntryAmount.WithLabelValues(entryType).Observe(result.FiatAmount.InexactFloat64())
		uc.metrics.LedgerDuration.Observe(time.Since(start).Seconds())
	}

	return result, nil
}

// entryErrorReason buckets rejected operations for the error counter.
func entryErrorReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInsufficientBalance):
		return "insufficient_balance"
	case errors.Is(err, domain.ErrInsufficientHoldings):
		return "insufficient_holdings"
	case errors.Is(err, domain.ErrAccountNotFound):
		return "account_not_found"
	case errors.Is(err, domain.ErrFiatAmountMismatch):
		return "fiat_amount_mismatch"
	default:
		return "internal"
	}
}

// ListEntriesInput represents input for listing ledger entries.
type ListEntriesInput struct {
	AccountID string
	Limit     int
	Offset    int
}

// ListEntries returns one page of the account's transaction history,
// newest first, together with the total entry count so callers can
// paginate.
func (uc *LedgerUseCase) ListEntries(ctx context.Context, input ListEntriesInput) ([]*domain.LedgerEntry, int64, error) {
	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)

	entries, err := uc.ledgerRepo.ListByAccount(ctx, input.AccountID, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	total, err := uc.ledgerRepo.CountByAccount(ctx, input.AccountID)
	if err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}

// Balance reads the committed balance for display.
func (uc *LedgerUseCase) Balance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	account, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return decimal.Zero, err
	}
	return account.Balance, nil
}
