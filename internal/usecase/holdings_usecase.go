package usecase

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/olegbp/cryptofolio/internal/domain"
)

// HoldingsUseCase derives consolidated per-coin positions from the
// ledger. It never writes; results reflect whatever committed state it
// observes.
type HoldingsUseCase struct {
	ledgerRepo LedgerRepository
	quoteRepo  QuoteRepository
}

// NewHoldingsUseCase creates a new HoldingsUseCase.
func NewHoldingsUseCase(ledgerRepo LedgerRepository, quoteRepo QuoteRepository) *HoldingsUseCase {
	return &HoldingsUseCase{
		ledgerRepo: ledgerRepo,
		quoteRepo:  quoteRepo,
	}
}

// Consolidate groups the account's trades by coin, nets the
// quantities, prices each open position from the coin cache and sorts
// by total value, highest first. Fully exited coins are not reported.
func (uc *HoldingsUseCase) Consolidate(ctx context.Context, accountID string) ([]*domain.ConsolidatedAsset, error) {
	trades, err := uc.ledgerRepo.TradesByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if len(trades) == 0 {
		return []*domain.ConsolidatedAsset{}, nil
	}

	coinIDs := uniqueCoinIDs(trades)

	quotes, err := uc.quoteRepo.GetMany(ctx, coinIDs)
	if err != nil {
		return nil, err
	}

	return domain.Consolidate(trades, quotes), nil
}

// HoldingQuantity returns the net position of one coin.
func (uc *HoldingsUseCase) HoldingQuantity(ctx context.Context, accountID, coinID string) (decimal.Decimal, error) {
	trades, err := uc.ledgerRepo.TradesByAccount(ctx, accountID)
	if err != nil {
		return decimal.Zero, err
	}
	return domain.NetQuantity(trades, coinID), nil
}

func uniqueCoinIDs(entries []*domain.LedgerEntry) []string {
	seen := make(map[string]bool)

	var ids []string
	for _, e := range entries {
		if e.CoinID == "" || seen[e.CoinID] {
			continue
		}
		seen[e.CoinID] = true
		ids = append(ids, e.CoinID)
	}

	return ids
}
