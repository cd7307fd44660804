package domain

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// ConsolidatedAsset is the aggregated net position for one coin,
// derived from the ledger. It is never persisted.
type ConsolidatedAsset struct {
	CoinID           string
	Symbol           string
	Name             string
	TotalQuantity    decimal.Decimal
	CurrentPrice     decimal.Decimal
	TotalValue       decimal.Decimal
	TransactionCount int
}

// SearchHistoryItem records one search query made by an account.
type SearchHistoryItem struct {
	ID         string
	AccountID  string
	Query      string
	SearchedAt time.Time
}

// FavoriteCoin marks a coin as a favorite of an account.
type FavoriteCoin struct {
	ID        string
	AccountID string
	CoinID    string
	Symbol    string
	Name      string
	AddedAt   time.Time
}

// Consolidate folds BUY/SELL entries into per-coin net positions.
// Entries must be in timestamp order; the last trade price observed for
// a coin is kept as a fallback when no cached quote is available.
// Positions with a non-positive net quantity are dropped and the result
// is sorted by total value, highest first.
func Consolidate(entries []*LedgerEntry, quotes map[string]*CoinQuote) []*ConsolidatedAsset {
	byCoin := make(map[string]*ConsolidatedAsset)

	for _, e := range entries {
		if !e.Type.IsTrade() {
			continue
		}

		asset := byCoin[e.CoinID]
		if asset == nil {
			asset = &ConsolidatedAsset{CoinID: e.CoinID}
			byCoin[e.CoinID] = asset
		}

		switch e.Type {
		case EntryBuy:
			asset.TotalQuantity = asset.TotalQuantity.Add(e.Quantity)
		case EntrySell:
			asset.TotalQuantity = asset.TotalQuantity.Sub(e.Quantity)
		}

		asset.TransactionCount++
		asset.CurrentPrice = e.PricePerUnit
	}

	assets := make([]*ConsolidatedAsset, 0, len(byCoin))
	for coinID, asset := range byCoin {
		if asset.TotalQuantity.LessThanOrEqual(decimal.Zero) {
			continue
		}

		if q := quotes[coinID]; q != nil {
			asset.Symbol = q.Symbol
			asset.Name = q.Name
			asset.CurrentPrice = q.CurrentPrice
		}

		asset.TotalValue = asset.TotalQuantity.Mul(asset.CurrentPrice)
		assets = append(assets, asset)
	}

	sort.Slice(assets, func(i, j int) bool {
		return assets[i].TotalValue.GreaterThan(assets[j].TotalValue)
	})

	return assets
}

// NetQuantity sums BUY minus SELL quantities for one coin.
func NetQuantity(entries []*LedgerEntry, coinID string) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		if e.CoinID != coinID {
			continue
		}
		switch e.Type {
		case EntryBuy:
			total = total.Add(e.Quantity)
		case EntrySell:
			total = total.Sub(e.Quantity)
		}
	}
	return total
}
