package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CoinQuote is the last known market snapshot for one coin.
type CoinQuote struct {
	CoinID                   string
	Symbol                   string
	Name                     string
	ImageURL                 string
	CurrentPrice             decimal.Decimal
	MarketCap                decimal.Decimal
	MarketCapRank            int64
	PriceChange24h           decimal.Decimal
	PriceChangePercentage24h decimal.Decimal
	CirculatingSupply        decimal.Decimal
	TotalSupply              decimal.Decimal
	MaxSupply                decimal.Decimal
	CachedAt                 time.Time
}

// IsStale reports whether the quote is older than maxAge at the given instant.
func (q *CoinQuote) IsStale(now time.Time, maxAge time.Duration) bool {
	return now.Sub(q.CachedAt) > maxAge
}

// PricePoint is one historical price observation for a coin.
type PricePoint struct {
	CoinID    string
	Price     decimal.Decimal
	MarketCap decimal.Decimal
	CreatedAt time.Time
}
