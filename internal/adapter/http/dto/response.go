package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/olegbp/cryptofolio/internal/domain"
)

// AccountResponse represents an account in API responses. The password
// hash never leaves the server.
type AccountResponse struct {
	ID           string          `json:"id"`
	Email        string          `json:"email"`
	Username     string          `json:"username"`
	Balance      decimal.Decimal `json:"balance"`
	ProfileImage string          `json:"profile_image,omitempty"`
	Bio          string          `json:"bio,omitempty"`
	Phone        string          `json:"phone,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	LastLogin    time.Time       `json:"last_login"`
}

// AccountFromDomain converts domain account to response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:           a.ID,
		Email:        a.Email,
		Username:     a.Username,
		Balance:      a.Balance,
		ProfileImage: a.ProfileImage,
		Bio:          a.Bio,
		Phone:        a.Phone,
		CreatedAt:    a.CreatedAt,
		LastLogin:    a.LastLogin,
	}
}

// TokenResponse carries a fresh JWT with the authenticated account.
type TokenResponse struct {
	Token   string           `json:"token"`
	Account *AccountResponse `json:"account"`
}

// EntryResponse represents a ledger entry in API responses.
type EntryResponse struct {
	ID           string          `json:"id"`
	AccountID    string          `json:"account_id"`
	Type         string          `json:"type"`
	CoinID       string          `json:"coin_id,omitempty"`
	Quantity     decimal.Decimal `json:"quantity"`
	PricePerUnit decimal.Decimal `json:"price_per_unit"`
	FiatAmount   decimal.Decimal `json:"fiat_amount"`
	CreatedAt    time.Time       `json:"created_at"`
}

// EntryFromDomain converts domain entry to response.
func EntryFromDomain(e *domain.LedgerEntry) *EntryResponse {
	return &EntryResponse{
		ID:           e.ID,
		AccountID:    e.AccountID,
		Type:         string(e.Type),
		CoinID:       e.CoinID,
		Quantity:     e.Quantity,
		PricePerUnit: e.PricePerUnit,
		FiatAmount:   e.FiatAmount,
		CreatedAt:    e.CreatedAt,
	}
}

// EntriesFromDomain converts domain entries to responses.
func EntriesFromDomain(entries []*domain.LedgerEntry) []*EntryResponse {
	result := make([]*EntryResponse, len(entries))
	for i, e := range entries {
		result[i] = EntryFromDomain(e)
	}
	return result
}

// BalanceResponse carries the committed fiat balance.
type BalanceResponse struct {
	AccountID string          `json:"account_id"`
	Balance   decimal.Decimal `json:"balance"`
}

// QuoteResponse represents a cached coin quote.
type QuoteResponse struct {
	CoinID                   string          `json:"coin_id"`
	Symbol                   string          `json:"symbol"`
	Name                     string          `json:"name"`
	ImageURL                 string          `json:"image_url,omitempty"`
	CurrentPrice             decimal.Decimal `json:"current_price"`
	MarketCap                decimal.Decimal `json:"market_cap"`
	MarketCapRank            int64           `json:"market_cap_rank"`
	PriceChange24h           decimal.Decimal `json:"price_change_24h"`
	PriceChangePercentage24h decimal.Decimal `json:"price_change_percentage_24h"`
	CirculatingSupply        decimal.Decimal `json:"circulating_supply"`
	TotalSupply              decimal.Decimal `json:"total_supply"`
	MaxSupply                decimal.Decimal `json:"max_supply"`
	CachedAt                 time.Time       `json:"cached_at"`
}

// QuoteFromDomain converts domain quote to response.
func QuoteFromDomain(q *domain.CoinQuote) *QuoteResponse {
	return &QuoteResponse{
		CoinID:                   q.CoinID,
		Symbol:                   q.Symbol,
		Name:                     q.Name,
		ImageURL:                 q.ImageURL,
		CurrentPrice:             q.CurrentPrice,
		MarketCap:                q.MarketCap,
		MarketCapRank:            q.MarketCapRank,
		PriceChange24h:           q.PriceChange24h,
		PriceChangePercentage24h: q.PriceChangePercentage24h,
		CirculatingSupply:        q.CirculatingSupply,
		TotalSupply:              q.TotalSupply,
		MaxSupply:                q.MaxSupply,
		CachedAt:                 q.CachedAt,
	}
}

// QuotesFromDomain converts domain quotes to responses.
func QuotesFromDomain(quotes []*domain.CoinQuote) []*QuoteResponse {
	result := make([]*QuoteResponse, len(quotes))
	for i, q := range quotes {
		result[i] = QuoteFromDomain(q)
	}
	return result
}

// AssetResponse represents one consolidated position.
type AssetResponse struct {
	CoinID           string          `json:"coin_id"`
	Symbol           string          `json:"symbol,omitempty"`
	Name             string          `json:"name,omitempty"`
	TotalQuantity    decimal.Decimal `json:"total_quantity"`
	CurrentPrice     decimal.Decimal `json:"current_price"`
	TotalValue       decimal.Decimal `json:"total_value"`
	TransactionCount int             `json:"transaction_count"`
}

// AssetsFromDomain converts consolidated assets to responses.
func AssetsFromDomain(assets []*domain.ConsolidatedAsset) []*AssetResponse {
	result := make([]*AssetResponse, len(assets))
	for i, a := range assets {
		result[i] = &AssetResponse{
			CoinID:           a.CoinID,
			Symbol:           a.Symbol,
			Name:             a.Name,
			TotalQuantity:    a.TotalQuantity,
			CurrentPrice:     a.CurrentPrice,
			TotalValue:       a.TotalValue,
			TransactionCount: a.TransactionCount,
		}
	}
	return result
}

// PricePointResponse represents one historical price observation.
type PricePointResponse struct {
	CoinID    string          `json:"coin_id"`
	Price     decimal.Decimal `json:"price"`
	MarketCap decimal.Decimal `json:"market_cap"`
	CreatedAt time.Time       `json:"created_at"`
}

// PricePointsFromDomain converts price points to responses.
func PricePointsFromDomain(points []*domain.PricePoint) []*PricePointResponse {
	result := make([]*PricePointResponse, len(points))
	for i, p := range points {
		result[i] = &PricePointResponse{
			CoinID:    p.CoinID,
			Price:     p.Price,
			MarketCap: p.MarketCap,
			CreatedAt: p.CreatedAt,
		}
	}
	return result
}

// SearchHistoryResponse represents one recorded search.
type SearchHistoryResponse struct {
	ID         string    `json:"id"`
	Query      string    `json:"query"`
	SearchedAt time.Time `json:"searched_at"`
}

// SearchHistoryFromDomain converts search history to responses.
func SearchHistoryFromDomain(items []*domain.SearchHistoryItem) []*SearchHistoryResponse {
	result := make([]*SearchHistoryResponse, len(items))
	for i, item := range items {
		result[i] = &SearchHistoryResponse{
			ID:         item.ID,
			Query:      item.Query,
			SearchedAt: item.SearchedAt,
		}
	}
	return result
}

// FavoriteResponse represents one favorite coin.
type FavoriteResponse struct {
	ID      string    `json:"id"`
	CoinID  string    `json:"coin_id"`
	Symbol  string    `json:"symbol,omitempty"`
	Name    string    `json:"name,omitempty"`
	AddedAt time.Time `json:"added_at"`
}

// FavoritesFromDomain converts favorites to responses.
func FavoritesFromDomain(favorites []*domain.FavoriteCoin) []*FavoriteResponse {
	result := make([]*FavoriteResponse, len(favorites))
	for i, f := range favorites {
		result[i] = &FavoriteResponse{
			ID:      f.ID,
			CoinID:  f.CoinID,
			Symbol:  f.Symbol,
			Name:    f.Name,
			AddedAt: f.AddedAt,
		}
	}
	return result
}

// DeletedResponse reports how many rows an operation removed.
type DeletedResponse struct {
	Deleted int64 `json:"deleted"`
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
