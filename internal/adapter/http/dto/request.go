package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/olegbp/cryptofolio/internal/domain"
	"github.com/olegbp/cryptofolio/internal/usecase"
)

// RegisterRequest represents a request to register an account.
type RegisterRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// ToUseCaseInput converts to use case input.
func (r *RegisterRequest) ToUseCaseInput() usecase.RegisterInput {
	return usecase.RegisterInput{
		Email:    r.Email,
		Username: r.Username,
		Password: r.Password,
	}
}

// LoginRequest represents a login attempt.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateProfileRequest carries optional profile updates. Absent fields
// stay untouched.
type UpdateProfileRequest struct {
	Username     *string `json:"username,omitempty"`
	ProfileImage *string `json:"profile_image,omitempty"`
	Bio          *string `json:"bio,omitempty"`
	Phone        *string `json:"phone,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *UpdateProfileRequest) ToUseCaseInput(accountID string) usecase.UpdateProfileInput {
	return usecase.UpdateProfileInput{
		ID:           accountID,
		Username:     r.Username,
		ProfileImage: r.ProfileImage,
		Bio:          r.Bio,
		Phone:        r.Phone,
	}
}

// DepositRequest represents a fiat deposit.
type DepositRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// WithdrawRequest represents a fiat withdrawal.
type WithdrawRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// BuyRequest represents a coin purchase. The quantity is derived from
// the fiat amount and price, never supplied.
type BuyRequest struct {
	CoinID       string          `json:"coin_id"`
	FiatAmount   decimal.Decimal `json:"fiat_amount"`
	PricePerUnit decimal.Decimal `json:"price_per_unit"`
}

// SellRequest represents a coin sale.
type SellRequest struct {
	CoinID       string          `json:"coin_id"`
	Quantity     decimal.Decimal `json:"quantity"`
	PricePerUnit decimal.Decimal `json:"price_per_unit"`
}

// QuoteItem is one coin snapshot in a cache refresh.
type QuoteItem struct {
	CoinID                   string          `json:"coin_id"`
	Symbol                   string          `json:"symbol"`
	Name                     string          `json:"name"`
	ImageURL                 string          `json:"image_url"`
	CurrentPrice             decimal.Decimal `json:"current_price"`
	MarketCap                decimal.Decimal `json:"market_cap"`
	MarketCapRank            int64           `json:"market_cap_rank"`
	PriceChange24h           decimal.Decimal `json:"price_change_24h"`
	PriceChangePercentage24h decimal.Decimal `json:"price_change_percentage_24h"`
	CirculatingSupply        decimal.Decimal `json:"circulating_supply"`
	TotalSupply              decimal.Decimal `json:"total_supply"`
	MaxSupply                decimal.Decimal `json:"max_supply"`
}

// RefreshQuotesRequest represents a batch quote refresh.
type RefreshQuotesRequest struct {
	Quotes []QuoteItem `json:"quotes"`
}

// ToDomain converts the batch to domain quotes.
func (r *RefreshQuotesRequest) ToDomain() []*domain.CoinQuote {
	quotes := make([]*domain.CoinQuote, len(r.Quotes))
	for i, q := range r.Quotes {
		quotes[i] = &domain.CoinQuote{
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
		}
	}

	return quotes
}

// AddFavoriteRequest marks a coin as favorite.
type AddFavoriteRequest struct {
	CoinID string `json:"coin_id"`
}

// PriceHistoryRequest filters the history window.
type PriceHistoryRequest struct {
	Since time.Time `json:"since"`
}
