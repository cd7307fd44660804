package domain

import "errors"

var (
	// Account errors
	ErrAccountNotFound = errors.New("account not found")
	ErrEmailTaken      = errors.New("account with this email already exists")
	ErrAccountInactive = errors.New("account is inactive")

	// Ledger errors
	ErrInvalidAmount        = errors.New("amount must be positive")
	ErrInvalidPrice         = errors.New("price must be positive")
	ErrInvalidQuantity      = errors.New("quantity must be positive")
	ErrInsufficientBalance  = errors.New("insufficient balance")
	ErrInsufficientHoldings = errors.New("insufficient holdings")
	ErrInvalidEntryType     = errors.New("unknown ledger entry type")
	ErrMissingCoinID        = errors.New("trade entry requires a coin id")
	ErrFiatAmountMismatch   = errors.New("fiat amount does not equal quantity times price")

	// Session errors
	ErrNotAuthenticated   = errors.New("no authenticated account")
	ErrInvalidCredentials = errors.New("invalid email or password")

	// Token errors
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)
