package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account represents a registered user and its fiat balance.
type Account struct {
	ID           string
	Email        string
	Username     string
	PasswordHash string
	Balance      decimal.Decimal
	ProfileImage string
	Bio          string
	Phone        string
	CreatedAt    time.Time
	LastLogin    time.Time
	Active       bool
}

// ValidateDebit checks if the balance can be reduced by amount.
func (a *Account) ValidateDebit(amount decimal.Decimal) error {
	if a.Balance.Sub(amount).IsNegative() {
		return ErrInsufficientBalance
	}
	return nil
}

// ApplyDebit returns the balance after a debit.
func (a *Account) ApplyDebit(amount decimal.Decimal) decimal.Decimal {
	return a.Balance.Sub(amount)
}

// ApplyCredit returns the balance after a credit.
func (a *Account) ApplyCredit(amount decimal.Decimal) decimal.Decimal {
	return a.Balance.Add(amount)
}
