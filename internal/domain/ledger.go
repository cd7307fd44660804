package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryType classifies a ledger entry.
type EntryType string

const (
	EntryBuy      EntryType = "BUY"
	EntrySell     EntryType = "SELL"
	EntryDeposit  EntryType = "DEPOSIT"
	EntryWithdraw EntryType = "WITHDRAW"
)

var validEntryTypes = map[EntryType]bool{
	EntryBuy:      true,
	EntrySell:     true,
	EntryDeposit:  true,
	EntryWithdraw: true,
}

// IsValid checks if the entry type is known.
func (t EntryType) IsValid() bool {
	return validEntryTypes[t]
}

// IsTrade reports whether the entry moves coins rather than only fiat.
func (t EntryType) IsTrade() bool {
	return t == EntryBuy || t == EntrySell
}

// LedgerEntry is one immutable record of a balance-affecting event.
// Quantities are unsigned; the type carries the direction.
type LedgerEntry struct {
	ID           string
	AccountID    string
	Type         EntryType
	CoinID       string
	Quantity     decimal.Decimal
	PricePerUnit decimal.Decimal
	FiatAmount   decimal.Decimal
	CreatedAt    time.Time
}

// Validate checks internal consistency of the entry before it is written.
// For trades the fiat amount must equal quantity times price.
func (e *LedgerEntry) Validate() error {
	if !e.Type.IsValid() {
		return ErrInvalidEntryType
	}
	if e.FiatAmount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}
	if e.Type.IsTrade() {
		if e.CoinID == "" {
			return ErrMissingCoinID
		}
		if e.Quantity.LessThanOrEqual(decimal.Zero) {
			return ErrInvalidQuantity
		}
		if e.PricePerUnit.LessThanOrEqual(decimal.Zero) {
			return ErrInvalidPrice
		}
		if !e.FiatAmount.Equal(e.Quantity.Mul(e.PricePerUnit)) {
			return ErrFiatAmountMismatch
		}
	}
	return nil
}
