package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/olegbp/cryptofolio/internal/domain"
	"github.com/olegbp/cryptofolio/internal/usecase"
)

const ledgerColumns = `id, account_id, entry_type, coin_id, quantity, price_per_unit, fiat_amount, created_at`

const (
	queryAppendEntry = `INSERT INTO ledger_entries (` + ledgerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	queryListEntriesByAccount = `SELECT ` + ledgerColumns + ` FROM ledger_entries
		WHERE account_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`

	queryTradesByAccount = `SELECT ` + ledgerColumns + ` FROM ledger_entries
		WHERE account_id = $1 AND entry_type IN ('BUY', 'SELL')
		ORDER BY created_at ASC, id ASC`

	queryNetQuantity = `SELECT COALESCE(SUM(
			CASE entry_type WHEN 'BUY' THEN quantity ELSE -quantity END
		), 0)
		FROM ledger_entries
		WHERE account_id = $1 AND coin_id = $2 AND entry_type IN ('BUY', 'SELL')`

	queryCountEntriesByAccount = `SELECT COUNT(*) FROM ledger_entries WHERE account_id = $1`
)

// LedgerRepository implements usecase.LedgerRepository. Rows are
// append-only; there is no update or delete path.
type LedgerRepository struct {
	pool *pgxpool.Pool
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{pool: pool}
}

// Append writes one entry inside a transaction.
func (r *LedgerRepository) Append(ctx context.Context, tx usecase.Transaction, entry *domain.LedgerEntry) error {
	pgxTx, err := unwrapTx(tx)
	if err != nil {
		return err
	}

	_, err = pgxTx.Exec(ctx, queryAppendEntry,
		entry.ID,
		entry.AccountID,
		string(entry.Type),
		textOrNull(entry.CoinID),
		decimalToNumeric(entry.Quantity),
		decimalToNumeric(entry.PricePerUnit),
		decimalToNumeric(entry.FiatAmount),
		timeToPgTimestamptz(entry.CreatedAt),
	)

	return err
}

// ListByAccount returns entries for an account, newest first.
func (r *LedgerRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.LedgerEntry, error) {
	rows, err := r.pool.Query(ctx, queryListEntriesByAccount, accountID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEntries(rows)
}

// TradesByAccount returns all BUY and SELL entries, oldest first, so the
// aggregator sees prices in the order they were observed.
func (r *LedgerRepository) TradesByAccount(ctx context.Context, accountID string) ([]*domain.LedgerEntry, error) {
	rows, err := r.pool.Query(ctx, queryTradesByAccount, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEntries(rows)
}

// NetQuantity sums BUY minus SELL quantities for one coin inside the
// caller's transaction.
func (r *LedgerRepository) NetQuantity(ctx context.Context, tx usecase.Transaction, accountID, coinID string) (decimal.Decimal, error) {
	pgxTx, err := unwrapTx(tx)
	if err != nil {
		return decimal.Zero, err
	}

	var total pgtype.Numeric
	if err := pgxTx.QueryRow(ctx, queryNetQuantity, accountID, coinID).Scan(&total); err != nil {
		return decimal.Zero, err
	}

	return numericToDecimal(total), nil
}

// CountByAccount returns the total number of entries for an account.
func (r *LedgerRepository) CountByAccount(ctx context.Context, accountID string) (int64, error) {
	var count int64
	if err := r.pool.QueryRow(ctx, queryCountEntriesByAccount, accountID).Scan(&count); err != nil {
		return 0, err
	}

	return count, nil
}

func scanEntries(rows pgx.Rows) ([]*domain.LedgerEntry, error) {
	var entries []*domain.LedgerEntry

	for rows.Next() {
		var (
			entry        domain.LedgerEntry
			entryType    string
			coinID       pgtype.Text
			quantity     pgtype.Numeric
			pricePerUnit pgtype.Numeric
			fiatAmount   pgtype.Numeric
			createdAt    pgtype.Timestamptz
		)

		err := rows.Scan(
			&entry.ID,
			&entry.AccountID,
			&entryType,
			&coinID,
			&quantity,
			&pricePerUnit,
			&fiatAmount,
			&createdAt,
		)
		if err != nil {
			return nil, err
		}

		entry.Type = domain.EntryType(entryType)
		entry.CoinID = textFromPg(coinID)
		entry.Quantity = numericToDecimal(quantity)
		entry.PricePerUnit = numericToDecimal(pricePerUnit)
		entry.FiatAmount = numericToDecimal(fiatAmount)
		entry.CreatedAt = createdAt.Time

		entries = append(entries, &entry)
	}

	return entries, rows.Err()
}
