package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/olegbp/cryptofolio/internal/domain"
)

const quoteColumns = `coin_id, symbol, name, image_url, current_price, market_cap, market_cap_rank,
	price_change_24h, price_change_percentage_24h, circulating_supply, total_supply, max_supply, cached_at`

const (
	queryUpsertQuote = `INSERT INTO coin_cache (` + quoteColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (coin_id) DO UPDATE SET
			symbol = EXCLUDED.symbol,
			name = EXCLUDED.name,
			image_url = EXCLUDED.image_url,
			current_price = EXCLUDED.current_price,
			market_cap = EXCLUDED.market_cap,
			market_cap_rank = EXCLUDED.market_cap_rank,
			price_change_24h = EXCLUDED.price_change_24h,
			price_change_percentage_24h = EXCLUDED.price_change_percentage_24h,
			circulating_supply = EXCLUDED.circulating_supply,
			total_supply = EXCLUDED.total_supply,
			max_supply = EXCLUDED.max_supply,
			cached_at = EXCLUDED.cached_at`

	queryAppendPricePoint = `INSERT INTO coin_price_history (coin_id, price, market_cap, created_at)
		VALUES ($1, $2, $3, $4)`

	queryGetQuote = `SELECT ` + quoteColumns + ` FROM coin_cache WHERE coin_id = $1`

	queryGetQuotes = `SELECT ` + quoteColumns + ` FROM coin_cache WHERE coin_id = ANY($1)`

	querySearchQuotes = `SELECT ` + quoteColumns + ` FROM coin_cache
		WHERE name ILIKE '%' || $1 || '%' OR symbol ILIKE '%' || $1 || '%'
		ORDER BY market_cap_rank ASC
		LIMIT $2`

	queryTopByMarketCap = `SELECT ` + quoteColumns + ` FROM coin_cache
		ORDER BY market_cap DESC
		LIMIT $1`

	queryTopGainers = `SELECT ` + quoteColumns + ` FROM coin_cache
		WHERE price_change_percentage_24h > 0
		ORDER BY price_change_percentage_24h DESC
		LIMIT $1`

	queryTopLosers = `SELECT ` + quoteColumns + ` FROM coin_cache
		WHERE price_change_percentage_24h < 0
		ORDER BY price_change_percentage_24h ASC
		LIMIT $1`

	queryQuotesOlderThan = `SELECT ` + quoteColumns + ` FROM coin_cache WHERE cached_at < $1`

	queryDeleteHistoryForStale = `DELETE FROM coin_price_history WHERE coin_id IN (
			SELECT coin_id FROM coin_cache WHERE cached_at < $1)`

	queryDeleteQuotesOlderThan = `DELETE FROM coin_cache WHERE cached_at < $1`

	queryPriceHistory = `SELECT coin_id, price, market_cap, created_at FROM coin_price_history
		WHERE coin_id = $1 AND created_at >= $2
		ORDER BY created_at ASC`
)

// quotePool is the pool surface the repository needs.
type quotePool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// QuoteRepository implements usecase.QuoteRepository over the coin_cache
// and coin_price_history tables.
type QuoteRepository struct {
	pool quotePool
}

// NewQuoteRepository creates a new QuoteRepository.
func NewQuoteRepository(pool *pgxpool.Pool) *QuoteRepository {
	return newQuoteRepositoryWithPool(pool)
}

func newQuoteRepositoryWithPool(pool quotePool) *QuoteRepository {
	return &QuoteRepository{pool: pool}
}

// Upsert writes a batch of quotes with a shared cache timestamp and
// appends one history point per quote. The batch is atomic.
func (r *QuoteRepository) Upsert(ctx context.Context, quotes []*domain.CoinQuote, cachedAt time.Time) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, q := range quotes {
		_, err = tx.Exec(ctx, queryUpsertQuote,
			q.CoinID,
			q.Symbol,
			q.Name,
			q.ImageURL,
			decimalToNumeric(q.CurrentPrice),
			decimalToNumeric(q.MarketCap),
			q.MarketCapRank,
			decimalToNumeric(q.PriceChange24h),
			decimalToNumeric(q.PriceChangePercentage24h),
			decimalToNumeric(q.CirculatingSupply),
			decimalToNumeric(q.TotalSupply),
			decimalToNumeric(q.MaxSupply),
			timeToPgTimestamptz(cachedAt),
		)
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx, queryAppendPricePoint,
			q.CoinID,
			decimalToNumeric(q.CurrentPrice),
			decimalToNumeric(q.MarketCap),
			timeToPgTimestamptz(cachedAt),
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// Get returns the cached quote for a coin, or nil on a cache miss.
func (r *QuoteRepository) Get(ctx context.Context, coinID string) (*domain.CoinQuote, error) {
	quote, err := scanQuote(r.pool.QueryRow(ctx, queryGetQuote, coinID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}

		return nil, err
	}

	return quote, nil
}

// GetMany returns the cached quotes for the given coins, keyed by coin ID.
// Missing coins are simply absent from the map.
func (r *QuoteRepository) GetMany(ctx context.Context, coinIDs []string) (map[string]*domain.CoinQuote, error) {
	if len(coinIDs) == 0 {
		return map[string]*domain.CoinQuote{}, nil
	}

	rows, err := r.pool.Query(ctx, queryGetQuotes, coinIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	quotes, err := scanQuotes(rows)
	if err != nil {
		return nil, err
	}

	out := make(map[string]*domain.CoinQuote, len(quotes))
	for _, q := range quotes {
		out[q.CoinID] = q
	}

	return out, nil
}

// Search matches the query against coin names and symbols.
func (r *QuoteRepository) Search(ctx context.Context, query string, limit int) ([]*domain.CoinQuote, error) {
	rows, err := r.pool.Query(ctx, querySearchQuotes, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanQuotes(rows)
}

// TopByMarketCap returns the largest coins by market cap.
func (r *QuoteRepository) TopByMarketCap(ctx context.Context, limit int) ([]*domain.CoinQuote, error) {
	return r.queryList(ctx, queryTopByMarketCap, limit)
}

// TopGainers returns coins with a positive 24h move, biggest first.
func (r *QuoteRepository) TopGainers(ctx context.Context, limit int) ([]*domain.CoinQuote, error) {
	return r.queryList(ctx, queryTopGainers, limit)
}

// TopLosers returns coins with a negative 24h move, biggest drop first.
func (r *QuoteRepository) TopLosers(ctx context.Context, limit int) ([]*domain.CoinQuote, error) {
	return r.queryList(ctx, queryTopLosers, limit)
}

// OlderThan returns quotes cached before the cutoff.
func (r *QuoteRepository) OlderThan(ctx context.Context, cutoff time.Time) ([]*domain.CoinQuote, error) {
	rows, err := r.pool.Query(ctx, queryQuotesOlderThan, timeToPgTimestamptz(cutoff))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanQuotes(rows)
}

// DeleteOlderThan removes quotes cached before the cutoff and reports
// how many rows went away. Price history for the evicted coins is
// pruned in the same transaction, so an eviction never leaves orphaned
// history rows behind.
func (r *QuoteRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, queryDeleteHistoryForStale, timeToPgTimestamptz(cutoff)); err != nil {
		return 0, err
	}

	tag, err := tx.Exec(ctx, queryDeleteQuotesOlderThan, timeToPgTimestamptz(cutoff))
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}

// PriceHistory returns recorded price points for a coin since the given time.
func (r *QuoteRepository) PriceHistory(ctx context.Context, coinID string, since time.Time) ([]*domain.PricePoint, error) {
	rows, err := r.pool.Query(ctx, queryPriceHistory, coinID, timeToPgTimestamptz(since))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []*domain.PricePoint
	for rows.Next() {
		var (
			point     domain.PricePoint
			price     pgtype.Numeric
			marketCap pgtype.Numeric
			createdAt pgtype.Timestamptz
		)

		if err := rows.Scan(&point.CoinID, &price, &marketCap, &createdAt); err != nil {
			return nil, err
		}

		point.Price = numericToDecimal(price)
		point.MarketCap = numericToDecimal(marketCap)
		point.CreatedAt = createdAt.Time

		points = append(points, &point)
	}

	return points, rows.Err()
}

func (r *QuoteRepository) queryList(ctx context.Context, query string, limit int) ([]*domain.CoinQuote, error) {
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanQuotes(rows)
}

func scanQuote(row pgx.Row) (*domain.CoinQuote, error) {
	var (
		quote             domain.CoinQuote
		currentPrice      pgtype.Numeric
		marketCap         pgtype.Numeric
		priceChange       pgtype.Numeric
		priceChangePct    pgtype.Numeric
		circulatingSupply pgtype.Numeric
		totalSupply       pgtype.Numeric
		maxSupply         pgtype.Numeric
		cachedAt          pgtype.Timestamptz
	)

	err := row.Scan(
		&quote.CoinID,
		&quote.Symbol,
		&quote.Name,
		&quote.ImageURL,
		&currentPrice,
		&marketCap,
		&quote.MarketCapRank,
		&priceChange,
		&priceChangePct,
		&circulatingSupply,
		&totalSupply,
		&maxSupply,
		&cachedAt,
	)
	if err != nil {
		return nil, err
	}

	quote.CurrentPrice = numericToDecimal(currentPrice)
	quote.MarketCap = numericToDecimal(marketCap)
	quote.PriceChange24h = numericToDecimal(priceChange)
	quote.PriceChangePercentage24h = numericToDecimal(priceChangePct)
	quote.CirculatingSupply = numericToDecimal(circulatingSupply)
	quote.TotalSupply = numericToDecimal(totalSupply)
	quote.MaxSupply = numericToDecimal(maxSupply)
	quote.CachedAt = cachedAt.Time

	return &quote, nil
}

func scanQuotes(rows pgx.Rows) ([]*domain.CoinQuote, error) {
	var quotes []*domain.CoinQuote

	for rows.Next() {
		quote, err := scanQuote(rows)
		if err != nil {
			return nil, err
		}

		quotes = append(quotes, quote)
	}

	return quotes, rows.Err()
}
