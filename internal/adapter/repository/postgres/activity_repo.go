package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/olegbp/cryptofolio/internal/domain"
)

const (
	queryAddSearch = `INSERT INTO search_history (id, account_id, query, searched_at)
		VALUES ($1, $2, $3, $4)`

	queryRecentSearches = `SELECT id, account_id, query, searched_at FROM search_history
		WHERE account_id = $1
		ORDER BY searched_at DESC
		LIMIT $2`

	queryClearSearches = `DELETE FROM search_history WHERE account_id = $1`

	queryDeleteSearchesOlderThan = `DELETE FROM search_history WHERE searched_at < $1`

	queryAddFavorite = `INSERT INTO favorite_coins (id, account_id, coin_id, symbol, name, added_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	queryRemoveFavorite = `DELETE FROM favorite_coins WHERE account_id = $1 AND coin_id = $2`

	queryIsFavorite = `SELECT EXISTS (
		SELECT 1 FROM favorite_coins WHERE account_id = $1 AND coin_id = $2
	)`

	queryListFavorites = `SELECT id, account_id, coin_id, symbol, name, added_at FROM favorite_coins
		WHERE account_id = $1
		ORDER BY added_at DESC`
)

// ActivityRepository implements usecase.ActivityRepository over the
// search_history and favorite_coins tables.
type ActivityRepository struct {
	pool *pgxpool.Pool
}

// NewActivityRepository creates a new ActivityRepository.
func NewActivityRepository(pool *pgxpool.Pool) *ActivityRepository {
	return &ActivityRepository{pool: pool}
}

// AddSearch records one search query.
func (r *ActivityRepository) AddSearch(ctx context.Context, item *domain.SearchHistoryItem) error {
	_, err := r.pool.Exec(ctx, queryAddSearch,
		item.ID,
		item.AccountID,
		item.Query,
		timeToPgTimestamptz(item.SearchedAt),
	)

	return err
}

// RecentSearches returns the newest searches for an account.
func (r *ActivityRepository) RecentSearches(ctx context.Context, accountID string, limit int) ([]*domain.SearchHistoryItem, error) {
	rows, err := r.pool.Query(ctx, queryRecentSearches, accountID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*domain.SearchHistoryItem
	for rows.Next() {
		var (
			item       domain.SearchHistoryItem
			searchedAt pgtype.Timestamptz
		)

		if err := rows.Scan(&item.ID, &item.AccountID, &item.Query, &searchedAt); err != nil {
			return nil, err
		}

		item.SearchedAt = searchedAt.Time

		items = append(items, &item)
	}

	return items, rows.Err()
}

// ClearSearches removes all search history for an account.
func (r *ActivityRepository) ClearSearches(ctx context.Context, accountID string) (int64, error) {
	tag, err := r.pool.Exec(ctx, queryClearSearches, accountID)
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}

// DeleteSearchesOlderThan prunes stale history across all accounts.
func (r *ActivityRepository) DeleteSearchesOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, queryDeleteSearchesOlderThan, timeToPgTimestamptz(cutoff))
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}

// AddFavorite marks a coin as a favorite. Adding a coin twice is not an
// error.
func (r *ActivityRepository) AddFavorite(ctx context.Context, fav *domain.FavoriteCoin) error {
	_, err := r.pool.Exec(ctx, queryAddFavorite,
		fav.ID,
		fav.AccountID,
		fav.CoinID,
		fav.Symbol,
		fav.Name,
		timeToPgTimestamptz(fav.AddedAt),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgErrUniqueViolation {
			return nil
		}

		return err
	}

	return nil
}

// RemoveFavorite unmarks a coin.
func (r *ActivityRepository) RemoveFavorite(ctx context.Context, accountID, coinID string) error {
	_, err := r.pool.Exec(ctx, queryRemoveFavorite, accountID, coinID)

	return err
}

// IsFavorite reports whether the account favorited the coin.
func (r *ActivityRepository) IsFavorite(ctx context.Context, accountID, coinID string) (bool, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, queryIsFavorite, accountID, coinID).Scan(&exists); err != nil {
		return false, err
	}

	return exists, nil
}

// ListFavorites returns all favorites for an account, newest first.
func (r *ActivityRepository) ListFavorites(ctx context.Context, accountID string) ([]*domain.FavoriteCoin, error) {
	rows, err := r.pool.Query(ctx, queryListFavorites, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var favorites []*domain.FavoriteCoin
	for rows.Next() {
		var (
			fav     domain.FavoriteCoin
			addedAt pgtype.Timestamptz
		)

		if err := rows.Scan(&fav.ID, &fav.AccountID, &fav.CoinID, &fav.Symbol, &fav.Name, &addedAt); err != nil {
			return nil, err
		}

		fav.AddedAt = addedAt.Time

		favorites = append(favorites, &fav)
	}

	return favorites, rows.Err()
}
