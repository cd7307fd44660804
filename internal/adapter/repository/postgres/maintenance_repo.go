package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Tables wiped by ClearAllData, children before parents. The schema
// version marker survives the wipe.
var clearTables = []string{
	"search_history",
	"favorite_coins",
	"coin_price_history",
	"ledger_entries",
	"coin_cache",
	"accounts",
}

// MaintenanceRepository implements usecase.MaintenanceRepository.
type MaintenanceRepository struct {
	pool *pgxpool.Pool
}

// NewMaintenanceRepository creates a new MaintenanceRepository.
func NewMaintenanceRepository(pool *pgxpool.Pool) *MaintenanceRepository {
	return &MaintenanceRepository{pool: pool}
}

// ClearAllData deletes every row from every application table in a single
// transaction.
func (r *MaintenanceRepository) ClearAllData(ctx context.Context) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, table := range clearTables {
		if _, err := tx.Exec(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}
