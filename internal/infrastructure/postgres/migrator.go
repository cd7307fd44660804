package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// The schema evolved in place on live installs, so upgrades must work
// from any older version. Steps are applied in order inside a single
// transaction; a failure in any step leaves the database at the version
// it was before Migrate was called.

// CurrentVersion is the schema version this build expects.
const CurrentVersion = 4

// Step is one schema version upgrade.
type Step struct {
	Version int
	Name    string
	Ops     []Op
}

// Op is a single schema change within a step.
type Op interface {
	apply(ctx context.Context, tx dbtx) error
}

type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (commandTag, error)
}

// commandTag narrows pgconn.CommandTag to what the migrator needs.
type commandTag = interface{ RowsAffected() int64 }

// execOp runs a raw statement.
type execOp struct {
	sql string
}

func (o execOp) apply(ctx context.Context, tx dbtx) error {
	_, err := tx.Exec(ctx, o.sql)
	return err
}

// addColumnOp adds a column only if it is not already present, so a step
// can be replayed against databases that picked the column up out of band.
type addColumnOp struct {
	table      string
	column     string
	definition string
}

func (o addColumnOp) apply(ctx context.Context, tx dbtx) error {
	_, err := tx.Exec(ctx, fmt.Sprintf(
		"ALTER TABLE %s ADD COLUMN IF NOT EXISTS %s %s",
		o.table, o.column, o.definition,
	))
	return err
}

// Exec creates an op running one raw statement.
func Exec(sql string) Op {
	return execOp{sql: sql}
}

// AddColumn creates an op adding a column if missing.
func AddColumn(table, column, definition string) Op {
	return addColumnOp{table: table, column: column, definition: definition}
}

// migrations holds every schema step, oldest first. Versions must be
// contiguous and start at 1.
var migrations = []Step{
	{
		Version: 1,
		Name:    "initial schema",
		Ops: []Op{
			Exec(`CREATE TABLE IF NOT EXISTS accounts (
				id TEXT PRIMARY KEY,
				email TEXT NOT NULL UNIQUE,
				username TEXT NOT NULL,
				password_hash TEXT NOT NULL,
				balance NUMERIC NOT NULL DEFAULT 0,
				created_at TIMESTAMPTZ NOT NULL,
				last_login TIMESTAMPTZ NOT NULL,
				active BOOLEAN NOT NULL DEFAULT TRUE
			)`),
			Exec(`CREATE TABLE IF NOT EXISTS ledger_entries (
				id TEXT PRIMARY KEY,
				account_id TEXT NOT NULL REFERENCES accounts(id),
				entry_type TEXT NOT NULL CHECK (entry_type IN ('BUY', 'SELL', 'DEPOSIT', 'WITHDRAW')),
				coin_id TEXT,
				quantity NUMERIC NOT NULL DEFAULT 0,
				price_per_unit NUMERIC NOT NULL DEFAULT 0,
				fiat_amount NUMERIC NOT NULL,
				created_at TIMESTAMPTZ NOT NULL
			)`),
			Exec(`CREATE INDEX IF NOT EXISTS idx_ledger_entries_account
				ON ledger_entries (account_id, created_at)`),
			Exec(`CREATE INDEX IF NOT EXISTS idx_ledger_entries_account_coin
				ON ledger_entries (account_id, coin_id)`),
			Exec(`CREATE TABLE IF NOT EXISTS coin_cache (
				coin_id TEXT PRIMARY KEY,
				symbol TEXT NOT NULL,
				name TEXT NOT NULL,
				image_url TEXT NOT NULL DEFAULT '',
				current_price NUMERIC NOT NULL DEFAULT 0,
				market_cap NUMERIC NOT NULL DEFAULT 0,
				market_cap_rank BIGINT NOT NULL DEFAULT 0,
				price_change_24h NUMERIC NOT NULL DEFAULT 0,
				price_change_percentage_24h NUMERIC NOT NULL DEFAULT 0,
				circulating_supply NUMERIC NOT NULL DEFAULT 0,
				total_supply NUMERIC NOT NULL DEFAULT 0,
				max_supply NUMERIC NOT NULL DEFAULT 0,
				cached_at TIMESTAMPTZ NOT NULL
			)`),
			Exec(`CREATE INDEX IF NOT EXISTS idx_coin_cache_cached_at
				ON coin_cache (cached_at)`),
		},
	},
	{
		Version: 2,
		Name:    "price history and search history",
		Ops: []Op{
			Exec(`CREATE TABLE IF NOT EXISTS coin_price_history (
				id BIGSERIAL PRIMARY KEY,
				coin_id TEXT NOT NULL,
				price NUMERIC NOT NULL,
				market_cap NUMERIC NOT NULL DEFAULT 0,
				created_at TIMESTAMPTZ NOT NULL
			)`),
			Exec(`CREATE INDEX IF NOT EXISTS idx_coin_price_history_coin
				ON coin_price_history (coin_id, created_at)`),
			Exec(`CREATE TABLE IF NOT EXISTS search_history (
				id TEXT PRIMARY KEY,
				account_id TEXT NOT NULL REFERENCES accounts(id),
				query TEXT NOT NULL,
				searched_at TIMESTAMPTZ NOT NULL
			)`),
			Exec(`CREATE INDEX IF NOT EXISTS idx_search_history_account
				ON search_history (account_id, searched_at)`),
		},
	},
	{
		Version: 3,
		Name:    "favorite coins",
		Ops: []Op{
			Exec(`CREATE TABLE IF NOT EXISTS favorite_coins (
				id TEXT PRIMARY KEY,
				account_id TEXT NOT NULL REFERENCES accounts(id),
				coin_id TEXT NOT NULL,
				symbol TEXT NOT NULL DEFAULT '',
				name TEXT NOT NULL DEFAULT '',
				added_at TIMESTAMPTZ NOT NULL,
				UNIQUE (account_id, coin_id)
			)`),
		},
	},
	{
		Version: 4,
		Name:    "account profile fields",
		Ops: []Op{
			AddColumn("accounts", "profile_image", "TEXT NOT NULL DEFAULT ''"),
			AddColumn("accounts", "bio", "TEXT NOT NULL DEFAULT ''"),
			AddColumn("accounts", "phone", "TEXT NOT NULL DEFAULT ''"),
		},
	},
}

const (
	queryEnsureVersionTable = `CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER NOT NULL
	)`

	queryReadVersion = `SELECT version FROM schema_version LIMIT 1`

	queryInsertVersion = `INSERT INTO schema_version (version) VALUES ($1)`

	queryUpdateVersion = `UPDATE schema_version SET version = $1`
)

type beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Migrator applies pending schema steps.
type Migrator struct {
	pool   beginner
	logger zerolog.Logger
	steps  []Step
}

// NewMigrator creates a migrator for the built-in schema steps.
func NewMigrator(pool beginner, logger zerolog.Logger) *Migrator {
	return &Migrator{
		pool:   pool,
		logger: logger,
		steps:  migrations,
	}
}

// Migrate brings the schema to CurrentVersion. All pending steps run in
// one transaction.
func (m *Migrator) Migrate(ctx context.Context) error {
	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin migration transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, queryEnsureVersionTable); err != nil {
		return fmt.Errorf("failed to ensure version table: %w", err)
	}

	current, err := readVersion(ctx, tx)
	if err != nil {
		return err
	}

	pending := pendingSteps(m.steps, current)
	if len(pending) == 0 {
		m.logger.Info().Int("version", current).Msg("database schema up to date")
		return tx.Commit(ctx)
	}

	for _, step := range pending {
		m.logger.Info().
			Int("version", step.Version).
			Str("name", step.Name).
			Msg("applying schema step")

		for _, op := range step.Ops {
			if err := op.apply(ctx, txAdapter{tx}); err != nil {
				return fmt.Errorf("schema step %d (%s) failed: %w", step.Version, step.Name, err)
			}
		}
	}

	if err := writeVersion(ctx, tx, current, CurrentVersion); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit migration: %w", err)
	}

	m.logger.Info().
		Int("from", current).
		Int("to", CurrentVersion).
		Msg("database schema migrated")

	return nil
}

// txAdapter narrows pgx.Tx to the dbtx the ops need.
type txAdapter struct {
	tx pgx.Tx
}

func (a txAdapter) Exec(ctx context.Context, sql string, args ...any) (commandTag, error) {
	return a.tx.Exec(ctx, sql, args...)
}

func readVersion(ctx context.Context, tx pgx.Tx) (int, error) {
	var version int
	err := tx.QueryRow(ctx, queryReadVersion).Scan(&version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}

		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}

	return version, nil
}

func writeVersion(ctx context.Context, tx pgx.Tx, from, to int) error {
	query := queryUpdateVersion
	if from == 0 {
		query = queryInsertVersion
	}

	if _, err := tx.Exec(ctx, query, to); err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}

	return nil
}

// pendingSteps returns the steps newer than current, in order.
func pendingSteps(steps []Step, current int) []Step {
	var pending []Step
	for _, step := range steps {
		if step.Version > current {
			pending = append(pending, step)
		}
	}

	return pending
}
