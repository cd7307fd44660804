package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/olegbp/cryptofolio/internal/domain"
	"github.com/olegbp/cryptofolio/internal/usecase"
)

const pgErrUniqueViolation = "23505"

const accountColumns = `id, email, username, password_hash, balance, profile_image, bio, phone, created_at, last_login, active`

const (
	queryCreateAccount = `INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	queryGetAccountByID = `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`

	queryGetAccountByEmail = `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1`

	queryGetAccountByIDForUpdate = `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1 FOR UPDATE`

	queryUpdateAccountBalance = `UPDATE accounts SET balance = $2 WHERE id = $1`

	queryUpdateAccountProfile = `UPDATE accounts
		SET username = $2, profile_image = $3, bio = $4, phone = $5
		WHERE id = $1`

	queryTouchLastLogin = `UPDATE accounts SET last_login = $2 WHERE id = $1`
)

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

// Create creates a new account.
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	_, err := r.pool.Exec(ctx, queryCreateAccount,
		account.ID,
		account.Email,
		account.Username,
		account.PasswordHash,
		decimalToNumeric(account.Balance),
		account.ProfileImage,
		account.Bio,
		account.Phone,
		timeToPgTimestamptz(account.CreatedAt),
		timeToPgTimestamptz(account.LastLogin),
		account.Active,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgErrUniqueViolation {
			return domain.ErrEmailTaken
		}

		return err
	}

	return nil
}

// GetByID retrieves an account by ID.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	return r.scanAccount(r.pool.QueryRow(ctx, queryGetAccountByID, id))
}

// GetByEmail retrieves an account by email.
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.scanAccount(r.pool.QueryRow(ctx, queryGetAccountByEmail, email))
}

// GetByIDForUpdate retrieves an account by ID with a FOR UPDATE lock.
func (r *AccountRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Account, error) {
	pgxTx, err := unwrapTx(tx)
	if err != nil {
		return nil, err
	}

	return r.scanAccount(pgxTx.QueryRow(ctx, queryGetAccountByIDForUpdate, id))
}

// UpdateBalance updates the balance of an account inside a transaction.
func (r *AccountRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal) error {
	pgxTx, err := unwrapTx(tx)
	if err != nil {
		return err
	}

	tag, err := pgxTx.Exec(ctx, queryUpdateAccountBalance, id, decimalToNumeric(balance))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}

	return nil
}

// UpdateProfile updates the mutable profile fields of an account.
func (r *AccountRepository) UpdateProfile(ctx context.Context, account *domain.Account) error {
	tag, err := r.pool.Exec(ctx, queryUpdateAccountProfile,
		account.ID,
		account.Username,
		account.ProfileImage,
		account.Bio,
		account.Phone,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}

	return nil
}

// TouchLastLogin stamps the last successful login time.
func (r *AccountRepository) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	_, err := r.pool.Exec(ctx, queryTouchLastLogin, id, timeToPgTimestamptz(at))

	return err
}

func (r *AccountRepository) scanAccount(row pgx.Row) (*domain.Account, error) {
	var (
		account   domain.Account
		balance   pgtype.Numeric
		createdAt pgtype.Timestamptz
		lastLogin pgtype.Timestamptz
	)

	err := row.Scan(
		&account.ID,
		&account.Email,
		&account.Username,
		&account.PasswordHash,
		&balance,
		&account.ProfileImage,
		&account.Bio,
		&account.Phone,
		&createdAt,
		&lastLogin,
		&account.Active,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}

		return nil, err
	}

	account.Balance = numericToDecimal(balance)
	account.CreatedAt = createdAt.Time
	account.LastLogin = lastLogin.Time

	return &account, nil
}
