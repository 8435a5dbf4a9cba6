package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"papertrade/internal/domain"
)

// DB is the subset of pgx operations the repositories need. Both
// *pgxpool.Pool and pgx.Tx satisfy it, so the same repository code runs
// inside and outside a transaction.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// AccountRepositoryImpl implements the AccountRepository interface
type AccountRepositoryImpl struct {
	db DB
}

// NewAccountRepository creates a new AccountRepository
func NewAccountRepository(db DB) domain.AccountRepository {
	return &AccountRepositoryImpl{db: db}
}

// Create creates a new account
func (r *AccountRepositoryImpl) Create(ctx context.Context, account *domain.Account) error {
	holdings, err := marshalHoldings(account.Holdings)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO accounts (
			id, username, password_hash, balance, invested_capital,
			holdings, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		)
	`

	_, err = r.db.Exec(ctx, query,
		account.ID,
		account.Username,
		account.PasswordHash,
		account.Balance,
		account.InvestedCapital,
		holdings,
		account.CreatedAt,
		account.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}

	return nil
}

// GetByID retrieves an account by ID
func (r *AccountRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	query := `
		SELECT id, username, password_hash, balance, invested_capital,
		       holdings, created_at, updated_at
		FROM accounts
		WHERE id = $1
	`

	return r.scanAccount(r.db.QueryRow(ctx, query, id))
}

// GetByUsername retrieves an account by username
func (r *AccountRepositoryImpl) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	query := `
		SELECT id, username, password_hash, balance, invested_capital,
		       holdings, created_at, updated_at
		FROM accounts
		WHERE username = $1
	`

	return r.scanAccount(r.db.QueryRow(ctx, query, username))
}

// UpdateSnapshot persists the account's balance, invested capital and
// holdings exactly as written on the entity
func (r *AccountRepositoryImpl) UpdateSnapshot(ctx context.Context, account *domain.Account) error {
	holdings, err := marshalHoldings(account.Holdings)
	if err != nil {
		return err
	}

	query := `
		UPDATE accounts
		SET balance = $1,
		    invested_capital = $2,
		    holdings = $3,
		    updated_at = $4
		WHERE id = $5
	`

	tag, err := r.db.Exec(ctx, query,
		account.Balance,
		account.InvestedCapital,
		holdings,
		account.UpdatedAt,
		account.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update account snapshot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}

	return nil
}

// GetAll retrieves all accounts
func (r *AccountRepositoryImpl) GetAll(ctx context.Context) ([]*domain.Account, error) {
	query := `
		SELECT id, username, password_hash, balance, invested_capital,
		       holdings, created_at, updated_at
		FROM accounts
		ORDER BY created_at ASC
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*domain.Account
	for rows.Next() {
		account, err := r.scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}

	return accounts, nil
}

// Delete removes an account; its trade records cascade with it
func (r *AccountRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

func (r *AccountRepositoryImpl) scanAccount(row pgx.Row) (*domain.Account, error) {
	account := &domain.Account{}
	var holdings []byte

	err := row.Scan(
		&account.ID,
		&account.Username,
		&account.PasswordHash,
		&account.Balance,
		&account.InvestedCapital,
		&holdings,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan account: %w", err)
	}

	account.Holdings = make(map[string]decimal.Decimal)
	if len(holdings) > 0 {
		if err := json.Unmarshal(holdings, &account.Holdings); err != nil {
			return nil, fmt.Errorf("failed to decode holdings: %w", err)
		}
	}

	return account, nil
}

func marshalHoldings(holdings map[string]decimal.Decimal) ([]byte, error) {
	if holdings == nil {
		holdings = map[string]decimal.Decimal{}
	}
	data, err := json.Marshal(holdings)
	if err != nil {
		return nil, fmt.Errorf("failed to encode holdings: %w", err)
	}
	return data, nil
}
