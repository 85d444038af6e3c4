package implementations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/ledgerworks/funds-transfer-service/src/internal/adapter/repository/repo_interfaces"
	"github.com/ledgerworks/funds-transfer-service/src/internal/domain"
	"github.com/ledgerworks/funds-transfer-service/src/internal/logger"
)

// Verify that AccountRepository implements the store contract
var _ repo_interfaces.AccountStore = (*AccountRepository)(nil)

type AccountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) Create(ctx context.Context, account domain.Account) (domain.Account, error) {
	const query = `
INSERT INTO accounts (id, currency, balance, version)
VALUES ($1, $2, $3, 0)
RETURNING version, created_at, updated_at`

	var (
		version   int64
		createdAt time.Time
		updatedAt time.Time
	)

	if err := r.db.QueryRowContext(
		ctx,
		query,
		account.ID,
		account.Currency,
		account.Balance.String(),
	).Scan(&version, &createdAt, &updatedAt); err != nil {
		if isUniqueViolation(err) {
			return domain.Account{}, fmt.Errorf("create account %d: %w", account.ID, domain.ErrDuplicateAccount)
		}
		logger.Error("account repository create failed", err, logger.Fields{
			"accountId": account.ID,
		})
		return domain.Account{}, fmt.Errorf("create account: %w", err)
	}

	account.Version = version
	account.CreatedAt = createdAt
	account.UpdatedAt = updatedAt

	return account, nil
}

func (r *AccountRepository) GetByID(ctx context.Context, id int64) (domain.Account, error) {
	const query = `
SELECT id, currency, balance, version, created_at, updated_at
FROM accounts
WHERE id = $1`

	account, err := scanAccount(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Account{}, domain.ErrAccountNotFound
		}
		return domain.Account{}, fmt.Errorf("get account: %w", err)
	}

	return account, nil
}

func (r *AccountRepository) Exists(ctx context.Context, id int64) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM accounts WHERE id = $1)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("check account existence: %w", err)
	}

	return exists, nil
}

func (r *AccountRepository) Transact(ctx context.Context, fn func(tx repo_interfaces.AccountTx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("account repository begin tx failed", err, nil)
		return fmt.Errorf("begin account transaction: %w", err)
	}

	if err := fn(&accountTx{tx: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		if isLockRace(err) {
			return fmt.Errorf("commit account transaction: %w: %v", domain.ErrConflict, err)
		}
		return fmt.Errorf("commit account transaction: %w", err)
	}

	return nil
}

type accountTx struct {
	tx *sql.Tx
}

func (t *accountTx) GetForUpdate(ctx context.Context, id int64) (domain.Account, error) {
	// The UPDATE both takes the exclusive row lock for this transaction and
	// forces the version token forward, so a reader that merely contended
	// for the row is indistinguishable from one that lost a write race.
	const query = `
UPDATE accounts
SET version = version + 1
WHERE id = $1
RETURNING id, currency, balance, version, created_at, updated_at`

	account, err := scanAccount(t.tx.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Account{}, domain.ErrAccountNotFound
		}
		if isLockRace(err) {
			return domain.Account{}, fmt.Errorf("lock account %d: %w: %v", id, domain.ErrConflict, err)
		}
		return domain.Account{}, fmt.Errorf("lock account %d: %w", id, err)
	}

	return account, nil
}

func (t *accountTx) Save(ctx context.Context, account domain.Account) (domain.Account, error) {
	const query = `
UPDATE accounts
SET balance = $2,
    version = version + 1,
    updated_at = NOW()
WHERE id = $1
  AND version = $3
RETURNING version, created_at, updated_at`

	var (
		version   int64
		createdAt time.Time
		updatedAt time.Time
	)

	err := t.tx.QueryRowContext(
		ctx,
		query,
		account.ID,
		account.Balance.String(),
		account.Version,
	).Scan(&version, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Account{}, fmt.Errorf("save account %d: version %d no longer current: %w",
				account.ID, account.Version, domain.ErrConflict)
		}
		if isLockRace(err) {
			return domain.Account{}, fmt.Errorf("save account %d: %w: %v", account.ID, domain.ErrConflict, err)
		}
		return domain.Account{}, fmt.Errorf("save account %d: %w", account.ID, err)
	}

	account.Version = version
	account.CreatedAt = createdAt
	account.UpdatedAt = updatedAt

	return account, nil
}

func scanAccount(row *sql.Row) (domain.Account, error) {
	var (
		account domain.Account
		balance string
	)

	if err := row.Scan(
		&account.ID,
		&account.Currency,
		&balance,
		&account.Version,
		&account.CreatedAt,
		&account.UpdatedAt,
	); err != nil {
		return domain.Account{}, err
	}

	parsed, err := decimal.NewFromString(balance)
	if err != nil {
		return domain.Account{}, fmt.Errorf("parse stored balance %q: %w", balance, err)
	}
	account.Balance = parsed

	return account, nil
}

// isLockRace classifies the postgres error classes that mean "a concurrent
// writer got in the way": serialization failure, deadlock detected, and
// lock not available.
func isLockRace(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case "40001", "40P01", "55P03":
			return true
		}
	}
	return false
}

// isUniqueViolation reports whether err is a postgres unique-constraint
// violation, meaning an insert lost the race for its key.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == "23505"
	}
	return false
}
