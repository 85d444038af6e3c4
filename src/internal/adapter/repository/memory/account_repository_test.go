package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerworks/funds-transfer-service/src/internal/adapter/repository/repo_interfaces"
	"github.com/ledgerworks/funds-transfer-service/src/internal/domain"
)

func newRepoWithAccount(t *testing.T, id int64, currency string, balance string) *AccountRepository {
	t.Helper()

	repo := NewAccountRepository()
	_, err := repo.Create(context.Background(), domain.Account{
		ID:       id,
		Currency: currency,
		Balance:  decimal.RequireFromString(balance),
	})
	require.NoError(t, err)
	return repo
}

func TestCreate_RejectsDuplicateID(t *testing.T) {
	repo := newRepoWithAccount(t, 1, "EUR", "0")

	_, err := repo.Create(context.Background(), domain.Account{ID: 1, Currency: "EUR"})
	assert.ErrorIs(t, err, domain.ErrDuplicateAccount)
}

func TestGetByID_NotFound(t *testing.T) {
	repo := NewAccountRepository()

	_, err := repo.GetByID(context.Background(), 404)
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestTransact_VersionAdvancesTwicePerCommittedWrite(t *testing.T) {
	repo := newRepoWithAccount(t, 1, "EUR", "10")
	ctx := context.Background()

	err := repo.Transact(ctx, func(tx repo_interfaces.AccountTx) error {
		account, err := tx.GetForUpdate(ctx, 1)
		if err != nil {
			return err
		}
		account.Balance = account.Balance.Add(decimal.NewFromInt(5))
		_, err = tx.Save(ctx, account)
		return err
	})
	require.NoError(t, err)

	account, err := repo.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.True(t, account.Balance.Equal(decimal.NewFromInt(15)))
	assert.Equal(t, int64(2), account.Version)
}

func TestTransact_RollbackDiscardsStagedWrites(t *testing.T) {
	repo := newRepoWithAccount(t, 1, "EUR", "10")
	ctx := context.Background()

	boom := errors.New("boom")
	err := repo.Transact(ctx, func(tx repo_interfaces.AccountTx) error {
		account, err := tx.GetForUpdate(ctx, 1)
		if err != nil {
			return err
		}
		account.Balance = decimal.NewFromInt(999)
		if _, err := tx.Save(ctx, account); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	account, err := repo.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.True(t, account.Balance.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, int64(0), account.Version)
}

func TestGetForUpdate_ContendedRowReportsConflict(t *testing.T) {
	repo := newRepoWithAccount(t, 1, "EUR", "10")
	repo.lockWait = 50 * time.Millisecond
	ctx := context.Background()

	holding := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = repo.Transact(ctx, func(tx repo_interfaces.AccountTx) error {
			if _, err := tx.GetForUpdate(ctx, 1); err != nil {
				return err
			}
			close(holding)
			time.Sleep(200 * time.Millisecond)
			return nil
		})
	}()

	<-holding
	err := repo.Transact(ctx, func(tx repo_interfaces.AccountTx) error {
		_, err := tx.GetForUpdate(ctx, 1)
		return err
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
	<-done
}

func TestSave_RequiresLockedRow(t *testing.T) {
	repo := newRepoWithAccount(t, 1, "EUR", "10")
	ctx := context.Background()

	err := repo.Transact(ctx, func(tx repo_interfaces.AccountTx) error {
		_, err := tx.Save(ctx, domain.Account{ID: 1, Balance: decimal.NewFromInt(1)})
		return err
	})
	assert.Error(t, err)
}
