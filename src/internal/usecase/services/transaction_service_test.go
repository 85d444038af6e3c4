package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerworks/funds-transfer-service/src/internal/adapter/events"
	"github.com/ledgerworks/funds-transfer-service/src/internal/adapter/repository/memory"
	"github.com/ledgerworks/funds-transfer-service/src/internal/adapter/repository/repo_interfaces"
	"github.com/ledgerworks/funds-transfer-service/src/internal/domain"
)

func newTestAccount(t *testing.T, store repo_interfaces.AccountStore, id int64, currency, balance string) {
	t.Helper()

	_, err := store.Create(context.Background(), domain.Account{
		ID:       id,
		Currency: currency,
		Balance:  decimal.RequireFromString(balance),
	})
	require.NoError(t, err)
}

func eur(amount string) domain.MonetaryAmount {
	return domain.MonetaryAmount{Amount: decimal.RequireFromString(amount), Currency: "EUR"}
}

func jpy(amount string) domain.MonetaryAmount {
	return domain.MonetaryAmount{Amount: decimal.RequireFromString(amount), Currency: "JPY"}
}

func TestDeposit_ConvertsIntoAccountCurrency(t *testing.T) {
	store := memory.NewAccountRepository()
	newTestAccount(t, store, 1, "CHF", "0")
	service := NewTransactionService(store, newReadyExchangeService(t), nil)

	account, err := service.Deposit(context.Background(), 1, eur("100"))
	require.NoError(t, err)
	assert.Equal(t, "96.00", account.Balance.StringFixed(2))
}

func TestDeposit_SameCurrencyNeedsNoRates(t *testing.T) {
	store := memory.NewAccountRepository()
	newTestAccount(t, store, 1, "EUR", "1.23")
	service := NewTransactionService(store, newReadyExchangeService(t), nil)

	account, err := service.Deposit(context.Background(), 1, eur("0.77"))
	require.NoError(t, err)
	assert.Equal(t, "2.00", account.Balance.StringFixed(2))
}

func TestDeposit_UnknownAccount(t *testing.T) {
	store := memory.NewAccountRepository()
	service := NewTransactionService(store, newReadyExchangeService(t), nil)

	_, err := service.Deposit(context.Background(), 404, eur("1"))
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestDeposit_NotReadyExchangeAbortsWithoutRetry(t *testing.T) {
	store := memory.NewAccountRepository()
	newTestAccount(t, store, 1, "CHF", "0")
	service := NewTransactionService(store, NewExchangeService(&stubSynchronizer{}), nil)

	_, err := service.Deposit(context.Background(), 1, eur("100"))
	assert.ErrorIs(t, err, domain.ErrServiceNotReady)

	account, err := store.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, account.Balance.IsZero())
	assert.Equal(t, int64(0), account.Version, "aborted deposit must not commit the version bump")
}

func TestWithdraw_InsufficientBalanceReportsMissingAmount(t *testing.T) {
	store := memory.NewAccountRepository()
	newTestAccount(t, store, 1, "JPY", "1000.00")
	service := NewTransactionService(store, newReadyExchangeService(t), nil)

	_, err := service.Withdraw(context.Background(), 1, jpy("1000.10"))

	var insufficient *domain.InsufficientBalanceError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, int64(1), insufficient.AccountID)
	assert.Equal(t, "JPY", insufficient.Currency)
	assert.True(t, insufficient.Missing.Equal(decimal.RequireFromString("0.10")), "got %s", insufficient.Missing)

	account, err := store.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "1000.00", account.Balance.StringFixed(2))
}

func TestWithdraw_ExactBalanceDrainsToZero(t *testing.T) {
	store := memory.NewAccountRepository()
	newTestAccount(t, store, 1, "JPY", "1000")
	service := NewTransactionService(store, newReadyExchangeService(t), nil)

	account, err := service.Withdraw(context.Background(), 1, jpy("1000"))
	require.NoError(t, err)
	assert.True(t, account.Balance.IsZero())
}

func TestTransfer_ConvertsThroughDebitCurrency(t *testing.T) {
	store := memory.NewAccountRepository()
	newTestAccount(t, store, 1, "CHF", "96")
	newTestAccount(t, store, 2, "JPY", "0")
	service := NewTransactionService(store, newReadyExchangeService(t), nil)

	debitAccount, err := service.Transfer(context.Background(), 1, 2, eur("75"))
	require.NoError(t, err)
	assert.Equal(t, "24.00", debitAccount.Balance.StringFixed(2))

	creditAccount, err := store.GetByID(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "12037.50", creditAccount.Balance.StringFixed(2))
}

func TestTransfer_SameAccountRejected(t *testing.T) {
	store := memory.NewAccountRepository()
	newTestAccount(t, store, 1, "EUR", "100")
	service := NewTransactionService(store, newReadyExchangeService(t), nil)

	_, err := service.Transfer(context.Background(), 1, 1, eur("10"))
	assert.ErrorIs(t, err, domain.ErrSameAccountTransfer)
}

func TestTransfer_InsufficientFundsLeavesBothAccountsUntouched(t *testing.T) {
	store := memory.NewAccountRepository()
	newTestAccount(t, store, 1, "EUR", "10")
	newTestAccount(t, store, 2, "EUR", "5")
	service := NewTransactionService(store, newReadyExchangeService(t), nil)

	_, err := service.Transfer(context.Background(), 1, 2, eur("10.01"))

	var insufficient *domain.InsufficientBalanceError
	require.ErrorAs(t, err, &insufficient)

	debitAccount, err := store.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "10.00", debitAccount.Balance.StringFixed(2))

	creditAccount, err := store.GetByID(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "5.00", creditAccount.Balance.StringFixed(2))
}

func TestConcurrentDepositsAllLand(t *testing.T) {
	store := memory.NewAccountRepository()
	newTestAccount(t, store, 1, "EUR", "0")
	service := NewTransactionService(store, newReadyExchangeService(t), nil).
		WithRetryPolicy(time.Millisecond, 10)

	const depositors = 20
	var wg sync.WaitGroup
	errs := make(chan error, depositors)
	for i := 0; i < depositors; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := service.Deposit(context.Background(), 1, eur("1"))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	account, err := store.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "20.00", account.Balance.StringFixed(2))
}

func TestOppositeTransfersDoNotDeadlock(t *testing.T) {
	store := memory.NewAccountRepository()
	newTestAccount(t, store, 1, "EUR", "100")
	newTestAccount(t, store, 2, "EUR", "100")
	service := NewTransactionService(store, newReadyExchangeService(t), nil).
		WithRetryPolicy(time.Millisecond, 10)

	const rounds = 10
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			_, _ = service.Transfer(context.Background(), 1, 2, eur("1"))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			_, _ = service.Transfer(context.Background(), 2, 1, eur("1"))
		}
	}()
	wg.Wait()

	first, err := store.GetByID(context.Background(), 1)
	require.NoError(t, err)
	second, err := store.GetByID(context.Background(), 2)
	require.NoError(t, err)

	total := first.Balance.Add(second.Balance)
	assert.True(t, total.Equal(decimal.NewFromInt(200)), "money must be conserved, got %s", total)
}

// conflictingStore fails its first n Transact calls with a conflict, then
// delegates to the wrapped store.
type conflictingStore struct {
	repo_interfaces.AccountStore
	mu        sync.Mutex
	conflicts int
	calls     int
}

func (s *conflictingStore) Transact(ctx context.Context, fn func(tx repo_interfaces.AccountTx) error) error {
	s.mu.Lock()
	s.calls++
	conflict := s.calls <= s.conflicts
	s.mu.Unlock()

	if conflict {
		return domain.ErrConflict
	}
	return s.AccountStore.Transact(ctx, fn)
}

func TestRetry_RecoversAfterTransientConflicts(t *testing.T) {
	inner := memory.NewAccountRepository()
	newTestAccount(t, inner, 1, "EUR", "0")
	store := &conflictingStore{AccountStore: inner, conflicts: 2}
	service := NewTransactionService(store, newReadyExchangeService(t), nil).
		WithRetryPolicy(time.Millisecond, 3)

	account, err := service.Deposit(context.Background(), 1, eur("5"))
	require.NoError(t, err)
	assert.Equal(t, "5.00", account.Balance.StringFixed(2))
	assert.Equal(t, 3, store.calls)
}

func TestRetry_ExhaustionSurfacesConflict(t *testing.T) {
	inner := memory.NewAccountRepository()
	newTestAccount(t, inner, 1, "EUR", "0")
	store := &conflictingStore{AccountStore: inner, conflicts: 100}
	service := NewTransactionService(store, newReadyExchangeService(t), nil).
		WithRetryPolicy(time.Millisecond, 3)

	_, err := service.Deposit(context.Background(), 1, eur("5"))
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, 3, store.calls)
}

func TestRetry_NonConflictErrorNotRetried(t *testing.T) {
	inner := memory.NewAccountRepository()
	store := &conflictingStore{AccountStore: inner}
	service := NewTransactionService(store, newReadyExchangeService(t), nil).
		WithRetryPolicy(time.Millisecond, 3)

	_, err := service.Deposit(context.Background(), 404, eur("5"))
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
	assert.Equal(t, 1, store.calls)
}

func TestEvents_PublishedAfterCommit(t *testing.T) {
	store := memory.NewAccountRepository()
	newTestAccount(t, store, 1, "CHF", "100")
	newTestAccount(t, store, 2, "JPY", "0")
	publisher := events.NewMemoryPublisher()
	service := NewTransactionService(store, newReadyExchangeService(t), publisher)

	_, err := service.Deposit(context.Background(), 1, eur("10"))
	require.NoError(t, err)
	_, err = service.Transfer(context.Background(), 1, 2, eur("5"))
	require.NoError(t, err)

	published := publisher.Events()
	require.Len(t, published, 2)

	deposit := published[0]
	assert.Equal(t, domain.TransactionTypeDeposit, deposit.Type)
	assert.Equal(t, "000000001", deposit.AccountID)
	assert.Equal(t, "10", deposit.Amount)
	assert.Equal(t, "EUR", deposit.Currency)
	assert.NotEmpty(t, deposit.EventID)
	assert.False(t, deposit.OccurredAt.IsZero())

	transfer := published[1]
	assert.Equal(t, domain.TransactionTypeTransfer, transfer.Type)
	assert.Equal(t, "000000002", transfer.CounterpartyID)
}

func TestEvents_NotPublishedOnFailure(t *testing.T) {
	store := memory.NewAccountRepository()
	newTestAccount(t, store, 1, "JPY", "1")
	publisher := events.NewMemoryPublisher()
	service := NewTransactionService(store, newReadyExchangeService(t), publisher)

	_, err := service.Withdraw(context.Background(), 1, jpy("2"))
	var insufficient *domain.InsufficientBalanceError
	require.ErrorAs(t, err, &insufficient)

	assert.Empty(t, publisher.Events())
}

func TestPublishFailureDoesNotFailTransaction(t *testing.T) {
	store := memory.NewAccountRepository()
	newTestAccount(t, store, 1, "EUR", "0")
	service := NewTransactionService(store, newReadyExchangeService(t), failingPublisher{})

	account, err := service.Deposit(context.Background(), 1, eur("3"))
	require.NoError(t, err)
	assert.Equal(t, "3.00", account.Balance.StringFixed(2))
}

type failingPublisher struct{}

func (failingPublisher) PublishTransaction(context.Context, domain.TransactionEvent) error {
	return errors.New("broker unavailable")
}
