package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ledgerworks/funds-transfer-service/src/internal/adapter/repository/repo_interfaces"
	"github.com/ledgerworks/funds-transfer-service/src/internal/domain"
	"github.com/ledgerworks/funds-transfer-service/src/internal/logger"
	"github.com/ledgerworks/funds-transfer-service/src/internal/metrics"
	"github.com/ledgerworks/funds-transfer-service/src/internal/usecase/service_interfaces"
)

// Verify that TransactionService implements the service_interfaces.TransactionService interface
var _ service_interfaces.TransactionService = (*TransactionService)(nil)

const (
	defaultRetryBaseDelay   = 500 * time.Millisecond
	defaultRetryMaxAttempts = 3
)

// TransactionService executes balance movements. Every operation runs inside
// one unit of work on the account store, re-executed from scratch with
// exponential backoff when a concurrent writer causes a row conflict. All
// other failures abort on the first attempt.
type TransactionService struct {
	store           repo_interfaces.AccountStore
	exchangeService service_interfaces.ExchangeService
	publisher       domain.TransactionEventPublisher
	retryBaseDelay  time.Duration
	maxAttempts     int
}

func NewTransactionService(
	store repo_interfaces.AccountStore,
	exchangeService service_interfaces.ExchangeService,
	publisher domain.TransactionEventPublisher,
) *TransactionService {
	return &TransactionService{
		store:           store,
		exchangeService: exchangeService,
		publisher:       publisher,
		retryBaseDelay:  defaultRetryBaseDelay,
		maxAttempts:     defaultRetryMaxAttempts,
	}
}

// WithRetryPolicy overrides the conflict retry tuning.
func (s *TransactionService) WithRetryPolicy(baseDelay time.Duration, maxAttempts int) *TransactionService {
	s.retryBaseDelay = baseDelay
	s.maxAttempts = maxAttempts
	return s
}

func (s *TransactionService) Deposit(ctx context.Context, accountID int64, amount domain.MonetaryAmount) (domain.Account, error) {
	logger.Info("transaction service deposit request", logger.Fields{
		"accountId": domain.FormatAccountID(accountID),
		"amount":    amount.Amount.String(),
		"currency":  amount.Currency,
	})

	var updated domain.Account
	err := s.runWithRetry(ctx, domain.TransactionTypeDeposit, func() error {
		return s.store.Transact(ctx, func(tx repo_interfaces.AccountTx) error {
			account, err := tx.GetForUpdate(ctx, accountID)
			if err != nil {
				return err
			}

			credit, err := s.exchangeService.Convert(amount, account.Currency)
			if err != nil {
				return err
			}

			account.Balance = account.Balance.Add(credit)
			updated, err = tx.Save(ctx, account)
			return err
		})
	})
	metrics.RecordTransaction(domain.TransactionTypeDeposit, err)
	if err != nil {
		logger.Error("transaction service deposit failed", err, logger.Fields{
			"accountId": domain.FormatAccountID(accountID),
		})
		return domain.Account{}, err
	}

	s.publishEvent(ctx, domain.TransactionEvent{
		Type:      domain.TransactionTypeDeposit,
		AccountID: domain.FormatAccountID(accountID),
		Amount:    amount.Amount.String(),
		Currency:  amount.Currency,
	})

	return updated, nil
}

func (s *TransactionService) Withdraw(ctx context.Context, accountID int64, amount domain.MonetaryAmount) (domain.Account, error) {
	logger.Info("transaction service withdraw request", logger.Fields{
		"accountId": domain.FormatAccountID(accountID),
		"amount":    amount.Amount.String(),
		"currency":  amount.Currency,
	})

	var updated domain.Account
	err := s.runWithRetry(ctx, domain.TransactionTypeWithdraw, func() error {
		return s.store.Transact(ctx, func(tx repo_interfaces.AccountTx) error {
			account, err := tx.GetForUpdate(ctx, accountID)
			if err != nil {
				return err
			}

			debit, err := s.exchangeService.Convert(amount, account.Currency)
			if err != nil {
				return err
			}

			if account.Balance.LessThan(debit) {
				return &domain.InsufficientBalanceError{
					AccountID: account.ID,
					Missing:   debit.Sub(account.Balance),
					Currency:  account.Currency,
				}
			}

			account.Balance = account.Balance.Sub(debit)
			updated, err = tx.Save(ctx, account)
			return err
		})
	})
	metrics.RecordTransaction(domain.TransactionTypeWithdraw, err)
	if err != nil {
		logger.Error("transaction service withdraw failed", err, logger.Fields{
			"accountId": domain.FormatAccountID(accountID),
		})
		return domain.Account{}, err
	}

	s.publishEvent(ctx, domain.TransactionEvent{
		Type:      domain.TransactionTypeWithdraw,
		AccountID: domain.FormatAccountID(accountID),
		Amount:    amount.Amount.String(),
		Currency:  amount.Currency,
	})

	return updated, nil
}

func (s *TransactionService) Transfer(ctx context.Context, debitAccountID, creditAccountID int64, amount domain.MonetaryAmount) (domain.Account, error) {
	logger.Info("transaction service transfer request", logger.Fields{
		"debitAccountId":  domain.FormatAccountID(debitAccountID),
		"creditAccountId": domain.FormatAccountID(creditAccountID),
		"amount":          amount.Amount.String(),
		"currency":        amount.Currency,
	})

	if debitAccountID == creditAccountID {
		metrics.RecordTransaction(domain.TransactionTypeTransfer, domain.ErrSameAccountTransfer)
		return domain.Account{}, domain.ErrSameAccountTransfer
	}

	var updated domain.Account
	err := s.runWithRetry(ctx, domain.TransactionTypeTransfer, func() error {
		return s.store.Transact(ctx, func(tx repo_interfaces.AccountTx) error {
			// Both rows are locked in ascending id order so that two
			// opposite transfers between the same pair of accounts cannot
			// wait on each other forever.
			firstID, secondID := debitAccountID, creditAccountID
			if secondID < firstID {
				firstID, secondID = secondID, firstID
			}

			locked := make(map[int64]domain.Account, 2)
			for _, id := range []int64{firstID, secondID} {
				account, err := tx.GetForUpdate(ctx, id)
				if err != nil {
					return err
				}
				locked[id] = account
			}

			debitAccount := locked[debitAccountID]
			creditAccount := locked[creditAccountID]

			// The requested amount converts into the debit currency first;
			// the credit side then converts the rounded debit figure, not the
			// original amount, so both legs agree on what moved.
			debitAmount, err := s.exchangeService.Convert(amount, debitAccount.Currency)
			if err != nil {
				return err
			}
			if debitAccount.Balance.LessThan(debitAmount) {
				return &domain.InsufficientBalanceError{
					AccountID: debitAccount.ID,
					Missing:   debitAmount.Sub(debitAccount.Balance),
					Currency:  debitAccount.Currency,
				}
			}

			creditAmount, err := s.exchangeService.Convert(domain.MonetaryAmount{
				Amount:   debitAmount,
				Currency: debitAccount.Currency,
			}, creditAccount.Currency)
			if err != nil {
				return err
			}

			debitAccount.Balance = debitAccount.Balance.Sub(debitAmount)
			creditAccount.Balance = creditAccount.Balance.Add(creditAmount)

			if _, err := tx.Save(ctx, creditAccount); err != nil {
				return err
			}
			updated, err = tx.Save(ctx, debitAccount)
			return err
		})
	})
	metrics.RecordTransaction(domain.TransactionTypeTransfer, err)
	if err != nil {
		logger.Error("transaction service transfer failed", err, logger.Fields{
			"debitAccountId":  domain.FormatAccountID(debitAccountID),
			"creditAccountId": domain.FormatAccountID(creditAccountID),
		})
		return domain.Account{}, err
	}

	s.publishEvent(ctx, domain.TransactionEvent{
		Type:           domain.TransactionTypeTransfer,
		AccountID:      domain.FormatAccountID(debitAccountID),
		CounterpartyID: domain.FormatAccountID(creditAccountID),
		Amount:         amount.Amount.String(),
		Currency:       amount.Currency,
	})

	return updated, nil
}

// runWithRetry re-executes fn on domain.ErrConflict with exponential backoff
// starting at the base delay and doubling per attempt. Any other error, and
// conflict exhaustion, return to the caller.
func (s *TransactionService) runWithRetry(ctx context.Context, operation string, fn func() error) error {
	delay := s.retryBaseDelay

	var err error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		err = fn()
		if err == nil || !errors.Is(err, domain.ErrConflict) {
			return err
		}

		if attempt == s.maxAttempts {
			break
		}

		metrics.RecordConflictRetry(operation)
		logger.Warn("transaction service retrying after conflict", logger.Fields{
			"operation": operation,
			"attempt":   attempt,
			"delay":     delay.String(),
		})

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		delay *= 2
	}

	return fmt.Errorf("operation failed after %d attempts: %w", s.maxAttempts, err)
}

// publishEvent is best-effort: the transaction already committed, so a
// delivery failure is logged and dropped.
func (s *TransactionService) publishEvent(ctx context.Context, event domain.TransactionEvent) {
	if s.publisher == nil {
		return
	}

	event.EventID = uuid.NewString()
	event.OccurredAt = time.Now().UTC()

	if err := s.publisher.PublishTransaction(ctx, event); err != nil {
		logger.Error("transaction service event publish failed", err, logger.Fields{
			"type":      event.Type,
			"accountId": event.AccountID,
		})
	}
}
