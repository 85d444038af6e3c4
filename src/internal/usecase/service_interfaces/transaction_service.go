package service_interfaces

import (
	"context"

	"github.com/ledgerworks/funds-transfer-service/src/internal/domain"
)

type TransactionService interface {
	// Deposit credits the account with amount, converted into the account's
	// currency, and returns the updated account.
	Deposit(ctx context.Context, accountID int64, amount domain.MonetaryAmount) (domain.Account, error)

	// Withdraw debits the account with amount, converted into the account's
	// currency, and returns the updated account.
	Withdraw(ctx context.Context, accountID int64, amount domain.MonetaryAmount) (domain.Account, error)

	// Transfer moves amount from the debit account to the credit account in
	// one unit of work and returns the updated debit account.
	Transfer(ctx context.Context, debitAccountID, creditAccountID int64, amount domain.MonetaryAmount) (domain.Account, error)
}
