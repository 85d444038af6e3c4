package domain

import (
	"context"
	"time"
)

const (
	TransactionTypeDeposit  = "DEPOSIT"
	TransactionTypeWithdraw = "WITHDRAW"
	TransactionTypeTransfer = "TRANSFER"
)

// TransactionEvent describes a committed balance movement. Amount and
// currency are the values of the original request, not the converted ones;
// consumers that need account-currency figures fetch the account.
type TransactionEvent struct {
	EventID        string    `json:"event_id"`
	Type           string    `json:"type"`
	AccountID      string    `json:"account_id"`
	CounterpartyID string    `json:"counterparty_id,omitempty"`
	Amount         string    `json:"amount"`
	Currency       string    `json:"currency"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// TransactionEventPublisher delivers events for committed transactions.
// Publishing is best-effort: a failed publish never fails the transaction.
type TransactionEventPublisher interface {
	PublishTransaction(ctx context.Context, event TransactionEvent) error
}
