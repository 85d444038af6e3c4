package repo_interfaces

import (
	"context"

	"github.com/ledgerworks/funds-transfer-service/src/internal/domain"
)

// AccountStore is the persistence contract the transaction engine depends
// on. Implementations must serialize mutations per account: once a unit of
// work holds a row through GetForUpdate, no other unit of work may observe
// or modify that row until the first one commits or rolls back.
type AccountStore interface {
	Create(ctx context.Context, account domain.Account) (domain.Account, error)
	GetByID(ctx context.Context, id int64) (domain.Account, error)
	Exists(ctx context.Context, id int64) (bool, error)

	// Transact runs fn inside one all-or-nothing unit of work. If fn
	// returns an error, every change staged through the AccountTx is
	// discarded. Lock races, serialization failures and version mismatches
	// surface as domain.ErrConflict from the tx methods or from the commit.
	Transact(ctx context.Context, fn func(tx AccountTx) error) error
}

// AccountTx is the view of the store inside one unit of work.
type AccountTx interface {
	// GetForUpdate returns the account while holding an exclusive lock on
	// its row for the rest of the unit of work. Acquiring the lock advances
	// the version token even before any field changes, so a contended row
	// and a concurrently-modified row classify identically as ErrConflict.
	GetForUpdate(ctx context.Context, id int64) (domain.Account, error)

	// Save persists the balance and advances the version token. It fails
	// with domain.ErrConflict when the row's version no longer matches the
	// one read in this unit of work.
	Save(ctx context.Context, account domain.Account) (domain.Account, error)
}
