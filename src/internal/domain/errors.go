package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// ErrAccountNotFound is terminal: the engine never retries it.
	ErrAccountNotFound = errors.New("account not found")

	// ErrConflict signals that a concurrent writer invalidated the current
	// view of an account row. The transaction engine retries on it; every
	// other error aborts the operation immediately.
	ErrConflict = errors.New("account row conflict")

	// ErrServiceNotReady is returned while no confirmed-good rate table is
	// loaded, either before the first successful fetch or after a failed
	// refresh cleared the previous table.
	ErrServiceNotReady = errors.New("exchange rates are not loaded yet")

	// ErrSameAccountTransfer rejects transfers where debit and credit
	// account are identical, before any locking takes place.
	ErrSameAccountTransfer = errors.New("transferring money from and to the same account is not allowed")

	// ErrDuplicateAccount signals that an insert lost the race for its id.
	// The id allocator redraws on it.
	ErrDuplicateAccount = errors.New("account id already exists")
)

// InsufficientBalanceError reports a withdraw or transfer that would drive
// the balance negative. Missing is expressed in the account's own currency.
type InsufficientBalanceError struct {
	AccountID int64
	Missing   decimal.Decimal
	Currency  string
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("account %s has insufficient balance: %s %s are missing",
		FormatAccountID(e.AccountID), e.Missing, e.Currency)
}

// UnsupportedCurrenciesError carries every currency of a conversion request
// that the current rate table does not know about.
type UnsupportedCurrenciesError struct {
	Currencies []string
}

func (e *UnsupportedCurrenciesError) Error() string {
	switch len(e.Currencies) {
	case 0:
		return "unsupported currencies"
	case 1:
		return "unsupported currency: " + e.Currencies[0]
	default:
		return "unsupported currencies: " + strings.Join(e.Currencies, ", ")
	}
}
