package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// MaxAccountID bounds the id space; ids are rendered to clients as
// zero-padded 9-digit strings, so they must fit in 9 decimal digits.
const MaxAccountID = 999999999

type Account struct {
	ID        int64
	Currency  string
	Balance   decimal.Decimal
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FormatAccountID renders an account id the way it appears on the wire:
// zero-padded to 9 digits.
func FormatAccountID(id int64) string {
	return fmt.Sprintf("%09d", id)
}
