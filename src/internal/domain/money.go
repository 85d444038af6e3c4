package domain

import "github.com/shopspring/decimal"

// MonetaryAmount is a value type pairing an amount with its currency code.
// Amounts entering the service are validated as strictly positive upstream.
type MonetaryAmount struct {
	Amount   decimal.Decimal
	Currency string
}
