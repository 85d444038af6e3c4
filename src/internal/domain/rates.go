package domain

import (
	"fmt"
	"math"
	"strconv"

	"github.com/shopspring/decimal"
)

// baseConversionScale is the number of fractional digits kept when an amount
// is brought into the base currency. The half-up rounding at this step is
// load-bearing: both halves of a cross-currency transfer go through it, and
// changing the scale or mode changes committed balances.
const baseConversionScale = 9

// RateTable is an immutable snapshot of exchange rates, each expressed
// relative to one fixed base currency. A table is replaced as a whole on
// refresh; there is no per-currency staleness.
type RateTable struct {
	rates map[string]decimal.Decimal
}

func NewRateTable(rates map[string]decimal.Decimal) RateTable {
	copied := make(map[string]decimal.Decimal, len(rates))
	for currency, rate := range rates {
		copied[currency] = rate
	}
	return RateTable{rates: copied}
}

// NewRateTableFromFloats builds a table from rates in their external floating
// representation. Each rate goes through its shortest decimal text form
// before being parsed into a decimal: constructing decimals straight from the
// binary float would turn a source rate of 0.96 into its nearest float64
// expansion (0.95999999999999996...) instead of exactly 0.96.
func NewRateTableFromFloats(rates map[string]float64) (RateTable, error) {
	converted := make(map[string]decimal.Decimal, len(rates))
	for currency, rate := range rates {
		if math.IsNaN(rate) || math.IsInf(rate, 0) || rate <= 0 {
			return RateTable{}, fmt.Errorf("rate for %s must be a positive number, got %v", currency, rate)
		}
		parsed, err := decimal.NewFromString(strconv.FormatFloat(rate, 'f', -1, 64))
		if err != nil {
			return RateTable{}, fmt.Errorf("parse rate for %s: %w", currency, err)
		}
		converted[currency] = parsed
	}
	return RateTable{rates: converted}, nil
}

// SupportsCurrency reports whether the table holds a rate for the currency.
func (t RateTable) SupportsCurrency(currency string) bool {
	_, ok := t.rates[currency]
	return ok
}

// Size returns the number of currencies in the table.
func (t RateTable) Size() int {
	return len(t.rates)
}

// Convert translates amount into toCurrency. Same-currency conversions
// return the amount unchanged, with no rounding introduced. Cross-currency
// conversions divide by the source rate (half-up, 9 fractional digits) to
// reach the base currency, then multiply by the target rate at natural
// product scale.
func (t RateTable) Convert(amount MonetaryAmount, toCurrency string) (decimal.Decimal, error) {
	if amount.Currency == toCurrency {
		return amount.Amount, nil
	}

	fromRate, ok := t.rates[amount.Currency]
	if !ok {
		return decimal.Decimal{}, &UnsupportedCurrenciesError{Currencies: []string{amount.Currency}}
	}
	baseAmount := amount.Amount.DivRound(fromRate, baseConversionScale)

	toRate, ok := t.rates[toCurrency]
	if !ok {
		return decimal.Decimal{}, &UnsupportedCurrenciesError{Currencies: []string{toCurrency}}
	}
	return baseAmount.Mul(toRate), nil
}
