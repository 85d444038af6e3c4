package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestInsufficientBalanceError_Message(t *testing.T) {
	err := &InsufficientBalanceError{
		AccountID: 42,
		Missing:   decimal.RequireFromString("0.10"),
		Currency:  "JPY",
	}

	assert.Equal(t, "account 000000042 has insufficient balance: 0.1 JPY are missing", err.Error())
}

func TestUnsupportedCurrenciesError_Message(t *testing.T) {
	one := &UnsupportedCurrenciesError{Currencies: []string{"XAU"}}
	assert.Equal(t, "unsupported currency: XAU", one.Error())

	two := &UnsupportedCurrenciesError{Currencies: []string{"XAU", "XAG"}}
	assert.Equal(t, "unsupported currencies: XAU, XAG", two.Error())
}

func TestFormatAccountID_PadsToNineDigits(t *testing.T) {
	assert.Equal(t, "000000007", FormatAccountID(7))
	assert.Equal(t, "999999999", FormatAccountID(MaxAccountID))
}
