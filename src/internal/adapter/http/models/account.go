package models

import (
	"errors"
	"strings"

	"github.com/ledgerworks/funds-transfer-service/src/internal/domain"
)

type CreateAccountRequest struct {
	Currency string `json:"currency"`
}

func (r CreateAccountRequest) Validate() error {
	ccy := strings.ToUpper(strings.TrimSpace(r.Currency))
	if ccy == "" {
		return errors.New("currency is required")
	}
	if !isCurrencyCode(ccy) {
		return errors.New("currency must be a 3-letter code")
	}
	return nil
}

// NormalizedCurrency returns the currency trimmed and upper-cased. Only
// meaningful after Validate has passed.
func (r CreateAccountRequest) NormalizedCurrency() string {
	return strings.ToUpper(strings.TrimSpace(r.Currency))
}

type AccountResponse struct {
	ID       string `json:"id"`
	Currency string `json:"currency"`
	Balance  string `json:"balance"`
}

func NewAccountResponse(account domain.Account) AccountResponse {
	return AccountResponse{
		ID:       domain.FormatAccountID(account.ID),
		Currency: account.Currency,
		Balance:  account.Balance.StringFixed(2),
	}
}

func isCurrencyCode(value string) bool {
	if len(value) != 3 {
		return false
	}
	for _, ch := range value {
		if ch < 'A' || ch > 'Z' {
			return false
		}
	}
	return true
}
