package models

import (
	"errors"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ledgerworks/funds-transfer-service/src/internal/domain"
)

type AccountBalanceRequest struct {
	AccountID string `json:"accountId"`
	Amount    string `json:"amount"`
	Currency  string `json:"currency"`
}

func (r AccountBalanceRequest) Validate() error {
	var errs []string

	if msg := validateAccountID("accountId", r.AccountID); msg != "" {
		errs = append(errs, msg)
	}
	if msg := validateAmount(r.Amount); msg != "" {
		errs = append(errs, msg)
	}
	if msg := validateCurrency(r.Currency); msg != "" {
		errs = append(errs, msg)
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func (r AccountBalanceRequest) MonetaryAmount() domain.MonetaryAmount {
	amount, _ := decimal.NewFromString(strings.TrimSpace(r.Amount))
	return domain.MonetaryAmount{
		Amount:   amount,
		Currency: strings.ToUpper(strings.TrimSpace(r.Currency)),
	}
}

func (r AccountBalanceRequest) AccountIDValue() int64 {
	id, _ := strconv.ParseInt(strings.TrimSpace(r.AccountID), 10, 64)
	return id
}

type MoneyTransferRequest struct {
	DebitAccountID  string `json:"debitAccountId"`
	CreditAccountID string `json:"creditAccountId"`
	Amount          string `json:"amount"`
	Currency        string `json:"currency"`
}

func (r MoneyTransferRequest) Validate() error {
	var errs []string

	if msg := validateAccountID("debitAccountId", r.DebitAccountID); msg != "" {
		errs = append(errs, msg)
	}
	if msg := validateAccountID("creditAccountId", r.CreditAccountID); msg != "" {
		errs = append(errs, msg)
	}
	if msg := validateAmount(r.Amount); msg != "" {
		errs = append(errs, msg)
	}
	if msg := validateCurrency(r.Currency); msg != "" {
		errs = append(errs, msg)
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func (r MoneyTransferRequest) MonetaryAmount() domain.MonetaryAmount {
	amount, _ := decimal.NewFromString(strings.TrimSpace(r.Amount))
	return domain.MonetaryAmount{
		Amount:   amount,
		Currency: strings.ToUpper(strings.TrimSpace(r.Currency)),
	}
}

func (r MoneyTransferRequest) DebitAccountIDValue() int64 {
	id, _ := strconv.ParseInt(strings.TrimSpace(r.DebitAccountID), 10, 64)
	return id
}

func (r MoneyTransferRequest) CreditAccountIDValue() int64 {
	id, _ := strconv.ParseInt(strings.TrimSpace(r.CreditAccountID), 10, 64)
	return id
}

func validateAccountID(field, value string) string {
	id := strings.TrimSpace(value)
	if id == "" {
		return field + " is required"
	}
	for _, ch := range id {
		if ch < '0' || ch > '9' {
			return field + " must contain only digits"
		}
	}
	parsed, err := strconv.ParseInt(id, 10, 64)
	if err != nil || parsed < 1 || parsed > domain.MaxAccountID {
		return field + " is out of range"
	}
	return ""
}

func validateAmount(value string) string {
	amount := strings.TrimSpace(value)
	if amount == "" {
		return "amount is required"
	}
	parsed, err := decimal.NewFromString(amount)
	if err != nil {
		return "amount must be numeric"
	}
	if parsed.LessThanOrEqual(decimal.Zero) {
		return "amount must be greater than zero"
	}
	return ""
}

func validateCurrency(value string) string {
	ccy := strings.ToUpper(strings.TrimSpace(value))
	if ccy == "" {
		return "currency is required"
	}
	if !isCurrencyCode(ccy) {
		return "currency must be a 3-letter code"
	}
	return ""
}
