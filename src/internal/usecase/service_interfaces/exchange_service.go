package service_interfaces

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/ledgerworks/funds-transfer-service/src/internal/domain"
)

type ExchangeService interface {
	// Refresh replaces the rate table with a freshly fetched snapshot. On
	// fetch failure the previous table is discarded and the service reports
	// not ready until the next successful refresh.
	Refresh(ctx context.Context) error

	// Convert translates amount into toCurrency using the current table.
	Convert(amount domain.MonetaryAmount, toCurrency string) (decimal.Decimal, error)

	SupportsCurrency(currency string) bool
	Ready() bool
}
