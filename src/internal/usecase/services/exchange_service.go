package services

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/shopspring/decimal"

	"github.com/ledgerworks/funds-transfer-service/src/internal/domain"
	"github.com/ledgerworks/funds-transfer-service/src/internal/logger"
	"github.com/ledgerworks/funds-transfer-service/src/internal/metrics"
	"github.com/ledgerworks/funds-transfer-service/src/internal/usecase/service_interfaces"
)

// Verify that ExchangeService implements the service_interfaces.ExchangeService interface
var _ service_interfaces.ExchangeService = (*ExchangeService)(nil)

// ExchangeService holds the current exchange rate snapshot and converts
// amounts against it. The table is swapped atomically as a whole; conversions
// in flight keep using the snapshot they started with.
type ExchangeService struct {
	synchronizer domain.RateSynchronizer
	table        atomic.Pointer[domain.RateTable]
}

func NewExchangeService(synchronizer domain.RateSynchronizer) *ExchangeService {
	return &ExchangeService{synchronizer: synchronizer}
}

// Initialize performs the first refresh. A failure here is logged and
// swallowed so startup still completes; the service stays not ready until a
// later refresh succeeds.
func (s *ExchangeService) Initialize(ctx context.Context) {
	if err := s.Refresh(ctx); err != nil {
		logger.Error("exchange service initial rate load failed", err, nil)
	}
}

func (s *ExchangeService) Refresh(ctx context.Context) error {
	table, err := s.synchronizer.Fetch(ctx)
	if err != nil {
		// A stale table is worse than no table: conversions must not be
		// priced against rates of unknown age.
		s.table.Store(nil)
		metrics.RecordRateRefresh(0, err)
		return fmt.Errorf("refresh exchange rates: %w", err)
	}

	s.table.Store(&table)
	metrics.RecordRateRefresh(table.Size(), nil)

	logger.Info("exchange service rates refreshed", logger.Fields{
		"currencies": table.Size(),
	})

	return nil
}

func (s *ExchangeService) Convert(amount domain.MonetaryAmount, toCurrency string) (decimal.Decimal, error) {
	table := s.table.Load()
	if table == nil {
		return decimal.Decimal{}, domain.ErrServiceNotReady
	}

	var unsupported []string
	if !table.SupportsCurrency(amount.Currency) {
		unsupported = append(unsupported, amount.Currency)
	}
	if toCurrency != amount.Currency && !table.SupportsCurrency(toCurrency) {
		unsupported = append(unsupported, toCurrency)
	}
	if len(unsupported) > 0 {
		return decimal.Decimal{}, &domain.UnsupportedCurrenciesError{Currencies: unsupported}
	}

	return table.Convert(amount, toCurrency)
}

func (s *ExchangeService) SupportsCurrency(currency string) bool {
	table := s.table.Load()
	return table != nil && table.SupportsCurrency(currency)
}

func (s *ExchangeService) Ready() bool {
	return s.table.Load() != nil
}
