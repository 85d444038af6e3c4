package background

import (
	"context"
	"time"

	"github.com/ledgerworks/funds-transfer-service/src/internal/logger"
	"github.com/ledgerworks/funds-transfer-service/src/internal/usecase/service_interfaces"
)

// RunRateRefresh keeps the exchange rate table current: one refresh after the
// initial delay, then one per interval, until ctx is cancelled. Failures are
// logged and the loop keeps going; the exchange service itself handles the
// not-ready window.
func RunRateRefresh(
	ctx context.Context,
	exchangeService service_interfaces.ExchangeService,
	initialDelay time.Duration,
	interval time.Duration,
) error {
	select {
	case <-time.After(initialDelay):
	case <-ctx.Done():
		return ctx.Err()
	}

	refresh := func() {
		if err := exchangeService.Refresh(ctx); err != nil {
			logger.Error("background rate refresh failed", err, nil)
		}
	}
	refresh()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			refresh()
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
