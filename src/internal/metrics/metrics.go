package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	transactionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transactions_total",
			Help: "Completed transaction engine operations by outcome",
		},
		[]string{"operation", "status"},
	)

	transactionConflictRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transaction_conflict_retries_total",
			Help: "Operations re-executed after an account row conflict",
		},
		[]string{"operation"},
	)

	rateRefreshTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exchange_rate_refresh_total",
			Help: "Exchange rate table refresh attempts by outcome",
		},
		[]string{"status"},
	)

	ratesLoaded = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "exchange_rates_loaded",
			Help: "Number of currencies in the current rate table, 0 when not ready",
		},
	)
)

func RecordTransaction(operation string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	transactionsTotal.WithLabelValues(operation, status).Inc()
}

func RecordConflictRetry(operation string) {
	transactionConflictRetriesTotal.WithLabelValues(operation).Inc()
}

func RecordRateRefresh(size int, err error) {
	if err != nil {
		rateRefreshTotal.WithLabelValues("error").Inc()
		ratesLoaded.Set(0)
		return
	}
	rateRefreshTotal.WithLabelValues("success").Inc()
	ratesLoaded.Set(float64(size))
}
