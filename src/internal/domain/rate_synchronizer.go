package domain

import "context"

// RateSynchronizer fetches a fresh rate table from an external source.
// Failures are I/O-class errors; the exchange service decides what a failed
// fetch means for readiness.
type RateSynchronizer interface {
	Fetch(ctx context.Context) (RateTable, error)
}
