package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ledgerworks/funds-transfer-service/src/internal/domain"
)

const defaultRequestTimeout = 10 * time.Second

// FrankfurterSynchronizer fetches the latest exchange rates from a
// frankfurter-compatible endpoint.
type FrankfurterSynchronizer struct {
	url    string
	client *http.Client
}

// latestRatesResponse mirrors the wire format of GET /latest. The base
// currency itself is not part of the rates map, so it is re-added from the
// amount and base fields before the table is built.
type latestRatesResponse struct {
	Amount float64            `json:"amount"`
	Base   string             `json:"base"`
	Date   string             `json:"date"`
	Rates  map[string]float64 `json:"rates"`
}

func NewFrankfurterSynchronizer(url string) *FrankfurterSynchronizer {
	return &FrankfurterSynchronizer{
		url: url,
		client: &http.Client{
			Timeout: defaultRequestTimeout,
		},
	}
}

func (s *FrankfurterSynchronizer) Fetch(ctx context.Context) (domain.RateTable, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return domain.RateTable{}, fmt.Errorf("build rates request: %w", err)
	}
	request.Header.Set("Accept", "application/json")

	response, err := s.client.Do(request)
	if err != nil {
		return domain.RateTable{}, fmt.Errorf("fetch exchange rates: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return domain.RateTable{}, fmt.Errorf("fetch exchange rates: unexpected status %d", response.StatusCode)
	}

	var payload latestRatesResponse
	if err := json.NewDecoder(response.Body).Decode(&payload); err != nil {
		return domain.RateTable{}, fmt.Errorf("decode exchange rates: %w", err)
	}

	if payload.Base == "" || len(payload.Rates) == 0 {
		return domain.RateTable{}, fmt.Errorf("decode exchange rates: response has no rates")
	}

	rates := make(map[string]float64, len(payload.Rates)+1)
	for currency, rate := range payload.Rates {
		rates[currency] = rate
	}
	rates[payload.Base] = payload.Amount

	table, err := domain.NewRateTableFromFloats(rates)
	if err != nil {
		return domain.RateTable{}, fmt.Errorf("build rate table: %w", err)
	}

	return table, nil
}
