package controller

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ledgerworks/funds-transfer-service/src/internal/domain"
	"github.com/ledgerworks/funds-transfer-service/src/internal/usecase/service_interfaces"
)

// statusForError maps domain failures to HTTP statuses. Anything not
// explicitly classified is a server-side failure.
func statusForError(err error) int {
	var insufficient *domain.InsufficientBalanceError
	var unsupported *domain.UnsupportedCurrenciesError

	switch {
	case errors.Is(err, domain.ErrAccountNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrSameAccountTransfer),
		errors.As(err, &insufficient),
		errors.As(err, &unsupported):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrServiceNotReady):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// checkCurrenciesSupported rejects currencies missing from the loaded rate
// table. While the table is not loaded the check passes and the service layer
// decides, so a rate-source outage never blocks syntactically valid requests
// at the edge.
func checkCurrenciesSupported(exchange service_interfaces.ExchangeService, currencies ...string) error {
	if exchange == nil || !exchange.Ready() {
		return nil
	}

	var unsupported []string
	for _, currency := range currencies {
		if !exchange.SupportsCurrency(currency) {
			unsupported = append(unsupported, currency)
		}
	}
	if len(unsupported) > 0 {
		return &domain.UnsupportedCurrenciesError{Currencies: unsupported}
	}

	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
