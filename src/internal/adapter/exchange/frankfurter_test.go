package exchange

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerworks/funds-transfer-service/src/internal/domain"
)

func TestFetch_IncludesBaseCurrencyInTable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"amount":1.0,"base":"EUR","date":"2026-08-28","rates":{"JPY":160.5,"CHF":0.96}}`))
	}))
	defer server.Close()

	synchronizer := NewFrankfurterSynchronizer(server.URL)
	table, err := synchronizer.Fetch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, table.Size())
	assert.True(t, table.SupportsCurrency("EUR"))
	assert.True(t, table.SupportsCurrency("JPY"))
	assert.True(t, table.SupportsCurrency("CHF"))

	converted, err := table.Convert(domain.MonetaryAmount{Amount: decimal.NewFromInt(100), Currency: "EUR"}, "CHF")
	require.NoError(t, err)
	assert.True(t, converted.Equal(decimal.NewFromInt(96)), "got %s", converted)
}

func TestFetch_NonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	synchronizer := NewFrankfurterSynchronizer(server.URL)
	_, err := synchronizer.Fetch(context.Background())
	assert.Error(t, err)
}

func TestFetch_EmptyRatesRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"amount":1.0,"base":"","date":"","rates":{}}`))
	}))
	defer server.Close()

	synchronizer := NewFrankfurterSynchronizer(server.URL)
	_, err := synchronizer.Fetch(context.Background())
	assert.Error(t, err)
}

func TestFetch_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer server.Close()

	synchronizer := NewFrankfurterSynchronizer(server.URL)
	_, err := synchronizer.Fetch(context.Background())
	assert.Error(t, err)
}
