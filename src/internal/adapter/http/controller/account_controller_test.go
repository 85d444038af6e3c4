package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerworks/funds-transfer-service/src/internal/adapter/http/models"
	"github.com/ledgerworks/funds-transfer-service/src/internal/adapter/http/router"
	"github.com/ledgerworks/funds-transfer-service/src/internal/commons"
	"github.com/ledgerworks/funds-transfer-service/src/internal/domain"
)

type stubAccountService struct {
	account domain.Account
	err     error
	calls   int
}

func (s *stubAccountService) CreateAccount(context.Context, string) (domain.Account, error) {
	s.calls++
	return s.account, s.err
}

func (s *stubAccountService) GetAccount(context.Context, int64) (domain.Account, error) {
	return s.account, s.err
}

func newAccountMux(service *stubAccountService) *http.ServeMux {
	return router.New(NewAccountController(service, readyExchange()), nil, nil)
}

func TestCreateAccountEndpoint_Success(t *testing.T) {
	service := &stubAccountService{
		account: domain.Account{ID: 7, Currency: "CHF", Balance: decimal.Zero},
	}
	mux := newAccountMux(service)

	req := httptest.NewRequest(http.MethodPost, "/account", strings.NewReader(`{"currency":"CHF"}`))
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)

	var response commons.Response[models.AccountResponse]
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
	require.NotNil(t, response.Data)
	assert.Equal(t, "000000007", response.Data.ID)
	assert.Equal(t, "0.00", response.Data.Balance)
}

func TestCreateAccountEndpoint_InvalidCurrency(t *testing.T) {
	mux := newAccountMux(&stubAccountService{})

	req := httptest.NewRequest(http.MethodPost, "/account", strings.NewReader(`{"currency":"EURO"}`))
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCreateAccountEndpoint_UnsupportedCurrencyRejected(t *testing.T) {
	service := &stubAccountService{}
	mux := newAccountMux(service)

	req := httptest.NewRequest(http.MethodPost, "/account", strings.NewReader(`{"currency":"ZZZ"}`))
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, 0, service.calls, "account must not be created")
	assert.Contains(t, rr.Body.String(), "unsupported currency: ZZZ")
}

func TestCreateAccountEndpoint_NotReadyExchangeSkipsSupportCheck(t *testing.T) {
	service := &stubAccountService{
		account: domain.Account{ID: 9, Currency: "ZZZ", Balance: decimal.Zero},
	}
	mux := router.New(NewAccountController(service, &stubExchangeService{}), nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/account", strings.NewReader(`{"currency":"ZZZ"}`))
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, 1, service.calls)
}

func TestGetAccountEndpoint_Success(t *testing.T) {
	service := &stubAccountService{
		account: domain.Account{ID: 42, Currency: "JPY", Balance: decimal.RequireFromString("1000")},
	}
	mux := newAccountMux(service)

	req := httptest.NewRequest(http.MethodGet, "/account/000000042", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var response commons.Response[models.AccountResponse]
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
	require.NotNil(t, response.Data)
	assert.Equal(t, "1000.00", response.Data.Balance)
}

func TestGetAccountEndpoint_NotFound(t *testing.T) {
	mux := newAccountMux(&stubAccountService{err: domain.ErrAccountNotFound})

	req := httptest.NewRequest(http.MethodGet, "/account/000000042", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestGetAccountEndpoint_BadID(t *testing.T) {
	mux := newAccountMux(&stubAccountService{})

	req := httptest.NewRequest(http.MethodGet, "/account/not-a-number", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
