package controller

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ledgerworks/funds-transfer-service/src/internal/adapter/http/models"
	"github.com/ledgerworks/funds-transfer-service/src/internal/commons"
	"github.com/ledgerworks/funds-transfer-service/src/internal/domain"
	"github.com/ledgerworks/funds-transfer-service/src/internal/usecase/service_interfaces"
)

type AccountController struct {
	service  service_interfaces.AccountService
	exchange service_interfaces.ExchangeService
}

func NewAccountController(service service_interfaces.AccountService, exchange service_interfaces.ExchangeService) *AccountController {
	return &AccountController{service: service, exchange: exchange}
}

func (c *AccountController) RegisterRoutes(mux *http.ServeMux, authMiddleware func(http.Handler) http.Handler) {
	create := http.Handler(http.HandlerFunc(c.createAccount))
	get := http.Handler(http.HandlerFunc(c.getAccount))
	if authMiddleware != nil {
		create = authMiddleware(create)
		get = authMiddleware(get)
	}
	mux.Handle("/account", create)
	mux.Handle("/account/", get)
}

func (c *AccountController) createAccount(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, commons.ErrorResponse[models.AccountResponse]("method not allowed"))
		return
	}

	var req models.CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, commons.ErrorResponse[models.AccountResponse]("invalid request body", err.Error()))
		return
	}
	logRequest(r, req)

	if err := req.Validate(); err != nil {
		logError(r, err, nil)
		writeJSON(w, http.StatusBadRequest, commons.ErrorResponse[models.AccountResponse]("validation failed", err.Error()))
		return
	}

	// An account in a currency the rate table does not know about could
	// never take part in a transaction.
	if err := checkCurrenciesSupported(c.exchange, req.NormalizedCurrency()); err != nil {
		logError(r, err, nil)
		writeJSON(w, statusForError(err), commons.ErrorResponse[models.AccountResponse]("validation failed", err.Error()))
		return
	}

	account, err := c.service.CreateAccount(r.Context(), req.NormalizedCurrency())
	if err != nil {
		logError(r, err, nil)
		writeJSON(w, statusForError(err), commons.ErrorResponse[models.AccountResponse]("failed to create account", err.Error()))
		return
	}

	response := commons.SuccessResponse("account created successfully", models.NewAccountResponse(account))
	logResponse(r, http.StatusCreated, response, start)
	writeJSON(w, http.StatusCreated, response)
}

func (c *AccountController) getAccount(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, commons.ErrorResponse[models.AccountResponse]("method not allowed"))
		return
	}
	logRequest(r, nil)

	idPart := strings.TrimPrefix(r.URL.Path, "/account/")
	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil || id < 1 || id > domain.MaxAccountID {
		writeJSON(w, http.StatusBadRequest, commons.ErrorResponse[models.AccountResponse]("validation failed", "account id must be a valid number"))
		return
	}

	account, err := c.service.GetAccount(r.Context(), id)
	if err != nil {
		logError(r, err, nil)
		writeJSON(w, statusForError(err), commons.ErrorResponse[models.AccountResponse]("failed to get account", err.Error()))
		return
	}

	response := commons.SuccessResponse("account fetched successfully", models.NewAccountResponse(account))
	logResponse(r, http.StatusOK, response, start)
	writeJSON(w, http.StatusOK, response)
}
