package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/ledgerworks/funds-transfer-service/src/internal/adapter/http/models"
	"github.com/ledgerworks/funds-transfer-service/src/internal/commons"
	"github.com/ledgerworks/funds-transfer-service/src/internal/domain"
	"github.com/ledgerworks/funds-transfer-service/src/internal/logger"
	"github.com/ledgerworks/funds-transfer-service/src/internal/usecase/service_interfaces"
)

type TransactionController struct {
	service  service_interfaces.TransactionService
	exchange service_interfaces.ExchangeService
}

func NewTransactionController(service service_interfaces.TransactionService, exchange service_interfaces.ExchangeService) *TransactionController {
	return &TransactionController{service: service, exchange: exchange}
}

func (c *TransactionController) RegisterRoutes(mux *http.ServeMux, authMiddleware func(http.Handler) http.Handler) {
	routes := map[string]http.HandlerFunc{
		"/transaction/deposit":  c.deposit,
		"/transaction/withdraw": c.withdraw,
		"/transaction/transfer": c.transfer,
	}
	for path, handler := range routes {
		h := http.Handler(handler)
		if authMiddleware != nil {
			h = authMiddleware(h)
		}
		mux.Handle(path, h)
	}
}

func (c *TransactionController) deposit(w http.ResponseWriter, r *http.Request) {
	c.handleBalanceOperation(w, r, c.service.Deposit)
}

func (c *TransactionController) withdraw(w http.ResponseWriter, r *http.Request) {
	c.handleBalanceOperation(w, r, c.service.Withdraw)
}

func (c *TransactionController) handleBalanceOperation(
	w http.ResponseWriter,
	r *http.Request,
	operation func(ctx context.Context, accountID int64, amount domain.MonetaryAmount) (domain.Account, error),
) {
	start := time.Now()

	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, commons.ErrorResponse[models.AccountResponse]("method not allowed"))
		return
	}

	var req models.AccountBalanceRequest
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

	if err := checkCurrenciesSupported(c.exchange, req.MonetaryAmount().Currency); err != nil {
		logError(r, err, nil)
		writeJSON(w, statusForError(err), commons.ErrorResponse[models.AccountResponse]("validation failed", err.Error()))
		return
	}

	account, err := operation(r.Context(), req.AccountIDValue(), req.MonetaryAmount())
	if err != nil {
		logError(r, err, logger.Fields{"accountId": req.AccountID})
		writeJSON(w, statusForError(err), commons.ErrorResponse[models.AccountResponse]("transaction failed", err.Error()))
		return
	}

	response := commons.SuccessResponse("transaction successful", models.NewAccountResponse(account))
	logResponse(r, http.StatusOK, response, start)
	writeJSON(w, http.StatusOK, response)
}

func (c *TransactionController) transfer(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, commons.ErrorResponse[models.AccountResponse]("method not allowed"))
		return
	}

	var req models.MoneyTransferRequest
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

	if err := checkCurrenciesSupported(c.exchange, req.MonetaryAmount().Currency); err != nil {
		logError(r, err, nil)
		writeJSON(w, statusForError(err), commons.ErrorResponse[models.AccountResponse]("validation failed", err.Error()))
		return
	}

	account, err := c.service.Transfer(r.Context(), req.DebitAccountIDValue(), req.CreditAccountIDValue(), req.MonetaryAmount())
	if err != nil {
		logError(r, err, logger.Fields{
			"debitAccountId":  req.DebitAccountID,
			"creditAccountId": req.CreditAccountID,
		})
		writeJSON(w, statusForError(err), commons.ErrorResponse[models.AccountResponse]("transaction failed", err.Error()))
		return
	}

	response := commons.SuccessResponse("transaction successful", models.NewAccountResponse(account))
	logResponse(r, http.StatusOK, response, start)
	writeJSON(w, http.StatusOK, response)
}
