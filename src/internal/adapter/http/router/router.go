package router

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type AccountRouteRegistrar interface {
	RegisterRoutes(mux *http.ServeMux, authMiddleware func(http.Handler) http.Handler)
}

type TransactionRouteRegistrar interface {
	RegisterRoutes(mux *http.ServeMux, authMiddleware func(http.Handler) http.Handler)
}

func New(
	accountController AccountRouteRegistrar,
	transactionController TransactionRouteRegistrar,
	authMiddleware func(http.Handler) http.Handler,
) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	if accountController != nil {
		accountController.RegisterRoutes(mux, authMiddleware)
	}
	if transactionController != nil {
		transactionController.RegisterRoutes(mux, authMiddleware)
	}

	return mux
}
