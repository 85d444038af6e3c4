package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/ledgerworks/funds-transfer-service/src/internal/adapter/events"
	"github.com/ledgerworks/funds-transfer-service/src/internal/adapter/exchange"
	"github.com/ledgerworks/funds-transfer-service/src/internal/adapter/http/controller"
	"github.com/ledgerworks/funds-transfer-service/src/internal/adapter/http/middleware"
	"github.com/ledgerworks/funds-transfer-service/src/internal/adapter/http/router"
	"github.com/ledgerworks/funds-transfer-service/src/internal/adapter/repository/implementations"
	"github.com/ledgerworks/funds-transfer-service/src/internal/background"
	"github.com/ledgerworks/funds-transfer-service/src/internal/config"
	"github.com/ledgerworks/funds-transfer-service/src/internal/domain"
	"github.com/ledgerworks/funds-transfer-service/src/internal/logger"
	"github.com/ledgerworks/funds-transfer-service/src/internal/usecase/services"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	startupCtx, cancelStartup := context.WithTimeout(ctx, 30*time.Second)
	defer cancelStartup()

	if err := implementations.RunMigrations(startupCtx, cfg.DatabaseDSN, cfg.MigrationsDir); err != nil {
		log.Fatalf("run migrations: %v", err)
	}

	db, err := implementations.Open(startupCtx, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	accountStore := implementations.NewAccountRepository(db)

	var publisher domain.TransactionEventPublisher = events.NewMemoryPublisher()
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
	}

	exchangeService := services.NewExchangeService(exchange.NewFrankfurterSynchronizer(cfg.ExchangeRatesURL))
	exchangeService.Initialize(startupCtx)

	transactionService := services.NewTransactionService(accountStore, exchangeService, publisher).
		WithRetryPolicy(cfg.TransactionRetryBaseDelay, cfg.TransactionRetryMaxAttempts)
	accountService := services.NewAccountService(accountStore)

	mux := router.New(
		controller.NewAccountController(accountService, exchangeService),
		controller.NewTransactionController(transactionService, exchangeService),
		middleware.BasicAuth(cfg.ChannelID, cfg.ChannelKey),
	)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		logger.Info("http server starting", logger.Fields{
			"addr": cfg.HTTPAddr,
		})
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	group.Go(func() error {
		err := background.RunRateRefresh(groupCtx, exchangeService, cfg.ExchangeRefreshInitialDelay, cfg.ExchangeRefreshInterval)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	group.Go(func() error {
		<-groupCtx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		log.Fatalf("server exited: %v", err)
	}

	logger.Info("server stopped", nil)
}
