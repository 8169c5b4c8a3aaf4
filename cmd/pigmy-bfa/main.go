package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sanchaya/pigmy-bfa-go/internal/config"
	"github.com/sanchaya/pigmy-bfa-go/internal/domain"
	"github.com/sanchaya/pigmy-bfa-go/internal/handler"
	"github.com/sanchaya/pigmy-bfa-go/internal/infra/cache"
	"github.com/sanchaya/pigmy-bfa-go/internal/infra/client"
	"github.com/sanchaya/pigmy-bfa-go/internal/infra/corebank"
	"github.com/sanchaya/pigmy-bfa-go/internal/infra/observability"
	"github.com/sanchaya/pigmy-bfa-go/internal/infra/resilience"
	"github.com/sanchaya/pigmy-bfa-go/internal/port"
	"github.com/sanchaya/pigmy-bfa-go/internal/service"

	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.Bool("use_corebank", cfg.UseCoreBank),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
		zap.Duration("jwt_access_ttl", cfg.JWTAccessTTL),
		zap.Duration("jwt_refresh_ttl", cfg.JWTRefreshTTL),
		zap.Bool("dev_seed", cfg.DevSeed),
	)

	// The core store backs auth, account lifecycle and collections; the
	// service cannot run without it. USE_COREBANK only switches the ledger
	// read path between the core store and the standalone HTTP APIs.
	if cfg.CoreBankURL == "" {
		logger.Fatal("COREBANK_URL is required")
	}

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "pigmy-bfa")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Cache ---
	accountCache := cache.New[*domain.Account](cfg.CacheTTL)

	// --- Resilience ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}
	cb := resilience.NewCircuitBreaker("external-apis")

	// --- Clients ---
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	corebankClient := corebank.NewClient(
		httpClient,
		cfg.CoreBankURL,
		cfg.CoreBankAnonKey,
		cfg.CoreBankServiceKey,
		cb,
		resilienceCfg,
		logger,
	)

	var accountsFetcher port.AccountFetcher
	var transactionsFetcher port.TransactionsFetcher

	if cfg.UseCoreBank {
		logger.Info("ledger reads use the core banking backend",
			zap.String("corebank_url", cfg.CoreBankURL),
		)
		accountsFetcher = corebankClient
		transactionsFetcher = corebankClient
	} else {
		logger.Info("ledger reads use the standalone HTTP APIs")
		accountsFetcher = client.NewAccountsClient(httpClient, cfg.AccountsAPIURL, cb, resilienceCfg)
		transactionsFetcher = client.NewTransactionsClient(httpClient, cfg.TransactionsAPIURL, cb, resilienceCfg)
	}

	// --- Services ---
	ledgerSvc := service.NewLedgerService(accountsFetcher, transactionsFetcher, accountCache, metrics, logger)
	accountsSvc := service.NewAccountsService(corebankClient, metrics, logger)
	collectionSvc := service.NewCollectionService(corebankClient, accountCache, metrics, logger)
	authSvc := service.NewAuthService(corebankClient, cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL, logger)

	// --- Router ---
	router := handler.NewRouter(ledgerSvc, accountsSvc, collectionSvc, authSvc, metrics, logger, cfg.DevSeed)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
