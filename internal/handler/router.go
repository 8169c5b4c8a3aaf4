// Package handler wires the HTTP surface of the pigmy collection portal:
// routing, auth middleware and the translation between domain errors and
// HTTP status codes.
package handler

import (
	"net/http"
	"time"

	"github.com/sanchaya/pigmy-bfa-go/internal/domain"
	"github.com/sanchaya/pigmy-bfa-go/internal/infra/observability"
	"github.com/sanchaya/pigmy-bfa-go/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// NewRouter creates the HTTP router with all routes and middleware.
// Routes follow the API contract of the pigmy collection portal frontend.
func NewRouter(
	ledgerSvc *service.LedgerService,
	accountsSvc *service.AccountsService,
	collectionSvc *service.CollectionService,
	authSvc *service.AuthService,
	metrics *observability.Metrics,
	logger *zap.Logger,
	devSeed bool,
) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(accountsSvc, logger))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {

		// =============================================
		// Authentication (public)
		// =============================================
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", authLoginHandler(authSvc, logger))
			r.Post("/refresh", authRefreshHandler(authSvc, logger))

			r.Group(func(r chi.Router) {
				r.Use(JWTAuthMiddleware(authSvc, logger))
				r.Post("/logout", authLogoutHandler(authSvc, logger))
			})
		})

		// =============================================
		// Portal routes (any authenticated role)
		// =============================================
		r.Group(func(r chi.Router) {
			r.Use(JWTAuthMiddleware(authSvc, logger))

			r.Get("/plans", listPlansHandler(accountsSvc, logger))
			r.Get("/customers/{customerId}/accounts", listCustomerAccountsHandler(accountsSvc, logger))
			r.Get("/accounts/{accountId}", getAccountHandler(accountsSvc, logger))

			// Derived ledger views
			r.Get("/accounts/{accountId}/snapshot", getSnapshotHandler(ledgerSvc, logger))
			r.Get("/accounts/{accountId}/statement", getStatementHandler(ledgerSvc, logger))
			r.Get("/accounts/{accountId}/transactions", getAccountTransactionsHandler(ledgerSvc, logger))
		})

		// =============================================
		// Field collection routes (collector or admin)
		// =============================================
		r.Group(func(r chi.Router) {
			r.Use(JWTAuthMiddleware(authSvc, logger))
			r.Use(RequireRole(logger, "collector", "admin"))

			r.Post("/collections", recordCollectionHandler(collectionSvc, logger))
			r.Get("/collectors/{collectorId}/accounts", listCollectorAccountsHandler(accountsSvc, logger))
			r.Get("/collectors/{collectorId}/summary", collectorSummaryHandler(collectionSvc, logger))
		})

		// =============================================
		// Back-office routes (admin only)
		// =============================================
		r.Group(func(r chi.Router) {
			r.Use(JWTAuthMiddleware(authSvc, logger))
			r.Use(RequireRole(logger, "admin"))

			r.Post("/accounts", openAccountHandler(accountsSvc, logger))
			r.Post("/accounts/{accountId}/close", closeAccountHandler(accountsSvc, logger))
			r.Post("/transactions/{transactionId}/approve", approveTransactionHandler(collectionSvc, logger))
			r.Post("/transactions/{transactionId}/reject", rejectTransactionHandler(collectionSvc, logger))
			r.Get("/metrics/collections", collectionMetricsHandler(metrics))
		})

		// =============================================
		// Dev Tools (testing helpers)
		// =============================================
		if devSeed {
			r.Post("/dev/seed-transactions", devSeedTransactionsHandler(collectionSvc, logger))
		}
	})

	return r
}

// ============================================================
// Metrics & Health
// ============================================================

func collectionMetricsHandler(metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.GetCollectionSnapshot())
	}
}

func healthzHandler(accountsSvc *service.AccountsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		now := time.Now().Format(time.RFC3339)

		services := []domain.ServiceHealth{
			{Name: "pigmy-bfa", Status: "healthy", LatencyMs: 0, LastChecked: now},
		}

		if accountsSvc != nil {
			start := time.Now()
			_, err := accountsSvc.ListPlans(ctx)
			latency := time.Since(start).Milliseconds()
			status := "healthy"
			if err != nil {
				status = "degraded"
			}
			services = append(services, domain.ServiceHealth{
				Name: "corebank", Status: status, LatencyMs: latency, LastChecked: now,
			})
		}

		overallStatus := "healthy"
		for _, s := range services {
			if s.Status == "unhealthy" {
				overallStatus = "unhealthy"
				break
			}
			if s.Status == "degraded" {
				overallStatus = "degraded"
			}
		}

		writeJSON(w, http.StatusOK, domain.HealthStatus{
			Status:   overallStatus,
			Services: services,
		})
	}
}

// ============================================================
// Probes
// ============================================================

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
