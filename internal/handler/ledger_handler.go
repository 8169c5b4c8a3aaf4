package handler

import (
	"net/http"

	"github.com/sanchaya/pigmy-bfa-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ============================================================
// Ledger Handlers
// ============================================================

func getSnapshotHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/accounts/{accountId}/snapshot")
		defer span.End()

		accountID := chi.URLParam(r, "accountId")
		snapshot, err := svc.GetSnapshot(ctx, accountID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, snapshot)
	}
}

func getStatementHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/accounts/{accountId}/statement")
		defer span.End()

		accountID := chi.URLParam(r, "accountId")
		statement, err := svc.GetStatement(ctx, accountID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, statement)
	}
}

func getAccountTransactionsHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/accounts/{accountId}/transactions")
		defer span.End()

		accountID := chi.URLParam(r, "accountId")
		txns, err := svc.GetTransactions(ctx, accountID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		// Simple offset pagination over the upstream-ordered list.
		page, pageSize := parsePagination(r)
		start := (page - 1) * pageSize
		if start > len(txns) {
			start = len(txns)
		}
		end := start + pageSize
		if end > len(txns) {
			end = len(txns)
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"transactions": txns[start:end],
			"page":         page,
			"page_size":    pageSize,
			"total":        len(txns),
		})
	}
}
