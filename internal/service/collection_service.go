package service

import (
	"context"
	"time"

	"github.com/sanchaya/pigmy-bfa-go/internal/domain"
	"github.com/sanchaya/pigmy-bfa-go/internal/infra/observability"
	"github.com/sanchaya/pigmy-bfa-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var collectionTracer = otel.Tracer("service/collection")

// CollectionService records in-person deposits made through field
// collectors and answers collector-facing queries.
type CollectionService struct {
	store   port.CoreStore
	cache   port.Cache[*domain.Account]
	metrics *observability.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewCollectionService creates a new collection service.
func NewCollectionService(store port.CoreStore, cache port.Cache[*domain.Account], metrics *observability.Metrics, logger *zap.Logger) *CollectionService {
	return &CollectionService{
		store:   store,
		cache:   cache,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}
}

// ============================================================
// Record — POST /v1/collections
// ============================================================

// RecordCollection writes one collected deposit. Requests carrying an
// idempotency key are safe to retry: a duplicate key returns the original
// transaction instead of creating a second one.
func (s *CollectionService) RecordCollection(ctx context.Context, req *domain.CollectionRequest) (*domain.CollectionResponse, error) {
	ctx, span := collectionTracer.Start(ctx, "CollectionService.RecordCollection")
	defer span.End()
	span.SetAttributes(
		attribute.String("account.id", req.AccountID),
		attribute.String("collector.id", req.CollectorID),
	)

	if req.AccountID == "" {
		return nil, &domain.ErrValidation{Field: "accountId", Message: "required"}
	}
	if req.CollectorID == "" {
		return nil, &domain.ErrValidation{Field: "collectorId", Message: "required"}
	}
	if req.Amount <= 0 {
		return nil, &domain.ErrValidation{Field: "amount", Message: "must be positive"}
	}

	method := req.Method
	if method == "" {
		method = "cash"
	}

	date := s.now().UTC()
	if req.Date != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			return nil, &domain.ErrValidation{Field: "date", Message: "must be YYYY-MM-DD"}
		}
		date = parsed
	}

	// Replay of a previously recorded request.
	if req.IdempotencyKey != "" {
		existing, err := s.store.GetTransactionByReference(ctx, req.IdempotencyKey)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			s.logger.Info("collection replayed via idempotency key",
				zap.String("transaction_id", existing.ID),
				zap.String("key", req.IdempotencyKey),
			)
			return collectionResponse(existing), nil
		}
	}

	account, err := s.store.GetAccount(ctx, req.AccountID)
	if err != nil {
		return nil, err
	}
	if account.Status != domain.AccountActive {
		return nil, &domain.ErrAccountNotOperable{AccountID: account.ID, Status: account.Status}
	}

	created, err := s.store.CreateTransaction(ctx, &domain.Transaction{
		AccountID:   req.AccountID,
		Type:        domain.TxDeposit,
		Amount:      req.Amount,
		Date:        date,
		Status:      domain.TxCompleted,
		Method:      method,
		CollectorID: req.CollectorID,
		Reference:   req.IdempotencyKey,
	})
	if err != nil {
		return nil, err
	}

	// Snapshots must see the new deposit on the next read.
	s.cache.Delete(req.AccountID)
	s.metrics.IncrCollectionRecorded(method)

	s.logger.Info("collection recorded",
		zap.String("transaction_id", created.ID),
		zap.String("account_id", req.AccountID),
		zap.String("collector_id", req.CollectorID),
		zap.Float64("amount", req.Amount),
		zap.String("method", method),
	)

	return collectionResponse(created), nil
}

func collectionResponse(tx *domain.Transaction) *domain.CollectionResponse {
	return &domain.CollectionResponse{
		TransactionID: tx.ID,
		AccountID:     tx.AccountID,
		Amount:        tx.Amount,
		Status:        tx.Status,
		Timestamp:     tx.Date.UTC().Format(time.RFC3339),
	}
}

// ============================================================
// Collector day summary — GET /v1/collectors/{id}/summary
// ============================================================

// GetCollectorSummary aggregates a collector's settled deposits for one
// calendar day. Pending and failed entries are not counted.
func (s *CollectionService) GetCollectorSummary(ctx context.Context, collectorID string, day time.Time) (*domain.CollectorDaySummary, error) {
	ctx, span := collectionTracer.Start(ctx, "CollectionService.GetCollectorSummary")
	defer span.End()
	span.SetAttributes(attribute.String("collector.id", collectorID))

	if _, err := s.store.GetCollector(ctx, collectorID); err != nil {
		return nil, err
	}

	txns, err := s.store.ListCollectorTransactions(ctx, collectorID, day)
	if err != nil {
		return nil, err
	}

	summary := &domain.CollectorDaySummary{
		CollectorID: collectorID,
		Date:        day.Format("2006-01-02"),
	}
	accounts := map[string]struct{}{}
	for _, tx := range txns {
		if !tx.Settled() || tx.Type != domain.TxDeposit {
			continue
		}
		summary.TotalCollected += tx.Amount
		summary.DepositCount++
		accounts[tx.AccountID] = struct{}{}
	}
	summary.AccountsNumber = len(accounts)

	return summary, nil
}

// ============================================================
// Approve / reject — POST /v1/transactions/{id}/approve|reject
// ============================================================

// ApproveTransaction settles a pending transaction.
func (s *CollectionService) ApproveTransaction(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	return s.resolvePending(ctx, transactionID, domain.TxCompleted)
}

// RejectTransaction marks a pending transaction as failed.
func (s *CollectionService) RejectTransaction(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	return s.resolvePending(ctx, transactionID, domain.TxFailed)
}

func (s *CollectionService) resolvePending(ctx context.Context, transactionID, status string) (*domain.Transaction, error) {
	ctx, span := collectionTracer.Start(ctx, "CollectionService.resolvePending")
	defer span.End()
	span.SetAttributes(attribute.String("transaction.id", transactionID))

	tx, err := s.store.GetTransaction(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if tx.Status != domain.TxPending {
		return nil, &domain.ErrConflict{Message: "transaction is not pending"}
	}

	updated, err := s.store.UpdateTransactionStatus(ctx, transactionID, status)
	if err != nil {
		return nil, err
	}

	s.cache.Delete(tx.AccountID)

	s.logger.Info("pending transaction resolved",
		zap.String("transaction_id", transactionID),
		zap.String("status", status),
	)

	return updated, nil
}
