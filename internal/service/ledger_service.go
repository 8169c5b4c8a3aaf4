// Package service provides the business logic layer (use cases).
// LedgerService projects account ledgers; AccountsService, CollectionService
// and AuthService cover account lifecycle, field collections and auth.
package service

import (
	"context"
	"time"

	"github.com/sanchaya/pigmy-bfa-go/internal/domain"
	"github.com/sanchaya/pigmy-bfa-go/internal/infra/observability"
	"github.com/sanchaya/pigmy-bfa-go/internal/ledger"
	"github.com/sanchaya/pigmy-bfa-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var ledgerTracer = otel.Tracer("service/ledger")

// LedgerService computes derived ledger views for pigmy accounts.
// Everything it returns is recomputed from the account and its full
// transaction history on each request; nothing derived is persisted.
type LedgerService struct {
	accounts     port.AccountFetcher
	transactions port.TransactionsFetcher
	cache        port.Cache[*domain.Account]
	metrics      *observability.Metrics
	logger       *zap.Logger
	now          func() time.Time
}

// NewLedgerService creates a new ledger service.
func NewLedgerService(
	accounts port.AccountFetcher,
	transactions port.TransactionsFetcher,
	cache port.Cache[*domain.Account],
	metrics *observability.Metrics,
	logger *zap.Logger,
) *LedgerService {
	return &LedgerService{
		accounts:     accounts,
		transactions: transactions,
		cache:        cache,
		metrics:      metrics,
		logger:       logger,
		now:          time.Now,
	}
}

// GetSnapshot returns the derived financial state of one account.
func (s *LedgerService) GetSnapshot(ctx context.Context, accountID string) (*domain.LedgerSnapshot, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.GetSnapshot")
	defer span.End()
	span.SetAttributes(attribute.String("account.id", accountID))

	start := time.Now()
	defer func() {
		s.metrics.RecordRequestDuration("ledger_snapshot", time.Since(start))
	}()

	account, txns, err := s.fetchAccountAndTransactions(ctx, accountID)
	if err != nil {
		return nil, err
	}

	snap := ledger.Project(account, txns, s.now().UTC())
	s.metrics.IncrSnapshotComputed()
	s.metrics.ObserveMissedDeposits(snap.MissedDeposits)

	s.logger.Debug("ledger snapshot computed",
		zap.String("account_id", accountID),
		zap.Int("transactions", snap.TransactionsCount),
		zap.Int("missed", snap.MissedDeposits),
	)

	return snap, nil
}

// GetStatement returns the running-balance statement for one account,
// newest entry first.
func (s *LedgerService) GetStatement(ctx context.Context, accountID string) (*domain.StatementResponse, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.GetStatement")
	defer span.End()
	span.SetAttributes(attribute.String("account.id", accountID))

	start := time.Now()
	defer func() {
		s.metrics.RecordRequestDuration("ledger_statement", time.Since(start))
	}()

	account, txns, err := s.fetchAccountAndTransactions(ctx, accountID)
	if err != nil {
		return nil, err
	}

	entries := ledger.BuildStatement(txns)

	return &domain.StatementResponse{
		AccountID:      account.ID,
		AccountNumber:  account.AccountNumber,
		Entries:        entries,
		ClosingBalance: ledger.ClosingBalance(entries),
		GeneratedAt:    s.now().UTC().Format(time.RFC3339),
	}, nil
}

// GetTransactions returns the raw transaction history as recorded upstream,
// pending entries included.
func (s *LedgerService) GetTransactions(ctx context.Context, accountID string) ([]domain.Transaction, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.GetTransactions")
	defer span.End()
	span.SetAttributes(attribute.String("account.id", accountID))

	// Resolve the account first so a bad ID is a 404, not an empty list.
	if _, err := s.getAccount(ctx, accountID); err != nil {
		return nil, err
	}

	return s.transactions.GetTransactions(ctx, accountID)
}

// InvalidateAccount drops the cached account after a mutation.
func (s *LedgerService) InvalidateAccount(accountID string) {
	s.cache.Delete(accountID)
}

// fetchAccountAndTransactions loads both inputs of a projection
// concurrently. Either failure cancels the other fetch.
func (s *LedgerService) fetchAccountAndTransactions(ctx context.Context, accountID string) (*domain.Account, []domain.Transaction, error) {
	var (
		account *domain.Account
		txns    []domain.Transaction
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		account, err = s.getAccount(gctx, accountID)
		return err
	})

	g.Go(func() error {
		var err error
		txns, err = s.transactions.GetTransactions(gctx, accountID)
		return err
	})

	if err := g.Wait(); err != nil {
		s.metrics.IncrRequest("error")
		return nil, nil, err
	}

	s.metrics.IncrRequest("success")
	return account, txns, nil
}

func (s *LedgerService) getAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	if cached, ok := s.cache.Get(accountID); ok {
		s.metrics.IncrCacheHit("account")
		return cached, nil
	}
	s.metrics.IncrCacheMiss("account")

	account, err := s.accounts.GetAccount(ctx, accountID)
	if err != nil {
		s.metrics.IncrExternalError("accounts")
		return nil, err
	}

	s.cache.Set(accountID, account)
	return account, nil
}
