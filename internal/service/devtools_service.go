package service

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/sanchaya/pigmy-bfa-go/internal/domain"

	"go.uber.org/zap"
)

// ============================================================
// Dev Tools
// ============================================================

// SeedTransactions generates plausible deposit history for an account.
// Dev-only; the route is registered only when DEV_SEED is enabled.
func (s *CollectionService) SeedTransactions(ctx context.Context, req *domain.SeedTransactionsRequest) (*domain.SeedTransactionsResponse, error) {
	ctx, span := collectionTracer.Start(ctx, "CollectionService.SeedTransactions")
	defer span.End()

	if req.AccountID == "" {
		return nil, &domain.ErrValidation{Field: "accountId", Message: "required"}
	}
	if req.Count <= 0 || req.Count > 200 {
		return nil, &domain.ErrValidation{Field: "count", Message: "must be between 1 and 200"}
	}
	days := req.Days
	if days <= 0 {
		days = 30
	}

	account, err := s.store.GetAccount(ctx, req.AccountID)
	if err != nil {
		return nil, err
	}

	amount := account.Amount
	if amount <= 0 {
		amount = 100
	}
	methods := []string{"cash", "cash", "cash", "upi", "cheque"}

	generated := 0
	now := s.now().UTC()
	for i := 0; i < req.Count; i++ {
		daysAgo := rand.Intn(days)
		date := now.AddDate(0, 0, -daysAgo)

		// Occasional pending entry so approval flows have data to work on.
		status := domain.TxCompleted
		if rand.Intn(10) == 0 {
			status = domain.TxPending
		}

		_, err := s.store.CreateTransaction(ctx, &domain.Transaction{
			AccountID:   req.AccountID,
			Type:        domain.TxDeposit,
			Amount:      amount,
			Date:        date,
			Status:      status,
			Method:      methods[rand.Intn(len(methods))],
			CollectorID: account.CollectorID,
		})
		if err != nil {
			s.logger.Warn("DEV: failed to insert transaction", zap.Int("index", i), zap.Error(err))
			continue
		}
		generated++
	}

	s.cache.Delete(req.AccountID)

	s.logger.Info("DEV: transactions seeded",
		zap.String("account_id", req.AccountID),
		zap.Int("generated", generated),
	)

	return &domain.SeedTransactionsResponse{
		Success:   true,
		Generated: generated,
		Message:   fmt.Sprintf("%d transactions seeded over the last %d days", generated, days),
	}, nil
}
