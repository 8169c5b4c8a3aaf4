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

var accountsTracer = otel.Tracer("service/accounts")

// AccountsService handles the pigmy account lifecycle against the core store.
type AccountsService struct {
	store   port.CoreStore
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewAccountsService creates a new accounts service.
func NewAccountsService(store port.CoreStore, metrics *observability.Metrics, logger *zap.Logger) *AccountsService {
	return &AccountsService{store: store, metrics: metrics, logger: logger}
}

// ============================================================
// Reads
// ============================================================

func (s *AccountsService) ListAccounts(ctx context.Context, customerID string) ([]domain.Account, error) {
	ctx, span := accountsTracer.Start(ctx, "AccountsService.ListAccounts")
	defer span.End()
	span.SetAttributes(attribute.String("customer.id", customerID))

	return s.store.ListAccounts(ctx, customerID)
}

func (s *AccountsService) ListCollectorAccounts(ctx context.Context, collectorID string) ([]domain.Account, error) {
	ctx, span := accountsTracer.Start(ctx, "AccountsService.ListCollectorAccounts")
	defer span.End()
	span.SetAttributes(attribute.String("collector.id", collectorID))

	return s.store.ListCollectorAccounts(ctx, collectorID)
}

func (s *AccountsService) GetAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	ctx, span := accountsTracer.Start(ctx, "AccountsService.GetAccount")
	defer span.End()

	return s.store.GetAccount(ctx, accountID)
}

func (s *AccountsService) ListPlans(ctx context.Context) ([]domain.Plan, error) {
	ctx, span := accountsTracer.Start(ctx, "AccountsService.ListPlans")
	defer span.End()

	return s.store.ListPlans(ctx)
}

// ============================================================
// Open — POST /v1/accounts
// ============================================================

func (s *AccountsService) OpenAccount(ctx context.Context, req *domain.OpenAccountRequest) (*domain.Account, error) {
	ctx, span := accountsTracer.Start(ctx, "AccountsService.OpenAccount")
	defer span.End()

	if req.CustomerID == "" {
		return nil, &domain.ErrValidation{Field: "customerId", Message: "required"}
	}
	if req.Amount <= 0 {
		return nil, &domain.ErrValidation{Field: "amount", Message: "must be positive"}
	}
	if req.Duration <= 0 {
		return nil, &domain.ErrValidation{Field: "duration", Message: "must be positive"}
	}
	if req.AccountType != "" && !domain.Cadence(req.AccountType).Valid() {
		return nil, &domain.ErrValidation{Field: "accountType", Message: "must be daily, weekly or monthly"}
	}
	if req.StartDate != "" {
		if _, err := time.Parse("2006-01-02", req.StartDate); err != nil {
			return nil, &domain.ErrValidation{Field: "startDate", Message: "must be YYYY-MM-DD"}
		}
	}

	// The customer must exist before an account is opened for them.
	if _, err := s.store.GetCustomer(ctx, req.CustomerID); err != nil {
		return nil, err
	}

	// A referenced plan must exist and be open for enrollment.
	if req.PlanID != "" {
		plan, err := s.store.GetPlan(ctx, req.PlanID)
		if err != nil {
			return nil, err
		}
		if !plan.IsActive {
			return nil, &domain.ErrValidation{Field: "planId", Message: "plan is not active"}
		}
	}

	account, err := s.store.CreateAccount(ctx, req)
	if err != nil {
		return nil, err
	}

	s.logger.Info("account opened",
		zap.String("account_id", account.ID),
		zap.String("customer_id", account.CustomerID),
		zap.Float64("amount", account.Amount),
		zap.Int("duration", account.Duration),
	)

	return account, nil
}

// ============================================================
// Close — POST /v1/accounts/{id}/close
// ============================================================

func (s *AccountsService) CloseAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	ctx, span := accountsTracer.Start(ctx, "AccountsService.CloseAccount")
	defer span.End()

	account, err := s.store.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account.Status == domain.AccountClosed {
		return nil, &domain.ErrConflict{Message: "account is already closed"}
	}

	if err := s.store.UpdateAccountStatus(ctx, accountID, domain.AccountClosed); err != nil {
		return nil, err
	}
	account.Status = domain.AccountClosed

	s.logger.Info("account closed", zap.String("account_id", accountID))
	return account, nil
}
