// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"
	"time"

	"github.com/sanchaya/pigmy-bfa-go/internal/domain"
)

// AccountFetcher retrieves account data from the upstream accounts API.
type AccountFetcher interface {
	GetAccount(ctx context.Context, accountID string) (*domain.Account, error)
	ListAccounts(ctx context.Context, customerID string) ([]domain.Account, error)
}

// TransactionsFetcher retrieves transaction history for an account.
type TransactionsFetcher interface {
	GetTransactions(ctx context.Context, accountID string) ([]domain.Transaction, error)
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}

// CoreStore defines all data operations against the core banking backend.
// Implemented by the corebank adapter (or any other persistence layer).
type CoreStore interface {
	// Accounts
	ListAccounts(ctx context.Context, customerID string) ([]domain.Account, error)
	ListCollectorAccounts(ctx context.Context, collectorID string) ([]domain.Account, error)
	GetAccount(ctx context.Context, accountID string) (*domain.Account, error)
	CreateAccount(ctx context.Context, req *domain.OpenAccountRequest) (*domain.Account, error)
	UpdateAccountStatus(ctx context.Context, accountID, status string) error

	// Plans
	ListPlans(ctx context.Context) ([]domain.Plan, error)
	GetPlan(ctx context.Context, planID string) (*domain.Plan, error)

	// Transactions
	GetTransactions(ctx context.Context, accountID string) ([]domain.Transaction, error)
	GetTransaction(ctx context.Context, transactionID string) (*domain.Transaction, error)
	GetTransactionByReference(ctx context.Context, reference string) (*domain.Transaction, error)
	CreateTransaction(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error)
	UpdateTransactionStatus(ctx context.Context, transactionID, status string) (*domain.Transaction, error)
	ListCollectorTransactions(ctx context.Context, collectorID string, day time.Time) ([]domain.Transaction, error)

	// Customers and collectors
	GetCustomer(ctx context.Context, customerID string) (*domain.Customer, error)
	GetCollector(ctx context.Context, collectorID string) (*domain.Collector, error)
}

// AuthStore defines all data operations for the authentication system.
type AuthStore interface {
	// Credentials
	GetCredentialsByUsername(ctx context.Context, username string) (*domain.AuthCredential, error)

	// Refresh tokens
	StoreRefreshToken(ctx context.Context, subjectID, role, tokenHash string, expiresAt time.Time) error
	GetRefreshToken(ctx context.Context, tokenHash string) (*domain.AuthRefreshToken, error)
	RevokeRefreshToken(ctx context.Context, tokenHash string) error
	RevokeAllRefreshTokens(ctx context.Context, subjectID string) error
}
