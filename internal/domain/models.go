// Package domain defines the core business entities for the pigmy
// collection BFF. These models are the canonical shapes used throughout
// the service; upstream payload quirks are normalized into them at the
// adapter boundary and never leak past it.
package domain

import "time"

// ============================================================
// Cadence
// ============================================================

// Cadence is the recurring period unit of a savings plan.
type Cadence string

const (
	CadenceDaily   Cadence = "daily"
	CadenceWeekly  Cadence = "weekly"
	CadenceMonthly Cadence = "monthly"
)

// Valid reports whether c is one of the three supported cadences.
func (c Cadence) Valid() bool {
	switch c {
	case CadenceDaily, CadenceWeekly, CadenceMonthly:
		return true
	}
	return false
}

// ============================================================
// Plans
// ============================================================

// Plan describes a savings product a pigmy account is opened under.
type Plan struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Type         string  `json:"type,omitempty"` // daily, weekly, monthly; may be absent upstream
	Amount       float64 `json:"amount"`         // suggested per-period deposit
	Duration     int     `json:"duration"`       // committed periods
	InterestRate float64 `json:"interest_rate"`  // percent per annum, simple; 0 = unset
	IsActive     bool    `json:"is_active"`
}

// ============================================================
// Accounts
// ============================================================

// Account statuses.
const (
	AccountActive    = "active"
	AccountCompleted = "completed"
	AccountClosed    = "closed"
	AccountPending   = "pending"
)

// Account represents a pigmy savings account.
type Account struct {
	ID            string    `json:"id"`
	AccountNumber string    `json:"account_number"`
	CustomerID    string    `json:"customer_id"`
	CollectorID   string    `json:"collector_id,omitempty"`
	PlanID        string    `json:"plan_id,omitempty"`
	Plan          *Plan     `json:"plan,omitempty"`
	AccountType   string    `json:"account_type,omitempty"` // explicit cadence hint; may be absent
	Amount        float64   `json:"amount"`                 // per-period deposit amount
	StartDate     time.Time `json:"start_date"`
	Duration      int       `json:"duration"`                // periods committed
	InterestRate  float64   `json:"interest_rate,omitempty"` // percent per annum; 0 = unset
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

// ============================================================
// Transactions
// ============================================================

// Transaction kinds.
const (
	TxDeposit    = "deposit"
	TxWithdrawal = "withdrawal"
)

// Transaction statuses. Anything other than pending counts as settled.
const (
	TxPending   = "pending"
	TxCompleted = "completed"
	TxFailed    = "failed"
)

// Transaction is a single recorded deposit or withdrawal on an account.
type Transaction struct {
	ID          string    `json:"id"`
	AccountID   string    `json:"account_id"`
	Type        string    `json:"type"` // deposit, withdrawal
	Amount      float64   `json:"amount"`
	Date        time.Time `json:"date"`
	Status      string    `json:"status"`
	Method      string    `json:"method,omitempty"` // cash, upi, cheque
	CollectorID string    `json:"collector_id,omitempty"`
	Reference   string    `json:"reference,omitempty"` // client idempotency key
	CreatedAt   time.Time `json:"created_at"`
}

// Settled reports whether the transaction counts toward balances and
// statements (i.e. it is not pending).
func (t Transaction) Settled() bool {
	return t.Status != TxPending
}

// ============================================================
// Derived ledger views (recomputed on demand, never persisted)
// ============================================================

// LedgerSnapshot is the derived financial state of one account at a
// reference instant. It is rebuilt from the account and its transactions
// on every request.
type LedgerSnapshot struct {
	AccountID         string     `json:"account_id"`
	Cadence           Cadence    `json:"cadence"`
	TotalDeposits     float64    `json:"total_deposits"`
	TotalWithdrawals  float64    `json:"total_withdrawals"`
	Balance           float64    `json:"balance"`
	TransactionsCount int        `json:"transactions_count"`
	ExpectedDeposits  int        `json:"expected_deposits"`
	MissedDeposits    int        `json:"missed_deposits"`
	LastDepositDate   *time.Time `json:"last_deposit_date,omitempty"`
	NextDueDate       time.Time  `json:"next_due_date"`
	InterestRate      float64    `json:"interest_rate"`
	AccruedInterest   float64    `json:"accrued_interest"`
	MaturityAmount    float64    `json:"maturity_amount"`
	MaturityDate      time.Time  `json:"maturity_date"`
	GeneratedAt       time.Time  `json:"generated_at"`
}

// StatementEntry is one line of a running-balance statement. PaidIn is set
// for deposits, PaidOut for withdrawals; Balance is the running total as of
// this transaction in chronological order.
type StatementEntry struct {
	TransactionID string    `json:"transaction_id"`
	Date          time.Time `json:"date"`
	Type          string    `json:"type"`
	Method        string    `json:"method,omitempty"`
	PaidIn        *float64  `json:"paid_in,omitempty"`
	PaidOut       *float64  `json:"paid_out,omitempty"`
	Balance       float64   `json:"balance"`
}

// ============================================================
// Customers & Collectors
// ============================================================

// Customer is an account holder served by a field collector.
type Customer struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	Email     string    `json:"email,omitempty"`
	Address   string    `json:"address,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// Collector is a field agent who collects deposits in person.
type Collector struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	Area      string    `json:"area,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// CollectorDaySummary aggregates a collector's settled collections for one
// calendar day.
type CollectorDaySummary struct {
	CollectorID    string  `json:"collector_id"`
	Date           string  `json:"date"` // YYYY-MM-DD
	TotalCollected float64 `json:"total_collected"`
	DepositCount   int     `json:"deposit_count"`
	AccountsNumber int     `json:"accounts_visited"`
}

// ============================================================
// API request / response types (portal contract)
// ============================================================

// OpenAccountRequest is the body for POST /v1/accounts.
type OpenAccountRequest struct {
	CustomerID  string  `json:"customerId"`
	CollectorID string  `json:"collectorId,omitempty"`
	PlanID      string  `json:"planId,omitempty"`
	AccountType string  `json:"accountType,omitempty"`
	Amount      float64 `json:"amount"`
	Duration    int     `json:"duration"`
	StartDate   string  `json:"startDate,omitempty"` // YYYY-MM-DD, empty = today
}

// CollectionRequest is the body for POST /v1/collections — a collector
// recording an in-person deposit.
type CollectionRequest struct {
	IdempotencyKey string  `json:"idempotencyKey,omitempty"`
	AccountID      string  `json:"accountId"`
	Amount         float64 `json:"amount"`
	Method         string  `json:"method,omitempty"`
	CollectorID    string  `json:"collectorId"`
	Date           string  `json:"date,omitempty"` // YYYY-MM-DD, empty = today
}

// CollectionResponse is returned by POST /v1/collections.
type CollectionResponse struct {
	TransactionID string  `json:"transactionId"`
	AccountID     string  `json:"accountId"`
	Amount        float64 `json:"amount"`
	Status        string  `json:"status"`
	Timestamp     string  `json:"timestamp"`
}

// StatementResponse is returned by GET /v1/accounts/{id}/statement.
type StatementResponse struct {
	AccountID      string           `json:"accountId"`
	AccountNumber  string           `json:"accountNumber"`
	Entries        []StatementEntry `json:"entries"`
	ClosingBalance float64          `json:"closingBalance"`
	GeneratedAt    string           `json:"generatedAt"`
}

// LoginRequest is the body for POST /v1/auth/login.
type LoginRequest struct {
	Username string `json:"username"` // account number or staff login
	Password string `json:"password"`
}

// LoginResponse is the body for 200 from POST /v1/auth/login.
type LoginResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int    `json:"expiresIn"`
	SubjectID    string `json:"subjectId"`
	Role         string `json:"role"`
	Name         string `json:"name"`
}

// RefreshRequest is the body for POST /v1/auth/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// AuthCredential represents stored login credentials.
type AuthCredential struct {
	ID           string     `json:"id"`
	SubjectID    string     `json:"subject_id"`
	Username     string     `json:"username"`
	Role         string     `json:"role"` // admin, collector, customer
	Name         string     `json:"name"`
	PasswordHash string     `json:"password_hash"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
}

// AuthRefreshToken is a refresh token stored hashed at rest.
type AuthRefreshToken struct {
	ID        string    `json:"id"`
	SubjectID string    `json:"subject_id"`
	Role      string    `json:"role"`
	TokenHash string    `json:"token_hash"`
	ExpiresAt time.Time `json:"expires_at"`
	Revoked   bool      `json:"revoked"`
}

// SeedTransactionsRequest is the body for POST /v1/dev/seed-transactions.
type SeedTransactionsRequest struct {
	AccountID string `json:"accountId"`
	Count     int    `json:"count"`
	Days      int    `json:"days"` // spread over how many days back (default 30)
}

// SeedTransactionsResponse is returned by POST /v1/dev/seed-transactions.
type SeedTransactionsResponse struct {
	Success   bool   `json:"success"`
	Generated int    `json:"generated"`
	Message   string `json:"message"`
}

// ============================================================
// Health & metrics API responses
// ============================================================

// HealthStatus is returned by GET /healthz.
type HealthStatus struct {
	Status   string          `json:"status"` // healthy, degraded, unhealthy
	Services []ServiceHealth `json:"services"`
}

// ServiceHealth is the health of one upstream dependency.
type ServiceHealth struct {
	Name        string `json:"name"`
	Status      string `json:"status"`
	LatencyMs   int64  `json:"latencyMs"`
	LastChecked string `json:"lastChecked"`
}

// CollectionMetrics is returned by GET /v1/metrics/collections.
type CollectionMetrics struct {
	TotalRequests       int64   `json:"totalRequests"`
	ErrorRate           float64 `json:"errorRate"`
	CollectionsRecorded int64   `json:"collectionsRecorded"`
	SnapshotsComputed   int64   `json:"snapshotsComputed"`
	CacheHitRate        float64 `json:"cacheHitRate"`
	Period              string  `json:"period"`
}
