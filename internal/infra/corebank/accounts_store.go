package corebank

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sanchaya/pigmy-bfa-go/internal/domain"
	"github.com/sanchaya/pigmy-bfa-go/internal/infra/resilience"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// ============================================================
// Accounts & plans — CRUD via the core REST API
// ============================================================

// rawAccount maps core API columns. Older rows carry the cadence in
// odd shapes (mixed case, embedded in the plan name), so everything is
// normalized here before it reaches the domain.
type rawAccount struct {
	ID            string   `json:"id"`
	AccountNumber string   `json:"account_number"`
	CustomerID    string   `json:"customer_id"`
	CollectorID   string   `json:"collector_id"`
	PlanID        string   `json:"plan_id"`
	Plan          *rawPlan `json:"plans"` // embedded via select=*,plans(*)
	AccountType   string   `json:"account_type"`
	Amount        float64  `json:"amount"`
	StartDate     string   `json:"start_date"`
	Duration      int      `json:"duration"`
	InterestRate  float64  `json:"interest_rate"`
	Status        string   `json:"status"`
	CreatedAt     string   `json:"created_at"`
}

type rawPlan struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Type         string  `json:"type"`
	Amount       float64 `json:"amount"`
	Duration     int     `json:"duration"`
	InterestRate float64 `json:"interest_rate"`
	IsActive     bool    `json:"is_active"`
}

func (r rawAccount) toDomain() domain.Account {
	a := domain.Account{
		ID:            r.ID,
		AccountNumber: r.AccountNumber,
		CustomerID:    r.CustomerID,
		CollectorID:   r.CollectorID,
		PlanID:        r.PlanID,
		AccountType:   strings.ToLower(strings.TrimSpace(r.AccountType)),
		Amount:        r.Amount,
		StartDate:     parseDate(r.StartDate),
		Duration:      r.Duration,
		InterestRate:  r.InterestRate,
		Status:        strings.ToLower(strings.TrimSpace(r.Status)),
		CreatedAt:     parseDate(r.CreatedAt),
	}
	if r.Plan != nil {
		a.Plan = &domain.Plan{
			ID:           r.Plan.ID,
			Name:         r.Plan.Name,
			Type:         strings.ToLower(strings.TrimSpace(r.Plan.Type)),
			Amount:       r.Plan.Amount,
			Duration:     r.Plan.Duration,
			InterestRate: r.Plan.InterestRate,
			IsActive:     r.Plan.IsActive,
		}
	}
	// Accounts without an explicit start fall back to creation time so
	// schedule math always has an anchor.
	if a.StartDate.IsZero() {
		a.StartDate = a.CreatedAt
	}
	return a
}

// parseDate accepts RFC3339 timestamps and bare YYYY-MM-DD dates.
func parseDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func (c *Client) ListAccounts(ctx context.Context, customerID string) ([]domain.Account, error) {
	ctx, span := tracer.Start(ctx, "CoreBank.ListAccounts")
	defer span.End()

	path := fmt.Sprintf("accounts?customer_id=eq.%s&select=*,plans(*)&order=created_at.asc", customerID)
	return c.listAccounts(ctx, path)
}

func (c *Client) ListCollectorAccounts(ctx context.Context, collectorID string) ([]domain.Account, error) {
	ctx, span := tracer.Start(ctx, "CoreBank.ListCollectorAccounts")
	defer span.End()

	path := fmt.Sprintf("accounts?collector_id=eq.%s&select=*,plans(*)&order=created_at.asc", collectorID)
	return c.listAccounts(ctx, path)
}

func (c *Client) listAccounts(ctx context.Context, path string) ([]domain.Account, error) {
	body, err := c.doRequest(ctx, http.MethodGet, path)
	if err != nil {
		return nil, err
	}
	if body == nil || string(body) == "[]" {
		return []domain.Account{}, nil
	}

	var rows []rawAccount
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode accounts: %w", err)
	}

	accounts := make([]domain.Account, 0, len(rows))
	for _, r := range rows {
		accounts = append(accounts, r.toDomain())
	}
	return accounts, nil
}

// GetAccount fetches a single account with its plan embedded. This is on
// the hot ledger path, so it runs behind the circuit breaker with retries.
func (c *Client) GetAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	ctx, span := tracer.Start(ctx, "CoreBank.GetAccount")
	defer span.End()
	span.SetAttributes(attribute.String("account.id", accountID))

	var account *domain.Account

	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			path := fmt.Sprintf("accounts?id=eq.%s&select=*,plans(*)&limit=1", accountID)
			body, err := c.doRequest(ctx, http.MethodGet, path)
			if err != nil {
				return err
			}
			if body == nil || string(body) == "[]" {
				return &domain.ErrNotFound{Resource: "account", ID: accountID}
			}

			var rows []rawAccount
			if err := json.Unmarshal(body, &rows); err != nil {
				return fmt.Errorf("decode account: %w", err)
			}
			if len(rows) == 0 {
				return &domain.ErrNotFound{Resource: "account", ID: accountID}
			}

			a := rows[0].toDomain()
			account = &a
			return nil
		})
	})

	if err != nil {
		var notFound *domain.ErrNotFound
		if errors.As(err, &notFound) {
			return nil, notFound
		}
		return nil, &domain.ErrExternalService{Service: "corebank/accounts", Err: err}
	}

	return account, nil
}

func (c *Client) CreateAccount(ctx context.Context, req *domain.OpenAccountRequest) (*domain.Account, error) {
	ctx, span := tracer.Start(ctx, "CoreBank.CreateAccount")
	defer span.End()

	startDate := req.StartDate
	if startDate == "" {
		startDate = time.Now().UTC().Format("2006-01-02")
	}

	data := map[string]any{
		"id":             uuid.New().String(),
		"account_number": fmt.Sprintf("PGM-%s", strings.ToUpper(uuid.New().String()[:8])),
		"customer_id":    req.CustomerID,
		"collector_id":   req.CollectorID,
		"plan_id":        req.PlanID,
		"account_type":   strings.ToLower(strings.TrimSpace(req.AccountType)),
		"amount":         req.Amount,
		"start_date":     startDate,
		"duration":       req.Duration,
		"status":         domain.AccountActive,
		"created_at":     time.Now().UTC().Format(time.RFC3339),
	}

	body, err := c.doPost(ctx, "accounts", data)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "corebank/accounts", Err: err}
	}

	var rows []rawAccount
	if err := json.Unmarshal(body, &rows); err != nil || len(rows) == 0 {
		return nil, fmt.Errorf("decode created account: %w", err)
	}
	a := rows[0].toDomain()
	return &a, nil
}

func (c *Client) UpdateAccountStatus(ctx context.Context, accountID, status string) error {
	ctx, span := tracer.Start(ctx, "CoreBank.UpdateAccountStatus")
	defer span.End()

	return c.doPatch(ctx, fmt.Sprintf("accounts?id=eq.%s", accountID), map[string]any{
		"status": status,
	})
}

// --- Plans ---

func (c *Client) ListPlans(ctx context.Context) ([]domain.Plan, error) {
	ctx, span := tracer.Start(ctx, "CoreBank.ListPlans")
	defer span.End()

	body, err := c.doRequest(ctx, http.MethodGet, "plans?is_active=eq.true&order=name.asc")
	if err != nil {
		return nil, err
	}
	if body == nil || string(body) == "[]" {
		return []domain.Plan{}, nil
	}

	var rows []rawPlan
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode plans: %w", err)
	}

	plans := make([]domain.Plan, 0, len(rows))
	for _, r := range rows {
		plans = append(plans, domain.Plan{
			ID:           r.ID,
			Name:         r.Name,
			Type:         strings.ToLower(strings.TrimSpace(r.Type)),
			Amount:       r.Amount,
			Duration:     r.Duration,
			InterestRate: r.InterestRate,
			IsActive:     r.IsActive,
		})
	}
	return plans, nil
}

func (c *Client) GetPlan(ctx context.Context, planID string) (*domain.Plan, error) {
	ctx, span := tracer.Start(ctx, "CoreBank.GetPlan")
	defer span.End()

	path := fmt.Sprintf("plans?id=eq.%s&limit=1", planID)
	body, err := c.doRequest(ctx, http.MethodGet, path)
	if err != nil {
		return nil, err
	}
	if body == nil || string(body) == "[]" {
		return nil, &domain.ErrNotFound{Resource: "plan", ID: planID}
	}

	var rows []rawPlan
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode plan: %w", err)
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "plan", ID: planID}
	}

	r := rows[0]
	return &domain.Plan{
		ID:           r.ID,
		Name:         r.Name,
		Type:         strings.ToLower(strings.TrimSpace(r.Type)),
		Amount:       r.Amount,
		Duration:     r.Duration,
		InterestRate: r.InterestRate,
		IsActive:     r.IsActive,
	}, nil
}
