package corebank

import (
	"context"
	"encoding/json"
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
// Transactions — CRUD via the core REST API
// ============================================================

// rawTransaction maps core API columns. The effective date comes from
// date, then payment_date, then created_at; this fallback is applied
// once here so the rest of the service sees a single Date field.
type rawTransaction struct {
	ID          string  `json:"id"`
	AccountID   string  `json:"account_id"`
	Type        string  `json:"type"`
	Amount      float64 `json:"amount"`
	Date        string  `json:"date"`
	PaymentDate string  `json:"payment_date"`
	Status      string  `json:"status"`
	Method      string  `json:"method"`
	CollectorID string  `json:"collector_id"`
	Reference   string  `json:"reference"`
	CreatedAt   string  `json:"created_at"`
}

func (r rawTransaction) toDomain() domain.Transaction {
	date := parseDate(r.Date)
	if date.IsZero() {
		date = parseDate(r.PaymentDate)
	}
	if date.IsZero() {
		date = parseDate(r.CreatedAt)
	}

	return domain.Transaction{
		ID:          r.ID,
		AccountID:   r.AccountID,
		Type:        strings.ToLower(strings.TrimSpace(r.Type)),
		Amount:      r.Amount,
		Date:        date,
		Status:      strings.ToLower(strings.TrimSpace(r.Status)),
		Method:      strings.ToLower(strings.TrimSpace(r.Method)),
		CollectorID: r.CollectorID,
		Reference:   r.Reference,
		CreatedAt:   parseDate(r.CreatedAt),
	}
}

// GetTransactions fetches the full transaction history for an account.
// This is on the hot ledger path, so it runs behind the circuit breaker
// with retries.
func (c *Client) GetTransactions(ctx context.Context, accountID string) ([]domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "CoreBank.GetTransactions")
	defer span.End()
	span.SetAttributes(attribute.String("account.id", accountID))

	var transactions []domain.Transaction

	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			path := fmt.Sprintf("transactions?account_id=eq.%s&order=date.desc&limit=1000", accountID)
			body, err := c.doRequest(ctx, http.MethodGet, path)
			if err != nil {
				return err
			}
			if body == nil || string(body) == "[]" {
				transactions = []domain.Transaction{}
				return nil
			}

			var rows []rawTransaction
			if err := json.Unmarshal(body, &rows); err != nil {
				return fmt.Errorf("decode transactions: %w", err)
			}

			transactions = make([]domain.Transaction, 0, len(rows))
			for _, r := range rows {
				transactions = append(transactions, r.toDomain())
			}
			return nil
		})
	})

	if err != nil {
		return nil, &domain.ErrExternalService{Service: "corebank/transactions", Err: err}
	}

	return transactions, nil
}

func (c *Client) GetTransaction(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "CoreBank.GetTransaction")
	defer span.End()

	path := fmt.Sprintf("transactions?id=eq.%s&limit=1", transactionID)
	body, err := c.doRequest(ctx, http.MethodGet, path)
	if err != nil {
		return nil, err
	}
	if body == nil || string(body) == "[]" {
		return nil, &domain.ErrNotFound{Resource: "transaction", ID: transactionID}
	}

	var rows []rawTransaction
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode transaction: %w", err)
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "transaction", ID: transactionID}
	}
	t := rows[0].toDomain()
	return &t, nil
}

// GetTransactionByReference looks up a transaction by its idempotency
// reference. Returns nil, nil when no such transaction exists.
func (c *Client) GetTransactionByReference(ctx context.Context, reference string) (*domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "CoreBank.GetTransactionByReference")
	defer span.End()

	path := fmt.Sprintf("transactions?reference=eq.%s&limit=1", reference)
	body, err := c.doRequest(ctx, http.MethodGet, path)
	if err != nil {
		return nil, err
	}
	if body == nil || string(body) == "[]" {
		return nil, nil
	}

	var rows []rawTransaction
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode transaction: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	t := rows[0].toDomain()
	return &t, nil
}

func (c *Client) CreateTransaction(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "CoreBank.CreateTransaction")
	defer span.End()

	id := tx.ID
	if id == "" {
		id = uuid.New().String()
	}
	date := tx.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}

	data := map[string]any{
		"id":           id,
		"account_id":   tx.AccountID,
		"type":         tx.Type,
		"amount":       tx.Amount,
		"date":         date.Format(time.RFC3339),
		"status":       tx.Status,
		"method":       tx.Method,
		"collector_id": tx.CollectorID,
		"reference":    tx.Reference,
		"created_at":   time.Now().UTC().Format(time.RFC3339),
	}

	body, err := c.doPost(ctx, "transactions", data)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "corebank/transactions", Err: err}
	}

	var rows []rawTransaction
	if err := json.Unmarshal(body, &rows); err != nil || len(rows) == 0 {
		return nil, fmt.Errorf("decode created transaction: %w", err)
	}
	created := rows[0].toDomain()
	return &created, nil
}

func (c *Client) UpdateTransactionStatus(ctx context.Context, transactionID, status string) (*domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "CoreBank.UpdateTransactionStatus")
	defer span.End()

	err := c.doPatch(ctx, fmt.Sprintf("transactions?id=eq.%s", transactionID), map[string]any{
		"status": status,
	})
	if err != nil {
		return nil, err
	}

	// Re-fetch to return the updated row.
	path := fmt.Sprintf("transactions?id=eq.%s&limit=1", transactionID)
	body, err := c.doRequest(ctx, http.MethodGet, path)
	if err != nil {
		return nil, err
	}
	if body == nil || string(body) == "[]" {
		return nil, &domain.ErrNotFound{Resource: "transaction", ID: transactionID}
	}

	var rows []rawTransaction
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode transaction: %w", err)
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "transaction", ID: transactionID}
	}
	t := rows[0].toDomain()
	return &t, nil
}

// ListCollectorTransactions returns a collector's transactions for one
// calendar day (UTC).
func (c *Client) ListCollectorTransactions(ctx context.Context, collectorID string, day time.Time) ([]domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "CoreBank.ListCollectorTransactions")
	defer span.End()

	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)

	path := fmt.Sprintf("transactions?collector_id=eq.%s&date=gte.%s&date=lt.%s&order=date.asc",
		collectorID, from.Format(time.RFC3339), to.Format(time.RFC3339))
	body, err := c.doRequest(ctx, http.MethodGet, path)
	if err != nil {
		return nil, err
	}
	if body == nil || string(body) == "[]" {
		return []domain.Transaction{}, nil
	}

	var rows []rawTransaction
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode transactions: %w", err)
	}

	transactions := make([]domain.Transaction, 0, len(rows))
	for _, r := range rows {
		transactions = append(transactions, r.toDomain())
	}
	return transactions, nil
}
