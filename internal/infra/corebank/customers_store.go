package corebank

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/sanchaya/pigmy-bfa-go/internal/domain"
)

// ============================================================
// Customers & collectors — read-only lookups
// ============================================================

func (c *Client) GetCustomer(ctx context.Context, customerID string) (*domain.Customer, error) {
	ctx, span := tracer.Start(ctx, "CoreBank.GetCustomer")
	defer span.End()

	path := fmt.Sprintf("customers?id=eq.%s&limit=1", customerID)
	body, err := c.doRequest(ctx, http.MethodGet, path)
	if err != nil {
		return nil, err
	}
	if body == nil || string(body) == "[]" {
		return nil, &domain.ErrNotFound{Resource: "customer", ID: customerID}
	}

	var rows []domain.Customer
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode customer: %w", err)
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "customer", ID: customerID}
	}
	return &rows[0], nil
}

func (c *Client) GetCollector(ctx context.Context, collectorID string) (*domain.Collector, error) {
	ctx, span := tracer.Start(ctx, "CoreBank.GetCollector")
	defer span.End()

	path := fmt.Sprintf("collectors?id=eq.%s&limit=1", collectorID)
	body, err := c.doRequest(ctx, http.MethodGet, path)
	if err != nil {
		return nil, err
	}
	if body == nil || string(body) == "[]" {
		return nil, &domain.ErrNotFound{Resource: "collector", ID: collectorID}
	}

	var rows []domain.Collector
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode collector: %w", err)
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "collector", ID: collectorID}
	}
	return &rows[0], nil
}
