package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/sanchaya/pigmy-bfa-go/internal/domain"
	"github.com/sanchaya/pigmy-bfa-go/internal/infra/resilience"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("client")

// AccountsClient fetches account data from the Accounts API.
type AccountsClient struct {
	httpClient *http.Client
	baseURL    string
	cb         *gobreaker.CircuitBreaker
	cfg        resilience.Config
}

// NewAccountsClient creates a new AccountsClient.
func NewAccountsClient(httpClient *http.Client, baseURL string, cb *gobreaker.CircuitBreaker, cfg resilience.Config) *AccountsClient {
	return &AccountsClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		cb:         cb,
		cfg:        cfg,
	}
}

// GetAccount fetches a single account with retry, circuit breaker, and tracing.
func (c *AccountsClient) GetAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	ctx, span := tracer.Start(ctx, "AccountsClient.GetAccount")
	defer span.End()
	span.SetAttributes(attribute.String("account.id", accountID))

	var account domain.Account

	result, err := c.cb.Execute(func() (any, error) {
		innerErr := resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			url := fmt.Sprintf("%s/v1/accounts/%s", c.baseURL, accountID)
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
			if err != nil {
				return err
			}

			resp, err := c.httpClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode == http.StatusNotFound {
				return &domain.ErrNotFound{Resource: "account", ID: accountID}
			}
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("accounts API returned status %d", resp.StatusCode)
			}

			return json.NewDecoder(resp.Body).Decode(&account)
		})
		if innerErr != nil {
			return nil, innerErr
		}
		return &account, nil
	})

	if err != nil {
		return nil, &domain.ErrExternalService{Service: "accounts", Err: err}
	}

	return result.(*domain.Account), nil
}

// ListAccounts fetches all accounts for a customer.
func (c *AccountsClient) ListAccounts(ctx context.Context, customerID string) ([]domain.Account, error) {
	ctx, span := tracer.Start(ctx, "AccountsClient.ListAccounts")
	defer span.End()
	span.SetAttributes(attribute.String("customer.id", customerID))

	var accounts []domain.Account

	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			url := fmt.Sprintf("%s/v1/customers/%s/accounts", c.baseURL, customerID)
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
			if err != nil {
				return err
			}

			resp, err := c.httpClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode == http.StatusNotFound {
				accounts = []domain.Account{}
				return nil
			}
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("accounts API returned status %d", resp.StatusCode)
			}

			return json.NewDecoder(resp.Body).Decode(&accounts)
		})
	})

	if err != nil {
		return nil, &domain.ErrExternalService{Service: "accounts", Err: err}
	}

	return accounts, nil
}
