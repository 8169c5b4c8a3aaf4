package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sanchaya/pigmy-bfa-go/internal/domain"
	"github.com/sanchaya/pigmy-bfa-go/internal/infra/observability"

	"go.uber.org/zap"
)

// mockCoreStore implements port.CoreStore with per-test overrides.
type mockCoreStore struct {
	accounts     map[string]*domain.Account
	transactions map[string]*domain.Transaction
	byReference  map[string]*domain.Transaction
	created      []*domain.Transaction
	collectorTxs []domain.Transaction
	collectors   map[string]*domain.Collector
	customers    map[string]*domain.Customer
	plans        map[string]*domain.Plan
	statusSet    map[string]string
}

func newMockCoreStore() *mockCoreStore {
	return &mockCoreStore{
		accounts:     map[string]*domain.Account{},
		transactions: map[string]*domain.Transaction{},
		byReference:  map[string]*domain.Transaction{},
		collectors:   map[string]*domain.Collector{},
		customers:    map[string]*domain.Customer{},
		plans:        map[string]*domain.Plan{},
		statusSet:    map[string]string{},
	}
}

func (m *mockCoreStore) ListAccounts(ctx context.Context, customerID string) ([]domain.Account, error) {
	var out []domain.Account
	for _, a := range m.accounts {
		if a.CustomerID == customerID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *mockCoreStore) ListCollectorAccounts(ctx context.Context, collectorID string) ([]domain.Account, error) {
	var out []domain.Account
	for _, a := range m.accounts {
		if a.CollectorID == collectorID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *mockCoreStore) GetAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	a, ok := m.accounts[accountID]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "account", ID: accountID}
	}
	return a, nil
}

func (m *mockCoreStore) CreateAccount(ctx context.Context, req *domain.OpenAccountRequest) (*domain.Account, error) {
	a := &domain.Account{
		ID:         "acc-new",
		CustomerID: req.CustomerID,
		Amount:     req.Amount,
		Duration:   req.Duration,
		Status:     domain.AccountActive,
	}
	m.accounts[a.ID] = a
	return a, nil
}

func (m *mockCoreStore) UpdateAccountStatus(ctx context.Context, accountID, status string) error {
	m.statusSet[accountID] = status
	return nil
}

func (m *mockCoreStore) ListPlans(ctx context.Context) ([]domain.Plan, error) {
	var out []domain.Plan
	for _, p := range m.plans {
		out = append(out, *p)
	}
	return out, nil
}

func (m *mockCoreStore) GetPlan(ctx context.Context, planID string) (*domain.Plan, error) {
	p, ok := m.plans[planID]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "plan", ID: planID}
	}
	return p, nil
}

func (m *mockCoreStore) GetTransactions(ctx context.Context, accountID string) ([]domain.Transaction, error) {
	var out []domain.Transaction
	for _, t := range m.transactions {
		if t.AccountID == accountID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (m *mockCoreStore) GetTransaction(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	t, ok := m.transactions[transactionID]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "transaction", ID: transactionID}
	}
	return t, nil
}

func (m *mockCoreStore) GetTransactionByReference(ctx context.Context, reference string) (*domain.Transaction, error) {
	return m.byReference[reference], nil
}

func (m *mockCoreStore) CreateTransaction(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	created := *tx
	created.ID = "tx-created"
	m.created = append(m.created, &created)
	m.transactions[created.ID] = &created
	if created.Reference != "" {
		m.byReference[created.Reference] = &created
	}
	return &created, nil
}

func (m *mockCoreStore) UpdateTransactionStatus(ctx context.Context, transactionID, status string) (*domain.Transaction, error) {
	t, ok := m.transactions[transactionID]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "transaction", ID: transactionID}
	}
	updated := *t
	updated.Status = status
	m.transactions[transactionID] = &updated
	return &updated, nil
}

func (m *mockCoreStore) ListCollectorTransactions(ctx context.Context, collectorID string, day time.Time) ([]domain.Transaction, error) {
	return m.collectorTxs, nil
}

func (m *mockCoreStore) GetCustomer(ctx context.Context, customerID string) (*domain.Customer, error) {
	c, ok := m.customers[customerID]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "customer", ID: customerID}
	}
	return c, nil
}

func (m *mockCoreStore) GetCollector(ctx context.Context, collectorID string) (*domain.Collector, error) {
	c, ok := m.collectors[collectorID]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "collector", ID: collectorID}
	}
	return c, nil
}

func newCollectionService(store *mockCoreStore) *CollectionService {
	s := NewCollectionService(store, newMockCache(), observability.NewMetrics(), zap.NewNop())
	s.now = func() time.Time { return testDay(2024, 6, 15) }
	return s
}

// --- Tests ---

func TestRecordCollection_CreatesSettledDeposit(t *testing.T) {
	store := newMockCoreStore()
	store.accounts["acc-1"] = &domain.Account{ID: "acc-1", Status: domain.AccountActive}

	svc := newCollectionService(store)

	resp, err := svc.RecordCollection(context.Background(), &domain.CollectionRequest{
		AccountID:   "acc-1",
		CollectorID: "col-1",
		Amount:      100,
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}

	if resp.Status != domain.TxCompleted {
		t.Errorf("Status = %s, want completed", resp.Status)
	}
	if len(store.created) != 1 {
		t.Fatalf("expected 1 created transaction, got %d", len(store.created))
	}
	created := store.created[0]
	if created.Type != domain.TxDeposit || created.Method != "cash" {
		t.Errorf("created type/method = %s/%s, want deposit/cash", created.Type, created.Method)
	}
	if created.CollectorID != "col-1" {
		t.Errorf("CollectorID = %s, want col-1", created.CollectorID)
	}
}

func TestRecordCollection_IdempotencyReplay(t *testing.T) {
	store := newMockCoreStore()
	store.accounts["acc-1"] = &domain.Account{ID: "acc-1", Status: domain.AccountActive}
	store.byReference["key-1"] = &domain.Transaction{
		ID:        "tx-original",
		AccountID: "acc-1",
		Amount:    100,
		Status:    domain.TxCompleted,
		Date:      testDay(2024, 6, 1),
	}

	svc := newCollectionService(store)

	resp, err := svc.RecordCollection(context.Background(), &domain.CollectionRequest{
		IdempotencyKey: "key-1",
		AccountID:      "acc-1",
		CollectorID:    "col-1",
		Amount:         100,
	})
	if err != nil {
		t.Fatalf("expected replay to succeed, got %v", err)
	}

	if resp.TransactionID != "tx-original" {
		t.Errorf("TransactionID = %s, want the original tx-original", resp.TransactionID)
	}
	if len(store.created) != 0 {
		t.Errorf("expected no new transaction on replay, got %d", len(store.created))
	}
}

func TestRecordCollection_RejectsInactiveAccount(t *testing.T) {
	store := newMockCoreStore()
	store.accounts["acc-1"] = &domain.Account{ID: "acc-1", Status: domain.AccountClosed}

	svc := newCollectionService(store)

	_, err := svc.RecordCollection(context.Background(), &domain.CollectionRequest{
		AccountID:   "acc-1",
		CollectorID: "col-1",
		Amount:      100,
	})

	var notOperable *domain.ErrAccountNotOperable
	if !errors.As(err, &notOperable) {
		t.Fatalf("expected ErrAccountNotOperable, got %v", err)
	}
	if len(store.created) != 0 {
		t.Errorf("no transaction should be created on a closed account")
	}
}

func TestRecordCollection_ValidatesAmount(t *testing.T) {
	svc := newCollectionService(newMockCoreStore())

	_, err := svc.RecordCollection(context.Background(), &domain.CollectionRequest{
		AccountID:   "acc-1",
		CollectorID: "col-1",
		Amount:      -5,
	})

	var validation *domain.ErrValidation
	if !errors.As(err, &validation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestGetCollectorSummary_AggregatesSettledDeposits(t *testing.T) {
	store := newMockCoreStore()
	store.collectors["col-1"] = &domain.Collector{ID: "col-1", Name: "Ravi"}
	store.collectorTxs = []domain.Transaction{
		{ID: "t1", AccountID: "acc-1", Type: domain.TxDeposit, Amount: 100, Status: domain.TxCompleted},
		{ID: "t2", AccountID: "acc-2", Type: domain.TxDeposit, Amount: 50, Status: domain.TxCompleted},
		{ID: "t3", AccountID: "acc-1", Type: domain.TxDeposit, Amount: 100, Status: domain.TxCompleted},
		{ID: "t4", AccountID: "acc-3", Type: domain.TxDeposit, Amount: 999, Status: domain.TxPending},
		{ID: "t5", AccountID: "acc-1", Type: domain.TxWithdrawal, Amount: 40, Status: domain.TxCompleted},
	}

	svc := newCollectionService(store)

	summary, err := svc.GetCollectorSummary(context.Background(), "col-1", testDay(2024, 6, 15))
	if err != nil {
		t.Fatalf("expected summary, got %v", err)
	}

	if summary.TotalCollected != 250 {
		t.Errorf("TotalCollected = %.2f, want 250 (pending and withdrawals excluded)", summary.TotalCollected)
	}
	if summary.DepositCount != 3 {
		t.Errorf("DepositCount = %d, want 3", summary.DepositCount)
	}
	if summary.AccountsNumber != 2 {
		t.Errorf("AccountsNumber = %d, want 2 distinct accounts", summary.AccountsNumber)
	}
}

func TestApproveTransaction_RequiresPending(t *testing.T) {
	store := newMockCoreStore()
	store.transactions["tx-1"] = &domain.Transaction{ID: "tx-1", AccountID: "acc-1", Status: domain.TxCompleted}

	svc := newCollectionService(store)

	_, err := svc.ApproveTransaction(context.Background(), "tx-1")
	var conflict *domain.ErrConflict
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ErrConflict for non-pending transaction, got %v", err)
	}
}

func TestApproveAndRejectTransaction(t *testing.T) {
	store := newMockCoreStore()
	store.transactions["tx-1"] = &domain.Transaction{ID: "tx-1", AccountID: "acc-1", Status: domain.TxPending}
	store.transactions["tx-2"] = &domain.Transaction{ID: "tx-2", AccountID: "acc-1", Status: domain.TxPending}

	svc := newCollectionService(store)

	approved, err := svc.ApproveTransaction(context.Background(), "tx-1")
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.Status != domain.TxCompleted {
		t.Errorf("approved status = %s, want completed", approved.Status)
	}

	rejected, err := svc.RejectTransaction(context.Background(), "tx-2")
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.Status != domain.TxFailed {
		t.Errorf("rejected status = %s, want failed", rejected.Status)
	}
}

func TestOpenAccount_Validation(t *testing.T) {
	store := newMockCoreStore()
	store.customers["cust-1"] = &domain.Customer{ID: "cust-1", Name: "Lakshmi"}
	svc := NewAccountsService(store, observability.NewMetrics(), zap.NewNop())

	tests := []struct {
		name string
		req  *domain.OpenAccountRequest
	}{
		{"missing customer id", &domain.OpenAccountRequest{Amount: 100, Duration: 12}},
		{"non-positive amount", &domain.OpenAccountRequest{CustomerID: "cust-1", Amount: 0, Duration: 12}},
		{"non-positive duration", &domain.OpenAccountRequest{CustomerID: "cust-1", Amount: 100, Duration: 0}},
		{"bad cadence", &domain.OpenAccountRequest{CustomerID: "cust-1", Amount: 100, Duration: 12, AccountType: "fortnightly"}},
		{"bad start date", &domain.OpenAccountRequest{CustomerID: "cust-1", Amount: 100, Duration: 12, StartDate: "15-06-2024"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.OpenAccount(context.Background(), tt.req)
			var validation *domain.ErrValidation
			if !errors.As(err, &validation) {
				t.Errorf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestOpenAccount_Succeeds(t *testing.T) {
	store := newMockCoreStore()
	store.customers["cust-1"] = &domain.Customer{ID: "cust-1", Name: "Lakshmi"}
	store.plans["plan-1"] = &domain.Plan{ID: "plan-1", Name: "Daily Saver", IsActive: true}
	svc := NewAccountsService(store, observability.NewMetrics(), zap.NewNop())

	account, err := svc.OpenAccount(context.Background(), &domain.OpenAccountRequest{
		CustomerID: "cust-1",
		PlanID:     "plan-1",
		Amount:     50,
		Duration:   100,
	})
	if err != nil {
		t.Fatalf("expected account, got %v", err)
	}
	if account.Status != domain.AccountActive {
		t.Errorf("Status = %s, want active", account.Status)
	}
}

func TestCloseAccount_AlreadyClosed(t *testing.T) {
	store := newMockCoreStore()
	store.accounts["acc-1"] = &domain.Account{ID: "acc-1", Status: domain.AccountClosed}
	svc := NewAccountsService(store, observability.NewMetrics(), zap.NewNop())

	_, err := svc.CloseAccount(context.Background(), "acc-1")
	var conflict *domain.ErrConflict
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}
