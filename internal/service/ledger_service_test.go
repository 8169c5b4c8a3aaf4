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

// --- Mocks ---

type mockAccountFetcher struct {
	account *domain.Account
	err     error
	calls   int
}

func (m *mockAccountFetcher) GetAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.account, nil
}

func (m *mockAccountFetcher) ListAccounts(ctx context.Context, customerID string) ([]domain.Account, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.account == nil {
		return []domain.Account{}, nil
	}
	return []domain.Account{*m.account}, nil
}

type mockTransactionsFetcher struct {
	txns []domain.Transaction
	err  error
}

func (m *mockTransactionsFetcher) GetTransactions(ctx context.Context, accountID string) ([]domain.Transaction, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.txns, nil
}

type mockCache struct {
	data map[string]*domain.Account
}

func newMockCache() *mockCache {
	return &mockCache{data: map[string]*domain.Account{}}
}

func (m *mockCache) Get(key string) (*domain.Account, bool) {
	v, ok := m.data[key]
	return v, ok
}

func (m *mockCache) Set(key string, value *domain.Account) { m.data[key] = value }
func (m *mockCache) Delete(key string)                     { delete(m.data, key) }

func testDay(y int, mo time.Month, d int) time.Time {
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
}

func newLedgerService(accounts *mockAccountFetcher, txns *mockTransactionsFetcher, cache *mockCache) *LedgerService {
	s := NewLedgerService(accounts, txns, cache, observability.NewMetrics(), zap.NewNop())
	s.now = func() time.Time { return testDay(2024, 4, 1) }
	return s
}

// --- Tests ---

func TestGetSnapshot_ComputesProjection(t *testing.T) {
	accounts := &mockAccountFetcher{account: &domain.Account{
		ID:          "acc-1",
		AccountType: "monthly",
		StartDate:   testDay(2024, 1, 1),
		Duration:    12,
		Status:      domain.AccountActive,
	}}
	txns := &mockTransactionsFetcher{txns: []domain.Transaction{
		{ID: "t1", Type: domain.TxDeposit, Amount: 500, Date: testDay(2024, 1, 5), Status: domain.TxCompleted},
		{ID: "t2", Type: domain.TxDeposit, Amount: 500, Date: testDay(2024, 2, 5), Status: domain.TxCompleted},
	}}

	svc := newLedgerService(accounts, txns, newMockCache())

	snap, err := svc.GetSnapshot(context.Background(), "acc-1")
	if err != nil {
		t.Fatalf("expected snapshot, got error: %v", err)
	}

	if snap.AccountID != "acc-1" {
		t.Errorf("AccountID = %s, want acc-1", snap.AccountID)
	}
	if snap.TotalDeposits != 1000 {
		t.Errorf("TotalDeposits = %.2f, want 1000", snap.TotalDeposits)
	}
	if snap.ExpectedDeposits != 3 || snap.MissedDeposits != 1 {
		t.Errorf("Expected/Missed = %d/%d, want 3/1", snap.ExpectedDeposits, snap.MissedDeposits)
	}
}

func TestGetSnapshot_CachesAccount(t *testing.T) {
	accounts := &mockAccountFetcher{account: &domain.Account{
		ID:        "acc-1",
		StartDate: testDay(2024, 1, 1),
		Duration:  12,
	}}
	txns := &mockTransactionsFetcher{}

	svc := newLedgerService(accounts, txns, newMockCache())

	if _, err := svc.GetSnapshot(context.Background(), "acc-1"); err != nil {
		t.Fatalf("first call: %v", err)
	}
	if _, err := svc.GetSnapshot(context.Background(), "acc-1"); err != nil {
		t.Fatalf("second call: %v", err)
	}

	if accounts.calls != 1 {
		t.Errorf("expected 1 upstream account fetch, got %d", accounts.calls)
	}
}

func TestGetSnapshot_PropagatesNotFound(t *testing.T) {
	accounts := &mockAccountFetcher{err: &domain.ErrNotFound{Resource: "account", ID: "missing"}}
	txns := &mockTransactionsFetcher{}

	svc := newLedgerService(accounts, txns, newMockCache())

	_, err := svc.GetSnapshot(context.Background(), "missing")
	var notFound *domain.ErrNotFound
	if !errors.As(err, &notFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetSnapshot_TransactionsFailureFailsRequest(t *testing.T) {
	accounts := &mockAccountFetcher{account: &domain.Account{ID: "acc-1", StartDate: testDay(2024, 1, 1)}}
	txns := &mockTransactionsFetcher{err: &domain.ErrExternalService{Service: "transactions", Err: errors.New("boom")}}

	svc := newLedgerService(accounts, txns, newMockCache())

	_, err := svc.GetSnapshot(context.Background(), "acc-1")
	var extErr *domain.ErrExternalService
	if !errors.As(err, &extErr) {
		t.Fatalf("expected ErrExternalService, got %v", err)
	}
}

func TestGetStatement_NewestFirstWithClosingBalance(t *testing.T) {
	accounts := &mockAccountFetcher{account: &domain.Account{
		ID:            "acc-1",
		AccountNumber: "PGM-0001",
		StartDate:     testDay(2024, 1, 1),
	}}
	txns := &mockTransactionsFetcher{txns: []domain.Transaction{
		{ID: "t1", Type: domain.TxDeposit, Amount: 100, Date: testDay(2024, 1, 1), Status: domain.TxCompleted},
		{ID: "t2", Type: domain.TxDeposit, Amount: 100, Date: testDay(2024, 2, 1), Status: domain.TxCompleted},
		{ID: "t3", Type: domain.TxWithdrawal, Amount: 50, Date: testDay(2024, 3, 1), Status: domain.TxPending},
	}}

	svc := newLedgerService(accounts, txns, newMockCache())

	stmt, err := svc.GetStatement(context.Background(), "acc-1")
	if err != nil {
		t.Fatalf("expected statement, got error: %v", err)
	}

	if stmt.AccountNumber != "PGM-0001" {
		t.Errorf("AccountNumber = %s, want PGM-0001", stmt.AccountNumber)
	}
	if len(stmt.Entries) != 2 {
		t.Fatalf("expected 2 settled entries, got %d", len(stmt.Entries))
	}
	if stmt.Entries[0].TransactionID != "t2" {
		t.Errorf("head entry = %s, want newest settled t2", stmt.Entries[0].TransactionID)
	}
	if stmt.ClosingBalance != 200 {
		t.Errorf("ClosingBalance = %.2f, want 200 (pending withdrawal excluded)", stmt.ClosingBalance)
	}
}

func TestGetTransactions_ChecksAccountExists(t *testing.T) {
	accounts := &mockAccountFetcher{err: &domain.ErrNotFound{Resource: "account", ID: "missing"}}
	txns := &mockTransactionsFetcher{txns: []domain.Transaction{{ID: "t1"}}}

	svc := newLedgerService(accounts, txns, newMockCache())

	_, err := svc.GetTransactions(context.Background(), "missing")
	var notFound *domain.ErrNotFound
	if !errors.As(err, &notFound) {
		t.Fatalf("expected ErrNotFound for unknown account, got %v", err)
	}
}
