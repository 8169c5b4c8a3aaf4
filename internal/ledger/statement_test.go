package ledger

import (
	"testing"

	"github.com/sanchaya/pigmy-bfa-go/internal/domain"
)

func TestBuildStatement_RunningBalance(t *testing.T) {
	// Deliberately out of chronological order in the input.
	txns := []domain.Transaction{
		{ID: "t3", Type: domain.TxWithdrawal, Amount: 50, Date: date(2024, 3, 1), Status: domain.TxCompleted},
		{ID: "t1", Type: domain.TxDeposit, Amount: 100, Date: date(2024, 1, 1), Status: domain.TxCompleted},
		{ID: "t2", Type: domain.TxDeposit, Amount: 100, Date: date(2024, 2, 1), Status: domain.TxCompleted},
	}

	entries := BuildStatement(txns)
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}

	// Display order is newest-first.
	if entries[0].TransactionID != "t3" || entries[2].TransactionID != "t1" {
		t.Fatalf("expected newest-first order t3..t1, got %s..%s",
			entries[0].TransactionID, entries[2].TransactionID)
	}

	// Balances follow chronological replay regardless of display order.
	wantBalances := map[string]float64{"t1": 100, "t2": 200, "t3": 150}
	for _, e := range entries {
		if e.Balance != wantBalances[e.TransactionID] {
			t.Errorf("balance for %s = %.2f, want %.2f", e.TransactionID, e.Balance, wantBalances[e.TransactionID])
		}
	}

	if got := ClosingBalance(entries); got != 150 {
		t.Errorf("ClosingBalance() = %.2f, want 150", got)
	}
}

func TestBuildStatement_ExcludesPending(t *testing.T) {
	txns := []domain.Transaction{
		{ID: "t1", Type: domain.TxDeposit, Amount: 100, Date: date(2024, 1, 1), Status: domain.TxCompleted},
		{ID: "t2", Type: domain.TxWithdrawal, Amount: 500, Date: date(2024, 1, 15), Status: domain.TxPending},
		{ID: "t3", Type: domain.TxDeposit, Amount: 100, Date: date(2024, 2, 1), Status: domain.TxCompleted},
	}

	entries := BuildStatement(txns)
	if len(entries) != 2 {
		t.Fatalf("expected pending transaction excluded, got %d entries", len(entries))
	}
	for _, e := range entries {
		if e.TransactionID == "t2" {
			t.Fatal("pending withdrawal t2 must not appear in the statement")
		}
	}
	if got := ClosingBalance(entries); got != 200 {
		t.Errorf("ClosingBalance() = %.2f, want 200 (pending withdrawal ignored)", got)
	}
}

func TestBuildStatement_PaidInPaidOutColumns(t *testing.T) {
	txns := []domain.Transaction{
		{ID: "t1", Type: domain.TxDeposit, Amount: 250, Date: date(2024, 1, 1), Status: domain.TxCompleted},
		{ID: "t2", Type: domain.TxWithdrawal, Amount: 40, Date: date(2024, 1, 2), Status: domain.TxCompleted},
	}

	entries := BuildStatement(txns)

	byID := map[string]domain.StatementEntry{}
	for _, e := range entries {
		byID[e.TransactionID] = e
	}

	dep := byID["t1"]
	if dep.PaidIn == nil || *dep.PaidIn != 250 || dep.PaidOut != nil {
		t.Errorf("deposit entry: PaidIn=%v PaidOut=%v, want PaidIn=250 PaidOut=nil", dep.PaidIn, dep.PaidOut)
	}
	wd := byID["t2"]
	if wd.PaidOut == nil || *wd.PaidOut != 40 || wd.PaidIn != nil {
		t.Errorf("withdrawal entry: PaidIn=%v PaidOut=%v, want PaidOut=40 PaidIn=nil", wd.PaidIn, wd.PaidOut)
	}
}

func TestBuildStatement_TieBreakOnEqualDates(t *testing.T) {
	same := date(2024, 5, 10)
	txns := []domain.Transaction{
		{ID: "b", Type: domain.TxDeposit, Amount: 10, Date: same, Status: domain.TxCompleted},
		{ID: "a", Type: domain.TxDeposit, Amount: 20, Date: same, Status: domain.TxCompleted},
	}

	entries := BuildStatement(txns)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	// Replay order on equal timestamps is transaction ID ascending: "a"
	// first (balance 20), then "b" (balance 30). Display is reversed.
	if entries[0].TransactionID != "b" || entries[0].Balance != 30 {
		t.Errorf("newest-first head = %s balance %.2f, want b / 30", entries[0].TransactionID, entries[0].Balance)
	}
	if entries[1].TransactionID != "a" || entries[1].Balance != 20 {
		t.Errorf("tail = %s balance %.2f, want a / 20", entries[1].TransactionID, entries[1].Balance)
	}
}

func TestBuildStatement_Empty(t *testing.T) {
	entries := BuildStatement(nil)
	if len(entries) != 0 {
		t.Fatalf("expected empty statement, got %d entries", len(entries))
	}
	if got := ClosingBalance(entries); got != 0 {
		t.Errorf("ClosingBalance(empty) = %.2f, want 0", got)
	}
}

func TestBuildStatement_RoundTripProperty(t *testing.T) {
	// The balance on the chronologically last entry must equal the signed
	// sum over all settled transactions.
	txns := []domain.Transaction{
		{ID: "t1", Type: domain.TxDeposit, Amount: 100, Date: date(2024, 1, 2), Status: domain.TxCompleted},
		{ID: "t2", Type: domain.TxDeposit, Amount: 75.5, Date: date(2024, 1, 9), Status: domain.TxCompleted},
		{ID: "t3", Type: domain.TxWithdrawal, Amount: 30.25, Date: date(2024, 1, 16), Status: domain.TxCompleted},
		{ID: "t4", Type: domain.TxDeposit, Amount: 100, Date: date(2024, 1, 23), Status: domain.TxFailed},
		{ID: "t5", Type: domain.TxDeposit, Amount: 9999, Date: date(2024, 1, 30), Status: domain.TxPending},
	}

	var signed float64
	for _, tx := range txns {
		if !tx.Settled() {
			continue
		}
		if tx.Type == domain.TxDeposit {
			signed += tx.Amount
		} else {
			signed -= tx.Amount
		}
	}

	entries := BuildStatement(txns)
	if got := ClosingBalance(entries); got != signed {
		t.Errorf("ClosingBalance() = %.2f, want signed sum %.2f", got, signed)
	}
}
