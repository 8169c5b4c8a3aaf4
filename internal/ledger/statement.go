package ledger

import (
	"sort"

	"github.com/sanchaya/pigmy-bfa-go/internal/domain"
)

// BuildStatement reconstructs the running balance for an account's
// transaction history. Pending transactions are excluded entirely; the
// remainder are replayed in ascending date order (transaction ID ascending
// as the deterministic tie-break for identical timestamps), deposits adding
// and withdrawals subtracting. Each entry carries the balance as of that
// transaction. The returned list is ordered newest-first for display.
func BuildStatement(txns []domain.Transaction) []domain.StatementEntry {
	settled := make([]domain.Transaction, 0, len(txns))
	for _, tx := range txns {
		if tx.Settled() {
			settled = append(settled, tx)
		}
	}

	sort.Slice(settled, func(i, j int) bool {
		if !settled[i].Date.Equal(settled[j].Date) {
			return settled[i].Date.Before(settled[j].Date)
		}
		return settled[i].ID < settled[j].ID
	})

	entries := make([]domain.StatementEntry, 0, len(settled))
	var balance float64
	for _, tx := range settled {
		entry := domain.StatementEntry{
			TransactionID: tx.ID,
			Date:          tx.Date,
			Type:          tx.Type,
			Method:        tx.Method,
		}
		amount := tx.Amount
		switch tx.Type {
		case domain.TxDeposit:
			balance += amount
			entry.PaidIn = &amount
		case domain.TxWithdrawal:
			balance -= amount
			entry.PaidOut = &amount
		}
		entry.Balance = balance
		entries = append(entries, entry)
	}

	// Reverse for newest-first display; the replay order above is what
	// defines each entry's balance.
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}

	return entries
}

// ClosingBalance is the running total after replaying every settled
// transaction — the balance on the chronologically last statement entry,
// or zero for an empty history.
func ClosingBalance(entries []domain.StatementEntry) float64 {
	if len(entries) == 0 {
		return 0
	}
	// Entries are newest-first, so the closing balance is the first one.
	return entries[0].Balance
}
