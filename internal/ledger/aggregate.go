package ledger

import (
	"time"

	"github.com/sanchaya/pigmy-bfa-go/internal/domain"
)

// Totals holds the aggregated figures over an account's settled
// transactions. The transaction count includes withdrawals — the business
// counts every settled visit toward the "number of transactions" figure
// used for missed-deposit math — while only deposits contribute to
// Deposits.
type Totals struct {
	Deposits        float64
	Withdrawals     float64
	Count           int
	LastDate        time.Time // most recent settled transaction; zero if none
	LastDepositDate time.Time // most recent settled deposit; zero if none
}

// Balance is net deposits minus withdrawals.
func (t Totals) Balance() float64 {
	return t.Deposits - t.Withdrawals
}

// Aggregate sums an account's settled transactions. Order of the input is
// irrelevant; an empty list yields zero totals.
func Aggregate(txns []domain.Transaction) Totals {
	var t Totals
	for _, tx := range txns {
		if !tx.Settled() {
			continue
		}
		t.Count++
		if tx.Date.After(t.LastDate) {
			t.LastDate = tx.Date
		}
		switch tx.Type {
		case domain.TxDeposit:
			t.Deposits += tx.Amount
			if tx.Date.After(t.LastDepositDate) {
				t.LastDepositDate = tx.Date
			}
		case domain.TxWithdrawal:
			t.Withdrawals += tx.Amount
		}
	}
	return t
}
