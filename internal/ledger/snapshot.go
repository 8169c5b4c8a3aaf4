package ledger

import (
	"time"

	"github.com/sanchaya/pigmy-bfa-go/internal/domain"
)

// Project derives the full ledger snapshot for an account at the reference
// instant now. It is a pure function: calling it twice with the same inputs
// yields identical results, and missing optional fields degrade to defaults
// rather than errors.
func Project(a *domain.Account, txns []domain.Transaction, now time.Time) *domain.LedgerSnapshot {
	cadence := ResolveCadence(a)
	totals := Aggregate(txns)
	rate := ResolveRate(a)

	var start time.Time
	var duration int
	if a != nil {
		start = a.StartDate
		duration = a.Duration
		if duration <= 0 && a.Plan != nil {
			duration = a.Plan.Duration
		}
	}

	expected := ExpectedDeposits(start, now, cadence)
	interest := Round2(Interest(totals.Deposits, rate, duration))

	snap := &domain.LedgerSnapshot{
		Cadence:           cadence,
		TotalDeposits:     totals.Deposits,
		TotalWithdrawals:  totals.Withdrawals,
		Balance:           totals.Balance(),
		TransactionsCount: totals.Count,
		ExpectedDeposits:  expected,
		MissedDeposits:    MissedDeposits(expected, totals.Count),
		NextDueDate:       NextDueDate(start, totals.LastDate, cadence),
		InterestRate:      rate,
		AccruedInterest:   interest,
		MaturityAmount:    Round2(totals.Deposits + interest),
		MaturityDate:      MaturityDate(start, cadence, duration),
		GeneratedAt:       now,
	}
	if a != nil {
		snap.AccountID = a.ID
	}
	if !totals.LastDepositDate.IsZero() {
		d := totals.LastDepositDate
		snap.LastDepositDate = &d
	}
	return snap
}
