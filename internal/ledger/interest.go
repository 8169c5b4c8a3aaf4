package ledger

import (
	"math"
	"time"

	"github.com/sanchaya/pigmy-bfa-go/internal/domain"
)

// DefaultAnnualRate is used when neither the account nor its plan carries
// an interest rate.
const DefaultAnnualRate = 6.5

// ResolveRate picks the account's interest rate, falling back to the plan's
// rate and then to DefaultAnnualRate.
func ResolveRate(a *domain.Account) float64 {
	if a == nil {
		return DefaultAnnualRate
	}
	if a.InterestRate > 0 {
		return a.InterestRate
	}
	if a.Plan != nil && a.Plan.InterestRate > 0 {
		return a.Plan.InterestRate
	}
	return DefaultAnnualRate
}

// Interest computes simple interest on the deposited total:
// totalDeposits × rate/100 × duration/12.
//
// The divisor is always 12 — duration is treated as a month count even for
// daily and weekly plans. That mirrors the established product behavior; a
// 365-period daily plan accrues as if it ran 365 months. Flagged with the
// product team, reproduced here unchanged.
func Interest(totalDeposits, rate float64, duration int) float64 {
	return totalDeposits * rate / 100 * float64(duration) / 12
}

// MaturityDate is the start date advanced by the full committed duration in
// cadence periods.
func MaturityDate(start time.Time, c domain.Cadence, duration int) time.Time {
	return AddPeriods(start, c, duration)
}

// Round2 rounds a currency amount to two decimal places for display.
// Intermediate sums are never rounded.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
