package ledger

import (
	"time"

	"github.com/sanchaya/pigmy-bfa-go/internal/domain"
)

// ExpectedDeposits returns the number of whole cadence periods elapsed
// between start and now: whole days for daily, whole 7-day periods for
// weekly, and calendar months ((y2−y1)*12 + (m2−m1), ignoring day of month)
// for monthly. A day that lands exactly on a period boundary counts as
// elapsed. A start date in the future clamps to zero.
func ExpectedDeposits(start, now time.Time, c domain.Cadence) int {
	switch c {
	case domain.CadenceDaily:
		return clampNonNegative(wholeDaysBetween(start, now))
	case domain.CadenceWeekly:
		return clampNonNegative(wholeDaysBetween(start, now) / 7)
	default: // monthly
		months := (now.Year()-start.Year())*12 + int(now.Month()) - int(start.Month())
		return clampNonNegative(months)
	}
}

// MissedDeposits is the count of elapsed periods without a corresponding
// settled transaction, never negative.
func MissedDeposits(expected, settledCount int) int {
	return clampNonNegative(expected - settledCount)
}

// NextDueDate is one cadence period after the most recent settled
// transaction, or after the start date when nothing has been recorded yet.
func NextDueDate(start, lastTransaction time.Time, c domain.Cadence) time.Time {
	base := start
	if !lastTransaction.IsZero() {
		base = lastTransaction
	}
	return AddPeriods(base, c, 1)
}

// AddPeriods advances t by n cadence periods: n days, n*7 days, or n
// calendar months.
func AddPeriods(t time.Time, c domain.Cadence, n int) time.Time {
	switch c {
	case domain.CadenceDaily:
		return t.AddDate(0, 0, n)
	case domain.CadenceWeekly:
		return t.AddDate(0, 0, 7*n)
	default: // monthly
		return t.AddDate(0, n, 0)
	}
}

// wholeDaysBetween counts calendar days from a to b, comparing dates only
// so that time-of-day differences never produce off-by-one periods.
func wholeDaysBetween(a, b time.Time) int {
	ad := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bd := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(bd.Sub(ad) / (24 * time.Hour))
}

func clampNonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
