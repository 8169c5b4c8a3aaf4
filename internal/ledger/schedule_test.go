package ledger

import (
	"testing"
	"time"

	"github.com/sanchaya/pigmy-bfa-go/internal/domain"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestExpectedDeposits(t *testing.T) {
	tests := []struct {
		name    string
		start   time.Time
		now     time.Time
		cadence domain.Cadence
		want    int
	}{
		{
			name:    "monthly ignores day of month",
			start:   date(2024, 1, 1),
			now:     date(2024, 4, 1),
			cadence: domain.CadenceMonthly,
			want:    3,
		},
		{
			name:    "monthly counts month rollover even mid-month",
			start:   date(2024, 1, 25),
			now:     date(2024, 2, 2),
			cadence: domain.CadenceMonthly,
			want:    1,
		},
		{
			name:    "daily whole days",
			start:   date(2024, 3, 1),
			now:     date(2024, 3, 11),
			cadence: domain.CadenceDaily,
			want:    10,
		},
		{
			name:    "daily ignores time of day",
			start:   time.Date(2024, 3, 1, 23, 0, 0, 0, time.UTC),
			now:     time.Date(2024, 3, 2, 1, 0, 0, 0, time.UTC),
			cadence: domain.CadenceDaily,
			want:    1,
		},
		{
			name:    "weekly floors partial weeks",
			start:   date(2024, 1, 1),
			now:     date(2024, 1, 13),
			cadence: domain.CadenceWeekly,
			want:    1,
		},
		{
			name:    "weekly boundary day counts as elapsed",
			start:   date(2024, 1, 1),
			now:     date(2024, 1, 8),
			cadence: domain.CadenceWeekly,
			want:    1,
		},
		{
			name:    "start equal to today is zero for daily",
			start:   date(2024, 6, 15),
			now:     date(2024, 6, 15),
			cadence: domain.CadenceDaily,
			want:    0,
		},
		{
			name:    "start equal to today is zero for weekly",
			start:   date(2024, 6, 15),
			now:     date(2024, 6, 15),
			cadence: domain.CadenceWeekly,
			want:    0,
		},
		{
			name:    "start equal to today is zero for monthly",
			start:   date(2024, 6, 15),
			now:     date(2024, 6, 15),
			cadence: domain.CadenceMonthly,
			want:    0,
		},
		{
			name:    "future start clamps to zero",
			start:   date(2025, 1, 1),
			now:     date(2024, 6, 15),
			cadence: domain.CadenceMonthly,
			want:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExpectedDeposits(tt.start, tt.now, tt.cadence); got != tt.want {
				t.Errorf("ExpectedDeposits() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMissedDeposits(t *testing.T) {
	if got := MissedDeposits(3, 2); got != 1 {
		t.Errorf("MissedDeposits(3, 2) = %d, want 1", got)
	}
	if got := MissedDeposits(2, 5); got != 0 {
		t.Errorf("MissedDeposits(2, 5) = %d, want 0 (ahead of schedule clamps)", got)
	}
	if got := MissedDeposits(0, 0); got != 0 {
		t.Errorf("MissedDeposits(0, 0) = %d, want 0", got)
	}
}

func TestNextDueDate(t *testing.T) {
	start := date(2024, 1, 1)

	tests := []struct {
		name    string
		last    time.Time
		cadence domain.Cadence
		want    time.Time
	}{
		{"daily after last transaction", date(2024, 2, 10), domain.CadenceDaily, date(2024, 2, 11)},
		{"weekly after last transaction", date(2024, 2, 10), domain.CadenceWeekly, date(2024, 2, 17)},
		{"monthly after last transaction", date(2024, 2, 10), domain.CadenceMonthly, date(2024, 3, 10)},
		{"no transactions falls back to start", time.Time{}, domain.CadenceMonthly, date(2024, 2, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextDueDate(start, tt.last, tt.cadence)
			if !got.Equal(tt.want) {
				t.Errorf("NextDueDate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAddPeriods_MaturitySpans(t *testing.T) {
	start := date(2024, 1, 31)

	// 12 monthly periods land a year later; Go normalizes month-end overflow.
	if got := AddPeriods(start, domain.CadenceMonthly, 12); !got.Equal(date(2025, 1, 31)) {
		t.Errorf("12 months from Jan 31 = %v, want 2025-01-31", got)
	}
	if got := AddPeriods(date(2024, 1, 1), domain.CadenceWeekly, 4); !got.Equal(date(2024, 1, 29)) {
		t.Errorf("4 weeks from Jan 1 = %v, want 2024-01-29", got)
	}
	if got := AddPeriods(date(2024, 1, 1), domain.CadenceDaily, 90); !got.Equal(date(2024, 3, 31)) {
		t.Errorf("90 days from Jan 1 = %v, want 2024-03-31", got)
	}
}
