// Package ledger is the projection engine for pigmy accounts: a set of
// pure functions that derive an account's financial state (totals, missed
// deposits, due dates, interest, maturity, running-balance statement) from
// its plan parameters and recorded transactions. Nothing here performs I/O
// or keeps state; missing or malformed inputs degrade to defaults instead
// of producing errors.
package ledger

import (
	"strings"

	"github.com/sanchaya/pigmy-bfa-go/internal/domain"
)

// ResolveCadence determines an account's cadence from its (possibly
// inconsistent) fields. Precedence: the account's own explicit type, then
// the plan's type, then a case-insensitive look at the plan's display name
// for "weekly" or "daily". Anything unresolvable falls back to monthly.
//
// This is the single cadence resolution path for the whole service; callers
// must not re-derive cadence from raw fields.
func ResolveCadence(a *domain.Account) domain.Cadence {
	if a == nil {
		return domain.CadenceMonthly
	}

	if c := domain.Cadence(strings.ToLower(a.AccountType)); c.Valid() {
		return c
	}

	if a.Plan != nil {
		if c := domain.Cadence(strings.ToLower(a.Plan.Type)); c.Valid() {
			return c
		}

		name := strings.ToLower(a.Plan.Name)
		switch {
		case strings.Contains(name, "weekly"):
			return domain.CadenceWeekly
		case strings.Contains(name, "daily"):
			return domain.CadenceDaily
		}
	}

	return domain.CadenceMonthly
}
