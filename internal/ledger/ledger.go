// Package ledger holds the accounting rules for barrel stock: closing
// balances over a site's history and dormancy classification with the
// waiting-period exclusion. Everything here is pure; callers fetch the
// records and pass the reference date in.
package ledger

import (
	"sort"
	"time"

	"github.com/grrdistribution/barrel-ledger/internal/model"
)

// OpeningClosingStock derives the balance of the opening snapshot.
// A negative result is accepted and read as an accounting deficit, not
// an error.
func OpeningClosingStock(full, abc, damaged int) int {
	return full + abc - damaged
}

// TransactionClosingStock derives the balance after one visit: barrels
// returned by the customer decrease their held stock, barrels supplied
// increase it.
func TransactionClosingStock(previous, fullReceived, abcSupplied int) int {
	return previous - fullReceived + abcSupplied
}

// Classification is the outcome of a dormancy pass: one representative
// record per customer site in each list. Dormant is ordered by date
// ascending.
type Classification struct {
	Dormant              []*model.BarrelRecord
	WaitingPeriodExpired []*model.BarrelRecord
	GapDays              int
}

// ClassifyDormancy partitions records by customer site and flags each
// site whose latest activity is gapDays or more before today.
//
// A site with ANY record carrying a waiting period end date never shows
// up as dormant; the rule deliberately looks at the whole history, not
// just the latest row, so a customer already under a waiting period is
// not re-flagged through an older entry. Sites whose waiting period end
// date has passed are reported separately in WaitingPeriodExpired.
func ClassifyDormancy(records []*model.BarrelRecord, today time.Time, gapDays int) Classification {
	today = Midnight(today)

	groups := make(map[string][]*model.BarrelRecord)
	for _, r := range records {
		k := r.Site().Key()
		groups[k] = append(groups[k], r)
	}

	out := Classification{GapDays: gapDays}
	for _, group := range groups {
		hasWaiting := false
		var expired *model.BarrelRecord
		for _, r := range group {
			if r.WaitingPeriodEndDate == nil {
				continue
			}
			hasWaiting = true
			if Midnight(*r.WaitingPeriodEndDate).After(today) {
				continue
			}
			if expired == nil || r.ID > expired.ID {
				expired = r
			}
		}
		if expired != nil {
			out.WaitingPeriodExpired = append(out.WaitingPeriodExpired, expired)
		}
		if hasWaiting {
			continue
		}

		rep := latestRecord(group)
		if rep == nil {
			continue
		}
		if DaysBetween(rep.Date, today) >= gapDays {
			out.Dormant = append(out.Dormant, rep)
		}
	}

	sort.Slice(out.Dormant, func(i, j int) bool {
		a, b := out.Dormant[i], out.Dormant[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		return a.ID < b.ID
	})
	sort.Slice(out.WaitingPeriodExpired, func(i, j int) bool {
		return out.WaitingPeriodExpired[i].ID < out.WaitingPeriodExpired[j].ID
	})
	return out
}

// latestRecord picks the most recent record by date, tie-broken by the
// larger id. Records without a date never qualify.
func latestRecord(group []*model.BarrelRecord) *model.BarrelRecord {
	var rep *model.BarrelRecord
	for _, r := range group {
		if r.Date.IsZero() {
			continue
		}
		if rep == nil {
			rep = r
			continue
		}
		rd, pd := Midnight(r.Date), Midnight(rep.Date)
		if rd.After(pd) || (rd.Equal(pd) && r.ID > rep.ID) {
			rep = r
		}
	}
	return rep
}

// Midnight normalizes a timestamp to its calendar date. Stored dates
// carry no timezone semantics, so comparisons happen in UTC.
func Midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the whole-day gap from one calendar date to
// another.
func DaysBetween(from, to time.Time) int {
	return int(Midnight(to).Sub(Midnight(from)).Hours() / 24)
}
