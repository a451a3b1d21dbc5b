package ledger

import (
	"testing"
	"time"

	"github.com/grrdistribution/barrel-ledger/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var today = time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

func daysAgo(n int) time.Time {
	return today.AddDate(0, 0, -n)
}

func rec(id int64, customer string, date time.Time) *model.BarrelRecord {
	return &model.BarrelRecord{
		ID:           id,
		CustomerName: customer,
		Date:         date,
	}
}

func TestOpeningClosingStock(t *testing.T) {
	tests := []struct {
		name               string
		full, abc, damaged int
		want               int
	}{
		{"plain", 10, 5, 2, 13},
		{"zero", 0, 0, 0, 0},
		{"damaged exceeds stock", 1, 1, 5, -3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, OpeningClosingStock(tt.full, tt.abc, tt.damaged))
		})
	}
}

func TestTransactionClosingStock(t *testing.T) {
	tests := []struct {
		name                     string
		prev, received, supplied int
		want                     int
	}{
		{"plain", 13, 3, 1, 11},
		{"all returned", 5, 5, 0, 0},
		{"into deficit", 2, 5, 0, -3},
		{"negative baseline", -3, 0, 10, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TransactionClosingStock(tt.prev, tt.received, tt.supplied))
		})
	}
}

func TestClassifyDormancy_GapReached(t *testing.T) {
	// Scenario A: a single record 31 days old with no waiting period is
	// dormant at a 30-day threshold.
	records := []*model.BarrelRecord{rec(1, "X", daysAgo(31))}

	c := ClassifyDormancy(records, today, 30)
	require.Len(t, c.Dormant, 1)
	assert.Equal(t, int64(1), c.Dormant[0].ID)
	assert.Empty(t, c.WaitingPeriodExpired)
}

func TestClassifyDormancy_GapNotReached(t *testing.T) {
	records := []*model.BarrelRecord{rec(1, "X", daysAgo(29))}

	c := ClassifyDormancy(records, today, 30)
	assert.Empty(t, c.Dormant)
	assert.Empty(t, c.WaitingPeriodExpired)
}

func TestClassifyDormancy_GapExactlyAtThreshold(t *testing.T) {
	records := []*model.BarrelRecord{rec(1, "X", daysAgo(30))}

	c := ClassifyDormancy(records, today, 30)
	assert.Len(t, c.Dormant, 1)
}

func TestClassifyDormancy_WaitingPeriodExpired(t *testing.T) {
	// Scenario B: the waiting period passed yesterday. The record moves to
	// the expired list and is excluded from dormancy.
	end := daysAgo(1)
	r := rec(1, "X", daysAgo(31))
	r.WaitingPeriodEndDate = &end

	c := ClassifyDormancy([]*model.BarrelRecord{r}, today, 30)
	assert.Empty(t, c.Dormant)
	require.Len(t, c.WaitingPeriodExpired, 1)
	assert.Equal(t, int64(1), c.WaitingPeriodExpired[0].ID)
}

func TestClassifyDormancy_WaitingPeriodEndingToday(t *testing.T) {
	end := today
	r := rec(1, "X", daysAgo(31))
	r.WaitingPeriodEndDate = &end

	c := ClassifyDormancy([]*model.BarrelRecord{r}, today, 30)
	assert.Empty(t, c.Dormant)
	assert.Len(t, c.WaitingPeriodExpired, 1)
}

func TestClassifyDormancy_FutureWaitingPeriodExcludesWithoutExpiry(t *testing.T) {
	end := today.AddDate(0, 0, 10)
	r := rec(1, "X", daysAgo(90))
	r.WaitingPeriodEndDate = &end

	c := ClassifyDormancy([]*model.BarrelRecord{r}, today, 30)
	assert.Empty(t, c.Dormant)
	assert.Empty(t, c.WaitingPeriodExpired)
}

func TestClassifyDormancy_AnyRecordWithWaitingPeriodExcludesSite(t *testing.T) {
	// The exclusion looks at the whole history: a waiting period on an
	// old row shields the site even when the latest row has none.
	end := today.AddDate(0, 0, 5)
	old := rec(1, "X", daysAgo(120))
	old.WaitingPeriodEndDate = &end
	latest := rec(2, "X", daysAgo(45))

	c := ClassifyDormancy([]*model.BarrelRecord{old, latest}, today, 30)
	assert.Empty(t, c.Dormant)
	assert.Empty(t, c.WaitingPeriodExpired)
}

func TestClassifyDormancy_DedupKeepsLargestID(t *testing.T) {
	// Scenario D: duplicate rows on the same date resolve to the larger id.
	records := []*model.BarrelRecord{
		rec(100, "Y", daysAgo(40)),
		rec(101, "Y", daysAgo(40)),
	}

	c := ClassifyDormancy(records, today, 30)
	require.Len(t, c.Dormant, 1)
	assert.Equal(t, int64(101), c.Dormant[0].ID)
}

func TestClassifyDormancy_LatestRecordWins(t *testing.T) {
	// A recent visit keeps the site active no matter how old the rest of
	// the history is.
	records := []*model.BarrelRecord{
		rec(1, "X", daysAgo(200)),
		rec(2, "X", daysAgo(5)),
	}

	c := ClassifyDormancy(records, today, 30)
	assert.Empty(t, c.Dormant)
}

func TestClassifyDormancy_ExpiredDedupKeepsLargestID(t *testing.T) {
	end := daysAgo(2)
	a := rec(10, "X", daysAgo(60))
	a.WaitingPeriodEndDate = &end
	b := rec(11, "X", daysAgo(50))
	b.WaitingPeriodEndDate = &end

	c := ClassifyDormancy([]*model.BarrelRecord{a, b}, today, 30)
	require.Len(t, c.WaitingPeriodExpired, 1)
	assert.Equal(t, int64(11), c.WaitingPeriodExpired[0].ID)
}

func TestClassifyDormancy_SitesArePartitionedByPair(t *testing.T) {
	a := rec(1, "X", daysAgo(40))
	a.SiteAreaName = "north"
	b := rec(2, "X", daysAgo(40))
	b.SiteAreaName = "south"

	c := ClassifyDormancy([]*model.BarrelRecord{a, b}, today, 30)
	assert.Len(t, c.Dormant, 2)
}

func TestClassifyDormancy_DormantSortedByDateAscending(t *testing.T) {
	records := []*model.BarrelRecord{
		rec(1, "A", daysAgo(35)),
		rec(2, "B", daysAgo(90)),
		rec(3, "C", daysAgo(60)),
	}

	c := ClassifyDormancy(records, today, 30)
	require.Len(t, c.Dormant, 3)
	assert.Equal(t, "B", c.Dormant[0].CustomerName)
	assert.Equal(t, "C", c.Dormant[1].CustomerName)
	assert.Equal(t, "A", c.Dormant[2].CustomerName)
}

func TestClassifyDormancy_ConfigurableThreshold(t *testing.T) {
	records := []*model.BarrelRecord{rec(1, "X", daysAgo(45))}

	assert.Len(t, ClassifyDormancy(records, today, 30).Dormant, 1)
	assert.Empty(t, ClassifyDormancy(records, today, 60).Dormant)
}

func TestClassifyDormancy_Idempotent(t *testing.T) {
	end := daysAgo(3)
	withWaiting := rec(4, "Z", daysAgo(70))
	withWaiting.WaitingPeriodEndDate = &end
	records := []*model.BarrelRecord{
		rec(1, "A", daysAgo(35)),
		rec(2, "B", daysAgo(90)),
		rec(3, "B", daysAgo(10)),
		withWaiting,
	}

	first := ClassifyDormancy(records, today, 30)
	second := ClassifyDormancy(records, today, 30)
	assert.Equal(t, first, second)
}

func TestClassifyDormancy_RecordsWithoutDateAreIgnored(t *testing.T) {
	records := []*model.BarrelRecord{rec(1, "X", time.Time{})}

	c := ClassifyDormancy(records, today, 30)
	assert.Empty(t, c.Dormant)
}

func TestDaysBetween_NormalizesToMidnight(t *testing.T) {
	// A late-evening record 30 days back is still a full 30-day gap
	// against an early-morning reference.
	from := time.Date(2025, 5, 16, 23, 50, 0, 0, time.UTC)
	to := time.Date(2025, 6, 15, 0, 10, 0, 0, time.UTC)
	assert.Equal(t, 30, DaysBetween(from, to))
}

func TestMidnight(t *testing.T) {
	ts := time.Date(2025, 6, 15, 18, 4, 9, 12, time.FixedZone("X", 3600))
	assert.Equal(t, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), Midnight(ts))
}
