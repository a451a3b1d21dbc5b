package repository

import (
	"context"
	"testing"
	"time"

	"github.com/grrdistribution/barrel-ledger/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func seedRecord(t *testing.T, repo *BarrelRecordRepository, customer, site, town string, day time.Time, closing int) *model.BarrelRecord {
	t.Helper()
	created, err := repo.Create(context.Background(), &model.BarrelRecord{
		CustomerName: customer,
		SiteAreaName: site,
		Town:         town,
		Date:         day,
		ClosingStock: closing,
	})
	require.NoError(t, err)
	return created
}

func TestBarrelRecordRepository_CreateAssignsID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBarrelRecordRepository(db.DB)

	first := seedRecord(t, repo, "Acme", "north", "Pune", date(2025, 1, 10), 13)
	second := seedRecord(t, repo, "Acme", "north", "Pune", date(2025, 1, 20), 11)

	assert.NotZero(t, first.ID)
	assert.Greater(t, second.ID, first.ID)
}

func TestBarrelRecordRepository_HistoryOrdering(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBarrelRecordRepository(db.DB)
	ctx := context.Background()

	seedRecord(t, repo, "Acme", "north", "Pune", date(2025, 2, 1), 10)
	seedRecord(t, repo, "Acme", "north", "Pune", date(2025, 1, 1), 13)
	// same-date duplicate, higher id must come last
	seedRecord(t, repo, "Acme", "north", "Pune", date(2025, 2, 1), 9)
	seedRecord(t, repo, "Acme", "south", "Pune", date(2025, 1, 15), 5)

	history, err := repo.History(ctx, model.CustomerSite{CustomerName: "Acme", SiteAreaName: "north"})
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, 13, history[0].ClosingStock)
	assert.Equal(t, 10, history[1].ClosingStock)
	assert.Equal(t, 9, history[2].ClosingStock)
}

func TestBarrelRecordRepository_HistoryByCustomerSpansSites(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBarrelRecordRepository(db.DB)

	seedRecord(t, repo, "Acme", "north", "Pune", date(2025, 1, 1), 13)
	seedRecord(t, repo, "Acme", "south", "Pune", date(2025, 1, 2), 5)
	seedRecord(t, repo, "Other", "", "Pune", date(2025, 1, 3), 1)

	history, err := repo.HistoryByCustomer(context.Background(), "Acme")
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestBarrelRecordRepository_LatestTieBreaksByID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBarrelRecordRepository(db.DB)

	seedRecord(t, repo, "Acme", "north", "Pune", date(2025, 3, 1), 10)
	dup := seedRecord(t, repo, "Acme", "north", "Pune", date(2025, 3, 1), 8)

	latest, err := repo.Latest(context.Background(), model.CustomerSite{CustomerName: "Acme", SiteAreaName: "north"})
	require.NoError(t, err)
	assert.Equal(t, dup.ID, latest.ID)
}

func TestBarrelRecordRepository_LatestNotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBarrelRecordRepository(db.DB)

	_, err := repo.Latest(context.Background(), model.CustomerSite{CustomerName: "Nobody"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBarrelRecordRepository_SetWaitingPeriod(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBarrelRecordRepository(db.DB)
	ctx := context.Background()

	rec := seedRecord(t, repo, "Acme", "north", "Pune", date(2025, 1, 1), 13)

	end := date(2025, 6, 1)
	require.NoError(t, repo.SetWaitingPeriod(ctx, rec.ID, &end))

	latest, err := repo.Latest(ctx, rec.Site())
	require.NoError(t, err)
	require.NotNil(t, latest.WaitingPeriodEndDate)
	assert.Equal(t, "2025-06-01", latest.WaitingPeriodEndDate.Format("2006-01-02"))

	// clearing writes NULL back
	require.NoError(t, repo.SetWaitingPeriod(ctx, rec.ID, nil))
	latest, err = repo.Latest(ctx, rec.Site())
	require.NoError(t, err)
	assert.Nil(t, latest.WaitingPeriodEndDate)
}

func TestBarrelRecordRepository_SetWaitingPeriodUnknownID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBarrelRecordRepository(db.DB)

	end := date(2025, 6, 1)
	err := repo.SetWaitingPeriod(context.Background(), 9999, &end)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBarrelRecordRepository_DeleteSite(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBarrelRecordRepository(db.DB)
	ctx := context.Background()

	seedRecord(t, repo, "Acme", "north", "Pune", date(2025, 1, 1), 13)
	seedRecord(t, repo, "Acme", "north", "Pune", date(2025, 1, 2), 11)
	seedRecord(t, repo, "Acme", "south", "Pune", date(2025, 1, 3), 5)

	deleted, err := repo.DeleteSite(ctx, model.CustomerSite{CustomerName: "Acme", SiteAreaName: "north"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	remaining, err := repo.HistoryByCustomer(ctx, "Acme")
	require.NoError(t, err)
	assert.Len(t, remaining, 1)
}

func TestBarrelRecordRepository_DeleteSiteEmptySiteMatchesEmpty(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBarrelRecordRepository(db.DB)
	ctx := context.Background()

	seedRecord(t, repo, "Acme", "", "Pune", date(2025, 1, 1), 13)
	seedRecord(t, repo, "Acme", "north", "Pune", date(2025, 1, 2), 11)

	deleted, err := repo.DeleteSite(ctx, model.CustomerSite{CustomerName: "Acme"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	remaining, err := repo.HistoryByCustomer(ctx, "Acme")
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "north", remaining[0].SiteAreaName)
}

func TestBarrelRecordRepository_DeleteSiteNoMatch(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBarrelRecordRepository(db.DB)

	deleted, err := repo.DeleteSite(context.Background(), model.CustomerSite{CustomerName: "Nobody"})
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func TestBarrelRecordRepository_Listings(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBarrelRecordRepository(db.DB)
	ctx := context.Background()

	seedRecord(t, repo, "Acme", "north", "Pune", date(2025, 1, 1), 13)
	seedRecord(t, repo, "Acme", "north", "Pune", date(2025, 1, 2), 11)
	seedRecord(t, repo, "Acme", "south", "Nashik", date(2025, 1, 3), 5)
	seedRecord(t, repo, "Bharat", "", "", date(2025, 1, 4), 2)

	sites, err := repo.Sites(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.CustomerSite{
		{CustomerName: "Acme", SiteAreaName: "north"},
		{CustomerName: "Acme", SiteAreaName: "south"},
		{CustomerName: "Bharat", SiteAreaName: ""},
	}, sites)

	customers, err := repo.Customers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Acme", "Bharat"}, customers)

	towns, err := repo.Towns(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Nashik", "Pune"}, towns)
}

func TestBarrelRecordRepository_List(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBarrelRecordRepository(db.DB)
	ctx := context.Background()

	seedRecord(t, repo, "Acme", "north", "Pune", date(2025, 1, 1), 13)
	seedRecord(t, repo, "Acme", "north", "Pune", date(2025, 2, 1), 11)
	seedRecord(t, repo, "Bharat", "", "Nashik", date(2025, 3, 1), 2)

	name := "Acme"
	items, total, err := repo.List(ctx, model.RecordFilter{CustomerName: &name})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, items, 2)
	assert.True(t, items[0].Date.Before(items[1].Date))

	town := "Nashik"
	items, total, err = repo.List(ctx, model.RecordFilter{Town: &town})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, items, 1)

	from := date(2025, 2, 1)
	items, total, err = repo.List(ctx, model.RecordFilter{From: &from, Desc: true})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, items, 2)
	assert.True(t, items[0].Date.After(items[1].Date))
}

func TestBarrelRecordRepository_LatestPerCustomerInTown(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBarrelRecordRepository(db.DB)
	ctx := context.Background()

	seedRecord(t, repo, "Acme", "north", "Pune", date(2025, 1, 1), 13)
	latestAcme := seedRecord(t, repo, "Acme", "north", "Pune", date(2025, 2, 1), 11)
	latestBharat := seedRecord(t, repo, "Bharat", "", "Pune", date(2025, 1, 15), 2)
	seedRecord(t, repo, "Chetan", "", "Nashik", date(2025, 3, 1), 7)

	rows, err := repo.LatestPerCustomerInTown(ctx, "Pune")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, latestAcme.ID, rows[0].ID)
	assert.Equal(t, latestBharat.ID, rows[1].ID)
}

func TestBarrelRecordRepository_WithinTransactionRollsBack(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBarrelRecordRepository(db.DB)
	ctx := context.Background()

	err := repo.WithinTransaction(ctx, func(ctx context.Context) error {
		_, err := repo.Create(ctx, &model.BarrelRecord{
			CustomerName: "Acme",
			Date:         date(2025, 1, 1),
		})
		require.NoError(t, err)
		return assert.AnError
	})
	assert.Error(t, err)

	history, err := repo.HistoryByCustomer(ctx, "Acme")
	require.NoError(t, err)
	assert.Empty(t, history)
}
