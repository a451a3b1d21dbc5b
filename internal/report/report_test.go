package report

import (
	"testing"
	"time"

	"github.com/grrdistribution/barrel-ledger/internal/ledger"
	"github.com/grrdistribution/barrel-ledger/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecords() []*model.BarrelRecord {
	return []*model.BarrelRecord{
		{
			ID:            1,
			CustomerName:  "Acme Traders",
			ContactNumber: "9876500000",
			SiteAreaName:  "north",
			Town:          "Pune",
			Date:          time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
			OSFullBarrels: 10, OSABCBarrels: 5, OSDamagedBarrels: 2,
			ClosingStock: 13,
		},
		{
			ID:                  2,
			CustomerName:        "Acme Traders",
			ContactNumber:       "9876500000",
			SiteAreaName:        "north",
			Town:                "Pune",
			Date:                time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
			FullBarrelsReceived: 3, ABCBarrelsSupplied: 1,
			ClosingStock: 11,
		},
	}
}

func TestCustomerHistoryWorkbook(t *testing.T) {
	f, err := CustomerHistory("Acme Traders", sampleRecords())
	require.NoError(t, err)
	defer f.Close()

	sheet := f.GetSheetName(0)

	head, err := f.GetCellValue(sheet, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Customer Name", head)

	closing, err := f.GetCellValue(sheet, "H3")
	require.NoError(t, err)
	assert.Equal(t, "11", closing)

	date, err := f.GetCellValue(sheet, "E2")
	require.NoError(t, err)
	assert.Equal(t, "2025-01-10", date)
}

func TestNoTransactionWorkbookHasTwoSheets(t *testing.T) {
	end := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	c := ledger.Classification{
		Dormant: []*model.BarrelRecord{
			{ID: 1, CustomerName: "Dormant Co", ContactNumber: "111", Date: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)},
		},
		WaitingPeriodExpired: []*model.BarrelRecord{
			{ID: 2, CustomerName: "Waiting Co", ContactNumber: "222", WaitingPeriodEndDate: &end},
		},
	}

	f, err := NoTransaction(c)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"No Transaction", "Waiting Period Ended"}, f.GetSheetList())

	name, err := f.GetCellValue("No Transaction", "A2")
	require.NoError(t, err)
	assert.Equal(t, "Dormant Co", name)

	waiting, err := f.GetCellValue("Waiting Period Ended", "C2")
	require.NoError(t, err)
	assert.Equal(t, "2025-06-10", waiting)
}

func TestCompleteDataWorkbook(t *testing.T) {
	f, err := CompleteData(sampleRecords())
	require.NoError(t, err)
	defer f.Close()

	sheet := f.GetSheetName(0)
	assert.Equal(t, "Complete Barrel Transactions", sheet)

	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	require.Len(t, rows, 3) // header + 2 records
	assert.Len(t, rows[0], 15)

	osFull, err := f.GetCellValue(sheet, "L2")
	require.NoError(t, err)
	assert.Equal(t, "10", osFull)
}

func TestTownWorkbook(t *testing.T) {
	f, err := Town("Pune", sampleRecords())
	require.NoError(t, err)
	defer f.Close()

	sheet := f.GetSheetName(0)
	assert.Equal(t, "Pune Report", sheet)

	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}
