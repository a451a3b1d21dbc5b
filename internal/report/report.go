// Package report renders ledger data to spreadsheet workbooks for
// download or file export.
package report

import (
	"fmt"
	"time"

	"github.com/grrdistribution/barrel-ledger/internal/ledger"
	"github.com/grrdistribution/barrel-ledger/internal/model"
	"github.com/xuri/excelize/v2"
)

const dateLayout = "2006-01-02"

// ContentType is the MIME type of the produced workbooks.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// CustomerHistory renders one customer's full ledger, the per-customer
// report the distributor hands out on request.
func CustomerHistory(customerName string, records []*model.BarrelRecord) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	headers := []string{
		"Customer Name",
		"Contact Number",
		"Site Area Name",
		"Town",
		"Date",
		"Number of Full Barrels Received",
		"Number of ABC Barrels Supplied",
		"Number of Barrels remaining with the Customer",
	}
	if err := writeHeaders(f, sheet, headers); err != nil {
		return nil, err
	}

	for i, r := range records {
		row := i + 2
		f.SetCellValue(sheet, "A"+fmt.Sprint(row), r.CustomerName)
		f.SetCellValue(sheet, "B"+fmt.Sprint(row), r.ContactNumber)
		f.SetCellValue(sheet, "C"+fmt.Sprint(row), r.SiteAreaName)
		f.SetCellValue(sheet, "D"+fmt.Sprint(row), r.Town)
		f.SetCellValue(sheet, "E"+fmt.Sprint(row), formatDate(r.Date))
		f.SetCellValue(sheet, "F"+fmt.Sprint(row), r.FullBarrelsReceived)
		f.SetCellValue(sheet, "G"+fmt.Sprint(row), r.ABCBarrelsSupplied)
		f.SetCellValue(sheet, "H"+fmt.Sprint(row), r.ClosingStock)
	}

	f.SetSheetName(sheet, "Report for "+clampSheetName(customerName))
	return f, nil
}

// NoTransaction renders the dormancy pass as a two-sheet workbook: the
// dormant customers and the customers whose waiting period has ended.
func NoTransaction(c ledger.Classification) (*excelize.File, error) {
	f := excelize.NewFile()
	dormantSheet := f.GetSheetName(0)
	f.SetSheetName(dormantSheet, "No Transaction")
	dormantSheet = "No Transaction"

	headers := []string{"Customer Name", "Contact Number", "Date"}
	if err := writeHeaders(f, dormantSheet, headers); err != nil {
		return nil, err
	}
	for i, r := range c.Dormant {
		row := i + 2
		f.SetCellValue(dormantSheet, "A"+fmt.Sprint(row), r.CustomerName)
		f.SetCellValue(dormantSheet, "B"+fmt.Sprint(row), r.ContactNumber)
		f.SetCellValue(dormantSheet, "C"+fmt.Sprint(row), formatDate(r.Date))
	}

	waitingSheet := "Waiting Period Ended"
	if _, err := f.NewSheet(waitingSheet); err != nil {
		return nil, err
	}
	headers = []string{"Customer Name", "Contact Number", "Waiting Period End Date"}
	if err := writeHeaders(f, waitingSheet, headers); err != nil {
		return nil, err
	}
	for i, r := range c.WaitingPeriodExpired {
		row := i + 2
		f.SetCellValue(waitingSheet, "A"+fmt.Sprint(row), r.CustomerName)
		f.SetCellValue(waitingSheet, "B"+fmt.Sprint(row), r.ContactNumber)
		if r.WaitingPeriodEndDate != nil {
			f.SetCellValue(waitingSheet, "C"+fmt.Sprint(row), formatDate(*r.WaitingPeriodEndDate))
		}
	}

	return f, nil
}

// CompleteData renders every column of every record, the audit dump.
func CompleteData(records []*model.BarrelRecord) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	headers := []string{
		"ID",
		"Customer Name",
		"Contact Number",
		"Site Area",
		"Town",
		"Date",
		"Full Barrels Rec.",
		"ABC Barrels Sup.",
		"Closing Stock",
		"Vehicle No.",
		"Driver Name",
		"OS Full Barrels",
		"OS ABC Barrels",
		"OS Damaged Barrels",
		"Waiting Period End Date",
	}
	if err := writeHeaders(f, sheet, headers); err != nil {
		return nil, err
	}

	for i, r := range records {
		row := i + 2
		waiting := ""
		if r.WaitingPeriodEndDate != nil {
			waiting = formatDate(*r.WaitingPeriodEndDate)
		}
		values := []interface{}{
			r.ID,
			r.CustomerName,
			r.ContactNumber,
			r.SiteAreaName,
			r.Town,
			formatDate(r.Date),
			r.FullBarrelsReceived,
			r.ABCBarrelsSupplied,
			r.ClosingStock,
			r.VehicleNumber,
			r.DriverName,
			r.OSFullBarrels,
			r.OSABCBarrels,
			r.OSDamagedBarrels,
			waiting,
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return nil, err
			}
			f.SetCellValue(sheet, cell, v)
		}
	}

	f.SetSheetName(sheet, "Complete Barrel Transactions")
	return f, nil
}

// Town renders each customer's latest position within one town.
func Town(town string, records []*model.BarrelRecord) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	headers := []string{
		"Customer Name",
		"Contact Number",
		"Site Area Name",
		"Date",
		"Closing Stock",
	}
	if err := writeHeaders(f, sheet, headers); err != nil {
		return nil, err
	}

	for i, r := range records {
		row := i + 2
		f.SetCellValue(sheet, "A"+fmt.Sprint(row), r.CustomerName)
		f.SetCellValue(sheet, "B"+fmt.Sprint(row), r.ContactNumber)
		f.SetCellValue(sheet, "C"+fmt.Sprint(row), r.SiteAreaName)
		f.SetCellValue(sheet, "D"+fmt.Sprint(row), formatDate(r.Date))
		f.SetCellValue(sheet, "E"+fmt.Sprint(row), r.ClosingStock)
	}

	f.SetSheetName(sheet, clampSheetName(town)+" Report")
	return f, nil
}

func writeHeaders(f *excelize.File, sheet string, headers []string) error {
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	return nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

// clampSheetName keeps names inside the 31-char sheet limit.
func clampSheetName(s string) string {
	const max = 20
	if len(s) > max {
		return s[:max]
	}
	return s
}
