package handlers

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/fasthttp/router"
	"github.com/xuri/excelize/v2"

	"github.com/grrdistribution/barrel-ledger/internal/ledger"
	"github.com/grrdistribution/barrel-ledger/internal/model"
	"github.com/grrdistribution/barrel-ledger/internal/report"
	xhttp "github.com/grrdistribution/barrel-ledger/pkg/http"
	"github.com/grrdistribution/barrel-ledger/pkg/logger"
)

type ReportService interface {
	ClassifyDormancy(ctx context.Context, today time.Time, gapDays int) (ledger.Classification, error)
	CustomerHistory(ctx context.Context, customerName string) ([]*model.BarrelRecord, error)
	TownReport(ctx context.Context, town string) ([]*model.BarrelRecord, error)
	All(ctx context.Context) ([]*model.BarrelRecord, error)
}

type ReportHandler struct {
	svc ReportService
}

func RegisterReportRoutes(e *router.Group, h *ReportHandler) {
	e.GET("/reports/dormancy", h.GetDormancyReport)
	e.GET("/reports/dormancy/export", h.ExportDormancyReport)
	e.GET("/reports/town/{town}", h.GetTownReport)
	e.GET("/reports/town/{town}/export", h.ExportTownReport)
	e.GET("/reports/all-data", h.GetAllData)
	e.GET("/reports/all-data/export", h.ExportAllData)
	e.GET("/customers/{name}/report", h.ExportCustomerReport)
}

func NewReportHandler(reportService ReportService) *ReportHandler {
	return &ReportHandler{
		svc: reportService,
	}
}

type dormancyResponse struct {
	Dormant              []*model.BarrelRecord `json:"dormant"`
	WaitingPeriodExpired []*model.BarrelRecord `json:"waiting_period_expired"`
	GapDays              int                   `json:"gap_days"`
}

/* --------------------------------- Routes ----------------------------------- */

func (h *ReportHandler) GetDormancyReport(ctx *xhttp.RequestCtx) {
	today, gapDays, err := dormancyParams(ctx)
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, err.Error())
		return
	}

	c, err := h.svc.ClassifyDormancy(ctx, today, gapDays)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, dormancyResponse{
		Dormant:              c.Dormant,
		WaitingPeriodExpired: c.WaitingPeriodExpired,
		GapDays:              c.GapDays,
	})
}

func (h *ReportHandler) ExportDormancyReport(ctx *xhttp.RequestCtx) {
	today, gapDays, err := dormancyParams(ctx)
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, err.Error())
		return
	}

	c, err := h.svc.ClassifyDormancy(ctx, today, gapDays)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}

	f, err := report.NoTransaction(c)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeWorkbook(ctx, f, "no-transaction-report.xlsx")
}

func (h *ReportHandler) GetTownReport(ctx *xhttp.RequestCtx) {
	town, ok := ctx.UserValue("town").(string)
	if !ok || town == "" {
		writeError(ctx, xhttp.StatusBadRequest, "town is required")
		return
	}
	records, err := h.svc.TownReport(ctx, town)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, records)
}

func (h *ReportHandler) ExportTownReport(ctx *xhttp.RequestCtx) {
	town, ok := ctx.UserValue("town").(string)
	if !ok || town == "" {
		writeError(ctx, xhttp.StatusBadRequest, "town is required")
		return
	}
	records, err := h.svc.TownReport(ctx, town)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}

	f, err := report.Town(town, records)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeWorkbook(ctx, f, fmt.Sprintf("%s-report.xlsx", town))
}

func (h *ReportHandler) GetAllData(ctx *xhttp.RequestCtx) {
	records, err := h.svc.All(ctx)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, records)
}

func (h *ReportHandler) ExportAllData(ctx *xhttp.RequestCtx) {
	records, err := h.svc.All(ctx)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}

	f, err := report.CompleteData(records)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeWorkbook(ctx, f, "complete-data.xlsx")
}

func (h *ReportHandler) ExportCustomerReport(ctx *xhttp.RequestCtx) {
	name, ok := ctx.UserValue("name").(string)
	if !ok || name == "" {
		writeError(ctx, xhttp.StatusBadRequest, "customer name is required")
		return
	}
	records, err := h.svc.CustomerHistory(ctx, name)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}

	f, err := report.CustomerHistory(name, records)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeWorkbook(ctx, f, fmt.Sprintf("%s-report.xlsx", name))
}

/* --------------------------------- Helpers ----------------------------------- */

func dormancyParams(ctx *xhttp.RequestCtx) (time.Time, int, error) {
	var today time.Time
	if v := query(ctx, "today"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			return time.Time{}, 0, fmt.Errorf("invalid today, expected YYYY-MM-DD")
		}
		today = t
	}

	var gapDays int
	if v := query(ctx, "gap_days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return time.Time{}, 0, fmt.Errorf("gap_days must be a positive integer")
		}
		gapDays = n
	}
	return today, gapDays, nil
}

func writeWorkbook(ctx *xhttp.RequestCtx, f *excelize.File, filename string) {
	ctx.Response.Header.Set("Content-Type", report.ContentType)
	ctx.Response.Header.Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	ctx.Response.SetStatusCode(xhttp.StatusOK)
	if _, err := f.WriteTo(ctx.Response.BodyWriter()); err != nil {
		logger.Error("workbook write failed", "error", err)
	}
}
