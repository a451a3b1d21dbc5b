package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/fasthttp/router"
	"github.com/grrdistribution/barrel-ledger/internal/model"
	"github.com/grrdistribution/barrel-ledger/internal/services"
	xhttp "github.com/grrdistribution/barrel-ledger/pkg/http"
	"github.com/grrdistribution/barrel-ledger/pkg/logger"
)

type RecordService interface {
	OpenSite(ctx context.Context, p model.OpeningRequest) (*model.BarrelRecord, error)
	AppendTransaction(ctx context.Context, p model.TransactionRequest) (*model.BarrelRecord, error)
	Latest(ctx context.Context, site model.CustomerSite) (*model.BarrelRecord, error)
	History(ctx context.Context, site model.CustomerSite) ([]*model.BarrelRecord, error)
	List(ctx context.Context, f model.RecordFilter) ([]*model.BarrelRecord, int64, error)
	CustomerHistory(ctx context.Context, customerName string) ([]*model.BarrelRecord, error)
	SetWaitingPeriod(ctx context.Context, id int64, endDate *time.Time) error
	DeleteSite(ctx context.Context, site model.CustomerSite) (int64, error)
	Sites(ctx context.Context) ([]model.CustomerSite, error)
	Customers(ctx context.Context) ([]string, error)
	Towns(ctx context.Context) ([]string, error)
}

type RecordHandler struct {
	svc RecordService
}

func RegisterRecordRoutes(e *router.Group, h *RecordHandler) {
	e.POST("/records/opening", h.CreateOpeningRecord)
	e.POST("/records", h.CreateTransactionRecord)
	e.GET("/records", h.ListRecords)
	e.GET("/records/latest", h.GetLatestRecord)
	e.GET("/records/history", h.GetSiteHistory)
	e.PUT("/records/{id}/waiting-period", h.SetWaitingPeriod)
	e.GET("/customers", h.ListCustomers)
	e.GET("/customers/{name}/records", h.GetCustomerRecords)
	e.GET("/sites", h.ListSites)
	e.GET("/towns", h.ListTowns)
	e.DELETE("/sites", h.DeleteSite)
}

func NewRecordHandler(recordService RecordService) *RecordHandler {
	return &RecordHandler{
		svc: recordService,
	}
}

type openingRequest struct {
	CustomerName     string `json:"customer_name"`
	ContactNumber    string `json:"contact_number"`
	SiteAreaName     string `json:"site_area_name"`
	Town             string `json:"town"`
	Date             string `json:"date"`
	OSFullBarrels    *int   `json:"os_full_barrels"`
	OSABCBarrels     *int   `json:"os_abc_barrels"`
	OSDamagedBarrels *int   `json:"os_damaged_barrels"`
}

type transactionRequest struct {
	CustomerName        string `json:"customer_name"`
	ContactNumber       string `json:"contact_number"`
	SiteAreaName        string `json:"site_area_name"`
	Town                string `json:"town"`
	Date                string `json:"date"`
	FullBarrelsReceived *int   `json:"full_barrels_received"`
	ABCBarrelsSupplied  *int   `json:"abc_barrels_supplied"`
	VehicleNumber       string `json:"vehicle_number"`
	DriverName          string `json:"driver_name"`
}

type waitingPeriodRequest struct {
	WaitingPeriodEndDate *string `json:"waiting_period_end_date"`
}

type deleteSiteRequest struct {
	CustomerName string `json:"customer_name"`
	SiteAreaName string `json:"site_area_name"`
}

type listRecordsResponse struct {
	Items []*model.BarrelRecord `json:"items"`
	Total int64                 `json:"total"`
}

/* --------------------------------- Routes ----------------------------------- */

func (h *RecordHandler) CreateOpeningRecord(ctx *xhttp.RequestCtx) {
	var req openingRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid json body")
		return
	}

	// the balance computation needs all three counts; absent is not zero
	if req.OSFullBarrels == nil || req.OSABCBarrels == nil || req.OSDamagedBarrels == nil {
		writeError(ctx, xhttp.StatusBadRequest, "os_full_barrels, os_abc_barrels and os_damaged_barrels are required")
		return
	}

	day, err := parseDate(req.Date)
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	created, err := h.svc.OpenSite(ctx, model.OpeningRequest{
		CustomerName:     req.CustomerName,
		ContactNumber:    req.ContactNumber,
		SiteAreaName:     req.SiteAreaName,
		Town:             req.Town,
		Date:             day,
		OSFullBarrels:    *req.OSFullBarrels,
		OSABCBarrels:     *req.OSABCBarrels,
		OSDamagedBarrels: *req.OSDamagedBarrels,
	})
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusCreated, created)
}

func (h *RecordHandler) CreateTransactionRecord(ctx *xhttp.RequestCtx) {
	var req transactionRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid json body")
		return
	}

	if req.FullBarrelsReceived == nil || req.ABCBarrelsSupplied == nil {
		writeError(ctx, xhttp.StatusBadRequest, "full_barrels_received and abc_barrels_supplied are required")
		return
	}

	day, err := parseDate(req.Date)
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	created, err := h.svc.AppendTransaction(ctx, model.TransactionRequest{
		CustomerName:        req.CustomerName,
		ContactNumber:       req.ContactNumber,
		SiteAreaName:        req.SiteAreaName,
		Town:                req.Town,
		Date:                day,
		FullBarrelsReceived: *req.FullBarrelsReceived,
		ABCBarrelsSupplied:  *req.ABCBarrelsSupplied,
		VehicleNumber:       req.VehicleNumber,
		DriverName:          req.DriverName,
	})
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusCreated, created)
}

func (h *RecordHandler) GetLatestRecord(ctx *xhttp.RequestCtx) {
	site := model.CustomerSite{
		CustomerName: query(ctx, "customer_name"),
		SiteAreaName: query(ctx, "site_area_name"),
	}
	rec, err := h.svc.Latest(ctx, site)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, rec)
}

// GetSiteHistory returns the site's full ledger oldest first, the order
// the balances were derived in.
func (h *RecordHandler) GetSiteHistory(ctx *xhttp.RequestCtx) {
	site := model.CustomerSite{
		CustomerName: query(ctx, "customer_name"),
		SiteAreaName: query(ctx, "site_area_name"),
	}
	records, err := h.svc.History(ctx, site)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, records)
}

func (h *RecordHandler) ListRecords(ctx *xhttp.RequestCtx) {
	var f model.RecordFilter

	if v := query(ctx, "customer_name"); v != "" {
		f.CustomerName = &v
	}
	if v := query(ctx, "site_area_name"); v != "" {
		f.SiteAreaName = &v
	}
	if v := query(ctx, "town"); v != "" {
		f.Town = &v
	}
	if v := query(ctx, "from"); v != "" {
		if t, e := parseDate(v); e == nil {
			f.From = &t
		}
	}
	if v := query(ctx, "to"); v != "" {
		if t, e := parseDate(v); e == nil {
			f.To = &t
		}
	}
	if v := query(ctx, "limit"); v != "" {
		if n, e := strconv.Atoi(v); e == nil {
			f.Limit = n
		}
	}
	if v := query(ctx, "offset"); v != "" {
		if n, e := strconv.Atoi(v); e == nil {
			f.Offset = n
		}
	}
	if strings.EqualFold(query(ctx, "order"), "desc") {
		f.Desc = true
	}

	items, total, err := h.svc.List(ctx, f)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, listRecordsResponse{Items: items, Total: total})
}

func (h *RecordHandler) GetCustomerRecords(ctx *xhttp.RequestCtx) {
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
	writeJSON(ctx, xhttp.StatusOK, records)
}

func (h *RecordHandler) SetWaitingPeriod(ctx *xhttp.RequestCtx) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid record id")
		return
	}

	var req waitingPeriodRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid json body")
		return
	}

	var endDate *time.Time
	if req.WaitingPeriodEndDate != nil && *req.WaitingPeriodEndDate != "" {
		t, err := parseDate(*req.WaitingPeriodEndDate)
		if err != nil {
			writeError(ctx, xhttp.StatusBadRequest, "invalid waiting_period_end_date, expected YYYY-MM-DD")
			return
		}
		endDate = &t
	}

	if err := h.svc.SetWaitingPeriod(ctx, id, endDate); err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, map[string]string{"message": "waiting period end date updated"})
}

func (h *RecordHandler) DeleteSite(ctx *xhttp.RequestCtx) {
	var req deleteSiteRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid json body")
		return
	}

	deleted, err := h.svc.DeleteSite(ctx, model.CustomerSite{
		CustomerName: req.CustomerName,
		SiteAreaName: req.SiteAreaName,
	})
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, map[string]any{
		"deleted_count":  deleted,
		"customer_name":  req.CustomerName,
		"site_area_name": req.SiteAreaName,
	})
}

func (h *RecordHandler) ListCustomers(ctx *xhttp.RequestCtx) {
	names, err := h.svc.Customers(ctx)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, names)
}

func (h *RecordHandler) ListSites(ctx *xhttp.RequestCtx) {
	sites, err := h.svc.Sites(ctx)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, sites)
}

func (h *RecordHandler) ListTowns(ctx *xhttp.RequestCtx) {
	towns, err := h.svc.Towns(ctx)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, towns)
}

/* --------------------------------- Helpers ----------------------------------- */

func readJSON(ctx *xhttp.RequestCtx, dst any) error {
	body := ctx.PostBody()
	return json.Unmarshal(body, dst)
}

func writeJSON(ctx *xhttp.RequestCtx, status int, v any) {
	b, _ := json.Marshal(v)
	ctx.Response.Header.Set("Content-Type", "application/json; charset=utf-8")
	ctx.Response.SetStatusCode(status)
	ctx.Response.SetBodyRaw(b)
}

func writeError(ctx *xhttp.RequestCtx, status int, msg string) {
	writeJSON(ctx, status, map[string]string{"error": msg})
}

// writeServiceError maps the error taxonomy onto status codes. Store
// failures are logged and reported generically; they are not safe to
// retry blindly since an append could double-insert.
func writeServiceError(ctx *xhttp.RequestCtx, err error) {
	var ve model.ValidationError
	switch {
	case errors.As(err, &ve):
		writeError(ctx, xhttp.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrNoBaseline):
		writeError(ctx, xhttp.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrNotFound):
		writeError(ctx, xhttp.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrSiteExists):
		writeError(ctx, xhttp.StatusConflict, err.Error())
	default:
		logger.Error("store failure", "error", err)
		writeError(ctx, xhttp.StatusInternalServerError, "internal error")
	}
}

func pathInt64(ctx *xhttp.RequestCtx, name string) (int64, error) {
	v, ok := ctx.UserValue(name).(string)
	if !ok {
		return 0, strconv.ErrSyntax
	}
	return strconv.ParseInt(v, 10, 64)
}

func query(ctx *xhttp.RequestCtx, key string) string {
	return string(ctx.QueryArgs().Peek(key))
}

// parseDate accepts the calendar form used everywhere in the ledger,
// with RFC3339 tolerated for older clients.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
