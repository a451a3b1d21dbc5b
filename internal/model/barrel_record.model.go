package model

import (
	"strings"
	"time"
)

// ValidationError marks input the caller must fix; it is surfaced
// verbatim and never retried.
type ValidationError string

func (e ValidationError) Error() string { return string(e) }

// BarrelRecord is one ledger entry for a CustomerSite: either the opening
// snapshot taken when the site is onboarded or one per-visit transaction.
// History is append-only; the only field ever patched in place is
// WaitingPeriodEndDate.
type BarrelRecord struct {
	ID                   int64      `json:"id"`
	CustomerName         string     `json:"customer_name"`
	ContactNumber        string     `json:"contact_number"`
	SiteAreaName         string     `json:"site_area_name"`
	Town                 string     `json:"town"`
	Date                 time.Time  `json:"date"`
	OSFullBarrels        int        `json:"os_full_barrels"`
	OSABCBarrels         int        `json:"os_abc_barrels"`
	OSDamagedBarrels     int        `json:"os_damaged_barrels"`
	FullBarrelsReceived  int        `json:"full_barrels_received"`
	ABCBarrelsSupplied   int        `json:"abc_barrels_supplied"`
	ClosingStock         int        `json:"closing_stock"`
	VehicleNumber        string     `json:"vehicle_number"`
	DriverName           string     `json:"driver_name"`
	WaitingPeriodEndDate *time.Time `json:"waiting_period_end_date,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
}

func (BarrelRecord) TableName() string { return "barrel_records" }

// Site returns the canonical identity pair of the record.
func (r *BarrelRecord) Site() CustomerSite {
	return CustomerSite{CustomerName: r.CustomerName, SiteAreaName: r.SiteAreaName}
}

// OpeningRequest is the input for onboarding a CustomerSite with its
// opening stock counts.
type OpeningRequest struct {
	CustomerName     string
	ContactNumber    string
	SiteAreaName     string
	Town             string
	Date             time.Time
	OSFullBarrels    int
	OSABCBarrels     int
	OSDamagedBarrels int
}

func (p OpeningRequest) Site() CustomerSite {
	return CustomerSite{CustomerName: p.CustomerName, SiteAreaName: p.SiteAreaName}
}

func (p OpeningRequest) Validate(now time.Time) error {
	if strings.TrimSpace(p.CustomerName) == "" {
		return ValidationError("customer_name is required")
	}
	if p.Date.IsZero() {
		return ValidationError("date is required")
	}
	if dateAfter(p.Date, now) {
		return ValidationError("date must not be in the future")
	}
	if p.OSFullBarrels < 0 || p.OSABCBarrels < 0 || p.OSDamagedBarrels < 0 {
		return ValidationError("barrel counts must not be negative")
	}
	return nil
}

// TransactionRequest is the input for recording one visit: barrels the
// customer returned and barrels delivered to them.
type TransactionRequest struct {
	CustomerName        string
	ContactNumber       string
	SiteAreaName        string
	Town                string
	Date                time.Time
	FullBarrelsReceived int
	ABCBarrelsSupplied  int
	VehicleNumber       string
	DriverName          string
}

func (p TransactionRequest) Site() CustomerSite {
	return CustomerSite{CustomerName: p.CustomerName, SiteAreaName: p.SiteAreaName}
}

func (p TransactionRequest) Validate(now time.Time) error {
	if strings.TrimSpace(p.CustomerName) == "" {
		return ValidationError("customer_name is required")
	}
	if p.Date.IsZero() {
		return ValidationError("date is required")
	}
	if dateAfter(p.Date, now) {
		return ValidationError("date must not be in the future")
	}
	if p.FullBarrelsReceived < 0 {
		return ValidationError("full_barrels_received must not be negative")
	}
	if p.ABCBarrelsSupplied < 0 {
		return ValidationError("abc_barrels_supplied must not be negative")
	}
	return nil
}

// RecordFilter controls List queries.
type RecordFilter struct {
	CustomerName *string
	SiteAreaName *string
	Town         *string
	From         *time.Time
	To           *time.Time
	Limit        int  // default 50
	Offset       int  // for pagination
	Desc         bool // order by date
}

// dateAfter compares calendar dates, ignoring the time of day.
func dateAfter(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	if ay != by {
		return ay > by
	}
	if am != bm {
		return am > bm
	}
	return ad > bd
}
