package services

import (
	"context"
	"strconv"
	"time"

	"github.com/grrdistribution/barrel-ledger/internal/ledger"
	"github.com/grrdistribution/barrel-ledger/internal/model"
	"github.com/grrdistribution/barrel-ledger/internal/repository"
	"github.com/grrdistribution/barrel-ledger/pkg/prom"
	"github.com/pkg/errors"
)

var (
	// ErrNoBaseline means a transaction was attempted for a site with no
	// opening record; the caller should redirect to the opening flow.
	ErrNoBaseline = errors.New("no baseline record for customer site")
	// ErrSiteExists guards the opening flow: one opening record per site.
	ErrSiteExists = errors.New("customer site already has records")
	ErrNotFound   = errors.New("record not found")
)

type RecordRepository interface {
	Create(ctx context.Context, rec *model.BarrelRecord) (*model.BarrelRecord, error)
	History(ctx context.Context, site model.CustomerSite) ([]*model.BarrelRecord, error)
	HistoryByCustomer(ctx context.Context, customerName string) ([]*model.BarrelRecord, error)
	Latest(ctx context.Context, site model.CustomerSite) (*model.BarrelRecord, error)
	All(ctx context.Context) ([]*model.BarrelRecord, error)
	List(ctx context.Context, f model.RecordFilter) ([]*model.BarrelRecord, int64, error)
	SetWaitingPeriod(ctx context.Context, id int64, endDate *time.Time) error
	DeleteSite(ctx context.Context, site model.CustomerSite) (int64, error)
	Sites(ctx context.Context) ([]model.CustomerSite, error)
	Customers(ctx context.Context) ([]string, error)
	Towns(ctx context.Context) ([]string, error)
	LatestPerCustomerInTown(ctx context.Context, town string) ([]*model.BarrelRecord, error)
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type LedgerService struct {
	records        RecordRepository
	defaultGapDays int
	now            func() time.Time
}

func NewLedgerService(records RecordRepository, defaultGapDays int) *LedgerService {
	if defaultGapDays <= 0 {
		defaultGapDays = 30
	}
	return &LedgerService{
		records:        records,
		defaultGapDays: defaultGapDays,
		now:            time.Now,
	}
}

// OpenSite onboards a CustomerSite with its opening stock counts. A site
// that already has history is rejected; its balance continues from the
// transaction flow instead.
func (s *LedgerService) OpenSite(ctx context.Context, p model.OpeningRequest) (*model.BarrelRecord, error) {
	if err := p.Validate(s.now()); err != nil {
		return nil, err
	}

	_, err := s.records.Latest(ctx, p.Site())
	if err == nil {
		return nil, ErrSiteExists
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, errors.Wrap(err, "check site history")
	}

	rec := &model.BarrelRecord{
		CustomerName:     p.CustomerName,
		ContactNumber:    p.ContactNumber,
		SiteAreaName:     p.SiteAreaName,
		Town:             p.Town,
		Date:             p.Date,
		OSFullBarrels:    p.OSFullBarrels,
		OSABCBarrels:     p.OSABCBarrels,
		OSDamagedBarrels: p.OSDamagedBarrels,
		ClosingStock:     ledger.OpeningClosingStock(p.OSFullBarrels, p.OSABCBarrels, p.OSDamagedBarrels),
	}

	created, err := s.records.Create(ctx, rec)
	if err != nil {
		return nil, errors.Wrap(err, "create opening record")
	}
	prom.IncCounterVec(prom.SystemLedger, prom.MetricRecordsAppendedTotal, "opening")
	return created, nil
}

// AppendTransaction records one visit. The closing stock is always
// recomputed from the stored prior balance; any client-side figure is
// advisory only and never reaches the ledger.
//
// The read of the prior balance is not guarded by a lock or version
// token, so two concurrent appends for the same site can both compute
// from the same baseline. That matches the upstream system's behavior.
func (s *LedgerService) AppendTransaction(ctx context.Context, p model.TransactionRequest) (*model.BarrelRecord, error) {
	if err := p.Validate(s.now()); err != nil {
		return nil, err
	}

	var created *model.BarrelRecord
	err := s.records.WithinTransaction(ctx, func(ctx context.Context) error {
		prior, err := s.records.Latest(ctx, p.Site())
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrNoBaseline
			}
			return errors.Wrap(err, "fetch prior record")
		}

		rec := &model.BarrelRecord{
			CustomerName:        p.CustomerName,
			ContactNumber:       p.ContactNumber,
			SiteAreaName:        p.SiteAreaName,
			Town:                p.Town,
			Date:                p.Date,
			FullBarrelsReceived: p.FullBarrelsReceived,
			ABCBarrelsSupplied:  p.ABCBarrelsSupplied,
			VehicleNumber:       p.VehicleNumber,
			DriverName:          p.DriverName,
			ClosingStock:        ledger.TransactionClosingStock(prior.ClosingStock, p.FullBarrelsReceived, p.ABCBarrelsSupplied),
		}

		created, err = s.records.Create(ctx, rec)
		if err != nil {
			return errors.Wrap(err, "create transaction record")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	prom.IncCounterVec(prom.SystemLedger, prom.MetricRecordsAppendedTotal, "transaction")
	return created, nil
}

// ClassifyDormancy runs the dormancy pass over the whole ledger. A zero
// today defaults to the wall clock, a non-positive gap to the configured
// default; both stay explicit parameters so reports can rerun historical
// classifications.
func (s *LedgerService) ClassifyDormancy(ctx context.Context, today time.Time, gapDays int) (ledger.Classification, error) {
	if today.IsZero() {
		today = s.now()
	}
	if gapDays <= 0 {
		gapDays = s.defaultGapDays
	}

	records, err := s.records.All(ctx)
	if err != nil {
		return ledger.Classification{}, errors.Wrap(err, "fetch records")
	}

	c := ledger.ClassifyDormancy(records, today, gapDays)
	prom.SetGaugeVec(prom.SystemLedger, prom.MetricDormantCustomers, float64(len(c.Dormant)), strconv.Itoa(gapDays))
	return c, nil
}

// SetWaitingPeriod sets or clears the waiting period on the addressed
// record only. Clearing one record does not take the customer out of the
// excused set while any other record still carries a value.
func (s *LedgerService) SetWaitingPeriod(ctx context.Context, id int64, endDate *time.Time) error {
	if id <= 0 {
		return model.ValidationError("record id is required")
	}
	err := s.records.SetWaitingPeriod(ctx, id, endDate)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *LedgerService) History(ctx context.Context, site model.CustomerSite) ([]*model.BarrelRecord, error) {
	if err := site.Validate(); err != nil {
		return nil, err
	}
	return s.records.History(ctx, site)
}

func (s *LedgerService) CustomerHistory(ctx context.Context, customerName string) ([]*model.BarrelRecord, error) {
	if customerName == "" {
		return nil, model.ValidationError("customer_name is required")
	}
	return s.records.HistoryByCustomer(ctx, customerName)
}

func (s *LedgerService) Latest(ctx context.Context, site model.CustomerSite) (*model.BarrelRecord, error) {
	if err := site.Validate(); err != nil {
		return nil, err
	}
	rec, err := s.records.Latest(ctx, site)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	return rec, err
}

func (s *LedgerService) List(ctx context.Context, f model.RecordFilter) ([]*model.BarrelRecord, int64, error) {
	return s.records.List(ctx, f)
}

func (s *LedgerService) All(ctx context.Context) ([]*model.BarrelRecord, error) {
	return s.records.All(ctx)
}

// DeleteSite removes the site's whole ledger. There is no soft delete.
func (s *LedgerService) DeleteSite(ctx context.Context, site model.CustomerSite) (int64, error) {
	if err := site.Validate(); err != nil {
		return 0, err
	}
	deleted, err := s.records.DeleteSite(ctx, site)
	if err != nil {
		return 0, errors.Wrap(err, "delete site records")
	}
	if deleted == 0 {
		return 0, ErrNotFound
	}
	return deleted, nil
}

func (s *LedgerService) Sites(ctx context.Context) ([]model.CustomerSite, error) {
	return s.records.Sites(ctx)
}

func (s *LedgerService) Customers(ctx context.Context) ([]string, error) {
	return s.records.Customers(ctx)
}

func (s *LedgerService) Towns(ctx context.Context) ([]string, error) {
	return s.records.Towns(ctx)
}

// TownReport returns each customer's latest record within a town.
func (s *LedgerService) TownReport(ctx context.Context, town string) ([]*model.BarrelRecord, error) {
	if town == "" {
		return nil, model.ValidationError("town is required")
	}
	return s.records.LatestPerCustomerInTown(ctx, town)
}
