package repository

import (
	"context"
	"errors"
	"time"

	"github.com/grrdistribution/barrel-ledger/internal/model"
	"github.com/grrdistribution/barrel-ledger/pkg/pg"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when no record matches the lookup.
	ErrNotFound = errors.New("barrel record not found")
)

type BarrelRecordRepository struct {
	*pg.DB
}

func NewBarrelRecordRepository(db *pg.DB) *BarrelRecordRepository {
	return &BarrelRecordRepository{
		db,
	}
}

func (r *BarrelRecordRepository) Create(ctx context.Context, rec *model.BarrelRecord) (*model.BarrelRecord, error) {
	entity := toBarrelRecordEntity(rec)

	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		return nil, err
	}

	return toBarrelRecordModel(entity), nil
}

// History returns the full ledger for one site, oldest first. The id is
// the tie-break for records sharing a date.
func (r *BarrelRecordRepository) History(ctx context.Context, site model.CustomerSite) ([]*model.BarrelRecord, error) {
	var entities []*BarrelRecordEntity
	err := r.siteQuery(ctx, site).
		Order("date ASC, id ASC").
		Find(&entities).Error
	if err != nil {
		return nil, err
	}
	return toBarrelRecordModels(entities), nil
}

// HistoryByCustomer is the legacy name-only lookup kept for the customer
// report, which predates site-qualified identities.
func (r *BarrelRecordRepository) HistoryByCustomer(ctx context.Context, customerName string) ([]*model.BarrelRecord, error) {
	var entities []*BarrelRecordEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("customer_name = ?", customerName).
		Order("date ASC, id ASC").
		Find(&entities).Error
	if err != nil {
		return nil, err
	}
	return toBarrelRecordModels(entities), nil
}

// Latest returns the most recent record for a site, or ErrNotFound when
// the site has no history at all.
func (r *BarrelRecordRepository) Latest(ctx context.Context, site model.CustomerSite) (*model.BarrelRecord, error) {
	var entity BarrelRecordEntity
	err := r.siteQuery(ctx, site).
		Order("date DESC, id DESC").
		First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return toBarrelRecordModel(&entity), nil
}

// All returns every record across all customers, newest date first, the
// ordering the complete-data report uses.
func (r *BarrelRecordRepository) All(ctx context.Context) ([]*model.BarrelRecord, error) {
	var entities []*BarrelRecordEntity
	err := r.Read(ctx).WithContext(ctx).
		Order("date DESC, customer_name ASC, id DESC").
		Find(&entities).Error
	if err != nil {
		return nil, err
	}
	return toBarrelRecordModels(entities), nil
}

func (r *BarrelRecordRepository) List(ctx context.Context, f model.RecordFilter) ([]*model.BarrelRecord, int64, error) {
	q := r.Read(ctx).WithContext(ctx).Model(&BarrelRecordEntity{})

	if f.CustomerName != nil && *f.CustomerName != "" {
		q = q.Where("customer_name = ?", *f.CustomerName)
	}
	if f.SiteAreaName != nil {
		q = q.Where("site_area_name = ?", *f.SiteAreaName)
	}
	if f.Town != nil && *f.Town != "" {
		q = q.Where("town = ?", *f.Town)
	}
	if f.From != nil {
		q = q.Where("date >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("date < ?", *f.To)
	}

	// Count before pagination
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "date"
	if f.Desc {
		order += " DESC, id DESC"
	} else {
		order += " ASC, id ASC"
	}

	limit := f.Limit
	if limit <= 0 || limit > 1000 {
		limit = 50
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}

	var entities []*BarrelRecordEntity
	if err := q.Order(order).Limit(limit).Offset(offset).Find(&entities).Error; err != nil {
		return nil, 0, err
	}

	return toBarrelRecordModels(entities), total, nil
}

// SetWaitingPeriod patches waiting_period_end_date in place on a single
// row. This is the one deliberate exception to append-only history; the
// dormancy exclusion rule depends on the value staying on its original
// row.
func (r *BarrelRecordRepository) SetWaitingPeriod(ctx context.Context, id int64, endDate *time.Time) error {
	res := r.Write(ctx).WithContext(ctx).
		Model(&BarrelRecordEntity{}).
		Where("id = ?", id).
		Update("waiting_period_end_date", endDate)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteSite removes every record for the identity pair. An empty site
// name matches records stored with an empty or NULL site. Irreversible.
func (r *BarrelRecordRepository) DeleteSite(ctx context.Context, site model.CustomerSite) (int64, error) {
	res := r.siteDeleteQuery(ctx, site).Delete(&BarrelRecordEntity{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// Sites lists the distinct identity pairs, for selection dropdowns.
func (r *BarrelRecordRepository) Sites(ctx context.Context) ([]model.CustomerSite, error) {
	var sites []model.CustomerSite
	err := r.Read(ctx).WithContext(ctx).
		Model(&BarrelRecordEntity{}).
		Distinct("customer_name", "site_area_name").
		Order("customer_name ASC, site_area_name ASC").
		Find(&sites).Error
	if err != nil {
		return nil, err
	}
	return sites, nil
}

func (r *BarrelRecordRepository) Customers(ctx context.Context) ([]string, error) {
	var names []string
	err := r.Read(ctx).WithContext(ctx).
		Model(&BarrelRecordEntity{}).
		Distinct().
		Order("customer_name ASC").
		Pluck("customer_name", &names).Error
	if err != nil {
		return nil, err
	}
	return names, nil
}

func (r *BarrelRecordRepository) Towns(ctx context.Context) ([]string, error) {
	var towns []string
	err := r.Read(ctx).WithContext(ctx).
		Model(&BarrelRecordEntity{}).
		Distinct().
		Where("town IS NOT NULL AND town != ''").
		Order("town ASC").
		Pluck("town", &towns).Error
	if err != nil {
		return nil, err
	}
	return towns, nil
}

// LatestPerCustomerInTown returns each customer's most recent record
// within a town, the input of the town report.
func (r *BarrelRecordRepository) LatestPerCustomerInTown(ctx context.Context, town string) ([]*model.BarrelRecord, error) {
	var entities []*BarrelRecordEntity
	err := r.Read(ctx).WithContext(ctx).Raw(`
        SELECT * FROM barrel_records b
        WHERE b.town = ?
          AND b.id = (
            SELECT b2.id FROM barrel_records b2
            WHERE b2.customer_name = b.customer_name AND b2.town = b.town
            ORDER BY b2.date DESC, b2.id DESC
            LIMIT 1
          )
        ORDER BY b.customer_name ASC`, town).
		Scan(&entities).Error
	if err != nil {
		return nil, err
	}
	return toBarrelRecordModels(entities), nil
}

func (r *BarrelRecordRepository) siteQuery(ctx context.Context, site model.CustomerSite) *gorm.DB {
	return r.Read(ctx).WithContext(ctx).
		Model(&BarrelRecordEntity{}).
		Where("customer_name = ?", site.CustomerName).
		Where("site_area_name = ?", site.SiteAreaName)
}

func (r *BarrelRecordRepository) siteDeleteQuery(ctx context.Context, site model.CustomerSite) *gorm.DB {
	q := r.Write(ctx).WithContext(ctx).
		Where("customer_name = ?", site.CustomerName)
	if site.SiteAreaName != "" {
		return q.Where("site_area_name = ?", site.SiteAreaName)
	}
	return q.Where("site_area_name IS NULL OR site_area_name = ''")
}
