package repository

import (
	"time"

	"github.com/grrdistribution/barrel-ledger/internal/model"
)

type BarrelRecordEntity struct {
	ID                   int64      `db:"id"                      gorm:"primaryKey;autoIncrement;column:id"`
	CustomerName         string     `db:"customer_name"           gorm:"column:customer_name;not null;index:idx_customer_site,priority:1"`
	ContactNumber        string     `db:"contact_number"          gorm:"column:contact_number"`
	SiteAreaName         string     `db:"site_area_name"          gorm:"column:site_area_name;index:idx_customer_site,priority:2"`
	Town                 string     `db:"town"                    gorm:"column:town;index"`
	Date                 time.Time  `db:"date"                    gorm:"column:date;not null"`
	OSFullBarrels        int        `db:"os_full_barrels"         gorm:"column:os_full_barrels;not null;default:0"`
	OSABCBarrels         int        `db:"os_abc_barrels"          gorm:"column:os_abc_barrels;not null;default:0"`
	OSDamagedBarrels     int        `db:"os_damaged_barrels"      gorm:"column:os_damaged_barrels;not null;default:0"`
	FullBarrelsReceived  int        `db:"full_barrels_received"   gorm:"column:full_barrels_received;not null;default:0"`
	ABCBarrelsSupplied   int        `db:"abc_barrels_supplied"    gorm:"column:abc_barrels_supplied;not null;default:0"`
	ClosingStock         int        `db:"closing_stock"           gorm:"column:closing_stock;not null;default:0"`
	VehicleNumber        string     `db:"vehicle_number"          gorm:"column:vehicle_number"`
	DriverName           string     `db:"driver_name"             gorm:"column:driver_name"`
	WaitingPeriodEndDate *time.Time `db:"waiting_period_end_date" gorm:"column:waiting_period_end_date"`
	CreatedAt            time.Time  `db:"created_at"              gorm:"column:created_at;autoCreateTime"`
}

func (BarrelRecordEntity) TableName() string {
	return "barrel_records"
}

func toBarrelRecordEntity(m *model.BarrelRecord) *BarrelRecordEntity {
	if m == nil {
		return nil
	}
	return &BarrelRecordEntity{
		ID:                   m.ID,
		CustomerName:         m.CustomerName,
		ContactNumber:        m.ContactNumber,
		SiteAreaName:         m.SiteAreaName,
		Town:                 m.Town,
		Date:                 m.Date,
		OSFullBarrels:        m.OSFullBarrels,
		OSABCBarrels:         m.OSABCBarrels,
		OSDamagedBarrels:     m.OSDamagedBarrels,
		FullBarrelsReceived:  m.FullBarrelsReceived,
		ABCBarrelsSupplied:   m.ABCBarrelsSupplied,
		ClosingStock:         m.ClosingStock,
		VehicleNumber:        m.VehicleNumber,
		DriverName:           m.DriverName,
		WaitingPeriodEndDate: m.WaitingPeriodEndDate,
		CreatedAt:            m.CreatedAt,
	}
}

func toBarrelRecordModel(e *BarrelRecordEntity) *model.BarrelRecord {
	if e == nil {
		return nil
	}
	return &model.BarrelRecord{
		ID:                   e.ID,
		CustomerName:         e.CustomerName,
		ContactNumber:        e.ContactNumber,
		SiteAreaName:         e.SiteAreaName,
		Town:                 e.Town,
		Date:                 e.Date,
		OSFullBarrels:        e.OSFullBarrels,
		OSABCBarrels:         e.OSABCBarrels,
		OSDamagedBarrels:     e.OSDamagedBarrels,
		FullBarrelsReceived:  e.FullBarrelsReceived,
		ABCBarrelsSupplied:   e.ABCBarrelsSupplied,
		ClosingStock:         e.ClosingStock,
		VehicleNumber:        e.VehicleNumber,
		DriverName:           e.DriverName,
		WaitingPeriodEndDate: e.WaitingPeriodEndDate,
		CreatedAt:            e.CreatedAt,
	}
}

func toBarrelRecordModels(entities []*BarrelRecordEntity) []*model.BarrelRecord {
	if entities == nil {
		return nil
	}
	models := make([]*model.BarrelRecord, len(entities))
	for i, e := range entities {
		models[i] = toBarrelRecordModel(e)
	}
	return models
}
