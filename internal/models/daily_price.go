package models

import (
	"time"

	"stockcollector/internal/uuid"

	"github.com/guregu/null/v6"
	"gorm.io/gorm"
)

// DailyPrice is one OHLCV bar for a company on a trading date.
// Time-series data keyed by (company_id, date): no soft deletes and no
// timestamps, so re-collecting identical data leaves the row untouched.
type DailyPrice struct {
	ID         string    `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyID  string    `gorm:"type:uuid;not null;uniqueIndex:uq_st_daily_prices_company_date,priority:1" json:"company_id"`
	Date       time.Time `gorm:"type:date;not null;uniqueIndex:uq_st_daily_prices_company_date,priority:2" json:"date"`
	OpenPrice  int64     `gorm:"type:bigint;not null" json:"open_price"`
	HighPrice  int64     `gorm:"type:bigint;not null;check:chk_st_daily_prices_range,high_price >= low_price" json:"high_price"`
	LowPrice   int64     `gorm:"type:bigint;not null" json:"low_price"`
	ClosePrice int64     `gorm:"type:bigint;not null" json:"close_price"`
	Volume     null.Int  `gorm:"type:bigint" json:"volume"`
}

// TableName overrides the default table name.
func (DailyPrice) TableName() string { return "st_daily_prices" }

// BeforeCreate hook generates a UUIDv7 for new records
func (p *DailyPrice) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New()
	}
	return nil
}

// ConflictColumns returns the unique key the upsert resolves on.
func (DailyPrice) ConflictColumns() []string { return []string{"company_id", "date"} }

// UpdateColumns returns the columns overwritten when the key already exists.
func (DailyPrice) UpdateColumns() []string {
	return []string{"open_price", "high_price", "low_price", "close_price", "volume"}
}

// RecordKey identifies the record in logs.
func (p DailyPrice) RecordKey() string {
	return p.CompanyID + "@" + p.Date.Format(DateLayout)
}
