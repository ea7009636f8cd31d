package models

import (
	"time"

	"stockcollector/internal/uuid"

	"github.com/guregu/null/v6"
	"gorm.io/gorm"
)

// FinancialSnapshot is one quarter of headline statement figures for a
// company, stamped with the quarter's final calendar day. Monetary columns
// are whole currency units; ratio columns are percentages.
type FinancialSnapshot struct {
	ID              string     `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyID       string     `gorm:"type:uuid;not null;uniqueIndex:uq_st_financial_snapshots_company_quarter,priority:1" json:"company_id"`
	QuarterDate     time.Time  `gorm:"type:date;not null;uniqueIndex:uq_st_financial_snapshots_company_quarter,priority:2" json:"quarter_date"`
	Revenue         null.Int   `gorm:"type:bigint" json:"revenue"`
	OperatingIncome null.Int   `gorm:"type:bigint" json:"operating_income"`
	NetIncome       null.Int   `gorm:"type:bigint" json:"net_income"`
	TotalAssets     null.Int   `gorm:"type:bigint" json:"total_assets"`
	TotalEquity     null.Int   `gorm:"type:bigint" json:"total_equity"`
	OperatingMargin null.Float `gorm:"type:double precision" json:"operating_margin"`
	NetMargin       null.Float `gorm:"type:double precision" json:"net_margin"`
	ROE             null.Float `gorm:"column:roe;type:double precision" json:"roe"`
}

// TableName overrides the default table name.
func (FinancialSnapshot) TableName() string { return "st_financial_snapshots" }

// BeforeCreate hook generates a UUIDv7 for new records
func (f *FinancialSnapshot) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.New()
	}
	return nil
}

// ConflictColumns returns the unique key the upsert resolves on.
func (FinancialSnapshot) ConflictColumns() []string { return []string{"company_id", "quarter_date"} }

// UpdateColumns returns the columns overwritten when the key already exists.
func (FinancialSnapshot) UpdateColumns() []string {
	return []string{
		"revenue", "operating_income", "net_income", "total_assets", "total_equity",
		"operating_margin", "net_margin", "roe",
	}
}

// RecordKey identifies the record in logs.
func (f FinancialSnapshot) RecordKey() string {
	return f.CompanyID + "@" + f.QuarterDate.Format(DateLayout)
}
