package models

import (
	"time"

	"stockcollector/internal/uuid"

	"gorm.io/gorm"
)

// Company is the reference row that maps an exchange ticker to the stable
// identifier every price and statement record is keyed on. The collector
// only reads it, by exact ticker match, so it carries no soft delete.
type Company struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	Ticker    string    `gorm:"not null;uniqueIndex:uq_st_companies_ticker" json:"ticker"`
	Name      string    `gorm:"not null" json:"name"`
	Sector    string    `json:"sector,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides the default table name.
func (Company) TableName() string { return "st_companies" }

// BeforeCreate hook generates a UUIDv7 for new records
func (c *Company) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New()
	}
	return nil
}
