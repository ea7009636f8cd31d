// Package models defines the gorm models for the stock tables.
package models

// DateLayout is the canonical calendar-date format for stored records.
const DateLayout = "2006-01-02"
