package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"stockcollector/internal/models"

	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestCompany creates a company with a unique ticker.
func CreateTestCompany(t *testing.T, db *gorm.DB) *models.Company {
	t.Helper()
	n := nextID()
	return CreateTestCompanyWithParams(t, db, "", fmt.Sprintf("%06d", n), fmt.Sprintf("Test Company %d", n))
}

// CreateTestCompanyWithParams creates a company with the given identifier,
// ticker and name. An empty id lets the model hook generate a UUIDv7.
func CreateTestCompanyWithParams(t *testing.T, db *gorm.DB, id, ticker, name string) *models.Company {
	t.Helper()

	company := &models.Company{
		ID:     id,
		Ticker: ticker,
		Name:   name,
		Sector: "Test",
	}
	if err := db.Create(company).Error; err != nil {
		t.Fatalf("failed to create test company: %v", err)
	}
	return company
}
