package collector

import (
	"context"
	"errors"
	"fmt"

	apperrors "stockcollector/internal/errors"
	"stockcollector/internal/models"

	"gorm.io/gorm"
)

// Resolver looks up company identifiers in the companies table.
type Resolver struct {
	db *gorm.DB
}

// NewResolver creates a new Resolver.
func NewResolver(db *gorm.DB) *Resolver {
	return &Resolver{db: db}
}

// Resolve returns the company id registered for ticker.
func (r *Resolver) Resolve(ctx context.Context, ticker string) (string, error) {
	var company models.Company
	err := r.db.WithContext(ctx).
		Select("id").
		Where("ticker = ?", ticker).
		Take(&company).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperrors.WithMessage(apperrors.ErrCompanyNotFound,
				fmt.Sprintf("no company registered for ticker %s", ticker))
		}
		return "", apperrors.Wrap(apperrors.ErrLookupFailed, err)
	}
	return company.ID, nil
}
