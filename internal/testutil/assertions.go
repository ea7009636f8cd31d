package testutil

import (
	"testing"

	apperrors "stockcollector/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// AssertAppError fails the test unless err is an *AppError carrying the
// code of want. Wrapped errors are unwrapped.
func AssertAppError(t testing.TB, err error, want *apperrors.AppError) {
	t.Helper()

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr, "expected *AppError with code %s", want.Code)
	assert.Equal(t, want.Code, appErr.Code, "message: %s", appErr.Message)
}

// AssertRowCount fails the test unless the table behind model holds want
// rows.
func AssertRowCount(t testing.TB, db *gorm.DB, model interface{}, want int64) {
	t.Helper()

	var got int64
	require.NoError(t, db.Model(model).Count(&got).Error)
	assert.Equal(t, want, got, "row count for %T", model)
}
