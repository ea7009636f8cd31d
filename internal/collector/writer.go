package collector

import (
	"context"

	apperrors "stockcollector/internal/errors"
	"stockcollector/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Record is a row that can be upserted on its natural key.
type Record interface {
	TableName() string
	ConflictColumns() []string
	UpdateColumns() []string
	RecordKey() string
}

// RecordOutcome reports a single record that could not be stored.
type RecordOutcome struct {
	Key string
	Err error
}

// BatchResult summarizes one write of a batch of records.
type BatchResult struct {
	Attempted int
	Succeeded int
	Failures  []RecordOutcome
}

// Failed returns the number of records that were not stored.
func (b BatchResult) Failed() int { return len(b.Failures) }

// withFailures folds records rejected before the write into the result.
func (b BatchResult) withFailures(failures []RecordOutcome) BatchResult {
	if len(failures) == 0 {
		return b
	}
	b.Attempted += len(failures)
	b.Failures = append(append([]RecordOutcome{}, failures...), b.Failures...)
	return b
}

// Writer upserts normalized records, one statement per record, so a bad
// record never takes the rest of its batch down with it.
type Writer struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

// NewWriter creates a new Writer.
func NewWriter(db *gorm.DB, log *zap.SugaredLogger) *Writer {
	return &Writer{db: db, log: log}
}

// WritePrices upserts daily prices on (company_id, date).
func (w *Writer) WritePrices(ctx context.Context, records []models.DailyPrice) BatchResult {
	return upsert(ctx, w, records)
}

// WriteFinancials upserts snapshots on (company_id, quarter_date).
func (w *Writer) WriteFinancials(ctx context.Context, records []models.FinancialSnapshot) BatchResult {
	return upsert(ctx, w, records)
}

func upsert[T Record](ctx context.Context, w *Writer, records []T) BatchResult {
	result := BatchResult{Attempted: len(records)}
	for i := range records {
		rec := records[i]
		if err := w.upsertOne(ctx, rec, &rec); err != nil {
			w.log.Warnf("  %s: %s write failed: %v", rec.TableName(), rec.RecordKey(), err)
			result.Failures = append(result.Failures, RecordOutcome{Key: rec.RecordKey(), Err: err})
			continue
		}
		result.Succeeded++
	}
	return result
}

func (w *Writer) upsertOne(ctx context.Context, rec Record, value interface{}) error {
	conflict := rec.ConflictColumns()
	columns := make([]clause.Column, 0, len(conflict))
	for _, name := range conflict {
		columns = append(columns, clause.Column{Name: name})
	}

	err := w.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   columns,
			DoUpdates: clause.AssignmentColumns(rec.UpdateColumns()),
		}).
		Create(value).Error
	if err != nil {
		return apperrors.Wrap(apperrors.ErrWriteFailed, err)
	}
	return nil
}
