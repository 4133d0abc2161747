package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/fkoehler/kickflow/internal/domain"
)

// recordInsertBatchSize bounds the number of rows per INSERT statement.
const recordInsertBatchSize = 200

// RecordRepository handles per-row import record operations.
type RecordRepository struct {
	db *gorm.DB
}

// NewRecordRepository creates a new RecordRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *RecordRepository: repository instance bound to db.
func NewRecordRepository(db *gorm.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

// Create inserts a single import record.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - record: record to persist.
// Returns:
//   - error: non-nil if the insert fails.
func (r *RecordRepository) Create(ctx context.Context, record *domain.ImportRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// CreateBatch inserts import records in chunks.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - records: records to persist.
// Returns:
//   - error: non-nil if any insert fails.
func (r *RecordRepository) CreateBatch(ctx context.Context, records []domain.ImportRecord) error {
	if len(records) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(records, recordInsertBatchSize).Error
}

// ListByBatch retrieves all records of a batch ordered by row number.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - batchID: owning batch ID.
// Returns:
//   - []domain.ImportRecord: records of the batch.
//   - error: non-nil if the query fails.
func (r *RecordRepository) ListByBatch(ctx context.Context, batchID string) ([]domain.ImportRecord, error) {
	var records []domain.ImportRecord
	if err := r.db.WithContext(ctx).
		Where("batch_id = ?", batchID).
		Order("row_number ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// ListProcessedByBatch retrieves the successfully processed records of a batch.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - batchID: owning batch ID.
// Returns:
//   - []domain.ImportRecord: processed records of the batch.
//   - error: non-nil if the query fails.
func (r *RecordRepository) ListProcessedByBatch(ctx context.Context, batchID string) ([]domain.ImportRecord, error) {
	var records []domain.ImportRecord
	if err := r.db.WithContext(ctx).
		Where("batch_id = ? AND status = ?", batchID, domain.RecordStatusProcessed).
		Order("row_number ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// CountByStatus counts records of a batch in a given status.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - batchID: owning batch ID.
//   - status: record status to count.
// Returns:
//   - int64: number of matching records.
//   - error: non-nil if the query fails.
func (r *RecordRepository) CountByStatus(ctx context.Context, batchID string, status domain.RecordStatus) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.ImportRecord{}).
		Where("batch_id = ? AND status = ?", batchID, status).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
