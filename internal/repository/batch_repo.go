package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/fkoehler/kickflow/internal/domain"
)

// BatchRepository handles import batch data operations.
type BatchRepository struct {
	db *gorm.DB
}

// NewBatchRepository creates a new BatchRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *BatchRepository: repository instance bound to db.
func NewBatchRepository(db *gorm.DB) *BatchRepository {
	return &BatchRepository{db: db}
}

// Create inserts a new import batch record.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - batch: batch record to persist.
// Returns:
//   - error: non-nil if the insert fails.
func (r *BatchRepository) Create(ctx context.Context, batch *domain.ImportBatch) error {
	return r.db.WithContext(ctx).Create(batch).Error
}

// Update writes all fields of an existing batch record. Every status
// transition is persisted immediately so progress survives a crash.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - batch: batch record with updated fields.
// Returns:
//   - error: non-nil if the update fails.
func (r *BatchRepository) Update(ctx context.Context, batch *domain.ImportBatch) error {
	batch.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Save(batch).Error
}

// GetByID retrieves a batch by its ID.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: batch ID.
// Returns:
//   - *domain.ImportBatch: batch record if found.
//   - error: non-nil if lookup fails.
func (r *BatchRepository) GetByID(ctx context.Context, id string) (*domain.ImportBatch, error) {
	var batch domain.ImportBatch
	if err := r.db.WithContext(ctx).First(&batch, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &batch, nil
}

// ListBySource retrieves batches for a source type, newest first.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - source: source type to filter by; empty means all.
//   - limit: maximum number of records to return.
//   - offset: number of records to skip.
// Returns:
//   - []domain.ImportBatch: matching batch records.
//   - error: non-nil if the query fails.
func (r *BatchRepository) ListBySource(ctx context.Context, source domain.SourceType, limit, offset int) ([]domain.ImportBatch, error) {
	var batches []domain.ImportBatch
	query := r.db.WithContext(ctx)
	if source != "" {
		query = query.Where("source_type = ?", source)
	}
	if err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&batches).Error; err != nil {
		return nil, err
	}
	return batches, nil
}

// CountByStatus counts batches in a given status.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - status: batch status to count.
// Returns:
//   - int64: number of matching records.
//   - error: non-nil if the query fails.
func (r *BatchRepository) CountByStatus(ctx context.Context, status domain.BatchStatus) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.ImportBatch{}).Where("status = ?", status).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
