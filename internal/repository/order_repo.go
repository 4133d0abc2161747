package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fkoehler/kickflow/internal/domain"
)

// OrderRepository handles order data operations.
type OrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates a new OrderRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *OrderRepository: repository instance bound to db.
func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create inserts a new order record.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - order: order record to persist.
// Returns:
//   - error: non-nil if the insert fails.
func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

// Upsert creates or updates an order keyed by its external ID.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - order: order record to create or update.
// Returns:
//   - error: non-nil if the upsert fails.
func (r *OrderRepository) Upsert(ctx context.Context, order *domain.Order) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "external_id"}},
		UpdateAll: true,
	}).Create(order).Error
}

// ExistsByExternalID checks whether an order with the given external ID exists.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - externalID: deduplication key.
// Returns:
//   - bool: true if a record exists.
//   - error: non-nil if the lookup fails.
func (r *OrderRepository) ExistsByExternalID(ctx context.Context, externalID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Order{}).
		Where("external_id = ?", externalID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetByExternalID retrieves an order by its external ID. A missing order is
// not an error.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - externalID: deduplication key.
// Returns:
//   - *domain.Order: order record, nil when none exists.
//   - error: non-nil if the lookup fails.
func (r *OrderRepository) GetByExternalID(ctx context.Context, externalID string) (*domain.Order, error) {
	var order domain.Order
	err := r.db.WithContext(ctx).First(&order, "external_id = ?", externalID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ListByPlatform retrieves orders for a platform, newest sale first.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - platformID: platform ID to filter by.
//   - limit: maximum number of records to return.
//   - offset: number of records to skip.
// Returns:
//   - []domain.Order: matching order records.
//   - error: non-nil if the query fails.
func (r *OrderRepository) ListByPlatform(ctx context.Context, platformID string, limit, offset int) ([]domain.Order, error) {
	var orders []domain.Order
	if err := r.db.WithContext(ctx).
		Where("platform_id = ?", platformID).
		Order("sold_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}
