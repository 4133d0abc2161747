package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/fkoehler/kickflow/internal/domain"
)

// InventoryRepository handles inventory item data operations, including the
// lookup chain used to match incoming orders to existing stock.
type InventoryRepository struct {
	db *gorm.DB
}

// NewInventoryRepository creates a new InventoryRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *InventoryRepository: repository instance bound to db.
func NewInventoryRepository(db *gorm.DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

// Create inserts a new inventory item.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - item: inventory item to persist.
// Returns:
//   - error: non-nil if the insert fails.
func (r *InventoryRepository) Create(ctx context.Context, item *domain.InventoryItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// Update updates an existing inventory item.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - item: inventory item with updated fields.
// Returns:
//   - error: non-nil if the update fails.
func (r *InventoryRepository) Update(ctx context.Context, item *domain.InventoryItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

// GetByID retrieves an inventory item by its ID.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: inventory item ID.
// Returns:
//   - *domain.InventoryItem: item if found.
//   - error: non-nil if lookup fails.
func (r *InventoryRepository) GetByID(ctx context.Context, id string) (*domain.InventoryItem, error) {
	var item domain.InventoryItem
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// FindByExternalID finds the item whose external_ids payload carries the
// given key/value pair, e.g. a marketplace listing ID. A missing match is
// not an error.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - key: external ID key, e.g. "stockx_listing_id".
//   - value: external ID value.
// Returns:
//   - *domain.InventoryItem: matching item, nil when none exists.
//   - error: non-nil if the query fails.
func (r *InventoryRepository) FindByExternalID(ctx context.Context, key, value string) (*domain.InventoryItem, error) {
	if value == "" {
		return nil, nil
	}
	var item domain.InventoryItem
	// external_ids is serialized JSON text, so the pair appears literally.
	pattern := fmt.Sprintf(`%%"%s":"%s"%%`, key, value)
	err := r.db.WithContext(ctx).
		Where("external_ids LIKE ?", pattern).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// FindByExternalIDAndSize finds an item by external ID pair constrained to a
// size. Items without a size match any size.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - key: external ID key, e.g. "stockx_product_id".
//   - value: external ID value.
//   - sizeValue: normalized size value, e.g. "US 10".
// Returns:
//   - *domain.InventoryItem: matching item, nil when none exists.
//   - error: non-nil if the query fails.
func (r *InventoryRepository) FindByExternalIDAndSize(ctx context.Context, key, value, sizeValue string) (*domain.InventoryItem, error) {
	if value == "" {
		return nil, nil
	}
	var item domain.InventoryItem
	pattern := fmt.Sprintf(`%%"%s":"%s"%%`, key, value)
	err := r.db.WithContext(ctx).
		Joins("LEFT JOIN sizes ON sizes.id = inventory_items.size_id").
		Where("inventory_items.external_ids LIKE ?", pattern).
		Where("sizes.value = ? OR sizes.id IS NULL", sizeValue).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// FindBySKUAndSize finds an item whose product carries the given style code,
// constrained to a size. Items without a size match any size.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - sku: manufacturer style code, matched case-insensitively.
//   - sizeValue: normalized size value.
// Returns:
//   - *domain.InventoryItem: matching item, nil when none exists.
//   - error: non-nil if the query fails.
func (r *InventoryRepository) FindBySKUAndSize(ctx context.Context, sku, sizeValue string) (*domain.InventoryItem, error) {
	if sku == "" {
		return nil, nil
	}
	var item domain.InventoryItem
	err := r.db.WithContext(ctx).
		Joins("JOIN products ON products.id = inventory_items.product_id").
		Joins("LEFT JOIN sizes ON sizes.id = inventory_items.size_id").
		Where("LOWER(products.sku) = LOWER(?)", sku).
		Where("sizes.value = ? OR sizes.id IS NULL", sizeValue).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// FindByNameAndSize fuzzy-matches an item by product name substring,
// constrained to a size and, when known, a brand. Items without a size or
// brand match any. This is the least confident lookup and runs last.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - name: product name from the order.
//   - brandName: brand name, empty when unknown.
//   - sizeValue: normalized size value.
// Returns:
//   - *domain.InventoryItem: matching item, nil when none exists.
//   - error: non-nil if the query fails.
func (r *InventoryRepository) FindByNameAndSize(ctx context.Context, name, brandName, sizeValue string) (*domain.InventoryItem, error) {
	if name == "" {
		return nil, nil
	}
	var item domain.InventoryItem
	query := r.db.WithContext(ctx).
		Joins("JOIN products ON products.id = inventory_items.product_id").
		Joins("LEFT JOIN brands ON brands.id = products.brand_id").
		Joins("LEFT JOIN sizes ON sizes.id = inventory_items.size_id").
		Where("LOWER(products.name) LIKE ?", "%"+lower(name)+"%").
		Where("sizes.value = ? OR sizes.id IS NULL", sizeValue)
	if brandName != "" {
		query = query.Where("LOWER(brands.name) LIKE ? OR brands.id IS NULL", "%"+lower(brandName)+"%")
	}
	// Substring matches can be ambiguous; the oldest item wins.
	err := query.Order("inventory_items.created_at").First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func lower(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// CountByStatus counts inventory items in a given status.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - status: inventory status to count.
// Returns:
//   - int64: number of matching records.
//   - error: non-nil if the query fails.
func (r *InventoryRepository) CountByStatus(ctx context.Context, status domain.InventoryStatus) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.InventoryItem{}).Where("status = ?", status).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
