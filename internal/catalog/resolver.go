package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fkoehler/kickflow/internal/domain"
	"github.com/fkoehler/kickflow/internal/logger"
)

// Resolver maps the free-text brand, category, size and product values that
// arrive in marketplace exports to catalog entities, creating missing ones.
type Resolver interface {
	// ResolveBrand finds or creates the brand with the given canonical name.
	ResolveBrand(ctx context.Context, name string) (*domain.Brand, error)

	// ResolveCategory classifies a product name into a category and finds
	// or creates it.
	ResolveCategory(ctx context.Context, productName string) (*domain.Category, error)

	// GetOrCreateSize finds or creates a normalized size within a category.
	GetOrCreateSize(ctx context.Context, categoryID, value string) (*domain.Size, error)

	// GetOrCreateProduct finds a product by SKU (or by name when the SKU is
	// empty), creating it with resolved brand and category when missing.
	GetOrCreateProduct(ctx context.Context, sku, name, brandName string) (*domain.Product, error)
}

// categoryKeywords classifies product names. Checked in order; the fallback
// category is Sneakers since footwear dominates marketplace exports.
var categoryKeywords = []struct {
	category string
	keywords []string
}{
	{"Apparel", []string{"hoodie", "tee", "t-shirt", "shirt", "jacket", "pants", "shorts", "sweat", "fleece", "crewneck"}},
	{"Accessories", []string{"bag", "backpack", "cap", "hat", "beanie", "wallet", "pak'r"}},
	{"Collectibles", []string{"figure", "hot wheels", "construx", "companion", "skateboard deck"}},
}

const fallbackCategory = "Sneakers"

type gormResolver struct {
	db *gorm.DB
}

// NewResolver builds the database-backed entity resolver.
//
// Parameters:
//   - db: GORM database handle
//
// Returns:
//   - Resolver: resolver backed by the brands/categories/sizes/products tables
func NewResolver(db *gorm.DB) Resolver {
	return &gormResolver{db: db}
}

func (r *gormResolver) ResolveBrand(ctx context.Context, name string) (*domain.Brand, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("brand name is empty")
	}

	var brand domain.Brand
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&brand).Error
	if err == nil {
		return &brand, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to query brand: %w", err)
	}

	brand = domain.Brand{
		ID:   uuid.New().String(),
		Name: name,
		Slug: slugify(name),
	}
	if err := r.db.WithContext(ctx).Create(&brand).Error; err != nil {
		return nil, fmt.Errorf("failed to create brand: %w", err)
	}
	logger.CtxDebug(ctx, "created brand %s", name)
	return &brand, nil
}

func (r *gormResolver) ResolveCategory(ctx context.Context, productName string) (*domain.Category, error) {
	name := classifyCategory(productName)

	var category domain.Category
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&category).Error
	if err == nil {
		return &category, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to query category: %w", err)
	}

	category = domain.Category{
		ID:   uuid.New().String(),
		Name: name,
		Slug: slugify(name),
	}
	if err := r.db.WithContext(ctx).Create(&category).Error; err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return &category, nil
}

func (r *gormResolver) GetOrCreateSize(ctx context.Context, categoryID, value string) (*domain.Size, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		value = "One Size"
	}

	var size domain.Size
	err := r.db.WithContext(ctx).
		Where("category_id = ? AND value = ?", categoryID, value).
		First(&size).Error
	if err == nil {
		return &size, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to query size: %w", err)
	}

	size = domain.Size{
		ID:         uuid.New().String(),
		CategoryID: categoryID,
		Value:      value,
		Region:     sizeRegion(value),
	}
	if err := r.db.WithContext(ctx).Create(&size).Error; err != nil {
		return nil, fmt.Errorf("failed to create size: %w", err)
	}
	return &size, nil
}

func (r *gormResolver) GetOrCreateProduct(ctx context.Context, sku, name, brandName string) (*domain.Product, error) {
	sku = strings.TrimSpace(sku)
	name = strings.TrimSpace(name)
	if sku == "" && name == "" {
		return nil, errors.New("product needs a sku or a name")
	}

	var product domain.Product
	query := r.db.WithContext(ctx)
	if sku != "" {
		query = query.Where("sku = ?", sku)
	} else {
		query = query.Where("LOWER(name) = LOWER(?)", name)
	}
	err := query.First(&product).Error
	if err == nil {
		return &product, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to query product: %w", err)
	}

	product = domain.Product{
		ID:   uuid.New().String(),
		SKU:  sku,
		Name: name,
	}
	if brandName != "" {
		brand, err := r.ResolveBrand(ctx, brandName)
		if err != nil {
			return nil, err
		}
		product.BrandID = brand.ID
	}
	category, err := r.ResolveCategory(ctx, name)
	if err != nil {
		return nil, err
	}
	product.CategoryID = category.ID

	if err := r.db.WithContext(ctx).Create(&product).Error; err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	logger.CtxInfo(ctx, "created product %q (sku=%s)", name, sku)
	return &product, nil
}

func classifyCategory(productName string) string {
	lowered := strings.ToLower(productName)
	for _, group := range categoryKeywords {
		for _, kw := range group.keywords {
			if strings.Contains(lowered, kw) {
				return group.category
			}
		}
	}
	return fallbackCategory
}

// sizeRegion derives the region tag from a normalized size value.
func sizeRegion(value string) string {
	fields := strings.Fields(value)
	if len(fields) > 1 {
		switch fields[0] {
		case "US", "EU", "UK", "JP":
			return fields[0]
		}
	}
	return "US"
}

func slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r == ' ', r == '-', r == '_', r == '.', r == '/':
			return '-'
		default:
			return -1
		}
	}, slug)
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}
	return strings.Trim(slug, "-")
}
