package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/fkoehler/kickflow/internal/domain"
)

// platformDefaults describes the fee profile applied when a platform record
// is first created. Alias and manual sales carry no fee breakdown.
var platformDefaults = map[string]struct {
	fee          float64
	supportsFees bool
}{
	"stockx": {9.5, true},
	"goat":   {9.5, true},
	"ebay":   {10.0, true},
	"alias":  {0.0, false},
	"manual": {0.0, false},
}

// fallbackFeePercentage applies to platforms without a known fee profile.
const fallbackFeePercentage = 5.0

// PlatformRepository handles platform data operations.
type PlatformRepository struct {
	db *gorm.DB
}

// NewPlatformRepository creates a new PlatformRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *PlatformRepository: repository instance bound to db.
func NewPlatformRepository(db *gorm.DB) *PlatformRepository {
	return &PlatformRepository{db: db}
}

// GetBySlug retrieves a platform by its slug.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - slug: platform slug such as "stockx".
// Returns:
//   - *domain.Platform: platform record if found.
//   - error: non-nil if lookup fails.
func (r *PlatformRepository) GetBySlug(ctx context.Context, slug string) (*domain.Platform, error) {
	var platform domain.Platform
	if err := r.db.WithContext(ctx).First(&platform, "slug = ?", slug).Error; err != nil {
		return nil, err
	}
	return &platform, nil
}

// GetOrCreate retrieves a platform by slug, creating it with its default fee
// profile when missing.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - slug: platform slug such as "stockx".
// Returns:
//   - *domain.Platform: existing or newly created platform.
//   - error: non-nil if lookup or insert fails.
func (r *PlatformRepository) GetOrCreate(ctx context.Context, slug string) (*domain.Platform, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))

	platform, err := r.GetBySlug(ctx, slug)
	if err == nil {
		return platform, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	fee := fallbackFeePercentage
	supportsFees := true
	if defaults, ok := platformDefaults[slug]; ok {
		fee = defaults.fee
		supportsFees = defaults.supportsFees
	}

	created := &domain.Platform{
		ID:            uuid.New().String(),
		Name:          titleCase(slug),
		Slug:          slug,
		FeePercentage: decimal.NewFromFloat(fee),
		SupportsFees:  supportsFees,
		Active:        true,
	}
	if err := r.db.WithContext(ctx).Create(created).Error; err != nil {
		return nil, err
	}
	return created, nil
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
