package service

import (
	"context"
	"fmt"

	"github.com/fkoehler/kickflow/internal/domain"
	"github.com/fkoehler/kickflow/internal/logger"
)

// InventoryFinder is the lookup surface the matcher needs.
type InventoryFinder interface {
	FindByExternalID(ctx context.Context, key, value string) (*domain.InventoryItem, error)
	FindByExternalIDAndSize(ctx context.Context, key, value, sizeValue string) (*domain.InventoryItem, error)
	FindBySKUAndSize(ctx context.Context, sku, sizeValue string) (*domain.InventoryItem, error)
	FindByNameAndSize(ctx context.Context, name, brandName, sizeValue string) (*domain.InventoryItem, error)
}

// MatchQuery carries the identifiers extracted from an incoming order.
type MatchQuery struct {
	Platform          string // platform slug, used to key external IDs
	ListingID         string
	PlatformProductID string
	StyleCode         string
	ProductName       string
	Brand             string
	SizeValue         string
	// PreferName runs the name lookup before the style-code lookup, for
	// sources whose style codes are unreliable.
	PreferName bool
}

// MatchService resolves incoming orders to existing inventory items using a
// confidence-ordered chain of lookups.
type MatchService struct {
	inventory InventoryFinder
}

// NewMatchService creates a new MatchService.
// Parameters:
//   - inventory: inventory lookup implementation.
// Returns:
//   - *MatchService: matcher bound to the given lookups.
func NewMatchService(inventory InventoryFinder) *MatchService {
	return &MatchService{inventory: inventory}
}

// FindInventoryItem tries each strategy in order of confidence:
// listing ID, platform product ID + size, style code + size, then fuzzy
// product name + size + brand. PreferName swaps the last two. Strategies
// beyond the first need a size.
// No match is a normal outcome and returns (nil, nil); the caller decides
// whether to create a placeholder.
//
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - q: identifiers from the incoming order.
// Returns:
//   - *domain.InventoryItem: matched item, nil when nothing matched.
//   - error: non-nil if a lookup fails.
func (s *MatchService) FindInventoryItem(ctx context.Context, q MatchQuery) (*domain.InventoryItem, error) {
	log := logger.FromContext(ctx)

	if q.ListingID != "" {
		item, err := s.inventory.FindByExternalID(ctx, externalIDKey(q.Platform, "listing_id"), q.ListingID)
		if err != nil {
			return nil, err
		}
		if item != nil {
			log.Infof("inventory match by listing ID: %s", q.ListingID)
			return item, nil
		}
	}

	if q.PlatformProductID != "" && q.SizeValue != "" {
		item, err := s.inventory.FindByExternalIDAndSize(ctx, externalIDKey(q.Platform, "product_id"), q.PlatformProductID, q.SizeValue)
		if err != nil {
			return nil, err
		}
		if item != nil {
			log.Infof("inventory match by product ID + size: %s / %s", q.PlatformProductID, q.SizeValue)
			return item, nil
		}
	}

	textLookups := []func(context.Context, MatchQuery) (*domain.InventoryItem, error){
		s.matchByStyleCode,
		s.matchByName,
	}
	if q.PreferName {
		textLookups[0], textLookups[1] = textLookups[1], textLookups[0]
	}
	for _, lookup := range textLookups {
		item, err := lookup(ctx, q)
		if err != nil {
			return nil, err
		}
		if item != nil {
			return item, nil
		}
	}

	log.Debugf("no inventory match for %s order %s", q.Platform, q.ListingID)
	return nil, nil
}

func (s *MatchService) matchByStyleCode(ctx context.Context, q MatchQuery) (*domain.InventoryItem, error) {
	if q.StyleCode == "" || q.SizeValue == "" {
		return nil, nil
	}
	item, err := s.inventory.FindBySKUAndSize(ctx, q.StyleCode, q.SizeValue)
	if err != nil {
		return nil, err
	}
	if item != nil {
		logger.FromContext(ctx).Infof("inventory match by style code + size: %s / %s", q.StyleCode, q.SizeValue)
	}
	return item, nil
}

func (s *MatchService) matchByName(ctx context.Context, q MatchQuery) (*domain.InventoryItem, error) {
	if q.ProductName == "" || q.SizeValue == "" {
		return nil, nil
	}
	item, err := s.inventory.FindByNameAndSize(ctx, q.ProductName, q.Brand, q.SizeValue)
	if err != nil {
		return nil, err
	}
	if item != nil {
		logger.FromContext(ctx).Infof("inventory match by name + size: %s / %s", q.ProductName, q.SizeValue)
	}
	return item, nil
}

func externalIDKey(platform, suffix string) string {
	if platform == "" {
		platform = "stockx"
	}
	return fmt.Sprintf("%s_%s", platform, suffix)
}
