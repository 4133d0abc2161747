package service

import (
	"context"
	"testing"

	"github.com/fkoehler/kickflow/internal/domain"
)

// fakeInventoryFinder answers lookups from fixed maps and records the
// strategies tried, in order.
type fakeInventoryFinder struct {
	byListing map[string]*domain.InventoryItem // key+"|"+value
	byProduct map[string]*domain.InventoryItem // key+"|"+value+"|"+size
	bySKU     map[string]*domain.InventoryItem // sku+"|"+size
	byName    map[string]*domain.InventoryItem // name+"|"+size
	tried     []string
}

func (f *fakeInventoryFinder) FindByExternalID(_ context.Context, key, value string) (*domain.InventoryItem, error) {
	f.tried = append(f.tried, "listing")
	return f.byListing[key+"|"+value], nil
}

func (f *fakeInventoryFinder) FindByExternalIDAndSize(_ context.Context, key, value, sizeValue string) (*domain.InventoryItem, error) {
	f.tried = append(f.tried, "product")
	return f.byProduct[key+"|"+value+"|"+sizeValue], nil
}

func (f *fakeInventoryFinder) FindBySKUAndSize(_ context.Context, sku, sizeValue string) (*domain.InventoryItem, error) {
	f.tried = append(f.tried, "sku")
	return f.bySKU[sku+"|"+sizeValue], nil
}

func (f *fakeInventoryFinder) FindByNameAndSize(_ context.Context, name, _, sizeValue string) (*domain.InventoryItem, error) {
	f.tried = append(f.tried, "name")
	return f.byName[name+"|"+sizeValue], nil
}

func item(id string) *domain.InventoryItem {
	return &domain.InventoryItem{ID: id}
}

func TestFindInventoryItemStrategyOrder(t *testing.T) {
	query := MatchQuery{
		Platform:          "stockx",
		ListingID:         "listing-1",
		PlatformProductID: "prod-1",
		StyleCode:         "DV0982-100",
		ProductName:       "Air Jordan 3 White Cement",
		Brand:             "Nike Jordan",
		SizeValue:         "US 10",
	}

	testCases := []struct {
		name      string
		finder    *fakeInventoryFinder
		wantID    string
		wantTried []string
	}{
		{
			name: "listing ID wins first",
			finder: &fakeInventoryFinder{
				byListing: map[string]*domain.InventoryItem{"stockx_listing_id|listing-1": item("a")},
				bySKU:     map[string]*domain.InventoryItem{"DV0982-100|US 10": item("b")},
			},
			wantID:    "a",
			wantTried: []string{"listing"},
		},
		{
			name: "product ID second",
			finder: &fakeInventoryFinder{
				byProduct: map[string]*domain.InventoryItem{"stockx_product_id|prod-1|US 10": item("b")},
			},
			wantID:    "b",
			wantTried: []string{"listing", "product"},
		},
		{
			name: "style code third",
			finder: &fakeInventoryFinder{
				bySKU: map[string]*domain.InventoryItem{"DV0982-100|US 10": item("c")},
			},
			wantID:    "c",
			wantTried: []string{"listing", "product", "sku"},
		},
		{
			name: "fuzzy name last",
			finder: &fakeInventoryFinder{
				byName: map[string]*domain.InventoryItem{"Air Jordan 3 White Cement|US 10": item("d")},
			},
			wantID:    "d",
			wantTried: []string{"listing", "product", "sku", "name"},
		},
		{
			name:      "no match is not an error",
			finder:    &fakeInventoryFinder{},
			wantID:    "",
			wantTried: []string{"listing", "product", "sku", "name"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			matcher := NewMatchService(tc.finder)
			got, err := matcher.FindInventoryItem(context.Background(), query)
			if err != nil {
				t.Fatalf("FindInventoryItem() error: %v", err)
			}
			if tc.wantID == "" {
				if got != nil {
					t.Fatalf("expected no match, got %v", got)
				}
			} else if got == nil || got.ID != tc.wantID {
				t.Fatalf("got %v, want item %s", got, tc.wantID)
			}
			if len(tc.finder.tried) != len(tc.wantTried) {
				t.Fatalf("tried %v, want %v", tc.finder.tried, tc.wantTried)
			}
			for i := range tc.wantTried {
				if tc.finder.tried[i] != tc.wantTried[i] {
					t.Fatalf("tried %v, want %v", tc.finder.tried, tc.wantTried)
				}
			}
		})
	}
}

func TestFindInventoryItemPreferName(t *testing.T) {
	testCases := []struct {
		name       string
		preferName bool
		wantID     string
		wantTried  []string
	}{
		{"style code wins by default", false, "by-sku", []string{"sku"}},
		{"name wins when preferred", true, "by-name", []string{"name"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Both text strategies would match different items.
			finder := &fakeInventoryFinder{
				bySKU:  map[string]*domain.InventoryItem{"FAKE-SKU|US 9.5": item("by-sku")},
				byName: map[string]*domain.InventoryItem{"Yeezy Boost 350 V2 Zebra|US 9.5": item("by-name")},
			}
			matcher := NewMatchService(finder)

			got, err := matcher.FindInventoryItem(context.Background(), MatchQuery{
				Platform:    "alias",
				StyleCode:   "FAKE-SKU",
				ProductName: "Yeezy Boost 350 V2 Zebra",
				SizeValue:   "US 9.5",
				PreferName:  tc.preferName,
			})
			if err != nil {
				t.Fatalf("FindInventoryItem() error: %v", err)
			}
			if got == nil || got.ID != tc.wantID {
				t.Fatalf("got %v, want item %s", got, tc.wantID)
			}
			if len(finder.tried) != len(tc.wantTried) {
				t.Fatalf("tried %v, want %v", finder.tried, tc.wantTried)
			}
			for i := range tc.wantTried {
				if finder.tried[i] != tc.wantTried[i] {
					t.Fatalf("tried %v, want %v", finder.tried, tc.wantTried)
				}
			}
		})
	}
}

func TestFindInventoryItemRequiresSizeBeyondListing(t *testing.T) {
	finder := &fakeInventoryFinder{
		bySKU: map[string]*domain.InventoryItem{"DV0982-100|US 10": item("x")},
	}
	matcher := NewMatchService(finder)

	// Without an order size only the listing-ID strategy may run.
	got, err := matcher.FindInventoryItem(context.Background(), MatchQuery{
		Platform:          "stockx",
		ListingID:         "unknown",
		PlatformProductID: "prod-1",
		StyleCode:         "DV0982-100",
		ProductName:       "Air Jordan 3 White Cement",
	})
	if err != nil {
		t.Fatalf("FindInventoryItem() error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected no match without a size, got %v", got)
	}
	if len(finder.tried) != 1 || finder.tried[0] != "listing" {
		t.Errorf("tried %v, want only the listing strategy", finder.tried)
	}
}

func TestFindInventoryItemDefaultsPlatformKey(t *testing.T) {
	finder := &fakeInventoryFinder{
		byListing: map[string]*domain.InventoryItem{"stockx_listing_id|l1": item("a")},
	}
	matcher := NewMatchService(finder)

	got, err := matcher.FindInventoryItem(context.Background(), MatchQuery{ListingID: "l1"})
	if err != nil {
		t.Fatalf("FindInventoryItem() error: %v", err)
	}
	if got == nil || got.ID != "a" {
		t.Fatalf("empty platform should key external IDs as stockx, got %v", got)
	}
}
