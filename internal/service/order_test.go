package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fkoehler/kickflow/internal/domain"
	"github.com/fkoehler/kickflow/internal/source"
)

type fakeOrderStore struct {
	orders map[string]*domain.Order
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{orders: map[string]*domain.Order{}}
}

func (f *fakeOrderStore) Upsert(_ context.Context, order *domain.Order) error {
	copied := *order
	f.orders[order.ExternalID] = &copied
	return nil
}

func (f *fakeOrderStore) ExistsByExternalID(_ context.Context, externalID string) (bool, error) {
	_, ok := f.orders[externalID]
	return ok, nil
}

type fakePlatformStore struct {
	platforms map[string]*domain.Platform
}

func (f *fakePlatformStore) GetOrCreate(_ context.Context, slug string) (*domain.Platform, error) {
	if p, ok := f.platforms[slug]; ok {
		return p, nil
	}
	return &domain.Platform{ID: "plat-" + slug, Slug: slug}, nil
}

type fakeInventoryWriter struct {
	created []*domain.InventoryItem
	updated []*domain.InventoryItem
}

func (f *fakeInventoryWriter) Create(_ context.Context, item *domain.InventoryItem) error {
	f.created = append(f.created, item)
	return nil
}

func (f *fakeInventoryWriter) Update(_ context.Context, item *domain.InventoryItem) error {
	f.updated = append(f.updated, item)
	return nil
}

type fakeResolver struct{}

func (fakeResolver) ResolveBrand(_ context.Context, name string) (*domain.Brand, error) {
	return &domain.Brand{ID: "brand-1", Name: name}, nil
}

func (fakeResolver) ResolveCategory(_ context.Context, _ string) (*domain.Category, error) {
	return &domain.Category{ID: "cat-1", Name: "Sneakers"}, nil
}

func (fakeResolver) GetOrCreateSize(_ context.Context, categoryID, value string) (*domain.Size, error) {
	return &domain.Size{ID: "size-" + value, CategoryID: categoryID, Value: value}, nil
}

func (fakeResolver) GetOrCreateProduct(_ context.Context, sku, name, _ string) (*domain.Product, error) {
	return &domain.Product{ID: "product-1", SKU: sku, Name: name, CategoryID: "cat-1"}, nil
}

func processedRecord(batchID string, data domain.JSONMap) domain.ImportRecord {
	return domain.ImportRecord{
		BatchID:       batchID,
		RowNumber:     1,
		ProcessedData: data,
		Status:        domain.RecordStatusProcessed,
	}
}

func newTestOrderService(records *fakeRecordStore, orders *fakeOrderStore, platforms *fakePlatformStore, inventory *fakeInventoryWriter, finder *fakeInventoryFinder) *OrderService {
	return NewOrderService(records, orders, platforms, inventory,
		NewMatchService(finder), fakeResolver{})
}

func TestMaterializeFromBatchMatchedItem(t *testing.T) {
	stocked := &domain.InventoryItem{ID: "inv-1", Status: domain.InventoryStatusListed}
	finder := &fakeInventoryFinder{
		bySKU: map[string]*domain.InventoryItem{"DH6927-111|US 10": stocked},
	}
	records := &fakeRecordStore{records: []domain.ImportRecord{
		processedRecord("batch-1", domain.JSONMap{
			"order_number":            "323352708",
			"source_platform":         "stockx",
			"external_transaction_id": "stockx_323352708",
			"product_name":            "Jordan 4 Retro Military Black",
			"sku":                     "DH6927-111",
			"size":                    "US 10",
			// Values arrive as strings after the JSON round-trip.
			"listing_price":      "210",
			"seller_fee":         "19.95",
			"payment_processing": "6.3",
			"shipping_fee":       "4",
			"net_profit":         "179.75",
			"sale_date":          "2024-03-15T10:30:00Z",
		}),
	}}
	orders := newFakeOrderStore()
	platforms := &fakePlatformStore{platforms: map[string]*domain.Platform{
		"stockx": {ID: "plat-stockx", Slug: "stockx", FeePercentage: decimal.NewFromFloat(9.5), SupportsFees: true},
	}}
	inventory := &fakeInventoryWriter{}

	svc := newTestOrderService(records, orders, platforms, inventory, finder)
	if err := svc.MaterializeFromBatch(context.Background(), "batch-1"); err != nil {
		t.Fatalf("MaterializeFromBatch() error: %v", err)
	}

	order, ok := orders.orders["stockx_323352708"]
	if !ok {
		t.Fatalf("order not created: %v", orders.orders)
	}
	if order.InventoryItemID != "inv-1" {
		t.Errorf("InventoryItemID = %s, want inv-1", order.InventoryItemID)
	}
	if !order.GrossSale.Equal(decimal.NewFromInt(210)) {
		t.Errorf("GrossSale = %s, want 210", order.GrossSale)
	}

	// seller_fee + payment_processing
	wantFee, _ := decimal.NewFromString("26.25")
	if !order.PlatformFee.Equal(wantFee) {
		t.Errorf("PlatformFee = %s, want %s", order.PlatformFee, wantFee)
	}
	wantNet, _ := decimal.NewFromString("179.75")
	if !order.NetProfit.Valid || !order.NetProfit.Decimal.Equal(wantNet) {
		t.Errorf("NetProfit = %v, want %s", order.NetProfit, wantNet)
	}
	if order.SoldAt.IsZero() {
		t.Error("SoldAt should be parsed from the record")
	}

	// The matched item gets marked sold, nothing gets created.
	if len(inventory.created) != 0 {
		t.Errorf("placeholder created for a matched order: %v", inventory.created)
	}
	if len(inventory.updated) != 1 || inventory.updated[0].Status != domain.InventoryStatusSold {
		t.Error("matched item should be marked sold")
	}
}

func TestMaterializeFromBatchCreatesPlaceholder(t *testing.T) {
	records := &fakeRecordStore{records: []domain.ImportRecord{
		processedRecord("batch-1", domain.JSONMap{
			"order_number":    "9957422",
			"source_platform": "alias",
			"product_name":    "Yeezy Boost 350 V2 Zebra",
			"size":            "US 9.5",
			"sale_price":      "285",
		}),
	}}
	orders := newFakeOrderStore()
	platforms := &fakePlatformStore{platforms: map[string]*domain.Platform{
		"alias": {ID: "plat-alias", Slug: "alias", SupportsFees: false},
	}}
	inventory := &fakeInventoryWriter{}

	svc := newTestOrderService(records, orders, platforms, inventory, &fakeInventoryFinder{})
	if err := svc.MaterializeFromBatch(context.Background(), "batch-1"); err != nil {
		t.Fatalf("MaterializeFromBatch() error: %v", err)
	}

	if len(inventory.created) != 1 {
		t.Fatalf("created %d items, want 1 placeholder", len(inventory.created))
	}
	placeholder := inventory.created[0]
	if placeholder.ExternalIDs["is_placeholder"] != true {
		t.Error("placeholder should be flagged")
	}
	if placeholder.ExternalIDs["created_from_order"] != "9957422" {
		t.Errorf("created_from_order = %v", placeholder.ExternalIDs["created_from_order"])
	}

	order, ok := orders.orders["alias_9957422"]
	if !ok {
		t.Fatalf("order not created: %v", orders.orders)
	}
	if order.InventoryItemID != placeholder.ID {
		t.Error("order should reference the placeholder item")
	}
	// Fee-less platform, no record fees: nothing gets invented.
	if !order.PlatformFee.IsZero() {
		t.Errorf("PlatformFee = %s, want 0", order.PlatformFee)
	}
}

func TestMaterializeFromBatchAliasNamePriority(t *testing.T) {
	finder := &fakeInventoryFinder{
		bySKU:  map[string]*domain.InventoryItem{"ALIAS-SKU|US 9.5": {ID: "by-sku"}},
		byName: map[string]*domain.InventoryItem{"Yeezy Boost 350 V2 Zebra|US 9.5": {ID: "by-name"}},
	}
	records := &fakeRecordStore{records: []domain.ImportRecord{
		processedRecord("batch-1", domain.JSONMap{
			"order_number":           "9957422",
			"source_platform":        "alias",
			"product_name":           "Yeezy Boost 350 V2 Zebra",
			"sku":                    "ALIAS-SKU",
			"size":                   "US 9.5",
			"sale_price":             "285",
			"requires_name_matching": true,
		}),
	}}
	orders := newFakeOrderStore()
	platforms := &fakePlatformStore{platforms: map[string]*domain.Platform{}}
	inventory := &fakeInventoryWriter{}

	svc := newTestOrderService(records, orders, platforms, inventory, finder)
	if err := svc.MaterializeFromBatch(context.Background(), "batch-1"); err != nil {
		t.Fatalf("MaterializeFromBatch() error: %v", err)
	}

	order, ok := orders.orders["alias_9957422"]
	if !ok {
		t.Fatalf("order not created: %v", orders.orders)
	}
	if order.InventoryItemID != "by-name" {
		t.Errorf("InventoryItemID = %s, want the name match to win over the style code", order.InventoryItemID)
	}
}

func TestMaterializeFromBatchIsIdempotent(t *testing.T) {
	records := &fakeRecordStore{records: []domain.ImportRecord{
		processedRecord("batch-1", domain.JSONMap{
			"order_number":            "1",
			"source_platform":         "stockx",
			"external_transaction_id": "stockx_1",
			"product_name":            "Dunk Low Panda",
			"size":                    "US 10",
			"listing_price":           "115.5",
		}),
	}}
	orders := newFakeOrderStore()
	platforms := &fakePlatformStore{platforms: map[string]*domain.Platform{}}
	inventory := &fakeInventoryWriter{}

	svc := newTestOrderService(records, orders, platforms, inventory, &fakeInventoryFinder{})
	for i := 0; i < 2; i++ {
		if err := svc.MaterializeFromBatch(context.Background(), "batch-1"); err != nil {
			t.Fatalf("run %d error: %v", i+1, err)
		}
	}

	if len(orders.orders) != 1 {
		t.Errorf("got %d orders, want 1", len(orders.orders))
	}
	if len(inventory.created) != 1 {
		t.Errorf("created %d placeholders, want 1", len(inventory.created))
	}
}

type fakeFeed struct {
	pages [][]source.OrderItem
}

func (f *fakeFeed) GetSourceID() string       { return "stockx" }
func (f *fakeFeed) GetDisplayName() string    { return "StockX" }
func (f *fakeFeed) SupportsIncremental() bool { return true }

func (f *fakeFeed) FetchBatch(_ context.Context, cursor string, _ int) ([]source.OrderItem, string, error) {
	page := 0
	if cursor == "2" {
		page = 1
	}
	if page >= len(f.pages) {
		return nil, "", nil
	}
	next := ""
	if page+1 < len(f.pages) {
		next = "2"
	}
	return f.pages[page], next, nil
}

func TestSyncFromFeed(t *testing.T) {
	payout, _ := decimal.NewFromString("179.75")
	feed := &fakeFeed{pages: [][]source.OrderItem{
		{
			{
				OrderNumber: "100",
				ListingID:   "listing-100",
				ProductName: "Jordan 4 Retro Military Black",
				StyleCode:   "DH6927-111",
				SizeValue:   "US 10",
				GrossAmount: decimal.NewFromInt(210),
				Payout:      decimal.NewNullDecimal(payout),
				SoldAt:      time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC),
			},
		},
		{
			{
				OrderNumber: "101",
				ProductName: "Dunk Low Panda",
				SizeValue:   "US 9",
				GrossAmount: decimal.NewFromFloat(115.5),
			},
		},
	}}

	stocked := &domain.InventoryItem{ID: "inv-1", Status: domain.InventoryStatusListed}
	finder := &fakeInventoryFinder{
		byListing: map[string]*domain.InventoryItem{"stockx_listing_id|listing-100": stocked},
	}
	orders := newFakeOrderStore()
	platforms := &fakePlatformStore{platforms: map[string]*domain.Platform{
		"stockx": {ID: "plat-stockx", Slug: "stockx", FeePercentage: decimal.NewFromFloat(9.5), SupportsFees: true},
	}}
	inventory := &fakeInventoryWriter{}

	svc := newTestOrderService(&fakeRecordStore{}, orders, platforms, inventory, finder)
	created, err := svc.SyncFromFeed(context.Background(), feed)
	if err != nil {
		t.Fatalf("SyncFromFeed() error: %v", err)
	}
	if created != 2 {
		t.Errorf("created = %d, want 2", created)
	}

	matched := orders.orders["stockx_100"]
	if matched == nil {
		t.Fatal("order stockx_100 missing")
	}
	if matched.InventoryItemID != "inv-1" {
		t.Errorf("InventoryItemID = %s, want inv-1", matched.InventoryItemID)
	}
	// gross - payout
	wantFee, _ := decimal.NewFromString("30.25")
	if !matched.PlatformFee.Equal(wantFee) {
		t.Errorf("PlatformFee = %s, want %s", matched.PlatformFee, wantFee)
	}

	unmatched := orders.orders["stockx_101"]
	if unmatched == nil {
		t.Fatal("order stockx_101 missing")
	}
	if len(inventory.created) != 1 {
		t.Errorf("created %d placeholders, want 1", len(inventory.created))
	}
	// No payout on the feed item: fall back to the platform fee percentage.
	wantPctFee := decimal.NewFromFloat(115.5).
		Mul(decimal.NewFromFloat(9.5)).
		Div(decimal.NewFromInt(100))
	if !unmatched.PlatformFee.Equal(wantPctFee) {
		t.Errorf("PlatformFee = %s, want %s", unmatched.PlatformFee, wantPctFee)
	}
}
