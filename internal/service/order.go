package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fkoehler/kickflow/internal/catalog"
	"github.com/fkoehler/kickflow/internal/domain"
	"github.com/fkoehler/kickflow/internal/logger"
	"github.com/fkoehler/kickflow/internal/source"
)

// OrderStore is the order persistence surface the materializer needs.
type OrderStore interface {
	Upsert(ctx context.Context, order *domain.Order) error
	ExistsByExternalID(ctx context.Context, externalID string) (bool, error)
}

// PlatformStore resolves platforms with their fee defaults.
type PlatformStore interface {
	GetOrCreate(ctx context.Context, slug string) (*domain.Platform, error)
}

// InventoryWriter creates and updates inventory items.
type InventoryWriter interface {
	Create(ctx context.Context, item *domain.InventoryItem) error
	Update(ctx context.Context, item *domain.InventoryItem) error
}

// OrderService materializes orders from processed import records and from
// live marketplace feeds. Matched inventory items are marked sold; orders
// that match nothing get a placeholder item so the sale is never dropped.
type OrderService struct {
	records   RecordStore
	orders    OrderStore
	platforms PlatformStore
	inventory InventoryWriter
	matcher   *MatchService
	resolver  catalog.Resolver
}

// NewOrderService creates a new OrderService.
// Parameters:
//   - records: per-row import record reads.
//   - orders: order persistence.
//   - platforms: platform lookup with fee defaults.
//   - inventory: inventory item writes.
//   - matcher: inventory matching chain.
//   - resolver: catalog entity resolver for placeholder creation.
// Returns:
//   - *OrderService: service bound to the given dependencies.
func NewOrderService(records RecordStore, orders OrderStore, platforms PlatformStore, inventory InventoryWriter, matcher *MatchService, resolver catalog.Resolver) *OrderService {
	return &OrderService{
		records:   records,
		orders:    orders,
		platforms: platforms,
		inventory: inventory,
		matcher:   matcher,
		resolver:  resolver,
	}
}

// MaterializeFromBatch creates orders for every processed record of a batch
// that carries an order number. Records whose external ID already exists are
// skipped, so reimporting a file is idempotent.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - batchID: completed import batch.
// Returns:
//   - error: non-nil if reading records fails; per-record failures are
//     logged and skipped.
func (s *OrderService) MaterializeFromBatch(ctx context.Context, batchID string) error {
	ctx = logger.SetBatchID(ctx, batchID)

	records, err := s.records.ListProcessedByBatch(ctx, batchID)
	if err != nil {
		return fmt.Errorf("failed to load batch records: %w", err)
	}

	created := 0
	skipped := 0
	for _, record := range records {
		ok, err := s.materializeRecord(ctx, record)
		if err != nil {
			logger.CtxError(ctx, "row %d: order materialization failed: %v", record.RowNumber, err)
			continue
		}
		if ok {
			created++
		} else {
			skipped++
		}
	}

	logger.With(logger.Fields{logger.FieldCount: created}).
		Info(ctx, "order materialization done: %d created, %d skipped", created, skipped)
	return nil
}

func (s *OrderService) materializeRecord(ctx context.Context, record domain.ImportRecord) (bool, error) {
	data := record.ProcessedData

	orderNumber := stringAt(data, "order_number")
	if orderNumber == "" {
		return false, nil
	}

	slug := strings.ToLower(stringAt(data, "source_platform"))
	if slug == "" {
		slug = strings.ToLower(stringAt(data, "platform"))
	}
	if slug == "" {
		slug = "manual"
	}

	externalID := stringAt(data, "external_transaction_id")
	if externalID == "" {
		externalID = slug + "_" + orderNumber
	}

	exists, err := s.orders.ExistsByExternalID(ctx, externalID)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	platform, err := s.platforms.GetOrCreate(ctx, slug)
	if err != nil {
		return false, err
	}

	preferName, _ := data["requires_name_matching"].(bool)
	query := MatchQuery{
		Platform:    slug,
		StyleCode:   stringAt(data, "sku"),
		ProductName: stringAt(data, "product_name"),
		Brand:       stringAt(data, "brand"),
		SizeValue:   stringAt(data, "size"),
		PreferName:  preferName,
	}
	item, err := s.matcher.FindInventoryItem(ctx, query)
	if err != nil {
		return false, err
	}
	if item == nil {
		item, err = s.createPlaceholder(ctx, query, orderNumber)
		if err != nil {
			return false, err
		}
	}

	gross := decimalAt(data, "listing_price", "sale_price", "gross_sale")
	shipping := decimalAt(data, "shipping_fee", "shipping_cost")

	fee := decimalAt(data, "seller_fee")
	if processing := decimalAt(data, "payment_processing"); processing.Valid {
		if fee.Valid {
			fee = decimal.NewNullDecimal(fee.Decimal.Add(processing.Decimal))
		} else {
			fee = processing
		}
	}
	if !fee.Valid && platform.SupportsFees && gross.Valid {
		fee = decimal.NewNullDecimal(
			gross.Decimal.Mul(platform.FeePercentage).Div(decimal.NewFromInt(100)))
	}

	netProfit := decimalAt(data, "net_profit", "profit")
	if !netProfit.Valid && platform.SupportsFees && gross.Valid {
		net := gross.Decimal
		if fee.Valid {
			net = net.Sub(fee.Decimal)
		}
		if shipping.Valid {
			net = net.Sub(shipping.Decimal)
		}
		netProfit = decimal.NewNullDecimal(net)
	}

	order := &domain.Order{
		ID:                      uuid.New().String(),
		InventoryItemID:         item.ID,
		PlatformID:              platform.ID,
		ExternalID:              externalID,
		OrderNumber:             orderNumber,
		GrossSale:               gross.Decimal,
		PlatformFee:             fee.Decimal,
		ShippingCost:            shipping.Decimal,
		NetProfit:               netProfit,
		SoldAt:                  timeAt(data, "sale_date"),
		Status:                  "completed",
		BuyerDestinationCountry: stringAt(data, "buyer_destination_country"),
		BuyerDestinationCity:    stringAt(data, "buyer_destination_city"),
	}
	if err := s.orders.Upsert(ctx, order); err != nil {
		return false, err
	}

	if item.Status != domain.InventoryStatusSold {
		item.Status = domain.InventoryStatusSold
		if err := s.inventory.Update(ctx, item); err != nil {
			logger.CtxWarn(ctx, "failed to mark item %s sold: %v", item.ID, err)
		}
	}

	return true, nil
}

// SyncFromFeed imports completed orders from a live marketplace feed,
// paging until the feed is exhausted.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - feed: marketplace order feed.
// Returns:
//   - int: number of orders created.
//   - error: non-nil if fetching or persistence fails.
func (s *OrderService) SyncFromFeed(ctx context.Context, feed source.Source) (int, error) {
	ctx = logger.SetSource(ctx, feed.GetSourceID())
	slug := feed.GetSourceID()

	platform, err := s.platforms.GetOrCreate(ctx, slug)
	if err != nil {
		return 0, err
	}

	created := 0
	cursor := ""
	for {
		items, nextCursor, err := feed.FetchBatch(ctx, cursor, 0)
		if err != nil {
			return created, fmt.Errorf("feed fetch failed: %w", err)
		}

		for _, item := range items {
			ok, err := s.importFeedOrder(ctx, platform, slug, item)
			if err != nil {
				logger.CtxError(ctx, "order %s: feed import failed: %v", item.OrderNumber, err)
				continue
			}
			if ok {
				created++
			}
		}

		if nextCursor == "" {
			break
		}
		cursor = nextCursor
	}

	logger.With(logger.Fields{logger.FieldCount: created}).
		Info(ctx, "feed sync done for %s", feed.GetDisplayName())
	return created, nil
}

func (s *OrderService) importFeedOrder(ctx context.Context, platform *domain.Platform, slug string, feedOrder source.OrderItem) (bool, error) {
	if feedOrder.OrderNumber == "" {
		return false, nil
	}

	externalID := slug + "_" + feedOrder.OrderNumber
	exists, err := s.orders.ExistsByExternalID(ctx, externalID)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	query := MatchQuery{
		Platform:          slug,
		ListingID:         feedOrder.ListingID,
		PlatformProductID: feedOrder.ProductID,
		StyleCode:         feedOrder.StyleCode,
		ProductName:       feedOrder.ProductName,
		Brand:             feedOrder.Brand,
		SizeValue:         feedOrder.SizeValue,
	}
	item, err := s.matcher.FindInventoryItem(ctx, query)
	if err != nil {
		return false, err
	}
	if item == nil {
		item, err = s.createPlaceholder(ctx, query, feedOrder.OrderNumber)
		if err != nil {
			return false, err
		}
	}

	gross := feedOrder.GrossAmount
	var fee decimal.Decimal
	if feedOrder.Payout.Valid {
		fee = gross.Sub(feedOrder.Payout.Decimal)
	} else if platform.SupportsFees {
		fee = gross.Mul(platform.FeePercentage).Div(decimal.NewFromInt(100))
	}

	order := &domain.Order{
		ID:                      uuid.New().String(),
		InventoryItemID:         item.ID,
		PlatformID:              platform.ID,
		ExternalID:              externalID,
		OrderNumber:             feedOrder.OrderNumber,
		GrossSale:               gross,
		PlatformFee:             fee,
		NetProfit:               feedOrder.Payout,
		SoldAt:                  feedOrder.SoldAt,
		Status:                  "completed",
		BuyerDestinationCountry: feedOrder.DestinationCountry,
		BuyerDestinationCity:    feedOrder.DestinationCity,
	}
	if err := s.orders.Upsert(ctx, order); err != nil {
		return false, err
	}

	if item.Status != domain.InventoryStatusSold {
		item.Status = domain.InventoryStatusSold
		if err := s.inventory.Update(ctx, item); err != nil {
			logger.CtxWarn(ctx, "failed to mark item %s sold: %v", item.ID, err)
		}
	}

	return true, nil
}

// createPlaceholder creates a minimal inventory item for an order that
// matched nothing, so the sale can still be recorded. The item is flagged so
// it can be reconciled with real stock later.
func (s *OrderService) createPlaceholder(ctx context.Context, q MatchQuery, orderNumber string) (*domain.InventoryItem, error) {
	sku := q.StyleCode
	upper := strings.ToUpper(q.Platform)
	if sku == "" && q.PlatformProductID != "" {
		sku = fmt.Sprintf("%s-%s", upper, q.PlatformProductID)
	}
	if sku == "" {
		name := q.ProductName
		if len(name) > 20 {
			name = name[:20]
		}
		sku = fmt.Sprintf("%s-UNKNOWN-%s", upper, name)
	}

	product, err := s.resolver.GetOrCreateProduct(ctx, sku, q.ProductName, q.Brand)
	if err != nil {
		return nil, fmt.Errorf("placeholder product: %w", err)
	}

	sizeValue := q.SizeValue
	if sizeValue == "" {
		sizeValue = "One Size"
	}
	size, err := s.resolver.GetOrCreateSize(ctx, product.CategoryID, sizeValue)
	if err != nil {
		return nil, fmt.Errorf("placeholder size: %w", err)
	}

	externalIDs := domain.JSONMap{
		"is_placeholder":     true,
		"created_from_order": orderNumber,
	}
	if q.ListingID != "" {
		externalIDs[externalIDKey(q.Platform, "listing_id")] = q.ListingID
	}
	if q.PlatformProductID != "" {
		externalIDs[externalIDKey(q.Platform, "product_id")] = q.PlatformProductID
	}

	item := &domain.InventoryItem{
		ID:          uuid.New().String(),
		ProductID:   product.ID,
		SizeID:      size.ID,
		Quantity:    1,
		Status:      domain.InventoryStatusInStock,
		ExternalIDs: externalIDs,
	}
	if err := s.inventory.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("placeholder item: %w", err)
	}

	logger.CtxInfo(ctx, "created placeholder inventory item %s for order %s", item.ID, orderNumber)
	return item, nil
}

// stringAt reads a trimmed string value from a record, tolerating the JSON
// round-trip types stored in processed data.
func stringAt(data domain.JSONMap, key string) string {
	v, ok := data[key]
	if !ok || v == nil {
		return ""
	}
	if s, isString := v.(string); isString {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(fmt.Sprintf("%v", v))
}

// decimalAt reads the first present decimal from the given keys. Stored
// records round-trip through JSON, so decimals may arrive as strings or
// floats.
func decimalAt(data domain.JSONMap, keys ...string) decimal.NullDecimal {
	for _, key := range keys {
		v, ok := data[key]
		if !ok || v == nil {
			continue
		}
		switch t := v.(type) {
		case decimal.Decimal:
			return decimal.NewNullDecimal(t)
		case float64:
			return decimal.NewNullDecimal(decimal.NewFromFloat(t))
		case string:
			if d, err := decimal.NewFromString(t); err == nil {
				return decimal.NewNullDecimal(d)
			}
		}
	}
	return decimal.NullDecimal{}
}

// timeAt reads a timestamp from a record, tolerating time.Time values and
// their JSON string form.
func timeAt(data domain.JSONMap, key string) time.Time {
	v, ok := data[key]
	if !ok || v == nil {
		return time.Time{}
	}
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse(time.RFC3339, t); err == nil {
			return parsed
		}
		if parsed, err := dateparse.ParseAny(t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
