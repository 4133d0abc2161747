package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Brand represents a canonical product brand.
type Brand struct {
	ID        string    `gorm:"type:text;primaryKey" json:"id"`
	Name      string    `gorm:"type:text;not null;uniqueIndex" json:"name"`
	Slug      string    `gorm:"type:text;uniqueIndex" json:"slug"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for Brand.
// Parameters: none.
// Returns:
//   - string: table name for GORM mapping.
func (Brand) TableName() string {
	return "brands"
}

// Category represents a canonical product category such as Footwear or Apparel.
type Category struct {
	ID        string    `gorm:"type:text;primaryKey" json:"id"`
	Name      string    `gorm:"type:text;not null;uniqueIndex" json:"name"`
	Slug      string    `gorm:"type:text;uniqueIndex" json:"slug"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for Category.
// Parameters: none.
// Returns:
//   - string: table name for GORM mapping.
func (Category) TableName() string {
	return "categories"
}

// Size represents a normalized size value within a category, e.g. "US 9".
type Size struct {
	ID         string    `gorm:"type:text;primaryKey" json:"id"`
	CategoryID string    `gorm:"type:text;index:idx_sizes_value,unique" json:"category_id"`
	Value      string    `gorm:"type:text;not null;index:idx_sizes_value,unique" json:"value"`
	Region     string    `gorm:"type:text;default:US" json:"region"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName returns the database table name for Size.
// Parameters: none.
// Returns:
//   - string: table name for GORM mapping.
func (Size) TableName() string {
	return "sizes"
}

// Product represents a canonical catalog product.
// SKU is the manufacturer style code; PlatformProductID is the marketplace
// catalog identifier when known. Either may be empty, but products are
// deduplicated on whichever natural key is available.
type Product struct {
	ID                string    `gorm:"type:text;primaryKey" json:"id"`
	SKU               string    `gorm:"type:text;index" json:"sku,omitempty"`
	Name              string    `gorm:"type:text;not null;index" json:"name"`
	BrandID           string    `gorm:"type:text;index" json:"brand_id,omitempty"`
	CategoryID        string    `gorm:"type:text;index" json:"category_id,omitempty"`
	PlatformProductID string    `gorm:"type:text;index" json:"platform_product_id,omitempty"`
	Description       string    `gorm:"type:text" json:"description,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// TableName returns the database table name for Product.
// Parameters: none.
// Returns:
//   - string: table name for GORM mapping.
func (Product) TableName() string {
	return "products"
}

// InventoryStatus represents the stock state of an inventory item.
type InventoryStatus string

const (
	InventoryStatusInStock InventoryStatus = "in_stock"
	InventoryStatusListed  InventoryStatus = "listed"
	InventoryStatusSold    InventoryStatus = "sold"
)

// InventoryItem represents one physical unit (or lot) of a product in a size.
// ExternalIDs carries marketplace references such as the listing ID and, for
// placeholder items, the originating order number and a placeholder flag.
type InventoryItem struct {
	ID            string              `gorm:"type:text;primaryKey" json:"id"`
	ProductID     string              `gorm:"type:text;not null;index" json:"product_id"`
	SizeID        string              `gorm:"type:text;index" json:"size_id,omitempty"`
	Quantity      int                 `gorm:"default:1" json:"quantity"`
	Status        InventoryStatus     `gorm:"type:text;index;default:in_stock" json:"status"`
	PurchasePrice decimal.NullDecimal `gorm:"type:numeric" json:"purchase_price,omitempty"`
	PurchaseDate  *time.Time          `json:"purchase_date,omitempty"`
	Supplier      string              `gorm:"type:text" json:"supplier,omitempty"`
	Location      string              `gorm:"type:text" json:"location,omitempty"`
	Notes         string              `gorm:"type:text" json:"notes,omitempty"`
	ExternalIDs   JSONMap             `gorm:"type:text" json:"external_ids,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// TableName returns the database table name for InventoryItem.
// Parameters: none.
// Returns:
//   - string: table name for GORM mapping.
func (InventoryItem) TableName() string {
	return "inventory_items"
}

// IsPlaceholder reports whether the item was auto-created for an order that
// could not be matched to existing inventory.
func (i *InventoryItem) IsPlaceholder() bool {
	if i.ExternalIDs == nil {
		return false
	}
	v, ok := i.ExternalIDs["is_placeholder"].(bool)
	return ok && v
}

// Platform represents a sales channel such as StockX, Alias, or eBay.
type Platform struct {
	ID            string          `gorm:"type:text;primaryKey" json:"id"`
	Name          string          `gorm:"type:text;not null" json:"name"`
	Slug          string          `gorm:"type:text;not null;uniqueIndex" json:"slug"`
	FeePercentage decimal.Decimal `gorm:"type:numeric" json:"fee_percentage"`
	SupportsFees  bool            `gorm:"default:true" json:"supports_fees"`
	Active        bool            `gorm:"default:true" json:"active"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// TableName returns the database table name for Platform.
// Parameters: none.
// Returns:
//   - string: table name for GORM mapping.
func (Platform) TableName() string {
	return "platforms"
}

// Order represents a completed sale of an inventory item on a platform.
// ExternalID is the deduplication key, "<platform>_<order number>" for
// file imports or the marketplace order number for API feeds.
type Order struct {
	ID                      string              `gorm:"type:text;primaryKey" json:"id"`
	InventoryItemID         string              `gorm:"type:text;not null;index" json:"inventory_item_id"`
	PlatformID              string              `gorm:"type:text;not null;index" json:"platform_id"`
	ExternalID              string              `gorm:"type:text;uniqueIndex" json:"external_id"`
	OrderNumber             string              `gorm:"type:text;index" json:"order_number"`
	GrossSale               decimal.Decimal     `gorm:"type:numeric" json:"gross_sale"`
	PlatformFee             decimal.Decimal     `gorm:"type:numeric" json:"platform_fee"`
	ShippingCost            decimal.Decimal     `gorm:"type:numeric" json:"shipping_cost"`
	NetProfit               decimal.NullDecimal `gorm:"type:numeric" json:"net_profit,omitempty"`
	SoldAt                  time.Time           `json:"sold_at"`
	Status                  string              `gorm:"type:text;default:completed" json:"status"`
	BuyerDestinationCountry string              `gorm:"type:text" json:"buyer_destination_country,omitempty"`
	BuyerDestinationCity    string              `gorm:"type:text" json:"buyer_destination_city,omitempty"`
	Notes                   string              `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt               time.Time           `json:"created_at"`
	UpdatedAt               time.Time           `json:"updated_at"`
}

// TableName returns the database table name for Order.
// Parameters: none.
// Returns:
//   - string: table name for GORM mapping.
func (Order) TableName() string {
	return "orders"
}
