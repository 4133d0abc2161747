package stockx

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"

	"github.com/fkoehler/kickflow/internal/source"
)

const (
	SourceID   = "stockx"
	SourceName = "StockX"

	defaultBaseURL  = "https://api.stockx.com"
	defaultPageSize = 100
)

// Config holds configuration for the StockX order feed.
type Config struct {
	BaseURL  string
	APIKey   string
	PageSize int
}

// Client implements the Source interface against the StockX selling API.
type Client struct {
	client   *resty.Client
	pageSize int
}

// NewClient creates a new StockX feed client.
// Parameters:
//   - cfg: feed configuration; zero values fall back to defaults.
// Returns:
//   - *Client: client authenticated with the configured API key.
func NewClient(cfg *Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetHeader("Authorization", "Bearer "+cfg.APIKey)
	client.SetHeader("Content-Type", "application/json")
	client.SetTimeout(30 * time.Second)

	return &Client{
		client:   client,
		pageSize: pageSize,
	}
}

// GetSourceID returns the unique identifier for this source
func (c *Client) GetSourceID() string {
	return SourceID
}

// GetDisplayName returns a human-readable name for this source
func (c *Client) GetDisplayName() string {
	return SourceName
}

// SupportsIncremental returns true if this source supports incremental updates
func (c *Client) SupportsIncremental() bool {
	return true
}

// StockX order history API structures
type historyResponse struct {
	Count       int            `json:"count"`
	PageNumber  int            `json:"pageNumber"`
	PageSize    int            `json:"pageSize"`
	HasNextPage bool           `json:"hasNextPage"`
	Orders      []orderPayload `json:"orders"`
	Message     string         `json:"message,omitempty"`
}

type orderPayload struct {
	OrderNumber  string `json:"orderNumber"`
	ListingID    string `json:"listingId"`
	Amount       string `json:"amount"`
	CurrencyCode string `json:"currencyCode"`
	CreatedAt    string `json:"createdAt"`
	Product      struct {
		ProductID   string `json:"productId"`
		ProductName string `json:"productName"`
		StyleID     string `json:"styleId"`
		Brand       string `json:"brand"`
	} `json:"product"`
	Variant struct {
		VariantID    string `json:"variantId"`
		VariantName  string `json:"variantName"`
		VariantValue string `json:"variantValue"`
	} `json:"variant"`
	Payout struct {
		TotalPayout string `json:"totalPayout"`
	} `json:"payout"`
	Shipment struct {
		DestinationCountry string `json:"destinationCountry"`
		DestinationCity    string `json:"destinationCity"`
	} `json:"shipment"`
}

// FetchBatch fetches one page of completed orders. The cursor is the page
// number; an empty cursor starts at page 1.
func (c *Client) FetchBatch(ctx context.Context, cursor string, limit int) ([]source.OrderItem, string, error) {
	page := 1
	if cursor != "" {
		var err error
		page, err = strconv.Atoi(cursor)
		if err != nil {
			return nil, "", fmt.Errorf("invalid cursor: %w", err)
		}
	}

	pageSize := c.pageSize
	if limit > 0 && limit < pageSize {
		pageSize = limit
	}

	var result historyResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"pageNumber":  strconv.Itoa(page),
			"pageSize":    strconv.Itoa(pageSize),
			"orderStatus": "COMPLETED",
		}).
		SetResult(&result).
		Get("/v2/selling/orders/history")
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch order history: %w", err)
	}
	if resp.IsError() {
		return nil, "", fmt.Errorf("order history request failed with status %d: %s", resp.StatusCode(), result.Message)
	}

	items := make([]source.OrderItem, 0, len(result.Orders))
	for _, order := range result.Orders {
		item, err := toOrderItem(order)
		if err != nil {
			return nil, "", fmt.Errorf("order %s: %w", order.OrderNumber, err)
		}
		items = append(items, item)
	}

	nextCursor := ""
	if result.HasNextPage {
		nextCursor = strconv.Itoa(page + 1)
	}

	return items, nextCursor, nil
}

func toOrderItem(order orderPayload) (source.OrderItem, error) {
	amount, err := decimal.NewFromString(order.Amount)
	if err != nil {
		return source.OrderItem{}, fmt.Errorf("invalid amount %q", order.Amount)
	}

	var payout decimal.NullDecimal
	if order.Payout.TotalPayout != "" {
		d, err := decimal.NewFromString(order.Payout.TotalPayout)
		if err != nil {
			return source.OrderItem{}, fmt.Errorf("invalid payout %q", order.Payout.TotalPayout)
		}
		payout = decimal.NewNullDecimal(d)
	}

	var soldAt time.Time
	if order.CreatedAt != "" {
		soldAt, err = time.Parse(time.RFC3339, order.CreatedAt)
		if err != nil {
			return source.OrderItem{}, fmt.Errorf("invalid createdAt %q", order.CreatedAt)
		}
	}

	return source.OrderItem{
		OrderNumber:        order.OrderNumber,
		ListingID:          order.ListingID,
		ProductID:          order.Product.ProductID,
		ProductName:        order.Product.ProductName,
		StyleCode:          order.Product.StyleID,
		SizeValue:          order.Variant.VariantValue,
		Brand:              order.Product.Brand,
		GrossAmount:        amount,
		Payout:             payout,
		Currency:           order.CurrencyCode,
		SoldAt:             soldAt,
		DestinationCountry: order.Shipment.DestinationCountry,
		DestinationCity:    order.Shipment.DestinationCity,
	}, nil
}
