package source

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// OrderItem represents one completed sale fetched from a marketplace feed.
type OrderItem struct {
	OrderNumber        string
	ListingID          string // Marketplace listing ID, if the feed exposes one
	ProductID          string // Marketplace catalog product ID
	ProductName        string
	StyleCode          string // Manufacturer style code, e.g. "DV0982-100"
	SizeValue          string
	Brand              string
	GrossAmount        decimal.Decimal
	Payout             decimal.NullDecimal
	Currency           string
	SoldAt             time.Time
	DestinationCountry string
	DestinationCity    string
}

// Source defines the interface for marketplace order feeds.
type Source interface {
	// GetSourceID returns the unique identifier for this source.
	// Parameters: none.
	// Returns:
	//   - string: stable source identifier.
	GetSourceID() string

	// GetDisplayName returns a human-readable name for this source.
	// Parameters: none.
	// Returns:
	//   - string: display-friendly source name.
	GetDisplayName() string

	// FetchBatch fetches a batch of completed orders starting from the given cursor.
	// Parameters:
	//   - ctx: context for cancellation and deadlines.
	//   - cursor: pagination cursor or empty for first page.
	//   - limit: maximum number of orders to fetch.
	// Returns:
	//   - items: batch of completed orders.
	//   - nextCursor: cursor for the next batch or empty if done.
	//   - err: non-nil if fetching fails.
	FetchBatch(ctx context.Context, cursor string, limit int) (items []OrderItem, nextCursor string, err error)

	// SupportsIncremental returns true if this source supports incremental updates.
	// Parameters: none.
	// Returns:
	//   - bool: true when incremental updates are supported.
	SupportsIncremental() bool
}
