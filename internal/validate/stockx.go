package validate

import (
	"time"

	"github.com/shopspring/decimal"
)

// stockxDateLayouts covers the UTC timestamp format StockX exports use,
// plus the older US-style variants seen in historic files.
var stockxDateLayouts = []string{
	"2006-01-02 15:04:05 -0700",
	"2006-01-02 15:04:05",
	"01/02/2006 15:04:05",
	"01/02/2006",
}

// StockXValidator validates StockX sales export rows.
type StockXValidator struct {
	brands BrandExtractor
}

// NewStockXValidator builds a validator for StockX exports.
func NewStockXValidator(brands BrandExtractor) Validator {
	return batchValidator{&StockXValidator{brands: brands}}
}

func (v *StockXValidator) requiredFields() []string {
	return []string{"Order Number", "Sale Date", "Item", "Listing Price"}
}

func (v *StockXValidator) normalizeRecord(record map[string]interface{}) (map[string]interface{}, error) {
	normalized := map[string]interface{}{}

	normalized["order_number"] = Stringify(record["Order Number"])
	normalized["item_name"] = Stringify(record["Item"])

	// "Style" carries the manufacturer style code in StockX exports; older
	// files used a plain "SKU" column.
	sku := Stringify(record["Style"])
	if sku == "" {
		sku = Stringify(record["SKU"])
	}
	normalized["sku"] = sku

	size := record["Sku Size"]
	if IsBlank(size) {
		size = record["Size"]
	}
	normalized["size"] = NormalizeSize(size)

	saleDate, err := ParseDate(record["Sale Date"], stockxDateLayouts...)
	if err != nil {
		return nil, err
	}
	normalized["sale_date"] = saleDate

	listingPrice, err := putCurrency(normalized, "listing_price", record["Listing Price"])
	if err != nil {
		return nil, err
	}
	sellerFee, err := putCurrency(normalized, "seller_fee", record["Seller Fee"])
	if err != nil {
		return nil, err
	}
	paymentProcessing, err := putCurrency(normalized, "payment_processing", record["Payment Processing"])
	if err != nil {
		return nil, err
	}
	shippingFee, err := putCurrency(normalized, "shipping_fee", record["Shipping Fee"])
	if err != nil {
		return nil, err
	}
	if _, err := putCurrency(normalized, "total_payout", record["Total Payout"]); err != nil {
		return nil, err
	}

	if listingPrice.Valid && sellerFee.Valid && paymentProcessing.Valid && shippingFee.Valid {
		normalized["net_profit"] = listingPrice.Decimal.
			Sub(sellerFee.Decimal).
			Sub(paymentProcessing.Decimal).
			Sub(shippingFee.Decimal)
	}

	// StockX exports carry no brand column.
	if brand, ok := v.brands.BrandFromName(Stringify(record["Item"])); ok {
		normalized["brand"] = brand
	} else {
		normalized["brand"] = nil
	}

	normalized["seller_name"] = Stringify(record["Seller Name"])
	normalized["buyer_country"] = Stringify(record["Buyer Country"])
	normalized["buyer_destination_country"] = Stringify(record["Buyer Destination Country"])
	normalized["buyer_destination_city"] = Stringify(record["Buyer Destination City"])
	normalized["invoice_number"] = Stringify(record["Invoice Number"])

	normalized["source"] = "stockx"
	normalized["imported_at"] = time.Now()

	return normalized, nil
}

// putCurrency parses a currency field into the normalized map, storing a
// plain Decimal when present and nil otherwise.
func putCurrency(normalized map[string]interface{}, key string, value interface{}) (decimal.NullDecimal, error) {
	d, err := ParseCurrency(value)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	if d.Valid {
		normalized[key] = d.Decimal
	} else {
		normalized[key] = nil
	}
	return d, nil
}
