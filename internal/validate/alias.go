package validate

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// aliasDateLayouts covers the day-first formats Alias exports use.
var aliasDateLayouts = []string{
	"02/01/06",
	"02/01/2006",
	"02.01.06",
	"02.01.2006",
}

// AliasValidator validates Alias (GOAT's selling platform) export rows.
type AliasValidator struct {
	brands BrandExtractor
}

// NewAliasValidator builds a validator for Alias exports.
func NewAliasValidator(brands BrandExtractor) Validator {
	return batchValidator{&AliasValidator{brands: brands}}
}

func (v *AliasValidator) requiredFields() []string {
	return []string{"ORDER_NUMBER", "NAME", "PRODUCT_PRICE_CENTS_SALE_PRICE", "CREDIT_DATE"}
}

func (v *AliasValidator) normalizeRecord(record map[string]interface{}) (map[string]interface{}, error) {
	normalized := map[string]interface{}{}

	normalized["order_number"] = Stringify(record["ORDER_NUMBER"])
	normalized["item_name"] = Stringify(record["NAME"])
	normalized["sku"] = Stringify(record["SKU"])
	normalized["size"] = NormalizeSize(record["SIZE"])
	normalized["supplier"] = Stringify(record["USERNAME"])

	// Alias exports carry no brand column.
	if brand, ok := v.brands.BrandFromName(Stringify(record["NAME"])); ok {
		normalized["brand"] = brand
	} else {
		normalized["brand"] = nil
	}

	saleDate, err := ParseDate(record["CREDIT_DATE"], aliasDateLayouts...)
	if err != nil {
		return nil, err
	}
	normalized["sale_date"] = saleDate

	purchaseDate, err := ParseDate(record["PURCHASED_DATE"], aliasDateLayouts...)
	if err != nil {
		return nil, err
	}
	if purchaseDate.IsZero() {
		normalized["purchase_date"] = nil
	} else {
		normalized["purchase_date"] = purchaseDate
	}

	// Despite the column name, PRODUCT_PRICE_CENTS_SALE_PRICE holds the
	// full unit amount in USD. Never divide by 100.
	rawPrice := record["PRODUCT_PRICE_CENTS_SALE_PRICE"]
	salePrice, err := decimal.NewFromString(Stringify(rawPrice))
	if err != nil {
		return nil, &RecordError{Errors: []string{fmt.Sprintf("Invalid price format: %v", rawPrice)}}
	}
	normalized["sale_price"] = salePrice

	// Alias provides no fee breakdown.
	normalized["platform_fee"] = nil
	normalized["shipping_fee"] = nil
	normalized["net_profit"] = salePrice

	normalized["platform"] = "alias"
	normalized["source_type"] = "alias"
	normalized["external_id"] = "alias_" + Stringify(record["ORDER_NUMBER"])
	normalized["status"] = "completed"

	// Alias listings reuse catalog names from StockX, so product matching
	// should prefer name lookups for these rows.
	normalized["_requires_stockx_name_priority"] = true

	return normalized, nil
}
