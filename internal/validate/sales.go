package validate

import (
	"strings"
	"time"
)

// salesDateLayouts prefers the German long form used in manual sheets,
// then numeric day-first and ISO.
var salesDateLayouts = []string{
	"02. January 2006",
	"02.01.2006",
	"2006-01-02",
}

// SalesValidator validates rows from the manually maintained sales sheet.
type SalesValidator struct {
	brands BrandExtractor
}

// NewSalesValidator builds a validator for the manual sales sheet.
func NewSalesValidator(brands BrandExtractor) Validator {
	return batchValidator{&SalesValidator{brands: brands}}
}

func (v *SalesValidator) requiredFields() []string {
	return []string{"SKU", "Sale Date", "Status"}
}

func (v *SalesValidator) normalizeRecord(record map[string]interface{}) (map[string]interface{}, error) {
	normalized := map[string]interface{}{}

	normalized["sku"] = Stringify(record["SKU"])
	normalized["status"] = strings.ToLower(Stringify(record["Status"]))

	saleDate, err := ParseDate(record["Sale Date"], salesDateLayouts...)
	if err != nil {
		// The sheet is hand-edited, so retry with the default layout chain.
		saleDate, err = ParseDate(record["Sale Date"])
		if err != nil {
			return nil, err
		}
	}
	normalized["sale_date"] = saleDate

	if _, err := putCurrency(normalized, "gross_buy", record["Gross Buy"]); err != nil {
		return nil, err
	}
	netBuy, err := putCurrency(normalized, "net_buy", record["Net Buy"])
	if err != nil {
		return nil, err
	}
	if _, err := putCurrency(normalized, "gross_sale", record["Gross Sale"]); err != nil {
		return nil, err
	}
	netSale, err := putCurrency(normalized, "net_sale", record["Net Sale"])
	if err != nil {
		return nil, err
	}

	if netSale.Valid && netBuy.Valid {
		normalized["profit"] = netSale.Decimal.Sub(netBuy.Decimal)
	}

	// Prefer the explicit Brand column, fall back to name extraction.
	brand := Stringify(record["Brand"])
	if brand == "" {
		if name := Stringify(record["Product Name"]); name != "" {
			if extracted, ok := v.brands.BrandFromName(name); ok {
				brand = extracted
			}
		}
	}
	if brand == "" {
		normalized["brand"] = nil
	} else {
		normalized["brand"] = brand
	}

	platform := Stringify(record["Platform"])
	if platform == "" {
		platform = "Manual"
	}
	normalized["platform"] = platform

	normalized["source"] = "sales"
	normalized["imported_at"] = time.Now()

	return normalized, nil
}
