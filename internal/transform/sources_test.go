package transform

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fkoehler/kickflow/internal/domain"
)

func TestForSource(t *testing.T) {
	testCases := []struct {
		name   string
		source domain.SourceType
		want   string
	}{
		{name: "stockx", source: domain.SourceTypeStockX, want: "*transform.StockXTransformer"},
		{name: "alias", source: domain.SourceTypeAlias, want: "*transform.AliasTransformer"},
		{name: "notion", source: domain.SourceTypeNotion, want: "*transform.NotionTransformer"},
		{name: "manual falls back to generic", source: domain.SourceTypeManual, want: "*transform.GenericTransformer"},
		{name: "sales falls back to generic", source: domain.SourceTypeSales, want: "*transform.GenericTransformer"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tr := ForSource(tc.source)
			if got := typeName(tr); got != tc.want {
				t.Errorf("ForSource(%q) = %s, want %s", tc.source, got, tc.want)
			}
		})
	}
}

func typeName(v interface{}) string {
	switch v.(type) {
	case *StockXTransformer:
		return "*transform.StockXTransformer"
	case *AliasTransformer:
		return "*transform.AliasTransformer"
	case *NotionTransformer:
		return "*transform.NotionTransformer"
	case *GenericTransformer:
		return "*transform.GenericTransformer"
	}
	return "unknown"
}

func TestStockXTransformer(t *testing.T) {
	price, _ := decimal.NewFromString("210.00")
	records := []map[string]interface{}{{
		"item_name":     "Jordan 4 Retro Military Black",
		"sku":           "DH6927-111",
		"size":          "US 10",
		"order_number":  "323352708",
		"sale_date":     time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC),
		"listing_price": price,
	}}

	result := ForSource(domain.SourceTypeStockX).Transform(context.Background(), records)
	if result.TransformedCount != 1 {
		t.Fatalf("TransformedCount = %d, want 1: %v", result.TransformedCount, result.Errors)
	}

	record := result.Transformed[0]
	if record["product_name"] != "Jordan 4 Retro Military Black" {
		t.Errorf("product_name = %v", record["product_name"])
	}
	if record["source_platform"] != "stockx" {
		t.Errorf("source_platform = %v, want stockx", record["source_platform"])
	}
	if record["import_type"] != "historical_sales" {
		t.Errorf("import_type = %v, want historical_sales", record["import_type"])
	}
	if record["external_transaction_id"] != "stockx_323352708" {
		t.Errorf("external_transaction_id = %v, want stockx_323352708", record["external_transaction_id"])
	}
}

func TestAliasTransformerCarriesNameMatchingFlag(t *testing.T) {
	price, _ := decimal.NewFromString("285.00")
	records := []map[string]interface{}{{
		"item_name":                      "Yeezy Boost 350 V2 Zebra",
		"order_number":                   "9957422",
		"sale_date":                      time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		"sale_price":                     price,
		"_requires_stockx_name_priority": true,
	}}

	result := ForSource(domain.SourceTypeAlias).Transform(context.Background(), records)
	if result.TransformedCount != 1 {
		t.Fatalf("TransformedCount = %d, want 1: %v", result.TransformedCount, result.Errors)
	}

	record := result.Transformed[0]
	if record["requires_name_matching"] != true {
		t.Error("name-matching flag should survive the mapping pass")
	}
	if record["external_transaction_id"] != "alias_9957422" {
		t.Errorf("external_transaction_id = %v, want alias_9957422", record["external_transaction_id"])
	}
	if record["import_type"] != "completed_sales" {
		t.Errorf("import_type = %v, want completed_sales", record["import_type"])
	}
}

func TestNotionTransformer(t *testing.T) {
	records := []map[string]interface{}{{
		"id": "page-123",
		"properties": map[string]interface{}{
			"Name": map[string]interface{}{
				"type": "title",
				"title": []interface{}{
					map[string]interface{}{
						"text": map[string]interface{}{"content": "Dunk Low Panda"},
					},
				},
			},
			"Purchase Price": map[string]interface{}{
				"type":   "number",
				"number": 95.0,
			},
			"Status": map[string]interface{}{
				"type":   "select",
				"select": map[string]interface{}{"name": "Listed"},
			},
		},
	}}

	result := ForSource(domain.SourceTypeNotion).Transform(context.Background(), records)
	if result.TransformedCount != 1 {
		t.Fatalf("TransformedCount = %d, want 1: %v", result.TransformedCount, result.Errors)
	}

	record := result.Transformed[0]
	if record["name"] != "Dunk Low Panda" {
		t.Errorf("name = %v, want Dunk Low Panda", record["name"])
	}
	if record["status"] != "Listed" {
		t.Errorf("status = %v, want Listed", record["status"])
	}
	if record["notion_id"] != "page-123" {
		t.Errorf("notion_id = %v, want page-123", record["notion_id"])
	}

	price, ok := record["purchase_price"].(decimal.Decimal)
	if !ok {
		t.Fatalf("purchase_price = %T, want decimal", record["purchase_price"])
	}
	want := decimal.NewFromInt(95)
	if !price.Equal(want) {
		t.Errorf("purchase_price = %s, want %s", price, want)
	}
}

func TestGenericTransformerKeepsAllFields(t *testing.T) {
	records := []map[string]interface{}{
		{"anything": "goes", "weird_column": 7.0},
	}

	result := ForSource(domain.SourceTypeManual).Transform(context.Background(), records)
	if result.TransformedCount != 1 {
		t.Fatalf("TransformedCount = %d, want 1", result.TransformedCount)
	}
	record := result.Transformed[0]
	if record["anything"] != "goes" {
		t.Errorf("anything = %v, want goes", record["anything"])
	}
	if record["weird_column"] != 7.0 {
		t.Errorf("weird_column = %v, want 7.0", record["weird_column"])
	}
	if record["_source_row"] != 1 {
		t.Errorf("_source_row = %v, want 1", record["_source_row"])
	}
}
