package transform

import (
	"context"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestTransformDropsRecordsWithErrors(t *testing.T) {
	tr := NewTransformer()
	mappings := []FieldMapping{
		{SourceField: "name", TargetField: "product_name", Type: FieldTypeString, Required: true},
		{SourceField: "price", TargetField: "price", Type: FieldTypeDecimal},
	}

	records := []map[string]interface{}{
		{"name": "Dunk Low", "price": "115.50"},
		{"price": "90.00"}, // missing required name
		{"name": "Samba OG"},
	}

	result := tr.Transform(context.Background(), records, mappings, "test")
	if result.Processed != 3 {
		t.Errorf("Processed = %d, want 3", result.Processed)
	}
	if result.TransformedCount != 2 {
		t.Fatalf("TransformedCount = %d, want 2", result.TransformedCount)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("got %d errors, want 1: %v", len(result.Errors), result.Errors)
	}
	if !strings.HasPrefix(result.Errors[0], "Row 2:") {
		t.Errorf("error should reference row 2: %q", result.Errors[0])
	}
	if msgs := result.RowErrors[2]; len(msgs) != 1 || !strings.Contains(msgs[0], "name") {
		t.Errorf("RowErrors[2] = %v, want the missing-name message", msgs)
	}

	// Row provenance survives the drop of row 2.
	if result.Transformed[0]["_source_row"] != 1 {
		t.Errorf("_source_row = %v, want 1", result.Transformed[0]["_source_row"])
	}
	if result.Transformed[1]["_source_row"] != 3 {
		t.Errorf("_source_row = %v, want 3", result.Transformed[1]["_source_row"])
	}
	if _, ok := result.Transformed[0]["_transformed_at"].(time.Time); !ok {
		t.Error("_transformed_at should be a time.Time")
	}
}

func TestTransformAppliesDefaults(t *testing.T) {
	tr := NewTransformer()
	mappings := []FieldMapping{
		{SourceField: "name", TargetField: "name", Type: FieldTypeString, Required: true},
		{SourceField: "condition", TargetField: "condition", Type: FieldTypeString, Default: "new"},
	}

	result := tr.Transform(context.Background(), []map[string]interface{}{{"name": "Yeezy Slide"}}, mappings, "test")
	if result.TransformedCount != 1 {
		t.Fatalf("TransformedCount = %d, want 1", result.TransformedCount)
	}
	if result.Transformed[0]["condition"] != "new" {
		t.Errorf("condition = %v, want default \"new\"", result.Transformed[0]["condition"])
	}
}

func TestCoerce(t *testing.T) {
	tr := NewTransformer()

	testCases := []struct {
		name      string
		value     interface{}
		fieldType FieldType
		want      interface{}
		wantErr   bool
	}{
		{name: "string trims", value: "  Dunk Low  ", fieldType: FieldTypeString, want: "Dunk Low"},
		{name: "integer with commas", value: "1,250", fieldType: FieldTypeInteger, want: int64(1250)},
		{name: "integer from float string", value: "42.0", fieldType: FieldTypeInteger, want: int64(42)},
		{name: "integer garbage", value: "abc", fieldType: FieldTypeInteger, wantErr: true},
		{name: "boolean yes", value: "yes", fieldType: FieldTypeBoolean, want: true},
		{name: "boolean off", value: "off", fieldType: FieldTypeBoolean, want: false},
		{name: "boolean enabled", value: "Enabled", fieldType: FieldTypeBoolean, want: true},
		{name: "email lowercased", value: " Seller@Example.COM ", fieldType: FieldTypeEmail, want: "seller@example.com"},
		{name: "email invalid", value: "not-an-email", fieldType: FieldTypeEmail, wantErr: true},
		{name: "url gets scheme", value: "stockx.com/sneakers", fieldType: FieldTypeURL, want: "https://stockx.com/sneakers"},
		{name: "url keeps scheme", value: "http://example.com", fieldType: FieldTypeURL, want: "http://example.com"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tr.coerce(tc.value, tc.fieldType)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("coerce(%v, %s) expected error", tc.value, tc.fieldType)
				}
				return
			}
			if err != nil {
				t.Fatalf("coerce(%v, %s) error: %v", tc.value, tc.fieldType, err)
			}
			if got != tc.want {
				t.Errorf("coerce(%v, %s) = %v, want %v", tc.value, tc.fieldType, got, tc.want)
			}
		})
	}
}

func TestCoerceCurrency(t *testing.T) {
	tr := NewTransformer()

	testCases := []struct {
		name  string
		value interface{}
		want  string
	}{
		{name: "dollar symbol", value: "$1,234.56", want: "1234.56"},
		{name: "euro symbol", value: "€99.99", want: "99.99"},
		{name: "plain number string", value: "210.00", want: "210"},
		{name: "float", value: 115.5, want: "115.5"},
		{name: "trailing currency code", value: "205.50 EUR", want: "205.5"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tr.coerce(tc.value, FieldTypeCurrency)
			if err != nil {
				t.Fatalf("coerce(%v) error: %v", tc.value, err)
			}
			d, ok := got.(decimal.Decimal)
			if !ok {
				t.Fatalf("coerce(%v) = %T, want decimal", tc.value, got)
			}
			want, _ := decimal.NewFromString(tc.want)
			if !d.Equal(want) {
				t.Errorf("coerce(%v) = %s, want %s", tc.value, d, want)
			}
		})
	}
}

func TestPatternValidation(t *testing.T) {
	tr := NewTransformer()
	mappings := []FieldMapping{
		{
			SourceField: "sku",
			TargetField: "sku",
			Type:        FieldTypeString,
			Pattern:     regexp.MustCompile(`^[A-Z0-9-]+$`),
		},
	}

	result := tr.Transform(context.Background(), []map[string]interface{}{
		{"sku": "DH6927-111"},
		{"sku": "lower case sku"},
	}, mappings, "test")

	if result.TransformedCount != 1 {
		t.Errorf("TransformedCount = %d, want 1", result.TransformedCount)
	}
	if len(result.Errors) != 1 {
		t.Errorf("got %d errors, want 1: %v", len(result.Errors), result.Errors)
	}
}

func TestCustomFunc(t *testing.T) {
	tr := NewTransformer()
	mappings := []FieldMapping{
		{
			SourceField: "size",
			TargetField: "size",
			Type:        FieldTypeString,
			Func: func(v interface{}) (interface{}, error) {
				return strings.TrimPrefix(v.(string), "US "), nil
			},
		},
	}

	result := tr.Transform(context.Background(), []map[string]interface{}{{"size": "US 10"}}, mappings, "test")
	if result.Transformed[0]["size"] != "10" {
		t.Errorf("size = %v, want 10", result.Transformed[0]["size"])
	}
}
