package parser

import (
	"testing"
)

func TestDetectFormat(t *testing.T) {
	testCases := []struct {
		name     string
		content  []byte
		filename string
		want     Format
	}{
		{
			name:     "csv extension wins over content",
			content:  []byte(`[{"a":1}]`),
			filename: "export.csv",
			want:     FormatCSV,
		},
		{
			name:     "xlsx extension",
			content:  []byte{0x50, 0x4B, 0x03, 0x04},
			filename: "ledger.XLSX",
			want:     FormatXLSX,
		},
		{
			name:    "json array content",
			content: []byte(`[{"Order Number":"1"}]`),
			want:    FormatJSON,
		},
		{
			name:    "json object with BOM",
			content: append([]byte{0xEF, 0xBB, 0xBF}, []byte(`{"results":[]}`)...),
			want:    FormatJSON,
		},
		{
			name:    "comma separated content",
			content: []byte("Order Number,Item,Listing Price\n1,Dunk Low,120.00\n"),
			want:    FormatCSV,
		},
		{
			name:    "single line without delimiter",
			content: []byte("just some text"),
			want:    FormatUnknown,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := DetectFormat(tc.content, tc.filename)
			if got != tc.want {
				t.Errorf("DetectFormat() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestParseCSV(t *testing.T) {
	content := []byte("Order Number,Item,Listing Price\n12345,Jordan 1 Retro High,220.00\n12346,Dunk Low Panda,115.50\n")

	result, err := Parse(content, Options{Filename: "sales.csv"})
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if result.Format != FormatCSV {
		t.Errorf("Format = %q, want %q", result.Format, FormatCSV)
	}
	if result.Encoding != "utf-8" {
		t.Errorf("Encoding = %q, want utf-8", result.Encoding)
	}
	if len(result.Records) != 2 {
		t.Fatalf("got %d records, want 2", len(result.Records))
	}
	if result.Records[0]["Order Number"] != "12345" {
		t.Errorf("Order Number = %v, want 12345", result.Records[0]["Order Number"])
	}
	if result.Records[1]["Item"] != "Dunk Low Panda" {
		t.Errorf("Item = %v, want Dunk Low Panda", result.Records[1]["Item"])
	}
}

func TestParseCSVSemicolonDelimiter(t *testing.T) {
	content := []byte("SKU;Sale Date;Status\nDV0982-100;02.01.2024;sold\n")

	result, err := Parse(content, Options{Filename: "verkauf.csv"})
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(result.Records) != 1 {
		t.Fatalf("got %d records, want 1", len(result.Records))
	}
	if result.Records[0]["SKU"] != "DV0982-100" {
		t.Errorf("SKU = %v, want DV0982-100", result.Records[0]["SKU"])
	}
}

func TestParseCSVWithBOM(t *testing.T) {
	content := append([]byte{0xEF, 0xBB, 0xBF}, []byte("Order Number,Item\n1,Yeezy Boost 350\n")...)

	result, err := Parse(content, Options{Filename: "export.csv"})
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if result.Encoding != "utf-8-sig" {
		t.Errorf("Encoding = %q, want utf-8-sig", result.Encoding)
	}
	if _, ok := result.Records[0]["Order Number"]; !ok {
		t.Errorf("BOM leaked into first header: %v", result.Records[0])
	}
}

func TestParseCSVLegacyEncoding(t *testing.T) {
	// "März" in ISO 8859-1: 0xE4 is invalid UTF-8.
	content := []byte("Item,Sale Date\nAir Max,02. M\xe4rz 2024\n")

	result, err := Parse(content, Options{Filename: "legacy.csv"})
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if result.Encoding != "latin-1" {
		t.Errorf("Encoding = %q, want latin-1", result.Encoding)
	}
	if result.Records[0]["Sale Date"] != "02. März 2024" {
		t.Errorf("Sale Date = %v, want 02. März 2024", result.Records[0]["Sale Date"])
	}
}

func TestParseCSVSkipsMalformedRows(t *testing.T) {
	content := []byte("A,B,C\n1,2,3\nonly-one-field\n4,5,6\n")

	result, err := Parse(content, Options{Filename: "rows.csv"})
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(result.Records) != 2 {
		t.Errorf("got %d records, want 2", len(result.Records))
	}
	if len(result.Warnings) == 0 {
		t.Error("expected a warning for the skipped row")
	}
}

func TestParseJSON(t *testing.T) {
	testCases := []struct {
		name    string
		content string
		opts    Options
		want    int
	}{
		{
			name:    "top level array",
			content: `[{"a":1},{"a":2}]`,
			want:    2,
		},
		{
			name:    "object with results field",
			content: `{"results":[{"a":1}],"count":1}`,
			want:    1,
		},
		{
			name:    "object with custom array field",
			content: `{"orders":[{"a":1},{"a":2},{"a":3}]}`,
			opts:    Options{ArrayField: "orders"},
			want:    3,
		},
		{
			name:    "bare object becomes single record",
			content: `{"Order Number":"1"}`,
			want:    1,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tc.opts.Format = FormatJSON
			result, err := Parse([]byte(tc.content), tc.opts)
			if err != nil {
				t.Fatalf("Parse() error: %v", err)
			}
			if len(result.Records) != tc.want {
				t.Errorf("got %d records, want %d", len(result.Records), tc.want)
			}
		})
	}
}

func TestParseJSONFlattensNested(t *testing.T) {
	content := []byte(`[{"product":{"productName":"Jordan 4","styleId":"DH6927-111"},"amount":210.0}]`)

	result, err := Parse(content, Options{Format: FormatJSON, FlattenNested: true})
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	record := result.Records[0]
	if record["product.productName"] != "Jordan 4" {
		t.Errorf("product.productName = %v, want Jordan 4", record["product.productName"])
	}
	if record["product.styleId"] != "DH6927-111" {
		t.Errorf("product.styleId = %v, want DH6927-111", record["product.styleId"])
	}
	if record["amount"] != 210.0 {
		t.Errorf("amount = %v, want 210.0", record["amount"])
	}
}

func TestParseInvalidJSON(t *testing.T) {
	_, err := Parse([]byte(`{"broken":`), Options{Format: FormatJSON})
	if err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestParseUnknownFormat(t *testing.T) {
	_, err := Parse([]byte("not a table"), Options{})
	if err == nil {
		t.Fatal("expected error for undetectable format")
	}
}
