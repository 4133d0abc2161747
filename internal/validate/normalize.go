package validate

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/shopspring/decimal"
)

var currencySymbols = regexp.MustCompile(`[€$£¥\s]`)

// blankSentinels are string values that mean "no value" in marketplace
// exports (pandas artifacts included).
var blankSentinels = map[string]bool{
	"": true, "nan": true, "inf": true, "-inf": true,
	"none": true, "null": true, "n/a": true, "na": true,
}

// Stringify renders an arbitrary parsed value as a trimmed string.
// Floats are rendered without a trailing ".0" mantissa when integral,
// matching how spreadsheet tools print whole numbers.
func Stringify(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return ""
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return Stringify(float64(v))
	case time.Time:
		return v.Format(time.RFC3339)
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", v))
	}
}

// IsBlank reports whether a parsed value carries no usable content.
func IsBlank(value interface{}) bool {
	return blankSentinels[strings.ToLower(Stringify(value))]
}

// ParseCurrency normalizes a currency value from its many string forms.
// The decimal separator role is inferred by comparing the positions of the
// last comma and last dot: "1.234,56" and "1,234.56" both parse to 1234.56.
// Empty or NaN-like input yields an invalid NullDecimal and no error; truly
// unparseable input is an error.
func ParseCurrency(value interface{}) (decimal.NullDecimal, error) {
	switch v := value.(type) {
	case decimal.Decimal:
		return decimal.NewNullDecimal(v), nil
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return decimal.NullDecimal{}, nil
		}
		return decimal.NewNullDecimal(decimal.NewFromFloat(v)), nil
	case int:
		return decimal.NewNullDecimal(decimal.NewFromInt(int64(v))), nil
	case int64:
		return decimal.NewNullDecimal(decimal.NewFromInt(v)), nil
	}

	s := Stringify(value)
	if blankSentinels[strings.ToLower(s)] {
		return decimal.NullDecimal{}, nil
	}

	cleaned := currencySymbols.ReplaceAllString(s, "")

	lastDot := strings.LastIndex(cleaned, ".")
	lastComma := strings.LastIndex(cleaned, ",")
	switch {
	case lastComma > lastDot:
		// "1.234,56": dots are thousands separators, comma is decimal.
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	case lastDot > lastComma:
		// "1,234.56": commas are thousands separators.
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	default:
		// No separator, or a single type: "1234,56" or "1234.56".
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.NullDecimal{}, &RecordError{Errors: []string{fmt.Sprintf("Invalid currency format: %v", value)}}
	}
	return decimal.NewNullDecimal(d), nil
}

// germanMonths maps German month names to English so the general-purpose
// date parser can handle locale-mixed exports.
var germanMonths = map[string]string{
	"Januar": "January", "Februar": "February", "März": "March",
	"Mai": "May", "Juni": "June", "Juli": "July",
	"Oktober": "October", "Dezember": "December",
}

// defaultDateLayouts is the explicit-layout fallback chain tried after the
// general-purpose parser.
var defaultDateLayouts = []string{
	"2006-01-02 15:04:05 -0700",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02.01.2006",
	"02/01/2006",
	"01/02/2006",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05Z",
	"02. January 2006",
}

// ParseDate normalizes a date value. It patches known marketplace quirks
// (German month names, the truncated " +00" UTC suffix in StockX exports),
// tries a general-purpose parser first, then the given layouts (or the
// default chain). Empty input yields the zero time and no error;
// unparseable input is an error.
func ParseDate(value interface{}, layouts ...string) (time.Time, error) {
	if t, ok := value.(time.Time); ok {
		return t, nil
	}

	s := Stringify(value)
	if s == "" {
		return time.Time{}, nil
	}

	for de, en := range germanMonths {
		s = strings.ReplaceAll(s, de, en)
	}
	// StockX export timestamps end in a truncated offset: "... +00".
	if strings.HasSuffix(s, " +00") {
		s = strings.TrimSuffix(s, " +00") + " +0000"
	}

	if t, err := dateparse.ParseAny(s); err == nil {
		return t, nil
	}

	if len(layouts) == 0 {
		layouts = defaultDateLayouts
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, &RecordError{Errors: []string{fmt.Sprintf("Invalid date format: %v", value)}}
}

var numericSize = regexp.MustCompile(`^\d+\.?\d*$`)

// NormalizeSize normalizes a marketplace size value. Bare numeric shoe sizes
// get the US region tag ("9" -> "US 9"), clothing-style sizes above the shoe
// range become "Size n", and missing/NaN values collapse to the "One Size"
// sentinel.
func NormalizeSize(value interface{}) string {
	s := strings.ToUpper(Stringify(value))
	if blankSentinels[strings.ToLower(s)] {
		return "One Size"
	}
	if numericSize.MatchString(s) {
		if n, err := strconv.ParseFloat(s, 64); err == nil && n > 50 {
			return "Size " + s
		}
		return "US " + s
	}
	return s
}
