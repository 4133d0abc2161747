package domain

import "strings"

// SourceType identifies the external system an import originated from.
// Values include SourceTypeStockX, SourceTypeAlias, SourceTypeNotion,
// SourceTypeSales, and SourceTypeManual.
type SourceType string

const (
	SourceTypeStockX SourceType = "stockx"
	SourceTypeAlias  SourceType = "alias"
	SourceTypeNotion SourceType = "notion"
	SourceTypeSales  SourceType = "sales"
	SourceTypeManual SourceType = "manual"
)

// ParseSourceType normalizes a free-form source label to a SourceType.
// Parameters:
//   - label: source label as received from the caller.
// Returns:
//   - SourceType: matching source type, or SourceTypeManual for unknown labels.
//   - bool: true when the label matched a known source type.
func ParseSourceType(label string) (SourceType, bool) {
	switch SourceType(strings.ToLower(strings.TrimSpace(label))) {
	case SourceTypeStockX:
		return SourceTypeStockX, true
	case SourceTypeAlias:
		return SourceTypeAlias, true
	case SourceTypeNotion:
		return SourceTypeNotion, true
	case SourceTypeSales:
		return SourceTypeSales, true
	case SourceTypeManual:
		return SourceTypeManual, true
	}
	return SourceTypeManual, false
}
