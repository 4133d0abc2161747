package transform

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fkoehler/kickflow/internal/domain"
	"github.com/fkoehler/kickflow/internal/logger"
)

// SourceTransformer turns validated records from one source into
// database-ready records.
type SourceTransformer interface {
	Transform(ctx context.Context, records []map[string]interface{}) *Result
}

// ForSource returns the transformer for a source type. Unknown sources get
// the generic pass-through transformer.
func ForSource(source domain.SourceType) SourceTransformer {
	switch source {
	case domain.SourceTypeStockX:
		return &StockXTransformer{base: NewTransformer()}
	case domain.SourceTypeAlias:
		return &AliasTransformer{base: NewTransformer()}
	case domain.SourceTypeNotion:
		return &NotionTransformer{base: NewTransformer()}
	default:
		return &GenericTransformer{label: string(source)}
	}
}

// GenericTransformer passes records through with provenance metadata only.
type GenericTransformer struct {
	label string
}

// Transform copies every record unchanged and adds the provenance fields.
func (t *GenericTransformer) Transform(ctx context.Context, records []map[string]interface{}) *Result {
	logger.With(logger.Fields{
		logger.FieldSource: t.label,
		logger.FieldCount:  len(records),
	}).Info(ctx, "passing records through without mappings")

	result := &Result{Processed: len(records)}
	for idx, record := range records {
		transformed := make(map[string]interface{}, len(record)+2)
		for k, v := range record {
			transformed[k] = v
		}
		transformed["_source_row"] = idx + 1
		transformed["_transformed_at"] = time.Now().UTC()
		result.Transformed = append(result.Transformed, transformed)
	}
	result.TransformedCount = len(result.Transformed)
	return result
}

// StockXTransformer maps validated StockX records to the sale schema.
type StockXTransformer struct {
	base *Transformer
}

// StockXMappings returns the field mappings for validated StockX records.
func StockXMappings() []FieldMapping {
	return []FieldMapping{
		{SourceField: "item_name", TargetField: "product_name", Type: FieldTypeString, Required: true},
		{SourceField: "sku", TargetField: "sku", Type: FieldTypeString},
		{SourceField: "size", TargetField: "size", Type: FieldTypeString},
		{SourceField: "brand", TargetField: "brand", Type: FieldTypeString},
		{SourceField: "order_number", TargetField: "order_number", Type: FieldTypeString, Required: true},
		{SourceField: "sale_date", TargetField: "sale_date", Type: FieldTypeDateTime, Required: true},
		{SourceField: "listing_price", TargetField: "listing_price", Type: FieldTypeDecimal, Required: true},
		{SourceField: "seller_fee", TargetField: "seller_fee", Type: FieldTypeDecimal},
		{SourceField: "payment_processing", TargetField: "payment_processing", Type: FieldTypeDecimal},
		{SourceField: "shipping_fee", TargetField: "shipping_fee", Type: FieldTypeDecimal},
		{SourceField: "total_payout", TargetField: "payout_amount", Type: FieldTypeDecimal},
		{SourceField: "net_profit", TargetField: "net_profit", Type: FieldTypeDecimal},
		{SourceField: "buyer_destination_country", TargetField: "buyer_destination_country", Type: FieldTypeString},
		{SourceField: "buyer_destination_city", TargetField: "buyer_destination_city", Type: FieldTypeString},
	}
}

func (t *StockXTransformer) Transform(ctx context.Context, records []map[string]interface{}) *Result {
	result := t.base.Transform(ctx, records, StockXMappings(), "stockx")

	for _, record := range result.Transformed {
		record["source_platform"] = "stockx"
		record["import_type"] = "historical_sales"
		if orderNumber, ok := record["order_number"].(string); ok && orderNumber != "" {
			record["external_transaction_id"] = "stockx_" + orderNumber
		}
	}

	return result
}

// AliasTransformer maps validated Alias records to the sale schema and
// flags them for catalog-name matching.
type AliasTransformer struct {
	base *Transformer
}

// AliasMappings returns the field mappings for validated Alias records.
func AliasMappings() []FieldMapping {
	return []FieldMapping{
		{SourceField: "item_name", TargetField: "product_name", Type: FieldTypeString, Required: true},
		{SourceField: "brand", TargetField: "brand", Type: FieldTypeString},
		{SourceField: "sku", TargetField: "sku", Type: FieldTypeString},
		{SourceField: "size", TargetField: "size", Type: FieldTypeString},
		{SourceField: "supplier", TargetField: "supplier", Type: FieldTypeString},
		{SourceField: "order_number", TargetField: "order_number", Type: FieldTypeString, Required: true},
		{SourceField: "sale_date", TargetField: "sale_date", Type: FieldTypeDateTime, Required: true},
		{SourceField: "sale_price", TargetField: "sale_price", Type: FieldTypeDecimal, Required: true},
	}
}

func (t *AliasTransformer) Transform(ctx context.Context, records []map[string]interface{}) *Result {
	result := t.base.Transform(ctx, records, AliasMappings(), "alias")

	// Carry the name-priority flag across since mapped fields are the only
	// ones the base transformer keeps.
	for _, record := range result.Transformed {
		record["source_platform"] = "alias"
		record["import_type"] = "completed_sales"

		srcRow, _ := record["_source_row"].(int)
		if srcRow >= 1 && srcRow <= len(records) {
			if flag, ok := records[srcRow-1]["_requires_stockx_name_priority"].(bool); ok && flag {
				record["requires_name_matching"] = true
			}
		}

		if orderNumber, ok := record["order_number"].(string); ok && orderNumber != "" {
			record["external_transaction_id"] = "alias_" + orderNumber
		}
	}

	return result
}

// NotionTransformer flattens Notion's nested property payloads. Mappings
// cannot express the per-property type dispatch, so it overrides the whole
// pass.
type NotionTransformer struct {
	base *Transformer
}

func (t *NotionTransformer) Transform(ctx context.Context, records []map[string]interface{}) *Result {
	log := logger.With(logger.Fields{
		logger.FieldSource: "notion",
		logger.FieldCount:  len(records),
	})
	log.Info(ctx, "transforming notion records")

	result := &Result{Processed: len(records)}

	for idx, record := range records {
		transformed, err := t.transformRecord(record, idx)
		if err != nil {
			result.addRowErrors(idx+1, err.Error())
			continue
		}
		result.Transformed = append(result.Transformed, transformed)
	}

	result.TransformedCount = len(result.Transformed)
	return result
}

func (t *NotionTransformer) transformRecord(record map[string]interface{}, idx int) (map[string]interface{}, error) {
	transformed := map[string]interface{}{}

	if properties, ok := record["properties"].(map[string]interface{}); ok {
		for name, raw := range properties {
			prop, ok := raw.(map[string]interface{})
			if !ok {
				continue
			}
			key := strings.ReplaceAll(strings.ToLower(name), " ", "_")
			value, err := notionValue(t.base, prop)
			if err != nil {
				return nil, fmt.Errorf("property %q: %w", name, err)
			}
			if value != nil {
				transformed[key] = value
			}
		}
	}

	transformed["notion_id"] = record["id"]
	transformed["source_platform"] = "notion"
	transformed["_source_row"] = idx + 1
	transformed["_transformed_at"] = time.Now().UTC()

	return transformed, nil
}

// notionValue extracts the scalar behind one Notion property payload.
func notionValue(base *Transformer, prop map[string]interface{}) (interface{}, error) {
	propType, _ := prop["type"].(string)

	switch propType {
	case "title", "rich_text":
		fragments, _ := prop[propType].([]interface{})
		if len(fragments) == 0 {
			return nil, nil
		}
		fragment, _ := fragments[0].(map[string]interface{})
		text, _ := fragment["text"].(map[string]interface{})
		content, _ := text["content"].(string)
		return content, nil

	case "number":
		num, ok := prop["number"].(float64)
		if !ok {
			return nil, nil
		}
		return decimal.NewFromFloat(num), nil

	case "date":
		date, _ := prop["date"].(map[string]interface{})
		start, _ := date["start"].(string)
		if start == "" {
			return nil, nil
		}
		return base.parseDate(start)

	case "select":
		sel, _ := prop["select"].(map[string]interface{})
		name, _ := sel["name"].(string)
		if name == "" {
			return nil, nil
		}
		return name, nil
	}

	return nil, nil
}
