package validate

import (
	"time"

	"github.com/shopspring/decimal"
)

// NotionValidator validates records exported from the Notion inventory
// database. Property values arrive in Notion's nested API shape.
type NotionValidator struct{}

// NewNotionValidator builds a validator for Notion exports.
func NewNotionValidator() Validator {
	return batchValidator{&NotionValidator{}}
}

func (v *NotionValidator) requiredFields() []string {
	return []string{"id", "name"}
}

func (v *NotionValidator) normalizeRecord(record map[string]interface{}) (map[string]interface{}, error) {
	normalized := map[string]interface{}{}

	normalized["notion_page_id"] = Stringify(record["id"])
	normalized["notion_database_id"] = Stringify(record["database_id"])
	normalized["item_name"] = Stringify(record["name"])

	if properties, ok := record["properties"].(map[string]interface{}); ok {
		normalized["brand"] = textProperty(properties, "brand")
		normalized["size"] = textProperty(properties, "size")
		normalized["purchase_price"] = numberProperty(properties, "purchase_price")
		normalized["target_price"] = numberProperty(properties, "target_price")
		normalized["status"] = textProperty(properties, "status")
		normalized["stockx_order_number"] = textProperty(properties, "stockx_order")
		normalized["alias_order_number"] = textProperty(properties, "alias_order")
	}

	if edited, ok := record["last_edited_time"]; ok {
		lastEdited, err := ParseDate(edited, "2006-01-02T15:04:05.000Z")
		if err != nil {
			return nil, err
		}
		normalized["last_edited"] = lastEdited
	}

	normalized["source"] = "notion"
	normalized["imported_at"] = time.Now()

	return normalized, nil
}

// textProperty extracts a string from a Notion property, handling the
// rich_text, title and select shapes.
func textProperty(properties map[string]interface{}, name string) interface{} {
	prop, ok := properties[name].(map[string]interface{})
	if !ok {
		return nil
	}

	for _, key := range []string{"rich_text", "title"} {
		if fragments, ok := prop[key].([]interface{}); ok && len(fragments) > 0 {
			if fragment, ok := fragments[0].(map[string]interface{}); ok {
				if text, ok := fragment["text"].(map[string]interface{}); ok {
					if content, ok := text["content"].(string); ok {
						return content
					}
				}
			}
		}
	}

	if sel, ok := prop["select"].(map[string]interface{}); ok {
		if name, ok := sel["name"].(string); ok {
			return name
		}
	}

	return nil
}

// numberProperty extracts a decimal from a Notion number property.
func numberProperty(properties map[string]interface{}, name string) interface{} {
	prop, ok := properties[name].(map[string]interface{})
	if !ok {
		return nil
	}
	if num, ok := prop["number"].(float64); ok {
		return decimal.NewFromFloat(num)
	}
	return nil
}
