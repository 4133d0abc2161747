package transform

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fkoehler/kickflow/internal/logger"
)

// FieldType enumerates the target types a field can be coerced to.
type FieldType string

const (
	FieldTypeString   FieldType = "string"
	FieldTypeInteger  FieldType = "integer"
	FieldTypeDecimal  FieldType = "decimal"
	FieldTypeBoolean  FieldType = "boolean"
	FieldTypeDate     FieldType = "date"
	FieldTypeDateTime FieldType = "datetime"
	FieldTypeUUID     FieldType = "uuid"
	FieldTypeEmail    FieldType = "email"
	FieldTypeURL      FieldType = "url"
	FieldTypeCurrency FieldType = "currency"
)

// FieldMapping configures how one source field becomes one target field.
type FieldMapping struct {
	SourceField string
	TargetField string
	Type        FieldType
	Required    bool
	Default     interface{}
	// Func runs on the raw value before type coercion.
	Func func(interface{}) (interface{}, error)
	// Pattern, when set, must match the coerced string value.
	Pattern *regexp.Regexp
}

// Result carries the outcome of transforming a batch of records.
// Processed counts all input records; records that failed a required
// mapping are dropped from Transformed and reported in Errors. RowErrors
// holds the same messages keyed by 1-based row so dropped rows can be
// persisted with their failure reasons.
type Result struct {
	Transformed      []map[string]interface{}
	Warnings         []string
	Errors           []string
	RowErrors        map[int][]string
	Processed        int
	TransformedCount int
}

func (r *Result) addRowErrors(row int, msgs ...string) {
	if r.RowErrors == nil {
		r.RowErrors = map[int][]string{}
	}
	r.RowErrors[row] = append(r.RowErrors[row], msgs...)
	for _, msg := range msgs {
		r.Errors = append(r.Errors, fmt.Sprintf("Row %d: %s", row, msg))
	}
}

// Transformer applies field mappings to a batch of records.
type Transformer struct {
	dateLayouts []string
}

// NewTransformer builds a transformer with the default date layout chain.
func NewTransformer() *Transformer {
	return &Transformer{
		dateLayouts: []string{
			"2006-01-02 15:04:05 -0700",
			"2006-01-02 15:04:05",
			"2006-01-02",
			"01/02/2006",
			"02.01.2006",
			"2006-01-02T15:04:05Z",
			"2006-01-02T15:04:05",
		},
	}
}

// Transform applies the mappings to every record.
//
// Parameters:
//   - ctx: request context, used for logging
//   - records: input records, in file order
//   - mappings: per-field transformation configuration
//   - sourceLabel: source identifier for log lines
//
// Returns:
//   - *Result: transformed records plus row-numbered errors and warnings
func (t *Transformer) Transform(ctx context.Context, records []map[string]interface{}, mappings []FieldMapping, sourceLabel string) *Result {
	log := logger.With(logger.Fields{
		logger.FieldSource: sourceLabel,
		logger.FieldCount:  len(records),
	})
	log.Info(ctx, "starting data transformation with %d mappings", len(mappings))

	result := &Result{Processed: len(records)}

	for idx, record := range records {
		transformed, errs := t.transformRecord(record, mappings, idx)
		if len(errs) > 0 {
			result.addRowErrors(idx+1, errs...)
			log.WithRow(idx + 1).Warn(ctx, "record transformation failed")
			continue
		}
		result.Transformed = append(result.Transformed, transformed)
	}

	result.TransformedCount = len(result.Transformed)
	log.Info(ctx, "data transformation completed: %d/%d transformed, %d errors",
		result.TransformedCount, result.Processed, len(result.Errors))

	return result
}

// transformRecord maps one record, returning all mapping errors at once.
// A record with any error is dropped entirely.
func (t *Transformer) transformRecord(record map[string]interface{}, mappings []FieldMapping, idx int) (map[string]interface{}, []string) {
	transformed := map[string]interface{}{}
	var errs []string

	for _, mapping := range mappings {
		value, err := t.extractField(record, mapping)
		if err != nil {
			errs = append(errs, fmt.Sprintf("Field '%s': %v", mapping.SourceField, err))
			continue
		}
		switch {
		case value != nil:
			transformed[mapping.TargetField] = value
		case mapping.Required:
			errs = append(errs, fmt.Sprintf("Required field '%s' is missing or empty", mapping.SourceField))
		case mapping.Default != nil:
			transformed[mapping.TargetField] = mapping.Default
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}

	transformed["_source_row"] = idx + 1
	transformed["_transformed_at"] = time.Now().UTC()

	return transformed, nil
}

func (t *Transformer) extractField(record map[string]interface{}, mapping FieldMapping) (interface{}, error) {
	raw, ok := record[mapping.SourceField]
	if !ok || raw == nil {
		return nil, nil
	}
	if s, isString := raw.(string); isString && strings.TrimSpace(s) == "" {
		return nil, nil
	}

	if mapping.Func != nil {
		var err error
		raw, err = mapping.Func(raw)
		if err != nil {
			return nil, fmt.Errorf("custom transformation failed: %w", err)
		}
	}

	value, err := t.coerce(raw, mapping.Type)
	if err != nil {
		return nil, fmt.Errorf("type transformation failed: %w", err)
	}

	if mapping.Pattern != nil {
		if s, isString := value.(string); isString && !mapping.Pattern.MatchString(s) {
			return nil, fmt.Errorf("value does not match validation pattern")
		}
	}

	return value, nil
}

var truthyValues = map[string]bool{
	"true": true, "1": true, "yes": true, "on": true, "enabled": true,
}

var currencyAmount = regexp.MustCompile(`[\$€£¥₹]?([0-9]+\.?[0-9]*)`)

var nonNumeric = regexp.MustCompile(`[^0-9.-]`)

// coerce converts a raw value to the target field type.
func (t *Transformer) coerce(value interface{}, fieldType FieldType) (interface{}, error) {
	switch fieldType {
	case FieldTypeString:
		return strings.TrimSpace(stringify(value)), nil

	case FieldTypeInteger:
		switch v := value.(type) {
		case int:
			return int64(v), nil
		case int64:
			return v, nil
		case float64:
			return int64(v), nil
		default:
			clean := strings.NewReplacer(",", "", " ", "").Replace(stringify(value))
			f, err := strconv.ParseFloat(clean, 64)
			if err != nil {
				return nil, fmt.Errorf("cannot convert '%v' to integer", value)
			}
			return int64(f), nil
		}

	case FieldTypeDecimal:
		if d, ok := value.(decimal.Decimal); ok {
			return d, nil
		}
		clean := strings.NewReplacer(",", "", " ", "").Replace(stringify(value))
		d, err := decimal.NewFromString(clean)
		if err != nil {
			return nil, fmt.Errorf("cannot convert '%v' to decimal", value)
		}
		return d, nil

	case FieldTypeBoolean:
		switch v := value.(type) {
		case bool:
			return v, nil
		case string:
			return truthyValues[strings.ToLower(strings.TrimSpace(v))], nil
		default:
			return value != nil, nil
		}

	case FieldTypeDate:
		parsed, err := t.parseDate(value)
		if err != nil {
			return nil, err
		}
		return parsed.Truncate(24 * time.Hour), nil

	case FieldTypeDateTime:
		return t.parseDate(value)

	case FieldTypeUUID:
		if s, ok := value.(string); ok {
			id, err := uuid.Parse(s)
			if err != nil {
				return nil, fmt.Errorf("cannot convert '%v' to uuid: %w", value, err)
			}
			return id, nil
		}
		return value, nil

	case FieldTypeEmail:
		email := strings.ToLower(strings.TrimSpace(stringify(value)))
		if !strings.Contains(email, "@") {
			return nil, fmt.Errorf("invalid email format")
		}
		return email, nil

	case FieldTypeURL:
		url := strings.TrimSpace(stringify(value))
		if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
			url = "https://" + url
		}
		return url, nil

	case FieldTypeCurrency:
		return t.parseCurrency(value)

	default:
		return value, nil
	}
}

func (t *Transformer) parseDate(value interface{}) (time.Time, error) {
	if parsed, ok := value.(time.Time); ok {
		return parsed, nil
	}

	s, ok := value.(string)
	if !ok {
		return time.Time{}, fmt.Errorf("invalid date value: %v", value)
	}
	s = strings.TrimSpace(s)

	for _, layout := range t.dateLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			return parsed.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("could not parse date: %s", s)
}

func (t *Transformer) parseCurrency(value interface{}) (decimal.Decimal, error) {
	switch v := value.(type) {
	case decimal.Decimal:
		return v, nil
	case float64:
		return decimal.NewFromFloat(v), nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case string:
		cleaned := strings.ReplaceAll(v, ",", "")
		if m := currencyAmount.FindStringSubmatch(cleaned); m != nil {
			return decimal.NewFromString(m[1])
		}
		if stripped := nonNumeric.ReplaceAllString(v, ""); stripped != "" {
			return decimal.NewFromString(stripped)
		}
	}
	return decimal.Decimal{}, fmt.Errorf("cannot parse currency: %v", value)
}

func stringify(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}
