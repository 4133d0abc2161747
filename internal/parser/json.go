package parser

import (
	"encoding/json"
	"fmt"
)

// jsonArrayFields are the conventional wrapper fields probed, in order, when
// a JSON payload is a top-level object rather than an array.
var jsonArrayFields = []string{"results", "data", "items"}

// parseJSON accepts a top-level array or object. Objects are unwrapped via a
// conventional array field (or the caller-supplied one) and otherwise treated
// as a single-record sequence.
func parseJSON(content []byte, opts Options) (*Result, error) {
	var root interface{}
	if err := json.Unmarshal(content, &root); err != nil {
		return nil, parseErrorf(err, "invalid JSON")
	}

	var (
		raw      []interface{}
		warnings []string
	)
	switch v := root.(type) {
	case []interface{}:
		raw = v
	case map[string]interface{}:
		raw = unwrapJSONObject(v, opts.ArrayField)
	default:
		return nil, parseErrorf(nil, "unsupported JSON structure %T", root)
	}

	records := make([]map[string]interface{}, 0, len(raw))
	for i, item := range raw {
		if opts.MaxRows > 0 && len(records) >= opts.MaxRows {
			break
		}
		obj, ok := item.(map[string]interface{})
		if !ok {
			warnings = append(warnings, fmt.Sprintf("skipped element %d: not an object", i+1))
			continue
		}
		if opts.FlattenNested {
			flat := make(map[string]interface{}, len(obj))
			flattenJSON(obj, "", flat)
			obj = flat
		}
		records = append(records, obj)
	}

	return &Result{
		Records:  records,
		Format:   FormatJSON,
		Warnings: warnings,
	}, nil
}

func unwrapJSONObject(obj map[string]interface{}, arrayField string) []interface{} {
	fields := jsonArrayFields
	if arrayField != "" {
		fields = append([]string{arrayField}, jsonArrayFields...)
	}
	for _, field := range fields {
		if arr, ok := obj[field].([]interface{}); ok {
			return arr
		}
	}
	// Single object payload: wrap as a one-record sequence.
	return []interface{}{obj}
}

// flattenJSON turns nested objects into dotted-path keys. Arrays of objects
// are serialized to a JSON string so their content survives flattening.
func flattenJSON(obj map[string]interface{}, prefix string, out map[string]interface{}) {
	for key, value := range obj {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		switch v := value.(type) {
		case map[string]interface{}:
			flattenJSON(v, path, out)
		case []interface{}:
			if len(v) > 0 {
				if _, ok := v[0].(map[string]interface{}); ok {
					b, err := json.Marshal(v)
					if err == nil {
						out[path] = string(b)
						continue
					}
				}
			}
			out[path] = v
		default:
			out[path] = value
		}
	}
}
