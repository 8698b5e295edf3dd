package validate

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/ppiankov/atlasprompt/internal/model"
)

// requiredFields must be present on every element
var requiredFields = []string{"name", "latitude", "longitude", "fact"}

// Validate checks decoded extraction output and returns typed place records.
// It is pure: the input is never modified and unknown fields are ignored.
func Validate(raw any) ([]model.PlaceRecord, error) {
	items, ok := raw.([]any)
	if !ok {
		return nil, &model.SchemaError{Index: -1, Reason: fmt.Sprintf("expected an array of places, got %s", typeName(raw))}
	}

	records := make([]model.PlaceRecord, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, &model.SchemaError{Index: i, Reason: fmt.Sprintf("expected an object, got %s", typeName(item))}
		}

		for _, field := range requiredFields {
			if _, present := obj[field]; !present {
				return nil, &model.SchemaError{Index: i, Field: field, Reason: "missing"}
			}
		}

		name, ok := obj["name"].(string)
		if !ok || strings.TrimSpace(name) == "" {
			return nil, &model.SchemaError{Index: i, Field: "name", Reason: "must be a non-empty string"}
		}

		fact, ok := obj["fact"].(string)
		if !ok {
			return nil, &model.SchemaError{Index: i, Field: "fact", Reason: "must be a string"}
		}

		lat, err := coordinate(i, "latitude", obj["latitude"], 90)
		if err != nil {
			return nil, err
		}
		lng, err := coordinate(i, "longitude", obj["longitude"], 180)
		if err != nil {
			return nil, err
		}

		records = append(records, model.PlaceRecord{
			Name:      name,
			Latitude:  lat,
			Longitude: lng,
			Fact:      fact,
			Kind:      kindOf(obj),
		})
	}

	return records, nil
}

// coordinate converts a decoded JSON number and checks it lies within [-limit, limit]
func coordinate(index int, field string, value any, limit float64) (float64, error) {
	var f float64
	switch v := value.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, &model.RangeError{Index: index, Field: field, Value: value}
		}
		f = parsed
	default:
		return 0, &model.RangeError{Index: index, Field: field, Value: value}
	}

	if math.IsNaN(f) || math.IsInf(f, 0) || f < -limit || f > limit {
		return 0, &model.RangeError{Index: index, Field: field, Value: value}
	}
	return f, nil
}

// kindOf reads the place kind from "type", falling back to "kind".
// Non-string values are treated as absent rather than rejected.
func kindOf(obj map[string]any) string {
	for _, key := range []string{"type", "kind"} {
		if s, ok := obj[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, json.Number:
		return "number"
	default:
		return fmt.Sprintf("%T", v)
	}
}
