package validate

import (
	"encoding/json"
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/ppiankov/atlasprompt/internal/model"
)

func decodeOrFail(t *testing.T, text string) any {
	t.Helper()
	value, err := DecodeResponse(text)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	return value
}

func TestValidate_Success(t *testing.T) {
	raw := decodeOrFail(t, `[
		{"name": "Paris", "latitude": 48.8566, "longitude": 2.3522, "fact": "Founded in the 3rd century BC.", "type": "city"},
		{"name": "France", "latitude": 46.2, "longitude": 2.2, "fact": "", "type": "Country", "extra": true}
	]`)

	records, err := Validate(raw)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}

	if records[0].Name != "Paris" || records[0].Latitude != 48.8566 || records[0].Longitude != 2.3522 {
		t.Errorf("Unexpected first record: %+v", records[0])
	}
	if records[1].Kind != "Country" {
		t.Errorf("Expected raw kind to be preserved, got %q", records[1].Kind)
	}
	if records[1].KindClass() != model.KindCountry {
		t.Errorf("Expected country class, got %q", records[1].KindClass())
	}
}

func TestValidate_KindAliasAndUnknown(t *testing.T) {
	raw := decodeOrFail(t, `[
		{"name": "Stonehenge", "latitude": 51.17, "longitude": -1.82, "fact": "x", "kind": "monument"},
		{"name": "Nowhere", "latitude": 0, "longitude": 0, "fact": "x"}
	]`)

	records, err := Validate(raw)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if records[0].Kind != "monument" {
		t.Errorf("Expected kind alias to be read, got %q", records[0].Kind)
	}
	if records[0].KindClass() != model.KindUnknown {
		t.Errorf("Expected unknown class, got %q", records[0].KindClass())
	}
	if records[1].KindClass() != model.KindUnknown {
		t.Errorf("Expected unknown class for missing kind, got %q", records[1].KindClass())
	}
}

func TestValidate_Empty(t *testing.T) {
	records, err := Validate(decodeOrFail(t, `[]`))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(records) != 0 {
		t.Errorf("Expected 0 records, got %d", len(records))
	}
}

func TestValidate_SchemaErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		index int
		field string
	}{
		{"top level object", `{"name": "Paris"}`, -1, ""},
		{"top level string", `"Paris"`, -1, ""},
		{"element not object", `[1]`, 0, ""},
		{"missing name", `[{"latitude": 1, "longitude": 1, "fact": "x"}]`, 0, "name"},
		{"missing latitude", `[{"name": "a", "longitude": 1, "fact": "x"}]`, 0, "latitude"},
		{"missing longitude", `[{"name": "a", "latitude": 1, "fact": "x"}]`, 0, "longitude"},
		{"missing fact", `[{"name": "a", "latitude": 1, "longitude": 1}]`, 0, "fact"},
		{"empty name", `[{"name": " ", "latitude": 1, "longitude": 1, "fact": "x"}]`, 0, "name"},
		{"numeric fact", `[{"name": "a", "latitude": 1, "longitude": 1, "fact": 3}]`, 0, "fact"},
		{"second element", `[{"name": "a", "latitude": 1, "longitude": 1, "fact": "x"}, {"name": "b"}]`, 1, "latitude"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Validate(decodeOrFail(t, tt.input))
			var schemaErr *model.SchemaError
			if !errors.As(err, &schemaErr) {
				t.Fatalf("Expected SchemaError, got %v", err)
			}
			if schemaErr.Index != tt.index {
				t.Errorf("Expected index %d, got %d", tt.index, schemaErr.Index)
			}
			if schemaErr.Field != tt.field {
				t.Errorf("Expected field %q, got %q", tt.field, schemaErr.Field)
			}
		})
	}
}

func TestValidate_RangeErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		field string
	}{
		{"latitude too high", `[{"name": "a", "latitude": 90.5, "longitude": 1, "fact": "x"}]`, "latitude"},
		{"latitude too low", `[{"name": "a", "latitude": -91, "longitude": 1, "fact": "x"}]`, "latitude"},
		{"longitude too high", `[{"name": "a", "latitude": 1, "longitude": 180.01, "fact": "x"}]`, "longitude"},
		{"longitude string", `[{"name": "a", "latitude": 1, "longitude": "east", "fact": "x"}]`, "longitude"},
		{"latitude null", `[{"name": "a", "latitude": null, "longitude": 1, "fact": "x"}]`, "latitude"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Validate(decodeOrFail(t, tt.input))
			var rangeErr *model.RangeError
			if !errors.As(err, &rangeErr) {
				t.Fatalf("Expected RangeError, got %v", err)
			}
			if rangeErr.Field != tt.field {
				t.Errorf("Expected field %q, got %q", tt.field, rangeErr.Field)
			}
		})
	}
}

func TestValidate_Boundaries(t *testing.T) {
	raw := []any{
		map[string]any{"name": "pole", "latitude": 90.0, "longitude": -180.0, "fact": ""},
		map[string]any{"name": "pole", "latitude": -90.0, "longitude": 180.0, "fact": ""},
	}
	if _, err := Validate(raw); err != nil {
		t.Errorf("Expected boundary values to be valid, got %v", err)
	}
}

func TestValidate_NonFinite(t *testing.T) {
	raw := []any{
		map[string]any{"name": "a", "latitude": math.NaN(), "longitude": 0.0, "fact": ""},
	}
	var rangeErr *model.RangeError
	if _, err := Validate(raw); !errors.As(err, &rangeErr) {
		t.Errorf("Expected RangeError for NaN, got %v", err)
	}
}

func TestValidate_Idempotent(t *testing.T) {
	first, err := Validate(decodeOrFail(t, `[
		{"name": "Kyoto", "latitude": 35.0116, "longitude": 135.7681, "fact": "Capital <b>for</b> over 1000 years", "type": "city"},
		{"name": "Japan", "latitude": 36.2048, "longitude": 138.2529, "fact": "Island nation", "type": "country"},
		{"name": "Mt Fuji", "latitude": 35.3606, "longitude": 138.7274, "fact": "Volcano"}
	]`))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	data, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	second, err := Validate(decodeOrFail(t, string(data)))
	if err != nil {
		t.Fatalf("Expected re-validation to succeed, got %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Expected identical records after round trip\nfirst:  %+v\nsecond: %+v", first, second)
	}
}
