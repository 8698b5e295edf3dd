package validate

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/ppiankov/atlasprompt/internal/model"
)

// fencePattern matches markdown code fence markers, with or without a json tag
var fencePattern = regexp.MustCompile("```(?:json|JSON)?")

// StripFences removes code fence markers surrounding model output
func StripFences(text string) string {
	return strings.TrimSpace(fencePattern.ReplaceAllString(text, ""))
}

// DecodeResponse decodes raw extraction text into generic JSON values.
// Tries the fence-stripped text first, then the first '[' to the last ']'.
func DecodeResponse(text string) (any, error) {
	cleaned := StripFences(text)

	value, err := decodeJSON(cleaned)
	if err == nil {
		return value, nil
	}

	if start := strings.Index(cleaned, "["); start >= 0 {
		if end := strings.LastIndex(cleaned, "]"); end > start {
			if value, sliceErr := decodeJSON(cleaned[start : end+1]); sliceErr == nil {
				return value, nil
			}
		}
	}

	return nil, &model.DecodeError{Raw: text, Err: err}
}

// ParseRecords decodes and validates extraction text in one step.
// Schema and range errors carry the raw text for diagnosis.
func ParseRecords(text string) ([]model.PlaceRecord, error) {
	value, err := DecodeResponse(text)
	if err != nil {
		return nil, err
	}

	records, err := Validate(value)
	if err != nil {
		var schemaErr *model.SchemaError
		var rangeErr *model.RangeError
		switch {
		case errors.As(err, &schemaErr):
			schemaErr.Raw = text
		case errors.As(err, &rangeErr):
			rangeErr.Raw = text
		}
		return nil, err
	}
	return records, nil
}

func decodeJSON(text string) (any, error) {
	if text == "" {
		return nil, fmt.Errorf("empty response")
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(text)))
	dec.UseNumber()

	var value any
	if err := dec.Decode(&value); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, fmt.Errorf("unexpected data after JSON value")
	}
	return value, nil
}
