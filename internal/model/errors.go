package model

import (
	"errors"
	"fmt"
)

// SchemaError reports extraction output that does not have the place record shape
type SchemaError struct {
	Index  int    // Element index, -1 for the top-level value
	Field  string // Offending field, empty when the element itself is wrong
	Reason string
	Raw    string // Raw upstream text, attached by the caller when known
}

func (e *SchemaError) Error() string {
	switch {
	case e.Index < 0:
		return fmt.Sprintf("schema error: %s", e.Reason)
	case e.Field == "":
		return fmt.Sprintf("schema error: element %d: %s", e.Index, e.Reason)
	default:
		return fmt.Sprintf("schema error: element %d: field %q: %s", e.Index, e.Field, e.Reason)
	}
}

// RangeError reports a non-numeric or out-of-range coordinate
type RangeError struct {
	Index int
	Field string
	Value any
	Raw   string
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("range error: element %d: field %q: invalid value %v", e.Index, e.Field, e.Value)
}

// DecodeError reports upstream text that is not well-formed JSON even after fence stripping
type DecodeError struct {
	Raw string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode error: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// UpstreamError reports a failure of the extraction or rendering collaborator
type UpstreamError struct {
	Collaborator string // "extraction" or "rendering"
	Provider     string // Provider name, e.g. "gemini"
	Status       int    // HTTP status, 0 when the request never completed
	Details      string
	Err          error
}

func (e *UpstreamError) Error() string {
	msg := e.Collaborator + " failed"
	if e.Provider != "" {
		msg += " (" + e.Provider + ")"
	}
	if e.Status != 0 {
		msg += fmt.Sprintf(": status %d", e.Status)
	}
	if e.Details != "" {
		msg += ": " + e.Details
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// RawResponse returns the raw upstream text attached to err, if any
func RawResponse(err error) (string, bool) {
	var schemaErr *SchemaError
	if errors.As(err, &schemaErr) && schemaErr.Raw != "" {
		return schemaErr.Raw, true
	}
	var rangeErr *RangeError
	if errors.As(err, &rangeErr) && rangeErr.Raw != "" {
		return rangeErr.Raw, true
	}
	var decodeErr *DecodeError
	if errors.As(err, &decodeErr) {
		return decodeErr.Raw, true
	}
	return "", false
}

// IsInvalidUpstreamData reports whether err means extraction returned unusable data
func IsInvalidUpstreamData(err error) bool {
	var schemaErr *SchemaError
	var rangeErr *RangeError
	var decodeErr *DecodeError
	return errors.As(err, &schemaErr) || errors.As(err, &rangeErr) || errors.As(err, &decodeErr)
}
