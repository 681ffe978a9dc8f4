// Package jsonutil decodes loosely-typed JSON scalars from third-party APIs,
// which send the same field as a string in one response and a number in another.
package jsonutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMissingValue is returned when a required scalar is absent or null.
var ErrMissingValue = errors.New("missing value")

// FlexibleStringValue converts a json.RawMessage to a string, accepting strings,
// numbers and booleans. Numbers keep their literal form, so large ids are not
// rounded through float64. Returns empty string for null/empty.
func FlexibleStringValue(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}

	var strVal string
	if err := json.Unmarshal(raw, &strVal); err == nil {
		return strVal
	}

	var numVal json.Number
	if err := json.Unmarshal(raw, &numVal); err == nil {
		return numVal.String()
	}

	var boolVal bool
	if err := json.Unmarshal(raw, &boolVal); err == nil {
		return strconv.FormatBool(boolVal)
	}

	// Objects and arrays: the raw text is the most useful thing to hand back.
	return string(raw)
}

// FlexibleFloat parses a JSON number or a decimal string into a float64.
func FlexibleFloat(raw json.RawMessage) (float64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return 0, ErrMissingValue
	}

	var text string
	switch raw[0] {
	case '"':
		if err := json.Unmarshal(raw, &text); err != nil {
			return 0, fmt.Errorf("invalid string: %w", err)
		}
		text = strings.TrimSpace(text)
		if text == "" {
			return 0, ErrMissingValue
		}
	case '{', '[', 't', 'f':
		return 0, fmt.Errorf("expected number, got %s", raw)
	default:
		text = string(raw)
	}

	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number %q: %w", text, err)
	}
	return f, nil
}
