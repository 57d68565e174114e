package normalize

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// Loose field accessors for upstream JSON decoded into map[string]any.
// Providers rename fields between API versions, so every accessor tries an
// ordered list of alternate keys and falls back to a zero value rather than
// failing. Nothing outside the adapter packages should ever see these maps.

// FieldString returns the first present key coerced to a string, or "".
func FieldString(m map[string]any, keys ...string) string {
	for _, key := range keys {
		v, ok := m[key]
		if !ok || v == nil {
			continue
		}
		switch s := v.(type) {
		case string:
			if s != "" {
				return s
			}
		case json.Number:
			return s.String()
		case float64:
			return strconv.FormatFloat(s, 'f', -1, 64)
		case bool:
			return strconv.FormatBool(s)
		}
	}
	return ""
}

// FieldNumber returns the first present key coerced to a number, or nil.
func FieldNumber(m map[string]any, keys ...string) *float64 {
	for _, key := range keys {
		v, ok := m[key]
		if !ok || v == nil {
			continue
		}
		if n := ToNumberOrNil(v); n != nil {
			return n
		}
	}
	return nil
}

// FieldInt returns the first present key coerced to an int, or nil.
func FieldInt(m map[string]any, keys ...string) *int {
	n := FieldNumber(m, keys...)
	if n == nil {
		return nil
	}
	i := int(*n)
	return &i
}

// FieldBool returns the first present key coerced to a bool, or false.
func FieldBool(m map[string]any, keys ...string) bool {
	for _, key := range keys {
		v, ok := m[key]
		if !ok || v == nil {
			continue
		}
		switch b := v.(type) {
		case bool:
			return b
		case string:
			if parsed, err := strconv.ParseBool(strings.ToLower(b)); err == nil {
				return parsed
			}
		}
	}
	return false
}

// FieldTime returns the first present key parsed as a timestamp, or the zero
// time. RFC 3339 variants and Unix epoch seconds are accepted.
func FieldTime(m map[string]any, keys ...string) time.Time {
	for _, key := range keys {
		v, ok := m[key]
		if !ok || v == nil {
			continue
		}
		switch t := v.(type) {
		case string:
			if parsed := ParseTimestamp(t); !parsed.IsZero() {
				return parsed
			}
		case float64:
			if t > 0 {
				return time.Unix(int64(t), 0).UTC()
			}
		}
	}
	return time.Time{}
}

// FieldMap returns the first present key that is a JSON object, or nil.
func FieldMap(m map[string]any, keys ...string) map[string]any {
	for _, key := range keys {
		if child, ok := m[key].(map[string]any); ok {
			return child
		}
	}
	return nil
}

// FieldSlice returns the first present key that is a JSON array, or nil.
func FieldSlice(m map[string]any, keys ...string) []any {
	for _, key := range keys {
		if child, ok := m[key].([]any); ok {
			return child
		}
	}
	return nil
}

// ObjectSlice returns the elements of the first present array key that are
// themselves JSON objects. Non-object elements are skipped.
func ObjectSlice(m map[string]any, keys ...string) []map[string]any {
	raw := FieldSlice(m, keys...)
	if raw == nil {
		return nil
	}
	objects := make([]map[string]any, 0, len(raw))
	for _, item := range raw {
		if obj, ok := item.(map[string]any); ok {
			objects = append(objects, obj)
		}
	}
	return objects
}

// ToNumberOrNil coerces a decoded JSON value to a float64. NaN and Inf are
// rejected so they can never propagate into persisted state.
func ToNumberOrNil(v any) *float64 {
	var n float64
	switch num := v.(type) {
	case float64:
		n = num
	case int:
		n = float64(num)
	case int64:
		n = float64(num)
	case json.Number:
		parsed, err := num.Float64()
		if err != nil {
			return nil
		}
		n = parsed
	case string:
		trimmed := strings.TrimSpace(strings.TrimPrefix(num, "+"))
		if trimmed == "" {
			return nil
		}
		parsed, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return nil
		}
		n = parsed
	default:
		return nil
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return nil
	}
	return &n
}

var timestampLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04Z",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses an upstream timestamp string, returning the zero
// time if no known layout matches.
func ParseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	// Some feeds send epoch seconds as a string.
	if epoch, err := strconv.ParseInt(s, 10, 64); err == nil && epoch > 1_000_000_000 {
		return time.Unix(epoch, 0).UTC()
	}
	return time.Time{}
}
