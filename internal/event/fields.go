// Copyright 2025 James Ross
package event

import (
	"fmt"
	"time"
)

// suffixes are checked longest-first so "array_date" wins over "array" and
// "date" for a key like "started_array_date".
var suffixOrder = []string{
	"array_date", "array_boolean", "array_double", "array_long", "array_string",
	"array", "date", "boolean", "double", "long", "string",
}

func matchSuffix(key string) string {
	for _, suf := range suffixOrder {
		if hasSuffixToken(key, suf) {
			return suf
		}
	}
	return "string"
}

// hasSuffixToken checks that key ends with "_"+suf or equals suf, so that
// "_array" does not spuriously match inside an unrelated key.
func hasSuffixToken(key, suf string) bool {
	if key == suf {
		return true
	}
	if len(key) > len(suf)+1 && key[len(key)-len(suf)-1] == '_' && key[len(key)-len(suf):] == suf {
		return true
	}
	return false
}

func scalarPredicate(suffix string) func(interface{}) bool {
	switch suffix {
	case "array_date", "date":
		return isDate
	case "array_boolean", "boolean":
		return isBool
	case "array_double", "double":
		return isDouble
	case "array_long", "long":
		return isLong
	case "array_string", "string":
		return isString
	default:
		return isString
	}
}

func isDate(v interface{}) bool {
	switch v.(type) {
	case time.Time:
		return true
	default:
		return false
	}
}

func isBool(v interface{}) bool {
	_, ok := v.(bool)
	return ok
}

func isDouble(v interface{}) bool {
	switch v.(type) {
	case float32, float64:
		return true
	default:
		return false
	}
}

func isLong(v interface{}) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	default:
		return false
	}
}

func isString(v interface{}) bool {
	_, ok := v.(string)
	return ok
}

func validateFields(fields map[string]interface{}) error {
	for k, v := range fields {
		suffix := matchSuffix(k)
		isArray := len(suffix) >= 5 && suffix[:5] == "array"
		if !isArray {
			if !scalarPredicate(suffix)(v) {
				return fail("invalid", k, fmt.Sprintf("value does not satisfy typed suffix %q", suffix))
			}
			continue
		}
		elemSuffix := "string"
		if suffix != "array" {
			elemSuffix = suffix[len("array_"):]
		}
		items, ok := asSlice(v)
		if !ok {
			return fail("invalid", k, fmt.Sprintf("value must be an array for typed suffix %q", suffix))
		}
		pred := scalarPredicate(elemSuffix)
		for _, item := range items {
			if !pred(item) {
				return fail("invalid", k, fmt.Sprintf("array element does not satisfy element type %q", elemSuffix))
			}
		}
	}
	return nil
}

// asSlice reports whether v is iterable-as-array (and not a string, which
// is itself iterable in many languages but must never count as an array
// here), returning its elements if so.
func asSlice(v interface{}) ([]interface{}, bool) {
	switch x := v.(type) {
	case []interface{}:
		return x, true
	case []string:
		out := make([]interface{}, len(x))
		for i, s := range x {
			out[i] = s
		}
		return out, true
	case []int:
		out := make([]interface{}, len(x))
		for i, n := range x {
			out[i] = n
		}
		return out, true
	case []float64:
		out := make([]interface{}, len(x))
		for i, n := range x {
			out[i] = n
		}
		return out, true
	case []bool:
		out := make([]interface{}, len(x))
		for i, b := range x {
			out[i] = b
		}
		return out, true
	case []time.Time:
		out := make([]interface{}, len(x))
		for i, t := range x {
			out[i] = t
		}
		return out, true
	case string:
		return nil, false
	default:
		return nil, false
	}
}
