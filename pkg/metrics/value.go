package metrics

import (
	"encoding/json"
	"strconv"
	"strings"
)

// ParseValue converts a result value to a float. Booleans and numbers are
// cast, "Correct" and "Incorrect" map to 1 and 0, and other strings are
// parsed as numbers. It reports false for anything it cannot convert.
func ParseValue(v any) (float64, bool) {
	switch val := v.(type) {
	case bool:
		if val {
			return 1, true
		}
		return 0, true
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case int32:
		return float64(val), true
	case json.Number:
		f, err := val.Float64()
		return f, err == nil
	case string:
		switch val {
		case "Correct":
			return 1, true
		case "Incorrect":
			return 0, true
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// truthy reports whether v would count as set in a boolean flag: true,
// non-zero numbers, and non-empty strings, lists, and maps.
func truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case float64:
		return val != 0
	case string:
		return val != ""
	case []any:
		return len(val) > 0
	case map[string]any:
		return len(val) > 0
	default:
		f, ok := ParseValue(v)
		return ok && f != 0
	}
}
