package config

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// getPath retrieves a value from a nested map using a dot-separated path.
func getPath(m map[string]any, path string) (any, bool) {
	current := any(m)
	for _, part := range strings.Split(path, ".") {
		cm, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = cm[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

func getString(m map[string]any, path string, errs *errorList) string {
	v, ok := getPath(m, path)
	if !ok {
		return ""
	}
	switch val := v.(type) {
	case string:
		return val
	case int64:
		// Env overrides such as TWITCHPLAYS_TWITCH_CHANNEL_TO_JOIN=1234
		// parse as numbers.
		return strconv.FormatInt(val, 10)
	default:
		errs.add(&TypeError{Path: path, Expected: "string", Actual: typeName(v)})
		return ""
	}
}

func getBool(m map[string]any, path string, errs *errorList) bool {
	v, ok := getPath(m, path)
	if !ok {
		return false
	}
	b, ok := v.(bool)
	if !ok {
		errs.add(&TypeError{Path: path, Expected: "bool", Actual: typeName(v)})
	}
	return b
}

func getInt(m map[string]any, path string, errs *errorList) int {
	v, ok := getPath(m, path)
	if !ok {
		return 0
	}
	switch val := v.(type) {
	case int64:
		return int(val)
	case float64:
		if val == math.Trunc(val) {
			return int(val)
		}
	}
	errs.add(&TypeError{Path: path, Expected: "integer", Actual: typeName(v)})
	return 0
}

// getSeconds reads a number of seconds as a duration.
func getSeconds(m map[string]any, path string, errs *errorList) time.Duration {
	v, ok := getPath(m, path)
	if !ok {
		return 0
	}
	switch val := v.(type) {
	case float64:
		return time.Duration(val * float64(time.Second))
	case int64:
		return time.Duration(val) * time.Second
	default:
		errs.add(&TypeError{Path: path, Expected: "seconds", Actual: typeName(v)})
		return 0
	}
}

// stringMap reads a table of string values, such as [keys].
func stringMap(m map[string]any, path string, errs *errorList) map[string]string {
	out := make(map[string]string)
	v, ok := getPath(m, path)
	if !ok {
		return out
	}
	table, ok := v.(map[string]any)
	if !ok {
		errs.add(&TypeError{Path: path, Expected: "table", Actual: typeName(v)})
		return out
	}
	for k, raw := range table {
		switch val := raw.(type) {
		case string:
			out[k] = val
		case int64:
			// Digit keys written unquoted: 1 = 1.
			out[k] = strconv.FormatInt(val, 10)
		default:
			errs.add(&TypeError{Path: path + "." + k, Expected: "string", Actual: typeName(raw)})
		}
	}
	return out
}

// typeName returns the type name for error messages.
func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "nil"
	case string:
		return "string"
	case int64:
		return "integer"
	case float64:
		return "float"
	case bool:
		return "bool"
	case []any:
		return "array"
	case map[string]any:
		return "table"
	default:
		return "unknown"
	}
}
