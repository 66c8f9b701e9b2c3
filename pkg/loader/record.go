package loader

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Record is one table row keyed by column name.
type Record map[string]any

// Value returns the column value. NULLs and NaNs count as absent.
func (r Record) Value(key string) (any, bool) {
	v, ok := r[key]
	if !ok || v == nil {
		return nil, false
	}
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) {
			return nil, false
		}
	case float32:
		if math.IsNaN(float64(n)) {
			return nil, false
		}
	}
	return v, true
}

// String returns the column as a string, or def when absent.
func (r Record) String(key, def string) string {
	v, ok := r.Value(key)
	if !ok {
		return def
	}
	return stringify(v)
}

// StringOr returns the first present column of keys, or def.
func (r Record) StringOr(def string, keys ...string) string {
	for _, k := range keys {
		if v, ok := r.Value(k); ok {
			return stringify(v)
		}
	}
	return def
}

// Int returns the column as an integer. Absent or malformed values yield def.
func (r Record) Int(key string, def int64) int64 {
	v, ok := r.Value(key)
	if !ok {
		return def
	}
	switch n := v.(type) {
	case int:
		return int64(n)
	case int8:
		return int64(n)
	case int16:
		return int64(n)
	case int32:
		return int64(n)
	case int64:
		return n
	case uint8:
		return int64(n)
	case uint16:
		return int64(n)
	case uint32:
		return int64(n)
	case uint64:
		if n > math.MaxInt64 {
			return def
		}
		return int64(n)
	case float32:
		return int64(n)
	case float64:
		return int64(n)
	case bool:
		if n {
			return 1
		}
		return 0
	case string:
		s := strings.TrimSpace(n)
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return int64(f)
		}
	}
	return def
}

// Float returns the column as a float. Absent or malformed values yield def.
func (r Record) Float(key string, def float64) float64 {
	v, ok := r.Value(key)
	if !ok {
		return def
	}
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil && !math.IsNaN(f) {
			return f
		}
	}
	return def
}

// IDList parses the column as a collection of identifiers.
// An absent column is an empty list.
func (r Record) IDList(key string) ([]string, error) {
	v, ok := r.Value(key)
	if !ok {
		return nil, nil
	}
	return ParseIDList(v)
}

func stringify(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	case int64:
		return strconv.FormatInt(s, 10)
	case int32:
		return strconv.FormatInt(int64(s), 10)
	case int:
		return strconv.Itoa(s)
	case float64:
		return formatFloat(s)
	case float32:
		return formatFloat(float64(s))
	case bool:
		return strconv.FormatBool(s)
	default:
		return fmt.Sprint(v)
	}
}

// formatFloat prints integral floats without a fraction, so an id column
// widened to float by the upstream writer still reads "5" and not "5.0".
func formatFloat(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
