package neo4j

import (
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j/db"
)

func get(rec *db.Record, key string) any {
	if rec == nil {
		return nil
	}
	v, ok := rec.Get(key)
	if !ok {
		return nil
	}
	return v
}

func str(rec *db.Record, key string) string {
	return toString(get(rec, key))
}

func i64(rec *db.Record, key string) int64 {
	return toInt(get(rec, key))
}

func f64(rec *db.Record, key string) float64 {
	switch v := get(rec, key).(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	default:
		return 0
	}
}

func strs(rec *db.Record, key string) []string {
	list, _ := get(rec, key).([]any)
	out := make([]string, 0, len(list))
	for _, v := range list {
		if v == nil {
			continue
		}
		out = append(out, toString(v))
	}
	return out
}

func ints(rec *db.Record, key string) []int {
	list, _ := get(rec, key).([]any)
	out := make([]int, 0, len(list))
	for _, v := range list {
		if v == nil {
			continue
		}
		out = append(out, int(toInt(v)))
	}
	return out
}

func maps(rec *db.Record, key string) []map[string]any {
	list, _ := get(rec, key).([]any)
	out := make([]map[string]any, 0, len(list))
	for _, v := range list {
		if m, ok := v.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

func toString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprint(v)
	}
}

func toInt(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case float64:
		return int64(n)
	default:
		return 0
	}
}

func toFloat64s(vec []float32) []float64 {
	out := make([]float64, len(vec))
	for i, v := range vec {
		out[i] = float64(v)
	}
	return out
}
