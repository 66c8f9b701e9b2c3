package store

import "fmt"

// Bounds of the relationship expansion around a single entity.
const (
	MinDepth = 1
	MaxDepth = 3
)

// CheckDepth validates an expansion depth. Implementations interpolate the
// depth into statements, so it must be checked before use.
func CheckDepth(depth int) error {
	if depth < MinDepth || depth > MaxDepth {
		return fmt.Errorf("depth must be between %d and %d, got %d", MinDepth, MaxDepth, depth)
	}
	return nil
}

// DedupeStrings drops empty and repeated values, keeping first occurrences.
func DedupeStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
