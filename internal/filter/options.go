package filter

import "sort"

// ValueRange is the span of positive values seen in a dimension. Both ends
// are 0 when no record has a positive value.
type ValueRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Distinct returns the sorted, non-empty distinct values of field.
func Distinct[T any](records []T, field func(T) string) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, r := range records {
		v := field(r)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// RangeOf returns the min and max of the positive values of field.
func RangeOf[T any](records []T, value func(T) float64) ValueRange {
	var rng ValueRange
	found := false
	for _, r := range records {
		v := value(r)
		if v <= 0 {
			continue
		}
		if !found || v < rng.Min {
			rng.Min = v
		}
		if !found || v > rng.Max {
			rng.Max = v
		}
		found = true
	}
	return rng
}
