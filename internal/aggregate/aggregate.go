// Package aggregate groups and reduces filtered records into the label and
// value pairs charts and summary cards are drawn from.
package aggregate

import "sort"

// Sentinel labels for records with an empty grouping key.
const (
	NoLocation      = "No location"
	NoSupplier      = "No supplier"
	NoStatus        = "No status"
	NoRequester     = "No requester"
	NoIssuer        = "No issuer"
	NoPaymentMethod = "No payment method"
)

// Pair is one group label with its aggregate value.
type Pair struct {
	Label string  `json:"name"`
	Value float64 `json:"value"`
}

// group reduces records per key, keeping groups in first-encountered order.
func group[T any](records []T, key func(T) string, sentinel string, add func(float64, T) float64) []Pair {
	index := make(map[string]int)
	pairs := []Pair{}
	for _, r := range records {
		label := key(r)
		if label == "" {
			label = sentinel
		}
		i, ok := index[label]
		if !ok {
			i = len(pairs)
			index[label] = i
			pairs = append(pairs, Pair{Label: label})
		}
		pairs[i].Value = add(pairs[i].Value, r)
	}
	return pairs
}

// CountBy counts records per key. Empty keys are counted under sentinel.
func CountBy[T any](records []T, key func(T) string, sentinel string) []Pair {
	return group(records, key, sentinel, func(acc float64, _ T) float64 { return acc + 1 })
}

// SumBy sums value per key. Empty keys are summed under sentinel.
func SumBy[T any](records []T, key func(T) string, value func(T) float64, sentinel string) []Pair {
	return group(records, key, sentinel, func(acc float64, r T) float64 { return acc + value(r) })
}

// SortDesc orders pairs by descending value. Ties keep their input order.
func SortDesc(pairs []Pair) []Pair {
	out := append([]Pair(nil), pairs...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Value > out[j].Value })
	if out == nil {
		out = []Pair{}
	}
	return out
}

// TopN returns the n largest pairs, ties broken by input order.
func TopN(pairs []Pair, n int) []Pair {
	out := SortDesc(pairs)
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// TimeSeries sums value per canonical date, ascending. Records without a
// date are left out.
func TimeSeries[T any](records []T, date func(T) string, value func(T) float64) []Pair {
	dated := make([]T, 0, len(records))
	for _, r := range records {
		if date(r) != "" {
			dated = append(dated, r)
		}
	}
	pairs := SumBy(dated, date, value, "")
	sort.SliceStable(pairs, func(i, j int) bool { return pairs[i].Label < pairs[j].Label })
	return pairs
}

// Total sums value over every record.
func Total[T any](records []T, value func(T) float64) float64 {
	var sum float64
	for _, r := range records {
		sum += value(r)
	}
	return sum
}

// Average is Total divided by the record count, 0 for no records.
func Average[T any](records []T, value func(T) float64) float64 {
	if len(records) == 0 {
		return 0
	}
	return Total(records, value) / float64(len(records))
}

// Sum adds up the values of pairs.
func Sum(pairs []Pair) float64 {
	var sum float64
	for _, p := range pairs {
		sum += p.Value
	}
	return sum
}
