// Package filter evaluates dashboard filter state against typed records.
//
// Active predicates are ANDed; a multi-select matches when the record's
// value is any of the selected ones. Empty selections, nil bounds and an
// empty search term are inactive. Predicates are pure, so evaluation order
// does not affect the result, and input order is preserved.
package filter

import (
	"strings"

	"golang.org/x/text/cases"

	"cafedash/internal/normalize"
)

// Predicate reports whether a record passes one filter dimension.
type Predicate[T any] func(T) bool

// Apply returns the records that satisfy every non-nil predicate.
func Apply[T any](records []T, preds ...Predicate[T]) []T {
	active := preds[:0:0]
	for _, p := range preds {
		if p != nil {
			active = append(active, p)
		}
	}

	out := make([]T, 0, len(records))
	for _, r := range records {
		if matchesAll(r, active) {
			out = append(out, r)
		}
	}
	return out
}

func matchesAll[T any](r T, preds []Predicate[T]) bool {
	for _, p := range preds {
		if !p(r) {
			return false
		}
	}
	return true
}

// OneOf matches records whose field equals one of selected. It is inactive
// (nil) for an empty selection.
func OneOf[T any](selected []string, field func(T) string) Predicate[T] {
	if len(selected) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(selected))
	for _, s := range selected {
		set[s] = struct{}{}
	}
	return func(r T) bool {
		_, ok := set[field(r)]
		return ok
	}
}

// Between matches records whose value lies in [min, max]; either bound may
// be nil.
func Between[T any](min, max *float64, value func(T) float64) Predicate[T] {
	if min == nil && max == nil {
		return nil
	}
	return func(r T) bool {
		v := value(r)
		if min != nil && v < *min {
			return false
		}
		if max != nil && v > *max {
			return false
		}
		return true
	}
}

// DateWithin matches records whose canonical date lies in [from, to].
// Records without a date never match once any bound is set. Bounds are
// normalized first; a bound that cannot be parsed restricts nothing but
// still excludes undated records.
func DateWithin[T any](from, to *string, date func(T) string) Predicate[T] {
	fromSet := from != nil && strings.TrimSpace(*from) != ""
	toSet := to != nil && strings.TrimSpace(*to) != ""
	if !fromSet && !toSet {
		return nil
	}

	var lo, hi string
	if fromSet {
		lo = normalize.CanonicalDate(*from)
	}
	if toSet {
		hi = normalize.CanonicalDate(*to)
	}

	return func(r T) bool {
		d := date(r)
		if d == "" {
			return false
		}
		if lo != "" && d < lo {
			return false
		}
		if hi != "" && d > hi {
			return false
		}
		return true
	}
}

// Contains matches records where term occurs, case-insensitively, in at
// least one of the given fields.
func Contains[T any](term string, fields ...func(T) string) Predicate[T] {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil
	}
	folder := cases.Fold()
	needle := folder.String(term)
	return func(r T) bool {
		for _, f := range fields {
			if strings.Contains(folder.String(f(r)), needle) {
				return true
			}
		}
		return false
	}
}
