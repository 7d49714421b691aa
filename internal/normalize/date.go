package normalize

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"cafedash/internal/cell"
)

// CanonicalLayout is the only date representation used after normalization.
const CanonicalLayout = time.DateOnly

// Candidate layouts for string dates, in priority order. Day-first wins
// over month-first when both are valid.
var dateLayouts = []string{
	"2-1-2006",
	"2/1/2006",
	"2006-1-2",
	"2006/1/2",
	"1/2/2006",
	"1-2-2006",
}

var (
	gvizDatePattern = regexp.MustCompile(`^Date\((\d{4}),\s*(\d{1,2}),\s*(\d{1,2})`)
	isoStampPattern = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})[T ]`)
)

// Date coerces a cell into a canonical YYYY-MM-DD string, or "" when the
// cell holds no recognizable date.
func Date(v cell.Value) string {
	switch v.Kind {
	case cell.Date:
		if !cell.PlausibleYear(v.Time) {
			return ""
		}
		return v.Time.Format(CanonicalLayout)
	case cell.Number:
		if math.IsNaN(v.Num) || math.IsInf(v.Num, 0) || v.Num < 0 {
			return ""
		}
		t := cell.SerialTime(v.Num)
		if !cell.PlausibleYear(t) {
			return ""
		}
		return t.Format(CanonicalLayout)
	case cell.String:
		t, ok := ParseDate(v.Str)
		if !ok {
			return ""
		}
		return t.Format(CanonicalLayout)
	default:
		return ""
	}
}

// ParseDate parses a date written in one of the accepted layouts, the GViz
// literal Date(y,m,d) with a zero-based month, or an ISO timestamp whose
// date part is taken as written.
func ParseDate(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}

	if m := gvizDatePattern.FindStringSubmatch(s); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		t := time.Date(year, time.Month(month+1), day, 0, 0, 0, 0, time.UTC)
		if t.Month() != time.Month(month+1) || t.Day() != day {
			return time.Time{}, false
		}
		return t, true
	}

	if m := isoStampPattern.FindStringSubmatch(s); m != nil {
		s = m[1]
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// CanonicalDate normalizes a free-form date string, returning "" when it
// cannot be parsed. Canonical input is returned unchanged.
func CanonicalDate(raw string) string {
	t, ok := ParseDate(raw)
	if !ok {
		return ""
	}
	return t.Format(CanonicalLayout)
}
