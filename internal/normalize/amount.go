package normalize

import (
	"math"
	"strconv"
	"strings"

	"cafedash/internal/cell"
)

// Amount coerces a cell into a non-negative, finite amount. Anything that
// cannot be read as such becomes 0.
func Amount(v cell.Value) float64 {
	switch v.Kind {
	case cell.Number:
		return clampAmount(v.Num)
	case cell.String:
		return ParseAmount(v.Str)
	case cell.Date:
		// A "date" outside the plausible range is a number the spreadsheet
		// engine mistook for a serial.
		if cell.PlausibleYear(v.Time) {
			return 0
		}
		return clampAmount(cell.Serial(v.Time))
	default:
		return 0
	}
}

// ParseAmount reads a locale-formatted amount such as "$ 5.500,50".
//
// Only digits, '.', ',' and '-' are kept. With both separators present '.'
// groups thousands and ',' marks decimals. With one kind only, it is a
// decimal mark when it appears once and is followed by one or two digits;
// otherwise it groups thousands.
func ParseAmount(raw string) float64 {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' || r == '-' {
			return r
		}
		return -1
	}, raw)
	if cleaned == "" {
		return 0
	}

	hasDot := strings.Contains(cleaned, ".")
	hasComma := strings.Contains(cleaned, ",")

	switch {
	case hasDot && hasComma:
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	case hasDot:
		cleaned = resolveSeparator(cleaned, ".")
	case hasComma:
		cleaned = resolveSeparator(cleaned, ",")
	}

	amount, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return clampAmount(amount)
}

func resolveSeparator(s, sep string) string {
	if strings.Count(s, sep) == 1 {
		idx := strings.Index(s, sep)
		if decimals := len(s) - idx - 1; decimals >= 1 && decimals <= 2 {
			return strings.Replace(s, sep, ".", 1)
		}
	}
	return strings.ReplaceAll(s, sep, "")
}

func clampAmount(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	return f
}
