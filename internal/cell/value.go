// Package cell models spreadsheet cell values as a tagged union.
//
// Every sheet source decodes its wire format into Value once, at the
// ingestion boundary; the normalize package then does all coercion by
// switching on Kind.
package cell

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// Kind identifies which member of the union a Value holds.
type Kind int

const (
	Null Kind = iota
	String
	Number
	Date
)

func (k Kind) String() string {
	switch k {
	case String:
		return "string"
	case Number:
		return "number"
	case Date:
		return "date"
	default:
		return "null"
	}
}

// Value is one spreadsheet cell.
type Value struct {
	Kind Kind
	Str  string
	Num  float64
	// Time holds a calendar day at midnight UTC for Date values.
	Time time.Time
}

// Epoch is day zero of spreadsheet serial dates.
var Epoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// Plausible calendar years for a serial that really is a date.
const (
	MinYear = 1900
	MaxYear = 2100
)

func NullValue() Value { return Value{} }

// StringValue trims s; blank strings become Null.
func StringValue(s string) Value {
	s = strings.TrimSpace(s)
	if s == "" {
		return Value{}
	}
	return Value{Kind: String, Str: s}
}

func NumberValue(f float64) Value { return Value{Kind: Number, Num: f} }

// DateValue truncates t to its calendar day, as written.
func DateValue(t time.Time) Value {
	y, m, d := t.Date()
	return Value{Kind: Date, Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// SerialTime converts a spreadsheet serial to its calendar day.
// The fractional (time of day) part is ignored.
func SerialTime(serial float64) time.Time {
	return Epoch.AddDate(0, 0, int(math.Floor(serial)))
}

// Serial returns the spreadsheet serial of a calendar day.
func Serial(t time.Time) float64 {
	y, m, d := t.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return float64((day.Unix() - Epoch.Unix()) / 86400)
}

// PlausibleYear reports whether t falls inside [MinYear, MaxYear].
func PlausibleYear(t time.Time) bool {
	return t.Year() >= MinYear && t.Year() <= MaxYear
}

// IsNull reports whether the cell carries no value.
func (v Value) IsNull() bool {
	return v.Kind == Null
}

// Text renders the value as trimmed text. Numbers are printed without an
// exponent so numeric ids such as 1001 survive; dates use YYYY-MM-DD.
func (v Value) Text() string {
	switch v.Kind {
	case String:
		return v.Str
	case Number:
		if math.IsNaN(v.Num) || math.IsInf(v.Num, 0) {
			return ""
		}
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case Date:
		return v.Time.Format(time.DateOnly)
	default:
		return ""
	}
}

// FromAny decodes a loosely typed value, as produced by JSON decoding or the
// Sheets API client, into a Value.
func FromAny(x interface{}) Value {
	switch t := x.(type) {
	case nil:
		return Value{}
	case Value:
		return t
	case string:
		return StringValue(t)
	case float64:
		return NumberValue(t)
	case float32:
		return NumberValue(float64(t))
	case int:
		return NumberValue(float64(t))
	case int64:
		return NumberValue(float64(t))
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return StringValue(t.String())
		}
		return NumberValue(f)
	case bool:
		return StringValue(strings.ToUpper(strconv.FormatBool(t)))
	case time.Time:
		if t.IsZero() {
			return Value{}
		}
		return DateValue(t)
	default:
		return Value{}
	}
}

// MarshalJSON renders the value as the plain JSON a browser client expects:
// null, a string, a number, or a YYYY-MM-DD string for dates.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case String:
		return json.Marshal(v.Str)
	case Number:
		if math.IsNaN(v.Num) || math.IsInf(v.Num, 0) {
			return []byte("null"), nil
		}
		return json.Marshal(v.Num)
	case Date:
		return json.Marshal(v.Time.Format(time.DateOnly))
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts the plain JSON form produced by MarshalJSON.
// Dates come back as strings; the normalizer parses them again.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*v = FromAny(raw)
	return nil
}
