package sheets

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"cafedash/internal/cell"
	"cafedash/internal/logger"
	"cafedash/internal/normalize"
)

// XLSXReader reads tabs of a downloaded copy of the spreadsheet. The file
// is opened on every read so a replaced workbook is picked up.
type XLSXReader struct {
	path string
	log  zerolog.Logger
}

// NewXLSXReader creates a reader for the workbook at path.
func NewXLSXReader(path string) *XLSXReader {
	return &XLSXReader{
		path: path,
		log:  logger.WithComponent("xlsx"),
	}
}

// ReadRows reads a whole tab. Numeric cells arrive as Number cells unless
// their number format is a date format, in which case they become Date
// cells when the serial's year is plausible.
func (r *XLSXReader) ReadRows(ctx context.Context, sheetName string) ([]cell.Row, error) {
	const op = "XLSXReader.ReadRows"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	f, err := excelize.OpenFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to open %s: %w", op, r.path, err)
	}
	defer f.Close()

	idx, err := f.GetSheetIndex(sheetName)
	if err != nil || idx < 0 {
		return nil, fmt.Errorf("%s: %w: %q", op, ErrSheetNotFound, sheetName)
	}

	raw, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read %q: %w", op, sheetName, err)
	}

	dec := xlsxDecoder{f: f, sheet: sheetName, dateStyles: map[int]bool{}}
	grid := make([][]interface{}, len(raw))
	for i, row := range raw {
		grid[i] = make([]interface{}, len(row))
		for j, value := range row {
			if i == 0 {
				grid[i][j] = value
				continue
			}
			grid[i][j] = dec.decode(i+1, j+1, value)
		}
	}

	rows := cell.FromGrid(grid)
	r.log.Debug().Str("sheet", sheetName).Int("rows", len(rows)).Msg("Read workbook tab")
	return rows, nil
}

// Built-in number formats that render a date.
var builtinDateFormats = map[int]bool{
	14: true, 15: true, 16: true, 17: true, 18: true, 19: true, 20: true, 21: true, 22: true,
	45: true, 46: true, 47: true,
}

type xlsxDecoder struct {
	f          *excelize.File
	sheet      string
	dateStyles map[int]bool // style id -> is a date format
}

func (d *xlsxDecoder) decode(row, col int, value string) interface{} {
	if strings.TrimSpace(value) == "" {
		return nil
	}

	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return value
	}
	typ, err := d.f.GetCellType(d.sheet, name)
	if err != nil {
		return value
	}

	switch typ {
	case excelize.CellTypeUnset, excelize.CellTypeNumber, excelize.CellTypeFormula:
		n, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return value
		}
		if d.dateFormatted(name) {
			if t := cell.SerialTime(n); cell.PlausibleYear(t) {
				return cell.DateValue(t)
			}
		}
		return n
	case excelize.CellTypeBool:
		return value == "1" || strings.EqualFold(value, "true")
	case excelize.CellTypeDate:
		if t, ok := normalize.ParseDate(value); ok {
			return cell.DateValue(t)
		}
		return value
	default:
		return value
	}
}

func (d *xlsxDecoder) dateFormatted(name string) bool {
	styleID, err := d.f.GetCellStyle(d.sheet, name)
	if err != nil || styleID == 0 {
		return false
	}
	if isDate, ok := d.dateStyles[styleID]; ok {
		return isDate
	}

	isDate := false
	if style, err := d.f.GetStyle(styleID); err == nil && style != nil {
		isDate = builtinDateFormats[style.NumFmt] || (style.CustomNumFmt != nil && dateLayout(*style.CustomNumFmt))
	}
	d.dateStyles[styleID] = isDate
	return isDate
}

// dateLayout reports whether a custom number format prints a day or a year.
// Quoted literals and bracketed sections are ignored.
func dateLayout(format string) bool {
	inQuote, inBracket := false, false
	for _, r := range strings.ToLower(format) {
		switch {
		case r == '"':
			inQuote = !inQuote
		case inQuote:
		case r == '[':
			inBracket = true
		case r == ']':
			inBracket = false
		case inBracket:
		case r == 'd' || r == 'y':
			return true
		}
	}
	return false
}
