package cell

import "fmt"

// Row maps a column header to the cell under it.
type Row map[string]Value

// Lookup returns the first non-null cell among the given headers.
func (r Row) Lookup(headers ...string) Value {
	for _, h := range headers {
		if v, ok := r[h]; ok && !v.IsNull() {
			return v
		}
	}
	return Value{}
}

// FromGrid turns a header row plus data rows into Rows. Blank headers get a
// positional name so no column is lost; short rows yield Null cells.
func FromGrid(grid [][]interface{}) []Row {
	if len(grid) == 0 {
		return nil
	}

	headers := make([]string, len(grid[0]))
	for i, h := range grid[0] {
		name := FromAny(h).Text()
		if name == "" {
			name = fmt.Sprintf("col_%d", i)
		}
		headers[i] = name
	}

	rows := make([]Row, 0, len(grid)-1)
	for _, raw := range grid[1:] {
		row := make(Row, len(headers))
		for i, h := range headers {
			if i < len(raw) {
				row[h] = FromAny(raw[i])
			} else {
				row[h] = Value{}
			}
		}
		rows = append(rows, row)
	}
	return rows
}
