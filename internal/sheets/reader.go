// Package sheets reads spreadsheet tabs into cell rows, through the Sheets
// API with a service account, through the public GViz endpoint, or from a
// downloaded workbook. Any of them can sit behind a Redis cache.
package sheets

import (
	"context"
	"errors"

	"cafedash/internal/cell"
)

var (
	// ErrSheetNotFound is returned when the requested tab does not exist.
	ErrSheetNotFound = errors.New("sheet not found")

	// ErrPermissionDenied is returned when the spreadsheet is not shared with
	// the reader.
	ErrPermissionDenied = errors.New("permission denied")
)

// Reader reads one tab of the configured spreadsheet.
type Reader interface {
	ReadRows(ctx context.Context, sheetName string) ([]cell.Row, error)
}

// SpreadsheetReader can also read tabs of other spreadsheets.
type SpreadsheetReader interface {
	Reader
	ReadSpreadsheetRows(ctx context.Context, spreadsheetID, sheetName string) ([]cell.Row, error)
	SpreadsheetID() string
}

var (
	_ SpreadsheetReader = (*Service)(nil)
	_ SpreadsheetReader = (*GVizClient)(nil)
	_ Reader            = (*CachedReader)(nil)
	_ Reader            = (*XLSXReader)(nil)
)
