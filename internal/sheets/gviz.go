package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"cafedash/internal/cell"
	"cafedash/internal/logger"
	"cafedash/internal/normalize"
)

// DefaultGVizBaseURL is the public Google Sheets host.
const DefaultGVizBaseURL = "https://docs.google.com"

// GVizClient reads publicly shared sheets through the visualization query
// endpoint. No credentials are needed.
type GVizClient struct {
	httpClient    *http.Client
	baseURL       string
	spreadsheetID string
	limiter       *rate.Limiter
	log           zerolog.Logger
}

// NewGVizClient creates a GViz reader. A nil httpClient uses a client with a
// 30 second timeout; limiter may be nil.
func NewGVizClient(spreadsheetRef string, httpClient *http.Client, limiter *rate.Limiter) (*GVizClient, error) {
	const op = "NewGVizClient"

	spreadsheetID, err := SpreadsheetID(spreadsheetRef)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &GVizClient{
		httpClient:    httpClient,
		baseURL:       DefaultGVizBaseURL,
		spreadsheetID: spreadsheetID,
		limiter:       limiter,
		log:           logger.WithComponent("gviz"),
	}, nil
}

// WithBaseURL points the client at another host.
func (c *GVizClient) WithBaseURL(baseURL string) *GVizClient {
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

// SpreadsheetID returns the id of the spreadsheet this client reads.
func (c *GVizClient) SpreadsheetID() string {
	return c.spreadsheetID
}

// ReadRows reads a whole sheet of the configured spreadsheet.
func (c *GVizClient) ReadRows(ctx context.Context, sheetName string) ([]cell.Row, error) {
	return c.ReadSpreadsheetRows(ctx, c.spreadsheetID, sheetName)
}

// ReadSpreadsheetRows fetches and decodes one sheet.
func (c *GVizClient) ReadSpreadsheetRows(ctx context.Context, spreadsheetID, sheetName string) ([]cell.Row, error) {
	const op = "GVizClient.ReadSpreadsheetRows"

	if err := wait(ctx, c.limiter); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	q := url.Values{}
	q.Set("tqx", "out:json")
	q.Set("headers", "1")
	q.Set("sheet", sheetName)
	endpoint := fmt.Sprintf("%s/spreadsheets/d/%s/gviz/tq?%s", c.baseURL, url.PathEscape(spreadsheetID), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build request: %w", op, err)
	}

	c.log.Debug().Str("sheet", sheetName).Msg("Fetching sheet")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: request failed: %w", op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<20))
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read response: %w", op, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%s: %w: status %d", op, ErrSheetNotFound, resp.StatusCode)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%s: %w: status %d", op, ErrPermissionDenied, resp.StatusCode)
	case resp.StatusCode >= 300:
		return nil, fmt.Errorf("%s: unexpected status %d", op, resp.StatusCode)
	}

	rows, err := ParseGViz(body)
	if err != nil {
		return nil, fmt.Errorf("%s: sheet %q: %w", op, sheetName, err)
	}

	c.log.Debug().
		Int("rows", len(rows)).
		Str("sheet", sheetName).
		Msg("Successfully read sheet")

	return rows, nil
}

type gvizResponse struct {
	Status string `json:"status"`
	Errors []struct {
		Reason          string `json:"reason"`
		Message         string `json:"message"`
		DetailedMessage string `json:"detailed_message"`
	} `json:"errors"`
	Table struct {
		Cols []struct {
			ID    string `json:"id"`
			Label string `json:"label"`
			Type  string `json:"type"`
		} `json:"cols"`
		Rows []struct {
			C []*gvizCell `json:"c"`
		} `json:"rows"`
	} `json:"table"`
}

type gvizCell struct {
	V json.RawMessage `json:"v"`
	F *string         `json:"f"`
}

// ParseGViz decodes a GViz JSON response, including its JavaScript
// wrapper, into rows keyed by column label.
func ParseGViz(body []byte) ([]cell.Row, error) {
	start := bytes.IndexByte(body, '{')
	end := bytes.LastIndexByte(body, '}')
	if start < 0 || end < start {
		return nil, fmt.Errorf("malformed gviz response")
	}

	var resp gvizResponse
	if err := json.Unmarshal(body[start:end+1], &resp); err != nil {
		return nil, fmt.Errorf("failed to decode gviz response: %w", err)
	}
	if resp.Status == "error" {
		msg := "unknown error"
		if len(resp.Errors) > 0 {
			msg = resp.Errors[0].DetailedMessage
			if msg == "" {
				msg = resp.Errors[0].Message
			}
			if strings.Contains(strings.ToLower(msg), "invalid sheet") {
				return nil, fmt.Errorf("%w: %s", ErrSheetNotFound, msg)
			}
		}
		return nil, fmt.Errorf("gviz error: %s", msg)
	}

	cols := resp.Table.Cols
	labels := make([]string, len(cols))
	for i, col := range cols {
		label := strings.TrimSpace(col.Label)
		if label == "" {
			label = fmt.Sprintf("col_%d", i)
		}
		labels[i] = label
	}

	rows := make([]cell.Row, 0, len(resp.Table.Rows))
	for _, r := range resp.Table.Rows {
		row := make(cell.Row, len(cols))
		for i := range cols {
			var c *gvizCell
			if i < len(r.C) {
				c = r.C[i]
			}
			row[labels[i]] = decodeGVizCell(c, cols[i].Type)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func decodeGVizCell(c *gvizCell, colType string) cell.Value {
	if c == nil || len(c.V) == 0 || string(c.V) == "null" {
		return cell.NullValue()
	}

	var raw interface{}
	if err := json.Unmarshal(c.V, &raw); err != nil {
		return cell.NullValue()
	}

	isDateCol := colType == "date" || colType == "datetime"
	switch v := raw.(type) {
	case string:
		if isDateCol {
			if t, ok := normalize.ParseDate(v); ok {
				return cell.DateValue(t)
			}
		}
		return cell.StringValue(v)
	case float64:
		if isDateCol {
			// Serials outside the plausible range are amounts the engine
			// formatted as dates.
			if t := cell.SerialTime(v); cell.PlausibleYear(t) {
				return cell.DateValue(t)
			}
		}
		return cell.NumberValue(v)
	default:
		return cell.FromAny(v)
	}
}
