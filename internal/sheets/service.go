package sheets

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
	"golang.org/x/time/rate"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"cafedash/internal/cell"
	"cafedash/internal/config"
	"cafedash/internal/logger"
)

// Service reads sheets through the Sheets API v4 with a service account.
type Service struct {
	sheetsService *sheets.Service
	spreadsheetID string
	limiter       *rate.Limiter
	log           zerolog.Logger
}

// NewSheetsService creates a Sheets API reader for the given spreadsheet id
// or URL. limiter may be nil.
func NewSheetsService(ctx context.Context, spreadsheetRef string, creds config.Credentials, limiter *rate.Limiter) (*Service, error) {
	const op = "NewSheetsService"

	client, err := serviceAccountClient(ctx, creds)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	svc, err := newService(ctx, spreadsheetRef, limiter, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return svc, nil
}

func newService(ctx context.Context, spreadsheetRef string, limiter *rate.Limiter, opts ...option.ClientOption) (*Service, error) {
	log := logger.WithComponent("sheets")

	spreadsheetID, err := SpreadsheetID(spreadsheetRef)
	if err != nil {
		return nil, fmt.Errorf("failed to extract spreadsheet ID: %w", err)
	}
	log.Debug().Str("spreadsheet_id", spreadsheetID).Msg("Extracted spreadsheet ID")

	sheetsService, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &Service{
		sheetsService: sheetsService,
		spreadsheetID: spreadsheetID,
		limiter:       limiter,
		log:           log,
	}, nil
}

// serviceAccountClient builds a read-only OAuth2 client from the first
// configured credential form.
func serviceAccountClient(ctx context.Context, creds config.Credentials) (*http.Client, error) {
	var keyJSON []byte
	switch {
	case creds.File != "":
		data, err := os.ReadFile(creds.File)
		if err != nil {
			return nil, fmt.Errorf("failed to read credentials file: %w", err)
		}
		keyJSON = data
	case creds.JSON != "":
		keyJSON = []byte(creds.JSON)
	case creds.Email != "" && creds.PrivateKey != "":
		cfg := &jwt.Config{
			Email: creds.Email,
			// Keys pasted into env files usually carry literal \n sequences.
			PrivateKey: []byte(strings.ReplaceAll(creds.PrivateKey, `\n`, "\n")),
			Scopes:     []string{sheets.SpreadsheetsReadonlyScope},
			TokenURL:   google.JWTTokenURL,
		}
		return cfg.Client(ctx), nil
	default:
		return nil, config.ErrMissingCredentials
	}

	cfg, err := google.JWTConfigFromJSON(keyJSON, sheets.SpreadsheetsReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse credentials: %w", err)
	}
	return cfg.Client(ctx), nil
}

var (
	spreadsheetURLPattern = regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9-_]+)`)
	spreadsheetIDPattern  = regexp.MustCompile(`^[a-zA-Z0-9-_]+$`)
)

// SpreadsheetID accepts either a bare spreadsheet id or a Google Sheets URL.
func SpreadsheetID(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if matches := spreadsheetURLPattern.FindStringSubmatch(ref); len(matches) == 2 {
		return matches[1], nil
	}
	if spreadsheetIDPattern.MatchString(ref) {
		return ref, nil
	}
	return "", fmt.Errorf("invalid spreadsheet reference %q", ref)
}

// quoteSheet renders a sheet name as an A1 range covering the whole sheet.
func quoteSheet(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

// SpreadsheetID returns the id of the spreadsheet this service reads.
func (s *Service) SpreadsheetID() string {
	return s.spreadsheetID
}

// ReadRows reads a whole sheet of the configured spreadsheet.
func (s *Service) ReadRows(ctx context.Context, sheetName string) ([]cell.Row, error) {
	return s.ReadSpreadsheetRows(ctx, s.spreadsheetID, sheetName)
}

// ReadSpreadsheetRows reads a whole sheet. The first row is the header.
// Values are requested unformatted so numbers and date serials arrive as
// numbers and text stays text.
func (s *Service) ReadSpreadsheetRows(ctx context.Context, spreadsheetID, sheetName string) ([]cell.Row, error) {
	const op = "ReadSpreadsheetRows"

	if err := wait(ctx, s.limiter); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rangeSpec := quoteSheet(sheetName)
	s.log.Debug().
		Str("spreadsheet_id", spreadsheetID).
		Str("range", rangeSpec).
		Msg("Reading range from spreadsheet")

	resp, err := s.sheetsService.Spreadsheets.Values.Get(spreadsheetID, rangeSpec).
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("SERIAL_NUMBER").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read sheet %q: %w", op, sheetName, classify(err))
	}

	rows := cell.FromGrid(resp.Values)
	s.log.Debug().
		Int("rows", len(rows)).
		Str("sheet", sheetName).
		Msg("Successfully read sheet")

	return rows, nil
}

// classify maps Sheets API failures onto the package sentinels, keeping the
// original error in the chain.
func classify(err error) error {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return err
	}
	switch {
	case apiErr.Code == http.StatusNotFound,
		apiErr.Code == http.StatusBadRequest && strings.Contains(apiErr.Message, "Unable to parse range"):
		return fmt.Errorf("%w: %w", ErrSheetNotFound, err)
	case apiErr.Code == http.StatusForbidden, apiErr.Code == http.StatusUnauthorized:
		return fmt.Errorf("%w: %w", ErrPermissionDenied, err)
	default:
		return err
	}
}

func wait(ctx context.Context, limiter *rate.Limiter) error {
	if limiter == nil {
		return nil
	}
	if err := limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}
	return nil
}
