package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"cafedash/internal/logger"
)

var (
	// ErrMissingSheetID is returned when no spreadsheet id is configured.
	ErrMissingSheetID = errors.New("GOOGLE_SHEET_ID is required")

	// ErrMissingCredentials is returned when the Sheets API source has no
	// service account to authenticate with.
	ErrMissingCredentials = errors.New("service account credentials are required for the api source")

	// ErrMissingWebhook is returned by operations that submit orders when no
	// webhook is configured.
	ErrMissingWebhook = errors.New("ORDER_WEBHOOK_URL is required")

	// ErrInvalidSource is returned for an unknown SHEET_SOURCE value.
	ErrInvalidSource = errors.New("SHEET_SOURCE must be api, gviz or xlsx")

	// ErrMissingWorkbook is returned when the xlsx source has no file to read.
	ErrMissingWorkbook = errors.New("XLSX_FILE is required for the xlsx source")
)

// Sheet source kinds.
const (
	SourceAPI  = "api"
	SourceGViz = "gviz"
	SourceXLSX = "xlsx"
)

// SheetNames holds the tab names of every logical dataset.
type SheetNames struct {
	Orders       string `envconfig:"ORDERS" default:"Ordenes"`
	Invoices     string `envconfig:"INVOICES" default:"Facturas"`
	InvoiceItems string `envconfig:"INVOICE_ITEMS" default:"Detalles Facturas"`
	Providers    string `envconfig:"PROVIDERS" default:"Provveedores"`
	Products     string `envconfig:"PRODUCTS" default:"Base productos"`
	Managers     string `envconfig:"MANAGERS" default:"Encargados"`
}

// Credentials describes the service account used by the Sheets API source.
// The first non-empty form wins: File, JSON, then Email plus PrivateKey.
type Credentials struct {
	File       string `envconfig:"GOOGLE_APPLICATION_CREDENTIALS"`
	JSON       string `envconfig:"GOOGLE_CREDENTIALS"`
	Email      string `envconfig:"GOOGLE_SERVICE_ACCOUNT_EMAIL"`
	PrivateKey string `envconfig:"GOOGLE_PRIVATE_KEY"`
}

// Empty reports whether no credential form is set.
func (c Credentials) Empty() bool {
	return c.File == "" && c.JSON == "" && (c.Email == "" || c.PrivateKey == "")
}

type Config struct {
	AppEnv string `envconfig:"APP_ENV" default:"development"`

	// Spreadsheet
	SheetID     string     `envconfig:"GOOGLE_SHEET_ID"`
	Source      string     `envconfig:"SHEET_SOURCE" default:"api"`
	Sheets      SheetNames `envconfig:"SHEET"`
	AliasesFile string     `envconfig:"ALIASES_FILE"`
	XLSXFile    string     `envconfig:"XLSX_FILE"`

	// Credential keys are read without a prefix.
	Credentials Credentials

	// Upstream throttling, requests per second and burst.
	SheetsRPS   float64 `envconfig:"SHEETS_RPS" default:"1"`
	SheetsBurst int     `envconfig:"SHEETS_BURST" default:"5"`

	// Row cache, disabled when RedisAddr is empty.
	RedisAddr     string        `envconfig:"REDIS_ADDR"`
	RedisPassword string        `envconfig:"REDIS_PASSWORD"`
	RedisDB       int           `envconfig:"REDIS_DB" default:"0"`
	CacheTTL      time.Duration `envconfig:"CACHE_TTL" default:"30s"`

	// Orders
	OrderWebhookURL string        `envconfig:"ORDER_WEBHOOK_URL"`
	WebhookTimeout  time.Duration `envconfig:"WEBHOOK_TIMEOUT" default:"15s"`
	SendOrderPerMin int           `envconfig:"SEND_ORDER_RATE_LIMIT" default:"10"`

	// HTTP server
	Addr            string        `envconfig:"ADDR" default:":3001"`
	ReadTimeout     time.Duration `envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"WRITE_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`

	// Logging
	LogLevel      string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat     string `envconfig:"LOG_FORMAT" default:"console"`
	LogTimeFormat string `envconfig:"LOG_TIME_FORMAT" default:"2006-01-02T15:04:05Z07:00"`
	LogOutput     string `envconfig:"LOG_OUTPUT" default:"stderr"`
}

// Load reads the process environment into a Config and validates it.
// The returned Config is meant to be built once and passed by reference.
func Load() (*Config, error) {
	const op = "config.Load"

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("%s: failed to process environment: %w", op, err)
	}

	if err := cfg.Validate(); err != nil {
		return &cfg, fmt.Errorf("%s: config validation failed: %w", op, err)
	}

	return &cfg, nil
}

// Validate checks the identifiers every data load needs.
func (c *Config) Validate() error {
	c.Source = strings.ToLower(strings.TrimSpace(c.Source))

	switch c.Source {
	case SourceAPI:
		if strings.TrimSpace(c.SheetID) == "" {
			return ErrMissingSheetID
		}
		if c.Credentials.Empty() {
			return ErrMissingCredentials
		}
	case SourceGViz:
		if strings.TrimSpace(c.SheetID) == "" {
			return ErrMissingSheetID
		}
	case SourceXLSX:
		if strings.TrimSpace(c.XLSXFile) == "" {
			return ErrMissingWorkbook
		}
	default:
		return fmt.Errorf("%w: got %q", ErrInvalidSource, c.Source)
	}
	if c.SheetsRPS <= 0 {
		return fmt.Errorf("SHEETS_RPS must be positive, got %v", c.SheetsRPS)
	}
	return nil
}

// RequireWebhook returns ErrMissingWebhook when order submission is not configured.
func (c *Config) RequireWebhook() error {
	if strings.TrimSpace(c.OrderWebhookURL) == "" {
		return ErrMissingWebhook
	}
	return nil
}

// CacheEnabled reports whether a Redis row cache is configured.
func (c *Config) CacheEnabled() bool {
	return c.RedisAddr != "" && c.CacheTTL > 0
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}
