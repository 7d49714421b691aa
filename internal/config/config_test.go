package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"GOOGLE_SHEET_ID", "SHEET_SOURCE", "GOOGLE_APPLICATION_CREDENTIALS",
		"GOOGLE_CREDENTIALS", "GOOGLE_SERVICE_ACCOUNT_EMAIL", "GOOGLE_PRIVATE_KEY",
		"ORDER_WEBHOOK_URL", "REDIS_ADDR", "XLSX_FILE",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("GOOGLE_SHEET_ID", "sheet-123")
	t.Setenv("GOOGLE_CREDENTIALS", `{"type":"service_account"}`)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sheet-123", cfg.SheetID)
	assert.Equal(t, SourceAPI, cfg.Source)
	assert.Equal(t, "Ordenes", cfg.Sheets.Orders)
	assert.Equal(t, "Detalles Facturas", cfg.Sheets.InvoiceItems)
	assert.Equal(t, "Provveedores", cfg.Sheets.Providers)
	assert.Equal(t, "Encargados", cfg.Sheets.Managers)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
	assert.Equal(t, ":3001", cfg.Addr)
	assert.False(t, cfg.CacheEnabled())
	assert.ErrorIs(t, cfg.RequireWebhook(), ErrMissingWebhook)
}

func TestLoadSheetOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("GOOGLE_SHEET_ID", "sheet-123")
	t.Setenv("SHEET_SOURCE", "GViz")
	t.Setenv("SHEET_ORDERS", "Pedidos")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, SourceGViz, cfg.Source)
	assert.Equal(t, "Pedidos", cfg.Sheets.Orders)
	assert.Equal(t, "Facturas", cfg.Sheets.Invoices)
	assert.True(t, cfg.CacheEnabled())
}

func TestLoadMissingSheetID(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingSheetID)
	require.NotNil(t, cfg, "config is still returned so logging can be set up")
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{
			name:    "api without credentials",
			cfg:     Config{SheetID: "x", Source: "api", SheetsRPS: 1},
			wantErr: ErrMissingCredentials,
		},
		{
			name: "api with email and key",
			cfg: Config{SheetID: "x", Source: "api", SheetsRPS: 1, Credentials: Credentials{
				Email: "svc@example.iam.gserviceaccount.com", PrivateKey: "key",
			}},
		},
		{
			name:    "email without key",
			cfg:     Config{SheetID: "x", Source: "api", SheetsRPS: 1, Credentials: Credentials{Email: "svc@example.com"}},
			wantErr: ErrMissingCredentials,
		},
		{
			name:    "unknown source",
			cfg:     Config{SheetID: "x", Source: "csv", SheetsRPS: 1},
			wantErr: ErrInvalidSource,
		},
		{
			name: "xlsx needs no sheet id",
			cfg:  Config{Source: "xlsx", XLSXFile: "export.xlsx", SheetsRPS: 1},
		},
		{
			name:    "xlsx without file",
			cfg:     Config{Source: "xlsx", SheetsRPS: 1},
			wantErr: ErrMissingWorkbook,
		},
		{
			name:    "blank sheet id",
			cfg:     Config{SheetID: "  ", Source: "gviz", SheetsRPS: 1},
			wantErr: ErrMissingSheetID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
