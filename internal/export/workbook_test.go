package export

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"cafedash/internal/normalize"
	"cafedash/internal/sheets"
	"cafedash/pkg/models"
)

func save(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "export.xlsx")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestOrdersWorkbookRoundTrip(t *testing.T) {
	orders := []models.OrderRecord{
		{Number: "OC-1", Location: "Centro", Supplier: "Acme", Requester: "Ana", NetTotal: 1000, Tax: 190, TotalWithTax: 1190, OrderDate: "2024-03-15", Status: "Pending"},
		{Number: "OC-2", Location: "Norte", Supplier: "Beta", TotalWithTax: 500, Status: "Aprobado"},
	}

	var buf bytes.Buffer
	require.NoError(t, Orders(&buf, orders))
	path := save(t, buf.Bytes())

	rows, err := sheets.NewXLSXReader(path).ReadRows(context.Background(), ordersSheet)
	require.NoError(t, err)

	got, stats := normalize.New(nil).Orders(rows)
	assert.Equal(t, 0, stats.Skipped)
	assert.Equal(t, orders, got)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{ordersSheet, summarySheet}, f.GetSheetList())

	count, err := f.GetCellValue(summarySheet, "B1")
	require.NoError(t, err)
	assert.Equal(t, "2", count)
	title, err := f.GetCellValue(summarySheet, "A7")
	require.NoError(t, err)
	assert.Equal(t, "Total por cafetería", title)
	top, err := f.GetCellValue(summarySheet, "A8")
	require.NoError(t, err)
	assert.Equal(t, "Centro", top)
}

func TestInvoicesWorkbookRoundTrip(t *testing.T) {
	paid := "2024-04-01"
	invoices := []models.InvoiceRecord{
		{ID: "F-1", Number: "1001", Location: "Centro", IssuerName: "Acme", TaxID: "76.123.456-7", IssueDate: "2024-03-15", PaymentDate: &paid, NetAmount: 1000, TaxAmount: 190, TotalAmount: 1190},
		{ID: "F-2", Location: "Norte", IssuerName: "Beta", TotalAmount: 70},
	}

	var buf bytes.Buffer
	require.NoError(t, Invoices(&buf, invoices))
	path := save(t, buf.Bytes())

	rows, err := sheets.NewXLSXReader(path).ReadRows(context.Background(), invoicesSheet)
	require.NoError(t, err)

	got, _ := normalize.New(nil).Invoices(rows)
	require.Len(t, got, 2)
	assert.Equal(t, invoices[0], got[0])
	assert.Nil(t, got[1].PaymentDate)
	assert.Equal(t, 70.0, got[1].TotalAmount)
}

func TestEmptyExports(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Orders(&buf, nil))
	rows, err := sheets.NewXLSXReader(save(t, buf.Bytes())).ReadRows(context.Background(), ordersSheet)
	require.NoError(t, err)
	assert.Empty(t, rows)

	buf.Reset()
	require.NoError(t, LineItems(&buf, []models.InvoiceLineItem{{InvoiceID: "F-1", Product: "Café", Quantity: 2, UnitPrice: 500, LineTotal: 1000}}))
	rows, err = sheets.NewXLSXReader(save(t, buf.Bytes())).ReadRows(context.Background(), "Detalles Facturas")
	require.NoError(t, err)
	items, _ := normalize.New(nil).LineItems(rows)
	require.Len(t, items, 1)
	assert.Equal(t, 1000.0, items[0].LineTotal)
}
