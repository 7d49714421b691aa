// Package export writes filtered dashboard records to XLSX workbooks.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"cafedash/internal/aggregate"
	"cafedash/pkg/models"
)

const (
	ordersSheet   = "Ordenes"
	invoicesSheet = "Facturas"
	summarySheet  = "Resumen"
)

var (
	orderHeader = []interface{}{
		"Número de Orden", "Cafetería", "Solicitante", "Proveedor", "Fecha del pedido",
		"Estado", "Total Neto", "IVA", "Total con IVA", "Observación", "Link",
	}
	invoiceHeader = []interface{}{
		"ID Factura", "Numero Factura", "Localidad", "Nombre Emisor", "Rut Emisor",
		"Tipo Documento", "Fecha emision", "Fecha recepción", "Fecha vencimiento", "Fecha Pago",
		"Forma de pago", "Condición Pago", "Monto Neto", "IVA", "Monto Total", "Link",
	}
)

// workbook wraps an excelize file with the header and money styles.
type workbook struct {
	f      *excelize.File
	header int
	money  int
}

func newWorkbook() (*workbook, error) {
	f := excelize.NewFile()

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#E0E0E0"}},
	})
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	// "#,##0" renders CLP without decimals.
	money, err := f.NewStyle(&excelize.Style{NumFmt: 3})
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to create money style: %w", err)
	}

	return &workbook{f: f, header: header, money: money}, nil
}

// sheet creates (or renames the default sheet into) name and writes the
// header row.
func (w *workbook) sheet(name string, header []interface{}) error {
	if w.f.SheetCount == 1 && w.f.GetSheetName(0) == "Sheet1" {
		if err := w.f.SetSheetName("Sheet1", name); err != nil {
			return err
		}
	} else if _, err := w.f.NewSheet(name); err != nil {
		return err
	}

	if err := w.f.SetSheetRow(name, "A1", &header); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := w.f.SetCellStyle(name, "A1", last, w.header); err != nil {
		return err
	}
	return w.f.SetPanes(name, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
}

func (w *workbook) row(sheet string, index int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, index)
	if err != nil {
		return err
	}
	return w.f.SetSheetRow(sheet, cell, &values)
}

// moneyColumns applies the money style to columns [from, to] of rows 2..last.
func (w *workbook) moneyColumns(sheet string, from, to, last int) error {
	if last < 2 {
		return nil
	}
	start, err := excelize.CoordinatesToCellName(from, 2)
	if err != nil {
		return err
	}
	end, err := excelize.CoordinatesToCellName(to, last)
	if err != nil {
		return err
	}
	return w.f.SetCellStyle(sheet, start, end, w.money)
}

func (w *workbook) widths(sheet string, n int) error {
	last, err := excelize.ColumnNumberToName(n)
	if err != nil {
		return err
	}
	return w.f.SetColWidth(sheet, "A", last, 18)
}

func (w *workbook) pairs(sheet string, startRow int, title string, pairs []aggregate.Pair) (int, error) {
	if err := w.row(sheet, startRow, []interface{}{title}); err != nil {
		return 0, err
	}
	titleCell, _ := excelize.CoordinatesToCellName(1, startRow)
	if err := w.f.SetCellStyle(sheet, titleCell, titleCell, w.header); err != nil {
		return 0, err
	}
	r := startRow + 1
	for _, p := range pairs {
		if err := w.row(sheet, r, []interface{}{p.Label, p.Value}); err != nil {
			return 0, err
		}
		r++
	}
	return r + 1, nil
}

func (w *workbook) finish(out io.Writer) error {
	defer w.f.Close()
	w.f.SetActiveSheet(0)
	if _, err := w.f.WriteTo(out); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func optional(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Orders writes orders, plus a summary sheet with the orders charts, as an
// XLSX workbook to out.
func Orders(out io.Writer, orders []models.OrderRecord) error {
	const op = "export.Orders"

	w, err := newWorkbook()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := writeOrders(w, orders); err != nil {
		_ = w.f.Close()
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := w.finish(out); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func writeOrders(w *workbook, orders []models.OrderRecord) error {
	if err := w.sheet(ordersSheet, orderHeader); err != nil {
		return err
	}
	for i, o := range orders {
		values := []interface{}{
			o.Number, o.Location, o.Requester, o.Supplier, o.OrderDate,
			o.Status, o.NetTotal, o.Tax, o.TotalWithTax, o.Note, o.Link,
		}
		if err := w.row(ordersSheet, i+2, values); err != nil {
			return err
		}
	}
	if err := w.moneyColumns(ordersSheet, 7, 9, len(orders)+1); err != nil {
		return err
	}
	if err := w.widths(ordersSheet, len(orderHeader)); err != nil {
		return err
	}

	if _, err := w.f.NewSheet(summarySheet); err != nil {
		return err
	}
	summary := aggregate.SummarizeOrders(orders)
	rows := [][]interface{}{
		{"Órdenes", summary.Count},
		{"Total con IVA", summary.TotalValue},
		{"Promedio", summary.AverageValue},
		{"Total Neto", summary.NetTotal},
		{"IVA", summary.TaxTotal},
	}
	for i, r := range rows {
		if err := w.row(summarySheet, i+1, r); err != nil {
			return err
		}
	}

	charts := aggregate.BuildOrderCharts(orders)
	next := len(rows) + 2
	for _, section := range []struct {
		title string
		pairs []aggregate.Pair
	}{
		{"Total por cafetería", charts.ValueByLocation},
		{"Órdenes por estado", charts.CountByStatus},
		{"Total por proveedor", charts.ValueBySupplier},
		{"Top solicitantes", charts.TopRequestersByValue},
	} {
		n, err := w.pairs(summarySheet, next, section.title, section.pairs)
		if err != nil {
			return err
		}
		next = n
	}
	return w.f.SetColWidth(summarySheet, "A", "B", 28)
}

// Invoices writes invoices, plus a summary sheet with the invoices charts,
// as an XLSX workbook to out.
func Invoices(out io.Writer, invoices []models.InvoiceRecord) error {
	const op = "export.Invoices"

	w, err := newWorkbook()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := writeInvoices(w, invoices); err != nil {
		_ = w.f.Close()
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := w.finish(out); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func writeInvoices(w *workbook, invoices []models.InvoiceRecord) error {
	if err := w.sheet(invoicesSheet, invoiceHeader); err != nil {
		return err
	}
	for i, r := range invoices {
		values := []interface{}{
			r.ID, r.Number, r.Location, r.IssuerName, r.TaxID,
			r.DocumentType, r.IssueDate, r.ReceiptDate, r.DueDate, optional(r.PaymentDate),
			r.PaymentMethod, r.PaymentTerms, r.NetAmount, r.TaxAmount, r.TotalAmount, r.Link,
		}
		if err := w.row(invoicesSheet, i+2, values); err != nil {
			return err
		}
	}
	if err := w.moneyColumns(invoicesSheet, 13, 15, len(invoices)+1); err != nil {
		return err
	}
	if err := w.widths(invoicesSheet, len(invoiceHeader)); err != nil {
		return err
	}

	if _, err := w.f.NewSheet(summarySheet); err != nil {
		return err
	}
	summary := aggregate.SummarizeInvoices(invoices)
	rows := [][]interface{}{
		{"Facturas", summary.Count},
		{"Monto Total", summary.TotalAmount},
		{"Promedio", summary.AverageAmount},
		{"IVA", summary.TaxTotal},
		{"Pagadas", summary.Paid},
		{"Pendientes", summary.Unpaid},
	}
	for i, r := range rows {
		if err := w.row(summarySheet, i+1, r); err != nil {
			return err
		}
	}

	charts := aggregate.BuildInvoiceCharts(invoices)
	next := len(rows) + 2
	for _, section := range []struct {
		title string
		pairs []aggregate.Pair
	}{
		{"Monto por localidad", charts.AmountByLocation},
		{"Top emisores", charts.TopIssuersByAmount},
		{"Facturas por forma de pago", charts.CountByPaymentMethod},
	} {
		n, err := w.pairs(summarySheet, next, section.title, section.pairs)
		if err != nil {
			return err
		}
		next = n
	}
	return w.f.SetColWidth(summarySheet, "A", "B", 28)
}

// LineItems writes the line items of invoices to a single-sheet workbook.
func LineItems(out io.Writer, items []models.InvoiceLineItem) error {
	const op = "export.LineItems"
	const sheet = "Detalles Facturas"

	w, err := newWorkbook()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	write := func() error {
		header := []interface{}{"ID Factura", "Producto", "Cantidad", "Precio Unitario", "Precio Total"}
		if err := w.sheet(sheet, header); err != nil {
			return err
		}
		for i, it := range items {
			if err := w.row(sheet, i+2, []interface{}{it.InvoiceID, it.Product, it.Quantity, it.UnitPrice, it.LineTotal}); err != nil {
				return err
			}
		}
		if err := w.moneyColumns(sheet, 4, 5, len(items)+1); err != nil {
			return err
		}
		return w.widths(sheet, len(header))
	}
	if err := write(); err != nil {
		_ = w.f.Close()
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := w.finish(out); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
