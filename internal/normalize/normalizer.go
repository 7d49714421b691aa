// Package normalize turns raw sheet rows into typed records.
//
// Row defects never surface as errors: malformed amounts become 0,
// unparseable dates become "" (payment dates keep their raw text), and rows
// without their unique key are skipped with a debug log line.
package normalize

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"cafedash/internal/cell"
	"cafedash/internal/logger"
	"cafedash/pkg/models"
)

// Stats reports how many rows a normalization pass kept and skipped.
type Stats struct {
	Rows    int
	Kept    int
	Skipped int
}

// Normalizer converts sheet rows into records using an alias table.
type Normalizer struct {
	aliases Aliases
	log     zerolog.Logger
}

// New creates a Normalizer. A nil table means DefaultAliases.
func New(aliases Aliases) *Normalizer {
	if aliases == nil {
		aliases = DefaultAliases()
	}
	return &Normalizer{
		aliases: aliases,
		log:     logger.WithComponent("normalize"),
	}
}

// WithLogger returns a copy of n that logs to l.
func (n *Normalizer) WithLogger(l zerolog.Logger) *Normalizer {
	c := *n
	c.log = l
	return &c
}

func (n *Normalizer) value(row cell.Row, f Field) cell.Value {
	return row.Lookup(n.aliases[f]...)
}

func (n *Normalizer) text(row cell.Row, f Field) string {
	return n.value(row, f).Text()
}

func (n *Normalizer) amount(row cell.Row, f Field) float64 {
	return Amount(n.value(row, f))
}

func (n *Normalizer) date(row cell.Row, f Field) string {
	return Date(n.value(row, f))
}

func (n *Normalizer) skip(sheet string, index int, reason string) {
	n.log.Debug().
		Str("sheet", sheet).
		Int("row", index+2). // header is row 1
		Str("reason", reason).
		Msg("Skipping row")
}

// Orders normalizes the purchase orders sheet.
func (n *Normalizer) Orders(rows []cell.Row) ([]models.OrderRecord, Stats) {
	stats := Stats{Rows: len(rows)}
	orders := make([]models.OrderRecord, 0, len(rows))

	for i, row := range rows {
		number := n.text(row, OrderNumber)
		if number == "" {
			n.skip("orders", i, "missing order number")
			stats.Skipped++
			continue
		}

		status := n.text(row, OrderStatus)
		if status == "" {
			status = models.DefaultOrderStatus
		}

		orders = append(orders, models.OrderRecord{
			Number:       number,
			Location:     n.text(row, OrderLocation),
			Requester:    n.text(row, OrderRequester),
			Supplier:     n.text(row, OrderSupplier),
			NetTotal:     n.amount(row, OrderNet),
			Tax:          n.amount(row, OrderTax),
			TotalWithTax: n.amount(row, OrderTotal),
			OrderDate:    n.date(row, OrderDate),
			Status:       status,
			Note:         n.text(row, OrderNote),
			Link:         n.text(row, OrderLink),
		})
	}

	stats.Kept = len(orders)
	return orders, stats
}

// Invoices normalizes the supplier invoices sheet.
func (n *Normalizer) Invoices(rows []cell.Row) ([]models.InvoiceRecord, Stats) {
	stats := Stats{Rows: len(rows)}
	invoices := make([]models.InvoiceRecord, 0, len(rows))

	for i, row := range rows {
		id := n.text(row, InvoiceID)
		if id == "" {
			n.skip("invoices", i, "missing invoice id")
			stats.Skipped++
			continue
		}

		// Any recorded payment marks the invoice paid, even when the date
		// itself cannot be read; the raw text is kept in that case.
		var paymentDate *string
		if raw := strings.TrimSpace(n.text(row, InvoicePaymentDate)); raw != "" {
			d := n.date(row, InvoicePaymentDate)
			if d == "" {
				d = raw
			}
			paymentDate = &d
		}

		invoices = append(invoices, models.InvoiceRecord{
			ID:            id,
			Number:        n.text(row, InvoiceNumber),
			Location:      n.text(row, InvoiceLocation),
			IssueDate:     n.date(row, InvoiceIssueDate),
			ReceiptDate:   n.date(row, InvoiceReceiptDate),
			DueDate:       n.date(row, InvoiceDueDate),
			PaymentDate:   paymentDate,
			TaxID:         n.text(row, InvoiceTaxID),
			IssuerName:    n.text(row, InvoiceIssuer),
			DocumentType:  n.text(row, InvoiceDocumentType),
			PaymentMethod: n.text(row, InvoicePaymentMethod),
			PaymentTerms:  n.text(row, InvoicePaymentTerms),
			NetAmount:     n.amount(row, InvoiceNet),
			TaxAmount:     n.amount(row, InvoiceTax),
			TotalAmount:   n.amount(row, InvoiceTotal),
			Note:          n.text(row, InvoiceNote),
			Link:          n.text(row, InvoiceLink),
		})
	}

	stats.Kept = len(invoices)
	return invoices, stats
}

// LineItems normalizes the invoice details sheet.
func (n *Normalizer) LineItems(rows []cell.Row) ([]models.InvoiceLineItem, Stats) {
	stats := Stats{Rows: len(rows)}
	items := make([]models.InvoiceLineItem, 0, len(rows))

	for i, row := range rows {
		invoiceID := n.text(row, ItemInvoiceID)
		product := n.text(row, ItemProduct)
		if invoiceID == "" || product == "" {
			n.skip("invoice_items", i, "missing invoice id or product")
			stats.Skipped++
			continue
		}

		items = append(items, models.InvoiceLineItem{
			InvoiceID: invoiceID,
			Product:   product,
			Quantity:  n.amount(row, ItemQuantity),
			UnitPrice: n.amount(row, ItemUnitPrice),
			LineTotal: n.amount(row, ItemTotal),
		})
	}

	stats.Kept = len(items)
	return items, stats
}

// Providers builds the provider catalogue from the providers sheet and the
// products sheet. Provider ids are unique: a missing id is derived from the
// name and collisions get a numeric suffix. Products attach by provider id,
// or by case-insensitive provider name.
func (n *Normalizer) Providers(providerRows, productRows []cell.Row) ([]models.Provider, Stats) {
	stats := Stats{Rows: len(providerRows) + len(productRows)}

	used := make(map[string]bool, len(providerRows))
	providers := make([]models.Provider, 0, len(providerRows))
	for i, row := range providerRows {
		name := n.text(row, ProviderName)
		if name == "" {
			n.skip("providers", i, "missing provider name")
			stats.Skipped++
			continue
		}

		id := n.text(row, ProviderID)
		if id == "" {
			id = Slug(name)
		}
		unique := id
		for suffix := 1; used[unique]; suffix++ {
			unique = fmt.Sprintf("%s-%d", id, suffix)
		}
		used[unique] = true

		providers = append(providers, models.Provider{ID: unique, Name: name, Products: []models.Product{}})
	}

	byID := make(map[string]int, len(providers))
	byName := make(map[string]string, len(providers))
	for i, p := range providers {
		byID[p.ID] = i
		byName[strings.ToLower(p.Name)] = p.ID
	}

	for i, row := range productRows {
		providerID := n.text(row, ProductProviderID)
		if providerID == "" {
			providerID = byName[strings.ToLower(n.text(row, ProductProvider))]
		}
		idx, ok := byID[providerID]
		if !ok {
			n.skip("products", i, "unknown provider")
			stats.Skipped++
			continue
		}

		name := n.text(row, ProductName)
		if name == "" {
			n.skip("products", i, "missing product name")
			stats.Skipped++
			continue
		}

		unit := "unidad"
		if perBox := n.amount(row, ProductUnitsPerBox); perBox > 0 {
			unit = "caja x " + cell.NumberValue(perBox).Text()
		}

		providers[idx].Products = append(providers[idx].Products, models.Product{
			Name:      name,
			UnitPrice: n.amount(row, ProductUnitPrice),
			Unit:      unit,
			Category:  n.text(row, ProductCategory),
		})
	}

	stats.Kept = len(providers)
	return providers, stats
}

// Managers normalizes the location managers sheet. Emails are lower-cased
// and an empty location means every location.
func (n *Normalizer) Managers(rows []cell.Row) ([]models.Manager, Stats) {
	stats := Stats{Rows: len(rows)}
	managers := make([]models.Manager, 0, len(rows))

	for i, row := range rows {
		name := n.text(row, ManagerName)
		email := strings.ToLower(n.text(row, ManagerEmail))
		if name == "" || email == "" {
			n.skip("managers", i, "missing name or mail")
			stats.Skipped++
			continue
		}

		location := n.text(row, ManagerLocation)
		if location == "" {
			location = models.DefaultManagerLocation
		}

		managers = append(managers, models.Manager{Name: name, Email: email, Location: location})
	}

	stats.Kept = len(managers)
	return managers, stats
}
