package filter

import (
	"fmt"
	"strings"

	"cafedash/pkg/models"
)

// DateField selects which invoice date a date range compares against.
type DateField string

const (
	IssueDate   DateField = "issue"
	ReceiptDate DateField = "receipt"
	DueDate     DateField = "due"
)

// ParseDateField accepts the English names and the sheet's Spanish ones.
// An empty string selects the issue date.
func ParseDateField(s string) (DateField, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "issue", "emision", "emisión":
		return IssueDate, nil
	case "receipt", "recepcion", "recepción":
		return ReceiptDate, nil
	case "due", "vencimiento":
		return DueDate, nil
	default:
		return "", fmt.Errorf("unknown date field %q", s)
	}
}

func (d DateField) of(r models.InvoiceRecord) string {
	switch d {
	case ReceiptDate:
		return r.ReceiptDate
	case DueDate:
		return r.DueDate
	default:
		return r.IssueDate
	}
}

// InvoiceFilters is the filter state of the invoices dashboard.
type InvoiceFilters struct {
	Locations      []string  `json:"locations,omitempty"`
	Issuers        []string  `json:"issuers,omitempty"`
	DocumentTypes  []string  `json:"document_types,omitempty"`
	PaymentMethods []string  `json:"payment_methods,omitempty"`
	PaymentTerms   []string  `json:"payment_terms,omitempty"`
	AmountMin      *float64  `json:"amount_min,omitempty"`
	AmountMax      *float64  `json:"amount_max,omitempty"`
	DateField      DateField `json:"date_field,omitempty"`
	DateFrom       *string   `json:"date_from,omitempty"`
	DateTo         *string   `json:"date_to,omitempty"`
	Search         string    `json:"search,omitempty"`
}

func (f InvoiceFilters) predicates() []Predicate[models.InvoiceRecord] {
	return []Predicate[models.InvoiceRecord]{
		OneOf(f.Locations, func(r models.InvoiceRecord) string { return r.Location }),
		OneOf(f.Issuers, func(r models.InvoiceRecord) string { return r.IssuerName }),
		OneOf(f.DocumentTypes, func(r models.InvoiceRecord) string { return r.DocumentType }),
		OneOf(f.PaymentMethods, func(r models.InvoiceRecord) string { return r.PaymentMethod }),
		OneOf(f.PaymentTerms, func(r models.InvoiceRecord) string { return r.PaymentTerms }),
		Between(f.AmountMin, f.AmountMax, func(r models.InvoiceRecord) float64 { return r.TotalAmount }),
		DateWithin(f.DateFrom, f.DateTo, f.DateField.of),
		Contains(f.Search,
			func(r models.InvoiceRecord) string { return r.Number },
			func(r models.InvoiceRecord) string { return r.TaxID },
		),
	}
}

// Active reports whether any dimension restricts the result.
func (f InvoiceFilters) Active() bool {
	for _, p := range f.predicates() {
		if p != nil {
			return true
		}
	}
	return false
}

// Invoices returns the invoices matching f, in input order.
func Invoices(records []models.InvoiceRecord, f InvoiceFilters) []models.InvoiceRecord {
	return Apply(records, f.predicates()...)
}

// InvoiceOptions lists the values a filter panel can offer for invoices.
type InvoiceOptions struct {
	Locations      []string   `json:"locations"`
	Issuers        []string   `json:"issuers"`
	DocumentTypes  []string   `json:"document_types"`
	PaymentMethods []string   `json:"payment_methods"`
	PaymentTerms   []string   `json:"payment_terms"`
	Amount         ValueRange `json:"amount"`
}

// InvoiceOptionsOf collects the distinct dimension values of records.
func InvoiceOptionsOf(records []models.InvoiceRecord) InvoiceOptions {
	return InvoiceOptions{
		Locations:      Distinct(records, func(r models.InvoiceRecord) string { return r.Location }),
		Issuers:        Distinct(records, func(r models.InvoiceRecord) string { return r.IssuerName }),
		DocumentTypes:  Distinct(records, func(r models.InvoiceRecord) string { return r.DocumentType }),
		PaymentMethods: Distinct(records, func(r models.InvoiceRecord) string { return r.PaymentMethod }),
		PaymentTerms:   Distinct(records, func(r models.InvoiceRecord) string { return r.PaymentTerms }),
		Amount:         RangeOf(records, func(r models.InvoiceRecord) float64 { return r.TotalAmount }),
	}
}
