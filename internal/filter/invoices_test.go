package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cafedash/pkg/models"
)

func sampleInvoices() []models.InvoiceRecord {
	paid := "2024-02-10"
	return []models.InvoiceRecord{
		{ID: "1", Number: "F-100", TaxID: "76.111.111-1", Location: "Centro", IssuerName: "Acme", PaymentMethod: "Transferencia",
			TotalAmount: 1190, IssueDate: "2024-01-10", ReceiptDate: "2024-01-12", DueDate: "2024-02-10", PaymentDate: &paid},
		{ID: "2", Number: "F-200", TaxID: "77.222.222-2", Location: "Providencia", IssuerName: "Other", PaymentMethod: "Crédito",
			TotalAmount: 5000, IssueDate: "2024-01-31", ReceiptDate: "2024-02-02", DueDate: ""},
		{ID: "3", Number: "B-7", TaxID: "76.111.111-1", Location: "Centro", IssuerName: "Acme", DocumentType: "Boleta",
			TotalAmount: 300, IssueDate: "", ReceiptDate: "2024-01-20", DueDate: "2024-01-25"},
	}
}

func ids(invoices []models.InvoiceRecord) []string {
	out := make([]string, 0, len(invoices))
	for _, r := range invoices {
		out = append(out, r.ID)
	}
	return out
}

func TestInvoiceSearchMatchesNumberOrTaxID(t *testing.T) {
	assert.Equal(t, []string{"1", "3"}, ids(Invoices(sampleInvoices(), InvoiceFilters{Search: "76.111"})))
	assert.Equal(t, []string{"2"}, ids(Invoices(sampleInvoices(), InvoiceFilters{Search: "f-2"})))
	assert.Empty(t, Invoices(sampleInvoices(), InvoiceFilters{Search: "zzz"}))
}

func TestInvoiceDateFieldSelection(t *testing.T) {
	from, to := "2024-01-01", "2024-01-31"

	byIssue := Invoices(sampleInvoices(), InvoiceFilters{DateFrom: &from, DateTo: &to})
	assert.Equal(t, []string{"1", "2"}, ids(byIssue))

	byReceipt := Invoices(sampleInvoices(), InvoiceFilters{DateField: ReceiptDate, DateFrom: &from, DateTo: &to})
	assert.Equal(t, []string{"1", "3"}, ids(byReceipt))

	byDue := Invoices(sampleInvoices(), InvoiceFilters{DateField: DueDate, DateFrom: &from, DateTo: &to})
	assert.Equal(t, []string{"3"}, ids(byDue))
}

func TestInvoiceCategoricalFilters(t *testing.T) {
	got := Invoices(sampleInvoices(), InvoiceFilters{
		Issuers:   []string{"Acme"},
		AmountMin: ptr(1000.0),
	})
	assert.Equal(t, []string{"1"}, ids(got))

	got = Invoices(sampleInvoices(), InvoiceFilters{DocumentTypes: []string{"Boleta"}})
	assert.Equal(t, []string{"3"}, ids(got))

	got = Invoices(sampleInvoices(), InvoiceFilters{PaymentMethods: []string{"Crédito", "Transferencia"}})
	assert.Equal(t, []string{"1", "2"}, ids(got))
}

func TestParseDateField(t *testing.T) {
	tests := map[string]DateField{
		"":            IssueDate,
		"emision":     IssueDate,
		"Recepción":   ReceiptDate,
		"vencimiento": DueDate,
		"due":         DueDate,
	}
	for in, want := range tests {
		got, err := ParseDateField(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseDateField("pago")
	assert.Error(t, err)
}

func TestInvoiceOptions(t *testing.T) {
	opts := InvoiceOptionsOf(sampleInvoices())
	assert.Equal(t, []string{"Centro", "Providencia"}, opts.Locations)
	assert.Equal(t, []string{"Boleta"}, opts.DocumentTypes)
	assert.Equal(t, []string{}, opts.PaymentTerms)
	assert.Equal(t, ValueRange{Min: 300, Max: 5000}, opts.Amount)
}
