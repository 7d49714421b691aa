package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cafedash/pkg/models"
)

func orders() []models.OrderRecord {
	return []models.OrderRecord{
		{Number: "1", Location: "Centro", Supplier: "Acme", Requester: "Ana", TotalWithTax: 100, OrderDate: "2024-01-03", Status: "Aprobado"},
		{Number: "2", Location: "Providencia", Supplier: "Beta", Requester: "Luis", TotalWithTax: 300, OrderDate: "2024-01-01", Status: "Pending"},
		{Number: "3", Location: "", Supplier: "Acme", Requester: "Ana", TotalWithTax: 50, OrderDate: "", Status: "Pending"},
		{Number: "4", Location: "Centro", Supplier: "", Requester: "", TotalWithTax: 200, OrderDate: "2024-01-03", Status: ""},
	}
}

func TestCountByUsesSentinelAndFirstSeenOrder(t *testing.T) {
	got := CountBy(orders(), func(o models.OrderRecord) string { return o.Location }, NoLocation)
	assert.Equal(t, []Pair{
		{Label: "Centro", Value: 2},
		{Label: "Providencia", Value: 1},
		{Label: NoLocation, Value: 1},
	}, got)
}

func TestGroupSumsAddUpToTotal(t *testing.T) {
	value := func(o models.OrderRecord) float64 { return o.TotalWithTax }
	keys := []func(models.OrderRecord) string{
		func(o models.OrderRecord) string { return o.Location },
		func(o models.OrderRecord) string { return o.Supplier },
		func(o models.OrderRecord) string { return o.Requester },
		func(o models.OrderRecord) string { return o.Number },
	}
	for _, key := range keys {
		assert.InDelta(t, Total(orders(), value), Sum(SumBy(orders(), key, value, "none")), 1e-9)
	}
}

func TestTopNIsStable(t *testing.T) {
	pairs := []Pair{{"a", 1}, {"b", 3}, {"c", 1}, {"d", 3}, {"e", 2}}

	assert.Equal(t, []Pair{{"b", 3}, {"d", 3}, {"e", 2}}, TopN(pairs, 3))
	assert.Equal(t, []Pair{{"b", 3}, {"d", 3}, {"e", 2}, {"a", 1}, {"c", 1}}, TopN(pairs, 10))
	assert.Equal(t, []Pair{{"a", 1}, {"b", 3}, {"c", 1}, {"d", 3}, {"e", 2}}, pairs, "input untouched")
	assert.Equal(t, []Pair{}, TopN(nil, 5))
}

func TestTimeSeriesAscendingSkipsUndated(t *testing.T) {
	got := TimeSeries(orders(),
		func(o models.OrderRecord) string { return o.OrderDate },
		func(o models.OrderRecord) float64 { return o.TotalWithTax })

	assert.Equal(t, []Pair{
		{Label: "2024-01-01", Value: 300},
		{Label: "2024-01-03", Value: 300},
	}, got)
}

func TestBuildOrderCharts(t *testing.T) {
	charts := BuildOrderCharts(orders())

	assert.Equal(t, []Pair{{"Centro", 300}, {"Providencia", 300}, {NoLocation, 50}}, charts.ValueByLocation)
	assert.Equal(t, []Pair{{"Aprobado", 1}, {"Pending", 2}, {NoStatus, 1}}, charts.CountByStatus)
	assert.Equal(t, []Pair{{"Acme", 2}, {"Beta", 1}, {NoSupplier, 1}}, charts.TopSuppliersByCount)
	assert.Equal(t, []Pair{{"Beta", 300}, {NoSupplier, 200}, {"Acme", 150}}, charts.ValueBySupplier)
	assert.Equal(t, []Pair{{"Luis", 300}, {NoRequester, 200}, {"Ana", 150}}, charts.TopRequestersByValue)
	require.Len(t, charts.ValueByDate, 2)

	summary := SummarizeOrders(orders())
	assert.Equal(t, 4, summary.Count)
	assert.Equal(t, 650.0, summary.TotalValue)
	assert.Equal(t, 162.5, summary.AverageValue)
	assert.Equal(t, OrderSummary{}, SummarizeOrders(nil))
}

func TestBuildInvoiceCharts(t *testing.T) {
	paid := "2024-02-01"
	invoices := []models.InvoiceRecord{
		{ID: "1", Location: "Centro", IssuerName: "Acme", PaymentMethod: "Transferencia", TotalAmount: 1190, TaxAmount: 190, IssueDate: "2024-01-10", PaymentDate: &paid},
		{ID: "2", Location: "Centro", IssuerName: "", PaymentMethod: "", TotalAmount: 500, TaxAmount: 80, IssueDate: "2024-01-05"},
		{ID: "3", Location: "", IssuerName: "Acme", PaymentMethod: "Transferencia", TotalAmount: 10, IssueDate: ""},
	}

	charts := BuildInvoiceCharts(invoices)
	assert.Equal(t, []Pair{{"Centro", 1690}, {NoLocation, 10}}, charts.AmountByLocation)
	assert.Equal(t, []Pair{{"Acme", 1200}, {NoIssuer, 500}}, charts.TopIssuersByAmount)
	assert.Equal(t, []Pair{{"Transferencia", 2}, {NoPaymentMethod, 1}}, charts.CountByPaymentMethod)
	assert.Equal(t, []Pair{{"2024-01-05", 500}, {"2024-01-10", 1190}}, charts.AmountByIssueDate)

	summary := SummarizeInvoices(invoices)
	assert.Equal(t, InvoiceSummary{Count: 3, TotalAmount: 1700, AverageAmount: 1700.0 / 3, TaxTotal: 270, Paid: 1, Unpaid: 2}, summary)
}
