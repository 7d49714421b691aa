package filter

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cafedash/pkg/models"
)

func ptr[T any](v T) *T { return &v }

func sampleOrders() []models.OrderRecord {
	return []models.OrderRecord{
		{Number: "OC-1", Location: "Centro", Supplier: "Acme", TotalWithTax: 1000, OrderDate: "2024-01-05", Status: "Aprobado"},
		{Number: "OC-2", Location: "Providencia", Supplier: "Other", TotalWithTax: 2500, OrderDate: "2024-01-31", Status: ""},
		{Number: "oc-3", Location: "Centro", Supplier: "Acme", TotalWithTax: 2500, OrderDate: "", Status: "Rechazado"},
		{Number: "OC-4", Location: "Ñuñoa", Supplier: "", TotalWithTax: 0, OrderDate: "2024-02-01", Status: "Pending"},
	}
}

func numbers(orders []models.OrderRecord) []string {
	out := make([]string, 0, len(orders))
	for _, o := range orders {
		out = append(out, o.Number)
	}
	return out
}

func TestEmptyFiltersAreIdentity(t *testing.T) {
	orders := sampleOrders()
	assert.False(t, OrderFilters{}.Active())
	assert.Equal(t, orders, Orders(orders, OrderFilters{}))

	invoices := sampleInvoices()
	assert.False(t, InvoiceFilters{DateField: DueDate}.Active())
	assert.Equal(t, invoices, Invoices(invoices, InvoiceFilters{DateField: DueDate}))
}

func TestSupplierSelection(t *testing.T) {
	orders := []models.OrderRecord{
		{Number: "1", Supplier: "Acme"},
		{Number: "2", Supplier: "Other"},
	}

	got := Orders(orders, OrderFilters{Suppliers: []string{"Acme"}})
	require.Len(t, got, 1)
	assert.Equal(t, "Acme", got[0].Supplier)
}

func TestMultiSelectIsOr(t *testing.T) {
	got := Orders(sampleOrders(), OrderFilters{Locations: []string{"Providencia", "Ñuñoa"}})
	assert.Equal(t, []string{"OC-2", "OC-4"}, numbers(got))
}

func TestDimensionsAreAnded(t *testing.T) {
	got := Orders(sampleOrders(), OrderFilters{
		Locations: []string{"Centro"},
		Statuses:  []string{"Aprobado"},
	})
	assert.Equal(t, []string{"OC-1"}, numbers(got))
}

func TestEmptyStatusMatchesPending(t *testing.T) {
	got := Orders(sampleOrders(), OrderFilters{Statuses: []string{models.DefaultOrderStatus}})
	assert.Equal(t, []string{"OC-2", "OC-4"}, numbers(got))
}

func TestExactRange(t *testing.T) {
	x := 2500.0
	got := Orders(sampleOrders(), OrderFilters{TotalMin: &x, TotalMax: &x})
	assert.Equal(t, []string{"OC-2", "oc-3"}, numbers(got))

	got = Orders(sampleOrders(), OrderFilters{TotalMax: ptr(1000.0)})
	assert.Equal(t, []string{"OC-1", "OC-4"}, numbers(got))
}

func TestDateRangeFailsClosed(t *testing.T) {
	from, to := "2024-01-01", "2024-01-31"
	undated := []models.OrderRecord{{Number: "X", OrderDate: ""}}
	assert.Empty(t, Orders(undated, OrderFilters{DateFrom: &from, DateTo: &to}))

	got := Orders(sampleOrders(), OrderFilters{DateFrom: &from, DateTo: &to})
	assert.Equal(t, []string{"OC-1", "OC-2"}, numbers(got))

	got = Orders(sampleOrders(), OrderFilters{DateFrom: ptr("2024-01-31")})
	assert.Equal(t, []string{"OC-2", "OC-4"}, numbers(got))
}

func TestDateBoundsAreNormalized(t *testing.T) {
	got := Orders(sampleOrders(), OrderFilters{DateFrom: ptr("01-01-2024"), DateTo: ptr("31/01/2024")})
	assert.Equal(t, []string{"OC-1", "OC-2"}, numbers(got))

	// An unreadable bound restricts nothing but still drops undated orders.
	got = Orders(sampleOrders(), OrderFilters{DateFrom: ptr("someday")})
	assert.Equal(t, []string{"OC-1", "OC-2", "OC-4"}, numbers(got))

	assert.False(t, OrderFilters{DateFrom: ptr("  ")}.Active())
}

func TestSearchIsCaseInsensitive(t *testing.T) {
	got := Orders(sampleOrders(), OrderFilters{Search: "OC-3"})
	assert.Equal(t, []string{"oc-3"}, numbers(got))
}

func TestPredicateOrderDoesNotMatter(t *testing.T) {
	f := OrderFilters{
		Locations: []string{"Centro", "Providencia"},
		TotalMin:  ptr(1000.0),
		DateTo:    ptr("2024-12-31"),
		Search:    "oc",
	}
	preds := f.predicates()
	want := Apply(sampleOrders(), preds...)

	r := rand.New(rand.NewSource(7))
	for i := 0; i < 10; i++ {
		shuffled := append([]Predicate[models.OrderRecord](nil), preds...)
		r.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		assert.Equal(t, want, Apply(sampleOrders(), shuffled...))
	}
}

func TestOrderOptions(t *testing.T) {
	opts := OrderOptionsOf(sampleOrders())
	assert.Equal(t, []string{"Centro", "Providencia", "Ñuñoa"}, opts.Locations)
	assert.Equal(t, []string{"Acme", "Other"}, opts.Suppliers)
	assert.Equal(t, []string{"Aprobado", "Pending", "Rechazado"}, opts.Statuses)
	assert.Equal(t, ValueRange{Min: 1000, Max: 2500}, opts.Total)
	assert.Equal(t, ValueRange{}, RangeOf([]models.OrderRecord{{TotalWithTax: 0}}, func(o models.OrderRecord) float64 { return o.TotalWithTax }))
}
