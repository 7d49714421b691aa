package dashboard

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cafedash/internal/filter"
	"cafedash/pkg/models"
)

type stubLoader struct {
	orders   []models.OrderRecord
	invoices []models.InvoiceRecord
	managers []models.Manager
	items    []models.InvoiceLineItem
	err      error
}

func (s stubLoader) Orders(context.Context) ([]models.OrderRecord, error) {
	return s.orders, s.err
}

func (s stubLoader) Invoices(context.Context) ([]models.InvoiceRecord, error) {
	return s.invoices, s.err
}

func (s stubLoader) Managers(context.Context) ([]models.Manager, error) {
	return s.managers, s.err
}

func (s stubLoader) ItemsOf(_ context.Context, invoiceID string) ([]models.InvoiceLineItem, error) {
	out := []models.InvoiceLineItem{}
	for _, it := range s.items {
		if it.InvoiceID == invoiceID {
			out = append(out, it)
		}
	}
	return out, s.err
}

func fixture() stubLoader {
	return stubLoader{
		orders: []models.OrderRecord{
			{Number: "1", Location: "Centro", Supplier: "Acme", TotalWithTax: 100, Status: "Pending"},
			{Number: "2", Location: "Norte", Supplier: "Acme", TotalWithTax: 200, Status: "Aprobado"},
			{Number: "3", Location: "Centro", Supplier: "Beta", TotalWithTax: 300, Status: "Pending"},
		},
		invoices: []models.InvoiceRecord{
			{ID: "F1", Location: "Centro", IssuerName: "Acme", TotalAmount: 50},
			{ID: "F2", Location: "Norte", IssuerName: "Beta", TotalAmount: 70},
		},
		items: []models.InvoiceLineItem{
			{InvoiceID: "F1", Product: "Café", Quantity: 2},
			{InvoiceID: "F2", Product: "Leche", Quantity: 6},
		},
		managers: []models.Manager{
			{Name: "Ana", Email: "ana@cafe.cl", Location: "Centro"},
			{Name: "Jefa", Email: "jefa@cafe.cl", Location: "General"},
		},
	}
}

func TestResolveScope(t *testing.T) {
	managers := fixture().managers

	scope, err := ResolveScope(managers, " ANA@cafe.cl ")
	require.NoError(t, err)
	assert.True(t, scope.Local())
	assert.Equal(t, "Centro", scope.Location)

	scope, err = ResolveScope(managers, "jefa@cafe.cl")
	require.NoError(t, err)
	assert.False(t, scope.Local())

	_, err = ResolveScope(managers, "ghost@cafe.cl")
	assert.ErrorIs(t, err, ErrUnknownManager)

	_, err = ResolveScope(managers, "")
	assert.ErrorIs(t, err, ErrNoIdentity)
}

func TestLocalScopeIgnoresLocationFilter(t *testing.T) {
	svc := NewService(fixture())
	scope := Scope{Location: "Centro"}

	view, err := svc.OrdersView(context.Background(), scope, filter.OrderFilters{Locations: []string{"Norte"}})
	require.NoError(t, err)

	require.Len(t, view.Orders, 2)
	for _, o := range view.Orders {
		assert.Equal(t, "Centro", o.Location)
	}
	assert.Nil(t, view.Filters.Locations)
	assert.Equal(t, []string{"Centro"}, view.Options.Locations)
	assert.Equal(t, 400.0, view.Summary.TotalValue)
}

func TestGeneralScopeAppliesFilters(t *testing.T) {
	svc := NewService(fixture())

	view, err := svc.OrdersView(context.Background(), GeneralScope(), filter.OrderFilters{Suppliers: []string{"Acme"}})
	require.NoError(t, err)

	assert.Len(t, view.Orders, 2)
	assert.Equal(t, 2, view.Summary.Count)
	assert.Equal(t, []string{"Acme", "Beta"}, view.Options.Suppliers)
	assert.Equal(t, "Norte", view.Charts.ValueByLocation[0].Label)
}

func TestInvoicesViewScoped(t *testing.T) {
	svc := NewService(fixture())

	view, err := svc.InvoicesView(context.Background(), Scope{Location: "Norte"}, filter.InvoiceFilters{})
	require.NoError(t, err)

	require.Len(t, view.Invoices, 1)
	assert.Equal(t, "F2", view.Invoices[0].ID)
	assert.Equal(t, 70.0, view.Summary.TotalAmount)
}

func TestServicePropagatesLoadErrors(t *testing.T) {
	loader := fixture()
	loader.err = errors.New("sheet unavailable")
	svc := NewService(loader)

	_, err := svc.OrdersView(context.Background(), GeneralScope(), filter.OrderFilters{})
	assert.ErrorIs(t, err, loader.err)

	_, err = svc.Scope(context.Background(), "ana@cafe.cl")
	assert.ErrorIs(t, err, loader.err)
}

func TestServiceScope(t *testing.T) {
	svc := NewService(fixture())

	scope, err := svc.Scope(context.Background(), "ana@cafe.cl")
	require.NoError(t, err)
	assert.Equal(t, "Ana", scope.Manager.Name)
}

func TestInvoiceItemsScoped(t *testing.T) {
	svc := NewService(fixture())
	ctx := context.Background()
	local := Scope{Manager: models.Manager{Email: "ana@cafe.cl", Location: "Centro"}, Location: "Centro"}

	items, err := svc.InvoiceItems(ctx, local, "F1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Café", items[0].Product)

	_, err = svc.InvoiceItems(ctx, local, "F2")
	assert.ErrorIs(t, err, ErrUnknownInvoice, "another location's invoice is hidden")

	_, err = svc.InvoiceItems(ctx, local, "F9")
	assert.ErrorIs(t, err, ErrUnknownInvoice)

	items, err = svc.InvoiceItems(ctx, GeneralScope(), "F2")
	require.NoError(t, err)
	assert.Len(t, items, 1)

	items, err = svc.InvoiceItems(ctx, GeneralScope(), "F9")
	require.NoError(t, err)
	assert.Empty(t, items)
}
