package normalize

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cafedash/internal/cell"
	"cafedash/pkg/models"
)

func newTestNormalizer() *Normalizer {
	return New(nil).WithLogger(zerolog.Nop())
}

func rowOf(kv map[string]interface{}) cell.Row {
	row := make(cell.Row, len(kv))
	for k, v := range kv {
		row[k] = cell.FromAny(v)
	}
	return row
}

func TestInvoicesDropsRowsWithoutKey(t *testing.T) {
	rows := []cell.Row{
		rowOf(map[string]interface{}{"ID": "1", "Monto Total": "1.250,00", "Fecha": "15-03-2024"}),
		rowOf(map[string]interface{}{"ID": "", "Monto Total": "99", "Fecha": "2024-01-01"}),
	}

	invoices, stats := newTestNormalizer().Invoices(rows)

	require.Len(t, invoices, 1)
	assert.Equal(t, "1", invoices[0].ID)
	assert.Equal(t, 1250.0, invoices[0].TotalAmount)
	assert.Equal(t, "2024-03-15", invoices[0].IssueDate)
	assert.Equal(t, Stats{Rows: 2, Kept: 1, Skipped: 1}, stats)
}

func TestOrdersNeverGrow(t *testing.T) {
	rows := []cell.Row{
		rowOf(map[string]interface{}{"Número de Orden": "  "}),
		rowOf(map[string]interface{}{"Cafetería": "Providencia"}),
		rowOf(map[string]interface{}{"numeroOrden": 1001.0}),
		{},
	}

	orders, stats := newTestNormalizer().Orders(rows)
	assert.LessOrEqual(t, len(orders), len(rows))
	require.Len(t, orders, 1)
	assert.Equal(t, "1001", orders[0].Number)
	assert.Equal(t, 3, stats.Skipped)
}

func TestOrdersFields(t *testing.T) {
	rows := []cell.Row{rowOf(map[string]interface{}{
		"Número de Orden":        "OC-7",
		"Cafetería":              " Providencia ",
		"Solicitante":            "Ana",
		"Proveedor":              "Acme",
		"Fecha del pedido":       45366.0,
		"Estado Aprobación":      "",
		"Total Neto":             "10.000",
		"IVA":                    1900.0,
		"Total del pedido + IVA": "$ 11.900",
		"Link Orden de Compra":   "https://example.com/oc-7",
	})}

	orders, _ := newTestNormalizer().Orders(rows)
	require.Len(t, orders, 1)

	assert.Equal(t, models.OrderRecord{
		Number:       "OC-7",
		Location:     "Providencia",
		Requester:    "Ana",
		Supplier:     "Acme",
		NetTotal:     10000,
		Tax:          1900,
		TotalWithTax: 11900,
		OrderDate:    "2024-03-15",
		Status:       models.DefaultOrderStatus,
		Link:         "https://example.com/oc-7",
	}, orders[0])
}

func TestOrdersNormalizationIsIdempotent(t *testing.T) {
	n := newTestNormalizer()
	first, _ := n.Orders([]cell.Row{rowOf(map[string]interface{}{
		"numeroOrden":     "9",
		"Fecha":           "15/03/2024",
		"total_neto":      "5.500,50",
		"total_con_iva":   "6.545,60",
		"Estado":          "Aprobado",
		"observacion":     "urgente",
		"proveedor":       "Acme",
		"Cafeteria":       "Centro",
		"Solicitante":     "Ana",
		"linkOrdenCompra": "",
	})})
	require.Len(t, first, 1)

	o := first[0]
	second, _ := n.Orders([]cell.Row{{
		"numeroOrden":   cell.StringValue(o.Number),
		"Fecha":         cell.StringValue(o.OrderDate),
		"total_neto":    cell.NumberValue(o.NetTotal),
		"iva":           cell.NumberValue(o.Tax),
		"total_con_iva": cell.NumberValue(o.TotalWithTax),
		"Estado":        cell.StringValue(o.Status),
		"observacion":   cell.StringValue(o.Note),
		"proveedor":     cell.StringValue(o.Supplier),
		"Cafeteria":     cell.StringValue(o.Location),
		"Solicitante":   cell.StringValue(o.Requester),
	}})
	require.Len(t, second, 1)
	assert.Equal(t, o, second[0])
}

func TestInvoicesPaymentDate(t *testing.T) {
	rows := []cell.Row{
		rowOf(map[string]interface{}{"ID Factura": "F-1", "Fecha Pago": "01-04-2024", "Rut Emisor": "76.123.456-7"}),
		rowOf(map[string]interface{}{"ID Factura": "F-2", "Fecha Pago": "sin pago"}),
		rowOf(map[string]interface{}{"ID Factura": "F-3"}),
		rowOf(map[string]interface{}{"ID Factura": "F-4", "Fecha Pago": "  "}),
	}

	invoices, _ := newTestNormalizer().Invoices(rows)
	require.Len(t, invoices, 4)

	require.NotNil(t, invoices[0].PaymentDate)
	assert.Equal(t, "2024-04-01", *invoices[0].PaymentDate)
	assert.True(t, invoices[0].IsPaid())
	assert.Equal(t, "76.123.456-7", invoices[0].TaxID)
	require.NotNil(t, invoices[1].PaymentDate, "an unreadable payment date still counts as paid")
	assert.Equal(t, "sin pago", *invoices[1].PaymentDate)
	assert.True(t, invoices[1].IsPaid())
	assert.False(t, invoices[2].IsPaid())
	assert.Nil(t, invoices[3].PaymentDate)
}

func TestLineItems(t *testing.T) {
	rows := []cell.Row{
		rowOf(map[string]interface{}{"ID Factura": "F-1", "Producto": "Café", "Cantidad": 2.0, "Precio Unitario": "5.500", "Precio Total": "11.000"}),
		rowOf(map[string]interface{}{"ID Factura": "F-1", "Producto": ""}),
		rowOf(map[string]interface{}{"Producto": "Leche"}),
	}

	items, stats := newTestNormalizer().LineItems(rows)
	require.Len(t, items, 1)
	assert.Equal(t, models.InvoiceLineItem{
		InvoiceID: "F-1", Product: "Café", Quantity: 2, UnitPrice: 5500, LineTotal: 11000,
	}, items[0])
	assert.Equal(t, 2, stats.Skipped)
}

func TestProviders(t *testing.T) {
	providerRows := []cell.Row{
		rowOf(map[string]interface{}{"nombre_proveedor": "Comercial CCU S.A."}),
		rowOf(map[string]interface{}{"nombre_proveedor": "Panadería Ñuñoa", "id_proveedor": ""}),
		rowOf(map[string]interface{}{"nombre_proveedor": "Comercial CCU S.A", "id_proveedor": "comercial-ccu-s-a"}),
		rowOf(map[string]interface{}{"nombre_proveedor": ""}),
	}
	productRows := []cell.Row{
		rowOf(map[string]interface{}{"Proveedor": "COMERCIAL CCU S.A.", "Producto": "Coca-Cola lata", "Categoria": "LATAS", "Precio unitario (CLP)": "14.208", "Unidades por caja": 24.0}),
		rowOf(map[string]interface{}{"provider_id": "panaderia-nunoa", "Producto": "Marraqueta", "precio_unitario": 150.0}),
		rowOf(map[string]interface{}{"Proveedor": "Desconocido", "Producto": "X"}),
		rowOf(map[string]interface{}{"provider_id": "panaderia-nunoa", "Producto": ""}),
	}

	providers, stats := newTestNormalizer().Providers(providerRows, productRows)
	require.Len(t, providers, 3)

	assert.Equal(t, "comercial-ccu-s-a", providers[0].ID)
	assert.Equal(t, "panaderia-nunoa", providers[1].ID)
	assert.Equal(t, "comercial-ccu-s-a-1", providers[2].ID)

	require.Len(t, providers[0].Products, 1)
	assert.Equal(t, models.Product{Name: "Coca-Cola lata", UnitPrice: 14208, Unit: "caja x 24", Category: "LATAS"}, providers[0].Products[0])

	require.Len(t, providers[1].Products, 1)
	assert.Equal(t, "unidad", providers[1].Products[0].Unit)
	assert.Empty(t, providers[2].Products)
	assert.Equal(t, 3, stats.Skipped)
}

func TestManagers(t *testing.T) {
	rows := []cell.Row{
		rowOf(map[string]interface{}{"Nombre": "Ana", "Mail": " Ana@Cafe.CL ", "Local": "Providencia"}),
		rowOf(map[string]interface{}{"Nombre": "Luis", "email": "luis@cafe.cl"}),
		rowOf(map[string]interface{}{"Nombre": "Sin mail"}),
	}

	managers, _ := newTestNormalizer().Managers(rows)
	require.Len(t, managers, 2)
	assert.Equal(t, models.Manager{Name: "Ana", Email: "ana@cafe.cl", Location: "Providencia"}, managers[0])
	assert.Equal(t, models.DefaultManagerLocation, managers[1].Location)
	assert.True(t, managers[1].SeesAllLocations())
}

func TestLoadAliases(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "aliases.yaml")
	require.NoError(t, os.WriteFile(path, []byte("order.number:\n  - \"N° Orden\"\n"), 0o600))

	aliases, err := LoadAliases(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"N° Orden"}, aliases[OrderNumber])
	assert.Equal(t, DefaultAliases()[OrderSupplier], aliases[OrderSupplier])

	orders, _ := New(aliases).WithLogger(zerolog.Nop()).Orders([]cell.Row{
		rowOf(map[string]interface{}{"N° Orden": "55", "numeroOrden": "ignored"}),
	})
	require.Len(t, orders, 1)
	assert.Equal(t, "55", orders[0].Number)
}

func TestLoadAliasesRejectsUnknownField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aliases.yaml")
	require.NoError(t, os.WriteFile(path, []byte("order.colour: [Color]\n"), 0o600))

	_, err := LoadAliases(path)
	assert.ErrorContains(t, err, "order.colour")

	aliases, err := LoadAliases("")
	require.NoError(t, err)
	assert.Equal(t, DefaultAliases(), aliases)
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "panaderia-nunoa", Slug("Panadería Ñuñoa"))
	assert.Equal(t, "comercial-ccu-s-a", Slug("  COMERCIAL CCU S.A. "))
	assert.Equal(t, "", Slug("***"))
}
