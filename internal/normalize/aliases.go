package normalize

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Field is a canonical record field that can be read from a sheet column.
type Field string

// Orders sheet
const (
	OrderNumber    Field = "order.number"
	OrderLocation  Field = "order.location"
	OrderRequester Field = "order.requester"
	OrderSupplier  Field = "order.supplier"
	OrderDate      Field = "order.date"
	OrderStatus    Field = "order.status"
	OrderNote      Field = "order.note"
	OrderLink      Field = "order.link"
	OrderNet       Field = "order.net_total"
	OrderTax       Field = "order.tax"
	OrderTotal     Field = "order.total_with_tax"
)

// Invoices sheet
const (
	InvoiceID            Field = "invoice.id"
	InvoiceLocation      Field = "invoice.location"
	InvoiceNumber        Field = "invoice.number"
	InvoiceIssueDate     Field = "invoice.issue_date"
	InvoiceReceiptDate   Field = "invoice.receipt_date"
	InvoiceDueDate       Field = "invoice.due_date"
	InvoicePaymentDate   Field = "invoice.payment_date"
	InvoiceTaxID         Field = "invoice.tax_id"
	InvoiceIssuer        Field = "invoice.issuer_name"
	InvoiceDocumentType  Field = "invoice.document_type"
	InvoicePaymentMethod Field = "invoice.payment_method"
	InvoicePaymentTerms  Field = "invoice.payment_terms"
	InvoiceNet           Field = "invoice.net_amount"
	InvoiceTax           Field = "invoice.tax_amount"
	InvoiceTotal         Field = "invoice.total_amount"
	InvoiceNote          Field = "invoice.note"
	InvoiceLink          Field = "invoice.link"
)

// Invoice line items sheet
const (
	ItemInvoiceID Field = "item.invoice_id"
	ItemProduct   Field = "item.product"
	ItemQuantity  Field = "item.quantity"
	ItemUnitPrice Field = "item.unit_price"
	ItemTotal     Field = "item.line_total"
)

// Providers and products sheets
const (
	ProviderName       Field = "provider.name"
	ProviderID         Field = "provider.id"
	ProductProvider    Field = "product.provider"
	ProductProviderID  Field = "product.provider_id"
	ProductName        Field = "product.name"
	ProductUnitsPerBox Field = "product.units_per_box"
	ProductUnitPrice   Field = "product.unit_price"
	ProductCategory    Field = "product.category"
)

// Managers sheet
const (
	ManagerName     Field = "manager.name"
	ManagerEmail    Field = "manager.email"
	ManagerLocation Field = "manager.location"
)

// Aliases maps each canonical field to the header labels accepted for it,
// in lookup order.
type Aliases map[Field][]string

// DefaultAliases returns the header spellings found in the production sheets.
func DefaultAliases() Aliases {
	return Aliases{
		OrderNumber:    {"numeroOrden", "Número de Orden", "Numero Orden", "Numero de Orden"},
		OrderLocation:  {"cafeteria", "Cafetería", "Cafeteria"},
		OrderRequester: {"solicitante", "Solicitante"},
		OrderSupplier:  {"proveedor", "Proveedor"},
		OrderDate:      {"Fecha del pedido", "fechaPedido", "Fecha Pedido", "Fecha"},
		OrderStatus:    {"Estado Aprobacion", "Estado Aprobación", "estadoAprobacion", "Estado"},
		OrderNote:      {"observacion", "Observación", "Observacion"},
		OrderLink:      {"Link orden de Compra", "Link Orden de Compra", "linkOrdenCompra", "Link Orden Compra", "Link"},
		OrderNet:       {"total_neto", "Total Neto"},
		OrderTax:       {"iva", "IVA"},
		OrderTotal:     {"Total del pedido + IVA", "total_con_iva", "Total con IVA", "Total Con IVA"},

		InvoiceID:            {"ID Factura", "idFactura", "ID"},
		InvoiceLocation:      {"Localidad", "localidad"},
		InvoiceNumber:        {"Numero Factura", "numeroFactura", "Número Factura"},
		InvoiceIssueDate:     {"Fecha emision", "fechaEmision", "Fecha Emision", "Fecha emisión", "Fecha Emisión", "Fecha"},
		InvoiceReceiptDate:   {"Fecha recepción", "fechaRecepcion", "Fecha Recepción", "Fecha recepcion", "Fecha Recepcion"},
		InvoiceDueDate:       {"Fecha vencimiento", "fechaVencimiento", "Fecha Vencimiento"},
		InvoicePaymentDate:   {"Fecha Pago", "fechaPago", "Fecha pago"},
		InvoiceTaxID:         {"Rut Emisor", "rutEmisor", "RUT Emisor"},
		InvoiceIssuer:        {"Nombre Emisor", "nombreEmisor"},
		InvoiceDocumentType:  {"Tipo Documento", "tipoDocumento"},
		InvoicePaymentMethod: {"Forma de pago", "formaPago", "Forma de Pago"},
		InvoicePaymentTerms:  {"Condición Pago", "condicionPago", "Condicion Pago"},
		InvoiceNet:           {"Monto Neto", "montoNeto"},
		InvoiceTax:           {"IVA", "iva"},
		InvoiceTotal:         {"Monto Total", "montoTotal"},
		InvoiceNote:          {"Observacion", "observacion", "Observación"},
		InvoiceLink:          {"Link Factura", "linkFactura", "Link"},

		ItemInvoiceID: {"ID Factura", "idFactura"},
		ItemProduct:   {"Producto", "producto"},
		ItemQuantity:  {"Cantidad", "cantidad"},
		ItemUnitPrice: {"Precio Unitario", "precioUnitario"},
		ItemTotal:     {"Precio Total", "precioTotal"},

		ProviderName:       {"nombre_proveedor", "nombre"},
		ProviderID:         {"id_proveedor", "id"},
		ProductProvider:    {"Proveedor", "proveedor"},
		ProductProviderID:  {"provider_id"},
		ProductName:        {"Producto", "nombre"},
		ProductUnitsPerBox: {"Unidades por caja", "unidades_por_caja"},
		ProductUnitPrice:   {"Precio unitario (CLP)", "precio_unitario"},
		ProductCategory:    {"Categoria", "categoria", "Categoría"},

		ManagerName:     {"Nombre", "nombre"},
		ManagerEmail:    {"Mail", "mail", "Email", "email"},
		ManagerLocation: {"Local", "local"},
	}
}

// Fields returns every known field, sorted.
func (a Aliases) Fields() []Field {
	fields := make([]Field, 0, len(a))
	for f := range a {
		fields = append(fields, f)
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i] < fields[j] })
	return fields
}

// Merge returns a copy of a where every field present in overrides has its
// header list replaced. Unknown fields are rejected.
func (a Aliases) Merge(overrides map[string][]string) (Aliases, error) {
	merged := make(Aliases, len(a))
	for f, headers := range a {
		merged[f] = append([]string(nil), headers...)
	}

	for key, headers := range overrides {
		f := Field(key)
		if _, ok := a[f]; !ok {
			return nil, fmt.Errorf("unknown alias field %q", key)
		}
		if len(headers) == 0 {
			return nil, fmt.Errorf("alias field %q has no headers", key)
		}
		merged[f] = append([]string(nil), headers...)
	}
	return merged, nil
}

// LoadAliases reads a YAML file of the form
//
//	order.number: ["N° Orden", "numeroOrden"]
//
// and merges it over DefaultAliases. An empty path returns the defaults.
func LoadAliases(path string) (Aliases, error) {
	const op = "LoadAliases"

	defaults := DefaultAliases()
	if path == "" {
		return defaults, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read %s: %w", op, path, err)
	}

	var overrides map[string][]string
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("%s: failed to parse %s: %w", op, path, err)
	}

	merged, err := defaults.Merge(overrides)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return merged, nil
}
