package aggregate

import "cafedash/pkg/models"

// OrderSummary feeds the orders summary cards.
type OrderSummary struct {
	Count        int     `json:"count"`
	TotalValue   float64 `json:"total_value"`
	AverageValue float64 `json:"average_value"`
	NetTotal     float64 `json:"net_total"`
	TaxTotal     float64 `json:"tax_total"`
}

// OrderCharts holds every chart of the orders dashboard.
type OrderCharts struct {
	ValueByLocation      []Pair `json:"value_by_location"`
	CountByLocation      []Pair `json:"count_by_location"`
	CountByStatus        []Pair `json:"count_by_status"`
	ValueByDate          []Pair `json:"value_by_date"`
	TopSuppliersByCount  []Pair `json:"top_suppliers_by_count"`
	ValueBySupplier      []Pair `json:"value_by_supplier"`
	TopRequestersByValue []Pair `json:"top_requesters_by_value"`
}

func orderValue(o models.OrderRecord) float64 { return o.TotalWithTax }

func orderLocation(o models.OrderRecord) string { return o.Location }

func orderSupplier(o models.OrderRecord) string { return o.Supplier }

// SummarizeOrders computes the summary cards for orders.
func SummarizeOrders(orders []models.OrderRecord) OrderSummary {
	return OrderSummary{
		Count:        len(orders),
		TotalValue:   Total(orders, orderValue),
		AverageValue: Average(orders, orderValue),
		NetTotal:     Total(orders, func(o models.OrderRecord) float64 { return o.NetTotal }),
		TaxTotal:     Total(orders, func(o models.OrderRecord) float64 { return o.Tax }),
	}
}

// BuildOrderCharts computes the orders dashboard charts.
func BuildOrderCharts(orders []models.OrderRecord) OrderCharts {
	return OrderCharts{
		ValueByLocation:      SortDesc(SumBy(orders, orderLocation, orderValue, NoLocation)),
		CountByLocation:      CountBy(orders, orderLocation, NoLocation),
		CountByStatus:        CountBy(orders, func(o models.OrderRecord) string { return o.Status }, NoStatus),
		ValueByDate:          TimeSeries(orders, func(o models.OrderRecord) string { return o.OrderDate }, orderValue),
		TopSuppliersByCount:  TopN(CountBy(orders, orderSupplier, NoSupplier), 5),
		ValueBySupplier:      SortDesc(SumBy(orders, orderSupplier, orderValue, NoSupplier)),
		TopRequestersByValue: TopN(SumBy(orders, func(o models.OrderRecord) string { return o.Requester }, orderValue, NoRequester), 10),
	}
}

// InvoiceSummary feeds the invoices summary cards.
type InvoiceSummary struct {
	Count         int     `json:"count"`
	TotalAmount   float64 `json:"total_amount"`
	AverageAmount float64 `json:"average_amount"`
	TaxTotal      float64 `json:"tax_total"`
	Paid          int     `json:"paid"`
	Unpaid        int     `json:"unpaid"`
}

// InvoiceCharts holds every chart of the invoices dashboard.
type InvoiceCharts struct {
	AmountByLocation     []Pair `json:"amount_by_location"`
	CountByLocation      []Pair `json:"count_by_location"`
	TopIssuersByAmount   []Pair `json:"top_issuers_by_amount"`
	CountByPaymentMethod []Pair `json:"count_by_payment_method"`
	AmountByIssueDate    []Pair `json:"amount_by_issue_date"`
}

func invoiceAmount(r models.InvoiceRecord) float64 { return r.TotalAmount }

func invoiceLocation(r models.InvoiceRecord) string { return r.Location }

// SummarizeInvoices computes the summary cards for invoices.
func SummarizeInvoices(invoices []models.InvoiceRecord) InvoiceSummary {
	s := InvoiceSummary{
		Count:         len(invoices),
		TotalAmount:   Total(invoices, invoiceAmount),
		AverageAmount: Average(invoices, invoiceAmount),
		TaxTotal:      Total(invoices, func(r models.InvoiceRecord) float64 { return r.TaxAmount }),
	}
	for _, r := range invoices {
		if r.IsPaid() {
			s.Paid++
		} else {
			s.Unpaid++
		}
	}
	return s
}

// BuildInvoiceCharts computes the invoices dashboard charts.
func BuildInvoiceCharts(invoices []models.InvoiceRecord) InvoiceCharts {
	return InvoiceCharts{
		AmountByLocation:     SortDesc(SumBy(invoices, invoiceLocation, invoiceAmount, NoLocation)),
		CountByLocation:      CountBy(invoices, invoiceLocation, NoLocation),
		TopIssuersByAmount:   TopN(SumBy(invoices, func(r models.InvoiceRecord) string { return r.IssuerName }, invoiceAmount, NoIssuer), 10),
		CountByPaymentMethod: CountBy(invoices, func(r models.InvoiceRecord) string { return r.PaymentMethod }, NoPaymentMethod),
		AmountByIssueDate:    TimeSeries(invoices, func(r models.InvoiceRecord) string { return r.IssueDate }, invoiceAmount),
	}
}
