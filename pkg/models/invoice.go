package models

// InvoiceRecord is one row of the supplier invoices sheet.
type InvoiceRecord struct {
	// Identifiers
	ID       string `json:"id"`     // unique key
	Number   string `json:"number"` // document number printed on the invoice
	Location string `json:"location"`

	// Dates, canonical YYYY-MM-DD or "" when unparseable
	IssueDate   string  `json:"issue_date"`
	ReceiptDate string  `json:"receipt_date"`
	DueDate     string  `json:"due_date"`
	PaymentDate *string `json:"payment_date"` // nil if unpaid

	// Issuer
	TaxID        string `json:"tax_id"` // RUT
	IssuerName   string `json:"issuer_name"`
	DocumentType string `json:"document_type"`

	// Payment
	PaymentMethod string `json:"payment_method"`
	PaymentTerms  string `json:"payment_terms"`

	// Amounts, always finite and >= 0
	NetAmount   float64 `json:"net_amount"`
	TaxAmount   float64 `json:"tax_amount"`
	TotalAmount float64 `json:"total_amount"`

	Note string `json:"note"`
	Link string `json:"link"`
}

// IsPaid reports whether a payment date was recorded.
func (r InvoiceRecord) IsPaid() bool {
	return r.PaymentDate != nil && *r.PaymentDate != ""
}

// InvoiceLineItem is one product line of an invoice. InvoiceID is a weak
// reference; the invoice may not exist in the invoices sheet.
type InvoiceLineItem struct {
	InvoiceID string  `json:"invoice_id"`
	Product   string  `json:"product"`
	Quantity  float64 `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	LineTotal float64 `json:"line_total"`
}
