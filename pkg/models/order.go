package models

import "time"

// DefaultOrderStatus is shown for orders without an approval status.
const DefaultOrderStatus = "Pending"

// OrderRecord is one row of the purchase orders sheet.
type OrderRecord struct {
	Number    string `json:"number"` // unique key
	Location  string `json:"location"`
	Requester string `json:"requester"`
	Supplier  string `json:"supplier"`

	NetTotal     float64 `json:"net_total"`
	Tax          float64 `json:"tax"`
	TotalWithTax float64 `json:"total_with_tax"`

	OrderDate string `json:"order_date"` // canonical YYYY-MM-DD or ""
	Status    string `json:"status"`
	Note      string `json:"note"`
	Link      string `json:"link"`
}

// PurchaseOrder is the payload submitted to the order webhook. The JSON
// names are the ones the webhook already receives from the order form.
type PurchaseOrder struct {
	ID         string      `json:"id"`
	CreatedAt  time.Time   `json:"created_at"`
	Requester  string      `json:"solicitante"`
	Email      string      `json:"email,omitempty"`
	Location   string      `json:"cafeteria"`
	ProviderID string      `json:"provider_id"`
	Supplier   string      `json:"proveedor"`
	Lines      []OrderLine `json:"productos"`
	Net        float64     `json:"total_neto"`
	Tax        float64     `json:"iva"`
	Total      float64     `json:"total_con_iva"`
	Note       string      `json:"observacion"`
}

// OrderLine is one selected product of a PurchaseOrder.
type OrderLine struct {
	Product         string  `json:"nombre"`
	Unit            string  `json:"unidad"`
	Category        string  `json:"categoria,omitempty"`
	Quantity        int     `json:"cantidad"`
	UnitPrice       float64 `json:"precio_unitario"`
	Subtotal        float64 `json:"subtotal"`
	DiscountApplied bool    `json:"descuento_aplicado,omitempty"`
}
