package filter

import "cafedash/pkg/models"

// OrderFilters is the filter state of the orders dashboard.
type OrderFilters struct {
	Locations []string `json:"locations,omitempty"`
	Suppliers []string `json:"suppliers,omitempty"`
	Statuses  []string `json:"statuses,omitempty"`
	TotalMin  *float64 `json:"total_min,omitempty"`
	TotalMax  *float64 `json:"total_max,omitempty"`
	DateFrom  *string  `json:"date_from,omitempty"`
	DateTo    *string  `json:"date_to,omitempty"`
	Search    string   `json:"search,omitempty"`
}

func orderStatus(o models.OrderRecord) string {
	if o.Status == "" {
		return models.DefaultOrderStatus
	}
	return o.Status
}

func (f OrderFilters) predicates() []Predicate[models.OrderRecord] {
	return []Predicate[models.OrderRecord]{
		OneOf(f.Locations, func(o models.OrderRecord) string { return o.Location }),
		OneOf(f.Suppliers, func(o models.OrderRecord) string { return o.Supplier }),
		OneOf(f.Statuses, orderStatus),
		Between(f.TotalMin, f.TotalMax, func(o models.OrderRecord) float64 { return o.TotalWithTax }),
		DateWithin(f.DateFrom, f.DateTo, func(o models.OrderRecord) string { return o.OrderDate }),
		Contains(f.Search, func(o models.OrderRecord) string { return o.Number }),
	}
}

// Active reports whether any dimension restricts the result.
func (f OrderFilters) Active() bool {
	for _, p := range f.predicates() {
		if p != nil {
			return true
		}
	}
	return false
}

// Orders returns the orders matching f, in input order.
func Orders(records []models.OrderRecord, f OrderFilters) []models.OrderRecord {
	return Apply(records, f.predicates()...)
}

// OrderOptions lists the values a filter panel can offer for orders.
type OrderOptions struct {
	Locations []string   `json:"locations"`
	Suppliers []string   `json:"suppliers"`
	Statuses  []string   `json:"statuses"`
	Total     ValueRange `json:"total"`
}

// OrderOptionsOf collects the distinct dimension values of records.
func OrderOptionsOf(records []models.OrderRecord) OrderOptions {
	return OrderOptions{
		Locations: Distinct(records, func(o models.OrderRecord) string { return o.Location }),
		Suppliers: Distinct(records, func(o models.OrderRecord) string { return o.Supplier }),
		Statuses:  Distinct(records, orderStatus),
		Total:     RangeOf(records, func(o models.OrderRecord) float64 { return o.TotalWithTax }),
	}
}
