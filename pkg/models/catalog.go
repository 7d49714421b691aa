package models

// DefaultManagerLocation grants a manager access to every location.
const DefaultManagerLocation = "General"

// Provider is a supplier together with the products it sells.
type Provider struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Products []Product `json:"products"`
}

// Product is one catalogue entry of a provider.
type Product struct {
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	Unit      string  `json:"unit"` // "unidad" or "caja x N"
	Category  string  `json:"category,omitempty"`
}

// Manager is a location manager allowed to use the dashboard.
type Manager struct {
	Name     string `json:"name"`
	Email    string `json:"email"` // lower-cased
	Location string `json:"location"`
}

// SeesAllLocations reports whether the manager is not bound to one location.
func (m Manager) SeesAllLocations() bool {
	return m.Location == "" || m.Location == DefaultManagerLocation
}
