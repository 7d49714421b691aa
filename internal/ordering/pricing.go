package ordering

import (
	"strings"

	"cafedash/pkg/models"
)

// Tiered unit pricing for canned drinks of one supplier. Every other
// product is sold at its catalogue price.
const (
	TieredSupplier = "COMERCIAL CCU S.A."
	TieredCategory = "LATAS"

	TierSmallPrice = 14208 // 1 to 8 units
	TierBulkPrice  = 13248 // TierBulkMinQty units or more
	TierBulkMinQty = 9
)

func tiered(p models.Product, supplier string) bool {
	return strings.EqualFold(strings.TrimSpace(supplier), TieredSupplier) &&
		strings.EqualFold(strings.TrimSpace(p.Category), TieredCategory)
}

// UnitPrice returns the price of one unit of p when qty units are ordered
// from supplier.
func UnitPrice(p models.Product, qty int, supplier string) float64 {
	if qty > 0 && tiered(p, supplier) {
		if qty >= TierBulkMinQty {
			return TierBulkPrice
		}
		return TierSmallPrice
	}
	return p.UnitPrice
}

// DiscountApplied reports whether the bulk tier changed the catalogue price.
func DiscountApplied(p models.Product, qty int, supplier string) bool {
	if qty < TierBulkMinQty || !tiered(p, supplier) {
		return false
	}
	return UnitPrice(p, qty, supplier) != p.UnitPrice
}

// Subtotal is qty times the applicable unit price.
func Subtotal(p models.Product, qty int, supplier string) float64 {
	return float64(qty) * UnitPrice(p, qty, supplier)
}
