package ordering_test

import (
	"fmt"

	"cafedash/internal/ordering"
	"cafedash/pkg/models"
)

// ExampleUnitPrice shows the bulk tier for canned drinks.
func ExampleUnitPrice() {
	cans := models.Product{Name: "Coca-Cola lata", UnitPrice: 15000, Unit: "caja x 24", Category: "Latas"}
	for _, qty := range []int{1, 8, 9} {
		fmt.Printf("%d boxes: %.0f each, %.0f total\n",
			qty,
			ordering.UnitPrice(cans, qty, ordering.TieredSupplier),
			ordering.Subtotal(cans, qty, ordering.TieredSupplier))
	}
	// Output:
	// 1 boxes: 14208 each, 14208 total
	// 8 boxes: 14208 each, 113664 total
	// 9 boxes: 13248 each, 119232 total
}
