package normalize_test

import (
	"fmt"

	"cafedash/internal/cell"
	"cafedash/internal/normalize"
)

// ExampleParseAmount shows how locale-formatted amounts are read.
func ExampleParseAmount() {
	for _, raw := range []string{"$ 5.500,50", "1.250", "12,5", "USD 1,234", "n/a"} {
		fmt.Println(normalize.ParseAmount(raw))
	}
	// Output:
	// 5500.5
	// 1250
	// 12.5
	// 1234
	// 0
}

// ExampleCanonicalDate shows the date forms found in the spreadsheet.
func ExampleCanonicalDate() {
	for _, raw := range []string{"15/03/2024", "Date(2024,2,15)", "2024-03-15T10:30:00Z", "soon"} {
		fmt.Printf("%q\n", normalize.CanonicalDate(raw))
	}
	// Output:
	// "2024-03-15"
	// "2024-03-15"
	// "2024-03-15"
	// ""
}

// ExampleNormalizer_Orders normalizes two order rows; the one without an
// order number is skipped.
func ExampleNormalizer_Orders() {
	rows := []cell.Row{
		{
			"Número de Orden":        cell.StringValue("OC-7"),
			"Cafetería":              cell.StringValue(" Providencia "),
			"Fecha del pedido":       cell.NumberValue(45366),
			"Total del pedido + IVA": cell.StringValue("$ 11.900"),
		},
		{"Cafetería": cell.StringValue("Centro")},
	}

	orders, stats := normalize.New(nil).Orders(rows)
	for _, o := range orders {
		fmt.Println(o.Number, o.Location, o.OrderDate, o.TotalWithTax, o.Status)
	}
	fmt.Printf("kept %d of %d, skipped %d\n", stats.Kept, stats.Rows, stats.Skipped)
	// Output:
	// OC-7 Providencia 2024-03-15 11900 Pending
	// kept 1 of 2, skipped 1
}
