package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"cafedash/internal/dashboard"
	"cafedash/internal/filter"
	"cafedash/internal/normalize"
)

// addFilterFlags registers the flags shared by the orders, invoices and
// export commands.
func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().StringSlice("location", nil, "Only these locations (repeatable or comma separated)")
	cmd.Flags().String("from", "", "Earliest date, YYYY-MM-DD")
	cmd.Flags().String("to", "", "Latest date, YYYY-MM-DD")
	cmd.Flags().StringP("search", "q", "", "Free text search")
	cmd.Flags().Float64("min", 0, "Minimum total")
	cmd.Flags().Float64("max", 0, "Maximum total")
	cmd.Flags().String("email", "", "Scope the view as this manager (default: everything)")
}

func optionalFlag(cmd *cobra.Command, name string) *string {
	v, _ := cmd.Flags().GetString(name)
	if v = strings.TrimSpace(v); v == "" {
		return nil
	}
	return &v
}

// dateFlag reads --from or --to, rejecting values that are not dates.
func dateFlag(cmd *cobra.Command, name string) (*string, error) {
	v := optionalFlag(cmd, name)
	if v != nil && normalize.CanonicalDate(*v) == "" {
		return nil, fmt.Errorf("--%s must be a date, got %q", name, *v)
	}
	return v, nil
}

func boundFlag(cmd *cobra.Command, name string) *float64 {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetFloat64(name)
	return &v
}

func orderFiltersFromFlags(cmd *cobra.Command) (filter.OrderFilters, error) {
	locations, _ := cmd.Flags().GetStringSlice("location")
	suppliers, _ := cmd.Flags().GetStringSlice("supplier")
	statuses, _ := cmd.Flags().GetStringSlice("status")
	search, _ := cmd.Flags().GetString("search")

	from, err := dateFlag(cmd, "from")
	if err != nil {
		return filter.OrderFilters{}, err
	}
	to, err := dateFlag(cmd, "to")
	if err != nil {
		return filter.OrderFilters{}, err
	}
	return filter.OrderFilters{
		Locations: locations,
		Suppliers: suppliers,
		Statuses:  statuses,
		TotalMin:  boundFlag(cmd, "min"),
		TotalMax:  boundFlag(cmd, "max"),
		DateFrom:  from,
		DateTo:    to,
		Search:    search,
	}, nil
}

func invoiceFiltersFromFlags(cmd *cobra.Command) (filter.InvoiceFilters, error) {
	locations, _ := cmd.Flags().GetStringSlice("location")
	issuers, _ := cmd.Flags().GetStringSlice("issuer")
	docTypes, _ := cmd.Flags().GetStringSlice("document-type")
	methods, _ := cmd.Flags().GetStringSlice("payment-method")
	search, _ := cmd.Flags().GetString("search")
	rawField, _ := cmd.Flags().GetString("date-field")

	field, err := filter.ParseDateField(rawField)
	if err != nil {
		return filter.InvoiceFilters{}, err
	}
	from, err := dateFlag(cmd, "from")
	if err != nil {
		return filter.InvoiceFilters{}, err
	}
	to, err := dateFlag(cmd, "to")
	if err != nil {
		return filter.InvoiceFilters{}, err
	}
	return filter.InvoiceFilters{
		Locations:      locations,
		Issuers:        issuers,
		DocumentTypes:  docTypes,
		PaymentMethods: methods,
		DateField:      field,
		DateFrom:       from,
		DateTo:         to,
		AmountMin:      boundFlag(cmd, "min"),
		AmountMax:      boundFlag(cmd, "max"),
		Search:         search,
	}, nil
}

// scopeFromFlags resolves --email, or returns the general scope.
func scopeFromFlags(ctx context.Context, cmd *cobra.Command, svc *dashboard.Service) (dashboard.Scope, error) {
	email, _ := cmd.Flags().GetString("email")
	if strings.TrimSpace(email) == "" {
		return dashboard.GeneralScope(), nil
	}
	return svc.Scope(ctx, email)
}

// writeJSON prints v indented to path, or to stdout when path is empty.
func writeJSON(v interface{}, path string) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	if path == "" {
		fmt.Println(string(data))
		return nil
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
