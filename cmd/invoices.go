package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"cafedash/internal/logger"
)

var invoicesCmd = &cobra.Command{
	Use:   "invoices",
	Short: "Print the invoices dashboard as JSON",
	Long: `Load the invoices sheet, apply the filters and print the summary, charts,
filter options and the matching invoices as JSON.

--date-field picks the date --from and --to apply to: emision (default),
recepcion or vencimiento.`,
	Example: `  # Invoices received in March over 100.000
  cafedash invoices --date-field recepcion --from 2024-03-01 --to 2024-03-31 --min 100000

  # Line items of one invoice
  cafedash invoices --items 1234`,
	Args: cobra.NoArgs,
	RunE: runInvoices,
}

func init() {
	rootCmd.AddCommand(invoicesCmd)

	addFilterFlags(invoicesCmd)
	invoicesCmd.Flags().StringSlice("issuer", nil, "Only these issuers")
	invoicesCmd.Flags().StringSlice("document-type", nil, "Only these document types")
	invoicesCmd.Flags().StringSlice("payment-method", nil, "Only these payment methods")
	invoicesCmd.Flags().String("date-field", "", "Date the range applies to: emision, recepcion or vencimiento")
	invoicesCmd.Flags().String("items", "", "Print the line items of this invoice id instead")
	invoicesCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	invoicesCmd.Flags().Int("timeout", 60, "Timeout in seconds")
}

func runInvoices(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("invoices")

	cfg, err := requireConfig()
	if err != nil {
		return err
	}
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")
	outputPath, _ := cmd.Flags().GetString("output")
	invoiceID, _ := cmd.Flags().GetString("items")

	f, err := invoiceFiltersFromFlags(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Duration(timeoutSecs)*time.Second)
	defer cancel()

	a, err := newApp(ctx, cfg, nil, log)
	if err != nil {
		return err
	}
	defer a.Close()

	if invoiceID != "" {
		items, err := a.loader.ItemsOf(ctx, invoiceID)
		if err != nil {
			return fmt.Errorf("failed to load line items: %w", err)
		}
		log.Info().Str("invoice_id", invoiceID).Int("items", len(items)).Msg("Line items loaded")
		return writeJSON(items, outputPath)
	}

	scope, err := scopeFromFlags(ctx, cmd, a.dashboard)
	if err != nil {
		return err
	}
	view, err := a.dashboard.InvoicesView(ctx, scope, f)
	if err != nil {
		return fmt.Errorf("failed to build invoices view: %w", err)
	}

	log.Info().
		Int("invoices", view.Summary.Count).
		Float64("total", view.Summary.TotalAmount).
		Int("unpaid", view.Summary.Unpaid).
		Msg("Invoices view built")

	return writeJSON(view, outputPath)
}
