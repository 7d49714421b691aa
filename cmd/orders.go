package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"cafedash/internal/logger"
)

var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "Print the orders dashboard as JSON",
	Long: `Load the orders sheet, apply the filters and print the summary, charts,
filter options and the matching orders as JSON.

With --email the view is scoped like the web dashboard: a location manager
only sees their own location and --location is ignored.`,
	Example: `  # Orders of two suppliers in March
  cafedash orders --supplier "Acme,Beta" --from 2024-03-01 --to 2024-03-31

  # What a location manager sees, written to a file
  cafedash orders --email ana@cafe.cl -o orders.json`,
	Args: cobra.NoArgs,
	RunE: runOrders,
}

func init() {
	rootCmd.AddCommand(ordersCmd)

	addFilterFlags(ordersCmd)
	ordersCmd.Flags().StringSlice("supplier", nil, "Only these suppliers")
	ordersCmd.Flags().StringSlice("status", nil, "Only these approval statuses")
	ordersCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	ordersCmd.Flags().Int("timeout", 60, "Timeout in seconds")
}

func runOrders(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("orders")

	cfg, err := requireConfig()
	if err != nil {
		return err
	}
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")
	outputPath, _ := cmd.Flags().GetString("output")

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Duration(timeoutSecs)*time.Second)
	defer cancel()

	a, err := newApp(ctx, cfg, nil, log)
	if err != nil {
		return err
	}
	defer a.Close()

	f, err := orderFiltersFromFlags(cmd)
	if err != nil {
		return err
	}
	scope, err := scopeFromFlags(ctx, cmd, a.dashboard)
	if err != nil {
		return err
	}
	view, err := a.dashboard.OrdersView(ctx, scope, f)
	if err != nil {
		return fmt.Errorf("failed to build orders view: %w", err)
	}

	log.Info().
		Int("orders", view.Summary.Count).
		Float64("total", view.Summary.TotalValue).
		Str("location", scope.Location).
		Msg("Orders view built")

	return writeJSON(view, outputPath)
}
