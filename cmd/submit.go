package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"cafedash/internal/logger"
	"cafedash/internal/ordering"
)

var submitCmd = &cobra.Command{
	Use:   "submit [order.json]",
	Short: "Price an order and send it to the order webhook",
	Long: `Read an order request, price it against the provider catalogue and send
the resulting purchase order to ORDER_WEBHOOK_URL. Use "-" to read the
request from stdin.

Request format:
  {
    "requester": "Ana",
    "email": "ana@cafe.cl",
    "location": "Centro",
    "provider_id": "comercial-ccu-s-a",
    "items": [{"product": "Coca-Cola lata", "quantity": 12}],
    "note": "entregar antes de las 10"
  }

With --dry-run the quote is printed and nothing is sent.`,
	Example: `  # Show the price without sending
  cafedash submit order.json --dry-run

  # Send an order piped from another tool
  cat order.json | cafedash submit -`,
	Args: cobra.ExactArgs(1),
	RunE: runSubmit,
}

func init() {
	rootCmd.AddCommand(submitCmd)

	submitCmd.Flags().Bool("dry-run", false, "Only print the quote")
	submitCmd.Flags().Int("timeout", 60, "Timeout in seconds")
}

func readOrderRequest(path string) (ordering.OrderRequest, error) {
	var req ordering.OrderRequest

	var in io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return req, fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer f.Close()
		in = f
	}

	dec := json.NewDecoder(in)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return req, fmt.Errorf("invalid order JSON: %w", err)
	}
	return req, nil
}

func runSubmit(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("submit")

	cfg, err := requireConfig()
	if err != nil {
		return err
	}
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")
	if !dryRun {
		if err := cfg.RequireWebhook(); err != nil {
			return err
		}
	}

	req, err := readOrderRequest(args[0])
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

	if err := a.composer.Validate(req); err != nil {
		var verr *ordering.ValidationError
		if errors.As(err, &verr) {
			for _, f := range verr.Fields {
				fmt.Fprintf(os.Stderr, "  %s: %s\n", f.Field, f.Message)
			}
		}
		return err
	}
	provider, err := a.loader.Provider(ctx, req.ProviderID)
	if err != nil {
		return err
	}

	if dryRun {
		quote, err := a.composer.Quote(req, provider)
		if err != nil {
			return err
		}
		return writeJSON(quote, "")
	}

	order, err := a.composer.Compose(req, provider)
	if err != nil {
		return err
	}
	resp, err := a.webhook.Submit(ctx, order)
	if err != nil {
		if resp != nil {
			fmt.Fprintf(os.Stderr, "webhook answered %d: %s\n", resp.Status, resp.Body)
		}
		return err
	}

	log.Info().
		Str("order_id", order.ID).
		Str("supplier", order.Supplier).
		Float64("total", order.Total).
		Int("webhook_status", resp.Status).
		Msg("Order submitted")
	return writeJSON(order, "")
}
