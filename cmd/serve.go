package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"cafedash/internal/logger"
	"cafedash/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Serve the sheet proxy, order submission and dashboard endpoints.

Routes:
  GET|POST /api/get-sheet-data          rows of one tab, keyed by header
  POST     /api/send-order              forward a JSON order to ORDER_WEBHOOK_URL
  GET      /api/providers               provider catalogue
  POST     /api/orders/quote            price an order without sending it
  POST     /api/orders                  price and submit an order
  GET      /api/dashboard/orders        filtered orders, summary and charts
  GET      /api/dashboard/invoices      filtered invoices, summary and charts
  GET      /api/dashboard/*/export      the same views as XLSX
  GET      /api/invoices/{id}/items     line items of one invoice
  GET      /healthz, /metrics

Dashboard routes need the X-User-Email header of a known manager.`,
	Example: `  # Serve on the configured ADDR
  cafedash serve

  # Serve on another port
  cafedash serve --addr :8080`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "Listen address (default: ADDR)")
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("serve")

	cfg, err := requireConfig()
	if err != nil {
		return err
	}
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Addr = addr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := server.NewMetrics()
	a, err := newApp(ctx, cfg, metrics, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close Redis client")
		}
	}()

	if a.webhook == nil {
		log.Warn().Msg("ORDER_WEBHOOK_URL not set, order submission is disabled")
	}

	log.Info().
		Str("addr", cfg.Addr).
		Str("source", cfg.Source).
		Str("version", version).
		Msg("Starting cafedash server")

	return server.New(cfg, a.serverDeps()).Run(ctx)
}
