package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"cafedash/internal/config"
	"cafedash/internal/logger"
)

var version = "1.0.0"

// Set by Execute before any command runs.
var (
	appConfig *config.Config
	configErr error
)

var rootCmd = &cobra.Command{
	Use:   "cafedash",
	Short: "Back office for the café chain spreadsheet",
	Long: `cafedash reads the chain's Google spreadsheet (purchase orders, supplier
invoices, invoice line items, provider catalogue and location managers),
normalizes every tab into typed records and serves filtered dashboards,
exports and order submission on top of them.

Configuration comes from the environment, optionally loaded from a .env
file. Run "cafedash check-env" to see what is missing.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// requireConfig returns the loaded configuration, or the reason it could
// not be loaded.
func requireConfig() (*config.Config, error) {
	if configErr != nil {
		return nil, fmt.Errorf("invalid configuration (run \"cafedash check-env\"): %w", configErr)
	}
	if appConfig == nil {
		return nil, fmt.Errorf("configuration not loaded")
	}
	return appConfig, nil
}

// Execute runs the root command. cfgErr is the error config.Load returned,
// kept so that check-env can report it and other commands can refuse to run.
func Execute(cfg *config.Config, cfgErr error) {
	log := logger.WithComponent("cmd")
	appConfig, configErr = cfg, cfgErr

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
