// Package main provides the operator CLI for the bill ingest service.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/wattwise/bill-ingest-service/internal/config"
	"github.com/wattwise/bill-ingest-service/internal/logging"
	"github.com/wattwise/bill-ingest-service/internal/models"
)

var (
	// Global flags
	cfgFile string
	verbose bool

	// Configuration and logger
	cfg    *models.Config
	logger zerolog.Logger
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "billctl",
		Short: "Operator tooling for the bill ingest service",
		Long: `billctl classifies extraction documents offline, retries failed billing
calls and manages the billing endpoint configuration store.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()

			var err error
			cfg, _, err = config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			logCfg := models.LogConfig{Level: "warn", Format: "console"}
			if verbose {
				logCfg.Level = "debug"
			}
			logger = logging.New(logCfg, cmd.ErrOrStderr())
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	root.AddCommand(newClassifyCmd())
	root.AddCommand(newRetryCmd())
	root.AddCommand(newEndpointsCmd())
	root.AddCommand(newMigrateCmd())
	root.AddCommand(newTokenCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
