// Package cli provides the CLI command structure for go_paycalc.
package cli

import (
	"fmt"

	"github.com/andrei-cloud/go_paycalc/internal/config"
	"github.com/andrei-cloud/go_paycalc/internal/logging"
	"github.com/spf13/cobra"
)

// NewRootCommand creates and returns the root command with all subcommands.
func NewRootCommand() (*cobra.Command, error) {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "go_paycalc",
		Short: "Payment cryptography calculators",
		Long: `Calculators for payment card cryptography: PIN blocks, PIN offsets, PVV and CVV,
EMV key derivation and cryptograms, MACs, key check values, MDC-2 and ISO 8583 bitmaps.
The same calculators are served over TCP and HTTP by the serve command.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.Initialize(cfgFile, cmd.Flags()); err != nil {
				return fmt.Errorf("failed to initialize configuration: %w", err)
			}
			cfg := config.Get()
			logging.InitLogger(cfg.Debug(), cfg.Human())

			return nil
		},
	}

	rootCmd.PersistentFlags().
		StringVar(&cfgFile, "config", "", "config file (default is $HOME/.go_paycalc/config.yaml)")

	// Global flags that override config file settings.
	rootCmd.PersistentFlags().
		String("log-level", "info", "logging level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "", "logging format (human, json)")
	rootCmd.PersistentFlags().
		String("decimalization-table", "", "default decimalization table (16 digits)")
	rootCmd.PersistentFlags().
		String("validation-data", "", "default validation data as start,length,pad")

	if err := RegisterCommands(rootCmd); err != nil {
		return nil, fmt.Errorf("failed to register commands: %w", err)
	}

	return rootCmd, nil
}
