// Package pb provides PIN block related commands.
package pb

import (
	"fmt"

	"github.com/andrei-cloud/go_paycalc/internal/calculator"
	"github.com/andrei-cloud/go_paycalc/internal/commands/cli/runner"
	"github.com/andrei-cloud/go_paycalc/pkg/pinblock"
	"github.com/spf13/cobra"
)

// NewPinBlockCommand creates the pinblock command with subcommands.
func NewPinBlockCommand() (*cobra.Command, error) {
	cmd := &cobra.Command{
		Use:     "pinblock",
		Aliases: []string{"pb"},
		Short:   "PIN block operations",
		Long: `PIN block operations for building PIN blocks, extracting PINs and translating
PIN blocks between keys and formats. Supports ISO 9564 formats 0 to 4.`,
		Example: `  # Generate an ISO format 0 PIN block
  go_paycalc pinblock create --pin 1234 --pan 4111111111111111 --format ISO0

  # Extract the PIN from a PIN block
  go_paycalc pinblock extract --pinblock 041225EEEEEEEEEE --pan 4111111111111111 --format ISO0

  # List supported formats
  go_paycalc pinblock formats`,
	}

	builders := []struct {
		name  string
		build func() (*cobra.Command, error)
	}{
		{"create", newCreateCommand},
		{"extract", newExtractCommand},
		{"translate", newTranslateCommand},
	}
	for _, b := range builders {
		sub, err := b.build()
		if err != nil {
			return nil, fmt.Errorf("failed to create '%s' subcommand: %w", b.name, err)
		}
		cmd.AddCommand(sub)
	}

	cmd.AddCommand(newFormatsCommand())

	return cmd, nil
}

func newCreateCommand() (*cobra.Command, error) {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Generate a PIN block",
		Long: `Generate a PIN block from a PIN, PAN and format. The PIN should be 4-12 digits.
With --key the PIN block is returned enciphered under that key; ISO format 4 needs an AES key.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			params := runner.Collect(cmd, map[string]string{
				"pin": "pin", "pan": "pan", "format": "format", "key": "key", "nonce": "nonce",
			})

			return runner.Execute(cmd, "pinblock", calculator.OpEncode, params)
		},
	}

	cmd.Flags().String("pin", "", "PIN (4-12 digits)")
	cmd.Flags().String("pan", "", "Primary Account Number")
	cmd.Flags().String("format", "", "PIN block format (ISO0-ISO4 or Thales code)")
	cmd.Flags().String("key", "", "Optional encryption key in hex")
	cmd.Flags().String("nonce", "", "Optional fill or nonce in hex")
	runner.AddJSONFlag(cmd)

	if err := runner.MarkRequired(cmd, "pin", "format"); err != nil {
		return nil, err
	}

	return cmd, nil
}

func newExtractCommand() (*cobra.Command, error) {
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract a PIN from a PIN block",
		RunE: func(cmd *cobra.Command, _ []string) error {
			params := runner.Collect(cmd, map[string]string{
				"pinblock": "pin_block", "pan": "pan", "format": "format", "key": "key",
			})

			return runner.Execute(cmd, "pinblock", calculator.OpDecode, params)
		},
	}

	cmd.Flags().String("pinblock", "", "PIN block in hex")
	cmd.Flags().String("pan", "", "Primary Account Number")
	cmd.Flags().String("format", "", "PIN block format (ISO0-ISO4 or Thales code)")
	cmd.Flags().String("key", "", "Optional decryption key in hex")
	runner.AddJSONFlag(cmd)

	if err := runner.MarkRequired(cmd, "pinblock", "format"); err != nil {
		return nil, err
	}

	return cmd, nil
}

func newTranslateCommand() (*cobra.Command, error) {
	cmd := &cobra.Command{
		Use:   "translate",
		Short: "Translate an encrypted PIN block to another key and format",
		Example: `  go_paycalc pinblock translate --pinblock <hex> --pan 4111111111111111 \
    --source-key 0123456789ABCDEF --source-format ISO0 \
    --dest-key FEDCBA9876543210 --dest-format ISO3`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			params := runner.Collect(cmd, map[string]string{
				"pinblock":      "pin_block",
				"pan":           "pan",
				"source-key":    "source_key",
				"source-format": "source_format",
				"dest-key":      "dest_key",
				"dest-format":   "dest_format",
				"nonce":         "nonce",
			})

			return runner.Execute(cmd, "pinblock", calculator.OpTranslate, params)
		},
	}

	cmd.Flags().String("pinblock", "", "Encrypted PIN block in hex")
	cmd.Flags().String("pan", "", "Primary Account Number")
	cmd.Flags().String("source-key", "", "Source key in hex")
	cmd.Flags().String("source-format", "", "Source PIN block format")
	cmd.Flags().String("dest-key", "", "Destination key in hex")
	cmd.Flags().String("dest-format", "", "Destination PIN block format")
	cmd.Flags().String("nonce", "", "Optional fill or nonce for the destination block")
	runner.AddJSONFlag(cmd)

	if err := runner.MarkRequired(
		cmd, "pinblock", "source-key", "source-format", "dest-key", "dest-format",
	); err != nil {
		return nil, err
	}

	return cmd, nil
}

func newFormatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List supported PIN block formats",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return pinblock.PrintSupportedFormats(cmd.OutOrStdout())
		},
	}
}
