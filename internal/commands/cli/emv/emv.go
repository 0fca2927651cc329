// Package emv provides EMV key derivation and cryptogram commands.
package emv

import (
	"fmt"

	"github.com/andrei-cloud/go_paycalc/internal/calculator"
	"github.com/andrei-cloud/go_paycalc/internal/commands/cli/runner"
	"github.com/spf13/cobra"
)

// NewEmvCommand creates the emv command with subcommands.
func NewEmvCommand() (*cobra.Command, error) {
	cmd := &cobra.Command{
		Use:   "emv",
		Short: "EMV key derivation and application cryptograms",
		Long: `Derive EMV card master keys (UDK) and session keys, and generate or verify
ARQC and ARPC cryptograms. Schemes: mastercard, visa, common, aes, template.`,
		Example: `  # Derive UDK and session key
  go_paycalc emv derive --scheme common --master-key 0123456789ABCDEFFEDCBA9876543210 \
    --pan 5413330089600010 --pan-sequence 01 --atc 001C

  # Verify an ARQC
  go_paycalc emv arqc --session-key <hex> --data <hex> --arqc <hex>`,
	}

	builders := []struct {
		name  string
		build func() (*cobra.Command, error)
	}{
		{"derive", newDeriveCommand},
		{"arqc", newArqcCommand},
		{"arpc", newArpcCommand},
	}
	for _, b := range builders {
		sub, err := b.build()
		if err != nil {
			return nil, fmt.Errorf("failed to create '%s' subcommand: %w", b.name, err)
		}
		cmd.AddCommand(sub)
	}

	return cmd, nil
}

func newDeriveCommand() (*cobra.Command, error) {
	cmd := &cobra.Command{
		Use:   "derive",
		Short: "Derive the card master key and, with --atc, the session key",
		RunE: func(cmd *cobra.Command, _ []string) error {
			params := runner.Collect(cmd, map[string]string{
				"scheme":       "scheme",
				"master-key":   "master_key",
				"pan":          "pan",
				"pan-sequence": "pan_sequence",
				"atc":          "atc",
				"un":           "un",
			})

			return runner.Execute(cmd, "emv", calculator.OpDerive, params)
		},
	}

	cmd.Flags().String("scheme", "common", "Derivation scheme")
	cmd.Flags().String("master-key", "", "Issuer master key in hex")
	cmd.Flags().String("pan", "", "Primary Account Number")
	cmd.Flags().String("pan-sequence", "00", "PAN sequence number")
	cmd.Flags().String("atc", "", "Application transaction counter in hex")
	cmd.Flags().String("un", "", "Unpredictable number in hex (MasterCard)")
	runner.AddJSONFlag(cmd)

	if err := runner.MarkRequired(cmd, "master-key", "pan"); err != nil {
		return nil, err
	}

	return cmd, nil
}

func newArqcCommand() (*cobra.Command, error) {
	cmd := &cobra.Command{
		Use:   "arqc",
		Short: "Generate an ARQC, or verify one when --arqc is given",
		RunE: func(cmd *cobra.Command, _ []string) error {
			params := runner.Collect(cmd, map[string]string{
				"scheme": "scheme", "session-key": "session_key", "data": "data", "arqc": "arqc",
			})
			op := calculator.OpGenerate
			if params.Has("arqc") {
				op = calculator.OpValidate
			}

			return runner.Execute(cmd, "emv", op, params)
		},
	}

	cmd.Flags().String("scheme", "common", "Derivation scheme")
	cmd.Flags().String("session-key", "", "Session key in hex")
	cmd.Flags().String("data", "", "Transaction data in hex")
	cmd.Flags().String("arqc", "", "ARQC to verify")
	runner.AddJSONFlag(cmd)

	if err := runner.MarkRequired(cmd, "session-key", "data"); err != nil {
		return nil, err
	}

	return cmd, nil
}

func newArpcCommand() (*cobra.Command, error) {
	cmd := &cobra.Command{
		Use:   "arpc",
		Short: "Generate an ARPC with method 1 (--arc) or method 2 (--csu)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			params := runner.Collect(cmd, map[string]string{
				"session-key":    "session_key",
				"arqc":           "arqc",
				"arc":            "arc",
				"csu":            "csu",
				"prop-auth-data": "prop_auth_data",
			})
			switch {
			case params.Has("arc") == params.Has("csu"):
				return fmt.Errorf("exactly one of --arc or --csu is required")
			case params.Has("csu"):
				params["cryptogram"] = "ARPC2"
			default:
				params["cryptogram"] = "ARPC1"
			}

			return runner.Execute(cmd, "emv", calculator.OpGenerate, params)
		},
	}

	cmd.Flags().String("session-key", "", "Session key in hex")
	cmd.Flags().String("arqc", "", "ARQC in hex")
	cmd.Flags().String("arc", "", "Authorisation response code in hex (method 1)")
	cmd.Flags().String("csu", "", "Card status update in hex (method 2)")
	cmd.Flags().String("prop-auth-data", "", "Proprietary authentication data in hex (method 2)")
	runner.AddJSONFlag(cmd)

	if err := runner.MarkRequired(cmd, "session-key", "arqc"); err != nil {
		return nil, err
	}

	return cmd, nil
}
