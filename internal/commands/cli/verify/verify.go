// Package verify provides the PIN and card verification value commands.
package verify

import (
	"errors"

	"github.com/andrei-cloud/go_paycalc/internal/calculator"
	"github.com/andrei-cloud/go_paycalc/internal/commands/cli/runner"
	"github.com/spf13/cobra"
)

// NewOffsetCommand creates the IBM 3624 offset command.
func NewOffsetCommand() (*cobra.Command, error) {
	cmd := &cobra.Command{
		Use:   "offset",
		Short: "IBM 3624 PIN offset",
		Long: `Compute, verify or apply IBM 3624 PIN offsets. The operation follows from the flags:
--pin computes the offset, --offset recovers the PIN, both verify, --natural prints the natural PIN.
Validation data and the decimalization table default to the configured values.`,
		Example: `  go_paycalc offset --pdk 0123456789ABCDEF --pan 4111111111111111 --pin 1234
  go_paycalc offset --pdk 0123456789ABCDEF --pan 4111111111111111 --pin 1234 --offset 4321`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			params := runner.Collect(cmd, map[string]string{
				"pdk":             "pdk",
				"pan":             "pan",
				"pin":             "pin",
				"offset":          "offset",
				"length":          "length",
				"dec-table":       "decimalization_table",
				"validation-data": "validation_data",
			})
			natural, _ := cmd.Flags().GetBool("natural")

			var op calculator.Operation
			switch {
			case natural:
				op = calculator.OpDerive
			case params.Has("pin") && params.Has("offset"):
				op = calculator.OpValidate
			case params.Has("pin"):
				op = calculator.OpGenerate
			case params.Has("offset"):
				op = calculator.OpDecode
			default:
				return errors.New("one of --pin, --offset or --natural is required")
			}

			return runner.Execute(cmd, "offset", op, params)
		},
	}

	cmd.Flags().String("pdk", "", "PIN derivation key in hex")
	cmd.Flags().String("pan", "", "Primary Account Number")
	cmd.Flags().String("pin", "", "Customer PIN")
	cmd.Flags().String("offset", "", "PIN offset")
	cmd.Flags().String("length", "", "Natural PIN length")
	cmd.Flags().Bool("natural", false, "Print the natural PIN")
	cmd.Flags().String("dec-table", "", "Decimalization table override")
	cmd.Flags().String("validation-data", "", "Validation data override as start,length,pad")
	runner.AddJSONFlag(cmd)

	if err := runner.MarkRequired(cmd, "pdk", "pan"); err != nil {
		return nil, err
	}

	return cmd, nil
}

// NewPvvCommand creates the Visa PVV command.
func NewPvvCommand() (*cobra.Command, error) {
	cmd := &cobra.Command{
		Use:   "pvv",
		Short: "Visa PIN verification value",
		Long:  `Compute a Visa PVV, or verify one when --pvv is given.`,
		Example: `  go_paycalc pvv --pvk 0123456789ABCDEFFEDCBA9876543210 --pan 4111111111111111 --pin 1234 --pvki 1`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			params := runner.Collect(cmd, map[string]string{
				"pvk": "pvk", "pan": "pan", "pin": "pin", "pvki": "pvki", "pvv": "pvv",
			})

			return runner.Execute(cmd, "pvv", generateOrValidate(params, "pvv"), params)
		},
	}

	cmd.Flags().String("pvk", "", "PIN verification key pair in hex")
	cmd.Flags().String("pan", "", "Primary Account Number")
	cmd.Flags().String("pin", "", "Customer PIN")
	cmd.Flags().String("pvki", "1", "PIN verification key index (single digit)")
	cmd.Flags().String("pvv", "", "PVV to verify")
	runner.AddJSONFlag(cmd)

	if err := runner.MarkRequired(cmd, "pvk", "pan", "pin"); err != nil {
		return nil, err
	}

	return cmd, nil
}

// NewCvvCommand creates the Visa CVV command.
func NewCvvCommand() (*cobra.Command, error) {
	cmd := &cobra.Command{
		Use:   "cvv",
		Short: "Visa card verification value",
		Long: `Compute a CVV, CVV2 or iCVV, or verify one when --cvv is given. The service code
selects the variant: 000 for CVV2, 999 for iCVV.`,
		Example: `  go_paycalc cvv --cvk 0123456789ABCDEFFEDCBA9876543210 --pan 4111111111111111 --expiry 2512 --service-code 101`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			params := runner.Collect(cmd, map[string]string{
				"cvk": "cvk", "pan": "pan", "expiry": "expiry", "service-code": "service_code", "cvv": "cvv",
			})

			return runner.Execute(cmd, "cvv", generateOrValidate(params, "cvv"), params)
		},
	}

	cmd.Flags().String("cvk", "", "Card verification key pair in hex")
	cmd.Flags().String("pan", "", "Primary Account Number")
	cmd.Flags().String("expiry", "", "Expiry date (YYMM)")
	cmd.Flags().String("service-code", "", "Service code")
	cmd.Flags().String("cvv", "", "CVV to verify")
	runner.AddJSONFlag(cmd)

	if err := runner.MarkRequired(cmd, "cvk", "pan", "expiry", "service-code"); err != nil {
		return nil, err
	}

	return cmd, nil
}

func generateOrValidate(params calculator.Params, check string) calculator.Operation {
	if params.Has(check) {
		return calculator.OpValidate
	}

	return calculator.OpGenerate
}
