package keys

import (
	"github.com/andrei-cloud/go_paycalc/internal/calculator"
	"github.com/andrei-cloud/go_paycalc/internal/commands/cli/runner"
	"github.com/spf13/cobra"
)

func newCheckKeyCommand() (*cobra.Command, error) {
	cmd := &cobra.Command{
		Use:     "check",
		Aliases: []string{"kcv"},
		Short:   "Compute or verify a key check value",
		Long: `Compute the key check value (KCV) of a clear key. With --kcv the computed value is
compared against the expected one instead.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			params := runner.Collect(cmd, map[string]string{
				"key": "key", "kcv": "kcv", "type": "type", "length": "length",
			})
			op := calculator.OpGenerate
			if params.Has("kcv") {
				op = calculator.OpValidate
			}

			return runner.Execute(cmd, "kcv", op, params)
		},
	}

	cmd.Flags().String("key", "", "Clear key in hex")
	cmd.Flags().String("kcv", "", "Expected check value to verify")
	cmd.Flags().String("type", "", "Key type (des, aes)")
	cmd.Flags().String("length", "", "KCV length in bytes")
	runner.AddJSONFlag(cmd)

	if err := runner.MarkRequired(cmd, "key"); err != nil {
		return nil, err
	}

	return cmd, nil
}

func newCipherCommand(encrypt bool) (*cobra.Command, error) {
	use, short, op := "decrypt", "Decrypt data under a clear key", calculator.OpDecrypt
	if encrypt {
		use, short, op = "encrypt", "Encrypt data under a clear key", calculator.OpEncrypt
	}

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Long: `Single DES or triple DES in ECB or CBC mode. Data must be a multiple of 8 bytes;
CBC uses a zero IV unless --iv is given.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			params := runner.Collect(cmd, map[string]string{
				"key": "key", "data": "data", "mode": "mode", "iv": "iv",
			})

			return runner.Execute(cmd, "cipher", op, params)
		},
	}

	cmd.Flags().String("key", "", "Clear key in hex")
	cmd.Flags().String("data", "", "Data in hex")
	cmd.Flags().String("mode", "ECB", "Cipher mode (ECB, CBC)")
	cmd.Flags().String("iv", "", "Initialization vector in hex")
	runner.AddJSONFlag(cmd)

	if err := runner.MarkRequired(cmd, "key", "data"); err != nil {
		return nil, err
	}

	return cmd, nil
}
