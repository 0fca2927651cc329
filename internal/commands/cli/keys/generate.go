package keys

import (
	"errors"
	"fmt"

	"github.com/andrei-cloud/go_paycalc/internal/calculator"
	"github.com/andrei-cloud/go_paycalc/internal/commands/cli/runner"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const maxKeyCount = 99

func newGenerateKeyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate random clear keys",
		Long: `Generate random clear keys with their key check values. DES keys are generated
with odd parity; AES keys are 16, 24 or 32 bytes.`,
		RunE: runGenerateKey,
	}

	cmd.Flags().String("type", "des", "Key type (des, aes)")
	cmd.Flags().String("length", "", "Key length (single, double, triple for DES; 16, 24, 32 for AES)")
	cmd.Flags().Int("count", 1, "Number of keys to generate")
	cmd.Flags().BoolP("interactive", "i", false, "Choose key type and length interactively")

	return cmd
}

func runGenerateKey(cmd *cobra.Command, _ []string) error {
	interactive, _ := cmd.Flags().GetBool("interactive")

	var choice keyChoice
	if interactive {
		c, ok, err := runKeyChoiceTUI()
		if err != nil {
			return fmt.Errorf("interactive key selection failed: %w", err)
		}
		if !ok {
			return errors.New("key generation cancelled")
		}
		choice = c
	} else {
		choice.Type, _ = cmd.Flags().GetString("type")
		choice.Length, _ = cmd.Flags().GetString("length")
		choice.Count, _ = cmd.Flags().GetInt("count")
	}

	if choice.Count < 1 || choice.Count > maxKeyCount {
		return fmt.Errorf("count must be between 1 and %d", maxKeyCount)
	}

	params := calculator.Params{"type": choice.Type}
	if choice.Length != "" {
		params["length"] = choice.Length
	}

	registry := runner.Registry()
	for i := 0; i < choice.Count; i++ {
		res := registry.Execute("cipher", calculator.OpGenerate, params, log.Logger)
		if !res.Success {
			return errors.New(res.Error)
		}
		if choice.Count > 1 {
			cmd.Printf("#%d\n", i+1)
		}
		if err := runner.Print(cmd, res); err != nil {
			return err
		}
	}

	return nil
}
