// Package cli provides centralized command registration.
package cli

import (
	"fmt"

	"github.com/andrei-cloud/go_paycalc/internal/commands/cli/calc"
	"github.com/andrei-cloud/go_paycalc/internal/commands/cli/emv"
	"github.com/andrei-cloud/go_paycalc/internal/commands/cli/keys"
	"github.com/andrei-cloud/go_paycalc/internal/commands/cli/mac"
	"github.com/andrei-cloud/go_paycalc/internal/commands/cli/pb"
	"github.com/andrei-cloud/go_paycalc/internal/commands/cli/server"
	"github.com/andrei-cloud/go_paycalc/internal/commands/cli/verify"
	"github.com/spf13/cobra"
)

// RegisterCommands registers all root commands.
func RegisterCommands(root *cobra.Command) error {
	builders := []struct {
		name  string
		build func() (*cobra.Command, error)
	}{
		{"calc", calc.NewCalcCommand},
		{"keys", keys.NewKeysCommand},
		{"pinblock", pb.NewPinBlockCommand},
		{"offset", verify.NewOffsetCommand},
		{"pvv", verify.NewPvvCommand},
		{"cvv", verify.NewCvvCommand},
		{"emv", emv.NewEmvCommand},
		{"mac", mac.NewMacCommand},
		{"mdc", mac.NewMdcCommand},
	}

	for _, b := range builders {
		cmd, err := b.build()
		if err != nil {
			return fmt.Errorf("failed to create %s command: %w", b.name, err)
		}
		root.AddCommand(cmd)
	}

	root.AddCommand(server.NewServeCommand())

	return nil
}
