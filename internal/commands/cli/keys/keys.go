// Package keys provides key management commands: generation, check values and raw ciphering.
package keys

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewKeysCommand creates the keys command with subcommands.
func NewKeysCommand() (*cobra.Command, error) {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Key generation and verification",
		Long: `Generate clear DES and AES keys, compute and check key check values (KCV)
and encrypt or decrypt data under a clear key.`,
		Example: `  # Generate a double length DES key
  go_paycalc keys generate --length double

  # Pick the key type interactively
  go_paycalc keys generate --interactive

  # Compute the KCV of a key
  go_paycalc keys check --key 0123456789ABCDEFFEDCBA9876543210`,
	}

	builders := []struct {
		name  string
		build func() (*cobra.Command, error)
	}{
		{"check", newCheckKeyCommand},
		{"encrypt", func() (*cobra.Command, error) { return newCipherCommand(true) }},
		{"decrypt", func() (*cobra.Command, error) { return newCipherCommand(false) }},
	}

	cmd.AddCommand(newGenerateKeyCommand())
	for _, b := range builders {
		sub, err := b.build()
		if err != nil {
			return nil, fmt.Errorf("failed to create '%s' subcommand: %w", b.name, err)
		}
		cmd.AddCommand(sub)
	}

	return cmd, nil
}
