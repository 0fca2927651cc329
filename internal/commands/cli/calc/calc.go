// Package calc provides the generic calculator commands.
package calc

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/andrei-cloud/go_paycalc/internal/calculator"
	"github.com/andrei-cloud/go_paycalc/internal/commands/cli/runner"
	"github.com/spf13/cobra"
)

// NewCalcCommand creates the calc command with subcommands.
func NewCalcCommand() (*cobra.Command, error) {
	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Run any calculator operation",
		Long: `Run an operation on a named calculator. Parameters are passed as name=value pairs
and use the same names as the TCP and HTTP interfaces.`,
		Example: `  # Compute a key check value
  go_paycalc calc --calculator kcv --op generate --param key=0123456789ABCDEF

  # List calculators and their operations
  go_paycalc calc list`,
		RunE: runCalc,
	}

	cmd.Flags().StringP("calculator", "c", "", "Calculator name")
	cmd.Flags().StringP("op", "o", "", "Operation (derive, generate, validate, ...)")
	cmd.Flags().StringArrayP("param", "p", nil, "Parameter as name=value (repeatable)")
	runner.AddJSONFlag(cmd)

	if err := runner.MarkRequired(cmd, "calculator", "op"); err != nil {
		return nil, err
	}

	cmd.AddCommand(newListCommand())

	cmd.AddCommand(newBitmapCommand())

	return cmd, nil
}

func runCalc(cmd *cobra.Command, _ []string) error {
	name, _ := cmd.Flags().GetString("calculator")
	opName, _ := cmd.Flags().GetString("op")
	pairs, _ := cmd.Flags().GetStringArray("param")

	op, err := calculator.ParseOperation(opName)
	if err != nil {
		return err
	}
	params, err := ParseParams(pairs)
	if err != nil {
		return err
	}

	return runner.Execute(cmd, name, op, params)
}

// ParseParams converts name=value pairs into calculator parameters. Names are lower cased.
func ParseParams(pairs []string) (calculator.Params, error) {
	params := calculator.Params{}
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		name = strings.ToLower(strings.TrimSpace(name))
		if !ok || name == "" {
			return nil, fmt.Errorf("%w: expected name=value, got %q", calculator.ErrInvalidParam, pair)
		}
		params[name] = value
	}

	return params, nil
}

func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available calculators",
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "calculator\toperations\tdescription")
			for _, c := range runner.Registry().List() {
				ops := make([]string, 0, len(c.Operations()))
				for _, op := range c.Operations() {
					ops = append(ops, string(op))
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", c.Name(), strings.Join(ops, ","), c.Description())
			}

			return w.Flush()
		},
	}
}

func newBitmapCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bitmap",
		Short: "Decode or encode an ISO 8583 bitmap",
		Example: `  # Decode a primary bitmap
  go_paycalc calc bitmap --bitmap 7230000000000000

  # Encode a field list
  go_paycalc calc bitmap --fields 2,3,4,7,11,12`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			params := runner.Collect(cmd, map[string]string{"bitmap": "bitmap", "fields": "fields"})
			switch {
			case params.Has("bitmap") == params.Has("fields"):
				return fmt.Errorf("exactly one of --bitmap or --fields is required")
			case params.Has("bitmap"):
				return runner.Execute(cmd, "bitmap", calculator.OpDecode, params)
			default:
				return runner.Execute(cmd, "bitmap", calculator.OpEncode, params)
			}
		},
	}

	cmd.Flags().String("bitmap", "", "Bitmap in hex (16 or 32 digits)")
	cmd.Flags().String("fields", "", "Comma separated field numbers")
	runner.AddJSONFlag(cmd)

	return cmd
}
