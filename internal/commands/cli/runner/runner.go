// Package runner executes calculator operations for the CLI commands and prints results.
package runner

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/andrei-cloud/go_paycalc/internal/calculator"
	"github.com/andrei-cloud/go_paycalc/internal/config"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// Registry builds the calculator registry from the loaded configuration.
func Registry() *calculator.Registry {
	cfg := config.Get()

	return calculator.NewRegistry(calculator.Settings{
		DecimalizationTable: cfg.Calculator.DecimalizationTable,
		ValidationData:      cfg.Calculator.ValidationData,
	})
}

// Execute runs op on the named calculator and prints the result to the command output.
// A failed result is returned as an error.
func Execute(cmd *cobra.Command, name string, op calculator.Operation, params calculator.Params) error {
	res := Registry().Execute(name, op, params, log.Logger)
	if !res.Success {
		return errors.New(res.Error)
	}

	asJSON, _ := cmd.Flags().GetBool("json")
	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")

		return enc.Encode(res)
	}

	return Print(cmd, res)
}

// Print writes the result data as an aligned key/value table, followed by the algorithm.
func Print(cmd *cobra.Command, res calculator.Result) error {
	keys := make([]string, 0, len(res.Data))
	for k := range res.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	for _, k := range keys {
		fmt.Fprintf(w, "%s:\t%s\n", k, res.Data[k])
	}
	if res.Metadata.Algorithm != "" {
		fmt.Fprintf(w, "algorithm:\t%s\n", res.Metadata.Algorithm)
	}

	return w.Flush()
}

// Collect copies every set string flag named in flags into params under its mapped name.
func Collect(cmd *cobra.Command, flags map[string]string) calculator.Params {
	params := calculator.Params{}
	for flag, param := range flags {
		f := cmd.Flags().Lookup(flag)
		if f == nil || f.Value.String() == "" {
			continue
		}
		params[param] = f.Value.String()
	}

	return params
}

// AddJSONFlag registers the --json output switch on cmd.
func AddJSONFlag(cmd *cobra.Command) {
	cmd.Flags().Bool("json", false, "Print the full result as JSON")
}

// MarkRequired marks flags as required on cmd.
func MarkRequired(cmd *cobra.Command, names ...string) error {
	for _, name := range names {
		if err := cmd.MarkFlagRequired(name); err != nil {
			return fmt.Errorf("failed to mark %s flag as required: %w", name, err)
		}
	}

	return nil
}
