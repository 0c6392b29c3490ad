package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kaiachai/scanpipe/config"
	"github.com/kaiachai/scanpipe/validate"
)

var validateCmd = &cobra.Command{
	Use:   "validate <definition-file>",
	Short: "Validate a pipeline definition without running it",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	def, raw, err := config.Load(args[0])
	if err != nil {
		return &validate.ConfigError{Violations: []string{err.Error()}}
	}

	schemaErrs, err := validate.Schema(raw)
	if err != nil {
		return &validate.ConfigError{Violations: []string{err.Error()}}
	}

	result := validate.Pipeline(def)
	result.Errors = append(schemaErrs, result.Errors...)

	for _, w := range result.Warnings {
		fmt.Fprintf(os.Stderr, "WARNING: %s\n", w)
	}
	if !result.IsValid() {
		for _, e := range result.Errors {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", e)
		}
		return result.Err()
	}

	fmt.Fprintf(os.Stdout, "%s is valid (%d stages)\n", args[0], len(def.Stages))
	return nil
}
