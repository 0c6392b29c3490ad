// Package cmd implements the scanpipe CLI commands.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kaiachai/scanpipe/validate"
)

// Exit codes of the CLI.
const (
	ExitPass        = 0
	ExitFail        = 1
	ExitConfigError = 2
)

var (
	verbose bool

	appVersion = "dev"
)

var rootCmd = &cobra.Command{
	Use:           "scanpipe",
	Short:         "scanpipe — run a security-scan pipeline against a code checkout",
	Long:          "scanpipe orchestrates a sequence of analysis stages (static analysis, tests, fuzzing) against a checkout, enforces per-stage and global time budgets, and gates on an explicit pass/fail policy.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose (debug) logging")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)
}

// SetVersionInfo sets the version and commit for display.
func SetVersionInfo(version, commit string) {
	appVersion = version
	rootCmd.Version = version
	rootCmd.SetVersionTemplate(fmt.Sprintf("scanpipe %s (commit: %s)\n", version, commit))
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	err := rootCmd.Execute()
	if err == nil {
		return ExitPass
	}
	fmt.Fprintf(os.Stderr, "scanpipe: %v\n", err)
	if validate.IsConfigError(err) {
		return ExitConfigError
	}
	return ExitFail
}
