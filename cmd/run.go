package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kaiachai/scanpipe/adapter"
	"github.com/kaiachai/scanpipe/config"
	"github.com/kaiachai/scanpipe/engine"
	"github.com/kaiachai/scanpipe/internal/render"
	"github.com/kaiachai/scanpipe/logging"
	"github.com/kaiachai/scanpipe/proc"
	"github.com/kaiachai/scanpipe/trigger"
	"github.com/kaiachai/scanpipe/validate"
)

var (
	runWorkdir   string
	runDryRun    bool
	runReport    string
	runEvent     string
	runRef       string
	runTarget    string
	runMockTools bool
	runEnvFile   string
)

var runCmd = &cobra.Command{
	Use:   "run <definition-file>",
	Short: "Run the pipeline defined in the given file",
	Args:  cobra.ExactArgs(1),
	RunE:  runRun,
}

func init() {
	runCmd.Flags().StringVar(&runWorkdir, "workdir", ".", "checkout directory the stages run against")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "validate and print the planned stage sequence without executing")
	runCmd.Flags().StringVar(&runReport, "report", "", "report output path (default <workdir>/.scanpipe/report.json)")
	runCmd.Flags().StringVar(&runEvent, "event", "manual", "event kind for the trigger predicate (push, pull_request, manual)")
	runCmd.Flags().StringVar(&runRef, "ref", "", "branch the event happened on")
	runCmd.Flags().StringVar(&runTarget, "target", "", "target branch for pull_request events")
	runCmd.Flags().BoolVar(&runMockTools, "mock-tools", false, "use mock adapters instead of real tools")
	runCmd.Flags().StringVar(&runEnvFile, "env", ".env", "path to .env file with stage environment variables")
}

func runRun(cmd *cobra.Command, args []string) error {
	def, raw, err := config.Load(args[0])
	if err != nil {
		return &validate.ConfigError{Violations: []string{err.Error()}}
	}

	if schemaErrs, err := validate.Schema(raw); err != nil {
		return &validate.ConfigError{Violations: []string{err.Error()}}
	} else if len(schemaErrs) > 0 {
		return &validate.ConfigError{Violations: schemaErrs}
	}

	result := validate.Pipeline(def)
	for _, w := range result.Warnings {
		fmt.Fprintf(os.Stderr, "WARNING: %s\n", w)
	}
	if !result.IsValid() {
		return result.Err()
	}

	pred, err := trigger.Compile(def.Trigger)
	if err != nil {
		return &validate.ConfigError{Violations: []string{err.Error()}}
	}
	matched, err := pred.Match(trigger.Event{Kind: runEvent, Branch: runRef, Target: runTarget})
	if err != nil {
		return err
	}
	if !matched {
		fmt.Fprintf(os.Stdout, "trigger %q not matched by event %q, nothing to do\n", def.Trigger, runEvent)
		return nil
	}

	if runDryRun {
		fmt.Fprint(os.Stdout, render.Plan(def, render.Styled()))
		return nil
	}

	workdir, err := filepath.Abs(runWorkdir)
	if err != nil {
		return fmt.Errorf("resolving workdir: %w", err)
	}

	envPath := runEnvFile
	if !filepath.IsAbs(envPath) {
		envPath = filepath.Join(workdir, envPath)
	}
	env, err := config.LoadEnvFile(envPath)
	if err != nil {
		return fmt.Errorf("loading env file: %w", err)
	}

	artifactDir := filepath.Join(workdir, ".scanpipe")
	reportPath := runReport
	if reportPath == "" {
		reportPath = filepath.Join(artifactDir, "report.json")
	}

	logger := logging.NewJSONLogger(os.Stderr, verbose)

	registry := adapter.DefaultRegistry(proc.NewGroupRunner(logger))
	if runMockTools {
		registry = adapter.MockRegistry()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := &engine.Runner{Registry: registry, Logger: logger}
	report, runErr := runner.Run(ctx, def, engine.RunOptions{
		CheckoutDir: workdir,
		Env:         env,
		ArtifactDir: artifactDir,
	})
	if report == nil {
		return runErr
	}

	if err := engine.WriteReport(reportPath, report); err != nil {
		fmt.Fprintf(os.Stderr, "WARNING: %v\n", err)
	}
	fmt.Fprint(os.Stdout, render.Summary(report, render.Styled()))
	fmt.Fprintf(os.Stdout, "report written to %s\n", reportPath)

	return runErr
}
