// Package validate checks pipeline definitions against the format schema and
// the engine's structural invariants before anything is executed.
package validate

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/kaiachai/scanpipe/trigger"
	"github.com/kaiachai/scanpipe/types"
)

var (
	stageNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

	knownTools = map[string]bool{
		types.ToolStaticAnalysis: true,
		types.ToolTestRunner:     true,
		types.ToolFuzzRunner:     true,
	}
	knownPolicies = map[types.FailurePolicy]bool{
		types.FailureAbort:         true,
		types.FailureContinue:      true,
		types.FailureSkipRemaining: true,
	}
)

// ConfigError is the fatal validation error for a pipeline definition. It
// carries every violation found so the user can fix them in one pass.
type ConfigError struct {
	Violations []string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid pipeline definition: %s", strings.Join(e.Violations, "; "))
}

// IsConfigError reports whether err is (or wraps) a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// ValidationResult holds errors and warnings from definition validation.
type ValidationResult struct {
	Errors   []string
	Warnings []string
}

// IsValid returns true if there are no validation errors.
func (r *ValidationResult) IsValid() bool {
	return len(r.Errors) == 0
}

// Err converts the result into a ConfigError, or nil when valid.
func (r *ValidationResult) Err() error {
	if r.IsValid() {
		return nil
	}
	return &ConfigError{Violations: r.Errors}
}

// Pipeline checks a parsed definition against the engine invariants:
// unique stage names, positive timeouts, known tools and policies, and the
// required/on_failure contradiction rule.
func Pipeline(def *types.PipelineDefinition) *ValidationResult {
	r := &ValidationResult{}

	if def.Name == "" {
		r.Errors = append(r.Errors, "name is required")
	}
	if def.GlobalTimeoutSeconds <= 0 {
		r.Errors = append(r.Errors, "global_timeout_seconds must be > 0")
	}
	if len(def.Stages) == 0 {
		r.Errors = append(r.Errors, "at least one stage is required")
	}

	if _, err := trigger.Compile(def.Trigger); err != nil {
		r.Errors = append(r.Errors, err.Error())
	}

	seen := make(map[string]bool, len(def.Stages))
	globalBudget := 0
	for i, s := range def.Stages {
		where := fmt.Sprintf("stages[%d]", i)
		if s.Name != "" {
			where = fmt.Sprintf("stage %q", s.Name)
		}

		if s.Name == "" {
			r.Errors = append(r.Errors, fmt.Sprintf("%s: name is required", where))
		} else if !stageNamePattern.MatchString(s.Name) {
			r.Errors = append(r.Errors, fmt.Sprintf("%s: name must match %s", where, stageNamePattern))
		} else if seen[s.Name] {
			r.Errors = append(r.Errors, fmt.Sprintf("%s: duplicate stage name", where))
		}
		seen[s.Name] = true

		if !knownTools[s.Tool] {
			r.Errors = append(r.Errors, fmt.Sprintf("%s: unknown tool %q (known: %s, %s, %s)",
				where, s.Tool, types.ToolStaticAnalysis, types.ToolTestRunner, types.ToolFuzzRunner))
		}
		if s.Command == "" {
			r.Errors = append(r.Errors, fmt.Sprintf("%s: command is required", where))
		}
		if s.TimeoutSeconds <= 0 {
			r.Errors = append(r.Errors, fmt.Sprintf("%s: timeout_seconds must be > 0", where))
		}
		if !knownPolicies[s.OnFailure] {
			r.Errors = append(r.Errors, fmt.Sprintf("%s: on_failure %q must be one of: abort, continue, skip-remaining",
				where, s.OnFailure))
		}

		// A required stage that is also ignorable is a contradiction:
		// required stages may only abort or skip the remainder.
		if s.Required && s.OnFailure == types.FailureContinue {
			r.Errors = append(r.Errors, fmt.Sprintf("%s: required stages may not use on_failure: continue", where))
		}

		if len(s.Targets) > 0 && s.Tool != types.ToolFuzzRunner {
			r.Errors = append(r.Errors, fmt.Sprintf("%s: targets are only valid for %s stages", where, types.ToolFuzzRunner))
		}

		globalBudget += s.TimeoutSeconds
	}

	if def.GlobalTimeoutSeconds > 0 && globalBudget > def.GlobalTimeoutSeconds {
		r.Warnings = append(r.Warnings, fmt.Sprintf(
			"stage timeouts sum to %ds, which exceeds global_timeout_seconds %d; later stages may be cut off",
			globalBudget, def.GlobalTimeoutSeconds))
	}

	return r
}
