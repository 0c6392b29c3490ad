// Package types holds the pipeline definition types loaded from a
// pipeline.yaml document.
package types

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Tool kinds an adapter can be registered under.
const (
	ToolStaticAnalysis = "static-analysis"
	ToolTestRunner     = "test-runner"
	ToolFuzzRunner     = "fuzz-runner"
)

// FailurePolicy controls how the scheduler reacts when a stage does not succeed.
type FailurePolicy string

const (
	// FailureAbort stops the run immediately; remaining stages are recorded
	// as skipped.
	FailureAbort FailurePolicy = "abort"
	// FailureContinue advances to the next stage regardless of the result.
	FailureContinue FailurePolicy = "continue"
	// FailureSkipRemaining records the failing result, then marks every
	// later stage as skipped without aborting the run.
	FailureSkipRemaining FailurePolicy = "skip-remaining"
)

// PipelineDefinition is the top-level pipeline document. It is immutable
// once loaded; the engine never writes back to it.
type PipelineDefinition struct {
	Name                 string            `yaml:"name"`
	GlobalTimeoutSeconds int               `yaml:"global_timeout_seconds"`
	Trigger              string            `yaml:"trigger,omitempty"`
	Stages               []StageDescriptor `yaml:"stages"`
}

// StageDescriptor specifies one pipeline stage: which tool runs it, how it
// is invoked, and how its failure is treated.
type StageDescriptor struct {
	Name           string        `yaml:"name"`
	Tool           string        `yaml:"tool"`
	Command        string        `yaml:"command"`
	Args           []string      `yaml:"args,omitempty"`
	WorkingDir     string        `yaml:"working_dir,omitempty"`
	TimeoutSeconds int           `yaml:"timeout_seconds"`
	OnFailure      FailurePolicy `yaml:"on_failure"`
	Required       bool          `yaml:"required,omitempty"`
	// Targets is only meaningful for fuzz stages: each target is appended
	// to the command arguments and run by the adapter internally.
	Targets []string `yaml:"targets,omitempty"`
}

// Timeout returns the stage timeout as a duration.
func (s StageDescriptor) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// GlobalTimeout returns the whole-run timeout as a duration.
func (p *PipelineDefinition) GlobalTimeout() time.Duration {
	return time.Duration(p.GlobalTimeoutSeconds) * time.Second
}

// StageNames returns the stage names in declaration order.
func (p *PipelineDefinition) StageNames() []string {
	names := make([]string, 0, len(p.Stages))
	for _, s := range p.Stages {
		names = append(names, s.Name)
	}
	return names
}

// ParsePipelineDefinition parses raw YAML bytes into a PipelineDefinition and
// checks the fields without which nothing else can proceed. Full invariant
// checking lives in the validate package.
func ParsePipelineDefinition(data []byte) (*PipelineDefinition, error) {
	var def PipelineDefinition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("parsing pipeline definition: %w", err)
	}

	if def.Name == "" {
		return nil, fmt.Errorf("pipeline definition: name is required")
	}
	if len(def.Stages) == 0 {
		return nil, fmt.Errorf("pipeline definition: at least one stage is required")
	}

	return &def, nil
}
