package engine

import (
	"context"
	"time"

	"github.com/kaiachai/scanpipe/adapter"
	"github.com/kaiachai/scanpipe/logging"
	"github.com/kaiachai/scanpipe/types"
)

// Scheduler sequences the stages of a pipeline definition in declaration
// order, one at a time, and applies each stage's failure policy to decide
// whether to continue, skip the remainder, or abort.
type Scheduler struct {
	Executor *Executor
	Registry *adapter.Registry
	Logger   logging.Logger
}

// ScheduleOutcome is what one scheduler run produced: one result per
// declared stage (in declaration order, skipped stages included), whether
// the run aborted, and the recorded phase trace.
type ScheduleOutcome struct {
	Results []StageResult
	Aborted bool
	Trace   Trace
}

type decision int

const (
	decideAdvance decision = iota
	decideAbort
	decideSkipRemaining
)

// decide applies the stage's failure policy to its result status.
// on_failure: abort aborts regardless of the required flag; required only
// matters for aggregation.
func decide(stage types.StageDescriptor, status Status) decision {
	if status == StatusSuccess {
		return decideAdvance
	}
	switch stage.OnFailure {
	case types.FailureContinue:
		return decideAdvance
	case types.FailureSkipRemaining:
		return decideSkipRemaining
	default:
		return decideAbort
	}
}

func (s *Scheduler) logger() logging.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return logging.NopLogger{}
}

// Run executes the definition's stages strictly sequentially. It never
// returns an error: every stage-level problem is captured as a StageResult
// status and drives the state machine.
func (s *Scheduler) Run(ctx context.Context, def *types.PipelineDefinition, rc adapter.RunContext) *ScheduleOutcome {
	out := &ScheduleOutcome{Results: make([]StageResult, 0, len(def.Stages))}

	skipRemaining := false
	for _, stage := range def.Stages {
		if skipRemaining || ctx.Err() != nil {
			out.transition(stage.Name, PhasePending, PhaseSkipped)
			out.Results = append(out.Results, skippedResult(stage))
			continue
		}

		out.transition(stage.Name, PhasePending, PhaseRunning)
		result := s.runStage(ctx, stage, rc)
		out.transition(stage.Name, PhaseRunning, PhaseEvaluating)
		out.Results = append(out.Results, result)

		switch decide(stage, result.Status) {
		case decideAdvance:
			out.transition(stage.Name, PhaseEvaluating, PhaseAdvancing)
		case decideSkipRemaining:
			s.logger().Warn("stage failed, skipping remaining stages", map[string]any{
				"stage":  stage.Name,
				"status": string(result.Status),
			})
			out.transition(stage.Name, PhaseEvaluating, PhaseAdvancingWithSkip)
			skipRemaining = true
		case decideAbort:
			s.logger().Warn("stage failed, aborting run", map[string]any{
				"stage":  stage.Name,
				"status": string(result.Status),
			})
			out.transition(stage.Name, PhaseEvaluating, PhaseAborted)
			out.Aborted = true
			skipRemaining = true
		}
	}

	return out
}

func (s *Scheduler) runStage(ctx context.Context, stage types.StageDescriptor, rc adapter.RunContext) StageResult {
	ad, err := s.Registry.Lookup(stage.Tool)
	if err != nil {
		return StageResult{
			Name:     stage.Name,
			Tool:     stage.Tool,
			Required: stage.Required,
			Status:   StatusToolError,
			Findings: adapter.Findings{},
			Detail:   err.Error(),
		}
	}
	return s.Executor.Execute(ctx, stage, ad, rc)
}

func skippedResult(stage types.StageDescriptor) StageResult {
	return StageResult{
		Name:     stage.Name,
		Tool:     stage.Tool,
		Required: stage.Required,
		Status:   StatusSkipped,
		Findings: adapter.Findings{},
		Duration: time.Duration(0),
	}
}

func (o *ScheduleOutcome) transition(stage string, from, to Phase) {
	o.Trace = append(o.Trace, Transition{Stage: stage, From: from, To: to})
}
