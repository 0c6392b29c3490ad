package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kaiachai/scanpipe/adapter"
	"github.com/kaiachai/scanpipe/logging"
	"github.com/kaiachai/scanpipe/types"
	"github.com/kaiachai/scanpipe/validate"
)

// ErrPipelineFailed is returned by Runner.Run when the pipeline completed
// but did not pass. The report accompanying it is still fully populated.
var ErrPipelineFailed = errors.New("pipeline did not pass")

// Runner is the top-level run controller: it validates the definition,
// drives the scheduler under the global run timeout, and aggregates the
// final report.
type Runner struct {
	Registry *adapter.Registry
	Logger   logging.Logger
	// Grace overrides the stage executor's teardown grace window.
	Grace time.Duration
}

// RunOptions carries the per-run execution context.
type RunOptions struct {
	CheckoutDir string
	Env         map[string]string
	ArtifactDir string
}

// Run executes the whole pipeline and returns its report. The returned
// error is a ConfigError for invalid definitions (no report), or
// ErrPipelineFailed when the run completed without passing (report
// attached); a passing run returns a nil error.
func (r *Runner) Run(ctx context.Context, def *types.PipelineDefinition, opts RunOptions) (*Report, error) {
	if res := validate.Pipeline(def); !res.IsValid() {
		return nil, res.Err()
	}

	logger := r.Logger
	if logger == nil {
		logger = logging.NopLogger{}
	}

	start := time.Now().UTC()
	runCtx, cancel := context.WithTimeout(ctx, def.GlobalTimeout())
	defer cancel()

	logger.Info("pipeline starting", map[string]any{
		"pipeline":       def.Name,
		"stages":         len(def.Stages),
		"global_timeout": def.GlobalTimeout().String(),
	})

	sched := &Scheduler{
		Executor: &Executor{Grace: r.Grace, Logger: logger},
		Registry: r.Registry,
		Logger:   logger,
	}
	outcome := sched.Run(runCtx, def, adapter.RunContext{
		CheckoutDir: opts.CheckoutDir,
		Env:         opts.Env,
		ArtifactDir: opts.ArtifactDir,
	})

	overall := Aggregate(outcome.Results, outcome.Aborted)
	if !outcome.Aborted {
		// The run budget and external cancellation override the
		// per-stage aggregation.
		switch {
		case errors.Is(runCtx.Err(), context.DeadlineExceeded):
			overall = OverallTimedOut
		case errors.Is(ctx.Err(), context.Canceled):
			overall = OverallAborted
		}
	}

	report := &Report{
		RunID:     uuid.NewString(),
		Pipeline:  def.Name,
		Overall:   overall,
		StartedAt: start,
		Duration:  time.Since(start),
		Stages:    outcome.Results,
	}

	logger.Info("pipeline finished", map[string]any{
		"pipeline": def.Name,
		"overall":  string(overall),
		"duration": report.Duration.String(),
	})

	if !overall.Passed() {
		return report, fmt.Errorf("%w: %s", ErrPipelineFailed, overall)
	}
	return report, nil
}
