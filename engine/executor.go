package engine

import (
	"context"
	"errors"
	"time"

	"github.com/kaiachai/scanpipe/adapter"
	"github.com/kaiachai/scanpipe/logging"
	"github.com/kaiachai/scanpipe/types"
)

// DefaultTeardownGrace bounds how long the executor waits for an adapter to
// tear down after its deadline fired before abandoning it. The underlying
// process group is reclaimed by the proc runner regardless.
const DefaultTeardownGrace = 10 * time.Second

// Executor runs exactly one stage under its own timeout, independent of
// sibling stages.
type Executor struct {
	Grace  time.Duration
	Logger logging.Logger
}

func (e *Executor) grace() time.Duration {
	if e.Grace > 0 {
		return e.Grace
	}
	return DefaultTeardownGrace
}

func (e *Executor) logger() logging.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return logging.NopLogger{}
}

// Execute races the adapter against the stage timeout and normalizes the
// outcome into a StageResult. It never returns an error: invocation problems
// surface as tool_error results and drive the scheduler's failure policy.
func (e *Executor) Execute(ctx context.Context, stage types.StageDescriptor, ad adapter.Adapter, rc adapter.RunContext) StageResult {
	start := time.Now()
	stageCtx, cancel := context.WithTimeout(ctx, stage.Timeout())
	defer cancel()

	e.logger().Info("stage starting", map[string]any{
		"stage":   stage.Name,
		"tool":    stage.Tool,
		"timeout": stage.Timeout().String(),
	})

	type outcome struct {
		res *adapter.Result
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := ad.Run(stageCtx, stage, rc)
		done <- outcome{res: res, err: err}
	}()

	var oc outcome
	select {
	case oc = <-done:
	case <-stageCtx.Done():
		// Deadline or cancellation fired. Give the adapter a bounded
		// window to terminate its process group and report partial
		// findings before the stage is written off.
		graceTimer := time.NewTimer(e.grace())
		defer graceTimer.Stop()
		select {
		case oc = <-done:
		case <-graceTimer.C:
			e.logger().Error("stage did not tear down within grace period", map[string]any{
				"stage": stage.Name,
				"grace": e.grace().String(),
			})
			return e.interrupted(stage, ctx, start, "teardown grace period exceeded")
		}
	}

	result := e.classify(stage, ctx, oc.res, oc.err, start)
	e.logger().Info("stage finished", map[string]any{
		"stage":    stage.Name,
		"status":   string(result.Status),
		"duration": result.Duration.String(),
		"findings": result.Findings.Total(),
	})
	return result
}

func (e *Executor) classify(stage types.StageDescriptor, parent context.Context, res *adapter.Result, err error, start time.Time) StageResult {
	result := StageResult{
		Name:     stage.Name,
		Tool:     stage.Tool,
		Required: stage.Required,
		Findings: adapter.Findings{},
		Duration: time.Since(start),
	}

	switch {
	case err == nil:
		result.Findings.Merge(res.Findings)
		result.OutputRef = res.OutputRef
		switch {
		case res.TimedOut:
			result.Status = StatusTimeout
		case res.Failed:
			result.Status = StatusFailure
		default:
			result.Status = StatusSuccess
		}
	case errors.Is(err, adapter.ErrCancelled):
		if errors.Is(parent.Err(), context.DeadlineExceeded) {
			result.Status = StatusTimeout
		} else {
			result.Status = StatusToolError
		}
		result.Detail = err.Error()
	case errors.Is(err, context.DeadlineExceeded):
		result.Status = StatusTimeout
		result.Detail = err.Error()
	default:
		result.Status = StatusToolError
		result.Detail = err.Error()
	}
	return result
}

func (e *Executor) interrupted(stage types.StageDescriptor, parent context.Context, start time.Time, detail string) StageResult {
	status := StatusTimeout
	if errors.Is(parent.Err(), context.Canceled) {
		status = StatusToolError
	}
	return StageResult{
		Name:     stage.Name,
		Tool:     stage.Tool,
		Required: stage.Required,
		Status:   status,
		Findings: adapter.Findings{},
		Detail:   detail,
		Duration: time.Since(start),
	}
}
