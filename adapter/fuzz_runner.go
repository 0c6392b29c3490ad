package adapter

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/kaiachai/scanpipe/proc"
	"github.com/kaiachai/scanpipe/types"
)

// FuzzRunnerAdapter runs a fuzzer over the stage's declared targets. Targets
// run in parallel inside the adapter; the scheduler still sees a single
// result. Crashes are findings, not failures: an advisory fuzz stage that
// finds crashes reports them without gating the pipeline.
type FuzzRunnerAdapter struct {
	runner proc.Runner
}

// NewFuzzRunnerAdapter creates the adapter on top of the given runner.
func NewFuzzRunnerAdapter(runner proc.Runner) *FuzzRunnerAdapter {
	return &FuzzRunnerAdapter{runner: runner}
}

// Name implements Adapter.
func (a *FuzzRunnerAdapter) Name() string { return types.ToolFuzzRunner }

// Run implements Adapter.
func (a *FuzzRunnerAdapter) Run(ctx context.Context, stage types.StageDescriptor, rc RunContext) (*Result, error) {
	if len(stage.Targets) == 0 {
		out, err := a.runner.Run(ctx, proc.Spec{
			Command: stage.Command,
			Args:    stage.Args,
			Dir:     stageDir(stage, rc),
			Env:     rc.Env,
		})
		return classify(stage, rc, out, err, parseCrashes)
	}

	type targetRun struct {
		out *proc.Output
		err error
	}
	runs := make([]targetRun, len(stage.Targets))

	g, gctx := errgroup.WithContext(ctx)
	for i, target := range stage.Targets {
		g.Go(func() error {
			args := append(append([]string{}, stage.Args...), target)
			out, err := a.runner.Run(gctx, proc.Spec{
				Command: stage.Command,
				Args:    args,
				Dir:     stageDir(stage, rc),
				Env:     rc.Env,
			})
			runs[i] = targetRun{out: out, err: err}
			// Deadline and cancellation are handled after Wait; only
			// invocation failures abort the sibling targets.
			if err != nil && !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("target %s: %w", target, err)
			}
			return nil
		})
	}
	invokeErr := g.Wait()

	if errors.Is(ctx.Err(), context.Canceled) {
		return nil, ErrCancelled
	}
	if invokeErr != nil {
		return nil, fmt.Errorf("invoking %s: %w", stage.Command, invokeErr)
	}

	findings := Findings{}
	var raw bytes.Buffer
	timedOut := errors.Is(ctx.Err(), context.DeadlineExceeded)
	failed := false
	for i, run := range runs {
		if run.out == nil {
			continue
		}
		findings.Merge(parseCrashes(run.out.Combined()))
		fmt.Fprintf(&raw, "==> target %s\n", stage.Targets[i])
		raw.Write(run.out.Combined())
		if run.out.TimedOut {
			timedOut = true
		}
		if run.err == nil && run.out.ExitCode != 0 {
			failed = true
		}
	}

	return &Result{
		Findings:  findings,
		OutputRef: saveOutput(stage, rc, raw.Bytes()),
		TimedOut:  timedOut,
		Failed:    failed && !timedOut,
	}, nil
}

var crashMarkers = []string{
	"Crash: saved as",
	"SIGSEGV",
	"SIGABRT",
	"panicked at",
}

func parseCrashes(output []byte) Findings {
	findings := Findings{}
	scanner := bufio.NewScanner(bytes.NewReader(output))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		for _, marker := range crashMarkers {
			if strings.Contains(line, marker) {
				findings.Add("crashes-found", 1)
				break
			}
		}
	}
	return findings
}
