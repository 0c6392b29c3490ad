// Package adapter translates abstract pipeline stages into concrete tool
// invocations and normalizes each tool's output into categorized findings.
package adapter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kaiachai/scanpipe/proc"
	"github.com/kaiachai/scanpipe/types"
)

// ErrCancelled is returned by an adapter whose run was cancelled before the
// tool finished. The stage executor maps it to a tool error, never a tool
// failure.
var ErrCancelled = errors.New("tool run cancelled")

// Findings maps a finding category (e.g. "lint-warnings", "crashes-found")
// to an occurrence count.
type Findings map[string]int

// Add records n occurrences of category. Zero and negative counts are
// dropped so reports only carry categories that were actually observed.
func (f Findings) Add(category string, n int) {
	if n > 0 {
		f[category] += n
	}
}

// Merge folds other into f.
func (f Findings) Merge(other Findings) {
	for category, n := range other {
		f.Add(category, n)
	}
}

// Total returns the sum of all counts.
func (f Findings) Total() int {
	total := 0
	for _, n := range f {
		total += n
	}
	return total
}

// RunContext carries the shared run state each adapter needs: where the
// checkout lives, the stage environment, and where raw tool output is kept.
// Cancellation travels through the context.Context passed to Run.
type RunContext struct {
	CheckoutDir string
	Env         map[string]string
	ArtifactDir string
}

// Result is the normalized outcome of one tool invocation.
type Result struct {
	Findings Findings
	// OutputRef is the path of the captured raw tool output, empty when no
	// artifact directory is configured.
	OutputRef string
	// TimedOut marks a run cut off by the stage deadline. Findings hold
	// whatever could be recovered from the partial output.
	TimedOut bool
	// Failed marks a tool that ran to completion and reported a
	// substantive problem (non-zero exit).
	Failed bool
}

// Adapter invokes one kind of external tool. Implementations must respect
// ctx: on cancellation they terminate the underlying process group and
// return ErrCancelled instead of blocking.
type Adapter interface {
	// Name is the tool kind the adapter is registered under.
	Name() string
	// Run invokes the tool for the stage. A non-nil error means the tool
	// could not be invoked or was cancelled; a completed-but-failing tool
	// is reported through Result.Failed instead.
	Run(ctx context.Context, stage types.StageDescriptor, rc RunContext) (*Result, error)
}

// stageDir resolves the stage working directory against the checkout.
func stageDir(stage types.StageDescriptor, rc RunContext) string {
	if stage.WorkingDir == "" {
		return rc.CheckoutDir
	}
	if filepath.IsAbs(stage.WorkingDir) {
		return stage.WorkingDir
	}
	return filepath.Join(rc.CheckoutDir, stage.WorkingDir)
}

// saveOutput writes the raw tool output under the artifact directory and
// returns its path. Capture failures are non-fatal: the findings still make
// it into the report, only the raw reference is lost.
func saveOutput(stage types.StageDescriptor, rc RunContext, raw []byte) string {
	if rc.ArtifactDir == "" || raw == nil {
		return ""
	}
	logDir := filepath.Join(rc.ArtifactDir, "logs")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return ""
	}
	path := filepath.Join(logDir, stage.Name+".log")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return ""
	}
	return path
}

// classify turns a runner outcome into a Result, preserving partial findings
// on timeout.
func classify(stage types.StageDescriptor, rc RunContext, out *proc.Output, runErr error, parse func([]byte) Findings) (*Result, error) {
	if runErr != nil {
		if out != nil && errors.Is(runErr, context.DeadlineExceeded) {
			return &Result{
				Findings:  parse(out.Combined()),
				OutputRef: saveOutput(stage, rc, out.Combined()),
				TimedOut:  true,
			}, nil
		}
		if errors.Is(runErr, context.Canceled) {
			return nil, ErrCancelled
		}
		return nil, fmt.Errorf("invoking %s: %w", stage.Command, runErr)
	}
	return &Result{
		Findings:  parse(out.Combined()),
		OutputRef: saveOutput(stage, rc, out.Combined()),
		Failed:    out.ExitCode != 0,
	}, nil
}
