package adapter

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaiachai/scanpipe/proc"
	"github.com/kaiachai/scanpipe/types"
)

var lintStage = types.StageDescriptor{
	Name:           "lint",
	Tool:           types.ToolStaticAnalysis,
	Command:        "cargo",
	Args:           []string{"clippy", "--all-targets"},
	TimeoutSeconds: 600,
	OnFailure:      types.FailureAbort,
	Required:       true,
}

const clippyOutput = `
warning: unused variable: ` + "`x`" + `
 --> src/lib.rs:10:9
warning: this loop never actually loops
error[E0425]: cannot find value ` + "`y`" + ` in this scope
Crate audit summary: 2 vulnerabilities found
`

func TestStaticAnalysis_ParsesDiagnostics(t *testing.T) {
	runner := &fakeRunner{handle: fixedOutput(&proc.Output{Stdout: []byte(clippyOutput)}, nil)}
	a := NewStaticAnalysisAdapter(runner)

	res, err := a.Run(context.Background(), lintStage, RunContext{CheckoutDir: "/src"})
	require.NoError(t, err)
	assert.False(t, res.Failed)
	assert.Equal(t, Findings{
		"lint-warnings":         2,
		"lint-errors":           1,
		"audit-vulnerabilities": 2,
	}, res.Findings)

	specs := runner.recorded()
	require.Len(t, specs, 1)
	assert.Equal(t, "cargo", specs[0].Command)
	assert.Equal(t, []string{"clippy", "--all-targets"}, specs[0].Args)
	assert.Equal(t, "/src", specs[0].Dir)
}

func TestStaticAnalysis_WorkingDirResolution(t *testing.T) {
	runner := &fakeRunner{}
	a := NewStaticAnalysisAdapter(runner)

	stage := lintStage
	stage.WorkingDir = "pallets"
	_, err := a.Run(context.Background(), stage, RunContext{CheckoutDir: "/src"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/src", "pallets"), runner.recorded()[0].Dir)
}

func TestStaticAnalysis_NonZeroExitIsFailure(t *testing.T) {
	runner := &fakeRunner{handle: fixedOutput(&proc.Output{Stderr: []byte("error: bad\n"), ExitCode: 1}, nil)}
	a := NewStaticAnalysisAdapter(runner)

	res, err := a.Run(context.Background(), lintStage, RunContext{})
	require.NoError(t, err)
	assert.True(t, res.Failed)
	assert.Equal(t, 1, res.Findings["lint-errors"])
}

func TestStaticAnalysis_TimeoutKeepsPartialFindings(t *testing.T) {
	out := &proc.Output{Stdout: []byte("warning: a\nwarning: b\n"), TimedOut: true}
	runner := &fakeRunner{handle: fixedOutput(out, context.DeadlineExceeded)}
	a := NewStaticAnalysisAdapter(runner)

	res, err := a.Run(context.Background(), lintStage, RunContext{})
	require.NoError(t, err, "a timeout is a result, not an invocation error")
	assert.True(t, res.TimedOut)
	assert.False(t, res.Failed)
	assert.Equal(t, 2, res.Findings["lint-warnings"])
}

func TestStaticAnalysis_Cancelled(t *testing.T) {
	runner := &fakeRunner{handle: fixedOutput(nil, context.Canceled)}
	a := NewStaticAnalysisAdapter(runner)

	_, err := a.Run(context.Background(), lintStage, RunContext{})
	assert.True(t, errors.Is(err, ErrCancelled))
}

func TestStaticAnalysis_InvocationError(t *testing.T) {
	runner := &fakeRunner{handle: fixedOutput(nil, errors.New("exec: not found"))}
	a := NewStaticAnalysisAdapter(runner)

	_, err := a.Run(context.Background(), lintStage, RunContext{})
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrCancelled))
}

func TestStaticAnalysis_SavesRawOutput(t *testing.T) {
	artifacts := t.TempDir()
	runner := &fakeRunner{handle: fixedOutput(&proc.Output{Stdout: []byte("warning: w\n")}, nil)}
	a := NewStaticAnalysisAdapter(runner)

	res, err := a.Run(context.Background(), lintStage, RunContext{ArtifactDir: artifacts})
	require.NoError(t, err)
	require.NotEmpty(t, res.OutputRef)

	data, err := os.ReadFile(res.OutputRef)
	require.NoError(t, err)
	assert.Contains(t, string(data), "warning: w")
}
