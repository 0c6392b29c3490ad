package adapter

import (
	"bufio"
	"bytes"
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/kaiachai/scanpipe/proc"
	"github.com/kaiachai/scanpipe/types"
)

// TestRunnerAdapter runs a test suite and extracts pass/fail counts from the
// runner's summary output.
type TestRunnerAdapter struct {
	runner proc.Runner
}

// NewTestRunnerAdapter creates the adapter on top of the given runner.
func NewTestRunnerAdapter(runner proc.Runner) *TestRunnerAdapter {
	return &TestRunnerAdapter{runner: runner}
}

// Name implements Adapter.
func (a *TestRunnerAdapter) Name() string { return types.ToolTestRunner }

// Run implements Adapter.
func (a *TestRunnerAdapter) Run(ctx context.Context, stage types.StageDescriptor, rc RunContext) (*Result, error) {
	out, err := a.runner.Run(ctx, proc.Spec{
		Command: stage.Command,
		Args:    stage.Args,
		Dir:     stageDir(stage, rc),
		Env:     rc.Env,
	})
	return classify(stage, rc, out, err, parseTestSummary)
}

// testSummaryPattern matches summary lines like
// "test result: ok. 412 passed; 0 failed; 2 ignored".
var testSummaryPattern = regexp.MustCompile(`(\d+) passed; (\d+) failed`)

func parseTestSummary(output []byte) Findings {
	findings := Findings{}
	scanner := bufio.NewScanner(bytes.NewReader(output))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if m := testSummaryPattern.FindStringSubmatch(line); m != nil {
			passed, _ := strconv.Atoi(m[1])
			failed, _ := strconv.Atoi(m[2])
			findings.Add("tests-passed", passed)
			findings.Add("test-failures", failed)
			continue
		}
		// go test style
		if strings.HasPrefix(line, "--- FAIL") {
			findings.Add("test-failures", 1)
		}
	}
	return findings
}
