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

// StaticAnalysisAdapter runs a linter or auditor and counts its diagnostics.
// The parser understands compiler-style "warning:"/"error:" lines and audit
// summaries of the form "N vulnerabilities found".
type StaticAnalysisAdapter struct {
	runner proc.Runner
}

// NewStaticAnalysisAdapter creates the adapter on top of the given runner.
func NewStaticAnalysisAdapter(runner proc.Runner) *StaticAnalysisAdapter {
	return &StaticAnalysisAdapter{runner: runner}
}

// Name implements Adapter.
func (a *StaticAnalysisAdapter) Name() string { return types.ToolStaticAnalysis }

// Run implements Adapter.
func (a *StaticAnalysisAdapter) Run(ctx context.Context, stage types.StageDescriptor, rc RunContext) (*Result, error) {
	out, err := a.runner.Run(ctx, proc.Spec{
		Command: stage.Command,
		Args:    stage.Args,
		Dir:     stageDir(stage, rc),
		Env:     rc.Env,
	})
	return classify(stage, rc, out, err, parseDiagnostics)
}

var vulnSummaryPattern = regexp.MustCompile(`(\d+) vulnerabilit(?:y|ies) found`)

func parseDiagnostics(output []byte) Findings {
	findings := Findings{}
	scanner := bufio.NewScanner(bytes.NewReader(output))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.Contains(line, "warning:"):
			findings.Add("lint-warnings", 1)
		case strings.Contains(line, "error:") || strings.Contains(line, "error["):
			findings.Add("lint-errors", 1)
		}
		if m := vulnSummaryPattern.FindStringSubmatch(line); m != nil {
			n, _ := strconv.Atoi(m[1])
			findings.Add("audit-vulnerabilities", n)
		}
	}
	return findings
}
