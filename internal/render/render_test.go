package render

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kaiachai/scanpipe/adapter"
	"github.com/kaiachai/scanpipe/engine"
	"github.com/kaiachai/scanpipe/types"
)

func TestPlan(t *testing.T) {
	def := &types.PipelineDefinition{
		Name:                 "ci-scan",
		GlobalTimeoutSeconds: 300,
		Trigger:              `event == "push"`,
		Stages: []types.StageDescriptor{
			{Name: "lint", Tool: types.ToolStaticAnalysis, Command: "clippy", Args: []string{"--all-targets"}, TimeoutSeconds: 30, OnFailure: types.FailureAbort, Required: true},
			{Name: "fuzz", Tool: types.ToolFuzzRunner, Command: "cargo-fuzz", TimeoutSeconds: 120, OnFailure: types.FailureContinue},
		},
	}

	out := Plan(def, false)

	assert.Contains(t, out, "Pipeline ci-scan (2 stages, global timeout 5m0s)")
	assert.Contains(t, out, `trigger: event == "push"`)
	assert.Contains(t, out, "1. lint")
	assert.Contains(t, out, "required")
	assert.Contains(t, out, "clippy --all-targets")
	assert.Contains(t, out, "2. fuzz")
	assert.Contains(t, out, "advisory")

	lintLine := strings.Index(out, "1. lint")
	fuzzLine := strings.Index(out, "2. fuzz")
	assert.Less(t, lintLine, fuzzLine, "stages listed in declaration order")
}

func TestSummary(t *testing.T) {
	rep := &engine.Report{
		Pipeline: "ci-scan",
		Overall:  engine.OverallFail,
		Duration: 1500 * time.Millisecond,
		Stages: []engine.StageResult{
			{Name: "lint", Status: engine.StatusSuccess, Findings: adapter.Findings{"lint-warnings": 3}},
			{Name: "unit", Status: engine.StatusFailure, Findings: adapter.Findings{"test-failures": 2}},
			{Name: "broken", Status: engine.StatusToolError, Detail: "no adapter registered"},
			{Name: "fuzz", Status: engine.StatusSkipped},
		},
	}

	out := Summary(rep, false)

	assert.Contains(t, out, "Pipeline ci-scan: FAIL (1.5s)")
	assert.Contains(t, out, "✓ lint")
	assert.Contains(t, out, "lint-warnings=3")
	assert.Contains(t, out, "✗ unit")
	assert.Contains(t, out, "no adapter registered")
	assert.Contains(t, out, "- fuzz")
}

func TestRenderFindingsSorted(t *testing.T) {
	got := renderFindings(map[string]int{"tests-passed": 42, "crashes-found": 2, "lint-warnings": 1})
	assert.Equal(t, "crashes-found=2 lint-warnings=1 tests-passed=42", got)

	assert.Empty(t, renderFindings(nil))
}
