package adapter

import (
	"context"
	"time"

	"github.com/kaiachai/scanpipe/types"
)

// MockAdapter implements Adapter with canned results and never touches a
// real process. It backs the --mock-tools run mode and is handy in tests.
type MockAdapter struct {
	tool string
	// Results maps stage name to a canned result. Stages without an entry
	// get Default.
	Results map[string]*Result
	// Default is returned for stages with no entry in Results.
	Default *Result
	// Err, when set, is returned for every run.
	Err error
	// Delay simulates tool runtime; the adapter honours ctx while waiting.
	Delay time.Duration
}

// NewMockAdapter creates a mock adapter for the given tool kind.
func NewMockAdapter(tool string, def *Result) *MockAdapter {
	return &MockAdapter{tool: tool, Results: make(map[string]*Result), Default: def}
}

// Name implements Adapter.
func (m *MockAdapter) Name() string { return m.tool }

// Run implements Adapter.
func (m *MockAdapter) Run(ctx context.Context, stage types.StageDescriptor, _ RunContext) (*Result, error) {
	if m.Delay > 0 {
		timer := time.NewTimer(m.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			if ctx.Err() == context.DeadlineExceeded {
				return &Result{Findings: Findings{}, TimedOut: true}, nil
			}
			return nil, ErrCancelled
		case <-timer.C:
		}
	}

	if m.Err != nil {
		return nil, m.Err
	}
	if r, ok := m.Results[stage.Name]; ok {
		return cloneResult(r), nil
	}
	if m.Default != nil {
		return cloneResult(m.Default), nil
	}
	return &Result{Findings: Findings{}}, nil
}

func cloneResult(r *Result) *Result {
	clone := *r
	clone.Findings = Findings{}
	clone.Findings.Merge(r.Findings)
	return &clone
}

// MockRegistry registers mock adapters under the real tool kinds, each with
// plausible canned findings. A definition written for real tools runs
// unchanged against it.
func MockRegistry() *Registry {
	r := NewRegistry()
	_ = r.Register(NewMockAdapter(types.ToolStaticAnalysis, &Result{Findings: Findings{"lint-warnings": 3}}))
	_ = r.Register(NewMockAdapter(types.ToolTestRunner, &Result{Findings: Findings{"tests-passed": 42}}))
	_ = r.Register(NewMockAdapter(types.ToolFuzzRunner, &Result{Findings: Findings{}}))
	return r
}
