package adapter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaiachai/scanpipe/types"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	mock := NewMockAdapter(types.ToolStaticAnalysis, nil)
	require.NoError(t, r.Register(mock))

	got, err := r.Lookup(types.ToolStaticAnalysis)
	require.NoError(t, err)
	assert.Equal(t, mock, got)

	_, err = r.Lookup("sast")
	assert.Error(t, err)

	err = r.Register(NewMockAdapter(types.ToolStaticAnalysis, nil))
	assert.Error(t, err, "duplicate registration is rejected")
}

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry(&fakeRunner{})
	assert.Equal(t, []string{types.ToolFuzzRunner, types.ToolStaticAnalysis, types.ToolTestRunner}, r.Names())
}

func TestMockRegistry(t *testing.T) {
	r := MockRegistry()
	for _, tool := range []string{types.ToolStaticAnalysis, types.ToolTestRunner, types.ToolFuzzRunner} {
		a, err := r.Lookup(tool)
		require.NoError(t, err)

		res, err := a.Run(context.Background(), types.StageDescriptor{Name: "s", Tool: tool}, RunContext{})
		require.NoError(t, err)
		assert.False(t, res.Failed)
	}
}

func TestMockAdapter_PerStageResults(t *testing.T) {
	m := NewMockAdapter(types.ToolTestRunner, &Result{Findings: Findings{"tests-passed": 1}})
	m.Results["flaky"] = &Result{Findings: Findings{"test-failures": 4}, Failed: true}

	res, err := m.Run(context.Background(), types.StageDescriptor{Name: "flaky"}, RunContext{})
	require.NoError(t, err)
	assert.True(t, res.Failed)
	assert.Equal(t, 4, res.Findings["test-failures"])

	res, err = m.Run(context.Background(), types.StageDescriptor{Name: "other"}, RunContext{})
	require.NoError(t, err)
	assert.False(t, res.Failed)
	assert.Equal(t, 1, res.Findings["tests-passed"])
}

func TestFindings(t *testing.T) {
	f := Findings{}
	f.Add("lint-warnings", 2)
	f.Add("lint-warnings", 1)
	f.Add("noise", 0)
	f.Add("negative", -3)
	assert.Equal(t, Findings{"lint-warnings": 3}, f)

	f.Merge(Findings{"lint-warnings": 1, "crashes-found": 2})
	assert.Equal(t, 4, f["lint-warnings"])
	assert.Equal(t, 6, f.Total())
}
