package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAggregate(t *testing.T) {
	tests := []struct {
		name    string
		results []StageResult
		aborted bool
		want    OverallStatus
	}{
		{
			name: "all success",
			results: []StageResult{
				{Name: "lint", Required: true, Status: StatusSuccess},
				{Name: "unit", Required: true, Status: StatusSuccess},
			},
			want: OverallPass,
		},
		{
			name: "advisory failure does not gate",
			results: []StageResult{
				{Name: "unit", Required: true, Status: StatusSuccess},
				{Name: "fuzz", Required: false, Status: StatusFailure},
			},
			want: OverallPass,
		},
		{
			name: "advisory tool error does not gate",
			results: []StageResult{
				{Name: "unit", Required: true, Status: StatusSuccess},
				{Name: "fuzz", Required: false, Status: StatusToolError},
			},
			want: OverallPass,
		},
		{
			name: "required failure fails",
			results: []StageResult{
				{Name: "lint", Required: true, Status: StatusSuccess},
				{Name: "unit", Required: true, Status: StatusFailure},
			},
			want: OverallFail,
		},
		{
			name: "required tool error fails",
			results: []StageResult{
				{Name: "unit", Required: true, Status: StatusToolError},
			},
			want: OverallFail,
		},
		{
			name: "required timeout",
			results: []StageResult{
				{Name: "unit", Required: true, Status: StatusTimeout},
				{Name: "fuzz", Required: false, Status: StatusSuccess},
			},
			want: OverallTimedOut,
		},
		{
			name: "required failure outranks earlier timeout",
			results: []StageResult{
				{Name: "lint", Required: true, Status: StatusTimeout},
				{Name: "unit", Required: true, Status: StatusFailure},
			},
			want: OverallFail,
		},
		{
			name: "skipped required stage does not gate",
			results: []StageResult{
				{Name: "unit", Required: true, Status: StatusSkipped},
			},
			want: OverallPass,
		},
		{
			name: "aborted outranks everything",
			results: []StageResult{
				{Name: "unit", Required: true, Status: StatusFailure},
			},
			aborted: true,
			want:    OverallAborted,
		},
		{
			name: "empty results pass",
			want: OverallPass,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Aggregate(tt.results, tt.aborted))
		})
	}
}

func TestOverallStatus_Passed(t *testing.T) {
	assert.True(t, OverallPass.Passed())
	assert.False(t, OverallFail.Passed())
	assert.False(t, OverallAborted.Passed())
	assert.False(t, OverallTimedOut.Passed())
}
