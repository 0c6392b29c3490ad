package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kaiachai/scanpipe/adapter"
)

// StageResult records the outcome of exactly one declared stage. Skipped
// stages get a synthetic result with no findings, so a report always carries
// one entry per declared stage, in declaration order.
type StageResult struct {
	Name     string           `json:"name"`
	Tool     string           `json:"tool"`
	Status   Status           `json:"status"`
	Required bool             `json:"required"`
	Findings adapter.Findings `json:"findings"`
	// OutputRef points at the captured raw tool output, empty for skipped
	// stages or when capture is disabled.
	OutputRef string `json:"output_ref,omitempty"`
	// Detail carries the error message for tool_error results.
	Detail   string        `json:"detail,omitempty"`
	Duration time.Duration `json:"duration_ns"`
}

// Report is the aggregated outcome of a pipeline run. It is derived entirely
// from the stage results and never mutated after creation.
type Report struct {
	RunID     string        `json:"run_id"`
	Pipeline  string        `json:"pipeline"`
	Overall   OverallStatus `json:"overall"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration_ns"`
	Stages    []StageResult `json:"stages"`
}

// TotalFindings sums the findings of every stage by category.
func (r *Report) TotalFindings() adapter.Findings {
	total := adapter.Findings{}
	for _, s := range r.Stages {
		total.Merge(s.Findings)
	}
	return total
}

// WriteReport serializes the report as JSON to path, creating parent
// directories as needed. The write goes through a temp file and rename so a
// crashed run never leaves a truncated report behind.
func WriteReport(path string, rep *Report) error {
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating report directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".report-*.json")
	if err != nil {
		return fmt.Errorf("creating temp report: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing report: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("publishing report: %w", err)
	}
	return nil
}

// ReadReport loads a report previously written by WriteReport.
func ReadReport(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading report %s: %w", path, err)
	}
	var rep Report
	if err := json.Unmarshal(data, &rep); err != nil {
		return nil, fmt.Errorf("parsing report %s: %w", path, err)
	}
	return &rep, nil
}
