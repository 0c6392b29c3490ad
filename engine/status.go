package engine

// Status is the terminal status of one executed (or skipped) stage.
type Status string

const (
	// StatusSuccess: the tool ran and reported no gating problem.
	StatusSuccess Status = "success"
	// StatusFailure: the tool ran to completion and reported a problem.
	StatusFailure Status = "failure"
	// StatusTimeout: the stage or run budget cut the tool off.
	StatusTimeout Status = "timeout"
	// StatusSkipped: the stage never ran.
	StatusSkipped Status = "skipped"
	// StatusToolError: the tool could not be invoked, or the run was
	// cancelled before it finished.
	StatusToolError Status = "tool_error"
)

// OverallStatus is the aggregated status of a whole pipeline run.
type OverallStatus string

const (
	OverallPass     OverallStatus = "pass"
	OverallFail     OverallStatus = "fail"
	OverallAborted  OverallStatus = "aborted"
	OverallTimedOut OverallStatus = "timed_out"
)

// Passed reports whether the run gates green.
func (s OverallStatus) Passed() bool { return s == OverallPass }
