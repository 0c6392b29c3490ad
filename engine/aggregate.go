package engine

// Aggregate derives the overall run status from the ordered stage results.
//
// Precedence: an aborted run is reported as aborted even though the abort
// was caused by a required-stage failure; otherwise any required failure or
// tool error fails the run, any required timeout reports timed_out, and
// everything else passes. Advisory stage failures never downgrade the
// overall status, their findings stay in the report.
func Aggregate(results []StageResult, aborted bool) OverallStatus {
	if aborted {
		return OverallAborted
	}

	overall := OverallPass
	for _, r := range results {
		if !r.Required {
			continue
		}
		switch r.Status {
		case StatusFailure, StatusToolError:
			return OverallFail
		case StatusTimeout:
			overall = OverallTimedOut
		}
	}
	return overall
}
