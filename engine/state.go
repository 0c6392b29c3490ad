package engine

// Phase is a scheduler state for one stage. The scheduler records every
// phase change it makes in a trace, which is what the tests (and post-mortem
// debugging) use to prove a stage never started.
type Phase string

const (
	PhasePending           Phase = "pending"
	PhaseRunning           Phase = "running"
	PhaseEvaluating        Phase = "evaluating"
	PhaseAdvancing         Phase = "advancing"
	PhaseAdvancingWithSkip Phase = "advancing_with_skip"
	PhaseSkipped           Phase = "skipped"
	PhaseAborted           Phase = "aborted"
)

var validPhaseTransitions = map[Phase]map[Phase]bool{
	PhasePending: {
		PhaseRunning: true,
		PhaseSkipped: true, // synthetic skip, the stage never starts
	},
	PhaseRunning: {
		PhaseEvaluating: true,
	},
	PhaseEvaluating: {
		PhaseAdvancing:         true,
		PhaseAdvancingWithSkip: true,
		PhaseAborted:           true,
	},
}

// ValidTransition reports whether from -> to is an allowed phase change.
func ValidTransition(from, to Phase) bool {
	return validPhaseTransitions[from][to]
}

// Transition is one recorded phase change for a stage.
type Transition struct {
	Stage string
	From  Phase
	To    Phase
}

// Trace is the ordered list of phase changes a scheduler run produced.
type Trace []Transition

// Ran reports whether the stage ever entered the running phase.
func (t Trace) Ran(stage string) bool {
	for _, tr := range t {
		if tr.Stage == stage && tr.To == PhaseRunning {
			return true
		}
	}
	return false
}
