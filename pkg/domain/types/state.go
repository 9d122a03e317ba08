package types

// State is a step of the per-file refactoring state machine
type State string

const (
	StateScoring    State = "scoring"
	StateFastPath   State = "fast_path"
	StateProbe      State = "probe"
	StateAuditing   State = "auditing"
	StateFixing     State = "fixing"
	StateTesting    State = "testing"
	StateRetrying   State = "retrying"
	StateFinalizing State = "finalizing"
	StateDone       State = "done"
)

// AllStates returns every state in processing order
func AllStates() []State {
	return []State{
		StateScoring,
		StateFastPath,
		StateProbe,
		StateAuditing,
		StateFixing,
		StateTesting,
		StateRetrying,
		StateFinalizing,
		StateDone,
	}
}

// IsTerminal reports whether no further transition can happen
func (s State) IsTerminal() bool {
	return s == StateDone
}

// IsValid checks if the state is known
func (s State) IsValid() bool {
	for _, v := range AllStates() {
		if s == v {
			return true
		}
	}
	return false
}

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}

// Outcome is the terminal classification of a processed file
type Outcome string

const (
	OutcomeSkipped     Outcome = "skipped"
	OutcomeAlreadyGood Outcome = "already_good"
	OutcomeSuccess     Outcome = "success"
	OutcomeFailed      Outcome = "failed"
)

// AllOutcomes returns all valid outcomes
func AllOutcomes() []Outcome {
	return []Outcome{
		OutcomeSkipped,
		OutcomeAlreadyGood,
		OutcomeSuccess,
		OutcomeFailed,
	}
}

// IsValid checks if the outcome is valid
func (o Outcome) IsValid() bool {
	switch o {
	case OutcomeSkipped, OutcomeAlreadyGood, OutcomeSuccess, OutcomeFailed:
		return true
	default:
		return false
	}
}

// String returns the string representation of the outcome
func (o Outcome) String() string {
	return string(o)
}
