package autofill

// State is a step of a fill run.
type State int

const (
	StateIdle State = iota
	StateScanning
	StatePrompting
	StateAwaitingModel
	StateReconciling
	StateApplying
	StateDone
	StateFailed
)

var stateNames = [...]string{
	StateIdle:          "idle",
	StateScanning:      "scanning",
	StatePrompting:     "prompting",
	StateAwaitingModel: "awaiting-model",
	StateReconciling:   "reconciling",
	StateApplying:      "applying",
	StateDone:          "done",
	StateFailed:        "failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Terminal reports whether s ends a run.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}

// Status summarises the engine for display.
type Status struct {
	State       State
	FieldCount  int
	FilledCount int
}
