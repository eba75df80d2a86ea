package runner

// State is a step of the query state machine.
type State int

const (
	StateAwaitingQuery State = iota
	StateRequestingCompletion
	StateDispatchingTools
	StateDone
)

var stateNames = [...]string{
	StateAwaitingQuery:        "awaiting_query",
	StateRequestingCompletion: "requesting_completion",
	StateDispatchingTools:     "dispatching_tools",
	StateDone:                 "done",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}
