package chat

import "fmt"

// State is a step of the per-turn state machine.
type State int

// State constants. Every turn starts in StateQueryGeneration and finishes in
// StateEnd.
const (
	StateQueryGeneration State = iota
	StateRoutingDecision
	StateFileResearch
	StateDirectChat
	StateFinalAnswer
	StateEnd
)

var stateNames = map[State]string{
	StateQueryGeneration: "query_generation",
	StateRoutingDecision: "routing_decision",
	StateFileResearch:    "file_research",
	StateDirectChat:      "direct_chat",
	StateFinalAnswer:     "final_answer",
	StateEnd:             "end",
}

// String returns the state's name.
func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Transitions lists the states reachable from each state.
var Transitions = map[State][]State{
	StateQueryGeneration: {StateRoutingDecision},
	StateRoutingDecision: {StateFileResearch, StateDirectChat},
	StateFileResearch:    {StateFinalAnswer},
	StateDirectChat:      {StateFinalAnswer},
	StateFinalAnswer:     {StateEnd},
}

// CanTransition reports whether the machine may move from one state to
// another.
func CanTransition(from, to State) bool {
	for _, next := range Transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
