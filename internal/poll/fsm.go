package poll

import (
	"fmt"

	"github.com/oquants/tradewatch/pkg/types"
)

// Transition table: from -> allowed tos. Waiting may jump straight to
// Terminal when the run is cancelled before the first probe; Retrying may
// end in Terminal when cancelled mid-sleep.
var validTransitions = map[types.RunPhase][]types.RunPhase{
	types.PhaseWaiting:  {types.PhaseProbing, types.PhaseTerminal},
	types.PhaseProbing:  {types.PhaseRetrying, types.PhaseSettling, types.PhaseTerminal},
	types.PhaseRetrying: {types.PhaseProbing, types.PhaseTerminal},
	types.PhaseSettling: {types.PhaseTerminal},
	types.PhaseTerminal: {},
}

// CanTransition checks if moving from one run phase to another is valid.
func CanTransition(from, to types.RunPhase) bool {
	allowed, ok := validTransitions[from]
	if !ok {
		return false
	}
	for _, p := range allowed {
		if p == to {
			return true
		}
	}
	return false
}

// Transition validates a phase change, or returns an error if it is invalid.
func Transition(from, to types.RunPhase) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("invalid transition from %s to %s", from, to)
	}
	return nil
}

// IsTerminal returns true if the phase is the final phase of a run.
func IsTerminal(phase types.RunPhase) bool {
	return phase == types.PhaseTerminal
}
