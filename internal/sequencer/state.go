package sequencer

import "fmt"

// State is the position of a run in the bootstrap sequence.
type State string

const (
	// StateStart is the state of a sequence that has not run yet.
	StateStart State = "start"

	// StateFetching downloads missing artifacts.
	StateFetching State = "fetching"

	// StateInstalling runs the installers in order.
	StateInstalling State = "installing"

	// StateBootstrapping runs the bootstrap script under each interpreter.
	StateBootstrapping State = "bootstrapping"

	// StateDone is reached when every step succeeded.
	StateDone State = "done"

	// StateFailed is reached on the first failing step. It is terminal.
	StateFailed State = "failed"
)

// IsTerminal reports whether the state is terminal.
func IsTerminal(s State) bool {
	return s == StateDone || s == StateFailed
}

func isAllowedTransition(from, to State) bool {
	switch from {
	case StateStart:
		return to == StateFetching
	case StateFetching:
		return to == StateInstalling || to == StateFailed
	case StateInstalling:
		return to == StateBootstrapping || to == StateFailed
	case StateBootstrapping:
		return to == StateDone || to == StateFailed
	default:
		return false
	}
}

func transition(cur *State, to State) error {
	if !isAllowedTransition(*cur, to) {
		return fmt.Errorf("disallowed transition: %s -> %s", *cur, to)
	}

	*cur = to
	return nil
}
