package domain

import "strings"

const (
	// Wildcard matches any symbol when read and leaves the cell unchanged when written.
	Wildcard = '*'

	// InitialState is the state every machine starts (and resets) in.
	InitialState = "0"

	// HaltPrefix marks terminal states: any state whose name begins with it halts the machine.
	HaltPrefix = "halt"
)

// IsHaltState reports whether the given state name designates a terminal state.
func IsHaltState(state string) bool {
	return strings.HasPrefix(state, HaltPrefix)
}
