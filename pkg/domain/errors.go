package domain

import (
	"errors"
	"fmt"
)

// ErrAlreadyHalted is returned when a step is requested on a halted machine.
var ErrAlreadyHalted = errors.New("machine is in halted state")

// ErrNoMatchingRule is the sentinel matched by NoMatchingRuleError.
var ErrNoMatchingRule = errors.New("there is no rule for this state and symbol")

// ErrStepLimitExceeded is returned when a run is aborted by a configured step limit.
var ErrStepLimitExceeded = errors.New("step limit exceeded")

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrProgramNotFound is returned when a loader has no program under the requested name.
var ErrProgramNotFound = errors.New("program not found")

// Parse error messages.
const (
	MsgNotEnoughFields = "Not enough fields"
	MsgInvalidSymbol   = "This is not a valid symbol"
	MsgInvalidDir      = "Invalid direction"
	MsgDuplicateRule   = "Duplicate rule"
)

// ParseError reports malformed program text.
// Line is 1-based; 0 means the error carries no position.
type ParseError struct {
	Message string
	Line    int
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// NoMatchingRuleError is returned when no rule covers the current state and symbol.
// It signals an incomplete transition table.
type NoMatchingRuleError struct {
	State  string
	Symbol rune
}

func (e *NoMatchingRuleError) Error() string {
	return fmt.Sprintf("%s (state %q, symbol %q)", ErrNoMatchingRule.Error(), e.State, string(e.Symbol))
}

// Is lets errors.Is match against ErrNoMatchingRule.
func (e *NoMatchingRuleError) Is(target error) bool {
	return target == ErrNoMatchingRule
}
