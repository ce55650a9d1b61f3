package domain

import (
	"fmt"
	"strings"
)

// Rule is one entry of the transition table.
// Line is the 1-based source line the rule was parsed from, or 0 when unknown.
type Rule struct {
	CurrentState  string    `json:"current_state"`
	CurrentSymbol rune      `json:"current_symbol"`
	NewSymbol     rune      `json:"new_symbol"`
	Direction     Direction `json:"direction"`
	NewState      string    `json:"new_state"`
	Line          int       `json:"line,omitempty"`
}

// RuleKey identifies a rule inside a RuleSet.
type RuleKey struct {
	State  string
	Symbol rune
}

// Key returns the (state, symbol) pair that must be unique within a RuleSet.
func (r Rule) Key() RuleKey {
	return RuleKey{State: r.CurrentState, Symbol: r.CurrentSymbol}
}

// IsWildcard reports whether the rule matches any symbol.
func (r Rule) IsWildcard() bool {
	return r.CurrentSymbol == Wildcard
}

// Matches reports whether the rule applies to the given state and symbol under the head.
func (r Rule) Matches(state string, symbol rune) bool {
	return r.CurrentState == state && (r.CurrentSymbol == symbol || r.CurrentSymbol == Wildcard)
}

// String renders the rule in program-text form.
func (r Rule) String() string {
	return strings.Join([]string{
		r.CurrentState,
		string(r.CurrentSymbol),
		string(r.NewSymbol),
		r.Direction.Token(),
		r.NewState,
	}, " ")
}

// Describe is String annotated with the source line, for diagnostics.
func (r Rule) Describe() string {
	if r.Line > 0 {
		return fmt.Sprintf("line %d: %s", r.Line, r)
	}
	return r.String()
}
