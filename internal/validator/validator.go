package validator

import (
	"github.com/aretw0/turing/pkg/domain"
)

// Analysis is the static shape of a program's state graph, walked from the initial state.
type Analysis struct {
	// Reachable lists states reachable from the initial state, in visit order.
	Reachable []string `json:"reachable"`
	// Unreachable lists states that appear in rules but can never be entered.
	Unreachable []string `json:"unreachable,omitempty"`
	// DeadEnds lists reachable, non-halting states with no rule at all. Entering one
	// always fails with a no-matching-rule error.
	DeadEnds []string `json:"dead_ends,omitempty"`
	// HaltReachable reports whether any halting state can be entered.
	HaltReachable bool `json:"halt_reachable"`
}

// Clean reports whether the analysis found nothing to warn about.
func (a Analysis) Clean() bool {
	return len(a.Unreachable) == 0 && len(a.DeadEnds) == 0 && a.HaltReachable
}

// Analyze walks the transitions breadth first starting at domain.InitialState.
// Symbols are ignored: an edge exists if any rule moves between the two states.
func Analyze(rs *domain.RuleSet) Analysis {
	next := make(map[string][]string)
	hasRules := make(map[string]bool)
	rs.Each(func(r domain.Rule) bool {
		hasRules[r.CurrentState] = true
		next[r.CurrentState] = append(next[r.CurrentState], r.NewState)
		return true
	})

	var a Analysis
	visited := map[string]bool{domain.InitialState: true}
	queue := []string{domain.InitialState}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		a.Reachable = append(a.Reachable, current)

		if domain.IsHaltState(current) {
			a.HaltReachable = true
			continue // A halting state is never left
		}
		if !hasRules[current] {
			a.DeadEnds = append(a.DeadEnds, current)
			continue
		}

		for _, target := range next[current] {
			if !visited[target] {
				visited[target] = true
				queue = append(queue, target)
			}
		}
	}

	for _, s := range rs.States() {
		if !visited[s] {
			a.Unreachable = append(a.Unreachable, s)
		}
	}
	return a
}
