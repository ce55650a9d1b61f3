package domain

// RuleSet is an ordered program of rules.
// Order is kept for diagnostics only; it does not affect rule selection.
// A RuleSet must not be mutated once it has been loaded into a machine.
type RuleSet struct {
	rules []Rule
	index map[RuleKey]int
}

// NewRuleSet builds a RuleSet from the given rules, rejecting duplicate pairs.
func NewRuleSet(rules ...Rule) (*RuleSet, error) {
	rs := &RuleSet{}
	for _, r := range rules {
		if err := rs.Add(r); err != nil {
			return nil, err
		}
	}
	return rs, nil
}

// Add appends a rule. A rule whose (state, symbol) pair is already present is rejected
// with a ParseError positioned at the new rule's line.
func (rs *RuleSet) Add(r Rule) error {
	if rs.index == nil {
		rs.index = make(map[RuleKey]int)
	}
	if _, exists := rs.index[r.Key()]; exists {
		return &ParseError{Message: MsgDuplicateRule, Line: r.Line}
	}
	rs.index[r.Key()] = len(rs.rules)
	rs.rules = append(rs.rules, r)
	return nil
}

// Rules returns a copy of the rules in insertion order.
func (rs *RuleSet) Rules() []Rule {
	if rs == nil {
		return nil
	}
	out := make([]Rule, len(rs.rules))
	copy(out, rs.rules)
	return out
}

// Len returns the number of rules.
func (rs *RuleSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.rules)
}

// Each calls fn for every rule in insertion order without copying the table.
// Iteration stops when fn returns false.
func (rs *RuleSet) Each(fn func(Rule) bool) {
	if rs == nil {
		return
	}
	for _, r := range rs.rules {
		if !fn(r) {
			return
		}
	}
}

// States returns the distinct state names referenced by the program, in first-seen order.
func (rs *RuleSet) States() []string {
	seen := make(map[string]bool)
	var states []string
	rs.Each(func(r Rule) bool {
		for _, s := range []string{r.CurrentState, r.NewState} {
			if !seen[s] {
				seen[s] = true
				states = append(states, s)
			}
		}
		return true
	})
	return states
}
