package domain

// StateChangedEvent is fired when a step moves the machine to its next state.
type StateChangedEvent struct {
	OldState string `json:"old_state"`
	NewState string `json:"new_state"`
	Step     int    `json:"step"`
}

// TapeChangedEvent is fired after a step has written and moved the head.
// OldSymbol is the symbol under the head once the motion is done; NewSymbol is the
// symbol the rule wrote (Wildcard when the cell was left unchanged).
type TapeChangedEvent struct {
	OldSymbol rune      `json:"old_symbol"`
	NewSymbol rune      `json:"new_symbol"`
	Direction Direction `json:"direction"`
	Step      int       `json:"step"`
}

// StepEvent is fired once a step has completed and the step counter has advanced.
// Rule is the rule that was applied.
type StepEvent struct {
	Rule Rule `json:"rule"`
	Step int  `json:"step"`
}

// MachineHooks defines synchronous callbacks invoked inline during a step, in step order.
// They are never invoked by a reset.
type MachineHooks struct {
	OnStateChanged func(StateChangedEvent)
	OnTapeChanged  func(TapeChangedEvent)
	OnStep         func(StepEvent)
}

// Merge returns hooks that call h first and then other.
func (h MachineHooks) Merge(other MachineHooks) MachineHooks {
	return MachineHooks{
		OnStateChanged: chain(h.OnStateChanged, other.OnStateChanged),
		OnTapeChanged:  chain(h.OnTapeChanged, other.OnTapeChanged),
		OnStep:         chain(h.OnStep, other.OnStep),
	}
}

func chain[E any](a, b func(E)) func(E) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(e E) {
		a(e)
		b(e)
	}
}
