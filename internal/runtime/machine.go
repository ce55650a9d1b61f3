package runtime

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/turing/internal/logging"
	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/tape"
)

// Machine applies a RuleSet to a tape one rule at a time.
// A Machine is not safe for concurrent use: hosts must serialize every call.
type Machine struct {
	rules     *domain.RuleSet
	tape      *tape.Tape
	state     string
	steps     int
	stepLimit int

	hooks  domain.MachineHooks
	logger *slog.Logger
}

// NewMachine creates a machine with an empty program on a blank tape.
func NewMachine(opts ...Option) *Machine {
	m := &Machine{
		state:  domain.InitialState,
		tape:   tape.New(),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Load stores the program and resets the machine with the given tape input.
// The RuleSet is referenced, not copied; it must not be mutated afterwards.
func (m *Machine) Load(rules *domain.RuleSet, input string) {
	m.rules = rules
	m.Reset(input)
}

// Reset returns to the initial state on a fresh tape. A non-empty input is written
// verbatim with the head on its first symbol; otherwise the tape is blank.
// No notifications are fired.
func (m *Machine) Reset(input string) {
	m.state = domain.InitialState
	m.steps = 0
	m.tape = tape.New()
	if input != "" {
		m.tape.InitializeWith(input)
	}
}

// Restore rebuilds a machine from a snapshot taken between steps.
func Restore(rules *domain.RuleSet, snap domain.Snapshot, opts ...Option) (*Machine, error) {
	t, err := tape.Restore(snap.Tape, snap.Head)
	if err != nil {
		return nil, fmt.Errorf("failed to restore tape: %w", err)
	}
	m := NewMachine(opts...)
	m.rules = rules
	m.tape = t
	m.state = snap.State
	m.steps = snap.Steps
	if m.state == "" {
		m.state = domain.InitialState
	}
	return m, nil
}

// State returns the current state name.
func (m *Machine) State() string {
	return m.state
}

// Halted reports whether the current state is a halting state.
func (m *Machine) Halted() bool {
	return domain.IsHaltState(m.state)
}

// Steps returns the number of steps executed since the last reset.
func (m *Machine) Steps() int {
	return m.steps
}

// Tape exposes the tape, e.g. for initialization before the first step.
func (m *Machine) Tape() *tape.Tape {
	return m.tape
}

// Rules returns the loaded program (nil before Load).
func (m *Machine) Rules() *domain.RuleSet {
	return m.rules
}

// Window returns the symbols around the head, see tape.Tape.Window.
func (m *Machine) Window(left, right int) string {
	return m.tape.Window(left, right)
}

// Snapshot captures the machine between steps.
func (m *Machine) Snapshot() domain.Snapshot {
	return domain.Snapshot{
		State:  m.state,
		Tape:   m.tape.String(),
		Head:   m.tape.Head(),
		Steps:  m.steps,
		Halted: m.Halted(),
	}
}

// SelectNextRule returns the rule that applies to the current state and the symbol
// under the head. A rule for the exact symbol wins over a wildcard rule.
func (m *Machine) SelectNextRule() (domain.Rule, bool) {
	symbol := m.tape.Read()

	var wildcard domain.Rule
	var haveWildcard bool
	var exact domain.Rule
	var haveExact bool

	m.rules.Each(func(r domain.Rule) bool {
		if !r.Matches(m.state, symbol) {
			return true
		}
		if r.IsWildcard() {
			if !haveWildcard {
				wildcard, haveWildcard = r, true
			}
			return true
		}
		exact, haveExact = r, true
		return false
	})

	if haveExact {
		return exact, true
	}
	return wildcard, haveWildcard
}

// Step executes one rule and returns it.
func (m *Machine) Step() (domain.Rule, error) {
	if m.Halted() {
		return domain.Rule{}, domain.ErrAlreadyHalted
	}

	rule, ok := m.SelectNextRule()
	if !ok {
		return domain.Rule{}, &domain.NoMatchingRuleError{State: m.state, Symbol: m.tape.Read()}
	}

	oldState := m.state
	m.state = rule.NewState
	m.emitStateChanged(oldState, rule.NewState)

	if rule.NewSymbol != domain.Wildcard {
		m.tape.Write(rule.NewSymbol)
	}

	switch rule.Direction {
	case domain.Right:
		m.tape.MoveRight()
	case domain.Left:
		m.tape.MoveLeft()
	}
	m.emitTapeChanged(rule)

	m.steps++
	if m.hooks.OnStep != nil {
		m.hooks.OnStep(domain.StepEvent{Rule: rule, Step: m.steps})
	}
	m.logger.Debug("step", "n", m.steps, "rule", rule.String(), "line", rule.Line, "state", m.state, "head", m.tape.Head())

	return rule, nil
}

// Run steps until the machine halts. Any step error aborts the run.
// The context is checked once before each step; on cancellation the machine is left
// exactly as of the last completed step and ctx.Err() is returned.
func (m *Machine) Run(ctx context.Context) error {
	start := m.steps
	for !m.Halted() {
		if err := ctx.Err(); err != nil {
			m.logger.Info("run canceled", "steps", m.steps, "state", m.state)
			return err
		}
		if m.stepLimit > 0 && m.steps-start >= m.stepLimit {
			return fmt.Errorf("%w: %d steps without halting (state %q)", domain.ErrStepLimitExceeded, m.stepLimit, m.state)
		}
		if _, err := m.Step(); err != nil {
			return err
		}
	}
	m.logger.Debug("halted", "state", m.state, "steps", m.steps)
	return nil
}

func (m *Machine) emitStateChanged(oldState, newState string) {
	if m.hooks.OnStateChanged == nil {
		return
	}
	m.hooks.OnStateChanged(domain.StateChangedEvent{
		OldState: oldState,
		NewState: newState,
		Step:     m.steps + 1,
	})
}

func (m *Machine) emitTapeChanged(rule domain.Rule) {
	if m.hooks.OnTapeChanged == nil {
		return
	}
	m.hooks.OnTapeChanged(domain.TapeChangedEvent{
		OldSymbol: m.tape.Read(),
		NewSymbol: rule.NewSymbol,
		Direction: rule.Direction,
		Step:      m.steps + 1,
	})
}
